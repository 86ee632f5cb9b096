package domain

import "time"

// User is an account resolved through the external identity provider.
// The id doubles as the partition key for every owned entity and is
// immutable after creation.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}
