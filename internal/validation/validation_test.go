package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/notevaultapp/notevault-core/internal/errors"
)

type sampleInput struct {
	Title    string `json:"title" validate:"required"`
	Priority string `json:"priority" validate:"omitempty,oneof=low medium high"`
	Interval int    `json:"recurringInterval" validate:"omitempty,min=1"`
}

func TestValidate_OK(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(sampleInput{Title: "buy milk", Priority: "high", Interval: 2}))
	assert.NoError(t, v.Validate(sampleInput{Title: "buy milk"}))
}

func TestValidate_FailuresAreDomainErrors(t *testing.T) {
	v := New()

	err := v.Validate(sampleInput{Priority: "urgent"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	var derr *domainerrors.Error
	require.ErrorAs(t, err, &derr)

	details, ok := derr.Details.(map[string]string)
	require.True(t, ok)
	// Field names come from the json tags.
	assert.Contains(t, details, "title")
	assert.Contains(t, details, "priority")
}
