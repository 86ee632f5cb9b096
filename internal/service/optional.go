package service

// Optional distinguishes a patch field that was supplied from one that
// was not. Update operations only touch supplied fields, so the zero
// value ("absent") must be distinct from a supplied zero value. For
// clearable fields the inner type is a pointer: Some[*time.Time](nil)
// clears the field.
type Optional[T any] struct {
	value T
	set   bool
}

// Some wraps a supplied value.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

// Get returns the value and whether it was supplied.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}
