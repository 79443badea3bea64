package ptr

// New returns a pointer to the provided value.
func New[T any](v T) *T { return &v }

// Deref returns the value p points to, or the zero value when p is nil.
func Deref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

// Coalesce returns *p when p is non-nil, otherwise the fallback value.
// It is the pointer-typed counterpart of a `field ?? current` merge.
func Coalesce[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}
