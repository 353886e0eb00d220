// Package ptr converts between values and pointers for optional fields.
package ptr

// New returns a pointer to a copy of v.
func New[T any](v T) *T { return &v }

// Deref returns *p, or the zero value of T when p is nil.
func Deref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}
