package smartptr

// Releaser disposes of a target once its last owner lets go of it.
//
// A releaser is called at most once per target and never with nil. It must
// not panic and must not use the handle that invoked it.
type Releaser[T any] func(p *T)

// DefaultReleaser returns the releaser installed when none is given.
//
// Targets allocated with new or & live on the Go heap, so releasing one only
// means dropping the last reference and letting the collector reclaim it.
// Targets that live elsewhere need their own releaser (see cmem.Free).
func DefaultReleaser[T any]() Releaser[T] {
	return func(*T) {}
}
