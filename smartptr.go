// Package smartptr provides Shared, a reference-counted handle that lets
// several owners share one object and releases that object exactly once,
// when the last owner destroys, resets, reassigns or releases its handle.
//
// Handles are meant for objects whose lifetime the Go collector does not
// manage on its own: memory on the C heap (see the cmem package), pooled
// buffers, or anything that needs a deterministic release. Go-heap objects
// work too; their default releaser simply drops the reference.
//
// A handle is always used through a pointer. Copying a Shared by value
// bypasses the owner count, so copies are rejected: use Clone to add an
// owner and Assign to redirect an existing handle.
//
//	a := smartptr.NewWith(buf, release) // one owner
//	b := a.Clone()                      // two owners
//	b.Destroy()                         // one owner, buf alive
//	a.Destroy()                         // release(buf) runs here
//
// Counting is not synchronized. Handles sharing a target must not be used
// from several goroutines at once without external locking.
package smartptr

import (
	"fmt"
	"reflect"

	"github.com/obinnaokechukwu/smartptr/internal/debug"
	"github.com/obinnaokechukwu/smartptr/internal/refcount"
)

type state uint8

const (
	stateZero state = iota
	stateLive
	stateDestroyed
)

// Shared is an owning handle to a *T.
//
// The zero value is an empty handle ready to use. Every handle that owns the
// same target shares one owner count and one releaser.
type Shared[T any] struct {
	guard    noCopy
	target   *T
	count    *refcount.Cell
	releaser Releaser[T]
	state    state
}

// Empty returns a handle that owns nothing.
func Empty[T any]() *Shared[T] {
	return NewWith[T](nil, nil)
}

// New returns a handle that takes ownership of p with the default releaser.
// The caller must not dispose of p itself afterwards.
func New[T any](p *T) *Shared[T] {
	return NewWith(p, nil)
}

// NewWith returns a handle that takes ownership of p and disposes of it with
// fn. A nil fn selects DefaultReleaser.
func NewWith[T any](p *T, fn Releaser[T]) *Shared[T] {
	s := new(Shared[T])
	s.adopt(p, fn)
	return s
}

// Clone returns a new handle co-owning s's target.
func (s *Shared[T]) Clone() *Shared[T] {
	s.live()
	s.count.Acquire()

	c := &Shared[T]{
		target:   s.target,
		count:    s.count,
		releaser: s.releaser,
		state:    stateLive,
	}
	c.guard.init()
	return c
}

// Assign makes s co-own rhs's target and returns s.
//
// rhs's count is incremented before s gives up its previous target, so
// assigning a handle to itself, or to a handle that already shares its
// target, never releases anything. The previous target is disposed of with
// the previous releaser when s was its last owner.
func (s *Shared[T]) Assign(rhs *Shared[T]) *Shared[T] {
	rhs.live()
	s.live()

	rhs.count.Acquire()
	s.drop()

	s.target = rhs.target
	s.count = rhs.count
	s.releaser = rhs.releaser
	return s
}

// Deref returns the target for reading or writing its value or fields.
// It panics with ErrEmpty if s owns nothing.
func (s *Shared[T]) Deref() *T {
	s.inspect()
	if s.target == nil {
		panic(ErrEmpty)
	}
	return s.target
}

// Get returns the target, or nil for an empty handle. Ownership is unchanged.
func (s *Shared[T]) Get() *T {
	s.inspect()
	return s.target
}

// Valid reports whether s owns a target.
func (s *Shared[T]) Valid() bool {
	return s.Get() != nil
}

// Unique reports whether s is the only owner of its target.
func (s *Shared[T]) Unique() bool {
	return s.UseCount() == 1
}

// UseCount returns the number of handles sharing s's owner count.
// An empty handle reports 1.
func (s *Shared[T]) UseCount() int {
	s.inspect()
	if s.state == stateZero {
		return 1
	}
	return s.count.Load()
}

// Release hands the target to the caller without disposing of it and leaves
// s empty. The caller becomes responsible for the target's lifetime.
//
// Release is only meaningful when s is Unique. Other owners of a shared
// target keep referencing it and will still run the releaser on it; that
// misuse is logged, and panics with ErrNotUnique when built with the
// smartptr_assert tag.
func (s *Shared[T]) Release() *T {
	s.live()

	p := s.target
	if n := s.count.Load(); p != nil && n > 1 {
		debug.Assert(false, ErrNotUnique)
		Logger().Error(ErrNotUnique, "target still has other owners",
			"type", typeName[T](), "owners", n)
	}

	if s.count.Drop() {
		s.count.Free()
	}
	s.adopt(nil, nil)
	return p
}

// Reset gives up s's target and leaves s empty with its own fresh count.
func (s *Shared[T]) Reset() {
	s.ResetWith(nil, nil)
}

// ResetTo gives up s's target and takes ownership of p with the default
// releaser.
func (s *Shared[T]) ResetTo(p *T) {
	s.ResetWith(p, nil)
}

// ResetWith gives up s's target and takes ownership of p, to be disposed of
// with fn (DefaultReleaser when nil).
//
// The previous target is released with its own releaser if s was its last
// owner. s never shares a count with its former co-owners afterwards.
// p must not be the target s currently owns.
func (s *Shared[T]) ResetWith(p *T, fn Releaser[T]) {
	s.live()
	s.drop()
	s.adopt(p, fn)
}

// Destroy ends s's ownership, releasing the target if s was its last owner.
// s must not be used afterwards; a second Destroy is a no-op.
func (s *Shared[T]) Destroy() {
	switch s.state {
	case stateDestroyed:
		return
	case stateLive:
		s.guard.check()
		s.drop()
		s.guard.close()
	}

	s.target = nil
	s.count = nil
	s.releaser = nil
	s.state = stateDestroyed
}

// Close calls Destroy. It always returns nil.
func (s *Shared[T]) Close() error {
	s.Destroy()
	return nil
}

// String implements fmt.Stringer.
func (s *Shared[T]) String() string {
	if s.state == stateDestroyed {
		return fmt.Sprintf("Shared[%s](destroyed)", typeName[T]())
	}
	if s.target == nil {
		return fmt.Sprintf("Shared[%s](empty)", typeName[T]())
	}
	return fmt.Sprintf("Shared[%s](%p, owners=%d)", typeName[T](), s.target, s.count.Load())
}

func (s *Shared[T]) adopt(p *T, fn Releaser[T]) {
	if fn == nil {
		fn = DefaultReleaser[T]()
	}
	s.guard.init()
	s.target = p
	s.count = refcount.New()
	s.releaser = fn
	s.state = stateLive
}

// live makes the zero value usable and rejects destroyed or copied handles.
func (s *Shared[T]) live() {
	if s.state == stateZero {
		s.adopt(nil, nil)
		return
	}
	s.inspect()
}

// inspect rejects destroyed or copied handles without allocating.
func (s *Shared[T]) inspect() {
	switch s.state {
	case stateDestroyed:
		panic(ErrDestroyed)
	case stateLive:
		s.guard.check()
	}
}

// drop gives up s's share of its current count. The last owner disposes of
// the target and frees the count.
func (s *Shared[T]) drop() {
	if !s.count.Drop() {
		return
	}
	if s.target != nil {
		if log := Logger().V(2); log.Enabled() {
			log.Info("releasing target", "type", typeName[T](), "ptr", fmt.Sprintf("%p", s.target))
		}
		s.releaser(s.target)
	}
	s.target = nil
	s.count.Free()
}

func typeName[T any]() string {
	return reflect.TypeOf((*T)(nil)).Elem().String()
}
