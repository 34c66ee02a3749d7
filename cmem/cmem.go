//go:build (darwin || freebsd || linux) && !ios && !android && (amd64 || arm64)

// Package cmem allocates single objects on the C heap, outside the reach of
// the Go collector, and pairs them with smartptr handles so that they are
// freed exactly once, when their last owner lets go.
//
// The C library is loaded at runtime with purego; no cgo is required. Set
// SMARTPTR_LIBC to an explicit library path to skip discovery.
//
// Only types without Go pointers may live on the C heap: the collector does
// not scan C memory, so a Go pointer stored there could be collected while
// still referenced.
package cmem

import (
	"reflect"
	"sync/atomic"
	"unsafe"

	"github.com/pkg/errors"

	"github.com/obinnaokechukwu/smartptr"
	"github.com/obinnaokechukwu/smartptr/internal/bindings"
)

var (
	// ErrNotLoaded indicates the C library is not loaded.
	ErrNotLoaded = bindings.ErrNotLoaded

	// ErrLibraryNotFound indicates the C library could not be found.
	ErrLibraryNotFound = bindings.ErrLibraryNotFound

	// ErrOutOfMemory indicates the C allocator returned NULL.
	ErrOutOfMemory = errors.New("smartptr: out of memory")

	// ErrPointerType indicates a type holding Go pointers, which cannot be
	// placed on the C heap.
	ErrPointerType = errors.New("smartptr: type contains Go pointers")
)

var live atomic.Int64

// Load loads the C library. It is called automatically by Alloc but can be
// called explicitly to check for errors. It is safe to call multiple times.
func Load() error {
	return bindings.Load(smartptr.Logger())
}

// IsLoaded returns true if the C library has been successfully loaded.
func IsLoaded() bool {
	return bindings.IsLoaded()
}

// Alloc returns a zeroed T on the C heap. The result must eventually be
// passed to Free exactly once, usually by a smartptr handle.
func Alloc[T any]() (*T, error) {
	if err := Load(); err != nil {
		return nil, err
	}
	if err := checkPointerFree(reflect.TypeOf((*T)(nil)).Elem()); err != nil {
		return nil, err
	}

	size := unsafe.Sizeof(*new(T))
	if size == 0 {
		size = 1
	}
	p := bindings.Calloc(1, size)
	if p == nil {
		return nil, ErrOutOfMemory
	}
	live.Add(1)
	return (*T)(p), nil
}

// Free returns p to the C heap. p must come from Alloc and must not be used
// afterwards. Free has the shape of a smartptr.Releaser.
func Free[T any](p *T) {
	if p == nil {
		return
	}
	bindings.Free(unsafe.Pointer(p))
	live.Add(-1)
}

// NewShared allocates a zeroed T on the C heap and returns a handle that
// frees it when its last owner is done.
func NewShared[T any]() (*smartptr.Shared[T], error) {
	p, err := Alloc[T]()
	if err != nil {
		return nil, err
	}
	return smartptr.NewWith(p, Free[T]), nil
}

// Live returns the number of objects allocated by Alloc and not yet freed.
// Useful for debugging and testing leaks.
func Live() int64 {
	return live.Load()
}

func checkPointerFree(t reflect.Type) error {
	if hasPointers(t) {
		return errors.Wrapf(ErrPointerType, "cannot allocate %s on the C heap", t)
	}
	return nil
}

func hasPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return false
	case reflect.Array:
		return t.Len() > 0 && hasPointers(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if hasPointers(t.Field(i).Type) {
				return true
			}
		}
		return false
	default:
		// Pointers, strings, slices, maps, chans, funcs, interfaces and
		// unsafe.Pointer all carry references the collector must see.
		return true
	}
}
