package smartptr

import "github.com/pkg/errors"

// Contract violations. Handles panic with these values; they are never
// returned. Use errors.Is on the recovered value to tell them apart.
var (
	// ErrEmpty indicates a dereference of a handle that owns nothing.
	ErrEmpty = errors.New("smartptr: dereference of empty handle")

	// ErrDestroyed indicates use of a handle after Destroy.
	ErrDestroyed = errors.New("smartptr: handle used after Destroy")

	// ErrCopied indicates a handle was copied by value instead of Clone.
	ErrCopied = errors.New("smartptr: handle copied by value; use Clone")

	// ErrNotUnique indicates Release on a handle whose target has other owners.
	ErrNotUnique = errors.New("smartptr: release of a shared target")
)
