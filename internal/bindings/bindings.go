//go:build (darwin || freebsd || linux) && !ios && !android && (amd64 || arm64)

// Package bindings loads the C runtime library and registers the allocator
// functions used by cmem, using purego.
package bindings

import (
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/go-logr/logr"
	"github.com/pkg/errors"

	"github.com/obinnaokechukwu/smartptr/internal/platform"
)

// EnvLibC names the environment variable that overrides C library discovery
// with an explicit path.
const EnvLibC = "SMARTPTR_LIBC"

// ErrNotLoaded is returned when allocator functions are used before Load().
var ErrNotLoaded = errors.New("smartptr: C library not loaded; call cmem.Load() first")

// ErrLibraryNotFound is returned when the C library cannot be found.
var ErrLibraryNotFound = errors.New("smartptr: C library not found")

var (
	libC uintptr
	path string

	loaded   bool
	loadOnce sync.Once
	loadErr  error
)

// Allocator bindings
var (
	calloc func(n, size uintptr) unsafe.Pointer
	free   func(ptr unsafe.Pointer)
)

// IsLoaded returns true if the C library has been successfully loaded.
func IsLoaded() bool {
	return loaded
}

// Path returns the library path or name that was opened.
func Path() string {
	return path
}

// Load opens the C library and registers the allocator bindings.
// It is safe to call multiple times; subsequent calls are no-ops.
func Load(log logr.Logger) error {
	loadOnce.Do(func() {
		loadErr = doLoad(log)
		if loadErr == nil {
			loaded = true
		}
	})
	return loadErr
}

func doLoad(log logr.Logger) error {
	var err error

	if explicit := os.Getenv(EnvLibC); explicit != "" {
		libC, err = tryOpen(explicit)
		if err != nil {
			return errors.Wrapf(err, "opening %s=%s", EnvLibC, explicit)
		}
		path = explicit
	} else {
		name, versions := platform.LibC()
		libC, path, err = loadLibrary(name, versions)
		if err != nil {
			return errors.Wrap(err, "loading C library")
		}
	}

	purego.RegisterLibFunc(&calloc, libC, "calloc")
	purego.RegisterLibFunc(&free, libC, "free")

	log.V(1).Info("loaded C library", "path", path,
		"goos", platform.GOOS(), "goarch", platform.GOARCH())
	return nil
}

// loadLibrary attempts to load a library by trying versioned names.
func loadLibrary(name string, versions []int) (uintptr, string, error) {
	for _, searchPath := range LibrarySearchPaths() {
		// Versioned names first (more specific)
		for _, ver := range versions {
			fullPath := filepath.Join(searchPath, platform.FormatLibraryName(name, ver))
			if lib, err := tryOpen(fullPath); err == nil {
				return lib, fullPath, nil
			}
		}

		fullPath := filepath.Join(searchPath, platform.FormatLibraryName(name, 0))
		if lib, err := tryOpen(fullPath); err == nil {
			return lib, fullPath, nil
		}
	}

	// Let the dynamic loader search on its own
	for _, ver := range versions {
		libName := platform.FormatLibraryName(name, ver)
		if lib, err := tryOpen(libName); err == nil {
			return lib, libName, nil
		}
	}
	libName := platform.FormatLibraryName(name, 0)
	if lib, err := tryOpen(libName); err == nil {
		return lib, libName, nil
	}

	return 0, "", errors.Wrap(ErrLibraryNotFound, name)
}

func tryOpen(path string) (uintptr, error) {
	return purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
}

// LibrarySearchPaths returns platform-specific library search paths.
func LibrarySearchPaths() []string {
	var paths []string

	switch runtime.GOOS {
	case "linux":
		if ldPath := os.Getenv("LD_LIBRARY_PATH"); ldPath != "" {
			paths = append(paths, filepath.SplitList(ldPath)...)
		}
		paths = append(paths,
			"/lib/x86_64-linux-gnu",
			"/lib/aarch64-linux-gnu",
			"/usr/lib/x86_64-linux-gnu",
			"/usr/lib/aarch64-linux-gnu",
			"/lib64",
			"/usr/lib",
			"/lib",
		)

	case "darwin":
		if dyldPath := os.Getenv("DYLD_LIBRARY_PATH"); dyldPath != "" {
			paths = append(paths, filepath.SplitList(dyldPath)...)
		}
		// libSystem lives in the dyld shared cache but still resolves by path.
		paths = append(paths, "/usr/lib")

	case "freebsd":
		if ldPath := os.Getenv("LD_LIBRARY_PATH"); ldPath != "" {
			paths = append(paths, filepath.SplitList(ldPath)...)
		}
		paths = append(paths,
			"/lib",
			"/usr/lib",
		)
	}

	return paths
}

// Calloc allocates n zeroed objects of size bytes.
// Returns nil if the library is not loaded or allocation fails.
func Calloc(n, size uintptr) unsafe.Pointer {
	if !loaded || calloc == nil {
		return nil
	}
	return calloc(n, size)
}

// Free releases memory obtained from Calloc. A nil ptr is ignored.
func Free(ptr unsafe.Pointer) {
	if !loaded || free == nil || ptr == nil {
		return
	}
	free(ptr)
}
