//go:build (darwin || freebsd || linux) && !ios && !android && (amd64 || arm64)

// Package platform describes how the C runtime library is named and found
// on the current operating system.
package platform

import (
	"fmt"
	"runtime"
)

// LibraryExtension is the file extension for shared libraries on this platform.
var LibraryExtension = ".so"

func init() {
	if runtime.GOOS == "darwin" {
		LibraryExtension = ".dylib"
	}
}

// FormatLibraryName returns the platform-specific library filename.
// A version of 0 yields the unversioned name.
//
// Examples:
//   - Linux:   FormatLibraryName("c", 6) -> "libc.so.6"
//   - FreeBSD: FormatLibraryName("c", 7) -> "libc.so.7"
//   - macOS:   FormatLibraryName("System.B", 0) -> "libSystem.B.dylib"
func FormatLibraryName(name string, version int) string {
	switch {
	case version <= 0:
		return "lib" + name + LibraryExtension
	case runtime.GOOS == "darwin":
		return fmt.Sprintf("lib%s.%d%s", name, version, LibraryExtension)
	default:
		return fmt.Sprintf("lib%s%s.%d", name, LibraryExtension, version)
	}
}

// LibC returns the base name and candidate versions of the C runtime library.
func LibC() (name string, versions []int) {
	switch runtime.GOOS {
	case "darwin":
		return "System.B", nil
	case "freebsd":
		return "c", []int{7}
	default:
		return "c", []int{6}
	}
}

// GOOS returns the current operating system.
func GOOS() string {
	return runtime.GOOS
}

// GOARCH returns the current architecture.
func GOARCH() string {
	return runtime.GOARCH
}
