//go:build (darwin || freebsd || linux) && !ios && !android && (amd64 || arm64)

package cmem

import (
	"errors"
	"testing"

	"github.com/obinnaokechukwu/smartptr"
)

type vec3 struct {
	X, Y, Z float64
}

type header struct {
	ID    uint64
	Flags [4]uint8
	Pos   vec3
}

type withSlice struct {
	N    int
	Data []byte
}

func requireLibC(t *testing.T) bool {
	t.Helper()
	if err := Load(); err != nil {
		t.Skipf("C library not available: %v", err)
		return false
	}
	return true
}

func TestAllocZeroed(t *testing.T) {
	if !requireLibC(t) {
		return
	}

	before := Live()
	h, err := Alloc[header]()
	if err != nil {
		t.Fatalf("Alloc failed: %v", err)
	}
	if *h != (header{}) {
		t.Errorf("Alloc returned non-zero memory: %+v", *h)
	}
	if got := Live(); got != before+1 {
		t.Errorf("Live() = %d, want %d", got, before+1)
	}

	h.ID = 7
	h.Pos.Y = 1.5
	if h.ID != 7 || h.Pos.Y != 1.5 {
		t.Errorf("writes through C memory not visible: %+v", *h)
	}

	Free(h)
	if got := Live(); got != before {
		t.Errorf("Live() = %d after Free, want %d", got, before)
	}
}

func TestAllocZeroSize(t *testing.T) {
	if !requireLibC(t) {
		return
	}

	p, err := Alloc[struct{}]()
	if err != nil {
		t.Fatalf("Alloc of empty struct failed: %v", err)
	}
	if p == nil {
		t.Fatal("Alloc returned nil for empty struct")
	}
	Free(p)
}

func TestAllocRejectsPointerTypes(t *testing.T) {
	if !requireLibC(t) {
		return
	}

	if _, err := Alloc[withSlice](); !errors.Is(err, ErrPointerType) {
		t.Errorf("Alloc[withSlice] error = %v, want ErrPointerType", err)
	}
	if _, err := Alloc[string](); !errors.Is(err, ErrPointerType) {
		t.Errorf("Alloc[string] error = %v, want ErrPointerType", err)
	}
	if _, err := Alloc[*int](); !errors.Is(err, ErrPointerType) {
		t.Errorf("Alloc[*int] error = %v, want ErrPointerType", err)
	}
}

func TestFreeNil(t *testing.T) {
	before := Live()
	Free[header](nil)
	if got := Live(); got != before {
		t.Errorf("Free(nil) changed Live() to %d", got)
	}
}

func TestNewSharedFreesOnLastOwner(t *testing.T) {
	if !requireLibC(t) {
		return
	}

	before := Live()

	a, err := NewShared[vec3]()
	if err != nil {
		t.Fatalf("NewShared failed: %v", err)
	}
	a.Deref().X = 3

	b := a.Clone()
	if b.Deref().X != 3 {
		t.Errorf("clone sees X = %v, want 3", b.Deref().X)
	}

	a.Destroy()
	if got := Live(); got != before+1 {
		t.Fatalf("object freed while still owned: Live() = %d", got)
	}

	b.Destroy()
	if got := Live(); got != before {
		t.Errorf("object not freed by last owner: Live() = %d, want %d", got, before)
	}
}

func TestResetWithFree(t *testing.T) {
	if !requireLibC(t) {
		return
	}

	before := Live()

	h := smartptr.Empty[vec3]()
	defer h.Destroy()

	p1, err := Alloc[vec3]()
	if err != nil {
		t.Fatalf("Alloc failed: %v", err)
	}
	h.ResetWith(p1, Free[vec3])

	p2, err := Alloc[vec3]()
	if err != nil {
		t.Fatalf("Alloc failed: %v", err)
	}
	h.ResetWith(p2, Free[vec3])
	if got := Live(); got != before+1 {
		t.Errorf("Live() = %d, want %d after replacing the target", got, before+1)
	}

	h.Reset()
	if got := Live(); got != before {
		t.Errorf("Live() = %d, want %d after Reset", got, before)
	}
}

func TestReleaseHandsOverOwnership(t *testing.T) {
	if !requireLibC(t) {
		return
	}

	before := Live()

	h, err := NewShared[header]()
	if err != nil {
		t.Fatalf("NewShared failed: %v", err)
	}
	want := h.Get()

	p := h.Release()
	h.Destroy()
	if p != want {
		t.Fatalf("Release returned %p, want %p", p, want)
	}
	if got := Live(); got != before+1 {
		t.Fatalf("released object was freed: Live() = %d", got)
	}

	Free(p)
	if got := Live(); got != before {
		t.Errorf("Live() = %d, want %d", got, before)
	}
}
