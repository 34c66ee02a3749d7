// Package refcount provides the shared counter cells used by smartptr handles.
//
// A Cell is not synchronized. Handles that share a cell must be used from one
// goroutine at a time. The process-wide Live gauge is atomic because cells
// belonging to unrelated handles may be allocated and freed concurrently.
package refcount

import (
	"sync/atomic"

	"github.com/obinnaokechukwu/smartptr/internal/debug"
)

var live atomic.Int64

// Cell is a mutable owner count shared by pointer between co-owners.
type Cell struct {
	n     int
	freed bool
}

// New allocates a cell holding 1.
func New() *Cell {
	live.Add(1)
	return &Cell{n: 1}
}

// Acquire records one more owner.
func (c *Cell) Acquire() {
	c.check()
	c.n++
}

// Drop records one fewer owner and reports whether none remain.
func (c *Cell) Drop() bool {
	c.check()
	debug.Assert(c.n > 0, "refcount: drop below zero")
	c.n--
	return c.n == 0
}

// Load returns the current owner count.
func (c *Cell) Load() int {
	c.check()
	return c.n
}

// Free returns the cell's storage. The cell must not be used afterwards.
func (c *Cell) Free() {
	c.check()
	c.freed = true
	live.Add(-1)
}

func (c *Cell) check() {
	if c.freed {
		panic("refcount: use of freed cell")
	}
}

// Live returns the number of cells allocated and not yet freed.
// Useful for debugging and testing count storage leaks.
func Live() int64 {
	return live.Load()
}
