//go:build !smartptr_assert

package debug

// Enabled reports whether assertions are compiled in.
const Enabled = false

// Assert is a no-op without the smartptr_assert build tag.
func Assert(cond bool, msg interface{}) {}
