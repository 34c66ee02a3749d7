package smartptr

import (
	"sync/atomic"

	"github.com/go-logr/logr"
)

var logger atomic.Pointer[logr.Logger]

func init() {
	SetLogger(logr.Discard())
}

// SetLogger sets the logger used to report ownership events.
//
// Releases of a target are logged at V(2). Misuse that the handle cannot
// reject, such as Release on a shared target, is logged as an error.
// Pass logr.Discard() to silence the package again.
func SetLogger(l logr.Logger) {
	logger.Store(&l)
}

// Logger returns the package logger.
func Logger() logr.Logger {
	return *logger.Load()
}
