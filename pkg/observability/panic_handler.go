package observability

import (
	"runtime/debug"
)

// RecoverPanic recovers from a panic and logs it with the full stack trace.
// Call it in a defer at the top of goroutines that must not take the process
// down. The panic is not re-raised.
func RecoverPanic(logger *Logger, context string) {
	if r := recover(); r != nil {
		logger.WithField("panic", r).
			WithField("stack", string(debug.Stack())).
			WithField("context", context).
			Error("PANIC recovered")
	}
}
