package observability

import (
	"runtime/debug"

	"github.com/sirupsen/logrus"
)

// RecoverPanic recovers from a panic and logs it with a stack trace.
// Call it in a defer at the top of a goroutine; the panic is not re-raised.
//
//	go func() {
//	    defer observability.RecoverPanic(logger, "http server")
//	    ...
//	}()
func RecoverPanic(logger logrus.FieldLogger, where string) {
	if r := recover(); r != nil {
		logger.WithFields(logrus.Fields{
			"panic":   r,
			"stack":   string(debug.Stack()),
			"context": where,
		}).Error("PANIC recovered")
	}
}
