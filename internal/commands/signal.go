package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// notifyContext is cancelled on the first interrupt so running requests
// stop and partial results are still reported.
func notifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
