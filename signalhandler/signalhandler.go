// Package signalhandler ties process signals to context cancellation and
// sizes worker pools.
package signalhandler

import (
	"context"
	"os"
	"os/signal"
	"runtime"
	"syscall"
)

// NotifyContext returns a context cancelled on SIGINT or SIGTERM. A second
// signal after cancellation falls through to the default handler and ends
// the process.
func NotifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		stop()
	}()
	return ctx, stop
}

// GetOptimalProcs returns the number of worker goroutines for decoding and
// hashing: three quarters of the CPUs, at least one.
func GetOptimalProcs() int {
	maxProcs := (runtime.NumCPU() * 3) / 4
	if maxProcs < 1 {
		maxProcs = 1
	}
	return maxProcs
}
