package extension

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/iota-uz/iota-mq/pkg/consumption"
)

// Signal interrupts the run on the first hook after a termination signal.
type Signal struct {
	consumption.NoopExtension

	signals []os.Signal
	ch      chan os.Signal
}

// NewSignal listens for signals, or SIGTERM, SIGINT and SIGQUIT when none
// are given.
func NewSignal(signals ...os.Signal) *Signal {
	if len(signals) == 0 {
		signals = []os.Signal{syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT}
	}
	return &Signal{signals: signals, ch: make(chan os.Signal, 1)}
}

func (e *Signal) OnStart(_ context.Context, _ *consumption.Context) {
	signal.Notify(e.ch, e.signals...)
}

func (e *Signal) OnBeforeReceive(_ context.Context, c *consumption.Context) {
	e.check(c)
}

func (e *Signal) OnPostReceived(_ context.Context, c *consumption.Context) {
	e.check(c)
}

func (e *Signal) OnIdle(_ context.Context, c *consumption.Context) {
	e.check(c)
}

func (e *Signal) OnInterrupted(_ context.Context, _ *consumption.Context) {
	signal.Stop(e.ch)
}

func (e *Signal) check(c *consumption.Context) {
	select {
	case sig := <-e.ch:
		c.Logger().WithField("signal", sig.String()).Debug("Execution interrupted by signal.")
		c.SetExecutionInterrupted(true, fmt.Sprintf("Interrupt execution by signal %q.", sig.String()))
	default:
	}
}
