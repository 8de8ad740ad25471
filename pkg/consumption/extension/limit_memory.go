package extension

import (
	"context"
	"fmt"
	"runtime"

	"github.com/sirupsen/logrus"

	"github.com/iota-uz/iota-mq/pkg/consumption"
)

// LimitConsumerMemory interrupts the run once the heap grows past limit
// bytes.
type LimitConsumerMemory struct {
	consumption.NoopExtension

	limit uint64
	usage func() uint64
}

func NewLimitConsumerMemory(limit uint64) *LimitConsumerMemory {
	return &LimitConsumerMemory{limit: limit, usage: heapAlloc}
}

func (e *LimitConsumerMemory) OnBeforeReceive(_ context.Context, c *consumption.Context) {
	e.check(c)
}

func (e *LimitConsumerMemory) OnPostReceived(_ context.Context, c *consumption.Context) {
	e.check(c)
}

func (e *LimitConsumerMemory) OnIdle(_ context.Context, c *consumption.Context) {
	e.check(c)
}

func (e *LimitConsumerMemory) check(c *consumption.Context) {
	used := e.usage()
	if used < e.limit {
		return
	}
	c.Logger().WithFields(logrus.Fields{
		"memory-used":  used,
		"memory-limit": e.limit,
	}).Debug("Execution interrupted as memory limit reached.")
	c.SetExecutionInterrupted(true, fmt.Sprintf("The memory limit reached. limit: %d, used: %d", e.limit, used))
}

func heapAlloc() uint64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return ms.HeapAlloc
}
