package extension

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/iota-uz/iota-mq/pkg/consumption"
)

// LimitConsumedMessages interrupts the run once limit messages were
// processed.
type LimitConsumedMessages struct {
	consumption.NoopExtension

	limit int64
}

func NewLimitConsumedMessages(limit int64) *LimitConsumedMessages {
	return &LimitConsumedMessages{limit: limit}
}

func (e *LimitConsumedMessages) OnBeforeReceive(_ context.Context, c *consumption.Context) {
	e.check(c)
}

func (e *LimitConsumedMessages) OnPostReceived(_ context.Context, c *consumption.Context) {
	e.check(c)
}

func (e *LimitConsumedMessages) check(c *consumption.Context) {
	processed := c.Counter(consumption.CounterProcessedMessages)
	if processed < e.limit {
		return
	}
	c.Logger().WithFields(logrus.Fields{
		"processed":     processed,
		"message-limit": e.limit,
	}).Debug("Execution interrupted as message limit exceeded.")
	c.SetExecutionInterrupted(true, fmt.Sprintf("The message limit reached. limit: %d", e.limit))
}
