package extension

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iota-uz/iota-mq/pkg/consumption"
)

// LimitConsumptionTime interrupts the run once the deadline has passed.
type LimitConsumptionTime struct {
	consumption.NoopExtension

	deadline time.Time
	now      func() time.Time
}

func NewLimitConsumptionTime(deadline time.Time) *LimitConsumptionTime {
	return &LimitConsumptionTime{deadline: deadline, now: time.Now}
}

func (e *LimitConsumptionTime) OnBeforeReceive(_ context.Context, c *consumption.Context) {
	e.check(c)
}

func (e *LimitConsumptionTime) OnPostReceived(_ context.Context, c *consumption.Context) {
	e.check(c)
}

func (e *LimitConsumptionTime) OnIdle(_ context.Context, c *consumption.Context) {
	e.check(c)
}

func (e *LimitConsumptionTime) check(c *consumption.Context) {
	now := e.now()
	if now.Before(e.deadline) {
		return
	}
	c.Logger().WithFields(logrus.Fields{
		"now":        now.Format(time.RFC3339),
		"time-limit": e.deadline.Format(time.RFC3339),
	}).Debug("Execution interrupted as limit time has passed.")
	c.SetExecutionInterrupted(true, "The limit time has passed.")
}
