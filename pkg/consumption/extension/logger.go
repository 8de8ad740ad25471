package extension

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/iota-uz/iota-mq/pkg/consumption"
)

// Logger installs entry on the run context and reports how the run ended.
type Logger struct {
	consumption.NoopExtension

	entry *logrus.Entry
}

func NewLogger(entry *logrus.Entry) *Logger {
	return &Logger{entry: entry}
}

func (e *Logger) OnStart(_ context.Context, c *consumption.Context) {
	c.SetLogger(e.entry)
	c.Logger().Info("consumption started")
}

func (e *Logger) OnInterrupted(_ context.Context, c *consumption.Context) {
	l := c.Logger().WithFields(logrus.Fields{
		"reason":    c.InterruptedReason(),
		"processed": c.Counter(consumption.CounterProcessedMessages),
	})
	if err := c.Err(); err != nil {
		l.WithError(err).Error("consumption interrupted")
		return
	}
	l.Info("consumption interrupted")
}
