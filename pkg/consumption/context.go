package consumption

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iota-uz/iota-mq/pkg/transport"
)

const CounterProcessedMessages = "processed_messages"

// Context is the mutable state of one consumption run, shared by the driver
// loop and every extension. It is created once per run; the per-cycle fields
// are reset before each receive attempt.
type Context struct {
	session   transport.Session
	startedAt time.Time
	logger    *logrus.Entry
	counters  map[string]int64

	queue     transport.Queue
	consumer  transport.Consumer
	processor MessageProcessor
	message   transport.Message
	status    Status

	err         error
	interrupted bool
	reason      string
}

func NewContext(session transport.Session) *Context {
	return &Context{
		session:   session,
		startedAt: time.Now(),
		logger:    logrusNop(),
		counters:  map[string]int64{},
	}
}

func (c *Context) Session() transport.Session {
	return c.session
}

func (c *Context) StartedAt() time.Time {
	return c.startedAt
}

func (c *Context) Queue() transport.Queue {
	return c.queue
}

func (c *Context) Consumer() transport.Consumer {
	return c.consumer
}

func (c *Context) Processor() MessageProcessor {
	return c.processor
}

// Message returns the message of the current cycle, or nil.
func (c *Context) Message() transport.Message {
	return c.message
}

func (c *Context) Status() Status {
	return c.status
}

// SetStatus settles the current message. Set before processing, it skips the
// processor.
func (c *Context) SetStatus(status Status) {
	c.status = status
}

func (c *Context) Err() error {
	return c.err
}

func (c *Context) SetErr(err error) {
	c.err = err
}

func (c *Context) Logger() *logrus.Entry {
	return c.logger
}

func (c *Context) SetLogger(logger *logrus.Entry) {
	if logger == nil {
		logger = logrusNop()
	}
	c.logger = logger
}

func (c *Context) IsExecutionInterrupted() bool {
	return c.interrupted
}

func (c *Context) InterruptedReason() string {
	return c.reason
}

func (c *Context) SetExecutionInterrupted(interrupted bool, reason string) {
	c.interrupted = interrupted
	c.reason = reason
}

func (c *Context) Counter(name string) int64 {
	return c.counters[name]
}

func (c *Context) IncrementCounter(name string) int64 {
	c.counters[name]++
	return c.counters[name]
}

func (c *Context) startCycle(b binding, consumer transport.Consumer) {
	c.queue = b.queue
	c.consumer = consumer
	c.processor = b.processor
	c.message = nil
	c.status = ""
}
