package consumption

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iota-uz/iota-mq/pkg/transport"
)

const DefaultReceiveTimeout = time.Second

type QueueConsumerOptions struct {
	// ReceiveTimeout is the budget of every receive attempt.
	ReceiveTimeout time.Duration

	Logger *logrus.Entry
}

func (o *QueueConsumerOptions) setDefaults() {
	if o.ReceiveTimeout == 0 {
		o.ReceiveTimeout = DefaultReceiveTimeout
	}
	if o.Logger == nil {
		o.Logger = logrusNop()
	}
}

type binding struct {
	queue     transport.Queue
	processor MessageProcessor
}

// QueueConsumer drives receive, process and settle cycles over its bound
// queues, round robin, until an extension interrupts the run or ctx ends.
type QueueConsumer struct {
	session   transport.Session
	extension Extension
	opts      QueueConsumerOptions
	bindings  []binding
}

func NewQueueConsumer(session transport.Session, extension Extension, opts QueueConsumerOptions) *QueueConsumer {
	opts.setDefaults()
	if extension == nil {
		extension = NoopExtension{}
	}
	return &QueueConsumer{
		session:   session,
		extension: extension,
		opts:      opts,
	}
}

// Bind routes messages of queueName to processor. Binding a queue twice
// replaces its processor.
func (qc *QueueConsumer) Bind(queueName string, processor MessageProcessor) *QueueConsumer {
	q := qc.session.CreateQueue(queueName)
	for i := range qc.bindings {
		if qc.bindings[i].queue == q {
			qc.bindings[i].processor = processor
			return qc
		}
	}
	qc.bindings = append(qc.bindings, binding{queue: q, processor: processor})
	return qc
}

// Consume runs until interrupted. runtimeExtension, when not nil, is chained
// after the extension given at construction. An interruption requested by an
// extension or by ctx returns nil; store and processor failures interrupt the
// run and are returned.
func (qc *QueueConsumer) Consume(ctx context.Context, runtimeExtension Extension) error {
	if len(qc.bindings) == 0 {
		return ErrNoBindings
	}

	ext := qc.extension
	if runtimeExtension != nil {
		ext = NewChainExtension(qc.extension, runtimeExtension)
	}

	consumers := make([]transport.Consumer, len(qc.bindings))
	for i, b := range qc.bindings {
		consumers[i] = qc.session.CreateConsumer(b.queue)
	}

	c := NewContext(qc.session)
	c.SetLogger(qc.opts.Logger)

	ext.OnStart(ctx, c)
	if c.IsExecutionInterrupted() {
		return qc.finish(ctx, ext, c)
	}

	for {
		for i, b := range qc.bindings {
			c.startCycle(b, consumers[i])

			if ctx.Err() != nil {
				return qc.cancel(ctx, ext, c)
			}

			ext.OnBeforeReceive(ctx, c)
			if c.IsExecutionInterrupted() {
				return qc.finish(ctx, ext, c)
			}

			msg, err := consumers[i].Receive(ctx, qc.opts.ReceiveTimeout)
			if err != nil {
				if ctx.Err() != nil {
					return qc.cancel(ctx, ext, c)
				}
				return qc.fail(ctx, ext, c, fmt.Errorf("receive from %s: %w", b.queue, err))
			}

			if msg == nil {
				ext.OnIdle(ctx, c)
			} else {
				c.message = msg
				if err := qc.handle(ctx, ext, c); err != nil {
					return qc.fail(ctx, ext, c, err)
				}
				ext.OnPostReceived(ctx, c)
			}

			if c.IsExecutionInterrupted() {
				return qc.finish(ctx, ext, c)
			}
		}
	}
}

func (qc *QueueConsumer) handle(ctx context.Context, ext Extension, c *Context) error {
	ext.OnPreReceived(ctx, c)

	status := c.Status()
	if status == "" {
		var err error
		status, err = c.Processor().Process(ctx, c.Message(), qc.session)
		if err != nil {
			return fmt.Errorf("process message from %s: %w", c.Queue(), err)
		}
	}

	var err error
	switch status {
	case StatusAck:
		err = c.Consumer().Acknowledge(ctx, c.Message())
	case StatusReject:
		err = c.Consumer().Reject(ctx, c.Message(), false)
	case StatusRequeue:
		err = c.Consumer().Reject(ctx, c.Message(), true)
	default:
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	if err != nil {
		return fmt.Errorf("settle message from %s as %s: %w", c.Queue(), status, err)
	}

	c.SetStatus(status)
	c.IncrementCounter(CounterProcessedMessages)
	c.Logger().WithFields(logrus.Fields{
		"queue":  c.Queue().Name(),
		"status": string(status),
	}).Debug("message processed")
	return nil
}

func (qc *QueueConsumer) cancel(ctx context.Context, ext Extension, c *Context) error {
	reason := "context canceled"
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		reason = "context deadline exceeded"
	}
	c.SetExecutionInterrupted(true, reason)
	return qc.finish(ctx, ext, c)
}

func (qc *QueueConsumer) fail(ctx context.Context, ext Extension, c *Context, err error) error {
	c.SetErr(err)
	c.SetExecutionInterrupted(true, err.Error())
	c.Logger().WithError(err).Error("consumption interrupted by error")
	ext.OnInterrupted(context.WithoutCancel(ctx), c)
	return err
}

func (qc *QueueConsumer) finish(ctx context.Context, ext Extension, c *Context) error {
	ext.OnInterrupted(context.WithoutCancel(ctx), c)
	return nil
}
