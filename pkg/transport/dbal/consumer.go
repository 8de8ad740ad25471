package dbal

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/iota-uz/iota-mq/pkg/retry"
	"github.com/iota-uz/iota-mq/pkg/transport"
	"github.com/sirupsen/logrus"
)

// Consumer claims rows of one queue by writing its identifier into
// consumer_id. The conditional UPDATE is the only coordination between
// competing consumers. A Consumer must be driven by one goroutine and holds
// at most one outstanding message: the message returned by Receive has to be
// acknowledged or rejected before Receive is called again, otherwise the
// next Receive fails with ErrProtocolViolation.
type Consumer struct {
	session         *Session
	queue           transport.Queue
	consumerID      string
	pollingInterval time.Duration
	maxAttempts     int

	logger  *logrus.Entry
	metrics *metrics
}

var _ transport.Consumer = (*Consumer)(nil)

func (c *Consumer) Queue() transport.Queue {
	return c.queue
}

func (c *Consumer) ConsumerID() string {
	return c.consumerID
}

func (c *Consumer) PollingInterval() time.Duration {
	return c.pollingInterval
}

// SetPollingInterval sets the pause between claim attempts. Non-positive
// values fall back to DefaultPollingInterval.
func (c *Consumer) SetPollingInterval(d time.Duration) {
	if d <= 0 {
		d = DefaultPollingInterval
	}
	c.pollingInterval = d
}

// Receive claims the next message of the queue by priority, then id. It polls
// until a claim succeeds or timeout elapses, in which case it returns a nil
// message and a nil error. A timeout <= 0 probes the queue exactly once.
func (c *Consumer) Receive(ctx context.Context, timeout time.Duration) (_ transport.Message, err error) {
	conn := c.session.conn
	ctx, span := startSpan(ctx, "mq.receive", conn.TableName(), c.queue.Name())
	defer func() { endSpan(span, err) }()

	d, err := conn.Dialect()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	for {
		m, err := c.receiveMessage(ctx, d)
		if err != nil {
			c.observeReceive(start, "error")
			return nil, err
		}
		if m != nil {
			c.observeReceive(start, "hit")
			return m, nil
		}

		if timeout <= 0 {
			c.observeReceive(start, "timeout")
			return nil, nil
		}
		remaining := timeout - time.Since(start)
		if remaining <= 0 {
			c.observeReceive(start, "timeout")
			return nil, nil
		}
		if err := sleep(ctx, min(c.pollingInterval, remaining)); err != nil {
			return nil, err
		}
		if time.Since(start) >= timeout {
			c.observeReceive(start, "timeout")
			return nil, nil
		}
	}
}

// receiveMessage runs one claim attempt. A nil message means nothing was
// claimed.
func (c *Consumer) receiveMessage(ctx context.Context, d Dialect) (*Message, error) {
	conn := c.session.conn
	claimed, err := conn.Execute(ctx, d.ClaimQuery(conn.TableName()), c.consumerID, c.queue.Name())
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if d.IsTransientError(err) {
			// Another claimer holds the row; treat as an empty poll.
			c.metrics.claimTotal.WithLabelValues(conn.TableName(), c.queue.Name(), "contended").Inc()
			c.logger.WithError(err).Debug("claim contended")
			return nil, nil
		}
		return nil, fmt.Errorf("claim message: %w", err)
	}
	if claimed == 0 {
		c.metrics.claimTotal.WithLabelValues(conn.TableName(), c.queue.Name(), "miss").Inc()
		return nil, nil
	}
	c.metrics.claimTotal.WithLabelValues(conn.TableName(), c.queue.Name(), "hit").Inc()

	var rows []row
	if err := conn.selectAll(ctx, &rows, fmt.Sprintf(selectClaimedQuery, conn.TableName()), c.consumerID, c.queue.Name()); err != nil {
		return nil, fmt.Errorf("fetch claimed message: %w", err)
	}
	switch len(rows) {
	case 0:
		return nil, protocolViolation("expected one record but got nothing. consumer_id: %q", c.consumerID)
	case 1:
	default:
		return nil, protocolViolation("expected one record but got %d. consumer_id: %q", len(rows), c.consumerID)
	}

	m, err := c.session.messageFromRow(rows[0])
	if err != nil {
		return nil, err
	}
	c.logger.WithFields(logrus.Fields{
		"message_id":  m.ID(),
		"priority":    m.Priority(),
		"redelivered": m.IsRedelivered(),
		"body":        truncateString(m.Body(), c.session.opts.BodyLogMaxLen),
	}).Debug("message received")
	return m, nil
}

// Acknowledge deletes the row of msg. A message can be acknowledged once.
func (c *Consumer) Acknowledge(ctx context.Context, msg transport.Message) (err error) {
	conn := c.session.conn
	ctx, span := startSpan(ctx, "mq.acknowledge", conn.TableName(), c.queue.Name())
	defer func() { endSpan(span, err) }()

	m, err := asMessage(msg)
	if err != nil {
		return err
	}
	d, err := conn.Dialect()
	if err != nil {
		return err
	}
	if err := c.deleteMessage(ctx, d, m); err != nil {
		return err
	}

	c.metrics.ackTotal.WithLabelValues(conn.TableName(), c.queue.Name()).Inc()
	c.logger.WithField("message_id", m.ID()).Debug("message acknowledged")
	return nil
}

// Reject deletes the row of msg. With requeue a fresh unclaimed copy is
// inserted, marked redelivered and carrying the priority in its headers.
// msg itself is left untouched.
func (c *Consumer) Reject(ctx context.Context, msg transport.Message, requeue bool) (err error) {
	conn := c.session.conn
	ctx, span := startSpan(ctx, "mq.reject", conn.TableName(), c.queue.Name())
	defer func() { endSpan(span, err) }()

	m, err := asMessage(msg)
	if err != nil {
		return err
	}
	d, err := conn.Dialect()
	if err != nil {
		return err
	}
	if err := c.deleteMessage(ctx, d, m); err != nil {
		return err
	}

	c.metrics.rejectTotal.WithLabelValues(conn.TableName(), c.queue.Name(), strconv.FormatBool(requeue)).Inc()
	if !requeue {
		c.logger.WithField("message_id", m.ID()).Debug("message rejected")
		return nil
	}

	requeued := NewMessage(m.Body(), m.Properties(), m.Headers())
	requeued.SetPriority(m.Priority())
	requeued.SetHeader("priority", strconv.Itoa(m.Priority()))

	r, err := newRow(c.queue.Name(), requeued, true)
	if err != nil {
		return fmt.Errorf("encode requeued message: %w", err)
	}

	var inserted int64
	err = c.policy("requeue").Do(ctx, func(ctx context.Context) error {
		var ierr error
		_, inserted, ierr = conn.insert(ctx, d, r)
		return ierr
	})
	if err != nil {
		return c.storeError("requeue", err)
	}
	if inserted != 1 {
		return protocolViolation("expected record was inserted but it is not. message: %q", r.String())
	}

	c.logger.WithField("message_id", m.ID()).Debug("message requeued")
	return nil
}

func (c *Consumer) deleteMessage(ctx context.Context, d Dialect, m *Message) error {
	conn := c.session.conn
	query := fmt.Sprintf(deleteClaimedQuery, conn.TableName())

	var deleted int64
	err := c.policy("delete").Do(ctx, func(ctx context.Context) error {
		var derr error
		deleted, derr = conn.Execute(ctx, query, m.ID(), c.consumerID)
		return derr
	})
	if err != nil {
		return c.storeError("delete", err)
	}
	if deleted != 1 {
		return protocolViolation("expected record was removed but it is not. id: %q", strconv.FormatInt(m.ID(), 10))
	}
	return nil
}

// policy retries statements that failed on lock contention without backoff.
func (c *Consumer) policy(operation string) retry.Policy {
	conn := c.session.conn
	return retry.Policy{
		MaxAttempts: c.maxAttempts,
		Retryable:   conn.IsTransientError,
		OnRetry: func(attempt int, err error) {
			c.metrics.retryTotal.WithLabelValues(conn.TableName(), operation).Inc()
			c.logger.WithError(err).WithFields(logrus.Fields{
				"operation": operation,
				"attempt":   attempt,
			}).Warn("transient store error, retrying")
		},
	}
}

// storeError turns spent transient retries into a protocol violation and
// annotates anything else.
func (c *Consumer) storeError(operation string, err error) error {
	if errors.Is(err, retry.ErrAttemptsExhausted) {
		return protocolViolation("%s failed after %d attempts: %v", operation, c.maxAttempts, err)
	}
	return fmt.Errorf("%s message: %w", operation, err)
}

func (c *Consumer) observeReceive(start time.Time, result string) {
	c.metrics.receiveLatency.
		WithLabelValues(c.session.conn.TableName(), c.queue.Name(), result).
		Observe(time.Since(start).Seconds())
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
