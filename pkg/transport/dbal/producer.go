package dbal

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/iota-uz/iota-mq/pkg/transport"
	"github.com/sirupsen/logrus"
)

// Producer inserts unclaimed rows.
type Producer struct {
	session *Session
	logger  *logrus.Entry
	metrics *metrics
}

var _ transport.Producer = (*Producer)(nil)

// Send stores msg on queue and assigns the generated id back to it. A message
// that already carries an id is bound to its row and is refused; send a copy
// built with NewMessage instead.
func (p *Producer) Send(ctx context.Context, queue transport.Queue, msg transport.Message) (err error) {
	conn := p.session.conn
	ctx, span := startSpan(ctx, "mq.send", conn.TableName(), queue.Name())
	defer func() { endSpan(span, err) }()

	m, err := asMessage(msg)
	if err != nil {
		return err
	}
	if id := m.ID(); id != 0 {
		return invalidConfig("message is already stored as row %d", id)
	}
	if queue.Name() == "" {
		return invalidConfig("queue name is empty")
	}
	d, err := conn.Dialect()
	if err != nil {
		return err
	}

	r, err := newRow(queue.Name(), m, false)
	if err != nil {
		return errors.Wrap(err, "encode message")
	}
	id, affected, err := conn.insert(ctx, d, r)
	if err != nil {
		return errors.Wrap(err, "mq send")
	}
	if affected != 1 {
		return protocolViolation("expected record was inserted but it is not. message: %q", r.String())
	}

	m.SetID(id)
	p.metrics.sendTotal.WithLabelValues(conn.TableName(), queue.Name()).Inc()
	p.logger.WithFields(logrus.Fields{
		"queue":      queue.Name(),
		"message_id": id,
		"priority":   m.Priority(),
		"body":       truncateString(m.Body(), p.session.opts.BodyLogMaxLen),
	}).Debug("message sent")
	return nil
}
