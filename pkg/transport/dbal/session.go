package dbal

import (
	"github.com/google/uuid"
	"github.com/iota-uz/iota-mq/pkg/transport"
	"github.com/sirupsen/logrus"
)

// Session creates messages, producers and consumers over one Connection.
type Session struct {
	conn   *Connection
	opts   SessionOptions
	logger *logrus.Entry
}

var _ transport.Session = (*Session)(nil)

func NewSession(conn *Connection, opts SessionOptions) *Session {
	opts.setDefaults(conn)
	return &Session{
		conn:   conn,
		opts:   opts,
		logger: opts.Logger.WithField("table", conn.TableName()),
	}
}

func (s *Session) Connection() *Connection {
	return s.conn
}

func (s *Session) NewMessage() *Message {
	return &Message{}
}

func (s *Session) CreateMessage() transport.Message {
	return s.NewMessage()
}

func (s *Session) CreateQueue(name string) transport.Queue {
	return transport.NewQueue(name)
}

func (s *Session) NewProducer() *Producer {
	return &Producer{
		session: s,
		logger:  s.logger,
		metrics: getMetrics(),
	}
}

func (s *Session) CreateProducer() transport.Producer {
	return s.NewProducer()
}

// NewConsumer creates a consumer with a fresh unique identifier.
func (s *Session) NewConsumer(queue transport.Queue) *Consumer {
	id := uuid.NewString()
	return &Consumer{
		session:         s,
		queue:           queue,
		consumerID:      id,
		pollingInterval: s.opts.PollingInterval,
		maxAttempts:     s.opts.MaxAttempts,
		logger: s.logger.WithFields(logrus.Fields{
			"queue":       queue.Name(),
			"consumer_id": id,
		}),
		metrics: getMetrics(),
	}
}

func (s *Session) CreateConsumer(queue transport.Queue) transport.Consumer {
	return s.NewConsumer(queue)
}

// Close releases nothing; the connection outlives its sessions.
func (s *Session) Close() error {
	return nil
}

func (s *Session) messageFromRow(r row) (*Message, error) {
	headers, err := transport.DecodeValues(r.Headers)
	if err != nil {
		return nil, protocolViolation("decode headers of record %d: %v", r.ID, err)
	}
	properties, err := transport.DecodeValues(r.Properties)
	if err != nil {
		return nil, protocolViolation("decode properties of record %d: %v", r.ID, err)
	}

	m := s.NewMessage()
	m.SetID(r.ID)
	m.SetBody(r.Body)
	m.SetPriority(r.Priority)
	m.SetRedelivered(r.Redelivered)
	m.SetHeaders(headers)
	m.SetProperties(properties)
	return m, nil
}
