package dbal

import "github.com/iota-uz/iota-mq/pkg/transport"

// Message is the message kind of the table transport. A persisted message
// maps to exactly one row until it is acknowledged or rejected.
type Message struct {
	transport.BasicMessage

	id int64
}

var _ transport.Message = (*Message)(nil)

// NewMessage builds an unpersisted message.
func NewMessage(body string, properties, headers transport.Values) *Message {
	return &Message{BasicMessage: *transport.NewMessage(body, properties, headers)}
}

// ID returns the row id, or 0 when the message was never stored.
func (m *Message) ID() int64 {
	return m.id
}

func (m *Message) SetID(id int64) {
	m.id = id
}

func asMessage(msg transport.Message) (*Message, error) {
	m, ok := msg.(*Message)
	if !ok || m == nil {
		return nil, transport.InvalidMessage("*dbal.Message", msg)
	}
	return m, nil
}
