package consumption

import (
	"context"

	"github.com/iota-uz/iota-mq/pkg/transport"
)

// Status tells the driver loop how to settle a processed message.
type Status string

const (
	StatusAck     Status = "ACK"
	StatusReject  Status = "REJECT"
	StatusRequeue Status = "REQUEUE"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusAck, StatusReject, StatusRequeue:
		return true
	default:
		return false
	}
}

type MessageProcessor interface {
	Process(ctx context.Context, msg transport.Message, session transport.Session) (Status, error)
}

// ProcessorFunc adapts a function to MessageProcessor.
type ProcessorFunc func(ctx context.Context, msg transport.Message, session transport.Session) (Status, error)

func (f ProcessorFunc) Process(ctx context.Context, msg transport.Message, session transport.Session) (Status, error) {
	return f(ctx, msg, session)
}
