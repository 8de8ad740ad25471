package transport

import (
	"context"
	"time"
)

// Session creates messages, producers and consumers bound to one connection.
type Session interface {
	CreateMessage() Message
	CreateQueue(name string) Queue
	CreateProducer() Producer
	CreateConsumer(queue Queue) Consumer
	Close() error
}

// Consumer receives messages from a single queue.
//
// Receive returns a nil message and a nil error when the timeout elapses
// without a message.
type Consumer interface {
	Queue() Queue
	Receive(ctx context.Context, timeout time.Duration) (Message, error)
	Acknowledge(ctx context.Context, msg Message) error
	Reject(ctx context.Context, msg Message, requeue bool) error
}

type Producer interface {
	Send(ctx context.Context, queue Queue, msg Message) error
}
