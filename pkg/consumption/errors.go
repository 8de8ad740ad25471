package consumption

import "github.com/iota-uz/iota-mq/pkg/serrors"

var (
	ErrNoBindings     = serrors.NewError("MQ_NO_BINDINGS", "no queue is bound to the consumer", "")
	ErrInvalidStatus  = serrors.NewError("MQ_INVALID_STATUS", "invalid message status", "")
	ErrProcessorPanic = serrors.NewError("MQ_PROCESSOR_PANIC", "message processor panicked", "")
)
