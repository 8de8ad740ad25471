package transport

import (
	"fmt"

	"github.com/iota-uz/iota-mq/pkg/serrors"
)

var (
	ErrInvalidMessage = serrors.NewError("MQ_INVALID_MESSAGE", "invalid transport message", "")
)

// InvalidMessage reports that msg is not of the kind a transport expects.
func InvalidMessage(expected string, msg Message) error {
	return fmt.Errorf("%w: the transport message must be instance of %q, got %T", ErrInvalidMessage, expected, msg)
}
