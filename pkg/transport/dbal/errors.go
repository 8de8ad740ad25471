package dbal

import (
	"fmt"

	"github.com/iota-uz/iota-mq/pkg/serrors"
)

var (
	ErrInvalidConfig     = serrors.NewError("MQ_INVALID_CONFIG", "invalid message queue configuration", "")
	ErrProtocolViolation = serrors.NewError("MQ_PROTOCOL_VIOLATION", "message queue protocol violation", "")
	ErrUnsupportedDriver = serrors.NewError("MQ_UNSUPPORTED_DRIVER", "unsupported database driver", "")
)

func invalidConfig(msg string, args ...any) error {
	return fmt.Errorf("%w: "+msg, append([]any{ErrInvalidConfig}, args...)...)
}

func protocolViolation(msg string, args ...any) error {
	return fmt.Errorf("%w: "+msg, append([]any{ErrProtocolViolation}, args...)...)
}

// unsupportedDriver matches both ErrUnsupportedDriver and ErrProtocolViolation.
func unsupportedDriver(driverName string) error {
	return fmt.Errorf("%w: %w: %q", ErrProtocolViolation, ErrUnsupportedDriver, driverName)
}
