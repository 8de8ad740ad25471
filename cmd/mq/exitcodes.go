package main

import (
	"errors"

	"github.com/iota-uz/iota-mq/pkg/transport/dbal"
)

// Exit codes of the mq commands. Queue sentinels from dbal take precedence
// over the code attached by the failing command.
const (
	exitOK       = 0
	exitFailure  = 1
	exitUsage    = 2 // bad flags or --file input
	exitConfig   = 3 // environment, driver or table name
	exitStore    = 4 // database unreachable or a statement failed
	exitProtocol = 5 // queue table disagreed with the consumer, e.g. a lost claim
	exitMigrate  = 6 // schema up/down
	exitConsume  = 7 // consume loop stopped on a processor or settle error
)

type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string { return e.err.Error() }

func (e *cliError) Unwrap() error { return e.err }

func withCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &cliError{code: code, err: err}
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, dbal.ErrInvalidConfig), errors.Is(err, dbal.ErrUnsupportedDriver):
		return exitConfig
	case errors.Is(err, dbal.ErrProtocolViolation):
		return exitProtocol
	}
	var ce *cliError
	if errors.As(err, &ce) {
		return ce.code
	}
	return exitFailure
}
