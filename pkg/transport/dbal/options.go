package dbal

import (
	"time"

	"github.com/sirupsen/logrus"
)

const (
	DefaultPollingInterval = 1 * time.Second
	DefaultMaxAttempts     = 2
)

type ConnectionOptions struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	Logger *logrus.Entry
}

func (o *ConnectionOptions) setDefaults() {
	if o.ConnMaxLifetime == 0 {
		o.ConnMaxLifetime = 10 * time.Minute
	}
	if o.Logger == nil {
		o.Logger = logrusNop()
	}
}

type SessionOptions struct {
	// PollingInterval is the initial polling interval of consumers created
	// by the session.
	PollingInterval time.Duration

	// MaxAttempts bounds DELETE/INSERT attempts of acknowledge and reject
	// when the store reports lock contention.
	MaxAttempts int

	// BodyLogMaxLen caps the body preview written to debug logs.
	BodyLogMaxLen int

	// Logger defaults to the connection logger.
	Logger *logrus.Entry
}

func (o *SessionOptions) setDefaults(conn *Connection) {
	if o.PollingInterval <= 0 {
		o.PollingInterval = DefaultPollingInterval
	}
	if o.MaxAttempts == 0 {
		o.MaxAttempts = DefaultMaxAttempts
	}
	if o.BodyLogMaxLen == 0 {
		o.BodyLogMaxLen = 256
	}
	if o.Logger == nil {
		o.Logger = conn.logger
	}
}
