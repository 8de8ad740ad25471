package main

import (
	"github.com/go-faster/errors"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/iota-uz/iota-mq/pkg/configuration"
	"github.com/iota-uz/iota-mq/pkg/transport/dbal"
)

func loadConfig(g *globalFlags) (*configuration.Configuration, error) {
	conf, err := configuration.Load([]string{".env", ".env.local"})
	if err != nil {
		return nil, withCode(exitConfig, errors.Wrap(err, "load configuration"))
	}
	if g.driver != "" {
		conf.Database.Driver = g.driver
	}
	if g.dsn != "" {
		conf.Database.DSN = g.dsn
	}
	if g.table != "" {
		conf.Queue.Table = g.table
	}
	return conf, nil
}

func openConnection(conf *configuration.Configuration) (*dbal.Connection, error) {
	conn, err := dbal.Open(
		conf.Database.Driver,
		conf.Database.ConnectionString(),
		conf.Queue.Table,
		dbal.ConnectionOptions{
			MaxOpenConns:    conf.Database.MaxOpenConns,
			MaxIdleConns:    conf.Database.MaxIdleConns,
			ConnMaxLifetime: conf.Database.ConnMaxLifetime,
			Logger:          conf.Logger().WithField("component", "mq"),
		},
	)
	if err != nil {
		if errors.Is(err, dbal.ErrInvalidConfig) {
			return nil, withCode(exitConfig, err)
		}
		return nil, withCode(exitStore, errors.Wrap(err, "open connection"))
	}
	if _, err := conn.Dialect(); err != nil {
		_ = conn.Close()
		return nil, withCode(exitConfig, err)
	}
	return conn, nil
}

func newSession(conf *configuration.Configuration, conn *dbal.Connection) *dbal.Session {
	return dbal.NewSession(conn, dbal.SessionOptions{
		PollingInterval: conf.Queue.PollingInterval,
		MaxAttempts:     conf.Queue.MaxAttempts,
	})
}
