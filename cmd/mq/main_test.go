package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-faster/errors"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/iota-mq/pkg/transport/dbal"
)

func run(args ...string) error {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	return cmd.ExecuteContext(context.Background())
}

func TestCLI_SchemaProduceConsume(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "mq.db")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_NAME", dbPath)
	t.Setenv("DB_MAX_OPEN_CONNS", "1")
	t.Setenv("MQ_TABLE", "mq_cli")
	t.Setenv("MQ_POLLING_INTERVAL", "10ms")
	t.Setenv("LOG_LEVEL", "silent")

	require.NoError(t, run("schema", "up"))
	require.NoError(t, run("produce", "--queue", "jobs", "--body", "hello", "--priority", "3", "--property", "processor=report"))
	require.NoError(t, run("produce", "--queue", "jobs", "--body", "world"))

	batch := filepath.Join(t.TempDir(), "batch.yaml")
	require.NoError(t, os.WriteFile(batch, []byte(`
- body: first
  priority: 1
  properties:
    processor: report
- queue: jobs
  body: second
  headers:
    trace: abc
`), 0o644))
	require.NoError(t, run("produce", "--queue", "jobs", "--file", batch))

	require.NoError(t, run("consume", "--queue", "jobs", "--message-limit", "4", "--receive-timeout", "20ms", "--time-limit", "10s"))

	db, err := sqlx.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer db.Close()

	var left int
	require.NoError(t, db.Get(&left, `SELECT COUNT(*) FROM mq_cli`))
	require.Zero(t, left)

	require.NoError(t, run("schema", "down"))
}

func TestCLI_ExitCodes(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_NAME", filepath.Join(t.TempDir(), "mq.db"))
	t.Setenv("LOG_LEVEL", "silent")

	err := run("produce", "--queue", "jobs", "--property", "broken")
	require.Equal(t, exitUsage, exitCode(err))

	err = run("produce", "--body", "no queue")
	require.Equal(t, exitUsage, exitCode(err))

	err = run("produce", "--queue", "jobs", "--table", "bad-name")
	require.Equal(t, exitConfig, exitCode(err))

	t.Setenv("DB_DRIVER", "oracle")
	err = run("schema", "up")
	require.Equal(t, exitConfig, exitCode(err))

	require.Equal(t, exitOK, exitCode(nil))
}

func TestExitCode_QueueSentinelsWin(t *testing.T) {
	t.Parallel()

	lost := fmt.Errorf("%w: expected record was removed but it is not", dbal.ErrProtocolViolation)
	require.Equal(t, exitProtocol, exitCode(withCode(exitConsume, errors.Wrap(lost, "consume"))))

	badTable := fmt.Errorf("%w: table %q", dbal.ErrInvalidConfig, "bad-name")
	require.Equal(t, exitConfig, exitCode(withCode(exitStore, badTable)))

	_, err := dbal.LookupDialect("oracle")
	require.Equal(t, exitConfig, exitCode(err))

	require.Equal(t, exitMigrate, exitCode(withCode(exitMigrate, errors.New("no such table"))))
	require.Equal(t, exitFailure, exitCode(errors.New("boom")))
	require.Equal(t, exitOK, exitCode(nil))
}
