package configuration

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestLoadEnv_FallsBackToGoModRoot(t *testing.T) {
	tmp := t.TempDir()

	requireWriteFile(t, filepath.Join(tmp, "go.mod"), "module example.com/test\n\ngo 1.22\n")
	requireWriteFile(t, filepath.Join(tmp, ".env.local"), "IOTA_MQ_TEST_ENV_LOAD=ok\n")

	sub := filepath.Join(tmp, "pkg", "queue")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	origWd, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(origWd) })
	require.NoError(t, os.Chdir(sub))

	_ = os.Unsetenv("IOTA_MQ_TEST_ENV_LOAD")
	t.Cleanup(func() { _ = os.Unsetenv("IOTA_MQ_TEST_ENV_LOAD") })

	n, err := LoadEnv([]string{".env", ".env.local"})
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, "ok", os.Getenv("IOTA_MQ_TEST_ENV_LOAD"))
}

func TestLoad_Defaults(t *testing.T) {
	c, err := Load(nil)
	require.NoError(t, err)
	t.Cleanup(c.Unload)

	require.Equal(t, "pgx", c.Database.Driver)
	require.Equal(t, "message_queue", c.Queue.Table)
	require.Equal(t, time.Second, c.Queue.PollingInterval)
	require.Equal(t, 2, c.Queue.MaxAttempts)
	require.Zero(t, c.Queue.TimeLimit)
	require.NotNil(t, c.Logger())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_NAME", "/tmp/mq.db")
	t.Setenv("MQ_TABLE", "jobs.queue")
	t.Setenv("MQ_POLLING_INTERVAL", "250ms")
	t.Setenv("MQ_MESSAGE_LIMIT", "10")
	t.Setenv("LOG_LEVEL", "debug")

	c, err := Load(nil)
	require.NoError(t, err)
	t.Cleanup(c.Unload)

	require.Equal(t, "/tmp/mq.db", c.Database.ConnectionString())
	require.Equal(t, "jobs.queue", c.Queue.Table)
	require.Equal(t, 250*time.Millisecond, c.Queue.PollingInterval)
	require.Equal(t, int64(10), c.Queue.MessageLimit)
	require.Equal(t, logrus.DebugLevel, c.LogrusLogLevel())
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")
	_, err := Load(nil)
	require.Error(t, err)

	t.Setenv("DB_DRIVER", "mysql")
	t.Setenv("MQ_MAX_ATTEMPTS", "0")
	_, err = Load(nil)
	require.Error(t, err)
}

func TestLoad_FileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mq.log")
	t.Setenv("LOG_PATH", path)
	t.Setenv("LOG_LEVEL", "info")

	c, err := Load(nil)
	require.NoError(t, err)
	c.Logger().Info("configured")
	c.Unload()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "configured")
}

func TestDatabaseOptions_ConnectionString(t *testing.T) {
	t.Parallel()

	pg := DatabaseOptions{Driver: "pgx", Host: "db", Port: "5432", User: "u", Password: "p", Name: "mq"}
	require.Equal(t, "host=db port=5432 user=u dbname=mq password=p sslmode=disable", pg.ConnectionString())

	my := DatabaseOptions{Driver: "mysql", Host: "db", Port: "3306", User: "u", Password: "p", Name: "mq"}
	require.Equal(t, "u:p@tcp(db:3306)/mq?parseTime=true", my.ConnectionString())

	explicit := DatabaseOptions{Driver: "mysql", DSN: "custom"}
	require.Equal(t, "custom", explicit.ConnectionString())
}

func TestLogrusLogLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]logrus.Level{
		"silent":  logrus.PanicLevel,
		"error":   logrus.ErrorLevel,
		"warn":    logrus.WarnLevel,
		"info":    logrus.InfoLevel,
		"debug":   logrus.DebugLevel,
		"unknown": logrus.ErrorLevel,
	}
	for level, want := range cases {
		c := &Configuration{LogLevel: level}
		require.Equal(t, want, c.LogrusLogLevel(), level)
	}
}

func requireWriteFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestUse_ReturnsSingleton(t *testing.T) {
	require.Same(t, Use(), Use())
}
