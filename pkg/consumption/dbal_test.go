package consumption_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/iota-uz/iota-mq/pkg/consumption"
	"github.com/iota-uz/iota-mq/pkg/consumption/extension"
	"github.com/iota-uz/iota-mq/pkg/transport"
	"github.com/iota-uz/iota-mq/pkg/transport/dbal"
)

func TestQueueConsumer_DrainsTableUntilMessageLimit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db, err := sqlx.Open("sqlite", filepath.Join(t.TempDir(), "mq.db"))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	conn, err := dbal.NewConnection(db, "mq_consume", dbal.ConnectionOptions{})
	require.NoError(t, err)
	require.NoError(t, conn.CreateSchema(ctx))

	session := dbal.NewSession(conn, dbal.SessionOptions{PollingInterval: 5 * time.Millisecond})
	producer := session.NewProducer()
	for _, name := range []string{"report", "report", "unknown"} {
		m := dbal.NewMessage("payload", transport.Values{consumption.RouterProperty: name}, nil)
		require.NoError(t, producer.Send(ctx, transport.NewQueue("jobs"), m))
	}

	var processed int
	router := consumption.NewRouter(nil)
	router.Add("report", consumption.ProcessorFunc(func(context.Context, transport.Message, transport.Session) (consumption.Status, error) {
		processed++
		return consumption.StatusAck, nil
	}))

	qc := consumption.NewQueueConsumer(session, extension.NewLimitConsumedMessages(3), consumption.QueueConsumerOptions{
		ReceiveTimeout: 20 * time.Millisecond,
	}).Bind("jobs", router)

	require.NoError(t, qc.Consume(ctx, extension.NewLimitConsumptionTime(time.Now().Add(10*time.Second))))
	require.Equal(t, 2, processed)

	var left int
	require.NoError(t, db.Get(&left, `SELECT COUNT(*) FROM mq_consume`))
	require.Zero(t, left)
}

func TestQueueConsumer_PassedTimeLimitNeverReceives(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db, err := sqlx.Open("sqlite", filepath.Join(t.TempDir(), "mq.db"))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	conn, err := dbal.NewConnection(db, "mq_expired", dbal.ConnectionOptions{})
	require.NoError(t, err)
	require.NoError(t, conn.CreateSchema(ctx))

	session := dbal.NewSession(conn, dbal.SessionOptions{})
	require.NoError(t, session.NewProducer().Send(ctx, transport.NewQueue("jobs"), session.NewMessage()))

	qc := consumption.NewQueueConsumer(session, nil, consumption.QueueConsumerOptions{}).
		Bind("jobs", consumption.ProcessorFunc(func(context.Context, transport.Message, transport.Session) (consumption.Status, error) {
			t.Fatal("processor must not run")
			return consumption.StatusAck, nil
		}))

	require.NoError(t, qc.Consume(ctx, extension.NewLimitConsumptionTime(time.Now().Add(-time.Second))))

	var left int
	require.NoError(t, db.Get(&left, `SELECT COUNT(*) FROM mq_expired WHERE consumer_id IS NULL`))
	require.Equal(t, 1, left)
}
