//go:build integration

package dbal

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/iota-mq/pkg/transport"
)

func TestPostgres_Integration_CompetingConsumers(t *testing.T) {
	dsn := os.Getenv("MQ_TEST_DSN")
	if dsn == "" {
		t.Skip("MQ_TEST_DSN is not set")
	}

	ctx := context.Background()
	table := fmt.Sprintf("mq_it_%s", uuid.NewString()[:8])
	conn, err := Open("pgx", dsn, table, ConnectionOptions{MaxOpenConns: 16})
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.CreateSchema(ctx))
	defer func() { _ = conn.DropSchema(ctx) }()

	s := NewSession(conn, SessionOptions{PollingInterval: 10 * time.Millisecond})
	const total = 50
	for i := range total {
		m := NewMessage(fmt.Sprintf("m-%d", i), nil, nil)
		m.SetPriority(i % 3)
		require.NoError(t, s.NewProducer().Send(ctx, transport.NewQueue("default"), m))
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = map[int64]string{}
	)
	for range 8 {
		c := s.NewConsumer(transport.NewQueue("default"))
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				msg, err := c.Receive(ctx, 200*time.Millisecond)
				if err != nil || msg == nil {
					return
				}
				m := msg.(*Message)
				mu.Lock()
				_, dup := seen[m.ID()]
				seen[m.ID()] = c.ConsumerID()
				mu.Unlock()
				if dup {
					t.Errorf("message %d delivered twice", m.ID())
				}
				if err := c.Acknowledge(ctx, m); err != nil {
					t.Errorf("ack %d: %v", m.ID(), err)
				}
			}
		}()
	}
	wg.Wait()

	require.Len(t, seen, total)
}
