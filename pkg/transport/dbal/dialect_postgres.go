package dbal

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

type postgresDialect struct{}

func (postgresDialect) Name() string { return "postgres" }

// ClaimQuery skips rows locked by concurrent claimers so competing consumers
// never wait on each other.
func (postgresDialect) ClaimQuery(table string) string {
	return fmt.Sprintf(`UPDATE %[1]s SET consumer_id = ?
WHERE id = (
	SELECT id FROM %[1]s
	WHERE consumer_id IS NULL AND queue = ?
	ORDER BY priority ASC, id ASC
	LIMIT 1
	FOR UPDATE SKIP LOCKED
) AND consumer_id IS NULL`, table)
}

func (postgresDialect) InsertQuery(table string) string {
	return fmt.Sprintf(insertQuery, table) + " RETURNING id"
}

func (postgresDialect) InsertReturnsID() bool { return true }

func (postgresDialect) SchemaUp(table string) []string {
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id BIGSERIAL PRIMARY KEY,
	queue VARCHAR(255) NOT NULL,
	priority SMALLINT NOT NULL DEFAULT 0,
	body TEXT NOT NULL DEFAULT '',
	headers TEXT NOT NULL DEFAULT '{}',
	properties TEXT NOT NULL DEFAULT '{}',
	redelivered BOOLEAN NOT NULL DEFAULT FALSE,
	consumer_id VARCHAR(255) NULL
)`, table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_claim_idx ON %s (queue, consumer_id, priority, id)`, tableBase(table), table),
	}
}

func (postgresDialect) SchemaDown(table string) []string {
	return []string{fmt.Sprintf(`DROP TABLE IF EXISTS %s`, table)}
}

func (postgresDialect) MigrationDialect() string { return "postgres" }

func (postgresDialect) IsTransientError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return isTransientSQLState(pgErr.Code)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return isTransientSQLState(string(pqErr.Code))
	}
	return false
}

// serialization_failure, deadlock_detected, lock_not_available
func isTransientSQLState(code string) bool {
	switch code {
	case "40001", "40P01", "55P03":
		return true
	default:
		return false
	}
}
