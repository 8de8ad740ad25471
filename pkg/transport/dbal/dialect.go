package dbal

import (
	"sync"

	"github.com/jmoiron/sqlx"
)

// Dialect isolates the SQL that differs between stores: the claim statement,
// id generation on insert, DDL and transient error classification.
type Dialect interface {
	Name() string

	// ClaimQuery marks one unclaimed row of a queue with a consumer id.
	// Args: consumer_id, queue.
	ClaimQuery(table string) string

	// InsertQuery inserts one row.
	// Args: queue, priority, body, headers, properties, redelivered.
	InsertQuery(table string) string

	// InsertReturnsID reports whether InsertQuery yields the new id as a row
	// instead of through LastInsertId.
	InsertReturnsID() bool

	SchemaUp(table string) []string
	SchemaDown(table string) []string

	// MigrationDialect is the sql-migrate dialect name.
	MigrationDialect() string

	// IsTransientError reports lock contention that is safe to retry at once.
	IsTransientError(err error) bool
}

var (
	dialectsMu sync.RWMutex
	dialects   = map[string]Dialect{}
)

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
	sqlx.BindDriver("pgx/v5", sqlx.DOLLAR)

	pg := postgresDialect{}
	for _, name := range []string{"pgx", "pgx/v5", "postgres"} {
		RegisterDialect(name, pg)
	}
	RegisterDialect("mysql", mysqlDialect{})
	for _, name := range []string{"sqlite", "sqlite3"} {
		RegisterDialect(name, sqliteDialect{})
	}
}

// RegisterDialect binds a database/sql driver name to a dialect. Registering
// a name twice replaces the previous dialect.
func RegisterDialect(driverName string, d Dialect) {
	dialectsMu.Lock()
	defer dialectsMu.Unlock()
	dialects[driverName] = d
}

// LookupDialect returns the dialect for driverName or an error matching
// ErrUnsupportedDriver.
func LookupDialect(driverName string) (Dialect, error) {
	dialectsMu.RLock()
	d, ok := dialects[driverName]
	dialectsMu.RUnlock()
	if !ok {
		return nil, unsupportedDriver(driverName)
	}
	return d, nil
}

const selectClaimedQuery = `SELECT id, queue, priority, body, headers, properties, redelivered FROM %s
WHERE consumer_id = ? AND queue = ?
ORDER BY priority ASC, id ASC`

const deleteClaimedQuery = `DELETE FROM %s WHERE id = ? AND consumer_id = ?`

const insertQuery = `INSERT INTO %s (queue, priority, body, headers, properties, redelivered) VALUES (?, ?, ?, ?, ?, ?)`

func migrationTableName(table string) string {
	return tableBase(table) + "_migrations"
}
