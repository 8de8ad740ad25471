package dbal

import (
	"errors"
	"fmt"
	"strings"

	"modernc.org/sqlite"
)

const (
	sqliteBusy   = 5
	sqliteLocked = 6
)

// sqliteDialect serialises writers at the database level, so the claim
// subquery needs no row locks.
type sqliteDialect struct{}

func (sqliteDialect) Name() string { return "sqlite" }

func (sqliteDialect) ClaimQuery(table string) string {
	return fmt.Sprintf(`UPDATE %[1]s SET consumer_id = ?
WHERE id = (
	SELECT id FROM %[1]s
	WHERE consumer_id IS NULL AND queue = ?
	ORDER BY priority ASC, id ASC
	LIMIT 1
) AND consumer_id IS NULL`, table)
}

func (sqliteDialect) InsertQuery(table string) string {
	return fmt.Sprintf(insertQuery, table)
}

func (sqliteDialect) InsertReturnsID() bool { return false }

func (sqliteDialect) SchemaUp(table string) []string {
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	queue TEXT NOT NULL,
	priority INTEGER NOT NULL DEFAULT 0,
	body TEXT NOT NULL DEFAULT '',
	headers TEXT NOT NULL DEFAULT '{}',
	properties TEXT NOT NULL DEFAULT '{}',
	redelivered INTEGER NOT NULL DEFAULT 0,
	consumer_id TEXT NULL
)`, table),
		sqliteIndex(table),
	}
}

// sqliteIndex qualifies the index name, not the indexed table, with the schema.
func sqliteIndex(table string) string {
	base := tableBase(table)
	name := base + "_claim_idx"
	if schema, ok := strings.CutSuffix(table, "."+base); ok {
		name = schema + "." + name
	}
	return fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (queue, consumer_id, priority, id)`, name, base)
}

func (sqliteDialect) SchemaDown(table string) []string {
	return []string{fmt.Sprintf(`DROP TABLE IF EXISTS %s`, table)}
}

func (sqliteDialect) MigrationDialect() string { return "sqlite3" }

func (sqliteDialect) IsTransientError(err error) bool {
	var sqErr *sqlite.Error
	if !errors.As(err, &sqErr) {
		return false
	}
	switch sqErr.Code() & 0xff {
	case sqliteBusy, sqliteLocked:
		return true
	default:
		return false
	}
}
