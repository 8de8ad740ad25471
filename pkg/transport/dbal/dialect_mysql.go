package dbal

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

const (
	mysqlErrLockWaitTimeout = 1205
	mysqlErrDeadlock        = 1213
)

type mysqlDialect struct{}

func (mysqlDialect) Name() string { return "mysql" }

func (mysqlDialect) ClaimQuery(table string) string {
	return fmt.Sprintf(`UPDATE %s SET consumer_id = ?
WHERE consumer_id IS NULL AND queue = ?
ORDER BY priority ASC, id ASC
LIMIT 1`, table)
}

func (mysqlDialect) InsertQuery(table string) string {
	return fmt.Sprintf(insertQuery, table)
}

func (mysqlDialect) InsertReturnsID() bool { return false }

func (mysqlDialect) SchemaUp(table string) []string {
	return []string{
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n"+
			"\tid BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,\n"+
			"\tqueue VARCHAR(255) NOT NULL,\n"+
			"\tpriority SMALLINT NOT NULL DEFAULT 0,\n"+
			"\tbody LONGTEXT NOT NULL,\n"+
			"\theaders LONGTEXT NOT NULL,\n"+
			"\tproperties LONGTEXT NOT NULL,\n"+
			"\tredelivered TINYINT(1) NOT NULL DEFAULT 0,\n"+
			"\tconsumer_id VARCHAR(255) NULL,\n"+
			"\tINDEX %s_claim_idx (queue, consumer_id, priority, id)\n"+
			") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4", table, tableBase(table)),
	}
}

func (mysqlDialect) SchemaDown(table string) []string {
	return []string{fmt.Sprintf(`DROP TABLE IF EXISTS %s`, table)}
}

func (mysqlDialect) MigrationDialect() string { return "mysql" }

func (mysqlDialect) IsTransientError(err error) bool {
	var myErr *mysql.MySQLError
	if !errors.As(err, &myErr) {
		return false
	}
	return myErr.Number == mysqlErrLockWaitTimeout || myErr.Number == mysqlErrDeadlock
}
