package dbal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

// Connection binds a database handle to one queue table. It holds no other
// state and is safe to share between sessions.
type Connection struct {
	db     *sqlx.DB
	table  string
	logger *logrus.Entry
}

func NewConnection(db *sqlx.DB, table string, opts ConnectionOptions) (*Connection, error) {
	if db == nil {
		return nil, invalidConfig("db is nil")
	}
	tbl, err := ParseTableName(table)
	if err != nil {
		return nil, err
	}
	opts.setDefaults()
	return &Connection{
		db:     db,
		table:  tbl,
		logger: opts.Logger.WithField("table", tbl),
	}, nil
}

// Open opens a pooled handle for driverName and binds it to table.
func Open(driverName, dsn, table string, opts ConnectionOptions) (*Connection, error) {
	opts.setDefaults()
	db, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driverName, err)
	}
	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	db.SetConnMaxLifetime(opts.ConnMaxLifetime)

	conn, err := NewConnection(db, table, opts)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return conn, nil
}

func (c *Connection) TableName() string {
	return c.table
}

func (c *Connection) DB() *sqlx.DB {
	return c.db
}

func (c *Connection) DriverName() string {
	return c.db.DriverName()
}

// Dialect resolves the SQL dialect from the driver name of the handle.
func (c *Connection) Dialect() (Dialect, error) {
	return LookupDialect(c.db.DriverName())
}

// Execute runs a statement written with ? placeholders and returns the
// number of affected rows.
func (c *Connection) Execute(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := c.db.ExecContext(ctx, c.db.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// IsTransientError reports lock contention that is safe to retry. Drivers
// without a dialect never produce transient errors.
func (c *Connection) IsTransientError(err error) bool {
	if err == nil {
		return false
	}
	d, derr := c.Dialect()
	if derr != nil {
		return false
	}
	return d.IsTransientError(err)
}

func (c *Connection) Close() error {
	return c.db.Close()
}

func (c *Connection) selectAll(ctx context.Context, dest any, query string, args ...any) error {
	return c.db.SelectContext(ctx, dest, c.db.Rebind(query), args...)
}

// insert stores r and returns the new id and the number of inserted rows.
func (c *Connection) insert(ctx context.Context, d Dialect, r row) (int64, int64, error) {
	query := c.db.Rebind(d.InsertQuery(c.table))
	if d.InsertReturnsID() {
		var id int64
		err := c.db.QueryRowxContext(ctx, query, r.args()...).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			return 0, 0, nil
		}
		if err != nil {
			return 0, 0, err
		}
		return id, 1, nil
	}

	res, err := c.db.ExecContext(ctx, query, r.args()...)
	if err != nil {
		return 0, 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, 0, err
	}
	if affected == 0 {
		return 0, 0, nil
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, affected, err
	}
	return id, affected, nil
}
