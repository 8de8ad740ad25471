package dbal

import (
	"context"
	"fmt"
	"strings"

	migrate "github.com/rubenv/sql-migrate"
)

// CreateSchema creates the queue table and its claim index if missing.
func (c *Connection) CreateSchema(ctx context.Context) error {
	d, err := c.Dialect()
	if err != nil {
		return err
	}
	for _, stmt := range d.SchemaUp(c.table) {
		if _, err := c.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema %s: %w", c.table, err)
		}
	}
	return nil
}

func (c *Connection) DropSchema(ctx context.Context) error {
	d, err := c.Dialect()
	if err != nil {
		return err
	}
	for _, stmt := range d.SchemaDown(c.table) {
		if _, err := c.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("drop schema %s: %w", c.table, err)
		}
	}
	return nil
}

// Migrations returns the versioned migration source of the queue table.
func (c *Connection) Migrations() (*migrate.MemoryMigrationSource, error) {
	d, err := c.Dialect()
	if err != nil {
		return nil, err
	}
	return &migrate.MemoryMigrationSource{
		Migrations: []*migrate.Migration{
			{
				Id:   "0001_create_" + tableBase(c.table),
				Up:   d.SchemaUp(c.table),
				Down: d.SchemaDown(c.table),
			},
		},
	}, nil
}

// Migrate applies (migrate.Up) or reverts (migrate.Down) the queue table
// migrations and returns how many were run. Applied versions are tracked in
// "<table>_migrations".
func (c *Connection) Migrate(ctx context.Context, dir migrate.MigrationDirection) (int, error) {
	d, err := c.Dialect()
	if err != nil {
		return 0, err
	}
	src, err := c.Migrations()
	if err != nil {
		return 0, err
	}
	set := migrate.MigrationSet{
		TableName: migrationTableName(c.table),
	}
	if schema, _, ok := strings.Cut(c.table, "."); ok {
		set.SchemaName = schema
	}
	n, err := set.ExecContext(ctx, c.db.DB, d.MigrationDialect(), src, dir)
	if err != nil {
		return n, fmt.Errorf("migrate %s: %w", c.table, err)
	}
	c.logger.WithField("applied", n).Info("queue table migrations applied")
	return n, nil
}
