package main

import (
	"fmt"

	"github.com/go-faster/errors"
	migrate "github.com/rubenv/sql-migrate"
	"github.com/spf13/cobra"
)

type schemaOutput struct {
	Command string `json:"command"`
	Table   string `json:"table"`
	Applied int    `json:"applied"`
}

func newSchemaCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Manage the queue table",
	}
	cmd.AddCommand(newSchemaMigrateCmd(g, "up", migrate.Up))
	cmd.AddCommand(newSchemaMigrateCmd(g, "down", migrate.Down))
	return cmd
}

func newSchemaMigrateCmd(g *globalFlags, use string, dir migrate.MigrationDirection) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: fmt.Sprintf("Migrate the queue table %s", use),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := loadConfig(g)
			if err != nil {
				return err
			}
			defer conf.Unload()

			conn, err := openConnection(conf)
			if err != nil {
				return err
			}
			defer conn.Close()

			n, err := conn.Migrate(cmd.Context(), dir)
			if err != nil {
				return withCode(exitMigrate, errors.Wrap(err, "migrate"))
			}
			return writeJSON(schemaOutput{
				Command: "schema " + use,
				Table:   conn.TableName(),
				Applied: n,
			})
		},
	}
}
