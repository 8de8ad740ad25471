package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type globalFlags struct {
	driver string
	dsn    string
	table  string
}

func newRootCmd() *cobra.Command {
	var g globalFlags

	cmd := &cobra.Command{
		Use:           "mq",
		Short:         "Database-backed message queue tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&g.driver, "driver", "", "Database driver (overrides DB_DRIVER)")
	cmd.PersistentFlags().StringVar(&g.dsn, "dsn", "", "Database DSN (overrides DB_DSN)")
	cmd.PersistentFlags().StringVar(&g.table, "table", "", "Queue table, table or schema.table (overrides MQ_TABLE)")

	cmd.AddCommand(newSchemaCmd(&g))
	cmd.AddCommand(newProduceCmd(&g))
	cmd.AddCommand(newConsumeCmd(&g))
	return cmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		code := exitCode(err)
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(code)
	}
}
