package main

import (
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/florescendo/talentos/storage/database"
)

var gooseRunFunc = database.RunMigration // mockable

func (cli *commandLine) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate COMMAND [ARGS...]",
		Short: "Run a goose migration command (up, down, status, redo, version, up-to N, down-to N...)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := cli.getDeps()
			if err != nil {
				return err
			}
			return cli.migrate(d.db, args)
		},
	}
}

func (cli *commandLine) migrate(db *sqlx.DB, args []string) error {
	return gooseRunFunc(db, args[0], args[1:]...)
}
