package main

import (
	"github.com/pressly/goose/v3"

	"github.com/trezcool/shule/storage/database"
)

var gooseRunFunc = goose.Run // mockable

func (cli *commandLine) migrate(args []string) error {
	if err := database.SetUpMigrations(cli.db); err != nil {
		return err
	}
	return gooseRunFunc(args[0], cli.db.DB, database.MigrationsDir(database.Dialect(cli.db)), args[1:]...)
}
