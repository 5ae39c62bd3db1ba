package main

import "context"

func (cli *commandLine) migrate(args []string) error {
	return cli.db.RunMigration(context.Background(), args[0], args[1:]...)
}
