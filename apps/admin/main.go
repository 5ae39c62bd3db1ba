package main

import (
	"context"
	"fmt"
	"os"

	"github.com/Meghashree-V/smart-surveillance-system-for-campus/apps"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/user"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/storage/database"
)

func main() {
	conf := core.NewConfig()
	logger := apps.NewLogger("ADMIN : ", conf)
	ctx := context.Background()

	// set up DB
	if err := database.CreateIfNotExist(conf); err != nil {
		logger.Fatal(fmt.Sprintf("creating database: %v", err), err)
	}
	db, err := database.Open(ctx, conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}
	if err = db.Healthy(ctx); err != nil {
		logger.Fatal(fmt.Sprintf("reaching database: %v", err), err)
	}

	// start CLI
	validate, _ := apps.NewValidator()
	cli := commandLine{
		db:       db,
		usrSvc:   user.NewService(database.NewUserRepository(db), apps.NewMailService(conf, logger), validate),
		validate: validate,
		out:      os.Stdout,
	}
	err = cli.run(os.Args)
	_ = db.Close(ctx)
	if err != nil {
		if err != errHelp {
			logger.Error(fmt.Sprintf("error: %v", err), err)
		}
		os.Exit(1)
	}
}
