package main

import (
	"context"
	"fmt"

	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/user"
)

// seedAdmin creates the admin unless one with the same username exists.
func (cli *commandLine) seedAdmin(uname, pwd string) error {
	adm, created, err := cli.usrSvc.SeedAdmin(context.Background(), uname, pwd)
	if err != nil {
		return err
	}
	if created {
		fmt.Fprintf(cli.out, "admin %q created\n", adm.Username)
	} else {
		fmt.Fprintf(cli.out, "admin %q already exists\n", adm.Username)
	}
	return nil
}

// addUser creates an admin.
func (cli *commandLine) addUser(uname, name, email, pwd string) error {
	na := user.NewAdmin{
		Username:        uname,
		Name:            name,
		Email:           email,
		Password:        pwd,
		PasswordConfirm: pwd,
	}
	if err := na.Validate(cli.validate); err != nil {
		return err
	}
	adm, err := cli.usrSvc.CreateAdmin(context.Background(), na)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "admin %q created\n", adm.Username)
	return nil
}
