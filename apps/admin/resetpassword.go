package main

import "context"

func (cli *commandLine) resetPassword(uname, pwd string) error {
	return cli.usrSvc.SetAdminPassword(context.Background(), uname, pwd)
}
