package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"github.com/go-playground/validator/v10"
	"golang.org/x/term"

	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/user"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/storage/database"
)

const (
	defaultAdminUsername = "admin"
	defaultAdminPassword = "admin123"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db       *database.DB
	usrSvc   user.Service
	validate *validator.Validate
	out      io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  seedadmin [-username USERNAME] [-password PASSWORD] - create the default admin unless it exists")
	fmt.Fprintln(cli.out, "  adduser -username USERNAME [-name NAME] [-email EMAIL] - create an admin")
	fmt.Fprintln(cli.out, "  resetpassword -username USERNAME - reset an admin's password")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS] - run a migration command (up, down, status...)")
}

// promptPassword reads a password from the terminal; an empty password prints the usage of fs.
func (cli *commandLine) promptPassword(fs *flag.FlagSet) (string, error) {
	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	if len(pwd) == 0 {
		fs.Usage()
		return "", errHelp
	}
	return string(pwd), nil
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	seedCmd := flag.NewFlagSet("seedadmin", flag.ExitOnError)
	seedUname := seedCmd.String("username", defaultAdminUsername, "The admin's username.")
	seedPwd := seedCmd.String("password", defaultAdminPassword, "The admin's password.")

	addUserCmd := flag.NewFlagSet("adduser", flag.ExitOnError)
	addUserUname := addUserCmd.String("username", "", "The admin's username. The password will be prompted next.")
	addUserName := addUserCmd.String("name", "", "The admin's full name.")
	addUserEmail := addUserCmd.String("email", "", "The admin's email.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ExitOnError)
	resetPasswordUname := resetPasswordCmd.String("username", "", "The admin's username. The password will be prompted next.")

	for _, fs := range []*flag.FlagSet{seedCmd, addUserCmd, resetPasswordCmd} {
		fs.SetOutput(cli.out)
	}

	switch args[1] {
	case "seedadmin":
		if err := seedCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.seedAdmin(*seedUname, *seedPwd)

	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserUname == "" {
			addUserCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword(addUserCmd)
		if err != nil {
			return err
		}
		return cli.addUser(*addUserUname, *addUserName, *addUserEmail, pwd)

	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordUname == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword(resetPasswordCmd)
		if err != nil {
			return err
		}
		return cli.resetPassword(*resetPasswordUname, pwd)

	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])

	default:
		cli.printUsage()
		return errHelp
	}
}
