package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/user"
	emailsvc "github.com/Meghashree-V/smart-surveillance-system-for-campus/services/email"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/storage/database"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/testutil"
)

var usrRepo user.Repository

func setup(t *testing.T) (*commandLine, *bytes.Buffer) {
	conf := testutil.Config()
	validate, _ := testutil.Validator()

	// set up DB & repos
	db := database.NewMemoryDB()
	usrRepo = database.NewUserRepository(db)

	// start CLI
	var out bytes.Buffer
	return &commandLine{
		db:       db,
		usrSvc:   user.NewService(usrRepo, emailsvc.NewConsoleServiceMock(conf, testutil.Logger(conf)), validate),
		validate: validate,
		out:      &out,
	}, &out
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func checkErr(t *testing.T, tt cliTest, err error) {
	switch {
	case tt.wantErr != nil:
		assert.Equal(t, tt.wantErr, errors.Cause(err))
	case tt.wantErrStr != "":
		if assert.Error(t, err) {
			assert.Equal(t, tt.wantErrStr, err.Error())
		}
	default:
		assert.NoError(t, err)
	}
}

func Test_commandLine_usage(t *testing.T) {
	cli, out := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "migrate without command", args: []string{"migrate"}, wantErr: errHelp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out.Reset()
			err := cli.run(append([]string{"admin"}, tt.args...))
			checkErr(t, tt, err)
			assert.Contains(t, out.String(), "Usage:")
		})
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _ := setup(t)

	tests := []cliTest{
		{name: "up", args: []string{"migrate", "up"}},
		{name: "down", args: []string{"migrate", "down"}, wantErrStr: `"down": only "up" is supported by the memory store`},
		{name: "status", args: []string{"migrate", "status"}, wantErrStr: `"status": only "up" is supported by the memory store`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkErr(t, tt, cli.run(append([]string{"admin"}, tt.args...)))
		})
	}
}

func Test_commandLine_seedAdmin(t *testing.T) {
	cli, out := setup(t)
	ctx := context.Background()

	require.NoError(t, cli.run([]string{"admin", "seedadmin"}))
	assert.Equal(t, "admin \"admin\" created\n", out.String())

	adm, err := usrRepo.GetAdminByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.NoError(t, adm.CheckPassword("admin123"))

	// seeding twice is a no-op
	out.Reset()
	require.NoError(t, cli.run([]string{"admin", "seedadmin", "-password", "other"}))
	assert.Equal(t, "admin \"admin\" already exists\n", out.String())
	adm, err = usrRepo.GetAdminByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.NoError(t, adm.CheckPassword("admin123"))

	out.Reset()
	require.NoError(t, cli.run([]string{"admin", "seedadmin", "-username", "Root", "-password", "r00t"}))
	assert.Equal(t, "admin \"root\" created\n", out.String())
}

func Test_commandLine_addUser(t *testing.T) {
	cli, _ := setup(t)
	testutil.CreateMember(t, usrRepo, "cc", "awe", "Campus#2024", true)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no args", args: []string{"adduser"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"adduser", "-username", "boss"}, wantErr: errHelp},
		{
			name:       "invalid email",
			args:       []string{"adduser", "-username", "boss", "-email", "lol"},
			extra:      extra{pwd: "s3cret"},
			wantErrStr: "Key: 'NewAdmin.email' Error:Field validation for 'email' failed on the 'email' tag",
		},
		{
			name:    "username taken by a member",
			args:    []string{"adduser", "-username", "AWE"},
			extra:   extra{pwd: "s3cret"},
			wantErr: user.ErrUsernameExists,
		},
		{name: "success", args: []string{"adduser", "-username", "Boss", "-name", "The Boss", "-email", "boss@mvjce.edu.in"}, extra: extra{pwd: "s3cret"}},
	}
	for _, tt := range tests {
		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(append([]string{"admin"}, tt.args...))
			if vErr, ok := errors.Cause(err).(*core.ValidationError); ok && tt.wantErr != nil {
				err = vErr.Err
			}
			checkErr(t, tt, err)
		})
	}

	adm, err := usrRepo.GetAdminByUsername(context.Background(), "boss")
	require.NoError(t, err)
	assert.Equal(t, "The Boss", adm.Name)
	assert.NoError(t, adm.CheckPassword("s3cret"))
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli, _ := setup(t)
	orig := testutil.CreateAdmin(t, usrRepo, "admin", "admin123")

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"resetpassword", "-username", "lol"}, wantErr: errHelp},
		{name: "admin not found", args: []string{"resetpassword", "-username", "lol"}, extra: extra{pwd: "lol"}, wantErr: user.ErrNotFound},
		{name: "reset", args: []string{"resetpassword", "-username", "Admin"}, extra: extra{pwd: "n3w-pass"}},
	}
	for _, tt := range tests {
		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(append([]string{"admin"}, tt.args...))
			checkErr(t, tt, err)
			if err != nil {
				return
			}
			adm, err := usrRepo.GetAdminByUsername(context.Background(), orig.Username)
			require.NoError(t, err)
			assert.False(t, bytes.Equal(orig.PasswordHash, adm.PasswordHash), "failed to update new password")
			assert.NoError(t, adm.CheckPassword("n3w-pass"))
		})
	}
}
