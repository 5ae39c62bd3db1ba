// Package testutil holds the fixtures shared by the tests of several packages.
package testutil

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/student"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/user"
	logsvc "github.com/Meghashree-V/smart-surveillance-system-for-campus/services/logger"
)

// Config returns the configuration used in tests: memory store, no rate limiting, no debug output.
func Config() *core.Config {
	conf := &core.Config{
		AppName:         "Campus Attendance",
		Env:             "TEST",
		TestMode:        true,
		SecretKey:       "test-secret-key",
		FrontendBaseURL: "http://localhost:5173",
	}
	conf.Server.JWTExpirationDelta = time.Hour
	conf.Store.Driver = "memory"
	conf.Media.Driver = "local"
	conf.Media.BaseURL = "/media"
	conf.Media.MaxVideoSize = 50 << 20
	conf.Media.MaxDocumentSize = 5 << 20
	conf.Invite.SenderName = "MVJCE Attendance"
	conf.Invite.SenderEmail = "attendance@mvjce.edu.in"
	conf.Invite.TemplateID = "d-test-template"
	conf.Invite.RegistrationBaseURL = "http://localhost:5173/register"
	conf.Invite.LockTTL = time.Minute
	return conf
}

// Logger returns a silent logger that never reports to Rollbar.
func Logger(conf *core.Config) core.Logger {
	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "TEST : ", 0), conf)
	logger.Enable(false)
	return logger
}

// Validator returns a validator with every custom validator & translation registered.
func Validator() (*validator.Validate, ut.Translator) {
	translator := core.NewTranslator()
	validate := core.NewValidator(translator)
	user.InitValidators(validate, translator)
	return validate, translator
}

func CreateAdmin(t *testing.T, repo user.Repository, username, pwd string) user.Admin {
	adm := user.Admin{Username: username, Name: "Admin " + username, Email: username + "@mvjce.edu.in"}
	if err := adm.SetPassword(pwd); err != nil {
		t.Fatalf("CreateAdmin() failed: %v", err)
	}
	adm, err := repo.CreateAdmin(context.Background(), adm)
	if err != nil {
		t.Fatalf("CreateAdmin() failed: %v", err)
	}
	return adm
}

// CreateMember stores a staff member; members who changed their password are active.
func CreateMember(t *testing.T, repo user.Repository, role, username, pwd string, pwdChanged bool) user.Member {
	nm := user.NewTestMember(role, username)
	mbr := user.Member{
		Username:        nm.Username,
		Name:            nm.Name,
		Email:           nm.Email,
		Role:            nm.Role,
		Department:      nm.Department,
		Status:          user.StatusPending,
		Semester:        nm.Semester,
		Subject:         nm.Subject,
		SubjectCode:     nm.SubjectCode,
	}
	if err := mbr.SetPassword(pwd); err != nil {
		t.Fatalf("CreateMember() failed: %v", err)
	}
	ctx := context.Background()
	mbr, err := repo.CreateMember(ctx, mbr)
	if err != nil {
		t.Fatalf("CreateMember() failed: %v", err)
	}
	if !pwdChanged {
		return mbr
	}

	// new members are always on a temporary password
	mbr.PasswordChanged = true
	mbr.Status = user.StatusActive
	if mbr, err = repo.UpdateMember(ctx, mbr); err != nil {
		t.Fatalf("CreateMember() failed: %v", err)
	}
	return mbr
}

// CreateStudent stores a student of semester 5, CSE, section A. An empty pwd leaves the registration incomplete.
func CreateStudent(t *testing.T, repo student.Repository, usn, name, pwd string) student.Student {
	now := time.Now().UTC()
	std := student.Student{
		Usn:      usn,
		Name:     name,
		Semester: "5",
		Section:  "A",
		Branch:   "CSE",
		Email:    "student." + usn + "@mvjce.edu.in",
		Phone:    "9876543210",
		Address:  "Bengaluru",
		ParentDetails: student.ParentDetails{
			FatherName:  "Father " + name,
			FatherPhone: "9876500001",
			MotherName:  "Mother " + name,
			MotherPhone: "9876500002",
		},
		ConsentGiven: true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if pwd != "" {
		if err := std.SetPassword(pwd); err != nil {
			t.Fatalf("CreateStudent() failed: %v", err)
		}
		std.VideoURL = "/media/videos/" + usn + ".mp4"
	}
	std, err := repo.CreateStudent(context.Background(), std)
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return std
}
