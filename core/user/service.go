// Package user manages admins & staff members (class coordinators and subject teachers).
package user

import (
	"context"
	"net/mail"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/auth"
)

const tempPasswordLen = 8

var (
	// errors
	ErrNotFound       = errors.New("user not found")
	ErrUsernameExists = errors.New("a user with this username already exists")
	errWrongPassword  = errors.New("invalid password")
)

type (
	// Repository stores admins in `admins` and members in the collection of their role
	// (`class_coordinators` or `subject_teachers`). Lookups return ErrNotFound on empty results.
	Repository interface {
		CreateAdmin(ctx context.Context, adm Admin) (Admin, error)
		GetAdminByUsername(ctx context.Context, username string) (Admin, error)
		UpdateAdmin(ctx context.Context, adm Admin) (Admin, error)

		CreateMember(ctx context.Context, mbr Member) (Member, error)
		QueryAllMembers(ctx context.Context, role string) ([]Member, error)
		GetMemberByID(ctx context.Context, role, id string) (Member, error)
		GetMemberByUsername(ctx context.Context, role, username string) (Member, error)
		UpdateMember(ctx context.Context, mbr Member) (Member, error)
		DeleteMember(ctx context.Context, role, id string) error
	}

	Service interface {
		// CreateMember creates a staff member and returns it along with the refetched list of all members.
		CreateMember(ctx context.Context, nm NewMember) (Member, []Member, error)
		// ListMembers returns class coordinators followed by subject teachers, each tagged with its role.
		ListMembers(ctx context.Context) ([]Member, error)
		GetMember(ctx context.Context, role, id string) (Member, error)
		UpdateMember(ctx context.Context, orig Member, um UpdateMember) (Member, error)
		DeleteMember(ctx context.Context, role, id string) error
		// ResetTempPassword issues a new temporary password, emails it & returns it.
		ResetTempPassword(ctx context.Context, role, id string) (Member, string, error)
		ChangePassword(ctx context.Context, role, username string, cp ChangePassword) error

		CreateAdmin(ctx context.Context, na NewAdmin) (Admin, error)
		// SeedAdmin creates the admin once; created is false when it already exists.
		SeedAdmin(ctx context.Context, username, password string) (adm Admin, created bool, err error)
		SetAdminPassword(ctx context.Context, username, password string) error

		AdminFinder() auth.PrincipalFinder
		MemberFinder(role string) auth.PrincipalFinder
	}

	service struct {
		repo     Repository
		mailSvc  core.EmailService
		validate *validator.Validate
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, mailSvc core.EmailService, validate *validator.Validate) Service {
	return &service{
		repo:     repo,
		mailSvc:  mailSvc,
		validate: validate,
	}
}

// checkUniqueness makes sure no admin nor staff member other than exclID uses username.
func (svc *service) checkUniqueness(ctx context.Context, username, exclID string) error {
	exists := func(id string, err error) (bool, error) {
		if err != nil {
			if errors.Cause(err) == ErrNotFound {
				return false, nil
			}
			return false, err
		}
		return id != exclID, nil
	}

	adm, err := svc.repo.GetAdminByUsername(ctx, username)
	found, err := exists(adm.ID, err)
	if err != nil {
		return errors.Wrap(err, "finding admin by username")
	}
	for _, role := range StaffRoles {
		if found {
			break
		}
		mbr, err := svc.repo.GetMemberByUsername(ctx, role, username)
		if found, err = exists(mbr.ID, err); err != nil {
			return errors.Wrap(err, "finding member by username")
		}
	}
	if found {
		return core.NewValidationError(ErrUsernameExists, core.FieldError{Field: "username", Error: ErrUsernameExists.Error()})
	}
	return nil
}

func (svc *service) CreateMember(ctx context.Context, nm NewMember) (Member, []Member, error) {
	if err := svc.checkUniqueness(ctx, nm.Username, ""); err != nil {
		return Member{}, nil, err
	}

	now := core.NowFunc().UTC()
	mbr := Member{
		Username:    nm.Username,
		Name:        nm.Name,
		Email:       nm.Email,
		Role:        nm.Role,
		Department:  nm.Department,
		Status:      StatusPending,
		Semester:    nm.Semester,
		Subject:     nm.Subject,
		SubjectCode: nm.SubjectCode,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := mbr.SetPassword(nm.TempPassword); err != nil {
		return Member{}, nil, errors.Wrap(err, "hashing temporary password")
	}

	mbr, err := svc.repo.CreateMember(ctx, mbr)
	if err != nil {
		return Member{}, nil, errors.Wrap(err, "creating member")
	}
	svc.sendTempPasswordMail(mbr, nm.TempPassword)

	all, err := svc.ListMembers(ctx)
	if err != nil {
		return mbr, nil, errors.Wrap(err, "refetching members")
	}
	return mbr, all, nil
}

func (svc *service) ListMembers(ctx context.Context) ([]Member, error) {
	all := make([]Member, 0)
	for _, role := range StaffRoles {
		members, err := svc.repo.QueryAllMembers(ctx, role)
		if err != nil {
			return nil, err
		}
		for _, mbr := range members {
			mbr.Role = role
			all = append(all, mbr)
		}
	}
	return all, nil
}

func (svc *service) GetMember(ctx context.Context, role, id string) (Member, error) {
	return svc.repo.GetMemberByID(ctx, role, id)
}

func (svc *service) UpdateMember(ctx context.Context, orig Member, um UpdateMember) (Member, error) {
	if um.Username != orig.Username {
		if err := svc.checkUniqueness(ctx, um.Username, orig.ID); err != nil {
			return Member{}, err
		}
	}
	mbr := orig
	mbr.Username = um.Username
	mbr.Name = um.Name
	mbr.Email = um.Email
	mbr.Department = um.Department
	mbr.Status = um.Status
	mbr.Semester = um.Semester
	mbr.Subject = um.Subject
	mbr.SubjectCode = um.SubjectCode
	mbr.UpdatedAt = core.NowFunc().UTC()
	return svc.repo.UpdateMember(ctx, mbr)
}

func (svc *service) DeleteMember(ctx context.Context, role, id string) error {
	return svc.repo.DeleteMember(ctx, role, id)
}

func (svc *service) ResetTempPassword(ctx context.Context, role, id string) (Member, string, error) {
	mbr, err := svc.repo.GetMemberByID(ctx, role, id)
	if err != nil {
		return Member{}, "", err
	}

	pwd := core.RandomString(tempPasswordLen)
	if err = mbr.SetPassword(pwd); err != nil {
		return Member{}, "", errors.Wrap(err, "hashing temporary password")
	}
	mbr.PasswordChanged = false
	mbr.Status = StatusPending
	mbr.UpdatedAt = core.NowFunc().UTC()
	if mbr, err = svc.repo.UpdateMember(ctx, mbr); err != nil {
		return Member{}, "", errors.Wrap(err, "updating member")
	}

	svc.sendTempPasswordMail(mbr, pwd)
	return mbr, pwd, nil
}

func wrongPassword() error {
	return core.NewValidationError(errWrongPassword, core.FieldError{Field: "currentPassword", Error: errWrongPassword.Error()})
}

func (svc *service) ChangePassword(ctx context.Context, role, username string, cp ChangePassword) error {
	switch role {
	case auth.RoleAdmin:
		adm, err := svc.repo.GetAdminByUsername(ctx, username)
		if err != nil {
			return err
		}
		if err = cp.validate(svc.validate, adm.Name, adm.Username, adm.Email); err != nil {
			return err
		}
		if adm.CheckPassword(cp.CurrentPassword) != nil {
			return wrongPassword()
		}
		if err = adm.SetPassword(cp.Password); err != nil {
			return errors.Wrap(err, "hashing password")
		}
		_, err = svc.repo.UpdateAdmin(ctx, adm)
		return errors.Wrap(err, "updating admin")

	case auth.RoleCC, auth.RoleTeacher:
		mbr, err := svc.repo.GetMemberByUsername(ctx, role, username)
		if err != nil {
			return err
		}
		if err = cp.validate(svc.validate, mbr.Name, mbr.Username, mbr.Email); err != nil {
			return err
		}
		if mbr.CheckPassword(cp.CurrentPassword) != nil {
			return wrongPassword()
		}
		if err = mbr.SetPassword(cp.Password); err != nil {
			return errors.Wrap(err, "hashing password")
		}
		mbr.PasswordChanged = true
		if mbr.Status == StatusPending {
			mbr.Status = StatusActive
		}
		mbr.UpdatedAt = core.NowFunc().UTC()
		_, err = svc.repo.UpdateMember(ctx, mbr)
		return errors.Wrap(err, "updating member")
	}
	return ErrNotFound
}

func (svc *service) CreateAdmin(ctx context.Context, na NewAdmin) (Admin, error) {
	if err := svc.checkUniqueness(ctx, na.Username, ""); err != nil {
		return Admin{}, err
	}
	adm := Admin{
		Username:  na.Username,
		Name:      na.Name,
		Email:     na.Email,
		CreatedAt: core.NowFunc().UTC(),
	}
	if err := adm.SetPassword(na.Password); err != nil {
		return Admin{}, errors.Wrap(err, "hashing password")
	}
	return svc.repo.CreateAdmin(ctx, adm)
}

func (svc *service) SeedAdmin(ctx context.Context, username, password string) (Admin, bool, error) {
	username = core.CleanString(username, true /* lower */)
	adm, err := svc.repo.GetAdminByUsername(ctx, username)
	if err == nil {
		return adm, false, nil
	}
	if errors.Cause(err) != ErrNotFound {
		return Admin{}, false, errors.Wrap(err, "finding admin by username")
	}

	adm = Admin{
		Username:  username,
		Name:      "Administrator",
		CreatedAt: core.NowFunc().UTC(),
	}
	if err = adm.SetPassword(password); err != nil {
		return Admin{}, false, errors.Wrap(err, "hashing password")
	}
	adm, err = svc.repo.CreateAdmin(ctx, adm)
	if err != nil {
		return Admin{}, false, errors.Wrap(err, "creating admin")
	}
	return adm, true, nil
}

func (svc *service) SetAdminPassword(ctx context.Context, username, password string) error {
	adm, err := svc.repo.GetAdminByUsername(ctx, core.CleanString(username, true /* lower */))
	if err != nil {
		return err
	}
	if err = adm.SetPassword(password); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	_, err = svc.repo.UpdateAdmin(ctx, adm)
	return errors.Wrap(err, "updating admin")
}

func (svc *service) AdminFinder() auth.PrincipalFinder {
	return auth.PrincipalFinderFunc(func(ctx context.Context, username string) (auth.Principal, bool, error) {
		adm, err := svc.repo.GetAdminByUsername(ctx, core.CleanString(username, true /* lower */))
		if err != nil {
			if errors.Cause(err) == ErrNotFound {
				return auth.Principal{}, false, nil
			}
			return auth.Principal{}, false, err
		}
		return auth.Principal{ID: adm.ID, Username: adm.Username, PasswordHash: adm.PasswordHash, Active: true}, true, nil
	})
}

func (svc *service) MemberFinder(role string) auth.PrincipalFinder {
	return auth.PrincipalFinderFunc(func(ctx context.Context, username string) (auth.Principal, bool, error) {
		mbr, err := svc.repo.GetMemberByUsername(ctx, role, core.CleanString(username, true /* lower */))
		if err != nil {
			if errors.Cause(err) == ErrNotFound {
				return auth.Principal{}, false, nil
			}
			return auth.Principal{}, false, err
		}
		return auth.Principal{
			ID:                 mbr.ID,
			Username:           mbr.Username,
			PasswordHash:       mbr.PasswordHash,
			Active:             mbr.IsActive(),
			MustChangePassword: !mbr.PasswordChanged,
		}, true, nil
	})
}

func (svc *service) sendTempPasswordMail(mbr Member, pwd string) {
	if mbr.Email == "" {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: mbr.Name, Address: mbr.Email}},
		Subject:      "Your temporary password",
		TemplateName: "temp_password",
		TemplateData: map[string]interface{}{
			"Name":         mbr.Name,
			"Username":     mbr.Username,
			"TempPassword": pwd,
		},
	})
}
