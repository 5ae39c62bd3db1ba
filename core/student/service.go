// Package student implements the student registration workflow & the class coordinators' student roster.
package student

import (
	"context"
	"net/url"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/auth"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/invite"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/upload"
)

const videoFolder = "videos"

var (
	// errors
	ErrNotFound      = errors.New("student not found")
	ErrUsnExists     = errors.New("a student with this usn already exists")
	errVideoRequired = errors.New("a face video is required")
)

type (
	// Repository stores students in the `students` collection. Lookups return ErrNotFound on empty results.
	Repository interface {
		CreateStudent(ctx context.Context, std Student) (Student, error)
		QueryAllStudents(ctx context.Context) ([]Student, error)
		GetStudentByID(ctx context.Context, id string) (Student, error)
		// GetStudentByUsn returns the first match when several students share usn.
		GetStudentByUsn(ctx context.Context, usn string) (Student, error)
		UpdateStudent(ctx context.Context, std Student) (Student, error)
		DeleteStudent(ctx context.Context, id string) error
	}

	// Inviter queues registration invites.
	Inviter interface {
		Enqueue(ctx context.Context, job invite.Job) (bool, error)
	}

	Options struct {
		MaxVideoSize        int64
		RegistrationBaseURL string // students added by a class coordinator are invited to complete their registration here
	}

	Service interface {
		// Register validates reg, guards & stores its video then inserts the student. Students invited by a
		// class coordinator complete their existing record instead.
		Register(ctx context.Context, reg Registration) (Student, error)
		Create(ctx context.Context, ns NewStudent) (Student, error)
		List(ctx context.Context) ([]Student, error)
		Get(ctx context.Context, id string) (Student, error)
		GetByUsn(ctx context.Context, usn string) (Student, error)
		Update(ctx context.Context, orig Student, us UpdateStudent) (Student, error)
		Delete(ctx context.Context, id string) error
		Finder() auth.PrincipalFinder
	}

	service struct {
		repo     Repository
		media    upload.MediaStore
		inviter  Inviter
		validate *validator.Validate
		logger   core.Logger
		opts     Options
	}
)

var _ Service = (*service)(nil)

func NewService(
	repo Repository,
	media upload.MediaStore,
	inviter Inviter,
	validate *validator.Validate,
	logger core.Logger,
	opts Options,
) Service {
	return &service{
		repo:     repo,
		media:    media,
		inviter:  inviter,
		validate: validate,
		logger:   logger,
		opts:     opts,
	}
}

// findByUsn returns found=false (and a nil error) when no student uses usn.
func (svc *service) findByUsn(ctx context.Context, usn string) (Student, bool, error) {
	std, err := svc.repo.GetStudentByUsn(ctx, usn)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Student{}, false, nil
		}
		return Student{}, false, errors.Wrap(err, "finding student by usn")
	}
	return std, true, nil
}

func usnExists() error {
	return core.NewValidationError(ErrUsnExists, core.FieldError{Field: "usn", Error: ErrUsnExists.Error()})
}

func (svc *service) Register(ctx context.Context, reg Registration) (Student, error) {
	if err := reg.Validate(svc.validate); err != nil {
		return Student{}, err
	}
	if err := upload.Video("video", svc.opts.MaxVideoSize).Check(*reg.Video); err != nil {
		return Student{}, err
	}

	existing, found, err := svc.findByUsn(ctx, reg.Usn)
	if err != nil {
		return Student{}, err
	}
	if found && existing.Registered() {
		return Student{}, usnExists()
	}

	videoURL, err := svc.media.Save(ctx, videoFolder, *reg.Video)
	if err != nil {
		return Student{}, errors.Wrap(err, "saving video")
	}

	now := core.NowFunc().UTC()
	std := Student{
		Usn:              reg.Usn,
		Name:             reg.Name,
		Semester:         reg.Semester,
		Section:          reg.Section,
		Branch:           reg.Branch,
		Email:            reg.Email,
		Phone:            reg.Phone,
		Address:          reg.Address,
		ParentDetails:    reg.ParentDetails,
		VideoURL:         videoURL,
		ConsentGiven:     reg.ConsentGiven,
		RegistrationLink: reg.RegistrationLink,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err = std.SetPassword(reg.Password); err != nil {
		return Student{}, errors.Wrap(err, "hashing password")
	}

	if found {
		// completing an invited registration
		std.ID = existing.ID
		std.CreatedAt = existing.CreatedAt
		if std.RegistrationLink == "" {
			std.RegistrationLink = existing.RegistrationLink
		}
		return svc.repo.UpdateStudent(ctx, std)
	}

	if std, err = svc.repo.CreateStudent(ctx, std); err != nil {
		return Student{}, err
	}
	svc.invite(ctx, std)
	return std, nil
}

func (svc *service) registrationLink(usn string) string {
	if svc.opts.RegistrationBaseURL == "" {
		return ""
	}
	u, err := url.Parse(svc.opts.RegistrationBaseURL)
	if err != nil {
		return ""
	}
	q := u.Query()
	q.Set("usn", usn)
	u.RawQuery = q.Encode()
	return u.String()
}

func (svc *service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	if _, found, err := svc.findByUsn(ctx, ns.Usn); err != nil {
		return Student{}, err
	} else if found {
		return Student{}, usnExists()
	}

	now := core.NowFunc().UTC()
	std := Student{
		Usn:              ns.Usn,
		Name:             ns.Name,
		Semester:         ns.Semester,
		Section:          ns.Section,
		Branch:           ns.Branch,
		Email:            ns.Email,
		Phone:            ns.Phone,
		Address:          ns.Address,
		ConsentGiven:     ns.ConsentGiven,
		RegistrationLink: svc.registrationLink(ns.Usn),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if ns.ParentDetails != nil {
		std.ParentDetails = *ns.ParentDetails
	}

	std, err := svc.repo.CreateStudent(ctx, std)
	if err != nil {
		return Student{}, err
	}
	svc.invite(ctx, std)
	return std, nil
}

// invite queues the registration invite of a newly created student. Failures are logged, never returned.
func (svc *service) invite(ctx context.Context, std Student) {
	job := invite.Job{
		StudentID: std.ID,
		Invite:    invite.Invite{Email: std.Email, Name: std.Name, RegistrationLink: std.RegistrationLink},
	}
	if _, err := svc.inviter.Enqueue(ctx, job); err != nil {
		svc.logger.Error("queueing invite", err, map[string]interface{}{"studentId": std.ID})
	}
}

func (svc *service) List(ctx context.Context) ([]Student, error) {
	return svc.repo.QueryAllStudents(ctx)
}

func (svc *service) Get(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

func (svc *service) GetByUsn(ctx context.Context, usn string) (Student, error) {
	return svc.repo.GetStudentByUsn(ctx, normUsn(usn))
}

func (svc *service) Update(ctx context.Context, orig Student, us UpdateStudent) (Student, error) {
	if us.Usn != orig.Usn {
		existing, found, err := svc.findByUsn(ctx, us.Usn)
		if err != nil {
			return Student{}, err
		}
		if found && existing.ID != orig.ID {
			return Student{}, usnExists()
		}
	}

	std := orig
	std.Usn = us.Usn
	std.Name = us.Name
	std.Semester = us.Semester
	std.Section = us.Section
	std.Branch = us.Branch
	std.Email = us.Email
	std.Phone = us.Phone
	std.Address = us.Address
	if us.ParentDetails != nil {
		std.ParentDetails = *us.ParentDetails
	}
	std.UpdatedAt = core.NowFunc().UTC()
	return svc.repo.UpdateStudent(ctx, std)
}

func (svc *service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteStudent(ctx, id)
}

// Finder looks students up by usn. Students who never completed their registration cannot log in.
func (svc *service) Finder() auth.PrincipalFinder {
	return auth.PrincipalFinderFunc(func(ctx context.Context, username string) (auth.Principal, bool, error) {
		std, found, err := svc.findByUsn(ctx, normUsn(username))
		if err != nil || !found {
			return auth.Principal{}, false, err
		}
		return auth.Principal{
			ID:           std.ID,
			Username:     std.Usn,
			PasswordHash: std.PasswordHash,
			Active:       std.Registered(),
		}, true, nil
	})
}
