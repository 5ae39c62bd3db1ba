// Package event handles the students' requests to attend events during class hours.
package event

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/upload"
)

const (
	letterFolder = "events/letters"
	selfieFolder = "events/selfies"
)

var (
	// errors
	ErrNotFound       = errors.New("event request not found")
	ErrNotOwner       = errors.New("event request belongs to another student")
	errNotPending     = errors.New("event request was already reviewed")
	errLetterRequired = errors.New("a permission letter is required")
	errSelfieRequired = errors.New("a selfie is required")
)

type (
	// Repository stores requests in the `event_requests` collection.
	Repository interface {
		CreateRequest(ctx context.Context, req Request) (Request, error)
		QueryAllRequests(ctx context.Context) ([]Request, error)
		QueryRequestsByStudent(ctx context.Context, usn string) ([]Request, error)
		GetRequestByID(ctx context.Context, id string) (Request, error)
		UpdateRequest(ctx context.Context, req Request) (Request, error)
		DeleteRequest(ctx context.Context, id string) error
	}

	Service interface {
		Create(ctx context.Context, studentUsn string, nr NewRequest) (Request, error)
		List(ctx context.Context, f Filter) ([]Request, error)
		Get(ctx context.Context, id string) (Request, error)
		// Review moves a pending request to approved or rejected.
		Review(ctx context.Context, id, reviewer string, rv Review) (Request, error)
		// Delete withdraws a pending request of studentUsn.
		Delete(ctx context.Context, id, studentUsn string) error
	}

	service struct {
		repo     Repository
		media    upload.MediaStore
		validate *validator.Validate
		maxSize  int64
	}
)

var _ Service = (*service)(nil)

// NewService returns the event request service. Uploaded documents larger than maxDocSize are rejected.
func NewService(repo Repository, media upload.MediaStore, validate *validator.Validate, maxDocSize int64) Service {
	return &service{
		repo:     repo,
		media:    media,
		validate: validate,
		maxSize:  maxDocSize,
	}
}

func (svc *service) Create(ctx context.Context, studentUsn string, nr NewRequest) (Request, error) {
	if err := nr.Validate(svc.validate); err != nil {
		return Request{}, err
	}
	if err := upload.Document("permissionLetter", svc.maxSize).Check(*nr.PermissionLetter); err != nil {
		return Request{}, err
	}
	if err := upload.Image("selfie", svc.maxSize).Check(*nr.Selfie); err != nil {
		return Request{}, err
	}

	letterURL, err := svc.media.Save(ctx, letterFolder, *nr.PermissionLetter)
	if err != nil {
		return Request{}, errors.Wrap(err, "saving permission letter")
	}
	selfieURL, err := svc.media.Save(ctx, selfieFolder, *nr.Selfie)
	if err != nil {
		return Request{}, errors.Wrap(err, "saving selfie")
	}

	return svc.repo.CreateRequest(ctx, Request{
		StudentUsn:          studentUsn,
		EventName:           nr.EventName,
		EventDate:           nr.EventDate,
		EventTime:           nr.EventTime,
		Venue:               nr.Venue,
		Description:         nr.Description,
		AffectedSubject:     nr.AffectedSubject,
		PermissionLetterURL: letterURL,
		SelfieURL:           selfieURL,
		Status:              StatusPending,
		CreatedAt:           core.NowFunc().UTC(),
	})
}

func (svc *service) List(ctx context.Context, f Filter) ([]Request, error) {
	var (
		reqs []Request
		err  error
	)
	if f.StudentUsn != "" {
		reqs, err = svc.repo.QueryRequestsByStudent(ctx, f.StudentUsn)
	} else {
		reqs, err = svc.repo.QueryAllRequests(ctx)
	}
	if err != nil {
		return nil, err
	}
	status := core.CleanString(f.Status, true /* lower */)
	if status == "" {
		return reqs, nil
	}
	return lo.Filter(reqs, func(r Request, _ int) bool { return r.Status == status }), nil
}

func (svc *service) Get(ctx context.Context, id string) (Request, error) {
	return svc.repo.GetRequestByID(ctx, id)
}

func (svc *service) Review(ctx context.Context, id, reviewer string, rv Review) (Request, error) {
	if err := rv.Validate(svc.validate); err != nil {
		return Request{}, err
	}
	req, err := svc.repo.GetRequestByID(ctx, id)
	if err != nil {
		return Request{}, err
	}
	if !req.IsPending() {
		return Request{}, core.NewFieldError("status", errNotPending.Error())
	}

	now := core.NowFunc().UTC()
	req.Status = rv.Status
	req.ReviewedBy = reviewer
	req.ReviewedAt = &now
	return svc.repo.UpdateRequest(ctx, req)
}

func (svc *service) Delete(ctx context.Context, id, studentUsn string) error {
	req, err := svc.repo.GetRequestByID(ctx, id)
	if err != nil {
		return err
	}
	if req.StudentUsn != studentUsn {
		return ErrNotOwner
	}
	if !req.IsPending() {
		return core.NewFieldError("status", errNotPending.Error())
	}
	return svc.repo.DeleteRequest(ctx, id)
}
