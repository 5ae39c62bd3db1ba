package event

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/upload"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

var Statuses = []string{StatusPending, StatusApproved, StatusRejected}

type Request struct {
	ID                  string     `bson:"_id,omitempty" firestore:"-" json:"id"`
	StudentUsn          string     `bson:"studentUsn" firestore:"studentUsn" json:"studentUsn"`
	EventName           string     `bson:"eventName" firestore:"eventName" json:"eventName"`
	EventDate           string     `bson:"eventDate" firestore:"eventDate" json:"eventDate"`
	EventTime           string     `bson:"eventTime" firestore:"eventTime" json:"eventTime"`
	Venue               string     `bson:"venue" firestore:"venue" json:"venue"`
	Description         string     `bson:"description" firestore:"description" json:"description"`
	AffectedSubject     string     `bson:"affectedSubject" firestore:"affectedSubject" json:"affectedSubject"`
	PermissionLetterURL string     `bson:"permissionLetterUrl" firestore:"permissionLetterUrl" json:"permissionLetterUrl"`
	SelfieURL           string     `bson:"selfieUrl" firestore:"selfieUrl" json:"selfieUrl"`
	Status              string     `bson:"status" firestore:"status" json:"status"`
	CreatedAt           time.Time  `bson:"createdAt" firestore:"createdAt" json:"createdAt"` // UTC
	ReviewedBy          string     `bson:"reviewedBy,omitempty" firestore:"reviewedBy,omitempty" json:"reviewedBy,omitempty"`
	ReviewedAt          *time.Time `bson:"reviewedAt,omitempty" firestore:"reviewedAt,omitempty" json:"reviewedAt,omitempty"`
}

func (r *Request) SetID(id string) { r.ID = id }

func (r Request) IsPending() bool { return r.Status == StatusPending }

// NewRequest is the multipart form a student submits to attend an event during class hours.
type NewRequest struct {
	EventName       string `json:"eventName" form:"eventName" validate:"required"`
	EventDate       string `json:"eventDate" form:"eventDate" validate:"required"`
	EventTime       string `json:"eventTime" form:"eventTime" validate:"required"`
	Venue           string `json:"venue" form:"venue" validate:"required"`
	Description     string `json:"description" form:"description"`
	AffectedSubject string `json:"affectedSubject" form:"affectedSubject" validate:"required"`

	PermissionLetter *upload.File `json:"-" form:"-"` // pdf or image
	Selfie           *upload.File `json:"-" form:"-"` // image
}

func (nr *NewRequest) Clean() {
	nr.EventName = core.CleanString(nr.EventName)
	nr.EventDate = core.CleanString(nr.EventDate)
	nr.EventTime = core.CleanString(nr.EventTime)
	nr.Venue = core.CleanString(nr.Venue)
	nr.Description = core.CleanString(nr.Description)
	nr.AffectedSubject = core.CleanString(nr.AffectedSubject)
}

// Validate checks the form fields, then that both documents are attached.
func (nr *NewRequest) Validate(validate *validator.Validate) error {
	nr.Clean()
	if err := validate.Struct(nr); err != nil {
		return err
	}
	var flds []core.FieldError
	if nr.PermissionLetter == nil {
		flds = append(flds, core.FieldError{Field: "permissionLetter", Error: errLetterRequired.Error()})
	}
	if nr.Selfie == nil {
		flds = append(flds, core.FieldError{Field: "selfie", Error: errSelfieRequired.Error()})
	}
	if len(flds) > 0 {
		return core.NewValidationError(errors.New("missing documents"), flds...)
	}
	return nil
}

// Review is a class coordinator's (or admin's) decision on a pending request.
type Review struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
}

func (rv *Review) Validate(validate *validator.Validate) error {
	rv.Status = core.CleanString(rv.Status, true /* lower */)
	return validate.Struct(rv)
}

// Filter narrows List down. Empty fields match everything.
type Filter struct {
	StudentUsn string
	Status     string
}
