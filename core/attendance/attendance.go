// Package attendance reads the attendance records marked automatically by the classroom capture system.
package attendance

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core"
)

type (
	Record struct {
		ID              string `bson:"_id,omitempty" firestore:"-" json:"id"`
		TeacherUsername string `bson:"teacherUsername" firestore:"teacherUsername" json:"teacherUsername"`
		Name            string `bson:"name" firestore:"name" json:"name"`
		Usn             string `bson:"usn" firestore:"usn" json:"usn"`
		Subject         string `bson:"subject" firestore:"subject" json:"subject"`
		Date            string `bson:"date" firestore:"date" json:"date"`
		DetectedTime    string `bson:"detectedTime" firestore:"detectedTime" json:"detectedTime"`
		Image           string `bson:"image,omitempty" firestore:"image,omitempty" json:"image,omitempty"`
	}

	NewRecord struct {
		TeacherUsername string `json:"teacherUsername" validate:"required"`
		Name            string `json:"name" validate:"required"`
		Usn             string `json:"usn" validate:"required"`
		Subject         string `json:"subject" validate:"required"`
		Date            string `json:"date" validate:"required"`
		DetectedTime    string `json:"detectedTime" validate:"required"`
		Image           string `json:"image" validate:"omitempty,url"`
	}

	// Repository stores records in the `attendance_auto_marked` collection.
	Repository interface {
		CreateRecord(ctx context.Context, rec Record) (Record, error)
		QueryRecordsByTeacher(ctx context.Context, teacherUsername string) ([]Record, error)
	}

	Service struct {
		repo Repository
	}
)

func (r *Record) SetID(id string) { r.ID = id }

func (nr *NewRecord) Validate(validate *validator.Validate) error {
	nr.TeacherUsername = core.CleanString(nr.TeacherUsername, true /* lower */)
	nr.Name = core.CleanString(nr.Name)
	nr.Usn = strings.ToUpper(core.CleanString(nr.Usn))
	nr.Subject = core.CleanString(nr.Subject)
	nr.Date = core.CleanString(nr.Date)
	nr.DetectedTime = core.CleanString(nr.DetectedTime)
	nr.Image = core.CleanString(nr.Image)
	return validate.Struct(nr)
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Record stores an auto-marked attendance.
func (svc *Service) Record(ctx context.Context, nr NewRecord) (Record, error) {
	return svc.repo.CreateRecord(ctx, Record{
		TeacherUsername: nr.TeacherUsername,
		Name:            nr.Name,
		Usn:             nr.Usn,
		Subject:         nr.Subject,
		Date:            nr.Date,
		DetectedTime:    nr.DetectedTime,
		Image:           nr.Image,
	})
}

// ListForTeacher returns the records of teacherUsername (exact match).
func (svc *Service) ListForTeacher(ctx context.Context, teacherUsername string) ([]Record, error) {
	return svc.repo.QueryRecordsByTeacher(ctx, core.CleanString(teacherUsername, true /* lower */))
}
