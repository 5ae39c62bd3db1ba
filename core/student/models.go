package student

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/upload"
)

type ParentDetails struct {
	FatherName  string `bson:"fatherName" firestore:"fatherName" json:"fatherName" form:"fatherName" validate:"required"`
	FatherPhone string `bson:"fatherPhone" firestore:"fatherPhone" json:"fatherPhone" form:"fatherPhone" validate:"required"`
	MotherName  string `bson:"motherName" firestore:"motherName" json:"motherName" form:"motherName" validate:"required"`
	MotherPhone string `bson:"motherPhone" firestore:"motherPhone" json:"motherPhone" form:"motherPhone" validate:"required"`
}

func (pd *ParentDetails) Clean() {
	pd.FatherName = core.CleanString(pd.FatherName)
	pd.FatherPhone = core.CleanString(pd.FatherPhone)
	pd.MotherName = core.CleanString(pd.MotherName)
	pd.MotherPhone = core.CleanString(pd.MotherPhone)
}

type Student struct {
	ID               string        `bson:"_id,omitempty" firestore:"-" json:"id"`
	Usn              string        `bson:"usn" firestore:"usn" json:"usn"`
	Name             string        `bson:"name" firestore:"name" json:"name"`
	Semester         string        `bson:"semester" firestore:"semester" json:"semester"`
	Section          string        `bson:"section" firestore:"section" json:"section"`
	Branch           string        `bson:"branch" firestore:"branch" json:"branch"`
	Email            string        `bson:"email" firestore:"email" json:"email"`
	Phone            string        `bson:"phone" firestore:"phone" json:"phone"`
	Address          string        `bson:"address" firestore:"address" json:"address"`
	ParentDetails    ParentDetails `bson:"parentDetails" firestore:"parentDetails" json:"parentDetails"`
	PasswordHash     []byte        `bson:"passwordHash,omitempty" firestore:"passwordHash,omitempty" json:"-"`
	VideoURL         string        `bson:"videoUrl" firestore:"videoUrl" json:"videoUrl"`
	ConsentGiven     bool          `bson:"consentGiven" firestore:"consentGiven" json:"consentGiven"`
	RegistrationLink string        `bson:"registrationLink,omitempty" firestore:"registrationLink,omitempty" json:"registrationLink,omitempty"`
	CreatedAt        time.Time     `bson:"createdAt" firestore:"createdAt" json:"createdAt"` // UTC
	UpdatedAt        time.Time     `bson:"updatedAt" firestore:"updatedAt" json:"updatedAt"` // UTC
}

func (s *Student) SetID(id string) { s.ID = id }

func (s *Student) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	s.PasswordHash = hash
	return nil
}

// Registered reports whether the student completed the self-registration (has a password).
// Students added by a class coordinator are invited to complete it.
func (s Student) Registered() bool { return len(s.PasswordHash) > 0 }

func normUsn(usn string) string {
	return strings.ToUpper(core.CleanString(usn))
}

// Registration is the student self-registration form.
type Registration struct {
	Name             string        `json:"name" form:"name" validate:"required"`
	Usn              string        `json:"usn" form:"usn" validate:"required,alphanum"`
	Semester         string        `json:"semester" form:"semester" validate:"required"`
	Section          string        `json:"section" form:"section" validate:"required"`
	Branch           string        `json:"branch" form:"branch" validate:"required"`
	Email            string        `json:"email" form:"email" validate:"required,email"`
	Phone            string        `json:"phone" form:"phone" validate:"required"`
	Address          string        `json:"address" form:"address" validate:"required"`
	Password         string        `json:"password" form:"password" validate:"required"`
	ConfirmPassword  string        `json:"confirmPassword" form:"confirmPassword" validate:"required,eqfield=Password"`
	ParentDetails    ParentDetails `json:"parentDetails"`
	ConsentGiven     bool          `json:"consentGiven" form:"consentGiven" validate:"required"`
	RegistrationLink string        `json:"registrationLink" form:"registrationLink" validate:"omitempty,url"`

	// face recognition video
	Video *upload.File `json:"-" form:"-"`
}

func (r *Registration) Clean() {
	r.Name = core.CleanString(r.Name)
	r.Usn = normUsn(r.Usn)
	r.Semester = core.CleanString(r.Semester)
	r.Section = core.CleanString(r.Section)
	r.Branch = core.CleanString(r.Branch)
	r.Email = core.CleanString(r.Email, true /* lower */)
	r.Phone = core.CleanString(r.Phone)
	r.Address = core.CleanString(r.Address)
	r.RegistrationLink = core.CleanString(r.RegistrationLink)
	r.ParentDetails.Clean()
}

// Validate checks the form fields, then that a video is attached. No store call happens.
func (r *Registration) Validate(validate *validator.Validate) error {
	r.Clean()
	if err := validate.Struct(r); err != nil {
		return err
	}
	if r.Video == nil {
		return core.NewFieldError("video", errVideoRequired.Error())
	}
	return nil
}

// NewStudent is a student added by a class coordinator; they get invited to complete their registration.
type NewStudent struct {
	Name          string         `json:"name" validate:"required"`
	Usn           string         `json:"usn" validate:"required,alphanum"`
	Semester      string         `json:"semester" validate:"required"`
	Section       string         `json:"section" validate:"required"`
	Branch        string         `json:"branch" validate:"required"`
	Email         string         `json:"email" validate:"required,email"`
	Phone         string         `json:"phone"`
	Address       string         `json:"address"`
	ParentDetails *ParentDetails `json:"parentDetails" validate:"omitempty"`
	ConsentGiven  bool           `json:"consentGiven" validate:"required"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Usn = normUsn(ns.Usn)
	ns.Semester = core.CleanString(ns.Semester)
	ns.Section = core.CleanString(ns.Section)
	ns.Branch = core.CleanString(ns.Branch)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.Phone = core.CleanString(ns.Phone)
	ns.Address = core.CleanString(ns.Address)
	if ns.ParentDetails != nil {
		ns.ParentDetails.Clean()
	}
	return validate.Struct(ns)
}

// UpdateStudent defines what information may be provided to modify an existing Student.
// Empty fields keep their current value.
type UpdateStudent struct {
	Name          string         `json:"name"`
	Usn           string         `json:"usn" validate:"omitempty,alphanum"`
	Semester      string         `json:"semester"`
	Section       string         `json:"section"`
	Branch        string         `json:"branch"`
	Email         string         `json:"email" validate:"omitempty,email"`
	Phone         string         `json:"phone"`
	Address       string         `json:"address"`
	ParentDetails *ParentDetails `json:"parentDetails" validate:"omitempty"`
}

func (us *UpdateStudent) Validate(orig Student, validate *validator.Validate) error {
	keep := func(val, origVal string) string {
		if val != "" {
			return val
		}
		return origVal
	}
	us.Name = keep(core.CleanString(us.Name), orig.Name)
	us.Usn = keep(normUsn(us.Usn), orig.Usn)
	us.Semester = keep(core.CleanString(us.Semester), orig.Semester)
	us.Section = keep(core.CleanString(us.Section), orig.Section)
	us.Branch = keep(core.CleanString(us.Branch), orig.Branch)
	us.Email = keep(core.CleanString(us.Email, true /* lower */), orig.Email)
	us.Phone = keep(core.CleanString(us.Phone), orig.Phone)
	us.Address = keep(core.CleanString(us.Address), orig.Address)
	if us.ParentDetails != nil {
		us.ParentDetails.Clean()
	}
	return validate.Struct(us)
}
