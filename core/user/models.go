package user

import (
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core"
	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core/auth"
)

// Staff statuses
const (
	StatusPending  = "pending" // until the temporary password is changed
	StatusActive   = "active"
	StatusInactive = "inactive"
)

var (
	StaffRoles = auth.StaffRoles
	Statuses   = []string{StatusPending, StatusActive, StatusInactive}
)

type Admin struct {
	ID           string    `bson:"_id,omitempty" firestore:"-" json:"id"`
	Username     string    `bson:"username" firestore:"username" json:"username"`
	Name         string    `bson:"name" firestore:"name" json:"name"`
	Email        string    `bson:"email" firestore:"email" json:"email"`
	PasswordHash []byte    `bson:"passwordHash" firestore:"passwordHash" json:"-"`
	CreatedAt    time.Time `bson:"createdAt" firestore:"createdAt" json:"createdAt"` // UTC
}

func (a *Admin) SetID(id string) { a.ID = id }

func (a *Admin) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.PasswordHash = hash
	return nil
}

func (a *Admin) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(pwd))
}

// Member is a staff user: a class coordinator (RoleCC) or a subject teacher (RoleTeacher).
// Semester, Subject & SubjectCode are only set for subject teachers.
type Member struct {
	ID              string    `bson:"_id,omitempty" firestore:"-" json:"id"`
	Username        string    `bson:"username" firestore:"username" json:"username"`
	Name            string    `bson:"name" firestore:"name" json:"name"`
	Email           string    `bson:"email" firestore:"email" json:"email"`
	Role            string    `bson:"role" firestore:"role" json:"role"`
	Department      string    `bson:"department" firestore:"department" json:"department"`
	Status          string    `bson:"status" firestore:"status" json:"status"`
	PasswordChanged bool      `bson:"passwordChanged" firestore:"passwordChanged" json:"passwordChanged"`
	PasswordHash    []byte    `bson:"passwordHash" firestore:"passwordHash" json:"-"`
	Semester        string    `bson:"semester,omitempty" firestore:"semester,omitempty" json:"semester,omitempty"`
	Subject         string    `bson:"subject,omitempty" firestore:"subject,omitempty" json:"subject,omitempty"`
	SubjectCode     string    `bson:"subjectCode,omitempty" firestore:"subjectCode,omitempty" json:"subjectCode,omitempty"`
	CreatedAt       time.Time `bson:"createdAt" firestore:"createdAt" json:"createdAt"` // UTC
	UpdatedAt       time.Time `bson:"updatedAt" firestore:"updatedAt" json:"updatedAt"` // UTC
}

func (m *Member) SetID(id string) { m.ID = id }

func (m *Member) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	m.PasswordHash = hash
	return nil
}

func (m *Member) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(m.PasswordHash, []byte(pwd))
}

func (m Member) IsTeacher() bool { return m.Role == auth.RoleTeacher }
func (m Member) IsActive() bool  { return m.Status != StatusInactive }

// NewMember contains information needed to create a new Member.
type NewMember struct {
	Username     string `json:"username" validate:"required,alphanum_"`
	Name         string `json:"name" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	Role         string `json:"role" validate:"required,staffrole"`
	Department   string `json:"department" validate:"required"`
	TempPassword string `json:"tempPassword" validate:"required"`
	Semester     string `json:"semester" validate:"required_if=Role teacher"`
	Subject      string `json:"subject" validate:"required_if=Role teacher"`
	SubjectCode  string `json:"subjectCode" validate:"required_if=Role teacher"`
}

func (nm *NewMember) Clean() {
	nm.Username = core.CleanString(nm.Username, true /* lower */)
	nm.Name = core.CleanString(nm.Name)
	nm.Email = core.CleanString(nm.Email, true /* lower */)
	nm.Role = core.CleanString(nm.Role, true /* lower */)
	nm.Department = core.CleanString(nm.Department)
	nm.TempPassword = core.CleanString(nm.TempPassword)
	nm.Semester = core.CleanString(nm.Semester)
	nm.Subject = core.CleanString(nm.Subject)
	nm.SubjectCode = core.CleanString(nm.SubjectCode)
	if nm.Role != auth.RoleTeacher {
		nm.Semester, nm.Subject, nm.SubjectCode = "", "", ""
	}
}

func (nm *NewMember) Validate(validate *validator.Validate) error {
	nm.Clean()
	return validate.Struct(nm)
}

// UpdateMember defines what information may be provided to modify an existing Member.
// Empty fields keep their current value.
type UpdateMember struct {
	Username    string `json:"username" validate:"omitempty,alphanum_"`
	Name        string `json:"name"`
	Email       string `json:"email" validate:"omitempty,email"`
	Department  string `json:"department"`
	Status      string `json:"status" validate:"omitempty,oneof=pending active inactive"`
	Semester    string `json:"semester"`
	Subject     string `json:"subject"`
	SubjectCode string `json:"subjectCode"`
}

func (um *UpdateMember) Validate(orig Member, validate *validator.Validate) error {
	keep := func(val, origVal string, lower ...bool) string {
		if val = core.CleanString(val, lower...); val != "" {
			return val
		}
		return origVal
	}
	um.Username = keep(um.Username, orig.Username, true)
	um.Name = keep(um.Name, orig.Name)
	um.Email = keep(um.Email, orig.Email, true)
	um.Department = keep(um.Department, orig.Department)
	um.Status = keep(um.Status, orig.Status, true)
	if orig.IsTeacher() {
		um.Semester = keep(um.Semester, orig.Semester)
		um.Subject = keep(um.Subject, orig.Subject)
		um.SubjectCode = keep(um.SubjectCode, orig.SubjectCode)
	} else {
		um.Semester, um.Subject, um.SubjectCode = "", "", ""
	}
	return validate.Struct(um)
}

// NewAdmin contains information needed to create a new Admin (admin CLI).
type NewAdmin struct {
	Username        string `json:"username" validate:"required,alphanum_"`
	Name            string `json:"name"`
	Email           string `json:"email" validate:"omitempty,email"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

func (na *NewAdmin) Validate(validate *validator.Validate) error {
	na.Username = core.CleanString(na.Username, true /* lower */)
	na.Name = core.CleanString(na.Name)
	na.Email = core.CleanString(na.Email, true /* lower */)
	return validate.Struct(na)
}

// ChangePassword is a staff/admin password change; the new password must pass the password policy.
type ChangePassword struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`

	// user attributes the password may not be similar to
	name, username, email string
}

func (cp *ChangePassword) validate(validate *validator.Validate, name, username, email string) error {
	cp.name, cp.username, cp.email = name, username, email
	return validate.Struct(cp)
}
