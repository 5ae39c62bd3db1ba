package auth

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// User types
const (
	RoleAdmin   = "admin"
	RoleCC      = "cc"
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

var (
	Roles      = []string{RoleAdmin, RoleCC, RoleTeacher, RoleStudent}
	StaffRoles = []string{RoleCC, RoleTeacher}

	ErrSessionNotFound = errors.New("session not found")
)

// Session is who is logged in, established at login and torn down at logout.
type Session struct {
	ID                 string    `json:"id"`
	UserType           string    `json:"userType"`
	UserID             string    `json:"userId"`
	Username           string    `json:"username"`
	MustChangePassword bool      `json:"mustChangePassword"`
	CreatedAt          time.Time `json:"createdAt"`
	ExpiresAt          time.Time `json:"expiresAt"`
}

func (s Session) Is(roles ...string) bool {
	for _, role := range roles {
		if s.UserType == role {
			return true
		}
	}
	return false
}

// SessionStore persists live sessions until they expire or get deleted.
type SessionStore interface {
	Save(ctx context.Context, sess Session, ttl time.Duration) error
	// Get returns ErrSessionNotFound for unknown or expired sessions.
	Get(ctx context.Context, id string) (Session, error)
	Delete(ctx context.Context, id string) error
}

type ctxKey struct{}

// NewContext returns a copy of ctx carrying sess.
func NewContext(ctx context.Context, sess Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, sess)
}

// FromContext returns the Session carried by ctx, if any.
func FromContext(ctx context.Context) (Session, bool) {
	sess, ok := ctx.Value(ctxKey{}).(Session)
	return sess, ok
}

func IsValidRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}
