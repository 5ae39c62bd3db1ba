package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/Meghashree-V/smart-surveillance-system-for-campus/core"
)

// dummyHash is compared against when the user does not exist, so lookups of unknown users take as long as
// lookups of known ones.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)

type (
	// Principal is what a user type exposes for credential verification.
	Principal struct {
		ID                 string
		Username           string
		PasswordHash       []byte
		Active             bool
		MustChangePassword bool // still on a temporary password
	}

	// PrincipalFinder looks users of one type up by username.
	// found is false (with a nil error) when no user matches.
	PrincipalFinder interface {
		FindPrincipal(ctx context.Context, username string) (p Principal, found bool, err error)
	}

	// PrincipalFinderFunc adapts a function to a PrincipalFinder.
	PrincipalFinderFunc func(ctx context.Context, username string) (Principal, bool, error)

	Service struct {
		finders  map[string]PrincipalFinder
		sessions SessionStore
		ttl      time.Duration
	}
)

func (f PrincipalFinderFunc) FindPrincipal(ctx context.Context, username string) (Principal, bool, error) {
	return f(ctx, username)
}

func NewService(sessions SessionStore, ttl time.Duration) *Service {
	return &Service{
		finders:  make(map[string]PrincipalFinder, len(Roles)),
		sessions: sessions,
		ttl:      ttl,
	}
}

// Register sets the PrincipalFinder used to verify users of the given role.
func (svc *Service) Register(role string, finder PrincipalFinder) {
	svc.finders[role] = finder
}

// SessionTTL is how long sessions live after login.
func (svc *Service) SessionTTL() time.Duration { return svc.ttl }

// Login verifies the credentials of a user of the given role and establishes a session.
// The same checks apply to every role: known role, existing & active user, bcrypt password match.
func (svc *Service) Login(ctx context.Context, role, username, password string) (Session, error) {
	role = core.CleanString(role, true /* lower */)
	username = core.CleanString(username) // finders normalize the business key

	finder, ok := svc.finders[role]
	if !ok || username == "" || password == "" {
		return Session{}, core.ErrInvalidCredentials
	}

	p, found, err := finder.FindPrincipal(ctx, username)
	if err != nil {
		return Session{}, errors.Wrap(err, "finding principal")
	}
	hash := p.PasswordHash
	if !found || len(hash) == 0 {
		hash = dummyHash
	}
	if err = bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil || !found || !p.Active {
		return Session{}, core.ErrInvalidCredentials
	}

	now := core.NowFunc().UTC()
	sess := Session{
		ID:                 uuid.NewString(),
		UserType:           role,
		UserID:             p.ID,
		Username:           p.Username,
		MustChangePassword: p.MustChangePassword,
		CreatedAt:          now,
		ExpiresAt:          now.Add(svc.ttl),
	}
	if err = svc.sessions.Save(ctx, sess, svc.ttl); err != nil {
		return Session{}, errors.Wrap(err, "saving session")
	}
	return sess, nil
}

// Verify returns the live session identified by id.
func (svc *Service) Verify(ctx context.Context, id string) (Session, error) {
	sess, err := svc.sessions.Get(ctx, id)
	if err != nil {
		return Session{}, err
	}
	if !sess.ExpiresAt.IsZero() && core.NowFunc().After(sess.ExpiresAt) {
		_ = svc.sessions.Delete(ctx, id)
		return Session{}, ErrSessionNotFound
	}
	return sess, nil
}

// PasswordChanged lifts the password rotation requirement of the session identified by id.
func (svc *Service) PasswordChanged(ctx context.Context, id string) (Session, error) {
	sess, err := svc.Verify(ctx, id)
	if err != nil {
		return Session{}, err
	}
	sess.MustChangePassword = false
	ttl := sess.ExpiresAt.Sub(core.NowFunc())
	if sess.ExpiresAt.IsZero() || ttl <= 0 {
		ttl = svc.ttl
	}
	if err = svc.sessions.Save(ctx, sess, ttl); err != nil {
		return Session{}, errors.Wrap(err, "saving session")
	}
	return sess, nil
}

// Logout tears the session down. Unknown sessions are ignored.
func (svc *Service) Logout(ctx context.Context, id string) error {
	if err := svc.sessions.Delete(ctx, id); err != nil && err != ErrSessionNotFound {
		return errors.Wrap(err, "deleting session")
	}
	return nil
}
