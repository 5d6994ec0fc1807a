package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/geocoder89/notehub/internal/apperr"
	"github.com/geocoder89/notehub/internal/cache"
	"github.com/geocoder89/notehub/internal/domain/user"
	"github.com/geocoder89/notehub/internal/observability"
	"github.com/geocoder89/notehub/internal/security"
	"github.com/geocoder89/notehub/internal/session"
	"github.com/google/uuid"
)

type UserStore interface {
	Create(ctx context.Context, req user.CreateUserRequest) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id int64) (user.User, error)
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(hash, plain string) error
}

type Deps struct {
	Users      UserStore
	Sessions   session.Store
	Hasher     PasswordHasher
	SessionTTL time.Duration
	// optional
	UserCache *cache.Cache[int64, user.User]
	Prom      *observability.Prom
	Log       *slog.Logger
}

type Service struct {
	users      UserStore
	sessions   session.Store
	hasher     PasswordHasher
	sessionTTL time.Duration
	userCache  *cache.Cache[int64, user.User]
	prom       *observability.Prom
	log        *slog.Logger
	now        func() time.Time
}

func NewService(d Deps) *Service {
	log := d.Log
	if log == nil {
		log = slog.Default()
	}

	ttl := d.SessionTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &Service{
		users:      d.Users,
		sessions:   d.Sessions,
		hasher:     d.Hasher,
		sessionTTL: ttl,
		userCache:  d.UserCache,
		prom:       d.Prom,
		log:        log,
		now:        time.Now,
	}
}

type SignUpInput struct {
	Email     string
	FirstName string
	Password1 string
	Password2 string
}

// validate applies the sign-up rules after the uniqueness check. Email
// format is deliberately not checked beyond its length.
func (in SignUpInput) validate() error {
	switch {
	case utf8.RuneCountInString(in.Email) < minEmailLength:
		return ErrEmailTooShort
	case utf8.RuneCountInString(in.FirstName) < minFirstNameLength:
		return ErrFirstNameTooShort
	case in.Password1 != in.Password2:
		return ErrPasswordMismatch
	case utf8.RuneCountInString(in.Password1) < minPasswordLength:
		return ErrPasswordTooShort
	}

	return nil
}

func (s *Service) SignUp(ctx context.Context, in SignUpInput) (user.User, session.Session, error) {
	_, err := s.users.GetByEmail(ctx, in.Email)

	switch {
	case err == nil:
		s.prom.ObserveAuth("sign_up", ErrEmailExists.Code)
		return user.User{}, session.Session{}, ErrEmailExists
	case !errors.Is(err, user.ErrNotFound):
		return user.User{}, session.Session{}, fmt.Errorf("lookup email: %w", err)
	}

	if err := in.validate(); err != nil {
		s.observeRejection(ctx, "sign_up", err)
		return user.User{}, session.Session{}, err
	}

	hash, err := s.hasher.Hash(in.Password1)
	if err != nil {
		return user.User{}, session.Session{}, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.users.Create(ctx, user.CreateUserRequest{
		Email:        in.Email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
	})
	if err != nil {
		// lost a race with a concurrent sign-up for the same email
		if errors.Is(err, user.ErrEmailTaken) {
			s.prom.ObserveAuth("sign_up", ErrEmailExists.Code)
			return user.User{}, session.Session{}, ErrEmailExists
		}
		return user.User{}, session.Session{}, fmt.Errorf("create user: %w", err)
	}

	sess, err := s.startSession(ctx, u)
	if err != nil {
		return user.User{}, session.Session{}, err
	}

	s.prom.ObserveAuth("sign_up", "ok")
	s.log.InfoContext(ctx, "user signed up", "user_id", u.ID)

	return u, sess, nil
}

func (s *Service) LogIn(ctx context.Context, email, password string) (user.User, session.Session, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			s.observeRejection(ctx, "login", ErrEmailNotFound)
			return user.User{}, session.Session{}, ErrEmailNotFound
		}
		return user.User{}, session.Session{}, fmt.Errorf("lookup email: %w", err)
	}

	if err := s.hasher.Verify(u.PasswordHash, password); err != nil {
		if errors.Is(err, security.ErrPasswordMismatch) {
			s.observeRejection(ctx, "login", ErrIncorrectPassword)
			return user.User{}, session.Session{}, ErrIncorrectPassword
		}
		return user.User{}, session.Session{}, fmt.Errorf("verify password: %w", err)
	}

	sess, err := s.startSession(ctx, u)
	if err != nil {
		return user.User{}, session.Session{}, err
	}

	s.prom.ObserveAuth("login", "ok")
	s.log.InfoContext(ctx, "user logged in", "user_id", u.ID)

	return u, sess, nil
}

// LogOut drops the session record. A record that is already gone is not an error.
func (s *Service) LogOut(ctx context.Context, sess session.Session) error {
	err := s.sessions.Delete(ctx, sess.ID)
	if err != nil && !errors.Is(err, session.ErrNotFound) {
		return fmt.Errorf("delete session: %w", err)
	}

	s.prom.ObserveAuth("logout", "ok")
	s.log.InfoContext(ctx, "user logged out", "user_id", sess.UserID)

	return nil
}

// Resolve turns the ids carried by a verified cookie into the logged-in user.
func (s *Service) Resolve(ctx context.Context, sessionID string, userID int64) (user.User, session.Session, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return user.User{}, session.Session{}, ErrInvalidSession
		}
		return user.User{}, session.Session{}, fmt.Errorf("load session: %w", err)
	}

	if sess.UserID != userID || sess.Expired(s.now()) {
		return user.User{}, session.Session{}, ErrInvalidSession
	}

	u, err := s.loadUser(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, session.Session{}, ErrInvalidSession
		}
		return user.User{}, session.Session{}, err
	}

	return u, sess, nil
}

func (s *Service) loadUser(ctx context.Context, id int64) (user.User, error) {
	if s.userCache != nil {
		if u, ok := s.userCache.Get(id); ok {
			return u, nil
		}
	}

	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return user.User{}, err
	}

	if s.userCache != nil {
		s.userCache.Set(id, u)
	}

	return u, nil
}

func (s *Service) startSession(ctx context.Context, u user.User) (session.Session, error) {
	now := s.now().UTC()

	sess := session.Session{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}

	if err := s.sessions.Create(ctx, sess); err != nil {
		return session.Session{}, fmt.Errorf("create session: %w", err)
	}

	if s.userCache != nil {
		s.userCache.Set(u.ID, u)
	}

	return sess, nil
}

func (s *Service) observeRejection(ctx context.Context, event string, err error) {
	code := "rejected"
	if ve, ok := apperr.AsValidation(err); ok {
		code = ve.Code
	}

	s.prom.ObserveAuth(event, code)
	s.log.DebugContext(ctx, "auth rejected", "event", event, "reason", code)
}
