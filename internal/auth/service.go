package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/monorkin/lab-roster/internal/models"
	"github.com/monorkin/lab-roster/internal/store"
)

var (
	ErrInvalidCredentials = errors.New("invalid number or password")
	ErrForbidden          = errors.New("only administrators may log in")
	ErrUnauthenticated    = errors.New("not logged in")
)

type UserStore interface {
	FindUserByNumber(ctx context.Context, number int) (*models.User, error)
	FindUserByID(ctx context.Context, id uint) (*models.User, error)
}

// SessionStore is implemented by store.Store and store.RedisSessionStore.
type SessionStore interface {
	CreateSession(ctx context.Context, session *models.Session) error
	FindSession(ctx context.Context, id string) (*models.Session, error)
	RevokeSession(ctx context.Context, id string, at time.Time) error
}

type Options struct {
	SessionTTL  time.Duration
	RememberFor time.Duration
	Logger      *slog.Logger
	Now         func() time.Time
}

type Service struct {
	users       UserStore
	sessions    SessionStore
	hasher      PasswordHasher
	signer      *Signer
	sessionTTL  time.Duration
	rememberFor time.Duration
	logger      *slog.Logger
	now         func() time.Time

	dummyHashOnce sync.Once
	dummyHash     string
}

// Grant is the result of a successful login.
type Grant struct {
	Token     string
	Session   models.Session
	User      models.User
	ExpiresAt time.Time
	// Persistent asks for a cookie that outlives the browser session.
	Persistent bool
}

// Principal is the authenticated user behind a request.
type Principal struct {
	User      models.User
	SessionID string
}

func NewService(users UserStore, sessions SessionStore, hasher PasswordHasher, secret []byte, opts Options) *Service {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 12 * time.Hour
	}
	if opts.RememberFor <= 0 {
		opts.RememberFor = 365 * 24 * time.Hour
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}

	return &Service{
		users:       users,
		sessions:    sessions,
		hasher:      hasher,
		signer:      NewSigner(secret),
		sessionTTL:  opts.SessionTTL,
		rememberFor: opts.RememberFor,
		logger:      opts.Logger,
		now:         opts.Now,
	}
}

// Login checks credentials and opens a session bound to client. Unknown
// numbers and wrong passwords fail identically.
func (s *Service) Login(ctx context.Context, number int, password string, remember bool, client Client) (*Grant, error) {
	user, err := s.users.FindUserByNumber(ctx, number)
	if err != nil {
		if !store.IsNotFound(err) {
			return nil, fmt.Errorf("failed to look up user: %w", err)
		}
		// Burn the same bcrypt time as a real comparison
		_ = s.hasher.Compare(s.dummyPasswordHash(), password)
		s.logger.Debug("Login failed", "number", number, "reason", "unknown number")
		return nil, ErrInvalidCredentials
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		s.logger.Debug("Login failed", "number", number, "reason", "password mismatch")
		return nil, ErrInvalidCredentials
	}

	if !user.IsAdmin() {
		s.logger.Info("Login refused for non-administrator", "number", number, "role", user.Role.Name)
		return nil, ErrForbidden
	}

	now := s.now()
	ttl := s.sessionTTL
	if remember {
		ttl = s.rememberFor
	}

	session := models.Session{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		Fingerprint: client.Fingerprint(),
		Remember:    remember,
		CreatedAt:   now,
		ExpiresAt:   now.Add(ttl),
	}
	if err := s.sessions.CreateSession(ctx, &session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	token, err := s.signer.Sign(SessionClaims{
		SessionID:   session.ID,
		UserID:      user.ID,
		Fingerprint: session.Fingerprint,
	}, now, session.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	s.logger.Info("User logged in", "user_id", user.ID, "session_id", session.ID, "remember", remember)

	return &Grant{
		Token:      token,
		Session:    session,
		User:       *user,
		ExpiresAt:  session.ExpiresAt,
		Persistent: remember,
	}, nil
}

// Authenticate resolves a session token to its user. A token presented
// from a different client than it was issued to revokes the session.
func (s *Service) Authenticate(ctx context.Context, token string, client Client) (*Principal, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	claims, err := s.signer.Parse(token)
	if err != nil {
		s.logger.Debug("Rejected session token", "error", err)
		return nil, ErrUnauthenticated
	}

	session, err := s.sessions.FindSession(ctx, claims.SessionID)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	now := s.now()
	if !session.Active(now) || session.UserID != claims.UserID {
		return nil, ErrUnauthenticated
	}

	if client.Fingerprint() != session.Fingerprint || claims.Fingerprint != session.Fingerprint {
		s.logger.Warn("Session used from a different client, revoking", "session_id", session.ID, "ip", client.IP)
		if err := s.sessions.RevokeSession(ctx, session.ID, now); err != nil {
			s.logger.Error("Failed to revoke session", "session_id", session.ID, "error", err)
		}
		return nil, ErrUnauthenticated
	}

	user, err := s.users.FindUserByID(ctx, session.UserID)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !user.IsAdmin() {
		return nil, ErrUnauthenticated
	}

	return &Principal{User: *user, SessionID: session.ID}, nil
}

func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.RevokeSession(ctx, sessionID, s.now()); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	s.logger.Info("User logged out", "session_id", sessionID)
	return nil
}

func (s *Service) dummyPasswordHash() string {
	s.dummyHashOnce.Do(func() {
		hash, err := s.hasher.Hash(uuid.NewString())
		if err != nil {
			s.logger.Error("Failed to prepare dummy password hash", "error", err)
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}
