package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-folio/internal/domain"
	"github.com/goliatone/go-folio/internal/logging"
	"github.com/goliatone/go-folio/internal/users"
	"github.com/goliatone/go-folio/pkg/interfaces"
)

// ErrSessionRevoked reports a valid token whose user no longer exists or
// whose password changed after the token was issued.
var ErrSessionRevoked = errors.New("auth: session has been revoked")

// Accounts is the part of the users service the manager depends on.
type Accounts interface {
	Authenticate(ctx context.Context, email, password string) (*users.User, error)
	Get(ctx context.Context, id uuid.UUID) (*users.User, error)
}

type Manager struct {
	accounts Accounts
	tokens   *TokenIssuer
	logger   interfaces.Logger
}

type ManagerOption func(*Manager)

func WithLogger(logger interfaces.Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

func NewManager(accounts Accounts, tokens *TokenIssuer, opts ...ManagerOption) *Manager {
	m := &Manager{accounts: accounts, tokens: tokens, logger: logging.NoOp()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) Tokens() *TokenIssuer { return m.tokens }

func (m *Manager) Login(ctx context.Context, email, password string) (string, Session, error) {
	user, err := m.accounts.Authenticate(ctx, email, password)
	if err != nil {
		m.logger.Warn("auth.login.failed", "error", err)
		return "", Session{}, err
	}
	token, session, err := m.tokens.Issue(user)
	if err != nil {
		return "", Session{}, err
	}
	m.logger.Info("auth.login", "user_id", user.ID.String())
	return token, session, nil
}

// Resolve parses token and refreshes identity fields from the stored user so
// role and status changes apply to live sessions.
func (m *Manager) Resolve(ctx context.Context, token string) (Session, error) {
	session, err := m.tokens.Parse(token)
	if err != nil {
		return Session{}, err
	}
	user, err := m.accounts.Get(ctx, session.UserID)
	if err != nil {
		var notFound *domain.NotFoundError
		if errors.As(err, &notFound) {
			return Session{}, ErrSessionRevoked
		}
		return Session{}, err
	}
	if user.PasswordChangedAt != nil && session.IssuedAt.Before(user.PasswordChangedAt.Truncate(time.Second)) {
		return Session{}, ErrSessionRevoked
	}
	session.Email = user.Email
	session.Name = user.Name
	session.Role = user.Role
	session.Status = user.Status
	return session, nil
}

type sessionKey struct{}

func WithSession(ctx context.Context, session Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, session)
}

func FromContext(ctx context.Context) (Session, bool) {
	if ctx == nil {
		return Session{}, false
	}
	session, ok := ctx.Value(sessionKey{}).(Session)
	return session, ok && session.UserID != uuid.Nil
}
