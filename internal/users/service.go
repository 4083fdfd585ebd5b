package users

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/goliatone/go-folio/internal/domain"
	"github.com/goliatone/go-folio/internal/logging"
	"github.com/goliatone/go-folio/pkg/interfaces"
)

const MinPasswordLength = 8

var (
	ErrEmailInvalid       = errors.New("users: email is invalid")
	ErrEmailExists        = errors.New("users: email already registered")
	ErrPasswordTooShort   = fmt.Errorf("users: password must be at least %d characters", MinPasswordLength)
	ErrPasswordTooLong    = errors.New("users: password exceeds 72 bytes")
	ErrRoleInvalid        = errors.New("users: role is invalid")
	ErrStatusInvalid      = errors.New("users: status is invalid")
	ErrInvalidCredentials = errors.New("users: invalid email or password")
	ErrAccountInactive    = errors.New("users: account is not active")
	ErrLastAdmin          = errors.New("users: the last active admin cannot be removed or demoted")
	ErrIDRequired         = errors.New("users: id is required")
)

type Service interface {
	Create(ctx context.Context, req CreateUserRequest) (*User, error)
	Get(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]*User, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role domain.Role) (*User, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.UserStatus) (*User, error)
	ChangePassword(ctx context.Context, id uuid.UUID, password string) error
	Delete(ctx context.Context, id uuid.UUID) error
	// Authenticate checks credentials and stamps LastLoginAt on success.
	Authenticate(ctx context.Context, email, password string) (*User, error)
	// EnsureAdmin creates an admin account when no active admin exists. The
	// bool reports whether an account was created.
	EnsureAdmin(ctx context.Context, email, password string) (*User, bool, error)
}

type ServiceOption func(*service)

func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithBcryptCost overrides the hashing cost. Values outside bcrypt's range
// are ignored.
func WithBcryptCost(cost int) ServiceOption {
	return func(s *service) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.cost = cost
		}
	}
}

type service struct {
	repo   UserRepository
	now    func() time.Time
	logger interfaces.Logger
	cost   int
	dummy  []byte
}

func NewService(repo UserRepository, opts ...ServiceOption) Service {
	s := &service{
		repo:   repo,
		now:    time.Now,
		logger: logging.NoOp(),
		cost:   bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.dummy, _ = bcrypt.GenerateFromPassword([]byte("folio-placeholder"), s.cost)
	return s
}

func (s *service) Create(ctx context.Context, req CreateUserRequest) (*User, error) {
	email, err := NormalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	role := req.Role
	if role == "" {
		role = domain.RoleEditor
	}
	if !role.IsValid() {
		return nil, ErrRoleInvalid
	}
	status := req.Status
	if status == "" {
		status = domain.UserStatusActive
	}
	if !status.IsValid() {
		return nil, ErrStatusInvalid
	}
	hash, err := s.hash(req.Password)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailExists
	} else if !isNotFound(err) {
		return nil, err
	}

	now := s.now().UTC()
	user := &User{
		ID:           uuid.New(),
		Email:        email,
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: string(hash),
		Role:         role,
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("users.created", "user_id", user.ID.String(), "role", role.String())
	return s.repo.GetByID(ctx, user.ID)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	if id == uuid.Nil {
		return nil, ErrIDRequired
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetByEmail(ctx context.Context, email string) (*User, error) {
	normalized, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByEmail(ctx, normalized)
}

func (s *service) List(ctx context.Context) ([]*User, error) {
	return s.repo.List(ctx)
}

func (s *service) UpdateRole(ctx context.Context, id uuid.UUID, role domain.Role) (*User, error) {
	if !role.IsValid() {
		return nil, ErrRoleInvalid
	}
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Role == role {
		return user, nil
	}
	if role != domain.RoleAdmin {
		if err := s.guardLastAdmin(ctx, user); err != nil {
			return nil, err
		}
	}
	user.Role = role
	return s.save(ctx, user)
}

func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.UserStatus) (*User, error) {
	if !status.IsValid() {
		return nil, ErrStatusInvalid
	}
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Status == status {
		return user, nil
	}
	if status != domain.UserStatusActive {
		if err := s.guardLastAdmin(ctx, user); err != nil {
			return nil, err
		}
	}
	user.Status = status
	return s.save(ctx, user)
}

func (s *service) ChangePassword(ctx context.Context, id uuid.UUID, password string) error {
	user, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	hash, err := s.hash(password)
	if err != nil {
		return err
	}
	changed := s.now().UTC()
	user.PasswordHash = string(hash)
	user.PasswordChangedAt = &changed
	if _, err = s.save(ctx, user); err != nil {
		return err
	}
	s.logger.Info("users.password_changed", "user_id", id.String())
	return nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	user, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.guardLastAdmin(ctx, user); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("users.deleted", "user_id", id.String())
	return nil
}

func (s *service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	normalized, err := NormalizeEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	user, err := s.repo.GetByEmail(ctx, normalized)
	if err != nil {
		if !isNotFound(err) {
			return nil, err
		}
		// keep timing comparable with the known-user path
		_ = bcrypt.CompareHashAndPassword(s.dummy, []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive() {
		return nil, ErrAccountInactive
	}
	if err := s.repo.TouchLogin(ctx, user.ID, s.now().UTC()); err != nil {
		return nil, err
	}
	// an admin may have changed the account while the hash was checked
	current, err := s.repo.GetByID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if !current.IsActive() {
		return nil, ErrAccountInactive
	}
	return current, nil
}

func (s *service) EnsureAdmin(ctx context.Context, email, password string) (*User, bool, error) {
	count, err := s.repo.CountActiveAdmins(ctx)
	if err != nil {
		return nil, false, err
	}
	if count > 0 {
		return nil, false, nil
	}
	normalized, err := NormalizeEmail(email)
	if err != nil {
		return nil, false, err
	}
	existing, err := s.repo.GetByEmail(ctx, normalized)
	switch {
	case err == nil:
		hash, hashErr := s.hash(password)
		if hashErr != nil {
			return nil, false, hashErr
		}
		existing.Role = domain.RoleAdmin
		existing.Status = domain.UserStatusActive
		changed := s.now().UTC()
		existing.PasswordHash = string(hash)
		existing.PasswordChangedAt = &changed
		promoted, saveErr := s.save(ctx, existing)
		if saveErr != nil {
			return nil, false, saveErr
		}
		s.logger.Warn("users.admin_promoted", "user_id", promoted.ID.String())
		return promoted, true, nil
	case !isNotFound(err):
		return nil, false, err
	}
	created, err := s.Create(ctx, CreateUserRequest{
		Email:    normalized,
		Name:     "Administrator",
		Password: password,
		Role:     domain.RoleAdmin,
		Status:   domain.UserStatusActive,
	})
	if err != nil {
		return nil, false, err
	}
	return created, true, nil
}

func (s *service) save(ctx context.Context, user *User) (*User, error) {
	user.UpdatedAt = s.now().UTC()
	if _, err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, user.ID)
}

func (s *service) guardLastAdmin(ctx context.Context, user *User) error {
	if !user.IsActiveAdmin() {
		return nil
	}
	count, err := s.repo.CountActiveAdmins(ctx)
	if err != nil {
		return err
	}
	if count <= 1 {
		return ErrLastAdmin
	}
	return nil
}

func (s *service) hash(password string) ([]byte, error) {
	if len([]rune(password)) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}
	if len(password) > 72 {
		return nil, ErrPasswordTooLong
	}
	return bcrypt.GenerateFromPassword([]byte(password), s.cost)
}

// NormalizeEmail trims and lowercases a bare address. Display-name forms are
// rejected.
func NormalizeEmail(input string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(input))
	if trimmed == "" {
		return "", ErrEmailInvalid
	}
	addr, err := mail.ParseAddress(trimmed)
	if err != nil || addr.Address != trimmed {
		return "", ErrEmailInvalid
	}
	return trimmed, nil
}

func isNotFound(err error) bool {
	var notFound *domain.NotFoundError
	return errors.As(err, &notFound)
}
