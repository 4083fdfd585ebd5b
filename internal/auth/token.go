package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/goliatone/go-folio/internal/domain"
	"github.com/goliatone/go-folio/internal/users"
)

const (
	DefaultIssuer   = "folio"
	DefaultAudience = "folio-admin"
	DefaultTTL      = 12 * time.Hour
	minSecretLength = 32
)

var (
	ErrSecretTooShort = fmt.Errorf("auth: signing secret must be at least %d bytes", minSecretLength)
	ErrTokenInvalid   = errors.New("auth: session token is invalid")
	ErrTokenExpired   = errors.New("auth: session token has expired")
)

// Session is the authenticated identity attached to a request.
type Session struct {
	UserID    uuid.UUID         `json:"user_id"`
	Email     string            `json:"email"`
	Name      string            `json:"name"`
	Role      domain.Role       `json:"role"`
	Status    domain.UserStatus `json:"status"`
	IssuedAt  time.Time         `json:"issued_at"`
	ExpiresAt time.Time         `json:"expires_at"`
}

func (s Session) IsActive() bool { return s.Status == domain.UserStatusActive }

// HasRole reports whether the session role is one of roles.
func (s Session) HasRole(roles ...domain.Role) bool {
	for _, role := range roles {
		if s.Role == role {
			return true
		}
	}
	return false
}

type sessionClaims struct {
	jwt.RegisteredClaims
	Email  string `json:"email"`
	Name   string `json:"name,omitempty"`
	Role   string `json:"role"`
	Status string `json:"status"`
}

type TokenConfig struct {
	Secret   string
	Issuer   string
	Audience string
	TTL      time.Duration
	Now      func() time.Time
}

// TokenIssuer signs and verifies HS256 session tokens.
type TokenIssuer struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

func NewTokenIssuer(cfg TokenConfig) (*TokenIssuer, error) {
	if len(cfg.Secret) < minSecretLength {
		return nil, ErrSecretTooShort
	}
	issuer := &TokenIssuer{
		secret:   []byte(cfg.Secret),
		issuer:   strings.TrimSpace(cfg.Issuer),
		audience: strings.TrimSpace(cfg.Audience),
		ttl:      cfg.TTL,
		now:      cfg.Now,
	}
	if issuer.issuer == "" {
		issuer.issuer = DefaultIssuer
	}
	if issuer.audience == "" {
		issuer.audience = DefaultAudience
	}
	if issuer.ttl <= 0 {
		issuer.ttl = DefaultTTL
	}
	if issuer.now == nil {
		issuer.now = time.Now
	}
	return issuer, nil
}

func (i *TokenIssuer) TTL() time.Duration { return i.ttl }

func (i *TokenIssuer) Issue(user *users.User) (string, Session, error) {
	if user == nil || user.ID == uuid.Nil {
		return "", Session{}, errors.New("auth: user is required")
	}
	now := i.now().UTC().Truncate(time.Second)
	expires := now.Add(i.ttl)
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Subject:   user.ID.String(),
			Audience:  jwt.ClaimStrings{i.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
			ID:        uuid.NewString(),
		},
		Email:  user.Email,
		Name:   user.Name,
		Role:   user.Role.String(),
		Status: user.Status.String(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", Session{}, fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, Session{
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
		Status:    user.Status,
		IssuedAt:  now,
		ExpiresAt: expires,
	}, nil
}

// Parse verifies the signature, issuer, audience and expiry of token.
func (i *TokenIssuer) Parse(token string) (Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Session{}, ErrTokenInvalid
	}
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithAudience(i.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Session{}, ErrTokenExpired
		}
		return Session{}, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Session{}, ErrTokenInvalid
	}
	session := Session{
		UserID: userID,
		Email:  claims.Email,
		Name:   claims.Name,
		Role:   domain.ParseRole(claims.Role),
		Status: domain.ParseUserStatus(claims.Status),
	}
	if claims.IssuedAt != nil {
		session.IssuedAt = claims.IssuedAt.Time.UTC()
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time.UTC()
	}
	return session, nil
}
