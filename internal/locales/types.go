package locales

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-folio/internal/domain"
)

// Locale describes a site language and its text direction.
type Locale struct {
	bun.BaseModel `bun:"table:locales,alias:l"`

	ID         uuid.UUID        `bun:",pk,type:uuid"        json:"id"`
	Code       string           `bun:"code,notnull"         json:"code"`
	Name       string           `bun:"name,notnull"         json:"name"`
	NativeName string           `bun:"native_name"          json:"native_name"`
	Direction  domain.Direction `bun:"direction,notnull"    json:"direction"`
	IsDefault  bool             `bun:"is_default,notnull"   json:"is_default"`
	IsActive   bool             `bun:"is_active,notnull"    json:"is_active"`
	Position   int              `bun:"position,notnull"     json:"position"`
	CreatedAt  time.Time        `bun:"created_at,nullzero"  json:"created_at"`
	UpdatedAt  time.Time        `bun:"updated_at,nullzero"  json:"updated_at"`
}

// IsRTL reports whether the locale renders right-to-left.
func (l *Locale) IsRTL() bool {
	return l != nil && l.Direction == domain.DirectionRTL
}

// CreateLocaleRequest captures the fields needed to register a locale.
type CreateLocaleRequest struct {
	Code       string
	Name       string
	NativeName string
	Direction  string
	IsDefault  bool
	IsActive   bool
	Position   int
}

// UpdateLocaleRequest replaces the mutable fields of a locale.
type UpdateLocaleRequest struct {
	Code       string
	Name       string
	NativeName string
	Direction  string
	IsDefault  bool
	IsActive   bool
	Position   int
}
