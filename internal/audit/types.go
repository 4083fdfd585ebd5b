package audit

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Outcome classifies how an audited action ended.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
	OutcomeDenied  Outcome = "denied"
	OutcomeInvalid Outcome = "invalid"
)

// Entry is one row of the admin audit trail.
type Entry struct {
	bun.BaseModel `bun:"table:audit_entries,alias:ae"`

	ID         uuid.UUID      `bun:",pk,type:uuid"               json:"id"`
	ActorID    *uuid.UUID     `bun:"actor_id,type:uuid,nullzero" json:"actor_id,omitempty"`
	ActorEmail string         `bun:"actor_email"                 json:"actor_email,omitempty"`
	Action     string         `bun:"action,notnull"              json:"action"`
	Resource   string         `bun:"resource"                    json:"resource,omitempty"`
	ResourceID string         `bun:"resource_id"                 json:"resource_id,omitempty"`
	Outcome    Outcome        `bun:"outcome,notnull"             json:"outcome"`
	Message    string         `bun:"message"                     json:"message,omitempty"`
	Metadata   map[string]any `bun:"metadata"                    json:"metadata,omitempty"`
	IP         string         `bun:"ip"                          json:"ip,omitempty"`
	UserAgent  string         `bun:"user_agent"                  json:"user_agent,omitempty"`
	CreatedAt  time.Time      `bun:"created_at,nullzero"         json:"created_at"`
}

// Filter narrows List results. Zero values match everything.
type Filter struct {
	ActorID  *uuid.UUID
	Action   string
	Resource string
	Outcome  Outcome
	Since    *time.Time
	Limit    int
	Offset   int
}
