package experience

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-folio/internal/translations"
)

// Experience is a position held at a company. A nil EndDate marks the
// current role.
type Experience struct {
	bun.BaseModel `bun:"table:experiences,alias:ex"`

	ID             uuid.UUID                `bun:",pk,type:uuid"          json:"id"`
	Company        string                   `bun:"company,notnull"        json:"company"`
	CompanyURL     string                   `bun:"company_url"            json:"company_url,omitempty"`
	LogoURL        string                   `bun:"logo_url"               json:"logo_url,omitempty"`
	EmploymentType string                   `bun:"employment_type"        json:"employment_type,omitempty"`
	StartDate      time.Time                `bun:"start_date,notnull"     json:"start_date"`
	EndDate        *time.Time               `bun:"end_date,nullzero"      json:"end_date,omitempty"`
	Position       int                      `bun:"position,notnull"       json:"position"`
	CreatedAt      time.Time                `bun:"created_at,nullzero"    json:"created_at"`
	UpdatedAt      time.Time                `bun:"updated_at,nullzero"    json:"updated_at"`
	Translations   []*ExperienceTranslation `bun:"rel:has-many,join:id=experience_id" json:"translations,omitempty"`
}

// IsCurrent reports whether the role is ongoing.
func (e *Experience) IsCurrent() bool {
	return e != nil && e.EndDate == nil
}

type ExperienceTranslation struct {
	bun.BaseModel `bun:"table:experience_translations,alias:ext"`

	ID           uuid.UUID `bun:",pk,type:uuid"                  json:"id"`
	ExperienceID uuid.UUID `bun:"experience_id,notnull,type:uuid" json:"experience_id"`
	Locale       string    `bun:"locale,notnull"                 json:"locale"`
	Role         string    `bun:"role,notnull"                   json:"role"`
	Location     string    `bun:"location"                       json:"location,omitempty"`
	Description  string    `bun:"description"                    json:"description,omitempty"`
	Highlights   []string  `bun:"highlights"                     json:"highlights,omitempty"`
	CreatedAt    time.Time `bun:"created_at,nullzero"            json:"created_at"`
	UpdatedAt    time.Time `bun:"updated_at,nullzero"            json:"updated_at"`
}

func (t *ExperienceTranslation) GetLocale() string { return t.Locale }

func (t *ExperienceTranslation) Prepare(parentID uuid.UUID, now time.Time) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	t.ExperienceID = parentID
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
}

type CreateExperienceRequest struct {
	Company        string
	CompanyURL     string
	LogoURL        string
	EmploymentType string
	StartDate      time.Time
	EndDate        *time.Time
	Position       int
	Translations   []ExperienceTranslationInput
}

// UpdateExperienceRequest replaces every field. A nil Translations slice
// keeps the stored rows.
type UpdateExperienceRequest struct {
	ID             uuid.UUID
	Company        string
	CompanyURL     string
	LogoURL        string
	EmploymentType string
	StartDate      time.Time
	EndDate        *time.Time
	Position       int
	Translations   []ExperienceTranslationInput
}

type ExperienceTranslationInput struct {
	Locale      string   `json:"locale"`
	Role        string   `json:"role"`
	Location    string   `json:"location"`
	Description string   `json:"description"`
	Highlights  []string `json:"highlights"`
}

func (i *ExperienceTranslationInput) GetLocale() string { return i.Locale }

type LocalizedExperience struct {
	ID             uuid.UUID               `json:"id"`
	Company        string                  `json:"company"`
	CompanyURL     string                  `json:"company_url,omitempty"`
	LogoURL        string                  `json:"logo_url,omitempty"`
	EmploymentType string                  `json:"employment_type,omitempty"`
	StartDate      time.Time               `json:"start_date"`
	EndDate        *time.Time              `json:"end_date,omitempty"`
	Current        bool                    `json:"current"`
	Role           string                  `json:"role"`
	Location       string                  `json:"location,omitempty"`
	Description    string                  `json:"description,omitempty"`
	Highlights     []string                `json:"highlights,omitempty"`
	Translation    translations.Resolution `json:"translation"`
}
