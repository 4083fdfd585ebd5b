package projects

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-folio/internal/domain"
	"github.com/goliatone/go-folio/internal/richtext"
	"github.com/goliatone/go-folio/internal/translations"
)

// Project is a portfolio case study.
type Project struct {
	bun.BaseModel `bun:"table:projects,alias:pj"`

	ID           uuid.UUID             `bun:",pk,type:uuid"       json:"id"`
	Slug         string                `bun:"slug,notnull"        json:"slug"`
	Status       domain.Status         `bun:"status,notnull"      json:"status"`
	CoverURL     string                `bun:"cover_url"           json:"cover_url,omitempty"`
	RepoURL      string                `bun:"repo_url"            json:"repo_url,omitempty"`
	LiveURL      string                `bun:"live_url"            json:"live_url,omitempty"`
	Technologies []string              `bun:"technologies"        json:"technologies,omitempty"`
	Featured     bool                  `bun:"featured,notnull"    json:"featured"`
	Position     int                   `bun:"position,notnull"    json:"position"`
	CreatedAt    time.Time             `bun:"created_at,nullzero" json:"created_at"`
	UpdatedAt    time.Time             `bun:"updated_at,nullzero" json:"updated_at"`
	Translations []*ProjectTranslation `bun:"rel:has-many,join:id=project_id" json:"translations,omitempty"`
}

type ProjectTranslation struct {
	bun.BaseModel `bun:"table:project_translations,alias:pjt"`

	ID        uuid.UUID         `bun:",pk,type:uuid"              json:"id"`
	ProjectID uuid.UUID         `bun:"project_id,notnull,type:uuid" json:"project_id"`
	Locale    string            `bun:"locale,notnull"             json:"locale"`
	Title     string            `bun:"title,notnull"              json:"title"`
	Summary   string            `bun:"summary"                    json:"summary,omitempty"`
	Body      richtext.Document `bun:"body"                       json:"body"`
	BodyHTML  string            `bun:"body_html"                  json:"body_html"`
	CreatedAt time.Time         `bun:"created_at,nullzero"        json:"created_at"`
	UpdatedAt time.Time         `bun:"updated_at,nullzero"        json:"updated_at"`
}

func (t *ProjectTranslation) GetLocale() string { return t.Locale }

func (t *ProjectTranslation) Prepare(parentID uuid.UUID, now time.Time) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	t.ProjectID = parentID
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
}

type CreateProjectRequest struct {
	Slug         string
	Status       string
	CoverURL     string
	RepoURL      string
	LiveURL      string
	Technologies []string
	Featured     bool
	Position     int
	Translations []ProjectTranslationInput
}

// UpdateProjectRequest replaces every field. A nil Translations slice keeps
// the stored rows, and blank Slug or Status values keep the current ones.
type UpdateProjectRequest struct {
	ID           uuid.UUID
	Slug         string
	Status       string
	CoverURL     string
	RepoURL      string
	LiveURL      string
	Technologies []string
	Featured     bool
	Position     int
	Translations []ProjectTranslationInput
}

type ProjectTranslationInput struct {
	Locale  string            `json:"locale"`
	Title   string            `json:"title"`
	Summary string            `json:"summary"`
	Body    richtext.Document `json:"body"`
}

func (i *ProjectTranslationInput) GetLocale() string { return i.Locale }

// ListOptions filters project listings. Zero values disable a filter.
type ListOptions struct {
	Status       domain.Status
	FeaturedOnly bool
	Limit        int
	Offset       int
}

type LocalizedProject struct {
	ID           uuid.UUID               `json:"id"`
	Slug         string                  `json:"slug"`
	Status       domain.Status           `json:"status"`
	CoverURL     string                  `json:"cover_url,omitempty"`
	RepoURL      string                  `json:"repo_url,omitempty"`
	LiveURL      string                  `json:"live_url,omitempty"`
	Technologies []string                `json:"technologies,omitempty"`
	Featured     bool                    `json:"featured"`
	Title        string                  `json:"title"`
	Summary      string                  `json:"summary,omitempty"`
	BodyHTML     string                  `json:"body_html,omitempty"`
	UpdatedAt    time.Time               `json:"updated_at"`
	Translation  translations.Resolution `json:"translation"`
}
