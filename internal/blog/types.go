package blog

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-folio/internal/domain"
	"github.com/goliatone/go-folio/internal/richtext"
	"github.com/goliatone/go-folio/internal/translations"
)

// Post is a blog article. PublishAt drives scheduled publishing and
// PublishedAt records when the post went live.
type Post struct {
	bun.BaseModel `bun:"table:posts,alias:po"`

	ID             uuid.UUID          `bun:",pk,type:uuid"          json:"id"`
	Slug           string             `bun:"slug,notnull"           json:"slug"`
	Status         domain.Status      `bun:"status,notnull"         json:"status"`
	PublishAt      *time.Time         `bun:"publish_at,nullzero"    json:"publish_at,omitempty"`
	PublishedAt    *time.Time         `bun:"published_at,nullzero"  json:"published_at,omitempty"`
	CoverURL       string             `bun:"cover_url"              json:"cover_url,omitempty"`
	Tags           []string           `bun:"tags"                   json:"tags,omitempty"`
	ReadingMinutes int                `bun:"reading_minutes,notnull" json:"reading_minutes"`
	AuthorID       *uuid.UUID         `bun:"author_id,type:uuid,nullzero" json:"author_id,omitempty"`
	CreatedAt      time.Time          `bun:"created_at,nullzero"    json:"created_at"`
	UpdatedAt      time.Time          `bun:"updated_at,nullzero"    json:"updated_at"`
	Translations   []*PostTranslation `bun:"rel:has-many,join:id=post_id" json:"translations,omitempty"`
}

// IsPublic reports whether the post is visible on the public site at now.
func (p *Post) IsPublic(now time.Time) bool {
	if p == nil || p.Status != domain.StatusPublished {
		return false
	}
	return p.PublishedAt == nil || !p.PublishedAt.After(now)
}

type PostTranslation struct {
	bun.BaseModel `bun:"table:post_translations,alias:pot"`

	ID              uuid.UUID         `bun:",pk,type:uuid"           json:"id"`
	PostID          uuid.UUID         `bun:"post_id,notnull,type:uuid" json:"post_id"`
	Locale          string            `bun:"locale,notnull"          json:"locale"`
	Title           string            `bun:"title,notnull"           json:"title"`
	Excerpt         string            `bun:"excerpt"                 json:"excerpt"`
	Body            richtext.Document `bun:"body"                    json:"body"`
	BodyHTML        string            `bun:"body_html"               json:"body_html"`
	MetaDescription string            `bun:"meta_description"        json:"meta_description,omitempty"`
	CreatedAt       time.Time         `bun:"created_at,nullzero"     json:"created_at"`
	UpdatedAt       time.Time         `bun:"updated_at,nullzero"     json:"updated_at"`
}

func (t *PostTranslation) GetLocale() string { return t.Locale }

func (t *PostTranslation) Prepare(parentID uuid.UUID, now time.Time) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	t.PostID = parentID
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
}

type CreatePostRequest struct {
	Slug         string
	Status       string
	PublishAt    *time.Time
	CoverURL     string
	Tags         []string
	AuthorID     *uuid.UUID
	Translations []PostTranslationInput
}

// UpdatePostRequest replaces every field. A nil Translations slice keeps the
// stored rows, a blank Slug keeps the current slug and a blank Status keeps
// the current status along with its PublishAt when none is given.
type UpdatePostRequest struct {
	ID           uuid.UUID
	Slug         string
	Status       string
	PublishAt    *time.Time
	CoverURL     string
	Tags         []string
	Translations []PostTranslationInput
}

type PostTranslationInput struct {
	Locale          string            `json:"locale"`
	Title           string            `json:"title"`
	Excerpt         string            `json:"excerpt"`
	Body            richtext.Document `json:"body"`
	MetaDescription string            `json:"meta_description"`
}

func (i *PostTranslationInput) GetLocale() string { return i.Locale }

// ListOptions filters post listings. Zero values disable a filter.
type ListOptions struct {
	Status domain.Status
	Tag    string
	Limit  int
	Offset int
}

type LocalizedPost struct {
	ID              uuid.UUID               `json:"id"`
	Slug            string                  `json:"slug"`
	Status          domain.Status           `json:"status"`
	PublishedAt     *time.Time              `json:"published_at,omitempty"`
	CoverURL        string                  `json:"cover_url,omitempty"`
	Tags            []string                `json:"tags,omitempty"`
	ReadingMinutes  int                     `json:"reading_minutes"`
	Title           string                  `json:"title"`
	Excerpt         string                  `json:"excerpt"`
	BodyHTML        string                  `json:"body_html,omitempty"`
	MetaDescription string                  `json:"meta_description,omitempty"`
	UpdatedAt       time.Time               `json:"updated_at"`
	Translation     translations.Resolution `json:"translation"`
}
