package testimonials

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-folio/internal/translations"
)

// Testimonial is a quote from a client or colleague.
type Testimonial struct {
	bun.BaseModel `bun:"table:testimonials,alias:te"`

	ID           uuid.UUID                 `bun:",pk,type:uuid"       json:"id"`
	AuthorName   string                    `bun:"author_name,notnull" json:"author_name"`
	AvatarURL    string                    `bun:"avatar_url"          json:"avatar_url,omitempty"`
	Company      string                    `bun:"company"             json:"company,omitempty"`
	Rating       int                       `bun:"rating,notnull"      json:"rating"`
	Position     int                       `bun:"position,notnull"    json:"position"`
	Published    bool                      `bun:"published,notnull"   json:"published"`
	CreatedAt    time.Time                 `bun:"created_at,nullzero" json:"created_at"`
	UpdatedAt    time.Time                 `bun:"updated_at,nullzero" json:"updated_at"`
	Translations []*TestimonialTranslation `bun:"rel:has-many,join:id=testimonial_id" json:"translations,omitempty"`
}

type TestimonialTranslation struct {
	bun.BaseModel `bun:"table:testimonial_translations,alias:tet"`

	ID            uuid.UUID `bun:",pk,type:uuid"                   json:"id"`
	TestimonialID uuid.UUID `bun:"testimonial_id,notnull,type:uuid" json:"testimonial_id"`
	Locale        string    `bun:"locale,notnull"                  json:"locale"`
	Quote         string    `bun:"quote,notnull"                   json:"quote"`
	AuthorRole    string    `bun:"author_role"                     json:"author_role,omitempty"`
	CreatedAt     time.Time `bun:"created_at,nullzero"             json:"created_at"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero"             json:"updated_at"`
}

func (t *TestimonialTranslation) GetLocale() string { return t.Locale }

func (t *TestimonialTranslation) Prepare(parentID uuid.UUID, now time.Time) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	t.TestimonialID = parentID
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
}

type CreateTestimonialRequest struct {
	AuthorName   string
	AvatarURL    string
	Company      string
	Rating       int
	Position     int
	Published    bool
	Translations []TestimonialTranslationInput
}

type UpdateTestimonialRequest struct {
	ID           uuid.UUID
	AuthorName   string
	AvatarURL    string
	Company      string
	Rating       int
	Position     int
	Published    bool
	Translations []TestimonialTranslationInput
}

type TestimonialTranslationInput struct {
	Locale     string `json:"locale"`
	Quote      string `json:"quote"`
	AuthorRole string `json:"author_role"`
}

func (i *TestimonialTranslationInput) GetLocale() string { return i.Locale }

type LocalizedTestimonial struct {
	ID          uuid.UUID               `json:"id"`
	AuthorName  string                  `json:"author_name"`
	AvatarURL   string                  `json:"avatar_url,omitempty"`
	Company     string                  `json:"company,omitempty"`
	Rating      int                     `json:"rating"`
	Quote       string                  `json:"quote"`
	AuthorRole  string                  `json:"author_role,omitempty"`
	Translation translations.Resolution `json:"translation"`
}
