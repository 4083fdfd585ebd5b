package profile

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-folio/internal/richtext"
	"github.com/goliatone/go-folio/internal/translations"
)

// Profile is the singleton owner record rendered in the hero and about sections.
type Profile struct {
	bun.BaseModel `bun:"table:profiles,alias:pr"`

	ID              uuid.UUID             `bun:",pk,type:uuid"            json:"id"`
	Email           string                `bun:"email"                    json:"email"`
	Phone           string                `bun:"phone"                    json:"phone"`
	Location        string                `bun:"location"                 json:"location"`
	AvatarURL       string                `bun:"avatar_url"               json:"avatar_url"`
	ResumeURL       string                `bun:"resume_url"               json:"resume_url"`
	Socials         map[string]string     `bun:"socials"                  json:"socials,omitempty"`
	YearsExperience int                   `bun:"years_experience,notnull" json:"years_experience"`
	Available       bool                  `bun:"available,notnull"        json:"available"`
	CreatedAt       time.Time             `bun:"created_at,nullzero"      json:"created_at"`
	UpdatedAt       time.Time             `bun:"updated_at,nullzero"      json:"updated_at"`
	Translations    []*ProfileTranslation `bun:"rel:has-many,join:id=profile_id" json:"translations,omitempty"`
}

// ProfileTranslation carries the localized hero and about copy.
type ProfileTranslation struct {
	bun.BaseModel `bun:"table:profile_translations,alias:prt"`

	ID        uuid.UUID         `bun:",pk,type:uuid"           json:"id"`
	ProfileID uuid.UUID         `bun:"profile_id,notnull,type:uuid" json:"profile_id"`
	Locale    string            `bun:"locale,notnull"          json:"locale"`
	FullName  string            `bun:"full_name,notnull"       json:"full_name"`
	Headline  string            `bun:"headline"                json:"headline"`
	Tagline   string            `bun:"tagline"                 json:"tagline"`
	Bio       richtext.Document `bun:"bio"                     json:"bio"`
	BioHTML   string            `bun:"bio_html"                json:"bio_html"`
	CTALabel  string            `bun:"cta_label"               json:"cta_label"`
	CreatedAt time.Time         `bun:"created_at,nullzero"     json:"created_at"`
	UpdatedAt time.Time         `bun:"updated_at,nullzero"     json:"updated_at"`
}

func (t *ProfileTranslation) GetLocale() string { return t.Locale }

// Prepare assigns ownership and timestamps before the row is written.
func (t *ProfileTranslation) Prepare(parentID uuid.UUID, now time.Time) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	t.ProfileID = parentID
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
}

// UpsertProfileRequest replaces the profile fields and the translations of
// the locales it lists.
type UpsertProfileRequest struct {
	Email           string
	Phone           string
	Location        string
	AvatarURL       string
	ResumeURL       string
	Socials         map[string]string
	YearsExperience int
	Available       bool
	Translations    []ProfileTranslationInput
}

// ProfileTranslationInput is the per-locale part of UpsertProfileRequest.
type ProfileTranslationInput struct {
	Locale   string            `json:"locale"`
	FullName string            `json:"full_name"`
	Headline string            `json:"headline"`
	Tagline  string            `json:"tagline"`
	Bio      richtext.Document `json:"bio"`
	CTALabel string            `json:"cta_label"`
}

func (i *ProfileTranslationInput) GetLocale() string { return i.Locale }

// LocalizedProfile is the public view of the profile in one locale.
type LocalizedProfile struct {
	ID              uuid.UUID               `json:"id"`
	Email           string                  `json:"email,omitempty"`
	Phone           string                  `json:"phone,omitempty"`
	Location        string                  `json:"location,omitempty"`
	AvatarURL       string                  `json:"avatar_url,omitempty"`
	ResumeURL       string                  `json:"resume_url,omitempty"`
	Socials         map[string]string       `json:"socials,omitempty"`
	YearsExperience int                     `json:"years_experience"`
	Available       bool                    `json:"available"`
	FullName        string                  `json:"full_name"`
	Headline        string                  `json:"headline"`
	Tagline         string                  `json:"tagline"`
	BioHTML         string                  `json:"bio_html"`
	CTALabel        string                  `json:"cta_label"`
	Translation     translations.Resolution `json:"translation"`
}
