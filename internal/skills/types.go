package skills

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-folio/internal/translations"
)

// Skill is a rated capability grouped by category.
type Skill struct {
	bun.BaseModel `bun:"table:skills,alias:sk"`

	ID           uuid.UUID           `bun:",pk,type:uuid"       json:"id"`
	Category     string              `bun:"category,notnull"    json:"category"`
	Level        int                 `bun:"level,notnull"       json:"level"`
	Icon         string              `bun:"icon"                json:"icon,omitempty"`
	Position     int                 `bun:"position,notnull"    json:"position"`
	CreatedAt    time.Time           `bun:"created_at,nullzero" json:"created_at"`
	UpdatedAt    time.Time           `bun:"updated_at,nullzero" json:"updated_at"`
	Translations []*SkillTranslation `bun:"rel:has-many,join:id=skill_id" json:"translations,omitempty"`
}

type SkillTranslation struct {
	bun.BaseModel `bun:"table:skill_translations,alias:skt"`

	ID          uuid.UUID `bun:",pk,type:uuid"             json:"id"`
	SkillID     uuid.UUID `bun:"skill_id,notnull,type:uuid" json:"skill_id"`
	Locale      string    `bun:"locale,notnull"            json:"locale"`
	Name        string    `bun:"name,notnull"              json:"name"`
	Description string    `bun:"description"               json:"description,omitempty"`
	CreatedAt   time.Time `bun:"created_at,nullzero"       json:"created_at"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero"       json:"updated_at"`
}

func (t *SkillTranslation) GetLocale() string { return t.Locale }

func (t *SkillTranslation) Prepare(parentID uuid.UUID, now time.Time) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	t.SkillID = parentID
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
}

type CreateSkillRequest struct {
	Category     string
	Level        int
	Icon         string
	Position     int
	Translations []SkillTranslationInput
}

// UpdateSkillRequest replaces every field. A nil Translations slice keeps the
// stored rows.
type UpdateSkillRequest struct {
	ID           uuid.UUID
	Category     string
	Level        int
	Icon         string
	Position     int
	Translations []SkillTranslationInput
}

type SkillTranslationInput struct {
	Locale      string `json:"locale"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (i *SkillTranslationInput) GetLocale() string { return i.Locale }

// LocalizedSkill is the public view of a skill.
type LocalizedSkill struct {
	ID          uuid.UUID               `json:"id"`
	Category    string                  `json:"category"`
	Level       int                     `json:"level"`
	Icon        string                  `json:"icon,omitempty"`
	Position    int                     `json:"position"`
	Name        string                  `json:"name"`
	Description string                  `json:"description,omitempty"`
	Translation translations.Resolution `json:"translation"`
}
