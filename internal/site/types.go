package site

import (
	"time"

	"github.com/goliatone/go-folio/internal/blog"
	"github.com/goliatone/go-folio/internal/domain"
	"github.com/goliatone/go-folio/internal/experience"
	"github.com/goliatone/go-folio/internal/profile"
	"github.com/goliatone/go-folio/internal/projects"
	"github.com/goliatone/go-folio/internal/skills"
	"github.com/goliatone/go-folio/internal/testimonials"
)

// LocaleInfo is the public description of a locale.
type LocaleInfo struct {
	Code       string           `json:"code"`
	Name       string           `json:"name"`
	NativeName string           `json:"native_name,omitempty"`
	Direction  domain.Direction `json:"direction"`
	IsDefault  bool             `json:"is_default"`
}

// Alternate links the same page in another locale.
type Alternate struct {
	Locale string `json:"locale"`
	URL    string `json:"url"`
}

type SkillGroup struct {
	Category string                  `json:"category"`
	Skills   []skills.LocalizedSkill `json:"skills"`
}

// Home is the landing page read model.
type Home struct {
	Locale       LocaleInfo                          `json:"locale"`
	Locales      []LocaleInfo                        `json:"locales"`
	Profile      *profile.LocalizedProfile           `json:"profile,omitempty"`
	Skills       []SkillGroup                        `json:"skills"`
	Experience   []experience.LocalizedExperience    `json:"experience"`
	Projects     []projects.LocalizedProject         `json:"projects"`
	Posts        []blog.LocalizedPost                `json:"posts"`
	Testimonials []testimonials.LocalizedTestimonial `json:"testimonials"`
}

type ProjectList struct {
	Locale LocaleInfo                  `json:"locale"`
	Items  []projects.LocalizedProject `json:"items"`
	Total  int                         `json:"total"`
}

type ProjectDetail struct {
	Locale     LocaleInfo                 `json:"locale"`
	Project    *projects.LocalizedProject `json:"project"`
	Alternates []Alternate                `json:"alternates"`
}

type PostList struct {
	Locale     LocaleInfo           `json:"locale"`
	Items      []blog.LocalizedPost `json:"items"`
	Total      int                  `json:"total"`
	Page       int                  `json:"page"`
	PageSize   int                  `json:"page_size"`
	TotalPages int                  `json:"total_pages"`
	Tag        string               `json:"tag,omitempty"`
	Tags       []string             `json:"tags"`
}

type PostDetail struct {
	Locale     LocaleInfo          `json:"locale"`
	Post       *blog.LocalizedPost `json:"post"`
	Alternates []Alternate         `json:"alternates"`
}

// SitemapURL is one <url> entry of the sitemap.
type SitemapURL struct {
	Loc        string
	LastMod    *time.Time
	Alternates []Alternate
}
