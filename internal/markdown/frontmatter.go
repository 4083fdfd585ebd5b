package markdown

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
)

// FrontMatter is the metadata block at the top of a post file.
type FrontMatter struct {
	Title           string
	Slug            string
	Excerpt         string
	MetaDescription string
	Status          string
	Tags            []string
	Cover           string
	Date            time.Time
	PublishAt       time.Time
	Draft           bool
	Raw             map[string]any
}

// ParseFrontMatter splits source into its front matter and markdown body.
// Files without a front matter block yield an empty FrontMatter.
func ParseFrontMatter(source []byte) (FrontMatter, []byte, error) {
	var meta frontMatterEnvelope

	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return FrontMatter{}, nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	return envelopeToFrontMatter(meta), body, nil
}

type frontMatterEnvelope struct {
	Title           string         `yaml:"title"`
	Slug            string         `yaml:"slug"`
	Summary         string         `yaml:"summary"`
	Excerpt         string         `yaml:"excerpt"`
	MetaDescription string         `yaml:"meta_description"`
	Status          string         `yaml:"status"`
	Tags            []string       `yaml:"tags"`
	Cover           string         `yaml:"cover"`
	Date            time.Time      `yaml:"date"`
	PublishAt       time.Time      `yaml:"publish_at"`
	Draft           bool           `yaml:"draft"`
	Custom          map[string]any `yaml:",inline"`
}

func envelopeToFrontMatter(env frontMatterEnvelope) FrontMatter {
	excerpt := strings.TrimSpace(env.Excerpt)
	if excerpt == "" {
		excerpt = strings.TrimSpace(env.Summary)
	}
	raw := make(map[string]any, len(env.Custom))
	for key, value := range env.Custom {
		raw[key] = value
	}
	return FrontMatter{
		Title:           strings.TrimSpace(env.Title),
		Slug:            strings.TrimSpace(env.Slug),
		Excerpt:         excerpt,
		MetaDescription: strings.TrimSpace(env.MetaDescription),
		Status:          strings.ToLower(strings.TrimSpace(env.Status)),
		Tags:            env.Tags,
		Cover:           strings.TrimSpace(env.Cover),
		Date:            env.Date,
		PublishAt:       env.PublishAt,
		Draft:           env.Draft,
		Raw:             raw,
	}
}
