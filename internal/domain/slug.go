package domain

import (
	"errors"
	"strings"

	"github.com/goliatone/go-slug"
)

var (
	ErrSlugRequired = errors.New("slug is required")
	ErrSlugInvalid  = errors.New("slug contains invalid characters")
)

// NormalizeSlug normalises explicit, or fallback when explicit is blank.
// Titles without a latin transliteration normalise to an empty slug and
// yield ErrSlugRequired.
func NormalizeSlug(explicit, fallback string) (string, error) {
	source := strings.TrimSpace(explicit)
	if source == "" {
		source = strings.TrimSpace(fallback)
	}
	if source == "" {
		return "", ErrSlugRequired
	}
	normalized, err := slug.Normalize(source)
	if err != nil {
		return "", ErrSlugInvalid
	}
	if normalized == "" {
		return "", ErrSlugRequired
	}
	if !slug.IsValid(normalized) {
		return "", ErrSlugInvalid
	}
	return normalized, nil
}
