// Package translations holds the per-locale row rules shared by every
// translatable entity: one row per locale, known locales only, and a row for
// the default locale on create.
package translations

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-folio/internal/locales"
)

var (
	ErrNoTranslations       = errors.New("translations: at least one translation is required")
	ErrLocaleRequired       = errors.New("translations: locale is required")
	ErrDuplicateLocale      = errors.New("translations: duplicate locale")
	ErrUnknownLocale        = errors.New("translations: unknown locale")
	ErrDefaultLocaleMissing = errors.New("translations: default locale translation is required")
)

// Localized is implemented by translation rows and inputs.
type Localized interface {
	GetLocale() string
}

// LocaleSource lists configured locales.
type LocaleSource interface {
	List(ctx context.Context) ([]*locales.Locale, error)
}

// Policy is the locale set translations are validated against. An empty
// Known list accepts any well formed code.
type Policy struct {
	Default string
	Known   []string
}

// LoadPolicy snapshots the configured locales. Inactive locales stay known so
// editors can prepare content before a locale goes live.
func LoadPolicy(ctx context.Context, src LocaleSource) (Policy, error) {
	if src == nil {
		return Policy{}, nil
	}
	all, err := src.List(ctx)
	if err != nil {
		return Policy{}, err
	}
	policy := Policy{Known: make([]string, 0, len(all))}
	for _, l := range all {
		if l == nil {
			continue
		}
		policy.Known = append(policy.Known, l.Code)
		if l.IsDefault {
			policy.Default = l.Code
		}
	}
	return policy, nil
}

// Normalize validates the locale codes of rows and lowercases them in place
// through the supplied setter. requireDefault enforces a default locale row.
func Normalize[T Localized](policy Policy, rows []T, set func(T, string), requireDefault bool) error {
	if len(rows) == 0 {
		return ErrNoTranslations
	}
	seen := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		raw := strings.TrimSpace(row.GetLocale())
		if raw == "" {
			return ErrLocaleRequired
		}
		code, err := locales.NormalizeCode(raw)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrUnknownLocale, raw)
		}
		if !policy.knows(code) {
			return fmt.Errorf("%w: %s", ErrUnknownLocale, code)
		}
		if _, dup := seen[code]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateLocale, code)
		}
		seen[code] = struct{}{}
		if set != nil {
			set(row, code)
		}
	}
	if requireDefault && policy.Default != "" {
		if _, ok := seen[policy.Default]; !ok {
			return fmt.Errorf("%w: %s", ErrDefaultLocaleMissing, policy.Default)
		}
	}
	return nil
}

func (p Policy) knows(code string) bool {
	if len(p.Known) == 0 {
		return true
	}
	for _, known := range p.Known {
		if strings.EqualFold(known, code) {
			return true
		}
	}
	return false
}

// Pick returns the row for locale, else the default locale row, else the
// first row. fallback reports that the requested locale was not found; ok is
// false only when rows is empty.
func Pick[T Localized](rows []T, locale, defaultLocale string) (row T, fallback bool, ok bool) {
	if len(rows) == 0 {
		return row, false, false
	}
	if match, found := find(rows, locale); found {
		return match, false, true
	}
	if match, found := find(rows, defaultLocale); found {
		return match, true, true
	}
	return rows[0], true, true
}

func find[T Localized](rows []T, locale string) (T, bool) {
	var zero T
	target := strings.ToLower(strings.TrimSpace(locale))
	if target == "" {
		return zero, false
	}
	for _, row := range rows {
		if strings.EqualFold(row.GetLocale(), target) {
			return row, true
		}
	}
	if base, _, cut := strings.Cut(target, "-"); cut {
		for _, row := range rows {
			if strings.EqualFold(row.GetLocale(), base) {
				return row, true
			}
		}
	}
	return zero, false
}

// Codes returns the locales present in rows.
func Codes[T Localized](rows []T) []string {
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.GetLocale())
	}
	return out
}

// Missing lists the policy locales without a row.
func Missing[T Localized](policy Policy, rows []T) []string {
	present := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		present[strings.ToLower(row.GetLocale())] = struct{}{}
	}
	var missing []string
	for _, code := range policy.Known {
		if _, ok := present[strings.ToLower(code)]; !ok {
			missing = append(missing, code)
		}
	}
	return missing
}

// Resolution describes which translation served a localized read.
type Resolution struct {
	Requested string   `json:"requested"`
	Locale    string   `json:"locale"`
	Fallback  bool     `json:"fallback"`
	Available []string `json:"available"`
}

// Resolve picks the row for locale like Pick and reports the outcome.
func Resolve[T Localized](rows []T, locale, defaultLocale string) (T, Resolution, bool) {
	row, fallback, ok := Pick(rows, locale, defaultLocale)
	res := Resolution{
		Requested: locale,
		Fallback:  fallback,
		Available: Codes(rows),
	}
	if ok {
		res.Locale = row.GetLocale()
	}
	return row, res, ok
}

// Merge overlays incoming rows on existing ones by locale. Rows of existing
// whose locale is absent from incoming are kept.
func Merge[T Localized](existing, incoming []T) []T {
	out := make([]T, 0, len(existing)+len(incoming))
	replaced := make(map[string]struct{}, len(incoming))
	for _, row := range incoming {
		replaced[strings.ToLower(row.GetLocale())] = struct{}{}
	}
	for _, row := range existing {
		if _, ok := replaced[strings.ToLower(row.GetLocale())]; ok {
			continue
		}
		out = append(out, row)
	}
	return append(out, incoming...)
}
