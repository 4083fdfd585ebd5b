package i18n

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

//go:embed messages/*.json
var embeddedMessages embed.FS

var ErrCatalogEmpty = errors.New("i18n: no message files found")

// Catalog holds flattened UI strings per locale. Nested JSON objects are
// flattened into dot separated keys ("nav.home").
type Catalog struct {
	mu            sync.RWMutex
	defaultLocale string
	messages      map[string]map[string]string
}

// Load reads the embedded catalogs and overlays any <locale>.json found in
// overrideDir. An empty overrideDir only uses embedded files.
func Load(defaultLocale, overrideDir string) (*Catalog, error) {
	c := &Catalog{
		defaultLocale: normalizeLocale(defaultLocale),
		messages:      map[string]map[string]string{},
	}
	sub, err := fs.Sub(embeddedMessages, "messages")
	if err != nil {
		return nil, err
	}
	if err := c.loadFS(sub); err != nil {
		return nil, err
	}
	if dir := strings.TrimSpace(overrideDir); dir != "" {
		if _, err := os.Stat(dir); err == nil {
			if err := c.loadFS(os.DirFS(dir)); err != nil {
				return nil, err
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("i18n: stat %s: %w", dir, err)
		}
	}
	if len(c.messages) == 0 {
		return nil, ErrCatalogEmpty
	}
	return c, nil
}

// New builds a catalog from already flattened messages.
func New(defaultLocale string, messages map[string]map[string]string) *Catalog {
	c := &Catalog{
		defaultLocale: normalizeLocale(defaultLocale),
		messages:      map[string]map[string]string{},
	}
	for locale, values := range messages {
		c.messages[normalizeLocale(locale)] = maps.Clone(values)
	}
	return c
}

func (c *Catalog) loadFS(fsys fs.FS) error {
	entries, err := fs.Glob(fsys, "*.json")
	if err != nil {
		return err
	}
	for _, name := range entries {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("i18n: read %s: %w", name, err)
		}
		flat, err := Flatten(data)
		if err != nil {
			return fmt.Errorf("i18n: decode %s: %w", name, err)
		}
		locale := normalizeLocale(strings.TrimSuffix(filepath.Base(name), filepath.Ext(name)))
		c.merge(locale, flat)
	}
	return nil
}

func (c *Catalog) merge(locale string, values map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	existing := c.messages[locale]
	if existing == nil {
		existing = map[string]string{}
		c.messages[locale] = existing
	}
	maps.Copy(existing, values)
}

// DefaultLocale returns the fallback locale.
func (c *Catalog) DefaultLocale() string {
	return c.defaultLocale
}

// Locales lists the locales with at least one message.
func (c *Catalog) Locales() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.messages))
	for locale := range c.messages {
		out = append(out, locale)
	}
	sort.Strings(out)
	return out
}

// Translate resolves key for locale, falling back to the default locale and
// then to the key itself. args are name/value pairs substituted into {name}
// placeholders.
func (c *Catalog) Translate(locale, key string, args ...any) string {
	c.mu.RLock()
	value, ok := c.lookup(normalizeLocale(locale), key)
	if !ok {
		value, ok = c.lookup(c.defaultLocale, key)
	}
	c.mu.RUnlock()
	if !ok {
		value = key
	}
	return interpolate(value, args)
}

// Has reports whether locale defines key without falling back.
func (c *Catalog) Has(locale, key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.lookup(normalizeLocale(locale), key)
	return ok
}

func (c *Catalog) lookup(locale, key string) (string, bool) {
	values, ok := c.messages[locale]
	if !ok {
		// "ar-EG" falls back to "ar".
		if base, _, cut := strings.Cut(locale, "-"); cut {
			values, ok = c.messages[base]
		}
	}
	if !ok {
		return "", false
	}
	value, ok := values[key]
	return value, ok
}

// Messages returns the default locale messages overlaid with locale's own.
func (c *Catalog) Messages(locale string) map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := maps.Clone(c.messages[c.defaultLocale])
	if out == nil {
		out = map[string]string{}
	}
	normalized := normalizeLocale(locale)
	if normalized != c.defaultLocale {
		values, ok := c.messages[normalized]
		if !ok {
			if base, _, cut := strings.Cut(normalized, "-"); cut {
				values = c.messages[base]
			}
		}
		maps.Copy(out, values)
	}
	return out
}

// Missing lists keys present in the default locale but absent from locale.
func (c *Catalog) Missing(locale string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	target := c.messages[normalizeLocale(locale)]
	var missing []string
	for key := range c.messages[c.defaultLocale] {
		if _, ok := target[key]; !ok {
			missing = append(missing, key)
		}
	}
	sort.Strings(missing)
	return missing
}

// Flatten decodes a nested JSON object into dot separated keys.
func Flatten(data []byte) (map[string]string, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var raw map[string]any
	if err := decoder.Decode(&raw); err != nil {
		return nil, err
	}
	out := map[string]string{}
	flattenInto(out, "", raw)
	return out, nil
}

func flattenInto(out map[string]string, prefix string, value any) {
	switch typed := value.(type) {
	case map[string]any:
		for k, v := range typed {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			flattenInto(out, key, v)
		}
	case string:
		out[prefix] = typed
	case nil:
	default:
		out[prefix] = fmt.Sprint(typed)
	}
}

func interpolate(value string, args []any) string {
	if len(args) < 2 || !strings.Contains(value, "{") {
		return value
	}
	pairs := make([]string, 0, len(args))
	for i := 0; i+1 < len(args); i += 2 {
		name := fmt.Sprint(args[i])
		pairs = append(pairs, "{"+name+"}", fmt.Sprint(args[i+1]))
	}
	return strings.NewReplacer(pairs...).Replace(value)
}

func normalizeLocale(locale string) string {
	return strings.ToLower(strings.TrimSpace(locale))
}
