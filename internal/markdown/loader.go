package markdown

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

// LoaderConfig configures how post files are discovered.
type LoaderConfig struct {
	// DefaultLocale is used when no locale can be inferred from the file path.
	DefaultLocale string
	// Locales lists the known locale codes (e.g. ["en", "ar"]).
	Locales []string
	// Pattern limits discovered files by base name (defaults to "*.md").
	Pattern string
}

// Document is one localized post file.
type Document struct {
	FilePath    string
	Locale      string
	Slug        string
	FrontMatter FrontMatter
	Body        []byte
}

// Loader reads post files from a filesystem. A file's locale comes from a
// locale suffix ("intro.ar.md"), then a leading locale directory
// ("ar/intro.md"), then the default locale.
type Loader struct {
	fs            fs.FS
	defaultLocale string
	locales       map[string]struct{}
	pattern       string
}

func NewLoader(filesystem fs.FS, cfg LoaderConfig) *Loader {
	pattern := strings.TrimSpace(cfg.Pattern)
	if pattern == "" {
		pattern = "*.md"
	}
	known := make(map[string]struct{}, len(cfg.Locales))
	for _, code := range cfg.Locales {
		if code = normalizeLocale(code); code != "" {
			known[code] = struct{}{}
		}
	}
	return &Loader{
		fs:            filesystem,
		defaultLocale: normalizeLocale(cfg.DefaultLocale),
		locales:       known,
		pattern:       pattern,
	}
}

// LoadFile reads and parses a single file. p is slash separated and
// relative to the loader's filesystem root.
func (l *Loader) LoadFile(p string) (*Document, error) {
	source, err := fs.ReadFile(l.fs, p)
	if err != nil {
		return nil, fmt.Errorf("markdown loader: read %s: %w", p, err)
	}
	meta, body, err := ParseFrontMatter(source)
	if err != nil {
		return nil, fmt.Errorf("markdown loader: %s: %w", p, err)
	}
	locale, stem := l.detectLocale(p)
	if locale == "" {
		return nil, fmt.Errorf("%w: %s", ErrLocaleMissing, p)
	}
	slug := meta.Slug
	if slug == "" {
		slug = stem
	}
	return &Document{
		FilePath:    p,
		Locale:      locale,
		Slug:        strings.ToLower(slug),
		FrontMatter: meta,
		Body:        body,
	}, nil
}

// LoadDirectory walks the filesystem and returns every matching document
// sorted by path.
func (l *Loader) LoadDirectory(ctx context.Context) ([]*Document, error) {
	var docs []*Document
	walkErr := fs.WalkDir(l.fs, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			if p != "." && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if match, _ := path.Match(l.pattern, d.Name()); !match {
			return nil
		}
		doc, err := l.LoadFile(p)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].FilePath < docs[j].FilePath
	})
	return docs, nil
}

// detectLocale returns the locale for p and the file stem without the
// extension or locale suffix.
func (l *Loader) detectLocale(p string) (string, string) {
	base := path.Base(p)
	stem := strings.TrimSuffix(base, path.Ext(base))

	if dot := strings.LastIndex(stem, "."); dot > 0 {
		if code := normalizeLocale(stem[dot+1:]); l.known(code) {
			return code, stem[:dot]
		}
	}
	if dir := path.Dir(p); dir != "." {
		first := strings.SplitN(dir, "/", 2)[0]
		if code := normalizeLocale(first); l.known(code) {
			return code, stem
		}
	}
	return l.defaultLocale, stem
}

func (l *Loader) known(code string) bool {
	_, ok := l.locales[code]
	return ok
}

func normalizeLocale(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}
