package i18n

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEmbeddedCatalogs(t *testing.T) {
	catalog, err := Load("en", "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	locales := catalog.Locales()
	if len(locales) != 2 || locales[0] != "ar" || locales[1] != "en" {
		t.Fatalf("expected ar and en catalogs, got %v", locales)
	}
	if got := catalog.Translate("ar", "nav.home"); got != "الرئيسية" {
		t.Fatalf("unexpected arabic nav.home %q", got)
	}
	if got := catalog.Translate("en", "hero.greeting", "name", "Sara"); got != "Hi, I'm Sara" {
		t.Fatalf("unexpected interpolation %q", got)
	}
}

func TestTranslateFallbacks(t *testing.T) {
	catalog := New("en", map[string]map[string]string{
		"en": {"a": "A", "b": "B {count}"},
		"ar": {"a": "أ"},
	})

	if got := catalog.Translate("ar", "a"); got != "أ" {
		t.Fatalf("expected arabic value, got %q", got)
	}
	if got := catalog.Translate("ar", "b", "count", 3); got != "B 3" {
		t.Fatalf("expected default-locale fallback, got %q", got)
	}
	if got := catalog.Translate("ar-EG", "a"); got != "أ" {
		t.Fatalf("expected base language lookup, got %q", got)
	}
	if got := catalog.Translate("fr", "missing.key"); got != "missing.key" {
		t.Fatalf("expected key fallback, got %q", got)
	}
	if catalog.Has("ar", "b") {
		t.Fatal("Has must not fall back")
	}
}

func TestMessagesOverlayDefault(t *testing.T) {
	catalog := New("en", map[string]map[string]string{
		"en": {"a": "A", "b": "B"},
		"ar": {"a": "أ"},
	})
	msgs := catalog.Messages("ar")
	if msgs["a"] != "أ" || msgs["b"] != "B" {
		t.Fatalf("unexpected merged messages %v", msgs)
	}
	msgs["a"] = "changed"
	if catalog.Translate("ar", "a") != "أ" {
		t.Fatal("expected Messages to return a copy")
	}
	if missing := catalog.Missing("ar"); len(missing) != 1 || missing[0] != "b" {
		t.Fatalf("unexpected missing keys %v", missing)
	}
}

func TestLoadOverrideDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "en.json"), []byte(`{"nav":{"home":"Start"},"extra":{"count":2}}`), 0o600); err != nil {
		t.Fatalf("write override: %v", err)
	}
	catalog, err := Load("en", dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := catalog.Translate("en", "nav.home"); got != "Start" {
		t.Fatalf("expected override, got %q", got)
	}
	if got := catalog.Translate("en", "nav.blog"); got != "Blog" {
		t.Fatalf("expected embedded value to survive, got %q", got)
	}
	if got := catalog.Translate("en", "extra.count"); got != "2" {
		t.Fatalf("expected numeric value to be stringified, got %q", got)
	}

	if _, err := Load("en", filepath.Join(dir, "absent")); err != nil {
		t.Fatalf("expected missing override dir to be ignored, got %v", err)
	}
}

func TestEmbeddedCatalogsAreComplete(t *testing.T) {
	catalog, err := Load("en", "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if missing := catalog.Missing("ar"); len(missing) > 0 {
		t.Fatalf("arabic catalog is missing keys: %v", missing)
	}
}
