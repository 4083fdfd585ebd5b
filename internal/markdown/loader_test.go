package markdown

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"
	"time"
)

func TestParseFrontMatterReadsPostFields(t *testing.T) {
	source := []byte(`---
title: Hello Folio
summary: A short intro
tags: [Go, CMS]
cover: /media/cover.png
date: 2025-03-01T09:00:00Z
series: notes
---
# Heading

Body text.
`)
	meta, body, err := ParseFrontMatter(source)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if meta.Title != "Hello Folio" || meta.Excerpt != "A short intro" || meta.Cover != "/media/cover.png" {
		t.Fatalf("unexpected front matter %+v", meta)
	}
	if len(meta.Tags) != 2 || !meta.Date.Equal(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected tags or date %+v", meta)
	}
	if meta.Raw["series"] != "notes" {
		t.Fatalf("expected custom keys kept, got %v", meta.Raw)
	}
	if string(body) != "# Heading\n\nBody text.\n" {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestParseFrontMatterWithoutBlock(t *testing.T) {
	meta, body, err := ParseFrontMatter([]byte("just text\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if meta.Title != "" || string(body) != "just text\n" {
		t.Fatalf("unexpected result %+v %q", meta, body)
	}
}

func TestLoaderDetectsLocaleAndSlug(t *testing.T) {
	fsys := fstest.MapFS{
		"intro.md":          {Data: []byte("---\ntitle: Intro\n---\nhello\n")},
		"intro.ar.md":       {Data: []byte("---\ntitle: مقدمة\n---\nمرحبا\n")},
		"ar/second.md":      {Data: []byte("---\ntitle: الثاني\n---\nنص\n")},
		"notes/custom.md":   {Data: []byte("---\nslug: Custom-Slug\n---\nbody\n")},
		"notes/readme.txt":  {Data: []byte("ignored")},
		".drafts/hidden.md": {Data: []byte("ignored")},
		"misc/intro.fr.md":  {Data: []byte("unknown locale suffix stays in the stem")},
	}
	loader := NewLoader(fsys, LoaderConfig{DefaultLocale: "en", Locales: []string{"en", "ar"}})

	docs, err := loader.LoadDirectory(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	got := map[string]string{}
	for _, doc := range docs {
		got[doc.FilePath] = doc.Locale + ":" + doc.Slug
	}
	want := map[string]string{
		"ar/second.md":     "ar:second",
		"intro.ar.md":      "ar:intro",
		"intro.md":         "en:intro",
		"misc/intro.fr.md": "en:intro.fr",
		"notes/custom.md":  "en:custom-slug",
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d documents, got %v", len(want), got)
	}
	for path, expected := range want {
		if got[path] != expected {
			t.Fatalf("%s: expected %s got %s", path, expected, got[path])
		}
	}
	if docs[0].FilePath != "ar/second.md" {
		t.Fatalf("expected documents sorted by path, got %s first", docs[0].FilePath)
	}
}

func TestLoaderRequiresLocale(t *testing.T) {
	fsys := fstest.MapFS{"post.md": {Data: []byte("body")}}
	loader := NewLoader(fsys, LoaderConfig{Locales: []string{"en"}})
	if _, err := loader.LoadDirectory(context.Background()); !errors.Is(err, ErrLocaleMissing) {
		t.Fatalf("expected ErrLocaleMissing, got %v", err)
	}
}
