package richtext_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-folio/internal/richtext"
	"github.com/goliatone/go-folio/internal/validation"
)

func TestParseAcceptsEditorDocument(t *testing.T) {
	raw := []byte(`{
		"type": "doc",
		"content": [
			{"type": "heading", "attrs": {"level": 2}, "content": [{"type": "text", "text": "Intro"}]},
			{"type": "paragraph", "content": [
				{"type": "text", "text": "Visit "},
				{"type": "text", "text": "my site", "marks": [{"type": "link", "attrs": {"href": "https://example.com"}}]}
			]},
			{"type": "bulletList", "content": [
				{"type": "listItem", "content": [{"type": "paragraph", "content": [{"type": "text", "text": "Go"}]}]}
			]}
		]
	}`)

	doc, err := richtext.Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(doc.Content) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(doc.Content))
	}
}

func TestParseRejectsInvalidDocuments(t *testing.T) {
	cases := map[string]string{
		"unknown node":      `{"type":"doc","content":[{"type":"iframe"}]}`,
		"script link":       `{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"x","marks":[{"type":"link","attrs":{"href":"javascript:alert(1)"}}]}]}]}`,
		"heading level":     `{"type":"doc","content":[{"type":"heading","attrs":{"level":6},"content":[{"type":"text","text":"x"}]}]}`,
		"extra property":    `{"type":"doc","html":"<p>x</p>"}`,
		"text at block":     `{"type":"doc","content":[{"type":"text","text":"loose"}]}`,
		"list without item": `{"type":"doc","content":[{"type":"bulletList","content":[{"type":"paragraph"}]}]}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := richtext.Parse([]byte(raw))
			if !errors.Is(err, richtext.ErrInvalidDocument) {
				t.Fatalf("expected ErrInvalidDocument, got %v", err)
			}
			if len(validation.Issues(err)) == 0 {
				t.Fatalf("expected issues for %s", name)
			}
		})
	}
}

func TestRenderHTMLEscapesAndSanitises(t *testing.T) {
	doc := richtext.Document{
		Type: richtext.DocType,
		Content: []richtext.Node{
			{Type: "paragraph", Content: []richtext.Node{
				{Type: "text", Text: "Hello", Marks: []richtext.Mark{{Type: "bold"}}},
				{Type: "text", Text: " <script>alert(1)</script>"},
			}},
			{Type: "codeBlock", Attrs: map[string]any{"language": "go"}, Content: []richtext.Node{{Type: "text", Text: "x := 1 < 2"}}},
			{Type: "paragraph", Content: []richtext.Node{
				{Type: "text", Text: "link", Marks: []richtext.Mark{{Type: "link", Attrs: map[string]any{"href": "https://example.com"}}}},
			}},
		},
	}

	out := richtext.RenderHTML(doc)
	if !strings.Contains(out, "<strong>Hello</strong>") {
		t.Fatalf("expected bold text, got %s", out)
	}
	if strings.Contains(out, "<script>") {
		t.Fatalf("script tag leaked: %s", out)
	}
	if !strings.Contains(out, "&lt;script&gt;") {
		t.Fatalf("expected escaped script text, got %s", out)
	}
	if !strings.Contains(out, `class="language-go"`) {
		t.Fatalf("expected code language class, got %s", out)
	}
	if !strings.Contains(out, `href="https://example.com"`) || !strings.Contains(out, "nofollow") {
		t.Fatalf("expected external link with rel, got %s", out)
	}
}

func TestRenderHTMLEmptyDocument(t *testing.T) {
	if out := richtext.RenderHTML(richtext.Document{}); out != "" {
		t.Fatalf("expected empty output, got %q", out)
	}
}

func TestFromMarkdownBuildsDocument(t *testing.T) {
	src := "# Title\n\nSome **bold** text.\n\n- one\n- two\n\n```go\nfmt.Println()\n```\n\n<div>raw</div>\n"

	doc, err := richtext.FromMarkdown([]byte(src))
	if err != nil {
		t.Fatalf("from markdown: %v", err)
	}
	if len(doc.Content) != 4 {
		t.Fatalf("expected 4 blocks, got %d: %+v", len(doc.Content), doc.Content)
	}
	if doc.Content[0].Type != "heading" {
		t.Fatalf("expected heading, got %s", doc.Content[0].Type)
	}
	para := doc.Content[1]
	if len(para.Content) != 3 || para.Content[1].Text != "bold" || para.Content[1].Marks[0].Type != "bold" {
		t.Fatalf("unexpected paragraph: %+v", para)
	}
	if list := doc.Content[2]; list.Type != "bulletList" || len(list.Content) != 2 {
		t.Fatalf("unexpected list: %+v", list)
	}
	code := doc.Content[3]
	if code.Type != "codeBlock" || code.Attrs["language"] != "go" || code.Content[0].Text != "fmt.Println()" {
		t.Fatalf("unexpected code block: %+v", code)
	}
}

func TestFromMarkdownDropsUnsafeLinks(t *testing.T) {
	doc, err := richtext.FromMarkdown([]byte("[click](javascript:alert(1)) and [ok](/about)"))
	if err != nil {
		t.Fatalf("from markdown: %v", err)
	}
	html := richtext.RenderHTML(doc)
	if strings.Contains(html, "javascript") {
		t.Fatalf("unsafe href kept: %s", html)
	}
	if !strings.Contains(html, `href="/about"`) {
		t.Fatalf("expected relative link, got %s", html)
	}
}

func TestMarkdownToHTMLSanitises(t *testing.T) {
	out, err := richtext.MarkdownToHTML([]byte("<script>alert(1)</script>\n\nhello *world*"))
	if err != nil {
		t.Fatalf("markdown: %v", err)
	}
	if strings.Contains(out, "<script") {
		t.Fatalf("script leaked: %s", out)
	}
	if !strings.Contains(out, "<em>world</em>") {
		t.Fatalf("expected emphasis, got %s", out)
	}
}

func TestPlainTextAndCounts(t *testing.T) {
	doc := richtext.Paragraphs("One two three.", "", "Four five")
	text := richtext.PlainText(doc)
	if text != "One two three.\nFour five" {
		t.Fatalf("unexpected plain text %q", text)
	}
	if got := richtext.WordCount(text); got != 5 {
		t.Fatalf("expected 5 words, got %d", got)
	}
}

func TestReadingMinutes(t *testing.T) {
	cases := map[int]int{0: 1, 1: 1, 200: 1, 201: 2, 950: 5}
	for words, want := range cases {
		if got := richtext.ReadingMinutes(words); got != want {
			t.Fatalf("ReadingMinutes(%d) = %d, want %d", words, got, want)
		}
	}
}

func TestExcerpt(t *testing.T) {
	if got := richtext.Excerpt("The quick brown fox jumps", 12); got != "The quick…" {
		t.Fatalf("unexpected excerpt %q", got)
	}
	if got := richtext.Excerpt("short   text", 50); got != "short text" {
		t.Fatalf("expected untouched text, got %q", got)
	}
	if got := richtext.Excerpt("مرحبا بالعالم الجميل", 10); got != "مرحبا…" {
		t.Fatalf("unexpected arabic excerpt %q", got)
	}
	got := richtext.Excerpt(strings.Repeat("a", 200), 160)
	if n := len([]rune(got)); n != 160 || !strings.HasSuffix(got, "…") {
		t.Fatalf("expected 160 runes including the ellipsis, got %d (%q)", n, got)
	}
}

func TestDocumentValueScan(t *testing.T) {
	doc := richtext.Paragraphs("hello")
	value, err := doc.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}
	var decoded richtext.Document
	if err := decoded.Scan(value); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if richtext.PlainText(decoded) != "hello" {
		t.Fatalf("unexpected decoded doc %+v", decoded)
	}

	empty, err := richtext.Document{}.Value()
	if err != nil || empty != nil {
		t.Fatalf("expected NULL for empty doc, got %v %v", empty, err)
	}
}
