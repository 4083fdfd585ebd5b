package richtext

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/goliatone/go-folio/internal/validation"
)

//go:embed schema.json
var documentSchema []byte

var ErrInvalidDocument = errors.New("richtext: invalid document")

const maxDepth = 32

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

var blockChildren = map[string]map[string]bool{
	DocType:          {"paragraph": true, "heading": true, "bulletList": true, "orderedList": true, "blockquote": true, "codeBlock": true, "horizontalRule": true, "image": true},
	"blockquote":     {"paragraph": true, "heading": true, "bulletList": true, "orderedList": true, "codeBlock": true, "image": true},
	"listItem":       {"paragraph": true, "bulletList": true, "orderedList": true, "codeBlock": true},
	"bulletList":     {"listItem": true},
	"orderedList":    {"listItem": true},
	"paragraph":      {"text": true, "hardBreak": true, "image": true},
	"heading":        {"text": true, "hardBreak": true},
	"codeBlock":      {"text": true},
	"horizontalRule": {},
	"hardBreak":      {},
	"image":          {},
	"text":           {},
}

var allowedMarks = map[string]bool{
	"bold":      true,
	"italic":    true,
	"underline": true,
	"strike":    true,
	"code":      true,
	"link":      true,
}

func schema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiledSchema, schemaErr = validation.CompileSchema("richtext.json", documentSchema)
	})
	return compiledSchema, schemaErr
}

// Parse validates raw editor JSON against the document schema and the node
// allow-list, returning the decoded document.
func Parse(raw []byte) (Document, error) {
	compiled, err := schema()
	if err != nil {
		return Document{}, err
	}
	if err := validation.ValidateJSON(compiled, raw); err != nil {
		return Document{}, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Document{}, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	if err := Validate(doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// Validate checks the shape of doc: node nesting, mark types, heading levels
// and URL schemes of links and images. An empty document is valid.
func Validate(doc Document) error {
	if doc.Type == "" && len(doc.Content) == 0 {
		return nil
	}
	var issues []validation.ValidationIssue
	if doc.Type != DocType {
		issues = append(issues, validation.ValidationIssue{Location: "/type", Message: fmt.Sprintf("expected %q", DocType)})
	}
	for i, child := range doc.Content {
		validateNode(&issues, DocType, child, fmt.Sprintf("/content/%d", i), 1)
	}
	if len(issues) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidDocument, validation.NewIssues(issues...))
}

func validateNode(issues *[]validation.ValidationIssue, parent string, node Node, location string, depth int) {
	add := func(msg string) {
		*issues = append(*issues, validation.ValidationIssue{Location: location, Message: msg})
	}
	if depth > maxDepth {
		add("document nesting is too deep")
		return
	}
	allowed, known := blockChildren[node.Type]
	if !known {
		add(fmt.Sprintf("unsupported node type %q", node.Type))
		return
	}
	if !blockChildren[parent][node.Type] {
		add(fmt.Sprintf("node %q is not allowed inside %q", node.Type, parent))
	}

	switch node.Type {
	case "text":
		if node.Text == "" {
			add("text nodes must not be empty")
		}
		for j, mark := range node.Marks {
			validateMark(issues, mark, fmt.Sprintf("%s/marks/%d", location, j))
		}
	case "heading":
		if level := node.attrInt("level", 1); level < 1 || level > 4 {
			add("heading level must be between 1 and 4")
		}
	case "image":
		if src := node.attrString("src"); src == "" {
			add("image src is required")
		} else if !SafeURL(src) {
			add("image src must be http(s) or relative")
		}
	case "orderedList":
		if start := node.attrInt("start", 1); start < 0 {
			add("ordered list start must not be negative")
		}
	}
	if node.Type != "text" && (node.Text != "" || len(node.Marks) > 0) {
		add("only text nodes carry text or marks")
	}
	if len(allowed) == 0 && len(node.Content) > 0 {
		add(fmt.Sprintf("node %q cannot have content", node.Type))
		return
	}
	for i, child := range node.Content {
		validateNode(issues, node.Type, child, fmt.Sprintf("%s/content/%d", location, i), depth+1)
	}
}

func validateMark(issues *[]validation.ValidationIssue, mark Mark, location string) {
	if !allowedMarks[mark.Type] {
		*issues = append(*issues, validation.ValidationIssue{Location: location, Message: fmt.Sprintf("unsupported mark %q", mark.Type)})
		return
	}
	if mark.Type == "link" {
		href := mark.attrString("href")
		if href == "" || !SafeURL(href) {
			*issues = append(*issues, validation.ValidationIssue{Location: location, Message: "link href must be http(s), mailto or relative"})
		}
	}
}

// SafeURL accepts http, https and mailto URLs plus relative references.
func SafeURL(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return false
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return false
	}
	switch strings.ToLower(parsed.Scheme) {
	case "":
		// Relative references are fine; protocol-relative ones are not.
		return !strings.HasPrefix(trimmed, "//")
	case "http", "https", "mailto":
		return true
	default:
		return false
	}
}
