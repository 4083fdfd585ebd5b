package richtext

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// DocType is the root node type of an editor document.
const DocType = "doc"

// Document is the editor's JSON document (ProseMirror/TipTap shape).
type Document struct {
	Type    string `json:"type"`
	Content []Node `json:"content,omitempty"`
}

// Node is a block or inline node of a Document.
type Node struct {
	Type    string         `json:"type"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	Content []Node         `json:"content,omitempty"`
	Text    string         `json:"text,omitempty"`
	Marks   []Mark         `json:"marks,omitempty"`
}

// Mark decorates inline text (bold, link, ...).
type Mark struct {
	Type  string         `json:"type"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

// IsEmpty reports whether the document carries no nodes.
func (d Document) IsEmpty() bool {
	return len(d.Content) == 0
}

// Value stores the document as JSON text; empty documents are stored as NULL.
func (d Document) Value() (driver.Value, error) {
	if d.Type == "" && len(d.Content) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan decodes a JSON column into the document.
func (d *Document) Scan(src any) error {
	var data []byte
	switch typed := src.(type) {
	case nil:
		*d = Document{}
		return nil
	case []byte:
		data = typed
	case string:
		data = []byte(typed)
	default:
		return fmt.Errorf("richtext: cannot scan %T into Document", src)
	}
	if len(data) == 0 {
		*d = Document{}
		return nil
	}
	return json.Unmarshal(data, d)
}

// Paragraphs builds a document with one paragraph per string.
func Paragraphs(texts ...string) Document {
	doc := Document{Type: DocType}
	for _, text := range texts {
		p := Node{Type: "paragraph"}
		if text != "" {
			p.Content = []Node{{Type: "text", Text: text}}
		}
		doc.Content = append(doc.Content, p)
	}
	return doc
}

func (n Node) attrString(key string) string {
	if n.Attrs == nil {
		return ""
	}
	switch v := n.Attrs[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func (m Mark) attrString(key string) string {
	if m.Attrs == nil {
		return ""
	}
	if v, ok := m.Attrs[key].(string); ok {
		return v
	}
	return ""
}

func (n Node) attrInt(key string, fallback int) int {
	if n.Attrs == nil {
		return fallback
	}
	switch v := n.Attrs[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return int(i)
		}
	}
	return fallback
}
