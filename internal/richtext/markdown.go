package richtext

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

var markdownEngine = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	goldmark.WithRendererOptions(html.WithUnsafe()),
)

// MarkdownToHTML renders markdown and sanitises the result.
func MarkdownToHTML(src []byte) (string, error) {
	var buf bytes.Buffer
	if err := markdownEngine.Convert(src, &buf); err != nil {
		return "", fmt.Errorf("markdown render: %w", err)
	}
	return Sanitize(buf.String()), nil
}

// FromMarkdown converts markdown into an editor document. Raw HTML is
// dropped and unsafe link targets lose their link mark.
func FromMarkdown(src []byte) (Document, error) {
	root := markdownEngine.Parser().Parse(text.NewReader(src))
	conv := markdownConverter{source: src}
	doc := Document{Type: DocType}
	for child := root.FirstChild(); child != nil; child = child.NextSibling() {
		doc.Content = append(doc.Content, conv.block(child)...)
	}
	if err := Validate(doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}

type markdownConverter struct {
	source []byte
}

func (c markdownConverter) block(n ast.Node) []Node {
	switch node := n.(type) {
	case *ast.Heading:
		level := node.Level
		if level > 4 {
			level = 4
		}
		content := c.inlines(node, nil)
		if len(content) == 0 {
			return nil
		}
		return []Node{{Type: "heading", Attrs: map[string]any{"level": level}, Content: stripImages(content)}}
	case *ast.Paragraph, *ast.TextBlock:
		content := c.inlines(node, nil)
		if len(content) == 0 {
			return nil
		}
		return []Node{{Type: "paragraph", Content: content}}
	case *ast.List:
		list := Node{Type: "bulletList"}
		if node.IsOrdered() {
			list.Type = "orderedList"
			if node.Start != 1 {
				list.Attrs = map[string]any{"start": node.Start}
			}
		}
		for item := node.FirstChild(); item != nil; item = item.NextSibling() {
			li := Node{Type: "listItem"}
			for child := item.FirstChild(); child != nil; child = child.NextSibling() {
				for _, converted := range c.block(child) {
					if converted.Type == "heading" || converted.Type == "image" || converted.Type == "blockquote" || converted.Type == "horizontalRule" {
						converted = Node{Type: "paragraph", Content: stripImages(converted.Content)}
						if len(converted.Content) == 0 {
							continue
						}
					}
					li.Content = append(li.Content, converted)
				}
			}
			if len(li.Content) == 0 {
				li.Content = []Node{{Type: "paragraph"}}
			}
			list.Content = append(list.Content, li)
		}
		if len(list.Content) == 0 {
			return nil
		}
		return []Node{list}
	case *ast.Blockquote:
		quote := Node{Type: "blockquote"}
		for child := node.FirstChild(); child != nil; child = child.NextSibling() {
			for _, converted := range c.block(child) {
				if converted.Type == "blockquote" || converted.Type == "horizontalRule" {
					quote.Content = append(quote.Content, converted.Content...)
					continue
				}
				quote.Content = append(quote.Content, converted)
			}
		}
		if len(quote.Content) == 0 {
			return nil
		}
		return []Node{quote}
	case *ast.FencedCodeBlock:
		code := Node{Type: "codeBlock"}
		if lang := strings.TrimSpace(string(node.Language(c.source))); lang != "" {
			code.Attrs = map[string]any{"language": lang}
		}
		if body := c.lines(node); body != "" {
			code.Content = []Node{{Type: "text", Text: body}}
		}
		return []Node{code}
	case *ast.CodeBlock:
		code := Node{Type: "codeBlock"}
		if body := c.lines(node); body != "" {
			code.Content = []Node{{Type: "text", Text: body}}
		}
		return []Node{code}
	case *ast.ThematicBreak:
		return []Node{{Type: "horizontalRule"}}
	case *ast.HTMLBlock:
		return nil
	case *east.Table:
		var rows []Node
		for row := node.FirstChild(); row != nil; row = row.NextSibling() {
			var cells []string
			for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
				cells = append(cells, strings.TrimSpace(c.plain(cell)))
			}
			if line := strings.Join(cells, " | "); strings.TrimSpace(line) != "" {
				rows = append(rows, Node{Type: "paragraph", Content: []Node{{Type: "text", Text: line}}})
			}
		}
		return rows
	default:
		var out []Node
		for child := n.FirstChild(); child != nil; child = child.NextSibling() {
			out = append(out, c.block(child)...)
		}
		return out
	}
}

func (c markdownConverter) inlines(parent ast.Node, marks []Mark) []Node {
	var out []Node
	for child := parent.FirstChild(); child != nil; child = child.NextSibling() {
		out = append(out, c.inline(child, marks)...)
	}
	return mergeText(out)
}

func (c markdownConverter) inline(n ast.Node, marks []Mark) []Node {
	switch node := n.(type) {
	case *ast.Text:
		value := string(node.Segment.Value(c.source))
		if node.SoftLineBreak() {
			value += " "
		}
		out := textNode(value, marks)
		if node.HardLineBreak() {
			out = append(out, Node{Type: "hardBreak"})
		}
		return out
	case *ast.String:
		return textNode(string(node.Value), marks)
	case *ast.Emphasis:
		mark := Mark{Type: "italic"}
		if node.Level >= 2 {
			mark.Type = "bold"
		}
		return c.inlines(node, withMark(marks, mark))
	case *east.Strikethrough:
		return c.inlines(node, withMark(marks, Mark{Type: "strike"}))
	case *ast.CodeSpan:
		return textNode(c.plain(node), withMark(marks, Mark{Type: "code"}))
	case *ast.Link:
		href := string(node.Destination)
		if !SafeURL(href) {
			return c.inlines(node, marks)
		}
		return c.inlines(node, withMark(marks, Mark{Type: "link", Attrs: map[string]any{"href": href}}))
	case *ast.AutoLink:
		href := string(node.URL(c.source))
		if node.AutoLinkType == ast.AutoLinkEmail && !strings.HasPrefix(href, "mailto:") {
			href = "mailto:" + href
		}
		label := string(node.Label(c.source))
		if !SafeURL(href) {
			return textNode(label, marks)
		}
		return textNode(label, withMark(marks, Mark{Type: "link", Attrs: map[string]any{"href": href}}))
	case *ast.Image:
		src := string(node.Destination)
		if !SafeURL(src) {
			return nil
		}
		attrs := map[string]any{"src": src, "alt": c.plain(node)}
		if title := string(node.Title); title != "" {
			attrs["title"] = title
		}
		return []Node{{Type: "image", Attrs: attrs}}
	case *ast.RawHTML:
		return nil
	default:
		return c.inlines(node, marks)
	}
}

func (c markdownConverter) plain(n ast.Node) string {
	var b strings.Builder
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch typed := node.(type) {
		case *ast.Text:
			b.Write(typed.Segment.Value(c.source))
			if typed.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(typed.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

func (c markdownConverter) lines(n ast.Node) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		b.Write(segment.Value(c.source))
	}
	return strings.TrimRight(b.String(), "\n")
}

func textNode(value string, marks []Mark) []Node {
	if value == "" {
		return nil
	}
	node := Node{Type: "text", Text: value}
	if len(marks) > 0 {
		node.Marks = append([]Mark(nil), marks...)
	}
	return []Node{node}
}

func withMark(marks []Mark, mark Mark) []Mark {
	out := make([]Mark, 0, len(marks)+1)
	out = append(out, marks...)
	return append(out, mark)
}

// mergeText joins adjacent text nodes that share the same marks and trims
// trailing whitespace left by soft line breaks.
func mergeText(nodes []Node) []Node {
	var out []Node
	for _, node := range nodes {
		if n := len(out); n > 0 && node.Type == "text" && out[n-1].Type == "text" && sameMarks(out[n-1].Marks, node.Marks) {
			out[n-1].Text += node.Text
			continue
		}
		out = append(out, node)
	}
	if n := len(out); n > 0 && out[n-1].Type == "text" {
		out[n-1].Text = strings.TrimRight(out[n-1].Text, " ")
		if out[n-1].Text == "" {
			out = out[:n-1]
		}
	}
	return out
}

func sameMarks(a, b []Mark) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Type != b[i].Type || a[i].attrString("href") != b[i].attrString("href") {
			return false
		}
	}
	return true
}

func stripImages(nodes []Node) []Node {
	out := nodes[:0:0]
	for _, node := range nodes {
		if node.Type == "image" {
			continue
		}
		out = append(out, node)
	}
	return out
}
