package richtext

import (
	"html"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

// Policy returns the sanitiser applied to every rendered fragment.
func Policy() *bluemonday.Policy {
	policyOnce.Do(func() {
		p := bluemonday.UGCPolicy()
		p.AllowElements("s", "u", "figure", "figcaption")
		p.AllowAttrs("class").Matching(regexp.MustCompile(`^language-[\w+-]+$`)).OnElements("code")
		p.AllowAttrs("dir").Matching(regexp.MustCompile(`^(ltr|rtl|auto)$`)).Globally()
		p.RequireNoFollowOnFullyQualifiedLinks(true)
		p.AddTargetBlankToFullyQualifiedLinks(true)
		policy = p
	})
	return policy
}

// Sanitize runs untrusted HTML through the shared policy.
func Sanitize(fragment string) string {
	return Policy().Sanitize(fragment)
}

// RenderHTML converts doc to sanitised HTML.
func RenderHTML(doc Document) string {
	if doc.IsEmpty() {
		return ""
	}
	var b strings.Builder
	for _, node := range doc.Content {
		renderNode(&b, node)
	}
	return Sanitize(b.String())
}

func renderNode(b *strings.Builder, n Node) {
	switch n.Type {
	case "paragraph":
		b.WriteString("<p>")
		renderChildren(b, n)
		b.WriteString("</p>")
	case "heading":
		level := n.attrInt("level", 1)
		if level < 1 || level > 4 {
			level = 2
		}
		tag := "h" + strconv.Itoa(level)
		b.WriteString("<" + tag + ">")
		renderChildren(b, n)
		b.WriteString("</" + tag + ">")
	case "bulletList":
		b.WriteString("<ul>")
		renderChildren(b, n)
		b.WriteString("</ul>")
	case "orderedList":
		if start := n.attrInt("start", 1); start != 1 {
			b.WriteString(`<ol start="` + strconv.Itoa(start) + `">`)
		} else {
			b.WriteString("<ol>")
		}
		renderChildren(b, n)
		b.WriteString("</ol>")
	case "listItem":
		b.WriteString("<li>")
		renderChildren(b, n)
		b.WriteString("</li>")
	case "blockquote":
		b.WriteString("<blockquote>")
		renderChildren(b, n)
		b.WriteString("</blockquote>")
	case "codeBlock":
		if lang := n.attrString("language"); lang != "" {
			b.WriteString(`<pre><code class="language-` + html.EscapeString(lang) + `">`)
		} else {
			b.WriteString("<pre><code>")
		}
		for _, child := range n.Content {
			b.WriteString(html.EscapeString(child.Text))
		}
		b.WriteString("</code></pre>")
	case "horizontalRule":
		b.WriteString("<hr>")
	case "hardBreak":
		b.WriteString("<br>")
	case "image":
		src := n.attrString("src")
		if !SafeURL(src) {
			return
		}
		b.WriteString(`<img src="` + html.EscapeString(src) + `" alt="` + html.EscapeString(n.attrString("alt")) + `"`)
		if title := n.attrString("title"); title != "" {
			b.WriteString(` title="` + html.EscapeString(title) + `"`)
		}
		b.WriteString(">")
	case "text":
		renderText(b, n)
	default:
		renderChildren(b, n)
	}
}

func renderChildren(b *strings.Builder, n Node) {
	for _, child := range n.Content {
		renderNode(b, child)
	}
}

func renderText(b *strings.Builder, n Node) {
	open := make([]string, 0, len(n.Marks))
	closeTags := make([]string, 0, len(n.Marks))
	for _, mark := range n.Marks {
		switch mark.Type {
		case "bold":
			open, closeTags = append(open, "<strong>"), append(closeTags, "</strong>")
		case "italic":
			open, closeTags = append(open, "<em>"), append(closeTags, "</em>")
		case "underline":
			open, closeTags = append(open, "<u>"), append(closeTags, "</u>")
		case "strike":
			open, closeTags = append(open, "<s>"), append(closeTags, "</s>")
		case "code":
			open, closeTags = append(open, "<code>"), append(closeTags, "</code>")
		case "link":
			href := mark.attrString("href")
			if !SafeURL(href) {
				continue
			}
			open = append(open, `<a href="`+html.EscapeString(href)+`">`)
			closeTags = append(closeTags, "</a>")
		}
	}
	for _, tag := range open {
		b.WriteString(tag)
	}
	b.WriteString(html.EscapeString(n.Text))
	for i := len(closeTags) - 1; i >= 0; i-- {
		b.WriteString(closeTags[i])
	}
}
