package richtext

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// WordsPerMinute is the reading speed used by ReadingMinutes.
const WordsPerMinute = 200

// PlainText flattens doc into text with blocks separated by newlines.
func PlainText(doc Document) string {
	var blocks []string
	for _, node := range doc.Content {
		collectBlocks(&blocks, node)
	}
	return strings.Join(blocks, "\n")
}

func collectBlocks(out *[]string, n Node) {
	switch n.Type {
	case "paragraph", "heading", "codeBlock":
		if text := strings.TrimSpace(inlineText(n)); text != "" {
			*out = append(*out, text)
		}
	case "image":
		if alt := strings.TrimSpace(n.attrString("alt")); alt != "" {
			*out = append(*out, alt)
		}
	default:
		for _, child := range n.Content {
			collectBlocks(out, child)
		}
	}
}

func inlineText(n Node) string {
	var b strings.Builder
	var walk func(Node)
	walk = func(node Node) {
		switch node.Type {
		case "text":
			b.WriteString(node.Text)
		case "hardBreak":
			b.WriteString(" ")
		default:
			for _, child := range node.Content {
				walk(child)
			}
		}
	}
	walk(n)
	return b.String()
}

// WordCount counts whitespace separated words.
func WordCount(text string) int {
	return len(strings.FieldsFunc(text, unicode.IsSpace))
}

// ReadingMinutes returns ceil(words/WordsPerMinute) with a minimum of one.
func ReadingMinutes(words int) int {
	if words <= 0 {
		return 1
	}
	minutes := (words + WordsPerMinute - 1) / WordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}

// Excerpt shortens text to at most limit runes, cutting at a word boundary.
// A truncated result ends in an ellipsis that counts toward limit.
func Excerpt(text string, limit int) string {
	normalized := strings.Join(strings.Fields(text), " ")
	if limit <= 0 || utf8.RuneCountInString(normalized) <= limit {
		return normalized
	}
	runes := []rune(normalized)[:limit-1]
	for i := len(runes) - 1; i >= limit/2; i-- {
		if unicode.IsSpace(runes[i]) {
			runes = runes[:i]
			break
		}
	}
	return strings.TrimRightFunc(string(runes), func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	}) + "…"
}
