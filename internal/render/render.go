// Package render turns stored post text into HTML for pages and plain-text excerpts for listings.
package render

import (
	"html/template"
	"strings"

	"gitlab.com/golang-commonmark/markdown"
	"golang.org/x/net/html"
)

// Raw HTML in post bodies is escaped, never passed through.
var markdownParser = markdown.New(
	markdown.HTML(false),
	markdown.Linkify(true),
	markdown.Typographer(true),
	markdown.Nofollow(true),
	markdown.MaxNesting(10),
)

// Markdown renders text as CommonMark.
func Markdown(text string) template.HTML {
	return template.HTML(markdownParser.RenderToString([]byte(normalizeNewlines(text)))) // #nosec G203 -- raw HTML disabled in the parser
}

// PlainText escapes text and keeps its line breaks.
func PlainText(text string) template.HTML {
	paragraphs := strings.Split(strings.TrimSpace(normalizeNewlines(text)), "\n\n")

	var b strings.Builder
	for _, p := range paragraphs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		lines := strings.Split(p, "\n")
		for i := range lines {
			lines[i] = html.EscapeString(lines[i])
		}
		b.WriteString("<p>")
		b.WriteString(strings.Join(lines, "<br>\n"))
		b.WriteString("</p>\n")
	}
	return template.HTML(b.String()) // #nosec G203 -- every line escaped above
}

// Body renders a post body, as markdown when asMarkdown is set.
func Body(text string, asMarkdown bool) template.HTML {
	if asMarkdown {
		return Markdown(text)
	}
	return PlainText(text)
}

func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}
