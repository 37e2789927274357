package render

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// DefaultExcerptLength is the excerpt size used by post listings, in runes.
const DefaultExcerptLength = 200

// Excerpt extracts the visible text of an HTML fragment, collapses whitespace and cuts it
// to at most limit runes at a word boundary, appending an ellipsis when cut.
func Excerpt(fragment string, limit int) string {
	tokenizer := html.NewTokenizerFragment(strings.NewReader(fragment), "body")

	var b strings.Builder
	skip := 0
	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			break // io.EOF for in-memory input
		}

		switch tt {
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			if isInvisible(string(name)) {
				skip++
			}
			b.WriteByte(' ')
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			if isInvisible(string(name)) && skip > 0 {
				skip--
			}
			b.WriteByte(' ')
		case html.SelfClosingTagToken:
			b.WriteByte(' ')
		case html.TextToken:
			if skip == 0 {
				b.Write(tokenizer.Text())
			}
		}
	}

	text := strings.Join(strings.Fields(b.String()), " ")
	return truncateWords(text, limit)
}

// PostExcerpt is the listing summary of a post body.
func PostExcerpt(text string, asMarkdown bool) string {
	return Excerpt(string(Body(text, asMarkdown)), DefaultExcerptLength)
}

func isInvisible(tag string) bool {
	return tag == "script" || tag == "style"
}

func truncateWords(text string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}

	runes := []rune(text)
	cut := string(runes[:limit])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " .,;:") + "…"
}
