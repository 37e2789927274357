package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const maxSlugLength = 64

var (
	slugRegex    = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
	slugSeparate = regexp.MustCompile(`[-\s]+`)
	slugStrip    = regexp.MustCompile(`[^\w\s-]`)
)

var reservedSlugs = map[string]struct{}{
	"create": {},
	"edit":   {},
	"delete": {},
	"static": {},
	"media":  {},
}

// ValidateSlug validates category slug format and reserved names.
func ValidateSlug(slug string) error {
	if slug == "" {
		return fmt.Errorf("slug is required")
	}

	if len(slug) > maxSlugLength {
		return fmt.Errorf("slug must not exceed %d characters", maxSlugLength)
	}

	if !slugRegex.MatchString(slug) {
		return fmt.Errorf("slug can only contain latin letters, digits, hyphens and underscores")
	}

	if _, exists := reservedSlugs[slug]; exists {
		return fmt.Errorf("slug is reserved")
	}

	return nil
}

// Slugify turns a title into a URL slug: accents are folded, anything other than ASCII
// letters, digits, underscores and hyphens is dropped, and whitespace becomes a hyphen.
func Slugify(title string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, title)
	if err != nil {
		folded = title
	}

	ascii := strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, folded)

	s := slugStrip.ReplaceAllString(strings.ToLower(ascii), "")
	s = slugSeparate.ReplaceAllString(strings.TrimSpace(s), "-")
	s = strings.Trim(s, "-_")
	if len(s) > maxSlugLength {
		s = strings.TrimRight(s[:maxSlugLength], "-_")
	}
	return s
}
