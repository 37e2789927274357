package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxTitleLength bounds post, category and location titles.
const MaxTitleLength = 256

// ValidateTitle checks a required title.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("this field is required")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return fmt.Errorf("ensure this value has at most %d characters (it has %d)", MaxTitleLength, utf8.RuneCountInString(title))
	}
	return nil
}

// ValidateText checks a required free-text body such as a post or comment.
func ValidateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("this field is required")
	}
	return nil
}
