// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	minPasswordLength = 8
	maxPasswordLength = 128
	maxUsernameLength = 150
	maxNameLength     = 150
	maxEmailLength    = 254
)

var (
	usernameRegex = regexp.MustCompile(`^[\w.@+-]+$`)
	digitsOnly    = regexp.MustCompile(`^[0-9]+$`)
)

// reservedUsernames collide with routes under /profile/ or are rewritten by path
// normalization, so their profile pages could never be reached.
var reservedUsernames = map[string]struct{}{
	"edit": {},
	".":    {},
	"..":   {},
}

// commonPasswords is a short deny list of the passwords seen most often in breaches.
var commonPasswords = map[string]struct{}{
	"password":   {},
	"password1":  {},
	"12345678":   {},
	"123456789":  {},
	"1234567890": {},
	"qwertyuiop": {},
	"qwerty123":  {},
	"iloveyou":   {},
	"sunshine":   {},
	"princess":   {},
	"football":   {},
	"baseball":   {},
	"welcome1":   {},
	"admin123":   {},
	"letmein1":   {},
	"abc12345":   {},
	"11111111":   {},
	"00000000":   {},
	"passw0rd":   {},
	"trustno1":   {},
}

// ValidatePassword checks a new password. attributes are the user's other fields
// (username, names, email); a password containing one of them is rejected.
func ValidatePassword(password string, attributes ...string) error {
	length := utf8.RuneCountInString(password)
	if length < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", minPasswordLength)
	}
	if length > maxPasswordLength {
		return fmt.Errorf("password must not exceed %d characters", maxPasswordLength)
	}

	if digitsOnly.MatchString(password) {
		return fmt.Errorf("password cannot be entirely numeric")
	}

	lower := strings.ToLower(password)
	if _, common := commonPasswords[lower]; common {
		return fmt.Errorf("password is too common")
	}

	for _, attr := range attributes {
		attr = strings.ToLower(strings.TrimSpace(attr))
		if local, _, ok := strings.Cut(attr, "@"); ok {
			attr = local
		}
		if utf8.RuneCountInString(attr) >= 3 && strings.Contains(lower, attr) {
			return fmt.Errorf("password is too similar to your personal information")
		}
	}

	return nil
}

// ValidateUsername checks if a username meets requirements
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("username is required")
	}

	if utf8.RuneCountInString(username) > maxUsernameLength {
		return fmt.Errorf("username must not exceed %d characters", maxUsernameLength)
	}

	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username can only contain letters, digits and @/./+/-/_")
	}

	if _, reserved := reservedUsernames[strings.ToLower(username)]; reserved {
		return fmt.Errorf("username %q is reserved", username)
	}

	return nil
}

// ValidateEmail checks email format. An empty email is allowed.
func ValidateEmail(email string) error {
	if email == "" {
		return nil
	}

	if len(email) > maxEmailLength {
		return fmt.Errorf("email must not exceed %d characters", maxEmailLength)
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("invalid email format")
	}
	_, domain, _ := strings.Cut(email, "@")
	if !strings.Contains(domain, ".") || strings.HasSuffix(domain, ".") || strings.HasPrefix(domain, ".") {
		return fmt.Errorf("invalid email format")
	}

	return nil
}

// ValidatePersonName checks an optional first or last name.
func ValidatePersonName(name string) error {
	if utf8.RuneCountInString(name) > maxNameLength {
		return fmt.Errorf("name must not exceed %d characters", maxNameLength)
	}
	return nil
}
