package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/language"
)

const (
	// MaxValueLength bounds a stored translation value.
	MaxValueLength = 250
	// MaxFullKeyLength bounds a key's full dotted name.
	MaxFullKeyLength = 256

	minPrefixLength = 2
	maxPrefixLength = 4
)

var (
	// ErrValueTooLong is returned when a translation value exceeds MaxValueLength.
	ErrValueTooLong = errors.New("translation value exceeds 250 characters")
	// ErrValueMultiline is returned when a translation value contains a newline.
	ErrValueMultiline = errors.New("translation value must not contain newlines")
	// ErrInvalidFullKey is returned when a key name violates the naming rules.
	ErrInvalidFullKey = errors.New("invalid key name")
	// ErrInvalidPrefix is returned when a project prefix is malformed.
	ErrInvalidPrefix = errors.New("project prefix must be 2-4 lowercase characters")
	// ErrInvalidLocale is returned when a locale code is not of the form ll or ll-CC.
	ErrInvalidLocale = errors.New("locale must be a two-letter language code, optionally with a region (ll or ll-CC)")
)

var (
	fullKeyPattern = regexp.MustCompile(`^[a-z0-9._-]+$`)
	localePattern  = regexp.MustCompile(`^[a-z]{2}(-[A-Z]{2})?$`)
	prefixPattern  = regexp.MustCompile(`^[a-z0-9]{2,4}$`)
)

// ValidateValue checks a raw (untrimmed) translation value against the
// length and single-line rules. Empty input is valid; it means "clear".
// Length counts runes, matching the admin editor's limit.
func ValidateValue(raw string) error {
	if strings.ContainsAny(raw, "\n\r") {
		return ErrValueMultiline
	}
	if utf8.RuneCountInString(strings.TrimSpace(raw)) > MaxValueLength {
		return ErrValueTooLong
	}
	return nil
}

// ValidateFullKey enforces the key naming contract: allowed characters only,
// no consecutive dots, no trailing dot, length 1-256.
func ValidateFullKey(fullKey string) error {
	if fullKey == "" || len(fullKey) > MaxFullKeyLength {
		return fmt.Errorf("%w: length must be 1-%d", ErrInvalidFullKey, MaxFullKeyLength)
	}
	if !fullKeyPattern.MatchString(fullKey) {
		return fmt.Errorf("%w: only lowercase letters, digits, dots, dashes and underscores are allowed", ErrInvalidFullKey)
	}
	if strings.Contains(fullKey, "..") {
		return fmt.Errorf("%w: consecutive dots are not allowed", ErrInvalidFullKey)
	}
	if strings.HasSuffix(fullKey, ".") {
		return fmt.Errorf("%w: trailing dot is not allowed", ErrInvalidFullKey)
	}
	return nil
}

// ValidatePrefix checks the 2-4 character project prefix.
func ValidatePrefix(prefix string) error {
	if len(prefix) < minPrefixLength || len(prefix) > maxPrefixLength || !prefixPattern.MatchString(prefix) {
		return ErrInvalidPrefix
	}
	return nil
}

// ValidateLocale accepts the BCP-47 subset ll or ll-CC and confirms the tag
// parses as a real language tag.
func ValidateLocale(code string) error {
	if !localePattern.MatchString(code) {
		return ErrInvalidLocale
	}
	if _, err := language.Parse(code); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidLocale, code)
	}
	return nil
}
