// Package slug turns display strings into URL-safe identifiers and resolves
// collisions against an existing set.
package slug

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// MaxLength is the longest slug accepted in a URL path.
const MaxLength = 200

// whitespace is every character counted as a separator: ASCII whitespace,
// vertical tab, the Unicode space and line/paragraph separators (NBSP,
// U+2000-U+200A, U+3000 and friends) and the byte order mark. RE2's \s alone
// is ASCII only.
const whitespace = `\s\v\p{Z}\x{FEFF}`

var (
	disallowed  = regexp.MustCompile(`[^\w` + whitespace + `-]`)
	separators  = regexp.MustCompile(`[` + whitespace + `_-]+`)
	pathPattern = regexp.MustCompile(`^[a-z0-9-]+$`)
)

// Slugify lowercases and trims text, drops everything that is not a word
// character, whitespace or hyphen, collapses runs of whitespace, underscores
// and hyphens into one hyphen, and strips hyphens from both ends.
//
// The result may be empty when text has no usable characters.
func Slugify(text string) string {
	s := strings.TrimSpace(strings.ToLower(text))
	s = disallowed.ReplaceAllString(s, "")
	s = separators.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Path validation errors.
var (
	ErrEmpty    = errors.New("Slug is required")
	ErrTooLong  = fmt.Errorf("Slug must be %d characters or less", MaxLength)
	ErrBadChars = errors.New("Slug can only contain lowercase letters, numbers, and hyphens")
)

// ValidatePath checks a slug received as a path parameter.
func ValidatePath(s string) error {
	switch {
	case s == "":
		return ErrEmpty
	case len(s) > MaxLength:
		return ErrTooLong
	case !pathPattern.MatchString(s):
		return ErrBadChars
	}
	return nil
}

// ExistsFunc reports whether candidate is already taken.
type ExistsFunc func(ctx context.Context, candidate string) (bool, error)

// MakeUnique returns base if it is free, otherwise the first of base-1,
// base-2, ... that exists reports as free. The base is shortened when needed
// so candidates never exceed MaxLength.
//
// The answer is only as good as the moment exists was asked; callers that
// write the result must still handle a uniqueness violation from the store.
func MakeUnique(ctx context.Context, base string, exists ExistsFunc) (string, error) {
	candidate := truncate(base, MaxLength)
	for counter := 1; ; counter++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check slug %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = WithSuffix(base, counter)
	}
}

// WithSuffix appends -n to base, shortening base so the result fits MaxLength.
func WithSuffix(base string, n int) string {
	suffix := "-" + strconv.Itoa(n)
	return truncate(base, MaxLength-len(suffix)) + suffix
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return strings.TrimRight(s[:max], "-")
}
