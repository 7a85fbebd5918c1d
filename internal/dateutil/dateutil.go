// Package dateutil resolves the date placeholders of datasheet metadata.
//
// A metadata date may be a literal ("2024-07-21"), or a keyword asking for
// the generation date: "today" or "auto", optionally followed by a layout,
// "today:DD/MM/YYYY" or "today:long".
package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDateFormat indicates an unusable date layout.
var ErrInvalidDateFormat = errors.New("invalid date format")

// MaxDateFormatLength bounds layout strings read from metadata.
const MaxDateFormatLength = 50

// ISOLayout is the layout used when a keyword carries none.
const ISOLayout = "YYYY-MM-DD"

// keywords request the generation date.
var keywords = []string{"today", "auto"}

// layoutTokens maps layout tokens onto Go reference-time components,
// longest token first.
var layoutTokens = []struct {
	token string
	goFmt string
}{
	{"YYYY", "2006"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"M", "1"},
	{"D", "2"},
}

// Presets are named layouts.
var Presets = map[string]string{
	"iso":      ISOLayout,
	"european": "DD/MM/YYYY",
	"us":       "MM/DD/YYYY",
	"long":     "MMMM D, YYYY",
}

// Layout converts a token layout such as "DD MMM YYYY" into a Go time
// layout. Text in square brackets is copied literally; other characters
// that are not tokens are kept as is.
func Layout(pattern string) (string, error) {
	if pattern == "" {
		return "", fmt.Errorf("%w: layout cannot be empty", ErrInvalidDateFormat)
	}
	if len(pattern) > MaxDateFormatLength {
		return "", fmt.Errorf("%w: layout exceeds %d characters", ErrInvalidDateFormat, MaxDateFormatLength)
	}

	var b strings.Builder
	b.Grow(len(pattern) + 8)

	for i := 0; i < len(pattern); {
		if pattern[i] == '[' {
			end := strings.IndexByte(pattern[i+1:], ']')
			if end < 0 {
				return "", fmt.Errorf("%w: unclosed bracket at position %d", ErrInvalidDateFormat, i)
			}
			b.WriteString(pattern[i+1 : i+1+end])
			i += end + 2
			continue
		}
		i += writeToken(&b, pattern[i:])
	}
	return b.String(), nil
}

// writeToken writes the Go form of the token at the start of s, or its
// first byte, and returns how many bytes were consumed.
func writeToken(b *strings.Builder, s string) int {
	for _, t := range layoutTokens {
		if strings.HasPrefix(s, t.token) {
			b.WriteString(t.goFmt)
			return len(t.token)
		}
	}
	b.WriteByte(s[0])
	return 1
}

// Today formats now with the ISO layout.
func Today(now time.Time) string {
	return now.Format("2006-01-02")
}

// Resolve expands a date keyword against now. Values that are not a
// keyword are returned unchanged.
func Resolve(value string, now time.Time) (string, error) {
	lower := strings.ToLower(strings.TrimSpace(value))

	for _, kw := range keywords {
		switch {
		case lower == kw:
			return Today(now), nil
		case strings.HasPrefix(lower, kw+":"):
			pattern := strings.TrimSpace(value)[len(kw)+1:]
			if pattern == "" {
				return "", fmt.Errorf("%w: layout cannot be empty after %q", ErrInvalidDateFormat, kw+":")
			}
			if preset, ok := Presets[strings.ToLower(pattern)]; ok {
				pattern = preset
			}
			goFmt, err := Layout(pattern)
			if err != nil {
				return "", err
			}
			return now.Format(goFmt), nil
		}
	}
	return value, nil
}
