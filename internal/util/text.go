package util

import (
	"regexp"
	"strings"
)

var whitespace = regexp.MustCompile(`\s+`)

// NormalizeWhitespace trims and collapses whitespace to single spaces.
func NormalizeWhitespace(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

// Tokenize lowercases and splits text into word tokens. Punctuation is
// treated as a separator and single-character fragments are dropped, so
// "space, adventure!" yields ["space", "adventure"].
func Tokenize(s string) []string {
	s = strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '\'' {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	parts := strings.Fields(b.String())
	out := parts[:0]
	for _, p := range parts {
		p = strings.Trim(p, "'")
		if len(p) < 2 {
			continue
		}
		out = append(out, p)
	}
	return out
}
