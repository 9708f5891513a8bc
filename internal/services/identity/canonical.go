package identity

import "strings"

// Canonicalize maps a raw user/bot/account identifier to its comparison-safe
// form: uppercase with every non-alphanumeric rune removed. It is total and
// idempotent; empty or garbage input degrades to a best-effort string ("" for
// empty input) and never fails.
func Canonicalize(raw string) string {
	if raw == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r - ('a' - 'A'))
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Equal reports whether two raw identifiers refer to the same entity under
// canonicalization.
func Equal(a, b string) bool {
	return Canonicalize(a) == Canonicalize(b)
}
