package classify

import "strings"

// canonicalPrefix is the wire prefix each bot tier uses in its canonical id.
func canonicalPrefix(t BotType) string {
	switch t {
	case PremiumBot:
		return "PRE-"
	case PropBot:
		return "PROP-"
	default:
		return "MY-"
	}
}

// NormalizeBotID maps a loosely-formatted bot id to its canonical prefix
// form: pb-001 -> PRE-001, ptb-002 -> PROP-002, user-bot-003 -> MY-003.
// Already-canonical ids pass through (case-folded); the numeric suffix is
// zero-padded to at least three digits when the id is reconstructed.
func NormalizeBotID(raw string, t BotType) string {
	if raw == "" {
		return ""
	}
	up := strings.ToUpper(strings.TrimSpace(raw))
	prefix := canonicalPrefix(t)
	if strings.HasPrefix(up, prefix) {
		return up
	}
	digits := trailingDigits(up)
	if digits == "" {
		// nothing to reconstruct from; keep the id recognizable
		return prefix + strings.Trim(up, "-")
	}
	for len(digits) < 3 {
		digits = "0" + digits
	}
	return prefix + digits
}

func trailingDigits(s string) string {
	end := len(s)
	start := end
	for start > 0 && s[start-1] >= '0' && s[start-1] <= '9' {
		start--
	}
	return s[start:end]
}
