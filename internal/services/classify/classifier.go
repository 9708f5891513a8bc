package classify

import (
	"strings"

	"TradeBot365/internal/domain/models"
)

// BotType tags a signal with the bot tier that produced it.
type BotType string

const (
	UserBot    BotType = "user"
	PremiumBot BotType = "premium"
	PropBot    BotType = "prop"
)

// Category is the diagnostic class inferred from an error message.
type Category string

const (
	CategoryAuth        Category = "auth"
	CategoryTrading     Category = "trading"
	CategoryIntegration Category = "integration"
	CategoryTime        Category = "time"
	CategoryConn        Category = "conn"
	CategorySystem      Category = "system"
	CategoryUnknown     Category = "unknown"
)

// errorRules is evaluated in order, first match wins. The order is a
// deliberate tie-break: a message carrying both "auth" and "timeout"
// classifies as auth because the auth rule comes first.
var errorRules = []struct {
	category Category
	keywords []string
}{
	{CategoryAuth, []string{"auth", "token", "permission", "key", "login", "credential"}},
	{CategoryTrading, []string{"trade", "order", "position", "balance", "fund", "margin", "liquidation"}},
	{CategoryIntegration, []string{"api", "request", "response", "webhook", "format", "payload"}},
	{CategoryTime, []string{"time", "timeout", "delay", "expired"}},
	{CategoryConn, []string{"connect", "network", "server", "unavailable", "unreachable"}},
	{CategorySystem, []string{"system", "internal", "crash", "error", "exception"}},
}

// ErrorCategory classifies a free-form error message. Empty or unmatched
// messages classify as unknown.
func ErrorCategory(message string) Category {
	if message == "" {
		return CategoryUnknown
	}
	msg := strings.ToLower(message)
	for _, rule := range errorRules {
		for _, kw := range rule.keywords {
			if strings.Contains(msg, kw) {
				return rule.category
			}
		}
	}
	return CategoryUnknown
}

// idPrefixes maps loose bot-id prefix conventions to bot types, checked in
// order after the explicit field.
var idPrefixes = []struct {
	prefix string
	t      BotType
}{
	{"MY-", UserBot},
	{"PRE-", PremiumBot},
	{"PB-", PremiumBot},
	{"PROP-", PropBot},
	{"PTB-", PropBot},
}

// BotTypeOf infers the bot tier. The explicit botType field wins when it
// matches a known tier; otherwise the id prefix convention applies; anything
// else is a user bot.
func BotTypeOf(botType, botID string) BotType {
	if botType != "" {
		bt := strings.ToLower(botType)
		switch {
		case strings.Contains(bt, "user"):
			return UserBot
		case strings.Contains(bt, "premium"):
			return PremiumBot
		case strings.Contains(bt, "prop"):
			return PropBot
		}
	}
	id := strings.ToUpper(strings.TrimSpace(botID))
	for _, p := range idPrefixes {
		if strings.HasPrefix(id, p.prefix) {
			return p.t
		}
	}
	return UserBot
}

// SeverityOf passes through an explicit severity, defaulting to medium.
func SeverityOf(s models.Severity) models.Severity {
	switch s {
	case models.SeverityLow, models.SeverityMedium, models.SeverityHigh, models.SeverityCritical:
		return s
	default:
		return models.SeverityMedium
	}
}
