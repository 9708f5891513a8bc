package classify

import (
	"testing"

	"TradeBot365/internal/domain/models"
)

func TestErrorCategoryPriority(t *testing.T) {
	// "Authentication token expired" carries both auth and time keywords;
	// the auth rule is checked first.
	if got := ErrorCategory("Authentication token expired"); got != CategoryAuth {
		t.Fatalf("got %q, want auth", got)
	}
}

func TestErrorCategoryTable(t *testing.T) {
	cases := []struct {
		msg  string
		want Category
	}{
		{"Invalid API key provided", CategoryAuth},
		{"Order rejected: insufficient margin", CategoryTrading},
		{"Webhook payload malformed", CategoryIntegration},
		{"Operation delayed beyond limit", CategoryTime},
		{"Network unreachable", CategoryConn},
		{"Internal exception in worker", CategorySystem},
		{"", CategoryUnknown},
		{"something benign", CategoryUnknown},
	}
	for _, c := range cases {
		if got := ErrorCategory(c.msg); got != c.want {
			t.Fatalf("ErrorCategory(%q) = %q, want %q", c.msg, got, c.want)
		}
	}
}

func TestErrorCategoryDeterministic(t *testing.T) {
	msg := "server timeout during order submit"
	first := ErrorCategory(msg)
	for i := 0; i < 10; i++ {
		if got := ErrorCategory(msg); got != first {
			t.Fatalf("non-deterministic: %q then %q", first, got)
		}
	}
}

func TestBotTypeExplicitFieldWins(t *testing.T) {
	if got := BotTypeOf("Premium Bot", "MY-001"); got != PremiumBot {
		t.Fatalf("got %q, want premium", got)
	}
	if got := BotTypeOf("prop trading", "pb-001"); got != PropBot {
		t.Fatalf("got %q, want prop", got)
	}
}

func TestBotTypePrefixFallback(t *testing.T) {
	cases := []struct {
		id   string
		want BotType
	}{
		{"MY-001", UserBot},
		{"pre-002", PremiumBot},
		{"pb-003", PremiumBot},
		{"PROP-004", PropBot},
		{"ptb-005", PropBot},
		{"BOT-006", UserBot}, // unknown prefix defaults to user
		{"", UserBot},
	}
	for _, c := range cases {
		if got := BotTypeOf("", c.id); got != c.want {
			t.Fatalf("BotTypeOf(%q) = %q, want %q", c.id, got, c.want)
		}
	}
}

func TestSeverityOf(t *testing.T) {
	if got := SeverityOf(models.SeverityCritical); got != models.SeverityCritical {
		t.Fatalf("expected pass-through, got %q", got)
	}
	if got := SeverityOf(""); got != models.SeverityMedium {
		t.Fatalf("expected medium default, got %q", got)
	}
	if got := SeverityOf("weird"); got != models.SeverityMedium {
		t.Fatalf("expected medium default for junk, got %q", got)
	}
}

func TestNormalizeBotID(t *testing.T) {
	cases := []struct {
		raw  string
		t    BotType
		want string
	}{
		{"pb-001", PremiumBot, "PRE-001"},
		{"ptb-002", PropBot, "PROP-002"},
		{"user-bot-003", UserBot, "MY-003"},
		{"PRE-001", PremiumBot, "PRE-001"},
		{"my-7", UserBot, "MY-7"}, // canonical prefix passes through unpadded
		{"bot-7", UserBot, "MY-007"},
		{"", UserBot, ""},
	}
	for _, c := range cases {
		if got := NormalizeBotID(c.raw, c.t); got != c.want {
			t.Fatalf("NormalizeBotID(%q, %q) = %q, want %q", c.raw, c.t, got, c.want)
		}
	}
}
