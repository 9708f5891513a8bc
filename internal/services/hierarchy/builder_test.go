package hierarchy

import (
	"testing"

	"TradeBot365/internal/domain/models"
)

func TestBuildGroupsByCSPID(t *testing.T) {
	rows := []models.AccountRow{
		{CSPID: "CSP-1", CSPName: "Main", AccountID: "TA-1", Balance: "100.50"},
		{CSPID: "CSP-1", CSPName: "Main", AccountID: "TA-2", Balance: "7"},
	}
	got := Build(rows)
	if len(got) != 1 {
		t.Fatalf("expected 1 CSP account, got %d", len(got))
	}
	if got[0].ID != "CSP-1" {
		t.Fatalf("unexpected id %q", got[0].ID)
	}
	if len(got[0].TradingAccounts) != 2 {
		t.Fatalf("expected 2 trading accounts, got %d", len(got[0].TradingAccounts))
	}
	if got[0].TradingAccounts[0].Balance.String() != "100.5" {
		t.Fatalf("unexpected balance %s", got[0].TradingAccounts[0].Balance)
	}
}

func TestBuildFirstSeenOrder(t *testing.T) {
	rows := []models.AccountRow{
		{CSPID: "CSP-B", AccountID: "TA-1"},
		{CSPID: "CSP-A", AccountID: "TA-2"},
		{CSPID: "CSP-B", AccountID: "TA-3"},
	}
	got := Build(rows)
	if len(got) != 2 || got[0].ID != "CSP-B" || got[1].ID != "CSP-A" {
		t.Fatalf("expected first-seen order CSP-B, CSP-A; got %+v", got)
	}
	if len(got[0].TradingAccounts) != 2 {
		t.Fatalf("expected CSP-B to hold 2 accounts, got %d", len(got[0].TradingAccounts))
	}
}

func TestBuildNoImplicitDedup(t *testing.T) {
	row := models.AccountRow{CSPID: "CSP-1", AccountID: "TA-1"}
	got := Build([]models.AccountRow{row, row})
	if len(got[0].TradingAccounts) != 2 {
		t.Fatalf("duplicate rows must both be kept, got %d", len(got[0].TradingAccounts))
	}
}

func TestBuildMalformedBalance(t *testing.T) {
	got := Build([]models.AccountRow{{CSPID: "CSP-1", AccountID: "TA-1", Balance: "n/a"}})
	if !got[0].TradingAccounts[0].Balance.IsZero() {
		t.Fatalf("unparseable balance should default to zero")
	}
}

func TestBuildEmpty(t *testing.T) {
	if got := Build(nil); len(got) != 0 {
		t.Fatalf("expected empty output, got %d", len(got))
	}
}
