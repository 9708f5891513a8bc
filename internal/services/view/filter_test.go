package view

import (
	"testing"
	"time"

	"TradeBot365/internal/domain/models"
)

func sig(id string, sev models.Severity, msg string, ts time.Time) models.ErrorSignal {
	return models.ErrorSignal{
		Signal:       models.Signal{ID: id, Timestamp: ts, Status: "pending"},
		Severity:     sev,
		ErrorMessage: msg,
	}
}

func TestFilterNoOpLaw(t *testing.T) {
	now := time.Now()
	items := []models.ErrorSignal{
		sig("E1", models.SeverityLow, "a", now),
		sig("E2", models.SeverityHigh, "b", now),
	}
	got := Filter(items, FilterSpec{Search: "", Severity: All, Category: All, Status: All, BotType: All, UserID: ""})
	if len(got) != len(items) {
		t.Fatalf("neutral spec must be a no-op, got %d items", len(got))
	}
	for i := range got {
		if got[i].ID != items[i].ID {
			t.Fatalf("order changed at %d: %q vs %q", i, got[i].ID, items[i].ID)
		}
	}
}

func TestFilterSeverityExact(t *testing.T) {
	now := time.Now()
	items := []models.ErrorSignal{
		sig("E1", models.SeverityLow, "", now),
		sig("E2", models.SeverityCritical, "", now),
		sig("E3", models.SeverityMedium, "", now),
		sig("E4", models.SeverityHigh, "", now),
	}
	got := Filter(items, FilterSpec{Severity: "critical"})
	if len(got) != 1 || got[0].ID != "E2" {
		t.Fatalf("expected exactly E2, got %+v", got)
	}
}

func TestFilterSearchAcrossFields(t *testing.T) {
	now := time.Now()
	a := sig("E1", models.SeverityLow, "order rejected", now)
	a.Instrument = "BTCUSDT"
	b := sig("E2", models.SeverityLow, "fine", now)
	b.BotName = "Alpha Scalper"
	c := sig("E3", models.SeverityLow, "fine", now)

	items := []models.ErrorSignal{a, b, c}
	if got := Filter(items, FilterSpec{Search: "btc"}); len(got) != 1 || got[0].ID != "E1" {
		t.Fatalf("instrument search failed: %+v", got)
	}
	if got := Filter(items, FilterSpec{Search: "scalper"}); len(got) != 1 || got[0].ID != "E2" {
		t.Fatalf("bot name search failed: %+v", got)
	}
	if got := Filter(items, FilterSpec{Search: "e3"}); len(got) != 1 || got[0].ID != "E3" {
		t.Fatalf("id search failed: %+v", got)
	}
}

func TestFilterCategoryUsesClassifier(t *testing.T) {
	now := time.Now()
	items := []models.ErrorSignal{
		sig("E1", models.SeverityLow, "invalid token", now),
		sig("E2", models.SeverityLow, "order margin too low", now),
	}
	got := Filter(items, FilterSpec{Category: "auth"})
	if len(got) != 1 || got[0].ID != "E1" {
		t.Fatalf("expected auth-only, got %+v", got)
	}
}

func TestFilterConnectedUsers(t *testing.T) {
	now := time.Now()
	a := sig("E1", models.SeverityLow, "", now)
	a.UserID = "USR-001"
	b := sig("E2", models.SeverityLow, "", now)
	b.UserID = "USR-002"
	b.ConnectedUserIDs = []string{"usr001"}

	got := Filter([]models.ErrorSignal{a, b}, FilterSpec{UserID: "usr-001"})
	if len(got) != 2 {
		t.Fatalf("owner and connected user must both match, got %+v", got)
	}
}

func TestFilterAndComposition(t *testing.T) {
	now := time.Now()
	a := sig("E1", models.SeverityHigh, "token expired", now)
	b := sig("E2", models.SeverityHigh, "order failed", now)
	c := sig("E3", models.SeverityLow, "token expired", now)

	got := Filter([]models.ErrorSignal{a, b, c}, FilterSpec{Severity: "high", Category: "auth"})
	if len(got) != 1 || got[0].ID != "E1" {
		t.Fatalf("AND composition broken: %+v", got)
	}
}

func TestFilterEmptyInput(t *testing.T) {
	if got := Filter(nil, FilterSpec{Severity: "high"}); len(got) != 0 {
		t.Fatalf("empty in, empty out; got %d", len(got))
	}
}
