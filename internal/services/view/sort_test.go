package view

import (
	"testing"
	"time"

	"TradeBot365/internal/domain/models"
)

func TestSortNewestOldestInverse(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	items := []models.ErrorSignal{
		sig("E1", models.SeverityLow, "", base.Add(2*time.Minute)),
		sig("E2", models.SeverityLow, "", base),
		sig("E3", models.SeverityLow, "", base.Add(1*time.Minute)),
	}
	newest := Sort(items, Newest)
	if newest[0].ID != "E1" || newest[1].ID != "E3" || newest[2].ID != "E2" {
		t.Fatalf("newest order wrong: %+v", ids(newest))
	}
	oldest := Sort(newest, Oldest)
	for i := range newest {
		if oldest[i].ID != newest[len(newest)-1-i].ID {
			t.Fatalf("oldest is not the exact reverse: %v vs %v", ids(oldest), ids(newest))
		}
	}
}

func TestSortStableOnTies(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	items := []models.ErrorSignal{
		sig("E1", models.SeverityHigh, "", ts),
		sig("E2", models.SeverityHigh, "", ts),
		sig("E3", models.SeverityHigh, "", ts),
	}
	got := Sort(items, SeverityHigh)
	if got[0].ID != "E1" || got[1].ID != "E2" || got[2].ID != "E3" {
		t.Fatalf("ties must keep input order: %v", ids(got))
	}
}

func TestSortSeverityRank(t *testing.T) {
	ts := time.Now()
	items := []models.ErrorSignal{
		sig("E1", models.SeverityMedium, "", ts),
		sig("E2", models.SeverityCritical, "", ts),
		sig("E3", models.SeverityLow, "", ts),
		sig("E4", models.SeverityHigh, "", ts),
	}
	got := Sort(items, SeverityHigh)
	want := []string{"E2", "E4", "E1", "E3"}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("severity-high order wrong: %v", ids(got))
		}
	}
	low := Sort(items, SeverityLow)
	if low[0].ID != "E3" || low[3].ID != "E2" {
		t.Fatalf("severity-low order wrong: %v", ids(low))
	}
}

func TestSortAlreadySortedIdentity(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	items := []models.ErrorSignal{
		sig("E1", models.SeverityLow, "", base.Add(time.Hour)),
		sig("E2", models.SeverityLow, "", base),
	}
	got := Sort(items, Newest)
	for i := range items {
		if got[i].ID != items[i].ID {
			t.Fatalf("sorting a sorted list must not reorder: %v", ids(got))
		}
	}
}

func TestSortDoesNotMutateInput(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	items := []models.ErrorSignal{
		sig("E1", models.SeverityLow, "", base),
		sig("E2", models.SeverityLow, "", base.Add(time.Hour)),
	}
	_ = Sort(items, Newest)
	if items[0].ID != "E1" {
		t.Fatalf("input mutated")
	}
}

func ids(items []models.ErrorSignal) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}
