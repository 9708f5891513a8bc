package usecase

import (
	"context"
	"testing"

	"TradeBot365/internal/domain/models"
)

type fakeAccountStore struct {
	rows []models.AccountRow
}

func (f *fakeAccountStore) ListRows(ctx context.Context, userID string) ([]models.AccountRow, error) {
	return f.rows, nil
}

func (f *fakeAccountStore) ReplaceRows(ctx context.Context, rows []models.AccountRow) error {
	f.rows = rows
	return nil
}

func directoryRows() []models.AccountRow {
	return []models.AccountRow{
		{UserID: "USR-001", CSPID: "CSP1", CSPName: "Alpha", AccountID: "A1", Balance: "100.5", IsLive: true},
		{UserID: "USR-001", CSPID: "CSP1", CSPName: "Alpha", AccountID: "A2", Balance: "50", IsLive: false},
		{UserID: "USR-001", CSPID: "CSP2", CSPName: "Beta", AccountID: "B1", Balance: "0", IsLive: true},
	}
}

func TestHierarchyAll(t *testing.T) {
	d := NewAccountDirectory(&fakeAccountStore{rows: directoryRows()}, nopMetrics{})
	tree, err := d.Hierarchy(context.Background(), "USR-001", "all")
	if err != nil {
		t.Fatalf("hierarchy: %v", err)
	}
	if len(tree) != 2 {
		t.Fatalf("expected 2 csp accounts, got %d", len(tree))
	}
	if len(tree[0].TradingAccounts) != 2 {
		t.Fatalf("expected 2 trading accounts under CSP1, got %d", len(tree[0].TradingAccounts))
	}
}

func TestHierarchyLiveCut(t *testing.T) {
	d := NewAccountDirectory(&fakeAccountStore{rows: directoryRows()}, nopMetrics{})
	tree, err := d.Hierarchy(context.Background(), "USR-001", "live")
	if err != nil {
		t.Fatalf("hierarchy: %v", err)
	}
	for _, csp := range tree {
		for _, ta := range csp.TradingAccounts {
			if !ta.IsLive {
				t.Fatalf("demo account %s leaked into live view", ta.ID)
			}
		}
	}
	if len(tree) != 2 {
		t.Fatalf("expected both csp groups to survive, got %d", len(tree))
	}
}

func TestHierarchyDemoCut(t *testing.T) {
	d := NewAccountDirectory(&fakeAccountStore{rows: directoryRows()}, nopMetrics{})
	tree, err := d.Hierarchy(context.Background(), "USR-001", "demo")
	if err != nil {
		t.Fatalf("hierarchy: %v", err)
	}
	if len(tree) != 1 || len(tree[0].TradingAccounts) != 1 {
		t.Fatalf("expected single demo account, got %+v", tree)
	}
}

func TestHierarchyRequiresUser(t *testing.T) {
	d := NewAccountDirectory(&fakeAccountStore{}, nopMetrics{})
	if _, err := d.Hierarchy(context.Background(), "", "all"); err == nil {
		t.Fatalf("expected error for empty user id")
	}
}
