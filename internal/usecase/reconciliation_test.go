package usecase

import (
	"context"
	"testing"
	"time"

	"TradeBot365/internal/domain/models"
)

type fakeExecutionStore struct {
	recs map[string][]models.ExecutionRecord
}

func (f *fakeExecutionStore) StoreExecution(ctx context.Context, rec *models.ExecutionRecord) error {
	if f.recs == nil {
		f.recs = make(map[string][]models.ExecutionRecord)
	}
	f.recs[rec.SignalID] = append(f.recs[rec.SignalID], *rec)
	return nil
}

func (f *fakeExecutionStore) ListBySignal(ctx context.Context, signalID string) ([]models.ExecutionRecord, error) {
	return f.recs[signalID], nil
}

func TestReconciliationLedger(t *testing.T) {
	now := time.Now()
	signals := &fakeSignalStore{signals: map[string]*models.Signal{
		"S1": {ID: "S1", BotID: "MY-001", Timestamp: now},
	}}
	execs := &fakeExecutionStore{recs: map[string][]models.ExecutionRecord{
		"S1": {{
			ID:       "R1",
			SignalID: "S1",
			ProcessedAccounts: []models.AccountOutcome{
				{AccountID: "ACC1", UserID: "USR-001", Status: models.OutcomeSuccess},
			},
			FailedAccounts: []models.AccountOutcome{
				{AccountID: "ACC2", UserID: "usr001", Status: models.OutcomeFailed},
			},
		}},
	}}

	r := NewReconciliation(signals, execs, nopMetrics{})
	res, err := r.Ledger(context.Background(), "S1")
	if err != nil {
		t.Fatalf("ledger: %v", err)
	}
	if res.Signal.ID != "S1" {
		t.Fatalf("unexpected signal %s", res.Signal.ID)
	}
	// USR-001 and usr001 collapse into one user ledger.
	if len(res.Ledgers) != 1 {
		t.Fatalf("expected 1 ledger, got %d", len(res.Ledgers))
	}
	l := res.Ledgers[0]
	if l.SuccessCount != 1 || l.FailedCount != 1 {
		t.Fatalf("unexpected counts: %+v", l)
	}
}

func TestReconciliationRequiresID(t *testing.T) {
	r := NewReconciliation(&fakeSignalStore{}, &fakeExecutionStore{}, nopMetrics{})
	if _, err := r.Ledger(context.Background(), ""); err == nil {
		t.Fatalf("expected error for empty id")
	}
}

func TestReconciliationUnknownSignal(t *testing.T) {
	r := NewReconciliation(&fakeSignalStore{}, &fakeExecutionStore{}, nopMetrics{})
	if _, err := r.Ledger(context.Background(), "missing"); err == nil {
		t.Fatalf("expected error for unknown signal")
	}
}
