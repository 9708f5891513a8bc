package reconcile

import (
	"testing"

	"TradeBot365/internal/domain/models"
)

func TestReconcileSplitsUsers(t *testing.T) {
	rec := models.ExecutionRecord{
		ID:       "CS-1",
		SignalID: "SIG-1",
		ProcessedAccounts: []models.AccountOutcome{
			{AccountID: "A1", UserID: "USR-001"},
		},
		FailedAccounts: []models.AccountOutcome{
			{AccountID: "A2", UserID: "USR-002"},
		},
	}
	ledgers := Reconcile(models.Signal{ID: "SIG-1"}, []models.ExecutionRecord{rec})
	if len(ledgers) != 2 {
		t.Fatalf("expected 2 ledgers, got %d", len(ledgers))
	}
	if ledgers[0].UserID != "USR-001" || ledgers[0].SuccessCount != 1 || ledgers[0].FailedCount != 0 {
		t.Fatalf("unexpected first ledger %+v", ledgers[0])
	}
	if ledgers[1].UserID != "USR-002" || ledgers[1].SuccessCount != 0 || ledgers[1].FailedCount != 1 {
		t.Fatalf("unexpected second ledger %+v", ledgers[1])
	}
}

func TestReconcileMergesRawIDVariants(t *testing.T) {
	rec := models.ExecutionRecord{
		ProcessedAccounts: []models.AccountOutcome{
			{AccountID: "A1", UserID: "USR-001"},
			{AccountID: "A2", UserID: "usr001"},
		},
	}
	ledgers := Reconcile(models.Signal{}, []models.ExecutionRecord{rec})
	if len(ledgers) != 1 {
		t.Fatalf("raw variants of one user must share a ledger, got %d", len(ledgers))
	}
	if ledgers[0].SuccessCount != 2 || len(ledgers[0].Accounts) != 2 {
		t.Fatalf("unexpected ledger %+v", ledgers[0])
	}
}

func TestReconcileSkipsMissingUserID(t *testing.T) {
	rec := models.ExecutionRecord{
		ProcessedAccounts: []models.AccountOutcome{
			{AccountID: "A1", UserID: ""},
			{AccountID: "A2", UserID: "USR-001"},
		},
	}
	ledgers := Reconcile(models.Signal{}, []models.ExecutionRecord{rec})
	if len(ledgers) != 1 || ledgers[0].SuccessCount != 1 {
		t.Fatalf("outcome without user id must be dropped, got %+v", ledgers)
	}
}

func TestReconcileConservation(t *testing.T) {
	recs := []models.ExecutionRecord{
		{
			ProcessedAccounts: []models.AccountOutcome{
				{AccountID: "A1", UserID: "U1"},
				{AccountID: "A2", UserID: "U2"},
				{AccountID: "A3", UserID: ""},
			},
			FailedAccounts: []models.AccountOutcome{
				{AccountID: "A4", UserID: "U1"},
			},
		},
		{
			ProcessedAccounts: []models.AccountOutcome{
				{AccountID: "A1", UserID: "U1"},
			},
			FailedAccounts: []models.AccountOutcome{
				{AccountID: "A5", UserID: "U3"},
				{AccountID: "A6", UserID: "U2"},
			},
		},
	}
	ledgers := Reconcile(models.Signal{}, recs)

	var success, failed int
	for _, l := range ledgers {
		success += l.SuccessCount
		failed += l.FailedCount
	}
	// 3 processed outcomes carry a user id, 3 failed outcomes do
	if success != 3 {
		t.Fatalf("success conservation broken: %d", success)
	}
	if failed != 3 {
		t.Fatalf("failure conservation broken: %d", failed)
	}
}

func TestReconcileEncounterOrder(t *testing.T) {
	recs := []models.ExecutionRecord{
		{
			ProcessedAccounts: []models.AccountOutcome{{AccountID: "A1", UserID: "U1", Name: "first"}},
			FailedAccounts:    []models.AccountOutcome{{AccountID: "A1", UserID: "U1", Name: "second"}},
		},
		{
			ProcessedAccounts: []models.AccountOutcome{{AccountID: "A1", UserID: "U1", Name: "third"}},
		},
	}
	ledgers := Reconcile(models.Signal{}, recs)
	if len(ledgers) != 1 || len(ledgers[0].Accounts) != 1 {
		t.Fatalf("expected one user, one account; got %+v", ledgers)
	}
	outs := ledgers[0].Accounts[0].Outcomes
	if len(outs) != 3 || outs[0].Name != "first" || outs[1].Name != "second" || outs[2].Name != "third" {
		t.Fatalf("encounter order broken: %+v", outs)
	}
}

func TestReconcilePendingCounted(t *testing.T) {
	rec := models.ExecutionRecord{
		ProcessedAccounts: []models.AccountOutcome{
			{AccountID: "A1", UserID: "U1", Status: models.OutcomePending},
		},
	}
	ledgers := Reconcile(models.Signal{}, []models.ExecutionRecord{rec})
	if ledgers[0].PendingCount != 1 || ledgers[0].SuccessCount != 0 {
		t.Fatalf("explicit pending status must count as pending: %+v", ledgers[0])
	}
}

func TestReconcileEmpty(t *testing.T) {
	if got := Reconcile(models.Signal{}, nil); len(got) != 0 {
		t.Fatalf("expected no ledgers, got %d", len(got))
	}
}
