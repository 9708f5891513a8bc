package models

// AccountLedger aggregates the outcomes one account produced for a signal.
type AccountLedger struct {
	AccountID   string
	AccountName string
	Outcomes    []AccountOutcome
}

// UserLedger is the per-user execution ledger derived by reconciliation.
// Accounts and their outcome lists preserve encounter order.
type UserLedger struct {
	UserID       string
	Accounts     []AccountLedger
	SuccessCount int
	FailedCount  int
	PendingCount int
}
