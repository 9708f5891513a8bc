package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SignalAction is the position instruction carried by an upstream signal.
type SignalAction string

const (
	ActionEnterLong  SignalAction = "enter_long"
	ActionExitLong   SignalAction = "exit_long"
	ActionEnterShort SignalAction = "enter_short"
	ActionExitShort  SignalAction = "exit_short"
)

// Signal is an upstream trading instruction (TradingView-style). It is
// produced by an external source and consumed read-only by this service.
type Signal struct {
	ID         string
	Instrument string
	Action     SignalAction
	Quantity   decimal.Decimal
	Timestamp  time.Time
	BotID      string
	UserID     string
	Status     string
}

// OutcomeStatus is the per-account execution result.
type OutcomeStatus string

const (
	OutcomeSuccess OutcomeStatus = "success"
	OutcomeFailed  OutcomeStatus = "failed"
	OutcomePending OutcomeStatus = "pending"
)

// AccountOutcome records how a single trading account handled a signal.
type AccountOutcome struct {
	AccountID string
	UserID    string
	Name      string
	Timestamp time.Time
	Status    OutcomeStatus
	Reason    string
	ErrorCode string
}

// ExecutionRecord is the downstream record ("Coinstrat signal") of how one
// signal was applied across linked accounts. An account id appears in at
// most one of the two outcome lists.
type ExecutionRecord struct {
	ID                string
	SignalID          string
	ProcessedAccounts []AccountOutcome
	FailedAccounts    []AccountOutcome
	ErrorMessage      string
	Timestamp         time.Time
}

// Severity grades an error signal.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// ErrorSignal is a Signal extended with diagnostic fields. It is created by
// upstream processing and only reclassified here, never mutated.
type ErrorSignal struct {
	Signal
	Severity         Severity
	ErrorCode        string
	ErrorMessage     string
	BotType          string
	BotName          string
	ConnectedUserIDs []string
}
