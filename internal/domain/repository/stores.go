package repository

import (
	"context"

	"TradeBot365/internal/domain/models"
)

// SignalStore persists upstream signals and the error signals derived from
// them.
type SignalStore interface {
	Init(ctx context.Context) error
	StoreSignal(ctx context.Context, s *models.Signal) error
	StoreSignalBatch(ctx context.Context, signals []*models.Signal) error
	GetSignal(ctx context.Context, id string) (*models.Signal, error)
	StoreErrorSignal(ctx context.Context, e *models.ErrorSignal) error
	ListErrorSignals(ctx context.Context, limit int) ([]models.ErrorSignal, error)
	Health(ctx context.Context) error
	Close() error
}

// ExecutionStore persists downstream execution records keyed by signal.
type ExecutionStore interface {
	StoreExecution(ctx context.Context, rec *models.ExecutionRecord) error
	ListBySignal(ctx context.Context, signalID string) ([]models.ExecutionRecord, error)
}

// AccountStore reads the denormalized account join rows for a user and
// accepts full snapshots from provisioning sync.
type AccountStore interface {
	ListRows(ctx context.Context, userID string) ([]models.AccountRow, error)
	ReplaceRows(ctx context.Context, rows []models.AccountRow) error
}
