package repository

import (
	"context"

	"TradeBot365/internal/domain/models"
)

// SignalStream is an upstream feed of trading signals (TradingView-style).
type SignalStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.Signal, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// Publisher emits domain events to the message bus.
type Publisher interface {
	PublishSignal(ctx context.Context, s *models.Signal) error
	PublishSignalBatch(ctx context.Context, signals []*models.Signal) error
	PublishResolution(ctx context.Context, signalID, note string) error
	Close() error
}

// Metrics records operational metrics.
type Metrics interface {
	RecordMessageSent(backend, botID string)
	RecordError(kind string)
	RecordUnread(count int)
	RecordLatency(op string, seconds float64)
}
