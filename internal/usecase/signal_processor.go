package usecase

import (
	"context"
	"fmt"
	"time"

	"TradeBot365/internal/domain/models"
	drepo "TradeBot365/internal/domain/repository"
)

// SignalProcessor routes incoming signals to the configured backend.
type SignalProcessor struct {
	pub     drepo.Publisher
	store   drepo.SignalStore
	metrics drepo.Metrics
	backend string
	batchSz int
	batchTO time.Duration
}

func NewSignalProcessor(
	pub drepo.Publisher,
	store drepo.SignalStore,
	metrics drepo.Metrics,
	backend string,
	batchSz int,
	batchTO time.Duration,
) *SignalProcessor {
	return &SignalProcessor{
		pub:     pub,
		store:   store,
		metrics: metrics,
		backend: backend,
		batchSz: batchSz,
		batchTO: batchTO,
	}
}

// Process routes a single signal.
func (p *SignalProcessor) Process(ctx context.Context, s *models.Signal) error {
	if s == nil {
		return fmt.Errorf("signal is nil")
	}

	start := time.Now()
	var err error
	switch p.backend {
	case "kafka":
		err = p.pub.PublishSignal(ctx, s)
	case "clickhouse":
		err = p.store.StoreSignal(ctx, s)
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}
	if err != nil {
		p.metrics.RecordError("process")
		return fmt.Errorf("process signal: %w", err)
	}

	p.metrics.RecordMessageSent(p.backend, s.BotID)
	p.metrics.RecordLatency("process", time.Since(start).Seconds())
	return nil
}

// ProcessBatch routes multiple signals at once.
func (p *SignalProcessor) ProcessBatch(ctx context.Context, signals []*models.Signal) error {
	if len(signals) == 0 {
		return nil
	}

	start := time.Now()
	var err error
	switch p.backend {
	case "kafka":
		err = p.pub.PublishSignalBatch(ctx, signals)
	case "clickhouse":
		err = p.store.StoreSignalBatch(ctx, signals)
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}
	if err != nil {
		p.metrics.RecordError("process_batch")
		return fmt.Errorf("process batch: %w", err)
	}

	for _, s := range signals {
		p.metrics.RecordMessageSent(p.backend, s.BotID)
	}
	p.metrics.RecordLatency("process_batch", time.Since(start).Seconds())
	return nil
}

// Close closes underlying resources if available.
func (p *SignalProcessor) Close() {
	if p.pub != nil {
		_ = p.pub.Close()
	}
	if p.store != nil {
		_ = p.store.Close()
	}
}
