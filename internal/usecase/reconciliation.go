package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	drepo "TradeBot365/internal/domain/repository"
	"TradeBot365/internal/services/reconcile"
	pkgcache "TradeBot365/pkg/cache"
)

// Reconciliation cross-references a signal against its execution records and
// derives the per-user ledgers.
type Reconciliation struct {
	signals drepo.SignalStore
	execs   drepo.ExecutionStore
	metrics drepo.Metrics

	cache *pkgcache.LayeredCache
	ttl   time.Duration
}

func NewReconciliation(signals drepo.SignalStore, execs drepo.ExecutionStore, metrics drepo.Metrics) *Reconciliation {
	return &Reconciliation{signals: signals, execs: execs, metrics: metrics}
}

// SetCache enables result caching with the given TTL.
func (r *Reconciliation) SetCache(c *pkgcache.LayeredCache, ttl time.Duration) {
	r.cache = c
	r.ttl = ttl
}

// Ledger builds the reconciliation view for one signal.
func (r *Reconciliation) Ledger(ctx context.Context, signalID string) (*reconcile.Result, error) {
	if signalID == "" {
		return nil, fmt.Errorf("signal id required")
	}
	start := time.Now()

	// Cached as a JSON string; both cache layers pass strings through as-is.
	key := pkgcache.GenerateKey("reconcile", signalID)
	if r.cache != nil {
		var raw string
		if err := r.cache.Get(ctx, key, &raw); err == nil {
			var cached reconcile.Result
			if json.Unmarshal([]byte(raw), &cached) == nil {
				return &cached, nil
			}
		}
	}

	sig, err := r.signals.GetSignal(ctx, signalID)
	if err != nil {
		r.metrics.RecordError("reconcile_signal")
		return nil, fmt.Errorf("load signal: %w", err)
	}
	recs, err := r.execs.ListBySignal(ctx, signalID)
	if err != nil {
		r.metrics.RecordError("reconcile_executions")
		return nil, fmt.Errorf("load executions: %w", err)
	}

	res := &reconcile.Result{
		Signal:  *sig,
		Ledgers: reconcile.Reconcile(*sig, recs),
	}
	if r.cache != nil {
		if b, err := json.Marshal(res); err == nil {
			_ = r.cache.Set(ctx, key, string(b), r.ttl)
		}
	}
	r.metrics.RecordLatency("reconcile", time.Since(start).Seconds())
	return res, nil
}
