package usecase

import (
	"context"
	"errors"
	"sync"
)

// ErrSuperseded reports that a newer refresh started before this one could
// apply its result.
var ErrSuperseded = errors.New("refresh superseded")

// Refresher serializes view refreshes: beginning a new refresh cancels the
// in-flight one, and a superseded refresh can never commit a stale result.
type Refresher struct {
	mu     sync.Mutex
	cancel context.CancelFunc
	seq    uint64
}

// Begin cancels any in-flight refresh and returns a context for the new one
// plus a commit func. Commit runs apply only if no later refresh has begun,
// and reports whether it did.
func (r *Refresher) Begin(parent context.Context) (context.Context, func(apply func()) bool) {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	r.cancel = cancel
	r.seq++
	mine := r.seq
	r.mu.Unlock()

	commit := func(apply func()) bool {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.seq != mine {
			return false
		}
		apply()
		return true
	}
	return ctx, commit
}
