package usecase

import (
	"context"
	"sync"
	"time"

	"TradeBot365/internal/domain/models"
	drepo "TradeBot365/internal/domain/repository"
	"TradeBot365/internal/services/classify"
	"TradeBot365/internal/services/identity"
	"TradeBot365/internal/services/view"
	"TradeBot365/pkg/util"
)

// ErrorView is an error signal tagged with its derived classification and the
// viewer-local unread flag. Presentation branches on Kind; business logic
// does not.
type ErrorView struct {
	models.ErrorSignal
	Category classify.Category
	Kind     classify.BotType
	Unread   bool
}

// ErrorMonitor drives the error-signal screens: fetch, classify, filter,
// sort, and track the session-local unread set.
type ErrorMonitor struct {
	store   drepo.SignalStore
	metrics drepo.Metrics

	listLimit      int
	refreshTimeout time.Duration

	mu     sync.Mutex
	unread view.UnreadSet
	read   map[string]struct{} // canonical ids marked read this session
	ref    Refresher
}

func NewErrorMonitor(store drepo.SignalStore, metrics drepo.Metrics) *ErrorMonitor {
	return &ErrorMonitor{
		store:   store,
		metrics: metrics,
		unread:  view.NewUnreadSet(),
		read:    make(map[string]struct{}),
	}
}

// SetLimits configures the fallback list limit and the refresh deadline.
func (m *ErrorMonitor) SetLimits(listLimit int, refreshTimeout time.Duration) {
	m.listLimit = listLimit
	m.refreshTimeout = refreshTimeout
}

// limitOr returns limit, falling back to the configured list limit.
func (m *ErrorMonitor) limitOr(limit int) int {
	if limit <= 0 {
		return m.listLimit
	}
	return limit
}

// List returns the derived error view for one request.
func (m *ErrorMonitor) List(ctx context.Context, req models.ErrorListRequest) ([]ErrorView, error) {
	items, err := m.store.ListErrorSignals(ctx, m.limitOr(req.Limit))
	if err != nil {
		m.metrics.RecordError("error_list")
		return nil, err
	}
	m.track(items)

	if since, ok := util.ParseTime(req.Since); ok {
		kept := items[:0:0]
		for _, it := range items {
			if !it.Timestamp.Before(since) {
				kept = append(kept, it)
			}
		}
		items = kept
	}

	filtered := view.Filter(items, view.FilterSpec{
		Search:   req.Search,
		Severity: req.Severity,
		Category: req.Category,
		Status:   req.Status,
		BotType:  req.BotType,
		UserID:   req.UserID,
	})
	sorted := view.Sort(filtered, view.Order(req.Sort))

	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ErrorView, len(sorted))
	for i, e := range sorted {
		e.Severity = classify.SeverityOf(e.Severity)
		out[i] = ErrorView{
			ErrorSignal: e,
			Category:    classify.ErrorCategory(e.ErrorMessage),
			Kind:        classify.BotTypeOf(e.BotType, e.BotID),
			Unread:      m.unread.Contains(e.ID),
		}
	}
	return out, nil
}

// Refresh reloads the unread tracking from the store. A refresh started
// while another is in flight supersedes it; the stale one returns
// ErrSuperseded and applies nothing.
func (m *ErrorMonitor) Refresh(ctx context.Context, limit int) error {
	if m.refreshTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.refreshTimeout)
		defer cancel()
	}
	rctx, commit := m.ref.Begin(ctx)
	items, err := m.store.ListErrorSignals(rctx, m.limitOr(limit))
	if err != nil {
		m.metrics.RecordError("error_refresh")
		return err
	}
	if !commit(func() { m.track(items) }) {
		return ErrSuperseded
	}
	return nil
}

// track marks newly-seen signals unread unless already read this session.
func (m *ErrorMonitor) track(items []models.ErrorSignal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, m.unread.Len()+len(items))
	for k := range m.unread {
		ids = append(ids, k)
	}
	for _, it := range items {
		key := identity.Canonicalize(it.ID)
		if key == "" {
			continue
		}
		if _, ok := m.read[key]; !ok {
			ids = append(ids, key)
		}
	}
	m.unread = view.NewUnreadSet(ids...)
	m.metrics.RecordUnread(m.unread.Len())
}

// MarkRead transitions one signal to read. There is no reverse transition.
func (m *ErrorMonitor) MarkRead(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := identity.Canonicalize(id)
	if key != "" {
		m.read[key] = struct{}{}
		m.unread = m.unread.MarkRead(id)
	}
	m.metrics.RecordUnread(m.unread.Len())
	return m.unread.Len()
}

// MarkAllRead transitions every currently-unread signal to read.
func (m *ErrorMonitor) MarkAllRead() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.unread {
		m.read[k] = struct{}{}
	}
	m.unread = m.unread.MarkAllRead()
	m.metrics.RecordUnread(0)
}

// UnreadCount returns the number of unread signals.
func (m *ErrorMonitor) UnreadCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.unread.Len()
}
