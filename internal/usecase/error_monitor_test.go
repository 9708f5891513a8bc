package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"TradeBot365/internal/domain/models"
)

type fakeSignalStore struct {
	errs        []models.ErrorSignal
	signals     map[string]*models.Signal
	listErr     error
	lastLimit   int
	sawDeadline bool
}

func (f *fakeSignalStore) Init(ctx context.Context) error                          { return nil }
func (f *fakeSignalStore) StoreSignal(ctx context.Context, s *models.Signal) error { return nil }
func (f *fakeSignalStore) StoreSignalBatch(ctx context.Context, signals []*models.Signal) error {
	return nil
}
func (f *fakeSignalStore) GetSignal(ctx context.Context, id string) (*models.Signal, error) {
	if s, ok := f.signals[id]; ok {
		return s, nil
	}
	return nil, errors.New("not found")
}
func (f *fakeSignalStore) StoreErrorSignal(ctx context.Context, e *models.ErrorSignal) error {
	f.errs = append(f.errs, *e)
	return nil
}
func (f *fakeSignalStore) ListErrorSignals(ctx context.Context, limit int) ([]models.ErrorSignal, error) {
	f.lastLimit = limit
	if _, ok := ctx.Deadline(); ok {
		f.sawDeadline = true
	}
	if f.listErr != nil {
		return nil, f.listErr
	}
	if limit > 0 && limit < len(f.errs) {
		return f.errs[:limit], nil
	}
	return f.errs, nil
}
func (f *fakeSignalStore) Health(ctx context.Context) error { return nil }
func (f *fakeSignalStore) Close() error                     { return nil }

type nopMetrics struct{}

func (nopMetrics) RecordMessageSent(backend, botID string)  {}
func (nopMetrics) RecordError(kind string)                  {}
func (nopMetrics) RecordUnread(count int)                   {}
func (nopMetrics) RecordLatency(op string, seconds float64) {}

func errSig(id, msg string, sev models.Severity, ts time.Time) models.ErrorSignal {
	return models.ErrorSignal{
		Signal: models.Signal{
			ID:        id,
			BotID:     "MY-001",
			UserID:    "USR-001",
			Timestamp: ts,
		},
		Severity:     sev,
		ErrorMessage: msg,
	}
}

func TestErrorMonitorListTagsUnread(t *testing.T) {
	now := time.Now()
	store := &fakeSignalStore{errs: []models.ErrorSignal{
		errSig("E1", "Authentication token expired", models.SeverityCritical, now),
		errSig("E2", "Order rejected by broker", models.SeverityHigh, now.Add(-time.Minute)),
	}}
	m := NewErrorMonitor(store, nopMetrics{})

	views, err := m.List(context.Background(), models.ErrorListRequest{
		Severity: "all", Category: "all", Status: "all", BotType: "all", Sort: "newest", Limit: 100,
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 views, got %d", len(views))
	}
	for _, v := range views {
		if !v.Unread {
			t.Fatalf("expected %s unread", v.ID)
		}
	}
	if views[0].ID != "E1" {
		t.Fatalf("expected newest first, got %s", views[0].ID)
	}
	if views[0].Category != "auth" {
		t.Fatalf("expected auth category, got %s", views[0].Category)
	}
}

func TestErrorMonitorMarkReadSticksAcrossRefresh(t *testing.T) {
	now := time.Now()
	store := &fakeSignalStore{errs: []models.ErrorSignal{
		errSig("E1", "Connection lost", models.SeverityHigh, now),
	}}
	m := NewErrorMonitor(store, nopMetrics{})

	if err := m.Refresh(context.Background(), 100); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if got := m.UnreadCount(); got != 1 {
		t.Fatalf("expected 1 unread, got %d", got)
	}

	if got := m.MarkRead("e1"); got != 0 { // canonical id match
		t.Fatalf("expected 0 unread after mark, got %d", got)
	}

	// A refresh must not resurrect a read signal.
	if err := m.Refresh(context.Background(), 100); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if got := m.UnreadCount(); got != 0 {
		t.Fatalf("expected read state to persist, got %d unread", got)
	}

	// A new signal after read-all still arrives unread.
	store.errs = append(store.errs, errSig("E2", "Timeout waiting for fill", models.SeverityMedium, now))
	if err := m.Refresh(context.Background(), 100); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if got := m.UnreadCount(); got != 1 {
		t.Fatalf("expected only new signal unread, got %d", got)
	}
}

func TestErrorMonitorMarkAllRead(t *testing.T) {
	now := time.Now()
	store := &fakeSignalStore{errs: []models.ErrorSignal{
		errSig("E1", "a", models.SeverityLow, now),
		errSig("E2", "b", models.SeverityLow, now),
	}}
	m := NewErrorMonitor(store, nopMetrics{})
	if err := m.Refresh(context.Background(), 100); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	m.MarkAllRead()
	if got := m.UnreadCount(); got != 0 {
		t.Fatalf("expected 0 unread, got %d", got)
	}
}

func TestErrorMonitorSinceFilter(t *testing.T) {
	cutoff := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	store := &fakeSignalStore{errs: []models.ErrorSignal{
		errSig("OLD", "stale", models.SeverityLow, cutoff.Add(-time.Hour)),
		errSig("NEW", "fresh", models.SeverityLow, cutoff.Add(time.Hour)),
	}}
	m := NewErrorMonitor(store, nopMetrics{})

	views, err := m.List(context.Background(), models.ErrorListRequest{
		Severity: "all", Category: "all", Status: "all", BotType: "all",
		Since: cutoff.Format(time.RFC3339), Sort: "newest", Limit: 100,
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(views) != 1 || views[0].ID != "NEW" {
		t.Fatalf("expected only NEW, got %+v", views)
	}
}

func TestErrorMonitorConfiguredLimits(t *testing.T) {
	now := time.Now()
	store := &fakeSignalStore{errs: []models.ErrorSignal{
		errSig("E1", "a", models.SeverityLow, now),
	}}
	m := NewErrorMonitor(store, nopMetrics{})
	m.SetLimits(50, time.Second)

	// A zero request limit falls back to the configured one.
	if _, err := m.List(context.Background(), models.ErrorListRequest{
		Severity: "all", Category: "all", Status: "all", BotType: "all", Sort: "newest",
	}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if store.lastLimit != 50 {
		t.Fatalf("expected configured limit 50, got %d", store.lastLimit)
	}

	// An explicit limit wins.
	if _, err := m.List(context.Background(), models.ErrorListRequest{
		Severity: "all", Category: "all", Status: "all", BotType: "all", Sort: "newest", Limit: 7,
	}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if store.lastLimit != 7 {
		t.Fatalf("expected explicit limit 7, got %d", store.lastLimit)
	}

	// Refresh carries a deadline derived from the configured timeout.
	if err := m.Refresh(context.Background(), 0); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if !store.sawDeadline {
		t.Fatalf("expected refresh context to carry a deadline")
	}
	if store.lastLimit != 50 {
		t.Fatalf("expected refresh fallback limit 50, got %d", store.lastLimit)
	}
}

func TestErrorMonitorListError(t *testing.T) {
	store := &fakeSignalStore{listErr: errors.New("boom")}
	m := NewErrorMonitor(store, nopMetrics{})
	if _, err := m.List(context.Background(), models.ErrorListRequest{Limit: 10}); err == nil {
		t.Fatalf("expected error")
	}
}
