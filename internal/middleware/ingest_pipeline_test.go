package middleware

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"TradeBot365/internal/domain/models"
)

type countingProc struct {
	mu    sync.Mutex
	seen  []string
	fail  bool
	calls int
}

func (p *countingProc) Process(ctx context.Context, s *models.Signal) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.fail {
		return errors.New("downstream down")
	}
	p.seen = append(p.seen, s.ID)
	return nil
}

type testMetrics struct {
	mu     sync.Mutex
	errors map[string]int
}

func (m *testMetrics) RecordMessageSent(backend, botID string)  {}
func (m *testMetrics) RecordUnread(count int)                   {}
func (m *testMetrics) RecordLatency(op string, seconds float64) {}
func (m *testMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.errors == nil {
		m.errors = make(map[string]int)
	}
	m.errors[kind]++
}

func (m *testMetrics) count(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errors[kind]
}

func validTestSignal(id, bot string) *models.Signal {
	return &models.Signal{ID: id, BotID: bot, Timestamp: time.Now()}
}

func TestPipelineRejectsInvalid(t *testing.T) {
	proc := &countingProc{}
	m := &testMetrics{}
	p := NewIngestPipeline(proc, m)

	cases := []*models.Signal{
		nil,
		{BotID: "MY-001", Timestamp: time.Now()},
		{ID: "S1", Timestamp: time.Now()},
		{ID: "S1", BotID: "MY-001"},
	}
	for i, s := range cases {
		if err := p.Process(context.Background(), s); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
	if proc.calls != 0 {
		t.Fatalf("invalid signals reached downstream")
	}
	if m.count("pipeline_validate") != len(cases) {
		t.Fatalf("expected %d validate errors, got %d", len(cases), m.count("pipeline_validate"))
	}
}

func TestPipelineThrottlesPerBot(t *testing.T) {
	proc := &countingProc{}
	p := NewIngestPipeline(proc, &testMetrics{}, WithMaxRPS(1))

	if err := p.Process(context.Background(), validTestSignal("S1", "MY-001")); err != nil {
		t.Fatalf("first signal: %v", err)
	}
	// Immediate second signal from the same bot is dropped, not errored.
	if err := p.Process(context.Background(), validTestSignal("S2", "MY-001")); err != nil {
		t.Fatalf("throttled signal should not error: %v", err)
	}
	// A different bot is unaffected.
	if err := p.Process(context.Background(), validTestSignal("S3", "PRE-002")); err != nil {
		t.Fatalf("other bot: %v", err)
	}

	proc.mu.Lock()
	defer proc.mu.Unlock()
	if len(proc.seen) != 2 || proc.seen[0] != "S1" || proc.seen[1] != "S3" {
		t.Fatalf("unexpected downstream signals: %v", proc.seen)
	}
}

func TestPipelineBuffersOnFailure(t *testing.T) {
	proc := &countingProc{fail: true}
	m := &testMetrics{}
	p := NewIngestPipeline(proc, m, WithBufferSize(4))

	if err := p.Process(context.Background(), validTestSignal("S1", "MY-001")); err == nil {
		t.Fatalf("expected downstream error")
	}
	if m.count("pipeline_process") != 1 {
		t.Fatalf("expected process error recorded")
	}
	// Signal is parked in the buffer for the flush loop.
	if len(p.bufCh) != 1 {
		t.Fatalf("expected 1 buffered signal, got %d", len(p.bufCh))
	}
}

func TestPipelineStartStopIdempotent(t *testing.T) {
	p := NewIngestPipeline(&countingProc{}, &testMetrics{})
	ctx := context.Background()
	p.Start(ctx)
	p.Start(ctx) // second start is a no-op
	p.Stop()
	p.Stop() // second stop must not panic on closed channel
}
