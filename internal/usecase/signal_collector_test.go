package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"TradeBot365/internal/domain/models"
	mid "TradeBot365/internal/middleware"
)

type fakeStream struct {
	mu         sync.Mutex
	connected  bool
	reads      int
	reconnects int
	sig        chan *models.Signal
	errs       chan error
}

func (f *fakeStream) Connect(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = true
	return nil
}

func (f *fakeStream) Subscribe(ctx context.Context) error { return nil }

func (f *fakeStream) Read(ctx context.Context) (<-chan *models.Signal, <-chan error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	f.sig = make(chan *models.Signal, 8)
	f.errs = make(chan error, 1)
	return f.sig, f.errs
}

func (f *fakeStream) Reconnect(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reconnects++
	f.connected = true
	return nil
}

func (f *fakeStream) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = false
	return nil
}

func (f *fakeStream) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *fakeStream) send(s *models.Signal) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sig <- s
}

// fail ends the current read session the way the stream client does: one
// error, then both channels close.
func (f *fakeStream) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs <- err
	close(f.errs)
	close(f.sig)
}

func (f *fakeStream) counts() (reads, reconnects int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads, f.reconnects
}

type recordingProc struct{ ch chan string }

func (p *recordingProc) Process(ctx context.Context, s *models.Signal) error {
	p.ch <- s.ID
	return nil
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestCollectorRereadsAfterReconnect(t *testing.T) {
	f := &fakeStream{}
	proc := &recordingProc{ch: make(chan string, 16)}
	pipe := mid.NewIngestPipeline(proc, nopMetrics{})
	c := NewSignalCollector(f, nil, nopMetrics{}, pipe)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := c.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	waitFor(t, "first read", func() bool { r, _ := f.counts(); return r == 1 })

	f.send(&models.Signal{ID: "S1", BotID: "MY-001", Timestamp: time.Now()})
	select {
	case id := <-proc.ch:
		if id != "S1" {
			t.Fatalf("expected S1, got %s", id)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("S1 never reached processor")
	}

	// The stream dies: collector must reconnect AND start a new read session.
	f.fail(errors.New("connection reset"))
	waitFor(t, "reconnect + re-read", func() bool {
		r, rc := f.counts()
		return rc >= 1 && r == 2
	})

	// Signals on the re-established session still flow.
	f.send(&models.Signal{ID: "S2", BotID: "PRE-002", Timestamp: time.Now()})
	select {
	case id := <-proc.ch:
		if id != "S2" {
			t.Fatalf("expected S2, got %s", id)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("post-reconnect signal never reached processor")
	}

	if err := c.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestCollectorStopsOnShutdown(t *testing.T) {
	f := &fakeStream{}
	proc := &recordingProc{ch: make(chan string, 1)}
	pipe := mid.NewIngestPipeline(proc, nopMetrics{})
	c := NewSignalCollector(f, nil, nopMetrics{}, pipe)

	ctx := context.Background()
	if err := c.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	waitFor(t, "first read", func() bool { r, _ := f.counts(); return r == 1 })

	if err := c.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	// The session Close tears down must not be replaced by a reconnect.
	f.fail(errors.New("use of closed network connection"))
	time.Sleep(50 * time.Millisecond)
	if _, rc := f.counts(); rc != 0 {
		t.Fatalf("collector reconnected after shutdown")
	}
}
