package stream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"TradeBot365/internal/domain/models"

	"github.com/gorilla/websocket"
)

// relayServer fakes the upstream webhook relay: the first connection delivers
// one signal and drops; later connections deliver a signal and stay open.
type relayServer struct {
	mu    sync.Mutex
	conns int
}

func (rs *relayServer) handler(t *testing.T) http.HandlerFunc {
	upgrader := websocket.Upgrader{}
	return func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		rs.mu.Lock()
		rs.conns++
		n := rs.conns
		rs.mu.Unlock()

		// consume the subscribe frame
		if _, _, err := ws.ReadMessage(); err != nil {
			return
		}

		id := "S1"
		if n > 1 {
			id = "S2"
		}
		msg := wsMessage{Type: "signal", Data: []wsSignal{{
			ID: id, Instrument: "XAUUSD", Action: "enter_long",
			Qty: "0.5", T: time.Now().UnixMilli(), BotID: "MY-001",
		}}}
		if err := ws.WriteJSON(msg); err != nil {
			return
		}
		if n == 1 {
			_ = ws.Close()
			return
		}
		// hold the second connection open until the client hangs up
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}
}

func (rs *relayServer) count() int {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.conns
}

func recvSignal(t *testing.T, ch <-chan *models.Signal) *models.Signal {
	t.Helper()
	select {
	case s := <-ch:
		if s == nil {
			t.Fatalf("signal channel closed before delivering")
		}
		return s
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for signal")
		return nil
	}
}

func TestClientReconnectResumesReads(t *testing.T) {
	rs := &relayServer{}
	srv := httptest.NewServer(rs.handler(t))
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	cl := New("tok", url, []string{"signals"}, 10*time.Millisecond, time.Minute)
	ctx := context.Background()
	if err := cl.Connect(ctx); err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer cl.Close()
	if err := cl.Subscribe(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	sigCh, errCh := cl.Read(ctx)
	if s := recvSignal(t, sigCh); s.ID != "S1" {
		t.Fatalf("expected S1, got %s", s.ID)
	}

	// The server dropped the connection: the session must surface an error
	// and end.
	select {
	case err := <-errCh:
		if err == nil {
			t.Fatalf("expected read error after drop")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no error after server dropped connection")
	}

	if err := cl.Reconnect(ctx); err != nil {
		t.Fatalf("reconnect: %v", err)
	}
	if !cl.IsConnected() {
		t.Fatalf("expected connected after reconnect")
	}
	if rs.count() != 2 {
		t.Fatalf("expected 2 server connections, got %d", rs.count())
	}

	// A new read session on the new connection delivers signals again.
	sigCh, _ = cl.Read(ctx)
	if s := recvSignal(t, sigCh); s.ID != "S2" {
		t.Fatalf("expected S2 after reconnect, got %s", s.ID)
	}
}

func TestClientCloseReportsDisconnected(t *testing.T) {
	rs := &relayServer{}
	srv := httptest.NewServer(rs.handler(t))
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	cl := New("tok", url, []string{"signals"}, time.Millisecond, time.Minute)
	if err := cl.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if !cl.IsConnected() {
		t.Fatalf("expected connected")
	}
	if err := cl.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if cl.IsConnected() {
		t.Fatalf("expected disconnected after close")
	}
}
