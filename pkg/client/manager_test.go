package client

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/clawboard/clawboard/pkg/wire"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

// wsTestServer is a realtime endpoint whose acceptance can be toggled, so a
// single test can drive the manager through failure and recovery without
// rebinding ports.
type wsTestServer struct {
	srv    *httptest.Server
	reject atomic.Bool
	conns  chan *websocket.Conn
}

func newWSTestServer(t *testing.T) *wsTestServer {
	t.Helper()
	s := &wsTestServer{conns: make(chan *websocket.Conn, 16)}
	upgrader := websocket.Upgrader{}

	s.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.reject.Load() {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		s.conns <- conn
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(s.srv.Close)
	return s
}

func (s *wsTestServer) wsURL() string {
	return "ws" + strings.TrimPrefix(s.srv.URL, "http")
}

func (s *wsTestServer) acceptConn(t *testing.T) *websocket.Conn {
	t.Helper()
	select {
	case conn := <-s.conns:
		return conn
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for server-side connection")
		return nil
	}
}

// statusRecorder collects status transitions from the OnStatus callback.
type statusRecorder struct {
	mu       sync.Mutex
	statuses []Status
}

func (r *statusRecorder) record(s Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, s)
}

func (r *statusRecorder) all() []Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Status(nil), r.statuses...)
}

func newTestManager(s *wsTestServer, rec *statusRecorder, onEnv func(wire.Envelope)) *Manager {
	return NewManager(Options{
		URL:        s.wsURL(),
		APIKey:     "test-key",
		OnEnvelope: onEnv,
		OnStatus:   rec.record,
		RetryBase:  5 * time.Millisecond,
		RetryMax:   20 * time.Millisecond,
	})
}

func TestManager_ConnectResetsAttempt(t *testing.T) {
	s := newWSTestServer(t)
	s.reject.Store(true)
	rec := &statusRecorder{}

	m := newTestManager(s, rec, nil)
	m.Start()
	defer m.Close()

	// Pile up a few failed attempts first.
	require.Eventually(t, func() bool { return m.Attempt() >= 3 }, 2*time.Second, 5*time.Millisecond)

	s.reject.Store(false)
	require.Eventually(t, func() bool { return m.Status() == StatusConnected }, 2*time.Second, 5*time.Millisecond)
	require.Equal(t, 0, m.Attempt(), "successful connect must reset the attempt counter")
}

func TestManager_NeverConnectedReportsDisconnected(t *testing.T) {
	s := newWSTestServer(t)
	s.reject.Store(true)
	rec := &statusRecorder{}

	m := newTestManager(s, rec, nil)
	m.Start()
	defer m.Close()

	require.Eventually(t, func() bool { return m.Attempt() >= 2 }, 2*time.Second, 5*time.Millisecond)

	statuses := rec.all()
	require.NotEmpty(t, statuses)
	require.Equal(t, StatusDisconnected, statuses[0], "first failure before any connect reports disconnected")
	require.NotContains(t, statuses, StatusConnected)
}

func TestManager_StickyReconnecting(t *testing.T) {
	s := newWSTestServer(t)
	rec := &statusRecorder{}

	m := newTestManager(s, rec, nil)
	m.Start()
	defer m.Close()

	require.Eventually(t, func() bool { return m.Status() == StatusConnected }, 2*time.Second, 5*time.Millisecond)

	// Drop the connection and keep subsequent attempts failing.
	s.reject.Store(true)
	serverConn := s.acceptConn(t)
	serverConn.Close()

	require.Eventually(t, func() bool { return m.Attempt() >= 3 }, 2*time.Second, 5*time.Millisecond)

	// After having been connected once, drops report reconnecting, never
	// disconnected, even when the retries themselves also fail.
	statuses := rec.all()
	connectedAt := -1
	for i, status := range statuses {
		if status == StatusConnected {
			connectedAt = i
			break
		}
	}
	require.GreaterOrEqual(t, connectedAt, 0)
	for _, status := range statuses[connectedAt+1:] {
		require.NotEqual(t, StatusDisconnected, status)
	}
	require.Equal(t, StatusReconnecting, m.Status())

	// And recovery still works.
	s.reject.Store(false)
	require.Eventually(t, func() bool { return m.Status() == StatusConnected }, 2*time.Second, 5*time.Millisecond)
	require.Equal(t, 0, m.Attempt())
}

func TestManager_CloseCancelsRetry(t *testing.T) {
	s := newWSTestServer(t)
	s.reject.Store(true)
	rec := &statusRecorder{}

	m := newTestManager(s, rec, nil)
	m.Start()

	require.Eventually(t, func() bool { return m.Attempt() >= 1 }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, m.Close())

	attempt := m.Attempt()
	status := m.Status()
	time.Sleep(100 * time.Millisecond)

	require.Equal(t, attempt, m.Attempt(), "no attempts after teardown")
	require.Equal(t, status, m.Status(), "no transitions after teardown")
}

func TestManager_RetryNowSkipsBackoffDelay(t *testing.T) {
	s := newWSTestServer(t)
	s.reject.Store(true)
	rec := &statusRecorder{}

	// A long backoff that the test would never sit out.
	m := NewManager(Options{
		URL:       s.wsURL(),
		OnStatus:  rec.record,
		RetryBase: time.Hour,
		RetryMax:  time.Hour,
	})
	m.Start()
	defer m.Close()

	require.Eventually(t, func() bool { return m.Attempt() == 1 }, 2*time.Second, 5*time.Millisecond)

	s.reject.Store(false)
	m.RetryNow()
	require.Eventually(t, func() bool { return m.Status() == StatusConnected }, 2*time.Second, 5*time.Millisecond)
}

func TestManager_ForwardsParsedMessagesAndStampsReceipt(t *testing.T) {
	s := newWSTestServer(t)
	rec := &statusRecorder{}

	var mu sync.Mutex
	var received []wire.Envelope
	m := newTestManager(s, rec, func(env wire.Envelope) {
		mu.Lock()
		received = append(received, env)
		mu.Unlock()
	})
	m.Start()
	defer m.Close()

	require.Eventually(t, func() bool { return m.Status() == StatusConnected }, 2*time.Second, 5*time.Millisecond)
	require.True(t, m.LastMessageAt().IsZero(), "no message yet")

	serverConn := s.acceptConn(t)
	require.NoError(t, serverConn.WriteMessage(websocket.TextMessage, []byte(`{"type":"task_created","data":{"id":1,"title":"hi"}}`)))
	require.NoError(t, serverConn.WriteMessage(websocket.TextMessage, []byte(`{broken`)))
	require.NoError(t, serverConn.WriteMessage(websocket.TextMessage, []byte(`{"type":"task_deleted","data":{"id":1}}`)))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 2
	}, 2*time.Second, 5*time.Millisecond)

	mu.Lock()
	require.Equal(t, "task_created", received[0].Type)
	require.Equal(t, "task_deleted", received[1].Type)
	mu.Unlock()

	require.False(t, m.LastMessageAt().IsZero(), "receipt must stamp lastMessageAt")
}
