package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/clawboard/clawboard/pkg/logger"
	"github.com/clawboard/clawboard/pkg/wire"
	"github.com/gorilla/websocket"
)

// Options configures a Manager.
type Options struct {
	// URL is the realtime endpoint, e.g. ws://localhost:3010/ws.
	URL string
	// APIKey is sent as the apiKey query parameter during the handshake.
	APIKey string
	// OnEnvelope receives every successfully parsed inbound message.
	OnEnvelope func(wire.Envelope)
	// OnStatus is invoked on every status transition.
	OnStatus func(Status)
	// Debug enables verbose transport logging.
	Debug bool

	// RetryBase and RetryMax override the backoff policy; zero values use
	// the defaults.
	RetryBase time.Duration
	RetryMax  time.Duration
	// HandshakeTimeout bounds a single dial; zero means 10s.
	HandshakeTimeout time.Duration
}

// Manager owns exactly one logical transport at a time and keeps it alive:
// it establishes the connection, watches for drops, and schedules retries
// with a linear-capped backoff. Teardown via Close is terminal.
type Manager struct {
	opts Options

	mu            sync.Mutex
	status        Status
	attempt       int
	everConnected bool
	lastMessageAt time.Time
	sock          *websocket.Conn
	retryTimer    *time.Timer
	dialing       bool
	closed        bool

	closeOnce sync.Once
}

// NewManager creates a Manager. Call Start to begin connecting.
func NewManager(opts Options) *Manager {
	if opts.RetryBase <= 0 {
		opts.RetryBase = DefaultRetryBase
	}
	if opts.RetryMax <= 0 {
		opts.RetryMax = DefaultRetryMax
	}
	if opts.HandshakeTimeout <= 0 {
		opts.HandshakeTimeout = 10 * time.Second
	}
	return &Manager{
		opts:   opts,
		status: StatusConnecting,
	}
}

// Start launches the first connection attempt.
func (m *Manager) Start() {
	go m.dial()
}

// Status returns the current connection status.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Attempt returns the consecutive failed reconnect count since the last
// successful open.
func (m *Manager) Attempt() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attempt
}

// LastMessageAt returns when the last parsed message arrived; the zero time
// means no message has ever arrived.
func (m *Manager) LastMessageAt() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastMessageAt
}

// RetryNow collapses any pending backoff delay and attempts to reconnect
// immediately. The attempt counter is untouched; success and failure adjust
// it the same way a scheduled retry would.
func (m *Manager) RetryNow() {
	m.mu.Lock()
	if m.closed || m.sock != nil {
		m.mu.Unlock()
		return
	}
	if m.retryTimer != nil {
		m.retryTimer.Stop()
		m.retryTimer = nil
	}
	m.mu.Unlock()

	go m.retry()
}

// Close tears the manager down: the pending retry timer is cancelled and the
// transport closed. No further transitions occur after Close.
func (m *Manager) Close() error {
	m.closeOnce.Do(func() {
		m.mu.Lock()
		m.closed = true
		if m.retryTimer != nil {
			m.retryTimer.Stop()
			m.retryTimer = nil
		}
		sock := m.sock
		m.sock = nil
		m.mu.Unlock()

		if sock != nil {
			sock.Close()
		}
	})
	return nil
}

func (m *Manager) dialURL() (string, error) {
	u, err := url.Parse(m.opts.URL)
	if err != nil {
		return "", fmt.Errorf("invalid realtime URL: %w", err)
	}
	if m.opts.APIKey != "" {
		q := u.Query()
		q.Set("apiKey", m.opts.APIKey)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// dial performs one handshake attempt and routes the outcome through the
// state machine.
func (m *Manager) dial() {
	m.mu.Lock()
	// One logical transport at a time: never overlap an in-flight handshake.
	if m.closed || m.dialing || m.sock != nil {
		m.mu.Unlock()
		return
	}
	m.dialing = true
	m.mu.Unlock()

	target, err := m.dialURL()
	if err != nil {
		// A bad URL never becomes dialable; surface loudly and stop.
		logger.Errorf("realtime: %v", err)
		m.mu.Lock()
		m.dialing = false
		m.mu.Unlock()
		return
	}

	if m.opts.Debug {
		logger.Debugf("realtime: connecting to %s", m.opts.URL)
	}

	dialer := websocket.Dialer{HandshakeTimeout: m.opts.HandshakeTimeout}
	sock, resp, err := dialer.Dial(target, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	if err != nil {
		m.onConnectFailure(err)
		return
	}

	m.mu.Lock()
	m.dialing = false
	if m.closed {
		m.mu.Unlock()
		sock.Close()
		return
	}
	m.sock = sock
	m.attempt = 0
	m.everConnected = true
	notify := m.setStatusLocked(StatusConnected)
	m.mu.Unlock()
	notify()

	if m.opts.Debug {
		logger.Debugf("realtime: connected")
	}

	go m.readLoop(sock)
}

// onConnectFailure records a failed handshake and schedules the next attempt.
func (m *Manager) onConnectFailure(err error) {
	m.mu.Lock()
	m.dialing = false
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.attempt++
	next := StatusReconnecting
	if !m.everConnected {
		// Never-connected failures report disconnected between attempts;
		// the retry itself runs as reconnecting.
		next = StatusDisconnected
	}
	notify := m.setStatusLocked(next)
	m.scheduleRetryLocked()
	attempt := m.attempt
	m.mu.Unlock()
	notify()

	if m.opts.Debug {
		logger.Debugf("realtime: connect attempt %d failed: %v", attempt, err)
	}
}

// readLoop consumes messages from one transport until it dies, then hands
// control back to the retry machinery.
func (m *Manager) readLoop(sock *websocket.Conn) {
	for {
		_, data, err := sock.ReadMessage()
		if err != nil {
			break
		}

		var env wire.Envelope
		if err := json.Unmarshal(data, &env); err != nil || env.Type == "" {
			// Malformed messages are discarded silently; there is nothing
			// to retry on a single bad frame.
			logger.Tracef("realtime: discarding malformed message")
			continue
		}

		// Receipt implies the transport is open even if a close event has
		// not fired yet, so the stamp happens regardless of status.
		m.mu.Lock()
		m.lastMessageAt = time.Now()
		m.mu.Unlock()

		if m.opts.OnEnvelope != nil {
			m.opts.OnEnvelope(env)
		}
	}

	m.mu.Lock()
	if m.closed || m.sock != sock {
		// Teardown, or a newer transport already took over.
		m.mu.Unlock()
		return
	}
	m.sock = nil
	m.attempt++
	notify := m.setStatusLocked(StatusReconnecting)
	m.scheduleRetryLocked()
	m.mu.Unlock()
	notify()

	if m.opts.Debug {
		logger.Debugf("realtime: connection lost")
	}
	sock.Close()
}

// scheduleRetryLocked arms the retry timer, replacing any pending one so at
// most a single timer is ever outstanding. Caller holds m.mu.
func (m *Manager) scheduleRetryLocked() {
	if m.retryTimer != nil {
		m.retryTimer.Stop()
	}
	delay := RetryDelay(m.attempt, m.opts.RetryBase, m.opts.RetryMax)
	m.retryTimer = time.AfterFunc(delay, m.retry)
}

// retry runs a scheduled (or forced) reconnect attempt.
func (m *Manager) retry() {
	m.mu.Lock()
	if m.closed || m.sock != nil {
		m.mu.Unlock()
		return
	}
	m.retryTimer = nil
	// Retries run under reconnecting even before the first-ever successful
	// connect; only the idle gap between early failures reads disconnected.
	notify := m.setStatusLocked(StatusReconnecting)
	m.mu.Unlock()
	notify()

	m.dial()
}

// setStatusLocked records a transition and returns the subscriber
// notification to run after the lock is released. Caller holds m.mu.
func (m *Manager) setStatusLocked(next Status) func() {
	if m.status == next {
		return func() {}
	}
	m.status = next
	cb := m.opts.OnStatus
	if cb == nil {
		return func() {}
	}
	return func() { cb(next) }
}
