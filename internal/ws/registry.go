package ws

import (
	"errors"
	"sync"

	"github.com/clawboard/clawboard/pkg/logger"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// ErrUnauthorized is returned by Register when the authorize callback rejects
// the connection.
var ErrUnauthorized = errors.New("unauthorized")

// Conn wraps one client transport. The write mutex serializes writes because
// gorilla allows at most one concurrent writer per socket.
type Conn struct {
	id   string
	sock *websocket.Conn

	mu     sync.Mutex
	closed bool
}

// NewConn wraps an upgraded socket.
func NewConn(sock *websocket.Conn) *Conn {
	return &Conn{id: uuid.NewString(), sock: sock}
}

// ID returns the connection's opaque id.
func (c *Conn) ID() string {
	return c.id
}

// send writes pre-serialized bytes to the transport. Returns an error when the
// connection is already closed or the write fails.
func (c *Conn) send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return websocket.ErrCloseSent
	}
	return c.sock.WriteMessage(websocket.TextMessage, data)
}

// close transitions the connection to closed exactly once, optionally sending
// a close frame with the given code and reason first.
func (c *Conn) close(code int, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if code != 0 {
		msg := websocket.FormatCloseMessage(code, reason)
		if err := c.sock.WriteMessage(websocket.CloseMessage, msg); err != nil {
			logger.Debugf("failed to write close frame: %v", err)
		}
	}
	c.sock.Close()
}

// Registry tracks the set of currently-open, authorized connections.
//
// Membership is the only state it owns: there is no buffering for connections
// that are not currently open, and delivery through ForEachOpen is best-effort.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]*Conn
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]*Conn)}
}

// Register authorizes and adds a connection. The authorize callback runs
// synchronously; on rejection the connection is closed with close code 1008
// (policy violation) and never enters the set.
func (r *Registry) Register(conn *Conn, authorize func() bool) error {
	if !authorize() {
		conn.close(websocket.ClosePolicyViolation, "Unauthorized")
		return ErrUnauthorized
	}

	r.mu.Lock()
	r.conns[conn.id] = conn
	r.mu.Unlock()
	return nil
}

// Unregister removes a connection from the set. Idempotent: removing an
// absent connection is a no-op.
func (r *Registry) Unregister(conn *Conn) {
	r.mu.Lock()
	delete(r.conns, conn.id)
	r.mu.Unlock()
}

// ForEachOpen invokes fn on a snapshot of the registered connections. A
// connection closing mid-iteration only fails its own send, never the
// iteration.
func (r *Registry) ForEachOpen(fn func(*Conn)) {
	r.mu.RLock()
	snapshot := make([]*Conn, 0, len(r.conns))
	for _, conn := range r.conns {
		snapshot = append(snapshot, conn)
	}
	r.mu.RUnlock()

	for _, conn := range snapshot {
		fn(conn)
	}
}

// Count returns the number of registered connections.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
