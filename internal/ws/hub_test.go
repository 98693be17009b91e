package ws

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/clawboard/clawboard/pkg/wire"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

type allowKey string

func (k allowKey) Verify(credential string) bool { return credential == string(k) }

// newBoardServer runs the real handshake handler over a fresh registry.
func newBoardServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	server := NewServer(NewHub(NewRegistry()), allowKey("good-key"))

	router := gin.New()
	router.GET("/ws", server.HandleWebSocket)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return server, srv
}

func dialBoard(t *testing.T, srv *httptest.Server, apiKey string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?apiKey=" + apiKey
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) wire.Envelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var env wire.Envelope
	require.NoError(t, json.Unmarshal(data, &env))
	return env
}

func TestBroadcast_DeliversToAllOpenConnections(t *testing.T) {
	server, srv := newBoardServer(t)

	c1 := dialBoard(t, srv, "good-key")
	c2 := dialBoard(t, srv, "good-key")
	c3 := dialBoard(t, srv, "good-key")

	waitForCount(t, server.Hub().Registry(), 3)

	// Kill one transport out from under the registry; the broadcast must
	// still reach the surviving connections without raising an error.
	c3.Close()

	server.Hub().BroadcastEvent(wire.EventTaskCreated, wire.Task{ID: 7, Title: "ship it"})

	for _, conn := range []*websocket.Conn{c1, c2} {
		env := readEnvelope(t, conn)
		require.Equal(t, wire.EventTaskCreated, env.Type)

		var task wire.Task
		require.NoError(t, json.Unmarshal(env.Data, &task))
		require.Equal(t, int64(7), task.ID)
	}
}

func TestBroadcast_SameBytesInCallOrder(t *testing.T) {
	server, srv := newBoardServer(t)
	conn := dialBoard(t, srv, "good-key")
	waitForCount(t, server.Hub().Registry(), 1)

	server.Hub().BroadcastEvent(wire.EventTaskCreated, wire.Task{ID: 1})
	server.Hub().BroadcastEvent(wire.EventTaskUpdated, wire.Task{ID: 1, Title: "renamed"})
	server.Hub().BroadcastEvent(wire.EventTaskDeleted, wire.DeleteRef{ID: 1})

	require.Equal(t, wire.EventTaskCreated, readEnvelope(t, conn).Type)
	require.Equal(t, wire.EventTaskUpdated, readEnvelope(t, conn).Type)
	require.Equal(t, wire.EventTaskDeleted, readEnvelope(t, conn).Type)
}

func TestUnauthorizedConnectionClosedWith1008(t *testing.T) {
	server, srv := newBoardServer(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?apiKey=wrong-key"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	// The upgrade itself succeeds; rejection arrives as a close frame.
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	closeErr, ok := err.(*websocket.CloseError)
	require.True(t, ok, "expected close error, got %v", err)
	require.Equal(t, websocket.ClosePolicyViolation, closeErr.Code)
	require.Equal(t, "Unauthorized", closeErr.Text)

	// And it never became a broadcast candidate.
	require.Equal(t, 0, server.Hub().Registry().Count())
}

func TestRegistry_UnregisterIsIdempotent(t *testing.T) {
	registry := NewRegistry()
	conn := &Conn{id: "c1"}

	require.NoError(t, registry.Register(conn, func() bool { return true }))
	require.Equal(t, 1, registry.Count())

	registry.Unregister(conn)
	require.Equal(t, 0, registry.Count())

	require.NotPanics(t, func() { registry.Unregister(conn) })
	require.Equal(t, 0, registry.Count())
}

func TestBroadcast_MarshalFailureAbortsWholeCall(t *testing.T) {
	server, srv := newBoardServer(t)
	conn := dialBoard(t, srv, "good-key")
	waitForCount(t, server.Hub().Registry(), 1)

	// json.RawMessage that is not valid JSON fails at marshal time; nothing
	// may be delivered to anyone.
	server.Hub().Broadcast(wire.Envelope{Type: "task_created", Data: json.RawMessage(`{broken`)})
	server.Hub().BroadcastEvent(wire.EventTaskDeleted, wire.DeleteRef{ID: 1})

	env := readEnvelope(t, conn)
	require.Equal(t, wire.EventTaskDeleted, env.Type, "aborted broadcast must deliver nothing")
}

func waitForCount(t *testing.T, registry *Registry, want int) {
	t.Helper()
	require.Eventually(t, func() bool { return registry.Count() == want }, 2*time.Second, 5*time.Millisecond)
}
