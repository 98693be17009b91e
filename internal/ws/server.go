package ws

import (
	"net/http"

	"github.com/clawboard/clawboard/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Self-hosted: allow all origins
	},
}

// Authorizer checks a presented credential. Satisfied by auth.Verifier.
type Authorizer interface {
	Verify(credential string) bool
}

// Server owns the realtime endpoint: it upgrades handshakes, authorizes them
// once, registers them, and evicts them when the transport closes.
type Server struct {
	hub  *Hub
	auth Authorizer
}

// NewServer creates a Server broadcasting through hub.
func NewServer(hub *Hub, auth Authorizer) *Server {
	return &Server{hub: hub, auth: auth}
}

// Hub returns the server's broadcaster.
func (s *Server) Hub() *Hub {
	return s.hub
}

// HandleWebSocket handles GET /ws.
//
// The credential arrives as the apiKey query parameter because browser
// WebSocket handshakes cannot carry custom headers. Authorization runs exactly
// once per connection; an unauthorized handshake is closed with 1008 before
// the connection can ever receive a broadcast.
func (s *Server) HandleWebSocket(c *gin.Context) {
	sock, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warnf("websocket upgrade error: %v", err)
		return
	}

	credential := c.Query("apiKey")
	if credential == "" {
		credential = c.Query("token")
	}

	conn := NewConn(sock)
	if err := s.hub.Registry().Register(conn, func() bool {
		return s.auth.Verify(credential)
	}); err != nil {
		logger.Warnf("websocket client rejected: %v", err)
		return
	}

	logger.Infof("websocket client connected: %s", conn.ID())

	defer func() {
		s.hub.Registry().Unregister(conn)
		conn.close(0, "")
		logger.Infof("websocket client disconnected: %s", conn.ID())
	}()

	// The channel is server-to-client only; the read loop exists to detect
	// transport close and to drain pings.
	for {
		if _, _, err := sock.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logger.Debugf("websocket read error from %s: %v", conn.ID(), err)
			}
			return
		}
	}
}
