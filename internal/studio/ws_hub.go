package studio

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/econviz/diagram-engine/internal/diagram"
	"github.com/econviz/diagram-engine/internal/metrics"
	"github.com/econviz/diagram-engine/internal/model"
)

// Message types sent to WebSocket clients.
const (
	MsgFrame           = "frame"
	MsgSnapshotCreated = "snapshot_created"
	MsgError           = "error"
)

const (
	pingInterval = 30 * time.Second
	readTimeout  = 60 * time.Second
	writeTimeout = 10 * time.Second
	sendBuffer   = 16
)

// LiveRequest is a redraw request read from a WebSocket client. Seq is
// echoed back so the client can drop stale frames.
type LiveRequest struct {
	Seq        int          `json:"seq"`
	Kind       string       `json:"kind"`
	Parameters model.Params `json:"parameters"`
	Format     string       `json:"format"` // svg (default) or png
}

// WSMessage is the envelope for every message sent to WebSocket clients.
// A PNG frame carries its image base64-encoded; an SVG frame carries the
// document text.
type WSMessage struct {
	Type        string          `json:"type"`
	Seq         int             `json:"seq,omitempty"`
	Kind        string          `json:"kind,omitempty"`
	SnapshotID  string          `json:"snapshot_id,omitempty"`
	Result      *diagram.Result `json:"result,omitempty"`
	ContentType string          `json:"content_type,omitempty"`
	Image       string          `json:"image,omitempty"`
	Error       string          `json:"error,omitempty"`
}

func errorMessage(seq int, err error) WSMessage {
	return WSMessage{Type: MsgError, Seq: seq, Error: err.Error()}
}

type wsClient struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

type directMessage struct {
	client *wsClient
	data   []byte
}

// WSHub manages WebSocket connections. All sends to a client's queue and
// the closing of that queue happen on the Run goroutine.
type WSHub struct {
	clients    map[*wsClient]bool
	broadcast  chan []byte
	direct     chan directMessage
	register   chan *wsClient
	unregister chan *wsClient
	done       chan struct{}
}

// NewWSHub creates a new WebSocket hub.
func NewWSHub() *WSHub {
	return &WSHub{
		clients:    make(map[*wsClient]bool),
		broadcast:  make(chan []byte, 256),
		direct:     make(chan directMessage, 256),
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's event loop. Call in a goroutine. It returns when ctx
// is cancelled, closing every client queue.
func (h *WSHub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			close(h.done)
			return

		case c := <-h.register:
			h.clients[c] = true
			metrics.WebSocketClients.Set(float64(len(h.clients)))
			slog.Info("ws client connected", "client", c.id, "total", len(h.clients))

		case c := <-h.unregister:
			if h.clients[c] {
				h.drop(c)
				slog.Info("ws client disconnected", "client", c.id, "total", len(h.clients))
			}

		case m := <-h.direct:
			if h.clients[m.client] {
				h.enqueue(m.client, m.data)
			}

		case data := <-h.broadcast:
			for c := range h.clients {
				h.enqueue(c, data)
			}
		}
	}
}

// enqueue hands data to c's write pump, dropping clients that cannot keep up.
func (h *WSHub) enqueue(c *wsClient, data []byte) {
	select {
	case c.send <- data:
	default:
		slog.Warn("ws client too slow, dropping", "client", c.id)
		h.drop(c)
	}
}

func (h *WSHub) drop(c *wsClient) {
	delete(h.clients, c)
	close(c.send)
	metrics.WebSocketClients.Set(float64(len(h.clients)))
}

// Broadcast sends a message to all connected clients.
func (h *WSHub) Broadcast(msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("ws marshal error", "err", err)
		return
	}
	select {
	case h.broadcast <- data:
	default:
		slog.Warn("ws broadcast channel full, dropping message")
	}
}

func (h *WSHub) reply(c *wsClient, msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("ws marshal error", "err", err)
		return
	}
	select {
	case h.direct <- directMessage{client: c, data: data}:
	case <-h.done:
	}
}

// join registers c, reporting false once the hub has stopped.
func (h *WSHub) join(c *wsClient) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *WSHub) leave(c *wsClient) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development
	},
}

// HandleLive handles GET /api/v1/ws
//
// Each connection receives snapshot broadcasts and may send LiveRequest
// messages; every request is answered with one frame or error message, in
// the order received.
func (s *Service) HandleLive(w http.ResponseWriter, r *http.Request) {
	if s.wsHub == nil {
		writeError(w, "live updates disabled", http.StatusServiceUnavailable)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("ws upgrade failed", "err", err)
		return
	}

	c := &wsClient{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}
	if !s.wsHub.join(c) {
		conn.Close()
		return
	}
	go c.writePump()
	defer s.wsHub.leave(c)

	conn.SetReadLimit(64 << 10)
	conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	// Read pump: draws are made here, one at a time.
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		conn.SetReadDeadline(time.Now().Add(readTimeout))

		var req LiveRequest
		if err := json.Unmarshal(data, &req); err != nil {
			s.wsHub.reply(c, WSMessage{Type: MsgError, Error: "invalid request"})
			continue
		}
		s.wsHub.reply(c, s.frame(req))
	}
}

// writePump is the only writer on the connection.
func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
