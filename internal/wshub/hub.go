package wshub

import (
	"context"
	"encoding/json"
	"fiestapinata/internal/gamedata"
	"log"
	"sync"

	"github.com/coder/websocket"
)

const (
	MsgMove    = "move"
	MsgClick   = "click"
	MsgRestart = "restart"

	MsgWelcome = "welcome"
	MsgFrame   = "frame"
	MsgHit     = "hit"
)

// ClientMessage is the JSON structure received from clients. X and Y are
// raw pointer coordinates in game space.
type ClientMessage struct {
	Type string  `json:"t"`
	X    float64 `json:"x,omitempty"`
	Y    float64 `json:"y,omitempty"`
}

// ServerMessage is the JSON structure sent to clients.
type ServerMessage struct {
	Type      string          `json:"t"`
	SessionID string          `json:"id,omitempty"`
	Frame     *gamedata.Frame `json:"f,omitempty"`
	Hits      []gamedata.Hit  `json:"h,omitempty"`
}

// Client represents a single WebSocket connection in the hub.
type Client struct {
	SessionID string
	Conn      *websocket.Conn
	Send      chan []byte
}

// WritePump reads from the Send channel and writes to the WebSocket connection.
func (c *Client) WritePump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-c.Send:
			if !ok {
				return
			}
			if err := c.Conn.Write(ctx, websocket.MessageText, msg); err != nil {
				return
			}
		}
	}
}

// Hub tracks the live WebSocket connection of every session.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.SessionID] = c
}

// Unregister removes a client and closes its Send channel.
func (h *Hub) Unregister(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[sessionID]; ok {
		close(c.Send)
		delete(h.clients, sessionID)
	}
}

// SendTo queues a message for one session. Non-blocking: drops if the
// channel is full or the session is gone, and reports whether it was queued.
func (h *Hub) SendTo(sessionID string, msg ServerMessage) bool {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("[WSHub] Marshal error: %v\n", err)
		return false
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	c, ok := h.clients[sessionID]
	if !ok {
		return false
	}
	select {
	case c.Send <- data:
		return true
	default:
		// Drop frame if channel full
		return false
	}
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
