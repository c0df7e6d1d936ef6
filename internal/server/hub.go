package server

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"werewolf-toolbox/internal/events"
	"werewolf-toolbox/internal/models"
)

// Message types pushed to and read from sockets.
const (
	MessageState    = "state"
	MessageGameOver = "gameOver"
	MessageSubmit   = "submit"
	MessageError    = "error"
)

// WSMessage is the envelope for every socket frame.
type WSMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Client is one websocket watching a match as one viewer.
type Client struct {
	ID     string
	Viewer models.Viewer
	Conn   *websocket.Conn
	Send   chan []byte
}

// Hub fans snapshots out to the sockets of one match. It listens on the match's
// event bus, so it runs on the engine goroutine and never blocks on a client.
type Hub struct {
	log     logrus.FieldLogger
	mu      sync.Mutex
	clients map[string]*Client
	latest  *models.GameState
	closed  bool
}

func NewHub(log logrus.FieldLogger) *Hub {
	return &Hub{log: log, clients: make(map[string]*Client)}
}

// Register adds a client and sends it the latest snapshot.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(c.Send)
		return
	}
	h.clients[c.ID] = c
	if h.latest != nil {
		h.sendLocked(c, MessageState, h.latest)
	}
	h.log.WithField("client", c.ID).Debug("Client registered")
}

// Unregister removes a client and closes its send queue.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(c)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.clients {
		h.dropLocked(c)
	}
	h.closed = true
}

// HandleEvent pushes each snapshot to every client as that client's view.
func (h *Hub) HandleEvent(e events.Event) {
	var kind string
	var state *models.GameState
	switch event := e.(type) {
	case events.GameReadyEvent:
		kind, state = MessageState, event.State
	case events.StateChangedEvent:
		kind, state = MessageState, event.State
	case events.GameOverEvent:
		kind, state = MessageGameOver, event.State
	default:
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.latest = state
	for _, c := range h.clients {
		h.sendLocked(c, kind, state)
	}
}

func (h *Hub) sendLocked(c *Client, kind string, state *models.GameState) {
	data, err := json.Marshal(WSMessage{Type: kind, Payload: state.ViewFor(c.Viewer)})
	if err != nil {
		h.log.WithError(err).Error("JSON marshal error")
		return
	}
	select {
	case c.Send <- data:
	default:
		h.log.WithField("client", c.ID).Warn("Dropping slow client")
		h.dropLocked(c)
	}
}

func (h *Hub) dropLocked(c *Client) {
	if _, ok := h.clients[c.ID]; ok {
		delete(h.clients, c.ID)
		close(c.Send)
	}
}

// reply sends a one-off message to a single client.
func (h *Hub) reply(c *Client, kind string, payload any) {
	data, err := json.Marshal(WSMessage{Type: kind, Payload: payload})
	if err != nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c.ID]; !ok {
		return
	}
	select {
	case c.Send <- data:
	default:
		h.dropLocked(c)
	}
}
