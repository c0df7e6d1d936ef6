package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"werewolf-toolbox/internal/config"
	"werewolf-toolbox/internal/models"
	"werewolf-toolbox/internal/player"
)

type CreateMatchRequest struct {
	Players []config.Seat `json:"players"`
}

// ActionRequest is a human's answer. PlayerID names the seat answering.
type ActionRequest struct {
	PlayerID int    `json:"playerId"`
	Action   int    `json:"action"`
	Speech   string `json:"speech"`
}

// CreateMatch starts a new match.
func CreateMatch(m *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateMatchRequest
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
		}

		match, err := m.Create(req.Players)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"matchId": match.ID})
	}
}

// GetMatch returns the latest snapshot as the requested viewer sees it.
func GetMatch(m *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		match, ok := lookup(c, m)
		if !ok {
			return
		}
		state := match.Engine.Snapshot()
		viewer, err := parseViewer(c.Query("viewer"), state)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, state.ViewFor(viewer))
	}
}

// SubmitAction hands a human decision to the match.
func SubmitAction(m *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		match, ok := lookup(c, m)
		if !ok {
			return
		}
		var req ActionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if req.PlayerID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "playerId is required"})
			return
		}
		if err := match.Engine.Submit(req.PlayerID, models.Decision{Action: req.Action, Speech: req.Speech}); err != nil {
			c.JSON(submitStatus(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "accepted"})
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleWebSocket streams personalised snapshots and accepts submits.
func HandleWebSocket(m *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		match, ok := lookup(c, m)
		if !ok {
			return
		}
		viewer, err := parseViewer(c.Query("viewer"), match.Engine.Snapshot())
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			m.log.WithError(err).Warn("WebSocket upgrade error")
			return
		}

		client := &Client{
			ID:     uuid.NewString(),
			Viewer: viewer,
			Conn:   conn,
			Send:   make(chan []byte, 256),
		}
		match.hub.Register(client)

		go client.WritePump()
		go client.ReadPump(match)
	}
}

func (c *Client) ReadPump(match *Match) {
	defer func() {
		match.hub.Unregister(c)
		c.Conn.Close()
	}()

	for {
		var msg struct {
			Type    string        `json:"type"`
			Payload ActionRequest `json:"payload"`
		}
		if err := c.Conn.ReadJSON(&msg); err != nil {
			if _, ok := err.(*json.SyntaxError); ok {
				continue
			}
			return
		}
		if msg.Type != MessageSubmit {
			continue
		}
		// A socket always answers as the seat it watches; god and spectator sockets cannot answer.
		if c.Viewer.God || c.Viewer.PlayerID == 0 {
			match.hub.reply(c, MessageError, gin.H{"error": player.ErrWrongSeat.Error()})
			continue
		}
		if err := match.Engine.Submit(c.Viewer.PlayerID, models.Decision{Action: msg.Payload.Action, Speech: msg.Payload.Speech}); err != nil {
			match.hub.reply(c, MessageError, gin.H{"error": err.Error()})
		}
	}
}

func (c *Client) WritePump() {
	defer c.Conn.Close()

	for message := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	_ = c.Conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func lookup(c *gin.Context, m *Manager) (*Match, bool) {
	match, err := m.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return nil, false
	}
	return match, true
}

var errUnknownViewer = errors.New("viewer must be 'god' or a player id")

// parseViewer maps the viewer query to a Viewer. An empty query is a spectator
// who only sees public information.
func parseViewer(q string, state *models.GameState) (models.Viewer, error) {
	switch q {
	case "":
		return models.Viewer{}, nil
	case "god":
		return models.GodViewer, nil
	}
	id, err := strconv.Atoi(q)
	if err != nil {
		return models.Viewer{}, errUnknownViewer
	}
	p := state.Player(id)
	if p == nil {
		return models.Viewer{}, errUnknownViewer
	}
	return models.ViewerFor(p), nil
}

func submitStatus(err error) int {
	switch {
	case errors.Is(err, player.ErrNoPendingAction), errors.Is(err, player.ErrSeatBusy):
		return http.StatusConflict
	case errors.Is(err, player.ErrWrongSeat):
		return http.StatusForbidden
	case errors.Is(err, player.ErrInvalidTarget):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
