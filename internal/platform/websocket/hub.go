// Package websocket delivers real-time booking notifications to doctors.
// It implements a hub-and-spoke pattern where every client subscribes to a
// single doctor id and receives envelopes broadcast to that doctor.
package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	gorillawebsocket "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Envelope is the notification payload sent to subscribed clients.
type Envelope struct {
	Message   string    `json:"message"`
	DoctorID  string    `json:"doctor_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Conn abstracts a WebSocket connection for testability.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client represents a single WebSocket connection subscribed to one doctor.
type Client struct {
	ID       string
	DoctorID uuid.UUID
	Send     chan []byte
	hub      *Hub
	conn     Conn
}

// Hub is the central connection manager that tracks clients per doctor.
// All operations are thread-safe via sync.RWMutex.
type Hub struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]map[*Client]struct{} // doctor id -> set of clients
	logger  zerolog.Logger
}

// NewHub creates a new Hub ready to manage WebSocket clients.
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients: make(map[uuid.UUID]map[*Client]struct{}),
		logger:  logger,
	}
}

// Register adds a client to its doctor's connection set, creating the set on
// first subscription.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[client.DoctorID] == nil {
		h.clients[client.DoctorID] = make(map[*Client]struct{})
	}
	h.clients[client.DoctorID][client] = struct{}{}

	h.logger.Info().
		Str("doctor_id", client.DoctorID.String()).
		Int("connections", len(h.clients[client.DoctorID])).
		Msg("websocket client registered")
}

// Unregister removes a client, prunes the doctor's set when it becomes empty,
// and closes the client's Send channel. Unregistering twice is a no-op.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subscribers, ok := h.clients[client.DoctorID]
	if !ok {
		return
	}
	if _, ok := subscribers[client]; !ok {
		return
	}

	delete(subscribers, client)
	if len(subscribers) == 0 {
		delete(h.clients, client.DoctorID)
	}

	close(client.Send)
}

// NotifyDoctor sends a timestamped envelope to every live connection of the
// given doctor. A doctor with no connections is a logged no-op; a client with
// a full buffer is skipped so a slow consumer never blocks the caller.
func (h *Hub) NotifyDoctor(doctorID uuid.UUID, message string) {
	data, err := json.Marshal(Envelope{
		Message:   message,
		DoctorID:  doctorID.String(),
		Timestamp: time.Now(),
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("websocket: failed to marshal envelope")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	subscribers, ok := h.clients[doctorID]
	if !ok {
		h.logger.Warn().
			Str("doctor_id", doctorID.String()).
			Msg("no active connections for doctor, notification not sent")
		return
	}

	for client := range subscribers {
		select {
		case client.Send <- data:
		default:
			// Client buffer full; skip to avoid blocking.
			h.logger.Error().
				Str("doctor_id", doctorID.String()).
				Str("client_id", client.ID).
				Msg("dropping notification for slow client")
		}
	}
}

// ClientCount returns the total number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	total := 0
	for _, subscribers := range h.clients {
		total += len(subscribers)
	}
	return total
}

// DoctorConnectionCount returns the number of live connections for a doctor.
func (h *Hub) DoctorConnectionCount(doctorID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[doctorID])
}

// ---------------------------------------------------------------------------
// Handler — Echo HTTP handler for WebSocket connections
// ---------------------------------------------------------------------------

var upgrader = gorillawebsocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins; tighten in production.
	},
}

// Handler handles HTTP-to-WebSocket upgrades for doctor notification feeds.
type Handler struct {
	hub *Hub
}

// NewHandler creates a new handler bound to the given Hub.
func NewHandler(hub *Hub) *Handler {
	return &Handler{hub: hub}
}

// RegisterRoutes registers the WebSocket endpoint on the provided Echo group.
func (wsh *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/ws/notifications/:doctor_id", wsh.HandleConnect)
}

// HandleConnect upgrades an HTTP connection to WebSocket, registers the
// client under the requested doctor, and starts read/write pumps.
func (wsh *Handler) HandleConnect(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("doctor_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor_id")
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := &Client{
		ID:       uuid.New().String(),
		DoctorID: doctorID,
		Send:     make(chan []byte, 256),
		hub:      wsh.hub,
		conn:     &gorillaConnAdapter{ws},
	}

	wsh.hub.Register(client)

	go wsh.writePump(client, ws)
	go wsh.readPump(client, ws)

	return nil
}

// readPump drains inbound frames so pings and close frames are processed;
// the notification feed is one-way.
func (wsh *Handler) readPump(client *Client, ws *gorillawebsocket.Conn) {
	defer func() {
		wsh.hub.Unregister(client)
		ws.Close()
	}()

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}
}

// writePump writes messages from the Send channel to the WebSocket connection.
func (wsh *Handler) writePump(client *Client, ws *gorillawebsocket.Conn) {
	defer ws.Close()

	for message := range client.Send {
		if err := ws.WriteMessage(gorillawebsocket.TextMessage, message); err != nil {
			break
		}
	}
}

// gorillaConnAdapter wraps a gorilla/websocket.Conn to satisfy the Conn interface.
type gorillaConnAdapter struct {
	conn *gorillawebsocket.Conn
}

func (a *gorillaConnAdapter) ReadMessage() (int, []byte, error) {
	return a.conn.ReadMessage()
}

func (a *gorillaConnAdapter) WriteMessage(messageType int, data []byte) error {
	return a.conn.WriteMessage(messageType, data)
}

func (a *gorillaConnAdapter) Close() error {
	return a.conn.Close()
}
