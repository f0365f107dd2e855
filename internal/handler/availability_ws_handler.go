package handler

import (
	"net/http"
	"sync"
	"time"

	"github.com/bkoyuncu/campus-tickets/internal/broker"
	"github.com/bkoyuncu/campus-tickets/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

type availabilityClient struct {
	conn    *websocket.Conn
	eventID uint // 0 means all events
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // add origin check in production
	},
}

// AvailabilityWSHandler pushes seat availability updates to connected
// clients. Updates arrive over the broker, so a reservation admitted on
// any node reaches every subscriber.
type AvailabilityWSHandler struct {
	eventBroker broker.EventBroker
	clients     map[*websocket.Conn]*availabilityClient
	mu          sync.RWMutex
}

func NewAvailabilityWSHandler(eventBroker broker.EventBroker) *AvailabilityWSHandler {
	return &AvailabilityWSHandler{
		eventBroker: eventBroker,
		clients:     make(map[*websocket.Conn]*availabilityClient),
	}
}

// Run consumes the broker's availability channel and fans updates out to
// matching clients. Call it once, in its own goroutine; it returns when
// the broker channel closes.
func (h *AvailabilityWSHandler) Run() {
	updates, err := h.eventBroker.SubscribeAvailability()
	if err != nil {
		logger.Log.Error("failed to subscribe to availability updates", zap.Error(err))
		return
	}

	for update := range updates {
		h.broadcast(update)
	}
}

// HandleAvailability handles GET /ws/events/:id/availability. An id of 0
// subscribes to every event.
func (h *AvailabilityWSHandler) HandleAvailability(c *gin.Context) {
	eventID, ok := paramID(c)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &availabilityClient{
		conn:    conn,
		eventID: eventID,
	}

	h.mu.Lock()
	h.clients[conn] = client
	total := len(h.clients)
	h.mu.Unlock()

	logger.Log.Info("availability subscriber connected",
		zap.Uint("event_id", eventID),
		zap.Int("total", total))

	defer h.removeClient(conn)

	h.readLoop(client)
}

// readLoop keeps the connection alive with pings and drains incoming
// frames. The feed is one-way; anything the client sends is discarded.
func (h *AvailabilityWSHandler) readLoop(client *availabilityClient) {
	client.conn.SetReadLimit(512)
	client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		client.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	done := make(chan struct{})
	defer close(done)

	go h.pingClient(client, done)

	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Log.Debug("websocket read error", zap.Error(err))
			}
			return
		}
	}
}

func (h *AvailabilityWSHandler) pingClient(client *availabilityClient, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func (h *AvailabilityWSHandler) broadcast(update broker.AvailabilityUpdate) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for conn, client := range h.clients {
		if client.eventID != 0 && client.eventID != update.EventID {
			continue
		}

		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(update); err != nil {
			logger.Log.Debug("failed to push availability update", zap.Error(err))
			// readLoop will notice the broken connection and clean up.
		}
	}
}

func (h *AvailabilityWSHandler) removeClient(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.clients[conn]; exists {
		delete(h.clients, conn)
		conn.Close()
		logger.Log.Info("availability subscriber disconnected", zap.Int("remaining", len(h.clients)))
	}
}
