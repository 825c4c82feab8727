package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yourorg/itemvault/internal/events"
	"github.com/yourorg/itemvault/internal/security/middleware"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

// EventsHandler streams an owner's item change events over a websocket.
// The route sits behind RequireAuth, so events are only ever delivered to
// the identity that owns them.
type EventsHandler struct {
	bus            *events.Bus
	logger         *slog.Logger
	allowedOrigins []string
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(bus *events.Bus, allowedOrigins []string, logger *slog.Logger) *EventsHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &EventsHandler{
		bus:            bus,
		logger:         logger,
		allowedOrigins: allowedOrigins,
	}
}

// ServeHTTP handles GET /ws/events
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true // non-browser clients
			}
			for _, allowed := range h.allowedOrigins {
				if allowed == "*" || allowed == origin {
					return true
				}
			}
			return false
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	ch, cancel := h.bus.Subscribe(claims.UserID)
	defer cancel()

	h.logger.Info("event stream opened", slog.String("user_id", claims.UserID))

	// Drain reads so close frames are processed; the stream is write-only.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case event := <-ch:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(event); err != nil {
				h.logger.Debug("event stream closed", slog.String("error", err.Error()))
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
