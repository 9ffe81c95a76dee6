package realtime

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/spec-kit/code-arena/internal/presence"
)

// WebSocketHandler upgrades connections and feeds their events to the presence coordinator.
type WebSocketHandler struct {
	upgrader    *websocket.Upgrader
	coordinator *presence.Coordinator
	sendBuffer  int
	logger      *zap.Logger
}

func NewWebSocketHandler(coordinator *presence.Coordinator, allowedOrigin string, sendBuffer int, logger *zap.Logger) *WebSocketHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sendBuffer <= 0 {
		sendBuffer = 64
	}
	return &WebSocketHandler{
		upgrader: &websocket.Upgrader{
			CheckOrigin: originChecker(allowedOrigin),
		},
		coordinator: coordinator,
		sendBuffer:  sendBuffer,
		logger:      logger,
	}
}

func (h *WebSocketHandler) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("failed to upgrade connection", zap.Error(err))
		return
	}

	c := newClient(uuid.NewString(), conn, h.sendBuffer, h.logger)
	h.coordinator.Register(c)
	go c.writePump()
	h.logger.Debug("connection upgraded", zap.String("conn_id", c.id))

	defer func() {
		h.coordinator.Disconnect(c.id)
		c.close()
		h.logger.Debug("connection closed", zap.String("conn_id", c.id))
	}()

	conn.SetReadLimit(maxFrame)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		mt, raw, err := conn.ReadMessage()
		if err != nil || mt == websocket.CloseMessage {
			return
		}
		if mt != websocket.TextMessage {
			continue
		}
		h.dispatch(c.id, raw)
	}
}

// dispatch handles one inbound frame. Events of a connection are processed in arrival order.
func (h *WebSocketHandler) dispatch(connID string, raw []byte) {
	message, err := decodeMessage(raw)
	if err != nil {
		h.logger.Debug("failed to decode message", zap.String("conn_id", connID), zap.Error(err))
		return
	}

	switch v := message.(type) {
	case JoinRequest:
		h.coordinator.Join(connID, v.RoomID, v.Username)
	case CodeChangeRequest:
		h.coordinator.CodeChange(connID, v.RoomID, v.Code)
	case SyncCodeRequest:
		h.coordinator.SyncCode(connID, v.SocketID, v.Code)
	}
}

func originChecker(allowed string) func(*http.Request) bool {
	allowed = strings.TrimRight(strings.TrimSpace(allowed), "/")
	return func(r *http.Request) bool {
		if allowed == "" || allowed == "*" {
			return true
		}
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return strings.EqualFold(u.Scheme+"://"+u.Host, allowed)
	}
}
