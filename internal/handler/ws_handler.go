package handler

import (
	"log/slog"
	"net/http"

	"forget-me-not/internal/middleware"
	"forget-me-not/internal/websocket"
	"forget-me-not/pkg/response"

	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"
)

// WebSocketHandler upgrades logged-in browsers onto the live note feed. The
// upgrader's default origin check applies since the session cookie is the
// credential.
type WebSocketHandler struct {
	manager  *websocket.Manager
	upgrader ws.Upgrader
}

func NewWebSocketHandler(manager *websocket.Manager) *WebSocketHandler {
	return &WebSocketHandler{
		manager: manager,
		upgrader: ws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

func (h *WebSocketHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		response.Unauthorized(w, "login required")
		return
	}

	if h.manager.GetUserConnections(user.ID) >= h.manager.MaxConnPerUser() {
		response.TooManyRequests(w, "too many open connections")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "user", user.ID, "err", err)
		return
	}

	client := websocket.NewClient(uuid.New().String(), user.ID, conn, h.manager)

	if err := h.manager.Register(client); err != nil {
		conn.WriteMessage(ws.CloseMessage, ws.FormatCloseMessage(ws.ClosePolicyViolation, err.Error()))
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}
