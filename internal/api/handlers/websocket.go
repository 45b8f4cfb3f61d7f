package handlers

import (
	"log"
	"net/http"

	"github.com/dom/fitgate/internal/api/httpx"
	"github.com/dom/fitgate/internal/api/middleware"
	"github.com/dom/fitgate/internal/domain"
	"github.com/dom/fitgate/internal/websocket"
	ws "github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	hub      *websocket.Hub
	auth     middleware.Authenticator
	upgrader ws.Upgrader
}

// NewWebSocketHandler accepts upgrades from the given origins; an empty list
// or "*" accepts any origin.
func NewWebSocketHandler(hub *websocket.Hub, auth middleware.Authenticator, origins []string) *WebSocketHandler {
	allowed := make(map[string]bool, len(origins))
	allowAll := len(origins) == 0
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}

	return &WebSocketHandler{
		hub:  hub,
		auth: auth,
		upgrader: ws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowAll || origin == "" || allowed[origin]
			},
		},
	}
}

// Handle authenticates with the token query parameter since browsers cannot
// set custom headers on an upgrade request.
func (h *WebSocketHandler) Handle(w http.ResponseWriter, r *http.Request) {
	principal, err := h.auth.Authenticate(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		if domain.KindOf(err) == domain.KindAuth {
			httpx.Unauthorized(w, err)
			return
		}
		httpx.Fail(w, "handlers.WebSocket", err, false)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := websocket.NewClient(h.hub, conn, principal.UserID)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
