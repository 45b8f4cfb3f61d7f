package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dom/fitgate/internal/api/httpx"
	"github.com/dom/fitgate/internal/domain"
	"github.com/dom/fitgate/internal/fitnessapi"
	"github.com/dom/fitgate/internal/service"
	"github.com/go-chi/chi/v5"
)

type ChatHandler struct {
	fitnessProxy
	chat *service.ChatService
}

func NewChatHandler(chat *service.ChatService, client *fitnessapi.Client, legacySoftFail bool) *ChatHandler {
	return &ChatHandler{
		fitnessProxy: fitnessProxy{client: client, legacy: legacySoftFail},
		chat:         chat,
	}
}

type ChatRequest struct {
	Message string `json:"message"`
}

var errChatMessageRequired = domain.Validation("message", "Message is required.")

func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Fail(w, "chat.Send", domain.ErrInvalidRequestBody, h.legacy)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		httpx.Fail(w, "chat.Send", errChatMessageRequired, h.legacy)
		return
	}

	reply, err := h.chat.Chat(r.Context(), userID, req.Message)
	if err != nil {
		httpx.Fail(w, "chat.Send", err, h.legacy)
		return
	}
	httpx.JSON(w, http.StatusOK, reply)
}

// History only serves conversations the chatbot issued to the caller.
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	conversationID := chi.URLParam(r, "id")
	if err := h.chat.AuthorizeHistory(r.Context(), userID, conversationID); err != nil {
		httpx.Fail(w, "chat.History", err, h.legacy)
		return
	}
	h.forward(w, r, "chat.History", http.MethodGet, "chat/history/"+fitnessapi.PathSegment(conversationID), nil, nil)
}
