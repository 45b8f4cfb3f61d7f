package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/dom/fitgate/internal/api/httpx"
	"github.com/dom/fitgate/internal/domain"
	"github.com/dom/fitgate/internal/fitnessapi"
)

type WeightHandler struct {
	fitnessProxy
}

func NewWeightHandler(client *fitnessapi.Client, legacySoftFail bool) *WeightHandler {
	return &WeightHandler{fitnessProxy{client: client, legacy: legacySoftFail}}
}

type WeightEntry struct {
	Weight float64 `json:"weight"`
	Notes  string  `json:"notes,omitempty"`
}

type AddWeightLogRequest struct {
	Date    string        `json:"date"`
	Weights []WeightEntry `json:"weights"`
}

type upstreamWeight struct {
	WeightInKG float64 `json:"weight_in_kg"`
	Notes      string  `json:"notes"`
}

type upstreamWeightLog struct {
	UserID  string           `json:"user_id"`
	Date    string           `json:"date"`
	Weights []upstreamWeight `json:"weights"`
}

var errWeightLogFields = domain.Validation("", "Date and at least one weight are required.")

func (h *WeightHandler) GetLog(w http.ResponseWriter, r *http.Request) {
	h.forwardUserQuery(w, r, "weight.GetLog", "get_weight_logs", "range", "time_range")
}

func (h *WeightHandler) AddWeightLog(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req AddWeightLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Fail(w, "weight.AddWeightLog", domain.ErrInvalidRequestBody, h.legacy)
		return
	}
	if req.Date == "" || len(req.Weights) == 0 {
		httpx.Fail(w, "weight.AddWeightLog", errWeightLogFields, h.legacy)
		return
	}

	payload := upstreamWeightLog{
		UserID:  userID.String(),
		Date:    req.Date,
		Weights: make([]upstreamWeight, 0, len(req.Weights)),
	}
	for _, entry := range req.Weights {
		payload.Weights = append(payload.Weights, upstreamWeight{WeightInKG: entry.Weight, Notes: entry.Notes})
	}

	h.forward(w, r, "weight.AddWeightLog", http.MethodPost, "addWeightLog", nil, payload)
}

func (h *WeightHandler) DeleteWeightLog(w http.ResponseWriter, r *http.Request) {
	h.forwardWithUser(w, r, "weight.DeleteWeightLog", http.MethodDelete, "delete_weight_log", "user_id")
}
