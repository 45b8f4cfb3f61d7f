package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/dom/fitgate/internal/api/httpx"
	"github.com/dom/fitgate/internal/domain"
	"github.com/dom/fitgate/internal/fitnessapi"
)

type ProfileHandler struct {
	fitnessProxy
}

func NewProfileHandler(client *fitnessapi.Client, legacySoftFail bool) *ProfileHandler {
	return &ProfileHandler{fitnessProxy{client: client, legacy: legacySoftFail}}
}

func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	h.forward(w, r, "profile.GetProfile", http.MethodGet, "get_fitness_profile/"+userID.String(), nil, nil)
}

func (h *ProfileHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	h.forwardWithUser(w, r, "profile.CreateProfile", http.MethodPost, "create_fitness_profile", "_id")
}

func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	body, ok := h.decodeObject(w, r, "profile.UpdateProfile")
	if !ok {
		return
	}
	h.forward(w, r, "profile.UpdateProfile", http.MethodPut, "edit_fitness_profile/"+userID.String(), nil, body)
}

func (h *ProfileHandler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	h.forward(w, r, "profile.DeleteProfile", http.MethodDelete, "delete_fitness_profile/"+userID.String(), nil, nil)
}

// GetFitnessPlan combines the stored plan with freshly calculated
// nutritional goals.
func (h *ProfileHandler) GetFitnessPlan(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	id := userID.String()

	goals, err := h.client.Get(r.Context(), "calculate_nutritional_goals/"+id, nil)
	if err != nil {
		httpx.Fail(w, "profile.GetFitnessPlan", err, h.legacy)
		return
	}
	if !goals.OK() {
		httpx.RawJSON(w, goals.StatusCode, goals.Body)
		return
	}

	plan, err := h.client.Get(r.Context(), "retrieve_fitness_plan/"+id, nil)
	if err != nil {
		httpx.Fail(w, "profile.GetFitnessPlan", err, h.legacy)
		return
	}
	if !plan.OK() {
		httpx.RawJSON(w, plan.StatusCode, plan.Body)
		return
	}

	merged := map[string]interface{}{}
	if err := json.Unmarshal(plan.Body, &merged); err != nil {
		httpx.Fail(w, "profile.GetFitnessPlan", domain.ErrUpstreamUnavailable, h.legacy)
		return
	}
	if merged == nil {
		merged = map[string]interface{}{}
	}
	merged["goals"] = goals.Body

	httpx.JSON(w, http.StatusOK, map[string]interface{}{"fitness_plan": merged})
}
