package handlers

import (
	"net/http"

	"github.com/dom/fitgate/internal/fitnessapi"
)

type DashboardHandler struct {
	fitnessProxy
}

func NewDashboardHandler(client *fitnessapi.Client, legacySoftFail bool) *DashboardHandler {
	return &DashboardHandler{fitnessProxy{client: client, legacy: legacySoftFail}}
}

func (h *DashboardHandler) Nutrition(w http.ResponseWriter, r *http.Request) {
	h.forwardUserQuery(w, r, "dash.Nutrition", "nutrition_info", "", "")
}

func (h *DashboardHandler) Exercise(w http.ResponseWriter, r *http.Request) {
	h.forwardUserQuery(w, r, "dash.Exercise", "exercise_info", "", "")
}
