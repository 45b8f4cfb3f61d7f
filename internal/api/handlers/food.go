package handlers

import (
	"net/http"
	"net/url"

	"github.com/dom/fitgate/internal/fitnessapi"
	"github.com/go-chi/chi/v5"
)

type FoodHandler struct {
	fitnessProxy
}

func NewFoodHandler(client *fitnessapi.Client, legacySoftFail bool) *FoodHandler {
	return &FoodHandler{fitnessProxy{client: client, legacy: legacySoftFail}}
}

func (h *FoodHandler) SearchFood(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.userID(w, r); !ok {
		return
	}
	name := chi.URLParam(r, "name")
	h.forward(w, r, "food.SearchFood", http.MethodGet, "search_food/"+fitnessapi.PathSegment(name), nil, nil)
}

func (h *FoodHandler) FoodNutrition(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.userID(w, r); !ok {
		return
	}
	query := url.Values{"food_id": {chi.URLParam(r, "id")}}
	h.forward(w, r, "food.FoodNutrition", http.MethodGet, "getDetailsByFoodId", query, nil)
}

func (h *FoodHandler) AddMeal(w http.ResponseWriter, r *http.Request) {
	h.forwardWithUser(w, r, "food.AddMeal", http.MethodPost, "add_meal_log", "user_id")
}

func (h *FoodHandler) GetDiary(w http.ResponseWriter, r *http.Request) {
	h.forwardUserQuery(w, r, "food.GetDiary", "getMyMealDiary", "date", "meal_date")
}

func (h *FoodHandler) DeleteMeal(w http.ResponseWriter, r *http.Request) {
	h.forwardWithUser(w, r, "food.DeleteMeal", http.MethodDelete, "delete_meal_log", "user_id")
}
