package handlers

import (
	"net/http"

	"github.com/dom/fitgate/internal/fitnessapi"
)

type ExerciseHandler struct {
	fitnessProxy
}

func NewExerciseHandler(client *fitnessapi.Client, legacySoftFail bool) *ExerciseHandler {
	return &ExerciseHandler{fitnessProxy{client: client, legacy: legacySoftFail}}
}

func (h *ExerciseHandler) AddExercise(w http.ResponseWriter, r *http.Request) {
	h.forwardWithUser(w, r, "exercise.AddExercise", http.MethodPost, "addExerciseLog", "user_id")
}

func (h *ExerciseHandler) DeleteExercise(w http.ResponseWriter, r *http.Request) {
	h.forwardWithUser(w, r, "exercise.DeleteExercise", http.MethodDelete, "delete_exercise_log", "user_id")
}

func (h *ExerciseHandler) GetDiary(w http.ResponseWriter, r *http.Request) {
	h.forwardUserQuery(w, r, "exercise.GetDiary", "getMyExerciseDiary", "date", "exercise_date")
}

func (h *ExerciseHandler) CalculateCalories(w http.ResponseWriter, r *http.Request) {
	h.forwardWithUser(w, r, "exercise.CalculateCalories", http.MethodPost, "calculateCaloriesBurnt", "user_id")
}
