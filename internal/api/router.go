package api

import (
	"net/http"

	"github.com/dom/fitgate/internal/api/handlers"
	"github.com/dom/fitgate/internal/api/middleware"
	"github.com/dom/fitgate/internal/config"
	"github.com/dom/fitgate/internal/fitnessapi"
	"github.com/dom/fitgate/internal/service"
	"github.com/dom/fitgate/internal/websocket"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func NewRouter(services *service.Services, hub *websocket.Hub, fitness *fitnessapi.Client, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.CORS(cfg.CORSOrigins))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	legacy := cfg.LegacySoftFail

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(services.Auth, legacy)
	profileHandler := handlers.NewProfileHandler(fitness, legacy)
	weightHandler := handlers.NewWeightHandler(fitness, legacy)
	exerciseHandler := handlers.NewExerciseHandler(fitness, legacy)
	foodHandler := handlers.NewFoodHandler(fitness, legacy)
	dashboardHandler := handlers.NewDashboardHandler(fitness, legacy)
	chatHandler := handlers.NewChatHandler(services.Chat, fitness, legacy)
	wsHandler := handlers.NewWebSocketHandler(hub, services.Auth, cfg.CORSOrigins)

	requireAuth := middleware.Auth(services.Auth)

	r.Route("/api", func(r chi.Router) {
		// Public auth routes
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/validate", authHandler.Validate)
			r.Post("/forgot-password", authHandler.ForgotPassword)
			r.Post("/reset-password/{token}", authHandler.ResetPassword)

			// Protected auth routes
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/user", authHandler.User)
				r.Post("/logout", authHandler.Logout)
			})
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Route("/profile", func(r chi.Router) {
				r.Get("/get-profile", profileHandler.GetProfile)
				r.Post("/create-profile", profileHandler.CreateProfile)
				r.Put("/update-profile", profileHandler.UpdateProfile)
				r.Delete("/delete-profile", profileHandler.DeleteProfile)
				r.Get("/get-fitness-plan", profileHandler.GetFitnessPlan)
			})

			r.Route("/weight", func(r chi.Router) {
				r.Get("/get-log", weightHandler.GetLog)
				r.Post("/add-weight-log", weightHandler.AddWeightLog)
				r.Delete("/delete-weight-log", weightHandler.DeleteWeightLog)
			})

			r.Route("/exercise", func(r chi.Router) {
				r.Post("/add-exercise", exerciseHandler.AddExercise)
				r.Delete("/delete-exercise", exerciseHandler.DeleteExercise)
				r.Get("/get-diary", exerciseHandler.GetDiary)
				r.Post("/calculate-calories", exerciseHandler.CalculateCalories)
			})

			r.Route("/food", func(r chi.Router) {
				r.Get("/search-food/{name}", foodHandler.SearchFood)
				r.Get("/food-nutrition/{id}", foodHandler.FoodNutrition)
				r.Post("/add-meal", foodHandler.AddMeal)
				r.Get("/get-diary", foodHandler.GetDiary)
				r.Delete("/delete-meal", foodHandler.DeleteMeal)
			})

			r.Route("/dash", func(r chi.Router) {
				r.Get("/nutrition", dashboardHandler.Nutrition)
				r.Get("/exercise", dashboardHandler.Exercise)
			})

			r.Post("/chat", chatHandler.Send)
			r.Get("/chat/history/{id}", chatHandler.History)
		})

		// WebSocket endpoint authenticates with ?token=
		r.Get("/chat/ws", wsHandler.Handle)
	})

	return otelhttp.NewHandler(r, "fitgate")
}
