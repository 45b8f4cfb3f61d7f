package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dom/fitgate/internal/api"
	"github.com/dom/fitgate/internal/config"
	"github.com/dom/fitgate/internal/fitnessapi"
	"github.com/dom/fitgate/internal/mailer"
	"github.com/dom/fitgate/internal/repository"
	"github.com/dom/fitgate/internal/repository/mongo"
	"github.com/dom/fitgate/internal/repository/postgres"
	"github.com/dom/fitgate/internal/service"
	"github.com/dom/fitgate/internal/telemetry"
	"github.com/dom/fitgate/internal/websocket"
	"gorm.io/gorm/logger"
)

const sessionPruneInterval = time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.OTelEndpoint, cfg.OTelServiceName)
	if err != nil {
		log.Fatalf("failed to set up tracing: %v", err)
	}

	// Initialize repositories
	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	fitness := fitnessapi.NewClient(cfg.FitnessAPIURL, cfg.FitnessAPITimeout)

	// Initialize services
	services := service.NewServices(repos, fitness, mailer.New(cfg), cfg)

	// Initialize WebSocket hub
	hub := websocket.NewHub(services.Chat)
	go hub.Run()

	pruneCtx, stopPruning := context.WithCancel(ctx)
	go pruneSessions(pruneCtx, services.Auth)

	// Initialize router
	router := api.NewRouter(services, hub, fitness, cfg)

	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	stopPruning()
	hub.Stop()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server forced to shutdown: %v", err)
	}
	if err := repos.Close(shutdownCtx); err != nil {
		log.Printf("failed to close database: %v", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Printf("failed to flush traces: %v", err)
	}

	log.Println("Server stopped")
}

// openRepositories picks the credential store backend from the DATABASE_URL scheme.
func openRepositories(ctx context.Context, cfg *config.Config) (*repository.Repositories, error) {
	if cfg.UsesMongo() {
		db, err := mongo.NewConnection(ctx, cfg.DatabaseURL, cfg.DatabaseName)
		if err != nil {
			return nil, err
		}
		log.Printf("Using MongoDB database %s", cfg.DatabaseName)
		return mongo.NewRepositories(db), nil
	}

	logLevel := logger.Warn
	if cfg.IsDevelopment() {
		logLevel = logger.Info
	}
	db, err := postgres.NewConnection(cfg.DatabaseURL, logLevel)
	if err != nil {
		return nil, err
	}
	log.Println("Using PostgreSQL database")
	return postgres.NewRepositories(db), nil
}

func pruneSessions(ctx context.Context, auth *service.AuthService) {
	ticker := time.NewTicker(sessionPruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := auth.PruneExpiredSessions(ctx)
			if err != nil {
				log.Printf("ERROR [main.pruneSessions] %v", err)
				continue
			}
			if n > 0 {
				log.Printf("Pruned %d expired sessions", n)
			}
		}
	}
}
