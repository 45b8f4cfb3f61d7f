package testutil

import (
	"context"
	"fmt"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dom/fitgate/internal/api"
	"github.com/dom/fitgate/internal/config"
	"github.com/dom/fitgate/internal/fitnessapi"
	"github.com/dom/fitgate/internal/repository"
	repoPostgres "github.com/dom/fitgate/internal/repository/postgres"
	"github.com/dom/fitgate/internal/service"
	"github.com/dom/fitgate/internal/websocket"
	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB wraps a migrated database for one test
type TestDB struct {
	Container testcontainers.Container
	DB        *gorm.DB
	DSN       string
}

// NewTestDB opens a private in-memory SQLite database with the schema applied
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	// In-memory databases disappear with their last connection.
	sqlDB.SetMaxOpenConns(1)

	if err := repoPostgres.Migrate(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		sqlDB.Close()
	})

	return &TestDB{DB: db, DSN: dsn}
}

// NewPostgresTestDB starts a PostgreSQL testcontainer. The test is skipped
// when no container provider is available.
func NewPostgresTestDB(t *testing.T) *TestDB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres container in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()

	container, err := tcPostgres.Run(ctx,
		"postgres:16-alpine",
		tcPostgres.WithDatabase("test_fitgate"),
		tcPostgres.WithUsername("test"),
		tcPostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	testDB := &TestDB{Container: container}
	t.Cleanup(func() {
		testDB.Cleanup()
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	db, err := gorm.Open(gormPostgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}
	if err := repoPostgres.Migrate(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	testDB.DB = db
	testDB.DSN = dsn
	return testDB
}

// Cleanup terminates the container, if any
func (tdb *TestDB) Cleanup() {
	if tdb.Container != nil {
		tdb.Container.Terminate(context.Background())
	}
}

// Truncate clears all tables for test isolation
func (tdb *TestDB) Truncate(t *testing.T) {
	t.Helper()

	for _, table := range []string{"conversations", "password_resets", "user_sessions", "users"} {
		if err := tdb.DB.Exec("DELETE FROM " + table).Error; err != nil {
			t.Logf("warning: failed to truncate %s: %v", table, err)
		}
	}
}

// TestConfig returns a configuration suitable for testing
func TestConfig() *config.Config {
	return &config.Config{
		Port:               "0",
		Environment:        "test",
		CORSOrigins:        []string{"*"},
		JWTSecret:          "test-jwt-secret-key-for-testing-only",
		JWTExpirationHours: 1,
		BcryptCost:         4,
		FitnessAPITimeout:  2 * time.Second,
		FrontendURL:        "http://frontend.test",
		PasswordResetTTL:   time.Hour,
	}
}

// SentMail is one message captured by RecordingMailer
type SentMail struct {
	To      string
	Subject string
	Body    string
}

// RecordingMailer keeps sent messages in memory. Set Err to make Send fail.
type RecordingMailer struct {
	mu   sync.Mutex
	sent []SentMail
	Err  error
}

func (m *RecordingMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.sent = append(m.sent, SentMail{To: to, Subject: subject, Body: body})
	return nil
}

func (m *RecordingMailer) Sent() []SentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentMail(nil), m.sent...)
}

// ResetTokenFrom extracts the reset token from a password reset mail body.
func ResetTokenFrom(t *testing.T, mail SentMail) string {
	t.Helper()
	const marker = "/reset-password/"
	i := strings.Index(mail.Body, marker)
	if i < 0 {
		t.Fatalf("no reset link in mail body: %q", mail.Body)
	}
	return strings.Fields(mail.Body[i+len(marker):])[0]
}

// TestServer holds all components for integration testing
type TestServer struct {
	Server   *httptest.Server
	DB       *TestDB
	Repos    *repository.Repositories
	Services *service.Services
	Hub      *websocket.Hub
	Fitness  *FakeFitnessAPI
	Mailer   *RecordingMailer
	Config   *config.Config
}

// NewTestServer creates a complete test server backed by SQLite and a fake
// fitness service. mutate, when given, adjusts the config before wiring.
func NewTestServer(t *testing.T, mutate ...func(*config.Config)) *TestServer {
	t.Helper()

	testDB := NewTestDB(t)
	fake := NewFakeFitnessAPI(t)
	cfg := TestConfig()
	cfg.FitnessAPIURL = fake.URL()
	for _, m := range mutate {
		m(cfg)
	}

	repos := repoPostgres.NewRepositories(testDB.DB)
	client := fitnessapi.NewClient(cfg.FitnessAPIURL, cfg.FitnessAPITimeout)
	mailer := &RecordingMailer{}

	services := service.NewServices(repos, client, mailer, cfg)

	hub := websocket.NewHub(services.Chat)
	go hub.Run()
	router := api.NewRouter(services, hub, client, cfg)

	server := httptest.NewServer(router)

	ts := &TestServer{
		Server:   server,
		DB:       testDB,
		Repos:    repos,
		Services: services,
		Hub:      hub,
		Fitness:  fake,
		Mailer:   mailer,
		Config:   cfg,
	}

	t.Cleanup(func() {
		hub.Stop()
		server.Close()
	})

	return ts
}

// BaseURL returns the test server's base URL
func (ts *TestServer) BaseURL() string {
	return ts.Server.URL
}

// APIURL returns the full API URL for a given path
func (ts *TestServer) APIURL(path string) string {
	return fmt.Sprintf("%s/api%s", ts.Server.URL, path)
}

// WebSocketURL returns the chat WebSocket URL with token
func (ts *TestServer) WebSocketURL(token string) string {
	wsURL := "ws" + ts.Server.URL[4:] // Replace "http" with "ws"
	return fmt.Sprintf("%s/api/chat/ws?token=%s", wsURL, token)
}
