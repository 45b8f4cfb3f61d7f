package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/dom/fitgate/internal/domain"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	username string
	name     string
	password string
	email    string
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	return &UserBuilder{
		username: "u" + uuid.NewString()[:8],
		name:     "Test User",
		password: "testpass1",
	}
}

func (b *UserBuilder) WithUsername(username string) *UserBuilder {
	b.username = username
	return b
}

func (b *UserBuilder) WithName(name string) *UserBuilder {
	b.name = name
	return b
}

func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

// Build creates the user in the database and returns the user with the raw password
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:           domain.NewUserID(),
		Username:     domain.NormalizeUsername(b.username),
		Name:         b.name,
		Email:        domain.NormalizeEmail(b.email),
		PasswordHash: string(hashedPassword),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// LoginResponse matches the API login response
type LoginResponse struct {
	Token string `json:"token"`
	User  struct {
		ID               string `json:"id"`
		Username         string `json:"username"`
		Name             string `json:"name"`
		ProfileCreated   bool   `json:"profile_created"`
		ProfileCompleted bool   `json:"profile_completed"`
	} `json:"user"`
}

// BuildAndLogin registers the user through the API, logs in and returns the
// user and its token
func (b *UserBuilder) BuildAndLogin(t *testing.T, ts *TestServer) (*domain.User, string) {
	t.Helper()

	resp := PostJSON(t, ts.APIURL("/auth/register"), map[string]string{
		"username": b.username,
		"password": b.password,
		"name":     b.name,
		"email":    b.email,
	}, "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register: unexpected status code: %d", resp.StatusCode)
	}

	resp = PostJSON(t, ts.APIURL("/auth/login"), map[string]string{
		"username": b.username,
		"password": b.password,
	}, "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: unexpected status code: %d", resp.StatusCode)
	}

	var login LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&login); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	user := &domain.User{
		ID:       domain.UserID(login.User.ID),
		Username: login.User.Username,
		Name:     login.User.Name,
	}
	return user, login.Token
}

// DoJSON sends a request with an optional JSON body and x-auth-token header
func DoJSON(t *testing.T, method, url string, body interface{}, token string) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("x-auth-token", token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, url, err)
	}
	return resp
}

func PostJSON(t *testing.T, url string, body interface{}, token string) *http.Response {
	t.Helper()
	return DoJSON(t, http.MethodPost, url, body, token)
}

func Get(t *testing.T, url, token string) *http.Response {
	t.Helper()
	return DoJSON(t, http.MethodGet, url, nil, token)
}

// CountUsers returns how many users match username
func CountUsers(t *testing.T, db *gorm.DB, username string) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&domain.User{}).Where("username = ?", username).Count(&n).Error; err != nil {
		t.Fatalf("failed to count users: %v", err)
	}
	return n
}

// MustJSON marshals v or fails the test
func MustJSON(t *testing.T, v interface{}) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}
	return string(data)
}

