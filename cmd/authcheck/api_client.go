package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const tokenHeader = "x-auth-token"

// APIClient handles HTTP communication with the gateway
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/") + "/api",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Response types matching the gateway

type User struct {
	ID               string `json:"id"`
	Username         string `json:"username"`
	Name             string `json:"name"`
	ProfileCreated   bool   `json:"profile_created"`
	ProfileCompleted bool   `json:"profile_completed"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expiresAt"`
	User      User   `json:"user"`
}

type ValidateResponse struct {
	Validate         bool `json:"validate"`
	ProfileCreated   bool `json:"profile_created"`
	ProfileCompleted bool `json:"profile_completed"`
}

type failResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

// APIError is a failure reported by the gateway.
type APIError struct {
	StatusCode int
	Message    string
	Field      string
}

func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s (status %d, field %s)", e.Message, e.StatusCode, e.Field)
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

func (c *APIClient) Register(username, password, name, email string) (*User, error) {
	body := map[string]string{
		"username": username,
		"password": password,
		"name":     name,
		"email":    email,
	}
	var user User
	if err := c.do(http.MethodPost, "/auth/register", body, "", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *APIClient) Login(username, password string) (*LoginResponse, error) {
	body := map[string]string{
		"username": username,
		"password": password,
	}
	var result LoginResponse
	if err := c.do(http.MethodPost, "/auth/login", body, "", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Validate returns nil when the gateway answers false.
func (c *APIClient) Validate(token string) (*ValidateResponse, error) {
	var raw json.RawMessage
	if err := c.do(http.MethodPost, "/auth/validate", nil, token, &raw); err != nil {
		return nil, err
	}
	if string(bytes.TrimSpace(raw)) == "false" {
		return nil, nil
	}
	var result ValidateResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &result, nil
}

func (c *APIClient) Me(token string) (*User, error) {
	var user User
	if err := c.do(http.MethodGet, "/auth/user", nil, token, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *APIClient) Logout(token string) error {
	return c.do(http.MethodPost, "/auth/logout", nil, token, nil)
}

// HTTP helpers

func (c *APIClient) do(method, path string, body interface{}, token string, out interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return err
	}
	if token != "" {
		req.Header.Set(tokenHeader, token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	// Failures carry status "fail" even when the gateway runs in legacy 200 mode.
	var fail failResponse
	if json.Unmarshal(data, &fail) == nil && fail.Status == "fail" {
		return &APIError{StatusCode: resp.StatusCode, Message: fail.Message, Field: fail.Type}
	}
	if resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(data))}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
