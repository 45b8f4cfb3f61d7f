package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/dom/fitgate/internal/api/httpx"
	"github.com/dom/fitgate/internal/api/middleware"
	"github.com/dom/fitgate/internal/domain"
	"github.com/dom/fitgate/internal/service"
	"github.com/go-chi/chi/v5"
)

type AuthHandler struct {
	authService *service.AuthService
	legacy      bool
}

func NewAuthHandler(authService *service.AuthService, legacySoftFail bool) *AuthHandler {
	return &AuthHandler{authService: authService, legacy: legacySoftFail}
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type UserResponse struct {
	ID        string  `json:"id"`
	Username  string  `json:"username"`
	Name      string  `json:"name"`
	Email     *string `json:"email,omitempty"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`
}

type LoginUser struct {
	ID               string `json:"id"`
	Username         string `json:"username"`
	Name             string `json:"name"`
	ProfileCreated   bool   `json:"profile_created"`
	ProfileCompleted bool   `json:"profile_completed"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt string    `json:"expiresAt"`
	User      LoginUser `json:"user"`
}

type ValidateResponse struct {
	Validate         bool `json:"validate"`
	ProfileCreated   bool `json:"profile_created"`
	ProfileCompleted bool `json:"profile_completed"`
}

type CurrentUserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	NewPassword string `json:"newPassword"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

const forgotPasswordMessage = "If an account with that email exists, a password reset link has been sent."

func toUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID.String(),
		Username:  user.Username,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: user.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Fail(w, "handlers.Register", domain.ErrInvalidRequestBody, h.legacy)
		return
	}

	user, err := h.authService.Register(r.Context(), service.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Name:     req.Name,
		Email:    req.Email,
	})
	if err != nil {
		httpx.Fail(w, "handlers.Register", err, h.legacy)
		return
	}

	httpx.JSON(w, http.StatusCreated, toUserResponse(user))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Fail(w, "handlers.Login", domain.ErrInvalidRequestBody, h.legacy)
		return
	}

	result, err := h.authService.Login(r.Context(), service.LoginInput{
		Username: req.Username,
		Password: req.Password,
		ClientInfo: map[string]interface{}{
			"userAgent":  r.UserAgent(),
			"remoteAddr": r.RemoteAddr,
		},
	})
	if err != nil {
		httpx.Fail(w, "handlers.Login", err, h.legacy)
		return
	}

	httpx.JSON(w, http.StatusOK, LoginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt.UTC().Format(time.RFC3339),
		User: LoginUser{
			ID:               result.User.ID.String(),
			Username:         result.User.Username,
			Name:             result.User.Name,
			ProfileCreated:   result.Profile.Created,
			ProfileCompleted: result.Profile.Completed,
		},
	})
}

// Validate answers the client's session bootstrap check with either false
// or the profile flags of the token's user.
func (h *AuthHandler) Validate(w http.ResponseWriter, r *http.Request) {
	result, err := h.authService.Validate(r.Context(), r.Header.Get(middleware.TokenHeader))
	if err != nil {
		httpx.Fail(w, "handlers.Validate", err, h.legacy)
		return
	}

	if !result.Valid {
		httpx.JSON(w, http.StatusOK, false)
		return
	}

	httpx.JSON(w, http.StatusOK, ValidateResponse{
		Validate:         true,
		ProfileCreated:   result.Profile.Created,
		ProfileCompleted: result.Profile.Completed,
	})
}

// User must run behind middleware.Auth.
func (h *AuthHandler) User(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		httpx.Unauthorized(w, domain.ErrMissingToken)
		return
	}

	user, err := h.authService.GetUserByID(r.Context(), userID)
	if err != nil {
		httpx.Fail(w, "handlers.User", err, h.legacy)
		return
	}

	httpx.JSON(w, http.StatusOK, CurrentUserResponse{
		ID:       user.ID.String(),
		Username: user.Username,
		Name:     user.Name,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		httpx.Unauthorized(w, domain.ErrMissingToken)
		return
	}

	if err := h.authService.Logout(r.Context(), principal.SessionID); err != nil {
		httpx.Fail(w, "handlers.Logout", err, h.legacy)
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Fail(w, "handlers.ForgotPassword", domain.ErrInvalidRequestBody, h.legacy)
		return
	}

	if err := h.authService.ForgotPassword(r.Context(), req.Email); err != nil {
		httpx.Fail(w, "handlers.ForgotPassword", err, h.legacy)
		return
	}

	httpx.JSON(w, http.StatusOK, MessageResponse{Message: forgotPasswordMessage})
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Fail(w, "handlers.ResetPassword", domain.ErrInvalidRequestBody, h.legacy)
		return
	}

	if err := h.authService.ResetPassword(r.Context(), chi.URLParam(r, "token"), req.NewPassword); err != nil {
		httpx.Fail(w, "handlers.ResetPassword", err, h.legacy)
		return
	}

	httpx.JSON(w, http.StatusOK, MessageResponse{Message: "Password reset successfully!"})
}
