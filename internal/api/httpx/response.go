// Package httpx renders JSON success and failure bodies consistently for
// every handler and middleware.
package httpx

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/dom/fitgate/internal/domain"
)

// FailResponse is the body of every failed request. Status is always "fail"
// so clients can branch on it regardless of the HTTP status code.
type FailResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Type    string `json:"type,omitempty"`
}

func JSON(w http.ResponseWriter, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("ERROR [httpx.JSON] failed to encode response: %v", err)
		http.Error(w, `{"status":"fail","message":"encode_error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

// RawJSON writes a body that is already encoded JSON.
func RawJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

// StatusFor maps an error kind to an HTTP status. In legacy mode the
// caller-correctable kinds are reported with 200.
func StatusFor(kind domain.Kind, legacySoftFail bool) int {
	switch kind {
	case domain.KindValidation, domain.KindConflict, domain.KindAuth:
		if legacySoftFail {
			return http.StatusOK
		}
		switch kind {
		case domain.KindValidation:
			return http.StatusBadRequest
		case domain.KindConflict:
			return http.StatusConflict
		default:
			return http.StatusUnauthorized
		}
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindDependency:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Fail renders err as a FailResponse. Internal errors never leak their text.
func Fail(w http.ResponseWriter, op string, err error, legacySoftFail bool) {
	kind := domain.KindOf(err)
	resp := FailResponse{Status: "fail", Message: "Internal server error"}

	if de := asDomainError(err); de != nil {
		resp.Message = de.Message
		resp.Type = de.Field
	}

	switch kind {
	case domain.KindDependency, domain.KindInternal:
		log.Printf("ERROR [%s] %v", op, err)
	}

	JSON(w, StatusFor(kind, legacySoftFail), resp)
}

// Unauthorized always answers 401; route guards do not follow legacy mode.
func Unauthorized(w http.ResponseWriter, err error) {
	resp := FailResponse{Status: "fail", Message: "Unauthorized"}
	if de := asDomainError(err); de != nil {
		resp.Message = de.Message
	}
	JSON(w, http.StatusUnauthorized, resp)
}
