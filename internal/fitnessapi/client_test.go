package fitnessapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/dom/fitgate/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_ProfileStatus(t *testing.T) {
	userID := domain.NewUserID()

	tests := []struct {
		name    string
		status  int
		body    string
		want    domain.ProfileStatus
		wantErr bool
	}{
		{
			name:   "complete profile",
			status: http.StatusOK,
			body:   `{"profile_exists": true, "profile_complete": true}`,
			want:   domain.ProfileStatus{Created: true, Completed: true},
		},
		{
			name:   "incomplete profile",
			status: http.StatusOK,
			body:   `{"profile_exists": true, "profile_complete": false}`,
			want:   domain.ProfileStatus{Created: true},
		},
		{
			name:   "no profile",
			status: http.StatusOK,
			body:   `{"profile_exists": false, "profile_complete": false}`,
			want:   domain.ProfileStatus{},
		},
		{
			name:    "upstream error status",
			status:  http.StatusInternalServerError,
			body:    `{"message": "Database error"}`,
			wantErr: true,
		},
		{
			name:    "non-json body",
			status:  http.StatusOK,
			body:    `<html>bad gateway</html>`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/v1/check_profile_completion/"+userID.String(), r.URL.Path)
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewClient(srv.URL+"/v1/", time.Second)
			got, err := client.ProfileStatus(context.Background(), userID)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
				assert.Equal(t, domain.KindDependency, domain.KindOf(err))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	client := NewClient(srv.URL, 50*time.Millisecond)
	_, err := client.ProfileStatus(context.Background(), domain.NewUserID())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close()

	client := NewClient(baseURL, time.Second)
	_, err := client.Get(context.Background(), "search_food/apple", nil)
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestClient_DoRelaysStatusAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/delete_weight_log", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "u-1", body["user_id"])

		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message": "Log not found"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	resp, err := client.Do(context.Background(), http.MethodDelete, "delete_weight_log", nil,
		map[string]interface{}{"user_id": "u-1", "date": "2025-03-01", "index": 0})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.False(t, resp.OK())
	assert.JSONEq(t, `{"message": "Log not found"}`, string(resp.Body))
}

func TestClient_EmptyBodyIsNull(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "food_id=42", r.URL.RawQuery)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	resp, err := client.Get(context.Background(), "getDetailsByFoodId", url.Values{"food_id": {"42"}})
	require.NoError(t, err)
	assert.Equal(t, "null", string(resp.Body))
}

func TestClient_Chat(t *testing.T) {
	userID := domain.NewUserID()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, userID.String(), req.UserID)
		assert.Equal(t, "how many calories in an apple?", req.Message)

		json.NewEncoder(w).Encode(ChatReply{Response: "About 95.", ConversationID: "c-1"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	reply, err := client.Chat(context.Background(), userID, "how many calories in an apple?")
	require.NoError(t, err)
	assert.Equal(t, "About 95.", reply.Response)
	assert.Equal(t, "c-1", reply.ConversationID)
}
