package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/dom/fitgate/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// userPathRoutes take the user id as their last path segment.
var userPathRoutes = []string{
	"check_profile_completion/",
	"get_fitness_profile/",
	"edit_fitness_profile/",
	"delete_fitness_profile/",
	"calculate_nutritional_goals/",
	"retrieve_fitness_plan/",
}

// RecordedRequest is one call received by FakeFitnessAPI
type RecordedRequest struct {
	Method string
	Path   string
	Query  map[string]string
	Body   map[string]interface{}
}

type cannedResponse struct {
	status int
	body   string
}

// FakeFitnessAPI stands in for the fitness service. Profile completion is
// answered from per-user state; other paths echo the request unless a canned
// response was registered. Like the real service, any user id that is not an
// ObjectId is rejected with 400 "Invalid user id format".
type FakeFitnessAPI struct {
	server   *httptest.Server
	mu       sync.Mutex
	profiles map[domain.UserID][2]bool
	canned   map[string]cannedResponse
	requests []RecordedRequest
	down     bool
}

func NewFakeFitnessAPI(t *testing.T) *FakeFitnessAPI {
	t.Helper()

	f := &FakeFitnessAPI{
		profiles: make(map[domain.UserID][2]bool),
		canned:   make(map[string]cannedResponse),
	}
	f.server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.server.Close)
	return f
}

// URL is the base URL to configure as FITNESS_API_URL
func (f *FakeFitnessAPI) URL() string {
	return f.server.URL + "/v1/360_degree_fitness"
}

// SetProfile sets what check_profile_completion reports for userID
func (f *FakeFitnessAPI) SetProfile(userID domain.UserID, created, completed bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[userID] = [2]bool{created, completed}
}

// Respond registers a canned reply for "METHOD path", path relative to URL()
func (f *FakeFitnessAPI) Respond(method, path string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.canned[method+" "+strings.TrimLeft(path, "/")] = cannedResponse{status: status, body: body}
}

// SetDown makes every request fail at the transport level
func (f *FakeFitnessAPI) SetDown(down bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.down = down
}

// Requests returns the calls received so far
func (f *FakeFitnessAPI) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]RecordedRequest(nil), f.requests...)
}

// LastRequest returns the most recent call, failing the test if there is none
func (f *FakeFitnessAPI) LastRequest(t *testing.T) RecordedRequest {
	t.Helper()
	reqs := f.Requests()
	if len(reqs) == 0 {
		t.Fatal("fitness service received no requests")
	}
	return reqs[len(reqs)-1]
}

func (f *FakeFitnessAPI) serve(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/360_degree_fitness/")

	f.mu.Lock()
	down := f.down
	f.mu.Unlock()
	if down {
		hj, ok := w.(http.Hijacker)
		if ok {
			conn, _, err := hj.Hijack()
			if err == nil {
				conn.Close()
				return
			}
		}
		w.WriteHeader(http.StatusBadGateway)
		return
	}

	rec := RecordedRequest{
		Method: r.Method,
		Path:   path,
		Query:  map[string]string{},
	}
	for k := range r.URL.Query() {
		rec.Query[k] = r.URL.Query().Get(k)
	}
	if data, _ := io.ReadAll(r.Body); len(data) > 0 {
		json.Unmarshal(data, &rec.Body)
	}

	f.mu.Lock()
	f.requests = append(f.requests, rec)
	canned, hasCanned := f.canned[r.Method+" "+path]
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")

	if !hasValidUserIDs(path, rec) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"Invalid user id format"}`))
		return
	}

	if hasCanned {
		w.WriteHeader(canned.status)
		w.Write([]byte(canned.body))
		return
	}

	if r.Method == http.MethodGet && strings.HasPrefix(path, "check_profile_completion/") {
		id := domain.UserID(strings.TrimPrefix(path, "check_profile_completion/"))
		f.mu.Lock()
		state := f.profiles[id]
		f.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]bool{
			"profile_exists":   state[0],
			"profile_complete": state[1],
		})
		return
	}

	if r.Method == http.MethodPost && path == "chat" {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"response":        "echo: " + toString(rec.Body["message"]),
			"conversation_id": primitive.NewObjectID().Hex(),
		})
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"method": r.Method,
		"path":   path,
		"query":  rec.Query,
		"body":   rec.Body,
	})
}

func hasValidUserIDs(path string, rec RecordedRequest) bool {
	var ids []string
	for _, prefix := range userPathRoutes {
		if strings.HasPrefix(path, prefix) {
			ids = append(ids, strings.TrimPrefix(path, prefix))
		}
	}
	if v, ok := rec.Query["user_id"]; ok {
		ids = append(ids, v)
	}
	for _, key := range []string{"user_id", "_id"} {
		if v, ok := rec.Body[key]; ok {
			ids = append(ids, toString(v))
		}
	}
	for _, id := range ids {
		if _, err := primitive.ObjectIDFromHex(id); err != nil {
			return false
		}
	}
	return true
}

func toString(v interface{}) string {
	s, _ := v.(string)
	return s
}
