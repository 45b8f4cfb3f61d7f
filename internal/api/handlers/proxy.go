package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/dom/fitgate/internal/api/httpx"
	"github.com/dom/fitgate/internal/api/middleware"
	"github.com/dom/fitgate/internal/domain"
	"github.com/dom/fitgate/internal/fitnessapi"
)

// fitnessProxy forwards authenticated requests to the fitness service on
// behalf of the token's user.
type fitnessProxy struct {
	client *fitnessapi.Client
	legacy bool
}

func (p *fitnessProxy) userID(w http.ResponseWriter, r *http.Request) (domain.UserID, bool) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		httpx.Unauthorized(w, domain.ErrMissingToken)
		return "", false
	}
	return userID, true
}

// decodeObject reads a JSON object body. An empty body yields an empty map.
func (p *fitnessProxy) decodeObject(w http.ResponseWriter, r *http.Request, op string) (map[string]interface{}, bool) {
	body := map[string]interface{}{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		httpx.Fail(w, op, domain.ErrInvalidRequestBody, p.legacy)
		return nil, false
	}
	if body == nil {
		body = map[string]interface{}{}
	}
	return body, true
}

// forward sends one upstream request and relays its status and body.
func (p *fitnessProxy) forward(w http.ResponseWriter, r *http.Request, op, method, path string, query url.Values, body interface{}) {
	resp, err := p.client.Do(r.Context(), method, path, query, body)
	if err != nil {
		httpx.Fail(w, op, err, p.legacy)
		return
	}
	httpx.RawJSON(w, resp.StatusCode, resp.Body)
}

// forwardWithUser merges the caller's user id into the JSON body under key,
// overriding anything the client sent there.
func (p *fitnessProxy) forwardWithUser(w http.ResponseWriter, r *http.Request, op, method, path, key string) {
	userID, ok := p.userID(w, r)
	if !ok {
		return
	}
	body, ok := p.decodeObject(w, r, op)
	if !ok {
		return
	}
	body[key] = userID.String()
	p.forward(w, r, op, method, path, nil, body)
}

// forwardUserQuery sends a GET with user_id plus one optional client query
// parameter renamed for the fitness service.
func (p *fitnessProxy) forwardUserQuery(w http.ResponseWriter, r *http.Request, op, path, clientParam, upstreamParam string) {
	userID, ok := p.userID(w, r)
	if !ok {
		return
	}
	query := url.Values{"user_id": {userID.String()}}
	if clientParam != "" {
		if v := r.URL.Query().Get(clientParam); v != "" {
			query.Set(upstreamParam, v)
		}
	}
	p.forward(w, r, op, http.MethodGet, path, query, nil)
}
