package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// FailBody matches the gateway's failure payload
type FailBody struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

// AssertStatusCode verifies the HTTP response status code
func AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	assert.Equal(t, expected, resp.StatusCode, "unexpected status code")
}

// AssertJSONResponse decodes JSON response into v
func AssertJSONResponse(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")

	err = json.Unmarshal(body, v)
	require.NoError(t, err, "failed to unmarshal response: %s", string(body))
}

// AssertFailResponse verifies a fail payload with expected status, message and field
func AssertFailResponse(t *testing.T, resp *http.Response, expectedStatus int, expectedMessage, expectedField string) {
	t.Helper()

	assert.Equal(t, expectedStatus, resp.StatusCode, "unexpected status code")

	var body FailBody
	AssertJSONResponse(t, resp, &body)
	assert.Equal(t, "fail", body.Status)
	assert.Equal(t, expectedMessage, body.Message, "error message mismatch")
	assert.Equal(t, expectedField, body.Type, "error field mismatch")
}

// ReadBody returns the raw response body
func ReadBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")
	return string(body)
}
