package main

import (
	"net/http"
	"testing"

	"github.com/dom/fitgate/internal/config"
	"github.com/dom/fitgate/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIClient_Flow(t *testing.T) {
	ts := testutil.NewTestServer(t)
	client := NewAPIClient(ts.BaseURL())

	user, err := client.Register("Alice1", "pass1234", "Alice", "")
	require.NoError(t, err)
	assert.Equal(t, "alice1", user.Username)

	login, err := client.Login("alice1", "pass1234")
	require.NoError(t, err)
	require.NotEmpty(t, login.Token)

	valid, err := client.Validate(login.Token)
	require.NoError(t, err)
	require.NotNil(t, valid)
	assert.True(t, valid.Validate)

	me, err := client.Me(login.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, me.ID)

	require.NoError(t, client.Logout(login.Token))

	valid, err = client.Validate(login.Token)
	require.NoError(t, err)
	assert.Nil(t, valid)
}

func TestAPIClient_Failures(t *testing.T) {
	tests := []struct {
		name       string
		legacy     bool
		wantStatus int
	}{
		{name: "status codes", wantStatus: http.StatusUnauthorized},
		{name: "legacy soft fail", legacy: true, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := testutil.NewTestServer(t, func(cfg *config.Config) {
				cfg.LegacySoftFail = tt.legacy
			})
			client := NewAPIClient(ts.BaseURL())

			_, err := client.Login("nobody", "pass1234")
			require.Error(t, err)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.wantStatus, apiErr.StatusCode)
			assert.Equal(t, "Invalid credentials. Please try again.", apiErr.Message)
		})
	}
}

func TestAPIClient_MeWithoutToken(t *testing.T) {
	ts := testutil.NewTestServer(t)
	client := NewAPIClient(ts.BaseURL())

	_, err := client.Me("")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}
