package handlers_test

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/dom/fitgate/internal/config"
	"github.com/dom/fitgate/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthHandler_Register(t *testing.T) {
	ts := testutil.NewTestServer(t)
	testutil.NewUserBuilder().WithUsername("existing").Build(t, ts.DB.DB)

	tests := []struct {
		name           string
		request        map[string]string
		expectedStatus int
		wantMessage    string
		wantField      string
	}{
		{
			name:           "successful registration",
			request:        map[string]string{"username": "alice1", "password": "secret1", "name": "Alice"},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "missing fields",
			request:        map[string]string{"name": "Nobody"},
			expectedStatus: http.StatusBadRequest,
			wantMessage:    "Not all fields have been entered.",
		},
		{
			name:           "short password",
			request:        map[string]string{"username": "shorty", "password": "abc", "name": "Shorty"},
			expectedStatus: http.StatusBadRequest,
			wantMessage:    "Password must be between 6-25 characters",
			wantField:      "password",
		},
		{
			name:           "short username",
			request:        map[string]string{"username": "ab", "password": "secret1", "name": "Bob"},
			expectedStatus: http.StatusBadRequest,
			wantMessage:    "Username must be 4-15 characters.",
			wantField:      "username",
		},
		{
			name:           "duplicate username",
			request:        map[string]string{"username": "Existing", "password": "secret1", "name": "Dup"},
			expectedStatus: http.StatusConflict,
			wantMessage:    "An account with this username already exists.",
			wantField:      "username",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := testutil.PostJSON(t, ts.APIURL("/auth/register"), tt.request, "")
			defer resp.Body.Close()

			if tt.wantMessage != "" {
				testutil.AssertFailResponse(t, resp, tt.expectedStatus, tt.wantMessage, tt.wantField)
				return
			}

			testutil.AssertStatusCode(t, resp, tt.expectedStatus)
			var body map[string]interface{}
			testutil.AssertJSONResponse(t, resp, &body)
			assert.Equal(t, "alice1", body["username"])
			assert.NotEmpty(t, body["id"])
			assert.NotContains(t, body, "passwordHash")
			assert.NotContains(t, body, "password")
		})
	}
}

func TestAuthHandler_Register_InvalidBody(t *testing.T) {
	ts := testutil.NewTestServer(t)

	resp, err := http.Post(ts.APIURL("/auth/register"), "application/json", bytes.NewBufferString("{not json"))
	require.NoError(t, err)
	defer resp.Body.Close()

	testutil.AssertFailResponse(t, resp, http.StatusBadRequest, "Invalid request body", "")
}

func TestAuthHandler_LegacySoftFail(t *testing.T) {
	ts := testutil.NewTestServer(t, func(cfg *config.Config) { cfg.LegacySoftFail = true })

	resp := testutil.PostJSON(t, ts.APIURL("/auth/register"), map[string]string{
		"username": "ab", "password": "secret1", "name": "Bob",
	}, "")
	defer resp.Body.Close()
	testutil.AssertFailResponse(t, resp, http.StatusOK, "Username must be 4-15 characters.", "username")

	login := testutil.PostJSON(t, ts.APIURL("/auth/login"), map[string]string{
		"username": "nobody", "password": "secret1",
	}, "")
	defer login.Body.Close()
	testutil.AssertFailResponse(t, login, http.StatusOK, "Invalid credentials. Please try again.", "")
}

// Register, log in and validate the way the client bootstraps a session.
func TestAuthHandler_Scenario(t *testing.T) {
	ts := testutil.NewTestServer(t)

	resp := testutil.PostJSON(t, ts.APIURL("/auth/register"), map[string]string{
		"username": "alice1", "password": "secret1", "name": "Alice",
	}, "")
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = testutil.PostJSON(t, ts.APIURL("/auth/login"), map[string]string{
		"username": "alice1", "password": "secret1",
	}, "")
	defer resp.Body.Close()
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	var login testutil.LoginResponse
	testutil.AssertJSONResponse(t, resp, &login)
	require.NotEmpty(t, login.Token)
	assert.Equal(t, "alice1", login.User.Username)
	assert.False(t, login.User.ProfileCreated)

	validate := testutil.PostJSON(t, ts.APIURL("/auth/validate"), nil, login.Token)
	defer validate.Body.Close()
	var result map[string]interface{}
	testutil.AssertJSONResponse(t, validate, &result)
	assert.Equal(t, true, result["validate"])
	assert.Contains(t, result, "profile_created")
	assert.Contains(t, result, "profile_completed")

	corrupted := []byte(login.Token)
	i := len(corrupted) / 2
	if corrupted[i] == 'A' {
		corrupted[i] = 'B'
	} else {
		corrupted[i] = 'A'
	}
	bad := testutil.PostJSON(t, ts.APIURL("/auth/validate"), nil, string(corrupted))
	defer bad.Body.Close()
	testutil.AssertStatusCode(t, bad, http.StatusOK)
	assert.Equal(t, "false", testutil.ReadBody(t, bad))
}

func TestAuthHandler_Login_SameWording(t *testing.T) {
	ts := testutil.NewTestServer(t)
	testutil.NewUserBuilder().WithUsername("realuser").WithPassword("secret1").Build(t, ts.DB.DB)

	wrong := testutil.PostJSON(t, ts.APIURL("/auth/login"), map[string]string{"username": "realuser", "password": "nope123"}, "")
	defer wrong.Body.Close()
	unknown := testutil.PostJSON(t, ts.APIURL("/auth/login"), map[string]string{"username": "ghostuser", "password": "secret1"}, "")
	defer unknown.Body.Close()

	assert.Equal(t, wrong.StatusCode, unknown.StatusCode)
	assert.Equal(t, testutil.ReadBody(t, wrong), testutil.ReadBody(t, unknown))
}

func TestAuthHandler_Login_ReportsProfile(t *testing.T) {
	ts := testutil.NewTestServer(t)
	user, password := testutil.NewUserBuilder().Build(t, ts.DB.DB)
	ts.Fitness.SetProfile(user.ID, true, true)

	resp := testutil.PostJSON(t, ts.APIURL("/auth/login"), map[string]string{"username": user.Username, "password": password}, "")
	defer resp.Body.Close()

	var login testutil.LoginResponse
	testutil.AssertJSONResponse(t, resp, &login)
	assert.True(t, login.User.ProfileCreated)
	assert.True(t, login.User.ProfileCompleted)
}

// The fitness service only accepts ObjectId user ids; anything else is a 400
// that would surface as a 503 on every login.
func TestAuthHandler_Login_UsesObjectIDs(t *testing.T) {
	ts := testutil.NewTestServer(t)

	register := testutil.PostJSON(t, ts.APIURL("/auth/register"), map[string]string{
		"username": "alice1", "password": "pass1234", "name": "Alice",
	}, "")
	defer register.Body.Close()
	var created struct {
		ID string `json:"id"`
	}
	testutil.AssertJSONResponse(t, register, &created)
	assert.Regexp(t, `^[0-9a-f]{24}$`, created.ID)

	login := testutil.PostJSON(t, ts.APIURL("/auth/login"), map[string]string{"username": "alice1", "password": "pass1234"}, "")
	defer login.Body.Close()
	testutil.AssertStatusCode(t, login, http.StatusOK)

	last := ts.Fitness.LastRequest(t)
	assert.Equal(t, "check_profile_completion/"+created.ID, last.Path)
}

func TestAuthHandler_Login_FitnessRejectsUserID(t *testing.T) {
	ts := testutil.NewTestServer(t)
	user, password := testutil.NewUserBuilder().Build(t, ts.DB.DB)
	ts.Fitness.Respond(http.MethodGet, "check_profile_completion/"+user.ID.String(), http.StatusBadRequest,
		`{"message":"Invalid user id format"}`)

	resp := testutil.PostJSON(t, ts.APIURL("/auth/login"), map[string]string{"username": user.Username, "password": password}, "")
	defer resp.Body.Close()
	testutil.AssertFailResponse(t, resp, http.StatusServiceUnavailable, "Fitness service is unavailable", "")
}

func TestAuthHandler_FitnessServiceDown(t *testing.T) {
	ts := testutil.NewTestServer(t)
	_, token := testutil.NewUserBuilder().BuildAndLogin(t, ts)
	_, password := testutil.NewUserBuilder().WithUsername("second").Build(t, ts.DB.DB)

	ts.Fitness.SetDown(true)

	validate := testutil.PostJSON(t, ts.APIURL("/auth/validate"), nil, token)
	defer validate.Body.Close()
	testutil.AssertFailResponse(t, validate, http.StatusServiceUnavailable, "Fitness service is unavailable", "")

	login := testutil.PostJSON(t, ts.APIURL("/auth/login"), map[string]string{"username": "second", "password": password}, "")
	defer login.Body.Close()
	testutil.AssertFailResponse(t, login, http.StatusServiceUnavailable, "Fitness service is unavailable", "")
}

func TestAuthHandler_Validate_NoToken(t *testing.T) {
	ts := testutil.NewTestServer(t)

	resp := testutil.PostJSON(t, ts.APIURL("/auth/validate"), nil, "")
	defer resp.Body.Close()

	testutil.AssertStatusCode(t, resp, http.StatusOK)
	assert.Equal(t, "false", testutil.ReadBody(t, resp))
}

func TestAuthHandler_User(t *testing.T) {
	ts := testutil.NewTestServer(t)
	user, token := testutil.NewUserBuilder().WithUsername("meuser").WithName("Me User").BuildAndLogin(t, ts)

	tests := []struct {
		name           string
		token          string
		expectedStatus int
	}{
		{name: "valid token", token: token, expectedStatus: http.StatusOK},
		{name: "no token", token: "", expectedStatus: http.StatusUnauthorized},
		{name: "invalid token", token: "invalid-token", expectedStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := testutil.Get(t, ts.APIURL("/auth/user"), tt.token)
			defer resp.Body.Close()
			testutil.AssertStatusCode(t, resp, tt.expectedStatus)

			if tt.expectedStatus == http.StatusOK {
				var body map[string]string
				testutil.AssertJSONResponse(t, resp, &body)
				assert.Equal(t, map[string]string{
					"id":       user.ID.String(),
					"username": "meuser",
					"name":     "Me User",
				}, body)
			}
		})
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	ts := testutil.NewTestServer(t)
	_, token := testutil.NewUserBuilder().BuildAndLogin(t, ts)

	resp := testutil.PostJSON(t, ts.APIURL("/auth/logout"), nil, token)
	defer resp.Body.Close()
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	validate := testutil.PostJSON(t, ts.APIURL("/auth/validate"), nil, token)
	defer validate.Body.Close()
	assert.Equal(t, "false", testutil.ReadBody(t, validate))

	me := testutil.Get(t, ts.APIURL("/auth/user"), token)
	defer me.Body.Close()
	testutil.AssertStatusCode(t, me, http.StatusUnauthorized)
}

func TestAuthHandler_PasswordReset(t *testing.T) {
	ts := testutil.NewTestServer(t)
	user, _ := testutil.NewUserBuilder().WithEmail("reset@example.com").BuildAndLogin(t, ts)

	unknown := testutil.PostJSON(t, ts.APIURL("/auth/forgot-password"), map[string]string{"email": "nobody@example.com"}, "")
	defer unknown.Body.Close()
	known := testutil.PostJSON(t, ts.APIURL("/auth/forgot-password"), map[string]string{"email": "reset@example.com"}, "")
	defer known.Body.Close()

	testutil.AssertStatusCode(t, known, http.StatusOK)
	assert.Equal(t, testutil.ReadBody(t, unknown), testutil.ReadBody(t, known), "responses must not reveal accounts")

	sent := ts.Mailer.Sent()
	require.Len(t, sent, 1)
	token := testutil.ResetTokenFrom(t, sent[0])

	bad := testutil.PostJSON(t, ts.APIURL("/auth/reset-password/not-a-token"), map[string]string{"newPassword": "newsecret1"}, "")
	defer bad.Body.Close()
	testutil.AssertFailResponse(t, bad, http.StatusUnauthorized, "Invalid or expired token", "")

	ok := testutil.PostJSON(t, ts.APIURL("/auth/reset-password/"+token), map[string]string{"newPassword": "newsecret1"}, "")
	defer ok.Body.Close()
	testutil.AssertStatusCode(t, ok, http.StatusOK)

	login := testutil.PostJSON(t, ts.APIURL("/auth/login"), map[string]string{"username": user.Username, "password": "newsecret1"}, "")
	defer login.Body.Close()
	testutil.AssertStatusCode(t, login, http.StatusOK)
}
