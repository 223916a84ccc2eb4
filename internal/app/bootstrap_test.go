package app

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/steinfletcher/apitest"
	jsonpath "github.com/steinfletcher/apitest-jsonpath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"numgate/internal/observability"
)

func testConfig() Config {
	return Config{
		JWTSecret:      "test-secret-test-secret-test-secret",
		Port:           "0",
		Environment:    "test",
		LogLevel:       "disabled",
		BcryptCost:     4,
		AccessTokenTTL: 30 * time.Minute,
		MetricsEnabled: true,
	}
}

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	runtime, err := New(testConfig())
	require.NoError(t, err)
	return runtime.Handler
}

func register(t *testing.T, h http.Handler, username, password string) {
	t.Helper()
	apitest.New().
		Handler(h).
		Post("/register").
		JSON(`{"username":"` + username + `","password":"` + password + `"}`).
		Expect(t).
		Status(http.StatusOK).
		End()
}

func login(t *testing.T, h http.Handler, username, password string) string {
	t.Helper()
	body := strings.NewReader(`{"username":"` + username + `","password":"` + password + `"}`)
	req := httptest.NewRequest(http.MethodPost, "/login", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	require.NotEmpty(t, out.AccessToken)
	return out.AccessToken
}

func TestRegisterAndLogin(t *testing.T) {
	h := newTestHandler(t)

	apitest.New().
		Handler(h).
		Post("/register").
		JSON(`{"username":"alice","password":"pw1"}`).
		Expect(t).
		Body(`{"message":"User registered successfully"}`).
		Status(http.StatusOK).
		End()

	apitest.New().
		Handler(h).
		Post("/register").
		JSON(`{"username":"alice","password":"pw2"}`).
		Expect(t).
		Body(`{"error":"username already exists"}`).
		Status(http.StatusBadRequest).
		End()

	apitest.New().
		Handler(h).
		Post("/login").
		JSON(`{"username":"alice","password":"pw1"}`).
		Expect(t).
		Assert(jsonpath.Present("$.access_token")).
		Assert(jsonpath.Equal("$.token_type", "Bearer")).
		Status(http.StatusOK).
		End()

	apitest.New().
		Handler(h).
		Post("/login").
		JSON(`{"username":"alice","password":"wrong"}`).
		Expect(t).
		Body(`{"error":"invalid credentials"}`).
		Status(http.StatusUnauthorized).
		End()

	apitest.New().
		Handler(h).
		Post("/login").
		JSON(`{"username":"nobody","password":"pw1"}`).
		Expect(t).
		Body(`{"error":"invalid credentials"}`).
		Status(http.StatusUnauthorized).
		End()
}

func TestProtectedOperations(t *testing.T) {
	h := newTestHandler(t)
	register(t, h, "alice", "pw1")
	token := login(t, h, "alice", "pw1")

	cases := []struct {
		path string
		body string
		want string
	}{
		{path: "/sort", body: `{"numbers":[3,2,1]}`, want: `{"numbers":[1,2,3]}`},
		{path: "/sort", body: `{"numbers":[5,3,8,6,1,9]}`, want: `{"numbers":[1,3,5,6,8,9]}`},
		{path: "/sum-elements", body: `{"numbers":[1,2,3,4,5]}`, want: `{"sum":15}`},
		{path: "/max-value", body: `{"numbers":[1,2,3,4,5]}`, want: `{"max":5}`},
		{path: "/bubble-sort", body: `{"numbers":[5,3,8,6,1,9]}`, want: `{"numbers":[1,3,5,6,8,9]}`},
		{path: "/filter-even", body: `{"numbers":[5,3,8,6,1,9]}`, want: `{"even_numbers":[8,6]}`},
		{path: "/sum-elements", body: `{"numbers":[5,3,8,6,1,9]}`, want: `{"sum":32}`},
		{path: "/max-value", body: `{"numbers":[5,3,8,6,1,9]}`, want: `{"max":9}`},
		{path: "/binary-search", body: `{"numbers":[1,2,3,4,5],"target":3}`, want: `{"found":true,"index":2}`},
		{path: "/binary-search", body: `{"numbers":[1,2,3,4,5],"target":6}`, want: `{"found":false,"index":-1}`},
	}

	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			apitest.New().
				Handler(h).
				Post(tc.path).
				Query("token", token).
				JSON(tc.body).
				Expect(t).
				Body(tc.want).
				Status(http.StatusOK).
				End()
		})
	}
}

func TestProtectedOperationsAcceptBearerHeader(t *testing.T) {
	h := newTestHandler(t)
	register(t, h, "alice", "pw1")
	token := login(t, h, "alice", "pw1")

	apitest.New().
		Handler(h).
		Post("/sum-elements").
		Header("Authorization", "Bearer "+token).
		JSON(`{"numbers":[1,2,3]}`).
		Expect(t).
		Body(`{"sum":6}`).
		Status(http.StatusOK).
		End()
}

func TestProtectedOperationsRejectUnauthenticated(t *testing.T) {
	h := newTestHandler(t)

	for _, path := range []string{"/sort", "/bubble-sort", "/filter-even", "/sum-elements", "/max-value", "/binary-search"} {
		t.Run(path, func(t *testing.T) {
			apitest.New().
				Handler(h).
				Post(path).
				JSON(`{"numbers":[1,2,3],"target":1}`).
				Expect(t).
				Body(`{"error":"missing token"}`).
				Status(http.StatusUnauthorized).
				End()

			apitest.New().
				Handler(h).
				Post(path).
				Query("token", "bad_token").
				JSON(`{"numbers":[1,2,3],"target":1}`).
				Expect(t).
				Body(`{"error":"invalid or expired token"}`).
				Status(http.StatusUnauthorized).
				End()
		})
	}
}

func TestTokensFromAnotherSecretAreRejected(t *testing.T) {
	h := newTestHandler(t)

	otherCfg := testConfig()
	otherCfg.JWTSecret = "another-secret-another-secret-xyz"
	other, err := New(otherCfg)
	require.NoError(t, err)
	register(t, other.Handler, "alice", "pw1")
	foreign := login(t, other.Handler, "alice", "pw1")

	apitest.New().
		Handler(h).
		Post("/sort").
		Query("token", foreign).
		JSON(`{"numbers":[2,1]}`).
		Expect(t).
		Status(http.StatusUnauthorized).
		End()
}

func TestMaxValueOfEmptyList(t *testing.T) {
	h := newTestHandler(t)
	register(t, h, "alice", "pw1")
	token := login(t, h, "alice", "pw1")

	apitest.New().
		Handler(h).
		Post("/max-value").
		Query("token", token).
		JSON(`{"numbers":[]}`).
		Expect(t).
		Body(`{"error":"numbers must not be empty"}`).
		Status(http.StatusBadRequest).
		End()
}

func TestHealthAndMetrics(t *testing.T) {
	h := newTestHandler(t)

	apitest.New().
		Handler(h).
		Get("/health").
		Expect(t).
		Assert(jsonpath.Equal("$.status", "ok")).
		Status(http.StatusOK).
		End()

	apitest.New().
		Handler(h).
		Post("/sort").
		Expect(t).
		Status(http.StatusUnauthorized).
		End()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `numgate_auth_rejections_total{reason="missing_token"} 1`)
	require.Contains(t, rec.Body.String(), `numgate_http_requests_total{method="GET",route="GET /health",status="200"} 1`)
}

func TestMetricsCanBeDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.MetricsEnabled = false
	runtime, err := New(cfg)
	require.NoError(t, err)

	apitest.New().
		Handler(runtime.Handler).
		Get("/metrics").
		Expect(t).
		Status(http.StatusNotFound).
		End()
}

func TestResponsesCarryRequestID(t *testing.T) {
	h := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestAdminBootstrap(t *testing.T) {
	cfg := testConfig()
	cfg.AdminUsername = "root"
	cfg.AdminPassword = "root-password"
	runtime, err := New(cfg)
	require.NoError(t, err)

	login(t, runtime.Handler, "root", "root-password")

	cfg.AdminPassword = ""
	_, err = New(cfg)
	require.Error(t, err)
}

func TestNewRejectsWeakSecret(t *testing.T) {
	cfg := testConfig()
	cfg.JWTSecret = "short"
	_, err := New(cfg)
	require.Error(t, err)
}

func TestRejectionsAreLoggedAsWarnings(t *testing.T) {
	var buf bytes.Buffer
	runtime, err := newRuntime(testConfig(), observability.NewLoggerWithWriter(&buf, "warn"))
	require.NoError(t, err)

	apitest.New().
		Handler(runtime.Handler).
		Post("/sort").
		Query("token", "bad_token").
		JSON(`{"numbers":[2,1]}`).
		Expect(t).
		Status(http.StatusUnauthorized).
		End()

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "auth_rejected", entry["message"])
	assert.Equal(t, "auth", entry["component"])
	assert.Equal(t, "invalid_token", entry["reason"])
	assert.NotContains(t, buf.String(), "bad_token")
}
