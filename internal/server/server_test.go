package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"momentum/internal/config"
	"momentum/internal/database"
	"momentum/internal/storage"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Details []string        `json:"details"`
	Stack   string          `json:"stack"`
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Port:                "0",
		Env:                 "test",
		JWTSecret:           "test-secret-that-is-long-enough-123",
		JWTExpireHours:      1,
		AllowedOrigins:      "http://localhost:5173",
		FeatureFlags:        "proof_required=on",
		UploadDir:           t.TempDir(),
		UploadMaxFileSizeMB: 1,
		UploadMaxFiles:      5,
	}
}

func newTestServer(t *testing.T, redisClient *redis.Client) (*Server, *fiber.App) {
	t.Helper()
	cfg := testConfig(t)

	db, err := database.Open(sqlite.Open(":memory:"))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() { _ = sqlDB.Close() })

	files, err := storage.NewLocalStore(cfg.UploadDir)
	require.NoError(t, err)

	srv := NewServerWithDeps(cfg, db, redisClient, files, nil)
	return srv, srv.App()
}

func doRequest(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, envelope) {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var env envelope
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp, env
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) (*http.Response, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	return doRequest(t, app, req)
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out), string(env.Data))
	return out
}

// register creates an account and returns its bearer token.
func register(t *testing.T, app *fiber.App, email string) string {
	t.Helper()
	resp, env := doJSON(t, app, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    email,
		"password": "secret123",
		"fullName": "Test User",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Message)
	return decode[AuthResponse](t, env).Token
}

func TestHealthEndpoints(t *testing.T) {
	_, app := newTestServer(t, nil)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var health map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "OK", health["status"])
	assert.Equal(t, "test", health["environment"])
	assert.NotEmpty(t, health["timestamp"])

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var ready struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ready))
	assert.Equal(t, "healthy", ready.Status)
	assert.Equal(t, "healthy", ready.Checks["database"])
	assert.Equal(t, "unavailable", ready.Checks["redis"])

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/health/live", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUnknownRoute(t *testing.T) {
	_, app := newTestServer(t, nil)

	for _, path := range []string{"/nope", "/api/nope"} {
		resp, env := doJSON(t, app, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
		assert.False(t, env.Success)
		assert.Equal(t, "Route not found", env.Message)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	_, app := newTestServer(t, nil)

	for _, path := range []string{"/api/projects", "/api/daily", "/api/weekly", "/api/jobs", "/api/jobs/stats", "/api/dashboard", "/api/auth/profile"} {
		resp, env := doJSON(t, app, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
		assert.Equal(t, "Access token required", env.Message, path)
	}

	resp, env := doJSON(t, app, http.MethodGet, "/api/projects", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid or expired token", env.Message)
}

func TestCORSPreflight(t *testing.T) {
	_, app := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/projects", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestAuthRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	_, app := newTestServer(t, client)

	creds := map[string]string{"email": "nobody@example.com", "password": "secret123"}
	for i := 0; i < 10; i++ {
		resp, _ := doJSON(t, app, http.MethodPost, "/api/auth/login", "", creds)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode, "attempt %d", i+1)
	}

	resp, env := doJSON(t, app, http.MethodPost, "/api/auth/login", "", creds)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "Too many requests, please try again later.", env.Message)
}

func TestMetricsEndpoint(t *testing.T) {
	_, app := newTestServer(t, nil)

	_, _ = doJSON(t, app, http.MethodGet, "/health", "", nil)
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
