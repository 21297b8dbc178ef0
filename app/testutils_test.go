package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/sushihentaime/blogsphere/internal/blogservice"
	"github.com/sushihentaime/blogsphere/internal/common"
	"github.com/sushihentaime/blogsphere/internal/userservice"
)

const testJWTSecret = "test-secret-that-is-long-enough-for-hs256"

type testServer struct {
	*httptest.Server
}

func newTestServer(t *testing.T, h http.Handler) *testServer {
	ts := httptest.NewServer(h)

	t.Cleanup(ts.Close)

	return &testServer{ts}
}

func readResponse(t *testing.T, res *http.Response) (int, http.Header, envelope) {
	defer res.Body.Close()

	responseBody, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatal(err)
	}

	var env envelope
	err = json.Unmarshal(responseBody, &env)
	if err != nil {
		t.Fatalf("could not decode %q: %v", responseBody, err)
	}

	return res.StatusCode, res.Header, env
}

func testConfig() *Config {
	return &Config{
		Port:        "4000",
		Environment: "testing",
		Version:     "1.0.0",
		JWTSecret:   testJWTSecret,
		JWTTTL:      time.Hour,
		CacheTTL:    time.Minute,
	}
}

// newBareApplication is enough for middleware that touches neither the store nor the broker.
func newBareApplication(cfg *Config) *application {
	return &application{
		config:  cfg,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics: newMetrics(),
		limiter: newIPLimiter(cfg.LimiterRPS, cfg.LimiterBurst),
	}
}

func newTestApplication(t *testing.T) (*application, *sql.DB) {
	db := common.TestDB(t)

	broker := common.TestBroker(t)

	cfg := testConfig()
	app := newBareApplication(cfg)

	cache := common.NewCache(cfg.CacheTTL, 2*cfg.CacheTTL)
	tokens := userservice.NewTokenMaker(cfg.JWTSecret, cfg.JWTTTL)

	app.broker = broker
	app.userService = userservice.NewUserService(db, broker, cache, tokens, app.logger)
	app.blogService = blogservice.NewBlogService(db, cache)

	return app, db
}

func (ts *testServer) do(t *testing.T, method, path, token string, payload any) (int, http.Header, envelope) {
	var body io.Reader
	if payload != nil {
		jsonPayload, err := json.Marshal(payload)
		if err != nil {
			t.Fatal(err)
		}
		body = bytes.NewReader(jsonPayload)
	}

	req, err := http.NewRequest(method, ts.URL+path, body)
	if err != nil {
		t.Fatal(err)
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}

	res, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}

	return readResponse(t, res)
}

func (ts *testServer) post(t *testing.T, path, token string, payload any) (int, http.Header, envelope) {
	return ts.do(t, http.MethodPost, path, token, payload)
}

func (ts *testServer) get(t *testing.T, path, token string) (int, http.Header, envelope) {
	return ts.do(t, http.MethodGet, path, token, nil)
}

func (ts *testServer) put(t *testing.T, path, token string, payload any) (int, http.Header, envelope) {
	return ts.do(t, http.MethodPut, path, token, payload)
}

func (ts *testServer) patch(t *testing.T, path, token string, payload any) (int, http.Header, envelope) {
	return ts.do(t, http.MethodPatch, path, token, payload)
}

func (ts *testServer) delete(t *testing.T, path, token string) (int, http.Header, envelope) {
	return ts.do(t, http.MethodDelete, path, token, nil)
}

// registerAndLogin signs a user up through the API and returns its id and access token.
func registerAndLogin(t *testing.T, ts *testServer, name, email, password string) (string, string) {
	status, _, body := ts.post(t, "/api/user/user-create", "", map[string]any{
		"name":     name,
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusCreated, status, body)

	id := body["data"].(map[string]any)["id"].(string)

	return id, login(t, ts, email, password)
}

func login(t *testing.T, ts *testServer, email, password string) string {
	status, _, body := ts.post(t, "/api/auth/login", "", map[string]any{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, status, body)

	return body["data"].(map[string]any)["accessToken"].(string)
}

// adminToken bootstraps the admin account and logs it in.
func adminToken(t *testing.T, app *application, ts *testServer) string {
	_, err := app.userService.EnsureAdmin(context.Background(), "Administrator", "admin@example.com", "admin-secret")
	require.NoError(t, err)

	return login(t, ts, "admin@example.com", "admin-secret")
}

func createBlog(t *testing.T, ts *testServer, token, slug string) map[string]any {
	status, _, body := ts.post(t, "/api/blogs", token, map[string]any{
		"title":   "A blog called " + slug,
		"content": "Some markdown content for " + slug,
		"slug":    slug,
	})
	require.Equal(t, http.StatusCreated, status, body)

	return body["data"].(map[string]any)
}
