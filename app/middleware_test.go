package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sushihentaime/blogsphere/internal/userservice"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("OK"))
})

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) envelope {
	var env envelope
	err := json.Unmarshal(rr.Body.Bytes(), &env)
	require.NoError(t, err)
	return env
}

func TestRecoverPanic(t *testing.T) {
	app := newBareApplication(testConfig())

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("something went wrong")
	})

	rr := httptest.NewRecorder()
	app.recoverPanic(handler).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "close", rr.Header().Get("Connection"))

	env := decodeEnvelope(t, rr)
	assert.Equal(t, false, env["success"])
	assert.Equal(t, "internal", env["errorKind"])
	assert.NotContains(t, env["message"], "something went wrong")
}

func TestEnableCORS(t *testing.T) {
	cfg := testConfig()
	cfg.TrustedOrigins = []string{"http://localhost:3000"}
	app := newBareApplication(cfg)

	testCases := []struct {
		name          string
		method        string
		origin        string
		preflight     bool
		wantStatus    int
		wantOrigin    string
		wantMethods   string
		wantNextCalls bool
	}{
		{
			name:          "Trusted Origin",
			method:        http.MethodGet,
			origin:        "http://localhost:3000",
			wantStatus:    http.StatusOK,
			wantOrigin:    "http://localhost:3000",
			wantNextCalls: true,
		},
		{
			name:          "Untrusted Origin",
			method:        http.MethodGet,
			origin:        "http://evil.example.com",
			wantStatus:    http.StatusOK,
			wantNextCalls: true,
		},
		{
			name:        "Preflight",
			method:      http.MethodOptions,
			origin:      "http://localhost:3000",
			preflight:   true,
			wantStatus:  http.StatusOK,
			wantOrigin:  "http://localhost:3000",
			wantMethods: "OPTIONS, PUT, PATCH, DELETE",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
			})

			req := httptest.NewRequest(tc.method, "/", nil)
			req.Header.Set("Origin", tc.origin)
			if tc.preflight {
				req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
			}

			rr := httptest.NewRecorder()
			app.enableCORS(next).ServeHTTP(rr, req)

			assert.Equal(t, tc.wantStatus, rr.Code)
			assert.Equal(t, tc.wantOrigin, rr.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tc.wantMethods, rr.Header().Get("Access-Control-Allow-Methods"))
			assert.Equal(t, tc.wantNextCalls, called)
		})
	}
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.LimiterEnabled = true
	cfg.LimiterRPS = 0.001
	cfg.LimiterBurst = 2
	app := newBareApplication(cfg)

	handler := app.rateLimit(okHandler)

	send := func(addr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1:1234").Code)
	assert.Equal(t, http.StatusOK, send("10.0.0.1:5678").Code)

	rr := send("10.0.0.1:1234")
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "rate_limited", decodeEnvelope(t, rr)["errorKind"])

	// other clients keep their own bucket
	assert.Equal(t, http.StatusOK, send("10.0.0.2:1234").Code)

	t.Run("Disabled", func(t *testing.T) {
		app.config.LimiterEnabled = false
		for range 5 {
			assert.Equal(t, http.StatusOK, send("10.0.0.1:1234").Code)
		}
	})
}

func TestIPLimiterEvict(t *testing.T) {
	l := newIPLimiter(1, 1)
	l.allow("10.0.0.1")
	l.allow("10.0.0.2")

	l.clients["10.0.0.1"].lastSeen = time.Now().Add(-time.Hour)
	l.evict(limiterIdleTime)

	assert.NotContains(t, l.clients, "10.0.0.1")
	assert.Contains(t, l.clients, "10.0.0.2")
}

func TestRequirePermission(t *testing.T) {
	app := newBareApplication(testConfig())

	testCases := []struct {
		name       string
		user       *userservice.User
		permission userservice.Permission
		wantStatus int
	}{
		{
			name:       "Anonymous",
			user:       &userservice.AnonymousUser,
			permission: userservice.PermissionWriteBlog,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "User Writes Blog",
			user:       &userservice.User{ID: "u1", Role: userservice.RoleUser},
			permission: userservice.PermissionWriteBlog,
			wantStatus: http.StatusOK,
		},
		{
			name:       "User Manages Users",
			user:       &userservice.User{ID: "u1", Role: userservice.RoleUser},
			permission: userservice.PermissionManageUsers,
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "Admin Manages Users",
			user:       &userservice.User{ID: "a1", Role: userservice.RoleAdmin},
			permission: userservice.PermissionManageUsers,
			wantStatus: http.StatusOK,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req = app.contextSetUser(req, tc.user)

			rr := httptest.NewRecorder()
			app.requirePermission(okHandler, tc.permission).ServeHTTP(rr, req)

			assert.Equal(t, tc.wantStatus, rr.Code)
		})
	}
}

func TestAuthenticate(t *testing.T) {
	app, _ := newTestApplication(t)

	ctx := context.Background()

	user, err := app.userService.CreateUser(ctx, &userservice.CreateUserRequest{
		Name:     "testuser",
		Email:    "testuser@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	token, err := app.userService.LoginUser(ctx, &userservice.LoginRequest{Email: "testuser@example.com", Password: "secret123"})
	require.NoError(t, err)

	var seen *userservice.User
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = app.contextGetUser(r)
	})

	testCases := []struct {
		name       string
		header     string
		setup      func(t *testing.T)
		wantStatus int
		wantUserID string
		wantAnon   bool
	}{
		{
			name:       "No Header",
			wantStatus: http.StatusOK,
			wantAnon:   true,
		},
		{
			name:       "Wrong Scheme",
			header:     "Token " + token.AccessToken,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "Garbage Token",
			header:     "Bearer not.a.token",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "Valid Token",
			header:     "Bearer " + token.AccessToken,
			wantStatus: http.StatusOK,
			wantUserID: user.ID,
		},
		{
			name:   "Blocked User",
			header: "Bearer " + token.AccessToken,
			setup: func(t *testing.T) {
				_, err := app.userService.SetBlocked(ctx, user.ID, true)
				require.NoError(t, err)
			},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			seen = nil
			if tc.setup != nil {
				tc.setup(t)
			}

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}

			rr := httptest.NewRecorder()
			app.authenticate(next).ServeHTTP(rr, req)

			assert.Equal(t, tc.wantStatus, rr.Code)

			switch {
			case tc.wantStatus != http.StatusOK:
				assert.Nil(t, seen)
				assert.Equal(t, "authentication", decodeEnvelope(t, rr)["errorKind"])
			case tc.wantAnon:
				require.NotNil(t, seen)
				assert.True(t, seen.IsAnonymous())
			default:
				require.NotNil(t, seen)
				assert.Equal(t, tc.wantUserID, seen.ID)
			}
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	app := newBareApplication(testConfig())
	routes := app.routes()

	for range 2 {
		rr := httptest.NewRecorder()
		routes.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/healthcheck", nil))
		require.Equal(t, http.StatusOK, rr.Code)
	}

	rr := httptest.NewRecorder()
	routes.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	body, err := io.ReadAll(rr.Body)
	require.NoError(t, err)

	assert.True(t, strings.Contains(string(body), `blogsphere_http_requests_total{method="GET",status="200"} 2`), string(body))
	assert.Contains(t, string(body), "blogsphere_http_request_duration_seconds")
	assert.Contains(t, string(body), "go_goroutines")
}
