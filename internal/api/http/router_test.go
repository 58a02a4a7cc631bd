package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	httptransport "github.com/nikobathrooms/niko-auth-gateway/internal/api/http"
	"github.com/nikobathrooms/niko-auth-gateway/internal/api/http/handlers"
	"github.com/nikobathrooms/niko-auth-gateway/internal/auth"
	"github.com/nikobathrooms/niko-auth-gateway/internal/cms"
	"github.com/nikobathrooms/niko-auth-gateway/internal/config"
	"github.com/nikobathrooms/niko-auth-gateway/internal/events"
	"github.com/nikobathrooms/niko-auth-gateway/internal/observability"
	"github.com/nikobathrooms/niko-auth-gateway/internal/redirect"
	"github.com/nikobathrooms/niko-auth-gateway/internal/service"
	"github.com/nikobathrooms/niko-auth-gateway/internal/session"
	"github.com/nikobathrooms/niko-auth-gateway/internal/supabase"
)

const (
	testJWTSecret   = "test-jwt-secret"
	testAdminKey    = "test-admin-key"
	testUserID      = "user-123"
	testUserEmail   = "alice@example.com"
	customerTarget  = "/dev/app/customer/dashboard"
	retailerTarget  = "/dev/app/retailer/dashboard"
	loginPagePath   = "/dev/app/auth/log-in"
	signupPagePath  = "/dev/app/auth/sign-up"
	defaultTestHost = "example.com"
)

// fixture wires the whole gateway against fake provider and relay servers.
type fixture struct {
	app         *fiber.App
	profileSync *service.ProfileSyncService

	mu              sync.Mutex
	loginOK         bool
	createCalls     []map[string]any
	wishlist        []string
	wishlistUpdates [][]string
	deleteCalls     int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{loginOK: true, wishlist: []string{}}

	backend := httptest.NewServer(http.HandlerFunc(f.serveBackend))
	t.Cleanup(backend.Close)

	supaCfg := config.SupabaseConfig{
		URL:              backend.URL,
		AnonKey:          "test-anon-key",
		JWTSecret:        testJWTSecret,
		RequestTimeoutMS: 2000,
	}
	routes := config.RouteConfig{
		Login:             loginPagePath,
		Signup:            signupPagePath,
		CustomerDashboard: customerTarget,
		RetailerDashboard: retailerTarget,
	}
	webflow := config.WebflowConfig{
		ProductionHost:   "nikobathrooms.ie",
		ProductionOrigin: "https://www.nikobathrooms.ie",
		StagingHost:      "nikobathrooms.webflow.io",
		StagingOrigin:    "https://nikobathrooms.webflow.io",
	}

	logger := zap.NewNop()
	metrics := observability.NewMetrics()

	provider := supabase.NewClient(supaCfg, logger)
	cmsClient := cms.NewClient(supaCfg, logger)

	dispatcher := events.NewInMemoryDispatcher()
	store := session.NewStore(provider, session.NewMemoryCache(), dispatcher, logger)
	policy := redirect.NewPolicy(routes, webflow)

	f.profileSync = service.NewProfileSyncService(dispatcher, cmsClient, logger)
	f.profileSync.RegisterHandlers()

	wishlist := service.NewWishlistService(cmsClient, logger)

	authMiddleware := auth.NewMiddleware(auth.NewTokenParser(testJWTSecret))

	f.app = fiber.New()
	httptransport.RegisterMiddlewares(f.app, logger, metrics, 10*time.Second)
	httptransport.RegisterRoutes(f.app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler("niko-auth-gateway-test", "test", nil, provider),
		Metrics:        handlers.NewMetricsHandler(metrics),
		Auth:           handlers.NewAuthHandler(store, provider, policy, logger),
		Session:        handlers.NewSessionHandler(store, policy),
		Gating:         handlers.NewGatingHandler(store, config.GatingConfig{FinsweetIntegration: true}),
		Wishlist:       handlers.NewWishlistHandler(wishlist),
		Admin:          handlers.NewAdminHandler(cmsClient, testAdminKey, logger),
		AuthMiddleware: authMiddleware,
	})
	return f
}

// serveBackend fakes both the auth provider REST API and the CMS relay
// functions behind one listener.
func (f *fixture) serveBackend(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.URL.Path == "/auth/v1/signup":
		var req struct {
			Email string         `json:"email"`
			Data  map[string]any `json:"data"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		writeJSON(w, http.StatusOK, map[string]any{
			"access_token":  "at-1",
			"refresh_token": "rt-1",
			"expires_in":    3600,
			"user": map[string]any{
				"id":            testUserID,
				"email":         req.Email,
				"user_metadata": req.Data,
			},
		})
	case strings.HasPrefix(r.URL.Path, "/auth/v1/token"):
		if !f.loginOK {
			writeJSON(w, http.StatusBadRequest, map[string]any{"msg": "Invalid login credentials"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"access_token":  "at-1",
			"refresh_token": "rt-1",
			"expires_in":    3600,
			"user": map[string]any{
				"id":            testUserID,
				"email":         testUserEmail,
				"user_metadata": map[string]any{"name": "Alice", "role": "Customer"},
			},
		})
	case r.URL.Path == "/auth/v1/user":
		writeJSON(w, http.StatusOK, map[string]any{
			"id":            testUserID,
			"email":         testUserEmail,
			"user_metadata": map[string]any{"name": "Alice", "role": "Customer"},
		})
	case r.URL.Path == "/auth/v1/logout":
		w.WriteHeader(http.StatusNoContent)
	case r.URL.Path == "/auth/v1/settings":
		writeJSON(w, http.StatusOK, map[string]any{})
	case r.URL.Path == "/functions/v1/create-webflow-user":
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.createCalls = append(f.createCalls, body)
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "webflow_id": "wf-1"})
	case r.URL.Path == "/functions/v1/get-webflow-user-by-firebase-uid":
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"user": map[string]any{
				"id": "wf-1",
				"fieldData": map[string]any{
					"name":              "Alice",
					"email":             testUserEmail,
					"firebase-uid":      testUserID,
					"user-type":         "Customer",
					"is-active":         true,
					"wishlist-products": f.wishlist,
				},
			},
		})
	case r.URL.Path == "/functions/v1/update-webflow-user-wishlist":
		var req struct {
			WishlistProducts []string `json:"wishlist_products"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.wishlistUpdates = append(f.wishlistUpdates, req.WishlistProducts)
		f.wishlist = req.WishlistProducts
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "wishlist_count": len(req.WishlistProducts)})
	case r.URL.Path == "/functions/v1/delete-webflow-user":
		f.deleteCalls++
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	default:
		writeJSON(w, http.StatusNotFound, map[string]any{"msg": "not found"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func mintAccessToken(t *testing.T) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":   testUserID,
		"email": testUserEmail,
		"user_metadata": map[string]any{
			"name": "Alice",
			"role": "Customer",
		},
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return token
}

func doJSON(t *testing.T, app *fiber.App, method, target string, body any, header map[string]string) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]any
	if len(raw) > 0 && strings.Contains(resp.Header.Get("Content-Type"), "json") {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func TestSignupRegistersAndSyncsProfile(t *testing.T) {
	f := newFixture(t)

	resp, body := doJSON(t, f.app, http.MethodPost, "/auth/signup", map[string]any{
		"name":             "Alice",
		"email":            testUserEmail,
		"password":         "secret123",
		"confirm_password": "secret123",
		"role":             "Customer",
	}, nil)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, true, body["success"])

	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, data["is_authenticated"])
	assert.Equal(t, "Customer", data["role"])
	assert.Equal(t, testUserID, data["user_id"])

	redirectURL, _ := body["redirect_url"].(string)
	assert.True(t, strings.HasSuffix(redirectURL, customerTarget), "got %q", redirectURL)

	var accessCookie *http.Cookie
	for _, cookie := range resp.Cookies() {
		if cookie.Name == auth.AccessTokenCookie {
			accessCookie = cookie
		}
	}
	require.NotNil(t, accessCookie)
	assert.Equal(t, "at-1", accessCookie.Value)
	assert.True(t, accessCookie.HttpOnly)

	f.profileSync.Wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.Len(t, f.createCalls, 1)
	assert.Equal(t, testUserID, f.createCalls[0]["user_id"])
	assert.Equal(t, testUserEmail, f.createCalls[0]["email"])
	assert.Equal(t, "Customer", f.createCalls[0]["user_type"])
}

func TestLoginWrongPassword(t *testing.T) {
	f := newFixture(t)
	f.loginOK = false

	resp, body := doJSON(t, f.app, http.MethodPost, "/auth/login", map[string]any{
		"email":    testUserEmail,
		"password": "wrong",
	}, nil)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, false, body["success"])
	assert.NotContains(t, body, "redirect_url")

	errBody, ok := body["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "AUTH_PROVIDER_ERROR", errBody["code"])
	assert.Contains(t, errBody["message"], "Login failed")

	details, ok := errBody["details"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Invalid login credentials", details["provider_message"])
}

func TestLoginSuccessRedirectsToDashboard(t *testing.T) {
	f := newFixture(t)

	resp, body := doJSON(t, f.app, http.MethodPost, "/auth/login", map[string]any{
		"email":    testUserEmail,
		"password": "secret123",
	}, nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	redirectURL, _ := body["redirect_url"].(string)
	assert.Equal(t, "http://"+defaultTestHost+customerTarget, redirectURL)
}

func TestLoginRedirectSuppressedOnTargetPage(t *testing.T) {
	f := newFixture(t)

	// submit from the dashboard itself: nowhere to go
	resp, body := doJSON(t, f.app, http.MethodPost, "/auth/login", map[string]any{
		"email":        testUserEmail,
		"password":     "secret123",
		"current_path": customerTarget,
	}, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.NotContains(t, body, "redirect_url")

	// submit from the login page: the whole point is to navigate away
	_, body = doJSON(t, f.app, http.MethodPost, "/auth/login", map[string]any{
		"email":        testUserEmail,
		"password":     "secret123",
		"current_path": loginPagePath,
	}, nil)
	assert.Equal(t, "http://"+defaultTestHost+customerTarget, body["redirect_url"])
}

func TestSignupRedirectSuppressedOnTargetPage(t *testing.T) {
	f := newFixture(t)

	resp, body := doJSON(t, f.app, http.MethodPost, "/auth/signup", map[string]any{
		"name":         "Alice",
		"email":        testUserEmail,
		"password":     "secret123",
		"role":         "Customer",
		"current_path": customerTarget,
	}, nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotContains(t, body, "redirect_url")
	f.profileSync.Wait()
}

func TestLoginValidation(t *testing.T) {
	f := newFixture(t)

	resp, body := doJSON(t, f.app, http.MethodPost, "/auth/login", map[string]any{
		"email": testUserEmail,
	}, nil)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	errBody, ok := body["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "VALIDATION_FAILED", errBody["code"])
}

func TestSessionRedirectSuggestion(t *testing.T) {
	f := newFixture(t)
	token := mintAccessToken(t)
	authHeader := map[string]string{"Authorization": "Bearer " + token}

	// ordinary page: redirect suggested
	_, body := doJSON(t, f.app, http.MethodGet, "/api/session?current_path=/products", nil, authHeader)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]any)
	assert.Equal(t, true, data["is_authenticated"])
	assert.Equal(t, "http://"+defaultTestHost+customerTarget, body["redirect_url"])

	// already on the dashboard: no redirect
	_, body = doJSON(t, f.app, http.MethodGet, "/api/session?current_path="+customerTarget, nil, authHeader)
	assert.NotContains(t, body, "redirect_url")

	// auth page: no redirect either
	_, body = doJSON(t, f.app, http.MethodGet, "/api/session?current_path="+loginPagePath, nil, authHeader)
	assert.NotContains(t, body, "redirect_url")
}

func TestSessionGuest(t *testing.T) {
	f := newFixture(t)

	_, body := doJSON(t, f.app, http.MethodGet, "/api/session?current_path=/products", nil, nil)
	data := body["data"].(map[string]any)
	assert.Equal(t, false, data["is_authenticated"])
	assert.NotContains(t, body, "redirect_url")

	_, body = doJSON(t, f.app, http.MethodGet, "/api/session/authenticated", nil, nil)
	assert.Equal(t, false, body["is_authenticated"])

	_, body = doJSON(t, f.app, http.MethodGet, "/api/session/role", nil, nil)
	assert.Equal(t, "", body["role"])
}

func TestGatingStateAndCSS(t *testing.T) {
	f := newFixture(t)

	_, body := doJSON(t, f.app, http.MethodGet, "/gating/state", nil, nil)
	assert.Equal(t, true, body["finsweet_enabled"])
	assert.Equal(t, "niko-data", body["attribute"])
	assert.Equal(t, "niko-content-gating-css", body["style_element_id"])
	rules := body["rules"].(map[string]any)
	assert.Equal(t, false, rules["authenticated"])

	req := httptest.NewRequest(http.MethodGet, "/gating/css", nil)
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	css := string(raw)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/css")
	assert.Contains(t, css, `[niko-data*="guest-only"] { display: initial !important; }`)
	assert.Contains(t, css, `[niko-data*="authenticated-only"] { display: none !important; }`)

	// authenticated customer flips the scopes
	token := mintAccessToken(t)
	req = httptest.NewRequest(http.MethodGet, "/gating/css", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = f.app.Test(req, -1)
	require.NoError(t, err)
	raw, err = io.ReadAll(resp.Body)
	require.NoError(t, err)
	css = string(raw)
	assert.Contains(t, css, `[niko-data*="customer"] { display: initial !important; }`)
	assert.Contains(t, css, `[niko-data*="retailer"] { display: none !important; }`)
	assert.Contains(t, css, `[niko-data*="guest-only"] { display: none !important; }`)
}

func TestWishlistFlow(t *testing.T) {
	f := newFixture(t)
	token := mintAccessToken(t)
	authHeader := map[string]string{"Authorization": "Bearer " + token}

	resp, body := doJSON(t, f.app, http.MethodGet, "/api/wishlist/", nil, authHeader)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), body["count"])

	_, body = doJSON(t, f.app, http.MethodPost, "/api/wishlist/add", map[string]any{"product_id": "p1"}, authHeader)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(1), body["count"])

	f.mu.Lock()
	require.Len(t, f.wishlistUpdates, 1)
	assert.Equal(t, []string{"p1"}, f.wishlistUpdates[0])
	f.mu.Unlock()

	_, body = doJSON(t, f.app, http.MethodPost, "/api/wishlist/remove", map[string]any{"product_id": "p1"}, authHeader)
	assert.Equal(t, float64(0), body["count"])
}

func TestWishlistRequiresAuth(t *testing.T) {
	f := newFixture(t)

	resp, body := doJSON(t, f.app, http.MethodGet, "/api/wishlist/", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, false, body["success"])
}

func TestLogoutClearsCookies(t *testing.T) {
	f := newFixture(t)
	token := mintAccessToken(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: auth.AccessTokenCookie, Value: token})
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, true, body["success"])
	redirectURL, _ := body["redirect_url"].(string)
	assert.True(t, strings.HasSuffix(redirectURL, loginPagePath), "got %q", redirectURL)

	cleared := false
	for _, cookie := range resp.Cookies() {
		if cookie.Name == auth.AccessTokenCookie && cookie.Value == "" {
			cleared = true
		}
	}
	assert.True(t, cleared, "access token cookie should be cleared")
}

func TestAuthEventWebhook(t *testing.T) {
	f := newFixture(t)

	resp, body := doJSON(t, f.app, http.MethodPost, "/hooks/auth", map[string]any{
		"type": "SIGNED_IN",
		"user": map[string]any{
			"id":            testUserID,
			"email":         testUserEmail,
			"user_metadata": map[string]any{"name": "Alice", "role": "Customer"},
		},
	}, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])

	resp, body = doJSON(t, f.app, http.MethodPost, "/hooks/auth", map[string]any{
		"type": "SOMETHING_ELSE",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, false, body["success"])
}

func TestAdminDeleteProfileGuard(t *testing.T) {
	f := newFixture(t)

	resp, _ := doJSON(t, f.app, http.MethodDelete, "/admin/profiles/"+testUserID+"?role=Customer", nil, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := doJSON(t, f.app, http.MethodDelete, "/admin/profiles/"+testUserID+"?role=Customer", nil,
		map[string]string{"X-Admin-Service-Key": testAdminKey})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])

	f.mu.Lock()
	defer f.mu.Unlock()
	assert.Equal(t, 1, f.deleteCalls)
}

func TestHealthLive(t *testing.T) {
	f := newFixture(t)

	resp, body := doJSON(t, f.app, http.MethodGet, "/health/live", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "alive", body["status"])
}

func TestMetricsCounters(t *testing.T) {
	f := newFixture(t)

	_, _ = doJSON(t, f.app, http.MethodGet, "/health/live", nil, nil)

	resp, body := doJSON(t, f.app, http.MethodGet, "/metrics", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	requests, ok := body["requests"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(1), requests["/health/live|GET|200"])
}
