package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/nikobathrooms/niko-auth-gateway/internal/config"
	"github.com/nikobathrooms/niko-auth-gateway/pkg/util"
)

// Client talks to the Supabase Auth (GoTrue) REST API. All credential and
// token state stays with the provider; the client only relays calls.
type Client struct {
	baseURL string
	anonKey string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient builds a provider client from configuration.
func NewClient(cfg config.SupabaseConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		anonKey: cfg.AnonKey,
		http:    &http.Client{Timeout: cfg.RequestTimeout()},
		logger:  logger,
	}
}

// SignUp registers a new user. Metadata carries the display name and role
// claims the storefront resolves on later visits.
func (c *Client) SignUp(ctx context.Context, email, password string, metadata map[string]any) (*AuthResult, error) {
	body := signUpRequest{Email: email, Password: password, Data: metadata}
	return c.authCall(ctx, "/auth/v1/signup", body, "")
}

// SignInWithPassword performs the password grant.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*AuthResult, error) {
	body := passwordGrantRequest{Email: email, Password: password}
	return c.authCall(ctx, "/auth/v1/token?grant_type=password", body, "")
}

// SignOut revokes the session behind the given access token.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	resp, err := c.do(ctx, http.MethodPost, "/auth/v1/logout", nil, accessToken)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return c.providerError(resp)
	}
	return nil
}

// GetUser fetches the principal behind an access token.
func (c *Client) GetUser(ctx context.Context, accessToken string) (*User, error) {
	resp, err := c.do(ctx, http.MethodGet, "/auth/v1/user", nil, accessToken)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, c.providerError(resp)
	}

	var user User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, util.NewAuthProviderError("malformed provider response", http.StatusBadGateway, err)
	}
	return &user, nil
}

// Recover asks the provider to send a password recovery email.
func (c *Client) Recover(ctx context.Context, email string) error {
	resp, err := c.do(ctx, http.MethodPost, "/auth/v1/recover", recoverRequest{Email: email}, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return c.providerError(resp)
	}
	return nil
}

// Ping verifies provider reachability for readiness checks.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/auth/v1/settings", nil, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("auth provider returned %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) authCall(ctx context.Context, path string, body any, accessToken string) (*AuthResult, error) {
	resp, err := c.do(ctx, http.MethodPost, path, body, accessToken)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, c.providerError(resp)
	}

	var session sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, util.NewAuthProviderError("malformed provider response", http.StatusBadGateway, err)
	}

	result := &AuthResult{User: session.User}
	if session.AccessToken != "" {
		result.Tokens = &TokenPair{
			AccessToken:  session.AccessToken,
			RefreshToken: session.RefreshToken,
			ExpiresIn:    session.ExpiresIn,
		}
	}
	if result.User == nil && session.ID != "" {
		user := &User{ID: session.ID, Email: session.Email}
		if len(session.Metadata) > 0 {
			_ = json.Unmarshal(session.Metadata, &user.Metadata)
		}
		result.User = user
	}
	if result.User == nil {
		return nil, util.NewAuthProviderError("provider response carried no user", http.StatusBadGateway, nil)
	}
	return result, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, accessToken string) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, util.NewInternalError(err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, util.NewInternalError(err)
	}
	req.Header.Set("apikey", c.anonKey)
	if accessToken == "" {
		accessToken = c.anonKey
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, util.NewAuthProviderError("auth provider unreachable", http.StatusBadGateway, err)
	}
	return resp, nil
}

// providerError surfaces the provider's literal message so the form layer
// can special-case known phrases without reclassifying the error.
func (c *Client) providerError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))

	var parsed errorResponse
	message := ""
	if err := json.Unmarshal(raw, &parsed); err == nil {
		message = parsed.text()
	}
	if message == "" {
		message = strings.TrimSpace(string(raw))
	}
	if message == "" {
		message = resp.Status
	}

	c.logger.Debug("auth provider error",
		zap.Int("status", resp.StatusCode),
		zap.String("message", message))
	return util.NewAuthProviderError(message, resp.StatusCode, nil)
}
