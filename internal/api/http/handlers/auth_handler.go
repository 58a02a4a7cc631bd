package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/nikobathrooms/niko-auth-gateway/internal/api/dto"
	"github.com/nikobathrooms/niko-auth-gateway/internal/auth"
	"github.com/nikobathrooms/niko-auth-gateway/internal/domain"
	"github.com/nikobathrooms/niko-auth-gateway/internal/redirect"
	"github.com/nikobathrooms/niko-auth-gateway/internal/session"
	"github.com/nikobathrooms/niko-auth-gateway/internal/supabase"
	"github.com/nikobathrooms/niko-auth-gateway/pkg/util"
)

// AuthHandler bridges the storefront's auth forms to the session store.
type AuthHandler struct {
	store    *session.Store
	provider *supabase.Client
	policy   *redirect.Policy
	logger   *zap.Logger
}

// NewAuthHandler constructs handler.
func NewAuthHandler(store *session.Store, provider *supabase.Client, policy *redirect.Policy, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{store: store, provider: provider, policy: policy, logger: logger}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return util.NewValidationError("email and password are required", nil)
	}

	sess, tokens, err := h.store.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return renderAuthError(err)
	}

	setSessionCookies(c, tokens)
	response := fiber.Map{
		"success": true,
		"message": "Login successful!",
		"data":    sessionPayload(sess),
	}
	if h.policy.ShouldRedirectAfterSubmit(req.CurrentPath, h.policy.TargetPath(sess.Role)) {
		response["redirect_url"] = h.policy.TargetURL(sess.Role, c.Hostname(), requestOrigin(c))
	}
	return c.JSON(response)
}

// Signup handles POST /auth/signup.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if req.ConfirmPassword != "" && req.Password != req.ConfirmPassword {
		return util.NewValidationError("passwords do not match", nil)
	}

	role := domain.DefaultRole
	if strings.TrimSpace(req.Role) != "" {
		parsed, ok := domain.ParseRole(req.Role)
		if !ok {
			return util.NewValidationError("role must be Customer or Retailer", nil)
		}
		role = parsed
	}

	sess, tokens, err := h.store.Register(c.UserContext(), req.Email, req.Password, req.Name, role)
	if err != nil {
		return renderAuthError(err)
	}

	setSessionCookies(c, tokens)
	response := fiber.Map{
		"success": true,
		"message": "Registration successful! Please check your email to confirm your account.",
		"data":    sessionPayload(sess),
	}
	if tokens != nil && h.policy.ShouldRedirectAfterSubmit(req.CurrentPath, h.policy.TargetPath(sess.Role)) {
		response["redirect_url"] = h.policy.TargetURL(sess.Role, c.Hostname(), requestOrigin(c))
	}
	return c.Status(http.StatusCreated).JSON(response)
}

// Logout handles POST /auth/logout. The session cookies are cleared even
// when the provider sign-out fails.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	principal, _ := auth.PrincipalFromContext(c)

	userID, email, token := "", "", auth.TokenFromRequest(c)
	if principal != nil {
		userID, email, token = principal.UserID, principal.Email, principal.AccessToken
	}

	if err := h.store.Logout(c.UserContext(), token, userID, email); err != nil {
		h.logger.Warn("provider sign-out failed", zap.Error(err))
	}
	clearSessionCookies(c)

	loginURL := h.policy.BaseURL(c.Hostname(), requestOrigin(c)) + h.policy.LoginPath()
	return c.JSON(fiber.Map{
		"success":      true,
		"message":      "Logout successful",
		"redirect_url": loginURL,
	})
}

// RecoverPassword handles POST /auth/password/recover.
func (h *AuthHandler) RecoverPassword(c *fiber.Ctx) error {
	var req dto.RecoverRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Email) == "" {
		return util.NewValidationError("email is required", nil)
	}

	if err := h.provider.Recover(c.UserContext(), req.Email); err != nil {
		return renderAuthError(err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Password recovery email sent. Please check your inbox.",
	})
}

// AuthEvent handles POST /hooks/auth, the provider's state-change stream.
func (h *AuthHandler) AuthEvent(c *fiber.Ctx) error {
	var req dto.AuthEventRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}

	var user *supabase.User
	if req.User != nil {
		user = &supabase.User{ID: req.User.ID, Email: req.User.Email, Metadata: req.User.UserMetadata}
	}

	if err := h.store.HandleProviderEvent(c.UserContext(), session.ProviderEventType(req.Type), user); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

// renderAuthError keeps the provider's literal message available while
// giving known phrases a friendlier rendering for the message region.
func renderAuthError(err error) error {
	domainErr := util.ToDomainError(err)
	if domainErr.Code != "AUTH_PROVIDER_ERROR" {
		return err
	}

	message := domainErr.Message
	friendly := ""
	switch {
	case strings.Contains(message, "Email not confirmed"):
		friendly = "Please check your email and click the confirmation link before logging in."
	case strings.Contains(message, "Invalid login credentials"):
		friendly = "Login failed. Please check your email and password and try again."
	}
	if friendly == "" {
		return err
	}

	details := map[string]any{"provider_message": message}
	return util.NewDomainError(domainErr.Code, friendly, domainErr.HTTPStatus, details)
}

func sessionPayload(sess domain.Session) dto.SessionPayload {
	return dto.SessionPayload{
		UserID:        sess.UserID,
		Email:         sess.Email,
		DisplayName:   sess.DisplayName,
		Role:          string(sess.Role),
		Authenticated: sess.Authenticated,
	}
}

func requestOrigin(c *fiber.Ctx) string {
	return c.Protocol() + "://" + c.Hostname()
}

func setSessionCookies(c *fiber.Ctx, tokens *supabase.TokenPair) {
	if tokens == nil {
		return
	}
	maxAge := tokens.ExpiresIn
	if maxAge <= 0 {
		maxAge = int(time.Hour.Seconds())
	}
	c.Cookie(&fiber.Cookie{
		Name:     auth.AccessTokenCookie,
		Value:    tokens.AccessToken,
		MaxAge:   maxAge,
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
	if tokens.RefreshToken != "" {
		c.Cookie(&fiber.Cookie{
			Name:     auth.RefreshTokenCookie,
			Value:    tokens.RefreshToken,
			MaxAge:   30 * 24 * 60 * 60,
			HTTPOnly: true,
			Secure:   true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Path:     "/",
		})
	}
}

func clearSessionCookies(c *fiber.Ctx) {
	for _, name := range []string{auth.AccessTokenCookie, auth.RefreshTokenCookie} {
		c.Cookie(&fiber.Cookie{
			Name:     name,
			Value:    "",
			MaxAge:   -1,
			HTTPOnly: true,
			Secure:   true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Path:     "/",
		})
	}
}
