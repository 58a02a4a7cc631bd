package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/nikobathrooms/niko-auth-gateway/internal/domain"
	apperrors "github.com/nikobathrooms/niko-auth-gateway/pkg/util"
)

const principalKey = "auth_principal"

// AccessTokenCookie is the cookie the gateway sets after login so page
// loads and API calls authenticate without re-sending credentials.
const AccessTokenCookie = "niko_access_token"

// RefreshTokenCookie holds the provider refresh token.
const RefreshTokenCookie = "niko_refresh_token"

// Principal represents the authenticated caller as read from the access
// token. Fresh role/identity state comes from the session store when a
// handler needs it verified.
type Principal struct {
	UserID      string
	Email       string
	DisplayName string
	Role        domain.Role
	Metadata    map[string]any
	AccessToken string
}

// Middleware validates provider-issued bearer tokens and loads principals.
type Middleware struct {
	tokens *TokenParser
}

// NewMiddleware constructs middleware.
func NewMiddleware(tokens *TokenParser) *Middleware {
	return &Middleware{tokens: tokens}
}

// Handle enforces authentication for protected routes.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	token := TokenFromRequest(c)
	if token == "" {
		return apperrors.NewUnauthorized("missing access token")
	}

	claims, err := m.tokens.ParseToken(token)
	if err != nil {
		return apperrors.NewUnauthorized("invalid access token")
	}

	name, _ := claims.UserMetadata["name"].(string)
	c.Locals(principalKey, &Principal{
		UserID:      claims.Subject,
		Email:       claims.Email,
		DisplayName: name,
		Role:        claims.Role(),
		Metadata:    claims.UserMetadata,
		AccessToken: token,
	})
	return c.Next()
}

// Optional loads a principal when a valid token is present but lets the
// request through either way. Gating endpoints serve guests too.
func (m *Middleware) Optional(c *fiber.Ctx) error {
	token := TokenFromRequest(c)
	if token == "" {
		return c.Next()
	}
	claims, err := m.tokens.ParseToken(token)
	if err != nil {
		return c.Next()
	}
	name, _ := claims.UserMetadata["name"].(string)
	c.Locals(principalKey, &Principal{
		UserID:      claims.Subject,
		Email:       claims.Email,
		DisplayName: name,
		Role:        claims.Role(),
		Metadata:    claims.UserMetadata,
		AccessToken: token,
	})
	return c.Next()
}

// TokenFromRequest extracts the access token from the Authorization header
// or the session cookie.
func TokenFromRequest(c *fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}
	return c.Cookies(AccessTokenCookie)
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
