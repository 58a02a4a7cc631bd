package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/nikobathrooms/niko-auth-gateway/internal/auth"
	"github.com/nikobathrooms/niko-auth-gateway/internal/domain"
	"github.com/nikobathrooms/niko-auth-gateway/internal/redirect"
	"github.com/nikobathrooms/niko-auth-gateway/internal/session"
)

// SessionHandler is the integration point for other page scripts: current
// user, role, auth flag and a loop-guarded redirect suggestion.
type SessionHandler struct {
	store  *session.Store
	policy *redirect.Policy
}

// NewSessionHandler constructs handler.
func NewSessionHandler(store *session.Store, policy *redirect.Policy) *SessionHandler {
	return &SessionHandler{store: store, policy: policy}
}

// Current handles GET /api/session. The optional current_path query lets
// the page ask whether it should navigate; auth pages and the target page
// itself never get a redirect back.
func (h *SessionHandler) Current(c *fiber.Ctx) error {
	sess := h.verify(c)

	response := fiber.Map{
		"success": true,
		"data":    sessionPayload(sess),
	}

	if sess.Authenticated {
		if currentPath := c.Query("current_path"); currentPath != "" {
			target := h.policy.TargetPath(sess.Role)
			if h.policy.ShouldRedirect(currentPath, target) {
				response["redirect_url"] = h.policy.BaseURL(c.Hostname(), requestOrigin(c)) + target
			}
		}
	}
	return c.JSON(response)
}

// Role handles GET /api/session/role.
func (h *SessionHandler) Role(c *fiber.Ctx) error {
	sess := h.verify(c)
	role := ""
	if sess.Authenticated {
		role = string(sess.Role)
	}
	return c.JSON(fiber.Map{"success": true, "role": role})
}

// Authenticated handles GET /api/session/authenticated.
func (h *SessionHandler) Authenticated(c *fiber.Ctx) error {
	sess := h.verify(c)
	return c.JSON(fiber.Map{"success": true, "is_authenticated": sess.Authenticated})
}

func (h *SessionHandler) verify(c *fiber.Ctx) domain.Session {
	token := auth.TokenFromRequest(c)
	hint := ""
	if principal, ok := auth.PrincipalFromContext(c); ok {
		hint = principal.UserID
	}
	return h.store.Verify(c.UserContext(), token, hint)
}
