package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/nikobathrooms/niko-auth-gateway/internal/auth"
	"github.com/nikobathrooms/niko-auth-gateway/internal/config"
	"github.com/nikobathrooms/niko-auth-gateway/internal/domain"
	"github.com/nikobathrooms/niko-auth-gateway/internal/gating"
	"github.com/nikobathrooms/niko-auth-gateway/internal/session"
)

// GatingHandler serves content visibility decisions. Guests get answers
// too; a missing or invalid token is not an error here.
type GatingHandler struct {
	store *session.Store
	cfg   config.GatingConfig
}

// NewGatingHandler constructs handler.
func NewGatingHandler(store *session.Store, cfg config.GatingConfig) *GatingHandler {
	return &GatingHandler{store: store, cfg: cfg}
}

// State handles GET /gating/state: the rule set for the on-page filtering
// integration, or for any script that wants the raw decision.
func (h *GatingHandler) State(c *fiber.Ctx) error {
	rules := gating.Compute(h.verify(c))
	return c.JSON(fiber.Map{
		"success":          true,
		"finsweet_enabled": h.cfg.FinsweetIntegration,
		"attribute":        gating.AttributeName,
		"style_element_id": gating.StyleElementID,
		"rules":            rules,
	})
}

// CSS handles GET /gating/css: the fallback stylesheet. Re-fetching for
// the same session yields byte-identical output, so replacing the style
// element is always safe.
func (h *GatingHandler) CSS(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "text/css; charset=utf-8")
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.SendString(gating.CSS(h.verify(c)))
}

func (h *GatingHandler) verify(c *fiber.Ctx) domain.Session {
	token := auth.TokenFromRequest(c)
	hint := ""
	if principal, ok := auth.PrincipalFromContext(c); ok {
		hint = principal.UserID
	}
	return h.store.Verify(c.UserContext(), token, hint)
}
