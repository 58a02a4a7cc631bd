package handlers

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/nikobathrooms/niko-auth-gateway/internal/cms"
	"github.com/nikobathrooms/niko-auth-gateway/internal/domain"
	"github.com/nikobathrooms/niko-auth-gateway/pkg/util"
)

// AdminHandler covers the operator-triggered flows that never run on the
// common path, currently just CMS profile deletion.
type AdminHandler struct {
	cms        *cms.Client
	serviceKey string
	logger     *zap.Logger
}

// NewAdminHandler constructs handler.
func NewAdminHandler(cmsClient *cms.Client, serviceKey string, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{cms: cmsClient, serviceKey: serviceKey, logger: logger}
}

// DeleteProfile handles DELETE /admin/profiles/:externalAuthID.
func (h *AdminHandler) DeleteProfile(c *fiber.Ctx) error {
	if err := h.authorize(c); err != nil {
		return err
	}

	externalAuthID := c.Params("externalAuthID")
	role, ok := domain.ParseRole(c.Query("role"))
	if !ok {
		return util.NewValidationError("role query must be Customer or Retailer", nil)
	}

	if err := h.cms.DeleteProfile(c.UserContext(), externalAuthID, role); err != nil {
		return err
	}

	h.logger.Info("cms profile deleted",
		zap.String("external_auth_id", externalAuthID),
		zap.String("role", string(role)))
	return c.JSON(fiber.Map{"success": true})
}

func (h *AdminHandler) authorize(c *fiber.Ctx) error {
	if h.serviceKey == "" {
		return util.NewForbidden("admin flows are disabled")
	}
	provided := c.Get("X-Admin-Service-Key")
	if subtle.ConstantTimeCompare([]byte(provided), []byte(h.serviceKey)) != 1 {
		return util.NewForbidden("invalid service key")
	}
	return nil
}
