package handlers

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/nikobathrooms/niko-auth-gateway/internal/api/dto"
	"github.com/nikobathrooms/niko-auth-gateway/internal/auth"
	"github.com/nikobathrooms/niko-auth-gateway/internal/domain"
	"github.com/nikobathrooms/niko-auth-gateway/internal/service"
	"github.com/nikobathrooms/niko-auth-gateway/pkg/util"
)

type wishlistOp func(ctx context.Context, externalAuthID string, role domain.Role, productID string) ([]string, error)

// WishlistHandler exposes wishlist operations for the storefront widgets.
type WishlistHandler struct {
	wishlist *service.WishlistService
}

// NewWishlistHandler constructs handler.
func NewWishlistHandler(wishlist *service.WishlistService) *WishlistHandler {
	return &WishlistHandler{wishlist: wishlist}
}

// Get handles GET /api/wishlist.
func (h *WishlistHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}

	ids, err := h.wishlist.Get(c.UserContext(), principal.UserID, principal.Role)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "product_ids": ids, "count": len(ids)})
}

// Add handles POST /api/wishlist/add.
func (h *WishlistHandler) Add(c *fiber.Ctx) error {
	return h.mutate(c, h.wishlist.Add)
}

// Remove handles POST /api/wishlist/remove.
func (h *WishlistHandler) Remove(c *fiber.Ctx) error {
	return h.mutate(c, h.wishlist.Remove)
}

func (h *WishlistHandler) mutate(c *fiber.Ctx, op wishlistOp) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}

	var req dto.WishlistMutationRequest
	if err := c.BodyParser(&req); err != nil {
		return util.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.ProductID) == "" {
		return util.NewValidationError("product_id is required", nil)
	}

	ids, err := op(c.UserContext(), principal.UserID, principal.Role, req.ProductID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "product_ids": ids, "count": len(ids)})
}
