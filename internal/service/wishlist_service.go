package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/nikobathrooms/niko-auth-gateway/internal/domain"
)

// WishlistStore is the slice of the CMS relay client wishlist flows need.
type WishlistStore interface {
	GetProfile(ctx context.Context, externalAuthID string, role domain.Role) (*domain.CMSProfile, error)
	UpdateWishlist(ctx context.Context, externalAuthID string, role domain.Role, productIDs []string) (int, error)
}

// WishlistService computes the new wishlist sequence gateway-side and
// relays a full replacement. The CMS never sees a diff.
type WishlistService struct {
	store  WishlistStore
	logger *zap.Logger
}

// NewWishlistService creates the service.
func NewWishlistService(store WishlistStore, logger *zap.Logger) *WishlistService {
	return &WishlistService{store: store, logger: logger}
}

// Get returns the current wishlist sequence.
func (w *WishlistService) Get(ctx context.Context, externalAuthID string, role domain.Role) ([]string, error) {
	profile, err := w.store.GetProfile(ctx, externalAuthID, role)
	if err != nil {
		return nil, err
	}
	if profile.WishlistProductIDs == nil {
		return []string{}, nil
	}
	return profile.WishlistProductIDs, nil
}

// Add appends the product if absent and replaces the stored sequence.
func (w *WishlistService) Add(ctx context.Context, externalAuthID string, role domain.Role, productID string) ([]string, error) {
	current, err := w.Get(ctx, externalAuthID, role)
	if err != nil {
		return nil, err
	}
	next := domain.WishlistAdd(current, productID)
	if len(next) == len(current) {
		return current, nil
	}
	if _, err := w.store.UpdateWishlist(ctx, externalAuthID, role, next); err != nil {
		return nil, err
	}
	return next, nil
}

// Remove filters the product out and replaces the stored sequence.
func (w *WishlistService) Remove(ctx context.Context, externalAuthID string, role domain.Role, productID string) ([]string, error) {
	current, err := w.Get(ctx, externalAuthID, role)
	if err != nil {
		return nil, err
	}
	next := domain.WishlistRemove(current, productID)
	if len(next) == len(current) {
		return current, nil
	}
	if _, err := w.store.UpdateWishlist(ctx, externalAuthID, role, next); err != nil {
		return nil, err
	}
	return next, nil
}
