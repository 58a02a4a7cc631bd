package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nikobathrooms/niko-auth-gateway/internal/domain"
	"github.com/nikobathrooms/niko-auth-gateway/pkg/util"
)

type fakeWishlistStore struct {
	wishlist    []string
	getErr      error
	updateCalls [][]string
}

func (f *fakeWishlistStore) GetProfile(_ context.Context, externalAuthID string, role domain.Role) (*domain.CMSProfile, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &domain.CMSProfile{
		ExternalAuthID:     externalAuthID,
		Role:               role,
		WishlistProductIDs: f.wishlist,
	}, nil
}

func (f *fakeWishlistStore) UpdateWishlist(_ context.Context, _ string, _ domain.Role, productIDs []string) (int, error) {
	f.updateCalls = append(f.updateCalls, productIDs)
	f.wishlist = productIDs
	return len(productIDs), nil
}

func TestWishlistAddAppendsIfAbsent(t *testing.T) {
	store := &fakeWishlistStore{wishlist: []string{"p1", "p2"}}
	svc := NewWishlistService(store, zap.NewNop())

	ids, err := svc.Add(context.Background(), "user-1", domain.RoleCustomer, "p3")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2", "p3"}, ids)
	require.Len(t, store.updateCalls, 1)
	assert.Equal(t, []string{"p1", "p2", "p3"}, store.updateCalls[0], "full sequence replaced, not a diff")
}

func TestWishlistAddAlreadyPresentSkipsUpdate(t *testing.T) {
	store := &fakeWishlistStore{wishlist: []string{"p1", "p2"}}
	svc := NewWishlistService(store, zap.NewNop())

	ids, err := svc.Add(context.Background(), "user-1", domain.RoleCustomer, "p2")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, ids)
	assert.Empty(t, store.updateCalls, "no-op mutations skip the relay")
}

func TestWishlistRemoveFiltersOut(t *testing.T) {
	store := &fakeWishlistStore{wishlist: []string{"p1", "p2", "p3"}}
	svc := NewWishlistService(store, zap.NewNop())

	ids, err := svc.Remove(context.Background(), "user-1", domain.RoleRetailer, "p2")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p3"}, ids)
	require.Len(t, store.updateCalls, 1)
}

func TestWishlistRemoveAbsentSkipsUpdate(t *testing.T) {
	store := &fakeWishlistStore{wishlist: []string{"p1"}}
	svc := NewWishlistService(store, zap.NewNop())

	ids, err := svc.Remove(context.Background(), "user-1", domain.RoleCustomer, "p9")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, ids)
	assert.Empty(t, store.updateCalls)
}

func TestWishlistGetEmpty(t *testing.T) {
	store := &fakeWishlistStore{}
	svc := NewWishlistService(store, zap.NewNop())

	ids, err := svc.Get(context.Background(), "user-1", domain.RoleCustomer)
	require.NoError(t, err)
	assert.NotNil(t, ids)
	assert.Empty(t, ids)
}

func TestWishlistGetPropagatesNotFound(t *testing.T) {
	store := &fakeWishlistStore{getErr: util.NewNotFound("cms profile", nil)}
	svc := NewWishlistService(store, zap.NewNop())

	_, err := svc.Get(context.Background(), "user-1", domain.RoleCustomer)
	assert.True(t, util.IsCode(err, "NOT_FOUND"))
}
