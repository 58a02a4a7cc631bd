package dto

// WishlistMutationRequest identifies the product being added or removed.
type WishlistMutationRequest struct {
	ProductID string `json:"product_id" form:"product_id"`
}
