package domain

import "time"

// CMSProfile mirrors the Webflow CMS record for a registered user. The CMS
// owns it; the gateway only reads it and replaces the wishlist sequence.
type CMSProfile struct {
	ProfileID          string
	DisplayName        string
	Email              string
	ExternalAuthID     string
	Role               Role
	Active             bool
	CreatedAt          time.Time
	WishlistProductIDs []string
}

// WishlistAdd returns the wishlist with id appended if absent. Order of the
// existing entries is preserved.
func WishlistAdd(ids []string, id string) []string {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(append([]string{}, ids...), id)
}

// WishlistRemove returns the wishlist with every occurrence of id removed.
func WishlistRemove(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, existing := range ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}
