// Package cms talks to the Webflow CMS through the edge-function relay.
// The CMS owns every record; the gateway mirrors profiles best-effort and
// replaces wishlist sequences wholesale.
package cms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nikobathrooms/niko-auth-gateway/internal/config"
	"github.com/nikobathrooms/niko-auth-gateway/internal/domain"
	"github.com/nikobathrooms/niko-auth-gateway/pkg/util"
)

// Client invokes the relay functions over HTTPS POST with a bearer
// credential. Responses are {success: bool, ...} envelopes.
type Client struct {
	baseURL string
	anonKey string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient builds a relay client. The relay lives under the Supabase
// project's functions host.
func NewClient(cfg config.SupabaseConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.URL, "/") + "/functions/v1",
		anonKey: cfg.AnonKey,
		http:    &http.Client{Timeout: cfg.RequestTimeout()},
		logger:  logger,
	}
}

type createProfileRequest struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	UserType string `json:"user_type"`
}

type getProfileRequest struct {
	FirebaseUID string `json:"firebase_uid"`
	UserType    string `json:"user_type"`
}

type updateWishlistRequest struct {
	FirebaseUID      string   `json:"firebase_uid"`
	UserType         string   `json:"user_type"`
	WishlistProducts []string `json:"wishlist_products"`
}

type deleteProfileRequest struct {
	FirebaseUID string `json:"firebase_uid"`
	UserType    string `json:"user_type"`
}

type envelope struct {
	Success       bool            `json:"success"`
	Error         string          `json:"error"`
	WebflowID     string          `json:"webflow_id"`
	WishlistCount int             `json:"wishlist_count"`
	User          json.RawMessage `json:"user"`
}

type profilePayload struct {
	ID        string `json:"id"`
	FieldData struct {
		Name             string   `json:"name"`
		Email            string   `json:"email"`
		FirebaseUID      string   `json:"firebase-uid"`
		UserType         string   `json:"user-type"`
		IsActive         bool     `json:"is-active"`
		RegistrationDate string   `json:"registration-date"`
		WishlistProducts []string `json:"wishlist-products"`
	} `json:"fieldData"`
}

// CreateProfile creates the mirrored CMS record for a new registration.
func (c *Client) CreateProfile(ctx context.Context, externalAuthID, email, displayName string, role domain.Role) (string, error) {
	env, err := c.call(ctx, "create-webflow-user", createProfileRequest{
		UserID:   externalAuthID,
		Email:    email,
		Name:     displayName,
		UserType: string(role),
	})
	if err != nil {
		return "", err
	}
	return env.WebflowID, nil
}

// GetProfile looks up the mirrored record by the auth provider's user id.
func (c *Client) GetProfile(ctx context.Context, externalAuthID string, role domain.Role) (*domain.CMSProfile, error) {
	env, err := c.call(ctx, "get-webflow-user-by-firebase-uid", getProfileRequest{
		FirebaseUID: externalAuthID,
		UserType:    string(role),
	})
	if err != nil {
		return nil, err
	}

	var payload profilePayload
	if err := json.Unmarshal(env.User, &payload); err != nil {
		return nil, util.NewProfileSyncError("malformed relay response", err)
	}

	profile := &domain.CMSProfile{
		ProfileID:          payload.ID,
		DisplayName:        payload.FieldData.Name,
		Email:              payload.FieldData.Email,
		ExternalAuthID:     payload.FieldData.FirebaseUID,
		Active:             payload.FieldData.IsActive,
		WishlistProductIDs: payload.FieldData.WishlistProducts,
	}
	if role, ok := domain.ParseRole(payload.FieldData.UserType); ok {
		profile.Role = role
	} else {
		profile.Role = domain.DefaultRole
	}
	if payload.FieldData.RegistrationDate != "" {
		if created, err := time.Parse(time.RFC3339, payload.FieldData.RegistrationDate); err == nil {
			profile.CreatedAt = created
		}
	}
	return profile, nil
}

// UpdateWishlist replaces the full wishlist sequence. The caller computes
// the new sequence before calling.
func (c *Client) UpdateWishlist(ctx context.Context, externalAuthID string, role domain.Role, productIDs []string) (int, error) {
	if productIDs == nil {
		productIDs = []string{}
	}
	env, err := c.call(ctx, "update-webflow-user-wishlist", updateWishlistRequest{
		FirebaseUID:      externalAuthID,
		UserType:         string(role),
		WishlistProducts: productIDs,
	})
	if err != nil {
		return 0, err
	}
	return env.WishlistCount, nil
}

// DeleteProfile removes the mirrored record. Only the admin flow calls
// this; the common path never deletes.
func (c *Client) DeleteProfile(ctx context.Context, externalAuthID string, role domain.Role) error {
	_, err := c.call(ctx, "delete-webflow-user", deleteProfileRequest{
		FirebaseUID: externalAuthID,
		UserType:    string(role),
	})
	return err
}

func (c *Client) call(ctx context.Context, function string, body any) (*envelope, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, util.NewInternalError(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+function, bytes.NewReader(payload))
	if err != nil {
		return nil, util.NewInternalError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.anonKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, util.NewProfileSyncError("relay unreachable", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, util.NewProfileSyncError("relay response unreadable", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, util.NewProfileSyncError("malformed relay response", err)
	}
	if !env.Success {
		message := env.Error
		if message == "" {
			message = fmt.Sprintf("relay call %s failed with status %d", function, resp.StatusCode)
		}
		if resp.StatusCode == http.StatusNotFound || strings.Contains(strings.ToLower(message), "not found") {
			return nil, util.NewNotFound("cms profile", map[string]any{"function": function})
		}
		return nil, util.NewProfileSyncError(message, nil)
	}
	return &env, nil
}
