package events

import (
	"time"

	"github.com/nikobathrooms/niko-auth-gateway/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSignedIn       EventType = "signed_in"
	EventSignedUp       EventType = "signed_up"
	EventSignedOut      EventType = "signed_out"
	EventTokenRefreshed EventType = "token_refreshed"
)

// Origin distinguishes events raised by the gateway's own operations from
// those echoed back by the auth provider.
type Origin string

const (
	OriginLocal    Origin = "local"
	OriginProvider Origin = "provider"
)

// Event represents an auth state transition emitted by the session store.
type Event struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Origin    Origin         `json:"origin"`
	Session   domain.Session `json:"session"`
	Timestamp time.Time      `json:"timestamp"`
}
