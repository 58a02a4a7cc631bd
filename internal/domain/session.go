package domain

import "time"

// Session is the reconciled view of the authenticated principal. It is
// owned by the session store; everything else reads it.
type Session struct {
	UserID        string
	Email         string
	DisplayName   string
	Role          Role
	Authenticated bool
	VerifiedAt    time.Time
}

// Guest is the unauthenticated session value.
func Guest() Session {
	return Session{Authenticated: false}
}

// Stale reports whether the session snapshot is older than maxAge.
func (s Session) Stale(now time.Time, maxAge time.Duration) bool {
	if s.VerifiedAt.IsZero() {
		return true
	}
	return now.Sub(s.VerifiedAt) >= maxAge
}
