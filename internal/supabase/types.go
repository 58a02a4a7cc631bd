package supabase

import "encoding/json"

// User is the auth provider's user record. Metadata carries the display
// name and role claims set at sign-up.
type User struct {
	ID       string         `json:"id"`
	Email    string         `json:"email"`
	Metadata map[string]any `json:"user_metadata"`
}

// TokenPair holds the provider-issued session tokens. The gateway forwards
// them to the browser as cookies and never stores them itself.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// AuthResult is the provider response to sign-up and sign-in calls. Sign-up
// with email confirmation enabled returns a user but no tokens.
type AuthResult struct {
	User   *User
	Tokens *TokenPair
}

type signUpRequest struct {
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Data     map[string]any `json:"data,omitempty"`
}

type passwordGrantRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type recoverRequest struct {
	Email string `json:"email"`
}

// sessionResponse covers both token-bearing and user-only provider replies.
type sessionResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	User         *User  `json:"user"`

	// sign-up without confirmation returns the user at the top level
	ID       string          `json:"id"`
	Email    string          `json:"email"`
	Metadata json.RawMessage `json:"user_metadata"`
}

// errorResponse captures the provider's error shapes. GoTrue has used
// several over time; Message carries whichever field was populated.
type errorResponse struct {
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (e errorResponse) text() string {
	for _, candidate := range []string{e.Msg, e.Message, e.ErrorDescription, e.Error} {
		if candidate != "" {
			return candidate
		}
	}
	return ""
}
