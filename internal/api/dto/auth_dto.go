package dto

// LoginRequest payload for the login form. CurrentPath is the page the
// form was submitted from; the redirect policy consults it.
type LoginRequest struct {
	Email       string `json:"email" form:"email"`
	Password    string `json:"password" form:"password"`
	CurrentPath string `json:"current_path" form:"current_path"`
}

// SignupRequest payload for the sign-up form.
type SignupRequest struct {
	Name            string `json:"name" form:"name"`
	Email           string `json:"email" form:"email"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
	Role            string `json:"role" form:"role"`
	CurrentPath     string `json:"current_path" form:"current_path"`
}

// RecoverRequest payload for password recovery.
type RecoverRequest struct {
	Email string `json:"email" form:"email"`
}

// AuthUserPayload is the user record carried by provider webhook events.
type AuthUserPayload struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
}

// AuthEventRequest is the provider state-change webhook body.
type AuthEventRequest struct {
	Type string           `json:"type"`
	User *AuthUserPayload `json:"user"`
}

// SessionPayload is the session view returned to page scripts.
type SessionPayload struct {
	UserID        string `json:"user_id,omitempty"`
	Email         string `json:"email,omitempty"`
	DisplayName   string `json:"display_name,omitempty"`
	Role          string `json:"role,omitempty"`
	Authenticated bool   `json:"is_authenticated"`
}
