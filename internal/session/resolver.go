package session

import (
	"github.com/nikobathrooms/niko-auth-gateway/internal/domain"
)

// ResolveRole maps raw provider user-metadata onto the closed role enum.
// Claim order: explicit role, explicit user_type, default Customer. Pure
// function, no I/O.
func ResolveRole(metadata map[string]any) domain.Role {
	for _, key := range []string{"role", "user_type"} {
		raw, ok := metadata[key].(string)
		if !ok {
			continue
		}
		if role, ok := domain.ParseRole(raw); ok {
			return role
		}
	}
	return domain.DefaultRole
}

// DisplayName extracts the display name claim, empty when absent.
func DisplayName(metadata map[string]any) string {
	if name, ok := metadata["name"].(string); ok {
		return name
	}
	return ""
}
