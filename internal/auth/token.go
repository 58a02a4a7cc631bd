package auth

import (
	"errors"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/nikobathrooms/niko-auth-gateway/internal/domain"
	"github.com/nikobathrooms/niko-auth-gateway/internal/session"
)

// TokenParser validates Supabase-issued access tokens. The gateway never
// issues tokens itself; it only verifies what the provider signed.
type TokenParser struct {
	secret []byte
}

// NewTokenParser builds a parser around the project's JWT secret.
func NewTokenParser(secret string) *TokenParser {
	return &TokenParser{secret: []byte(secret)}
}

// Claims describes the slice of the Supabase access token the gateway
// reads. UserMetadata carries the display name and role claims.
type Claims struct {
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
	jwt.RegisteredClaims
}

// ParseToken validates signature and expiry and returns claims.
func (tp *TokenParser) ParseToken(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tp.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// Role resolves the role claim from token metadata.
func (c *Claims) Role() domain.Role {
	return session.ResolveRole(c.UserMetadata)
}
