package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v4"
)

// Claim names read from the token.
const (
	jwtClaimUserID  = "user_id"
	jwtClaimSubject = "sub"
)

var ErrNoUserInContext = errors.New("user claims not found in context")

// GetUserIDFromContext returns the authenticated user's id.
func GetUserIDFromContext(ctx context.Context) (string, error) {
	claims, ok := ctx.Value(userContextKey).(jwt.MapClaims)
	if !ok {
		return "", ErrNoUserInContext
	}
	return userIDFromClaims(claims)
}

// userIDFromClaims prefers user_id and falls back to the standard subject.
func userIDFromClaims(claims jwt.MapClaims) (string, error) {
	for _, name := range []string{jwtClaimUserID, jwtClaimSubject} {
		raw, ok := claims[name]
		if !ok {
			continue
		}
		id, ok := raw.(string)
		if !ok {
			return "", fmt.Errorf("invalid type for '%s' claim: expected string, got %T", name, raw)
		}
		if id = strings.TrimSpace(id); id == "" {
			return "", fmt.Errorf("empty '%s' claim in token", name)
		}
		return id, nil
	}
	return "", fmt.Errorf("missing '%s' claim in token", jwtClaimUserID)
}
