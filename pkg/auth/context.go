package auth

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const claimsKey contextKey = "roster_claims"

// WithClaims returns a context carrying the verified session claims.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// GetClaims extracts the session claims injected by the middleware.
func GetClaims(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*Claims)
	return claims, ok && claims != nil
}

// GetUserID extracts the authenticated user ID, or uuid.Nil when the
// request is unauthenticated.
func GetUserID(ctx context.Context) uuid.UUID {
	claims, ok := GetClaims(ctx)
	if !ok {
		return uuid.Nil
	}
	return claims.UserID()
}

// IsAdmin reports whether the authenticated user has the admin flag.
func IsAdmin(ctx context.Context) bool {
	claims, ok := GetClaims(ctx)
	return ok && claims.IsAdmin
}
