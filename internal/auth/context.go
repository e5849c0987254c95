// ABOUTME: Propagates verified claims through request handlers via context
// ABOUTME: Provides WithClaims/ClaimsFromContext used by Middleware and handlers

package auth

import (
	"context"
)

// claimsContextKey is the key type for storing Claims in context.Context.
type claimsContextKey struct{}

// WithClaims returns a new context with the verified claims attached.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey{}, claims)
}

// ClaimsFromContext retrieves the claims from the context, returning nil if
// not present. Handlers behind Middleware always find them; anywhere else a
// nil check is required.
func ClaimsFromContext(ctx context.Context) *Claims {
	val := ctx.Value(claimsContextKey{})
	if val == nil {
		return nil
	}
	claims, ok := val.(*Claims)
	if !ok {
		return nil
	}
	return claims
}
