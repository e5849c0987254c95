// ABOUTME: Request identity: cookie extraction, the auth gate, and middleware
// ABOUTME: Anonymous requests get one generic 401 regardless of failure mode

package auth

import (
	"net/http"
)

// Identify returns the claims carried by the request's session cookie, or
// nil when the cookie is absent or its token does not verify. It inspects
// only the request; no datastore is touched.
func (c *Codec) Identify(r *http.Request) *Claims {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	return c.Decode(cookie.Value)
}

// Require is the gate in front of protected operations. It returns the
// verified claims or ErrUnauthorized; the error is identical for every
// failure mode so handlers cannot leak whether a token was missing,
// expired, or forged.
func (c *Codec) Require(r *http.Request) (*Claims, error) {
	claims := c.Identify(r)
	if claims == nil {
		return nil, ErrUnauthorized
	}
	return claims, nil
}

// Middleware wraps next with Require. Anonymous requests are rejected
// before any handler or datastore work runs; verified claims travel to
// next via the request context.
func (c *Codec) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := c.Require(r)
		if err != nil {
			http.Error(w, `{"error":"authentication required"}`, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}
