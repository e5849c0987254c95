// ABOUTME: Sentinel errors shared by the auth package and its callers
// ABOUTME: Handlers map these onto HTTP statuses with generic bodies

package auth

import "errors"

var (
	// ErrUnauthorized means the request carried no usable identity. Require
	// returns it for every failure mode (missing cookie, bad signature,
	// expired or malformed token) so callers cannot leak the cause.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidCredentials is the single login failure. Unknown email and
	// wrong password both map here to prevent account enumeration.
	ErrInvalidCredentials = errors.New("invalid email or password")
)
