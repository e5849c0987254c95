// Package auth implements authentication for projectdesk: bcrypt password
// hashing, stateless JWT session tokens, and the HTTP plumbing that turns a
// request cookie into a verified identity.
//
// # Password Hashing
//
// Passwords are hashed with bcrypt at a fixed cost. Every call to
// HashPassword salts internally, so the same password never produces the
// same hash twice:
//
//	hash, err := auth.HashPassword("secret123")
//	if auth.CheckPassword(hash, "secret123") {
//		// verified
//	}
//
// CheckPassword returns a plain bool. A malformed stored hash counts as a
// mismatch, never a panic or an error the caller has to branch on.
//
// # Session Tokens
//
// A Codec signs and verifies HS256 JWTs carrying the user id and email.
// Tokens expire after TokenTTL (seven days) and there is no server-side
// session state: possession of a valid token is the session. The flip side
// is that a token cannot be revoked before it expires; rotating the signing
// secret is the only kill switch.
//
//	codec := auth.NewCodec(secret)
//	token, err := codec.Issue(user.ID, user.Email)
//
// Decode is forgiving in shape and strict in outcome: any defect (bad
// signature, expired, garbage input, wrong algorithm) yields a nil *Claims,
// never an error and never a panic:
//
//	if claims := codec.Decode(token); claims != nil {
//		// logged in
//	}
//
// # Request Identity
//
// Identify reads the session cookie from a request and decodes it. It does
// no I/O and never fails; a request without a valid token is simply
// anonymous (nil). Require is the strict form used by protected routes: it
// returns ErrUnauthorized for every failure mode so handlers cannot leak
// whether a token was missing, expired, or forged.
//
// Middleware wraps a handler with Require, rejects anonymous requests with
// a generic 401 JSON body, and stashes the verified Claims in the request
// context for ClaimsFromContext.
//
// # Login Failures
//
// ErrInvalidCredentials is the single login failure. Handlers return it for
// unknown emails and wrong passwords alike, and the package exposes a
// DummyHash so the unknown-email path still burns a bcrypt comparison.
// Both measures keep account enumeration off the table.
package auth
