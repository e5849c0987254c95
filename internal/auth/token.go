// ABOUTME: Stateless session tokens: HS256 JWTs carrying user id and email
// ABOUTME: Decode absorbs every defect into a nil result, never an error

package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is how long an issued token stays valid. There is no server-side
// session state, so expiry is the only thing that ends a session.
const TokenTTL = 7 * 24 * time.Hour

// Claims is the payload carried inside a session token.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
	Email  string `json:"email"`
}

// Codec signs and verifies session tokens with a single symmetric secret.
type Codec struct {
	secret []byte
}

// NewCodec returns a Codec signing with secret. Config validation refuses
// to start a non-development server without a real secret, so there is no
// fallback here.
func NewCodec(secret []byte) *Codec {
	return &Codec{secret: secret}
}

// Issue signs a token for the given user, valid for TokenTTL from now.
func (c *Codec) Issue(userID, email string) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
		UserID: userID,
		Email:  email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Decode parses and verifies a token string. It returns nil for anything
// that does not check out: bad signature, expired, malformed, or signed
// with an unexpected algorithm. Callers treat nil as "not logged in".
func (c *Codec) Decode(tokenString string) *Claims {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil || !token.Valid {
		return nil
	}
	if claims.UserID == "" {
		return nil
	}
	return claims
}
