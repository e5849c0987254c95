// ABOUTME: Password hashing built on bcrypt with a fixed work factor
// ABOUTME: Verification returns a bool; malformed hashes count as mismatch

package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashCost is the bcrypt work factor for all password hashes. Raising it
// only affects new hashes; existing ones verify at the cost they were
// created with.
const HashCost = 10

// DummyHash is a well-formed bcrypt hash of a throwaway string. Login
// handlers compare against it when the email is unknown so the request
// costs the same as a real password check. This prevents timing attacks
// that could enumerate registered emails.
const DummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// HashPassword returns a bcrypt hash of password. bcrypt salts internally,
// so hashing the same password twice yields different strings.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), HashCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored bcrypt hash.
// Any failure, including a malformed hash, reads as a mismatch.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
