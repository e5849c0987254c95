// Package seed loads demo users and projects from a TOML file and inserts
// them through the store.
//
// A seed file declares [[users]] with plaintext passwords (hashed on
// insert) and [[projects]] whose owner field references a user by email:
//
//	[[users]]
//	email = "alice@example.com"
//	name = "Alice Chen"
//	password = "demo-password-1"
//
//	[[projects]]
//	title = "Website redesign"
//	status = "active"
//	owner = "alice@example.com"
//
// The whole file is validated before anything is written. Apply is
// idempotent: existing accounts are never overwritten, and a project whose
// owner already has one with the same title is skipped, so re-running
// projectdesk seed is safe.
package seed
