// Package store provides persistent storage for projectdesk.
//
// # Architecture
//
// A single Store interface covers everything the application persists:
// user accounts and project records. Two backends implement it:
//
//   - SQLiteStore: embedded local file database, the default
//   - PostgresStore: for hosted deployments sharing one database
//
// The backend is chosen by configuration; nothing above the store layer
// knows which one is running.
//
// # Data Models
//
//   - User: a registered account with a bcrypt password hash
//   - Project: a tracked record with title, status, deadline, assignee,
//     budget, and a Markdown description
//
// Projects record the creating user in CreatedBy for attribution, but the
// workspace is shared: any authenticated user may read and modify any
// project.
//
// # SQLite Configuration
//
// The SQLite backend enables WAL mode for concurrent reads:
//
//	PRAGMA journal_mode=WAL;
//	PRAGMA foreign_keys=ON;
//
// The schema is created on open and evolved in place with idempotent
// column checks. Timestamps are stored as RFC 3339 strings.
//
// # Postgres Configuration
//
// The Postgres backend connects through the pgx stdlib driver and applies
// embedded goose migrations on startup. Timestamps are TIMESTAMPTZ.
//
// # Error Handling
//
// Common errors:
//
//   - ErrNotFound: Requested entity does not exist
//   - ErrEmailExists: Email is already registered
//
// All methods accept context.Context for cancellation support.
//
// # Testing
//
// Use NewSQLiteStore with a temp directory path for integration tests; the
// Postgres queries are covered with sqlmock.
package store
