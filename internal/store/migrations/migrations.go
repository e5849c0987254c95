// ABOUTME: Embeds the goose SQL migrations for the Postgres backend
// ABOUTME: The SQLite backend manages its schema inline instead

// Package migrations holds the embedded SQL migrations applied to Postgres
// databases at startup.
package migrations

import "embed"

// Migrations contains the goose migration files.
//
//go:embed *.sql
var Migrations embed.FS
