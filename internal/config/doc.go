// Package config handles configuration loading for projectdesk.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable
// expansion. The package applies defaults for a minimal file and validates
// what remains.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from PROJECTDESK_CONFIG environment variable
//  2. ~/.config/projectdesk/config.yaml
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	auth:
//	  jwt_secret: "${PROJECTDESK_JWT_SECRET}"
//
// Syntax: ${VAR_NAME}. Unset variables expand to the empty string.
//
// # Configuration Sections
//
// Server settings:
//
//	server:
//	  host: "127.0.0.1"
//	  port: 8080
//	  environment: "development"  # development, production
//
// Database:
//
//	database:
//	  driver: "sqlite"            # sqlite, postgres
//	  path: "~/.local/share/projectdesk/projectdesk.db"
//	  dsn: "${PROJECTDESK_DATABASE_URL}"  # postgres only
//
// Authentication:
//
//	auth:
//	  jwt_secret: "${PROJECTDESK_JWT_SECRET}"
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// # Validation
//
// Load() validates:
//
//   - environment is development or production
//   - the selected driver has its path (sqlite) or dsn (postgres)
//   - production has a jwt_secret of at least MinSecretLength characters
//
// Development mode may omit the secret; the server then signs with a
// random per-run secret and logs a warning.
package config
