// Package web serves the projectdesk HTTP surface: a JSON API, the
// server-rendered dashboard, and health endpoints, all on one listener.
//
// # Overview
//
// The package exposes three route groups:
//
//   - JSON API under /api for programmatic clients
//   - Dashboard pages under / and /dashboard for browsers
//   - Health probes at /healthz and /readyz
//
// # JSON API
//
// Public routes:
//
//   - POST /api/register: create an account, issue a token, set the cookie
//   - POST /api/login: verify credentials, issue a token, set the cookie
//   - POST /api/logout: clear the cookie
//   - GET  /api/me: whoami probe, answers {"user":null} for anonymous callers
//
// Authenticated routes (valid token cookie required, enforced by the auth
// middleware before any handler runs):
//
//   - GET    /api/projects: list with status, assignee, q, limit, offset
//   - POST   /api/projects: create
//   - GET    /api/projects/{id}: fetch one
//   - PUT    /api/projects/{id}: partial update
//   - DELETE /api/projects/{id}: delete
//
// Rejected requests always get the same 401 body regardless of why the
// token failed. Login failures for unknown emails and wrong passwords are
// byte-identical and cost one bcrypt comparison either way.
//
// # Dashboard
//
// Browser pages are rendered server-side from templates embedded with
// go:embed. Anonymous visits to protected pages redirect to /login rather
// than getting JSON errors. Project descriptions are written in Markdown
// and converted to HTML on the detail page.
//
// # Lifecycle
//
// Create and run the server:
//
//	srv, err := web.New(ctx, cfg, logger)
//	if err != nil {
//		return err
//	}
//	return srv.Run(ctx)
//
// Run blocks until the context is canceled, then shuts the listener down
// with a five second grace period and closes the store.
package web
