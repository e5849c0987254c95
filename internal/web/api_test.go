// ABOUTME: Tests for the JSON API handlers
// ABOUTME: Covers auth flows, the whoami probe, and project CRUD over HTTP

package web

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/steinfletcher/apitest"
	jsonpath "github.com/steinfletcher/apitest-jsonpath"

	"github.com/2389/projectdesk/internal/auth"
	"github.com/2389/projectdesk/internal/store"
)

// newTestServer creates a Server backed by a throwaway SQLite store.
func newTestServer(t *testing.T) *Server {
	t.Helper()

	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "web-test.db"))
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	return &Server{
		store:  st,
		codec:  auth.NewCodec([]byte("web-test-secret")),
		logger: slog.Default(),
	}
}

// doJSON performs a request against the handler and returns the recorder.
func doJSON(t *testing.T, handler http.Handler, method, target, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// registerTestUser registers a user through the API and returns the session cookie.
func registerTestUser(t *testing.T, handler http.Handler, email string) *http.Cookie {
	t.Helper()

	body := fmt.Sprintf(`{"email":%q,"name":"Test User","password":"secret123"}`, email)
	rec := doJSON(t, handler, http.MethodPost, "/api/register", body, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register returned %d: %s", rec.Code, rec.Body.String())
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.CookieName {
			return c
		}
	}
	t.Fatal("register did not set the token cookie")
	return nil
}

// createTestProject creates a project through the API and returns the response.
func createTestProject(t *testing.T, handler http.Handler, cookie *http.Cookie, body string) ProjectResponse {
	t.Helper()

	rec := doJSON(t, handler, http.MethodPost, "/api/projects", body, cookie)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create project returned %d: %s", rec.Code, rec.Body.String())
	}
	var resp ProjectResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding project response: %v", err)
	}
	return resp
}

func TestHealthEndpoints(t *testing.T) {
	handler := newTestServer(t).routes()

	apitest.New().
		Handler(handler).
		Get("/healthz").
		Expect(t).
		Body("OK").
		Status(http.StatusOK).
		End()

	apitest.New().
		Handler(handler).
		Get("/readyz").
		Expect(t).
		Body("ready").
		Status(http.StatusOK).
		End()
}

func TestRegister(t *testing.T) {
	handler := newTestServer(t).routes()

	apitest.New().
		Handler(handler).
		Post("/api/register").
		JSON(`{"email":"alice@example.com","name":"Alice","password":"secret123"}`).
		Expect(t).
		Status(http.StatusCreated).
		CookiePresent(auth.CookieName).
		Assert(jsonpath.Present("$.token")).
		Assert(jsonpath.Equal("$.user.email", "alice@example.com")).
		Assert(jsonpath.Equal("$.user.name", "Alice")).
		End()
}

func TestRegister_Validation(t *testing.T) {
	handler := newTestServer(t).routes()

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "invalid json",
			body:    `{not json`,
			wantErr: "invalid JSON body",
		},
		{
			name:    "bad email",
			body:    `{"email":"alice.example.com","name":"Alice","password":"secret123"}`,
			wantErr: "valid email",
		},
		{
			name:    "short password",
			body:    `{"email":"alice@example.com","name":"Alice","password":"short"}`,
			wantErr: "at least 8",
		},
		{
			name:    "blank name",
			body:    `{"email":"alice@example.com","name":"   ","password":"secret123"}`,
			wantErr: "name is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, handler, http.MethodPost, "/api/register", tt.body, nil)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
			if !strings.Contains(rec.Body.String(), tt.wantErr) {
				t.Errorf("body = %s, want it to mention %q", rec.Body.String(), tt.wantErr)
			}
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	handler := newTestServer(t).routes()
	registerTestUser(t, handler, "alice@example.com")

	rec := doJSON(t, handler, http.MethodPost, "/api/register",
		`{"email":"alice@example.com","name":"Other Alice","password":"different1"}`, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate register status = %d, want %d", rec.Code, http.StatusConflict)
	}

	// Emails are normalized, so a case variant is the same address.
	rec = doJSON(t, handler, http.MethodPost, "/api/register",
		`{"email":"ALICE@Example.com","name":"Shouty Alice","password":"different1"}`, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("case-variant register status = %d, want %d", rec.Code, http.StatusConflict)
	}
}

func TestLogin(t *testing.T) {
	handler := newTestServer(t).routes()
	registerTestUser(t, handler, "alice@example.com")

	apitest.New().
		Handler(handler).
		Post("/api/login").
		JSON(`{"email":"alice@example.com","password":"secret123"}`).
		Expect(t).
		Status(http.StatusOK).
		CookiePresent(auth.CookieName).
		Assert(jsonpath.Present("$.token")).
		Assert(jsonpath.Equal("$.user.email", "alice@example.com")).
		End()
}

func TestLogin_FailuresIndistinguishable(t *testing.T) {
	handler := newTestServer(t).routes()
	registerTestUser(t, handler, "alice@example.com")

	wrongPassword := doJSON(t, handler, http.MethodPost, "/api/login",
		`{"email":"alice@example.com","password":"not-the-password"}`, nil)
	unknownEmail := doJSON(t, handler, http.MethodPost, "/api/login",
		`{"email":"nobody@example.com","password":"whatever-password"}`, nil)

	if wrongPassword.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password status = %d, want %d", wrongPassword.Code, http.StatusUnauthorized)
	}
	if unknownEmail.Code != http.StatusUnauthorized {
		t.Fatalf("unknown email status = %d, want %d", unknownEmail.Code, http.StatusUnauthorized)
	}

	// The two failure modes must be byte-identical so callers cannot
	// probe which addresses are registered.
	if wrongPassword.Body.String() != unknownEmail.Body.String() {
		t.Errorf("failure bodies differ: %q vs %q", wrongPassword.Body.String(), unknownEmail.Body.String())
	}
	want := `{"error":"invalid email or password"}`
	if got := strings.TrimSpace(wrongPassword.Body.String()); got != want {
		t.Errorf("failure body = %q, want %q", got, want)
	}
}

func TestLogout(t *testing.T) {
	handler := newTestServer(t).routes()
	cookie := registerTestUser(t, handler, "alice@example.com")

	rec := doJSON(t, handler, http.MethodPost, "/api/logout", "", cookie)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("logout status = %d, want %d", rec.Code, http.StatusNoContent)
	}

	var cleared bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.CookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("logout did not clear the token cookie")
	}
}

func TestMe(t *testing.T) {
	handler := newTestServer(t).routes()

	// Anonymous callers get a null user, not an error.
	apitest.New().
		Handler(handler).
		Get("/api/me").
		Expect(t).
		Status(http.StatusOK).
		Body(`{"user":null}`).
		End()

	// So do callers with a broken token.
	garbage := &http.Cookie{Name: auth.CookieName, Value: "not-a-real-token"}
	rec := doJSON(t, handler, http.MethodGet, "/api/me", "", garbage)
	if rec.Code != http.StatusOK {
		t.Fatalf("garbage token status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"user":null}` {
		t.Errorf("garbage token body = %q, want null user", got)
	}

	cookie := registerTestUser(t, handler, "alice@example.com")
	apitest.New().
		Handler(handler).
		Get("/api/me").
		Cookies(apitest.NewCookie(auth.CookieName).Value(cookie.Value)).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.user.email", "alice@example.com")).
		End()
}

func TestProjectRoutes_RequireAuth(t *testing.T) {
	handler := newTestServer(t).routes()

	routes := []struct {
		method string
		target string
	}{
		{http.MethodGet, "/api/projects"},
		{http.MethodPost, "/api/projects"},
		{http.MethodGet, "/api/projects/some-id"},
		{http.MethodPut, "/api/projects/some-id"},
		{http.MethodDelete, "/api/projects/some-id"},
	}

	for _, rt := range routes {
		t.Run(rt.method+" "+rt.target, func(t *testing.T) {
			rec := doJSON(t, handler, rt.method, rt.target, "", nil)
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
			}
			want := `{"error":"authentication required"}`
			if got := strings.TrimSpace(rec.Body.String()); got != want {
				t.Errorf("body = %q, want %q", got, want)
			}
		})
	}
}

func TestProjectCRUD(t *testing.T) {
	handler := newTestServer(t).routes()
	cookie := registerTestUser(t, handler, "alice@example.com")

	created := createTestProject(t, handler, cookie,
		`{"title":"Website redesign","status":"active","deadline":"2026-10-01","assignee":"bob","budget":12500.50,"description":"Revamp the **landing page**."}`)

	if created.ID == "" {
		t.Fatal("created project has no ID")
	}
	if created.Status != store.StatusActive {
		t.Errorf("Status = %q, want %q", created.Status, store.StatusActive)
	}
	if created.Deadline == nil || !strings.HasPrefix(*created.Deadline, "2026-10-01") {
		t.Errorf("Deadline = %v, want 2026-10-01", created.Deadline)
	}
	if created.CreatedBy == "" {
		t.Error("CreatedBy not recorded from the session")
	}

	apitest.New().
		Handler(handler).
		Get("/api/projects/"+created.ID).
		Cookies(apitest.NewCookie(auth.CookieName).Value(cookie.Value)).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal("$.title", "Website redesign")).
		Assert(jsonpath.Equal("$.assignee", "bob")).
		Assert(jsonpath.Equal("$.budget", 12500.50)).
		End()

	// Partial update: only status and budget change.
	rec := doJSON(t, handler, http.MethodPut, "/api/projects/"+created.ID,
		`{"status":"completed","budget":9000}`, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d: %s", rec.Code, rec.Body.String())
	}
	var updated ProjectResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decoding update response: %v", err)
	}
	if updated.Status != store.StatusCompleted {
		t.Errorf("Status = %q, want %q", updated.Status, store.StatusCompleted)
	}
	if updated.Budget != 9000 {
		t.Errorf("Budget = %v, want 9000", updated.Budget)
	}
	if updated.Title != "Website redesign" {
		t.Errorf("Title changed on partial update: %q", updated.Title)
	}
	if updated.Assignee != "bob" {
		t.Errorf("Assignee changed on partial update: %q", updated.Assignee)
	}
	if updated.Deadline == nil {
		t.Error("Deadline cleared on partial update")
	}

	// An explicit empty deadline clears it.
	rec = doJSON(t, handler, http.MethodPut, "/api/projects/"+created.ID, `{"deadline":""}`, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("clear deadline status = %d: %s", rec.Code, rec.Body.String())
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("decoding clear response: %v", err)
	}
	if updated.Deadline != nil {
		t.Errorf("Deadline = %v, want nil after clearing", *updated.Deadline)
	}

	rec = doJSON(t, handler, http.MethodDelete, "/api/projects/"+created.ID, "", cookie)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want %d", rec.Code, http.StatusNoContent)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/projects/"+created.ID, "", cookie)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d, want %d", rec.Code, http.StatusNotFound)
	}

	rec = doJSON(t, handler, http.MethodDelete, "/api/projects/"+created.ID, "", cookie)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestProjectCreate_Defaults(t *testing.T) {
	handler := newTestServer(t).routes()
	cookie := registerTestUser(t, handler, "alice@example.com")

	created := createTestProject(t, handler, cookie, `{"title":"Bare minimum"}`)
	if created.Status != store.StatusPlanned {
		t.Errorf("Status = %q, want %q", created.Status, store.StatusPlanned)
	}
	if created.Deadline != nil {
		t.Errorf("Deadline = %v, want nil", *created.Deadline)
	}
	if created.Budget != 0 {
		t.Errorf("Budget = %v, want 0", created.Budget)
	}
}

func TestProjectCreate_Validation(t *testing.T) {
	handler := newTestServer(t).routes()
	cookie := registerTestUser(t, handler, "alice@example.com")

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"missing title", `{"status":"active"}`, "title is required"},
		{"blank title", `{"title":"   "}`, "title is required"},
		{"unknown status", `{"title":"X","status":"bogus"}`, "unknown status"},
		{"negative budget", `{"title":"X","budget":-5}`, "budget"},
		{"bad deadline", `{"title":"X","deadline":"next tuesday"}`, "deadline"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, handler, http.MethodPost, "/api/projects", tt.body, cookie)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusBadRequest, rec.Body.String())
			}
			if !strings.Contains(rec.Body.String(), tt.wantErr) {
				t.Errorf("body = %s, want it to mention %q", rec.Body.String(), tt.wantErr)
			}
		})
	}
}

func TestProjectUpdate_Validation(t *testing.T) {
	handler := newTestServer(t).routes()
	cookie := registerTestUser(t, handler, "alice@example.com")
	created := createTestProject(t, handler, cookie, `{"title":"Solid"}`)

	tests := []struct {
		name string
		body string
	}{
		{"blank title", `{"title":"  "}`},
		{"unknown status", `{"status":"paused"}`},
		{"negative budget", `{"budget":-1}`},
		{"bad deadline", `{"deadline":"soonish"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, handler, http.MethodPut, "/api/projects/"+created.ID, tt.body, cookie)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusBadRequest, rec.Body.String())
			}
		})
	}

	rec := doJSON(t, handler, http.MethodPut, "/api/projects/nope", `{"title":"New"}`, cookie)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing project update status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestProjectList_Filters(t *testing.T) {
	handler := newTestServer(t).routes()
	cookie := registerTestUser(t, handler, "alice@example.com")

	createTestProject(t, handler, cookie, `{"title":"Data warehouse migration","status":"active","assignee":"bob"}`)
	createTestProject(t, handler, cookie, `{"title":"Office move","status":"planned","assignee":"carol"}`)
	createTestProject(t, handler, cookie, `{"title":"Website redesign","status":"active","assignee":"carol"}`)

	sessionCookie := apitest.NewCookie(auth.CookieName).Value(cookie.Value)

	apitest.New().
		Handler(handler).
		Get("/api/projects").
		Cookies(sessionCookie).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Len("$.projects", 3)).
		Assert(jsonpath.Equal("$.count", float64(3))).
		End()

	apitest.New().
		Handler(handler).
		Get("/api/projects").
		Query("status", "active").
		Cookies(sessionCookie).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Len("$.projects", 2)).
		End()

	apitest.New().
		Handler(handler).
		Get("/api/projects").
		Query("status", "active").
		Query("assignee", "carol").
		Cookies(sessionCookie).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Len("$.projects", 1)).
		Assert(jsonpath.Equal("$.projects[0].title", "Website redesign")).
		End()

	apitest.New().
		Handler(handler).
		Get("/api/projects").
		Query("q", "WAREHOUSE").
		Cookies(sessionCookie).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Len("$.projects", 1)).
		Assert(jsonpath.Equal("$.projects[0].title", "Data warehouse migration")).
		End()

	apitest.New().
		Handler(handler).
		Get("/api/projects").
		Query("limit", "2").
		Cookies(sessionCookie).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Len("$.projects", 2)).
		End()

	// Malformed filters are rejected, not ignored.
	rec := doJSON(t, handler, http.MethodGet, "/api/projects?status=bogus", "", cookie)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bogus status filter = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	rec = doJSON(t, handler, http.MethodGet, "/api/projects?limit=abc", "", cookie)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad limit filter = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
