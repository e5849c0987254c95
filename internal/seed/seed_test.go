// ABOUTME: Tests for seed file parsing, validation, and idempotent apply
// ABOUTME: Runs against a real SQLite store in a temp directory

package seed

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/2389/projectdesk/internal/auth"
	"github.com/2389/projectdesk/internal/store"
)

func writeSeed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing seed file: %v", err)
	}
	return path
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "seed-test.db"))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLoad_Testdata(t *testing.T) {
	f, err := Load(filepath.Join("testdata", "demo.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(f.Users) != 2 {
		t.Errorf("expected 2 users, got %d", len(f.Users))
	}
	if len(f.Projects) != 3 {
		t.Errorf("expected 3 projects, got %d", len(f.Projects))
	}
	if f.Users[0].Email != "alice@example.com" {
		t.Errorf("expected first user alice@example.com, got %q", f.Users[0].Email)
	}
	if f.Projects[1].Budget != 150000.0 {
		t.Errorf("expected budget 150000, got %v", f.Projects[1].Budget)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/seed.toml")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !strings.Contains(err.Error(), "reading seed file") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoad_InvalidTOML(t *testing.T) {
	path := writeSeed(t, "[[users]\nemail = broken")
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for invalid TOML")
	}
	if !strings.Contains(err.Error(), "parsing seed file") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoad_ValidationFailures(t *testing.T) {
	validUser := `
[[users]]
email = "alice@example.com"
name = "Alice"
password = "demo-password-1"
`

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name: "bad email",
			content: `
[[users]]
email = "not-an-email"
name = "Alice"
password = "demo-password-1"
`,
			wantErr: "users[0]: a valid email",
		},
		{
			name: "blank name",
			content: `
[[users]]
email = "alice@example.com"
name = "  "
password = "demo-password-1"
`,
			wantErr: "users[0]: name is required",
		},
		{
			name: "short password",
			content: `
[[users]]
email = "alice@example.com"
name = "Alice"
password = "short"
`,
			wantErr: "users[0]: password must be at least 8 characters",
		},
		{
			name: "blank title",
			content: validUser + `
[[projects]]
title = "  "
owner = "alice@example.com"
`,
			wantErr: "projects[0]: title is required",
		},
		{
			name: "unknown status",
			content: validUser + `
[[projects]]
title = "Audit"
status = "someday"
owner = "alice@example.com"
`,
			wantErr: `unknown status "someday"`,
		},
		{
			name: "negative budget",
			content: validUser + `
[[projects]]
title = "Audit"
budget = -5.0
owner = "alice@example.com"
`,
			wantErr: "budget must not be negative",
		},
		{
			name: "bad deadline",
			content: validUser + `
[[projects]]
title = "Audit"
deadline = "next tuesday"
owner = "alice@example.com"
`,
			wantErr: "deadline must be",
		},
		{
			name: "missing owner",
			content: validUser + `
[[projects]]
title = "Audit"
`,
			wantErr: "owner is required",
		},
		{
			name: "owner not in users",
			content: validUser + `
[[projects]]
title = "Audit"
owner = "ghost@example.com"
`,
			wantErr: `owner "ghost@example.com" is not in the users list`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeSeed(t, tt.content)
			_, err := Load(path)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	f, err := Load(filepath.Join("testdata", "demo.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	counts, err := Apply(ctx, f, s)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if counts.UsersCreated != 2 || counts.UsersSkipped != 0 {
		t.Errorf("users created/skipped = %d/%d, want 2/0", counts.UsersCreated, counts.UsersSkipped)
	}
	if counts.ProjectsCreated != 3 || counts.ProjectsSkipped != 0 {
		t.Errorf("projects created/skipped = %d/%d, want 3/0", counts.ProjectsCreated, counts.ProjectsSkipped)
	}

	alice, err := s.GetUserByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail() error = %v", err)
	}
	if alice.Name != "Alice Chen" {
		t.Errorf("expected name Alice Chen, got %q", alice.Name)
	}
	if !auth.CheckPassword(alice.PasswordHash, "demo-password-1") {
		t.Error("seeded password hash does not verify")
	}

	projects, err := s.ListProjects(ctx, store.ProjectFilter{})
	if err != nil {
		t.Fatalf("ListProjects() error = %v", err)
	}
	if len(projects) != 3 {
		t.Fatalf("expected 3 projects, got %d", len(projects))
	}

	var redesign *store.Project
	for _, p := range projects {
		if p.Title == "Website redesign" {
			redesign = p
		}
	}
	if redesign == nil {
		t.Fatal("seeded project not found")
	}
	if redesign.CreatedBy != alice.ID {
		t.Errorf("expected owner %s, got %s", alice.ID, redesign.CreatedBy)
	}
	if redesign.Status != store.StatusActive {
		t.Errorf("expected status active, got %q", redesign.Status)
	}
	if redesign.Deadline == nil || redesign.Deadline.Format("2006-01-02") != "2026-10-15" {
		t.Errorf("unexpected deadline %v", redesign.Deadline)
	}

	// The audit project omits status and deadline.
	for _, p := range projects {
		if p.Title == "Quarterly audit" {
			if p.Status != store.StatusPlanned {
				t.Errorf("expected default status planned, got %q", p.Status)
			}
			if p.Deadline != nil {
				t.Errorf("expected no deadline, got %v", p.Deadline)
			}
		}
	}
}

func TestApply_Rerun(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	f, err := Load(filepath.Join("testdata", "demo.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if _, err := Apply(ctx, f, s); err != nil {
		t.Fatalf("first Apply() error = %v", err)
	}

	counts, err := Apply(ctx, f, s)
	if err != nil {
		t.Fatalf("second Apply() error = %v", err)
	}
	if counts.UsersCreated != 0 || counts.UsersSkipped != 2 {
		t.Errorf("users created/skipped = %d/%d, want 0/2", counts.UsersCreated, counts.UsersSkipped)
	}
	if counts.ProjectsCreated != 0 || counts.ProjectsSkipped != 3 {
		t.Errorf("projects created/skipped = %d/%d, want 0/3", counts.ProjectsCreated, counts.ProjectsSkipped)
	}

	projects, err := s.ListProjects(ctx, store.ProjectFilter{})
	if err != nil {
		t.Fatalf("ListProjects() error = %v", err)
	}
	if len(projects) != 3 {
		t.Errorf("expected 3 projects after rerun, got %d", len(projects))
	}
}

func TestApply_ExistingUserKeepsAccount(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	hash, err := auth.HashPassword("original-password")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	existing := &store.User{Email: "alice@example.com", Name: "Original Alice", PasswordHash: hash}
	if err := s.CreateUser(ctx, existing); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	f, err := Load(filepath.Join("testdata", "demo.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	counts, err := Apply(ctx, f, s)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if counts.UsersCreated != 1 || counts.UsersSkipped != 1 {
		t.Errorf("users created/skipped = %d/%d, want 1/1", counts.UsersCreated, counts.UsersSkipped)
	}

	// The seed must not overwrite the existing account.
	alice, err := s.GetUserByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail() error = %v", err)
	}
	if alice.Name != "Original Alice" {
		t.Errorf("expected name Original Alice, got %q", alice.Name)
	}
	if !auth.CheckPassword(alice.PasswordHash, "original-password") {
		t.Error("existing password hash was replaced")
	}

	// Alice's projects attach to her existing account.
	projects, err := s.ListProjects(ctx, store.ProjectFilter{Search: "Website redesign"})
	if err != nil {
		t.Fatalf("ListProjects() error = %v", err)
	}
	if len(projects) != 1 {
		t.Fatalf("expected 1 project, got %d", len(projects))
	}
	if projects[0].CreatedBy != alice.ID {
		t.Errorf("expected owner %s, got %s", alice.ID, projects[0].CreatedBy)
	}
}
