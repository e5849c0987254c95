// ABOUTME: TOML seed file loading and application for demo data
// ABOUTME: Creates users and projects, mapping project owners by email

package seed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/2389/projectdesk/internal/auth"
	"github.com/2389/projectdesk/internal/store"
)

// File is the parsed contents of a seed file.
type File struct {
	Users    []UserSeed    `toml:"users"`
	Projects []ProjectSeed `toml:"projects"`
}

// UserSeed describes one user to create. The password is hashed before it
// reaches the store.
type UserSeed struct {
	Email    string `toml:"email"`
	Name     string `toml:"name"`
	Password string `toml:"password"`
}

// ProjectSeed describes one project to create. Owner references a user in
// the same file by email.
type ProjectSeed struct {
	Title       string  `toml:"title"`
	Status      string  `toml:"status"`
	Deadline    string  `toml:"deadline"`
	Assignee    string  `toml:"assignee"`
	Budget      float64 `toml:"budget"`
	Description string  `toml:"description"`
	Owner       string  `toml:"owner"`
}

// Counts reports what Apply created and what it skipped.
type Counts struct {
	UsersCreated    int
	UsersSkipped    int
	ProjectsCreated int
	ProjectsSkipped int
}

// Load reads and validates a seed file from the given path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}

	var f File
	if _, err := toml.Decode(string(data), &f); err != nil {
		return nil, fmt.Errorf("parsing seed file: %w", err)
	}

	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("validating seed file: %w", err)
	}

	return &f, nil
}

// Validate checks every entry before anything touches the store, so a bad
// file fails whole rather than half-applied.
func (f *File) Validate() error {
	emails := make(map[string]bool, len(f.Users))
	for i, u := range f.Users {
		if !strings.Contains(u.Email, "@") {
			return fmt.Errorf("users[%d]: a valid email is required", i)
		}
		if strings.TrimSpace(u.Name) == "" {
			return fmt.Errorf("users[%d]: name is required", i)
		}
		if len(u.Password) < 8 {
			return fmt.Errorf("users[%d]: password must be at least 8 characters", i)
		}
		emails[normalizeEmail(u.Email)] = true
	}

	for i, p := range f.Projects {
		if strings.TrimSpace(p.Title) == "" {
			return fmt.Errorf("projects[%d]: title is required", i)
		}
		if p.Status != "" && !store.ValidStatus(p.Status) {
			return fmt.Errorf("projects[%d]: unknown status %q", i, p.Status)
		}
		if p.Budget < 0 {
			return fmt.Errorf("projects[%d]: budget must not be negative", i)
		}
		if p.Deadline != "" {
			if _, err := parseDeadline(p.Deadline); err != nil {
				return fmt.Errorf("projects[%d]: %w", i, err)
			}
		}
		if p.Owner == "" {
			return fmt.Errorf("projects[%d]: owner is required", i)
		}
		if !emails[normalizeEmail(p.Owner)] {
			return fmt.Errorf("projects[%d]: owner %q is not in the users list", i, p.Owner)
		}
	}

	return nil
}

// Apply inserts the seed data. Re-running the same file is safe: users that
// already exist are skipped and keep their account, and a project is skipped
// when its owner already has one with the same title.
func Apply(ctx context.Context, f *File, s store.Store) (*Counts, error) {
	counts := &Counts{}

	owners := make(map[string]string, len(f.Users))
	for _, u := range f.Users {
		email := normalizeEmail(u.Email)

		existing, err := s.GetUserByEmail(ctx, email)
		if err == nil {
			owners[email] = existing.ID
			counts.UsersSkipped++
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			return counts, fmt.Errorf("checking user %s: %w", email, err)
		}

		hash, err := auth.HashPassword(u.Password)
		if err != nil {
			return counts, fmt.Errorf("hashing password for %s: %w", email, err)
		}

		user := &store.User{Email: email, Name: strings.TrimSpace(u.Name), PasswordHash: hash}
		if err := s.CreateUser(ctx, user); err != nil {
			return counts, fmt.Errorf("creating user %s: %w", email, err)
		}
		owners[email] = user.ID
		counts.UsersCreated++
	}

	for _, p := range f.Projects {
		ownerID := owners[normalizeEmail(p.Owner)]
		title := strings.TrimSpace(p.Title)

		exists, err := projectExists(ctx, s, ownerID, title)
		if err != nil {
			return counts, fmt.Errorf("checking project %q: %w", title, err)
		}
		if exists {
			counts.ProjectsSkipped++
			continue
		}

		project := &store.Project{
			Title:       title,
			Status:      p.Status,
			Assignee:    strings.TrimSpace(p.Assignee),
			Budget:      p.Budget,
			Description: p.Description,
			CreatedBy:   ownerID,
		}
		if p.Deadline != "" {
			deadline, err := parseDeadline(p.Deadline)
			if err != nil {
				return counts, fmt.Errorf("project %q: %w", title, err)
			}
			project.Deadline = deadline
		}

		if err := s.CreateProject(ctx, project); err != nil {
			return counts, fmt.Errorf("creating project %q: %w", title, err)
		}
		counts.ProjectsCreated++
	}

	return counts, nil
}

// projectExists reports whether the owner already has a project with this
// exact title.
func projectExists(ctx context.Context, s store.Store, ownerID, title string) (bool, error) {
	projects, err := s.ListProjects(ctx, store.ProjectFilter{Search: title})
	if err != nil {
		return false, err
	}
	for _, p := range projects {
		if p.Title == title && p.CreatedBy == ownerID {
			return true, nil
		}
	}
	return false, nil
}

// normalizeEmail lowercases and trims an email so seed lookups agree with
// the store's unique index.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// parseDeadline accepts an RFC 3339 timestamp or a bare YYYY-MM-DD date.
func parseDeadline(value string) (*time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, errors.New("deadline must be an RFC 3339 timestamp or a YYYY-MM-DD date")
	}
	return &t, nil
}
