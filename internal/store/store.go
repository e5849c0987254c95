// ABOUTME: Store interface and data types for projectdesk persistence
// ABOUTME: Defines User, Project structs and the Store interface both backends implement

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when creating a user with an email that is already registered
var ErrEmailExists = errors.New("email already registered")

// User represents a registered account
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}

// Project status constants
const (
	StatusPlanned   = "planned"
	StatusActive    = "active"
	StatusOnHold    = "on-hold"
	StatusCompleted = "completed"
)

// ValidStatus reports whether s is a recognized project status.
func ValidStatus(s string) bool {
	switch s {
	case StatusPlanned, StatusActive, StatusOnHold, StatusCompleted:
		return true
	}
	return false
}

// Project represents a tracked project record
type Project struct {
	ID          string
	Title       string
	Status      string // planned, active, on-hold, completed (defaults to planned)
	Deadline    *time.Time
	Assignee    string
	Budget      float64
	Description string // Markdown, rendered on the dashboard detail page
	CreatedBy   string // user ID of the creator, recorded for attribution only
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// List limits applied by ListProjects
const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// ProjectFilter narrows ListProjects results. Zero values mean no filter.
type ProjectFilter struct {
	Status   string
	Assignee string
	Search   string // case-insensitive substring match over title and description
	Limit    int    // defaults to DefaultListLimit, capped at MaxListLimit
	Offset   int
}

// UpdateProjectParams carries a partial project update. Nil fields keep
// their current value; ClearDeadline removes the deadline regardless of
// the Deadline field.
type UpdateProjectParams struct {
	Title         *string
	Status        *string
	Deadline      *time.Time
	ClearDeadline bool
	Assignee      *string
	Budget        *float64
	Description   *string
}

// Store defines the interface for user and project persistence
type Store interface {
	// Users
	CreateUser(ctx context.Context, user *User) error
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByID(ctx context.Context, id string) (*User, error)

	// Projects
	CreateProject(ctx context.Context, project *Project) error
	GetProject(ctx context.Context, id string) (*Project, error)
	ListProjects(ctx context.Context, filter ProjectFilter) ([]*Project, error)
	UpdateProject(ctx context.Context, id string, params UpdateProjectParams) (*Project, error)
	DeleteProject(ctx context.Context, id string) error

	// Ping verifies the underlying database is reachable
	Ping(ctx context.Context) error

	// Close releases any resources held by the store
	Close() error
}
