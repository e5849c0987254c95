// ABOUTME: Postgres implementation of the Store interface using pgx and goose
// ABOUTME: Schema is managed through embedded migrations applied at startup

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/2389/projectdesk/internal/store/migrations"
)

// PostgresStore implements the Store interface using PostgreSQL
type PostgresStore struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore connects to Postgres with the given DSN and applies any
// pending schema migrations.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	logger := slog.Default().With("component", "store")

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	if err := runPostgresMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	logger.Info("Postgres store initialized")
	return &PostgresStore{db: db, logger: logger}, nil
}

// gooseUpContext is a seam for testing migration failures.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

func runPostgresMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("setting dialect: %w", err)
	}
	return gooseUpContext(ctx, db, ".")
}

// Ping verifies the database is reachable
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection
func (s *PostgresStore) Close() error {
	s.logger.Info("closing Postgres store")
	return s.db.Close()
}

// isPostgresUniqueViolation checks for a unique constraint violation
// reported by the pgx stdlib driver.
func isPostgresUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "duplicate key value violates unique constraint") ||
		strings.Contains(errStr, "SQLSTATE 23505")
}

// CreateUser inserts a new user. A missing ID or CreatedAt is filled in.
// Returns ErrEmailExists if the email is already registered.
func (s *PostgresStore) CreateUser(ctx context.Context, user *User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO users (id, email, name, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.Name,
		user.PasswordHash,
		user.CreatedAt.UTC(),
	)
	if err != nil {
		if isPostgresUniqueViolation(err) {
			return ErrEmailExists
		}
		return fmt.Errorf("inserting user: %w", err)
	}

	s.logger.Debug("created user", "id", user.ID, "email", user.Email)
	return nil
}

// GetUserByEmail retrieves a user by email.
// Returns ErrNotFound if no user is registered under the email.
func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id, email, name, password_hash, created_at
		FROM users
		WHERE email = $1
	`
	return s.scanUser(s.db.QueryRowContext(ctx, query, email))
}

// GetUserByID retrieves a user by ID.
// Returns ErrNotFound if the user doesn't exist.
func (s *PostgresStore) GetUserByID(ctx context.Context, id string) (*User, error) {
	query := `
		SELECT id, email, name, password_hash, created_at
		FROM users
		WHERE id = $1
	`
	return s.scanUser(s.db.QueryRowContext(ctx, query, id))
}

func (s *PostgresStore) scanUser(row *sql.Row) (*User, error) {
	var user User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return &user, nil
}

// CreateProject inserts a new project. A missing ID, status, or timestamp
// is filled in; the status defaults to planned.
func (s *PostgresStore) CreateProject(ctx context.Context, project *Project) error {
	if project.ID == "" {
		project.ID = uuid.New().String()
	}
	if project.Status == "" {
		project.Status = StatusPlanned
	}
	if project.CreatedAt.IsZero() {
		project.CreatedAt = time.Now()
	}
	if project.UpdatedAt.IsZero() {
		project.UpdatedAt = project.CreatedAt
	}

	query := `
		INSERT INTO projects (id, title, status, deadline, assignee, budget, description, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := s.db.ExecContext(ctx, query,
		project.ID,
		project.Title,
		project.Status,
		project.Deadline,
		project.Assignee,
		project.Budget,
		project.Description,
		project.CreatedBy,
		project.CreatedAt.UTC(),
		project.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting project: %w", err)
	}

	s.logger.Debug("created project", "id", project.ID, "title", project.Title)
	return nil
}

// GetProject retrieves a project by ID.
// Returns ErrNotFound if the project doesn't exist.
func (s *PostgresStore) GetProject(ctx context.Context, id string) (*Project, error) {
	query := `
		SELECT id, title, status, deadline, assignee, budget, description, created_by, created_at, updated_at
		FROM projects
		WHERE id = $1
	`

	var project Project
	var deadline sql.NullTime

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&project.ID,
		&project.Title,
		&project.Status,
		&deadline,
		&project.Assignee,
		&project.Budget,
		&project.Description,
		&project.CreatedBy,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying project: %w", err)
	}

	if deadline.Valid {
		d := deadline.Time
		project.Deadline = &d
	}

	return &project, nil
}

// ListProjects returns projects matching the filter, newest first.
func (s *PostgresStore) ListProjects(ctx context.Context, filter ProjectFilter) ([]*Project, error) {
	sqlQuery := `
		SELECT id, title, status, deadline, assignee, budget, description, created_by, created_at, updated_at
		FROM projects
		WHERE 1=1
	`
	args := []any{}

	if filter.Status != "" {
		args = append(args, filter.Status)
		sqlQuery += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.Assignee != "" {
		args = append(args, filter.Assignee)
		sqlQuery += fmt.Sprintf(" AND assignee = $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		sqlQuery += fmt.Sprintf(" AND (lower(title) LIKE $%d OR lower(description) LIKE $%d)", len(args), len(args))
	}

	sqlQuery += " ORDER BY created_at DESC"

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	args = append(args, limit)
	sqlQuery += fmt.Sprintf(" LIMIT $%d", len(args))

	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		sqlQuery += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("querying projects: %w", err)
	}
	defer rows.Close()

	var projects []*Project
	for rows.Next() {
		var project Project
		var deadline sql.NullTime

		err := rows.Scan(
			&project.ID,
			&project.Title,
			&project.Status,
			&deadline,
			&project.Assignee,
			&project.Budget,
			&project.Description,
			&project.CreatedBy,
			&project.CreatedAt,
			&project.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning project: %w", err)
		}

		if deadline.Valid {
			d := deadline.Time
			project.Deadline = &d
		}

		projects = append(projects, &project)
	}

	return projects, rows.Err()
}

// UpdateProject applies a partial update and returns the updated project.
// Returns ErrNotFound if the project doesn't exist.
func (s *PostgresStore) UpdateProject(ctx context.Context, id string, params UpdateProjectParams) (*Project, error) {
	args := []any{time.Now().UTC()}
	sets := []string{"updated_at = $1"}

	if params.Title != nil {
		args = append(args, *params.Title)
		sets = append(sets, fmt.Sprintf("title = $%d", len(args)))
	}
	if params.Status != nil {
		args = append(args, *params.Status)
		sets = append(sets, fmt.Sprintf("status = $%d", len(args)))
	}
	if params.ClearDeadline {
		sets = append(sets, "deadline = NULL")
	} else if params.Deadline != nil {
		args = append(args, params.Deadline.UTC())
		sets = append(sets, fmt.Sprintf("deadline = $%d", len(args)))
	}
	if params.Assignee != nil {
		args = append(args, *params.Assignee)
		sets = append(sets, fmt.Sprintf("assignee = $%d", len(args)))
	}
	if params.Budget != nil {
		args = append(args, *params.Budget)
		sets = append(sets, fmt.Sprintf("budget = $%d", len(args)))
	}
	if params.Description != nil {
		args = append(args, *params.Description)
		sets = append(sets, fmt.Sprintf("description = $%d", len(args)))
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE projects SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("updating project: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrNotFound
	}

	s.logger.Debug("updated project", "id", id)
	return s.GetProject(ctx, id)
}

// DeleteProject removes a project.
// Returns ErrNotFound if the project doesn't exist.
func (s *PostgresStore) DeleteProject(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	s.logger.Debug("deleted project", "id", id)
	return nil
}
