// ABOUTME: SQLite persistence for project records
// ABOUTME: CRUD plus filtered listing with status, assignee, and text search

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CreateProject inserts a new project. A missing ID, status, or timestamp
// is filled in; the status defaults to planned.
func (s *SQLiteStore) CreateProject(ctx context.Context, project *Project) error {
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

	var deadline *string
	if project.Deadline != nil {
		d := project.Deadline.UTC().Format(time.RFC3339)
		deadline = &d
	}

	query := `
		INSERT INTO projects (id, title, status, deadline, assignee, budget, description, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		project.ID,
		project.Title,
		project.Status,
		deadline,
		project.Assignee,
		project.Budget,
		project.Description,
		project.CreatedBy,
		project.CreatedAt.UTC().Format(time.RFC3339),
		project.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting project: %w", err)
	}

	s.logger.Debug("created project", "id", project.ID, "title", project.Title)
	return nil
}

// GetProject retrieves a project by ID.
// Returns ErrNotFound if the project doesn't exist.
func (s *SQLiteStore) GetProject(ctx context.Context, id string) (*Project, error) {
	query := `
		SELECT id, title, status, deadline, assignee, budget, description, created_by, created_at, updated_at
		FROM projects
		WHERE id = ?
	`

	var project Project
	var deadlineStr sql.NullString
	var createdAtStr, updatedAtStr string

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&project.ID,
		&project.Title,
		&project.Status,
		&deadlineStr,
		&project.Assignee,
		&project.Budget,
		&project.Description,
		&project.CreatedBy,
		&createdAtStr,
		&updatedAtStr,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying project: %w", err)
	}

	if deadlineStr.Valid {
		deadline, err := time.Parse(time.RFC3339, deadlineStr.String)
		if err != nil {
			return nil, fmt.Errorf("parsing deadline: %w", err)
		}
		project.Deadline = &deadline
	}

	project.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}

	project.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}

	return &project, nil
}

// ListProjects returns projects matching the filter, newest first.
func (s *SQLiteStore) ListProjects(ctx context.Context, filter ProjectFilter) ([]*Project, error) {
	sqlQuery := `
		SELECT id, title, status, deadline, assignee, budget, description, created_by, created_at, updated_at
		FROM projects
		WHERE 1=1
	`
	args := []any{}

	if filter.Status != "" {
		sqlQuery += ` AND status = ?`
		args = append(args, filter.Status)
	}
	if filter.Assignee != "" {
		sqlQuery += ` AND assignee = ?`
		args = append(args, filter.Assignee)
	}
	if filter.Search != "" {
		sqlQuery += ` AND (lower(title) LIKE ? OR lower(description) LIKE ?)`
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		args = append(args, pattern, pattern)
	}

	sqlQuery += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	sqlQuery += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		sqlQuery += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("querying projects: %w", err)
	}
	defer rows.Close()

	var projects []*Project
	for rows.Next() {
		var project Project
		var deadlineStr sql.NullString
		var createdAtStr, updatedAtStr string

		err := rows.Scan(
			&project.ID,
			&project.Title,
			&project.Status,
			&deadlineStr,
			&project.Assignee,
			&project.Budget,
			&project.Description,
			&project.CreatedBy,
			&createdAtStr,
			&updatedAtStr,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning project: %w", err)
		}

		if deadlineStr.Valid {
			deadline, err := time.Parse(time.RFC3339, deadlineStr.String)
			if err != nil {
				return nil, fmt.Errorf("parsing deadline: %w", err)
			}
			project.Deadline = &deadline
		}
		project.CreatedAt, _ = time.Parse(time.RFC3339, createdAtStr)
		project.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAtStr)

		projects = append(projects, &project)
	}

	return projects, rows.Err()
}

// UpdateProject applies a partial update and returns the updated project.
// Returns ErrNotFound if the project doesn't exist.
func (s *SQLiteStore) UpdateProject(ctx context.Context, id string, params UpdateProjectParams) (*Project, error) {
	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC().Format(time.RFC3339)}

	if params.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *params.Title)
	}
	if params.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *params.Status)
	}
	if params.ClearDeadline {
		sets = append(sets, "deadline = NULL")
	} else if params.Deadline != nil {
		sets = append(sets, "deadline = ?")
		args = append(args, params.Deadline.UTC().Format(time.RFC3339))
	}
	if params.Assignee != nil {
		sets = append(sets, "assignee = ?")
		args = append(args, *params.Assignee)
	}
	if params.Budget != nil {
		sets = append(sets, "budget = ?")
		args = append(args, *params.Budget)
	}
	if params.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *params.Description)
	}

	query := `UPDATE projects SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	args = append(args, id)

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
func (s *SQLiteStore) DeleteProject(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
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
