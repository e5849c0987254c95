// ABOUTME: JSON API handlers for registration, login, and project CRUD
// ABOUTME: Translates request bodies and store errors into HTTP responses

package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/2389/projectdesk/internal/auth"
	"github.com/2389/projectdesk/internal/store"
)

// RegisterRequest is the JSON body for POST /api/register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// LoginRequest is the JSON body for POST /api/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse is the JSON shape of a user. The password hash never leaves
// the store layer.
type UserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

// AuthResponse is the JSON response for successful register and login calls.
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// MeResponse is the JSON response for GET /api/me. User is null when the
// request carries no valid token.
type MeResponse struct {
	User *UserResponse `json:"user"`
}

// ProjectResponse is the JSON shape of a project.
type ProjectResponse struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Status      string  `json:"status"`
	Deadline    *string `json:"deadline"`
	Assignee    string  `json:"assignee"`
	Budget      float64 `json:"budget"`
	Description string  `json:"description"`
	CreatedBy   string  `json:"created_by"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

// ProjectListResponse is the JSON response for GET /api/projects.
type ProjectListResponse struct {
	Projects []ProjectResponse `json:"projects"`
	Count    int               `json:"count"`
}

// CreateProjectRequest is the JSON body for POST /api/projects.
type CreateProjectRequest struct {
	Title       string  `json:"title"`
	Status      string  `json:"status"`
	Deadline    string  `json:"deadline"`
	Assignee    string  `json:"assignee"`
	Budget      float64 `json:"budget"`
	Description string  `json:"description"`
}

// UpdateProjectRequest is the JSON body for PUT /api/projects/{id}.
// Absent fields are left unchanged; an empty deadline string clears it.
type UpdateProjectRequest struct {
	Title       *string  `json:"title"`
	Status      *string  `json:"status"`
	Deadline    *string  `json:"deadline"`
	Assignee    *string  `json:"assignee"`
	Budget      *float64 `json:"budget"`
	Description *string  `json:"description"`
}

// registerAPIRoutes registers the JSON API on the given mux. The five
// project routes require authentication; everything else is public.
func (s *Server) registerAPIRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/register", s.handleRegister)
	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("POST /api/logout", s.handleLogout)
	mux.HandleFunc("GET /api/me", s.handleMe)

	requireAuth := s.codec.Middleware
	mux.Handle("GET /api/projects", requireAuth(http.HandlerFunc(s.handleProjectList)))
	mux.Handle("POST /api/projects", requireAuth(http.HandlerFunc(s.handleProjectCreate)))
	mux.Handle("GET /api/projects/{id}", requireAuth(http.HandlerFunc(s.handleProjectGet)))
	mux.Handle("PUT /api/projects/{id}", requireAuth(http.HandlerFunc(s.handleProjectUpdate)))
	mux.Handle("DELETE /api/projects/{id}", requireAuth(http.HandlerFunc(s.handleProjectDelete)))
}

// handleRegister handles POST /api/register.
// It creates a user, issues a token, and sets the session cookie.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	req, err := parseRegisterRequest(r.Body)
	if err != nil {
		s.sendJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	user := &store.User{
		Email:        normalizeEmail(req.Email),
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: hash,
	}
	if err := s.store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			s.sendJSONError(w, http.StatusConflict, "email already registered")
			return
		}
		s.logger.Error("failed to create user", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	token, err := s.codec.Issue(user.ID, user.Email)
	if err != nil {
		s.logger.Error("failed to issue token", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	auth.SetTokenCookie(w, r, token, s.secureCookies())
	s.logger.Info("user registered", "email", user.Email)
	sendJSON(w, http.StatusCreated, AuthResponse{Token: token, User: userResponseFrom(user)})
}

// handleLogin handles POST /api/login.
// Unknown emails and wrong passwords produce byte-identical responses.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	req, err := parseLoginRequest(r.Body)
	if err != nil {
		s.sendJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := s.store.GetUserByEmail(r.Context(), normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Burn a bcrypt comparison so unknown emails cost the same
			// as wrong passwords. This prevents timing attacks that could
			// enumerate registered addresses.
			_ = auth.CheckPassword(auth.DummyHash, req.Password)
			s.sendJSONError(w, http.StatusUnauthorized, auth.ErrInvalidCredentials.Error())
			return
		}
		s.logger.Error("failed to get user", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		s.sendJSONError(w, http.StatusUnauthorized, auth.ErrInvalidCredentials.Error())
		return
	}

	token, err := s.codec.Issue(user.ID, user.Email)
	if err != nil {
		s.logger.Error("failed to issue token", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	auth.SetTokenCookie(w, r, token, s.secureCookies())
	s.logger.Info("user logged in", "email", user.Email)
	sendJSON(w, http.StatusOK, AuthResponse{Token: token, User: userResponseFrom(user)})
}

// handleLogout handles POST /api/logout. Tokens are stateless, so logout
// only clears the cookie.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	auth.ClearTokenCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// handleMe handles GET /api/me. It never fails: anonymous requests and
// tokens for since-deleted users both answer with a null user.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	claims := s.codec.Identify(r)
	if claims == nil {
		sendJSON(w, http.StatusOK, MeResponse{})
		return
	}

	user, err := s.store.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			sendJSON(w, http.StatusOK, MeResponse{})
			return
		}
		s.logger.Error("failed to get user", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := userResponseFrom(user)
	sendJSON(w, http.StatusOK, MeResponse{User: &resp})
}

// handleProjectList handles GET /api/projects with optional status,
// assignee, q, limit, and offset query parameters.
func (s *Server) handleProjectList(w http.ResponseWriter, r *http.Request) {
	filter, err := parseProjectFilter(r.URL.Query())
	if err != nil {
		s.sendJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	projects, err := s.store.ListProjects(r.Context(), filter)
	if err != nil {
		s.logger.Error("failed to list projects", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := ProjectListResponse{Projects: make([]ProjectResponse, 0, len(projects))}
	for _, p := range projects {
		resp.Projects = append(resp.Projects, projectResponseFrom(p))
	}
	resp.Count = len(resp.Projects)
	sendJSON(w, http.StatusOK, resp)
}

// handleProjectCreate handles POST /api/projects. The creator is recorded
// from the token claims.
func (s *Server) handleProjectCreate(w http.ResponseWriter, r *http.Request) {
	req, err := parseCreateProjectRequest(r.Body)
	if err != nil {
		s.sendJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	claims := auth.ClaimsFromContext(r.Context())
	project := &store.Project{
		Title:       strings.TrimSpace(req.Title),
		Status:      req.Status,
		Assignee:    strings.TrimSpace(req.Assignee),
		Budget:      req.Budget,
		Description: req.Description,
		CreatedBy:   claims.UserID,
	}
	if req.Deadline != "" {
		deadline, err := parseDeadline(req.Deadline)
		if err != nil {
			s.sendJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		project.Deadline = deadline
	}

	if err := s.store.CreateProject(r.Context(), project); err != nil {
		s.logger.Error("failed to create project", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.logger.Info("project created", "id", project.ID, "title", project.Title)
	sendJSON(w, http.StatusCreated, projectResponseFrom(project))
}

// handleProjectGet handles GET /api/projects/{id}.
func (s *Server) handleProjectGet(w http.ResponseWriter, r *http.Request) {
	project, err := s.store.GetProject(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.sendJSONError(w, http.StatusNotFound, "project not found")
			return
		}
		s.logger.Error("failed to get project", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	sendJSON(w, http.StatusOK, projectResponseFrom(project))
}

// handleProjectUpdate handles PUT /api/projects/{id} as a partial update.
func (s *Server) handleProjectUpdate(w http.ResponseWriter, r *http.Request) {
	var req UpdateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	params, err := req.toParams()
	if err != nil {
		s.sendJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	project, err := s.store.UpdateProject(r.Context(), r.PathValue("id"), params)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.sendJSONError(w, http.StatusNotFound, "project not found")
			return
		}
		s.logger.Error("failed to update project", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	sendJSON(w, http.StatusOK, projectResponseFrom(project))
}

// handleProjectDelete handles DELETE /api/projects/{id}.
func (s *Server) handleProjectDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteProject(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.sendJSONError(w, http.StatusNotFound, "project not found")
			return
		}
		s.logger.Error("failed to delete project", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// sendJSON writes a JSON response with the given status.
func sendJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// sendJSONError writes a JSON error response.
func (s *Server) sendJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// secureCookies reports whether session cookies should carry the Secure flag.
func (s *Server) secureCookies() bool {
	return s.config != nil && !s.config.IsDevelopment()
}

// normalizeEmail lowercases and trims an email address so lookups and the
// unique index agree on a single canonical form.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// parseRegisterRequest parses and validates a RegisterRequest from the given reader.
func parseRegisterRequest(r io.Reader) (*RegisterRequest, error) {
	var req RegisterRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return nil, errors.New("invalid JSON body")
	}

	if !strings.Contains(req.Email, "@") {
		return nil, errors.New("a valid email is required")
	}

	if strings.TrimSpace(req.Name) == "" {
		return nil, errors.New("name is required")
	}

	if len(req.Password) < 8 {
		return nil, errors.New("password must be at least 8 characters")
	}

	return &req, nil
}

// parseLoginRequest parses and validates a LoginRequest from the given reader.
func parseLoginRequest(r io.Reader) (*LoginRequest, error) {
	var req LoginRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return nil, errors.New("invalid JSON body")
	}

	if req.Email == "" || req.Password == "" {
		return nil, errors.New("email and password are required")
	}

	return &req, nil
}

// parseCreateProjectRequest parses and validates a CreateProjectRequest.
func parseCreateProjectRequest(r io.Reader) (*CreateProjectRequest, error) {
	var req CreateProjectRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return nil, errors.New("invalid JSON body")
	}

	if strings.TrimSpace(req.Title) == "" {
		return nil, errors.New("title is required")
	}

	if req.Status != "" && !store.ValidStatus(req.Status) {
		return nil, fmt.Errorf("unknown status %q", req.Status)
	}

	if req.Budget < 0 {
		return nil, errors.New("budget must not be negative")
	}

	return &req, nil
}

// toParams converts an UpdateProjectRequest into store update params,
// validating each present field.
func (req *UpdateProjectRequest) toParams() (store.UpdateProjectParams, error) {
	var params store.UpdateProjectParams

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return params, errors.New("title cannot be empty")
		}
		params.Title = &title
	}
	if req.Status != nil {
		if !store.ValidStatus(*req.Status) {
			return params, fmt.Errorf("unknown status %q", *req.Status)
		}
		params.Status = req.Status
	}
	if req.Deadline != nil {
		if *req.Deadline == "" {
			params.ClearDeadline = true
		} else {
			deadline, err := parseDeadline(*req.Deadline)
			if err != nil {
				return params, err
			}
			params.Deadline = deadline
		}
	}
	if req.Assignee != nil {
		params.Assignee = req.Assignee
	}
	if req.Budget != nil {
		if *req.Budget < 0 {
			return params, errors.New("budget must not be negative")
		}
		params.Budget = req.Budget
	}
	if req.Description != nil {
		params.Description = req.Description
	}

	return params, nil
}

// parseProjectFilter builds a store filter from list query parameters.
func parseProjectFilter(q url.Values) (store.ProjectFilter, error) {
	filter := store.ProjectFilter{
		Status:   q.Get("status"),
		Assignee: q.Get("assignee"),
		Search:   q.Get("q"),
	}

	if filter.Status != "" && !store.ValidStatus(filter.Status) {
		return filter, fmt.Errorf("unknown status %q", filter.Status)
	}

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return filter, errors.New("limit must be a non-negative integer")
		}
		filter.Limit = n
	}

	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return filter, errors.New("offset must be a non-negative integer")
		}
		filter.Offset = n
	}

	return filter, nil
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

func userResponseFrom(u *store.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}

func projectResponseFrom(p *store.Project) ProjectResponse {
	resp := ProjectResponse{
		ID:          p.ID,
		Title:       p.Title,
		Status:      p.Status,
		Assignee:    p.Assignee,
		Budget:      p.Budget,
		Description: p.Description,
		CreatedBy:   p.CreatedBy,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   p.UpdatedAt.Format(time.RFC3339),
	}
	if p.Deadline != nil {
		deadline := p.Deadline.Format(time.RFC3339)
		resp.Deadline = &deadline
	}
	return resp
}
