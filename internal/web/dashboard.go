// ABOUTME: Server-rendered dashboard handlers for browser sessions
// ABOUTME: Login and register forms, the project table, and project detail pages

package web

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/2389/projectdesk/internal/auth"
	"github.com/2389/projectdesk/internal/store"
)

// registerDashboardRoutes registers the browser-facing routes on the given mux.
func (s *Server) registerDashboardRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /login", s.handleLoginPage)
	mux.HandleFunc("POST /login", s.handleLoginForm)
	mux.HandleFunc("GET /register", s.handleRegisterPage)
	mux.HandleFunc("POST /register", s.handleRegisterForm)
	mux.HandleFunc("POST /logout", s.handleLogoutForm)

	mux.HandleFunc("GET /dashboard", s.requireBrowserAuth(s.handleDashboard))
	mux.HandleFunc("POST /dashboard/projects", s.requireBrowserAuth(s.handleProjectCreateForm))
	mux.HandleFunc("GET /dashboard/projects/{id}", s.requireBrowserAuth(s.handleProjectDetailPage))
	mux.HandleFunc("POST /dashboard/projects/{id}/edit", s.requireBrowserAuth(s.handleProjectEditForm))
	mux.HandleFunc("POST /dashboard/projects/{id}/delete", s.requireBrowserAuth(s.handleProjectDeleteForm))
}

// requireBrowserAuth wraps a handler to require a valid session cookie.
// Anonymous browsers are redirected to the login page instead of getting
// a JSON 401.
func (s *Server) requireBrowserAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := s.codec.Identify(r)
		if claims == nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
	}
}

// currentUser loads the user behind the request's claims. Returns nil when
// the user no longer exists; pages fall back to showing no account info.
func (s *Server) currentUser(r *http.Request) *store.User {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		return nil
	}
	user, err := s.store.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		return nil
	}
	return user
}

// redirectWithError redirects to path with the message in the error query
// parameter, where the target page displays it.
func redirectWithError(w http.ResponseWriter, r *http.Request, path, message string) {
	http.Redirect(w, r, path+"?error="+url.QueryEscape(message), http.StatusSeeOther)
}

// handleIndex routes the bare root to the dashboard or the login page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.codec.Identify(r) != nil {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// handleLoginPage renders the login form.
func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if s.codec.Identify(r) != nil {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	s.renderLoginPage(w, r.URL.Query().Get("error"))
}

// handleLoginForm processes the login form submission.
func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirectWithError(w, r, "/login", "Invalid form data")
		return
	}

	email := normalizeEmail(r.FormValue("email"))
	password := r.FormValue("password")
	if email == "" || password == "" {
		redirectWithError(w, r, "/login", "Email and password are required")
		return
	}

	user, err := s.store.GetUserByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Same dummy comparison as the JSON login, for the same reason:
			// unknown emails must not answer faster than wrong passwords.
			_ = auth.CheckPassword(auth.DummyHash, password)
			redirectWithError(w, r, "/login", "Invalid email or password")
			return
		}
		s.logger.Error("failed to get user", "error", err)
		redirectWithError(w, r, "/login", "An error occurred")
		return
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		redirectWithError(w, r, "/login", "Invalid email or password")
		return
	}

	token, err := s.codec.Issue(user.ID, user.Email)
	if err != nil {
		s.logger.Error("failed to issue token", "error", err)
		redirectWithError(w, r, "/login", "An error occurred")
		return
	}

	auth.SetTokenCookie(w, r, token, s.secureCookies())
	s.logger.Info("user logged in", "email", email)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// handleRegisterPage renders the registration form.
func (s *Server) handleRegisterPage(w http.ResponseWriter, r *http.Request) {
	if s.codec.Identify(r) != nil {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	s.renderRegisterPage(w, r.URL.Query().Get("error"))
}

// handleRegisterForm processes the registration form submission.
func (s *Server) handleRegisterForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirectWithError(w, r, "/register", "Invalid form data")
		return
	}

	email := normalizeEmail(r.FormValue("email"))
	name := strings.TrimSpace(r.FormValue("name"))
	password := r.FormValue("password")
	confirm := r.FormValue("password_confirm")

	if !strings.Contains(email, "@") {
		redirectWithError(w, r, "/register", "A valid email is required")
		return
	}
	if name == "" {
		redirectWithError(w, r, "/register", "Name is required")
		return
	}
	if len(password) < 8 {
		redirectWithError(w, r, "/register", "Password must be at least 8 characters")
		return
	}
	if password != confirm {
		redirectWithError(w, r, "/register", "Passwords do not match")
		return
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		redirectWithError(w, r, "/register", "An error occurred")
		return
	}

	user := &store.User{Email: email, Name: name, PasswordHash: hash}
	if err := s.store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			redirectWithError(w, r, "/register", "Email already registered")
			return
		}
		s.logger.Error("failed to create user", "error", err)
		redirectWithError(w, r, "/register", "An error occurred")
		return
	}

	token, err := s.codec.Issue(user.ID, user.Email)
	if err != nil {
		s.logger.Error("failed to issue token", "error", err)
		redirectWithError(w, r, "/login", "Account created, please log in")
		return
	}

	auth.SetTokenCookie(w, r, token, s.secureCookies())
	s.logger.Info("user registered", "email", email)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// handleLogoutForm clears the session cookie and returns to the login page.
func (s *Server) handleLogoutForm(w http.ResponseWriter, r *http.Request) {
	auth.ClearTokenCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// handleDashboard renders the project table with the active filters.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	filter, err := parseProjectFilter(r.URL.Query())
	if err != nil {
		// Hand-edited query strings reset to an unfiltered view.
		filter = store.ProjectFilter{}
	}

	projects, err := s.store.ListProjects(r.Context(), filter)
	if err != nil {
		s.logger.Error("failed to list projects", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	s.renderDashboard(w, s.currentUser(r), projects, filter, r.URL.Query().Get("error"))
}

// handleProjectDetailPage renders a single project with its description
// converted from Markdown.
func (s *Server) handleProjectDetailPage(w http.ResponseWriter, r *http.Request) {
	project, err := s.store.GetProject(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		s.logger.Error("failed to get project", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	s.renderProjectDetail(w, s.currentUser(r), project, s.renderMarkdown(project.Description))
}

// handleProjectCreateForm processes the new-project form on the dashboard.
func (s *Server) handleProjectCreateForm(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirectWithError(w, r, "/dashboard", "Invalid form data")
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		redirectWithError(w, r, "/dashboard", "Title is required")
		return
	}

	status := r.FormValue("status")
	if status != "" && !store.ValidStatus(status) {
		redirectWithError(w, r, "/dashboard", "Unknown status")
		return
	}

	budget, ok := s.parseBudgetForm(w, r, "/dashboard")
	if !ok {
		return
	}

	claims := auth.ClaimsFromContext(r.Context())
	project := &store.Project{
		Title:       title,
		Status:      status,
		Assignee:    strings.TrimSpace(r.FormValue("assignee")),
		Budget:      budget,
		Description: r.FormValue("description"),
		CreatedBy:   claims.UserID,
	}

	if v := r.FormValue("deadline"); v != "" {
		deadline, err := parseDeadline(v)
		if err != nil {
			redirectWithError(w, r, "/dashboard", "Deadline must be a valid date")
			return
		}
		project.Deadline = deadline
	}

	if err := s.store.CreateProject(r.Context(), project); err != nil {
		s.logger.Error("failed to create project", "error", err)
		redirectWithError(w, r, "/dashboard", "An error occurred")
		return
	}

	s.logger.Info("project created", "id", project.ID, "title", project.Title)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// handleProjectEditForm processes the edit form on the detail page. The form
// submits every field, so all of them are written back.
func (s *Server) handleProjectEditForm(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	detailPath := "/dashboard/projects/" + id

	if err := r.ParseForm(); err != nil {
		redirectWithError(w, r, detailPath, "Invalid form data")
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		redirectWithError(w, r, detailPath, "Title is required")
		return
	}

	status := r.FormValue("status")
	if !store.ValidStatus(status) {
		redirectWithError(w, r, detailPath, "Unknown status")
		return
	}

	budget, ok := s.parseBudgetForm(w, r, detailPath)
	if !ok {
		return
	}

	assignee := strings.TrimSpace(r.FormValue("assignee"))
	description := r.FormValue("description")
	params := store.UpdateProjectParams{
		Title:       &title,
		Status:      &status,
		Assignee:    &assignee,
		Budget:      &budget,
		Description: &description,
	}

	if v := r.FormValue("deadline"); v != "" {
		deadline, err := parseDeadline(v)
		if err != nil {
			redirectWithError(w, r, detailPath, "Deadline must be a valid date")
			return
		}
		params.Deadline = deadline
	} else {
		params.ClearDeadline = true
	}

	if _, err := s.store.UpdateProject(r.Context(), id, params); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		s.logger.Error("failed to update project", "error", err)
		redirectWithError(w, r, detailPath, "An error occurred")
		return
	}

	http.Redirect(w, r, detailPath, http.StatusSeeOther)
}

// handleProjectDeleteForm processes the delete form on the detail page.
func (s *Server) handleProjectDeleteForm(w http.ResponseWriter, r *http.Request) {
	err := s.store.DeleteProject(r.Context(), r.PathValue("id"))
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		s.logger.Error("failed to delete project", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// parseBudgetForm parses the optional budget form field. On a bad value it
// redirects and reports false.
func (s *Server) parseBudgetForm(w http.ResponseWriter, r *http.Request, backPath string) (float64, bool) {
	v := r.FormValue("budget")
	if v == "" {
		return 0, true
	}
	budget, err := strconv.ParseFloat(v, 64)
	if err != nil || budget < 0 {
		redirectWithError(w, r, backPath, "Budget must be a non-negative number")
		return 0, false
	}
	return budget, true
}

// renderMarkdown converts a Markdown description to HTML for the detail
// page. Raw HTML in the source is dropped by goldmark's defaults.
func (s *Server) renderMarkdown(source string) template.HTML {
	var htmlBuf bytes.Buffer
	if err := goldmark.Convert([]byte(source), &htmlBuf); err != nil {
		s.logger.Error("failed to convert markdown", "error", err)
		return template.HTML("<p>Failed to render description.</p>")
	}
	return template.HTML(htmlBuf.String())
}
