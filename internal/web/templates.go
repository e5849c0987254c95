// ABOUTME: Template rendering functions for the dashboard UI
// ABOUTME: Loads pages from the embedded filesystem and renders them

package web

import (
	"html/template"
	"net/http"

	"github.com/2389/projectdesk/internal/store"
)

// Template data types
type loginPageData struct {
	Title string
	Error string
	User  *store.User
}

type registerPageData struct {
	Title string
	Error string
	User  *store.User
}

type dashboardData struct {
	Title    string
	Error    string
	User     *store.User
	Projects []*store.Project
	Filter   store.ProjectFilter
}

type projectDetailData struct {
	Title       string
	User        *store.User
	Project     *store.Project
	Description template.HTML
}

// renderLoginPage renders the login page.
func (s *Server) renderLoginPage(w http.ResponseWriter, errorMsg string) {
	tmpl := template.Must(template.ParseFS(templateFS, "templates/base.html", "templates/login.html"))

	data := loginPageData{
		Title: "Log in",
		Error: errorMsg,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		s.logger.Error("failed to render login page", "error", err)
	}
}

// renderRegisterPage renders the registration page.
func (s *Server) renderRegisterPage(w http.ResponseWriter, errorMsg string) {
	tmpl := template.Must(template.ParseFS(templateFS, "templates/base.html", "templates/register.html"))

	data := registerPageData{
		Title: "Register",
		Error: errorMsg,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		s.logger.Error("failed to render register page", "error", err)
	}
}

// renderDashboard renders the project table with the filter form state.
func (s *Server) renderDashboard(w http.ResponseWriter, user *store.User, projects []*store.Project, filter store.ProjectFilter, errorMsg string) {
	tmpl := template.Must(template.ParseFS(templateFS,
		"templates/base.html",
		"templates/dashboard.html",
		"templates/partials/project_rows.html",
	))

	data := dashboardData{
		Title:    "Projects",
		Error:    errorMsg,
		User:     user,
		Projects: projects,
		Filter:   filter,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		s.logger.Error("failed to render dashboard", "error", err)
	}
}

// renderProjectDetail renders a single project with its converted description.
func (s *Server) renderProjectDetail(w http.ResponseWriter, user *store.User, project *store.Project, description template.HTML) {
	tmpl := template.Must(template.ParseFS(templateFS, "templates/base.html", "templates/project_detail.html"))

	data := projectDetailData{
		Title:       project.Title,
		User:        user,
		Project:     project,
		Description: description,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		s.logger.Error("failed to render project detail", "error", err)
	}
}
