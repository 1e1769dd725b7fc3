// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"inkwell/internal/middleware"
	"inkwell/internal/publish"
	"inkwell/internal/session"
	"inkwell/internal/storage"
	"inkwell/internal/store"
)

// Admin groups all admin API handlers and their dependencies.
// storageClient may be nil when S3 is not configured.
type Admin struct {
	sessions      *session.Store
	users         *store.UserStore
	categories    *store.CategoryStore
	posts         *store.PostStore
	views         *store.PostViewStore
	publisher     *publish.Publisher
	storageClient *storage.Client
}

// NewAdmin creates the admin handler group.
func NewAdmin(sessions *session.Store, users *store.UserStore, categories *store.CategoryStore, posts *store.PostStore, views *store.PostViewStore, publisher *publish.Publisher, storageClient *storage.Client) *Admin {
	return &Admin{
		sessions:      sessions,
		users:         users,
		categories:    categories,
		posts:         posts,
		views:         views,
		publisher:     publisher,
		storageClient: storageClient,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates an editor and starts a session. Same error for a
// missing user and a wrong password so emails cannot be probed.
func (a *Admin) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	user, err := a.users.FindByEmail(req.Email)
	if err != nil {
		slog.Error("login lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil || !a.users.CheckPassword(user, req.Password) {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	_, err = a.sessions.Create(r.Context(), w, &session.Data{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        string(user.Role),
	})
	if err != nil {
		slog.Error("session create failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"email":        user.Email,
		"display_name": user.DisplayName,
		"role":         string(user.Role),
	})
}

// Logout destroys the current session.
func (a *Admin) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Warn("session destroy failed", "error", err)
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// Me returns the authenticated editor's identity.
func (a *Admin) Me(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{
		"email":        sess.Email,
		"display_name": sess.DisplayName,
		"role":         sess.Role,
	})
}
