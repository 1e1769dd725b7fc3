// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	slugify "github.com/gosimple/slug"

	"inkwell/internal/models"
	"inkwell/internal/store"
)

const maxCategoryNameLen = 50

type categoryRequest struct {
	Name     string  `json:"name"`
	Slug     string  `json:"slug"`
	ParentID *string `json:"parent_id"`
}

type categoryResponse struct {
	ID       uuid.UUID          `json:"id"`
	Name     string             `json:"name"`
	Slug     string             `json:"slug"`
	ParentID *uuid.UUID         `json:"parent_id,omitempty"`
	Path     string             `json:"path,omitempty"`
	Children []categoryResponse `json:"children,omitempty"`
}

// CategoryList returns all categories flat, ordered by name.
func (a *Admin) CategoryList(w http.ResponseWriter, r *http.Request) {
	cats, err := a.categories.List()
	if err != nil {
		slog.Error("list categories failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	out := make([]categoryResponse, 0, len(cats))
	for _, c := range cats {
		out = append(out, categoryResponse{ID: c.ID, Name: c.Name, Slug: c.Slug, ParentID: c.ParentID})
	}
	writeJSON(w, http.StatusOK, out)
}

// CategoryTree returns the categories as a nested tree, siblings ordered
// by name.
func (a *Admin) CategoryTree(w http.ResponseWriter, r *http.Request) {
	tree, err := a.categories.Tree()
	if err != nil {
		slog.Error("category tree failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, treeResponse(tree))
}

func treeResponse(cats []models.Category) []categoryResponse {
	out := make([]categoryResponse, 0, len(cats))
	for _, c := range cats {
		out = append(out, categoryResponse{
			ID:       c.ID,
			Name:     c.Name,
			Slug:     c.Slug,
			ParentID: c.ParentID,
			Children: treeResponse(c.Children),
		})
	}
	return out
}

// CategoryCreate adds a category. The slug defaults to a slugified name.
func (a *Admin) CategoryCreate(w http.ResponseWriter, r *http.Request) {
	cat, ok := a.decodeCategory(w, r)
	if !ok {
		return
	}

	created, err := a.categories.Create(cat)
	if err != nil {
		a.categoryError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, categoryResponse{ID: created.ID, Name: created.Name, Slug: created.Slug, ParentID: created.ParentID})
}

// CategoryUpdate renames or reparents a category.
func (a *Admin) CategoryUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid category id")
		return
	}
	existing, err := a.categories.FindByID(id)
	if err != nil {
		slog.Error("find category failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}

	cat, ok := a.decodeCategory(w, r)
	if !ok {
		return
	}
	cat.ID = id

	if err := a.categories.Update(cat); err != nil {
		a.categoryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, categoryResponse{ID: cat.ID, Name: cat.Name, Slug: cat.Slug, ParentID: cat.ParentID})
}

// CategoryDelete removes a category and its whole subtree, posts and
// stored images included.
func (a *Admin) CategoryDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid category id")
		return
	}
	existing, err := a.categories.FindByID(id)
	if err != nil {
		slog.Error("find category failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}

	if err := a.publisher.DeleteCategory(r.Context(), id); err != nil {
		slog.Error("delete category failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// decodeCategory parses and validates the request body. Writes the error
// response itself and returns ok=false on failure.
func (a *Admin) decodeCategory(w http.ResponseWriter, r *http.Request) (*models.Category, bool) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return nil, false
	}
	if req.Name == "" {
		writeError(w, http.StatusUnprocessableEntity, "name is required")
		return nil, false
	}
	if utf8.RuneCountInString(req.Name) > maxCategoryNameLen {
		writeError(w, http.StatusUnprocessableEntity, "name exceeds 50 characters")
		return nil, false
	}

	cat := &models.Category{Name: req.Name, Slug: req.Slug}
	if cat.Slug == "" {
		cat.Slug = slugify.Make(req.Name)
	}
	if req.ParentID != nil && *req.ParentID != "" {
		pid, err := uuid.Parse(*req.ParentID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid parent_id")
			return nil, false
		}
		parent, err := a.categories.FindByID(pid)
		if err != nil {
			slog.Error("find parent category failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return nil, false
		}
		if parent == nil {
			writeError(w, http.StatusUnprocessableEntity, "parent category does not exist")
			return nil, false
		}
		cat.ParentID = &pid
	}
	return cat, true
}

// categoryError maps store errors to HTTP responses.
func (a *Admin) categoryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrDuplicateName):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrDuplicateSlug):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrCyclicParent):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		slog.Error("category write failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
