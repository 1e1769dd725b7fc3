// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"inkwell/internal/imaging"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/publish"
)

// maxUploadSize is the maximum allowed feature image upload (20 MB).
const maxUploadSize = 20 << 20

type postResponse struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Description *string    `json:"description,omitempty"`
	Content     *string    `json:"content,omitempty"`
	Draft       bool       `json:"draft"`
	CreateDate  time.Time  `json:"create_date"`
	PublishDate *time.Time `json:"publish_date,omitempty"`
	CategoryID  *uuid.UUID `json:"category_id,omitempty"`
	ImageURL    string     `json:"image_url,omitempty"`
	ImageName   *string    `json:"image_name,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
}

func (a *Admin) postResponse(p *models.Post, withTags bool) postResponse {
	resp := postResponse{
		ID:          p.ID,
		Title:       p.Title,
		Slug:        p.Slug,
		Description: p.Description,
		Content:     p.Content,
		Draft:       p.Draft,
		CreateDate:  p.CreateDate,
		PublishDate: p.PublishDate,
		CategoryID:  p.CategoryID,
		ImageName:   p.FeatureImageName,
	}
	if p.FeatureImageKey != nil && a.storageClient != nil {
		resp.ImageURL = a.storageClient.FileURL(*p.FeatureImageKey)
	}
	if withTags {
		tags, err := a.posts.TagsFor(p.ID)
		if err != nil {
			slog.Warn("load tags failed", "post", p.ID, "error", err)
		}
		resp.Tags = tags
	}
	return resp
}

// PostList returns all posts, drafts included, newest first.
func (a *Admin) PostList(w http.ResponseWriter, r *http.Request) {
	posts, err := a.posts.List()
	if err != nil {
		slog.Error("list posts failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	out := make([]postResponse, 0, len(posts))
	for i := range posts {
		out = append(out, a.postResponse(&posts[i], false))
	}
	writeJSON(w, http.StatusOK, out)
}

// PostGet returns a single post with its tags.
func (a *Admin) PostGet(w http.ResponseWriter, r *http.Request) {
	post, ok := a.findPost(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, a.postResponse(post, true))
}

// PostCreate creates a post from a multipart form. The optional
// feature_image file runs through the normalizer before storage.
func (a *Admin) PostCreate(w http.ResponseWriter, r *http.Request) {
	post := &models.Post{Draft: true}

	sess := middleware.SessionFromCtx(r.Context())
	author, err := a.users.FindByID(sess.UserID)
	if err != nil || author == nil {
		slog.Error("author lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	post.AuthorID = author.ID

	a.savePost(w, r, post)
}

// PostUpdate modifies an existing post from a multipart form. Fields not
// present in the form keep their current values.
func (a *Admin) PostUpdate(w http.ResponseWriter, r *http.Request) {
	post, ok := a.findPost(w, r)
	if !ok {
		return
	}
	tags, err := a.posts.TagsFor(post.ID)
	if err == nil {
		post.Tags = tags
	}
	a.savePost(w, r, post)
}

// savePost applies multipart form fields onto post and runs the publish
// pipeline. Shared by create and update.
func (a *Admin) savePost(w http.ResponseWriter, r *http.Request, post *models.Post) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+1024)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "upload too large")
		return
	}

	form := r.MultipartForm.Value
	if v, ok := formValue(form, "title"); ok {
		post.Title = v
	}
	if v, ok := formValue(form, "slug"); ok {
		post.Slug = v
	}
	if v, ok := formValue(form, "description"); ok {
		post.Description = optString(v)
	}
	if v, ok := formValue(form, "content"); ok {
		post.Content = optString(v)
	}
	if v, ok := formValue(form, "draft"); ok {
		post.Draft = v == "true" || v == "1"
	}
	if v, ok := formValue(form, "publish_date"); ok {
		if v == "" {
			post.PublishDate = nil
		} else {
			ts, err := time.Parse(time.RFC3339, v)
			if err != nil {
				writeError(w, http.StatusUnprocessableEntity, "publish_date must be RFC 3339")
				return
			}
			post.PublishDate = &ts
		}
	}
	if v, ok := formValue(form, "category_id"); ok {
		if v == "" {
			post.CategoryID = nil
		} else {
			cid, err := uuid.Parse(v)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid category_id")
				return
			}
			cat, err := a.categories.FindByID(cid)
			if err != nil {
				slog.Error("find category failed", "error", err)
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}
			if cat == nil {
				writeError(w, http.StatusUnprocessableEntity, "category does not exist")
				return
			}
			post.CategoryID = &cid
		}
	}
	if v, ok := formValue(form, "tags"); ok {
		post.Tags = splitTags(v)
	}

	upload, err := formUpload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read feature image")
		return
	}

	saved, err := a.publisher.Save(r.Context(), post, upload)
	if err != nil {
		a.postError(w, err)
		return
	}

	status := http.StatusOK
	if post.ID == uuid.Nil {
		status = http.StatusCreated
	}
	writeJSON(w, status, a.postResponse(saved, true))
}

// PostDelete removes a post and its stored feature image.
func (a *Admin) PostDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	found, err := a.publisher.Delete(r.Context(), id)
	if err != nil {
		slog.Error("delete post failed", "error", err, "id", id)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// PostViews reports the view count and raw view rows for a post.
func (a *Admin) PostViews(w http.ResponseWriter, r *http.Request) {
	post, ok := a.findPost(w, r)
	if !ok {
		return
	}

	count, err := a.views.CountByPost(post.ID)
	if err != nil {
		slog.Error("count views failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	rows, err := a.views.ListByPost(post.ID)
	if err != nil {
		slog.Error("list views failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	type viewRow struct {
		IP      string    `json:"ip"`
		Session string    `json:"session"`
		Created time.Time `json:"created_date"`
	}
	out := make([]viewRow, 0, len(rows))
	for _, v := range rows {
		out = append(out, viewRow{IP: v.IP, Session: v.Session, Created: v.CreatedDate})
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": count, "views": out})
}

// findPost resolves the {id} URL parameter. Writes the error response
// itself and returns ok=false on failure.
func (a *Admin) findPost(w http.ResponseWriter, r *http.Request) (*models.Post, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid post id")
		return nil, false
	}
	post, err := a.posts.FindByID(id)
	if err != nil {
		slog.Error("find post failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return nil, false
	}
	if post == nil {
		writeError(w, http.StatusNotFound, "post not found")
		return nil, false
	}
	return post, true
}

// postError maps pipeline errors to HTTP responses.
func (a *Admin) postError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, publish.ErrTitleRequired),
		errors.Is(err, publish.ErrTitleTooLong),
		errors.Is(err, publish.ErrDescTooLong),
		errors.Is(err, publish.ErrAuthorRequired):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, imaging.ErrUnsupportedImage):
		writeError(w, http.StatusUnprocessableEntity, "feature image is not a supported image format")
	case errors.Is(err, publish.ErrStorageUnavailable):
		writeError(w, http.StatusServiceUnavailable, "object storage is not configured")
	default:
		slog.Error("post write failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// formValue reports whether the field was present in the form at all, so
// updates can distinguish "unset" from "set to empty".
func formValue(form map[string][]string, key string) (string, bool) {
	vals, ok := form[key]
	if !ok || len(vals) == 0 {
		return "", false
	}
	return vals[0], true
}

func optString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

// splitTags parses a comma-separated tag list, dropping empties.
func splitTags(v string) []string {
	var tags []string
	for _, t := range strings.Split(v, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// formUpload reads the optional feature_image file from the multipart
// form. Returns nil when no file was sent.
func formUpload(r *http.Request) (*publish.Upload, error) {
	file, header, err := r.FormFile("feature_image")
	if err == http.ErrMissingFile {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	return &publish.Upload{Filename: header.Filename, Data: data}, nil
}
