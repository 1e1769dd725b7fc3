// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"inkwell/internal/cache"
	"inkwell/internal/markdown"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/render"
	"inkwell/internal/storage"
	"inkwell/internal/store"
)

// Public groups handlers for the public-facing site. It checks the Valkey
// page cache before querying, and stores rendered listings on miss. Post
// pages are never cached because every render appends a view row.
type Public struct {
	renderer      *render.Renderer
	categories    *store.CategoryStore
	posts         *store.PostStore
	views         *store.PostViewStore
	storageClient *storage.Client
	pageCache     *cache.PageCache
}

// NewPublic creates a new Public handler group. storageClient and
// pageCache may be nil when S3 or Valkey are not configured.
func NewPublic(renderer *render.Renderer, categories *store.CategoryStore, posts *store.PostStore, views *store.PostViewStore, storageClient *storage.Client, pageCache *cache.PageCache) *Public {
	return &Public{
		renderer:      renderer,
		categories:    categories,
		posts:         posts,
		views:         views,
		storageClient: storageClient,
		pageCache:     pageCache,
	}
}

// Homepage renders the published post feed, newest first.
func (p *Public) Homepage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if p.pageCache != nil {
		if cached, ok := p.pageCache.Get(ctx, cache.HomepageKey()); ok {
			writeHTML(w, cached)
			return
		}
	}

	posts, err := p.posts.ListPublished()
	if err != nil {
		slog.Error("list published posts failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	page, err := p.renderer.Render("home", &render.PageData{
		Data: map[string]any{"posts": p.listViews(posts)},
	})
	if err != nil {
		slog.Error("homepage render failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if p.pageCache != nil {
		p.pageCache.Set(ctx, cache.HomepageKey(), page)
	}
	writeHTML(w, page)
}

// Page resolves a hierarchical URL path to either a category listing or a
// post page. The path is matched segment by segment against category
// slugs; a trailing unmatched segment is tried as a post slug within the
// deepest matched category.
func (p *Public) Page(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(r.URL.Path, "/")
	if path == "" {
		p.Homepage(w, r)
		return
	}
	segments := strings.Split(path, "/")

	// Walk the category tree along the path.
	var current *models.Category
	matched := 0
	for _, seg := range segments {
		var parentID *uuid.UUID
		if current != nil {
			parentID = &current.ID
		}
		cat, err := p.categories.FindBySlugAndParent(seg, parentID)
		if err != nil {
			slog.Error("category lookup failed", "error", err, "slug", seg)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		if cat == nil {
			break
		}
		current = cat
		matched++
	}

	switch {
	case matched == len(segments):
		// Whole path is categories: render the listing.
		p.categoryPage(w, r, current, path)
	case matched == len(segments)-1:
		// All but the last segment matched: try the remainder as a post.
		p.postPage(w, r, current, segments[len(segments)-1], path)
	default:
		http.NotFound(w, r)
	}
}

// categoryPage renders the listing for a category: its subcategories and
// its directly contained published posts.
func (p *Public) categoryPage(w http.ResponseWriter, r *http.Request, cat *models.Category, path string) {
	ctx := r.Context()

	if p.pageCache != nil {
		if cached, ok := p.pageCache.Get(ctx, cache.PathKey(path)); ok {
			writeHTML(w, cached)
			return
		}
	}

	posts, err := p.posts.ListPublishedByCategory(cat.ID)
	if err != nil {
		slog.Error("list category posts failed", "error", err, "category", cat.ID)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	// Direct children links, built from this category's own path.
	tree, err := p.categories.Tree()
	if err != nil {
		slog.Error("category tree failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	type subcat struct{ Name, Path string }
	var subs []subcat
	for _, c := range findInTree(tree, cat.ID) {
		subs = append(subs, subcat{Name: c.Name, Path: path + "/" + c.Slug})
	}

	page, err := p.renderer.Render("category", &render.PageData{
		Title:       cat.Name,
		Breadcrumbs: p.breadcrumbs(cat.ID),
		Data: map[string]any{
			"category":      cat.Name,
			"subcategories": subs,
			"posts":         p.listViews(posts),
		},
	})
	if err != nil {
		slog.Error("category render failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if p.pageCache != nil {
		p.pageCache.Set(ctx, cache.PathKey(path), page)
	}
	writeHTML(w, page)
}

// postPage renders a published post and records the view. cat is nil for
// uncategorized posts served at the root.
func (p *Public) postPage(w http.ResponseWriter, r *http.Request, cat *models.Category, slug, path string) {
	var categoryID *uuid.UUID
	if cat != nil {
		categoryID = &cat.ID
	}
	post, err := p.posts.FindPublishedBySlug(slug, categoryID)
	if err != nil {
		slog.Error("post lookup failed", "error", err, "slug", slug)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if post == nil {
		http.NotFound(w, r)
		return
	}

	// Every render counts. Failures don't block the page.
	if err := p.views.Record(post.ID, middleware.ClientIP(r), middleware.VisitorID(r)); err != nil {
		slog.Warn("record view failed", "post", post.ID, "error", err)
	}

	var content template.HTML
	if post.Content != nil {
		html, err := markdown.ToHTML(*post.Content)
		if err != nil {
			slog.Warn("markdown render failed", "post", post.ID, "error", err)
		} else {
			content = template.HTML(html)
		}
	}

	var imageURL string
	if post.FeatureImageKey != nil && p.storageClient != nil {
		imageURL = p.storageClient.FileURL(*post.FeatureImageKey)
	}

	var crumbs []render.Crumb
	if cat != nil {
		crumbs = p.breadcrumbs(cat.ID)
	}

	tags, err := p.posts.TagsFor(post.ID)
	if err != nil {
		slog.Warn("load tags failed", "post", post.ID, "error", err)
	}

	date := ""
	if post.PublishDate != nil {
		date = post.PublishDate.Format("January 2, 2006")
	}

	page, err := p.renderer.Render("post", &render.PageData{
		Title:       post.Title,
		Breadcrumbs: crumbs,
		Data: map[string]any{
			"title":    post.Title,
			"date":     date,
			"content":  content,
			"imageURL": imageURL,
			"tags":     tags,
		},
	})
	if err != nil {
		slog.Error("post render failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeHTML(w, page)
}

// breadcrumbs builds the trail for a category. A broken hierarchy
// degrades to no breadcrumbs instead of failing the page.
func (p *Public) breadcrumbs(catID uuid.UUID) []render.Crumb {
	chain, err := p.categories.Ancestors(catID)
	if err != nil {
		if errors.Is(err, store.ErrBrokenHierarchy) {
			slog.Error("category hierarchy broken, omitting breadcrumbs", "category", catID, "error", err)
			return nil
		}
		slog.Warn("ancestor walk failed", "category", catID, "error", err)
		return nil
	}

	paths := models.URLSegments(chain)
	crumbs := make([]render.Crumb, 0, len(chain))
	for i, c := range chain {
		crumbs = append(crumbs, render.Crumb{Name: c.Name, Path: paths[i]})
	}
	return crumbs
}

// listViews converts posts to the template listing shape, resolving each
// post's public path from its category chain.
func (p *Public) listViews(posts []models.Post) []map[string]any {
	out := make([]map[string]any, 0, len(posts))
	for i := range posts {
		post := &posts[i]
		var segs []string
		if post.CategoryID != nil {
			var err error
			segs, err = p.categories.URLSegments(*post.CategoryID)
			if err != nil {
				slog.Warn("post path resolution failed", "post", post.ID, "error", err)
				segs = nil
			}
		}
		desc := ""
		if post.Description != nil {
			desc = *post.Description
		}
		out = append(out, map[string]any{
			"Path":        post.PublicPath(segs),
			"Title":       post.Title,
			"PublishDate": post.PublishDate,
			"Description": desc,
		})
	}
	return out
}

// Health reports liveness for load balancers.
func (p *Public) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeHTML(w http.ResponseWriter, page []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}

// findInTree returns the direct children of the category with the given
// ID inside a nested tree.
func findInTree(tree []models.Category, id uuid.UUID) []models.Category {
	for _, c := range tree {
		if c.ID == id {
			return c.Children
		}
		if found := findInTree(c.Children, id); found != nil {
			return found
		}
	}
	return nil
}
