// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package publish implements the post write pipeline: validate the
// incoming record, normalize the uploaded feature image, then persist the
// row and the stored object. Handlers never touch the image bytes or the
// object keys directly.
package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	slugify "github.com/gosimple/slug"

	"inkwell/internal/cache"
	"inkwell/internal/imaging"
	"inkwell/internal/models"
	"inkwell/internal/storage"
	"inkwell/internal/store"
)

// Validation failures surfaced to the admin API.
var (
	ErrTitleRequired  = errors.New("title is required")
	ErrTitleTooLong   = errors.New("title exceeds 75 characters")
	ErrDescTooLong    = errors.New("description exceeds 300 characters")
	ErrAuthorRequired = errors.New("author is required")

	// ErrStorageUnavailable rejects image uploads when no object store is
	// configured. Accepting them would persist rows pointing at objects
	// that were never stored.
	ErrStorageUnavailable = errors.New("object storage is not configured")
)

const (
	maxTitleLen = 75
	maxDescLen  = 300
)

// Upload carries a raw feature image received from a multipart form.
type Upload struct {
	Filename string
	Data     []byte
}

// ObjectStore is the subset of the storage client the pipeline needs.
// Satisfied by *storage.Client; tests substitute an in-memory fake.
type ObjectStore interface {
	Upload(ctx context.Context, key, contentType string, data []byte) error
	Delete(ctx context.Context, key string) error
}

// Publisher runs the write pipeline for posts and the storage cleanup for
// category deletes. objects and pages may be nil when storage or Valkey
// are not configured; cache steps are then skipped, and saves carrying an
// image upload fail with ErrStorageUnavailable.
type Publisher struct {
	posts      *store.PostStore
	categories *store.CategoryStore
	objects    ObjectStore
	pages      *cache.PageCache
}

// New creates a Publisher.
func New(posts *store.PostStore, categories *store.CategoryStore, objects ObjectStore, pages *cache.PageCache) *Publisher {
	return &Publisher{
		posts:      posts,
		categories: categories,
		objects:    objects,
		pages:      pages,
	}
}

// Save validates and persists a post, running the image upload (if any)
// through the normalizer first. A post with a zero ID is created,
// otherwise updated. Publishing a post without a publish date stamps the
// current time.
func (p *Publisher) Save(ctx context.Context, post *models.Post, upload *Upload) (*models.Post, error) {
	if err := validate(post); err != nil {
		return nil, err
	}

	if post.Slug == "" {
		post.Slug = slugify.Make(post.Title)
	}
	if !post.Draft && post.PublishDate == nil {
		now := time.Now()
		post.PublishDate = &now
	}

	// Normalize and stage the image before touching the database, so a
	// bad upload never leaves a row pointing at a missing object.
	var staged []byte
	var stagedKey string
	if upload != nil {
		if p.objects == nil {
			return nil, ErrStorageUnavailable
		}
		normalized, err := imaging.Normalize(upload.Data)
		if err != nil {
			return nil, fmt.Errorf("normalize feature image: %w", err)
		}
		staged = normalized
		stagedKey = storage.FeatureImageKey(post.Slug, upload.Filename)
	}

	if staged != nil {
		if err := p.objects.Upload(ctx, stagedKey, imaging.ContentType, staged); err != nil {
			return nil, fmt.Errorf("store feature image: %w", err)
		}
		// A replaced image under a different slug leaves the old object
		// behind; remove it best-effort.
		if post.FeatureImageKey != nil && *post.FeatureImageKey != stagedKey {
			if err := p.objects.Delete(ctx, *post.FeatureImageKey); err != nil {
				slog.Warn("failed to delete replaced feature image", "key", *post.FeatureImageKey, "error", err)
			}
		}
		post.FeatureImageKey = &stagedKey
		name := upload.Filename
		post.FeatureImageName = &name
	}

	var saved *models.Post
	var err error
	if post.ID == uuid.Nil {
		saved, err = p.posts.Create(post)
	} else {
		err = p.posts.Update(post)
		saved = post
	}
	if err != nil {
		return nil, err
	}

	if err := p.posts.SetTags(saved.ID, post.Tags); err != nil {
		return nil, fmt.Errorf("set tags: %w", err)
	}
	saved.Tags = post.Tags

	p.invalidate(ctx)
	return saved, nil
}

// Delete removes a post and cleans up its stored feature image. The image
// delete is best-effort: a storage failure is logged, not returned, since
// the row is already gone.
func (p *Publisher) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	deleted, err := p.posts.Delete(id)
	if err != nil {
		return false, err
	}
	if deleted == nil {
		return false, nil
	}

	if deleted.FeatureImageKey != nil && p.objects != nil {
		if err := p.objects.Delete(ctx, *deleted.FeatureImageKey); err != nil {
			slog.Warn("failed to delete feature image", "key", *deleted.FeatureImageKey, "error", err)
		}
	}

	p.invalidate(ctx)
	return true, nil
}

// DeleteCategory removes a category subtree and cleans up the feature
// images of every post swept away by the cascade. Image keys are
// collected before the delete because the rows vanish with it.
func (p *Publisher) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	keys, err := p.categories.ImageKeysUnder(id)
	if err != nil {
		return err
	}

	if err := p.categories.Delete(id); err != nil {
		return err
	}

	if p.objects != nil {
		for _, key := range keys {
			if err := p.objects.Delete(ctx, key); err != nil {
				slog.Warn("failed to delete feature image", "key", key, "error", err)
			}
		}
	}

	p.invalidate(ctx)
	return nil
}

// invalidate clears the public page cache. Any edit can change listings,
// breadcrumbs, or the homepage, so the whole cache goes.
func (p *Publisher) invalidate(ctx context.Context) {
	if p.pages != nil {
		p.pages.InvalidateAll(ctx)
	}
}

// validate enforces the field limits shared by create and update.
func validate(post *models.Post) error {
	if post.Title == "" {
		return ErrTitleRequired
	}
	if utf8.RuneCountInString(post.Title) > maxTitleLen {
		return ErrTitleTooLong
	}
	if post.Description != nil && utf8.RuneCountInString(*post.Description) > maxDescLen {
		return ErrDescTooLong
	}
	if post.AuthorID == uuid.Nil {
		return ErrAuthorRequired
	}
	return nil
}
