// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"inkwell/internal/models"
)

// PostStore handles all post-related database operations, including the
// tag set attached to each post.
type PostStore struct {
	db *sql.DB
}

// NewPostStore creates a new PostStore with the given database connection.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

const postColumns = `id, author_id, title, slug, feature_image_key, feature_image_name,
	description, content, draft, create_date, publish_date, category_id, created_at, updated_at`

// scanPost scans a row into a Post struct.
func scanPost(scanner interface{ Scan(...any) error }) (*models.Post, error) {
	var p models.Post
	err := scanner.Scan(
		&p.ID, &p.AuthorID, &p.Title, &p.Slug, &p.FeatureImageKey, &p.FeatureImageName,
		&p.Description, &p.Content, &p.Draft, &p.CreateDate, &p.PublishDate,
		&p.CategoryID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// collect reads all remaining rows into a slice of posts.
func collect(rows *sql.Rows) ([]models.Post, error) {
	defer rows.Close()
	var items []models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

// List returns all posts, newest first. Used by the admin API.
func (s *PostStore) List() ([]models.Post, error) {
	rows, err := s.db.Query(`SELECT ` + postColumns + ` FROM posts ORDER BY create_date DESC`)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return collect(rows)
}

// ListPublished returns non-draft posts ordered by publish date, newest
// first. Posts without a publish date sort last.
func (s *PostStore) ListPublished() ([]models.Post, error) {
	rows, err := s.db.Query(`
		SELECT ` + postColumns + ` FROM posts
		WHERE draft = false
		ORDER BY publish_date DESC NULLS LAST, create_date DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list published posts: %w", err)
	}
	return collect(rows)
}

// ListPublishedByCategory returns non-draft posts directly in the given
// category, newest first.
func (s *PostStore) ListPublishedByCategory(categoryID uuid.UUID) ([]models.Post, error) {
	rows, err := s.db.Query(`
		SELECT `+postColumns+` FROM posts
		WHERE draft = false AND category_id = $1
		ORDER BY publish_date DESC NULLS LAST, create_date DESC
	`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list posts by category: %w", err)
	}
	return collect(rows)
}

// FindByID retrieves a post by its UUID. Returns nil if not found.
func (s *PostStore) FindByID(id uuid.UUID) (*models.Post, error) {
	row := s.db.QueryRow(`SELECT `+postColumns+` FROM posts WHERE id = $1`, id)
	p, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by id: %w", err)
	}
	return p, nil
}

// FindPublishedBySlug retrieves a published post by slug within a category
// (nil for uncategorized posts). Returns nil if not found.
func (s *PostStore) FindPublishedBySlug(slug string, categoryID *uuid.UUID) (*models.Post, error) {
	var row *sql.Row
	if categoryID == nil {
		row = s.db.QueryRow(`SELECT `+postColumns+` FROM posts WHERE slug = $1 AND category_id IS NULL AND draft = false`, slug)
	} else {
		row = s.db.QueryRow(`SELECT `+postColumns+` FROM posts WHERE slug = $1 AND category_id = $2 AND draft = false`, slug, *categoryID)
	}
	p, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by slug: %w", err)
	}
	return p, nil
}

// Create inserts a new post and returns it with generated fields populated.
func (s *PostStore) Create(p *models.Post) (*models.Post, error) {
	row := s.db.QueryRow(`
		INSERT INTO posts (author_id, title, slug, feature_image_key, feature_image_name,
		                   description, content, draft, publish_date, category_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+postColumns,
		p.AuthorID, p.Title, p.Slug, p.FeatureImageKey, p.FeatureImageName,
		p.Description, p.Content, p.Draft, p.PublishDate, p.CategoryID,
	)
	result, err := scanPost(row)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return result, nil
}

// Update modifies an existing post.
func (s *PostStore) Update(p *models.Post) error {
	_, err := s.db.Exec(`
		UPDATE posts SET
			title = $1, slug = $2, feature_image_key = $3, feature_image_name = $4,
			description = $5, content = $6, draft = $7, publish_date = $8,
			category_id = $9, updated_at = NOW()
		WHERE id = $10
	`, p.Title, p.Slug, p.FeatureImageKey, p.FeatureImageName,
		p.Description, p.Content, p.Draft, p.PublishDate, p.CategoryID, p.ID)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	return nil
}

// Delete removes a post by ID and returns the deleted row so the caller
// can clean up its stored feature image. Returns nil if the post did not
// exist. Views and tag links cascade away in the database.
func (s *PostStore) Delete(id uuid.UUID) (*models.Post, error) {
	row := s.db.QueryRow(`DELETE FROM posts WHERE id = $1 RETURNING `+postColumns, id)
	p, err := scanPost(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("delete post: %w", err)
	}
	return p, nil
}

// SetTags replaces the post's tag set wholesale. Labels are opaque to the
// core; an empty slice clears all tags. Orphaned tag rows are left in
// place for reuse.
func (s *PostStore) SetTags(postID uuid.UUID, tags []string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM post_tags WHERE post_id = $1`, postID); err != nil {
		return fmt.Errorf("clear post tags: %w", err)
	}

	for _, name := range tags {
		var tagID uuid.UUID
		// Upsert the label; the no-op update makes RETURNING yield the
		// existing row's ID on conflict.
		err := tx.QueryRow(`
			INSERT INTO tags (name) VALUES ($1)
			ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			RETURNING id
		`, name).Scan(&tagID)
		if err != nil {
			return fmt.Errorf("upsert tag %q: %w", name, err)
		}

		_, err = tx.Exec(`
			INSERT INTO post_tags (post_id, tag_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, postID, tagID)
		if err != nil {
			return fmt.Errorf("link tag %q: %w", name, err)
		}
	}

	return tx.Commit()
}

// TagsFor returns the post's tag labels in alphabetical order. The set is
// unordered semantically; the ordering here is only for stable output.
func (s *PostStore) TagsFor(postID uuid.UUID) ([]string, error) {
	rows, err := s.db.Query(`
		SELECT t.name FROM tags t
		JOIN post_tags pt ON pt.tag_id = t.id
		WHERE pt.post_id = $1
		ORDER BY t.name
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("tags for post: %w", err)
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, name)
	}
	return tags, rows.Err()
}

// CountByCategory returns the number of posts directly in a category.
func (s *PostStore) CountByCategory(categoryID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM posts WHERE category_id = $1`, categoryID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count posts by category: %w", err)
	}
	return count, nil
}
