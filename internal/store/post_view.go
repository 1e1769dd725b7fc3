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

// PostViewStore records page views against posts. The table is
// append-only: every view inserts a fresh row, and duplicates from the
// same visitor are counted again on purpose.
type PostViewStore struct {
	db *sql.DB
}

// NewPostViewStore creates a new PostViewStore with the given database connection.
func NewPostViewStore(db *sql.DB) *PostViewStore {
	return &PostViewStore{db: db}
}

// Record inserts a view row for the post. IP and session are stored as
// given; no deduplication happens here or anywhere else.
func (s *PostViewStore) Record(postID uuid.UUID, ip, session string) error {
	_, err := s.db.Exec(`
		INSERT INTO post_views (post_id, ip, session) VALUES ($1, $2, $3)
	`, postID, ip, session)
	if err != nil {
		return fmt.Errorf("record post view: %w", err)
	}
	return nil
}

// CountByPost returns the total number of recorded views for a post.
func (s *PostViewStore) CountByPost(postID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM post_views WHERE post_id = $1`, postID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count post views: %w", err)
	}
	return count, nil
}

// ListByPost returns the raw view rows for a post, oldest first. Used by
// the admin views report.
func (s *PostViewStore) ListByPost(postID uuid.UUID) ([]models.PostView, error) {
	rows, err := s.db.Query(`
		SELECT id, post_id, ip, session, created_date
		FROM post_views WHERE post_id = $1
		ORDER BY created_date
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("list post views: %w", err)
	}
	defer rows.Close()

	var views []models.PostView
	for rows.Next() {
		var v models.PostView
		if err := rows.Scan(&v.ID, &v.PostID, &v.IP, &v.Session, &v.CreatedDate); err != nil {
			return nil, fmt.Errorf("scan post view: %w", err)
		}
		views = append(views, v)
	}
	return views, rows.Err()
}
