// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Post represents a blog post. Content is Markdown; the feature image, when
// present, lives in object storage under FeatureImageKey and has already
// been normalized to the fixed canvas before the record was saved.
type Post struct {
	ID               uuid.UUID  `json:"id"`
	AuthorID         uuid.UUID  `json:"author_id"`
	Title            string     `json:"title"`
	Slug             string     `json:"slug"`
	FeatureImageKey  *string    `json:"feature_image_key,omitempty"`
	FeatureImageName *string    `json:"feature_image_name,omitempty"`
	Description      *string    `json:"description,omitempty"`
	Content          *string    `json:"content,omitempty"`
	Draft            bool       `json:"draft"`
	CreateDate       time.Time  `json:"create_date"`
	PublishDate      *time.Time `json:"publish_date,omitempty"`
	CategoryID       *uuid.UUID `json:"category_id"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	// Tags is the unordered label set attached to the post. The core
	// treats labels as opaque strings; they are replaced wholesale on save.
	Tags []string `json:"tags,omitempty"`
}

// IsPublished returns true if the post is publicly visible.
func (p *Post) IsPublished() bool {
	return !p.Draft
}

// HasFeatureImage returns true if a stored feature image is attached.
func (p *Post) HasFeatureImage() bool {
	return p.FeatureImageKey != nil && *p.FeatureImageKey != ""
}

// PublicPath returns the site path of the post given the URL segments of
// its category ancestor chain (root-first). A post without a category is
// addressed by its slug alone.
func (p *Post) PublicPath(segments []string) string {
	if len(segments) == 0 {
		return p.Slug
	}
	return segments[len(segments)-1] + "/" + p.Slug
}
