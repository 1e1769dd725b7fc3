// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Category represents one node of the hierarchical category tree. The tree
// is stored as a flat table of nodes with parent references; nothing in the
// application holds nested live category structures, so ancestor walks and
// reparenting stay O(depth) with no cycle bookkeeping.
//
// Names are unique across the whole tree. Slugs are unique among siblings
// only, so the same slug may appear under different parents.
type Category struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Slug      string     `json:"slug"`
	ParentID  *uuid.UUID `json:"parent_id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	// Virtual fields populated by store methods.
	Children  []Category `json:"children,omitempty"`
	Depth     int        `json:"depth"`
	PostCount int        `json:"post_count"`
}

// IsRoot returns true if the category has no parent.
func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}

// URLSegments derives the cumulative URL paths for an ancestor chain
// ordered root-first, one entry per tree depth, shortest first:
//
//	slugs "a", "b", "c" → ["a", "a/b", "a/b/c"]
//
// The last element is the public path prefix for posts in the deepest
// category. An empty chain yields nil.
func URLSegments(chain []Category) []string {
	if len(chain) == 0 {
		return nil
	}
	segments := make([]string, 0, len(chain))
	slugs := make([]string, 0, len(chain))
	for _, c := range chain {
		slugs = append(slugs, c.Slug)
		segments = append(segments, strings.Join(slugs, "/"))
	}
	return segments
}
