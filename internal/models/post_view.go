// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// PostView is one recorded instance of a post being read by a visitor.
// Rows are append-only: the same visitor and session may produce any number
// of rows per post, and nothing ever updates or deletes them except the
// cascade when the post itself is removed. Aggregation happens read-side.
type PostView struct {
	ID          uuid.UUID `json:"id"`
	PostID      uuid.UUID `json:"post_id"`
	IP          string    `json:"ip"`
	Session     string    `json:"session"`
	CreatedDate time.Time `json:"created_date"`
}
