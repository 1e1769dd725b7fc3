// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"testing"

	"inkwell/internal/database"
	"inkwell/internal/models"
)

func TestUserCreateAndFind(t *testing.T) {
	db := testDB(t)
	store := NewUserStore(db)

	email := "user-create@test.local"
	cleanUsers(t, db, email)
	t.Cleanup(func() { cleanUsers(t, db, email) })

	created, err := store.Create(&models.User{
		Email:        email,
		PasswordHash: "hash",
		DisplayName:  "Test User",
		Role:         models.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	byEmail, err := store.FindByEmail(email)
	if err != nil {
		t.Fatalf("FindByEmail failed: %v", err)
	}
	if byEmail == nil || byEmail.ID != created.ID {
		t.Fatal("expected to find created user by email")
	}
	if !byEmail.IsAdmin() {
		t.Error("expected admin role")
	}

	missing, err := store.FindByEmail("nobody@test.local")
	if err != nil {
		t.Fatalf("FindByEmail for missing failed: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for unknown email")
	}
}

func TestUserSystemAuthor(t *testing.T) {
	db := testDB(t)
	store := NewUserStore(db)

	if err := database.Seed(db); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	sys, err := store.SystemAuthor()
	if err != nil {
		t.Fatalf("SystemAuthor failed: %v", err)
	}
	if sys == nil {
		t.Fatal("expected seeded system author")
	}
	if sys.Role != models.RoleSystem {
		t.Errorf("role = %q, want %q", sys.Role, models.RoleSystem)
	}
	if sys.Email != database.SystemAuthorEmail {
		t.Errorf("email = %q, want %q", sys.Email, database.SystemAuthorEmail)
	}
}
