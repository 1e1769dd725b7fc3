package database

import (
	"crypto/rand"
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// SystemAuthorEmail identifies the seeded fallback author. Posts created
// without an explicit author are attributed to this account; it exists so
// the application never depends on a hardcoded row ID being present.
const SystemAuthorEmail = "system@inkwell.local"

// Seed populates the database with initial data. It creates a default
// admin user if no users exist, and always ensures the system author is
// present. Safe to run on every start.
func Seed(db *sql.DB) error {
	if err := ensureSystemAuthor(db); err != nil {
		return err
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users WHERE role != 'system'").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}
	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO users (email, password_hash, display_name, role)
		VALUES ($1, $2, $3, $4)
	`, "admin@inkwell.local", string(hash), "Admin", "admin")
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	slog.Info("database seeded with default admin user",
		"email", "admin@inkwell.local",
		"password", "admin",
	)

	return nil
}

// ensureSystemAuthor inserts the system author if it does not exist yet.
// The account cannot log in: its password hash is a bcrypt hash of random
// bytes that are discarded immediately.
func ensureSystemAuthor(db *sql.DB) error {
	var exists bool
	err := db.QueryRow("SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)", SystemAuthorEmail).Scan(&exists)
	if err != nil {
		return fmt.Errorf("seed check system author: %w", err)
	}
	if exists {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword(randomBytes(32), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed system author bcrypt: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO users (email, password_hash, display_name, role)
		VALUES ($1, $2, $3, $4)
	`, SystemAuthorEmail, string(hash), "System", "system")
	if err != nil {
		return fmt.Errorf("seed insert system author: %w", err)
	}

	slog.Info("system author created", "email", SystemAuthorEmail)
	return nil
}

// randomBytes returns n cryptographically random bytes.
func randomBytes(n int) []byte {
	b := make([]byte, n)
	rand.Read(b)
	return b
}
