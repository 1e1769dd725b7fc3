// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"inkwell/internal/models"
)

// Category insertion failures surfaced to the admin API as validation
// errors rather than silently corrected.
var (
	// ErrDuplicateName means the category name exists somewhere in the tree.
	ErrDuplicateName = errors.New("category name already exists")

	// ErrDuplicateSlug means the slug collides with a sibling under the
	// same parent. The same slug under a different parent is legal.
	ErrDuplicateSlug = errors.New("category slug already exists under this parent")

	// ErrCyclicParent means a reparent would make a category its own ancestor.
	ErrCyclicParent = errors.New("category cannot be its own ancestor")

	// ErrBrokenHierarchy means an ancestor walk did not terminate at a
	// root node. The tree is corrupted; callers should log and degrade
	// instead of rendering partial breadcrumbs.
	ErrBrokenHierarchy = errors.New("category hierarchy is broken")
)

// maxTreeDepth bounds ancestor walks so a corrupted tree (a cycle slipped
// past the reparent check) surfaces as ErrBrokenHierarchy instead of an
// unbounded recursive query.
const maxTreeDepth = 64

// CategoryStore manages the category tree in the database. The tree is a
// flat table of nodes with parent references; sibling order is ascending
// lexicographic by name.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryColumns = `id, name, slug, parent_id, created_at, updated_at`

// scanCategory scans a row into a Category struct.
func scanCategory(scanner interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	err := scanner.Scan(&c.ID, &c.Name, &c.Slug, &c.ParentID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns all categories ordered by name, with post counts.
func (s *CategoryStore) List() ([]models.Category, error) {
	rows, err := s.db.Query(`
		SELECT c.id, c.name, c.slug, c.parent_id, c.created_at, c.updated_at,
		       COUNT(p.id) AS post_count
		FROM categories c
		LEFT JOIN posts p ON p.category_id = c.id
		GROUP BY c.id
		ORDER BY c.name
	`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		var c models.Category
		err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.ParentID, &c.CreatedAt, &c.UpdatedAt, &c.PostCount)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// Tree returns categories as a nested tree. Siblings appear in ascending
// name order because List orders the flat input.
func (s *CategoryStore) Tree() ([]models.Category, error) {
	flat, err := s.List()
	if err != nil {
		return nil, err
	}
	return buildTree(flat, nil, 0), nil
}

// buildTree recursively builds a tree from a flat list.
func buildTree(flat []models.Category, parentID *uuid.UUID, depth int) []models.Category {
	var result []models.Category
	for _, c := range flat {
		if ptrEqual(c.ParentID, parentID) {
			c.Depth = depth
			c.Children = buildTree(flat, &c.ID, depth+1)
			result = append(result, c)
		}
	}
	return result
}

// ptrEqual compares two *uuid.UUID for equality (both nil or same value).
func ptrEqual(a, b *uuid.UUID) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}

// FlatTree returns categories as a flat list in tree order with Depth set
// for indentation. Useful for category pickers.
func (s *CategoryStore) FlatTree() ([]models.Category, error) {
	tree, err := s.Tree()
	if err != nil {
		return nil, err
	}
	var result []models.Category
	flattenTree(tree, &result)
	return result, nil
}

// flattenTree walks a category tree depth-first, appending to result.
func flattenTree(cats []models.Category, result *[]models.Category) {
	for _, c := range cats {
		*result = append(*result, c)
		if len(c.Children) > 0 {
			flattenTree(c.Children, result)
		}
	}
}

// FindByID retrieves a category by ID. Returns nil if not found.
func (s *CategoryStore) FindByID(id uuid.UUID) (*models.Category, error) {
	row := s.db.QueryRow(`SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// FindBySlugAndParent retrieves the category with the given slug directly
// under parentID (nil for root level). Returns nil if not found.
func (s *CategoryStore) FindBySlugAndParent(slug string, parentID *uuid.UUID) (*models.Category, error) {
	var row *sql.Row
	if parentID == nil {
		row = s.db.QueryRow(`SELECT `+categoryColumns+` FROM categories WHERE slug = $1 AND parent_id IS NULL`, slug)
	} else {
		row = s.db.QueryRow(`SELECT `+categoryColumns+` FROM categories WHERE slug = $1 AND parent_id = $2`, slug, *parentID)
	}
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by slug: %w", err)
	}
	return c, nil
}

// Create inserts a new category and returns it. Fails with
// ErrDuplicateName if the name exists anywhere in the tree, or with
// ErrDuplicateSlug if the slug collides with a sibling.
func (s *CategoryStore) Create(c *models.Category) (*models.Category, error) {
	if err := s.checkUnique(c.Name, c.Slug, c.ParentID, nil); err != nil {
		return nil, err
	}

	row := s.db.QueryRow(`
		INSERT INTO categories (name, slug, parent_id)
		VALUES ($1, $2, $3)
		RETURNING `+categoryColumns,
		c.Name, c.Slug, c.ParentID,
	)
	result, err := scanCategory(row)
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return result, nil
}

// Update modifies an existing category. Reparenting onto a descendant (or
// onto itself) fails with ErrCyclicParent, so a node can never become its
// own ancestor.
func (s *CategoryStore) Update(c *models.Category) error {
	if err := s.checkUnique(c.Name, c.Slug, c.ParentID, &c.ID); err != nil {
		return err
	}

	if c.ParentID != nil {
		if *c.ParentID == c.ID {
			return ErrCyclicParent
		}
		chain, err := s.Ancestors(*c.ParentID)
		if err != nil {
			return err
		}
		for _, a := range chain {
			if a.ID == c.ID {
				return ErrCyclicParent
			}
		}
	}

	_, err := s.db.Exec(`
		UPDATE categories SET name = $1, slug = $2, parent_id = $3, updated_at = NOW()
		WHERE id = $4
	`, c.Name, c.Slug, c.ParentID, c.ID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return nil
}

// checkUnique enforces the global name and sibling slug constraints,
// excluding excludeID when updating an existing row.
func (s *CategoryStore) checkUnique(name, slug string, parentID, excludeID *uuid.UUID) error {
	exclude := uuid.Nil
	if excludeID != nil {
		exclude = *excludeID
	}

	var nameCount int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM categories WHERE name = $1 AND id != $2`, name, exclude).Scan(&nameCount)
	if err != nil {
		return fmt.Errorf("check category name: %w", err)
	}
	if nameCount > 0 {
		return ErrDuplicateName
	}

	var slugCount int
	if parentID == nil {
		err = s.db.QueryRow(`SELECT COUNT(*) FROM categories WHERE slug = $1 AND parent_id IS NULL AND id != $2`, slug, exclude).Scan(&slugCount)
	} else {
		err = s.db.QueryRow(`SELECT COUNT(*) FROM categories WHERE slug = $1 AND parent_id = $2 AND id != $3`, slug, *parentID, exclude).Scan(&slugCount)
	}
	if err != nil {
		return fmt.Errorf("check category slug: %w", err)
	}
	if slugCount > 0 {
		return ErrDuplicateSlug
	}
	return nil
}

// Delete removes a category by ID. The database cascades the delete to all
// descendant categories, their posts, and those posts' views.
func (s *CategoryStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

// Ancestors returns the chain from the tree root down to the category with
// the given ID, inclusive. A root category yields a one-element chain.
// A walk that does not terminate at a root within maxTreeDepth levels
// returns ErrBrokenHierarchy; callers render without breadcrumbs and log
// rather than crash.
func (s *CategoryStore) Ancestors(id uuid.UUID) ([]models.Category, error) {
	rows, err := s.db.Query(`
		WITH RECURSIVE chain AS (
			SELECT id, name, slug, parent_id, created_at, updated_at, 0 AS depth
			FROM categories WHERE id = $1
			UNION ALL
			SELECT c.id, c.name, c.slug, c.parent_id, c.created_at, c.updated_at, chain.depth + 1
			FROM categories c
			JOIN chain ON c.id = chain.parent_id
			WHERE chain.depth < $2
		)
		SELECT id, name, slug, parent_id, created_at, updated_at
		FROM chain ORDER BY depth DESC
	`, id, maxTreeDepth)
	if err != nil {
		return nil, fmt.Errorf("category ancestors: %w", err)
	}
	defer rows.Close()

	var chain []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.ParentID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan ancestor: %w", err)
		}
		chain = append(chain, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("category ancestors: %w", err)
	}

	if len(chain) == 0 {
		return nil, nil
	}
	// The first element must be a root; anything else means the walk was
	// cut off by the depth cap, i.e. a cycle or dangling reference.
	if chain[0].ParentID != nil {
		return nil, fmt.Errorf("%w: walk from %s did not reach a root", ErrBrokenHierarchy, id)
	}
	for i := range chain {
		chain[i].Depth = i
	}
	return chain, nil
}

// URLSegments returns the cumulative URL paths for the category's ancestor
// chain, shortest first. See models.URLSegments for the derivation.
func (s *CategoryStore) URLSegments(id uuid.UUID) ([]string, error) {
	chain, err := s.Ancestors(id)
	if err != nil {
		return nil, err
	}
	return models.URLSegments(chain), nil
}

// ImageKeysUnder collects the feature-image storage keys of every post in
// the category's subtree, the category itself included. Used to clean up
// object storage after a cascade delete.
func (s *CategoryStore) ImageKeysUnder(id uuid.UUID) ([]string, error) {
	rows, err := s.db.Query(`
		WITH RECURSIVE subtree AS (
			SELECT id, 0 AS depth FROM categories WHERE id = $1
			UNION ALL
			SELECT c.id, subtree.depth + 1 FROM categories c
			JOIN subtree ON c.parent_id = subtree.id
			WHERE subtree.depth < $2
		)
		SELECT p.feature_image_key FROM posts p
		JOIN subtree ON p.category_id = subtree.id
		WHERE p.feature_image_key IS NOT NULL
	`, id, maxTreeDepth)
	if err != nil {
		return nil, fmt.Errorf("image keys under category: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan image key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}
