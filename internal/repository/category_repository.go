package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/cuestionario-pro/quiz-api/internal/models"
)

const categoryColumns = "id, name, description, active, created_at, updated_at"

// CategoryRepository handles persistence for question categories.
type CategoryRepository struct {
	db *sqlx.DB
}

// NewCategoryRepository creates a new repository instance.
func NewCategoryRepository(db *sqlx.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// ListActive returns active categories sorted by name.
func (r *CategoryRepository) ListActive(ctx context.Context) ([]models.Category, error) {
	query := fmt.Sprintf(`SELECT %s FROM categories WHERE active = TRUE ORDER BY name`, categoryColumns)
	var categories []models.Category
	if err := r.db.SelectContext(ctx, &categories, query); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// FindByID returns a category by id.
func (r *CategoryRepository) FindByID(ctx context.Context, id string) (*models.Category, error) {
	query := fmt.Sprintf(`SELECT %s FROM categories WHERE id = $1 LIMIT 1`, categoryColumns)
	var category models.Category
	if err := r.db.GetContext(ctx, &category, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return &category, nil
}

// ExistsByName checks uniqueness of a category name among active rows.
func (r *CategoryRepository) ExistsByName(ctx context.Context, name string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM categories WHERE LOWER(name) = LOWER($1) AND active = TRUE"
	args := []interface{}{name}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}

	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check category name: %w", err)
	}
	return true, nil
}

// Create persists a new category.
func (r *CategoryRepository) Create(ctx context.Context, category *models.Category) error {
	if category.ID == "" {
		category.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if category.CreatedAt.IsZero() {
		category.CreatedAt = now
	}
	category.UpdatedAt = now

	const query = `INSERT INTO categories (id, name, description, active, created_at, updated_at)
		VALUES (:id, :name, :description, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, category); err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

// Update modifies a category.
func (r *CategoryRepository) Update(ctx context.Context, category *models.Category) error {
	category.UpdatedAt = time.Now().UTC()
	const query = `UPDATE categories SET name = :name, description = :description, active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, category); err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return nil
}

// SoftDeleteCascade deactivates the category and all of its subcategories.
func (r *CategoryRepository) SoftDeleteCascade(ctx context.Context, id string) error {
	now := time.Now().UTC()
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin cascade delete: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `UPDATE categories SET active = FALSE, updated_at = $2 WHERE id = $1`, id, now); err != nil {
		return fmt.Errorf("deactivate category: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE subcategories SET active = FALSE, updated_at = $2 WHERE category_id = $1`, id, now); err != nil {
		return fmt.Errorf("deactivate subcategories: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit cascade delete: %w", err)
	}
	return nil
}

// CountActiveSubcategories returns the number of active subcategories.
func (r *CategoryRepository) CountActiveSubcategories(ctx context.Context, id string) (int, error) {
	const query = `SELECT COUNT(*) FROM subcategories WHERE category_id = $1 AND active = TRUE`
	var count int
	if err := r.db.GetContext(ctx, &count, query, id); err != nil {
		return 0, fmt.Errorf("count subcategories: %w", err)
	}
	return count, nil
}

// ListSubcategories returns the active subcategories of a category.
func (r *CategoryRepository) ListSubcategories(ctx context.Context, id string) ([]models.Subcategory, error) {
	const query = `SELECT id, category_id, name, description, active, created_at, updated_at
		FROM subcategories WHERE category_id = $1 AND active = TRUE ORDER BY name`
	var subcategories []models.Subcategory
	if err := r.db.SelectContext(ctx, &subcategories, query, id); err != nil {
		return nil, fmt.Errorf("list category subcategories: %w", err)
	}
	return subcategories, nil
}
