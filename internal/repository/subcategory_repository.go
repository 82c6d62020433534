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

const subcategoryColumns = "id, category_id, name, description, active, created_at, updated_at"

// SubcategoryRepository handles persistence for subcategories.
type SubcategoryRepository struct {
	db *sqlx.DB
}

// NewSubcategoryRepository creates a new repository instance.
func NewSubcategoryRepository(db *sqlx.DB) *SubcategoryRepository {
	return &SubcategoryRepository{db: db}
}

// ListActive returns active subcategories, optionally filtered by category.
func (r *SubcategoryRepository) ListActive(ctx context.Context, categoryID string) ([]models.Subcategory, error) {
	query := fmt.Sprintf(`SELECT %s FROM subcategories WHERE active = TRUE`, subcategoryColumns)
	args := []interface{}{}
	if categoryID != "" {
		query += " AND category_id = $1"
		args = append(args, categoryID)
	}
	query += " ORDER BY name"

	var subcategories []models.Subcategory
	if err := r.db.SelectContext(ctx, &subcategories, query, args...); err != nil {
		return nil, fmt.Errorf("list subcategories: %w", err)
	}
	return subcategories, nil
}

// FindByID returns a subcategory by id.
func (r *SubcategoryRepository) FindByID(ctx context.Context, id string) (*models.Subcategory, error) {
	query := fmt.Sprintf(`SELECT %s FROM subcategories WHERE id = $1 LIMIT 1`, subcategoryColumns)
	var subcategory models.Subcategory
	if err := r.db.GetContext(ctx, &subcategory, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find subcategory by id: %w", err)
	}
	return &subcategory, nil
}

// ExistsByName checks uniqueness of a subcategory name within its category.
func (r *SubcategoryRepository) ExistsByName(ctx context.Context, categoryID, name, excludeID string) (bool, error) {
	query := "SELECT 1 FROM subcategories WHERE category_id = $1 AND LOWER(name) = LOWER($2) AND active = TRUE"
	args := []interface{}{categoryID, name}
	if excludeID != "" {
		query += " AND id <> $3"
		args = append(args, excludeID)
	}

	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check subcategory name: %w", err)
	}
	return true, nil
}

// CountByCategory counts the active subcategories of a category.
func (r *SubcategoryRepository) CountByCategory(ctx context.Context, categoryID string) (int, error) {
	var count int
	query := "SELECT COUNT(*) FROM subcategories WHERE category_id = $1 AND active = TRUE"
	if err := r.db.GetContext(ctx, &count, query, categoryID); err != nil {
		return 0, fmt.Errorf("count subcategories: %w", err)
	}
	return count, nil
}

// Create persists a new subcategory.
func (r *SubcategoryRepository) Create(ctx context.Context, subcategory *models.Subcategory) error {
	if subcategory.ID == "" {
		subcategory.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if subcategory.CreatedAt.IsZero() {
		subcategory.CreatedAt = now
	}
	subcategory.UpdatedAt = now

	const query = `INSERT INTO subcategories (id, category_id, name, description, active, created_at, updated_at)
		VALUES (:id, :category_id, :name, :description, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, subcategory); err != nil {
		return fmt.Errorf("create subcategory: %w", err)
	}
	return nil
}

// Update modifies a subcategory.
func (r *SubcategoryRepository) Update(ctx context.Context, subcategory *models.Subcategory) error {
	subcategory.UpdatedAt = time.Now().UTC()
	const query = `UPDATE subcategories SET category_id = :category_id, name = :name, description = :description, active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, subcategory); err != nil {
		return fmt.Errorf("update subcategory: %w", err)
	}
	return nil
}

// SoftDelete deactivates a subcategory.
func (r *SubcategoryRepository) SoftDelete(ctx context.Context, id string) error {
	const query = `UPDATE subcategories SET active = FALSE, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("delete subcategory: %w", err)
	}
	return nil
}
