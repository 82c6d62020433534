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

const privilegeColumns = "id, name, description, category, active, created_at, updated_at"

// PrivilegeRepository reads the seeded privilege catalog.
type PrivilegeRepository struct {
	db *sqlx.DB
}

// NewPrivilegeRepository creates a new repository instance.
func NewPrivilegeRepository(db *sqlx.DB) *PrivilegeRepository {
	return &PrivilegeRepository{db: db}
}

// ListActive returns all active privileges ordered for display.
func (r *PrivilegeRepository) ListActive(ctx context.Context) ([]models.Privilege, error) {
	query := fmt.Sprintf(`SELECT %s FROM privileges WHERE active = TRUE ORDER BY category, name`, privilegeColumns)
	var privileges []models.Privilege
	if err := r.db.SelectContext(ctx, &privileges, query); err != nil {
		return nil, fmt.Errorf("list privileges: %w", err)
	}
	return privileges, nil
}

// ListByCategory returns active privileges of one category.
func (r *PrivilegeRepository) ListByCategory(ctx context.Context, category models.PrivilegeCategory) ([]models.Privilege, error) {
	query := fmt.Sprintf(`SELECT %s FROM privileges WHERE category = $1 AND active = TRUE ORDER BY name`, privilegeColumns)
	var privileges []models.Privilege
	if err := r.db.SelectContext(ctx, &privileges, query, category); err != nil {
		return nil, fmt.Errorf("list privileges by category: %w", err)
	}
	return privileges, nil
}

// FindByID returns a privilege by id.
func (r *PrivilegeRepository) FindByID(ctx context.Context, id string) (*models.Privilege, error) {
	query := fmt.Sprintf(`SELECT %s FROM privileges WHERE id = $1 LIMIT 1`, privilegeColumns)
	var privilege models.Privilege
	if err := r.db.GetContext(ctx, &privilege, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find privilege by id: %w", err)
	}
	return &privilege, nil
}

// Upsert inserts or refreshes a catalog entry. Used by the seed command.
func (r *PrivilegeRepository) Upsert(ctx context.Context, entry models.CatalogEntry) error {
	now := time.Now().UTC()
	const query = `INSERT INTO privileges (id, name, description, category, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, TRUE, $5, $5)
		ON CONFLICT (name) DO UPDATE SET description = EXCLUDED.description, category = EXCLUDED.category, active = TRUE, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, uuid.NewString(), entry.Name, entry.Description, entry.Category, now); err != nil {
		return fmt.Errorf("upsert privilege %s: %w", entry.Name, err)
	}
	return nil
}
