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

const difficultyColumns = "id, level, description, weight, active, created_at, updated_at"

// DifficultyRepository handles persistence for difficulty levels.
type DifficultyRepository struct {
	db *sqlx.DB
}

// NewDifficultyRepository creates a new repository instance.
func NewDifficultyRepository(db *sqlx.DB) *DifficultyRepository {
	return &DifficultyRepository{db: db}
}

// ListActive returns active difficulty levels ordered by weight.
func (r *DifficultyRepository) ListActive(ctx context.Context) ([]models.Difficulty, error) {
	query := fmt.Sprintf(`SELECT %s FROM difficulty_levels WHERE active = TRUE ORDER BY weight`, difficultyColumns)
	var levels []models.Difficulty
	if err := r.db.SelectContext(ctx, &levels, query); err != nil {
		return nil, fmt.Errorf("list difficulty levels: %w", err)
	}
	return levels, nil
}

// FindByID returns a difficulty level by id.
func (r *DifficultyRepository) FindByID(ctx context.Context, id string) (*models.Difficulty, error) {
	query := fmt.Sprintf(`SELECT %s FROM difficulty_levels WHERE id = $1 LIMIT 1`, difficultyColumns)
	var level models.Difficulty
	if err := r.db.GetContext(ctx, &level, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find difficulty by id: %w", err)
	}
	return &level, nil
}

// ExistsByLevel checks whether an active row with the given level exists.
func (r *DifficultyRepository) ExistsByLevel(ctx context.Context, level models.DifficultyLevel, excludeID string) (bool, error) {
	query := "SELECT 1 FROM difficulty_levels WHERE level = $1 AND active = TRUE"
	args := []interface{}{level}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}

	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check difficulty level: %w", err)
	}
	return true, nil
}

// Create persists a new difficulty level.
func (r *DifficultyRepository) Create(ctx context.Context, level *models.Difficulty) error {
	if level.ID == "" {
		level.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if level.CreatedAt.IsZero() {
		level.CreatedAt = now
	}
	level.UpdatedAt = now

	const query = `INSERT INTO difficulty_levels (id, level, description, weight, active, created_at, updated_at)
		VALUES (:id, :level, :description, :weight, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, level); err != nil {
		return fmt.Errorf("create difficulty: %w", err)
	}
	return nil
}

// Update modifies a difficulty level.
func (r *DifficultyRepository) Update(ctx context.Context, level *models.Difficulty) error {
	level.UpdatedAt = time.Now().UTC()
	const query = `UPDATE difficulty_levels SET level = :level, description = :description, weight = :weight, active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, level); err != nil {
		return fmt.Errorf("update difficulty: %w", err)
	}
	return nil
}

// SoftDelete deactivates a difficulty level.
func (r *DifficultyRepository) SoftDelete(ctx context.Context, id string) error {
	const query = `UPDATE difficulty_levels SET active = FALSE, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("delete difficulty: %w", err)
	}
	return nil
}
