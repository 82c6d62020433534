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

const ageRangeColumns = "id, name, min_age, max_age, active, created_at, updated_at"

// AgeRangeRepository handles persistence for audience age ranges.
type AgeRangeRepository struct {
	db *sqlx.DB
}

// NewAgeRangeRepository creates a new repository instance.
func NewAgeRangeRepository(db *sqlx.DB) *AgeRangeRepository {
	return &AgeRangeRepository{db: db}
}

// ListActive returns active age ranges ordered by min_age.
func (r *AgeRangeRepository) ListActive(ctx context.Context) ([]models.AgeRange, error) {
	query := fmt.Sprintf(`SELECT %s FROM age_ranges WHERE active = TRUE ORDER BY min_age`, ageRangeColumns)
	var ranges []models.AgeRange
	if err := r.db.SelectContext(ctx, &ranges, query); err != nil {
		return nil, fmt.Errorf("list age ranges: %w", err)
	}
	return ranges, nil
}

// FindByID returns an age range by id.
func (r *AgeRangeRepository) FindByID(ctx context.Context, id string) (*models.AgeRange, error) {
	query := fmt.Sprintf(`SELECT %s FROM age_ranges WHERE id = $1 LIMIT 1`, ageRangeColumns)
	var ageRange models.AgeRange
	if err := r.db.GetContext(ctx, &ageRange, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find age range by id: %w", err)
	}
	return &ageRange, nil
}

// FindByAge returns the active ranges that include the given age.
func (r *AgeRangeRepository) FindByAge(ctx context.Context, age int) ([]models.AgeRange, error) {
	query := fmt.Sprintf(`SELECT %s FROM age_ranges WHERE active = TRUE AND min_age <= $1 AND max_age >= $1 ORDER BY min_age`, ageRangeColumns)
	var ranges []models.AgeRange
	if err := r.db.SelectContext(ctx, &ranges, query, age); err != nil {
		return nil, fmt.Errorf("find age ranges by age: %w", err)
	}
	return ranges, nil
}

// ExistsOverlapping reports whether any active range overlaps [minAge, maxAge].
func (r *AgeRangeRepository) ExistsOverlapping(ctx context.Context, minAge, maxAge int, excludeID string) (bool, error) {
	query := "SELECT 1 FROM age_ranges WHERE active = TRUE AND min_age <= $2 AND max_age >= $1"
	args := []interface{}{minAge, maxAge}
	if excludeID != "" {
		query += " AND id <> $3"
		args = append(args, excludeID)
	}

	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check age range overlap: %w", err)
	}
	return true, nil
}

// Create persists a new age range.
func (r *AgeRangeRepository) Create(ctx context.Context, ageRange *models.AgeRange) error {
	if ageRange.ID == "" {
		ageRange.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if ageRange.CreatedAt.IsZero() {
		ageRange.CreatedAt = now
	}
	ageRange.UpdatedAt = now

	const query = `INSERT INTO age_ranges (id, name, min_age, max_age, active, created_at, updated_at)
		VALUES (:id, :name, :min_age, :max_age, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, ageRange); err != nil {
		return fmt.Errorf("create age range: %w", err)
	}
	return nil
}

// Update modifies an age range.
func (r *AgeRangeRepository) Update(ctx context.Context, ageRange *models.AgeRange) error {
	ageRange.UpdatedAt = time.Now().UTC()
	const query = `UPDATE age_ranges SET name = :name, min_age = :min_age, max_age = :max_age, active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, ageRange); err != nil {
		return fmt.Errorf("update age range: %w", err)
	}
	return nil
}

// SoftDelete deactivates an age range.
func (r *AgeRangeRepository) SoftDelete(ctx context.Context, id string) error {
	const query = `UPDATE age_ranges SET active = FALSE, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("delete age range: %w", err)
	}
	return nil
}
