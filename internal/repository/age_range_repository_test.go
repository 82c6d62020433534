package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuestionario-pro/quiz-api/internal/models"
)

func ageRangeRows(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "min_age", "max_age", "active", "created_at", "updated_at"}).
		AddRow("a1", "Infantil", 6, 12, true, now, now)
}

func TestAgeRangeFindByAge(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAgeRangeRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, min_age, max_age, active, created_at, updated_at FROM age_ranges WHERE active = TRUE AND min_age <= $1 AND max_age >= $1 ORDER BY min_age")).
		WithArgs(8).
		WillReturnRows(ageRangeRows(time.Now()))

	ranges, err := repo.FindByAge(context.Background(), 8)
	require.NoError(t, err)
	require.Len(t, ranges, 1)
	assert.True(t, ranges[0].Includes(8))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAgeRangeExistsOverlapping(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAgeRangeRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM age_ranges WHERE active = TRUE AND min_age <= $2 AND max_age >= $1 LIMIT 1")).
		WithArgs(10, 17).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(1))

	overlap, err := repo.ExistsOverlapping(context.Background(), 10, 17, "")
	require.NoError(t, err)
	assert.True(t, overlap)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAgeRangeExistsOverlappingExcludesSelf(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAgeRangeRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM age_ranges WHERE active = TRUE AND min_age <= $2 AND max_age >= $1 AND id <> $3 LIMIT 1")).
		WithArgs(5, 12, "a1").
		WillReturnError(sql.ErrNoRows)

	overlap, err := repo.ExistsOverlapping(context.Background(), 5, 12, "a1")
	require.NoError(t, err)
	assert.False(t, overlap)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAgeRangeCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAgeRangeRepository(db)

	mock.ExpectExec("INSERT INTO age_ranges").WillReturnResult(sqlmock.NewResult(1, 1))

	ageRange := &models.AgeRange{Name: "Infantil", MinAge: 6, MaxAge: 12, Active: true}
	require.NoError(t, repo.Create(context.Background(), ageRange))
	assert.NotEmpty(t, ageRange.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAgeRangeSoftDelete(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAgeRangeRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE age_ranges SET active = FALSE, updated_at = $2 WHERE id = $1")).
		WithArgs("a1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SoftDelete(context.Background(), "a1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
