package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cuestionario-pro/quiz-api/internal/models"
	appErrors "github.com/cuestionario-pro/quiz-api/pkg/errors"
)

type mockAgeRangeRepo struct {
	ranges    map[string]*models.AgeRange
	deletedID string
}

func newMockAgeRangeRepo(ranges ...*models.AgeRange) *mockAgeRangeRepo {
	repo := &mockAgeRangeRepo{ranges: make(map[string]*models.AgeRange)}
	for _, r := range ranges {
		repo.ranges[r.ID] = r
	}
	return repo
}

func (m *mockAgeRangeRepo) ListActive(ctx context.Context) ([]models.AgeRange, error) {
	out := make([]models.AgeRange, 0, len(m.ranges))
	for _, r := range m.ranges {
		if r.Active {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *mockAgeRangeRepo) FindByID(ctx context.Context, id string) (*models.AgeRange, error) {
	ageRange, ok := m.ranges[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return ageRange, nil
}

func (m *mockAgeRangeRepo) FindByAge(ctx context.Context, age int) ([]models.AgeRange, error) {
	out := make([]models.AgeRange, 0)
	for _, r := range m.ranges {
		if r.Active && r.Includes(age) {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *mockAgeRangeRepo) ExistsOverlapping(ctx context.Context, minAge, maxAge int, excludeID string) (bool, error) {
	for _, r := range m.ranges {
		if !r.Active || r.ID == excludeID {
			continue
		}
		if r.MinAge <= maxAge && r.MaxAge >= minAge {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockAgeRangeRepo) Create(ctx context.Context, ageRange *models.AgeRange) error {
	m.ranges[ageRange.ID] = ageRange
	return nil
}

func (m *mockAgeRangeRepo) Update(ctx context.Context, ageRange *models.AgeRange) error {
	m.ranges[ageRange.ID] = ageRange
	return nil
}

func (m *mockAgeRangeRepo) SoftDelete(ctx context.Context, id string) error {
	m.deletedID = id
	if r, ok := m.ranges[id]; ok {
		r.Active = false
	}
	return nil
}

func newTestAgeRangeService(repo *mockAgeRangeRepo) *AgeRangeService {
	return NewAgeRangeService(repo, validator.New(), zap.NewNop())
}

func TestAgeRangeServiceCreate(t *testing.T) {
	svc := newTestAgeRangeService(newMockAgeRangeRepo())

	ageRange, err := svc.Create(context.Background(), CreateAgeRangeRequest{Name: "Infantil", MinAge: 6, MaxAge: 12})
	require.NoError(t, err)
	assert.True(t, ageRange.Active)
	assert.Equal(t, 6, ageRange.MinAge)
}

func TestAgeRangeServiceCreateInvertedBounds(t *testing.T) {
	svc := newTestAgeRangeService(newMockAgeRangeRepo())

	_, err := svc.Create(context.Background(), CreateAgeRangeRequest{Name: "Infantil", MinAge: 12, MaxAge: 6})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestAgeRangeServiceCreateOverlap(t *testing.T) {
	repo := newMockAgeRangeRepo(&models.AgeRange{ID: "a1", Name: "Infantil", MinAge: 6, MaxAge: 12, Active: true})
	svc := newTestAgeRangeService(repo)

	_, err := svc.Create(context.Background(), CreateAgeRangeRequest{Name: "Juvenil", MinAge: 10, MaxAge: 17})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestAgeRangeServiceCreateAfterDeactivation(t *testing.T) {
	repo := newMockAgeRangeRepo(&models.AgeRange{ID: "a1", Name: "Infantil", MinAge: 6, MaxAge: 12, Active: true})
	svc := newTestAgeRangeService(repo)

	require.NoError(t, svc.Delete(context.Background(), "a1"))

	// Deactivated ranges no longer block overlapping bounds.
	_, err := svc.Create(context.Background(), CreateAgeRangeRequest{Name: "Juvenil", MinAge: 10, MaxAge: 17})
	require.NoError(t, err)
}

func TestAgeRangeServiceUpdateExcludesSelf(t *testing.T) {
	repo := newMockAgeRangeRepo(&models.AgeRange{ID: "a1", Name: "Infantil", MinAge: 6, MaxAge: 12, Active: true})
	svc := newTestAgeRangeService(repo)

	ageRange, err := svc.Update(context.Background(), "a1", UpdateAgeRangeRequest{Name: "Infantil", MinAge: 5, MaxAge: 12})
	require.NoError(t, err)
	assert.Equal(t, 5, ageRange.MinAge)
}

func TestAgeRangeServiceForAge(t *testing.T) {
	repo := newMockAgeRangeRepo(
		&models.AgeRange{ID: "a1", Name: "Infantil", MinAge: 6, MaxAge: 12, Active: true},
		&models.AgeRange{ID: "a2", Name: "Juvenil", MinAge: 13, MaxAge: 17, Active: true},
	)
	svc := newTestAgeRangeService(repo)

	ranges, err := svc.ForAge(context.Background(), 14)
	require.NoError(t, err)
	require.Len(t, ranges, 1)
	assert.Equal(t, "Juvenil", ranges[0].Name)
}

func TestAgeRangeServiceForAgeOutOfBounds(t *testing.T) {
	svc := newTestAgeRangeService(newMockAgeRangeRepo())

	_, err := svc.ForAge(context.Background(), 200)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}
