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

type mockDifficultyRepo struct {
	levels      map[string]*models.Difficulty
	levelExists bool
	deletedID   string
}

func newMockDifficultyRepo(levels ...*models.Difficulty) *mockDifficultyRepo {
	repo := &mockDifficultyRepo{levels: make(map[string]*models.Difficulty)}
	for _, l := range levels {
		repo.levels[l.ID] = l
	}
	return repo
}

func (m *mockDifficultyRepo) ListActive(ctx context.Context) ([]models.Difficulty, error) {
	out := make([]models.Difficulty, 0, len(m.levels))
	for _, l := range m.levels {
		if l.Active {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (m *mockDifficultyRepo) FindByID(ctx context.Context, id string) (*models.Difficulty, error) {
	level, ok := m.levels[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return level, nil
}

func (m *mockDifficultyRepo) ExistsByLevel(ctx context.Context, level models.DifficultyLevel, excludeID string) (bool, error) {
	return m.levelExists, nil
}

func (m *mockDifficultyRepo) Create(ctx context.Context, level *models.Difficulty) error {
	m.levels[level.ID] = level
	return nil
}

func (m *mockDifficultyRepo) Update(ctx context.Context, level *models.Difficulty) error {
	m.levels[level.ID] = level
	return nil
}

func (m *mockDifficultyRepo) SoftDelete(ctx context.Context, id string) error {
	m.deletedID = id
	return nil
}

func newTestDifficultyService(repo *mockDifficultyRepo) *DifficultyService {
	return NewDifficultyService(repo, validator.New(), zap.NewNop())
}

func TestDifficultyServiceCreate(t *testing.T) {
	svc := newTestDifficultyService(newMockDifficultyRepo())

	level, err := svc.Create(context.Background(), CreateDifficultyRequest{
		Level:       models.DifficultyEasy,
		Description: "Preguntas introductorias",
		Weight:      1,
	})
	require.NoError(t, err)
	assert.Equal(t, models.DifficultyEasy, level.Level)
	assert.True(t, level.Active)
}

func TestDifficultyServiceCreateUnknownTier(t *testing.T) {
	svc := newTestDifficultyService(newMockDifficultyRepo())

	_, err := svc.Create(context.Background(), CreateDifficultyRequest{Level: "Imposible", Weight: 5})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestDifficultyServiceCreateDuplicateTier(t *testing.T) {
	repo := newMockDifficultyRepo()
	repo.levelExists = true
	svc := newTestDifficultyService(repo)

	_, err := svc.Create(context.Background(), CreateDifficultyRequest{Level: models.DifficultyMedium, Weight: 5})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestDifficultyServiceUpdateKeepsTier(t *testing.T) {
	repo := newMockDifficultyRepo(&models.Difficulty{ID: "d1", Level: models.DifficultyHard, Weight: 8, Active: true})
	svc := newTestDifficultyService(repo)

	level, err := svc.Update(context.Background(), "d1", UpdateDifficultyRequest{Description: "Para expertos", Weight: 10})
	require.NoError(t, err)
	assert.Equal(t, models.DifficultyHard, level.Level)
	assert.Equal(t, 10, level.Weight)
	assert.Equal(t, "Para expertos", level.Description)
}

func TestDifficultyServiceWeightBounds(t *testing.T) {
	svc := newTestDifficultyService(newMockDifficultyRepo())

	_, err := svc.Create(context.Background(), CreateDifficultyRequest{Level: models.DifficultyEasy, Weight: 11})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestDifficultyServiceDelete(t *testing.T) {
	repo := newMockDifficultyRepo(&models.Difficulty{ID: "d1", Level: models.DifficultyEasy, Active: true})
	svc := newTestDifficultyService(repo)

	require.NoError(t, svc.Delete(context.Background(), "d1"))
	assert.Equal(t, "d1", repo.deletedID)
}
