package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cuestionario-pro/quiz-api/internal/models"
	appErrors "github.com/cuestionario-pro/quiz-api/pkg/errors"
)

type memoryCacheRepo struct {
	entries  map[string][]byte
	deleted  []string
	getCalls int
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{entries: make(map[string][]byte)}
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	m.getCalls++
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	m.deleted = append(m.deleted, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
		}
	}
	return nil
}

type mockCategoryRepo struct {
	categories    map[string]*models.Category
	subcategories map[string][]models.Subcategory
	nameExists    bool
	listCalls     int
	cascadedID    string
}

func newMockCategoryRepo(categories ...*models.Category) *mockCategoryRepo {
	repo := &mockCategoryRepo{
		categories:    make(map[string]*models.Category),
		subcategories: make(map[string][]models.Subcategory),
	}
	for _, c := range categories {
		repo.categories[c.ID] = c
	}
	return repo
}

func (m *mockCategoryRepo) ListActive(ctx context.Context) ([]models.Category, error) {
	m.listCalls++
	out := make([]models.Category, 0, len(m.categories))
	for _, c := range m.categories {
		if c.Active {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *mockCategoryRepo) FindByID(ctx context.Context, id string) (*models.Category, error) {
	category, ok := m.categories[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return category, nil
}

func (m *mockCategoryRepo) ExistsByName(ctx context.Context, name string, excludeID string) (bool, error) {
	return m.nameExists, nil
}

func (m *mockCategoryRepo) Create(ctx context.Context, category *models.Category) error {
	m.categories[category.ID] = category
	return nil
}

func (m *mockCategoryRepo) Update(ctx context.Context, category *models.Category) error {
	m.categories[category.ID] = category
	return nil
}

func (m *mockCategoryRepo) SoftDeleteCascade(ctx context.Context, id string) error {
	m.cascadedID = id
	if category, ok := m.categories[id]; ok {
		category.Active = false
	}
	subs := m.subcategories[id]
	for i := range subs {
		subs[i].Active = false
	}
	return nil
}

func (m *mockCategoryRepo) CountActiveSubcategories(ctx context.Context, id string) (int, error) {
	count := 0
	for _, sub := range m.subcategories[id] {
		if sub.Active {
			count++
		}
	}
	return count, nil
}

func (m *mockCategoryRepo) ListSubcategories(ctx context.Context, id string) ([]models.Subcategory, error) {
	return m.subcategories[id], nil
}

func newTestCategoryService(repo *mockCategoryRepo, cacheRepo CacheRepository) *CategoryService {
	cache := NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), cacheRepo != nil)
	return NewCategoryService(repo, cache, validator.New(), zap.NewNop())
}

func TestCategoryServiceListCaches(t *testing.T) {
	repo := newMockCategoryRepo(&models.Category{ID: "c1", Name: "Historia", Active: true})
	cacheRepo := newMemoryCacheRepo()
	svc := newTestCategoryService(repo, cacheRepo)

	first, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, 1, repo.listCalls)
}

func TestCategoryServiceCreateInvalidatesCache(t *testing.T) {
	repo := newMockCategoryRepo()
	cacheRepo := newMemoryCacheRepo()
	svc := newTestCategoryService(repo, cacheRepo)

	_, err := svc.Create(context.Background(), CreateCategoryRequest{Name: "Historia"})
	require.NoError(t, err)
	require.NotEmpty(t, cacheRepo.deleted)
	assert.Equal(t, "categories:*", cacheRepo.deleted[0])
}

func TestCategoryServiceCreateDuplicateName(t *testing.T) {
	repo := newMockCategoryRepo()
	repo.nameExists = true
	svc := newTestCategoryService(repo, nil)

	_, err := svc.Create(context.Background(), CreateCategoryRequest{Name: "Historia"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestCategoryServiceDeleteCascades(t *testing.T) {
	repo := newMockCategoryRepo(&models.Category{ID: "c1", Name: "Historia", Active: true})
	repo.subcategories["c1"] = []models.Subcategory{
		{ID: "s1", CategoryID: "c1", Name: "Edad Media", Active: true},
		{ID: "s2", CategoryID: "c1", Name: "Edad Moderna", Active: true},
	}
	svc := newTestCategoryService(repo, nil)

	require.NoError(t, svc.Delete(context.Background(), "c1"))
	assert.Equal(t, "c1", repo.cascadedID)
	assert.False(t, repo.categories["c1"].Active)
	for _, sub := range repo.subcategories["c1"] {
		assert.False(t, sub.Active)
	}
}

func TestCategoryServiceGetAttachesSubcategories(t *testing.T) {
	repo := newMockCategoryRepo(&models.Category{ID: "c1", Name: "Historia", Active: true})
	repo.subcategories["c1"] = []models.Subcategory{{ID: "s1", CategoryID: "c1", Name: "Edad Media", Active: true}}
	svc := newTestCategoryService(repo, nil)

	category, err := svc.Get(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, category.Subcategories, 1)
}

func TestCategoryServiceStats(t *testing.T) {
	repo := newMockCategoryRepo(&models.Category{ID: "c1", Name: "Historia", Active: true})
	repo.subcategories["c1"] = []models.Subcategory{
		{ID: "s1", Active: true},
		{ID: "s2", Active: false},
	}
	svc := newTestCategoryService(repo, nil)

	stats, err := svc.Stats(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ActiveSubcategories)
}

func TestCategoryServiceGetNotFound(t *testing.T) {
	svc := newTestCategoryService(newMockCategoryRepo(), nil)

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
