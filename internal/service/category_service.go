package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cuestionario-pro/quiz-api/internal/models"
	appErrors "github.com/cuestionario-pro/quiz-api/pkg/errors"
)

const cacheKeyCategoryList = "categories:list"

type categoryRepository interface {
	ListActive(ctx context.Context) ([]models.Category, error)
	FindByID(ctx context.Context, id string) (*models.Category, error)
	ExistsByName(ctx context.Context, name string, excludeID string) (bool, error)
	Create(ctx context.Context, category *models.Category) error
	Update(ctx context.Context, category *models.Category) error
	SoftDeleteCascade(ctx context.Context, id string) error
	CountActiveSubcategories(ctx context.Context, id string) (int, error)
	ListSubcategories(ctx context.Context, id string) ([]models.Subcategory, error)
}

// CreateCategoryRequest represents payload for creating categories.
type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=255"`
}

// UpdateCategoryRequest payload for updating categories.
type UpdateCategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=255"`
	Active      *bool  `json:"active"`
}

// CategoryService handles question category workflows.
type CategoryService struct {
	repo      categoryRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCategoryService creates an instance of CategoryService.
func NewCategoryService(repo categoryRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *CategoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CategoryService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns active categories.
func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	var cached []models.Category
	if hit, _ := s.cache.Get(ctx, cacheKeyCategoryList, &cached); hit {
		return cached, nil
	}

	categories, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list categories")
	}

	if err := s.cache.Set(ctx, cacheKeyCategoryList, categories, 0); err != nil {
		s.logger.Warn("failed to cache category list", zap.Error(err))
	}
	return categories, nil
}

// Get returns a category with its active subcategories attached.
func (s *CategoryService) Get(ctx context.Context, id string) (*models.Category, error) {
	category, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	subcategories, err := s.repo.ListSubcategories(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subcategories")
	}
	category.Subcategories = subcategories
	return category, nil
}

// Create adds a new category.
func (s *CategoryService) Create(ctx context.Context, req CreateCategoryRequest) (*models.Category, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid create category payload")
	}

	exists, err := s.repo.ExistsByName(ctx, req.Name, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check category name")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "category name already exists")
	}

	category := &models.Category{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		Active:      true,
	}

	if err := s.repo.Create(ctx, category); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create category")
	}

	s.invalidate(ctx)
	return category, nil
}

// Update modifies a category.
func (s *CategoryService) Update(ctx context.Context, id string, req UpdateCategoryRequest) (*models.Category, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid update category payload")
	}

	category, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByName(ctx, req.Name, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check category name")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "category name already exists")
	}

	category.Name = req.Name
	category.Description = req.Description
	if req.Active != nil {
		category.Active = *req.Active
	}

	if err := s.repo.Update(ctx, category); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update category")
	}

	s.invalidate(ctx)
	return category, nil
}

// Delete deactivates a category and cascades to its subcategories.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}

	if err := s.repo.SoftDeleteCascade(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete category")
	}

	s.invalidate(ctx)
	return nil
}

// Stats returns a category with its active subcategory count.
func (s *CategoryService) Stats(ctx context.Context, id string) (*models.CategoryStats, error) {
	category, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	count, err := s.repo.CountActiveSubcategories(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count subcategories")
	}

	return &models.CategoryStats{Category: *category, ActiveSubcategories: count}, nil
}

func (s *CategoryService) find(ctx context.Context, id string) (*models.Category, error) {
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "category not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load category")
	}
	return category, nil
}

func (s *CategoryService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, "categories:*"); err != nil {
		s.logger.Warn("failed to invalidate category cache", zap.Error(err))
	}
}
