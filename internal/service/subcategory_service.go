package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cuestionario-pro/quiz-api/internal/models"
	appErrors "github.com/cuestionario-pro/quiz-api/pkg/errors"
)

type subcategoryRepository interface {
	ListActive(ctx context.Context, categoryID string) ([]models.Subcategory, error)
	FindByID(ctx context.Context, id string) (*models.Subcategory, error)
	ExistsByName(ctx context.Context, categoryID, name, excludeID string) (bool, error)
	CountByCategory(ctx context.Context, categoryID string) (int, error)
	Create(ctx context.Context, subcategory *models.Subcategory) error
	Update(ctx context.Context, subcategory *models.Subcategory) error
	SoftDelete(ctx context.Context, id string) error
}

type subcategoryCategoryRepository interface {
	FindByID(ctx context.Context, id string) (*models.Category, error)
}

// CreateSubcategoryRequest represents payload for creating subcategories.
type CreateSubcategoryRequest struct {
	CategoryID  string `json:"category_id" validate:"required,uuid"`
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=255"`
}

// UpdateSubcategoryRequest payload for updating subcategories.
type UpdateSubcategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=255"`
	Active      *bool  `json:"active"`
}

// SubcategoryService handles subcategory workflows.
type SubcategoryService struct {
	repo       subcategoryRepository
	categories subcategoryCategoryRepository
	cache      *CacheService
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewSubcategoryService creates an instance of SubcategoryService.
func NewSubcategoryService(repo subcategoryRepository, categories subcategoryCategoryRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *SubcategoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &SubcategoryService{repo: repo, categories: categories, cache: cache, validator: validate, logger: logger}
}

// List returns active subcategories, optionally filtered by category.
func (s *SubcategoryService) List(ctx context.Context, categoryID string) ([]models.Subcategory, error) {
	subcategories, err := s.repo.ListActive(ctx, categoryID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subcategories")
	}
	return subcategories, nil
}

// CountByCategory returns how many active subcategories a category has.
func (s *SubcategoryService) CountByCategory(ctx context.Context, categoryID string) (int, error) {
	if _, err := s.categories.FindByID(ctx, categoryID); err != nil {
		if isNoRows(err) {
			return 0, appErrors.Clone(appErrors.ErrNotFound, "category not found")
		}
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load category")
	}

	count, err := s.repo.CountByCategory(ctx, categoryID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count subcategories")
	}
	return count, nil
}

// Get returns a subcategory by ID.
func (s *SubcategoryService) Get(ctx context.Context, id string) (*models.Subcategory, error) {
	subcategory, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subcategory not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subcategory")
	}
	return subcategory, nil
}

// Create adds a subcategory under an active category.
func (s *SubcategoryService) Create(ctx context.Context, req CreateSubcategoryRequest) (*models.Subcategory, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid create subcategory payload")
	}

	category, err := s.categories.FindByID(ctx, req.CategoryID)
	if err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "category not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load category")
	}
	if !category.Active {
		return nil, appErrors.Clone(appErrors.ErrValidation, "cannot add subcategories to an inactive category")
	}

	exists, err := s.repo.ExistsByName(ctx, req.CategoryID, req.Name, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check subcategory name")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "subcategory name already exists in this category")
	}

	subcategory := &models.Subcategory{
		ID:          uuid.NewString(),
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		Active:      true,
	}

	if err := s.repo.Create(ctx, subcategory); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create subcategory")
	}

	s.invalidate(ctx)
	return subcategory, nil
}

// Update modifies a subcategory.
func (s *SubcategoryService) Update(ctx context.Context, id string, req UpdateSubcategoryRequest) (*models.Subcategory, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid update subcategory payload")
	}

	subcategory, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByName(ctx, subcategory.CategoryID, req.Name, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check subcategory name")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "subcategory name already exists in this category")
	}

	subcategory.Name = req.Name
	subcategory.Description = req.Description
	if req.Active != nil {
		subcategory.Active = *req.Active
	}

	if err := s.repo.Update(ctx, subcategory); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update subcategory")
	}

	s.invalidate(ctx)
	return subcategory, nil
}

// Delete deactivates a subcategory.
func (s *SubcategoryService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete subcategory")
	}

	s.invalidate(ctx)
	return nil
}

func (s *SubcategoryService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, "categories:*"); err != nil {
		s.logger.Warn("failed to invalidate category cache", zap.Error(err))
	}
}
