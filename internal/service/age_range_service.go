package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cuestionario-pro/quiz-api/internal/models"
	appErrors "github.com/cuestionario-pro/quiz-api/pkg/errors"
)

type ageRangeRepository interface {
	ListActive(ctx context.Context) ([]models.AgeRange, error)
	FindByID(ctx context.Context, id string) (*models.AgeRange, error)
	FindByAge(ctx context.Context, age int) ([]models.AgeRange, error)
	ExistsOverlapping(ctx context.Context, minAge, maxAge int, excludeID string) (bool, error)
	Create(ctx context.Context, ageRange *models.AgeRange) error
	Update(ctx context.Context, ageRange *models.AgeRange) error
	SoftDelete(ctx context.Context, id string) error
}

// CreateAgeRangeRequest represents payload for creating age ranges.
type CreateAgeRangeRequest struct {
	Name   string `json:"name" validate:"required,max=100"`
	MinAge int    `json:"min_age" validate:"min=0,max=150"`
	MaxAge int    `json:"max_age" validate:"min=0,max=150"`
}

// UpdateAgeRangeRequest payload for updating age ranges.
type UpdateAgeRangeRequest struct {
	Name   string `json:"name" validate:"required,max=100"`
	MinAge int    `json:"min_age" validate:"min=0,max=150"`
	MaxAge int    `json:"max_age" validate:"min=0,max=150"`
	Active *bool  `json:"active"`
}

// AgeRangeService handles audience age range workflows.
type AgeRangeService struct {
	repo      ageRangeRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAgeRangeService creates an instance of AgeRangeService.
func NewAgeRangeService(repo ageRangeRepository, validate *validator.Validate, logger *zap.Logger) *AgeRangeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AgeRangeService{repo: repo, validator: validate, logger: logger}
}

// List returns active age ranges ordered by lower bound.
func (s *AgeRangeService) List(ctx context.Context) ([]models.AgeRange, error) {
	ranges, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list age ranges")
	}
	return ranges, nil
}

// Get returns an age range by ID.
func (s *AgeRangeService) Get(ctx context.Context, id string) (*models.AgeRange, error) {
	ageRange, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "age range not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load age range")
	}
	return ageRange, nil
}

// ForAge returns the active ranges that include the given age.
func (s *AgeRangeService) ForAge(ctx context.Context, age int) ([]models.AgeRange, error) {
	if age < 0 || age > 150 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "age must be between 0 and 150")
	}

	ranges, err := s.repo.FindByAge(ctx, age)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to find age ranges")
	}
	return ranges, nil
}

// Create adds an age range. Bounds must be ordered and active ranges may
// not overlap.
func (s *AgeRangeService) Create(ctx context.Context, req CreateAgeRangeRequest) (*models.AgeRange, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid create age range payload")
	}
	if req.MinAge >= req.MaxAge {
		return nil, appErrors.Clone(appErrors.ErrValidation, "min_age must be lower than max_age")
	}

	overlap, err := s.repo.ExistsOverlapping(ctx, req.MinAge, req.MaxAge, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check age range overlap")
	}
	if overlap {
		return nil, appErrors.Clone(appErrors.ErrConflict, "age range overlaps an existing active range")
	}

	ageRange := &models.AgeRange{
		ID:     uuid.NewString(),
		Name:   req.Name,
		MinAge: req.MinAge,
		MaxAge: req.MaxAge,
		Active: true,
	}

	if err := s.repo.Create(ctx, ageRange); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create age range")
	}
	return ageRange, nil
}

// Update modifies an age range with the same bound and overlap checks as
// creation.
func (s *AgeRangeService) Update(ctx context.Context, id string, req UpdateAgeRangeRequest) (*models.AgeRange, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid update age range payload")
	}
	if req.MinAge >= req.MaxAge {
		return nil, appErrors.Clone(appErrors.ErrValidation, "min_age must be lower than max_age")
	}

	ageRange, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	overlap, err := s.repo.ExistsOverlapping(ctx, req.MinAge, req.MaxAge, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check age range overlap")
	}
	if overlap {
		return nil, appErrors.Clone(appErrors.ErrConflict, "age range overlaps an existing active range")
	}

	ageRange.Name = req.Name
	ageRange.MinAge = req.MinAge
	ageRange.MaxAge = req.MaxAge
	if req.Active != nil {
		ageRange.Active = *req.Active
	}

	if err := s.repo.Update(ctx, ageRange); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update age range")
	}
	return ageRange, nil
}

// Delete deactivates an age range.
func (s *AgeRangeService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete age range")
	}
	return nil
}
