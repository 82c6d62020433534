package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cuestionario-pro/quiz-api/internal/models"
	appErrors "github.com/cuestionario-pro/quiz-api/pkg/errors"
)

type difficultyRepository interface {
	ListActive(ctx context.Context) ([]models.Difficulty, error)
	FindByID(ctx context.Context, id string) (*models.Difficulty, error)
	ExistsByLevel(ctx context.Context, level models.DifficultyLevel, excludeID string) (bool, error)
	Create(ctx context.Context, level *models.Difficulty) error
	Update(ctx context.Context, level *models.Difficulty) error
	SoftDelete(ctx context.Context, id string) error
}

// CreateDifficultyRequest represents payload for creating difficulty levels.
type CreateDifficultyRequest struct {
	Level       models.DifficultyLevel `json:"level" validate:"required,oneof=Facil Medio Dificil"`
	Description string                 `json:"description" validate:"max=255"`
	Weight      int                    `json:"weight" validate:"min=1,max=10"`
}

// UpdateDifficultyRequest payload for updating difficulty levels.
type UpdateDifficultyRequest struct {
	Description string `json:"description" validate:"max=255"`
	Weight      int    `json:"weight" validate:"min=1,max=10"`
	Active      *bool  `json:"active"`
}

// DifficultyService handles difficulty level workflows.
type DifficultyService struct {
	repo      difficultyRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewDifficultyService creates an instance of DifficultyService.
func NewDifficultyService(repo difficultyRepository, validate *validator.Validate, logger *zap.Logger) *DifficultyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &DifficultyService{repo: repo, validator: validate, logger: logger}
}

// List returns active difficulty levels.
func (s *DifficultyService) List(ctx context.Context) ([]models.Difficulty, error) {
	levels, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list difficulty levels")
	}
	return levels, nil
}

// Get returns a difficulty level by ID.
func (s *DifficultyService) Get(ctx context.Context, id string) (*models.Difficulty, error) {
	level, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "difficulty level not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load difficulty level")
	}
	return level, nil
}

// Create adds a difficulty level. Each recognized tier may appear only once
// among active rows.
func (s *DifficultyService) Create(ctx context.Context, req CreateDifficultyRequest) (*models.Difficulty, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid create difficulty payload")
	}

	exists, err := s.repo.ExistsByLevel(ctx, req.Level, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check difficulty level")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "difficulty level already exists")
	}

	level := &models.Difficulty{
		ID:          uuid.NewString(),
		Level:       req.Level,
		Description: req.Description,
		Weight:      req.Weight,
		Active:      true,
	}

	if err := s.repo.Create(ctx, level); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create difficulty level")
	}
	return level, nil
}

// Update modifies a difficulty level. The tier name itself is immutable.
func (s *DifficultyService) Update(ctx context.Context, id string, req UpdateDifficultyRequest) (*models.Difficulty, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid update difficulty payload")
	}

	level, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	level.Description = req.Description
	level.Weight = req.Weight
	if req.Active != nil {
		level.Active = *req.Active
	}

	if err := s.repo.Update(ctx, level); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update difficulty level")
	}
	return level, nil
}

// Delete deactivates a difficulty level.
func (s *DifficultyService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete difficulty level")
	}
	return nil
}
