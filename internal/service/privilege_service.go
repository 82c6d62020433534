package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cuestionario-pro/quiz-api/internal/models"
	appErrors "github.com/cuestionario-pro/quiz-api/pkg/errors"
)

const (
	cacheKeyPrivilegeList    = "privileges:list"
	cacheKeyPrivilegeGrouped = "privileges:grouped"
)

type privilegeRepository interface {
	ListActive(ctx context.Context) ([]models.Privilege, error)
	ListByCategory(ctx context.Context, category models.PrivilegeCategory) ([]models.Privilege, error)
	FindByID(ctx context.Context, id string) (*models.Privilege, error)
}

// PrivilegeService exposes the read-only privilege catalog.
type PrivilegeService struct {
	repo   privilegeRepository
	cache  *CacheService
	logger *zap.Logger
}

// NewPrivilegeService creates an instance of PrivilegeService.
func NewPrivilegeService(repo privilegeRepository, cache *CacheService, logger *zap.Logger) *PrivilegeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PrivilegeService{repo: repo, cache: cache, logger: logger}
}

// Describe resolves a catalog description by privilege name.
func (s *PrivilegeService) Describe(name models.PrivilegeName) (string, bool) {
	return models.DescribePrivilege(name)
}

// List returns the active privilege catalog.
func (s *PrivilegeService) List(ctx context.Context) ([]models.Privilege, error) {
	var cached []models.Privilege
	if hit, _ := s.cache.Get(ctx, cacheKeyPrivilegeList, &cached); hit {
		return cached, nil
	}

	privileges, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list privileges")
	}

	if err := s.cache.Set(ctx, cacheKeyPrivilegeList, privileges, 0); err != nil {
		s.logger.Warn("failed to cache privilege list", zap.Error(err))
	}
	return privileges, nil
}

// Grouped returns the catalog keyed by category, preserving the canonical
// category order.
func (s *PrivilegeService) Grouped(ctx context.Context) (map[models.PrivilegeCategory][]models.Privilege, error) {
	var cached map[models.PrivilegeCategory][]models.Privilege
	if hit, _ := s.cache.Get(ctx, cacheKeyPrivilegeGrouped, &cached); hit {
		return cached, nil
	}

	privileges, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	grouped := make(map[models.PrivilegeCategory][]models.Privilege, len(models.PrivilegeCategories))
	for _, privilege := range privileges {
		grouped[privilege.Category] = append(grouped[privilege.Category], privilege)
	}

	if err := s.cache.Set(ctx, cacheKeyPrivilegeGrouped, grouped, 0); err != nil {
		s.logger.Warn("failed to cache grouped privileges", zap.Error(err))
	}
	return grouped, nil
}

// ByCategory returns the active privileges in one category.
func (s *PrivilegeService) ByCategory(ctx context.Context, category models.PrivilegeCategory) ([]models.Privilege, error) {
	if !models.ValidPrivilegeCategory(category) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown privilege category")
	}

	key := fmt.Sprintf("privileges:category:%s", category)
	var cached []models.Privilege
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached, nil
	}

	privileges, err := s.repo.ListByCategory(ctx, category)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list privileges by category")
	}

	if err := s.cache.Set(ctx, key, privileges, 0); err != nil {
		s.logger.Warn("failed to cache category privileges", zap.Error(err))
	}
	return privileges, nil
}

// Get returns a privilege by ID.
func (s *PrivilegeService) Get(ctx context.Context, id string) (*models.Privilege, error) {
	privilege, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "privilege not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load privilege")
	}
	return privilege, nil
}
