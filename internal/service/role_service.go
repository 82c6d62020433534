package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cuestionario-pro/quiz-api/internal/models"
	appErrors "github.com/cuestionario-pro/quiz-api/pkg/errors"
)

type roleRepository interface {
	List(ctx context.Context, filter models.RoleFilter) ([]models.Role, int, error)
	FindByID(ctx context.Context, id string) (*models.Role, error)
	ExistsByName(ctx context.Context, name string, excludeID string) (bool, error)
	Create(ctx context.Context, role *models.Role) error
	Update(ctx context.Context, role *models.Role) error
	SoftDelete(ctx context.Context, id string) error
	CountUsers(ctx context.Context, roleID string) (int, error)
	ListUsers(ctx context.Context, roleID string) ([]models.User, error)
}

// CreateRoleRequest represents payload for creating roles.
type CreateRoleRequest struct {
	Name        string                 `json:"name" validate:"required,max=50"`
	Description string                 `json:"description" validate:"max=255"`
	Privileges  []models.PrivilegeName `json:"privileges" validate:"omitempty"`
}

// UpdateRoleRequest payload for updating roles.
type UpdateRoleRequest struct {
	Name        string `json:"name" validate:"required,max=50"`
	Description string `json:"description" validate:"max=255"`
	Active      *bool  `json:"active"`
}

// RolePrivilegeRequest payload for adding a privilege to a role.
type RolePrivilegeRequest struct {
	Privilege models.PrivilegeName `json:"privilege" validate:"required"`
}

// RoleService handles role management workflows.
type RoleService struct {
	repo      roleRepository
	catalog   privilegeCatalog
	validator *validator.Validate
	logger    *zap.Logger
}

type privilegeCatalog interface {
	Describe(name models.PrivilegeName) (string, bool)
}

// NewRoleService creates an instance of RoleService.
func NewRoleService(repo roleRepository, catalog privilegeCatalog, validate *validator.Validate, logger *zap.Logger) *RoleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &RoleService{repo: repo, catalog: catalog, validator: validate, logger: logger}
}

// List returns paginated roles and pagination metadata.
func (s *RoleService) List(ctx context.Context, filter models.RoleFilter) ([]models.Role, *models.Pagination, error) {
	roles, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list roles")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	return roles, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// Get returns a role by ID.
func (s *RoleService) Get(ctx context.Context, id string) (*models.Role, error) {
	role, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "role not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load role")
	}
	return role, nil
}

// Create adds a new role with an optional initial privilege set.
func (s *RoleService) Create(ctx context.Context, req CreateRoleRequest) (*models.Role, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid create role payload")
	}

	privileges, err := s.buildPrivilegeList(req.Privileges)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByName(ctx, req.Name, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check role name")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "role name already exists")
	}

	role := &models.Role{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Privileges:  privileges,
		IsSystem:    false,
		Active:      true,
	}

	if err := s.repo.Create(ctx, role); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create role")
	}
	return role, nil
}

// Update modifies a role. System roles cannot be renamed or deactivated.
func (s *RoleService) Update(ctx context.Context, id string, req UpdateRoleRequest) (*models.Role, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid update role payload")
	}

	role, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if role.IsSystem {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "system roles cannot be modified")
	}

	name := strings.TrimSpace(req.Name)
	if !strings.EqualFold(name, role.Name) {
		exists, err := s.repo.ExistsByName(ctx, name, id)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check role name")
		}
		if exists {
			return nil, appErrors.Clone(appErrors.ErrConflict, "role name already exists")
		}
	}

	role.Name = name
	role.Description = strings.TrimSpace(req.Description)
	if req.Active != nil {
		role.Active = *req.Active
	}

	if err := s.repo.Update(ctx, role); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update role")
	}
	return role, nil
}

// Delete deactivates a role. System roles and roles with assigned users are
// refused.
func (s *RoleService) Delete(ctx context.Context, id string) error {
	role, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if role.IsSystem {
		return appErrors.Clone(appErrors.ErrForbidden, "system roles cannot be deleted")
	}

	count, err := s.repo.CountUsers(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count role users")
	}
	if count > 0 {
		return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("role is assigned to %d user(s)", count))
	}

	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete role")
	}
	return nil
}

// AddPrivilege appends a privilege to the role. Adding a privilege the role
// already has is a no-op.
func (s *RoleService) AddPrivilege(ctx context.Context, id string, req RolePrivilegeRequest) (*models.Role, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid privilege payload")
	}

	description, ok := s.catalog.Describe(req.Privilege)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown privilege name")
	}

	role, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if role.IsSystem {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "system roles cannot be modified")
	}

	if role.HasPrivilege(req.Privilege) {
		return role, nil
	}

	role.Privileges = append(role.Privileges, models.RolePrivilege{
		PrivilegeName: req.Privilege,
		Description:   description,
	})

	if err := s.repo.Update(ctx, role); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to add privilege")
	}
	return role, nil
}

// RemovePrivilege strips a privilege from the role.
func (s *RoleService) RemovePrivilege(ctx context.Context, id string, privilege models.PrivilegeName) (*models.Role, error) {
	role, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if role.IsSystem {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "system roles cannot be modified")
	}

	kept := role.Privileges[:0]
	for _, priv := range role.Privileges {
		if priv.PrivilegeName != privilege {
			kept = append(kept, priv)
		}
	}
	role.Privileges = kept

	if err := s.repo.Update(ctx, role); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove privilege")
	}
	return role, nil
}

// Users returns the users currently holding the role.
func (s *RoleService) Users(ctx context.Context, id string) ([]models.User, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	users, err := s.repo.ListUsers(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list role users")
	}
	return users, nil
}

func (s *RoleService) buildPrivilegeList(names []models.PrivilegeName) (models.RolePrivilegeList, error) {
	privileges := make(models.RolePrivilegeList, 0, len(names))
	seen := make(map[models.PrivilegeName]struct{}, len(names))
	for _, name := range names {
		description, ok := s.catalog.Describe(name)
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown privilege name: %s", name))
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		privileges = append(privileges, models.RolePrivilege{PrivilegeName: name, Description: description})
	}
	return privileges, nil
}
