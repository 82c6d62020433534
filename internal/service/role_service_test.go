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

type mockRoleRepo struct {
	roles      map[string]*models.Role
	nameExists bool
	userCount  int
	users      []models.User
	updated    *models.Role
	created    *models.Role
	deletedID  string
}

func newMockRoleRepo(roles ...*models.Role) *mockRoleRepo {
	repo := &mockRoleRepo{roles: make(map[string]*models.Role)}
	for _, r := range roles {
		repo.roles[r.ID] = r
	}
	return repo
}

func (m *mockRoleRepo) List(ctx context.Context, filter models.RoleFilter) ([]models.Role, int, error) {
	out := make([]models.Role, 0, len(m.roles))
	for _, r := range m.roles {
		out = append(out, *r)
	}
	return out, len(out), nil
}

func (m *mockRoleRepo) FindByID(ctx context.Context, id string) (*models.Role, error) {
	role, ok := m.roles[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return role, nil
}

func (m *mockRoleRepo) ExistsByName(ctx context.Context, name string, excludeID string) (bool, error) {
	return m.nameExists, nil
}

func (m *mockRoleRepo) Create(ctx context.Context, role *models.Role) error {
	m.created = role
	m.roles[role.ID] = role
	return nil
}

func (m *mockRoleRepo) Update(ctx context.Context, role *models.Role) error {
	m.updated = role
	m.roles[role.ID] = role
	return nil
}

func (m *mockRoleRepo) SoftDelete(ctx context.Context, id string) error {
	m.deletedID = id
	return nil
}

func (m *mockRoleRepo) CountUsers(ctx context.Context, roleID string) (int, error) {
	return m.userCount, nil
}

func (m *mockRoleRepo) ListUsers(ctx context.Context, roleID string) ([]models.User, error) {
	return m.users, nil
}

type staticCatalog struct{}

func (staticCatalog) Describe(name models.PrivilegeName) (string, bool) {
	return models.DescribePrivilege(name)
}

func newTestRoleService(repo *mockRoleRepo) *RoleService {
	return NewRoleService(repo, staticCatalog{}, validator.New(), zap.NewNop())
}

func TestRoleServiceCreate(t *testing.T) {
	repo := newMockRoleRepo()
	svc := newTestRoleService(repo)

	role, err := svc.Create(context.Background(), CreateRoleRequest{
		Name:        "Revisor",
		Description: "Revisa preguntas",
		Privileges: []models.PrivilegeName{
			models.PrivRevisarPreguntas,
			models.PrivRevisarPreguntas,
			models.PrivVerExamenes,
		},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, role.ID)
	assert.True(t, role.Active)
	assert.False(t, role.IsSystem)
	// Duplicates in the request collapse to one entry.
	require.Len(t, role.Privileges, 2)
	assert.Equal(t, models.PrivRevisarPreguntas, role.Privileges[0].PrivilegeName)
	assert.NotEmpty(t, role.Privileges[0].Description)
}

func TestRoleServiceCreateUnknownPrivilege(t *testing.T) {
	svc := newTestRoleService(newMockRoleRepo())

	_, err := svc.Create(context.Background(), CreateRoleRequest{
		Name:       "Revisor",
		Privileges: []models.PrivilegeName{"volar"},
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestRoleServiceCreateDuplicateName(t *testing.T) {
	repo := newMockRoleRepo()
	repo.nameExists = true
	svc := newTestRoleService(repo)

	_, err := svc.Create(context.Background(), CreateRoleRequest{Name: "Revisor"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestRoleServiceUpdateSystemRole(t *testing.T) {
	repo := newMockRoleRepo(&models.Role{ID: "r1", Name: "Administrador", IsSystem: true, Active: true})
	svc := newTestRoleService(repo)

	_, err := svc.Update(context.Background(), "r1", UpdateRoleRequest{Name: "Otro"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
	assert.Nil(t, repo.updated)
}

func TestRoleServiceDeleteWithUsers(t *testing.T) {
	repo := newMockRoleRepo(&models.Role{ID: "r1", Name: "Revisor", Active: true})
	repo.userCount = 3
	svc := newTestRoleService(repo)

	err := svc.Delete(context.Background(), "r1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "3 user(s)")
	assert.Empty(t, repo.deletedID)
}

func TestRoleServiceDelete(t *testing.T) {
	repo := newMockRoleRepo(&models.Role{ID: "r1", Name: "Revisor", Active: true})
	svc := newTestRoleService(repo)

	require.NoError(t, svc.Delete(context.Background(), "r1"))
	assert.Equal(t, "r1", repo.deletedID)
}

func TestRoleServiceDeleteSystemRole(t *testing.T) {
	repo := newMockRoleRepo(&models.Role{ID: "r1", Name: "Administrador", IsSystem: true, Active: true})
	svc := newTestRoleService(repo)

	err := svc.Delete(context.Background(), "r1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
}

func TestRoleServiceAddPrivilege(t *testing.T) {
	repo := newMockRoleRepo(&models.Role{ID: "r1", Name: "Revisor", Active: true})
	svc := newTestRoleService(repo)

	role, err := svc.AddPrivilege(context.Background(), "r1", RolePrivilegeRequest{Privilege: models.PrivCalificarExamenes})
	require.NoError(t, err)
	assert.True(t, role.HasPrivilege(models.PrivCalificarExamenes))
	require.NotNil(t, repo.updated)

	// Adding the same privilege again is a no-op.
	repo.updated = nil
	role, err = svc.AddPrivilege(context.Background(), "r1", RolePrivilegeRequest{Privilege: models.PrivCalificarExamenes})
	require.NoError(t, err)
	assert.Len(t, role.Privileges, 1)
	assert.Nil(t, repo.updated)
}

func TestRoleServiceRemovePrivilege(t *testing.T) {
	repo := newMockRoleRepo(&models.Role{ID: "r1", Name: "Revisor", Active: true, Privileges: models.RolePrivilegeList{
		{PrivilegeName: models.PrivRevisarPreguntas},
		{PrivilegeName: models.PrivVerExamenes},
	}})
	svc := newTestRoleService(repo)

	role, err := svc.RemovePrivilege(context.Background(), "r1", models.PrivRevisarPreguntas)
	require.NoError(t, err)
	assert.False(t, role.HasPrivilege(models.PrivRevisarPreguntas))
	assert.True(t, role.HasPrivilege(models.PrivVerExamenes))
}

func TestRoleServiceGetNotFound(t *testing.T) {
	svc := newTestRoleService(newMockRoleRepo())

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
