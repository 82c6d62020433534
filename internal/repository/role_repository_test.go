package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuestionario-pro/quiz-api/internal/models"
)

func roleRows(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "description", "privileges", "is_system", "active", "created_at", "updated_at"}).
		AddRow("r1", "Administrador", "Acceso completo al sistema", []byte(`[{"privilege_name":"gestionar_usuarios"}]`), true, true, now, now)
}

func TestRoleFindByID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRoleRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, description, privileges, is_system, active, created_at, updated_at FROM roles WHERE id = $1 LIMIT 1")).
		WithArgs("r1").
		WillReturnRows(roleRows(time.Now()))

	role, err := repo.FindByID(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, "Administrador", role.Name)
	assert.True(t, role.IsSystem)
	assert.True(t, role.HasPrivilege(models.PrivGestionarUsuarios))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleListFiltersActive(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRoleRepository(db)

	active := true
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, description, privileges, is_system, active, created_at, updated_at FROM roles WHERE 1=1 AND active = $1 ORDER BY name ASC LIMIT 20 OFFSET 0")).
		WithArgs(true).
		WillReturnRows(roleRows(time.Now()))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM roles WHERE 1=1 AND active = $1")).
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	roles, total, err := repo.List(context.Background(), models.RoleFilter{Active: &active})
	require.NoError(t, err)
	assert.Len(t, roles, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleCreateDefaultsPrivileges(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRoleRepository(db)

	mock.ExpectExec("INSERT INTO roles").WillReturnResult(sqlmock.NewResult(1, 1))

	role := &models.Role{Name: "Revisor", Active: true}
	require.NoError(t, repo.Create(context.Background(), role))
	assert.NotEmpty(t, role.ID)
	assert.NotNil(t, role.Privileges)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleSoftDelete(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRoleRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE roles SET active = FALSE, updated_at = $2 WHERE id = $1")).
		WithArgs("r1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SoftDelete(context.Background(), "r1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleCountUsers(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRoleRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM user_roles WHERE role_id = $1")).
		WithArgs("r1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := repo.CountUsers(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleListUsers(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRoleRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "name", "surname", "email", "password_hash", "direct_privileges", "status", "registered_at", "last_access", "failed_attempts", "locked_until", "created_at", "updated_at"}).
		AddRow("u1", "Ana", "Lopez", "ana@example.com", "hash", []byte("[]"), string(models.StatusActive), now, nil, 0, nil, now, now)
	mock.ExpectQuery("SELECT u.id, u.name, .* FROM users u JOIN user_roles ur").
		WithArgs("r1").
		WillReturnRows(rows)

	users, err := repo.ListUsers(context.Background(), "r1")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "ana@example.com", users[0].Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}
