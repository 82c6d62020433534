package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/cuestionario-pro/quiz-api/internal/models"
	appErrors "github.com/cuestionario-pro/quiz-api/pkg/errors"
)

type mockAuthRepo struct {
	userByEmail       *models.User
	userByID          *models.User
	findByEmailErr    error
	findByIDErr       error
	failedAttempts    int
	lockUntil         *time.Time
	resetCalled       bool
	updatePasswordErr error
	newPasswordHash   string
}

func (m *mockAuthRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.findByEmailErr != nil {
		return nil, m.findByEmailErr
	}
	if m.userByEmail == nil {
		return nil, sql.ErrNoRows
	}
	return m.userByEmail, nil
}

func (m *mockAuthRepo) FindByIDWithRoles(ctx context.Context, id string) (*models.User, error) {
	if m.findByIDErr != nil {
		return nil, m.findByIDErr
	}
	if m.userByID != nil {
		return m.userByID, nil
	}
	if m.userByEmail == nil {
		return nil, sql.ErrNoRows
	}
	return m.userByEmail, nil
}

func (m *mockAuthRepo) RegisterFailedAttempt(ctx context.Context, id string, lockUntil time.Time) (int, error) {
	m.failedAttempts++
	if m.failedAttempts >= models.MaxFailedAttempts {
		m.lockUntil = &lockUntil
		if m.userByEmail != nil {
			m.userByEmail.LockedUntil = &lockUntil
		}
	}
	return m.failedAttempts, nil
}

func (m *mockAuthRepo) ResetFailedAttempts(ctx context.Context, id string, ts time.Time) error {
	m.resetCalled = true
	m.failedAttempts = 0
	m.lockUntil = nil
	return nil
}

func (m *mockAuthRepo) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	if m.updatePasswordErr != nil {
		return m.updatePasswordErr
	}
	m.newPasswordHash = passwordHash
	return nil
}

func newTestAuthService(repo *mockAuthRepo) *AuthService {
	return NewAuthService(repo, validator.New(), zap.NewNop(), nil, AuthConfig{
		TokenSecret: "secret",
		TokenExpiry: time.Hour,
		Issuer:      "quiz-api",
	})
}

func activeUser(password string) *models.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return &models.User{
		ID:           "u1",
		Name:         "Ana",
		Surname:      "Lopez",
		Email:        "ana@example.com",
		PasswordHash: string(hash),
		Status:       models.StatusActive,
	}
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	repo := &mockAuthRepo{userByEmail: activeUser("password")}
	svc := newTestAuthService(repo)

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "ana@example.com", Password: "password"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, "Ana Lopez", res.User.FullName)
	assert.True(t, repo.resetCalled)
}

func TestAuthServiceLoginNormalizesEmail(t *testing.T) {
	repo := &mockAuthRepo{userByEmail: activeUser("password")}
	svc := newTestAuthService(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "  ANA@Example.com ", Password: "password"})
	require.NoError(t, err)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	repo := &mockAuthRepo{userByEmail: activeUser("password")}
	svc := newTestAuthService(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "ana@example.com", Password: "nope"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
	assert.Equal(t, 1, repo.failedAttempts)
}

func TestAuthServiceLoginUnknownEmail(t *testing.T) {
	repo := &mockAuthRepo{}
	svc := newTestAuthService(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "ghost@example.com", Password: "password"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestAuthServiceLoginLocksAfterRepeatedFailures(t *testing.T) {
	repo := &mockAuthRepo{userByEmail: activeUser("password")}
	svc := newTestAuthService(repo)

	for i := 0; i < models.MaxFailedAttempts; i++ {
		_, err := svc.Login(context.Background(), models.LoginRequest{Email: "ana@example.com", Password: "nope"})
		require.Error(t, err)
	}
	require.NotNil(t, repo.lockUntil)

	// Correct password is now refused with the same error as a bad one.
	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "ana@example.com", Password: "password"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
	assert.False(t, repo.resetCalled)
}

func TestAuthServiceLoginLockExpires(t *testing.T) {
	user := activeUser("password")
	past := time.Now().UTC().Add(-time.Minute)
	user.LockedUntil = &past
	repo := &mockAuthRepo{userByEmail: user}
	svc := newTestAuthService(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "ana@example.com", Password: "password"})
	require.NoError(t, err)
	assert.True(t, repo.resetCalled)
}

func TestAuthServiceLoginInactiveAccount(t *testing.T) {
	user := activeUser("password")
	user.Status = models.StatusInactive
	repo := &mockAuthRepo{userByEmail: user}
	svc := newTestAuthService(repo)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "ana@example.com", Password: "password"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErr.Code)
}

func TestAuthServiceValidateToken(t *testing.T) {
	user := activeUser("password")
	user.Roles = []models.Role{{ID: "r1", Name: "Administrador", Active: true}}
	repo := &mockAuthRepo{userByEmail: user}
	svc := newTestAuthService(repo)

	token, err := svc.IssueToken(user)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, []string{"r1"}, claims.RoleIDs)
}

func TestAuthServiceValidateTokenRejectsTampered(t *testing.T) {
	repo := &mockAuthRepo{userByEmail: activeUser("password")}
	svc := newTestAuthService(repo)

	token, err := svc.IssueToken(repo.userByEmail)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token + "x")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
}

func TestAuthServiceValidateTokenRejectsExpired(t *testing.T) {
	repo := &mockAuthRepo{userByEmail: activeUser("password")}
	svc := newTestAuthService(repo)
	svc.now = func() time.Time { return time.Now().UTC().Add(-2 * time.Hour) }

	token, err := svc.IssueToken(repo.userByEmail)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
}

func TestAuthServiceCurrentUserDeletedSubject(t *testing.T) {
	repo := &mockAuthRepo{}
	svc := newTestAuthService(repo)

	_, err := svc.CurrentUser(context.Background(), &models.JWTClaims{UserID: "gone"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
}

func TestAuthServiceCurrentUserSuspended(t *testing.T) {
	user := activeUser("password")
	user.Status = models.StatusSuspended
	repo := &mockAuthRepo{userByEmail: user}
	svc := newTestAuthService(repo)

	_, err := svc.CurrentUser(context.Background(), &models.JWTClaims{UserID: user.ID})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErr.Code)
}

func TestAuthServiceChangePassword(t *testing.T) {
	repo := &mockAuthRepo{userByEmail: activeUser("oldpassword")}
	svc := newTestAuthService(repo)

	err := svc.ChangePassword(context.Background(), "u1", models.ChangePasswordRequest{CurrentPassword: "oldpassword", NewPassword: "newpassword"})
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.newPasswordHash), []byte("newpassword")))
}

func TestAuthServiceChangePasswordWrongCurrent(t *testing.T) {
	repo := &mockAuthRepo{userByEmail: activeUser("oldpassword")}
	svc := newTestAuthService(repo)

	err := svc.ChangePassword(context.Background(), "u1", models.ChangePasswordRequest{CurrentPassword: "wrong", NewPassword: "newpassword"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
	assert.Empty(t, repo.newPasswordHash)
}

func TestEffectivePrivilegesUnion(t *testing.T) {
	svc := newTestAuthService(&mockAuthRepo{})
	user := &models.User{
		Roles: []models.Role{
			{ID: "r1", Active: true, Privileges: models.RolePrivilegeList{
				{PrivilegeName: models.PrivCrearPreguntas},
				{PrivilegeName: models.PrivEditarPreguntas},
			}},
			{ID: "r2", Active: true, Privileges: models.RolePrivilegeList{
				{PrivilegeName: models.PrivEditarPreguntas},
				{PrivilegeName: models.PrivVerExamenes},
			}},
		},
		DirectPrivileges: models.DirectPrivilegeList{
			{PrivilegeName: models.PrivExportarDatos},
		},
	}

	got := svc.EffectivePrivileges(user)
	assert.Equal(t, []models.PrivilegeName{
		models.PrivCrearPreguntas,
		models.PrivEditarPreguntas,
		models.PrivExportarDatos,
		models.PrivVerExamenes,
	}, got)
}

func TestEffectivePrivilegesSkipsInactiveRoles(t *testing.T) {
	svc := newTestAuthService(&mockAuthRepo{})
	user := &models.User{
		Roles: []models.Role{
			{ID: "r1", Active: false, Privileges: models.RolePrivilegeList{
				{PrivilegeName: models.PrivGestionarRoles},
			}},
		},
	}

	assert.Empty(t, svc.EffectivePrivileges(user))
	assert.False(t, svc.HasPrivilege(user, models.PrivGestionarRoles))

	svc.config.IncludeInactiveRoles = true
	assert.True(t, svc.HasPrivilege(user, models.PrivGestionarRoles))
}
