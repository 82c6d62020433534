package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/cuestionario-pro/quiz-api/internal/models"
	appErrors "github.com/cuestionario-pro/quiz-api/pkg/errors"
)

type authUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByIDWithRoles(ctx context.Context, id string) (*models.User, error)
	RegisterFailedAttempt(ctx context.Context, id string, lockUntil time.Time) (int, error)
	ResetFailedAttempts(ctx context.Context, id string, ts time.Time) error
	UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	TokenSecret          string
	TokenExpiry          time.Duration
	Issuer               string
	IncludeInactiveRoles bool
}

// AuthService provides authentication and privilege resolution use cases.
type AuthService struct {
	repo      authUserRepository
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
	config    AuthConfig
	now       func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(repo authUserRepository, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AuthService{repo: repo, validator: validate, logger: logger, metrics: metrics, config: config, now: func() time.Time { return time.Now().UTC() }}
}

// Login authenticates a user and returns an issued token. Locked accounts
// and wrong passwords produce the same error so callers cannot probe
// lockout state.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	user, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}

	now := s.now()
	if user.Locked(now) {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.metrics.RecordLoginFailure()
		attempts, regErr := s.repo.RegisterFailedAttempt(ctx, user.ID, now.Add(models.LockoutDuration))
		if regErr != nil {
			s.logger.Warn("failed to register login attempt", zap.Error(regErr))
		} else if attempts >= models.MaxFailedAttempts {
			s.metrics.RecordAccountLockout()
			s.logger.Info("account locked after repeated failures", zap.String("user_id", user.ID))
		}
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
	}

	if user.Status != models.StatusActive {
		return nil, appErrors.Clone(appErrors.ErrInactiveAccount, "account is inactive or suspended")
	}

	if err := s.repo.ResetFailedAttempts(ctx, user.ID, now); err != nil {
		s.logger.Warn("failed to reset login counters", zap.Error(err))
	}

	hydrated, err := s.repo.FindByIDWithRoles(ctx, user.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user roles")
	}

	token, err := s.IssueToken(hydrated)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}

	return &models.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.config.TokenExpiry.Seconds()),
		IssuedAt:    now,
		User: models.UserInfo{
			ID:       hydrated.ID,
			Email:    hydrated.Email,
			FullName: hydrated.FullName(),
			Roles:    hydrated.RoleNames(),
		},
	}, nil
}

// IssueToken signs an access token carrying the user's identity and role ids.
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	issuedAt := s.now()
	claims := &models.JWTClaims{
		UserID:  user.ID,
		Email:   user.Email,
		RoleIDs: user.RoleIDs(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.config.TokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.TokenSecret))
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.TokenSecret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	return claims, nil
}

// CurrentUser loads the token subject with roles hydrated. Deleted or
// deactivated subjects are rejected even when the token is still valid.
func (s *AuthService) CurrentUser(ctx context.Context, claims *models.JWTClaims) (*models.User, error) {
	user, err := s.repo.FindByIDWithRoles(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "token subject no longer exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	if user.Status != models.StatusActive {
		return nil, appErrors.Clone(appErrors.ErrInactiveAccount, "account is inactive or suspended")
	}

	return user, nil
}

// ChangePassword changes the password for the given user ID.
func (s *AuthService) ChangePassword(ctx context.Context, userID string, req models.ChangePasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid change password payload")
	}

	user, err := s.repo.FindByIDWithRoles(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return appErrors.Clone(appErrors.ErrForbidden, "current password does not match")
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	if err := s.repo.UpdatePassword(ctx, userID, string(newHash), s.now()); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update password")
	}

	return nil
}

// EffectivePrivileges computes the union of the user's role privileges and
// direct grants. Privileges from deactivated roles are excluded unless the
// service is configured to include them.
func (s *AuthService) EffectivePrivileges(user *models.User) []models.PrivilegeName {
	seen := make(map[models.PrivilegeName]struct{})
	for _, role := range user.Roles {
		if !role.Active && !s.config.IncludeInactiveRoles {
			continue
		}
		for _, priv := range role.Privileges {
			seen[priv.PrivilegeName] = struct{}{}
		}
	}
	for _, grant := range user.DirectPrivileges {
		seen[grant.PrivilegeName] = struct{}{}
	}

	names := make([]models.PrivilegeName, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// HasPrivilege reports whether the user's effective privilege set contains
// the given privilege.
func (s *AuthService) HasPrivilege(user *models.User, privilege models.PrivilegeName) bool {
	for _, name := range s.EffectivePrivileges(user) {
		if name == privilege {
			return true
		}
	}
	return false
}
