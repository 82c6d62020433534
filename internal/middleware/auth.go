package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/cuestionario-pro/quiz-api/internal/models"
	"github.com/cuestionario-pro/quiz-api/internal/service"
	appErrors "github.com/cuestionario-pro/quiz-api/pkg/errors"
	"github.com/cuestionario-pro/quiz-api/pkg/response"
)

// ContextUserKey is the gin context key storing the authenticated user.
const ContextUserKey = "currentUser"

// ContextClaimsKey is the gin context key storing the token claims.
const ContextClaimsKey = "currentClaims"

// Authenticator resolves a bearer token into an authenticated user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, *models.JWTClaims, error)
}

// RealAuthenticator validates signed tokens and loads the subject from the
// database on every request, so role and privilege changes apply without
// waiting for token expiry.
type RealAuthenticator struct {
	auth *service.AuthService
}

// NewRealAuthenticator constructs a token-validating authenticator.
func NewRealAuthenticator(auth *service.AuthService) *RealAuthenticator {
	return &RealAuthenticator{auth: auth}
}

// Authenticate implements Authenticator.
func (a *RealAuthenticator) Authenticate(ctx context.Context, token string) (*models.User, *models.JWTClaims, error) {
	claims, err := a.auth.ValidateToken(token)
	if err != nil {
		return nil, nil, err
	}

	user, err := a.auth.CurrentUser(ctx, claims)
	if err != nil {
		return nil, nil, err
	}
	return user, claims, nil
}

// FakeAuthenticator ignores the token and always resolves the configured
// identity. Only for local development; bootstrap refuses it in production.
type FakeAuthenticator struct {
	user *models.User
}

// NewFakeAuthenticator constructs an authenticator pinned to one identity.
func NewFakeAuthenticator(user *models.User) *FakeAuthenticator {
	return &FakeAuthenticator{user: user}
}

// Authenticate implements Authenticator.
func (a *FakeAuthenticator) Authenticate(_ context.Context, _ string) (*models.User, *models.JWTClaims, error) {
	if a.user == nil {
		return nil, nil, appErrors.Clone(appErrors.ErrUnauthorized, "no development identity configured")
	}
	claims := &models.JWTClaims{
		UserID:  a.user.ID,
		Email:   a.user.Email,
		RoleIDs: a.user.RoleIDs(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   a.user.ID,
			IssuedAt:  jwt.NewNumericDate(time.Now().UTC()),
			ExpiresAt: jwt.NewNumericDate(time.Now().UTC().Add(time.Hour)),
		},
	}
	return a.user, claims, nil
}

// Authenticate protects routes by requiring a valid access token.
func Authenticate(authenticator Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		user, claims, err := authenticator.Authenticate(c.Request.Context(), parts[1])
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUserKey, user)
		c.Set(ContextClaimsKey, claims)
		c.Next()
	}
}

// CurrentUser extracts the authenticated user from the gin context.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}
