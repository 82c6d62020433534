package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cuestionario-pro/quiz-api/internal/models"
	"github.com/cuestionario-pro/quiz-api/internal/service"
	appErrors "github.com/cuestionario-pro/quiz-api/pkg/errors"
	"github.com/cuestionario-pro/quiz-api/pkg/response"
)

// RequireAnyPrivilege allows the request when the user's effective privilege
// set contains at least one of the listed privileges. The refusal names what
// was required and what the user holds.
func RequireAnyPrivilege(auth *service.AuthService, privileges ...models.PrivilegeName) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		held := auth.EffectivePrivileges(user)
		heldSet := make(map[models.PrivilegeName]struct{}, len(held))
		for _, name := range held {
			heldSet[name] = struct{}{}
		}

		for _, required := range privileges {
			if _, ok := heldSet[required]; ok {
				c.Next()
				return
			}
		}

		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, forbiddenMessage(privileges, held)))
		c.Abort()
	}
}

// RequireAnyRole allows the request when the user holds at least one of the
// named roles.
func RequireAnyRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		for _, name := range roles {
			if user.HasRole(name) {
				c.Next()
				return
			}
		}

		response.Error(c, appErrors.Clone(appErrors.ErrForbidden,
			fmt.Sprintf("requires one of roles [%s], user has [%s]",
				strings.Join(roles, ", "), strings.Join(user.RoleNames(), ", "))))
		c.Abort()
	}
}

// RequireOwnerOrRole allows the request when the path id matches the
// authenticated user, or when the user holds the named role.
func RequireOwnerOrRole(param, role string) gin.HandlerFunc {
	privileged := RequireAnyRole(role)
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		if targetID := c.Param(param); targetID != "" && targetID == user.ID {
			c.Next()
			return
		}

		privileged(c)
	}
}

// RequireOwnerOrPrivilege allows the request when the path id matches the
// authenticated user, or when the user holds one of the privileges.
func RequireOwnerOrPrivilege(auth *service.AuthService, param string, privileges ...models.PrivilegeName) gin.HandlerFunc {
	privileged := RequireAnyPrivilege(auth, privileges...)
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		if targetID := c.Param(param); targetID != "" && targetID == user.ID {
			c.Next()
			return
		}

		privileged(c)
	}
}

func forbiddenMessage(required []models.PrivilegeName, held []models.PrivilegeName) string {
	requiredNames := make([]string, len(required))
	for i, name := range required {
		requiredNames[i] = string(name)
	}
	heldNames := make([]string, len(held))
	for i, name := range held {
		heldNames[i] = string(name)
	}
	return fmt.Sprintf("requires one of [%s], user has [%s]",
		strings.Join(requiredNames, ", "), strings.Join(heldNames, ", "))
}
