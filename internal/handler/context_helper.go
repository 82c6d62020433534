package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/cuestionario-pro/quiz-api/internal/middleware"
	"github.com/cuestionario-pro/quiz-api/internal/models"
)

func userFromContext(c *gin.Context) *models.User {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return nil
	}
	return user
}

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextClaimsKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}
