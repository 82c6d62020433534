package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cuestionario-pro/quiz-api/internal/models"
	"github.com/cuestionario-pro/quiz-api/internal/service"
	"github.com/cuestionario-pro/quiz-api/pkg/response"
)

// PrivilegeHandler handles privilege catalog endpoints.
type PrivilegeHandler struct {
	service *service.PrivilegeService
}

// NewPrivilegeHandler creates a new privilege handler.
func NewPrivilegeHandler(svc *service.PrivilegeService) *PrivilegeHandler {
	return &PrivilegeHandler{service: svc}
}

// List godoc
// @Summary List privileges
// @Description List the active privilege catalog
// @Tags Privileges
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /privileges [get]
func (h *PrivilegeHandler) List(c *gin.Context) {
	privileges, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, privileges, nil)
}

// Grouped godoc
// @Summary Privileges by category
// @Description Returns the catalog grouped into its categories
// @Tags Privileges
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /privileges/grouped [get]
func (h *PrivilegeHandler) Grouped(c *gin.Context) {
	grouped, err := h.service.Grouped(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, grouped, nil)
}

// ByCategory godoc
// @Summary Privileges in one category
// @Description Lists the active privileges in a category
// @Tags Privileges
// @Produce json
// @Param category path string true "Category name"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /privileges/category/{category} [get]
func (h *PrivilegeHandler) ByCategory(c *gin.Context) {
	privileges, err := h.service.ByCategory(c.Request.Context(), models.PrivilegeCategory(c.Param("category")))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, privileges, nil)
}

// Get godoc
// @Summary Get privilege
// @Description Get privilege detail
// @Tags Privileges
// @Produce json
// @Param id path string true "Privilege ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /privileges/{id} [get]
func (h *PrivilegeHandler) Get(c *gin.Context) {
	privilege, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, privilege, nil)
}
