package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cuestionario-pro/quiz-api/internal/service"
	appErrors "github.com/cuestionario-pro/quiz-api/pkg/errors"
	"github.com/cuestionario-pro/quiz-api/pkg/response"
)

// SubcategoryHandler handles subcategory endpoints.
type SubcategoryHandler struct {
	service *service.SubcategoryService
}

// NewSubcategoryHandler creates a new subcategory handler.
func NewSubcategoryHandler(svc *service.SubcategoryService) *SubcategoryHandler {
	return &SubcategoryHandler{service: svc}
}

// List godoc
// @Summary List subcategories
// @Description List active subcategories, optionally filtered by category
// @Tags Subcategories
// @Produce json
// @Param category_id query string false "Category filter"
// @Success 200 {object} response.Envelope
// @Router /subcategories [get]
func (h *SubcategoryHandler) List(c *gin.Context) {
	subcategories, err := h.service.List(c.Request.Context(), c.Query("category_id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, subcategories, nil)
}

// ByCategory godoc
// @Summary List subcategories of a category
// @Description List active subcategories under one category
// @Tags Subcategories
// @Produce json
// @Param categoryId path string true "Category ID"
// @Success 200 {object} response.Envelope
// @Router /subcategories/category/{categoryId} [get]
func (h *SubcategoryHandler) ByCategory(c *gin.Context) {
	subcategories, err := h.service.List(c.Request.Context(), c.Param("categoryId"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, subcategories, nil)
}

// CountByCategory godoc
// @Summary Count subcategories of a category
// @Description Count of active subcategories under one category
// @Tags Subcategories
// @Produce json
// @Param categoryId path string true "Category ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /subcategories/category/{categoryId}/count [get]
func (h *SubcategoryHandler) CountByCategory(c *gin.Context) {
	count, err := h.service.CountByCategory(c.Request.Context(), c.Param("categoryId"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"count": count}, nil)
}

// Get godoc
// @Summary Get subcategory
// @Description Get subcategory detail
// @Tags Subcategories
// @Produce json
// @Param id path string true "Subcategory ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /subcategories/{id} [get]
func (h *SubcategoryHandler) Get(c *gin.Context) {
	subcategory, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, subcategory, nil)
}

// Create godoc
// @Summary Create subcategory
// @Description Create a subcategory under an active category
// @Tags Subcategories
// @Accept json
// @Produce json
// @Param payload body service.CreateSubcategoryRequest true "Create subcategory payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /subcategories [post]
func (h *SubcategoryHandler) Create(c *gin.Context) {
	var req service.CreateSubcategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	subcategory, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, subcategory)
}

// Update godoc
// @Summary Update subcategory
// @Description Update subcategory details
// @Tags Subcategories
// @Accept json
// @Produce json
// @Param id path string true "Subcategory ID"
// @Param payload body service.UpdateSubcategoryRequest true "Update payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /subcategories/{id} [put]
func (h *SubcategoryHandler) Update(c *gin.Context) {
	var req service.UpdateSubcategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	subcategory, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, subcategory, nil)
}

// Delete godoc
// @Summary Delete subcategory
// @Description Deactivate a subcategory
// @Tags Subcategories
// @Param id path string true "Subcategory ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /subcategories/{id} [delete]
func (h *SubcategoryHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
