package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cuestionario-pro/quiz-api/internal/service"
	appErrors "github.com/cuestionario-pro/quiz-api/pkg/errors"
	"github.com/cuestionario-pro/quiz-api/pkg/response"
)

// DifficultyHandler handles difficulty level endpoints.
type DifficultyHandler struct {
	service *service.DifficultyService
}

// NewDifficultyHandler creates a new difficulty handler.
func NewDifficultyHandler(svc *service.DifficultyService) *DifficultyHandler {
	return &DifficultyHandler{service: svc}
}

// List godoc
// @Summary List difficulty levels
// @Description List active difficulty levels ordered by weight
// @Tags Difficulty
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /difficulty-levels [get]
func (h *DifficultyHandler) List(c *gin.Context) {
	levels, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, levels, nil)
}

// Get godoc
// @Summary Get difficulty level
// @Description Get difficulty level detail
// @Tags Difficulty
// @Produce json
// @Param id path string true "Difficulty ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /difficulty-levels/{id} [get]
func (h *DifficultyHandler) Get(c *gin.Context) {
	level, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, level, nil)
}

// Create godoc
// @Summary Create difficulty level
// @Description Create one of the recognized difficulty tiers
// @Tags Difficulty
// @Accept json
// @Produce json
// @Param payload body service.CreateDifficultyRequest true "Create difficulty payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /difficulty-levels [post]
func (h *DifficultyHandler) Create(c *gin.Context) {
	var req service.CreateDifficultyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	level, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, level)
}

// Update godoc
// @Summary Update difficulty level
// @Description Update difficulty description, weight or active flag
// @Tags Difficulty
// @Accept json
// @Produce json
// @Param id path string true "Difficulty ID"
// @Param payload body service.UpdateDifficultyRequest true "Update payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /difficulty-levels/{id} [put]
func (h *DifficultyHandler) Update(c *gin.Context) {
	var req service.UpdateDifficultyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	level, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, level, nil)
}

// Delete godoc
// @Summary Delete difficulty level
// @Description Deactivate a difficulty level
// @Tags Difficulty
// @Param id path string true "Difficulty ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /difficulty-levels/{id} [delete]
func (h *DifficultyHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
