package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cuestionario-pro/quiz-api/internal/service"
	appErrors "github.com/cuestionario-pro/quiz-api/pkg/errors"
	"github.com/cuestionario-pro/quiz-api/pkg/response"
)

// AgeRangeHandler handles audience age range endpoints.
type AgeRangeHandler struct {
	service *service.AgeRangeService
}

// NewAgeRangeHandler creates a new age range handler.
func NewAgeRangeHandler(svc *service.AgeRangeService) *AgeRangeHandler {
	return &AgeRangeHandler{service: svc}
}

// List godoc
// @Summary List age ranges
// @Description List active age ranges ordered by lower bound
// @Tags AgeRanges
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /age-ranges [get]
func (h *AgeRangeHandler) List(c *gin.Context) {
	ranges, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, ranges, nil)
}

// Get godoc
// @Summary Get age range
// @Description Get age range detail
// @Tags AgeRanges
// @Produce json
// @Param id path string true "Age range ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /age-ranges/{id} [get]
func (h *AgeRangeHandler) Get(c *gin.Context) {
	ageRange, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, ageRange, nil)
}

// ForAge godoc
// @Summary Age ranges for an age
// @Description Returns the active ranges that include the given age
// @Tags AgeRanges
// @Produce json
// @Param age path int true "Age"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /age-ranges/age/{age} [get]
func (h *AgeRangeHandler) ForAge(c *gin.Context) {
	age, err := strconv.Atoi(c.Param("age"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "age must be an integer"))
		return
	}

	ranges, err := h.service.ForAge(c.Request.Context(), age)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, ranges, nil)
}

// Create godoc
// @Summary Create age range
// @Description Create a non-overlapping age range
// @Tags AgeRanges
// @Accept json
// @Produce json
// @Param payload body service.CreateAgeRangeRequest true "Create age range payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /age-ranges [post]
func (h *AgeRangeHandler) Create(c *gin.Context) {
	var req service.CreateAgeRangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	ageRange, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, ageRange)
}

// Update godoc
// @Summary Update age range
// @Description Update age range bounds or name
// @Tags AgeRanges
// @Accept json
// @Produce json
// @Param id path string true "Age range ID"
// @Param payload body service.UpdateAgeRangeRequest true "Update payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /age-ranges/{id} [put]
func (h *AgeRangeHandler) Update(c *gin.Context) {
	var req service.UpdateAgeRangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	ageRange, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, ageRange, nil)
}

// Delete godoc
// @Summary Delete age range
// @Description Deactivate an age range
// @Tags AgeRanges
// @Param id path string true "Age range ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /age-ranges/{id} [delete]
func (h *AgeRangeHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
