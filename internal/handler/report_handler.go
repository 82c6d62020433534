package handler

import (
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cuestionario-pro/quiz-api/internal/service"
	appErrors "github.com/cuestionario-pro/quiz-api/pkg/errors"
	"github.com/cuestionario-pro/quiz-api/pkg/response"
)

// ReportHandler handles report export endpoints.
type ReportHandler struct {
	service *service.ReportService
}

// NewReportHandler creates a new report handler.
func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{service: svc}
}

// Download godoc
// @Summary Download report
// @Description Download a report, e.g. catalog.csv, catalog.pdf, users.csv, users.pdf
// @Tags Reports
// @Produce octet-stream
// @Param file path string true "Report file name"
// @Success 200
// @Failure 403 {object} response.Envelope
// @Router /reports/{file} [get]
func (h *ReportHandler) Download(c *gin.Context) {
	file := c.Param("file")
	ext := path.Ext(file)

	format, ok := service.ParseReportFormat(ext)
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unsupported report format"))
		return
	}

	var (
		result *service.ReportResult
		err    error
	)
	switch strings.TrimSuffix(file, ext) {
	case "catalog":
		result, err = h.service.CatalogReport(c.Request.Context(), format)
	case "users":
		result, err = h.service.UsersReport(c.Request.Context(), format)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "unknown report"))
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Payload)
}
