package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cuestionario-pro/quiz-api/internal/models"
	"github.com/cuestionario-pro/quiz-api/internal/service"
)

type stubReportCatalogRepo struct{}

func (stubReportCatalogRepo) ListActive(ctx context.Context) ([]models.Category, error) {
	return []models.Category{{ID: "c1", Name: "Historia", Active: true}}, nil
}

func (stubReportCatalogRepo) CountActiveSubcategories(ctx context.Context, id string) (int, error) {
	return 2, nil
}

type stubReportUserRepo struct{}

func (stubReportUserRepo) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	return nil, 0, nil
}

func (stubReportUserRepo) FindByIDWithRoles(ctx context.Context, id string) (*models.User, error) {
	return nil, nil
}

func newReportHandlerFixture(enabled bool) *ReportHandler {
	svc := service.NewReportService(stubReportCatalogRepo{}, stubReportUserRepo{}, zap.NewNop(), enabled)
	return NewReportHandler(svc)
}

func downloadRequest(handler *ReportHandler, file string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/reports/"+file, nil)
	c.Request = req
	c.Params = gin.Params{{Key: "file", Value: file}}

	handler.Download(c)
	return w
}

func TestReportHandlerDownloadCatalogCSV(t *testing.T) {
	w := downloadRequest(newReportHandlerFixture(true), "catalog.csv")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, w.Body.String(), "Historia")
}

func TestReportHandlerDownloadUnsupportedFormat(t *testing.T) {
	w := downloadRequest(newReportHandlerFixture(true), "catalog.xlsx")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportHandlerDownloadUnknownReport(t *testing.T) {
	w := downloadRequest(newReportHandlerFixture(true), "grades.csv")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReportHandlerDownloadDisabled(t *testing.T) {
	w := downloadRequest(newReportHandlerFixture(false), "catalog.csv")
	assert.Equal(t, http.StatusForbidden, w.Code)
}
