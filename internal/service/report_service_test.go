package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cuestionario-pro/quiz-api/internal/models"
	appErrors "github.com/cuestionario-pro/quiz-api/pkg/errors"
)

type mockReportCatalogRepo struct {
	categories []models.Category
	counts     map[string]int
}

func (m *mockReportCatalogRepo) ListActive(ctx context.Context) ([]models.Category, error) {
	return m.categories, nil
}

func (m *mockReportCatalogRepo) CountActiveSubcategories(ctx context.Context, id string) (int, error) {
	return m.counts[id], nil
}

type mockReportUserRepo struct {
	users []models.User
}

func (m *mockReportUserRepo) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	return m.users, len(m.users), nil
}

func (m *mockReportUserRepo) FindByIDWithRoles(ctx context.Context, id string) (*models.User, error) {
	for i := range m.users {
		if m.users[i].ID == id {
			return &m.users[i], nil
		}
	}
	return nil, nil
}

func TestReportServiceCatalogCSV(t *testing.T) {
	categories := &mockReportCatalogRepo{
		categories: []models.Category{
			{ID: "c1", Name: "Historia", Description: "Preguntas de historia", Active: true},
			{ID: "c2", Name: "Ciencias", Description: "Preguntas de ciencias", Active: true},
		},
		counts: map[string]int{"c1": 3, "c2": 1},
	}
	svc := NewReportService(categories, &mockReportUserRepo{}, zap.NewNop(), true)

	result, err := svc.CatalogReport(context.Background(), ReportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.True(t, strings.HasPrefix(result.Filename, "catalog-"))
	assert.True(t, strings.HasSuffix(result.Filename, ".csv"))

	body := string(result.Payload)
	assert.Contains(t, body, "Category")
	assert.Contains(t, body, "Historia")
	assert.Contains(t, body, "3")
}

func TestReportServiceCatalogPDF(t *testing.T) {
	categories := &mockReportCatalogRepo{
		categories: []models.Category{{ID: "c1", Name: "Historia", Active: true}},
		counts:     map[string]int{"c1": 2},
	}
	svc := NewReportService(categories, &mockReportUserRepo{}, zap.NewNop(), true)

	result, err := svc.CatalogReport(context.Background(), ReportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, strings.HasPrefix(string(result.Payload), "%PDF"))
}

func TestReportServiceUsersCSV(t *testing.T) {
	users := &mockReportUserRepo{users: []models.User{
		{
			ID:           "u1",
			Name:         "Ana",
			Surname:      "Lopez",
			Email:        "ana@example.com",
			Status:       models.StatusActive,
			RegisteredAt: time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
			Roles:        []models.Role{{ID: "r1", Name: "Revisor", Active: true}},
		},
	}}
	svc := NewReportService(&mockReportCatalogRepo{}, users, zap.NewNop(), true)

	result, err := svc.UsersReport(context.Background(), ReportFormatCSV)
	require.NoError(t, err)

	body := string(result.Payload)
	assert.Contains(t, body, "Ana Lopez")
	assert.Contains(t, body, "Revisor")
	assert.Contains(t, body, "2025-03-14")
}

func TestReportServiceDisabled(t *testing.T) {
	svc := NewReportService(&mockReportCatalogRepo{}, &mockReportUserRepo{}, zap.NewNop(), false)

	_, err := svc.CatalogReport(context.Background(), ReportFormatCSV)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)

	_, err = svc.UsersReport(context.Background(), ReportFormatPDF)
	require.Error(t, err)
}

func TestParseReportFormat(t *testing.T) {
	format, ok := ParseReportFormat(".csv")
	require.True(t, ok)
	assert.Equal(t, ReportFormatCSV, format)

	format, ok = ParseReportFormat("PDF")
	require.True(t, ok)
	assert.Equal(t, ReportFormatPDF, format)

	_, ok = ParseReportFormat(".xlsx")
	assert.False(t, ok)
}
