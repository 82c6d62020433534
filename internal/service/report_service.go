package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cuestionario-pro/quiz-api/internal/models"
	appErrors "github.com/cuestionario-pro/quiz-api/pkg/errors"
	"github.com/cuestionario-pro/quiz-api/pkg/export"
)

// ReportFormat names a supported export format.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

// ParseReportFormat maps a file extension to a format.
func ParseReportFormat(ext string) (ReportFormat, bool) {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "csv":
		return ReportFormatCSV, true
	case "pdf":
		return ReportFormatPDF, true
	}
	return "", false
}

// ContentType returns the MIME type for the format.
func (f ReportFormat) ContentType() string {
	if f == ReportFormatPDF {
		return "application/pdf"
	}
	return "text/csv"
}

type reportCatalogRepository interface {
	ListActive(ctx context.Context) ([]models.Category, error)
	CountActiveSubcategories(ctx context.Context, id string) (int, error)
}

type reportUserRepository interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	FindByIDWithRoles(ctx context.Context, id string) (*models.User, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ReportResult carries a rendered report payload.
type ReportResult struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ReportService renders catalog and user reports as CSV or PDF.
type ReportService struct {
	categories reportCatalogRepository
	users      reportUserRepository
	csv        csvRenderer
	pdf        pdfRenderer
	logger     *zap.Logger
	enabled    bool
}

// NewReportService constructs a ReportService.
func NewReportService(categories reportCatalogRepository, users reportUserRepository, logger *zap.Logger, enabled bool) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		categories: categories,
		users:      users,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
		logger:     logger,
		enabled:    enabled,
	}
}

// Enabled indicates whether report generation is switched on.
func (s *ReportService) Enabled() bool {
	return s != nil && s.enabled
}

// CatalogReport renders the category catalog with subcategory counts.
func (s *ReportService) CatalogReport(ctx context.Context, format ReportFormat) (*ReportResult, error) {
	if !s.Enabled() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "report generation is disabled")
	}

	categories, err := s.categories.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load categories")
	}

	dataset := export.Dataset{
		Headers: []string{"Category", "Description", "Active Subcategories"},
	}
	for _, category := range categories {
		count, err := s.categories.CountActiveSubcategories(ctx, category.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count subcategories")
		}
		dataset.Rows = append(dataset.Rows, []string{category.Name, category.Description, strconv.Itoa(count)})
	}

	return s.render(dataset, "Catalog Report", "catalog", format)
}

// UsersReport renders the user listing with roles and status.
func (s *ReportService) UsersReport(ctx context.Context, format ReportFormat) (*ReportResult, error) {
	if !s.Enabled() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "report generation is disabled")
	}

	users, _, err := s.users.List(ctx, models.UserFilter{PageSize: 10000})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load users")
	}

	dataset := export.Dataset{
		Headers: []string{"Name", "Email", "Status", "Roles", "Registered"},
	}
	for i := range users {
		hydrated, err := s.users.FindByIDWithRoles(ctx, users[i].ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user roles")
		}
		dataset.Rows = append(dataset.Rows, []string{
			hydrated.FullName(),
			hydrated.Email,
			string(hydrated.Status),
			strings.Join(hydrated.RoleNames(), ", "),
			hydrated.RegisteredAt.Format("2006-01-02"),
		})
	}

	return s.render(dataset, "Users Report", "users", format)
}

func (s *ReportService) render(dataset export.Dataset, title, slug string, format ReportFormat) (*ReportResult, error) {
	var (
		payload []byte
		err     error
	)
	switch format {
	case ReportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case ReportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported report format: %s", format))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
	}

	return &ReportResult{
		Filename:    fmt.Sprintf("%s-%s.%s", slug, time.Now().UTC().Format("20060102"), format),
		ContentType: format.ContentType(),
		Payload:     payload,
	}, nil
}
