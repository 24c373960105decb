package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vova4o/goschool-api/internal/models"
	appErrors "github.com/vova4o/goschool-api/pkg/errors"
	"github.com/vova4o/goschool-api/pkg/export"
)

// ExportFormat names a supported export encoding.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

type exportUserSource interface {
	ListAll(ctx context.Context) ([]models.User, error)
}

type exportTutorialSource interface {
	ListFull(ctx context.Context) ([]models.Tutorial, error)
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders admin tables as CSV or PDF downloads.
type ExportService struct {
	users     exportUserSource
	tutorials exportTutorialSource
	renderers map[ExportFormat]export.Renderer
	logger    *zap.Logger
	now       func() time.Time
}

// NewExportService constructs an ExportService. pdfFont may be empty.
func NewExportService(users exportUserSource, tutorials exportTutorialSource, pdfFont string, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		users:     users,
		tutorials: tutorials,
		renderers: map[ExportFormat]export.Renderer{
			ExportFormatCSV: export.NewCSVExporter(),
			ExportFormatPDF: export.NewPDFExporter(pdfFont),
		},
		logger: logger,
		now:    time.Now,
	}
}

// Users exports every account. Password hashes are never included.
func (s *ExportService) Users(ctx context.Context, format ExportFormat) (*ExportFile, error) {
	renderer, err := s.renderer(format)
	if err != nil {
		return nil, err
	}
	users, err := s.users.ListAll(ctx)
	if err != nil {
		return nil, storeError(err, "failed to load users")
	}

	data := export.Dataset{
		Title:   "Users",
		Headers: []string{"id", "email", "name", "role", "is_premium", "premium_until", "created_at"},
		Rows:    make([][]string, 0, len(users)),
	}
	for _, u := range users {
		until := "lifetime"
		if !u.IsPremium {
			until = ""
		} else if u.PremiumUntil != nil {
			until = u.PremiumUntil.UTC().Format(time.RFC3339)
		}
		data.Rows = append(data.Rows, []string{
			u.ID, u.Email, u.Name, string(u.Role), strconv.FormatBool(u.IsPremium), until, u.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return s.render(renderer, "users", data)
}

// Tutorials exports the catalog without bodies.
func (s *ExportService) Tutorials(ctx context.Context, format ExportFormat) (*ExportFile, error) {
	renderer, err := s.renderer(format)
	if err != nil {
		return nil, err
	}
	items, err := s.tutorials.ListFull(ctx)
	if err != nil {
		return nil, storeError(err, "failed to load tutorials")
	}

	data := export.Dataset{
		Title:   "Tutorials",
		Headers: []string{"slug", "title", "category", "level", "order", "is_free", "updated_at"},
		Rows:    make([][]string, 0, len(items)),
	}
	for _, t := range items {
		data.Rows = append(data.Rows, []string{
			t.Slug, t.Title, t.Category, t.Level, strconv.Itoa(t.Order), strconv.FormatBool(t.IsFree), t.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}
	return s.render(renderer, "tutorials", data)
}

func (s *ExportService) renderer(format ExportFormat) (export.Renderer, error) {
	r, ok := s.renderers[ExportFormat(strings.ToLower(string(format)))]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	return r, nil
}

func (s *ExportService) render(r export.Renderer, name string, data export.Dataset) (*ExportFile, error) {
	body, err := r.Render(data)
	if err != nil {
		return nil, appErrors.WrapAs(appErrors.ErrInternal, err, "failed to render export")
	}
	filename := fmt.Sprintf("%s-%s.%s", name, s.now().UTC().Format("20060102-150405"), r.Extension())
	s.logger.Info("export rendered", zap.String("file", filename), zap.Int("rows", len(data.Rows)))
	return &ExportFile{Filename: filename, ContentType: r.ContentType(), Body: body}, nil
}
