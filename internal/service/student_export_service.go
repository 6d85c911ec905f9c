package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/student-records-api/internal/models"
	appErrors "github.com/noah-isme/student-records-api/pkg/errors"
	"github.com/noah-isme/student-records-api/pkg/export"
)

// Export formats.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

// maxExportRows bounds a single export.
const maxExportRows = 10000

var exportHeaders = []string{"id", "first_name", "last_name", "email", "phone", "date_of_birth", "gender", "address", "enrollment_date", "created_at"}

// ExportFile is a rendered export ready to be streamed to a client.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

// StudentExportService renders student listings as downloadable files.
type StudentExportService struct {
	repo      studentRepository
	exporters map[string]export.Exporter
	logger    *zap.Logger
	now       func() time.Time
}

// NewStudentExportService constructs the export service. With no exporters
// given, CSV and PDF are registered.
func NewStudentExportService(repo studentRepository, logger *zap.Logger, exporters ...export.Exporter) *StudentExportService {
	if len(exporters) == 0 {
		exporters = []export.Exporter{export.NewCSVExporter(), export.NewPDFExporter()}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	byFormat := make(map[string]export.Exporter, len(exporters))
	for _, e := range exporters {
		byFormat[e.Extension()] = e
	}
	return &StudentExportService{repo: repo, exporters: byFormat, logger: logger, now: time.Now}
}

// Export renders every student matching search in the requested format.
func (s *StudentExportService) Export(ctx context.Context, search, format string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatCSV
	}
	exporter, ok := s.exporters[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrBadRequest, "Format must be one of: csv, pdf.")
	}

	students, err := s.collect(ctx, search)
	if err != nil {
		s.logger.Error("student export failed", zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Unable to export students.")
	}
	if len(students) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "No students found.")
	}

	content, err := exporter.Render(toDataset(students), "Students")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "Unable to export students.")
	}
	stamp := s.now().UTC().Format("20060102-150405")
	return &ExportFile{
		Filename:    fmt.Sprintf("students-%s.%s", stamp, exporter.Extension()),
		ContentType: exporter.ContentType(),
		Content:     content,
	}, nil
}

func (s *StudentExportService) collect(ctx context.Context, search string) ([]models.Student, error) {
	var all []models.Student
	for page := 1; len(all) < maxExportRows; page++ {
		filter := models.StudentFilter{Search: search, Page: page, PerPage: models.MaxPerPage}
		var (
			batch []models.Student
			err   error
		)
		if search != "" {
			batch, err = s.repo.Search(ctx, search, filter)
		} else {
			batch, err = s.repo.List(ctx, filter)
		}
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < models.MaxPerPage {
			break
		}
	}
	if len(all) > maxExportRows {
		all = all[:maxExportRows]
	}
	return all, nil
}

func toDataset(students []models.Student) export.Dataset {
	rows := make([]map[string]string, 0, len(students))
	for _, st := range students {
		rows = append(rows, map[string]string{
			"id":              strconv.FormatInt(st.ID, 10),
			"first_name":      st.FirstName,
			"last_name":       st.LastName,
			"email":           st.Email,
			"phone":           deref(st.Phone),
			"date_of_birth":   dateString(st.DateOfBirth),
			"gender":          deref(st.Gender),
			"address":         deref(st.Address),
			"enrollment_date": dateString(st.EnrollmentDate),
			"created_at":      st.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return export.Dataset{Headers: exportHeaders, Rows: rows}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func dateString(d *models.Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}
