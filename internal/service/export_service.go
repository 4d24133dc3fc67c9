package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/rollbook/rollbook-api/internal/models"
	apperrors "github.com/rollbook/rollbook-api/pkg/errors"
	"github.com/rollbook/rollbook-api/pkg/export"
)

type rosterReader interface {
	RosterForDate(ctx context.Context, date string) ([]models.RosterRow, error)
}

// ExportService renders a day's roster as a downloadable file.
type ExportService struct {
	marks  rosterReader
	csv    *export.CSVExporter
	pdf    *export.PDFExporter
	logger *zap.Logger
}

// NewExportService wires an ExportService.
func NewExportService(marks rosterReader, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		marks:  marks,
		csv:    export.NewCSVExporter(),
		pdf:    export.NewPDFExporter(),
		logger: logger,
	}
}

// ExportFile is a rendered download.
type ExportFile struct {
	Content     []byte
	ContentType string
	Filename    string
}

// DayRoster renders the roster for one date in the requested format
// ("csv" or "pdf"). Students without a mark appear as "pending".
func (s *ExportService) DayRoster(ctx context.Context, date, format string) (*ExportFile, error) {
	if !ValidDate(date) {
		return nil, apperrors.Clone(apperrors.ErrValidation, "date must be YYYY-MM-DD")
	}

	rows, err := s.marks.RosterForDate(ctx, date)
	if err != nil {
		return nil, err
	}

	table := export.Table{
		Headers: []string{"Roll No", "Name", "Email", "Status"},
		Rows:    make([]map[string]string, 0, len(rows)),
	}
	present, marked := 0, 0
	for _, row := range rows {
		status := "pending"
		if row.Status != nil {
			status = string(*row.Status)
			marked++
			if *row.Status == models.MarkStatusPresent {
				present++
			}
		}
		table.Rows = append(table.Rows, map[string]string{
			"Roll No": row.RollNo,
			"Name":    row.Name,
			"Email":   row.Email,
			"Status":  status,
		})
	}

	switch format {
	case "csv":
		content, err := s.csv.Render(table)
		if err != nil {
			return nil, err
		}
		return &ExportFile{
			Content:     content,
			ContentType: "text/csv",
			Filename:    fmt.Sprintf("attendance-%s.csv", date),
		}, nil
	case "pdf":
		title := fmt.Sprintf("Attendance %s", date)
		footer := fmt.Sprintf("Marked: %d of %d, present: %d", marked, len(rows), present)
		content, err := s.pdf.Render(table, title, footer)
		if err != nil {
			return nil, err
		}
		return &ExportFile{
			Content:     content,
			ContentType: "application/pdf",
			Filename:    fmt.Sprintf("attendance-%s.pdf", date),
		}, nil
	default:
		return nil, apperrors.Clone(apperrors.ErrValidation, "format must be csv or pdf")
	}
}
