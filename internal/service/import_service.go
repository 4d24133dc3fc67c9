package service

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/rollbook/rollbook-api/internal/models"
	"github.com/rollbook/rollbook-api/internal/roster"
	apperrors "github.com/rollbook/rollbook-api/pkg/errors"
	"github.com/rollbook/rollbook-api/pkg/storage"
)

type rosterImporter interface {
	ImportBatch(ctx context.Context, candidates []models.RosterCandidate) (int, error)
}

// ImportService handles spreadsheet roster uploads.
type ImportService struct {
	uploads  *storage.UploadStore
	students rosterImporter
	cache    reportCache
	logger   *zap.Logger
}

// NewImportService wires an ImportService.
func NewImportService(uploads *storage.UploadStore, students rosterImporter, cache reportCache, logger *zap.Logger) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{uploads: uploads, students: students, cache: cache, logger: logger}
}

// ImportResult summarises one roster import.
type ImportResult struct {
	Message  string                   `json:"message"`
	Imported int                      `json:"imported"`
	Skipped  int                      `json:"skipped"`
	Students []models.RosterCandidate `json:"students"`
}

// ImportFile stages the upload on disk, parses it and inserts the roster.
// The staged file is removed on every exit path, success or failure.
func (s *ImportService) ImportFile(ctx context.Context, originalName string, r io.Reader) (*ImportResult, error) {
	path, err := s.uploads.SaveStream(originalName, r)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := s.uploads.Remove(path); err != nil {
			s.logger.Warn("staged upload not removed", zap.String("path", path), zap.Error(err))
		}
	}()

	rows, err := s.readFirstSheet(path)
	if err != nil {
		return nil, err
	}

	candidates, _, err := roster.BuildCandidates(rows, roster.DefaultRules)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrValidation.Code, apperrors.ErrValidation.Status, err.Error())
	}

	imported, err := s.students.ImportBatch(ctx, candidates)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.DeleteByPattern(ctx, reportCachePattern); err != nil {
			s.logger.Warn("report cache invalidation failed", zap.Error(err))
		}
	}

	s.logger.Info("roster imported",
		zap.String("file", originalName),
		zap.Int("parsed", len(candidates)),
		zap.Int("imported", imported))

	return &ImportResult{
		Message:  fmt.Sprintf("%d students imported", imported),
		Imported: imported,
		Skipped:  len(candidates) - imported,
		Students: candidates,
	}, nil
}

func (s *ImportService) readFirstSheet(path string) ([][]string, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrValidation.Code, apperrors.ErrValidation.Status, "could not parse spreadsheet")
	}
	defer file.Close() //nolint:errcheck

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.Clone(apperrors.ErrValidation, "spreadsheet has no sheets")
	}
	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrValidation.Code, apperrors.ErrValidation.Status, "could not read sheet rows")
	}
	return rows, nil
}
