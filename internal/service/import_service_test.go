package service

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/rollbook/rollbook-api/internal/models"
	apperrors "github.com/rollbook/rollbook-api/pkg/errors"
	"github.com/rollbook/rollbook-api/pkg/storage"
)

type fakeImporter struct {
	batches [][]models.RosterCandidate
	result  int
	err     error
}

func (f *fakeImporter) ImportBatch(ctx context.Context, candidates []models.RosterCandidate) (int, error) {
	f.batches = append(f.batches, candidates)
	if f.err != nil {
		return 0, f.err
	}
	return f.result, nil
}

func buildSheet(t *testing.T, rows [][]interface{}) *bytes.Reader {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return bytes.NewReader(buf.Bytes())
}

func requireEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "staged uploads should be removed")
}

func newImportService(t *testing.T, importer *fakeImporter) (*ImportService, string) {
	t.Helper()
	dir := t.TempDir()
	uploads, err := storage.NewUploadStore(dir)
	require.NoError(t, err)
	return NewImportService(uploads, importer, nil, nil), dir
}

func TestImportServiceImportFile(t *testing.T) {
	importer := &fakeImporter{result: 2}
	svc, dir := newImportService(t, importer)

	sheet := buildSheet(t, [][]interface{}{
		{"Roll No", "Name", "Email"},
		{"1", "Asha Rao", "asha@example.com"},
		{"2", "Ben Kim", "ben@example.com"},
	})

	result, err := svc.ImportFile(context.Background(), "roster.xlsx", sheet)

	require.NoError(t, err)
	assert.Equal(t, "2 students imported", result.Message)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 0, result.Skipped)
	assert.Len(t, result.Students, 2)
	require.Len(t, importer.batches, 1)
	assert.Equal(t, "Asha Rao", importer.batches[0][0].Name)
	requireEmptyDir(t, dir)
}

func TestImportServiceReportsSkippedDuplicates(t *testing.T) {
	importer := &fakeImporter{result: 1}
	svc, dir := newImportService(t, importer)

	sheet := buildSheet(t, [][]interface{}{
		{"Roll", "Name"},
		{"1", "Asha Rao"},
		{"2", "Ben Kim"},
	})

	result, err := svc.ImportFile(context.Background(), "roster.xlsx", sheet)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 1, result.Skipped)
	requireEmptyDir(t, dir)
}

func TestImportServiceMissingColumns(t *testing.T) {
	importer := &fakeImporter{}
	svc, dir := newImportService(t, importer)

	sheet := buildSheet(t, [][]interface{}{
		{"Serial", "Phone"},
		{"1", "555-0100"},
	})

	_, err := svc.ImportFile(context.Background(), "roster.xlsx", sheet)

	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrValidation.Code, appErr.Code)
	assert.Empty(t, importer.batches)
	requireEmptyDir(t, dir)
}

func TestImportServiceUnreadableFileStillCleansUp(t *testing.T) {
	importer := &fakeImporter{}
	svc, dir := newImportService(t, importer)

	_, err := svc.ImportFile(context.Background(), "roster.xlsx", strings.NewReader("not a spreadsheet"))

	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrValidation.Code, appErr.Code)
	requireEmptyDir(t, dir)
}

func TestImportServiceImporterErrorStillCleansUp(t *testing.T) {
	importer := &fakeImporter{err: assert.AnError}
	svc, dir := newImportService(t, importer)

	sheet := buildSheet(t, [][]interface{}{
		{"Roll", "Name"},
		{"1", "Asha Rao"},
	})

	_, err := svc.ImportFile(context.Background(), "roster.xlsx", sheet)

	require.Error(t, err)
	requireEmptyDir(t, dir)
}
