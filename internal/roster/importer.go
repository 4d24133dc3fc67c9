package roster

import (
	"errors"

	"github.com/rollbook/rollbook-api/internal/models"
)

// ErrMissingColumns is returned when the header row lacks a roll number or
// name column. The email column is optional.
var ErrMissingColumns = errors.New("required columns (roll no, name) not found")

// BuildCandidates turns raw sheet rows (first row = headers) into candidate
// student records. Rows without a roll number or name are skipped silently;
// within-sheet duplicate roll numbers keep the first occurrence.
func BuildCandidates(rows [][]string, rules []ColumnRule) ([]models.RosterCandidate, Columns, error) {
	if len(rows) == 0 {
		return nil, Columns{RollNo: -1, Name: -1, Email: -1}, ErrMissingColumns
	}

	cols := Infer(rows[0], rules)
	if cols.RollNo < 0 || cols.Name < 0 {
		return nil, cols, ErrMissingColumns
	}

	candidates := make([]models.RosterCandidate, 0, len(rows)-1)
	seen := make(map[string]struct{})
	for _, row := range rows[1:] {
		rollNo := cellAt(row, cols.RollNo)
		name := cellAt(row, cols.Name)
		if rollNo == "" || name == "" {
			continue
		}
		if _, dup := seen[rollNo]; dup {
			continue
		}
		seen[rollNo] = struct{}{}
		candidates = append(candidates, models.RosterCandidate{
			RollNo: rollNo,
			Name:   name,
			Email:  cellAt(row, cols.Email),
		})
	}
	return candidates, cols, nil
}

// cellAt tolerates short rows: spreadsheet parsers drop trailing empty cells.
func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
