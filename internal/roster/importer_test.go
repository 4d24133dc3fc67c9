package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rollbook/rollbook-api/internal/models"
)

func TestBuildCandidates(t *testing.T) {
	rows := [][]string{
		{"Roll No", "Name", "Email"},
		{"1", "Asha Rao", "asha@example.com"},
		{"2", "Ben Kim", "ben@example.com"},
	}

	candidates, cols, err := BuildCandidates(rows, nil)

	require.NoError(t, err)
	assert.Equal(t, Columns{RollNo: 0, Name: 1, Email: 2}, cols)
	require.Len(t, candidates, 2)
	assert.Equal(t, models.RosterCandidate{RollNo: "1", Name: "Asha Rao", Email: "asha@example.com"}, candidates[0])
}

func TestBuildCandidatesMissingRequiredColumns(t *testing.T) {
	rows := [][]string{
		{"Serial", "Phone"},
		{"1", "555-0100"},
	}

	_, _, err := BuildCandidates(rows, nil)

	assert.ErrorIs(t, err, ErrMissingColumns)
}

func TestBuildCandidatesEmptySheet(t *testing.T) {
	_, _, err := BuildCandidates(nil, nil)

	assert.ErrorIs(t, err, ErrMissingColumns)
}

func TestBuildCandidatesSkipsIncompleteRows(t *testing.T) {
	rows := [][]string{
		{"Roll", "Name"},
		{"1", "Asha Rao"},
		{"", "No Roll"},
		{"3", ""},
		{"4"}, // short row, no name cell
		{"5", "Eli Ode"},
	}

	candidates, _, err := BuildCandidates(rows, nil)

	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "1", candidates[0].RollNo)
	assert.Equal(t, "5", candidates[1].RollNo)
}

func TestBuildCandidatesDedupKeepsFirst(t *testing.T) {
	rows := [][]string{
		{"Roll", "Name"},
		{"1", "First Entry"},
		{"1", "Second Entry"},
	}

	candidates, _, err := BuildCandidates(rows, nil)

	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "First Entry", candidates[0].Name)
}

func TestBuildCandidatesEmailOptional(t *testing.T) {
	rows := [][]string{
		{"Roll", "Name"},
		{"1", "Asha Rao"},
	}

	candidates, cols, err := BuildCandidates(rows, nil)

	require.NoError(t, err)
	assert.Equal(t, -1, cols.Email)
	require.Len(t, candidates, 1)
	assert.Empty(t, candidates[0].Email)
}
