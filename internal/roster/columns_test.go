package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindColumn(t *testing.T) {
	headers := []string{"Sr", "Roll Number", "Student Name", "Email Address"}

	assert.Equal(t, 1, FindColumn(headers, []string{"roll"}))
	assert.Equal(t, 2, FindColumn(headers, []string{"name"}))
	assert.Equal(t, 3, FindColumn(headers, []string{"email", "mail"}))
	assert.Equal(t, -1, FindColumn(headers, []string{"phone"}))
}

func TestFindColumnCaseInsensitive(t *testing.T) {
	headers := []string{"ROLL NO", "NAME"}

	assert.Equal(t, 0, FindColumn(headers, []string{"roll"}))
	assert.Equal(t, 1, FindColumn(headers, []string{"name"}))
}

func TestFindColumnLeftmostWins(t *testing.T) {
	headers := []string{"Name", "Nickname"}

	assert.Equal(t, 0, FindColumn(headers, []string{"name"}))
}

func TestInferDefaults(t *testing.T) {
	cols := Infer([]string{"Roll No", "Full Name", "Mail"}, nil)

	assert.Equal(t, 0, cols.RollNo)
	assert.Equal(t, 1, cols.Name)
	assert.Equal(t, 2, cols.Email)
}

func TestInferMissingEmail(t *testing.T) {
	cols := Infer([]string{"Roll", "Name"}, DefaultRules)

	assert.Equal(t, 0, cols.RollNo)
	assert.Equal(t, 1, cols.Name)
	assert.Equal(t, -1, cols.Email)
}

func TestInferLeftmostHeaderWins(t *testing.T) {
	// "ID" matches the roll rule via "id" before "Roll" is reached.
	cols := Infer([]string{"ID", "Roll", "Full Name"}, nil)

	assert.Equal(t, 0, cols.RollNo)
	assert.Equal(t, 2, cols.Name)
}
