package roster

import "strings"

// Field names resolved from a sheet's header row.
const (
	FieldRollNo = "roll_no"
	FieldName   = "name"
	FieldEmail  = "email"
)

// ColumnRule maps a semantic field to a list of synonym substrings. The
// leftmost header matching any synonym wins.
type ColumnRule struct {
	Field    string
	Synonyms []string
}

// DefaultRules is the matching policy for roster sheets.
var DefaultRules = []ColumnRule{
	{Field: FieldRollNo, Synonyms: []string{"roll", "id", "number", "no"}},
	{Field: FieldName, Synonyms: []string{"name", "student", "full"}},
	{Field: FieldEmail, Synonyms: []string{"email", "mail", "contact"}},
}

// Columns holds resolved zero-based header indices; -1 means not found.
type Columns struct {
	RollNo int
	Name   int
	Email  int
}

// FindColumn returns the index of the first header cell whose lowercased text
// contains any of the synonyms, or -1 when none match.
func FindColumn(headers []string, synonyms []string) int {
	for i, header := range headers {
		lowered := strings.ToLower(header)
		for _, synonym := range synonyms {
			if strings.Contains(lowered, synonym) {
				return i
			}
		}
	}
	return -1
}

// Infer resolves all roster fields against the header row using the given
// rules (DefaultRules when nil).
func Infer(headers []string, rules []ColumnRule) Columns {
	if rules == nil {
		rules = DefaultRules
	}
	cols := Columns{RollNo: -1, Name: -1, Email: -1}
	for _, rule := range rules {
		idx := FindColumn(headers, rule.Synonyms)
		switch rule.Field {
		case FieldRollNo:
			cols.RollNo = idx
		case FieldName:
			cols.Name = idx
		case FieldEmail:
			cols.Email = idx
		}
	}
	return cols
}
