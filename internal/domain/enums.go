package domain

import "strings"

// Field names one extracted column.
type Field string

const (
	FieldCompany     Field = "company"
	FieldEmail       Field = "email"
	FieldPhone       Field = "phone"
	FieldName        Field = "name"
	FieldDesignation Field = "designation"
)

// FieldSet selects which extracted fields a run requests from the model and writes to the output.
type FieldSet string

const (
	// FieldSetContact extracts company and email only.
	FieldSetContact FieldSet = "contact"
	// FieldSetFull extracts company, email, phone, name and designation.
	FieldSetFull FieldSet = "full"
)

var (
	contactFields = []Field{FieldCompany, FieldEmail}
	fullFields    = []Field{FieldCompany, FieldEmail, FieldPhone, FieldName, FieldDesignation}
)

// ParseFieldSet parses a field set name. The empty string selects FieldSetFull.
func ParseFieldSet(s string) (FieldSet, error) {
	switch FieldSet(strings.ToLower(strings.TrimSpace(s))) {
	case "", FieldSetFull:
		return FieldSetFull, nil
	case FieldSetContact:
		return FieldSetContact, nil
	default:
		return "", ErrUnknownFieldSet
	}
}

// Fields returns the extracted fields of the set in output order.
// Unknown sets fall back to the full list.
func (s FieldSet) Fields() []Field {
	if s == FieldSetContact {
		return append([]Field(nil), contactFields...)
	}
	return append([]Field(nil), fullFields...)
}

// Columns returns the complete output header for the set.
func (s FieldSet) Columns() []string {
	cols := make([]string, 0, len(InputColumns)+len(fullFields))
	cols = append(cols, InputColumns...)
	for _, f := range s.Fields() {
		cols = append(cols, string(f))
	}
	return cols
}

// OutputFormat is the rendering of an enriched batch.
type OutputFormat string

const (
	OutputFormatCSV  OutputFormat = "csv"
	OutputFormatXLSX OutputFormat = "xlsx"
)

// ParseOutputFormat parses a format name. The empty string selects CSV.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(strings.TrimSpace(s))) {
	case "", OutputFormatCSV:
		return OutputFormatCSV, nil
	case OutputFormatXLSX:
		return OutputFormatXLSX, nil
	default:
		return "", ErrUnsupportedFormat
	}
}
