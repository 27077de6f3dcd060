// Package records reads uploaded sheets into InputRecords.
package records

import (
	"encoding/csv"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/cockroachdb/errors"

	"cardenrich/internal/domain"
)

const utf8BOM = "\ufeff"

// MalformedInputError reports a header row that is absent or lacks required columns.
type MalformedInputError struct {
	Reason  string
	Missing []string
}

func (e *MalformedInputError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("malformed input: missing required column(s) %s", strings.Join(e.Missing, ", "))
	}
	return "malformed input: " + e.Reason
}

func (e *MalformedInputError) Unwrap() error {
	return domain.ErrMalformedInput
}

// Reader yields InputRecords from delimited text with a header row.
// It reads lazily and can be consumed once.
type Reader struct {
	csv   *csv.Reader
	index map[string]int
	line  int
}

// NewReader consumes the header row of r and validates it. Header names are matched
// exactly and case-sensitively; extra columns are ignored.
func NewReader(r io.Reader) (*Reader, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &MalformedInputError{Reason: "header row is missing"}
	}
	if err != nil {
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			return nil, &MalformedInputError{Reason: parseErr.Error()}
		}
		return nil, errors.Wrap(err, "reading header")
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		if _, seen := index[name]; !seen {
			index[name] = i
		}
	}
	var missing []string
	for _, name := range domain.InputColumns {
		if _, ok := index[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &MalformedInputError{Missing: missing}
	}

	return &Reader{csv: cr, index: index}, nil
}

// Read returns the next record, or io.EOF when the input is exhausted.
// Blank lines are skipped. Cells missing from a short row read as "".
func (r *Reader) Read() (domain.InputRecord, error) {
	for {
		rec, err := r.csv.Read()
		if errors.Is(err, io.EOF) {
			return domain.InputRecord{}, io.EOF
		}
		if err != nil {
			return domain.InputRecord{}, errors.Wrapf(err, "reading row %d", r.line+1)
		}
		r.line++
		if isBlank(rec) {
			continue
		}

		get := func(col string) string {
			i := r.index[col]
			if i >= len(rec) {
				return ""
			}
			return rec[i]
		}
		return domain.InputRecord{
			ID:        get("id"),
			CreatedAt: get("created_at"),
			ImageURL:  get("image_url"),
			Comment:   get("comment"),
		}, nil
	}
}

// All returns an iterator over the remaining records. Iteration stops after the
// first error, which is yielded with a zero record.
func (r *Reader) All() iter.Seq2[domain.InputRecord, error] {
	return func(yield func(domain.InputRecord, error) bool) {
		for {
			rec, err := r.Read()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(domain.InputRecord{}, err)
				return
			}
			if !yield(rec, nil) {
				return
			}
		}
	}
}

// ReadAll parses every record in src.
func ReadAll(src io.Reader) ([]domain.InputRecord, error) {
	r, err := NewReader(src)
	if err != nil {
		return nil, err
	}
	var out []domain.InputRecord
	for rec, err := range r.All() {
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// isBlank reports whether a row holds a single empty cell. encoding/csv already
// drops zero-length lines; this also catches a line holding only "".
func isBlank(rec []string) bool {
	return len(rec) == 1 && rec[0] == ""
}
