// Package csvexport renders enriched records as delimited text.
//
// Data cells are always wrapped in double quotes and embedded quotes are not
// doubled, so a value containing `"` produces a line RFC 4180 readers will
// misparse. Consumers of the output rely on that exact byte layout.
package csvexport

import (
	"bufio"
	"bytes"
	"io"
	"strings"

	"cardenrich/internal/domain"
)

// Writer writes enriched records. Lines are separated by "\n" with no
// trailing newline after the last one.
type Writer struct {
	buf    *bufio.Writer
	fields []domain.Field
	cols   []string
	lines  int
	err    error
}

// NewWriter creates a Writer that emits the columns of fields to w.
func NewWriter(w io.Writer, fields domain.FieldSet) *Writer {
	return &Writer{
		buf:    bufio.NewWriter(w),
		fields: fields.Fields(),
		cols:   fields.Columns(),
	}
}

// WriteHeader writes the unquoted header row.
func (w *Writer) WriteHeader() error {
	return w.writeLine(strings.Join(w.cols, ","))
}

// WriteRecords writes one quoted row per record.
func (w *Writer) WriteRecords(recs []domain.EnrichedRecord) error {
	for i := range recs {
		if err := w.writeLine(w.row(&recs[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes buffered output to the underlying writer.
func (w *Writer) Flush() {
	if w.err != nil {
		return
	}
	w.err = w.buf.Flush()
}

// Error returns the first write or flush error.
func (w *Writer) Error() error {
	return w.err
}

func (w *Writer) writeLine(line string) error {
	if w.err != nil {
		return w.err
	}
	if w.lines > 0 {
		if w.err = w.buf.WriteByte('\n'); w.err != nil {
			return w.err
		}
	}
	if _, w.err = w.buf.WriteString(line); w.err != nil {
		return w.err
	}
	w.lines++
	return nil
}

func (w *Writer) row(rec *domain.EnrichedRecord) string {
	values := rec.InputRecord.Values()
	for _, f := range w.fields {
		values = append(values, rec.ExtractedFields.Get(f))
	}
	var sb strings.Builder
	for i, v := range values {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteByte('"')
		sb.WriteString(v)
		sb.WriteByte('"')
	}
	return sb.String()
}

// Render returns the header and every record as one byte slice.
func Render(recs []domain.EnrichedRecord, fields domain.FieldSet) []byte {
	var out bytes.Buffer
	w := NewWriter(&out, fields)
	_ = w.WriteHeader()
	_ = w.WriteRecords(recs)
	w.Flush()
	return out.Bytes()
}
