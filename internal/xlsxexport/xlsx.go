// Package xlsxexport renders enriched records as a single-sheet workbook.
package xlsxexport

import (
	"github.com/cockroachdb/errors"
	"github.com/xuri/excelize/v2"

	"cardenrich/internal/domain"
)

// SheetName is the only sheet in the rendered workbook.
const SheetName = "enriched"

// ContentType is the MIME type of the rendered workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Render writes the header and one row per record, all cells as text.
func Render(recs []domain.EnrichedRecord, fields domain.FieldSet) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, errors.Wrap(err, "renaming sheet")
	}

	if err := setRow(f, 1, fields.Columns()); err != nil {
		return nil, err
	}
	extracted := fields.Fields()
	for i := range recs {
		values := recs[i].InputRecord.Values()
		for _, fld := range extracted {
			values = append(values, recs[i].ExtractedFields.Get(fld))
		}
		if err := setRow(f, i+2, values); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, errors.Wrap(err, "writing workbook")
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return errors.Wrapf(err, "row %d", row)
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(SheetName, cell, &cells); err != nil {
		return errors.Wrapf(err, "writing row %d", row)
	}
	return nil
}
