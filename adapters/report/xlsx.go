package report

import (
	"io"

	"github.com/xuri/excelize/v2"

	"jprofile/domain/profiling"
	"jprofile/internal/errors"
)

const (
	sheetSummary = "Summary"
	sheetMetrics = "Metrics"
	sheetErrors  = "Errors"
)

// writeXLSX exports a workbook with a summary row per column and a long
// format metrics sheet
func writeXLSX(w io.Writer, set *profiling.ProfileSet) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return errors.Wrap(err, "failed to name summary sheet")
	}
	if _, err := f.NewSheet(sheetMetrics); err != nil {
		return errors.Wrap(err, "failed to create metrics sheet")
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return errors.Wrap(err, "failed to create header style")
	}

	summary := [][]any{{"Column", "Type", "Count", "Null Count", "Null %", "Unique", "Duplicates"}}
	metrics := [][]any{{"Column", "Metric", "Key", "Value"}}

	for _, cp := range set.Ordered() {
		p := cp.Profile
		summary = append(summary, []any{
			cp.Name, cp.Category.String(), p.Count, p.NullCount, p.NullPercentage, p.UniqueCount, p.DuplicateCount,
		})

		for _, m := range p.Metrics() {
			if top, ok := m.Value.([]profiling.ValueCount); ok {
				for _, vc := range top {
					metrics = append(metrics, []any{cp.Name, m.Name, vc.Value, vc.Count})
				}
				continue
			}
			metrics = append(metrics, []any{cp.Name, m.Name, nil, cellValue(m.Value)})
		}
	}

	if err := writeSheet(f, sheetSummary, summary, header); err != nil {
		return err
	}
	if err := writeSheet(f, sheetMetrics, metrics, header); err != nil {
		return err
	}

	if len(set.Errors) > 0 {
		if _, err := f.NewSheet(sheetErrors); err != nil {
			return errors.Wrap(err, "failed to create errors sheet")
		}
		rows := [][]any{{"Column", "Error"}}
		for _, name := range set.Columns {
			if msg, ok := set.Errors[name]; ok {
				rows = append(rows, []any{name, msg})
			}
		}
		if err := writeSheet(f, sheetErrors, rows, header); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return errors.Wrap(err, "failed to write workbook")
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, rows [][]any, headerStyle int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return errors.Wrap(err, "invalid cell")
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return errors.Wrapf(err, "failed to write %s row %d", sheet, i+1)
		}
	}

	if len(rows) > 0 {
		last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
		if err != nil {
			return errors.Wrap(err, "invalid cell")
		}
		if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
			return errors.Wrapf(err, "failed to style %s header", sheet)
		}
	}
	return nil
}

// cellValue keeps numbers and times native; durations become text
func cellValue(v any) any {
	switch v := v.(type) {
	case nil:
		return nil
	case float64, int, string:
		return v
	}
	return formatValue(v)
}
