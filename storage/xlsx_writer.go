package storage

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"channel-metrics-report/models"
)

// MaxSheetNameLen is the spreadsheet format's limit on sheet names.
const MaxSheetNameLen = 31

// ErrSheetNameCollision is returned when two report names truncate to the same
// sheet name. Callers must keep names unique within MaxSheetNameLen characters.
var ErrSheetNameCollision = errors.New("sheet name collision")

// XLSXWriter writes each report to its own sheet of a single workbook.
type XLSXWriter struct {
	path string
}

// NewXLSXWriter returns a writer for the workbook at path. Nothing is created
// until Write.
func NewXLSXWriter(path string) *XLSXWriter {
	return &XLSXWriter{path: path}
}

// Path returns the workbook location.
func (x *XLSXWriter) Path() string {
	return x.path
}

// Discard removes the workbook.
func (x *XLSXWriter) Discard() error {
	if err := os.Remove(x.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("xlsx: remove %q: %w", x.path, err)
	}
	return nil
}

// Write creates (or truncates) the workbook with one sheet per report.
func (x *XLSXWriter) Write(reports []*models.Report) error {
	if len(reports) == 0 {
		return fmt.Errorf("xlsx: no reports to write")
	}
	if err := os.MkdirAll(filepath.Dir(x.path), 0755); err != nil {
		return fmt.Errorf("xlsx: create output dir: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("xlsx: header style: %w", err)
	}

	seen := make(map[string]string, len(reports))
	for i, r := range reports {
		sheet := SheetName(r.Name)
		if prev, dup := seen[sheet]; dup {
			return fmt.Errorf("xlsx: %w: %q and %q both map to %q", ErrSheetNameCollision, prev, r.Name, sheet)
		}
		seen[sheet] = r.Name

		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
				return fmt.Errorf("xlsx: rename first sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("xlsx: add sheet %q: %w", sheet, err)
		}

		if err := writeSheet(f, sheet, r, bold); err != nil {
			return fmt.Errorf("xlsx: sheet %q: %w", sheet, err)
		}
	}

	f.SetActiveSheet(0)
	if err := f.SaveAs(x.path); err != nil {
		return fmt.Errorf("xlsx: save %q: %w", x.path, err)
	}
	return nil
}

// Close is a no-op; the workbook is written and released by Write.
func (x *XLSXWriter) Close() error {
	return nil
}

func writeSheet(f *excelize.File, sheet string, r *models.Report, headerStyle int) error {
	header := r.Header()
	hrow := make([]interface{}, len(header))
	for i, h := range header {
		hrow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &hrow); err != nil {
		return err
	}

	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return err
	}

	for i, row := range r.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := rowValues(row)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}
	return nil
}

// rowValues lays out one row in Report.Header order. NaN rates become empty
// cells.
func rowValues(m *models.ChannelMetrics) []interface{} {
	out := make([]interface{}, 0, len(m.Dimensions)+10)
	for _, d := range m.Dimensions {
		out = append(out, d)
	}
	out = append(out, m.Source)
	for _, v := range m.Metrics() {
		out = append(out, v)
	}
	return append(out, m.UniqueOffers, rateCell(m.ConversionRate), rateCell(m.EngagementRate))
}

func rateCell(f float64) interface{} {
	if math.IsNaN(f) {
		return nil
	}
	return f
}

// SheetName truncates name to MaxSheetNameLen characters.
func SheetName(name string) string {
	r := []rune(name)
	if len(r) <= MaxSheetNameLen {
		return name
	}
	return string(r[:MaxSheetNameLen])
}
