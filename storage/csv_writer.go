package storage

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"channel-metrics-report/models"
)

// CSVWriter writes one <report>_top25.csv file per non-empty report into a
// directory that it recreates on every Write.
type CSVWriter struct {
	dir string
}

// NewCSVWriter returns a writer targeting dir.
func NewCSVWriter(dir string) *CSVWriter {
	return &CSVWriter{dir: dir}
}

// Dir returns the output directory.
func (c *CSVWriter) Dir() string {
	return c.dir
}

// FileName returns the file name used for a report.
func FileName(report string) string {
	return report + "_top25.csv"
}

// Write removes any previous output in the directory and writes the reports.
func (c *CSVWriter) Write(reports []*models.Report) error {
	if err := os.RemoveAll(c.dir); err != nil {
		return fmt.Errorf("csv: remove previous output: %w", err)
	}
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("csv: create output dir: %w", err)
	}

	for _, r := range reports {
		if len(r.Rows) == 0 {
			continue
		}
		if err := c.writeReport(r); err != nil {
			return err
		}
	}
	return nil
}

func (c *CSVWriter) writeReport(r *models.Report) error {
	path := filepath.Join(c.dir, FileName(r.Name))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("csv: create file %q: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(r.Header()); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}

	for _, m := range r.Rows {
		row := append([]string{}, m.Dimensions...)
		row = append(row, m.Source)
		for _, v := range m.Metrics() {
			row = append(row, strconv.FormatInt(v, 10))
		}
		row = append(row,
			strconv.Itoa(m.UniqueOffers),
			formatRate(m.ConversionRate),
			formatRate(m.EngagementRate),
		)
		if err := w.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("csv: flush %q: %w", path, err)
	}
	return nil
}

// Discard removes the output directory.
func (c *CSVWriter) Discard() error {
	if err := os.RemoveAll(c.dir); err != nil {
		return fmt.Errorf("csv: remove output: %w", err)
	}
	return nil
}

// Close is a no-op; each Write closes its files.
func (c *CSVWriter) Close() error {
	return nil
}

func formatRate(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', 2, 64)
}
