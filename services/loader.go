package services

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"channel-metrics-report/models"
	"channel-metrics-report/utils"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// nullTokens are cell values read as missing, matching the usual dataframe
// defaults for CSV exports.
var nullTokens = map[string]struct{}{
	"":         {},
	"#N/A":     {},
	"#N/A N/A": {},
	"#NA":      {},
	"-NaN":     {},
	"-nan":     {},
	"<NA>":     {},
	"N/A":      {},
	"NA":       {},
	"NULL":     {},
	"NaN":      {},
	"None":     {},
	"n/a":      {},
	"nan":      {},
	"null":     {},
}

// Loader reads a delimited table fully into memory.
type Loader struct {
	logger *utils.Logger
}

// NewLoader creates a Loader with the given logger.
func NewLoader(logger *utils.Logger) *Loader {
	return &Loader{logger: logger}
}

// Load opens path and reads every record. It performs no schema validation:
// absent columns surface later, when a report asks for them.
func (l *Loader) Load(path string) (*models.Dataset, error) {
	l.logger.Info("[loader] Loading data from: %s", path)

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loader: %w: %s", ErrInputNotFound, path)
		}
		return nil, fmt.Errorf("loader: open %q: %w", path, err)
	}
	defer f.Close()

	ds, err := l.Read(f)
	if err != nil {
		return nil, fmt.Errorf("loader: read %q: %w", path, err)
	}

	l.logger.Info("[loader] Loaded %d records", ds.Len())
	return ds, nil
}

// Read parses CSV from r. The header row is required; an input with only a
// header yields an empty Dataset.
func (l *Loader) Read(r io.Reader) (*models.Dataset, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, errors.New("empty input: no header row")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, h := range header {
		header[i] = strings.Trim(strings.TrimSpace(h), `"`)
	}

	var records [][]string
	ragged := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record %d: %w", len(records)+1, err)
		}
		if len(rec) != len(header) {
			ragged++
		}
		records = append(records, normaliseRecord(rec, len(header)))
	}

	if ragged > 0 {
		l.logger.Warn("[loader] %d records had a field count different from the header", ragged)
	}
	return models.NewDataset(header, records), nil
}

// normaliseRecord trims cells, maps null tokens to "" and pads short records.
func normaliseRecord(rec []string, width int) []string {
	if len(rec) < width {
		padded := make([]string, width)
		copy(padded, rec)
		rec = padded
	}
	for i, v := range rec {
		v = strings.TrimSpace(v)
		if _, isNull := nullTokens[v]; isNull {
			v = ""
		}
		rec[i] = v
	}
	return rec
}
