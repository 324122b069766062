package services

import (
	"fmt"
	"math"
	"strconv"

	"channel-metrics-report/models"
	"channel-metrics-report/utils"
)

// Cleaner applies the base filter shared by every report: records without a
// channel are dropped.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// Clean returns the records that have a non-empty Source. The input Dataset
// is not modified.
func (c *Cleaner) Clean(ds *models.Dataset) (*models.Dataset, error) {
	src, ok := ds.ColumnIndex(models.ColSource)
	if !ok {
		return nil, fmt.Errorf("cleaner: %w: %s", ErrMissingColumn, models.ColSource)
	}

	cleaned := ds.Filter(func(rec []string) bool {
		return src < len(rec) && rec[src] != ""
	})

	c.logger.Info("[cleaner] Cleaned %d → %d records (dropped %d without %s)",
		ds.Len(), cleaned.Len(), ds.Len()-cleaned.Len(), models.ColSource)

	stats := c.scanMetrics(cleaned)
	if stats.Unparsable > 0 {
		c.logger.Warn("[cleaner] %d metric cells are not numeric and will count as 0", stats.Unparsable)
	}
	if stats.Fractional > 0 {
		c.logger.Warn("[cleaner] %d metric cells have a fraction that will be truncated", stats.Fractional)
	}
	return cleaned, nil
}

// metricStats counts metric cells that do not hold a whole number.
type metricStats struct {
	Unparsable int
	Fractional int
}

func (c *Cleaner) scanMetrics(ds *models.Dataset) metricStats {
	var stats metricStats
	for _, col := range models.MetricColumns {
		idx, ok := ds.ColumnIndex(col)
		if !ok {
			continue
		}
		for row := range ds.Records {
			raw := ds.Cell(row, idx)
			if _, ok := parseMetric(raw); !ok {
				c.logger.Debug("[cleaner] Non-numeric %s at record %d: %q", col, row+1, raw)
				stats.Unparsable++
			} else if hasFraction(raw) {
				c.logger.Debug("[cleaner] Fractional %s at record %d: %q", col, row+1, raw)
				stats.Fractional++
			}
		}
	}
	return stats
}

// hasFraction reports whether a parsable metric cell loses a non-zero
// fractional part when converted by parseMetric.
func hasFraction(raw string) bool {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return false
	}
	return f != math.Trunc(f)
}

// parseMetric converts a metric cell to an integer count, truncating any
// fraction toward zero. Null cells are 0 and valid; unparsable cells are 0
// and reported as invalid.
func parseMetric(raw string) (int64, bool) {
	if raw == "" {
		return 0, true
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int64(f), true
}
