package services

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"channel-metrics-report/models"
)

// keySep joins group key parts.
const keySep = "\x00"

type groupAcc struct {
	row    *models.ChannelMetrics
	offers map[string]struct{}
}

// Aggregate groups ds by dims plus Source, sums the metric columns, counts
// distinct offers and derives the two rates. Rows are sorted by Applications
// descending; ties keep the order in which groups were first seen.
//
// Aggregate does not filter nulls and does not truncate: callers pre-filter
// and keep the top N themselves.
func Aggregate(ds *models.Dataset, dims []string) ([]*models.ChannelMetrics, error) {
	if len(dims) == 0 {
		return nil, ErrNoDimensions
	}

	dimIdx, err := columnIndexes(ds, dims)
	if err != nil {
		return nil, err
	}
	fixed, err := columnIndexes(ds, []string{models.ColSource, models.ColOfferID})
	if err != nil {
		return nil, err
	}
	srcIdx, offerIdx := fixed[0], fixed[1]
	metricIdx, err := columnIndexes(ds, models.MetricColumns)
	if err != nil {
		return nil, err
	}

	groups := make(map[string]*groupAcc)
	order := make([]*groupAcc, 0)
	parts := make([]string, len(dims)+1)

	for row := range ds.Records {
		for i, idx := range dimIdx {
			parts[i] = ds.Cell(row, idx)
		}
		parts[len(dims)] = ds.Cell(row, srcIdx)
		key := strings.Join(parts, keySep)

		acc, ok := groups[key]
		if !ok {
			values := make([]string, len(dims))
			copy(values, parts[:len(dims)])
			acc = &groupAcc{
				row:    &models.ChannelMetrics{Dimensions: values, Source: parts[len(dims)]},
				offers: make(map[string]struct{}),
			}
			groups[key] = acc
			order = append(order, acc)
		}

		m := acc.row
		vals := make([]int64, len(metricIdx))
		for i, idx := range metricIdx {
			vals[i], _ = parseMetric(ds.Cell(row, idx))
		}
		m.ListImpressions += vals[0]
		m.DetailViews += vals[1]
		m.PageVisits += vals[2]
		m.Applications += vals[3]
		m.TotalEngagements += vals[4]
		m.TotalTouchpoints += vals[5]

		if offer := ds.Cell(row, offerIdx); offer != "" {
			acc.offers[offer] = struct{}{}
		}
	}

	result := make([]*models.ChannelMetrics, len(order))
	for i, acc := range order {
		m := acc.row
		m.UniqueOffers = len(acc.offers)
		m.ConversionRate = rate(m.Applications, m.TotalTouchpoints)
		m.EngagementRate = rate(m.TotalEngagements, m.TotalTouchpoints)
		result[i] = m
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Applications > result[j].Applications
	})
	return result, nil
}

// rate returns part/total as a percentage rounded to 2 decimals, or NaN when
// total is zero.
func rate(part, total int64) float64 {
	if total == 0 {
		return math.NaN()
	}
	return round2(float64(part) / float64(total) * 100)
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func columnIndexes(ds *models.Dataset, cols []string) ([]int, error) {
	out := make([]int, len(cols))
	for i, c := range cols {
		idx, ok := ds.ColumnIndex(c)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, c)
		}
		out[i] = idx
	}
	return out, nil
}
