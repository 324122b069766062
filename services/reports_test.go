package services

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"channel-metrics-report/models"
)

func TestDefinitionsOrderAndNames(t *testing.T) {
	want := []string{
		"regiones", "ciudades", "job_titles", "areas", "sectores",
		"jobtitle_region", "jobtitle_city", "area_region", "area_city",
		"sector_region", "sector_city",
	}
	require.Len(t, Definitions, 11)
	for i, d := range Definitions {
		assert.Equal(t, want[i], d.Name)
		assert.LessOrEqual(t, len(d.Name), 31)
		assert.Equal(t, d.Dimensions, d.RequiredColumns())
	}
}

func TestReportServiceNullDimensionExcluded(t *testing.T) {
	ds := mustDataset(t,
		"Email,North,Oslo,Dev,IT,Tech,A,0,0,0,3,0,10",
		"Email,,Oslo,Dev,IT,Tech,B,0,0,0,100,0,10",
	)

	reports, err := NewReportService(newTestLogger(), 25, 1).Build(ds, Definitions)
	require.NoError(t, err)

	regiones := reports[0]
	require.Equal(t, "regiones", regiones.Name)
	require.Len(t, regiones.Rows, 1)
	assert.EqualValues(t, 3, regiones.Rows[0].Applications)

	// ciudades groups by City and Region, so the null Region row is excluded too.
	ciudades := reports[1]
	require.Len(t, ciudades.Rows, 1)
	assert.EqualValues(t, 3, ciudades.Rows[0].Applications)

	// job_titles does not need Region.
	titles := reports[2]
	require.Len(t, titles.Rows, 1)
	assert.EqualValues(t, 103, titles.Rows[0].Applications)

	sum, err := NewSummaryService(newTestLogger()).Generate(ds.Len(), ds)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.AnalysedRecords)
}

func TestReportServiceTopNAndOrdering(t *testing.T) {
	var lines []string
	for i := 0; i < 40; i++ {
		lines = append(lines, fmt.Sprintf("Email,R%02d,,,,,O%d,0,0,0,%d,0,100", i, i, (i*7)%40))
	}
	ds := mustDataset(t, lines...)

	reports, err := NewReportService(newTestLogger(), 0, 1).Build(ds, Definitions[:1])
	require.NoError(t, err)
	rows := reports[0].Rows
	require.Len(t, rows, DefaultTopN)
	for i := 1; i < len(rows); i++ {
		assert.GreaterOrEqual(t, rows[i-1].Applications, rows[i].Applications)
	}
	assert.EqualValues(t, 39, rows[0].Applications)
}

func TestReportServiceEmptyReport(t *testing.T) {
	ds := mustDataset(t, "Email,North,,,,,A,0,0,0,1,0,1")

	reports, err := NewReportService(newTestLogger(), 25, 1).Build(ds, Definitions)
	require.NoError(t, err)
	require.Len(t, reports, 11)
	assert.Len(t, reports[0].Rows, 1)
	assert.Empty(t, reports[2].Rows, "no JobTitle values")
}

func TestReportServiceParallelMatchesSequential(t *testing.T) {
	var lines []string
	for i := 0; i < 200; i++ {
		lines = append(lines, fmt.Sprintf("S%d,R%d,C%d,J%d,A%d,X%d,O%d,%d,%d,%d,%d,%d,%d",
			i%3, i%5, i%11, i%7, i%4, i%6, i%50, i, i*2, i*3, i%13, i%17, i%19))
	}
	ds := mustDataset(t, lines...)

	seq, err := NewReportService(newTestLogger(), 25, 1).Build(ds, Definitions)
	require.NoError(t, err)
	par, err := NewReportService(newTestLogger(), 25, 4).Build(ds, Definitions)
	require.NoError(t, err)

	require.Len(t, par, len(seq))
	for i := range seq {
		assert.Equal(t, seq[i].Name, par[i].Name)
		require.Len(t, par[i].Rows, len(seq[i].Rows))
		for j := range seq[i].Rows {
			a, b := seq[i].Rows[j], par[i].Rows[j]
			assert.Equal(t, a.Dimensions, b.Dimensions)
			assert.Equal(t, a.Source, b.Source)
			assert.Equal(t, a.Metrics(), b.Metrics())
			assert.Equal(t, a.UniqueOffers, b.UniqueOffers)
			assert.True(t, sameRate(a.ConversionRate, b.ConversionRate))
		}
	}
}

func TestReportServiceMissingColumn(t *testing.T) {
	ds := models.NewDataset(
		[]string{"Source", "Region", "OfferId", "ListImpressions", "DetailViews", "PageVisits", "Applications", "TotalEngagements", "TotalTouchpoints"},
		[][]string{{"Email", "North", "A", "1", "1", "1", "1", "1", "1"}},
	)

	_, err := NewReportService(newTestLogger(), 25, 2).Build(ds, Definitions)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingColumn)
	assert.Contains(t, err.Error(), `report "ciudades"`)
}

func TestFilterNonNull(t *testing.T) {
	ds := mustDataset(t,
		"Email,North,Oslo,,,,A,0,0,0,1,0,1",
		"Email,North,,,,,B,0,0,0,1,0,1",
		"Email,,Oslo,,,,C,0,0,0,1,0,1",
	)

	out, err := FilterNonNull(ds, []string{models.ColCity, models.ColRegion})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Len())
}

func sameRate(a, b float64) bool {
	if math.IsNaN(a) {
		return math.IsNaN(b)
	}
	return a == b
}
