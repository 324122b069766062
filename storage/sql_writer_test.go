package storage

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteWriter(t *testing.T) *SQLWriter {
	t.Helper()
	sw, err := NewSQLWriter(DriverSQLite, ":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sw.Close() })
	return sw
}

func TestSQLWriterPersistsRows(t *testing.T) {
	sw := newSQLiteWriter(t)
	require.NoError(t, sw.Write(sampleReports()))

	counts, err := sw.CountByReport(sw.RunID())
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"regiones": 2, "ciudades": 1}, counts)
}

func TestSQLWriterDimensionsAndNullRates(t *testing.T) {
	sw := newSQLiteWriter(t)
	require.NoError(t, sw.Write(sampleReports()))

	var region, city sql.NullString
	var rate sql.NullFloat64
	err := sw.db.QueryRow(`SELECT region, city, conversion_rate FROM channel_report_rows
		WHERE report = 'ciudades' AND row_rank = 1`).Scan(&region, &city, &rate)
	require.NoError(t, err)
	assert.Equal(t, "North", region.String)
	assert.Equal(t, "Oslo", city.String)
	assert.Equal(t, 75.0, rate.Float64)

	err = sw.db.QueryRow(`SELECT city, conversion_rate FROM channel_report_rows
		WHERE report = 'regiones' AND row_rank = 2`).Scan(&city, &rate)
	require.NoError(t, err)
	assert.False(t, city.Valid, "regiones has no City dimension")
	assert.False(t, rate.Valid, "NaN is stored as NULL")
}

func TestSQLWriterBatches(t *testing.T) {
	sw := newSQLiteWriter(t)
	require.NoError(t, sw.Write(append(sampleReports(), manyRowsReport("sector_city", 120))))

	counts, err := sw.CountByReport(sw.RunID())
	require.NoError(t, err)
	assert.Equal(t, 120, counts["sector_city"])
}

func TestSQLWriterRunsAreSeparate(t *testing.T) {
	sw := newSQLiteWriter(t)
	require.NoError(t, sw.Write(sampleReports()))

	counts, err := sw.CountByReport("00000000-0000-0000-0000-000000000000")
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestSQLWriterUnsupportedDriver(t *testing.T) {
	_, err := NewSQLWriter("oracle", "x", nil)
	assert.Error(t, err)
}

func TestSQLWriterPlaceholders(t *testing.T) {
	pg := &SQLWriter{driver: DriverPostgres}
	lite := &SQLWriter{driver: DriverSQLite}
	assert.Equal(t, "$7", pg.placeholder(7))
	assert.Equal(t, "?", lite.placeholder(7))
}

func TestSQLWriterDiscardRemovesOnlyItsRun(t *testing.T) {
	sw := newSQLiteWriter(t)
	require.NoError(t, sw.Write(sampleReports()))

	other := &SQLWriter{db: sw.db, driver: sw.driver, runID: "other-run"}
	require.NoError(t, other.Write(sampleReports()))

	require.NoError(t, sw.Discard())

	counts, err := sw.CountByReport(sw.RunID())
	require.NoError(t, err)
	assert.Empty(t, counts)

	counts, err = sw.CountByReport("other-run")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"regiones": 2, "ciudades": 1}, counts)
}
