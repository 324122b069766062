package storage

import (
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"channel-metrics-report/models"
	"channel-metrics-report/utils"
)

// Supported SQL drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const insertBatchSize = 50

// insertColumns is the column list of every INSERT, in argument order.
var insertColumns = []string{
	"run_id", "report", "row_rank",
	"region", "city", "job_title", "area", "sector",
	"source",
	"list_impressions", "detail_views", "page_visits",
	"applications", "total_engagements", "total_touchpoints",
	"unique_offers", "conversion_rate", "engagement_rate",
}

// dimensionColumns maps input dimension names to table columns.
var dimensionColumns = map[string]int{
	models.ColRegion:   3,
	models.ColCity:     4,
	models.ColJobTitle: 5,
	models.ColArea:     6,
	models.ColSector:   7,
}

var migrations = map[string][]string{
	DriverPostgres: {
		`CREATE TABLE IF NOT EXISTS channel_report_rows (
			id                SERIAL PRIMARY KEY,
			run_id            UUID         NOT NULL,
			report            VARCHAR(31)  NOT NULL,
			row_rank          INTEGER      NOT NULL,
			region            TEXT,
			city              TEXT,
			job_title         TEXT,
			area              TEXT,
			sector            TEXT,
			source            TEXT         NOT NULL,
			list_impressions  BIGINT       NOT NULL DEFAULT 0,
			detail_views      BIGINT       NOT NULL DEFAULT 0,
			page_visits       BIGINT       NOT NULL DEFAULT 0,
			applications      BIGINT       NOT NULL DEFAULT 0,
			total_engagements BIGINT       NOT NULL DEFAULT 0,
			total_touchpoints BIGINT       NOT NULL DEFAULT 0,
			unique_offers     INTEGER      NOT NULL DEFAULT 0,
			conversion_rate   NUMERIC(9,2),
			engagement_rate   NUMERIC(9,2),
			created_at        TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_channel_report_rows_run    ON channel_report_rows(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_channel_report_rows_report ON channel_report_rows(report)`,
	},
	DriverSQLite: {
		`CREATE TABLE IF NOT EXISTS channel_report_rows (
			id                INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id            TEXT    NOT NULL,
			report            TEXT    NOT NULL,
			row_rank          INTEGER NOT NULL,
			region            TEXT,
			city              TEXT,
			job_title         TEXT,
			area              TEXT,
			sector            TEXT,
			source            TEXT    NOT NULL,
			list_impressions  INTEGER NOT NULL DEFAULT 0,
			detail_views      INTEGER NOT NULL DEFAULT 0,
			page_visits       INTEGER NOT NULL DEFAULT 0,
			applications      INTEGER NOT NULL DEFAULT 0,
			total_engagements INTEGER NOT NULL DEFAULT 0,
			total_touchpoints INTEGER NOT NULL DEFAULT 0,
			unique_offers     INTEGER NOT NULL DEFAULT 0,
			conversion_rate   REAL,
			engagement_rate   REAL,
			created_at        TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_channel_report_rows_run    ON channel_report_rows(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_channel_report_rows_report ON channel_report_rows(report)`,
	},
}

// SQLWriter persists report rows to PostgreSQL or SQLite. Every Write is
// tagged with the writer's run id.
type SQLWriter struct {
	db     *sql.DB
	driver string
	runID  string
}

// NewSQLWriter opens a connection, waits for it with retry, runs schema
// migrations, and returns a ready-to-use SQLWriter.
func NewSQLWriter(driver, dsn string, retry *utils.RetryConfig) (*SQLWriter, error) {
	if _, ok := migrations[driver]; !ok {
		return nil, fmt.Errorf("sql: unsupported driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("sql: open: %w", err)
	}
	if driver == DriverSQLite {
		// An in-memory database lives only as long as its connection.
		db.SetMaxOpenConns(1)
	}

	if retry == nil {
		retry = &utils.RetryConfig{MaxAttempts: 1}
	}
	if err := retry.Do("sql: ping", db.Ping); err != nil {
		_ = db.Close()
		return nil, err
	}

	sw := &SQLWriter{db: db, driver: driver, runID: uuid.NewString()}
	if err := sw.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sql: migrate: %w", err)
	}
	return sw, nil
}

// RunID identifies the rows written by this writer.
func (sw *SQLWriter) RunID() string {
	return sw.runID
}

func (sw *SQLWriter) migrate() error {
	for _, stmt := range migrations[sw.driver] {
		if _, err := sw.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Write inserts every row of every report in one transaction.
func (sw *SQLWriter) Write(reports []*models.Report) error {
	var rows [][]interface{}
	for _, r := range reports {
		for i, m := range r.Rows {
			rows = append(rows, sw.rowArgs(r, i+1, m))
		}
	}
	if len(rows) == 0 {
		return nil
	}

	tx, err := sw.db.Begin()
	if err != nil {
		return fmt.Errorf("sql: begin: %w", err)
	}

	for i := 0; i < len(rows); i += insertBatchSize {
		end := i + insertBatchSize
		if end > len(rows) {
			end = len(rows)
		}
		if err := sw.insertBatch(tx, rows[i:end]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("sql: insert batch: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sql: commit: %w", err)
	}
	return nil
}

func (sw *SQLWriter) rowArgs(r *models.Report, rank int, m *models.ChannelMetrics) []interface{} {
	args := make([]interface{}, len(insertColumns))
	args[0] = sw.runID
	args[1] = r.Name
	args[2] = rank
	for i, dim := range r.Dimensions {
		if col, ok := dimensionColumns[dim]; ok && i < len(m.Dimensions) {
			args[col] = m.Dimensions[i]
		}
	}
	args[8] = m.Source
	for i, v := range m.Metrics() {
		args[9+i] = v
	}
	args[15] = m.UniqueOffers
	args[16] = nullableRate(m.ConversionRate)
	args[17] = nullableRate(m.EngagementRate)
	return args
}

func (sw *SQLWriter) insertBatch(tx *sql.Tx, batch [][]interface{}) error {
	width := len(insertColumns)
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*width)

	for idx, args := range batch {
		ph := make([]string, width)
		for j := range ph {
			ph[j] = sw.placeholder(idx*width + j + 1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(ph, ",")+")")
		valueArgs = append(valueArgs, args...)
	}

	query := fmt.Sprintf(`INSERT INTO channel_report_rows (%s) VALUES %s`,
		strings.Join(insertColumns, ", "), strings.Join(valueStrings, ","))

	_, err := tx.Exec(query, valueArgs...)
	return err
}

func (sw *SQLWriter) placeholder(n int) string {
	if sw.driver == DriverPostgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// Discard deletes every row stored under this writer's run id.
func (sw *SQLWriter) Discard() error {
	query := `DELETE FROM channel_report_rows WHERE run_id = ` + sw.placeholder(1)
	if _, err := sw.db.Exec(query, sw.runID); err != nil {
		return fmt.Errorf("sql: discard run %s: %w", sw.runID, err)
	}
	return nil
}

// CountByReport returns the number of stored rows per report for a run.
func (sw *SQLWriter) CountByReport(runID string) (map[string]int, error) {
	query := `SELECT report, COUNT(*) FROM channel_report_rows WHERE run_id = ` +
		sw.placeholder(1) + ` GROUP BY report`

	rows, err := sw.db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("sql: count by report: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var report string
		var n int
		if err := rows.Scan(&report, &n); err != nil {
			return nil, fmt.Errorf("sql: scan row: %w", err)
		}
		counts[report] = n
	}
	return counts, rows.Err()
}

// Close releases the connection pool.
func (sw *SQLWriter) Close() error {
	return sw.db.Close()
}

func nullableRate(f float64) interface{} {
	if math.IsNaN(f) {
		return nil
	}
	return f
}

// DefaultRetry is the connection retry policy used when none is configured.
func DefaultRetry(attempts int, logger *utils.Logger) *utils.RetryConfig {
	return &utils.RetryConfig{
		MaxAttempts: attempts,
		BaseDelay:   2 * time.Second,
		Logger:      logger,
	}
}
