package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"channel-metrics-report/config"
	"channel-metrics-report/metrics"
	"channel-metrics-report/models"
	"channel-metrics-report/services"
	"channel-metrics-report/storage"
	"channel-metrics-report/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Error: %v\n", err)
		os.Exit(1)
	}

	logger := utils.NewLoggerWithLevel(cfg.LogLevel)
	logger.Info("=== Channel metrics report starting ===")
	logger.Info("Config: input: %s | top: %d | workers: %d | csv: %t | db: %q",
		cfg.InputPath, cfg.TopN, cfg.Workers, cfg.ExportCSV, cfg.DBDriver)

	if err := checkInput(cfg.InputPath); err != nil {
		if errors.Is(err, services.ErrInputNotFound) {
			logger.Error("❌ No se encontró el archivo: %s", cfg.InputPath)
		} else {
			logger.Error("❌ %v", err)
		}
		os.Exit(1)
	}

	if err := run(cfg, logger, os.Stdout); err != nil {
		if errors.Is(err, services.ErrInputNotFound) {
			logger.Error("❌ No se encontró el archivo: %s", cfg.InputPath)
		} else {
			logger.Error("Report generation failed: %v", err)
		}
		os.Exit(1)
	}
}

// checkInput distinguishes a missing input file from one that exists but
// cannot be inspected.
func checkInput(path string) error {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %s", services.ErrInputNotFound, path)
	default:
		return fmt.Errorf("cannot read input: %w", err)
	}
}

// run executes one full report generation. Nothing is written unless every
// report was built.
func run(cfg *config.Config, logger *utils.Logger, out io.Writer) error {
	start := time.Now()

	ds, err := services.NewLoader(logger).Load(cfg.InputPath)
	if err != nil {
		return err
	}

	cleaned, err := services.NewCleaner(logger).Clean(ds)
	if err != nil {
		return err
	}

	reports, err := services.NewReportService(logger, cfg.TopN, cfg.Workers).
		Build(cleaned, services.Definitions)
	if err != nil {
		return err
	}

	summarySvc := services.NewSummaryService(logger)
	summary, err := summarySvc.Generate(ds.Len(), cleaned)
	if err != nil {
		return err
	}

	if cfg.PrintTables {
		for _, r := range reports {
			summarySvc.PrintReport(out, r)
		}
	}

	xlsx := storage.NewXLSXWriter(cfg.OutputPath())
	sinks := []storage.ReportWriter{xlsx}
	if cfg.ExportCSV {
		sinks = append(sinks, storage.NewCSVWriter(cfg.CSVDir()))
	}

	var sqlWriter *storage.SQLWriter
	if cfg.SQLEnabled() {
		sqlWriter, err = storage.NewSQLWriter(cfg.DBDriver, cfg.DBDSN,
			storage.DefaultRetry(cfg.DBConnectRetries, logger))
		if err != nil {
			return err
		}
		sinks = append(sinks, sqlWriter)
	}
	defer func() {
		for _, s := range sinks {
			_ = s.Close()
		}
	}()

	logger.Info("💾 Saving report to: %s", xlsx.Path())
	if err := writeAll(logger, sinks, reports); err != nil {
		return err
	}

	if cfg.ExportCSV {
		logger.Info("CSV reports saved to %s", cfg.CSVDir())
	}
	if sqlWriter != nil {
		if err := logStored(logger, sqlWriter, cfg.DBDriver); err != nil {
			return err
		}
	}

	logger.Info("✅ Report generated successfully")
	summarySvc.Print(out, summary)

	if cfg.PushgatewayURL != "" {
		m := metrics.NewRunMetrics()
		m.Observe(summary, reports, time.Since(start))
		host, _ := os.Hostname()
		if err := m.Push(cfg.PushgatewayURL, host); err != nil {
			// Push failures do not fail the run.
			logger.Warn("%v", err)
		}
	}
	return nil
}

// writeAll writes reports to every sink in order. When one fails, the output
// of the sinks that already succeeded is discarded.
func writeAll(logger *utils.Logger, sinks []storage.ReportWriter, reports []*models.Report) error {
	for i, s := range sinks {
		if err := s.Write(reports); err != nil {
			for j := i - 1; j >= 0; j-- {
				if derr := sinks[j].Discard(); derr != nil {
					logger.Warn("Could not discard partial output: %v", derr)
				}
			}
			return err
		}
	}
	return nil
}

func logStored(logger *utils.Logger, sw *storage.SQLWriter, driver string) error {
	counts, err := sw.CountByReport(sw.RunID())
	if err != nil {
		return err
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	logger.Info("Report rows stored in %s (run %s, %d rows)", driver, sw.RunID(), total)
	return nil
}
