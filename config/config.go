package config

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// envPrefix is prepended to every variable name, e.g. REPORT_INPUT_PATH.
const envPrefix = "report"

// OutputFileName is the workbook written next to the input file.
const OutputFileName = "REPORTE_METRICAS_CANALES_TOP25.xlsx"

// CSVDirName is the companion CSV directory created next to the input file.
const CSVDirName = "channel-reports"

// Config holds all application configuration loaded from environment variables.
type Config struct {
	InputPath string `envconfig:"INPUT_PATH" required:"true"`
	TopN      int    `envconfig:"TOP_N" default:"25"`
	Workers   int    `envconfig:"WORKERS" default:"1"`

	PrintTables bool `envconfig:"PRINT_TABLES" default:"true"`
	ExportCSV   bool `envconfig:"EXPORT_CSV" default:"false"`

	DBDriver         string `envconfig:"DB_DRIVER"`
	DBDSN            string `envconfig:"DB_DSN"`
	DBConnectRetries int    `envconfig:"DB_CONNECT_RETRIES" default:"5"`

	PushgatewayURL string `envconfig:"PUSHGATEWAY_URL"`
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads the .env file if present and returns a populated Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}
	return FromEnv()
}

// FromEnv populates a Config from the process environment only.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks option combinations envconfig cannot express.
func (c *Config) Validate() error {
	if c.InputPath == "" {
		return fmt.Errorf("config: REPORT_INPUT_PATH must not be empty")
	}
	if c.TopN <= 0 {
		return fmt.Errorf("config: REPORT_TOP_N must be positive, got %d", c.TopN)
	}
	switch c.DBDriver {
	case "":
	case "postgres", "sqlite":
		if c.DBDSN == "" {
			return fmt.Errorf("config: REPORT_DB_DSN is required when REPORT_DB_DRIVER=%s", c.DBDriver)
		}
	default:
		return fmt.Errorf("config: unsupported REPORT_DB_DRIVER %q", c.DBDriver)
	}
	return nil
}

// OutputPath returns the workbook path, alongside the input file.
func (c *Config) OutputPath() string {
	return filepath.Join(filepath.Dir(c.InputPath), OutputFileName)
}

// CSVDir returns the companion CSV directory, alongside the input file.
func (c *Config) CSVDir() string {
	return filepath.Join(filepath.Dir(c.InputPath), CSVDirName)
}

// SQLEnabled reports whether report rows should be persisted.
func (c *Config) SQLEnabled() bool {
	return c.DBDriver != ""
}
