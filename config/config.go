package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App     AppConfig     `yaml:"app"`
	Sweep   SweepConfig   `yaml:"sweep"`
	Export  ExportConfig  `yaml:"export"`
	Logging LoggingConfig `yaml:"logging"`
}

type AppConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// SweepConfig is the maturity x market-rate grid priced by pricesweep.
// Counts are decoded as floats so fractional values can be rejected
// instead of silently truncated.
type SweepConfig struct {
	FaceAmount            float64   `yaml:"face_amount"`
	InterestRate          float64   `yaml:"interest_rate"`
	PaymentPeriodsPerYear float64   `yaml:"payment_periods_per_year"`
	MaturityYears         []float64 `yaml:"maturity_years"`
	MarketRatesPct        []int     `yaml:"market_rates_pct"`
	Workers               int       `yaml:"workers"`
}

type ExportConfig struct {
	Parquet  ParquetConfig  `yaml:"parquet"`
	Postgres PostgresConfig `yaml:"postgres"`
}

type ParquetConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Path        string `yaml:"path"`
	Compression string `yaml:"compression"`
}

type PostgresConfig struct {
	Enabled bool   `yaml:"enabled"`
	DSN     string `yaml:"dsn"`
	Table   string `yaml:"table"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
	MaxAge int    `yaml:"max_age"`
}

// Default is the standard report: a 24,000 face 10% quarterly
// bullet priced at 2, 3 and 4 years against 7% to 13% market rates.
func Default() Config {
	return Config{
		App: AppConfig{Name: "bondpricer", Version: "1.0"},
		Sweep: SweepConfig{
			FaceAmount:            24000,
			InterestRate:          0.10,
			PaymentPeriodsPerYear: 4,
			MaturityYears:         []float64{2, 3, 4},
			MarketRatesPct:        []int{7, 8, 9, 10, 11, 12, 13},
			Workers:               4,
		},
		Export: ExportConfig{
			Parquet:  ParquetConfig{Path: "out/sweep.parquet", Compression: "snappy"},
			Postgres: PostgresConfig{Table: "bond_price_sweep"},
		},
		Logging: LoggingConfig{Level: "info", Format: "text", Output: "stderr"},
	}
}

// LoadConfig reads path over Default, applies environment overrides and
// validates the result. An empty path yields the defaults.
func LoadConfig(path string) (*Config, error) {
	config := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := applyEnv(&config); err != nil {
		return nil, err
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

func applyEnv(cfg *Config) error {
	if v := strings.TrimSpace(os.Getenv("LOG_LEVEL")); v != "" {
		cfg.Logging.Level = v
	}
	if v := strings.TrimSpace(os.Getenv("PRICER_WORKERS")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse PRICER_WORKERS value %q: %w", v, err)
		}
		cfg.Sweep.Workers = n
	}
	if v := strings.TrimSpace(os.Getenv("PRICER_POSTGRES_DSN")); v != "" {
		cfg.Export.Postgres.DSN = v
	}
	return nil
}

func validateConfig(cfg *Config) error {
	if cfg.App.Name == "" {
		return fmt.Errorf("app.name is required")
	}

	if cfg.Sweep.FaceAmount == 0 {
		return fmt.Errorf("sweep.face_amount must be non-zero")
	}
	if len(cfg.Sweep.MaturityYears) == 0 {
		return fmt.Errorf("sweep.maturity_years must not be empty")
	}
	if len(cfg.Sweep.MarketRatesPct) == 0 {
		return fmt.Errorf("sweep.market_rates_pct must not be empty")
	}
	for _, r := range cfg.Sweep.MarketRatesPct {
		if r <= -100 {
			return fmt.Errorf("sweep.market_rates_pct value %d must be greater than -100", r)
		}
	}
	if cfg.Sweep.Workers <= 0 {
		return fmt.Errorf("sweep.workers must be greater than 0")
	}

	if cfg.Export.Parquet.Enabled {
		if cfg.Export.Parquet.Path == "" {
			return fmt.Errorf("export.parquet.path is required when parquet export is enabled")
		}
		switch strings.ToLower(cfg.Export.Parquet.Compression) {
		case "", "snappy", "gzip", "none", "uncompressed":
		default:
			return fmt.Errorf("export.parquet.compression '%s' is invalid", cfg.Export.Parquet.Compression)
		}
	}

	if cfg.Export.Postgres.Enabled {
		if cfg.Export.Postgres.DSN == "" {
			return fmt.Errorf("export.postgres.dsn is required when postgres export is enabled")
		}
		if !IsValidTableName(cfg.Export.Postgres.Table) {
			return fmt.Errorf("export.postgres.table '%s' is invalid", cfg.Export.Postgres.Table)
		}
	}

	return nil
}

var tableNameRegexp = regexp.MustCompile(`^[a-z_][a-z0-9_]{0,62}$`)

// IsValidTableName reports whether name is a plain lower-case SQL identifier.
func IsValidTableName(name string) bool {
	return tableNameRegexp.MatchString(name)
}
