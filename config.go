package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"energy-dashboard/internal/dashboard/interfaces/report"
	"energy-dashboard/internal/ingestion/infrastructure/sqlstore"
)

type config struct {
	DataDir         string        `yaml:"data_dir"`
	ValueSuffixes   []string      `yaml:"value_suffixes"`
	DatabaseURL     string        `yaml:"database_url"`
	DatabaseDriver  string        `yaml:"database_driver"`
	ReadingsTable   string        `yaml:"readings_table"`
	Region          string        `yaml:"region"`
	StartDate       string        `yaml:"start_date"`
	EndDate         string        `yaml:"end_date"`
	ExportDir       string        `yaml:"export_dir"`
	ExportFormats   []string      `yaml:"export_formats"`
	MetricsTextfile string        `yaml:"metrics_textfile"`
	Interactive     bool          `yaml:"interactive"`
	LoadTimeout     time.Duration `yaml:"load_timeout"`
}

func loadConfig() (config, error) {
	cfg := config{
		DataDir:         getenvDefault("DATA_DIR", "data"),
		ValueSuffixes:   splitCSV(getenvDefault("VALUE_SUFFIXES", "_MW")),
		DatabaseURL:     getenvDefault("DATABASE_URL", ""),
		DatabaseDriver:  getenvDefault("DATABASE_DRIVER", sqlstore.DriverPgx),
		ReadingsTable:   getenvDefault("READINGS_TABLE", "region_hourly"),
		Region:          getenvDefault("REGION", ""),
		StartDate:       getenvDefault("START_DATE", ""),
		EndDate:         getenvDefault("END_DATE", ""),
		ExportDir:       getenvDefault("EXPORT_DIR", ""),
		ExportFormats:   splitCSV(getenvDefault("EXPORT_FORMATS", "")),
		MetricsTextfile: getenvDefault("METRICS_TEXTFILE", ""),
		Interactive:     getenvBoolDefault("INTERACTIVE", false),
		LoadTimeout:     getenvDuration("LOAD_TIMEOUT", 2*time.Minute),
	}

	if path := os.Getenv("DASHBOARD_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config %s: %w", path, err)
		}
	}

	if strings.TrimSpace(cfg.DataDir) == "" && cfg.DatabaseURL == "" {
		return cfg, errors.New("DATA_DIR or DATABASE_URL is required")
	}
	if len(cfg.ValueSuffixes) == 0 {
		cfg.ValueSuffixes = []string{"_MW"}
	}
	switch cfg.DatabaseDriver {
	case sqlstore.DriverPgx, sqlstore.DriverSQLite:
	default:
		return cfg, fmt.Errorf("unsupported DATABASE_DRIVER %q", cfg.DatabaseDriver)
	}
	for i, format := range cfg.ExportFormats {
		format = strings.ToLower(format)
		switch format {
		case report.FormatText, report.FormatXLSX, report.FormatPDF:
		default:
			return cfg, fmt.Errorf("unsupported export format %q", format)
		}
		cfg.ExportFormats[i] = format
	}
	if cfg.LoadTimeout <= 0 {
		cfg.LoadTimeout = 2 * time.Minute
	}
	return cfg, nil
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvBoolDefault(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitCSV(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	var result []string
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}
