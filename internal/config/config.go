package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	applog "fintrack/internal/log"
	"fintrack/internal/report"
)

const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Report holds the presentation settings of the aggregator. Values come from
// REPORT_* variables and may be overridden by the YAML file in REPORT_CONFIG.
type Report struct {
	Window             int      `yaml:"window"`
	Language           string   `yaml:"language"`
	Timezone           string   `yaml:"timezone"`
	UncategorizedLabel string   `yaml:"uncategorized_label"`
	Palette            []string `yaml:"palette"`
}

type Config struct {
	// HTTP Server
	Port               string
	JWTSecret          string
	CORSOrigins        []string
	RateLimitPerMinute int
	TrustedProxies     []string

	// Storage
	DataBackend  string
	SQLiteDBPath string
	DatabaseURL  string

	// Dashboard cache; Redis when REDIS_URL is set, in-process LRU otherwise
	RedisURL  string
	CacheTTL  time.Duration
	CacheSize int

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// WorkerMetricsAddr serves /metrics and /healthz of the report worker
	WorkerMetricsAddr string

	// Google Sheets report mirror
	GoogleSpreadsheetID      string
	GoogleSheetTabPrefix     string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// Logging
	LogLevel  string
	LogFormat string

	ReportConfigPath string
	Report           Report

	// loadErrs collects problems found while reading the YAML file; Validate
	// reports them with everything else.
	loadErrs []string
}

func Load() *Config {
	cfg := &Config{
		Port:               getEnv("PORT", "8081"),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		CORSOrigins:        splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "")),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		TrustedProxies:     splitCSV(getEnv("TRUSTED_PROXIES", "")),

		DataBackend:  getEnv("DATA_BACKEND", BackendSQLite),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/fintrack.db"),
		DatabaseURL:  getEnv("DATABASE_URL", ""),

		RedisURL:  getEnv("REDIS_URL", ""),
		CacheTTL:  getEnvDuration("CACHE_TTL", 5*time.Minute),
		CacheSize: getEnvInt("CACHE_SIZE", 500),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "fintrack"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "ledger_changed"),

		WorkerMetricsAddr: getEnv("WORKER_METRICS_ADDR", ":9091"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetTabPrefix:     getEnv("GOOGLE_SHEET_TAB_PREFIX", "Report"),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		ReportConfigPath: getEnv("REPORT_CONFIG", ""),
		Report: Report{
			Window:             getEnvInt("REPORT_WINDOW", report.DefaultWindow),
			Language:           getEnv("REPORT_LANGUAGE", "en"),
			Timezone:           getEnv("REPORT_TIMEZONE", "UTC"),
			UncategorizedLabel: getEnv("REPORT_UNCATEGORIZED_LABEL", report.DefaultUncategorizedLabel),
		},
	}

	if cfg.ReportConfigPath != "" {
		if err := cfg.loadReportFile(cfg.ReportConfigPath); err != nil {
			cfg.loadErrs = append(cfg.loadErrs, err.Error())
		}
	}
	return cfg
}

// loadReportFile overlays the non-empty values of a YAML report file.
func (c *Config) loadReportFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read report config '%s': %v", path, err)
	}
	var file Report
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("invalid report config '%s': %v", path, err)
	}
	if file.Window != 0 {
		c.Report.Window = file.Window
	}
	if file.Language != "" {
		c.Report.Language = file.Language
	}
	if file.Timezone != "" {
		c.Report.Timezone = file.Timezone
	}
	if file.UncategorizedLabel != "" {
		c.Report.UncategorizedLabel = file.UncategorizedLabel
	}
	if len(file.Palette) > 0 {
		c.Report.Palette = file.Palette
	}
	return nil
}

// Validate validates the configuration and returns an error listing every
// problem found.
func (c *Config) Validate() error {
	errors := append([]string(nil), c.loadErrs...)

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if len(c.JWTSecret) < 16 {
		errors = append(errors, "JWT_SECRET must be at least 16 characters")
	}
	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1", c.RateLimitPerMinute))
	}

	switch c.DataBackend {
	case BackendMemory:
	case BackendSQLite:
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			errors = append(errors, "DATABASE_URL is required when using postgres backend")
		} else if u, err := url.Parse(c.DatabaseURL); err != nil || (u.Scheme != "postgres" && u.Scheme != "postgresql") {
			errors = append(errors, "invalid DATABASE_URL: must be a postgres:// URL")
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of [memory sqlite postgres]", c.DataBackend))
	}

	if c.RedisURL != "" {
		if u, err := url.Parse(c.RedisURL); err != nil || (u.Scheme != "redis" && u.Scheme != "rediss") {
			errors = append(errors, fmt.Sprintf("invalid REDIS_URL '%s': must be redis:// or rediss://", c.RedisURL))
		}
	}
	if c.CacheTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid cache TTL %v: must be at least 1 second", c.CacheTTL))
	}
	if c.CacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid cache size %d: must be at least 1", c.CacheSize))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.GoogleServiceAccountFile != "" {
		if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
		}
	}

	if _, err := applog.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, err.Error())
	}
	if f := strings.ToLower(c.LogFormat); f != "text" && f != "json" {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be text or json", c.LogFormat))
	}

	errors = append(errors, c.Report.validate()...)

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

func (r Report) validate() []string {
	var errors []string
	if r.Window < 1 || r.Window > 60 {
		errors = append(errors, fmt.Sprintf("invalid report window %d: must be between 1 and 60", r.Window))
	}
	if _, err := language.Parse(r.Language); err != nil {
		errors = append(errors, fmt.Sprintf("invalid report language '%s'", r.Language))
	}
	if _, err := time.LoadLocation(r.Timezone); err != nil {
		errors = append(errors, fmt.Sprintf("invalid report timezone '%s': %v", r.Timezone, err))
	}
	for _, c := range r.Palette {
		if !colorPattern.MatchString(c) {
			errors = append(errors, fmt.Sprintf("invalid palette color '%s': expected #rrggbb", c))
		}
	}
	return errors
}

// SheetsEnabled reports whether dashboards should be mirrored to a sheet.
func (c *Config) SheetsEnabled() bool {
	return c.GoogleSpreadsheetID != ""
}

// ReportOptions resolves the report settings. Call after Validate.
func (c *Config) ReportOptions() (report.Options, error) {
	loc, err := time.LoadLocation(c.Report.Timezone)
	if err != nil {
		return report.Options{}, fmt.Errorf("load timezone: %w", err)
	}
	labels, err := report.ParseLabels(c.Report.Language)
	if err != nil {
		return report.Options{}, err
	}
	opts := report.Options{
		Location:           loc,
		Labels:             labels,
		UncategorizedLabel: c.Report.UncategorizedLabel,
	}
	if len(c.Report.Palette) > 0 {
		opts.Palette = report.Palette(c.Report.Palette)
	}
	return opts, nil
}

// LanguageTag is the report language, English when unparsable.
func (c *Config) LanguageTag() language.Tag {
	tag, err := language.Parse(c.Report.Language)
	if err != nil {
		return language.English
	}
	return tag
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
