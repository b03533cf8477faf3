package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds application configuration
type Config struct {
	Port     string
	LogLevel string

	// Analysis defaults, overridable per request
	DefaultDelayDays int
	DefaultTopN      int
	MaxUploadBytes   int64
	RiskHighBelow    decimal.Decimal
	RiskLowFrom      decimal.Decimal

	// Optional read-only transaction source
	DBConn string

	// Alerts
	CrunchAlertThreshold decimal.Decimal
	SMTPHost             string
	SMTPPort             string
	SMTPUsername         string
	SMTPPassword         string
	SenderEmail          string
	AlertRecipients      []string
	KafkaBrokers         []string
	KafkaTopic           string

	// Scheduled report over a CSV file; disabled when ReportSource is empty
	ReportSource   string
	ReportSchedule string
}

// NewConfig loads configuration from environment variables. A .env file in
// the working directory is read first when present; real environment
// variables take precedence over it.
func NewConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		LogLevel:       getEnv("LOG_LEVEL", "INFO"),
		DBConn:         getEnv("DB_CONN", ""),
		SMTPHost:       getEnv("SMTP_HOST", ""),
		SMTPPort:       getEnv("SMTP_PORT", "587"),
		SMTPUsername:   getEnv("SMTP_USERNAME", ""),
		SMTPPassword:   getEnv("SMTP_PASSWORD", ""),
		SenderEmail:    getEnv("SENDER_EMAIL", "cashflow@localhost"),
		KafkaTopic:     getEnv("KAFKA_TOPIC", "cashflow.crunch"),
		ReportSource:   getEnv("REPORT_SOURCE", ""),
		ReportSchedule: getEnv("REPORT_SCHEDULE", "@daily"),
	}
	cfg.AlertRecipients = getList("ALERT_RECIPIENTS")
	cfg.KafkaBrokers = getList("KAFKA_BROKERS")

	var err error
	if cfg.DefaultDelayDays, err = getInt("DEFAULT_DELAY_DAYS", 30); err != nil {
		return nil, err
	}
	if cfg.DefaultDelayDays < 0 {
		return nil, fmt.Errorf("DEFAULT_DELAY_DAYS must not be negative")
	}
	if cfg.DefaultTopN, err = getInt("DEFAULT_TOP_N", 5); err != nil {
		return nil, err
	}
	if cfg.DefaultTopN < 0 {
		return nil, fmt.Errorf("DEFAULT_TOP_N must not be negative")
	}
	maxUpload, err := getInt("MAX_UPLOAD_BYTES", 5<<20)
	if err != nil {
		return nil, err
	}
	if maxUpload <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	cfg.MaxUploadBytes = int64(maxUpload)

	if cfg.RiskHighBelow, err = getDecimal("RISK_HIGH_BELOW", "0"); err != nil {
		return nil, err
	}
	if cfg.RiskLowFrom, err = getDecimal("RISK_LOW_FROM", "5000"); err != nil {
		return nil, err
	}
	if cfg.RiskLowFrom.LessThan(cfg.RiskHighBelow) {
		return nil, fmt.Errorf("RISK_LOW_FROM must not be below RISK_HIGH_BELOW")
	}
	if cfg.CrunchAlertThreshold, err = getDecimal("CRUNCH_ALERT_THRESHOLD", "1000"); err != nil {
		return nil, err
	}

	if len(cfg.AlertRecipients) > 0 && cfg.SMTPHost == "" {
		return nil, fmt.Errorf("SMTP_HOST is required when ALERT_RECIPIENTS is set")
	}
	if cfg.ReportSource != "" && cfg.ReportSchedule == "" {
		return nil, fmt.Errorf("REPORT_SCHEDULE is required when REPORT_SOURCE is set")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getInt(key string, defaultVal int) (int, error) {
	raw, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(raw) == "" {
		return defaultVal, nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return v, nil
}

func getDecimal(key, defaultVal string) (decimal.Decimal, error) {
	raw := strings.TrimSpace(getEnv(key, defaultVal))
	if raw == "" {
		raw = defaultVal
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s must be a decimal number: %w", key, err)
	}
	return d, nil
}

// getList splits a comma-separated variable, skipping empty items
func getList(key string) []string {
	var out []string
	for _, item := range strings.Split(getEnv(key, ""), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
