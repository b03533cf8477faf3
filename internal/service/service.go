package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Dan9191/cashflow-service/internal/cashflow"
	"github.com/Dan9191/cashflow-service/internal/config"
	"github.com/Dan9191/cashflow-service/internal/ledger"
	"github.com/Dan9191/cashflow-service/internal/metrics"
	"github.com/Dan9191/cashflow-service/internal/models"
	"github.com/Dan9191/cashflow-service/internal/notify"
	"github.com/Dan9191/cashflow-service/internal/sample"
	"github.com/sirupsen/logrus"
)

var (
	// ErrNoDatabase is returned for account analyses when no database is configured
	ErrNoDatabase = errors.New("no transaction database configured")
	// ErrNegativeTopN is returned when a ranking size below zero is requested
	ErrNegativeTopN = errors.New("top_n must not be negative")
	// ErrInvalidSampleSize is returned for sample ledgers outside 1..MaxSampleRows
	ErrInvalidSampleSize = fmt.Errorf("rows must be between 1 and %d", MaxSampleRows)
)

// MaxSampleRows bounds generated sample ledgers
const MaxSampleRows = 10000

// Source kinds used as metric labels
const (
	KindUpload    = "upload"
	KindSample    = "sample"
	KindAccount   = "account"
	KindScheduled = "scheduled"
)

// TransactionSource provides raw transaction tables for an account
type TransactionSource interface {
	FetchTransactions(ctx context.Context, accountID string) ([]string, [][]string, error)
}

// Params are the caller-controlled analysis inputs
type Params struct {
	Scenario models.Scenario
	TopN     int
}

// Validate rejects negative delays and ranking sizes
func (p Params) Validate() error {
	if err := p.Scenario.Validate(); err != nil {
		return err
	}
	if p.TopN < 0 {
		return ErrNegativeTopN
	}
	return nil
}

// Analysis is a report together with what the loader did to the input
type Analysis struct {
	Source string             `json:"source"`
	Load   *ledger.LoadReport `json:"load,omitempty"`
	Report *models.Report     `json:"report"`
}

// Service handles business logic
type Service struct {
	log        *logrus.Logger
	config     *config.Config
	thresholds cashflow.RiskThresholds
	source     TransactionSource
	notifier   notify.Notifier
	metrics    *metrics.Metrics
	now        func() time.Time
}

// Option customizes a Service
type Option func(*Service)

// WithTransactionSource enables account analyses
func WithTransactionSource(src TransactionSource) Option {
	return func(s *Service) { s.source = src }
}

// WithNotifier enables crunch alerts
func WithNotifier(n notify.Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithMetrics records analyses in Prometheus collectors
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService initializes a new service
func NewService(log *logrus.Logger, cfg *config.Config, opts ...Option) *Service {
	s := &Service{
		log:    log,
		config: cfg,
		thresholds: cashflow.RiskThresholds{
			HighBelow: cfg.RiskHighBelow,
			LowFrom:   cfg.RiskLowFrom,
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DefaultParams returns the configured default scenario with reality enabled
func (s *Service) DefaultParams() Params {
	return Params{
		Scenario: models.Scenario{DelayDays: s.config.DefaultDelayDays, Reality: true},
		TopN:     s.config.DefaultTopN,
	}
}

// AnalyzeCSV loads a CSV ledger from r and analyzes it as an upload
func (s *Service) AnalyzeCSV(ctx context.Context, source string, r io.Reader, p Params) (*Analysis, error) {
	return s.analyzeCSV(ctx, KindUpload, source, r, p)
}

// AnalyzeFile analyzes a CSV ledger on disk. The file is closed before returning.
func (s *Service) AnalyzeFile(ctx context.Context, path string, p Params) (*Analysis, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger file: %w", err)
	}
	defer f.Close()
	return s.analyzeCSV(ctx, KindScheduled, path, f, p)
}

func (s *Service) analyzeCSV(ctx context.Context, kind, source string, r io.Reader, p Params) (*Analysis, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	l, report, err := ledger.Load(r)
	s.metrics.RecordDropped(report.Dropped)
	if err != nil {
		s.log.WithField("source", source).Warnf("Failed to load ledger: %v", err)
		return nil, err
	}
	return s.analyze(ctx, kind, source, l, &report, p), nil
}

// AnalyzeSample generates a seeded demo ledger and analyzes it
func (s *Service) AnalyzeSample(ctx context.Context, seed int64, rows int, p Params) (*Analysis, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if rows < 1 || rows > MaxSampleRows {
		return nil, ErrInvalidSampleSize
	}
	l := sample.Generate(seed, s.now(), rows)
	return s.analyze(ctx, KindSample, fmt.Sprintf("sample:%d", seed), l, nil, p), nil
}

// AnalyzeAccount reads an account's transactions from the database and analyzes them
func (s *Service) AnalyzeAccount(ctx context.Context, accountID string, p Params) (*Analysis, error) {
	if s.source == nil {
		return nil, ErrNoDatabase
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	header, rows, err := s.source.FetchTransactions(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transactions for account %s: %w", accountID, err)
	}
	l, report, err := ledger.LoadRows(header, rows)
	s.metrics.RecordDropped(report.Dropped)
	if err != nil {
		return nil, err
	}
	return s.analyze(ctx, KindAccount, "account:"+accountID, l, &report, p), nil
}

func (s *Service) analyze(ctx context.Context, kind, source string, l *models.Ledger, load *ledger.LoadReport, p Params) *Analysis {
	entry := s.log.WithField("source", source)
	if load != nil {
		if n := load.DroppedTotal(); n > 0 {
			entry.WithField("dropped", load.Dropped).Warnf("Dropped %d of %d rows while loading", n, load.Rows)
		}
		if load.SignMismatches > 0 {
			entry.Warnf("%d rows have an amount sign that disagrees with their type; amount sign is used", load.SignMismatches)
		}
	}

	report := cashflow.Analyze(l, p.Scenario, p.TopN, s.thresholds)
	s.metrics.RecordAnalysis(kind, string(report.Metrics.RiskLevel))
	entry.WithFields(logrus.Fields{
		"transactions": report.Transactions,
		"delay_days":   p.Scenario.DelayDays,
		"reality":      p.Scenario.Reality,
		"risk_level":   report.Metrics.RiskLevel,
		"gap":          report.Metrics.ProjectedGap.String(),
	}).Info("Ledger analyzed")

	s.maybeAlert(ctx, source, p.Scenario, report)
	return &Analysis{Source: source, Load: load, Report: report}
}

// maybeAlert notifies when the lowest projected balance is below the alert
// threshold. Delivery failures are logged only.
func (s *Service) maybeAlert(ctx context.Context, source string, sc models.Scenario, report *models.Report) {
	if s.notifier == nil || report.LowestPoint == nil {
		return
	}
	threshold := s.config.CrunchAlertThreshold
	if !report.LowestPoint.Balance.LessThan(threshold) {
		return
	}

	alert := models.CrunchAlert{
		Source:      source,
		DelayDays:   sc.DelayDays,
		Threshold:   threshold,
		LowestDate:  report.LowestPoint.Date,
		LowestValue: report.LowestPoint.Balance,
		RiskLevel:   report.Metrics.RiskLevel,
		DetectedAt:  s.now(),
	}
	err := s.notifier.Notify(ctx, alert)
	s.metrics.RecordAlert(err)
	if err != nil {
		s.log.WithField("source", source).Errorf("Failed to deliver crunch alert: %v", err)
		return
	}
	s.log.WithField("source", source).Infof("Crunch alert sent: balance %s on %s",
		alert.LowestValue.StringFixed(2), alert.LowestDate.Format("2006-01-02"))
}
