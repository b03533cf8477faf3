// Package scheduler runs the periodic cash-flow report over a ledger file.
package scheduler

import (
	"context"
	"fmt"

	"github.com/Dan9191/cashflow-service/internal/service"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Analyzer is the part of the service the report job needs
type Analyzer interface {
	AnalyzeFile(ctx context.Context, path string, p service.Params) (*service.Analysis, error)
	DefaultParams() service.Params
}

// Scheduler re-analyzes one CSV file on a cron schedule. A run that is still
// going when the next tick fires causes that tick to be skipped.
type Scheduler struct {
	cron   *cron.Cron
	svc    Analyzer
	log    *logrus.Logger
	source string
}

// New validates the schedule and registers the report job
func New(svc Analyzer, log *logrus.Logger, source, schedule string) (*Scheduler, error) {
	s := &Scheduler{svc: svc, log: log, source: source}
	logger := cron.PrintfLogger(log)
	s.cron = cron.New(cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)))
	if _, err := s.cron.AddFunc(schedule, func() { s.RunOnce(context.Background()) }); err != nil {
		return nil, fmt.Errorf("invalid report schedule %q: %w", schedule, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.log.WithField("source", s.source).Info("Scheduled report started")
	s.cron.Start()
}

// Stop prevents new runs and returns a context that is done once the
// running job, if any, has finished
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// RunOnce analyzes the report source with the default parameters
func (s *Scheduler) RunOnce(ctx context.Context) (*service.Analysis, error) {
	a, err := s.svc.AnalyzeFile(ctx, s.source, s.svc.DefaultParams())
	if err != nil {
		s.log.WithField("source", s.source).Errorf("Scheduled report failed: %v", err)
		return nil, err
	}
	m := a.Report.Metrics
	s.log.WithFields(logrus.Fields{
		"source":       s.source,
		"risk_level":   m.RiskLevel,
		"current":      m.CurrentBalance.StringFixed(2),
		"reality_30d":  m.Reality30Day.StringFixed(2),
		"total_locked": a.Report.TotalLocked.StringFixed(2),
	}).Info("Scheduled report complete")
	return a, nil
}
