package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dan9191/cashflow-service/internal/config"
	"github.com/Dan9191/cashflow-service/internal/handler"
	"github.com/Dan9191/cashflow-service/internal/metrics"
	"github.com/Dan9191/cashflow-service/internal/notify"
	"github.com/Dan9191/cashflow-service/internal/repository"
	"github.com/Dan9191/cashflow-service/internal/scheduler"
	"github.com/Dan9191/cashflow-service/internal/service"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(reg)
	if err != nil {
		logger.Fatalf("Failed to register metrics: %v", err)
	}

	opts := []service.Option{service.WithMetrics(m)}

	// Optional transaction database
	if cfg.DBConn != "" {
		db, err := sql.Open("postgres", cfg.DBConn)
		if err != nil {
			logger.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		repo := repository.NewRepository(db)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = repo.Ping(ctx)
		cancel()
		if err != nil {
			logger.Fatalf("%v", err)
		}
		opts = append(opts, service.WithTransactionSource(repo))
		logger.Info("Account analyses enabled")
	}

	// Alert channels
	var notifiers notify.Multi
	if len(cfg.AlertRecipients) > 0 {
		notifiers = append(notifiers, notify.NewEmailSender(cfg, logger))
	}
	if len(cfg.KafkaBrokers) > 0 {
		pub := notify.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer pub.Close()
		notifiers = append(notifiers, pub)
	}
	if len(notifiers) > 0 {
		opts = append(opts, service.WithNotifier(notifiers))
		logger.Infof("Crunch alerts enabled on %d channel(s)", len(notifiers))
	}

	// Initialize layers
	svc := service.NewService(logger, cfg, opts...)
	h := handler.NewHandler(svc, logger, cfg.MaxUploadBytes)
	r := handler.NewRouter(h, logger, m, reg)

	// Scheduled report
	if cfg.ReportSource != "" {
		sched, err := scheduler.New(svc, logger, cfg.ReportSource, cfg.ReportSchedule)
		if err != nil {
			logger.Fatalf("Failed to create scheduler: %v", err)
		}
		sched.Start()
		defer func() { <-sched.Stop().Done() }()
	}

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Infof("Starting server on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Graceful shutdown failed: %v", err)
	}
}
