package main

import (
	"context"
	"database/sql"
	"flag"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"

	"github.com/atelierhq/atelier/pkg/billing"
	"github.com/atelierhq/atelier/pkg/entitlements"
	"github.com/atelierhq/atelier/pkg/observability"
)

var (
	dbURL    = flag.String("db-url", getEnv("ATELIER_POSTGRES_URL", "postgres://localhost/atelier?sslmode=disable"), "PostgreSQL connection URL")
	schedule = flag.String("schedule", getEnv("ATELIER_RENEWAL_SCHEDULE", billing.DefaultRenewalSchedule), "Cron schedule for renewal runs")
	logLevel = flag.String("log-level", getEnv("ATELIER_LOG_LEVEL", "info"), "Log level (debug, info, warn, error)")
	runOnce  = flag.Bool("run-once", false, "Run one renewal pass and exit")
)

func main() {
	flag.Parse()

	logger := observability.NewLogger(observability.ParseLogLevel(*logLevel), os.Stdout)

	db, err := sql.Open("postgres", *dbURL)
	if err != nil {
		logger.WithError(err).Error("failed to open database")
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.WithError(err).Error("failed to ping database")
		os.Exit(1)
	}

	scheduler := billing.NewScheduler(
		entitlements.NewPostgresStore(db),
		billing.NewPostgresInvoiceStore(db),
		logger,
		nil,
	)

	if *runOnce {
		if err := scheduler.RunRenewals(context.Background()); err != nil {
			logger.WithError(err).Error("renewal run failed")
			os.Exit(1)
		}
		return
	}

	if err := scheduler.Start(*schedule); err != nil {
		logger.WithError(err).Error("failed to start scheduler")
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down")
	<-scheduler.Stop().Done()
	logger.Info("scheduler stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
