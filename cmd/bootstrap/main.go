package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/vova4o/goschool-api/internal/repository"
	"github.com/vova4o/goschool-api/internal/seed"
	"github.com/vova4o/goschool-api/internal/service"
	"github.com/vova4o/goschool-api/pkg/config"
	"github.com/vova4o/goschool-api/pkg/database"
	"github.com/vova4o/goschool-api/pkg/logger"
)

// bootstrap prepares the database from a shell: it creates missing tables and,
// unless -schema-only is given, inserts the baseline tutorials and examples.
// The report is printed as JSON on stdout.
func main() {
	var (
		schemaOnly bool
		statusOnly bool
		timeout    time.Duration
	)
	flag.BoolVar(&schemaOnly, "schema-only", false, "Create missing tables without seeding content")
	flag.BoolVar(&statusOnly, "status", false, "Print table readiness and exit")
	flag.DurationVar(&timeout, "timeout", 2*time.Minute, "Overall deadline")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	metrics := service.NewMetricsService()
	svc := service.NewBootstrapService(
		repository.NewSchemaRepository(db),
		database.NewMigrator(db, logr),
		repository.NewTutorialRepository(db),
		repository.NewExampleRepository(db),
		seed.MustLoad(),
		nil,
		metrics,
		logr,
	)

	var out interface{}
	switch {
	case statusOnly:
		out, err = svc.Status(ctx)
	case schemaOnly:
		if err = svc.EnsureReady(ctx); err == nil {
			out, err = svc.Status(ctx)
		}
	default:
		out, err = svc.Seed(ctx)
	}
	if err != nil {
		logr.Fatal("bootstrap failed", zap.Error(err))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		logr.Fatal("failed to write report", zap.Error(err))
	}
}
