package service

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/vova4o/goschool-api/internal/models"
	"github.com/vova4o/goschool-api/internal/seed"
	"github.com/vova4o/goschool-api/pkg/database"
	appErrors "github.com/vova4o/goschool-api/pkg/errors"
)

type schemaInspector interface {
	ExistingTables(ctx context.Context, names []string) (map[string]bool, error)
}

type schemaMigrator interface {
	Up(ctx context.Context) error
	Reapply(ctx context.Context) error
}

type seedTutorialWriter interface {
	InsertIfAbsent(ctx context.Context, t *models.Tutorial) (bool, error)
}

type seedExampleWriter interface {
	InsertIfAbsent(ctx context.Context, e *models.Example) (bool, error)
}

type catalogInvalidator interface {
	InvalidateCatalog(ctx context.Context)
}

// BootstrapService brings the schema up and inserts the baseline catalog.
// Both operations are safe to repeat and to run concurrently.
type BootstrapService struct {
	schema      schemaInspector
	migrator    schemaMigrator
	tutorials   seedTutorialWriter
	examples    seedExampleWriter
	baseline    seed.Baseline
	invalidator catalogInvalidator
	metrics     *MetricsService
	logger      *zap.Logger
}

// NewBootstrapService constructs a BootstrapService.
func NewBootstrapService(
	schema schemaInspector,
	migrator schemaMigrator,
	tutorials seedTutorialWriter,
	examples seedExampleWriter,
	baseline seed.Baseline,
	invalidator catalogInvalidator,
	metrics *MetricsService,
	logger *zap.Logger,
) *BootstrapService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BootstrapService{
		schema:      schema,
		migrator:    migrator,
		tutorials:   tutorials,
		examples:    examples,
		baseline:    baseline,
		invalidator: invalidator,
		metrics:     metrics,
		logger:      logger,
	}
}

// Status reports which required tables exist.
func (s *BootstrapService) Status(ctx context.Context) (*models.SchemaStatus, error) {
	existing, err := s.schema.ExistingTables(ctx, models.RequiredTables)
	if err != nil {
		return nil, storeError(err, "failed to inspect schema")
	}
	status := &models.SchemaStatus{Ready: true, Tables: make([]models.TableStatus, 0, len(existing))}
	for _, name := range models.RequiredTables {
		ok := existing[name]
		status.Tables = append(status.Tables, models.TableStatus{Name: name, Exists: ok})
		status.Ready = status.Ready && ok
	}
	return status, nil
}

// EnsureReady creates the schema when any required table is missing.
// A complete schema performs no writes. When the recorded migration version
// hides a dropped table, the migrations are reapplied from scratch.
func (s *BootstrapService) EnsureReady(ctx context.Context) error {
	status, err := s.Status(ctx)
	if err != nil {
		return err
	}
	if status.Ready {
		return nil
	}

	s.logger.Info("schema incomplete, applying migrations", zap.Strings("missing", missingTables(status)))
	if err := s.migrator.Up(ctx); err != nil {
		return migrationError(err)
	}
	if status, err = s.Status(ctx); err != nil {
		return err
	}
	if status.Ready {
		return nil
	}

	missing := missingTables(status)
	s.logger.Warn("tables still missing after migration, reapplying schema", zap.Strings("missing", missing))
	if err := s.migrator.Reapply(ctx); err != nil {
		return migrationError(err)
	}
	if status, err = s.Status(ctx); err != nil {
		return err
	}
	if !status.Ready {
		missing = missingTables(status)
		s.logger.Error("schema incomplete after reapplying migrations", zap.Strings("missing", missing))
		return appErrors.Clone(appErrors.ErrInternal, fmt.Sprintf("tables still missing: %v", missing))
	}
	return nil
}

func migrationError(err error) error {
	if database.IsUnavailable(err) {
		return appErrors.WrapAs(appErrors.ErrStoreUnavailable, err, "database is unavailable")
	}
	return appErrors.WrapAs(appErrors.ErrInternal, err, "failed to create schema")
}

// Seed inserts every baseline record whose slug is not present yet.
// Individual failures are reported and do not stop the batch.
func (s *BootstrapService) Seed(ctx context.Context) (*models.SeedReport, error) {
	if err := s.EnsureReady(ctx); err != nil {
		return nil, err
	}

	report := models.NewSeedReport()
	for i := range s.baseline.Tutorials {
		t := s.baseline.Tutorials[i]
		created, err := s.tutorials.InsertIfAbsent(ctx, &t)
		s.record(report, "tutorial", t.Slug, created, err)
	}
	for i := range s.baseline.Examples {
		e := s.baseline.Examples[i]
		created, err := s.examples.InsertIfAbsent(ctx, &e)
		s.record(report, "example", e.Slug, created, err)
	}

	s.metrics.RecordSeed(report)
	s.logger.Info("seed finished",
		zap.Int("created", report.CreatedCount),
		zap.Int("skipped", report.SkippedCount),
		zap.Int("failed", report.FailedCount),
	)

	if report.CreatedCount > 0 && s.invalidator != nil {
		s.invalidator.InvalidateCatalog(ctx)
	}
	return report, nil
}

func (s *BootstrapService) record(report *models.SeedReport, kind, slug string, created bool, err error) {
	switch {
	case err == nil && created:
		report.AddCreated(slug)
	case err == nil, database.IsUniqueViolation(err):
		// a concurrent seed may win the insert between the conflict check and the write
		report.AddSkipped(slug)
	default:
		s.logger.Warn("seed item failed", zap.String("kind", kind), zap.String("slug", slug), zap.Error(err))
		report.AddFailed(kind, slug, fmt.Errorf("insert %s: %w", kind, err))
	}
}

func missingTables(status *models.SchemaStatus) []string {
	var missing []string
	for _, t := range status.Tables {
		if !t.Exists {
			missing = append(missing, t.Name)
		}
	}
	sort.Strings(missing)
	return missing
}
