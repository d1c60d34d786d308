package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MigrationMetrics defines the interface for recording re-encryption migration metrics.
// Implementations track per-cycle counts of migrated records, conflicts absorbed by the
// compare-and-swap guard, unrecoverable failures, and the remaining lag on the source
// version. The worker label distinguishes independent migrations ("reencrypt" for the
// sealing-key worker, "blindindex" for the index-key worker).
type MigrationMetrics interface {
	// AddMigrated records successfully re-encrypted records.
	AddMigrated(ctx context.Context, worker string, n int64)

	// AddConflicts records conditional writes skipped because another writer won.
	AddConflicts(ctx context.Context, worker string, n int64)

	// AddFailures records per-record failures that were reported and skipped.
	AddFailures(ctx context.Context, worker string, n int64)

	// SetLag records how many records still carry the source version.
	SetLag(ctx context.Context, worker string, n int64)
}

// migrationMetrics implements MigrationMetrics using OpenTelemetry metrics.
type migrationMetrics struct {
	migratedCounter metric.Int64Counter
	conflictCounter metric.Int64Counter
	failureCounter  metric.Int64Counter
	lagGauge        metric.Int64Gauge
}

// NewMigrationMetrics creates a new MigrationMetrics implementation using the provided
// meter provider. The namespace parameter is used as a prefix for all metric names.
// Returns error if meters cannot be initialized.
func NewMigrationMetrics(meterProvider metric.MeterProvider, namespace string) (MigrationMetrics, error) {
	meter := meterProvider.Meter(namespace)

	migratedCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_migrated_records_total", namespace),
		metric.WithDescription("Total number of records re-encrypted to the target key version"),
		metric.WithUnit("{record}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrated counter: %w", err)
	}

	conflictCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_migration_conflicts_total", namespace),
		metric.WithDescription("Total number of conditional writes lost to a concurrent writer"),
		metric.WithUnit("{record}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create conflict counter: %w", err)
	}

	failureCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_migration_failures_total", namespace),
		metric.WithDescription("Total number of records that failed to migrate and were skipped"),
		metric.WithUnit("{record}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create failure counter: %w", err)
	}

	lagGauge, err := meter.Int64Gauge(
		fmt.Sprintf("%s_migration_lag_records", namespace),
		metric.WithDescription("Number of records still tagged with the source key version"),
		metric.WithUnit("{record}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create lag gauge: %w", err)
	}

	return &migrationMetrics{
		migratedCounter: migratedCounter,
		conflictCounter: conflictCounter,
		failureCounter:  failureCounter,
		lagGauge:        lagGauge,
	}, nil
}

func (m *migrationMetrics) AddMigrated(ctx context.Context, worker string, n int64) {
	m.migratedCounter.Add(ctx, n, metric.WithAttributes(attribute.String("worker", worker)))
}

func (m *migrationMetrics) AddConflicts(ctx context.Context, worker string, n int64) {
	m.conflictCounter.Add(ctx, n, metric.WithAttributes(attribute.String("worker", worker)))
}

func (m *migrationMetrics) AddFailures(ctx context.Context, worker string, n int64) {
	m.failureCounter.Add(ctx, n, metric.WithAttributes(attribute.String("worker", worker)))
}

func (m *migrationMetrics) SetLag(ctx context.Context, worker string, n int64) {
	m.lagGauge.Record(ctx, n, metric.WithAttributes(attribute.String("worker", worker)))
}

// NoOpMigrationMetrics is a no-op implementation of MigrationMetrics for when metrics
// are disabled.
type NoOpMigrationMetrics struct{}

// NewNoOpMigrationMetrics creates a no-op MigrationMetrics implementation.
func NewNoOpMigrationMetrics() MigrationMetrics {
	return &NoOpMigrationMetrics{}
}

// AddMigrated does nothing when metrics are disabled.
func (n *NoOpMigrationMetrics) AddMigrated(ctx context.Context, worker string, count int64) {}

// AddConflicts does nothing when metrics are disabled.
func (n *NoOpMigrationMetrics) AddConflicts(ctx context.Context, worker string, count int64) {}

// AddFailures does nothing when metrics are disabled.
func (n *NoOpMigrationMetrics) AddFailures(ctx context.Context, worker string, count int64) {}

// SetLag does nothing when metrics are disabled.
func (n *NoOpMigrationMetrics) SetLag(ctx context.Context, worker string, count int64) {}
