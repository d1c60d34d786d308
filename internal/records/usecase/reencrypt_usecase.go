package usecase

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	cryptoDomain "github.com/allisson/pii-vault/internal/crypto/domain"
	cryptoService "github.com/allisson/pii-vault/internal/crypto/service"
	apperrors "github.com/allisson/pii-vault/internal/errors"
	keyringUsecase "github.com/allisson/pii-vault/internal/keyring/usecase"
	"github.com/allisson/pii-vault/internal/metrics"
	recordsDomain "github.com/allisson/pii-vault/internal/records/domain"
)

const reencryptWorker = "reencrypt"

// reencryptUseCase implements ReencryptUseCase.
//
// Each record is moved by an unseal-reseal cycle followed by a conditional
// write that only lands if the record is still tagged with the source
// version. A lost write means a concurrent application overwrite already
// re-sealed the record under the active_write version, so nothing is
// retried: the migration's work there is done.
type reencryptUseCase struct {
	config     WorkerConfig
	recordRepo RecordRepository
	keys       keyringUsecase.KeyResolver
	metrics    metrics.MigrationMetrics
	logger     *slog.Logger
}

// Run processes one batch of records sealed under sourceVersion. It resolves
// the opener and sealer once per batch, processes records in parallel bounded
// by the configured concurrency and rate, and never aborts the batch on a
// per-record failure. Safe to re-run after a crash: completed records no
// longer match the source version and are not fetched again.
func (r *reencryptUseCase) Run(ctx context.Context, sourceVersion uint) (*MigrationResult, error) {
	start := time.Now()

	sealer, err := r.keys.SealerForWrite(ctx)
	if err != nil {
		return nil, err
	}
	if sealer.KeyVersion() == sourceVersion {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "source version is the active_write version")
	}

	opener, err := r.keys.OpenerForRead(ctx, sourceVersion)
	if err != nil {
		return nil, err
	}

	records, err := r.recordRepo.ListByKeyVersion(ctx, sourceVersion, r.config.BatchSize)
	if err != nil {
		return nil, err
	}

	batchID := uuid.Must(uuid.NewV7())
	var migrated, conflicts, failures atomic.Int64

	var limiter *rate.Limiter
	if r.config.RatePerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(r.config.RatePerSec), 1)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.config.Concurrency)

	for _, record := range records {
		g.Go(func() error {
			if limiter != nil {
				if err := limiter.Wait(gctx); err != nil {
					return err
				}
			}

			err := retryTransient(gctx, r.config, func(ctx context.Context) error {
				won, err := r.migrateRecord(ctx, record, sourceVersion, sealer, opener, batchID)
				if err != nil {
					return err
				}
				if won {
					migrated.Add(1)
				} else {
					conflicts.Add(1)
				}
				return nil
			})
			if err != nil {
				if gctx.Err() != nil {
					return err
				}

				// Report and skip: one bad record must not stall the batch.
				failures.Add(1)
				if r.logger != nil {
					r.logger.Error("failed to re-encrypt record",
						slog.String("record_id", record.ID.String()),
						slog.Uint64("source_version", uint64(sourceVersion)),
						slog.Any("error", err),
					)
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	remaining, err := r.recordRepo.CountByKeyVersion(ctx, sourceVersion)
	if err != nil {
		return nil, err
	}

	result := &MigrationResult{
		BatchID:   batchID,
		Migrated:  migrated.Load(),
		Conflicts: conflicts.Load(),
		Failures:  failures.Load(),
		Remaining: remaining,
		Elapsed:   time.Since(start),
	}

	r.metrics.AddMigrated(ctx, reencryptWorker, result.Migrated)
	r.metrics.AddConflicts(ctx, reencryptWorker, result.Conflicts)
	r.metrics.AddFailures(ctx, reencryptWorker, result.Failures)
	r.metrics.SetLag(ctx, reencryptWorker, result.Remaining)

	if r.logger != nil {
		r.logger.Info("re-encryption batch finished",
			slog.String("batch_id", batchID.String()),
			slog.Uint64("source_version", uint64(sourceVersion)),
			slog.Uint64("target_version", uint64(sealer.KeyVersion())),
			slog.Int64("migrated", result.Migrated),
			slog.Int64("conflicts", result.Conflicts),
			slog.Int64("failures", result.Failures),
			slog.Int64("remaining", result.Remaining),
			slog.Duration("elapsed", result.Elapsed),
		)
	}

	return result, nil
}

// migrateRecord moves one record to the sealer's version. Returns false when
// the conditional write lost to a concurrent writer.
func (r *reencryptUseCase) migrateRecord(
	ctx context.Context,
	record *recordsDomain.Record,
	sourceVersion uint,
	sealer cryptoService.Sealer,
	opener cryptoService.Opener,
	batchID uuid.UUID,
) (bool, error) {
	plaintext, err := opener.Open(record.Sealed())
	if err != nil {
		return false, apperrors.Wrap(err, "failed to unseal record")
	}
	defer cryptoDomain.Zero(plaintext)

	payload, err := sealer.Seal(plaintext)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to re-seal record")
	}

	// Work on a copy so a retried attempt still sees the original sealed
	// fields on the source record.
	reencrypted := *record
	reencrypted.SetMigrated(payload, sealer.KeyVersion(), batchID, time.Now().UTC())

	return r.recordRepo.UpdateSealed(ctx, &reencrypted, sourceVersion)
}

// NewReencryptUseCase creates a new re-encryption migration use case instance.
func NewReencryptUseCase(
	config WorkerConfig,
	recordRepo RecordRepository,
	keys keyringUsecase.KeyResolver,
	migrationMetrics metrics.MigrationMetrics,
	logger *slog.Logger,
) ReencryptUseCase {
	return &reencryptUseCase{
		config:     config,
		recordRepo: recordRepo,
		keys:       keys,
		metrics:    migrationMetrics,
		logger:     logger,
	}
}
