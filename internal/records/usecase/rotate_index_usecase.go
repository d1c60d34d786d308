package usecase

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	blindindexService "github.com/allisson/pii-vault/internal/blindindex/service"
	blindindexUsecase "github.com/allisson/pii-vault/internal/blindindex/usecase"
	cryptoDomain "github.com/allisson/pii-vault/internal/crypto/domain"
	cryptoService "github.com/allisson/pii-vault/internal/crypto/service"
	apperrors "github.com/allisson/pii-vault/internal/errors"
	keyringUsecase "github.com/allisson/pii-vault/internal/keyring/usecase"
	"github.com/allisson/pii-vault/internal/metrics"
	recordsDomain "github.com/allisson/pii-vault/internal/records/domain"
)

const blindIndexWorker = "blindindex"

// rotateIndexUseCase implements RotateIndexUseCase.
//
// Structurally this is the same migration as re-encryption: bounded batches,
// parallel workers, a conditional write keyed on the stored index key
// version. The difference is what gets rewritten: only the token and its
// version tag change, the sealed payload is left alone. Recomputing a token
// requires the plaintext, so each record is unsealed with the opener for its
// own sealing key version; those vary within a batch and the openers are
// cached per version.
type rotateIndexUseCase struct {
	config     WorkerConfig
	recordRepo RecordRepository
	keys       keyringUsecase.KeyResolver
	indexKeys  blindindexUsecase.TokenizerProvider
	metrics    metrics.MigrationMetrics
	logger     *slog.Logger
}

// openerCache hands out openers per sealing key version, resolving each
// version at most once per batch.
type openerCache struct {
	mu      sync.Mutex
	keys    keyringUsecase.KeyResolver
	openers map[uint]cryptoService.Opener
}

func newOpenerCache(keys keyringUsecase.KeyResolver) *openerCache {
	return &openerCache{
		keys:    keys,
		openers: make(map[uint]cryptoService.Opener),
	}
}

func (c *openerCache) openerFor(ctx context.Context, version uint) (cryptoService.Opener, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if opener, ok := c.openers[version]; ok {
		return opener, nil
	}

	opener, err := c.keys.OpenerForRead(ctx, version)
	if err != nil {
		return nil, err
	}
	c.openers[version] = opener
	return opener, nil
}

// Run processes one batch of records tokenized under sourceVersion.
func (r *rotateIndexUseCase) Run(ctx context.Context, sourceVersion uint) (*MigrationResult, error) {
	start := time.Now()

	tokenizer, err := r.indexKeys.TokenizerForWrite(ctx)
	if err != nil {
		return nil, err
	}
	if tokenizer.KeyVersion() == sourceVersion {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "source version is the active_write index key version")
	}

	records, err := r.recordRepo.ListByIndexKeyVersion(ctx, sourceVersion, r.config.BatchSize)
	if err != nil {
		return nil, err
	}

	batchID := uuid.Must(uuid.NewV7())
	openers := newOpenerCache(r.keys)
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
				won, err := r.retokenizeRecord(ctx, record, sourceVersion, tokenizer, openers)
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

				failures.Add(1)
				if r.logger != nil {
					r.logger.Error("failed to rotate record index token",
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

	remaining, err := r.recordRepo.CountByIndexKeyVersion(ctx, sourceVersion)
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

	r.metrics.AddMigrated(ctx, blindIndexWorker, result.Migrated)
	r.metrics.AddConflicts(ctx, blindIndexWorker, result.Conflicts)
	r.metrics.AddFailures(ctx, blindIndexWorker, result.Failures)
	r.metrics.SetLag(ctx, blindIndexWorker, result.Remaining)

	if r.logger != nil {
		r.logger.Info("blind-index rotation batch finished",
			slog.String("batch_id", batchID.String()),
			slog.Uint64("source_version", uint64(sourceVersion)),
			slog.Uint64("target_version", uint64(tokenizer.KeyVersion())),
			slog.Int64("migrated", result.Migrated),
			slog.Int64("conflicts", result.Conflicts),
			slog.Int64("failures", result.Failures),
			slog.Int64("remaining", result.Remaining),
			slog.Duration("elapsed", result.Elapsed),
		)
	}

	return result, nil
}

// retokenizeRecord recomputes one record's token under the tokenizer's key.
// Returns false when the conditional write lost to a concurrent writer.
func (r *rotateIndexUseCase) retokenizeRecord(
	ctx context.Context,
	record *recordsDomain.Record,
	sourceVersion uint,
	tokenizer blindindexService.Tokenizer,
	openers *openerCache,
) (bool, error) {
	opener, err := openers.openerFor(ctx, record.KeyVersion)
	if err != nil {
		return false, err
	}

	plaintext, err := opener.Open(record.Sealed())
	if err != nil {
		return false, apperrors.Wrap(err, "failed to unseal record")
	}
	defer cryptoDomain.Zero(plaintext)

	retokenized := *record
	retokenized.SetIndexToken(tokenizer.Token(plaintext), tokenizer.KeyVersion(), time.Now().UTC())

	return r.recordRepo.UpdateIndexToken(ctx, &retokenized, sourceVersion)
}

// NewRotateIndexUseCase creates a new blind-index rotation use case instance.
func NewRotateIndexUseCase(
	config WorkerConfig,
	recordRepo RecordRepository,
	keys keyringUsecase.KeyResolver,
	indexKeys blindindexUsecase.TokenizerProvider,
	migrationMetrics metrics.MigrationMetrics,
	logger *slog.Logger,
) RotateIndexUseCase {
	return &rotateIndexUseCase{
		config:     config,
		recordRepo: recordRepo,
		keys:       keys,
		indexKeys:  indexKeys,
		metrics:    migrationMetrics,
		logger:     logger,
	}
}
