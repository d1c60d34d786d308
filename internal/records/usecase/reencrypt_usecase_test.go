package usecase_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	cryptoService "github.com/allisson/pii-vault/internal/crypto/service"
	apperrors "github.com/allisson/pii-vault/internal/errors"
	keyringDomain "github.com/allisson/pii-vault/internal/keyring/domain"
	"github.com/allisson/pii-vault/internal/metrics"
	recordsDomain "github.com/allisson/pii-vault/internal/records/domain"
	"github.com/allisson/pii-vault/internal/records/usecase"
	recordsMocks "github.com/allisson/pii-vault/internal/records/usecase/mocks"
)

type reencryptFixture struct {
	repo    *recordsMocks.MockRecordRepository
	keys    *fakeKeyResolver
	useCase usecase.ReencryptUseCase

	targetOpener cryptoService.Opener
}

func newReencryptFixture(t *testing.T) *reencryptFixture {
	t.Helper()

	_, oldOpener := newSealerOpener(t, 1)
	newSealer, newOpener := newSealerOpener(t, 2)

	f := &reencryptFixture{
		repo: &recordsMocks.MockRecordRepository{},
		keys: &fakeKeyResolver{
			sealer: newSealer,
			openers: map[uint]cryptoService.Opener{
				1: oldOpener,
				2: newOpener,
			},
		},
		targetOpener: newOpener,
	}
	f.useCase = usecase.NewReencryptUseCase(
		fastWorkerConfig(), f.repo, f.keys, metrics.NewNoOpMigrationMetrics(), nil,
	)
	return f
}

// capturedRecords collects the records passed to conditional writes.
type capturedRecords struct {
	mu      sync.Mutex
	records []*recordsDomain.Record
}

func (c *capturedRecords) add(record *recordsDomain.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, record)
}

func TestReencryptUseCase_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("migrates a batch to the active version", func(t *testing.T) {
		f := newReencryptFixture(t)
		sourceSealer, sourceOpener := newSealerOpener(t, 1)
		f.keys.openers[1] = sourceOpener

		values := [][]byte{[]byte("alpha"), []byte("beta"), []byte("gamma")}
		var records []*recordsDomain.Record
		for _, value := range values {
			records = append(records, sealedRecord(t, sourceSealer, value, "token", 1))
		}

		captured := &capturedRecords{}
		f.repo.On("ListByKeyVersion", ctx, uint(1), 100).Return(records, nil)
		f.repo.On("UpdateSealed", mock.Anything, mock.AnythingOfType("*domain.Record"), uint(1)).
			Run(func(args mock.Arguments) {
				captured.add(args.Get(1).(*recordsDomain.Record))
			}).
			Return(true, nil)
		f.repo.On("CountByKeyVersion", ctx, uint(1)).Return(int64(0), nil)

		result, err := f.useCase.Run(ctx, 1)
		require.NoError(t, err)

		assert.Equal(t, int64(3), result.Migrated)
		assert.Equal(t, int64(0), result.Conflicts)
		assert.Equal(t, int64(0), result.Failures)
		assert.True(t, result.Done())

		require.Len(t, captured.records, 3)
		plaintexts := make(map[string]bool)
		for _, record := range captured.records {
			assert.Equal(t, uint(2), record.KeyVersion)
			assert.NotNil(t, record.ReencryptedAt)
			require.NotNil(t, record.MigrationBatchID)
			assert.Equal(t, result.BatchID, *record.MigrationBatchID)

			plaintext, err := f.targetOpener.Open(record.Sealed())
			require.NoError(t, err)
			plaintexts[string(plaintext)] = true
		}
		assert.Len(t, plaintexts, 3)
	})

	t.Run("lost conditional writes count as conflicts, not failures", func(t *testing.T) {
		f := newReencryptFixture(t)
		sourceSealer, sourceOpener := newSealerOpener(t, 1)
		f.keys.openers[1] = sourceOpener
		record := sealedRecord(t, sourceSealer, []byte("raced"), "token", 1)

		f.repo.On("ListByKeyVersion", ctx, uint(1), 100).
			Return([]*recordsDomain.Record{record}, nil)
		f.repo.On("UpdateSealed", mock.Anything, mock.AnythingOfType("*domain.Record"), uint(1)).
			Return(false, nil)
		f.repo.On("CountByKeyVersion", ctx, uint(1)).Return(int64(0), nil)

		result, err := f.useCase.Run(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(0), result.Migrated)
		assert.Equal(t, int64(1), result.Conflicts)
		assert.Equal(t, int64(0), result.Failures)
	})

	t.Run("a tampered record is reported and skipped without stalling the batch", func(t *testing.T) {
		f := newReencryptFixture(t)
		sourceSealer, sourceOpener := newSealerOpener(t, 1)
		f.keys.openers[1] = sourceOpener

		good := sealedRecord(t, sourceSealer, []byte("good"), "token", 1)
		bad := sealedRecord(t, sourceSealer, []byte("bad"), "token", 1)
		bad.Tag[0] ^= 0xff

		f.repo.On("ListByKeyVersion", ctx, uint(1), 100).
			Return([]*recordsDomain.Record{bad, good}, nil)
		f.repo.On("UpdateSealed", mock.Anything, mock.AnythingOfType("*domain.Record"), uint(1)).
			Return(true, nil)
		f.repo.On("CountByKeyVersion", ctx, uint(1)).Return(int64(1), nil)

		result, err := f.useCase.Run(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(1), result.Migrated)
		assert.Equal(t, int64(1), result.Failures)
		assert.False(t, result.Done())
		f.repo.AssertNumberOfCalls(t, "UpdateSealed", 1)
	})

	t.Run("transient write failures are retried", func(t *testing.T) {
		f := newReencryptFixture(t)
		sourceSealer, sourceOpener := newSealerOpener(t, 1)
		f.keys.openers[1] = sourceOpener
		record := sealedRecord(t, sourceSealer, []byte("flaky"), "token", 1)

		f.repo.On("ListByKeyVersion", ctx, uint(1), 100).
			Return([]*recordsDomain.Record{record}, nil)
		f.repo.On("UpdateSealed", mock.Anything, mock.AnythingOfType("*domain.Record"), uint(1)).
			Return(false, apperrors.Transient(apperrors.New("connection reset"), "db write failed")).Once()
		f.repo.On("UpdateSealed", mock.Anything, mock.AnythingOfType("*domain.Record"), uint(1)).
			Return(true, nil).Once()
		f.repo.On("CountByKeyVersion", ctx, uint(1)).Return(int64(0), nil)

		result, err := f.useCase.Run(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(1), result.Migrated)
		assert.Equal(t, int64(0), result.Failures)
	})

	t.Run("refuses when the source is the active_write version", func(t *testing.T) {
		f := newReencryptFixture(t)

		_, err := f.useCase.Run(ctx, 2)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("refuses an unknown source version", func(t *testing.T) {
		f := newReencryptFixture(t)
		delete(f.keys.openers, 1)

		_, err := f.useCase.Run(ctx, 1)
		assert.ErrorIs(t, err, keyringDomain.ErrUnknownKeyVersion)
	})

	t.Run("an empty batch reports only the remaining lag", func(t *testing.T) {
		f := newReencryptFixture(t)

		f.repo.On("ListByKeyVersion", ctx, uint(1), 100).Return([]*recordsDomain.Record{}, nil)
		f.repo.On("CountByKeyVersion", ctx, uint(1)).Return(int64(0), nil)

		result, err := f.useCase.Run(ctx, 1)
		require.NoError(t, err)
		assert.True(t, result.Done())
		assert.Equal(t, int64(0), result.Migrated)
	})
}
