package commands

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	recordsUsecase "github.com/allisson/pii-vault/internal/records/usecase"
	recordsMocks "github.com/allisson/pii-vault/internal/records/usecase/mocks"
)

func TestRunReencryptRecords(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	t.Run("runs batches until done", func(t *testing.T) {
		mockReencrypt := &recordsMocks.MockReencryptUseCase{}
		mockReencrypt.On("Run", ctx, uint(1)).Return(&recordsUsecase.MigrationResult{
			BatchID:   uuid.Must(uuid.NewV7()),
			Migrated:  500,
			Remaining: 120,
			Elapsed:   time.Second,
		}, nil).Once()
		mockReencrypt.On("Run", ctx, uint(1)).Return(&recordsUsecase.MigrationResult{
			BatchID:   uuid.Must(uuid.NewV7()),
			Migrated:  120,
			Remaining: 0,
			Elapsed:   time.Second,
		}, nil).Once()

		err := RunReencryptRecords(ctx, mockReencrypt, logger, 1)
		require.NoError(t, err)
		mockReencrypt.AssertNumberOfCalls(t, "Run", 2)
	})

	t.Run("stops when a batch makes no progress", func(t *testing.T) {
		mockReencrypt := &recordsMocks.MockReencryptUseCase{}
		mockReencrypt.On("Run", ctx, uint(1)).Return(&recordsUsecase.MigrationResult{
			BatchID:   uuid.Must(uuid.NewV7()),
			Failures:  3,
			Remaining: 3,
		}, nil)

		err := RunReencryptRecords(ctx, mockReencrypt, logger, 1)
		require.Error(t, err)
		require.Contains(t, err.Error(), "stalled")
		mockReencrypt.AssertNumberOfCalls(t, "Run", 1)
	})

	t.Run("propagates batch errors", func(t *testing.T) {
		mockReencrypt := &recordsMocks.MockReencryptUseCase{}
		mockReencrypt.On("Run", ctx, uint(1)).Return(nil, errors.New("boom"))

		err := RunReencryptRecords(ctx, mockReencrypt, logger, 1)
		require.Error(t, err)
	})

	t.Run("conflicts alone still count as progress", func(t *testing.T) {
		mockReencrypt := &recordsMocks.MockReencryptUseCase{}
		mockReencrypt.On("Run", ctx, uint(1)).Return(&recordsUsecase.MigrationResult{
			BatchID:   uuid.Must(uuid.NewV7()),
			Conflicts: 2,
			Remaining: 2,
		}, nil).Once()
		mockReencrypt.On("Run", ctx, uint(1)).Return(&recordsUsecase.MigrationResult{
			BatchID:   uuid.Must(uuid.NewV7()),
			Migrated:  2,
			Remaining: 0,
		}, nil).Once()

		err := RunReencryptRecords(ctx, mockReencrypt, logger, 1)
		require.NoError(t, err)
		mockReencrypt.AssertNumberOfCalls(t, "Run", 2)
	})
}
