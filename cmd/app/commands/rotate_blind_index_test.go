package commands

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	recordsUsecase "github.com/allisson/pii-vault/internal/records/usecase"
	recordsMocks "github.com/allisson/pii-vault/internal/records/usecase/mocks"
)

func TestRunRotateBlindIndex(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	t.Run("runs batches until done", func(t *testing.T) {
		mockRotate := &recordsMocks.MockRotateIndexUseCase{}
		mockRotate.On("Run", ctx, uint(1)).Return(&recordsUsecase.MigrationResult{
			BatchID:   uuid.Must(uuid.NewV7()),
			Migrated:  200,
			Remaining: 50,
			Elapsed:   time.Second,
		}, nil).Once()
		mockRotate.On("Run", ctx, uint(1)).Return(&recordsUsecase.MigrationResult{
			BatchID:   uuid.Must(uuid.NewV7()),
			Migrated:  50,
			Remaining: 0,
			Elapsed:   time.Second,
		}, nil).Once()

		err := RunRotateBlindIndex(ctx, mockRotate, logger, 1)
		require.NoError(t, err)
		mockRotate.AssertNumberOfCalls(t, "Run", 2)
	})

	t.Run("stops when a batch makes no progress", func(t *testing.T) {
		mockRotate := &recordsMocks.MockRotateIndexUseCase{}
		mockRotate.On("Run", ctx, uint(1)).Return(&recordsUsecase.MigrationResult{
			BatchID:   uuid.Must(uuid.NewV7()),
			Failures:  1,
			Remaining: 1,
		}, nil)

		err := RunRotateBlindIndex(ctx, mockRotate, logger, 1)
		require.Error(t, err)
		require.Contains(t, err.Error(), "stalled")
	})
}
