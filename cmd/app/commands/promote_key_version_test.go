package commands

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	keyringDomain "github.com/allisson/pii-vault/internal/keyring/domain"
	keyringMocks "github.com/allisson/pii-vault/internal/keyring/usecase/mocks"
)

func TestRunPromoteKeyVersion(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	t.Run("success", func(t *testing.T) {
		mockRegistry := &keyringMocks.MockRegistryUseCase{}
		mockRegistry.On("Promote", ctx, uint(2)).Return(nil)

		err := RunPromoteKeyVersion(ctx, mockRegistry, logger, 2)
		require.NoError(t, err)
		mockRegistry.AssertExpectations(t)
	})

	t.Run("invalid-transition", func(t *testing.T) {
		mockRegistry := &keyringMocks.MockRegistryUseCase{}
		mockRegistry.On("Promote", ctx, uint(2)).Return(keyringDomain.ErrInvalidTransition)

		err := RunPromoteKeyVersion(ctx, mockRegistry, logger, 2)
		require.Error(t, err)
		require.ErrorIs(t, err, keyringDomain.ErrInvalidTransition)
	})
}

func TestRunRollbackKeyVersion(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	mockRegistry := &keyringMocks.MockRegistryUseCase{}
	mockRegistry.On("Rollback", ctx, uint(1)).Return(nil)

	err := RunRollbackKeyVersion(ctx, mockRegistry, logger, 1)
	require.NoError(t, err)
	mockRegistry.AssertExpectations(t)
}
