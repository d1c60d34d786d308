package commands

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/pii-vault/internal/crypto/domain"
	keyringDomain "github.com/allisson/pii-vault/internal/keyring/domain"
	keyringMocks "github.com/allisson/pii-vault/internal/keyring/usecase/mocks"
)

func TestRunCreateKeyVersion(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	t.Run("success", func(t *testing.T) {
		mockRegistry := &keyringMocks.MockRegistryUseCase{}
		mockRegistry.On("Create", ctx, cryptoDomain.AESGCM).Return(&keyringDomain.KeyVersion{
			Version:   3,
			State:     keyringDomain.StateFuture,
			Algorithm: cryptoDomain.AESGCM,
		}, nil)

		var out bytes.Buffer
		err := RunCreateKeyVersion(ctx, mockRegistry, logger, &out, "aes-gcm")
		require.NoError(t, err)
		require.Contains(t, out.String(), "created key version 3")
		require.Contains(t, out.String(), "future")
		mockRegistry.AssertExpectations(t)
	})

	t.Run("invalid-algorithm", func(t *testing.T) {
		mockRegistry := &keyringMocks.MockRegistryUseCase{}

		var out bytes.Buffer
		err := RunCreateKeyVersion(ctx, mockRegistry, logger, &out, "invalid")
		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid algorithm")
		mockRegistry.AssertNotCalled(t, "Create")
	})
}
