package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/pii-vault/internal/crypto/domain"
	keyringDomain "github.com/allisson/pii-vault/internal/keyring/domain"
)

// localKeeperURI is a gocloud.dev localsecrets keeper for tests (32-byte key).
const localKeeperURI = "base64key://smGbjm71Nxd1Ig5FS0wj9SlbzAIrnolCz9bQQ6uAhl4="

func testKeeper(t *testing.T) keyringDomain.KMSKeeper {
	t.Helper()

	keeper, err := NewKMSService().OpenKeeper(context.Background(), localKeeperURI)
	require.NoError(t, err)
	t.Cleanup(func() { _ = keeper.Close() })
	return keeper
}

func TestKMSService_OpenKeeper(t *testing.T) {
	t.Run("opens localsecrets keeper", func(t *testing.T) {
		keeper := testKeeper(t)
		assert.NotNil(t, keeper)
	})

	t.Run("rejects invalid URI", func(t *testing.T) {
		_, err := NewKMSService().OpenKeeper(context.Background(), "bogus://nope")
		assert.Error(t, err)
	})
}

func TestMaterialService_GenerateAndUnwrap(t *testing.T) {
	ctx := context.Background()
	svc := NewMaterialService(testKeeper(t))

	publicKeyPEM, encryptedPrivateKey, err := svc.Generate(ctx)
	require.NoError(t, err)
	assert.Contains(t, string(publicKeyPEM), "BEGIN PUBLIC KEY")
	assert.NotEmpty(t, encryptedPrivateKey)

	kv := &keyringDomain.KeyVersion{
		ID:                  uuid.Must(uuid.NewV7()),
		Version:             1,
		State:               keyringDomain.StateActiveWrite,
		Algorithm:           cryptoDomain.AESGCM,
		PublicKeyPEM:        publicKeyPEM,
		EncryptedPrivateKey: encryptedPrivateKey,
		CreatedAt:           time.Now().UTC(),
	}

	priv, err := svc.Unwrap(ctx, kv)
	require.NoError(t, err)
	assert.Equal(t, cryptoDomain.RSAKeySize, priv.N.BitLen())
}

func TestMaterialService_Symmetric(t *testing.T) {
	ctx := context.Background()
	svc := NewMaterialService(testKeeper(t))

	encrypted, err := svc.GenerateSymmetric(ctx)
	require.NoError(t, err)

	key, err := svc.UnwrapSymmetric(ctx, encrypted)
	require.NoError(t, err)
	assert.Len(t, key, cryptoDomain.KeySize)

	// Two generations never produce the same wrapped material.
	other, err := svc.GenerateSymmetric(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, encrypted, other)
}
