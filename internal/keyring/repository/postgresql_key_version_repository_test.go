package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/pii-vault/internal/crypto/domain"
	"github.com/allisson/pii-vault/internal/database"
	apperrors "github.com/allisson/pii-vault/internal/errors"
	keyringDomain "github.com/allisson/pii-vault/internal/keyring/domain"
	"github.com/allisson/pii-vault/internal/testutil"
)

func newTestKeyVersion(version uint, state keyringDomain.State) *keyringDomain.KeyVersion {
	return &keyringDomain.KeyVersion{
		ID:                  uuid.Must(uuid.NewV7()),
		Version:             version,
		State:               state,
		Algorithm:           cryptoDomain.AESGCM,
		PublicKeyPEM:        []byte("-----BEGIN PUBLIC KEY-----\ntest\n-----END PUBLIC KEY-----\n"),
		EncryptedPrivateKey: []byte("wrapped-private-key"),
		CreatedAt:           time.Now().UTC(),
	}
}

func TestPostgreSQLKeyVersionRepository_Create(t *testing.T) {
	testutil.SkipIfNoPostgres(t)

	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLKeyVersionRepository(db)
	ctx := context.Background()

	kv := newTestKeyVersion(1, keyringDomain.StateFuture)
	err := repo.Create(ctx, kv)
	require.NoError(t, err)

	read, err := repo.GetByVersion(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, kv.ID, read.ID)
	assert.Equal(t, kv.Version, read.Version)
	assert.Equal(t, keyringDomain.StateFuture, read.State)
	assert.Equal(t, cryptoDomain.AESGCM, read.Algorithm)
	assert.Equal(t, kv.PublicKeyPEM, read.PublicKeyPEM)
	assert.Equal(t, kv.EncryptedPrivateKey, read.EncryptedPrivateKey)
	assert.WithinDuration(t, kv.CreatedAt, read.CreatedAt, time.Second)
	assert.Nil(t, read.PromotedAt)
	assert.Nil(t, read.RetiredAt)
}

func TestPostgreSQLKeyVersionRepository_Create_DuplicateVersion(t *testing.T) {
	testutil.SkipIfNoPostgres(t)

	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLKeyVersionRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTestKeyVersion(1, keyringDomain.StateFuture)))

	err := repo.Create(ctx, newTestKeyVersion(1, keyringDomain.StateFuture))
	assert.Error(t, err, "should fail due to unique version constraint")
	assert.ErrorIs(t, err, apperrors.ErrTransient)
}

func TestPostgreSQLKeyVersionRepository_GetByVersion_NotFound(t *testing.T) {
	testutil.SkipIfNoPostgres(t)

	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLKeyVersionRepository(db)

	kv, err := repo.GetByVersion(context.Background(), 42)
	assert.Nil(t, kv)
	assert.ErrorIs(t, err, keyringDomain.ErrUnknownKeyVersion)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestPostgreSQLKeyVersionRepository_GetActive(t *testing.T) {
	testutil.SkipIfNoPostgres(t)

	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLKeyVersionRepository(db)
	ctx := context.Background()

	t.Run("no active version", func(t *testing.T) {
		_, err := repo.GetActive(ctx)
		assert.ErrorIs(t, err, keyringDomain.ErrNoActiveKeyVersion)
		assert.ErrorIs(t, err, apperrors.ErrFatalConfig)
	})

	t.Run("returns the active_write version", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, newTestKeyVersion(1, keyringDomain.StateDecryptOnly)))
		active := newTestKeyVersion(2, keyringDomain.StateActiveWrite)
		require.NoError(t, repo.Create(ctx, active))

		read, err := repo.GetActive(ctx)
		require.NoError(t, err)
		assert.Equal(t, active.ID, read.ID)
		assert.Equal(t, uint(2), read.Version)
	})
}

func TestPostgreSQLKeyVersionRepository_List(t *testing.T) {
	testutil.SkipIfNoPostgres(t)

	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLKeyVersionRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTestKeyVersion(1, keyringDomain.StateRetired)))
	require.NoError(t, repo.Create(ctx, newTestKeyVersion(2, keyringDomain.StateDecryptOnly)))
	require.NoError(t, repo.Create(ctx, newTestKeyVersion(3, keyringDomain.StateActiveWrite)))

	keyVersions, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, keyVersions, 3)

	// Newest first
	assert.Equal(t, uint(3), keyVersions[0].Version)
	assert.Equal(t, uint(2), keyVersions[1].Version)
	assert.Equal(t, uint(1), keyVersions[2].Version)
}

func TestPostgreSQLKeyVersionRepository_Update(t *testing.T) {
	testutil.SkipIfNoPostgres(t)

	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLKeyVersionRepository(db)
	ctx := context.Background()

	kv := newTestKeyVersion(1, keyringDomain.StateFuture)
	require.NoError(t, repo.Create(ctx, kv))

	require.NoError(t, kv.TransitionTo(keyringDomain.StateActiveWrite, time.Now().UTC()))
	require.NoError(t, repo.Update(ctx, kv))

	read, err := repo.GetByVersion(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, keyringDomain.StateActiveWrite, read.State)
	require.NotNil(t, read.PromotedAt)
	assert.WithinDuration(t, *kv.PromotedAt, *read.PromotedAt, time.Second)
	assert.Nil(t, read.RetiredAt)
}

func TestPostgreSQLKeyVersionRepository_Update_WithTransactionRollback(t *testing.T) {
	testutil.SkipIfNoPostgres(t)

	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLKeyVersionRepository(db)
	ctx := context.Background()

	active := newTestKeyVersion(1, keyringDomain.StateActiveWrite)
	next := newTestKeyVersion(2, keyringDomain.StateFuture)
	require.NoError(t, repo.Create(ctx, active))
	require.NoError(t, repo.Create(ctx, next))

	// A failed rotation must leave both versions untouched.
	txManager := database.NewTxManager(db)
	err := txManager.WithTx(ctx, func(txCtx context.Context) error {
		now := time.Now().UTC()
		require.NoError(t, active.TransitionTo(keyringDomain.StateDecryptOnly, now))
		if err := repo.Update(txCtx, active); err != nil {
			return err
		}
		return apperrors.New("boom")
	})
	require.Error(t, err)

	read, err := repo.GetByVersion(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, keyringDomain.StateActiveWrite, read.State, "rollback should restore the active version")
}
