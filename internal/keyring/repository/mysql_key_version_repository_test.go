package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	keyringDomain "github.com/allisson/pii-vault/internal/keyring/domain"
	"github.com/allisson/pii-vault/internal/testutil"
)

func TestMySQLKeyVersionRepository_CreateAndGet(t *testing.T) {
	testutil.SkipIfNoMySQL(t)

	db := testutil.SetupMySQLDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupMySQLDB(t, db)

	repo := NewMySQLKeyVersionRepository(db)
	ctx := context.Background()

	kv := newTestKeyVersion(1, keyringDomain.StateFuture)
	require.NoError(t, repo.Create(ctx, kv))

	read, err := repo.GetByVersion(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, kv.ID, read.ID)
	assert.Equal(t, kv.PublicKeyPEM, read.PublicKeyPEM)
	assert.Equal(t, kv.EncryptedPrivateKey, read.EncryptedPrivateKey)
	assert.Equal(t, keyringDomain.StateFuture, read.State)
}

func TestMySQLKeyVersionRepository_GetByVersion_NotFound(t *testing.T) {
	testutil.SkipIfNoMySQL(t)

	db := testutil.SetupMySQLDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupMySQLDB(t, db)

	repo := NewMySQLKeyVersionRepository(db)

	_, err := repo.GetByVersion(context.Background(), 42)
	assert.ErrorIs(t, err, keyringDomain.ErrUnknownKeyVersion)
}

func TestMySQLKeyVersionRepository_GetActive(t *testing.T) {
	testutil.SkipIfNoMySQL(t)

	db := testutil.SetupMySQLDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupMySQLDB(t, db)

	repo := NewMySQLKeyVersionRepository(db)
	ctx := context.Background()

	_, err := repo.GetActive(ctx)
	assert.ErrorIs(t, err, keyringDomain.ErrNoActiveKeyVersion)

	active := newTestKeyVersion(1, keyringDomain.StateActiveWrite)
	require.NoError(t, repo.Create(ctx, active))

	read, err := repo.GetActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, active.ID, read.ID)
}

func TestMySQLKeyVersionRepository_ListAndUpdate(t *testing.T) {
	testutil.SkipIfNoMySQL(t)

	db := testutil.SetupMySQLDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupMySQLDB(t, db)

	repo := NewMySQLKeyVersionRepository(db)
	ctx := context.Background()

	kv1 := newTestKeyVersion(1, keyringDomain.StateActiveWrite)
	kv2 := newTestKeyVersion(2, keyringDomain.StateFuture)
	require.NoError(t, repo.Create(ctx, kv1))
	require.NoError(t, repo.Create(ctx, kv2))

	keyVersions, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, keyVersions, 2)
	assert.Equal(t, uint(2), keyVersions[0].Version)

	now := time.Now().UTC()
	require.NoError(t, kv1.TransitionTo(keyringDomain.StateDecryptOnly, now))
	require.NoError(t, repo.Update(ctx, kv1))

	read, err := repo.GetByVersion(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, keyringDomain.StateDecryptOnly, read.State)
}
