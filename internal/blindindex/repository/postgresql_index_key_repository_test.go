package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	blindindexDomain "github.com/allisson/pii-vault/internal/blindindex/domain"
	keyringDomain "github.com/allisson/pii-vault/internal/keyring/domain"
	"github.com/allisson/pii-vault/internal/testutil"
)

func newTestIndexKey(version uint, state keyringDomain.State) *blindindexDomain.IndexKey {
	return &blindindexDomain.IndexKey{
		ID:           uuid.Must(uuid.NewV7()),
		Version:      version,
		State:        state,
		EncryptedKey: []byte("wrapped-hmac-key"),
		CreatedAt:    time.Now().UTC(),
	}
}

func TestPostgreSQLIndexKeyRepository_CreateAndGet(t *testing.T) {
	testutil.SkipIfNoPostgres(t)

	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLIndexKeyRepository(db)
	ctx := context.Background()

	key := newTestIndexKey(1, keyringDomain.StateFuture)
	require.NoError(t, repo.Create(ctx, key))

	read, err := repo.GetByVersion(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, key.ID, read.ID)
	assert.Equal(t, key.EncryptedKey, read.EncryptedKey)
	assert.Equal(t, keyringDomain.StateFuture, read.State)
	assert.Nil(t, read.PromotedAt)
}

func TestPostgreSQLIndexKeyRepository_GetByVersion_NotFound(t *testing.T) {
	testutil.SkipIfNoPostgres(t)

	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLIndexKeyRepository(db)

	_, err := repo.GetByVersion(context.Background(), 42)
	assert.ErrorIs(t, err, blindindexDomain.ErrUnknownIndexKey)
}

func TestPostgreSQLIndexKeyRepository_GetActive(t *testing.T) {
	testutil.SkipIfNoPostgres(t)

	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLIndexKeyRepository(db)
	ctx := context.Background()

	_, err := repo.GetActive(ctx)
	assert.ErrorIs(t, err, blindindexDomain.ErrNoActiveIndexKey)

	active := newTestIndexKey(1, keyringDomain.StateActiveWrite)
	require.NoError(t, repo.Create(ctx, active))

	read, err := repo.GetActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, active.ID, read.ID)
}

func TestPostgreSQLIndexKeyRepository_ListAndUpdate(t *testing.T) {
	testutil.SkipIfNoPostgres(t)

	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLIndexKeyRepository(db)
	ctx := context.Background()

	key1 := newTestIndexKey(1, keyringDomain.StateActiveWrite)
	key2 := newTestIndexKey(2, keyringDomain.StateFuture)
	require.NoError(t, repo.Create(ctx, key1))
	require.NoError(t, repo.Create(ctx, key2))

	keys, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, keys, 2)
	assert.Equal(t, uint(2), keys[0].Version)

	now := time.Now().UTC()
	require.NoError(t, key1.TransitionTo(keyringDomain.StateDecryptOnly, now))
	require.NoError(t, repo.Update(ctx, key1))

	read, err := repo.GetByVersion(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, keyringDomain.StateDecryptOnly, read.State)
}
