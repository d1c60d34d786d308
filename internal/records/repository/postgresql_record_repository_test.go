package repository

import (
	"context"
	"crypto/rand"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/pii-vault/internal/errors"
	recordsDomain "github.com/allisson/pii-vault/internal/records/domain"
	"github.com/allisson/pii-vault/internal/testutil"
)

func randomBytes(t *testing.T, n int) []byte {
	t.Helper()

	b := make([]byte, n)
	_, err := rand.Read(b)
	require.NoError(t, err)
	return b
}

func newTestRecord(t *testing.T, keyVersion, indexKeyVersion uint, token string) *recordsDomain.Record {
	t.Helper()

	now := time.Now().UTC()
	return &recordsDomain.Record{
		ID:              uuid.Must(uuid.NewV7()),
		Ciphertext:      randomBytes(t, 48),
		WrappedKey:      randomBytes(t, 256),
		Nonce:           randomBytes(t, 12),
		Tag:             randomBytes(t, 16),
		KeyVersion:      keyVersion,
		IndexToken:      token,
		IndexKeyVersion: indexKeyVersion,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func setupRecordFixtures(t *testing.T, db *sql.DB) {
	t.Helper()

	testutil.CreateTestKeyVersion(t, db, "postgres", 1, "decrypt_only")
	testutil.CreateTestKeyVersion(t, db, "postgres", 2, "active_write")
	testutil.CreateTestIndexKey(t, db, "postgres", 1, "decrypt_only")
	testutil.CreateTestIndexKey(t, db, "postgres", 2, "active_write")
}

func TestPostgreSQLRecordRepository_CreateAndGet(t *testing.T) {
	testutil.SkipIfNoPostgres(t)

	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)
	setupRecordFixtures(t, db)

	repo := NewPostgreSQLRecordRepository(db)
	ctx := context.Background()

	record := newTestRecord(t, 1, 1, "token-a")
	require.NoError(t, repo.Create(ctx, record))

	read, err := repo.GetByID(ctx, record.ID)
	require.NoError(t, err)

	assert.Equal(t, record.ID, read.ID)
	assert.Equal(t, record.Ciphertext, read.Ciphertext)
	assert.Equal(t, record.WrappedKey, read.WrappedKey)
	assert.Equal(t, record.Nonce, read.Nonce)
	assert.Equal(t, record.Tag, read.Tag)
	assert.Equal(t, uint(1), read.KeyVersion)
	assert.Equal(t, "token-a", read.IndexToken)
	assert.Equal(t, uint(1), read.IndexKeyVersion)
	assert.WithinDuration(t, record.CreatedAt, read.CreatedAt, time.Second)
	assert.Nil(t, read.ReencryptedAt)
	assert.Nil(t, read.MigrationBatchID)
}

func TestPostgreSQLRecordRepository_GetByID_NotFound(t *testing.T) {
	testutil.SkipIfNoPostgres(t)

	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLRecordRepository(db)

	record, err := repo.GetByID(context.Background(), uuid.Must(uuid.NewV7()))
	assert.Nil(t, record)
	assert.ErrorIs(t, err, recordsDomain.ErrRecordNotFound)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestPostgreSQLRecordRepository_UpdateSealed(t *testing.T) {
	testutil.SkipIfNoPostgres(t)

	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)
	setupRecordFixtures(t, db)

	repo := NewPostgreSQLRecordRepository(db)
	ctx := context.Background()

	record := newTestRecord(t, 1, 1, "token-a")
	require.NoError(t, repo.Create(ctx, record))

	// Simulate the migration worker moving the record to version 2.
	migrated := *record
	now := time.Now().UTC()
	batchID := uuid.Must(uuid.NewV7())
	migrated.Ciphertext = randomBytes(t, 48)
	migrated.WrappedKey = randomBytes(t, 256)
	migrated.Nonce = randomBytes(t, 12)
	migrated.Tag = randomBytes(t, 16)
	migrated.KeyVersion = 2
	migrated.UpdatedAt = now
	migrated.ReencryptedAt = &now
	migrated.MigrationBatchID = &batchID

	won, err := repo.UpdateSealed(ctx, &migrated, 1)
	require.NoError(t, err)
	assert.True(t, won)

	read, err := repo.GetByID(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(2), read.KeyVersion)
	assert.Equal(t, migrated.Ciphertext, read.Ciphertext)
	require.NotNil(t, read.ReencryptedAt)
	require.NotNil(t, read.MigrationBatchID)
	assert.Equal(t, batchID, *read.MigrationBatchID)

	// The record no longer carries version 1: a second conditional write
	// against the stale version must not land.
	won, err = repo.UpdateSealed(ctx, &migrated, 1)
	require.NoError(t, err)
	assert.False(t, won)

	read, err = repo.GetByID(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(2), read.KeyVersion)
}

func TestPostgreSQLRecordRepository_UpdateIndexToken(t *testing.T) {
	testutil.SkipIfNoPostgres(t)

	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)
	setupRecordFixtures(t, db)

	repo := NewPostgreSQLRecordRepository(db)
	ctx := context.Background()

	record := newTestRecord(t, 1, 1, "token-old")
	require.NoError(t, repo.Create(ctx, record))

	retokenized := *record
	retokenized.IndexToken = "token-new"
	retokenized.IndexKeyVersion = 2
	retokenized.UpdatedAt = time.Now().UTC()

	won, err := repo.UpdateIndexToken(ctx, &retokenized, 1)
	require.NoError(t, err)
	assert.True(t, won)

	read, err := repo.GetByID(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, "token-new", read.IndexToken)
	assert.Equal(t, uint(2), read.IndexKeyVersion)
	// The sealed fields are untouched by index rotation.
	assert.Equal(t, record.Ciphertext, read.Ciphertext)
	assert.Equal(t, uint(1), read.KeyVersion)

	won, err = repo.UpdateIndexToken(ctx, &retokenized, 1)
	require.NoError(t, err)
	assert.False(t, won)
}

func TestPostgreSQLRecordRepository_Overwrite(t *testing.T) {
	testutil.SkipIfNoPostgres(t)

	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)
	setupRecordFixtures(t, db)

	repo := NewPostgreSQLRecordRepository(db)
	ctx := context.Background()

	record := newTestRecord(t, 1, 1, "token-a")
	require.NoError(t, repo.Create(ctx, record))

	record.Ciphertext = randomBytes(t, 48)
	record.KeyVersion = 2
	record.IndexToken = "token-b"
	record.IndexKeyVersion = 2
	record.UpdatedAt = time.Now().UTC()
	require.NoError(t, repo.Overwrite(ctx, record))

	read, err := repo.GetByID(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, record.Ciphertext, read.Ciphertext)
	assert.Equal(t, uint(2), read.KeyVersion)
	assert.Equal(t, "token-b", read.IndexToken)

	missing := newTestRecord(t, 1, 1, "token-c")
	assert.ErrorIs(t, repo.Overwrite(ctx, missing), recordsDomain.ErrRecordNotFound)
}

func TestPostgreSQLRecordRepository_ListAndCount(t *testing.T) {
	testutil.SkipIfNoPostgres(t)

	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)
	setupRecordFixtures(t, db)

	repo := NewPostgreSQLRecordRepository(db)
	ctx := context.Background()

	older := newTestRecord(t, 1, 1, "token-a")
	older.UpdatedAt = time.Now().UTC().Add(-time.Hour)
	newer := newTestRecord(t, 1, 1, "token-b")
	other := newTestRecord(t, 2, 2, "token-c")
	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))
	require.NoError(t, repo.Create(ctx, other))

	records, err := repo.ListByKeyVersion(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, older.ID, records[0].ID, "oldest updated record comes first")
	assert.Equal(t, newer.ID, records[1].ID)

	records, err = repo.ListByKeyVersion(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, older.ID, records[0].ID)

	count, err := repo.CountByKeyVersion(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	records, err = repo.ListByIndexKeyVersion(ctx, 2, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, other.ID, records[0].ID)

	count, err = repo.CountByIndexKeyVersion(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestPostgreSQLRecordRepository_GetByIndexToken(t *testing.T) {
	testutil.SkipIfNoPostgres(t)

	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)
	setupRecordFixtures(t, db)

	repo := NewPostgreSQLRecordRepository(db)
	ctx := context.Background()

	matching := newTestRecord(t, 1, 1, "token-shared")
	other := newTestRecord(t, 1, 1, "token-other")
	require.NoError(t, repo.Create(ctx, matching))
	require.NoError(t, repo.Create(ctx, other))

	records, err := repo.GetByIndexToken(ctx, "token-shared")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, matching.ID, records[0].ID)

	records, err = repo.GetByIndexToken(ctx, "token-missing")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestPostgreSQLRecordRepository_Delete(t *testing.T) {
	testutil.SkipIfNoPostgres(t)

	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)
	setupRecordFixtures(t, db)

	repo := NewPostgreSQLRecordRepository(db)
	ctx := context.Background()

	record := newTestRecord(t, 1, 1, "token-a")
	require.NoError(t, repo.Create(ctx, record))

	require.NoError(t, repo.Delete(ctx, record.ID))
	assert.ErrorIs(t, repo.Delete(ctx, record.ID), recordsDomain.ErrRecordNotFound)

	_, err := repo.GetByID(ctx, record.ID)
	assert.ErrorIs(t, err, recordsDomain.ErrRecordNotFound)
}
