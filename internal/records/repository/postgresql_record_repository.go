// Package repository implements record persistence for PostgreSQL and MySQL.
// The conditional updates compare the stored key-version tag and report
// whether a row was written, which is how concurrent overwrites and the
// migration worker stay out of each other's way without locks.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/allisson/pii-vault/internal/database"
	apperrors "github.com/allisson/pii-vault/internal/errors"
	recordsDomain "github.com/allisson/pii-vault/internal/records/domain"
)

// PostgreSQLRecordRepository implements record persistence for PostgreSQL
// using native UUID and BYTEA types.
type PostgreSQLRecordRepository struct {
	db *sql.DB
}

const postgresRecordColumns = `id, ciphertext, wrapped_key, nonce, tag, key_version, index_token, index_key_version, created_at, updated_at, reencrypted_at, migration_batch_id`

// Create inserts a new record.
func (p *PostgreSQLRecordRepository) Create(ctx context.Context, record *recordsDomain.Record) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO pii_records (` + postgresRecordColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := querier.ExecContext(
		ctx,
		query,
		record.ID,
		record.Ciphertext,
		record.WrappedKey,
		record.Nonce,
		record.Tag,
		record.KeyVersion,
		record.IndexToken,
		record.IndexKeyVersion,
		record.CreatedAt,
		record.UpdatedAt,
		record.ReencryptedAt,
		record.MigrationBatchID,
	)
	if err != nil {
		return apperrors.Transient(err, "failed to create record")
	}
	return nil
}

func scanPostgresRecord(scan func(dest ...any) error) (*recordsDomain.Record, error) {
	var record recordsDomain.Record

	err := scan(
		&record.ID,
		&record.Ciphertext,
		&record.WrappedKey,
		&record.Nonce,
		&record.Tag,
		&record.KeyVersion,
		&record.IndexToken,
		&record.IndexKeyVersion,
		&record.CreatedAt,
		&record.UpdatedAt,
		&record.ReencryptedAt,
		&record.MigrationBatchID,
	)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// GetByID retrieves a record by its identifier.
func (p *PostgreSQLRecordRepository) GetByID(ctx context.Context, id uuid.UUID) (*recordsDomain.Record, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + postgresRecordColumns + `
			  FROM pii_records
			  WHERE id = $1`

	row := querier.QueryRowContext(ctx, query, id)
	record, err := scanPostgresRecord(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, recordsDomain.ErrRecordNotFound
		}
		return nil, apperrors.Transient(err, "failed to get record")
	}

	return record, nil
}

// GetByIndexToken retrieves all records matching a blind-index token.
func (p *PostgreSQLRecordRepository) GetByIndexToken(
	ctx context.Context,
	token string,
) ([]*recordsDomain.Record, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + postgresRecordColumns + `
			  FROM pii_records
			  WHERE index_token = $1
			  ORDER BY created_at`

	return p.listRecords(ctx, querier, query, token)
}

// Overwrite replaces all mutable fields of a record unconditionally. Used by
// application overwrites, which always win over in-flight migration.
func (p *PostgreSQLRecordRepository) Overwrite(ctx context.Context, record *recordsDomain.Record) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE pii_records
			  SET ciphertext = $1,
			  	  wrapped_key = $2,
				  nonce = $3,
				  tag = $4,
				  key_version = $5,
				  index_token = $6,
				  index_key_version = $7,
				  updated_at = $8,
				  reencrypted_at = $9,
				  migration_batch_id = $10
			  WHERE id = $11`

	result, err := querier.ExecContext(
		ctx,
		query,
		record.Ciphertext,
		record.WrappedKey,
		record.Nonce,
		record.Tag,
		record.KeyVersion,
		record.IndexToken,
		record.IndexKeyVersion,
		record.UpdatedAt,
		record.ReencryptedAt,
		record.MigrationBatchID,
		record.ID,
	)
	if err != nil {
		return apperrors.Transient(err, "failed to overwrite record")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Transient(err, "failed to overwrite record")
	}
	if affected == 0 {
		return recordsDomain.ErrRecordNotFound
	}
	return nil
}

// UpdateSealed writes the sealed fields only if the stored key version still
// matches expectedKeyVersion. Returns false when another writer got there
// first; the caller treats that as a benign conflict.
func (p *PostgreSQLRecordRepository) UpdateSealed(
	ctx context.Context,
	record *recordsDomain.Record,
	expectedKeyVersion uint,
) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE pii_records
			  SET ciphertext = $1,
			  	  wrapped_key = $2,
				  nonce = $3,
				  tag = $4,
				  key_version = $5,
				  updated_at = $6,
				  reencrypted_at = $7,
				  migration_batch_id = $8
			  WHERE id = $9 AND key_version = $10`

	result, err := querier.ExecContext(
		ctx,
		query,
		record.Ciphertext,
		record.WrappedKey,
		record.Nonce,
		record.Tag,
		record.KeyVersion,
		record.UpdatedAt,
		record.ReencryptedAt,
		record.MigrationBatchID,
		record.ID,
		expectedKeyVersion,
	)
	if err != nil {
		return false, apperrors.Transient(err, "failed to update sealed record")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.Transient(err, "failed to update sealed record")
	}
	return affected == 1, nil
}

// UpdateIndexToken rewrites the blind-index token only if the stored index
// key version still matches expectedIndexKeyVersion.
func (p *PostgreSQLRecordRepository) UpdateIndexToken(
	ctx context.Context,
	record *recordsDomain.Record,
	expectedIndexKeyVersion uint,
) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE pii_records
			  SET index_token = $1,
			  	  index_key_version = $2,
				  updated_at = $3
			  WHERE id = $4 AND index_key_version = $5`

	result, err := querier.ExecContext(
		ctx,
		query,
		record.IndexToken,
		record.IndexKeyVersion,
		record.UpdatedAt,
		record.ID,
		expectedIndexKeyVersion,
	)
	if err != nil {
		return false, apperrors.Transient(err, "failed to update index token")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.Transient(err, "failed to update index token")
	}
	return affected == 1, nil
}

// ListByKeyVersion retrieves up to limit records sealed under a key version,
// oldest updated first.
func (p *PostgreSQLRecordRepository) ListByKeyVersion(
	ctx context.Context,
	version uint,
	limit int,
) ([]*recordsDomain.Record, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + postgresRecordColumns + `
			  FROM pii_records
			  WHERE key_version = $1
			  ORDER BY updated_at
			  LIMIT $2`

	return p.listRecords(ctx, querier, query, version, limit)
}

// CountByKeyVersion counts records sealed under a key version.
func (p *PostgreSQLRecordRepository) CountByKeyVersion(ctx context.Context, version uint) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT COUNT(*) FROM pii_records WHERE key_version = $1`

	var count int64
	if err := querier.QueryRowContext(ctx, query, version).Scan(&count); err != nil {
		return 0, apperrors.Transient(err, "failed to count records by key version")
	}
	return count, nil
}

// ListByIndexKeyVersion retrieves up to limit records whose token is keyed
// under an index key version, oldest updated first.
func (p *PostgreSQLRecordRepository) ListByIndexKeyVersion(
	ctx context.Context,
	version uint,
	limit int,
) ([]*recordsDomain.Record, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + postgresRecordColumns + `
			  FROM pii_records
			  WHERE index_key_version = $1
			  ORDER BY updated_at
			  LIMIT $2`

	return p.listRecords(ctx, querier, query, version, limit)
}

// CountByIndexKeyVersion counts records whose token is keyed under an index
// key version.
func (p *PostgreSQLRecordRepository) CountByIndexKeyVersion(ctx context.Context, version uint) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT COUNT(*) FROM pii_records WHERE index_key_version = $1`

	var count int64
	if err := querier.QueryRowContext(ctx, query, version).Scan(&count); err != nil {
		return 0, apperrors.Transient(err, "failed to count records by index key version")
	}
	return count, nil
}

// Delete removes a record.
func (p *PostgreSQLRecordRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM pii_records WHERE id = $1`, id)
	if err != nil {
		return apperrors.Transient(err, "failed to delete record")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Transient(err, "failed to delete record")
	}
	if affected == 0 {
		return recordsDomain.ErrRecordNotFound
	}
	return nil
}

func (p *PostgreSQLRecordRepository) listRecords(
	ctx context.Context,
	querier database.Querier,
	query string,
	args ...any,
) ([]*recordsDomain.Record, error) {
	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Transient(err, "failed to list records")
	}
	defer func() {
		_ = rows.Close()
	}()

	var records []*recordsDomain.Record
	for rows.Next() {
		record, err := scanPostgresRecord(rows.Scan)
		if err != nil {
			return nil, apperrors.Transient(err, "failed to scan record")
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Transient(err, "failed to list records")
	}

	return records, nil
}

// NewPostgreSQLRecordRepository creates a new PostgreSQL record repository.
func NewPostgreSQLRecordRepository(db *sql.DB) *PostgreSQLRecordRepository {
	return &PostgreSQLRecordRepository{db: db}
}
