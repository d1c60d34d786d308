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

// MySQLRecordRepository implements record persistence for MySQL.
// Uses BINARY(16) for UUIDs and BLOB for binary data.
type MySQLRecordRepository struct {
	db *sql.DB
}

const mysqlRecordColumns = `id, ciphertext, wrapped_key, nonce, tag, key_version, index_token, index_key_version, created_at, updated_at, reencrypted_at, migration_batch_id`

func marshalOptionalUUID(id *uuid.UUID) (any, error) {
	if id == nil {
		return nil, nil
	}
	return id.MarshalBinary()
}

func unmarshalOptionalUUID(raw []byte) (*uuid.UUID, error) {
	if raw == nil {
		return nil, nil
	}
	var id uuid.UUID
	if err := id.UnmarshalBinary(raw); err != nil {
		return nil, err
	}
	return &id, nil
}

// Create inserts a new record.
func (m *MySQLRecordRepository) Create(ctx context.Context, record *recordsDomain.Record) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO pii_records (` + mysqlRecordColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	id, err := record.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal record id")
	}
	batchID, err := marshalOptionalUUID(record.MigrationBatchID)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal migration batch id")
	}

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
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
		batchID,
	)
	if err != nil {
		return apperrors.Transient(err, "failed to create record")
	}
	return nil
}

func scanMySQLRecord(scan func(dest ...any) error) (*recordsDomain.Record, error) {
	var record recordsDomain.Record
	var idBytes, batchBytes []byte

	err := scan(
		&idBytes,
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
		&batchBytes,
	)
	if err != nil {
		return nil, err
	}

	if err := record.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal record id")
	}
	batchID, err := unmarshalOptionalUUID(batchBytes)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal migration batch id")
	}
	record.MigrationBatchID = batchID

	return &record, nil
}

// GetByID retrieves a record by its identifier.
func (m *MySQLRecordRepository) GetByID(ctx context.Context, id uuid.UUID) (*recordsDomain.Record, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + mysqlRecordColumns + `
			  FROM pii_records
			  WHERE id = ?`

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal record id")
	}

	row := querier.QueryRowContext(ctx, query, idBytes)
	record, err := scanMySQLRecord(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, recordsDomain.ErrRecordNotFound
		}
		return nil, apperrors.Transient(err, "failed to get record")
	}

	return record, nil
}

// GetByIndexToken retrieves all records matching a blind-index token.
func (m *MySQLRecordRepository) GetByIndexToken(
	ctx context.Context,
	token string,
) ([]*recordsDomain.Record, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + mysqlRecordColumns + `
			  FROM pii_records
			  WHERE index_token = ?
			  ORDER BY created_at`

	return m.listRecords(ctx, querier, query, token)
}

// Overwrite replaces all mutable fields of a record unconditionally. Used by
// application overwrites, which always win over in-flight migration.
func (m *MySQLRecordRepository) Overwrite(ctx context.Context, record *recordsDomain.Record) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE pii_records
			  SET ciphertext = ?,
			  	  wrapped_key = ?,
				  nonce = ?,
				  tag = ?,
				  key_version = ?,
				  index_token = ?,
				  index_key_version = ?,
				  updated_at = ?,
				  reencrypted_at = ?,
				  migration_batch_id = ?
			  WHERE id = ?`

	id, err := record.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal record id")
	}
	batchID, err := marshalOptionalUUID(record.MigrationBatchID)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal migration batch id")
	}

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
		batchID,
		id,
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
func (m *MySQLRecordRepository) UpdateSealed(
	ctx context.Context,
	record *recordsDomain.Record,
	expectedKeyVersion uint,
) (bool, error) {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE pii_records
			  SET ciphertext = ?,
			  	  wrapped_key = ?,
				  nonce = ?,
				  tag = ?,
				  key_version = ?,
				  updated_at = ?,
				  reencrypted_at = ?,
				  migration_batch_id = ?
			  WHERE id = ? AND key_version = ?`

	id, err := record.ID.MarshalBinary()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to marshal record id")
	}
	batchID, err := marshalOptionalUUID(record.MigrationBatchID)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to marshal migration batch id")
	}

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
		batchID,
		id,
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
func (m *MySQLRecordRepository) UpdateIndexToken(
	ctx context.Context,
	record *recordsDomain.Record,
	expectedIndexKeyVersion uint,
) (bool, error) {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE pii_records
			  SET index_token = ?,
			  	  index_key_version = ?,
				  updated_at = ?
			  WHERE id = ? AND index_key_version = ?`

	id, err := record.ID.MarshalBinary()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to marshal record id")
	}

	result, err := querier.ExecContext(
		ctx,
		query,
		record.IndexToken,
		record.IndexKeyVersion,
		record.UpdatedAt,
		id,
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
func (m *MySQLRecordRepository) ListByKeyVersion(
	ctx context.Context,
	version uint,
	limit int,
) ([]*recordsDomain.Record, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + mysqlRecordColumns + `
			  FROM pii_records
			  WHERE key_version = ?
			  ORDER BY updated_at
			  LIMIT ?`

	return m.listRecords(ctx, querier, query, version, limit)
}

// CountByKeyVersion counts records sealed under a key version.
func (m *MySQLRecordRepository) CountByKeyVersion(ctx context.Context, version uint) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT COUNT(*) FROM pii_records WHERE key_version = ?`

	var count int64
	if err := querier.QueryRowContext(ctx, query, version).Scan(&count); err != nil {
		return 0, apperrors.Transient(err, "failed to count records by key version")
	}
	return count, nil
}

// ListByIndexKeyVersion retrieves up to limit records whose token is keyed
// under an index key version, oldest updated first.
func (m *MySQLRecordRepository) ListByIndexKeyVersion(
	ctx context.Context,
	version uint,
	limit int,
) ([]*recordsDomain.Record, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + mysqlRecordColumns + `
			  FROM pii_records
			  WHERE index_key_version = ?
			  ORDER BY updated_at
			  LIMIT ?`

	return m.listRecords(ctx, querier, query, version, limit)
}

// CountByIndexKeyVersion counts records whose token is keyed under an index
// key version.
func (m *MySQLRecordRepository) CountByIndexKeyVersion(ctx context.Context, version uint) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT COUNT(*) FROM pii_records WHERE index_key_version = ?`

	var count int64
	if err := querier.QueryRowContext(ctx, query, version).Scan(&count); err != nil {
		return 0, apperrors.Transient(err, "failed to count records by index key version")
	}
	return count, nil
}

// Delete removes a record.
func (m *MySQLRecordRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	idBytes, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal record id")
	}

	result, err := querier.ExecContext(ctx, `DELETE FROM pii_records WHERE id = ?`, idBytes)
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

func (m *MySQLRecordRepository) listRecords(
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
		record, err := scanMySQLRecord(rows.Scan)
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

// NewMySQLRecordRepository creates a new MySQL record repository.
func NewMySQLRecordRepository(db *sql.DB) *MySQLRecordRepository {
	return &MySQLRecordRepository{db: db}
}
