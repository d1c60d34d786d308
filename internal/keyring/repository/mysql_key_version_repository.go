package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/allisson/pii-vault/internal/database"
	apperrors "github.com/allisson/pii-vault/internal/errors"
	keyringDomain "github.com/allisson/pii-vault/internal/keyring/domain"
)

// MySQLKeyVersionRepository implements key-version persistence for MySQL.
// Uses BINARY(16) for UUIDs and BLOB for binary data.
type MySQLKeyVersionRepository struct {
	db *sql.DB
}

// Create inserts a new key version.
func (m *MySQLKeyVersionRepository) Create(ctx context.Context, kv *keyringDomain.KeyVersion) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO key_versions (id, version, state, algorithm, public_key_pem, encrypted_private_key, created_at, promoted_at, retired_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	id, err := kv.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal key version id")
	}

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		kv.Version,
		kv.State,
		kv.Algorithm,
		kv.PublicKeyPEM,
		kv.EncryptedPrivateKey,
		kv.CreatedAt,
		kv.PromotedAt,
		kv.RetiredAt,
	)
	if err != nil {
		return apperrors.Transient(err, "failed to create key version")
	}
	return nil
}

func (m *MySQLKeyVersionRepository) scanKeyVersion(row *sql.Row) (*keyringDomain.KeyVersion, error) {
	var kv keyringDomain.KeyVersion
	var idBytes []byte

	err := row.Scan(
		&idBytes,
		&kv.Version,
		&kv.State,
		&kv.Algorithm,
		&kv.PublicKeyPEM,
		&kv.EncryptedPrivateKey,
		&kv.CreatedAt,
		&kv.PromotedAt,
		&kv.RetiredAt,
	)
	if err != nil {
		return nil, err
	}

	if err := kv.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal key version id")
	}

	return &kv, nil
}

// GetByVersion retrieves a key version by its version number.
// Returns ErrUnknownKeyVersion if the version was never registered.
func (m *MySQLKeyVersionRepository) GetByVersion(
	ctx context.Context,
	version uint,
) (*keyringDomain.KeyVersion, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, version, state, algorithm, public_key_pem, encrypted_private_key, created_at, promoted_at, retired_at
			  FROM key_versions
			  WHERE version = ?`

	kv, err := m.scanKeyVersion(querier.QueryRowContext(ctx, query, version))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, keyringDomain.ErrUnknownKeyVersion
		}
		return nil, apperrors.Transient(err, "failed to get key version")
	}

	return kv, nil
}

// GetActive retrieves the single active_write key version.
// Returns ErrNoActiveKeyVersion if none is configured.
func (m *MySQLKeyVersionRepository) GetActive(ctx context.Context) (*keyringDomain.KeyVersion, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, version, state, algorithm, public_key_pem, encrypted_private_key, created_at, promoted_at, retired_at
			  FROM key_versions
			  WHERE state = ?`

	kv, err := m.scanKeyVersion(querier.QueryRowContext(ctx, query, keyringDomain.StateActiveWrite))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, keyringDomain.ErrNoActiveKeyVersion
		}
		return nil, apperrors.Transient(err, "failed to get active key version")
	}

	return kv, nil
}

// List retrieves all key versions ordered by version descending.
func (m *MySQLKeyVersionRepository) List(ctx context.Context) ([]*keyringDomain.KeyVersion, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, version, state, algorithm, public_key_pem, encrypted_private_key, created_at, promoted_at, retired_at
			  FROM key_versions
			  ORDER BY version DESC`

	rows, err := querier.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Transient(err, "failed to list key versions")
	}
	defer func() {
		_ = rows.Close()
	}()

	var keyVersions []*keyringDomain.KeyVersion
	for rows.Next() {
		var kv keyringDomain.KeyVersion
		var idBytes []byte

		err := rows.Scan(
			&idBytes,
			&kv.Version,
			&kv.State,
			&kv.Algorithm,
			&kv.PublicKeyPEM,
			&kv.EncryptedPrivateKey,
			&kv.CreatedAt,
			&kv.PromotedAt,
			&kv.RetiredAt,
		)
		if err != nil {
			return nil, apperrors.Transient(err, "failed to scan key version")
		}

		if err := kv.ID.UnmarshalBinary(idBytes); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal key version id")
		}

		keyVersions = append(keyVersions, &kv)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Transient(err, "failed to list key versions")
	}

	return keyVersions, nil
}

// Update persists lifecycle changes to an existing key version.
func (m *MySQLKeyVersionRepository) Update(ctx context.Context, kv *keyringDomain.KeyVersion) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE key_versions
			  SET state = ?,
			  	  promoted_at = ?,
				  retired_at = ?
			  WHERE id = ?`

	id, err := kv.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal key version id")
	}

	_, err = querier.ExecContext(
		ctx,
		query,
		kv.State,
		kv.PromotedAt,
		kv.RetiredAt,
		id,
	)
	if err != nil {
		return apperrors.Transient(err, "failed to update key version")
	}

	return nil
}

// NewMySQLKeyVersionRepository creates a new MySQL key-version repository.
func NewMySQLKeyVersionRepository(db *sql.DB) *MySQLKeyVersionRepository {
	return &MySQLKeyVersionRepository{db: db}
}
