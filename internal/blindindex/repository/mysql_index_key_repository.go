package repository

import (
	"context"
	"database/sql"
	"errors"

	blindindexDomain "github.com/allisson/pii-vault/internal/blindindex/domain"
	"github.com/allisson/pii-vault/internal/database"
	apperrors "github.com/allisson/pii-vault/internal/errors"
	keyringDomain "github.com/allisson/pii-vault/internal/keyring/domain"
)

// MySQLIndexKeyRepository implements index-key persistence for MySQL.
// Uses BINARY(16) for UUIDs and BLOB for binary data.
type MySQLIndexKeyRepository struct {
	db *sql.DB
}

// Create inserts a new index key.
func (m *MySQLIndexKeyRepository) Create(ctx context.Context, key *blindindexDomain.IndexKey) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO index_keys (id, version, state, encrypted_key, created_at, promoted_at, retired_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`

	id, err := key.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal index key id")
	}

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		key.Version,
		key.State,
		key.EncryptedKey,
		key.CreatedAt,
		key.PromotedAt,
		key.RetiredAt,
	)
	if err != nil {
		return apperrors.Transient(err, "failed to create index key")
	}
	return nil
}

func (m *MySQLIndexKeyRepository) scanIndexKey(row *sql.Row) (*blindindexDomain.IndexKey, error) {
	var key blindindexDomain.IndexKey
	var idBytes []byte

	err := row.Scan(
		&idBytes,
		&key.Version,
		&key.State,
		&key.EncryptedKey,
		&key.CreatedAt,
		&key.PromotedAt,
		&key.RetiredAt,
	)
	if err != nil {
		return nil, err
	}

	if err := key.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal index key id")
	}

	return &key, nil
}

// GetByVersion retrieves an index key by its version number.
// Returns ErrUnknownIndexKey if the version was never registered.
func (m *MySQLIndexKeyRepository) GetByVersion(
	ctx context.Context,
	version uint,
) (*blindindexDomain.IndexKey, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, version, state, encrypted_key, created_at, promoted_at, retired_at
			  FROM index_keys
			  WHERE version = ?`

	key, err := m.scanIndexKey(querier.QueryRowContext(ctx, query, version))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, blindindexDomain.ErrUnknownIndexKey
		}
		return nil, apperrors.Transient(err, "failed to get index key")
	}

	return key, nil
}

// GetActive retrieves the single active_write index key.
// Returns ErrNoActiveIndexKey if none is configured.
func (m *MySQLIndexKeyRepository) GetActive(ctx context.Context) (*blindindexDomain.IndexKey, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, version, state, encrypted_key, created_at, promoted_at, retired_at
			  FROM index_keys
			  WHERE state = ?`

	key, err := m.scanIndexKey(querier.QueryRowContext(ctx, query, keyringDomain.StateActiveWrite))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, blindindexDomain.ErrNoActiveIndexKey
		}
		return nil, apperrors.Transient(err, "failed to get active index key")
	}

	return key, nil
}

// List retrieves all index keys ordered by version descending.
func (m *MySQLIndexKeyRepository) List(ctx context.Context) ([]*blindindexDomain.IndexKey, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, version, state, encrypted_key, created_at, promoted_at, retired_at
			  FROM index_keys
			  ORDER BY version DESC`

	rows, err := querier.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Transient(err, "failed to list index keys")
	}
	defer func() {
		_ = rows.Close()
	}()

	var keys []*blindindexDomain.IndexKey
	for rows.Next() {
		var key blindindexDomain.IndexKey
		var idBytes []byte

		err := rows.Scan(
			&idBytes,
			&key.Version,
			&key.State,
			&key.EncryptedKey,
			&key.CreatedAt,
			&key.PromotedAt,
			&key.RetiredAt,
		)
		if err != nil {
			return nil, apperrors.Transient(err, "failed to scan index key")
		}

		if err := key.ID.UnmarshalBinary(idBytes); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal index key id")
		}

		keys = append(keys, &key)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Transient(err, "failed to list index keys")
	}

	return keys, nil
}

// Update persists lifecycle changes to an existing index key.
func (m *MySQLIndexKeyRepository) Update(ctx context.Context, key *blindindexDomain.IndexKey) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE index_keys
			  SET state = ?,
			  	  promoted_at = ?,
				  retired_at = ?
			  WHERE id = ?`

	id, err := key.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal index key id")
	}

	_, err = querier.ExecContext(
		ctx,
		query,
		key.State,
		key.PromotedAt,
		key.RetiredAt,
		id,
	)
	if err != nil {
		return apperrors.Transient(err, "failed to update index key")
	}

	return nil
}

// NewMySQLIndexKeyRepository creates a new MySQL index-key repository.
func NewMySQLIndexKeyRepository(db *sql.DB) *MySQLIndexKeyRepository {
	return &MySQLIndexKeyRepository{db: db}
}
