// Package repository implements blind-index key persistence for PostgreSQL and
// MySQL, transaction-aware via database.GetTx.
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

// PostgreSQLIndexKeyRepository implements index-key persistence for PostgreSQL.
type PostgreSQLIndexKeyRepository struct {
	db *sql.DB
}

// Create inserts a new index key.
func (p *PostgreSQLIndexKeyRepository) Create(ctx context.Context, key *blindindexDomain.IndexKey) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO index_keys (id, version, state, encrypted_key, created_at, promoted_at, retired_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := querier.ExecContext(
		ctx,
		query,
		key.ID,
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

// GetByVersion retrieves an index key by its version number.
// Returns ErrUnknownIndexKey if the version was never registered.
func (p *PostgreSQLIndexKeyRepository) GetByVersion(
	ctx context.Context,
	version uint,
) (*blindindexDomain.IndexKey, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, version, state, encrypted_key, created_at, promoted_at, retired_at
			  FROM index_keys
			  WHERE version = $1`

	var key blindindexDomain.IndexKey
	err := querier.QueryRowContext(ctx, query, version).Scan(
		&key.ID,
		&key.Version,
		&key.State,
		&key.EncryptedKey,
		&key.CreatedAt,
		&key.PromotedAt,
		&key.RetiredAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, blindindexDomain.ErrUnknownIndexKey
		}
		return nil, apperrors.Transient(err, "failed to get index key")
	}

	return &key, nil
}

// GetActive retrieves the single active_write index key.
// Returns ErrNoActiveIndexKey if none is configured.
func (p *PostgreSQLIndexKeyRepository) GetActive(ctx context.Context) (*blindindexDomain.IndexKey, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, version, state, encrypted_key, created_at, promoted_at, retired_at
			  FROM index_keys
			  WHERE state = $1`

	var key blindindexDomain.IndexKey
	err := querier.QueryRowContext(ctx, query, keyringDomain.StateActiveWrite).Scan(
		&key.ID,
		&key.Version,
		&key.State,
		&key.EncryptedKey,
		&key.CreatedAt,
		&key.PromotedAt,
		&key.RetiredAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, blindindexDomain.ErrNoActiveIndexKey
		}
		return nil, apperrors.Transient(err, "failed to get active index key")
	}

	return &key, nil
}

// List retrieves all index keys ordered by version descending.
func (p *PostgreSQLIndexKeyRepository) List(ctx context.Context) ([]*blindindexDomain.IndexKey, error) {
	querier := database.GetTx(ctx, p.db)

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

		err := rows.Scan(
			&key.ID,
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

		keys = append(keys, &key)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Transient(err, "failed to list index keys")
	}

	return keys, nil
}

// Update persists lifecycle changes to an existing index key.
func (p *PostgreSQLIndexKeyRepository) Update(ctx context.Context, key *blindindexDomain.IndexKey) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE index_keys
			  SET state = $1,
			  	  promoted_at = $2,
				  retired_at = $3
			  WHERE id = $4`

	_, err := querier.ExecContext(
		ctx,
		query,
		key.State,
		key.PromotedAt,
		key.RetiredAt,
		key.ID,
	)
	if err != nil {
		return apperrors.Transient(err, "failed to update index key")
	}

	return nil
}

// NewPostgreSQLIndexKeyRepository creates a new PostgreSQL index-key repository.
func NewPostgreSQLIndexKeyRepository(db *sql.DB) *PostgreSQLIndexKeyRepository {
	return &PostgreSQLIndexKeyRepository{db: db}
}
