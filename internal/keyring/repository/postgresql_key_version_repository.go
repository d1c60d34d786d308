// Package repository implements key-version persistence for PostgreSQL and
// MySQL. Repositories are transaction-aware via database.GetTx, which the
// registry relies on for the atomic demote+promote performed during rotation.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/allisson/pii-vault/internal/database"
	apperrors "github.com/allisson/pii-vault/internal/errors"
	keyringDomain "github.com/allisson/pii-vault/internal/keyring/domain"
)

// PostgreSQLKeyVersionRepository implements key-version persistence for
// PostgreSQL using native UUID and BYTEA types.
type PostgreSQLKeyVersionRepository struct {
	db *sql.DB
}

// Create inserts a new key version.
func (p *PostgreSQLKeyVersionRepository) Create(ctx context.Context, kv *keyringDomain.KeyVersion) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO key_versions (id, version, state, algorithm, public_key_pem, encrypted_private_key, created_at, promoted_at, retired_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := querier.ExecContext(
		ctx,
		query,
		kv.ID,
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

// GetByVersion retrieves a key version by its version number.
// Returns ErrUnknownKeyVersion if the version was never registered.
func (p *PostgreSQLKeyVersionRepository) GetByVersion(
	ctx context.Context,
	version uint,
) (*keyringDomain.KeyVersion, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, version, state, algorithm, public_key_pem, encrypted_private_key, created_at, promoted_at, retired_at
			  FROM key_versions
			  WHERE version = $1`

	var kv keyringDomain.KeyVersion
	err := querier.QueryRowContext(ctx, query, version).Scan(
		&kv.ID,
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
		if errors.Is(err, sql.ErrNoRows) {
			return nil, keyringDomain.ErrUnknownKeyVersion
		}
		return nil, apperrors.Transient(err, "failed to get key version")
	}

	return &kv, nil
}

// GetActive retrieves the single active_write key version.
// Returns ErrNoActiveKeyVersion if none is configured.
func (p *PostgreSQLKeyVersionRepository) GetActive(ctx context.Context) (*keyringDomain.KeyVersion, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, version, state, algorithm, public_key_pem, encrypted_private_key, created_at, promoted_at, retired_at
			  FROM key_versions
			  WHERE state = $1`

	var kv keyringDomain.KeyVersion
	err := querier.QueryRowContext(ctx, query, keyringDomain.StateActiveWrite).Scan(
		&kv.ID,
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
		if errors.Is(err, sql.ErrNoRows) {
			return nil, keyringDomain.ErrNoActiveKeyVersion
		}
		return nil, apperrors.Transient(err, "failed to get active key version")
	}

	return &kv, nil
}

// List retrieves all key versions ordered by version descending.
func (p *PostgreSQLKeyVersionRepository) List(ctx context.Context) ([]*keyringDomain.KeyVersion, error) {
	querier := database.GetTx(ctx, p.db)

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

		err := rows.Scan(
			&kv.ID,
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

		keyVersions = append(keyVersions, &kv)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Transient(err, "failed to list key versions")
	}

	return keyVersions, nil
}

// Update persists lifecycle changes to an existing key version.
func (p *PostgreSQLKeyVersionRepository) Update(ctx context.Context, kv *keyringDomain.KeyVersion) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE key_versions
			  SET state = $1,
			  	  promoted_at = $2,
				  retired_at = $3
			  WHERE id = $4`

	_, err := querier.ExecContext(
		ctx,
		query,
		kv.State,
		kv.PromotedAt,
		kv.RetiredAt,
		kv.ID,
	)
	if err != nil {
		return apperrors.Transient(err, "failed to update key version")
	}

	return nil
}

// NewPostgreSQLKeyVersionRepository creates a new PostgreSQL key-version repository.
func NewPostgreSQLKeyVersionRepository(db *sql.DB) *PostgreSQLKeyVersionRepository {
	return &PostgreSQLKeyVersionRepository{db: db}
}
