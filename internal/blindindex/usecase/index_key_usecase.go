package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	blindindexDomain "github.com/allisson/pii-vault/internal/blindindex/domain"
	blindindexService "github.com/allisson/pii-vault/internal/blindindex/service"
	"github.com/allisson/pii-vault/internal/database"
	apperrors "github.com/allisson/pii-vault/internal/errors"
	keyringDomain "github.com/allisson/pii-vault/internal/keyring/domain"
	keyringService "github.com/allisson/pii-vault/internal/keyring/service"
)

// indexKeyUseCase implements IndexKeyUseCase. The HMAC key material is wrapped
// by the same KMS keeper as the sealing keys but versioned independently.
type indexKeyUseCase struct {
	txManager       database.TxManager
	indexKeyRepo    IndexKeyRepository
	referenceCounts IndexReferenceCounter
	material        keyringService.MaterialService
}

// Create provisions a new future index key with freshly generated material.
func (i *indexKeyUseCase) Create(ctx context.Context) (*blindindexDomain.IndexKey, error) {
	encryptedKey, err := i.material.GenerateSymmetric(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to generate index key material")
	}

	var created *blindindexDomain.IndexKey
	err = i.txManager.WithTx(ctx, func(ctx context.Context) error {
		keys, err := i.indexKeyRepo.List(ctx)
		if err != nil {
			return err
		}

		next := uint(1)
		if len(keys) > 0 {
			next = keys[0].Version + 1
		}

		key := &blindindexDomain.IndexKey{
			ID:           uuid.Must(uuid.NewV7()),
			Version:      next,
			State:        keyringDomain.StateFuture,
			EncryptedKey: encryptedKey,
			CreatedAt:    time.Now().UTC(),
		}

		if err := i.indexKeyRepo.Create(ctx, key); err != nil {
			return err
		}

		created = key
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// promote moves target into active_write, demoting the current active_write
// key in the same transaction.
func (i *indexKeyUseCase) promote(ctx context.Context, version uint, from keyringDomain.State) error {
	return i.txManager.WithTx(ctx, func(ctx context.Context) error {
		target, err := i.indexKeyRepo.GetByVersion(ctx, version)
		if err != nil {
			return err
		}

		if target.State == keyringDomain.StateActiveWrite {
			// Already active, nothing to do.
			return nil
		}
		if target.State != from {
			return fmt.Errorf(
				"index key version %d is %s, expected %s: %w",
				version, target.State, from, keyringDomain.ErrInvalidTransition,
			)
		}

		now := time.Now().UTC()

		current, err := i.indexKeyRepo.GetActive(ctx)
		switch {
		case err == nil:
			if err := current.TransitionTo(keyringDomain.StateDecryptOnly, now); err != nil {
				return err
			}
			if err := i.indexKeyRepo.Update(ctx, current); err != nil {
				return err
			}
		case apperrors.Is(err, blindindexDomain.ErrNoActiveIndexKey):
			// First promotion, nothing to demote.
		default:
			return err
		}

		if err := target.TransitionTo(keyringDomain.StateActiveWrite, now); err != nil {
			return err
		}
		return i.indexKeyRepo.Update(ctx, target)
	})
}

// Promote moves a future index key to active_write.
func (i *indexKeyUseCase) Promote(ctx context.Context, version uint) error {
	return i.promote(ctx, version, keyringDomain.StateFuture)
}

// Rollback re-promotes a decrypt_only index key to active_write.
func (i *indexKeyUseCase) Rollback(ctx context.Context, version uint) error {
	return i.promote(ctx, version, keyringDomain.StateDecryptOnly)
}

// Retire moves a decrypt_only index key to retired.
func (i *indexKeyUseCase) Retire(ctx context.Context, version uint, force bool) error {
	return i.txManager.WithTx(ctx, func(ctx context.Context) error {
		key, err := i.indexKeyRepo.GetByVersion(ctx, version)
		if err != nil {
			return err
		}

		if key.State == keyringDomain.StateRetired {
			// Already retired, idempotent.
			return nil
		}

		if !force {
			count, err := i.referenceCounts.CountByIndexKeyVersion(ctx, version)
			if err != nil {
				return err
			}
			if count > 0 {
				return fmt.Errorf(
					"index key version %d has %d live records: %w",
					version, count, keyringDomain.ErrOutstandingReferences,
				)
			}
		}

		if err := key.TransitionTo(keyringDomain.StateRetired, time.Now().UTC()); err != nil {
			return err
		}
		return i.indexKeyRepo.Update(ctx, key)
	})
}

// List returns all index keys, newest first.
func (i *indexKeyUseCase) List(ctx context.Context) ([]*blindindexDomain.IndexKey, error) {
	return i.indexKeyRepo.List(ctx)
}

// tokenizer unwraps the key material and builds a tokenizer for it.
func (i *indexKeyUseCase) tokenizer(
	ctx context.Context,
	key *blindindexDomain.IndexKey,
) (blindindexService.Tokenizer, error) {
	raw, err := i.material.UnwrapSymmetric(ctx, key.EncryptedKey)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to unwrap index key")
	}

	tokenizer, err := blindindexService.NewTokenizer(raw, key.Version)
	if err != nil {
		return nil, err
	}
	return tokenizer, nil
}

// TokenizerForWrite returns a tokenizer for the active_write index key.
func (i *indexKeyUseCase) TokenizerForWrite(ctx context.Context) (blindindexService.Tokenizer, error) {
	key, err := i.indexKeyRepo.GetActive(ctx)
	if err != nil {
		return nil, err
	}
	return i.tokenizer(ctx, key)
}

// TokenizerFor returns a tokenizer for a specific index key version, refusing
// retired and future versions.
func (i *indexKeyUseCase) TokenizerFor(ctx context.Context, version uint) (blindindexService.Tokenizer, error) {
	key, err := i.indexKeyRepo.GetByVersion(ctx, version)
	if err != nil {
		return nil, err
	}

	if key.State == keyringDomain.StateRetired {
		return nil, fmt.Errorf("index key version %d: %w", version, blindindexDomain.ErrRetiredIndexKey)
	}
	if !key.Usable() {
		return nil, fmt.Errorf("index key version %d: %w", version, blindindexDomain.ErrUnknownIndexKey)
	}

	return i.tokenizer(ctx, key)
}

// NewIndexKeyUseCase creates a new blind-index key use case instance.
func NewIndexKeyUseCase(
	txManager database.TxManager,
	indexKeyRepo IndexKeyRepository,
	referenceCounts IndexReferenceCounter,
	material keyringService.MaterialService,
) IndexKeyUseCase {
	return &indexKeyUseCase{
		txManager:       txManager,
		indexKeyRepo:    indexKeyRepo,
		referenceCounts: referenceCounts,
		material:        material,
	}
}
