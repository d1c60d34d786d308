package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	cryptoDomain "github.com/allisson/pii-vault/internal/crypto/domain"
	cryptoService "github.com/allisson/pii-vault/internal/crypto/service"
	"github.com/allisson/pii-vault/internal/database"
	apperrors "github.com/allisson/pii-vault/internal/errors"
	keyringDomain "github.com/allisson/pii-vault/internal/keyring/domain"
	keyringService "github.com/allisson/pii-vault/internal/keyring/service"
)

// registryUseCase implements RegistryUseCase for managing the key-version
// lifecycle. Rotation steps that touch two versions run inside a single
// transaction so the at-most-one active_write invariant holds at every commit
// point.
type registryUseCase struct {
	txManager       database.TxManager
	keyVersionRepo  KeyVersionRepository
	referenceCounts ReferenceCounter
	material        keyringService.MaterialService
	aeadManager     cryptoService.AEADManager
}

// Create provisions a new future key version with freshly generated material.
func (r *registryUseCase) Create(
	ctx context.Context,
	alg cryptoDomain.Algorithm,
) (*keyringDomain.KeyVersion, error) {
	if !alg.Valid() {
		return nil, keyringDomain.ErrUnsupportedAlgorithm
	}

	publicKeyPEM, encryptedPrivateKey, err := r.material.Generate(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to generate key material")
	}

	var created *keyringDomain.KeyVersion
	err = r.txManager.WithTx(ctx, func(ctx context.Context) error {
		keyVersions, err := r.keyVersionRepo.List(ctx)
		if err != nil {
			return err
		}

		next := uint(1)
		if len(keyVersions) > 0 {
			next = keyVersions[0].Version + 1
		}

		kv := &keyringDomain.KeyVersion{
			ID:                  uuid.Must(uuid.NewV7()),
			Version:             next,
			State:               keyringDomain.StateFuture,
			Algorithm:           alg,
			PublicKeyPEM:        publicKeyPEM,
			EncryptedPrivateKey: encryptedPrivateKey,
			CreatedAt:           time.Now().UTC(),
		}

		if err := r.keyVersionRepo.Create(ctx, kv); err != nil {
			return err
		}

		created = kv
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// ResolveForWrite returns the single active_write version.
func (r *registryUseCase) ResolveForWrite(ctx context.Context) (*keyringDomain.KeyVersion, error) {
	return r.keyVersionRepo.GetActive(ctx)
}

// ResolveForRead returns the version if its material may still be resolved.
// Retired versions are refused by policy even though the row still exists;
// future versions are treated as unknown because nothing was ever sealed
// under them.
func (r *registryUseCase) ResolveForRead(
	ctx context.Context,
	version uint,
) (*keyringDomain.KeyVersion, error) {
	kv, err := r.keyVersionRepo.GetByVersion(ctx, version)
	if err != nil {
		return nil, err
	}

	if kv.State == keyringDomain.StateRetired {
		return nil, fmt.Errorf("version %d: %w", version, keyringDomain.ErrRetiredKeyVersion)
	}
	if !kv.Readable() {
		return nil, fmt.Errorf("version %d: %w", version, keyringDomain.ErrUnknownKeyVersion)
	}

	return kv, nil
}

// promote moves target into active_write, demoting the current active_write
// version in the same transaction. The from argument pins the state the target
// must be in, distinguishing a first promotion from an operator rollback.
func (r *registryUseCase) promote(ctx context.Context, version uint, from keyringDomain.State) error {
	return r.txManager.WithTx(ctx, func(ctx context.Context) error {
		target, err := r.keyVersionRepo.GetByVersion(ctx, version)
		if err != nil {
			return err
		}

		if target.State == keyringDomain.StateActiveWrite {
			// Already active, nothing to do.
			return nil
		}
		if target.State != from {
			return fmt.Errorf(
				"version %d is %s, expected %s: %w",
				version, target.State, from, keyringDomain.ErrInvalidTransition,
			)
		}

		now := time.Now().UTC()

		current, err := r.keyVersionRepo.GetActive(ctx)
		switch {
		case err == nil:
			if err := current.TransitionTo(keyringDomain.StateDecryptOnly, now); err != nil {
				return err
			}
			if err := r.keyVersionRepo.Update(ctx, current); err != nil {
				return err
			}
		case apperrors.Is(err, keyringDomain.ErrNoActiveKeyVersion):
			// First promotion, nothing to demote.
		default:
			return err
		}

		if err := target.TransitionTo(keyringDomain.StateActiveWrite, now); err != nil {
			return err
		}
		return r.keyVersionRepo.Update(ctx, target)
	})
}

// Promote moves a future version to active_write.
func (r *registryUseCase) Promote(ctx context.Context, version uint) error {
	return r.promote(ctx, version, keyringDomain.StateFuture)
}

// Rollback re-promotes a decrypt_only version to active_write. Sealed payloads
// produced under the demoted version stay readable because demotion only moves
// it to decrypt_only.
func (r *registryUseCase) Rollback(ctx context.Context, version uint) error {
	return r.promote(ctx, version, keyringDomain.StateDecryptOnly)
}

// Retire moves a decrypt_only version to retired. Without force the operation
// demands evidence that no live record still carries the version.
func (r *registryUseCase) Retire(ctx context.Context, version uint, force bool) error {
	return r.txManager.WithTx(ctx, func(ctx context.Context) error {
		kv, err := r.keyVersionRepo.GetByVersion(ctx, version)
		if err != nil {
			return err
		}

		if kv.State == keyringDomain.StateRetired {
			// Already retired, idempotent.
			return nil
		}

		if !force {
			count, err := r.referenceCounts.CountByKeyVersion(ctx, version)
			if err != nil {
				return err
			}
			if count > 0 {
				return fmt.Errorf(
					"version %d has %d live records: %w",
					version, count, keyringDomain.ErrOutstandingReferences,
				)
			}
		}

		if err := kv.TransitionTo(keyringDomain.StateRetired, time.Now().UTC()); err != nil {
			return err
		}
		return r.keyVersionRepo.Update(ctx, kv)
	})
}

// List returns all key versions, newest first.
func (r *registryUseCase) List(ctx context.Context) ([]*keyringDomain.KeyVersion, error) {
	return r.keyVersionRepo.List(ctx)
}

// SealerForWrite builds a sealer for the active_write version. Only the public
// key is needed, the KMS keeper is never touched on this path.
func (r *registryUseCase) SealerForWrite(ctx context.Context) (cryptoService.Sealer, error) {
	kv, err := r.keyVersionRepo.GetActive(ctx)
	if err != nil {
		return nil, err
	}

	sealer, err := cryptoService.NewSealer(kv.PublicKeyPEM, kv.Algorithm, kv.Version, r.aeadManager)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to build sealer")
	}
	return sealer, nil
}

// OpenerForRead resolves the version for reads and unwraps its private key
// through the KMS keeper.
func (r *registryUseCase) OpenerForRead(ctx context.Context, version uint) (cryptoService.Opener, error) {
	kv, err := r.ResolveForRead(ctx, version)
	if err != nil {
		return nil, err
	}

	priv, err := r.material.Unwrap(ctx, kv)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to unwrap private key")
	}

	opener, err := cryptoService.NewOpener(priv, kv.Algorithm, r.aeadManager)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to build opener")
	}
	return opener, nil
}

// NewRegistryUseCase creates a new key registry use case instance.
func NewRegistryUseCase(
	txManager database.TxManager,
	keyVersionRepo KeyVersionRepository,
	referenceCounts ReferenceCounter,
	material keyringService.MaterialService,
	aeadManager cryptoService.AEADManager,
) RegistryUseCase {
	return &registryUseCase{
		txManager:       txManager,
		keyVersionRepo:  keyVersionRepo,
		referenceCounts: referenceCounts,
		material:        material,
		aeadManager:     aeadManager,
	}
}
