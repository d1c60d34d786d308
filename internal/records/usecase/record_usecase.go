package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	blindindexUsecase "github.com/allisson/pii-vault/internal/blindindex/usecase"
	"github.com/allisson/pii-vault/internal/database"
	apperrors "github.com/allisson/pii-vault/internal/errors"
	keyringDomain "github.com/allisson/pii-vault/internal/keyring/domain"
	keyringUsecase "github.com/allisson/pii-vault/internal/keyring/usecase"
	recordsDomain "github.com/allisson/pii-vault/internal/records/domain"
)

// recordUseCase implements RecordUseCase. Key and tokenizer resolution are
// delegated to the registries; this layer never touches key material.
type recordUseCase struct {
	txManager  database.TxManager
	recordRepo RecordRepository
	keys       keyringUsecase.KeyResolver
	indexKeys  blindindexUsecase.IndexKeyUseCase
}

// usableTokens computes the blind-index token of value under every usable
// index key version. A value written before the last index rotation still
// carries its old token, so duplicate detection and lookup must consider all
// of them.
func (r *recordUseCase) usableTokens(ctx context.Context, value []byte) ([]string, error) {
	keys, err := r.indexKeys.List(ctx)
	if err != nil {
		return nil, err
	}

	var tokens []string
	for _, key := range keys {
		if !key.Usable() {
			continue
		}

		tokenizer, err := r.indexKeys.TokenizerFor(ctx, key.Version)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tokenizer.Token(value))
	}

	return tokens, nil
}

// duplicateExists reports whether any record other than excludeID already
// carries one of the tokens.
func (r *recordUseCase) duplicateExists(ctx context.Context, tokens []string, excludeID uuid.UUID) (bool, error) {
	for _, token := range tokens {
		records, err := r.recordRepo.GetByIndexToken(ctx, token)
		if err != nil {
			return false, err
		}
		for _, record := range records {
			if record.ID != excludeID {
				return true, nil
			}
		}
	}
	return false, nil
}

// Create seals value and stores it with its blind-index token.
func (r *recordUseCase) Create(ctx context.Context, value []byte) (*recordsDomain.Record, error) {
	if len(value) == 0 {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "value must not be empty")
	}

	tokens, err := r.usableTokens(ctx, value)
	if err != nil {
		return nil, err
	}

	sealer, err := r.keys.SealerForWrite(ctx)
	if err != nil {
		return nil, err
	}
	tokenizer, err := r.indexKeys.TokenizerForWrite(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := sealer.Seal(value)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	record := &recordsDomain.Record{
		ID:        uuid.Must(uuid.NewV7()),
		CreatedAt: now,
	}
	record.SetSealed(payload, sealer.KeyVersion(), now)
	record.SetIndexToken(tokenizer.Token(value), tokenizer.KeyVersion(), now)

	err = r.txManager.WithTx(ctx, func(ctx context.Context) error {
		exists, err := r.duplicateExists(ctx, tokens, record.ID)
		if err != nil {
			return err
		}
		if exists {
			return recordsDomain.ErrDuplicateValue
		}

		return r.recordRepo.Create(ctx, record)
	})
	if err != nil {
		return nil, err
	}

	return record, nil
}

// Get retrieves a record without revealing the plaintext.
func (r *recordUseCase) Get(ctx context.Context, id uuid.UUID) (*recordsDomain.Record, error) {
	return r.recordRepo.GetByID(ctx, id)
}

// Reveal unseals a record using the opener for its tagged key version.
func (r *recordUseCase) Reveal(ctx context.Context, id uuid.UUID) ([]byte, error) {
	record, err := r.recordRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	opener, err := r.keys.OpenerForRead(ctx, record.KeyVersion)
	if err != nil {
		if apperrors.Is(err, keyringDomain.ErrRetiredKeyVersion) {
			return nil, apperrors.Wrap(err, "record is sealed under a retired key version")
		}
		return nil, err
	}

	return opener.Open(record.Sealed())
}

// Overwrite re-seals a record with a new value under the current active_write
// versions. The write is unconditional: an overwrite always wins over an
// in-flight migration of the same record.
func (r *recordUseCase) Overwrite(ctx context.Context, id uuid.UUID, value []byte) (*recordsDomain.Record, error) {
	if len(value) == 0 {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "value must not be empty")
	}

	tokens, err := r.usableTokens(ctx, value)
	if err != nil {
		return nil, err
	}

	sealer, err := r.keys.SealerForWrite(ctx)
	if err != nil {
		return nil, err
	}
	tokenizer, err := r.indexKeys.TokenizerForWrite(ctx)
	if err != nil {
		return nil, err
	}

	var record *recordsDomain.Record
	err = r.txManager.WithTx(ctx, func(ctx context.Context) error {
		record, err = r.recordRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		exists, err := r.duplicateExists(ctx, tokens, record.ID)
		if err != nil {
			return err
		}
		if exists {
			return recordsDomain.ErrDuplicateValue
		}

		payload, err := sealer.Seal(value)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		record.SetSealed(payload, sealer.KeyVersion(), now)
		record.SetIndexToken(tokenizer.Token(value), tokenizer.KeyVersion(), now)
		record.ReencryptedAt = nil
		record.MigrationBatchID = nil

		return r.recordRepo.Overwrite(ctx, record)
	})
	if err != nil {
		return nil, err
	}

	return record, nil
}

// FindByValue locates records by plaintext equality through the blind index.
// Nothing is decrypted: the value is tokenized under every usable index key
// version and matched against stored tokens.
func (r *recordUseCase) FindByValue(ctx context.Context, value []byte) ([]*recordsDomain.Record, error) {
	tokens, err := r.usableTokens(ctx, value)
	if err != nil {
		return nil, err
	}

	seen := make(map[uuid.UUID]struct{})
	var records []*recordsDomain.Record
	for _, token := range tokens {
		matches, err := r.recordRepo.GetByIndexToken(ctx, token)
		if err != nil {
			return nil, err
		}
		for _, record := range matches {
			if _, ok := seen[record.ID]; ok {
				continue
			}
			seen[record.ID] = struct{}{}
			records = append(records, record)
		}
	}

	return records, nil
}

// Delete removes a record.
func (r *recordUseCase) Delete(ctx context.Context, id uuid.UUID) error {
	return r.recordRepo.Delete(ctx, id)
}

// NewRecordUseCase creates a new record use case instance.
func NewRecordUseCase(
	txManager database.TxManager,
	recordRepo RecordRepository,
	keys keyringUsecase.KeyResolver,
	indexKeys blindindexUsecase.IndexKeyUseCase,
) RecordUseCase {
	return &recordUseCase{
		txManager:  txManager,
		recordRepo: recordRepo,
		keys:       keys,
		indexKeys:  indexKeys,
	}
}
