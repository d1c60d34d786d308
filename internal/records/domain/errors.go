package domain

import (
	"github.com/allisson/pii-vault/internal/errors"
)

var (
	// ErrRecordNotFound indicates the requested record does not exist.
	ErrRecordNotFound = errors.Wrap(errors.ErrNotFound, "record not found")

	// ErrDuplicateValue indicates a record with the same plaintext value already
	// exists under some usable index key version.
	ErrDuplicateValue = errors.Wrap(errors.ErrConflict, "value already stored")
)
