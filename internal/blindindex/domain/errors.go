package domain

import (
	"github.com/allisson/pii-vault/internal/errors"
)

// Blind-index error definitions.
var (
	// ErrUnknownIndexKey indicates the requested index key version was never registered.
	ErrUnknownIndexKey = errors.Wrap(errors.ErrNotFound, "unknown index key version")

	// ErrRetiredIndexKey indicates the index key version exists but its material
	// is gone by policy.
	ErrRetiredIndexKey = errors.New("index key version is retired")

	// ErrNoActiveIndexKey indicates no index key is configured as active_write.
	ErrNoActiveIndexKey = errors.Wrap(errors.ErrFatalConfig, "no active_write index key")
)
