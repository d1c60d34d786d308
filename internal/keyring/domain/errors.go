package domain

import (
	"github.com/allisson/pii-vault/internal/errors"
)

// Key registry error definitions.
var (
	// ErrUnknownKeyVersion indicates the requested version was never registered.
	ErrUnknownKeyVersion = errors.Wrap(errors.ErrNotFound, "unknown key version")

	// ErrRetiredKeyVersion indicates the version exists but its material is gone
	// by policy. Distinct from ErrUnknownKeyVersion so operators can tell
	// "retired by policy" apart from "never existed".
	ErrRetiredKeyVersion = errors.New("key version is retired")

	// ErrNoActiveKeyVersion indicates no version is configured as active_write.
	// This is a fatal misconfiguration requiring operator action, never retried.
	ErrNoActiveKeyVersion = errors.Wrap(errors.ErrFatalConfig, "no active_write key version")

	// ErrInvalidTransition indicates a lifecycle move the state machine forbids.
	ErrInvalidTransition = errors.Wrap(errors.ErrInvalidInput, "invalid key version state transition")

	// ErrOutstandingReferences indicates a retire was refused because live
	// records still carry the version. Retiring anyway requires an explicit
	// force acknowledging those records become unreadable.
	ErrOutstandingReferences = errors.Wrap(errors.ErrConflict, "key version still referenced by live records")

	// ErrUnsupportedAlgorithm indicates an unknown payload algorithm.
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")
)
