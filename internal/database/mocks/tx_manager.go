// Package mocks provides test doubles for database transaction management.
package mocks

import (
	"context"
)

// FakeTxManager is a TxManager that runs the callback directly without opening
// a transaction. Use case tests combine it with repository mocks, so there is
// no real connection to wrap.
type FakeTxManager struct {
	// Err, when set, is returned without invoking the callback. Simulates a
	// failure to begin the transaction.
	Err error
}

// WithTx executes fn with the given context.
func (f *FakeTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if f.Err != nil {
		return f.Err
	}
	return fn(ctx)
}
