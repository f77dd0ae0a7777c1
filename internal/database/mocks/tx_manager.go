// Package mocks provides test doubles for transactional code.
package mocks

import (
	"context"
)

// FakeTxManager implements database.TxManager without a real transaction:
// the function runs directly against the caller's context and its error is
// returned unchanged. Calls counts invocations.
type FakeTxManager struct {
	Calls int
}

// WithTx executes fn immediately.
func (f *FakeTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.Calls++
	return fn(ctx)
}
