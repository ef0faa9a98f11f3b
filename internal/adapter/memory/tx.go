package memory

import "context"

// TxManager runs fn directly. Each memory store guards its own invariants
// under its own lock, so there is no cross-store transaction to open.
type TxManager struct{}

// NewTxManager creates a TxManager.
func NewTxManager() *TxManager { return &TxManager{} }

// RunInTx calls fn with ctx.
func (TxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
