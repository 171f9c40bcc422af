package repositories

import "context"

// TxFn is a function that runs within a transaction
type TxFn func(ctx context.Context) error

// TransactionManager handles database transactions
type TransactionManager interface {
	// ExecTx executes a function within a transaction.
	// Repositories called with the context passed to fn join the transaction.
	ExecTx(ctx context.Context, fn TxFn) error
}

// ScopeLocker serializes position-mutating work per ordering scope.
// LockScope must be called inside ExecTx; the lock is released when the
// transaction ends.
type ScopeLocker interface {
	LockScope(ctx context.Context, key string) error
}
