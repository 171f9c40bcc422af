package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"savesite/internal/domain"
	"savesite/internal/domain/repositories"
)

// TransactionManager implements the TransactionManager interface
type TransactionManager struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewTransactionManager creates a new transaction manager
func NewTransactionManager(pool *pgxpool.Pool, logger *slog.Logger) *TransactionManager {
	return &TransactionManager{pool: pool, logger: logger}
}

// ExecTx executes a function within a transaction
func (tm *TransactionManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	// Nested call: join the outer transaction
	if GetTx(ctx) != nil {
		return fn(ctx)
	}

	tx, err := tm.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	// Defer rollback - safe even if commit succeeds
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			tm.logger.Warn("rollback failed", "error", err)
		}
	}()

	txCtx := SetTx(ctx, tx)
	if err := fn(txCtx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// ScopeLocker takes transaction-scoped advisory locks keyed by scope name
type ScopeLocker struct {
	pool *pgxpool.Pool
}

// NewScopeLocker creates a new scope locker
func NewScopeLocker(pool *pgxpool.Pool) *ScopeLocker {
	return &ScopeLocker{pool: pool}
}

// LockScope blocks until the advisory lock for key is held.
// The lock is released on commit or rollback. A wait cut short by
// lock_timeout is reported as a conflict so the client can retry.
func (l *ScopeLocker) LockScope(ctx context.Context, key string) error {
	tx := GetTx(ctx)
	if tx == nil {
		return fmt.Errorf("lock scope %s: no transaction in context", key)
	}
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
		if IsPgLockTimeout(err) {
			return fmt.Errorf("lock scope %s busy: %w", key, domain.ErrConflict)
		}
		return fmt.Errorf("lock scope %s: %w", key, err)
	}
	return nil
}

var (
	_ repositories.TransactionManager = (*TransactionManager)(nil)
	_ repositories.ScopeLocker        = (*ScopeLocker)(nil)
)
