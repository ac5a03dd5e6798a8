package firebird

import (
	"context"
	"log/slog"

	"github.com/syssam/velox-firebird/dialect"
)

// Tx is a Firebird transaction.
//
// With retaining enabled, Commit and Rollback issue COMMIT RETAINING and
// ROLLBACK RETAINING: the work is committed or undone but the transaction
// context stays open and the Tx remains usable. Close must then be called
// to end the transaction and release its connection; it discards work done
// since the last Commit. Without retaining, Commit and Rollback end the
// transaction and Close is a no-op.
type Tx struct {
	dialect.Tx
	ctx     context.Context
	dialect *Dialect
	log     *slog.Logger
	done    bool
}

// Exec implements the dialect.Exec method with the row count semantics of
// the dialect.
func (tx *Tx) Exec(ctx context.Context, query string, args, v any) error {
	return execRowCount(ctx, tx.Tx, tx.dialect, query, args, v)
}

// Commit commits the transaction, retaining its context if configured.
func (tx *Tx) Commit() error {
	if tx.dialect.RetainingEnabled() {
		return tx.CommitRetaining()
	}
	tx.done = true
	return tx.Tx.Commit()
}

// Rollback rolls back the transaction, retaining its context if configured.
func (tx *Tx) Rollback() error {
	if tx.dialect.RetainingEnabled() {
		return tx.RollbackRetaining()
	}
	tx.done = true
	return tx.Tx.Rollback()
}

// CommitRetaining commits the work done so far and keeps the transaction open.
func (tx *Tx) CommitRetaining() error {
	tx.log.DebugContext(tx.ctx, "firebird commit retaining")
	return tx.Tx.Exec(tx.ctx, "COMMIT RETAINING", []any{}, nil)
}

// RollbackRetaining undoes the work done so far and keeps the transaction open.
func (tx *Tx) RollbackRetaining() error {
	tx.log.DebugContext(tx.ctx, "firebird rollback retaining")
	return tx.Tx.Exec(tx.ctx, "ROLLBACK RETAINING", []any{}, nil)
}

// Close ends the transaction if Commit or Rollback did not.
func (tx *Tx) Close() error {
	if tx.done {
		return nil
	}
	tx.done = true
	return tx.Tx.Rollback()
}

var _ dialect.Tx = (*Tx)(nil)
