package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"

	"github.com/alexanderramin/disburse/internal/db"
)

// FailOnNthExecUoW wraps each transaction so that the FailOn-th write
// (ExecContext call, counted from 1) returns Err instead of running. Reads
// pass through. A draft save writes the draft row first and then one row
// per stage, so FailOn picks exactly where the save breaks.
type FailOnNthExecUoW struct {
	DB     *sql.DB
	FailOn int32
	Err    error

	execs atomic.Int32
}

// Execs reports how many writes were attempted across all transactions.
func (u *FailOnNthExecUoW) Execs() int32 {
	return u.execs.Load()
}

func (u *FailOnNthExecUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	tx, err := u.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	wrapped := &failingTx{DBTX: tx, owner: u}
	if fnErr := fn(ctx, wrapped); fnErr != nil {
		_ = tx.Rollback()
		return fnErr
	}
	return tx.Commit()
}

type failingTx struct {
	db.DBTX
	owner *FailOnNthExecUoW
	count int32
}

func (f *failingTx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	f.owner.execs.Add(1)
	f.count++
	if f.count == f.owner.FailOn {
		return nil, f.owner.Err
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}
