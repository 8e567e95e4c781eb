package sqlargon

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// UnitOfWork scopes a database transaction with explicit commit and
// rollback control. Repositories and Database helpers pick up the
// transaction through the context returned by Begin.
type UnitOfWork struct {
	tx            *gorm.DB
	ctx           context.Context
	autocommit    bool
	raiseOnCommit bool
	nested        bool
	done          bool
}

// UoWOption customizes transaction handling.
type UoWOption func(*UnitOfWork)

// Autocommit controls whether Close commits when no error occurred.
// Defaults to true; with false, Close always rolls back and the caller
// must Commit explicitly.
func Autocommit(v bool) UoWOption {
	return func(u *UnitOfWork) { u.autocommit = v }
}

// RaiseOnCommitErr controls whether a failed commit surfaces to the
// caller. Defaults to true.
func RaiseOnCommitErr(v bool) UoWOption {
	return func(u *UnitOfWork) { u.raiseOnCommit = v }
}

// Begin opens a transaction and binds it to the returned context. When
// ctx already carries a session, the unit of work joins it and Commit,
// Rollback and Close become no-ops: the outer scope stays in control.
func (d *Database) Begin(ctx context.Context, opts ...UoWOption) (context.Context, *UnitOfWork, error) {
	u := &UnitOfWork{ctx: ctx, autocommit: true, raiseOnCommit: true}
	for _, opt := range opts {
		opt(u)
	}

	if tx, ok := CurrentSession(ctx); ok {
		u.tx = tx
		u.nested = true
		return ctx, u, nil
	}

	tx := d.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return ctx, nil, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	u.tx = tx

	return WithSession(ctx, tx), u, nil
}

// RunInTx executes fn inside a unit of work. Panics roll the transaction
// back before propagating.
func (d *Database) RunInTx(ctx context.Context, fn func(ctx context.Context) error, opts ...UoWOption) error {
	txCtx, u, err := d.Begin(ctx, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			_ = u.Rollback()
			panic(r)
		}
	}()
	return u.Close(fn(txCtx))
}

// Session returns the transaction session owned by the unit of work.
func (u *UnitOfWork) Session() *gorm.DB { return u.tx }

// Commit commits the transaction. On failure the transaction is rolled
// back and the commit error surfaces unless RaiseOnCommitErr(false).
func (u *UnitOfWork) Commit() error {
	if u.nested || u.done {
		return nil
	}
	u.done = true

	if err := u.detached().Commit().Error; err != nil {
		_ = u.detached().Rollback()
		if u.raiseOnCommit {
			return Translate(err)
		}
	}
	return nil
}

// Rollback discards the transaction.
func (u *UnitOfWork) Rollback() error {
	if u.nested || u.done {
		return nil
	}
	u.done = true

	if err := u.detached().Rollback().Error; err != nil {
		return fmt.Errorf("failed to roll back transaction: %w", err)
	}
	return nil
}

// Close finishes the unit of work: rollback when err is non-nil, commit
// (under autocommit) otherwise. The original err is passed through so
// callers can write `return u.Close(doWork(ctx))`.
func (u *UnitOfWork) Close(err error) error {
	if u.nested || u.done {
		return err
	}
	if err != nil {
		_ = u.Rollback()
		return err
	}
	if !u.autocommit {
		return u.Rollback()
	}
	return u.Commit()
}

// detached rebinds the transaction to a context that survives caller
// cancellation; the connection must be released on every exit path,
// including when the caller's context is already done.
func (u *UnitOfWork) detached() *gorm.DB {
	return u.tx.Session(&gorm.Session{Context: context.WithoutCancel(u.ctx)})
}
