package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/matthieukhl/commercial-manager/internal/errs"
)

// WithTx runs fn inside one transaction on one pooled connection. The
// transaction is rolled back when fn returns an error or panics and
// committed otherwise.
func (db *DB) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errs.Storage("begin transaction", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			err = errors.Join(err, fmt.Errorf("failed to roll back: %w", rbErr))
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		committed = true
		return errs.Storage("commit transaction", err)
	}
	committed = true
	return nil
}
