// Package repository implements keyed CRUD for customers, products and
// payments. Each repository runs on whatever database.Querier it is given,
// so the order manager can reuse them inside its own transaction.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/matthieukhl/commercial-manager/internal/database"
	"github.com/matthieukhl/commercial-manager/internal/errs"
)

// MySQL server error numbers we translate into the error taxonomy.
const (
	errDupEntry        = 1062
	errRowIsReferenced = 1451
	errNoReferencedRow = 1452
)

// translate maps driver errors onto errs sentinels. Anything unknown is a
// storage failure.
func translate(op string, err error) error {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case errDupEntry:
			return fmt.Errorf("failed to %s: %w: %s", op, errs.ErrDuplicate, me.Message)
		case errRowIsReferenced:
			return fmt.Errorf("failed to %s: %w: %s", op, errs.ErrReferentialConflict, me.Message)
		case errNoReferencedRow:
			return fmt.Errorf("failed to %s: %w: %s", op, errs.ErrReferenceNotFound, me.Message)
		}
	}
	return errs.Storage(op, err)
}

func exists(ctx context.Context, q database.Querier, op, query string, args ...any) (bool, error) {
	var found bool
	if err := q.QueryRowContext(ctx, query, args...).Scan(&found); err != nil {
		return false, errs.Storage(op, err)
	}
	return found, nil
}

// OrderExists reports whether a purchase order row exists.
func OrderExists(ctx context.Context, q database.Querier, id int64) (bool, error) {
	return exists(ctx, q, "check purchase order",
		"SELECT EXISTS(SELECT 1 FROM purchase_orders WHERE id = ?)", id)
}

// OrderHasPayments reports whether any payment points at the order.
func OrderHasPayments(ctx context.Context, q database.Querier, orderID int64) (bool, error) {
	return exists(ctx, q, "check order payments",
		"SELECT EXISTS(SELECT 1 FROM payments WHERE order_id = ?)", orderID)
}

func rowsAffected(op string, res interface{ RowsAffected() (int64, error) }) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errs.Storage(op, err)
	}
	return n, nil
}
