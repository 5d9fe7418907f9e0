package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/matthieukhl/commercial-manager/internal/database"
	"github.com/matthieukhl/commercial-manager/internal/errs"
	"github.com/matthieukhl/commercial-manager/internal/models"
	"github.com/matthieukhl/commercial-manager/internal/validate"
	"github.com/shopspring/decimal"
)

// PaymentInput carries payment fields as typed by the user.
type PaymentInput struct {
	OrderID       string
	Date          string
	Amount        string
	PaymentMethod string
}

type paymentRow struct {
	orderID int64
	amount  decimal.Decimal
}

func (in PaymentInput) parse() (paymentRow, error) {
	var row paymentRow
	orderID, err := validate.ParseID("order id", in.OrderID)
	if err != nil {
		return row, err
	}
	if err := validate.CalendarDate("date", in.Date); err != nil {
		return row, err
	}
	amount, err := validate.ParseMoney("amount", in.Amount)
	if err != nil {
		return row, err
	}
	if err := validate.BoundedText("payment method", in.PaymentMethod, 50); err != nil {
		return row, err
	}
	return paymentRow{orderID: orderID, amount: amount}, nil
}

// PaymentRepository runs payment queries on a Querier.
type PaymentRepository struct {
	q database.Querier
}

// NewPaymentRepository creates a payment repository over q.
func NewPaymentRepository(q database.Querier) *PaymentRepository {
	return &PaymentRepository{q: q}
}

const paymentColumns = "id, order_id, DATE_FORMAT(date, '%Y-%m-%d'), amount, payment_method"

func scanPayment(row interface{ Scan(...any) error }) (models.Payment, error) {
	var p models.Payment
	err := row.Scan(&p.ID, &p.OrderID, &p.Date, &p.Amount, &p.PaymentMethod)
	return p, err
}

// List returns every payment ordered by id.
func (r *PaymentRepository) List(ctx context.Context) ([]models.Payment, error) {
	rows, err := r.q.QueryContext(ctx, "SELECT "+paymentColumns+" FROM payments ORDER BY id")
	if err != nil {
		return nil, errs.Storage("list payments", err)
	}
	defer rows.Close()

	payments := []models.Payment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, errs.Storage("scan payment", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Storage("list payments", err)
	}
	return payments, nil
}

// Get returns one payment or ErrNotFound.
func (r *PaymentRepository) Get(ctx context.Context, id string) (*models.Payment, error) {
	paymentID, err := validate.ParseID("payment id", id)
	if err != nil {
		return nil, err
	}
	p, err := scanPayment(r.q.QueryRowContext(ctx,
		"SELECT "+paymentColumns+" FROM payments WHERE id = ?", paymentID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NotFound("payment", paymentID)
	}
	if err != nil {
		return nil, errs.Storage("get payment", err)
	}
	return &p, nil
}

func (r *PaymentRepository) requireOrder(ctx context.Context, orderID int64) error {
	found, err := OrderExists(ctx, r.q, orderID)
	if err != nil {
		return err
	}
	if !found {
		return errs.ReferenceNotFound("purchase order", orderID)
	}
	return nil
}

// Create records a payment against an existing order.
func (r *PaymentRepository) Create(ctx context.Context, in PaymentInput) (int64, error) {
	row, err := in.parse()
	if err != nil {
		return 0, err
	}
	if err := r.requireOrder(ctx, row.orderID); err != nil {
		return 0, err
	}

	res, err := r.q.ExecContext(ctx,
		"INSERT INTO payments (order_id, date, amount, payment_method) VALUES (?, ?, ?, ?)",
		row.orderID, in.Date, row.amount, in.PaymentMethod)
	if err != nil {
		return 0, translate("insert payment", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, errs.Storage("read payment id", err)
	}
	return id, nil
}

// Update overwrites every field of an existing payment. The order must exist.
func (r *PaymentRepository) Update(ctx context.Context, id string, in PaymentInput) error {
	paymentID, err := validate.ParseID("payment id", id)
	if err != nil {
		return err
	}
	row, err := in.parse()
	if err != nil {
		return err
	}

	found, err := exists(ctx, r.q, "check payment", "SELECT EXISTS(SELECT 1 FROM payments WHERE id = ?)", paymentID)
	if err != nil {
		return err
	}
	if !found {
		return errs.NotFound("payment", paymentID)
	}
	if err := r.requireOrder(ctx, row.orderID); err != nil {
		return err
	}

	_, err = r.q.ExecContext(ctx,
		"UPDATE payments SET order_id = ?, date = ?, amount = ?, payment_method = ? WHERE id = ?",
		row.orderID, in.Date, row.amount, in.PaymentMethod, paymentID)
	if err != nil {
		return translate("update payment", err)
	}
	return nil
}

// Delete removes one payment.
func (r *PaymentRepository) Delete(ctx context.Context, id string) error {
	paymentID, err := validate.ParseID("payment id", id)
	if err != nil {
		return err
	}

	res, err := r.q.ExecContext(ctx, "DELETE FROM payments WHERE id = ?", paymentID)
	if err != nil {
		return translate("delete payment", err)
	}
	n, err := rowsAffected("delete payment", res)
	if err != nil {
		return err
	}
	if n == 0 {
		return errs.NotFound("payment", paymentID)
	}
	return nil
}
