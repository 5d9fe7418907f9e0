package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/matthieukhl/commercial-manager/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return db, mock
}

func existsRow(v bool) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"exists"}).AddRow(v)
}

var ctx = context.Background()

var validCustomer = CustomerInput{
	Name:    "Jane Doe",
	Email:   "jane@example.com",
	Phone:   "0612345678",
	Address: "12 Rue A",
}

func TestCustomerCreate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCustomerRepository(db)

	mock.ExpectQuery("FROM customers WHERE email = ").WithArgs("jane@example.com", 0).WillReturnRows(existsRow(false))
	mock.ExpectQuery("FROM customers WHERE phone = ").WithArgs("0612345678", 0).WillReturnRows(existsRow(false))
	mock.ExpectExec("INSERT INTO customers").
		WithArgs("Jane Doe", "jane@example.com", "0612345678", "12 Rue A").
		WillReturnResult(sqlmock.NewResult(7, 1))

	id, err := repo.Create(ctx, validCustomer)
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
}

func TestCustomerCreateDuplicateEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCustomerRepository(db)

	mock.ExpectQuery("FROM customers WHERE email = ").WillReturnRows(existsRow(true))

	_, err := repo.Create(ctx, validCustomer)
	assert.ErrorIs(t, err, errs.ErrDuplicate)
	assert.Contains(t, err.Error(), "email")
}

func TestCustomerCreateDuplicatePhone(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCustomerRepository(db)

	mock.ExpectQuery("FROM customers WHERE email = ").WillReturnRows(existsRow(false))
	mock.ExpectQuery("FROM customers WHERE phone = ").WillReturnRows(existsRow(true))

	_, err := repo.Create(ctx, validCustomer)
	assert.ErrorIs(t, err, errs.ErrDuplicate)
	assert.Contains(t, err.Error(), "phone")
}

func TestCustomerCreateRejectsInvalidFieldsBeforeQuerying(t *testing.T) {
	db, _ := newMock(t)
	repo := NewCustomerRepository(db)

	in := validCustomer
	in.Email = "not-an-email"
	_, err := repo.Create(ctx, in)
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)
}

func TestCustomerCreateTranslatesUniqueViolation(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCustomerRepository(db)

	mock.ExpectQuery("WHERE email = ").WillReturnRows(existsRow(false))
	mock.ExpectQuery("WHERE phone = ").WillReturnRows(existsRow(false))
	mock.ExpectExec("INSERT INTO customers").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	_, err := repo.Create(ctx, validCustomer)
	assert.ErrorIs(t, err, errs.ErrDuplicate)
}

func TestCustomerUpdateAllowsOwnEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCustomerRepository(db)

	mock.ExpectQuery("FROM customers WHERE id = ").WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "phone", "address"}).
			AddRow(3, "Jane", "jane@example.com", "0612345678", "old"))
	mock.ExpectQuery("WHERE email = \\? AND id <> \\?").WithArgs("jane@example.com", int64(3)).WillReturnRows(existsRow(false))
	mock.ExpectQuery("WHERE phone = \\? AND id <> \\?").WithArgs("0612345678", int64(3)).WillReturnRows(existsRow(false))
	mock.ExpectExec("UPDATE customers SET").WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Update(ctx, "3", validCustomer))
}

func TestCustomerUpdateMissing(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCustomerRepository(db)

	mock.ExpectQuery("FROM customers WHERE id = ").WillReturnError(sql.ErrNoRows)

	err := repo.Update(ctx, "3", validCustomer)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestCustomerDeleteReferencedByOrder(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCustomerRepository(db)

	mock.ExpectQuery("FROM customers WHERE id = ").WithArgs(int64(7)).WillReturnRows(existsRow(true))
	mock.ExpectQuery("FROM purchase_orders WHERE customer_id = ").WithArgs(int64(7)).WillReturnRows(existsRow(true))

	err := repo.Delete(ctx, "7")
	assert.ErrorIs(t, err, errs.ErrReferentialConflict)
}

func TestCustomerDelete(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCustomerRepository(db)

	mock.ExpectQuery("FROM customers WHERE id = ").WillReturnRows(existsRow(true))
	mock.ExpectQuery("FROM purchase_orders WHERE customer_id = ").WillReturnRows(existsRow(false))
	mock.ExpectExec("DELETE FROM customers").WithArgs(int64(7)).WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(ctx, "7"))
}

func TestCustomerDeleteInvalidID(t *testing.T) {
	db, _ := newMock(t)
	err := NewCustomerRepository(db).Delete(ctx, "7a")
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)
}

func TestCustomerList(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery("SELECT (.+) FROM customers ORDER BY id").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "phone", "address"}).
			AddRow(1, "A", "a@example.com", "1", "x").
			AddRow(2, "B", "b@example.com", "2", "y"))

	customers, err := NewCustomerRepository(db).List(ctx)
	require.NoError(t, err)
	require.Len(t, customers, 2)
	assert.Equal(t, "b@example.com", customers[1].Email)
}

var validProduct = ProductInput{
	Name:        "Wireless Mouse",
	Description: "Ergonomic",
	Price:       "29.99",
	Stock:       "200",
	Category:    "electronics",
	Barcode:     "4006381333931",
	Status:      "available",
}

func TestProductCreate(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery("FROM products WHERE barcode = ").WithArgs("4006381333931", 0).WillReturnRows(existsRow(false))
	mock.ExpectExec("INSERT INTO products").
		WithArgs("Wireless Mouse", "Ergonomic", "29.99", 200, "electronics", "4006381333931", "available").
		WillReturnResult(sqlmock.NewResult(3, 1))

	id, err := NewProductRepository(db).Create(ctx, validProduct)
	require.NoError(t, err)
	assert.Equal(t, int64(3), id)
}

func TestProductCreateDuplicateBarcode(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery("FROM products WHERE barcode = ").WillReturnRows(existsRow(true))

	_, err := NewProductRepository(db).Create(ctx, validProduct)
	assert.ErrorIs(t, err, errs.ErrDuplicate)
}

func TestProductCreateRejectsPriceAboveColumnRange(t *testing.T) {
	db, _ := newMock(t)
	in := validProduct
	in.Price = "100000000"

	_, err := NewProductRepository(db).Create(ctx, in)
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)
}

func TestProductDeleteReferencedByDetail(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery("FROM products WHERE id = ").WillReturnRows(existsRow(true))
	mock.ExpectQuery("FROM order_details WHERE product_id = ").WillReturnRows(existsRow(true))

	err := NewProductRepository(db).Delete(ctx, "3")
	assert.ErrorIs(t, err, errs.ErrReferentialConflict)
}

func TestProductGet(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery("FROM products WHERE id = ").WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "price", "stock", "category", "barcode", "status"}).
			AddRow(3, "Mouse", "Ergonomic", "29.99", 200, "electronics", "400", "available"))

	p, err := NewProductRepository(db).Get(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, "29.99", p.Price.StringFixed(2))
	assert.Equal(t, 200, p.Stock)
}

var validPayment = PaymentInput{
	OrderID:       "5",
	Date:          "2024-03-02",
	Amount:        "39.98",
	PaymentMethod: "card",
}

func TestPaymentCreateRequiresOrder(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery("FROM purchase_orders WHERE id = ").WithArgs(int64(5)).WillReturnRows(existsRow(false))

	_, err := NewPaymentRepository(db).Create(ctx, validPayment)
	assert.ErrorIs(t, err, errs.ErrReferenceNotFound)
}

func TestPaymentCreate(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery("FROM purchase_orders WHERE id = ").WillReturnRows(existsRow(true))
	mock.ExpectExec("INSERT INTO payments").
		WithArgs(int64(5), "2024-03-02", "39.98", "card").
		WillReturnResult(sqlmock.NewResult(11, 1))

	id, err := NewPaymentRepository(db).Create(ctx, validPayment)
	require.NoError(t, err)
	assert.Equal(t, int64(11), id)
}

func TestPaymentCreateRejectsBadDate(t *testing.T) {
	db, _ := newMock(t)
	in := validPayment
	in.Date = "2024-02-30"

	_, err := NewPaymentRepository(db).Create(ctx, in)
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)
}

func TestPaymentUpdateMissingPayment(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery("FROM payments WHERE id = ").WillReturnRows(existsRow(false))

	err := NewPaymentRepository(db).Update(ctx, "9", validPayment)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestPaymentDeleteMissing(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec("DELETE FROM payments").WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewPaymentRepository(db).Delete(ctx, "9")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestStorageErrorsAreWrapped(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery("FROM products ORDER BY id").WillReturnError(errors.New("connection reset"))

	_, err := NewProductRepository(db).List(ctx)
	assert.ErrorIs(t, err, errs.ErrStorage)
}

func customerRow(id int64, email, phone string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "email", "phone", "address"}).
		AddRow(id, "Jane", email, phone, "old")
}

func TestCustomerUpdateEmailOwnedByAnother(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery("FROM customers WHERE id = ").WithArgs(int64(3)).WillReturnRows(customerRow(3, "old@example.com", "0612345678"))
	mock.ExpectQuery("WHERE email = \\? AND id <> \\?").WithArgs("jane@example.com", int64(3)).WillReturnRows(existsRow(true))

	err := NewCustomerRepository(db).Update(ctx, "3", validCustomer)
	assert.ErrorIs(t, err, errs.ErrDuplicate)
	assert.Contains(t, err.Error(), "email")
}

func TestCustomerUpdatePhoneOwnedByAnother(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery("FROM customers WHERE id = ").WithArgs(int64(3)).WillReturnRows(customerRow(3, "jane@example.com", "0700000000"))
	mock.ExpectQuery("WHERE email = \\? AND id <> \\?").WillReturnRows(existsRow(false))
	mock.ExpectQuery("WHERE phone = \\? AND id <> \\?").WithArgs("0612345678", int64(3)).WillReturnRows(existsRow(true))

	err := NewCustomerRepository(db).Update(ctx, "3", validCustomer)
	assert.ErrorIs(t, err, errs.ErrDuplicate)
	assert.Contains(t, err.Error(), "phone")
}

func TestProductUpdateBarcodeOwnedByAnother(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery("FROM products WHERE id = ").WithArgs(int64(3)).WillReturnRows(existsRow(true))
	mock.ExpectQuery("WHERE barcode = \\? AND id <> \\?").WithArgs("4006381333931", int64(3)).WillReturnRows(existsRow(true))

	err := NewProductRepository(db).Update(ctx, "3", validProduct)
	assert.ErrorIs(t, err, errs.ErrDuplicate)
}

func TestProductUpdateKeepsOwnBarcode(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery("FROM products WHERE id = ").WillReturnRows(existsRow(true))
	mock.ExpectQuery("WHERE barcode = \\? AND id <> \\?").WillReturnRows(existsRow(false))
	mock.ExpectExec("UPDATE products SET").
		WithArgs("Wireless Mouse", "Ergonomic", "29.99", 200, "electronics", "4006381333931", "available", int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewProductRepository(db).Update(ctx, "3", validProduct))
}

func TestProductRejectsStockBeyondIntColumn(t *testing.T) {
	db, _ := newMock(t)
	in := validProduct
	in.Stock = "2147483648"

	_, err := NewProductRepository(db).Create(ctx, in)
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)
}

func TestProductDelete(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery("FROM products WHERE id = ").WillReturnRows(existsRow(true))
	mock.ExpectQuery("FROM order_details WHERE product_id = ").WillReturnRows(existsRow(false))
	mock.ExpectExec("DELETE FROM products WHERE id = ").WithArgs(int64(3)).WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewProductRepository(db).Delete(ctx, "3"))
}

func TestProductDeleteRemovedConcurrently(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery("FROM products WHERE id = ").WillReturnRows(existsRow(true))
	mock.ExpectQuery("FROM order_details WHERE product_id = ").WillReturnRows(existsRow(false))
	mock.ExpectExec("DELETE FROM products WHERE id = ").WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewProductRepository(db).Delete(ctx, "3")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestPaymentUpdateMissingOrder(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery("FROM payments WHERE id = ").WithArgs(int64(9)).WillReturnRows(existsRow(true))
	mock.ExpectQuery("FROM purchase_orders WHERE id = ").WithArgs(int64(5)).WillReturnRows(existsRow(false))

	err := NewPaymentRepository(db).Update(ctx, "9", validPayment)
	assert.ErrorIs(t, err, errs.ErrReferenceNotFound)
	assert.Contains(t, err.Error(), "purchase order")
}

func TestPaymentRejectsAmountBeyondDecimalColumn(t *testing.T) {
	db, _ := newMock(t)
	in := validPayment
	in.Amount = "100000000.00"

	_, err := NewPaymentRepository(db).Create(ctx, in)
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)
}
