package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/matthieukhl/commercial-manager/internal/database"
	"github.com/matthieukhl/commercial-manager/internal/errs"
	"github.com/matthieukhl/commercial-manager/internal/models"
	"github.com/matthieukhl/commercial-manager/internal/validate"
)

// CustomerInput carries customer fields as typed by the user.
type CustomerInput struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

func (in CustomerInput) validate() error {
	if err := validate.BoundedText("name", in.Name, 255); err != nil {
		return err
	}
	if err := validate.Email("email", in.Email); err != nil {
		return err
	}
	if err := validate.Phone("phone", in.Phone); err != nil {
		return err
	}
	return validate.Text("address", in.Address)
}

// CustomerRepository runs customer queries on a Querier.
type CustomerRepository struct {
	q database.Querier
}

// NewCustomerRepository creates a customer repository over q.
func NewCustomerRepository(q database.Querier) *CustomerRepository {
	return &CustomerRepository{q: q}
}

const customerColumns = "id, name, email, phone, address"

func scanCustomer(row interface{ Scan(...any) error }) (models.Customer, error) {
	var c models.Customer
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address)
	return c, err
}

// List returns every customer ordered by id.
func (r *CustomerRepository) List(ctx context.Context) ([]models.Customer, error) {
	rows, err := r.q.QueryContext(ctx, "SELECT "+customerColumns+" FROM customers ORDER BY id")
	if err != nil {
		return nil, errs.Storage("list customers", err)
	}
	defer rows.Close()

	customers := []models.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, errs.Storage("scan customer", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Storage("list customers", err)
	}
	return customers, nil
}

// Get returns one customer or ErrNotFound.
func (r *CustomerRepository) Get(ctx context.Context, id string) (*models.Customer, error) {
	customerID, err := validate.ParseID("customer id", id)
	if err != nil {
		return nil, err
	}
	return r.get(ctx, customerID)
}

func (r *CustomerRepository) get(ctx context.Context, id int64) (*models.Customer, error) {
	c, err := scanCustomer(r.q.QueryRowContext(ctx,
		"SELECT "+customerColumns+" FROM customers WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NotFound("customer", id)
	}
	if err != nil {
		return nil, errs.Storage("get customer", err)
	}
	return &c, nil
}

// ExistsByID is the existence query the order manager relies on.
func (r *CustomerRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	return exists(ctx, r.q, "check customer", "SELECT EXISTS(SELECT 1 FROM customers WHERE id = ?)", id)
}

// Create inserts a customer after rejecting a taken email or phone.
func (r *CustomerRepository) Create(ctx context.Context, in CustomerInput) (int64, error) {
	if err := in.validate(); err != nil {
		return 0, err
	}
	if err := r.checkUnique(ctx, in, 0); err != nil {
		return 0, err
	}

	res, err := r.q.ExecContext(ctx,
		"INSERT INTO customers (name, email, phone, address) VALUES (?, ?, ?, ?)",
		in.Name, in.Email, in.Phone, in.Address)
	if err != nil {
		return 0, translate("insert customer", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, errs.Storage("read customer id", err)
	}
	return id, nil
}

// Update overwrites every field. Email and phone may stay the same but
// must not collide with another customer.
func (r *CustomerRepository) Update(ctx context.Context, id string, in CustomerInput) error {
	customerID, err := validate.ParseID("customer id", id)
	if err != nil {
		return err
	}
	if err := in.validate(); err != nil {
		return err
	}
	if _, err := r.get(ctx, customerID); err != nil {
		return err
	}
	if err := r.checkUnique(ctx, in, customerID); err != nil {
		return err
	}

	_, err = r.q.ExecContext(ctx,
		"UPDATE customers SET name = ?, email = ?, phone = ?, address = ? WHERE id = ?",
		in.Name, in.Email, in.Phone, in.Address, customerID)
	if err != nil {
		return translate("update customer", err)
	}
	return nil
}

// checkUnique ignores the row with id self; pass 0 on create.
func (r *CustomerRepository) checkUnique(ctx context.Context, in CustomerInput, self int64) error {
	taken, err := exists(ctx, r.q, "check customer email",
		"SELECT EXISTS(SELECT 1 FROM customers WHERE email = ? AND id <> ?)", in.Email, self)
	if err != nil {
		return err
	}
	if taken {
		return errs.Duplicate("customer", "email", in.Email)
	}

	taken, err = exists(ctx, r.q, "check customer phone",
		"SELECT EXISTS(SELECT 1 FROM customers WHERE phone = ? AND id <> ?)", in.Phone, self)
	if err != nil {
		return err
	}
	if taken {
		return errs.Duplicate("customer", "phone", in.Phone)
	}
	return nil
}

// Delete refuses to remove a customer that still has purchase orders.
func (r *CustomerRepository) Delete(ctx context.Context, id string) error {
	customerID, err := validate.ParseID("customer id", id)
	if err != nil {
		return err
	}

	found, err := r.ExistsByID(ctx, customerID)
	if err != nil {
		return err
	}
	if !found {
		return errs.NotFound("customer", customerID)
	}

	referenced, err := exists(ctx, r.q, "check customer orders",
		"SELECT EXISTS(SELECT 1 FROM purchase_orders WHERE customer_id = ?)", customerID)
	if err != nil {
		return err
	}
	if referenced {
		return errs.Conflict("customer", customerID, "purchase orders")
	}

	res, err := r.q.ExecContext(ctx, "DELETE FROM customers WHERE id = ?", customerID)
	if err != nil {
		return translate("delete customer", err)
	}
	n, err := rowsAffected("delete customer", res)
	if err != nil {
		return err
	}
	if n == 0 {
		return errs.NotFound("customer", customerID)
	}
	return nil
}
