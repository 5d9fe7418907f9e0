// Package orders owns the purchase-order aggregate: a header and its line
// items are always written together in one transaction.
package orders

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/matthieukhl/commercial-manager/internal/database"
	"github.com/matthieukhl/commercial-manager/internal/errs"
	"github.com/matthieukhl/commercial-manager/internal/events"
	"github.com/matthieukhl/commercial-manager/internal/metrics"
	"github.com/matthieukhl/commercial-manager/internal/models"
	"github.com/matthieukhl/commercial-manager/internal/repository"
	"github.com/matthieukhl/commercial-manager/internal/validate"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const orderColumns = "id, DATE_FORMAT(date, '%Y-%m-%d'), delivery_address, track_number, status, customer_id"

// Manager reads and writes purchase orders as whole aggregates.
type Manager struct {
	db        *database.DB
	publisher events.Publisher
	log       zerolog.Logger
	timeout   time.Duration
	now       func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithPublisher sets where order events go after a commit.
func WithPublisher(p events.Publisher) Option {
	return func(m *Manager) { m.publisher = p }
}

// WithLogger sets the logger used for operation outcomes.
func WithLogger(l zerolog.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// WithTimeout bounds every operation, transaction included. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(m *Manager) { m.timeout = d }
}

// NewManager creates a new order manager. Events default to a no-op publisher.
func NewManager(db *database.DB, opts ...Option) *Manager {
	m := &Manager{
		db:        db,
		publisher: events.Nop{},
		log:       zerolog.Nop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, m.timeout)
}

// Create validates the whole order, then writes the header and every
// detail in one transaction and returns the new order id.
func (m *Manager) Create(ctx context.Context, in Input) (id int64, err error) {
	started := time.Now()
	defer func() { metrics.RecordOrderOperation("create", started, err) }()

	h, err := parseHeader(in)
	if err != nil {
		return 0, err
	}
	if len(in.Details) == 0 {
		return 0, &validate.ValidationError{Field: "details", Reason: "an order needs at least one product"}
	}
	details, err := parseDetails(in.Details)
	if err != nil {
		return 0, err
	}

	txCtx, cancel := m.withTimeout(ctx)
	defer cancel()

	var orderID int64
	err = m.db.WithTx(txCtx, func(tx *sql.Tx) error {
		if err := requireCustomer(txCtx, tx, h.customerID); err != nil {
			return err
		}

		res, err := tx.ExecContext(txCtx,
			"INSERT INTO purchase_orders (date, delivery_address, track_number, status, customer_id) VALUES (?, ?, ?, ?, ?)",
			h.date, h.deliveryAddress, h.trackNumber, h.status, h.customerID)
		if err != nil {
			return errs.Storage("insert purchase order", err)
		}
		orderID, err = res.LastInsertId()
		if err != nil {
			return errs.Storage("read purchase order id", err)
		}

		return insertDetails(txCtx, tx, orderID, details)
	})
	if err != nil {
		m.logFailure("create", 0, err)
		return 0, err
	}

	m.log.Info().Int64("order_id", orderID).Int("details", len(details)).Msg("purchase order created")
	m.publish(ctx, events.OrderEvent{
		Type:       events.OrderCreated,
		OrderID:    orderID,
		CustomerID: h.customerID,
		Status:     h.status,
		Lines:      len(details),
		Total:      (&models.PurchaseOrder{Details: details}).Total(),
	})
	return orderID, nil
}

// Get returns the order with its details in insertion order.
func (m *Manager) Get(ctx context.Context, id string) (order *models.PurchaseOrder, err error) {
	started := time.Now()
	defer func() { metrics.RecordOrderOperation("get", started, err) }()

	orderID, err := validate.ParseID("order id", id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	conn, err := m.db.Conn(ctx)
	if err != nil {
		return nil, errs.Storage("acquire connection", err)
	}
	defer conn.Close()

	return getOrder(ctx, conn, orderID)
}

// List returns every order with its details.
func (m *Manager) List(ctx context.Context) (orders []models.PurchaseOrder, err error) {
	started := time.Now()
	defer func() { metrics.RecordOrderOperation("list", started, err) }()

	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	conn, err := m.db.Conn(ctx)
	if err != nil {
		return nil, errs.Storage("acquire connection", err)
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, "SELECT "+orderColumns+" FROM purchase_orders ORDER BY id")
	if err != nil {
		return nil, errs.Storage("list purchase orders", err)
	}
	defer rows.Close()

	orders = []models.PurchaseOrder{}
	index := map[int64]int{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, errs.Storage("scan purchase order", err)
		}
		index[o.ID] = len(orders)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Storage("list purchase orders", err)
	}
	rows.Close()

	detailRows, err := conn.QueryContext(ctx,
		"SELECT order_id, product_id, quantity, price FROM order_details ORDER BY order_id, id")
	if err != nil {
		return nil, errs.Storage("list order details", err)
	}
	defer detailRows.Close()

	for detailRows.Next() {
		var orderID int64
		var d models.OrderDetail
		if err := detailRows.Scan(&orderID, &d.ProductID, &d.Quantity, &d.Price); err != nil {
			return nil, errs.Storage("scan order detail", err)
		}
		if i, ok := index[orderID]; ok {
			orders[i].Details = append(orders[i].Details, d)
		}
	}
	if err := detailRows.Err(); err != nil {
		return nil, errs.Storage("list order details", err)
	}
	return orders, nil
}

// Update overwrites every header column with the values in `in`. When
// in.Details is non-empty the stored details are replaced wholesale;
// otherwise they are left as they are.
func (m *Manager) Update(ctx context.Context, id string, in Input) (err error) {
	started := time.Now()
	defer func() { metrics.RecordOrderOperation("update", started, err) }()

	orderID, err := validate.ParseID("order id", id)
	if err != nil {
		return err
	}
	h, err := parseHeader(in)
	if err != nil {
		return err
	}
	details, err := parseDetails(in.Details)
	if err != nil {
		return err
	}

	txCtx, cancel := m.withTimeout(ctx)
	defer cancel()

	lines, total := len(details), (&models.PurchaseOrder{Details: details}).Total()
	err = m.db.WithTx(txCtx, func(tx *sql.Tx) error {
		if err := lockOrder(txCtx, tx, orderID); err != nil {
			return err
		}
		if err := requireCustomer(txCtx, tx, h.customerID); err != nil {
			return err
		}

		_, err := tx.ExecContext(txCtx,
			"UPDATE purchase_orders SET date = ?, delivery_address = ?, track_number = ?, status = ?, customer_id = ? WHERE id = ?",
			h.date, h.deliveryAddress, h.trackNumber, h.status, h.customerID, orderID)
		if err != nil {
			return errs.Storage("update purchase order", err)
		}

		if len(details) == 0 {
			lines, total, err = summarizeDetails(txCtx, tx, orderID)
			return err
		}
		if _, err := tx.ExecContext(txCtx, "DELETE FROM order_details WHERE order_id = ?", orderID); err != nil {
			return errs.Storage("delete order details", err)
		}
		return insertDetails(txCtx, tx, orderID, details)
	})
	if err != nil {
		m.logFailure("update", orderID, err)
		return err
	}

	m.log.Info().Int64("order_id", orderID).Bool("details_replaced", len(details) > 0).Msg("purchase order updated")
	m.publish(ctx, events.OrderEvent{
		Type:       events.OrderUpdated,
		OrderID:    orderID,
		CustomerID: h.customerID,
		Status:     h.status,
		Lines:      lines,
		Total:      total,
	})
	return nil
}

// Delete removes the details and then the header. Orders that already
// have payments are kept.
func (m *Manager) Delete(ctx context.Context, id string) (err error) {
	started := time.Now()
	defer func() { metrics.RecordOrderOperation("delete", started, err) }()

	orderID, err := validate.ParseID("order id", id)
	if err != nil {
		return err
	}

	txCtx, cancel := m.withTimeout(ctx)
	defer cancel()

	var removed int64
	err = m.db.WithTx(txCtx, func(tx *sql.Tx) error {
		paid, err := repository.OrderHasPayments(txCtx, tx, orderID)
		if err != nil {
			return err
		}
		if paid {
			return errs.Conflict("purchase order", orderID, "payments")
		}

		res, err := tx.ExecContext(txCtx, "DELETE FROM order_details WHERE order_id = ?", orderID)
		if err != nil {
			return errs.Storage("delete order details", err)
		}
		if removed, err = res.RowsAffected(); err != nil {
			return errs.Storage("delete order details", err)
		}

		res, err = tx.ExecContext(txCtx, "DELETE FROM purchase_orders WHERE id = ?", orderID)
		if err != nil {
			return errs.Storage("delete purchase order", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return errs.Storage("delete purchase order", err)
		}
		if n == 0 {
			return errs.NotFound("purchase order", orderID)
		}
		return nil
	})
	if err != nil {
		m.logFailure("delete", orderID, err)
		return err
	}

	m.log.Info().Int64("order_id", orderID).Int64("details", removed).Msg("purchase order deleted")
	m.publish(ctx, events.OrderEvent{Type: events.OrderDeleted, OrderID: orderID, Lines: int(removed)})
	return nil
}

func (m *Manager) publish(ctx context.Context, ev events.OrderEvent) {
	ev.Occurred = m.now()
	if err := m.publisher.Publish(ctx, ev); err != nil {
		m.log.Error().Err(err).Int64("order_id", ev.OrderID).Str("type", ev.Type).Msg("failed to publish order event")
	}
}

func (m *Manager) logFailure(op string, orderID int64, err error) {
	ev := m.log.Debug()
	if errors.Is(err, errs.ErrStorage) {
		ev = m.log.Error()
	}
	ev.Err(err).Str("op", op).Int64("order_id", orderID).Msg("purchase order operation rolled back")
}

func requireCustomer(ctx context.Context, q database.Querier, id int64) error {
	found, err := repository.NewCustomerRepository(q).ExistsByID(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return errs.ReferenceNotFound("customer", id)
	}
	return nil
}

// insertDetails writes the lines in order, checking each product first.
func insertDetails(ctx context.Context, q database.Querier, orderID int64, details []models.OrderDetail) error {
	products := repository.NewProductRepository(q)
	for _, d := range details {
		found, err := products.ExistsByID(ctx, d.ProductID)
		if err != nil {
			return err
		}
		if !found {
			return errs.ReferenceNotFound("product", d.ProductID)
		}

		_, err = q.ExecContext(ctx,
			"INSERT INTO order_details (order_id, product_id, quantity, price) VALUES (?, ?, ?, ?)",
			orderID, d.ProductID, d.Quantity, d.Price)
		if err != nil {
			return errs.Storage("insert order detail", err)
		}
	}
	return nil
}

// summarizeDetails reads the line count and total of the stored details.
func summarizeDetails(ctx context.Context, q database.Querier, orderID int64) (int, decimal.Decimal, error) {
	var lines int
	var total decimal.Decimal
	err := q.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(quantity * price), 0) FROM order_details WHERE order_id = ?", orderID).
		Scan(&lines, &total)
	if err != nil {
		return 0, decimal.Zero, errs.Storage("summarize order details", err)
	}
	return lines, total, nil
}

// lockOrder takes a row lock so concurrent updates of one order serialize.
func lockOrder(ctx context.Context, q database.Querier, id int64) error {
	var locked int64
	err := q.QueryRowContext(ctx, "SELECT id FROM purchase_orders WHERE id = ? FOR UPDATE", id).Scan(&locked)
	if errors.Is(err, sql.ErrNoRows) {
		return errs.NotFound("purchase order", id)
	}
	if err != nil {
		return errs.Storage("lock purchase order", err)
	}
	return nil
}

func scanOrder(row interface{ Scan(...any) error }) (models.PurchaseOrder, error) {
	var o models.PurchaseOrder
	err := row.Scan(&o.ID, &o.Date, &o.DeliveryAddress, &o.TrackNumber, &o.Status, &o.CustomerID)
	o.Details = []models.OrderDetail{}
	return o, err
}

func getOrder(ctx context.Context, q database.Querier, id int64) (*models.PurchaseOrder, error) {
	o, err := scanOrder(q.QueryRowContext(ctx, "SELECT "+orderColumns+" FROM purchase_orders WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NotFound("purchase order", id)
	}
	if err != nil {
		return nil, errs.Storage("get purchase order", err)
	}

	rows, err := q.QueryContext(ctx,
		"SELECT product_id, quantity, price FROM order_details WHERE order_id = ? ORDER BY id", id)
	if err != nil {
		return nil, errs.Storage("get order details", err)
	}
	defer rows.Close()

	for rows.Next() {
		var d models.OrderDetail
		if err := rows.Scan(&d.ProductID, &d.Quantity, &d.Price); err != nil {
			return nil, errs.Storage("scan order detail", err)
		}
		o.Details = append(o.Details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Storage("get order details", err)
	}
	return &o, nil
}
