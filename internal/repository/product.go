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

// ProductInput carries product fields as typed by the user.
type ProductInput struct {
	Name        string
	Description string
	Price       string
	Stock       string
	Category    string
	Barcode     string
	Status      string
}

type productRow struct {
	price decimal.Decimal
	stock int
}

func (in ProductInput) parse() (productRow, error) {
	var row productRow
	if err := validate.BoundedText("name", in.Name, 255); err != nil {
		return row, err
	}
	if err := validate.Text("description", in.Description); err != nil {
		return row, err
	}
	price, err := validate.ParseProductPrice("price", in.Price)
	if err != nil {
		return row, err
	}
	stock, err := validate.ParseNonNegativeInt("stock", in.Stock)
	if err != nil {
		return row, err
	}
	if err := validate.BoundedText("category", in.Category, 100); err != nil {
		return row, err
	}
	if err := validate.BoundedText("barcode", in.Barcode, 50); err != nil {
		return row, err
	}
	if err := validate.BoundedText("status", in.Status, 50); err != nil {
		return row, err
	}
	return productRow{price: price, stock: stock}, nil
}

// ProductRepository runs product queries on a Querier.
type ProductRepository struct {
	q database.Querier
}

// NewProductRepository creates a product repository over q.
func NewProductRepository(q database.Querier) *ProductRepository {
	return &ProductRepository{q: q}
}

const productColumns = "id, name, description, price, stock, category, barcode, status"

func scanProduct(row interface{ Scan(...any) error }) (models.Product, error) {
	var p models.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.Category, &p.Barcode, &p.Status)
	return p, err
}

// List returns every product ordered by id.
func (r *ProductRepository) List(ctx context.Context) ([]models.Product, error) {
	rows, err := r.q.QueryContext(ctx, "SELECT "+productColumns+" FROM products ORDER BY id")
	if err != nil {
		return nil, errs.Storage("list products", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, errs.Storage("scan product", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Storage("list products", err)
	}
	return products, nil
}

// Get returns one product or ErrNotFound.
func (r *ProductRepository) Get(ctx context.Context, id string) (*models.Product, error) {
	productID, err := validate.ParseID("product id", id)
	if err != nil {
		return nil, err
	}
	p, err := scanProduct(r.q.QueryRowContext(ctx,
		"SELECT "+productColumns+" FROM products WHERE id = ?", productID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NotFound("product", productID)
	}
	if err != nil {
		return nil, errs.Storage("get product", err)
	}
	return &p, nil
}

// ExistsByID is the existence query the order manager relies on.
func (r *ProductRepository) ExistsByID(ctx context.Context, id int64) (bool, error) {
	return exists(ctx, r.q, "check product", "SELECT EXISTS(SELECT 1 FROM products WHERE id = ?)", id)
}

// Create inserts a product after rejecting a barcode already in use.
func (r *ProductRepository) Create(ctx context.Context, in ProductInput) (int64, error) {
	row, err := in.parse()
	if err != nil {
		return 0, err
	}
	if err := r.checkBarcode(ctx, in.Barcode, 0); err != nil {
		return 0, err
	}

	res, err := r.q.ExecContext(ctx,
		"INSERT INTO products (name, description, price, stock, category, barcode, status) VALUES (?, ?, ?, ?, ?, ?, ?)",
		in.Name, in.Description, row.price, row.stock, in.Category, in.Barcode, in.Status)
	if err != nil {
		return 0, translate("insert product", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, errs.Storage("read product id", err)
	}
	return id, nil
}

// Update overwrites every field. The barcode must not belong to another product.
func (r *ProductRepository) Update(ctx context.Context, id string, in ProductInput) error {
	productID, err := validate.ParseID("product id", id)
	if err != nil {
		return err
	}
	row, err := in.parse()
	if err != nil {
		return err
	}

	found, err := r.ExistsByID(ctx, productID)
	if err != nil {
		return err
	}
	if !found {
		return errs.NotFound("product", productID)
	}
	if err := r.checkBarcode(ctx, in.Barcode, productID); err != nil {
		return err
	}

	_, err = r.q.ExecContext(ctx,
		"UPDATE products SET name = ?, description = ?, price = ?, stock = ?, category = ?, barcode = ?, status = ? WHERE id = ?",
		in.Name, in.Description, row.price, row.stock, in.Category, in.Barcode, in.Status, productID)
	if err != nil {
		return translate("update product", err)
	}
	return nil
}

func (r *ProductRepository) checkBarcode(ctx context.Context, barcode string, self int64) error {
	taken, err := exists(ctx, r.q, "check product barcode",
		"SELECT EXISTS(SELECT 1 FROM products WHERE barcode = ? AND id <> ?)", barcode, self)
	if err != nil {
		return err
	}
	if taken {
		return errs.Duplicate("product", "barcode", barcode)
	}
	return nil
}

// Delete refuses to remove a product that appears on any order detail.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	productID, err := validate.ParseID("product id", id)
	if err != nil {
		return err
	}

	found, err := r.ExistsByID(ctx, productID)
	if err != nil {
		return err
	}
	if !found {
		return errs.NotFound("product", productID)
	}

	referenced, err := exists(ctx, r.q, "check product order details",
		"SELECT EXISTS(SELECT 1 FROM order_details WHERE product_id = ?)", productID)
	if err != nil {
		return err
	}
	if referenced {
		return errs.Conflict("product", productID, "order details")
	}

	res, err := r.q.ExecContext(ctx, "DELETE FROM products WHERE id = ?", productID)
	if err != nil {
		return translate("delete product", err)
	}
	n, err := rowsAffected("delete product", res)
	if err != nil {
		return err
	}
	if n == 0 {
		return errs.NotFound("product", productID)
	}
	return nil
}
