package models

import (
	"github.com/shopspring/decimal"
)

// Customer is a buyer that purchase orders point at
type Customer struct {
	ID      int64  `json:"id" db:"id"`
	Name    string `json:"name" db:"name"`
	Email   string `json:"email" db:"email"`
	Phone   string `json:"phone" db:"phone"`
	Address string `json:"address" db:"address"`
}

// Product is a catalog entry referenced by order details
type Product struct {
	ID          int64           `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Stock       int             `json:"stock" db:"stock"`
	Category    string          `json:"category" db:"category"`
	Barcode     string          `json:"barcode" db:"barcode"`
	Status      string          `json:"status" db:"status"`
}

// Payment settles (part of) a purchase order
type Payment struct {
	ID            int64           `json:"id" db:"id"`
	OrderID       int64           `json:"order_id" db:"order_id"`
	Date          string          `json:"date" db:"date"` // YYYY-MM-DD
	Amount        decimal.Decimal `json:"amount" db:"amount"`
	PaymentMethod string          `json:"payment_method" db:"payment_method"`
}

// PurchaseOrder is the aggregate root: a header plus its ordered details
type PurchaseOrder struct {
	ID              int64         `json:"id" db:"id"`
	Date            string        `json:"date" db:"date"` // YYYY-MM-DD
	DeliveryAddress string        `json:"delivery_address" db:"delivery_address"`
	TrackNumber     string        `json:"track_number" db:"track_number"`
	Status          string        `json:"status" db:"status"`
	CustomerID      int64         `json:"customer_id" db:"customer_id"`
	Details         []OrderDetail `json:"details"`
}

// OrderDetail is one line item. Price is a snapshot taken when the line
// was written, not the product's current price.
type OrderDetail struct {
	ProductID int64           `json:"product_id" db:"product_id"`
	Quantity  int             `json:"quantity" db:"quantity"`
	Price     decimal.Decimal `json:"price" db:"price"`
}

// Total sums quantity * price over all details.
func (o *PurchaseOrder) Total() decimal.Decimal {
	total := decimal.Zero
	for _, d := range o.Details {
		total = total.Add(d.Price.Mul(decimal.NewFromInt(int64(d.Quantity))))
	}
	return total
}

// Order statuses used by the seed data. Status is free text; these are
// not enforced.
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// Product statuses used by the seed data
const (
	ProductStatusAvailable    = "available"
	ProductStatusDiscontinued = "discontinued"
)

// Product categories
const (
	CategoryElectronics = "electronics"
	CategoryBooks       = "books"
	CategoryClothing    = "clothing"
	CategoryHome        = "home"
	CategorySports      = "sports"
)
