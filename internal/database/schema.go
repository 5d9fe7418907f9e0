package database

import (
	"context"
	"fmt"
)

// schemaStatements are ordered so that referenced tables come first.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS customers (
	    id BIGINT PRIMARY KEY AUTO_INCREMENT,
	    name VARCHAR(255) NOT NULL,
	    email VARCHAR(255) NOT NULL,
	    phone VARCHAR(20) NOT NULL,
	    address TEXT NOT NULL,
	    UNIQUE KEY uk_email (email),
	    UNIQUE KEY uk_phone (phone)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS products (
	    id BIGINT PRIMARY KEY AUTO_INCREMENT,
	    name VARCHAR(255) NOT NULL,
	    description TEXT NOT NULL,
	    price DECIMAL(10,2) NOT NULL,
	    stock INT NOT NULL DEFAULT 0,
	    category VARCHAR(100) NOT NULL,
	    barcode VARCHAR(50) NOT NULL,
	    status VARCHAR(50) NOT NULL,
	    UNIQUE KEY uk_barcode (barcode),
	    INDEX idx_category (category)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS purchase_orders (
	    id BIGINT PRIMARY KEY AUTO_INCREMENT,
	    date DATE NOT NULL,
	    delivery_address TEXT NOT NULL,
	    track_number VARCHAR(100) NOT NULL,
	    status VARCHAR(50) NOT NULL,
	    customer_id BIGINT NOT NULL,
	    FOREIGN KEY (customer_id) REFERENCES customers(id),
	    INDEX idx_customer_id (customer_id),
	    INDEX idx_status (status)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS order_details (
	    id BIGINT PRIMARY KEY AUTO_INCREMENT,
	    order_id BIGINT NOT NULL,
	    product_id BIGINT NOT NULL,
	    quantity INT NOT NULL,
	    price DECIMAL(10,2) NOT NULL,
	    FOREIGN KEY (order_id) REFERENCES purchase_orders(id) ON DELETE CASCADE,
	    FOREIGN KEY (product_id) REFERENCES products(id),
	    INDEX idx_order_id (order_id),
	    INDEX idx_product_id (product_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS payments (
	    id BIGINT PRIMARY KEY AUTO_INCREMENT,
	    order_id BIGINT NOT NULL,
	    date DATE NOT NULL,
	    amount DECIMAL(10,2) NOT NULL,
	    payment_method VARCHAR(50) NOT NULL,
	    FOREIGN KEY (order_id) REFERENCES purchase_orders(id),
	    INDEX idx_order_id (order_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// dependentFirst lists tables children before parents.
var dependentFirst = []string{"payments", "order_details", "purchase_orders", "products", "customers"}

// SetupSchema creates every table that does not exist yet.
func (db *DB) SetupSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

// CleanupData removes all rows but keeps the schema
func (db *DB) CleanupData(ctx context.Context) error {
	for _, table := range dependentFirst {
		if _, err := db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clean %s: %w", table, err)
		}
	}
	return nil
}

// DropSchema removes all tables
func (db *DB) DropSchema(ctx context.Context) error {
	for _, table := range dependentFirst {
		if _, err := db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
			return fmt.Errorf("failed to drop %s: %w", table, err)
		}
	}
	return nil
}
