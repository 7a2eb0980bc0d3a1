package mysql

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = []struct {
	Name  string
	Query string
}{
	{"orders", `
	CREATE TABLE IF NOT EXISTS orders (
		id CHAR(36) NOT NULL PRIMARY KEY,
		user_id VARCHAR(64) NULL,
		payment_status VARCHAR(16) NOT NULL DEFAULT 'pending',
		payment_reference VARCHAR(128) NULL,
		last_attempt_reference VARCHAR(128) NULL,
		payment_method VARCHAR(32) NOT NULL,
		delivery_method VARCHAR(32) NOT NULL,
		delivery_address VARCHAR(255) NULL,
		fulfillment_status VARCHAR(16) NOT NULL DEFAULT 'pending',
		customer_email VARCHAR(150) NOT NULL,
		customer_phone VARCHAR(30) NOT NULL,
		promo_code VARCHAR(64) NULL,
		discount_amount BIGINT NOT NULL DEFAULT 0,
		total_amount BIGINT NOT NULL,
		created_at DATETIME(3) NOT NULL,
		updated_at DATETIME(3) NOT NULL,
		INDEX idx_user (user_id),
		INDEX idx_payment_status (payment_status, created_at),
		UNIQUE KEY uq_payment_reference (payment_reference)
	)`},
	{"order_items", `
	CREATE TABLE IF NOT EXISTS order_items (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		order_id CHAR(36) NOT NULL,
		product_id VARCHAR(64) NOT NULL,
		product_name VARCHAR(255) NOT NULL,
		product_price BIGINT NOT NULL,
		quantity INT NOT NULL,
		vendor_id CHAR(36) NULL,
		created_at DATETIME(3) NOT NULL,
		FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE,
		INDEX idx_order (order_id),
		INDEX idx_vendor (vendor_id)
	)`},
	{"promo_codes", `
	CREATE TABLE IF NOT EXISTS promo_codes (
		code VARCHAR(64) NOT NULL PRIMARY KEY,
		discount_percentage INT NOT NULL,
		active TINYINT(1) NOT NULL DEFAULT 1
	)`},
	{"vendors", `
	CREATE TABLE IF NOT EXISTS vendors (
		id CHAR(36) NOT NULL PRIMARY KEY,
		user_id VARCHAR(64) NOT NULL,
		business_name VARCHAR(150) NOT NULL,
		business_description TEXT NOT NULL,
		business_logo_url VARCHAR(500) NULL,
		status VARCHAR(16) NOT NULL DEFAULT 'pending',
		created_at DATETIME(3) NOT NULL,
		updated_at DATETIME(3) NOT NULL,
		UNIQUE KEY uq_vendor_user (user_id),
		INDEX idx_vendor_status (status, created_at)
	)`},
	{"reviews", `
	CREATE TABLE IF NOT EXISTS reviews (
		id CHAR(36) NOT NULL PRIMARY KEY,
		user_id VARCHAR(64) NOT NULL,
		product_id VARCHAR(64) NOT NULL,
		order_id CHAR(36) NULL,
		rating TINYINT NOT NULL,
		comment VARCHAR(500) NOT NULL DEFAULT '',
		created_at DATETIME(3) NOT NULL,
		UNIQUE KEY uq_review_user_product (user_id, product_id),
		INDEX idx_review_product (product_id, created_at)
	)`},
	{"user_roles", `
	CREATE TABLE IF NOT EXISTS user_roles (
		user_id VARCHAR(64) NOT NULL,
		role VARCHAR(16) NOT NULL,
		PRIMARY KEY (user_id, role)
	)`},
}

// Migrate creates the tables the service expects. Statements are idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, tbl := range schema {
		if _, err := db.ExecContext(ctx, tbl.Query); err != nil {
			return fmt.Errorf("creating table %s: %w", tbl.Name, err)
		}
	}
	return nil
}
