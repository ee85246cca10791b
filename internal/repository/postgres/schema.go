package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS customers (
		id BIGSERIAL PRIMARY KEY,
		email VARCHAR(255) NOT NULL,
		first_name VARCHAR(255) NOT NULL DEFAULT '',
		last_name VARCHAR(255) NOT NULL DEFAULT '',
		store_id INT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		last_login_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_customers_created_at ON customers(created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_customers_last_login_at ON customers(last_login_at)`,

	`CREATE TABLE IF NOT EXISTS customer_addresses (
		id BIGSERIAL PRIMARY KEY,
		customer_id BIGINT NOT NULL REFERENCES customers(id) ON DELETE CASCADE,
		first_name VARCHAR(255) NOT NULL DEFAULT '',
		last_name VARCHAR(255) NOT NULL DEFAULT '',
		email VARCHAR(255) NOT NULL DEFAULT '',
		telephone VARCHAR(64) NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_customer_addresses_customer_id ON customer_addresses(customer_id)`,

	`CREATE TABLE IF NOT EXISTS customer_reviews (
		id BIGSERIAL PRIMARY KEY,
		customer_id BIGINT NOT NULL REFERENCES customers(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_customer_reviews_customer_id ON customer_reviews(customer_id)`,

	`CREATE TABLE IF NOT EXISTS orders (
		id BIGSERIAL PRIMARY KEY,
		customer_id BIGINT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		customer_email VARCHAR(255) NOT NULL DEFAULT '',
		customer_firstname VARCHAR(255) NOT NULL DEFAULT '',
		customer_lastname VARCHAR(255) NOT NULL DEFAULT '',
		billing_firstname VARCHAR(255) NOT NULL DEFAULT '',
		billing_lastname VARCHAR(255) NOT NULL DEFAULT '',
		billing_email VARCHAR(255) NOT NULL DEFAULT '',
		billing_telephone VARCHAR(64) NOT NULL DEFAULT '',
		shipping_firstname VARCHAR(255) NOT NULL DEFAULT '',
		shipping_lastname VARCHAR(255) NOT NULL DEFAULT '',
		shipping_email VARCHAR(255) NOT NULL DEFAULT '',
		shipping_telephone VARCHAR(64) NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_customer_id ON orders(customer_id)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at)`,

	`CREATE TABLE IF NOT EXISTS customer_cleanup_log (
		log_id BIGSERIAL PRIMARY KEY,
		customer_id BIGINT NOT NULL,
		customer_email VARCHAR(255) NOT NULL,
		customer_name VARCHAR(255),
		action_type VARCHAR(32) NOT NULL,
		reason TEXT,
		dry_run BOOLEAN NOT NULL DEFAULT FALSE,
		admin_user VARCHAR(255),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_cleanup_log_customer_id ON customer_cleanup_log(customer_id)`,
	`CREATE INDEX IF NOT EXISTS idx_cleanup_log_customer_email ON customer_cleanup_log(customer_email)`,
	`CREATE INDEX IF NOT EXISTS idx_cleanup_log_action_type ON customer_cleanup_log(action_type)`,
	`CREATE INDEX IF NOT EXISTS idx_cleanup_log_created_at ON customer_cleanup_log(created_at)`,
}

// EnsureSchema creates the tables and indexes the module needs. Safe to
// run on every startup.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
