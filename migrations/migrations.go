package migrations

import (
	"database/sql"
	"fmt"
	"time"
)

type table struct {
	name  string
	query string
}

// Tables are listed parents first so foreign keys resolve.
var tables = []table{
	{"collections", `
		CREATE TABLE IF NOT EXISTS collections (
			id INT AUTO_INCREMENT PRIMARY KEY,
			title VARCHAR(255) NOT NULL,
			featured_product_id INT NULL
		);
	`},
	{"products", `
		CREATE TABLE IF NOT EXISTS products (
			id INT AUTO_INCREMENT PRIMARY KEY,
			title VARCHAR(255) NOT NULL,
			slug VARCHAR(255) NOT NULL,
			description TEXT NOT NULL,
			unit_price DECIMAL(6,2) NOT NULL,
			inventory INT NOT NULL,
			collection_id INT NOT NULL,
			last_update DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			FOREIGN KEY (collection_id) REFERENCES collections(id) ON DELETE RESTRICT
		);
	`},
	{"users", `
		CREATE TABLE IF NOT EXISTS users (
			id INT AUTO_INCREMENT PRIMARY KEY,
			username VARCHAR(150) NOT NULL UNIQUE,
			email VARCHAR(254) NOT NULL UNIQUE,
			first_name VARCHAR(150) NOT NULL,
			last_name VARCHAR(150) NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			is_staff BOOLEAN NOT NULL DEFAULT FALSE
		);
	`},
	{"customers", `
		CREATE TABLE IF NOT EXISTS customers (
			id INT AUTO_INCREMENT PRIMARY KEY,
			user_id INT NOT NULL UNIQUE,
			phone VARCHAR(255) NOT NULL DEFAULT '',
			birth_date DATE NULL,
			membership CHAR(1) NOT NULL DEFAULT 'B',
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		);
	`},
	{"carts", `
		CREATE TABLE IF NOT EXISTS carts (
			id CHAR(36) PRIMARY KEY,
			created_at DATETIME NOT NULL
		);
	`},
	{"cart_items", `
		CREATE TABLE IF NOT EXISTS cart_items (
			id INT AUTO_INCREMENT PRIMARY KEY,
			cart_id CHAR(36) NOT NULL,
			product_id INT NOT NULL,
			quantity INT NOT NULL,
			UNIQUE KEY cart_product_uq (cart_id, product_id),
			FOREIGN KEY (cart_id) REFERENCES carts(id) ON DELETE CASCADE,
			FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE CASCADE
		);
	`},
	{"orders", `
		CREATE TABLE IF NOT EXISTS orders (
			id INT AUTO_INCREMENT PRIMARY KEY,
			customer_id INT NOT NULL,
			placed_at DATETIME NOT NULL,
			payment_status CHAR(1) NOT NULL DEFAULT 'P',
			FOREIGN KEY (customer_id) REFERENCES customers(id) ON DELETE RESTRICT
		);
	`},
	{"order_items", `
		CREATE TABLE IF NOT EXISTS order_items (
			id INT AUTO_INCREMENT PRIMARY KEY,
			order_id INT NOT NULL,
			product_id INT NOT NULL,
			quantity SMALLINT UNSIGNED NOT NULL,
			unit_price DECIMAL(6,2) NOT NULL,
			FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE RESTRICT,
			FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE RESTRICT
		);
	`},
	{"reviews", `
		CREATE TABLE IF NOT EXISTS reviews (
			id INT AUTO_INCREMENT PRIMARY KEY,
			product_id INT NOT NULL,
			name VARCHAR(255) NOT NULL,
			description TEXT NOT NULL,
			date DATE NOT NULL,
			FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE CASCADE
		);
	`},
	{"tags", `
		CREATE TABLE IF NOT EXISTS tags (
			id INT AUTO_INCREMENT PRIMARY KEY,
			label VARCHAR(255) NOT NULL
		);
	`},
	{"tagged_items", `
		CREATE TABLE IF NOT EXISTS tagged_items (
			id INT AUTO_INCREMENT PRIMARY KEY,
			tag_id INT NOT NULL,
			content_type VARCHAR(100) NOT NULL,
			object_id INT NOT NULL,
			FOREIGN KEY (tag_id) REFERENCES tags(id) ON DELETE CASCADE,
			INDEX tagged_object_idx (content_type, object_id)
		);
	`},
}

// AutoMigrate creates every table that does not exist yet. Each statement is
// retried up to retries times while the database is still coming up.
func AutoMigrate(retries int, db *sql.DB) error {
	for _, t := range tables {
		_, err := db.Exec(t.query)
		if err != nil {
			// Retry creating the table
			for i := 0; i < retries; i++ {
				time.Sleep(1 * time.Second)
				_, err = db.Exec(t.query)
				if err == nil {
					break
				}
			}
		}
		if err != nil {
			return fmt.Errorf("migrate %s: %w", t.name, err)
		}
	}
	return nil
}
