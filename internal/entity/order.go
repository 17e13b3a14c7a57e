package entity

import (
	"github.com/shopspring/decimal"
	"time"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "P"
	PaymentComplete PaymentStatus = "C"
	PaymentFailed   PaymentStatus = "F"
)

// Valid reports whether s is one of the known payment states.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentComplete, PaymentFailed:
		return true
	}
	return false
}

type Order struct {
	ID            int           `json:"id"`
	CustomerID    int           `json:"customer"`
	PlacedAt      time.Time     `json:"placed_at"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	Items         []OrderItem   `json:"items"`
}

// OrderItem keeps the unit price the product had when the order was placed.
type OrderItem struct {
	ID        int             `json:"id"`
	OrderID   int             `json:"-"`
	ProductID int             `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

/*
Mysql Table

CREATE TABLE orders (
	id INT AUTO_INCREMENT PRIMARY KEY,
	customer_id INT NOT NULL,
	placed_at DATETIME NOT NULL,
	payment_status CHAR(1) NOT NULL DEFAULT 'P'
);

CREATE TABLE order_items (
	id INT AUTO_INCREMENT PRIMARY KEY,
	order_id INT NOT NULL REFERENCES orders(id),
	product_id INT NOT NULL,
	quantity SMALLINT UNSIGNED NOT NULL,
	unit_price DECIMAL(6,2) NOT NULL
);

*/
