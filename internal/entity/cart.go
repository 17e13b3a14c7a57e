package entity

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"time"
)

// MaxItemQuantity is the largest quantity a cart line may hold. Order lines
// store quantity as SMALLINT UNSIGNED.
const MaxItemQuantity = 32767

type Cart struct {
	ID              uuid.UUID       `json:"id"`
	Items           []CartItem      `json:"items"`
	GrandTotalPrice decimal.Decimal `json:"grand_total_price"`
	CreatedAt       time.Time       `json:"created_at"`
}

type CartItem struct {
	ID         int             `json:"id"`
	CartID     uuid.UUID       `json:"-"`
	Product    SimpleProduct   `json:"product"`
	Quantity   int             `json:"quantity"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// SimpleProduct is the product view embedded in cart lines.
type SimpleProduct struct {
	ID        int             `json:"id"`
	Title     string          `json:"title"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Totals computes line totals and the grand total.
func (c *Cart) Totals() *Cart {
	total := decimal.Zero
	for i := range c.Items {
		item := &c.Items[i]
		item.TotalPrice = item.Product.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(item.TotalPrice)
	}
	c.GrandTotalPrice = total
	return c
}

/*
CREATE TABLE carts (
	id CHAR(36) PRIMARY KEY,
	created_at DATETIME NOT NULL
);

CREATE TABLE cart_items (
	id INT AUTO_INCREMENT PRIMARY KEY,
	cart_id CHAR(36) NOT NULL,
	product_id INT NOT NULL,
	quantity INT NOT NULL,
	UNIQUE KEY cart_product_uq (cart_id, product_id),
	FOREIGN KEY (cart_id) REFERENCES carts(id) ON DELETE CASCADE
);
*/
