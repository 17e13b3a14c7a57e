package entity

import (
	"github.com/shopspring/decimal"
	"time"
)

// TaxRate is applied on top of the unit price for display.
var TaxRate = decimal.RequireFromString("1.15")

type Product struct {
	ID           int             `json:"id"`
	Title        string          `json:"title"`
	Slug         string          `json:"slug"`
	Description  string          `json:"description"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	PriceWithTax decimal.Decimal `json:"price_with_tax"`
	Inventory    int             `json:"inventory"`
	CollectionID int             `json:"collection"`
	LastUpdate   time.Time       `json:"last_update"`
}

// WithTax fills PriceWithTax from UnitPrice.
func (p *Product) WithTax() *Product {
	p.PriceWithTax = p.UnitPrice.Mul(TaxRate).Round(2)
	return p
}

/*
Schema MySQL for product table:
CREATE TABLE `products` (
  `id` int NOT NULL AUTO_INCREMENT,
  `title` varchar(255) NOT NULL,
  `slug` varchar(255) NOT NULL,
  `description` text NOT NULL,
  `unit_price` decimal(6,2) NOT NULL,
  `inventory` int NOT NULL,
  `collection_id` int NOT NULL,
  `last_update` datetime NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
  PRIMARY KEY (`id`)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
*/
