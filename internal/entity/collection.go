package entity

type Collection struct {
	ID                int    `json:"id"`
	Title             string `json:"title"`
	FeaturedProductID *int   `json:"featured_product"`
	ProductsCount     int    `json:"products_count"`
}

/*
CREATE TABLE collections (
	id INT AUTO_INCREMENT PRIMARY KEY,
	title VARCHAR(255) NOT NULL,
	featured_product_id INT NULL
);
*/
