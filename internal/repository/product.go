package repository

import (
	"context"
	"database/sql"
	"storefront/internal/entity"
)

type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db}
}

const productColumns = `id, title, slug, description, unit_price, inventory, collection_id, last_update`

func scanProduct(row interface{ Scan(...interface{}) error }) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Description, &p.UnitPrice, &p.Inventory, &p.CollectionID, &p.LastUpdate)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProductByID returns sql.ErrNoRows when the product does not exist.
func (r *ProductRepository) GetProductByID(ctx context.Context, id int) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = ?`
	return scanProduct(r.db.QueryRowContext(ctx, query, id))
}

func (r *ProductRepository) Exists(ctx context.Context, q DBTX, id int) (bool, error) {
	var exists bool
	err := q.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM products WHERE id = ?)`, id).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// GetProducts lists products ordered by id. A zero collectionID lists every collection.
func (r *ProductRepository) GetProducts(ctx context.Context, collectionID, limit, offset int) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	args := []interface{}{}
	if collectionID > 0 {
		query += ` WHERE collection_id = ?`
		args = append(args, collectionID)
	}
	query += ` ORDER BY id LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []*entity.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}

	return products, rows.Err()
}

func (r *ProductRepository) CountProducts(ctx context.Context, collectionID int) (int, error) {
	query := `SELECT COUNT(*) FROM products`
	args := []interface{}{}
	if collectionID > 0 {
		query += ` WHERE collection_id = ?`
		args = append(args, collectionID)
	}

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ProductRepository) CreateProduct(ctx context.Context, product *entity.Product) (*entity.Product, error) {
	query := `INSERT INTO products (title, slug, description, unit_price, inventory, collection_id, last_update) VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, product.Title, product.Slug, product.Description, product.UnitPrice, product.Inventory, product.CollectionID, product.LastUpdate)
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	product.ID = int(id)
	return product, nil
}

// UpdateProduct returns sql.ErrNoRows when no row matched.
func (r *ProductRepository) UpdateProduct(ctx context.Context, product *entity.Product) (*entity.Product, error) {
	query := `UPDATE products SET title = ?, slug = ?, description = ?, unit_price = ?, inventory = ?, collection_id = ?, last_update = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, product.Title, product.Slug, product.Description, product.UnitPrice, product.Inventory, product.CollectionID, product.LastUpdate, product.ID)
	if err != nil {
		return nil, err
	}
	if err := expectAffected(res); err != nil {
		return nil, err
	}
	return product, nil
}

func (r *ProductRepository) DeleteProduct(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

// HasOrderItems reports whether any order line references the product.
func (r *ProductRepository) HasOrderItems(ctx context.Context, id int) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM order_items WHERE product_id = ?)`, id).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// expectAffected turns a zero-row write into sql.ErrNoRows.
func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
