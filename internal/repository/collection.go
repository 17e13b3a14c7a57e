package repository

import (
	"context"
	"database/sql"
	"storefront/internal/entity"
)

type CollectionRepository struct {
	db *sql.DB
}

func NewCollectionRepository(db *sql.DB) *CollectionRepository {
	return &CollectionRepository{db}
}

const collectionSelect = `
	SELECT c.id, c.title, c.featured_product_id, COUNT(p.id)
	FROM collections c
	LEFT JOIN products p ON p.collection_id = c.id`

func scanCollection(row interface{ Scan(...interface{}) error }) (*entity.Collection, error) {
	var c entity.Collection
	var featured sql.NullInt64
	if err := row.Scan(&c.ID, &c.Title, &featured, &c.ProductsCount); err != nil {
		return nil, err
	}
	if featured.Valid {
		id := int(featured.Int64)
		c.FeaturedProductID = &id
	}
	return &c, nil
}

func (r *CollectionRepository) GetCollections(ctx context.Context) ([]*entity.Collection, error) {
	rows, err := r.db.QueryContext(ctx, collectionSelect+` GROUP BY c.id, c.title, c.featured_product_id ORDER BY c.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	collections := []*entity.Collection{}
	for rows.Next() {
		collection, err := scanCollection(rows)
		if err != nil {
			return nil, err
		}
		collections = append(collections, collection)
	}
	return collections, rows.Err()
}

// GetCollectionByID returns sql.ErrNoRows for an unknown id.
func (r *CollectionRepository) GetCollectionByID(ctx context.Context, id int) (*entity.Collection, error) {
	query := collectionSelect + ` WHERE c.id = ? GROUP BY c.id, c.title, c.featured_product_id`
	return scanCollection(r.db.QueryRowContext(ctx, query, id))
}

func (r *CollectionRepository) CreateCollection(ctx context.Context, collection *entity.Collection) error {
	res, err := r.db.ExecContext(ctx, `INSERT INTO collections (title, featured_product_id) VALUES (?, ?)`, collection.Title, collection.FeaturedProductID)
	if err != nil {
		return err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	collection.ID = int(id)
	return nil
}

func (r *CollectionRepository) UpdateCollection(ctx context.Context, collection *entity.Collection) error {
	res, err := r.db.ExecContext(ctx, `UPDATE collections SET title = ?, featured_product_id = ? WHERE id = ?`, collection.Title, collection.FeaturedProductID, collection.ID)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

func (r *CollectionRepository) DeleteCollection(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM collections WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectAffected(res)
}
