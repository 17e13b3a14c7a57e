package repository

import (
	"context"
	"database/sql"
	"storefront/internal/entity"
)

type ReviewRepository struct {
	db *sql.DB
}

func NewReviewRepository(db *sql.DB) *ReviewRepository {
	return &ReviewRepository{db}
}

func (r *ReviewRepository) GetReviews(ctx context.Context, productID int) ([]*entity.Review, error) {
	query := `SELECT id, product_id, name, description, date FROM reviews WHERE product_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := []*entity.Review{}
	for rows.Next() {
		var review entity.Review
		if err := rows.Scan(&review.ID, &review.ProductID, &review.Name, &review.Description, &review.Date); err != nil {
			return nil, err
		}
		reviews = append(reviews, &review)
	}
	return reviews, rows.Err()
}

func (r *ReviewRepository) CreateReview(ctx context.Context, review *entity.Review) error {
	query := `INSERT INTO reviews (product_id, name, description, date) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, review.ProductID, review.Name, review.Description, review.Date)
	if err != nil {
		return err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	review.ID = int(id)
	return nil
}
