package repository

import (
	"context"
	"database/sql"
	"github.com/google/uuid"
	"storefront/internal/entity"
	"time"
)

type CartRepository struct {
	db *sql.DB
}

func NewCartRepository(db *sql.DB) *CartRepository {
	return &CartRepository{db}
}

func (r *CartRepository) CreateCart(ctx context.Context, cart *entity.Cart) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO carts (id, created_at) VALUES (?, ?)`, cart.ID, cart.CreatedAt)
	return err
}

// GetCart loads the cart and its lines. It returns sql.ErrNoRows for an unknown id.
func (r *CartRepository) GetCart(ctx context.Context, id uuid.UUID) (*entity.Cart, error) {
	cart := &entity.Cart{}
	err := r.db.QueryRowContext(ctx, `SELECT id, created_at FROM carts WHERE id = ?`, id).Scan(&cart.ID, &cart.CreatedAt)
	if err != nil {
		return nil, err
	}

	cart.Items, err = r.GetItems(ctx, r.db, id)
	if err != nil {
		return nil, err
	}
	return cart, nil
}

func (r *CartRepository) Exists(ctx context.Context, q DBTX, id uuid.UUID) (bool, error) {
	var exists bool
	err := q.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM carts WHERE id = ?)`, id).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *CartRepository) CountItems(ctx context.Context, q DBTX, id uuid.UUID) (int, error) {
	var count int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM cart_items WHERE cart_id = ?`, id).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

const cartItemsQuery = `
	SELECT ci.id, ci.cart_id, ci.quantity, p.id, p.title, p.unit_price
	FROM cart_items ci
	JOIN products p ON p.id = ci.product_id
	WHERE ci.cart_id = ?`

// GetItems returns every line of the cart joined with the product's current price.
func (r *CartRepository) GetItems(ctx context.Context, q DBTX, cartID uuid.UUID) ([]entity.CartItem, error) {
	rows, err := q.QueryContext(ctx, cartItemsQuery+` ORDER BY ci.id`, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []entity.CartItem{}
	for rows.Next() {
		var item entity.CartItem
		err := rows.Scan(&item.ID, &item.CartID, &item.Quantity, &item.Product.ID, &item.Product.Title, &item.Product.UnitPrice)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetItem returns sql.ErrNoRows when the line is not part of the cart.
func (r *CartRepository) GetItem(ctx context.Context, cartID uuid.UUID, itemID int) (*entity.CartItem, error) {
	var item entity.CartItem
	err := r.db.QueryRowContext(ctx, cartItemsQuery+` AND ci.id = ?`, cartID, itemID).
		Scan(&item.ID, &item.CartID, &item.Quantity, &item.Product.ID, &item.Product.Title, &item.Product.UnitPrice)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// FindItem returns the id and quantity of the (cart, product) line, or sql.ErrNoRows.
func (r *CartRepository) FindItem(ctx context.Context, cartID uuid.UUID, productID int) (id, quantity int, err error) {
	query := `SELECT id, quantity FROM cart_items WHERE cart_id = ? AND product_id = ?`
	err = r.db.QueryRowContext(ctx, query, cartID, productID).Scan(&id, &quantity)
	if err != nil {
		return 0, 0, err
	}
	return id, quantity, nil
}

func (r *CartRepository) InsertItem(ctx context.Context, cartID uuid.UUID, productID, quantity int) (int, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO cart_items (cart_id, product_id, quantity) VALUES (?, ?, ?)`, cartID, productID, quantity)
	if err != nil {
		return 0, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return int(id), nil
}

// IncrementItem adds quantity to the line in a single statement. It returns
// sql.ErrNoRows when the line is gone or the sum would exceed max.
func (r *CartRepository) IncrementItem(ctx context.Context, itemID, quantity, max int) error {
	query := `UPDATE cart_items SET quantity = quantity + ? WHERE id = ? AND quantity + ? <= ?`
	res, err := r.db.ExecContext(ctx, query, quantity, itemID, quantity, max)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

func (r *CartRepository) SetItemQuantity(ctx context.Context, cartID uuid.UUID, itemID, quantity int) error {
	res, err := r.db.ExecContext(ctx, `UPDATE cart_items SET quantity = ? WHERE id = ? AND cart_id = ?`, quantity, itemID, cartID)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

func (r *CartRepository) DeleteItem(ctx context.Context, cartID uuid.UUID, itemID int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE id = ? AND cart_id = ?`, itemID, cartID)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

// DeleteCart removes the cart; its lines go with it through ON DELETE CASCADE.
// It returns sql.ErrNoRows when the cart did not exist.
func (r *CartRepository) DeleteCart(ctx context.Context, q DBTX, id uuid.UUID) error {
	res, err := q.ExecContext(ctx, `DELETE FROM carts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

// DeleteCreatedBefore removes carts created before the cutoff and returns how many went.
func (r *CartRepository) DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM carts WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
