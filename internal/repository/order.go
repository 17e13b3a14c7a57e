package repository

import (
	"context"
	"database/sql"
	"storefront/internal/entity"
	"strings"
)

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db}
}

// CreateOrder inserts the order row and sets order.ID.
func (r *OrderRepository) CreateOrder(ctx context.Context, tx DBTX, order *entity.Order) error {
	orderQuery := `INSERT INTO orders (customer_id, placed_at, payment_status) VALUES (?, ?, ?)`
	res, err := tx.ExecContext(ctx, orderQuery, order.CustomerID, order.PlacedAt, order.PaymentStatus)
	if err != nil {
		return err
	}

	orderID, err := res.LastInsertId()
	if err != nil {
		return err
	}

	order.ID = int(orderID)
	return nil
}

// CreateOrderItems writes every line in one batch insert.
func (r *OrderRepository) CreateOrderItems(ctx context.Context, tx DBTX, orderID int, items []entity.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	// Build the query
	placeholders := make([]string, 0, len(items))
	values := make([]interface{}, 0, len(items)*4)
	for _, item := range items {
		placeholders = append(placeholders, "(?, ?, ?, ?)")
		values = append(values, orderID, item.ProductID, item.Quantity, item.UnitPrice)
	}
	itemQuery := `INSERT INTO order_items (order_id, product_id, quantity, unit_price) VALUES ` + strings.Join(placeholders, ", ")

	_, err := tx.ExecContext(ctx, itemQuery, values...)
	return err
}

// GetOrderByID returns sql.ErrNoRows when the order does not exist.
func (r *OrderRepository) GetOrderByID(ctx context.Context, id int) (*entity.Order, error) {
	orderQuery := `SELECT id, customer_id, placed_at, payment_status FROM orders WHERE id = ?`

	order := &entity.Order{}
	err := r.db.QueryRowContext(ctx, orderQuery, id).Scan(&order.ID, &order.CustomerID, &order.PlacedAt, &order.PaymentStatus)
	if err != nil {
		return nil, err
	}

	if err := r.attachItems(ctx, []*entity.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}

// GetOrders lists orders newest first. A zero customerID lists every customer's orders.
func (r *OrderRepository) GetOrders(ctx context.Context, customerID int) ([]*entity.Order, error) {
	query := `SELECT id, customer_id, placed_at, payment_status FROM orders`
	args := []interface{}{}
	if customerID > 0 {
		query += ` WHERE customer_id = ?`
		args = append(args, customerID)
	}
	query += ` ORDER BY placed_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []*entity.Order{}
	for rows.Next() {
		order := &entity.Order{}
		if err := rows.Scan(&order.ID, &order.CustomerID, &order.PlacedAt, &order.PaymentStatus); err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// attachItems loads the lines of all given orders with one query.
func (r *OrderRepository) attachItems(ctx context.Context, orders []*entity.Order) error {
	if len(orders) == 0 {
		return nil
	}

	byID := make(map[int]*entity.Order, len(orders))
	placeholders := make([]string, 0, len(orders))
	args := make([]interface{}, 0, len(orders))
	for _, order := range orders {
		order.Items = []entity.OrderItem{}
		byID[order.ID] = order
		placeholders = append(placeholders, "?")
		args = append(args, order.ID)
	}

	itemQuery := `SELECT id, order_id, product_id, quantity, unit_price FROM order_items WHERE order_id IN (` + strings.Join(placeholders, ", ") + `) ORDER BY id`
	rows, err := r.db.QueryContext(ctx, itemQuery, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var item entity.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.UnitPrice); err != nil {
			return err
		}
		if order, ok := byID[item.OrderID]; ok {
			order.Items = append(order.Items, item)
		}
	}
	return rows.Err()
}

func (r *OrderRepository) UpdatePaymentStatus(ctx context.Context, id int, status entity.PaymentStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE orders SET payment_status = ? WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	return expectAffected(res)
}
