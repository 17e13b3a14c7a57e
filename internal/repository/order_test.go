package repository

import (
	"context"
	"database/sql"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"regexp"
	"storefront/internal/entity"
	"testing"
	"time"
)

func TestCreateOrderItemsSingleBatch(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	items := []entity.OrderItem{
		{ProductID: 1, Quantity: 2, UnitPrice: decimal.RequireFromString("9.99")},
		{ProductID: 2, Quantity: 1, UnitPrice: decimal.RequireFromString("3.50")},
		{ProductID: 3, Quantity: 4, UnitPrice: decimal.RequireFromString("1.00")},
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO order_items (order_id, product_id, quantity, unit_price) VALUES (?, ?, ?, ?), (?, ?, ?, ?), (?, ?, ?, ?)")).
		WithArgs(
			7, 1, 2, decimal.RequireFromString("9.99"),
			7, 2, 1, decimal.RequireFromString("3.50"),
			7, 3, 4, decimal.RequireFromString("1.00"),
		).
		WillReturnResult(sqlmock.NewResult(0, 3))

	err = NewOrderRepository(db).CreateOrderItems(context.Background(), db, 7, items)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderItemsEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, NewOrderRepository(db).CreateOrderItems(context.Background(), db, 7, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrdersAttachesItems(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	placed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, customer_id, placed_at, payment_status FROM orders WHERE customer_id = ? ORDER BY placed_at DESC, id DESC")).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"id", "customer_id", "placed_at", "payment_status"}).
			AddRow(2, 3, placed, "C").
			AddRow(1, 3, placed, "P"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM order_items WHERE order_id IN (?, ?) ORDER BY id")).
		WithArgs(2, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "product_id", "quantity", "unit_price"}).
			AddRow(10, 1, 5, 1, "2.00").
			AddRow(11, 2, 6, 3, "4.25").
			AddRow(12, 2, 7, 1, "1.00"))

	orders, err := NewOrderRepository(db).GetOrders(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, entity.PaymentComplete, orders[0].PaymentStatus)
	assert.Len(t, orders[0].Items, 2)
	assert.Len(t, orders[1].Items, 1)
	assert.Equal(t, 5, orders[1].Items[0].ProductID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePaymentStatusMissingOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE orders SET payment_status = ? WHERE id = ?")).
		WithArgs(entity.PaymentComplete, 9).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = NewOrderRepository(db).UpdatePaymentStatus(context.Background(), 9, entity.PaymentComplete)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
