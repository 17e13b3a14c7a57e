package service

import (
	"context"
	"database/sql"
	"errors"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"regexp"
	"storefront/internal/entity"
	"storefront/internal/repository"
	"sync"
	"testing"
	"time"
)

type fakeNotifier struct {
	mu     sync.Mutex
	orders []*entity.Order
}

func (n *fakeNotifier) Dispatch(_ context.Context, order *entity.Order) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.orders = append(n.orders, order)
}

type fakeKeys struct {
	claimed  map[string]bool
	released []string
}

func (k *fakeKeys) Claim(_ context.Context, key string, _ time.Duration) (bool, error) {
	if k.claimed[key] {
		return false, nil
	}
	k.claimed[key] = true
	return true, nil
}

func (k *fakeKeys) Release(_ context.Context, key string) error {
	delete(k.claimed, key)
	k.released = append(k.released, key)
	return nil
}

var placedAt = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newOrderService(t *testing.T) (*OrderService, sqlmock.Sqlmock, *fakeNotifier, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	notifier := &fakeNotifier{}
	svc := NewOrderService(
		db,
		repository.NewOrderRepository(db),
		repository.NewCartRepository(db),
		repository.NewCustomerRepository(db),
		notifier,
		nil,
	)
	svc.now = func() time.Time { return placedAt }
	return svc, mock, notifier, func() { db.Close() }
}

func expectCartExists(mock sqlmock.Sqlmock, cartID uuid.UUID, exists bool) {
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM carts WHERE id = ?)")).
		WithArgs(cartID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(exists))
}

func expectItemCount(mock sqlmock.Sqlmock, cartID uuid.UUID, count int) {
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM cart_items WHERE cart_id = ?")).
		WithArgs(cartID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(count))
}

func expectCustomer(mock sqlmock.Sqlmock, userID, customerID int) {
	mock.ExpectQuery(regexp.QuoteMeta("FROM customers WHERE user_id = ?")).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "phone", "birth_date", "membership"}).
			AddRow(customerID, userID, "", nil, "B"))
}

func cartItemRows(cartID uuid.UUID) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "cart_id", "quantity", "product_id", "title", "unit_price"}).
		AddRow(1, cartID.String(), 2, 11, "Coffee", "10.00").
		AddRow(2, cartID.String(), 1, 12, "Tea", "4.50")
}

func TestPlaceOrderCartNotFound(t *testing.T) {
	svc, mock, notifier, done := newOrderService(t)
	defer done()

	cartID := uuid.New()
	expectCartExists(mock, cartID, false)

	_, err := svc.PlaceOrder(context.Background(), 10, cartID)
	assert.ErrorIs(t, err, ErrCartNotFound)
	assert.Empty(t, notifier.orders)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	svc, mock, notifier, done := newOrderService(t)
	defer done()

	cartID := uuid.New()
	expectCartExists(mock, cartID, true)
	expectItemCount(mock, cartID, 0)

	_, err := svc.PlaceOrder(context.Background(), 10, cartID)
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Empty(t, notifier.orders)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceOrderCustomerNotFound(t *testing.T) {
	svc, mock, _, done := newOrderService(t)
	defer done()

	cartID := uuid.New()
	expectCartExists(mock, cartID, true)
	expectItemCount(mock, cartID, 2)
	mock.ExpectQuery(regexp.QuoteMeta("FROM customers WHERE user_id = ?")).
		WithArgs(10).
		WillReturnError(sql.ErrNoRows)

	_, err := svc.PlaceOrder(context.Background(), 10, cartID)
	assert.ErrorIs(t, err, ErrCustomerNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceOrderSnapshotsPricesAndDeletesCart(t *testing.T) {
	svc, mock, notifier, done := newOrderService(t)
	defer done()

	cartID := uuid.New()
	expectCartExists(mock, cartID, true)
	expectItemCount(mock, cartID, 2)
	expectCustomer(mock, 10, 3)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO orders (customer_id, placed_at, payment_status) VALUES (?, ?, ?)")).
		WithArgs(3, placedAt, entity.PaymentPending).
		WillReturnResult(sqlmock.NewResult(100, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM cart_items ci")).
		WithArgs(cartID).
		WillReturnRows(cartItemRows(cartID))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO order_items (order_id, product_id, quantity, unit_price) VALUES (?, ?, ?, ?), (?, ?, ?, ?)")).
		WithArgs(100, 11, 2, decimal.RequireFromString("10.00"), 100, 12, 1, decimal.RequireFromString("4.50")).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM carts WHERE id = ?")).
		WithArgs(cartID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	order, err := svc.PlaceOrder(context.Background(), 10, cartID)
	require.NoError(t, err)

	assert.Equal(t, 100, order.ID)
	assert.Equal(t, 3, order.CustomerID)
	assert.Equal(t, placedAt, order.PlacedAt)
	assert.Equal(t, entity.PaymentPending, order.PaymentStatus)
	require.Len(t, order.Items, 2)
	assert.Equal(t, 11, order.Items[0].ProductID)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.True(t, order.Items[0].UnitPrice.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, 12, order.Items[1].ProductID)
	assert.True(t, order.Items[1].UnitPrice.Equal(decimal.RequireFromString("4.5")))

	require.Len(t, notifier.orders, 1)
	assert.Same(t, order, notifier.orders[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceOrderRollsBackWhenItemsFail(t *testing.T) {
	svc, mock, notifier, done := newOrderService(t)
	defer done()

	cartID := uuid.New()
	expectCartExists(mock, cartID, true)
	expectItemCount(mock, cartID, 2)
	expectCustomer(mock, 10, 3)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO orders")).
		WillReturnResult(sqlmock.NewResult(100, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM cart_items ci")).
		WithArgs(cartID).
		WillReturnRows(cartItemRows(cartID))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO order_items")).
		WillReturnError(errors.New("deadlock found"))
	mock.ExpectRollback()

	_, err := svc.PlaceOrder(context.Background(), 10, cartID)
	assert.ErrorContains(t, err, "create order items: deadlock found")
	assert.Empty(t, notifier.orders)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceOrderCartEmptiedDuringTransaction(t *testing.T) {
	svc, mock, notifier, done := newOrderService(t)
	defer done()

	cartID := uuid.New()
	expectCartExists(mock, cartID, true)
	expectItemCount(mock, cartID, 1)
	expectCustomer(mock, 10, 3)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO orders")).
		WillReturnResult(sqlmock.NewResult(100, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM cart_items ci")).
		WithArgs(cartID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "cart_id", "quantity", "product_id", "title", "unit_price"}))
	mock.ExpectRollback()

	_, err := svc.PlaceOrder(context.Background(), 10, cartID)
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Empty(t, notifier.orders)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceOrderCartDeletedConcurrently(t *testing.T) {
	svc, mock, _, done := newOrderService(t)
	defer done()

	cartID := uuid.New()
	expectCartExists(mock, cartID, true)
	expectItemCount(mock, cartID, 2)
	expectCustomer(mock, 10, 3)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO orders")).
		WillReturnResult(sqlmock.NewResult(100, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM cart_items ci")).
		WillReturnRows(cartItemRows(cartID))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO order_items")).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM carts WHERE id = ?")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := svc.PlaceOrder(context.Background(), 10, cartID)
	assert.ErrorIs(t, err, ErrCartNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceOrderOnceRejectsReplayedKey(t *testing.T) {
	svc, mock, _, done := newOrderService(t)
	defer done()

	keys := &fakeKeys{claimed: map[string]bool{"abc": true}}
	svc.keys = keys

	_, err := svc.PlaceOrderOnce(context.Background(), "abc", 10, uuid.New())
	assert.ErrorIs(t, err, ErrDuplicateRequest)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceOrderOnceReleasesKeyOnFailure(t *testing.T) {
	svc, mock, _, done := newOrderService(t)
	defer done()

	keys := &fakeKeys{claimed: map[string]bool{}}
	svc.keys = keys

	cartID := uuid.New()
	expectCartExists(mock, cartID, false)

	_, err := svc.PlaceOrderOnce(context.Background(), "abc", 10, cartID)
	assert.ErrorIs(t, err, ErrCartNotFound)
	assert.Equal(t, []string{"abc"}, keys.released)
	assert.False(t, keys.claimed["abc"])
}

func TestGetOrderHidesOtherCustomersOrders(t *testing.T) {
	svc, mock, _, done := newOrderService(t)
	defer done()

	mock.ExpectQuery(regexp.QuoteMeta("FROM orders WHERE id = ?")).
		WithArgs(100).
		WillReturnRows(sqlmock.NewRows([]string{"id", "customer_id", "placed_at", "payment_status"}).
			AddRow(100, 4, placedAt, "P"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM order_items WHERE order_id IN (?)")).
		WithArgs(100).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "product_id", "quantity", "unit_price"}))
	expectCustomer(mock, 10, 3)

	_, err := svc.GetOrder(context.Background(), 10, false, 100)
	assert.ErrorIs(t, err, ErrOrderNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePaymentStatusRejectsUnknownStatus(t *testing.T) {
	svc, mock, _, done := newOrderService(t)
	defer done()

	_, err := svc.UpdatePaymentStatus(context.Background(), 1, entity.PaymentStatus("X"))
	assert.ErrorIs(t, err, ErrInvalidPaymentStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}
