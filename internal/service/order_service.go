package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"os"
	"storefront/internal/entity"
	"storefront/internal/repository"
	"time"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// idempotencyTTL is how long an accepted Idempotency-Key is remembered.
const idempotencyTTL = 24 * time.Hour

// OrderNotifier receives orders after they are committed. Implementations
// must not fail the caller.
type OrderNotifier interface {
	Dispatch(ctx context.Context, order *entity.Order)
}

// KeyClaimer guards against replayed requests.
type KeyClaimer interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// OrderService turns carts into orders.
type OrderService struct {
	db           *sql.DB
	orderRepo    *repository.OrderRepository
	cartRepo     *repository.CartRepository
	customerRepo *repository.CustomerRepository
	notifier     OrderNotifier
	keys         KeyClaimer
	now          func() time.Time
}

// NewOrderService creates a new instance of OrderService. keys may be nil to
// disable idempotency checks.
func NewOrderService(
	db *sql.DB,
	orderRepo *repository.OrderRepository,
	cartRepo *repository.CartRepository,
	customerRepo *repository.CustomerRepository,
	notifier OrderNotifier,
	keys KeyClaimer,
) *OrderService {
	return &OrderService{
		db:           db,
		orderRepo:    orderRepo,
		cartRepo:     cartRepo,
		customerRepo: customerRepo,
		notifier:     notifier,
		keys:         keys,
		now:          func() time.Time { return time.Now().UTC().Truncate(time.Second) },
	}
}

// PlaceOrder converts the cart into an order owned by the customer behind
// userID. Either the order, its items and the cart deletion are all
// committed, or nothing is written and the cart stays as it was.
func (s *OrderService) PlaceOrder(ctx context.Context, userID int, cartID uuid.UUID) (*entity.Order, error) {
	exists, err := s.cartRepo.Exists(ctx, s.db, cartID)
	if err != nil {
		return nil, fmt.Errorf("check cart: %w", err)
	}
	if !exists {
		return nil, ErrCartNotFound
	}

	count, err := s.cartRepo.CountItems(ctx, s.db, cartID)
	if err != nil {
		return nil, fmt.Errorf("count cart items: %w", err)
	}
	if count == 0 {
		return nil, ErrEmptyCart
	}

	customer, err := s.customerRepo.GetCustomerByUserID(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCustomerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get customer: %w", err)
	}

	order, err := s.createOrder(ctx, customer.ID, cartID)
	if err != nil {
		logger.Error().Err(err).Msgf("Error placing order for cart %s", cartID)
		return nil, err
	}

	logger.Info().Msgf("Order %d placed by customer %d with %d items", order.ID, order.CustomerID, len(order.Items))

	// The order is committed; listeners cannot undo it.
	s.notifier.Dispatch(ctx, order)

	return order, nil
}

// PlaceOrderOnce runs PlaceOrder at most once per idempotency key. An empty
// key skips the check.
func (s *OrderService) PlaceOrderOnce(ctx context.Context, key string, userID int, cartID uuid.UUID) (*entity.Order, error) {
	if key == "" || s.keys == nil {
		return s.PlaceOrder(ctx, userID, cartID)
	}

	claimed, err := s.keys.Claim(ctx, key, idempotencyTTL)
	if err != nil {
		return nil, fmt.Errorf("claim idempotency key: %w", err)
	}
	if !claimed {
		return nil, ErrDuplicateRequest
	}

	order, err := s.PlaceOrder(ctx, userID, cartID)
	if err != nil {
		// Nothing was committed, so the caller may retry with the same key.
		if relErr := s.keys.Release(ctx, key); relErr != nil {
			logger.Warn().Err(relErr).Msgf("Error releasing idempotency key %s", key)
		}
		return nil, err
	}
	return order, nil
}

func (s *OrderService) createOrder(ctx context.Context, customerID int, cartID uuid.UUID) (*entity.Order, error) {
	// Start a transaction
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	// No-op once committed.
	defer tx.Rollback()

	order := &entity.Order{
		CustomerID:    customerID,
		PlacedAt:      s.now(),
		PaymentStatus: entity.PaymentPending,
	}
	if err := s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	cartItems, err := s.cartRepo.GetItems(ctx, tx, cartID)
	if err != nil {
		return nil, fmt.Errorf("load cart items: %w", err)
	}
	// The cart may have been emptied since validation.
	if len(cartItems) == 0 {
		return nil, ErrEmptyCart
	}

	// Prices are copied so later product changes leave the order untouched.
	order.Items = make([]entity.OrderItem, 0, len(cartItems))
	for _, cartItem := range cartItems {
		order.Items = append(order.Items, entity.OrderItem{
			OrderID:   order.ID,
			ProductID: cartItem.Product.ID,
			Quantity:  cartItem.Quantity,
			UnitPrice: cartItem.Product.UnitPrice,
		})
	}

	if err := s.orderRepo.CreateOrderItems(ctx, tx, order.ID, order.Items); err != nil {
		return nil, fmt.Errorf("create order items: %w", err)
	}

	err = s.cartRepo.DeleteCart(ctx, tx, cartID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("delete cart: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return order, nil
}

// GetOrders lists the caller's orders, or every order for staff.
func (s *OrderService) GetOrders(ctx context.Context, userID int, isStaff bool) ([]*entity.Order, error) {
	if isStaff {
		return s.orderRepo.GetOrders(ctx, 0)
	}

	customer, err := s.customerRepo.GetCustomerByUserID(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCustomerNotFound
	}
	if err != nil {
		return nil, err
	}

	return s.orderRepo.GetOrders(ctx, customer.ID)
}

// GetOrder returns ErrOrderNotFound both for unknown ids and for orders that
// belong to another customer.
func (s *OrderService) GetOrder(ctx context.Context, userID int, isStaff bool, id int) (*entity.Order, error) {
	order, err := s.orderRepo.GetOrderByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	if isStaff {
		return order, nil
	}

	customer, err := s.customerRepo.GetCustomerByUserID(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	if customer.ID != order.CustomerID {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *OrderService) UpdatePaymentStatus(ctx context.Context, id int, status entity.PaymentStatus) (*entity.Order, error) {
	if !status.Valid() {
		return nil, ErrInvalidPaymentStatus
	}

	err := s.orderRepo.UpdatePaymentStatus(ctx, id, status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		logger.Error().Err(err).Msgf("Error updating payment status of order %d", id)
		return nil, err
	}

	return s.GetOrder(ctx, 0, true, id)
}
