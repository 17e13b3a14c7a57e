package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"storefront/internal/entity"
	"storefront/internal/repository"
	"time"
)

type CartService struct {
	db          *sql.DB
	cartRepo    *repository.CartRepository
	productRepo *repository.ProductRepository
}

// NewCartService creates a new instance of CartService.
func NewCartService(db *sql.DB, cartRepo *repository.CartRepository, productRepo *repository.ProductRepository) *CartService {
	return &CartService{
		db:          db,
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// CreateCart stores an empty cart under a fresh id.
func (s *CartService) CreateCart(ctx context.Context) (*entity.Cart, error) {
	cart := &entity.Cart{
		ID:        uuid.New(),
		Items:     []entity.CartItem{},
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	if err := s.cartRepo.CreateCart(ctx, cart); err != nil {
		logger.Error().Err(err).Msg("Error creating cart")
		return nil, err
	}
	return cart.Totals(), nil
}

func (s *CartService) GetCart(ctx context.Context, id uuid.UUID) (*entity.Cart, error) {
	cart, err := s.cartRepo.GetCart(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, err
	}
	return cart.Totals(), nil
}

func (s *CartService) DeleteCart(ctx context.Context, id uuid.UUID) error {
	err := s.cartRepo.DeleteCart(ctx, s.db, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrCartNotFound
	}
	return err
}

func (s *CartService) GetItems(ctx context.Context, cartID uuid.UUID) ([]entity.CartItem, error) {
	if err := s.requireCart(ctx, cartID); err != nil {
		return nil, err
	}

	items, err := s.cartRepo.GetItems(ctx, s.db, cartID)
	if err != nil {
		return nil, err
	}
	cart := &entity.Cart{Items: items}
	return cart.Totals().Items, nil
}

func (s *CartService) GetItem(ctx context.Context, cartID uuid.UUID, itemID int) (*entity.CartItem, error) {
	item, err := s.cartRepo.GetItem(ctx, cartID, itemID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCartItemNotFound
	}
	if err != nil {
		return nil, err
	}
	cart := &entity.Cart{Items: []entity.CartItem{*item}}
	return &cart.Totals().Items[0], nil
}

// AddItem puts quantity units of the product into the cart. If the product is
// already in the cart its line is incremented instead of duplicated.
func (s *CartService) AddItem(ctx context.Context, cartID uuid.UUID, productID, quantity int) (*entity.CartItem, error) {
	if quantity < 1 || quantity > entity.MaxItemQuantity {
		return nil, ErrInvalidQuantity
	}
	if err := s.requireCart(ctx, cartID); err != nil {
		return nil, err
	}

	exists, err := s.productRepo.Exists(ctx, s.db, productID)
	if err != nil {
		return nil, fmt.Errorf("check product: %w", err)
	}
	if !exists {
		return nil, ErrProductNotFound
	}

	itemID, err := s.upsertItem(ctx, cartID, productID, quantity)
	if errors.Is(err, ErrInvalidQuantity) {
		return nil, err
	}
	if err != nil {
		logger.Error().Err(err).Msgf("Error adding product %d to cart %s", productID, cartID)
		return nil, err
	}

	return s.GetItem(ctx, cartID, itemID)
}

func (s *CartService) upsertItem(ctx context.Context, cartID uuid.UUID, productID, quantity int) (int, error) {
	itemID, current, err := s.cartRepo.FindItem(ctx, cartID, productID)
	if err == nil {
		return itemID, s.increment(ctx, itemID, current, quantity)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}

	itemID, err = s.cartRepo.InsertItem(ctx, cartID, productID, quantity)
	if err == nil {
		return itemID, nil
	}
	if !repository.IsDuplicateEntry(err) {
		return 0, err
	}

	// A concurrent request inserted the line first; add to it instead.
	logger.Warn().Msgf("Concurrent insert of product %d into cart %s, incrementing", productID, cartID)
	itemID, current, err = s.cartRepo.FindItem(ctx, cartID, productID)
	if err != nil {
		return 0, err
	}
	return itemID, s.increment(ctx, itemID, current, quantity)
}

// increment adds quantity to a line holding current units, refusing sums above
// entity.MaxItemQuantity.
func (s *CartService) increment(ctx context.Context, itemID, current, quantity int) error {
	if current+quantity > entity.MaxItemQuantity {
		return ErrInvalidQuantity
	}
	err := s.cartRepo.IncrementItem(ctx, itemID, quantity, entity.MaxItemQuantity)
	if errors.Is(err, sql.ErrNoRows) {
		// Another request raised the line past the limit in between.
		return ErrInvalidQuantity
	}
	return err
}

// UpdateItem sets the quantity of an existing line.
func (s *CartService) UpdateItem(ctx context.Context, cartID uuid.UUID, itemID, quantity int) (*entity.CartItem, error) {
	if quantity < 1 || quantity > entity.MaxItemQuantity {
		return nil, ErrInvalidQuantity
	}

	err := s.cartRepo.SetItemQuantity(ctx, cartID, itemID, quantity)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCartItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.GetItem(ctx, cartID, itemID)
}

func (s *CartService) DeleteItem(ctx context.Context, cartID uuid.UUID, itemID int) error {
	err := s.cartRepo.DeleteItem(ctx, cartID, itemID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrCartItemNotFound
	}
	return err
}

// DeleteAbandoned removes carts older than ttl.
func (s *CartService) DeleteAbandoned(ctx context.Context, ttl time.Duration) (int64, error) {
	return s.cartRepo.DeleteCreatedBefore(ctx, time.Now().UTC().Add(-ttl))
}

func (s *CartService) requireCart(ctx context.Context, id uuid.UUID) error {
	exists, err := s.cartRepo.Exists(ctx, s.db, id)
	if err != nil {
		return fmt.Errorf("check cart: %w", err)
	}
	if !exists {
		return ErrCartNotFound
	}
	return nil
}
