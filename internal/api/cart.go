package api

import (
	"context"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"storefront/internal/entity"
	"storefront/internal/service"
)

type CartService interface {
	CreateCart(ctx context.Context) (*entity.Cart, error)
	GetCart(ctx context.Context, id uuid.UUID) (*entity.Cart, error)
	DeleteCart(ctx context.Context, id uuid.UUID) error
	GetItems(ctx context.Context, cartID uuid.UUID) ([]entity.CartItem, error)
	GetItem(ctx context.Context, cartID uuid.UUID, itemID int) (*entity.CartItem, error)
	AddItem(ctx context.Context, cartID uuid.UUID, productID, quantity int) (*entity.CartItem, error)
	UpdateItem(ctx context.Context, cartID uuid.UUID, itemID, quantity int) (*entity.CartItem, error)
	DeleteItem(ctx context.Context, cartID uuid.UUID, itemID int) error
}

type CartHandler struct {
	cartService CartService
}

// NewCartHandler creates a new instance of CartHandler
func NewCartHandler(cartService CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

func cartID(c echo.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	return id, err == nil
}

// CreateCart creates an empty cart --> POST /carts
func (h *CartHandler) CreateCart(c echo.Context) error {
	cart, err := h.cartService.CreateCart(c.Request().Context())
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(201, cart)
}

// GetCart returns the cart with its totals --> /carts/:id
func (h *CartHandler) GetCart(c echo.Context) error {
	id, ok := cartID(c)
	if !ok {
		return c.JSON(400, map[string]string{"error": "Invalid cart ID"})
	}

	cart, err := h.cartService.GetCart(c.Request().Context(), id)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, cart)
}

// DeleteCart --> DELETE /carts/:id
func (h *CartHandler) DeleteCart(c echo.Context) error {
	id, ok := cartID(c)
	if !ok {
		return c.JSON(400, map[string]string{"error": "Invalid cart ID"})
	}

	if err := h.cartService.DeleteCart(c.Request().Context(), id); err != nil {
		return errorJSON(c, err)
	}
	return c.NoContent(204)
}

// GetItems --> /carts/:id/items
func (h *CartHandler) GetItems(c echo.Context) error {
	id, ok := cartID(c)
	if !ok {
		return c.JSON(400, map[string]string{"error": "Invalid cart ID"})
	}

	items, err := h.cartService.GetItems(c.Request().Context(), id)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, items)
}

// GetItem --> /carts/:id/items/:item_id
func (h *CartHandler) GetItem(c echo.Context) error {
	id, ok := cartID(c)
	if !ok {
		return c.JSON(400, map[string]string{"error": "Invalid cart ID"})
	}
	itemID, ok := paramID(c, "item_id")
	if !ok {
		return c.JSON(400, map[string]string{"error": "Invalid item ID"})
	}

	item, err := h.cartService.GetItem(c.Request().Context(), id, itemID)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, item)
}

// AddItem adds a product or increments its quantity --> POST /carts/:id/items
func (h *CartHandler) AddItem(c echo.Context) error {
	id, ok := cartID(c)
	if !ok {
		return c.JSON(400, map[string]string{"error": "Invalid cart ID"})
	}

	req := struct {
		ProductID int `json:"product_id" validate:"required,gt=0"`
		Quantity  int `json:"quantity" validate:"required,gte=1,lte=32767"`
	}{}
	if err := bindAndValidate(c, &req); err != nil {
		return c.JSON(400, map[string]string{"error": err.Error()})
	}

	item, err := h.cartService.AddItem(c.Request().Context(), id, req.ProductID, req.Quantity)
	if err != nil {
		return errorJSON(c, err, service.ErrProductNotFound)
	}
	return c.JSON(201, item)
}

// UpdateItem sets the quantity of a line --> PATCH /carts/:id/items/:item_id
func (h *CartHandler) UpdateItem(c echo.Context) error {
	id, ok := cartID(c)
	if !ok {
		return c.JSON(400, map[string]string{"error": "Invalid cart ID"})
	}
	itemID, ok := paramID(c, "item_id")
	if !ok {
		return c.JSON(400, map[string]string{"error": "Invalid item ID"})
	}

	req := struct {
		Quantity int `json:"quantity" validate:"required,gte=1,lte=32767"`
	}{}
	if err := bindAndValidate(c, &req); err != nil {
		return c.JSON(400, map[string]string{"error": err.Error()})
	}

	item, err := h.cartService.UpdateItem(c.Request().Context(), id, itemID, req.Quantity)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, item)
}

// DeleteItem --> DELETE /carts/:id/items/:item_id
func (h *CartHandler) DeleteItem(c echo.Context) error {
	id, ok := cartID(c)
	if !ok {
		return c.JSON(400, map[string]string{"error": "Invalid cart ID"})
	}
	itemID, ok := paramID(c, "item_id")
	if !ok {
		return c.JSON(400, map[string]string{"error": "Invalid item ID"})
	}

	if err := h.cartService.DeleteItem(c.Request().Context(), id, itemID); err != nil {
		return errorJSON(c, err)
	}
	return c.NoContent(204)
}
