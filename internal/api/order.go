package api

import (
	"context"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"storefront/internal/entity"
	"storefront/internal/service"
)

type OrderService interface {
	PlaceOrderOnce(ctx context.Context, key string, userID int, cartID uuid.UUID) (*entity.Order, error)
	GetOrders(ctx context.Context, userID int, isStaff bool) ([]*entity.Order, error)
	GetOrder(ctx context.Context, userID int, isStaff bool, id int) (*entity.Order, error)
	UpdatePaymentStatus(ctx context.Context, id int, status entity.PaymentStatus) (*entity.Order, error)
}

type OrderHandler struct {
	orderService OrderService
}

// NewOrderHandler creates a new instance of OrderHandler
func NewOrderHandler(orderService OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// CreateOrder turns a cart into an order --> POST /orders
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	claims := claimsFrom(c)
	if claims == nil {
		return c.JSON(401, map[string]string{"error": "Unauthorized"})
	}

	req := struct {
		CartID string `json:"cart_id" validate:"required,uuid"`
	}{}
	if err := bindAndValidate(c, &req); err != nil {
		return c.JSON(400, map[string]string{"error": err.Error()})
	}
	cartID := uuid.MustParse(req.CartID)

	key := c.Request().Header.Get("Idempotency-Key")
	order, err := h.orderService.PlaceOrderOnce(c.Request().Context(), key, claims.UserID, cartID)
	if err != nil {
		return errorJSON(c, err, service.ErrCartNotFound)
	}
	return c.JSON(201, order)
}

// GetOrders lists the caller's orders, or all orders for staff --> /orders
func (h *OrderHandler) GetOrders(c echo.Context) error {
	claims := claimsFrom(c)
	if claims == nil {
		return c.JSON(401, map[string]string{"error": "Unauthorized"})
	}

	orders, err := h.orderService.GetOrders(c.Request().Context(), claims.UserID, claims.IsStaff)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, orders)
}

// GetOrder --> /orders/:id
func (h *OrderHandler) GetOrder(c echo.Context) error {
	claims := claimsFrom(c)
	if claims == nil {
		return c.JSON(401, map[string]string{"error": "Unauthorized"})
	}
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(400, map[string]string{"error": "Invalid order ID"})
	}

	order, err := h.orderService.GetOrder(c.Request().Context(), claims.UserID, claims.IsStaff, id)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, order)
}

// UpdateOrder changes the payment status --> PATCH /orders/:id
func (h *OrderHandler) UpdateOrder(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(400, map[string]string{"error": "Invalid order ID"})
	}

	req := struct {
		PaymentStatus string `json:"payment_status" validate:"required,oneof=P C F"`
	}{}
	if err := bindAndValidate(c, &req); err != nil {
		return c.JSON(400, map[string]string{"error": err.Error()})
	}

	order, err := h.orderService.UpdatePaymentStatus(c.Request().Context(), id, entity.PaymentStatus(req.PaymentStatus))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, order)
}
