package api

import (
	"context"
	"github.com/labstack/echo/v4"
	"storefront/internal/entity"
	"storefront/internal/service"
)

type CustomerService interface {
	GetMe(ctx context.Context, userID int) (*entity.Customer, error)
	UpdateMe(ctx context.Context, userID int, update *entity.Customer) (*entity.Customer, error)
	GetCustomers(ctx context.Context) ([]*entity.Customer, error)
}

type UserService interface {
	Register(ctx context.Context, reg service.Registration) (*entity.User, error)
	Login(ctx context.Context, username, password string) (string, error)
}

type CustomerHandler struct {
	customerService CustomerService
	userService     UserService
}

// NewCustomerHandler creates a new instance of CustomerHandler
func NewCustomerHandler(customerService CustomerService, userService UserService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService, userService: userService}
}

// Register creates a user and its customer record --> POST /auth/users
func (h *CustomerHandler) Register(c echo.Context) error {
	req := struct {
		Username  string `json:"username" validate:"required,max=150"`
		Email     string `json:"email" validate:"required,email"`
		Password  string `json:"password" validate:"required,min=8"`
		FirstName string `json:"first_name" validate:"required,max=150"`
		LastName  string `json:"last_name" validate:"required,max=150"`
	}{}
	if err := bindAndValidate(c, &req); err != nil {
		return c.JSON(400, map[string]string{"error": err.Error()})
	}

	user, err := h.userService.Register(c.Request().Context(), service.Registration{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(201, user)
}

// Login issues an access token --> POST /auth/jwt/create
func (h *CustomerHandler) Login(c echo.Context) error {
	login := struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}{}
	if err := bindAndValidate(c, &login); err != nil {
		return c.JSON(400, map[string]string{"error": err.Error()})
	}

	token, err := h.userService.Login(c.Request().Context(), login.Username, login.Password)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, map[string]string{"access": token})
}

// GetMe --> /customers/me
func (h *CustomerHandler) GetMe(c echo.Context) error {
	claims := claimsFrom(c)
	if claims == nil {
		return c.JSON(401, map[string]string{"error": "Unauthorized"})
	}

	customer, err := h.customerService.GetMe(c.Request().Context(), claims.UserID)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, customer)
}

// UpdateMe --> PUT /customers/me
func (h *CustomerHandler) UpdateMe(c echo.Context) error {
	claims := claimsFrom(c)
	if claims == nil {
		return c.JSON(401, map[string]string{"error": "Unauthorized"})
	}

	req := struct {
		Phone      string  `json:"phone" validate:"max=255"`
		BirthDate  *string `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
		Membership string  `json:"membership" validate:"omitempty,oneof=B S G"`
	}{}
	if err := bindAndValidate(c, &req); err != nil {
		return c.JSON(400, map[string]string{"error": err.Error()})
	}

	customer, err := h.customerService.UpdateMe(c.Request().Context(), claims.UserID, &entity.Customer{
		Phone:      req.Phone,
		BirthDate:  req.BirthDate,
		Membership: req.Membership,
	})
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, customer)
}

// GetCustomers lists every customer --> /customers (staff)
func (h *CustomerHandler) GetCustomers(c echo.Context) error {
	customers, err := h.customerService.GetCustomers(c.Request().Context())
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(200, customers)
}
