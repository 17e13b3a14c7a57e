package api

import (
	"errors"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"os"
	"storefront/internal/service"
	"strconv"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// RequestValidator plugs validator/v10 into echo's c.Validate.
type RequestValidator struct {
	validator *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	return &RequestValidator{validator: validator.New()}
}

func (rv *RequestValidator) Validate(i interface{}) error {
	return rv.validator.Struct(i)
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInvalidPaymentStatus),
		errors.Is(err, service.ErrUserExists):
		return 400
	case errors.Is(err, service.ErrInvalidCredentials):
		return 401
	case errors.Is(err, service.ErrCartNotFound),
		errors.Is(err, service.ErrCartItemNotFound),
		errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrCollectionNotFound),
		errors.Is(err, service.ErrCustomerNotFound),
		errors.Is(err, service.ErrOrderNotFound):
		return 404
	case errors.Is(err, service.ErrProductInUse),
		errors.Is(err, service.ErrCollectionNotEmpty):
		return 405
	case errors.Is(err, service.ErrDuplicateRequest):
		return 409
	}
	return 500
}

// errorJSON writes err with its mapped status. Errors listed in invalid are
// reported as 400 instead, for endpoints where a missing referenced entity is
// a problem with the request body rather than with the URL.
func errorJSON(c echo.Context, err error, invalid ...error) error {
	for _, target := range invalid {
		if errors.Is(err, target) {
			return c.JSON(400, map[string]string{"error": err.Error()})
		}
	}

	status := statusFor(err)
	if status == 500 {
		logger.Error().Err(err).Str("path", c.Path()).Msg("Unhandled error")
		return c.JSON(500, map[string]string{"error": "internal server error"})
	}
	return c.JSON(status, map[string]string{"error": err.Error()})
}

var errInvalidPayload = errors.New("Invalid request payload")

// bindAndValidate decodes the body into req and runs its validate tags. The
// returned error is meant for a 400 response.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return errInvalidPayload
	}
	return c.Validate(req)
}

func paramID(c echo.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

// claimsFrom returns the claims echojwt stored under "user", or nil when the
// request is unauthenticated.
func claimsFrom(c echo.Context) *service.JwtCustomClaims {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return nil
	}
	claims, ok := token.Claims.(*service.JwtCustomClaims)
	if !ok {
		return nil
	}
	return claims
}

// StaffOnly rejects authenticated non-staff users with 403.
func StaffOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims := claimsFrom(c)
		if claims == nil {
			return c.JSON(401, map[string]string{"error": "Unauthorized"})
		}
		if !claims.IsStaff {
			return c.JSON(403, map[string]string{"error": "You do not have permission to perform this action."})
		}
		return next(c)
	}
}
