package service

import "errors"

// Validation errors. The HTTP layer maps them to 4xx responses; anything
// else is reported as an internal failure.
var (
	ErrCartNotFound         = errors.New("cart not found")
	ErrEmptyCart            = errors.New("cart is empty")
	ErrCartItemNotFound     = errors.New("cart item not found")
	ErrProductNotFound      = errors.New("product with this id does not exist")
	ErrProductInUse         = errors.New("product cannot be deleted because it is associated with an order item")
	ErrCollectionNotFound   = errors.New("collection not found")
	ErrCollectionNotEmpty   = errors.New("collection cannot be deleted because it contains one or more products")
	ErrCustomerNotFound     = errors.New("customer not found")
	ErrOrderNotFound        = errors.New("order not found")
	ErrInvalidQuantity      = errors.New("quantity must be between 1 and 32767")
	ErrInvalidPaymentStatus = errors.New("invalid payment status")
	ErrDuplicateRequest     = errors.New("idempotency key already used")
	ErrUserExists           = errors.New("a user with that username or email already exists")
	ErrInvalidCredentials   = errors.New("no active account found with the given credentials")
)
