package service

import (
	"context"
	"database/sql"
	"errors"
	"storefront/internal/entity"
	"storefront/internal/repository"
)

type CustomerService struct {
	customerRepo *repository.CustomerRepository
}

func NewCustomerService(customerRepo *repository.CustomerRepository) *CustomerService {
	return &CustomerService{customerRepo: customerRepo}
}

// GetMe returns the customer record of the authenticated user.
func (s *CustomerService) GetMe(ctx context.Context, userID int) (*entity.Customer, error) {
	customer, err := s.customerRepo.GetCustomerByUserID(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCustomerNotFound
	}
	return customer, err
}

// UpdateMe overwrites the editable fields of the caller's customer record.
func (s *CustomerService) UpdateMe(ctx context.Context, userID int, update *entity.Customer) (*entity.Customer, error) {
	customer, err := s.GetMe(ctx, userID)
	if err != nil {
		return nil, err
	}

	customer.Phone = update.Phone
	customer.BirthDate = update.BirthDate
	if update.Membership != "" {
		customer.Membership = update.Membership
	}

	err = s.customerRepo.UpdateCustomer(ctx, customer)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCustomerNotFound
	}
	if err != nil {
		logger.Error().Err(err).Msgf("Error updating customer %d", customer.ID)
		return nil, err
	}
	return customer, nil
}

func (s *CustomerService) GetCustomers(ctx context.Context) ([]*entity.Customer, error) {
	return s.customerRepo.GetCustomers(ctx)
}

// GetContact returns the address order notifications go to.
func (s *CustomerService) GetContact(ctx context.Context, customerID int) (email, name string, err error) {
	email, name, err = s.customerRepo.GetContact(ctx, customerID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", ErrCustomerNotFound
	}
	return email, name, err
}
