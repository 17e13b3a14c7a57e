package repository

import (
	"context"
	"database/sql"
	"storefront/internal/entity"
)

type CustomerRepository struct {
	db *sql.DB
}

func NewCustomerRepository(db *sql.DB) *CustomerRepository {
	return &CustomerRepository{db}
}

const customerColumns = `id, user_id, phone, birth_date, membership`

func scanCustomer(row interface{ Scan(...interface{}) error }) (*entity.Customer, error) {
	var c entity.Customer
	var birthDate sql.NullTime
	if err := row.Scan(&c.ID, &c.UserID, &c.Phone, &birthDate, &c.Membership); err != nil {
		return nil, err
	}
	if birthDate.Valid {
		date := birthDate.Time.Format(entity.DateLayout)
		c.BirthDate = &date
	}
	return &c, nil
}

// GetCustomerByUserID returns sql.ErrNoRows when the user has no customer record.
func (r *CustomerRepository) GetCustomerByUserID(ctx context.Context, userID int) (*entity.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE user_id = ?`
	return scanCustomer(r.db.QueryRowContext(ctx, query, userID))
}

func (r *CustomerRepository) GetCustomers(ctx context.Context) ([]*entity.Customer, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+customerColumns+` FROM customers ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := []*entity.Customer{}
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, customer)
	}
	return customers, rows.Err()
}

func (r *CustomerRepository) CreateCustomer(ctx context.Context, q DBTX, customer *entity.Customer) error {
	query := `INSERT INTO customers (user_id, phone, birth_date, membership) VALUES (?, ?, ?, ?)`
	res, err := q.ExecContext(ctx, query, customer.UserID, customer.Phone, customer.BirthDate, customer.Membership)
	if err != nil {
		return err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	customer.ID = int(id)
	return nil
}

func (r *CustomerRepository) UpdateCustomer(ctx context.Context, customer *entity.Customer) error {
	query := `UPDATE customers SET phone = ?, birth_date = ?, membership = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, customer.Phone, customer.BirthDate, customer.Membership, customer.ID)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

// GetContact returns the email and first name of the user behind a customer.
func (r *CustomerRepository) GetContact(ctx context.Context, customerID int) (email, name string, err error) {
	query := `SELECT u.email, u.first_name FROM customers c JOIN users u ON u.id = c.user_id WHERE c.id = ?`
	err = r.db.QueryRowContext(ctx, query, customerID).Scan(&email, &name)
	return email, name, err
}
