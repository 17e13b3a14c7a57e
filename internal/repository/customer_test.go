package repository

import (
	"context"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"regexp"
	"storefront/internal/entity"
	"testing"
	"time"
)

var customerCols = []string{"id", "user_id", "phone", "birth_date", "membership"}

func TestGetCustomerFormatsBirthDate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// With parseTime the driver hands DATE columns back as time.Time.
	mock.ExpectQuery(regexp.QuoteMeta("FROM customers WHERE user_id = ?")).
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows(customerCols).
			AddRow(3, 10, "555-0100", time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC), "G"))

	customer, err := NewCustomerRepository(db).GetCustomerByUserID(context.Background(), 10)
	require.NoError(t, err)
	require.NotNil(t, customer.BirthDate)
	assert.Equal(t, "1990-05-01", *customer.BirthDate)

	// The value read back is accepted as-is by an update.
	_, err = time.Parse(entity.DateLayout, *customer.BirthDate)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetCustomerWithoutBirthDate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM customers WHERE user_id = ?")).
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows(customerCols).AddRow(3, 10, "", nil, "B"))

	customer, err := NewCustomerRepository(db).GetCustomerByUserID(context.Background(), 10)
	require.NoError(t, err)
	assert.Nil(t, customer.BirthDate)
}

func TestUpdateCustomerWritesDateString(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	birth := "1990-05-01"
	mock.ExpectExec(regexp.QuoteMeta("UPDATE customers SET phone = ?, birth_date = ?, membership = ? WHERE id = ?")).
		WithArgs("555-0100", birth, "G", 3).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = NewCustomerRepository(db).UpdateCustomer(context.Background(), &entity.Customer{
		ID: 3, Phone: "555-0100", BirthDate: &birth, Membership: "G",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
