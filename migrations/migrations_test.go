package migrations

import (
	"errors"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"regexp"
	"testing"
)

func TestAutoMigrateCreatesAllTables(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	for _, tbl := range tables {
		mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS " + tbl.name + " (")).
			WillReturnResult(sqlmock.NewResult(0, 0))
	}

	require.NoError(t, AutoMigrate(0, db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAutoMigrateReportsFailingTable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS collections (")).
		WillReturnError(errors.New("access denied"))

	err = AutoMigrate(0, db)
	assert.ErrorContains(t, err, "migrate collections: access denied")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartItemsAreUniquePerProduct(t *testing.T) {
	for _, tbl := range tables {
		if tbl.name == "cart_items" {
			assert.Contains(t, tbl.query, "UNIQUE KEY cart_product_uq (cart_id, product_id)")
			assert.Contains(t, tbl.query, "REFERENCES carts(id) ON DELETE CASCADE")
			return
		}
	}
	t.Fatal("cart_items table missing")
}
