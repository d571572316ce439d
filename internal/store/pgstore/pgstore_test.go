package pgstore

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/proset/internal/catalog"
	"github.com/JonMunkholm/proset/internal/store"
)

func TestUniqueIndexSQL(t *testing.T) {
	got := uniqueIndexSQL(store.UniqueIndexes[0])
	want := "CREATE UNIQUE INDEX IF NOT EXISTS documents_product_vendor_sku ON documents " +
		"((body #>> '{vendor,vendor_name}'), (body #>> '{sku_info,sku}')) WHERE collection = 'all_products'"
	assert.Equal(t, want, got)
}

func TestContainment(t *testing.T) {
	got, err := containment(store.Filter(catalog.ProductFilter("Acme", "A-1")))
	require.NoError(t, err)
	assert.JSONEq(t, `{"vendor":{"vendor_name":"Acme"},"sku_info":{"sku":"A-1"}}`, got)

	got, err = containment(nil)
	require.NoError(t, err)
	assert.Equal(t, "{}", got)
}

func TestWrap_UniqueViolation(t *testing.T) {
	err := wrap("insert", &pgconn.PgError{Code: uniqueViolation, ConstraintName: "documents_vendor_name"})
	assert.True(t, errors.Is(err, store.ErrDuplicateKey))
	assert.Contains(t, err.Error(), "documents_vendor_name")

	err = wrap("insert", &pgconn.PgError{Code: "40001"})
	assert.False(t, errors.Is(err, store.ErrDuplicateKey))
}
