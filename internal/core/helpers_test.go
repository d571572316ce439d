package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/proset/internal/catalog"
	"github.com/JonMunkholm/proset/internal/store"
	"github.com/JonMunkholm/proset/internal/store/memstore"
	"github.com/JonMunkholm/proset/internal/vendors"
)

type fixture struct {
	svc   *Service
	store *memstore.Store
}

// newFixture returns a service over an empty memstore with the given
// vendors already saved.
func newFixture(t *testing.T, vendorNames ...string) *fixture {
	t.Helper()
	return newFixtureWith(t, Options{}, vendorNames...)
}

func newFixtureWith(t *testing.T, opts Options, vendorNames ...string) *fixture {
	t.Helper()
	st := memstore.New()
	for _, name := range vendorNames {
		_, err := st.InsertOne(context.Background(), catalog.VendorsCollection, catalog.Vendor{Name: name})
		require.NoError(t, err)
	}
	return &fixture{
		svc:   NewService(st, vendors.NewChecker(st, nil, 0), opts),
		store: st,
	}
}

func (f *fixture) seed(t *testing.T, products ...catalog.Product) {
	t.Helper()
	for _, p := range products {
		_, err := f.store.InsertOne(context.Background(), catalog.ProductsCollection, p)
		require.NoError(t, err)
	}
}

func (f *fixture) product(t *testing.T, vendor, sku string) (catalog.Product, bool) {
	t.Helper()
	var p catalog.Product
	found, err := f.store.FindOne(context.Background(), catalog.ProductsCollection,
		store.Filter(catalog.ProductFilter(vendor, sku)), &p)
	require.NoError(t, err)
	return p, found
}

func (f *fixture) productCount() int {
	return f.store.Count(catalog.ProductsCollection)
}

// sheet builds an import sheet with the canonical header.
func sheet(rows ...[]string) [][]string {
	return append([][]string{append([]string(nil), Columns...)}, rows...)
}
