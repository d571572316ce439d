package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/proset/internal/catalog"
	"github.com/JonMunkholm/proset/internal/store"
)

func TestUpsert_CreatedUpdatedUnchanged(t *testing.T) {
	ctx := context.Background()
	s := New()
	p := catalog.NewProduct("Acme", "A-1", catalog.TypeVendor, catalog.StatusCurrent, "")
	filter := store.Filter(catalog.ProductFilter("Acme", "A-1"))

	res, err := s.Upsert(ctx, catalog.ProductsCollection, filter, p.SkuInfoPatch())
	require.NoError(t, err)
	assert.True(t, res.Created())
	assert.False(t, res.Matched)

	res, err = s.Upsert(ctx, catalog.ProductsCollection, filter, p.SkuInfoPatch())
	require.NoError(t, err)
	assert.True(t, res.Matched)
	assert.False(t, res.Modified)
	assert.False(t, res.Created())

	p.SkuInfo.Type = catalog.TypeGenerated
	res, err = s.Upsert(ctx, catalog.ProductsCollection, filter, p.SkuInfoPatch())
	require.NoError(t, err)
	assert.True(t, res.Matched)
	assert.True(t, res.Modified)

	var got catalog.Product
	found, err := s.FindOne(ctx, catalog.ProductsCollection, filter, &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, catalog.TypeGenerated, got.SkuInfo.Type)
	assert.Equal(t, 1, s.Count(catalog.ProductsCollection))
}

func TestUpdate_NeverInserts(t *testing.T) {
	ctx := context.Background()
	s := New()
	filter := store.Filter(catalog.ProductFilter("Acme", "A-1"))

	res, err := s.Update(ctx, catalog.ProductsCollection, filter, store.Patch{catalog.FieldSKUStatus: catalog.StatusDiscontinued})
	require.NoError(t, err)
	assert.False(t, res.Matched)
	assert.False(t, res.Created())
	assert.Zero(t, s.Count(catalog.ProductsCollection))

	p := catalog.NewProduct("Acme", "A-1", catalog.TypeVendor, catalog.StatusCurrent, "")
	_, err = s.InsertOne(ctx, catalog.ProductsCollection, p)
	require.NoError(t, err)

	res, err = s.Update(ctx, catalog.ProductsCollection, filter, store.Patch{catalog.FieldSKUStatus: catalog.StatusDiscontinued})
	require.NoError(t, err)
	assert.True(t, res.Matched)
	assert.True(t, res.Modified)
}

func TestUpsert_KeepsUnpatchedFields(t *testing.T) {
	ctx := context.Background()
	s := New()
	p := catalog.NewProduct("Acme", "A-1", catalog.TypeVendor, catalog.StatusCurrent, "")
	p.Sizes = &catalog.Sizes{Dimensions: []catalog.Dimension{{Name: "width", Unit: "in", Exact: catalog.Exact(4)}}}
	_, err := s.InsertOne(ctx, catalog.ProductsCollection, p)
	require.NoError(t, err)

	filter := store.Filter(catalog.ProductFilter("Acme", "A-1"))
	_, err = s.Upsert(ctx, catalog.ProductsCollection, filter, store.Patch{catalog.FieldSKUStatus: catalog.StatusDiscontinued})
	require.NoError(t, err)

	var got catalog.Product
	_, err = s.FindOne(ctx, catalog.ProductsCollection, filter, &got)
	require.NoError(t, err)
	assert.Equal(t, catalog.StatusDiscontinued, got.SkuInfo.Status)
	require.NotNil(t, got.Sizes)
	assert.Equal(t, p.Sizes, got.Sizes)
}

func TestUniqueIndex(t *testing.T) {
	ctx := context.Background()
	s := New()
	a := catalog.NewProduct("Acme", "A-1", catalog.TypeVendor, catalog.StatusCurrent, "")
	b := catalog.NewProduct("Acme", "A-2", catalog.TypeVendor, catalog.StatusCurrent, "")

	_, err := s.InsertOne(ctx, catalog.ProductsCollection, a)
	require.NoError(t, err)
	_, err = s.InsertOne(ctx, catalog.ProductsCollection, b)
	require.NoError(t, err)

	_, err = s.InsertOne(ctx, catalog.ProductsCollection, a)
	assert.ErrorIs(t, err, store.ErrDuplicateKey)

	// Renaming A-2 onto A-1 collides.
	_, err = s.Upsert(ctx, catalog.ProductsCollection,
		store.Filter(catalog.ProductFilter("Acme", "A-2")),
		store.Patch{catalog.FieldSKU: "A-1"})
	assert.ErrorIs(t, err, store.ErrDuplicateKey)

	// Same sku under another vendor is fine.
	other := catalog.NewProduct("Globex", "A-1", catalog.TypeVendor, catalog.StatusCurrent, "")
	_, err = s.InsertOne(ctx, catalog.ProductsCollection, other)
	require.NoError(t, err)
}

func TestFindManyAndDelete(t *testing.T) {
	ctx := context.Background()
	s := New()
	for _, sku := range []string{"C", "A", "B"} {
		_, err := s.InsertOne(ctx, catalog.ProductsCollection,
			catalog.NewProduct("Acme", sku, catalog.TypeVendor, catalog.StatusCurrent, ""))
		require.NoError(t, err)
	}
	_, err := s.InsertOne(ctx, catalog.ProductsCollection,
		catalog.NewProduct("Globex", "Z", catalog.TypeVendor, catalog.StatusCurrent, ""))
	require.NoError(t, err)

	var got []catalog.Product
	err = s.FindMany(ctx, catalog.ProductsCollection, store.Filter{catalog.FieldVendorName: "Acme"}, &got)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "C", got[0].SkuInfo.SKU, "insertion order is preserved")
	assert.Equal(t, "B", got[2].SkuInfo.SKU)

	res, err := s.DeleteOne(ctx, catalog.ProductsCollection, store.Filter(catalog.ProductFilter("Acme", "A")))
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.DeletedCount)

	res, err = s.DeleteOne(ctx, catalog.ProductsCollection, store.Filter(catalog.ProductFilter("Acme", "A")))
	require.NoError(t, err)
	assert.EqualValues(t, 0, res.DeletedCount)
	assert.Equal(t, 3, s.Count(catalog.ProductsCollection))
}

func TestFindMany_EmptyIsNonNil(t *testing.T) {
	var got []catalog.Product
	require.NoError(t, New().FindMany(context.Background(), catalog.ProductsCollection, nil, &got))
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFailOn(t *testing.T) {
	boom := errors.New("connection reset")
	s := New()
	s.FailOn = func(op, collection string) error {
		if op == "upsert" {
			return boom
		}
		return nil
	}
	_, err := s.Upsert(context.Background(), catalog.ProductsCollection, store.Filter{"x": 1}, store.Patch{"y": 2})
	assert.ErrorIs(t, err, boom)
}
