package vendors

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/proset/internal/catalog"
	"github.com/JonMunkholm/proset/internal/store/memstore"
)

func newTestService(t *testing.T) (*Service, *memstore.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	st := memstore.New()
	return NewService(st, NewChecker(st, rdb, time.Minute)), st, mr
}

func TestService_SaveGetList(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	created, err := svc.Save(ctx, catalog.Vendor{
		Name:       " Acme ",
		FullName:   "Acme Flooring Supply",
		Warehouses: []catalog.Warehouse{{Name: "North", Address: "1 Dock Rd"}},
	})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.Save(ctx, catalog.Vendor{Name: "Acme", FullName: "Acme Flooring"})
	require.NoError(t, err)
	assert.False(t, created)

	v, err := svc.Get(ctx, "Acme")
	require.NoError(t, err)
	assert.Equal(t, "Acme Flooring", v.FullName)
	assert.Empty(t, v.Warehouses, "save replaces the whole record")

	_, err = svc.Save(ctx, catalog.Vendor{Name: "Globex"})
	require.NoError(t, err)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Acme", all[0].Name)
}

func TestService_SaveInvalid(t *testing.T) {
	svc, st, _ := newTestService(t)

	_, err := svc.Save(context.Background(), catalog.Vendor{Name: "  "})
	require.Error(t, err)

	_, err = svc.Save(context.Background(), catalog.Vendor{Name: "Acme", HeadquartersEmail: "nope"})
	require.Error(t, err)
	assert.Zero(t, st.Count(catalog.VendorsCollection))
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()
	svc, _, mr := newTestService(t)

	_, err := svc.Save(ctx, catalog.Vendor{Name: "Acme"})
	require.NoError(t, err)

	ok, err := svc.Checker().Exists(ctx, "Acme")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, mr.Exists(cacheKey("Acme")))

	require.NoError(t, svc.Delete(ctx, "Acme"))
	assert.False(t, mr.Exists(cacheKey("Acme")), "delete drops the cached answer")

	ok, err = svc.Checker().Exists(ctx, "Acme")
	require.NoError(t, err)
	assert.False(t, ok)

	err = svc.Delete(ctx, "Acme")
	assert.ErrorIs(t, err, ErrVendorNotFound)

	_, err = svc.Get(ctx, "Acme")
	assert.ErrorIs(t, err, ErrVendorNotFound)
}

func TestChecker_ServesFromCache(t *testing.T) {
	ctx := context.Background()
	svc, st, mr := newTestService(t)
	_, err := svc.Save(ctx, catalog.Vendor{Name: "Acme"})
	require.NoError(t, err)

	ok, err := svc.Checker().Exists(ctx, "Acme")
	require.NoError(t, err)
	require.True(t, ok)

	st.FailOn = func(op, collection string) error { return errors.New("store offline") }

	ok, err = svc.Checker().Exists(ctx, "Acme")
	require.NoError(t, err)
	assert.True(t, ok, "cached positive answer")

	mr.FastForward(2 * time.Minute)
	_, err = svc.Checker().Exists(ctx, "Acme")
	assert.Error(t, err, "expired entry goes back to the store")
}

func TestChecker_NegativeNotCached(t *testing.T) {
	ctx := context.Background()
	svc, _, mr := newTestService(t)

	ok, err := svc.Checker().Exists(ctx, "Acme")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, mr.Exists(cacheKey("Acme")))

	_, err = svc.Save(ctx, catalog.Vendor{Name: "Acme"})
	require.NoError(t, err)

	ok, err = svc.Checker().Exists(ctx, "Acme")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestChecker_CacheDownFallsBack(t *testing.T) {
	ctx := context.Background()
	svc, _, mr := newTestService(t)
	_, err := svc.Save(ctx, catalog.Vendor{Name: "Acme"})
	require.NoError(t, err)

	mr.Close()

	ok, err := svc.Checker().Exists(ctx, "Acme")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestChecker_NoCache(t *testing.T) {
	st := memstore.New()
	c := NewChecker(st, nil, 0)

	ok, err := c.Exists(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = st.InsertOne(context.Background(), catalog.VendorsCollection, catalog.Vendor{Name: "Acme"})
	require.NoError(t, err)
	ok, err = c.Exists(context.Background(), "Acme")
	require.NoError(t, err)
	assert.True(t, ok)
	c.Forget(context.Background(), "Acme")
}
