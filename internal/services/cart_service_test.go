package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nynth/internal/domain"
	"nynth/internal/repos"
	"nynth/internal/services"
)

func memdb(t *testing.T) *repos.KVRepo {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return repos.NewKVRepo(db)
}

func tee() domain.Product {
	return domain.Product{ID: "tee-heavy-black", Title: "Heavyweight Tee - Black", Price: 18500, InStock: true, StockQty: 10}
}

func TestCartStorePersistsAcrossInstances(t *testing.T) {
	kv := memdb(t)
	store := services.NewCartStore(kv)

	_, err := store.Add("sid-1", tee(), 2, "M", "black")
	require.NoError(t, err)

	// A fresh store over the same KV sees the snapshot, like a page reload.
	reloaded := services.NewCartStore(kv).Load("sid-1")
	require.Len(t, reloaded.Lines, 1)
	assert.Equal(t, 2, reloaded.Lines[0].Quantity)
	assert.Equal(t, int64(37000), reloaded.Subtotal())
}

func TestCartStoreMergesVariantAcrossAdds(t *testing.T) {
	store := services.NewCartStore(memdb(t))

	_, err := store.Add("sid-1", tee(), 1, "M", "black")
	require.NoError(t, err)
	cart, err := store.Add("sid-1", tee(), 4, "M", "black")
	require.NoError(t, err)

	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 5, cart.Lines[0].Quantity)
}

func TestCartStoreCorruptSnapshotLoadsEmpty(t *testing.T) {
	kv := memdb(t)
	require.NoError(t, kv.Set("cart:sid-1", `{"lines": [{"productId": truncated`))

	cart := services.NewCartStore(kv).Load("sid-1")
	assert.True(t, cart.Empty(), "malformed persisted data is an empty cart, never a fatal error")
}

func TestCartStoreDropsInvalidQuantitiesOnLoad(t *testing.T) {
	kv := memdb(t)
	require.NoError(t, kv.Set("cart:sid-1",
		`{"lines":[{"productId":"a","quantity":0,"unitPrice":100},{"productId":"b","quantity":2,"unitPrice":100}]}`))

	cart := services.NewCartStore(kv).Load("sid-1")
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, "b", cart.Lines[0].ProductID)
}

func TestCartStoreRemoveAndClear(t *testing.T) {
	store := services.NewCartStore(memdb(t))

	_, err := store.Add("sid-1", tee(), 1, "M", "black")
	require.NoError(t, err)

	// Removing an absent variant is a no-op, not an error.
	cart, err := store.Remove("sid-1", "nonexistent", "M", "black")
	require.NoError(t, err)
	assert.Len(t, cart.Lines, 1)

	cart, err = store.Remove("sid-1", "tee-heavy-black", "M", "black")
	require.NoError(t, err)
	assert.True(t, cart.Empty())

	_, err = store.Add("sid-1", tee(), 1, "M", "black")
	require.NoError(t, err)
	require.NoError(t, store.Clear("sid-1"))
	assert.True(t, store.Load("sid-1").Empty())
}

func TestCartStoreSetQuantityZeroRemoves(t *testing.T) {
	store := services.NewCartStore(memdb(t))

	_, err := store.Add("sid-1", tee(), 3, "M", "black")
	require.NoError(t, err)

	cart, err := store.SetQuantity("sid-1", "tee-heavy-black", "M", "black", 0)
	require.NoError(t, err)
	assert.True(t, cart.Empty())
}
