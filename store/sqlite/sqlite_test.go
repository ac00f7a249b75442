package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mercantile/inventory-ledger/accounts"
	"github.com/mercantile/inventory-ledger/ledger"
	"github.com/mercantile/inventory-ledger/store/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func product(id, name, priceStr string, quantity int) ledger.Product {
	return ledger.Product{
		ID:        ledger.ProductID(id),
		Name:      name,
		Category:  "test",
		Price:     decimal.RequireFromString(priceStr),
		Quantity:  quantity,
		CreatedAt: time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestProducts_Roundtrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := product("p-1", "Bread", "10.99", 3)
	p.Description = "white loaf"
	require.NoError(t, store.SaveProduct(ctx, p))

	got, err := store.GetProduct(ctx, "p-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Bread", got.Name)
	assert.Equal(t, "white loaf", got.Description)
	assert.Equal(t, 3, got.Quantity)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("10.99")),
		"price must survive storage without float drift, got %s", got.Price)

	missing, err := store.GetProduct(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestProducts_ListKeepsInsertionOrderAcrossUpdates(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveProduct(ctx, product("p-1", "Bread", "10.00", 3)))
	require.NoError(t, store.SaveProduct(ctx, product("p-2", "Milk", "15.00", 7)))
	require.NoError(t, store.SaveProduct(ctx, product("p-3", "Eggs", "2.50", 30)))

	// Updating the first product must not move it to the end
	updated := product("p-1", "Brown Bread", "11.00", 3)
	require.NoError(t, store.SaveProduct(ctx, updated))

	products, err := store.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, ledger.ProductID("p-1"), products[0].ID)
	assert.Equal(t, "Brown Bread", products[0].Name)
	assert.Equal(t, ledger.ProductID("p-3"), products[2].ID)
}

func TestDeleteProduct_ReportsMissing(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveProduct(ctx, product("p-1", "Bread", "10.00", 3)))

	deleted, err := store.DeleteProduct(ctx, "p-1")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = store.DeleteProduct(ctx, "p-1")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestTransactions_AppendOnlyOrdering(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	at := time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)
	for i, kind := range []ledger.ChangeKind{ledger.ChangeAdd, ledger.ChangeDeduct, ledger.ChangeAdd} {
		tx := ledger.Transaction{
			ID:          ledger.TransactionID(string(rune('a' + i))),
			ProductID:   "p-1",
			ProductName: "Bread",
			Quantity:    i + 1,
			Kind:        kind,
			// Deliberately decreasing timestamps: insertion order, not
			// the timestamp, is the canonical order.
			At: at.Add(-time.Duration(i) * time.Hour),
		}
		require.NoError(t, store.AppendTransaction(ctx, tx))
	}

	txs, err := store.ListTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, txs, 3)
	assert.Equal(t, 1, txs[0].Quantity)
	assert.Equal(t, 2, txs[1].Quantity)
	assert.Equal(t, 3, txs[2].Quantity)
	assert.Equal(t, ledger.ChangeDeduct, txs[1].Kind)
}

func TestWithTx_RollsBackBothWrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveProduct(ctx, product("p-1", "Bread", "10.00", 3)))

	err := store.WithTx(ctx, func(s ledger.Store) error {
		if err := s.SaveProduct(ctx, product("p-1", "Bread", "10.00", 8)); err != nil {
			return err
		}
		if err := s.AppendTransaction(ctx, ledger.Transaction{
			ID: "tx-1", ProductID: "p-1", ProductName: "Bread",
			Quantity: 5, Kind: ledger.ChangeAdd, At: time.Now(),
		}); err != nil {
			return err
		}
		return errors.New("boom")
	})
	require.Error(t, err)

	got, err := store.GetProduct(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, 3, got.Quantity, "quantity write must roll back")

	txs, err := store.ListTransactions(ctx)
	require.NoError(t, err)
	assert.Empty(t, txs, "log append must roll back")
}

func TestWithTx_CommitsBothWrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveProduct(ctx, product("p-1", "Bread", "10.00", 3)))

	err := store.WithTx(ctx, func(s ledger.Store) error {
		if err := s.SaveProduct(ctx, product("p-1", "Bread", "10.00", 8)); err != nil {
			return err
		}
		return s.AppendTransaction(ctx, ledger.Transaction{
			ID: "tx-1", ProductID: "p-1", ProductName: "Bread",
			Quantity: 5, Kind: ledger.ChangeAdd, At: time.Now(),
		})
	})
	require.NoError(t, err)

	got, err := store.GetProduct(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, 8, got.Quantity)

	txs, err := store.ListTransactions(ctx)
	require.NoError(t, err)
	assert.Len(t, txs, 1)
}

func TestEngine_OverSQLite(t *testing.T) {
	// Full engine path against the production backend.

	store := newTestStore(t)
	lgr := ledger.New(store)
	ctx := context.Background()

	p, err := lgr.CreateProduct(ctx, ledger.ProductSpec{
		Name: "Bread", Description: "loaf", Category: "bakery",
		Price: decimal.RequireFromString("10.00"), Quantity: 3,
	})
	require.NoError(t, err)

	_, err = lgr.ApplyStockChange(ctx, "Bread", ledger.ChangeAdd, 5)
	require.NoError(t, err)

	got, err := lgr.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, got.Quantity)

	_, err = lgr.ApplyStockChange(ctx, "Bread", ledger.ChangeDeduct, 9)
	assert.ErrorIs(t, err, ledger.ErrInsufficientStock)

	txs, err := lgr.Transactions(ctx)
	require.NoError(t, err)
	assert.Len(t, txs, 1)
}

func TestUsers_Roundtrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	u := accounts.User{
		IDNumber:    "9001015800087",
		Username:    "thabo",
		Password:    "hunter2",
		Position:    "manager",
		PhoneNumber: "+266 5800 0000",
		CreatedAt:   time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.SaveUser(ctx, u))

	got, err := store.GetUser(ctx, u.IDNumber)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "thabo", got.Username)

	users, err := store.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)

	deleted, err := store.DeleteUser(ctx, u.IDNumber)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = store.DeleteUser(ctx, u.IDNumber)
	require.NoError(t, err)
	assert.False(t, deleted)
}
