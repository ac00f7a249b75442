package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mercantile/inventory-ledger/ledger"
	"github.com/mercantile/inventory-ledger/ledger/store"
)

func product(id, name string, quantity int) ledger.Product {
	return ledger.Product{
		ID:       ledger.ProductID(id),
		Name:     name,
		Category: "test",
		Price:    decimal.NewFromInt(10),
		Quantity: quantity,
	}
}

func TestMemory_InsertionOrderSurvivesUpdateAndDelete(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()

	require.NoError(t, mem.SaveProduct(ctx, product("p-1", "Bread", 3)))
	require.NoError(t, mem.SaveProduct(ctx, product("p-2", "Milk", 7)))
	require.NoError(t, mem.SaveProduct(ctx, product("p-3", "Eggs", 30)))

	require.NoError(t, mem.SaveProduct(ctx, product("p-1", "Brown Bread", 3)))

	deleted, err := mem.DeleteProduct(ctx, "p-2")
	require.NoError(t, err)
	assert.True(t, deleted)

	products, err := mem.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Brown Bread", products[0].Name)
	assert.Equal(t, "Eggs", products[1].Name)

	// Index still resolves after the slice shifted.
	got, err := mem.GetProduct(ctx, "p-3")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Eggs", got.Name)
}

func TestMemory_ListCopiesAreIndependent(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()

	require.NoError(t, mem.SaveProduct(ctx, product("p-1", "Bread", 3)))

	products, err := mem.ListProducts(ctx)
	require.NoError(t, err)
	products[0].Quantity = 99

	got, err := mem.GetProduct(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, 3, got.Quantity, "callers must not be able to mutate stored state")
}

func TestMemory_WithTxRollsBackSnapshot(t *testing.T) {
	mem := store.NewMemory()
	ctx := context.Background()

	require.NoError(t, mem.SaveProduct(ctx, product("p-1", "Bread", 3)))

	err := mem.WithTx(ctx, func(s ledger.Store) error {
		if err := s.SaveProduct(ctx, product("p-1", "Bread", 8)); err != nil {
			return err
		}
		if err := s.AppendTransaction(ctx, ledger.Transaction{
			ID: "tx-1", ProductID: "p-1", ProductName: "Bread",
			Quantity: 5, Kind: ledger.ChangeAdd,
		}); err != nil {
			return err
		}
		return errors.New("boom")
	})
	require.Error(t, err)

	got, err := mem.GetProduct(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, 3, got.Quantity)

	txs, err := mem.ListTransactions(ctx)
	require.NoError(t, err)
	assert.Empty(t, txs)
}
