package jsonfile_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mercantile/inventory-ledger/accounts"
	"github.com/mercantile/inventory-ledger/ledger"
	"github.com/mercantile/inventory-ledger/store/jsonfile"
)

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

func TestNew_EmptyDirectoryMeansNoRecords(t *testing.T) {
	store, err := jsonfile.New(t.TempDir())
	require.NoError(t, err)

	products, err := store.ListProducts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, products)

	txs, err := store.ListTransactions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, txs)

	users, err := store.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestPersistence_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := jsonfile.New(dir)
	require.NoError(t, err)

	require.NoError(t, store.SaveProduct(ctx, product("p-1", "Bread", "10.99", 3)))
	require.NoError(t, store.SaveProduct(ctx, product("p-2", "Milk", "15.00", 7)))
	require.NoError(t, store.AppendTransaction(ctx, ledger.Transaction{
		ID: "tx-1", ProductID: "p-1", ProductName: "Bread",
		Quantity: 3, Kind: ledger.ChangeAdd,
		At: time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC),
	}))
	require.NoError(t, store.SaveUser(ctx, accounts.User{
		IDNumber: "9001015800087", Username: "thabo", Password: "hunter2",
		Position: "manager", PhoneNumber: "+266 5800 0000",
		CreatedAt: time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
	}))

	// A fresh store over the same directory sees everything.
	reopened, err := jsonfile.New(dir)
	require.NoError(t, err)

	products, err := reopened.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Bread", products[0].Name)
	assert.True(t, products[0].Price.Equal(decimal.RequireFromString("10.99")))

	txs, err := reopened.ListTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, ledger.ChangeAdd, txs[0].Kind)
	assert.Equal(t, 3, txs[0].Quantity)

	user, err := reopened.GetUser(ctx, "9001015800087")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "thabo", user.Username)
}

func TestFileShape_MatchesOriginalCollections(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := jsonfile.New(dir)
	require.NoError(t, err)
	require.NoError(t, store.SaveProduct(ctx, product("p-1", "Bread", "10.99", 3)))
	require.NoError(t, store.AppendTransaction(ctx, ledger.Transaction{
		ID: "tx-1", ProductID: "p-1", ProductName: "Bread",
		Quantity: 3, Kind: ledger.ChangeDeduct,
		At: time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC),
	}))

	data, err := os.ReadFile(filepath.Join(dir, "transactions.json"))
	require.NoError(t, err)

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 1)
	assert.Equal(t, "Bread", raw[0]["productName"])
	assert.Equal(t, "deduct", raw[0]["action"])
	assert.Equal(t, float64(3), raw[0]["quantityChanged"])
	assert.Contains(t, raw[0], "date")
}

func TestDeleteProduct_ReportsMissing(t *testing.T) {
	store, err := jsonfile.New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.SaveProduct(ctx, product("p-1", "Bread", "10.00", 3)))

	deleted, err := store.DeleteProduct(ctx, "p-1")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = store.DeleteProduct(ctx, "p-1")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestWithTx_FailureLeavesMemoryAndDiskUntouched(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := jsonfile.New(dir)
	require.NoError(t, err)
	require.NoError(t, store.SaveProduct(ctx, product("p-1", "Bread", "10.00", 3)))

	err = store.WithTx(ctx, func(s ledger.Store) error {
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
	assert.Equal(t, 3, got.Quantity)

	txs, err := store.ListTransactions(ctx)
	require.NoError(t, err)
	assert.Empty(t, txs)

	// Disk never saw the aborted unit.
	reopened, err := jsonfile.New(dir)
	require.NoError(t, err)
	got, err = reopened.GetProduct(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, 3, got.Quantity)
	txs, err = reopened.ListTransactions(ctx)
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestWithTx_CommitPersistsBothFiles(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := jsonfile.New(dir)
	require.NoError(t, err)
	require.NoError(t, store.SaveProduct(ctx, product("p-1", "Bread", "10.00", 3)))

	err = store.WithTx(ctx, func(s ledger.Store) error {
		if err := s.SaveProduct(ctx, product("p-1", "Bread", "10.00", 8)); err != nil {
			return err
		}
		return s.AppendTransaction(ctx, ledger.Transaction{
			ID: "tx-1", ProductID: "p-1", ProductName: "Bread",
			Quantity: 5, Kind: ledger.ChangeAdd, At: time.Now(),
		})
	})
	require.NoError(t, err)

	reopened, err := jsonfile.New(dir)
	require.NoError(t, err)
	got, err := reopened.GetProduct(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, 8, got.Quantity)
	txs, err := reopened.ListTransactions(ctx)
	require.NoError(t, err)
	assert.Len(t, txs, 1)
}
