package ledger_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mercantile/inventory-ledger/ledger"
)

func TestReporting_BreadScenario(t *testing.T) {
	// Catalog = {Bread: price 10.00, qty 3}:
	// classified LOW, sold estimate 17, total value 30.00.

	lgr, _ := newTestLedger(t)
	ctx := context.Background()
	p := mustCreate(t, lgr, "Bread", "10.00", 3)

	assert.Equal(t, ledger.StockLow, ledger.Classify(*p))
	assert.Equal(t, 17, ledger.SoldEstimate(*p))
	assert.True(t, ledger.HasSold(*p))

	total, err := lgr.TotalStockValue(ctx)
	require.NoError(t, err)
	assert.Equal(t, "30.00", total.StringFixed(2))
}

func TestReporting_AfterStockChange(t *testing.T) {
	// Adding 5 to Bread (qty 3) makes it AVAILABLE and logs the change.

	lgr, _ := newTestLedger(t)
	ctx := context.Background()
	p := mustCreate(t, lgr, "Bread", "10.00", 3)

	_, err := lgr.ApplyStockChange(ctx, "Bread", ledger.ChangeAdd, 5)
	require.NoError(t, err)

	got, err := lgr.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, got.Quantity)
	assert.Equal(t, ledger.StockAvailable, ledger.Classify(*got))

	txs, err := lgr.Transactions(ctx)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "Bread", txs[0].ProductName)
	assert.Equal(t, 5, txs[0].Quantity)
	assert.Equal(t, ledger.ChangeAdd, txs[0].Kind)
}

func TestClassify_Boundaries(t *testing.T) {
	tests := []struct {
		quantity int
		want     ledger.StockLevel
	}{
		{0, ledger.StockLow},
		{4, ledger.StockLow},
		{5, ledger.StockAvailable},
		{100, ledger.StockAvailable},
	}

	for _, tt := range tests {
		got := ledger.Classify(ledger.Product{Quantity: tt.quantity})
		assert.Equal(t, tt.want, got, "quantity %d", tt.quantity)
	}
}

func TestSoldEstimate_Boundaries(t *testing.T) {
	tests := []struct {
		quantity string
		qty      int
		estimate int
		hasSold  bool
	}{
		{"empty", 0, 20, true},
		{"below ceiling", 19, 1, true},
		{"at ceiling", 20, 0, false},
		{"above ceiling", 35, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.quantity, func(t *testing.T) {
			p := ledger.Product{Quantity: tt.qty}
			assert.Equal(t, tt.estimate, ledger.SoldEstimate(p))
			assert.Equal(t, tt.hasSold, ledger.HasSold(p))
		})
	}
}

func TestTotalStockValue_SumsAndRounds(t *testing.T) {
	lgr, _ := newTestLedger(t)
	ctx := context.Background()

	mustCreate(t, lgr, "Eggs", "2.50", 4)   // 10.00
	mustCreate(t, lgr, "Matches", "0.10", 3) // 0.30
	mustCreate(t, lgr, "Bread", "10.00", 0)  // 0.00

	total, err := lgr.TotalStockValue(ctx)
	require.NoError(t, err)
	assert.Equal(t, "10.30", total.StringFixed(2))
}

func TestTotalStockValue_MatchesIndependentRecompute(t *testing.T) {
	lgr, _ := newTestLedger(t)
	ctx := context.Background()

	mustCreate(t, lgr, "A", "3.33", 7)
	mustCreate(t, lgr, "B", "19.99", 13)
	_, err := lgr.ApplyStockChange(ctx, "A", ledger.ChangeDeduct, 2)
	require.NoError(t, err)

	products, err := lgr.Products(ctx)
	require.NoError(t, err)

	want := decimal.Zero
	for _, p := range products {
		want = want.Add(p.Price.Mul(decimal.NewFromInt(int64(p.Quantity))))
	}

	total, err := lgr.TotalStockValue(ctx)
	require.NoError(t, err)
	assert.Equal(t, want.Round(2).StringFixed(2), total.StringFixed(2))
}

func TestTotalStockValue_EmptyCatalog(t *testing.T) {
	lgr, _ := newTestLedger(t)

	total, err := lgr.TotalStockValue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0.00", total.StringFixed(2))
}

func TestChartSeries_CatalogOrder(t *testing.T) {
	lgr, _ := newTestLedger(t)
	ctx := context.Background()

	mustCreate(t, lgr, "Bread", "10.00", 3)
	mustCreate(t, lgr, "Milk", "15.00", 12)
	mustCreate(t, lgr, "Eggs", "2.50", 30)

	series, err := lgr.ChartSeries(ctx)
	require.NoError(t, err)

	assert.Equal(t, []ledger.ChartPoint{
		{Name: "Bread", Quantity: 3},
		{Name: "Milk", Quantity: 12},
		{Name: "Eggs", Quantity: 30},
	}, series)
}
