/*
aggregate.go - Derived read-only views for the reporting surface

PURPOSE:
  Pure functions over the current catalog and log. Nothing here mutates
  state, and nothing is cached: every call recomputes from a consistent
  snapshot so the result reflects the catalog exactly.

VIEWS:
  - TotalStockValue: sum of price x quantity, rounded to 2 places
  - Classify:        LOW below LowStockThreshold, else AVAILABLE
  - SoldEstimate:    gap to SoldEstimateCeiling, floored at zero
  - HasSold:         whether the sold heuristic considers units sold
  - ChartSeries:     (name, quantity) pairs in catalog order
  - Transactions:    the full log for history tables
*/
package ledger

import (
	"context"

	"github.com/shopspring/decimal"
)

// ChartPoint is one bar of the quantity overview chart.
type ChartPoint struct {
	Name     string
	Quantity int
}

// Classify labels a product's stock level from its quantity on hand.
func Classify(p Product) StockLevel {
	if p.Quantity < LowStockThreshold {
		return StockLow
	}
	return StockAvailable
}

// SoldEstimate returns the heuristic sold-unit count for a product.
// This is a display figure: the gap between quantity on hand and the
// fixed ceiling, never negative. Products at or above the ceiling
// report zero.
func SoldEstimate(p Product) int {
	if p.Quantity < SoldEstimateCeiling {
		return SoldEstimateCeiling - p.Quantity
	}
	return 0
}

// HasSold reports whether the sold heuristic considers any units sold.
func HasSold(p Product) bool {
	return p.Quantity < SoldEstimateCeiling
}

// TotalStockValue computes the current total catalog value, rounded to
// two decimal places for display. Always recomputed fresh from the
// catalog, never incrementally maintained.
func (l *Ledger) TotalStockValue(ctx context.Context) (decimal.Decimal, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	products, err := l.store.ListProducts(ctx)
	if err != nil {
		return decimal.Zero, storageErr("total stock value", err)
	}

	total := decimal.Zero
	for _, p := range products {
		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(p.Quantity))))
	}
	return total.Round(2), nil
}

// ChartSeries returns (name, quantity) pairs for all products in catalog
// order, for the quantity overview chart.
func (l *Ledger) ChartSeries(ctx context.Context) ([]ChartPoint, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	products, err := l.store.ListProducts(ctx)
	if err != nil {
		return nil, storageErr("chart series", err)
	}

	series := make([]ChartPoint, len(products))
	for i, p := range products {
		series[i] = ChartPoint{Name: p.Name, Quantity: p.Quantity}
	}
	return series, nil
}

// Transactions returns the full log in canonical (insertion) order.
func (l *Ledger) Transactions(ctx context.Context) ([]Transaction, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	txs, err := l.store.ListTransactions(ctx)
	if err != nil {
		return nil, storageErr("list transactions", err)
	}
	return txs, nil
}
