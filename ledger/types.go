/*
Package ledger provides the core inventory ledger engine.

PURPOSE:
  This package contains the authoritative product catalog, the append-only
  stock transaction log, and the engine that keeps them consistent. Every
  stock quantity change flows through the engine; the catalog and the log
  are never written from anywhere else.

KEY CONCEPTS IN THIS FILE (types.go):
  - Product: A catalog entry with identity, price, and quantity on hand
  - Transaction: An immutable log entry recording a stock change
  - ChangeKind: Whether stock was added or deducted
  - StockLevel: LOW/AVAILABLE classification derived from quantity

DESIGN PRINCIPLES:
  1. Immutability: Transactions are appended, never edited or deleted
  2. Precision: Uses decimal.Decimal for prices to avoid floating-point errors
  3. Single writer: Product quantity is only mutated via the engine
  4. Derivability: Aggregates are recomputed from state, never cached

SEE ALSO:
  - engine.go: The stock mutation gateway
  - catalog.go: Product CRUD (everything except quantity)
  - aggregate.go: Derived read-only views
  - store.go: Persistence interfaces
*/
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type ProductID string
type TransactionID string

// =============================================================================
// PRODUCT - Catalog entry
// =============================================================================

// Product is a catalog entry. Quantity is owned by the engine: the catalog
// update path never writes it, and it can never go negative.
type Product struct {
	ID          ProductID
	Name        string
	Description string
	Category    string
	Price       decimal.Decimal
	Quantity    int
	CreatedAt   time.Time
}

// ProductSpec carries the caller-supplied fields for creating a product.
// Identity and creation time are assigned by the catalog.
type ProductSpec struct {
	Name        string
	Description string
	Category    string
	Price       decimal.Decimal
	Quantity    int
}

// ProductFields carries the editable attributes for a catalog update.
// Quantity is deliberately absent: only the engine writes quantity.
type ProductFields struct {
	Name        string
	Description string
	Category    string
	Price       decimal.Decimal
}

// =============================================================================
// TRANSACTION - Immutable stock change record
// =============================================================================

type ChangeKind string

const (
	ChangeAdd    ChangeKind = "add"
	ChangeDeduct ChangeKind = "deduct"
)

// Valid reports whether k is a known change kind.
func (k ChangeKind) Valid() bool {
	return k == ChangeAdd || k == ChangeDeduct
}

// Transaction records a single stock change. The quantity is always positive;
// the direction is carried by Kind. Entries are self-describing (product name
// is denormalized) so history survives product deletion.
//
// Insertion order is the canonical log order. At is advisory metadata, not a
// sort key: clock skew and ties between entries are acceptable.
type Transaction struct {
	ID          TransactionID
	ProductID   ProductID
	ProductName string
	Quantity    int
	Kind        ChangeKind
	At          time.Time
}

// =============================================================================
// STOCK CLASSIFICATION - Fixed display policy
// =============================================================================

type StockLevel string

const (
	StockLow       StockLevel = "low"
	StockAvailable StockLevel = "available"
)

// Display policy constants. These are fixed policy, not configuration:
// below LowStockThreshold a product is flagged LOW, and below
// SoldEstimateCeiling the reporting surface treats the gap to the ceiling
// as a sold-quantity estimate. The sold figure is a display heuristic,
// not a verified count of sales.
const (
	LowStockThreshold   = 5
	SoldEstimateCeiling = 20
)
