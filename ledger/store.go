/*
store.go - Persistence interfaces for the ledger's two collections

PURPOSE:
  Defines the interface between the ledger and its storage backend.
  Products and transactions are two independently owned collections;
  the backend persists both but enforces no foreign keys between them
  (a transaction may outlive the product it describes).

APPEND-ONLY CONTRACT:
  The transaction side of the Store is append-only:
  - AppendTransaction(): the ONLY write operation on the log
  - NO update or delete of transactions exists, in any implementation

EMPTY STATE:
  A missing or empty collection means "no records yet", never an error.
  A freshly opened backend must answer ListProducts/ListTransactions
  with empty results.

IMPLEMENTATIONS:
  - ledger/store/memory.go:  In-memory, for tests and dev
  - store/jsonfile:          Two JSON files with load-all/save-all semantics
  - store/sqlite:            Production SQLite

SEE ALSO:
  - engine.go: Uses TxStore for atomic quantity-update + log-append
*/
package ledger

import "context"

// Store persists the ledger's collections.
//
// Ordering: ListProducts and ListTransactions return records in insertion
// order. That order must be stable across calls; it is the canonical order
// of the transaction log.
type Store interface {
	// SaveProduct inserts or overwrites a product keyed by its ID.
	SaveProduct(ctx context.Context, p Product) error

	// GetProduct returns the product, or nil if the ID is unknown.
	GetProduct(ctx context.Context, id ProductID) (*Product, error)

	// ListProducts returns all products in insertion order.
	ListProducts(ctx context.Context) ([]Product, error)

	// DeleteProduct removes a product. Returns false if the ID was absent.
	// Does not touch the transaction log.
	DeleteProduct(ctx context.Context, id ProductID) (bool, error)

	// AppendTransaction adds an entry to the log. Append-only: entries are
	// never edited or removed once written.
	AppendTransaction(ctx context.Context, tx Transaction) error

	// ListTransactions returns the full log in insertion order.
	ListTransactions(ctx context.Context) ([]Transaction, error)
}

// TxStore wraps Store with transaction support.
//
// The engine uses WithTx to commit a product quantity update and its log
// entry as one unit: if fn returns an error, neither write is visible.
type TxStore interface {
	Store

	WithTx(ctx context.Context, fn func(Store) error) error
}
