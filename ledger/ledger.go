/*
ledger.go - The Ledger: catalog state + transaction log behind one lock

PURPOSE:
  Ledger is the single logical owner of inventory state in a process.
  It composes the product catalog (catalog.go), the stock mutation
  engine (engine.go), and the derived read-only views (aggregate.go)
  over one injected Store.

CONCURRENCY:
  One RWMutex guards all state. Mutations (catalog writes and stock
  changes) serialize on the write lock so the check-then-act sequence
  in ApplyStockChange can never race a concurrent mutation. Reads take
  the read lock and therefore see either the pre- or post-mutation
  state, never a torn intermediate. The catalog is small; a global
  lock is simpler than per-product locking and fast enough.
*/
package ledger

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Ledger owns the product catalog and the stock transaction log.
// All mutation paths go through its methods; no other code writes
// to the underlying Store.
type Ledger struct {
	mu    sync.RWMutex
	store Store
	now   func() time.Time
	log   *zap.Logger
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock overrides the time source. Tests use this for
// deterministic transaction timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithLogger attaches a logger for mutation events.
func WithLogger(log *zap.Logger) Option {
	return func(l *Ledger) { l.log = log }
}

// New creates a Ledger over the given store.
func New(store Store, opts ...Option) *Ledger {
	l := &Ledger{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}
