// Package store provides the in-memory Store implementation.
package store

import (
	"context"
	"sync"

	"github.com/mercantile/inventory-ledger/accounts"
	"github.com/mercantile/inventory-ledger/ledger"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory keeps all three collections in process memory. Insertion order
// is preserved by keeping products and users in slices; the maps are
// lookup indexes into them.
type Memory struct {
	mu           sync.RWMutex
	products     []ledger.Product
	productIdx   map[ledger.ProductID]int
	transactions []ledger.Transaction
	users        []accounts.User
	userIdx      map[string]int
}

func NewMemory() *Memory {
	return &Memory{
		productIdx: make(map[ledger.ProductID]int),
		userIdx:    make(map[string]int),
	}
}

// =============================================================================
// PRODUCTS
// =============================================================================

func (m *Memory) SaveProduct(_ context.Context, p ledger.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveProductLocked(p)
	return nil
}

func (m *Memory) saveProductLocked(p ledger.Product) {
	if i, ok := m.productIdx[p.ID]; ok {
		m.products[i] = p
		return
	}
	m.productIdx[p.ID] = len(m.products)
	m.products = append(m.products, p)
}

func (m *Memory) GetProduct(_ context.Context, id ledger.ProductID) (*ledger.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i, ok := m.productIdx[id]
	if !ok {
		return nil, nil
	}
	p := m.products[i]
	return &p, nil
}

func (m *Memory) ListProducts(_ context.Context) ([]ledger.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]ledger.Product, len(m.products))
	copy(result, m.products)
	return result, nil
}

func (m *Memory) DeleteProduct(_ context.Context, id ledger.ProductID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i, ok := m.productIdx[id]
	if !ok {
		return false, nil
	}
	m.products = append(m.products[:i], m.products[i+1:]...)
	delete(m.productIdx, id)
	for j := i; j < len(m.products); j++ {
		m.productIdx[m.products[j].ID] = j
	}
	return true, nil
}

// =============================================================================
// TRANSACTIONS (append-only)
// =============================================================================

func (m *Memory) AppendTransaction(_ context.Context, tx ledger.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions = append(m.transactions, tx)
	return nil
}

func (m *Memory) ListTransactions(_ context.Context) ([]ledger.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]ledger.Transaction, len(m.transactions))
	copy(result, m.transactions)
	return result, nil
}

// =============================================================================
// USERS
// =============================================================================

func (m *Memory) SaveUser(_ context.Context, u accounts.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if i, ok := m.userIdx[u.IDNumber]; ok {
		m.users[i] = u
		return nil
	}
	m.userIdx[u.IDNumber] = len(m.users)
	m.users = append(m.users, u)
	return nil
}

func (m *Memory) GetUser(_ context.Context, idNumber string) (*accounts.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i, ok := m.userIdx[idNumber]
	if !ok {
		return nil, nil
	}
	u := m.users[i]
	return &u, nil
}

func (m *Memory) ListUsers(_ context.Context) ([]accounts.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]accounts.User, len(m.users))
	copy(result, m.users)
	return result, nil
}

func (m *Memory) DeleteUser(_ context.Context, idNumber string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i, ok := m.userIdx[idNumber]
	if !ok {
		return false, nil
	}
	m.users = append(m.users[:i], m.users[i+1:]...)
	delete(m.userIdx, idNumber)
	for j := i; j < len(m.users); j++ {
		m.userIdx[m.users[j].IDNumber] = j
	}
	return true, nil
}

// =============================================================================
// TRANSACTIONAL SUPPORT
// =============================================================================

// WithTx executes fn against the store. For the memory store this is
// simulated with a snapshot taken up front and restored if fn fails.
func (m *Memory) WithTx(ctx context.Context, fn func(ledger.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.snapshotLocked()
	if err := fn(&txMemoryView{parent: m}); err != nil {
		m.restoreLocked(snap)
		return err
	}
	return nil
}

type memorySnapshot struct {
	products     []ledger.Product
	productIdx   map[ledger.ProductID]int
	transactions []ledger.Transaction
}

func (m *Memory) snapshotLocked() memorySnapshot {
	snap := memorySnapshot{
		products:     append([]ledger.Product(nil), m.products...),
		transactions: append([]ledger.Transaction(nil), m.transactions...),
		productIdx:   make(map[ledger.ProductID]int, len(m.productIdx)),
	}
	for k, v := range m.productIdx {
		snap.productIdx[k] = v
	}
	return snap
}

func (m *Memory) restoreLocked(snap memorySnapshot) {
	m.products = snap.products
	m.productIdx = snap.productIdx
	m.transactions = snap.transactions
}

// txMemoryView writes through to the parent without re-locking; the
// parent holds the lock for the duration of WithTx.
type txMemoryView struct {
	parent *Memory
}

func (tv *txMemoryView) SaveProduct(_ context.Context, p ledger.Product) error {
	tv.parent.saveProductLocked(p)
	return nil
}

func (tv *txMemoryView) GetProduct(_ context.Context, id ledger.ProductID) (*ledger.Product, error) {
	i, ok := tv.parent.productIdx[id]
	if !ok {
		return nil, nil
	}
	p := tv.parent.products[i]
	return &p, nil
}

func (tv *txMemoryView) ListProducts(_ context.Context) ([]ledger.Product, error) {
	return append([]ledger.Product(nil), tv.parent.products...), nil
}

func (tv *txMemoryView) DeleteProduct(_ context.Context, id ledger.ProductID) (bool, error) {
	i, ok := tv.parent.productIdx[id]
	if !ok {
		return false, nil
	}
	tv.parent.products = append(tv.parent.products[:i], tv.parent.products[i+1:]...)
	delete(tv.parent.productIdx, id)
	for j := i; j < len(tv.parent.products); j++ {
		tv.parent.productIdx[tv.parent.products[j].ID] = j
	}
	return true, nil
}

func (tv *txMemoryView) AppendTransaction(_ context.Context, tx ledger.Transaction) error {
	tv.parent.transactions = append(tv.parent.transactions, tx)
	return nil
}

func (tv *txMemoryView) ListTransactions(_ context.Context) ([]ledger.Transaction, error) {
	return append([]ledger.Transaction(nil), tv.parent.transactions...), nil
}
