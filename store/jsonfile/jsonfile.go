/*
Package jsonfile persists the collections as independent JSON files.

PURPOSE:
  The system this replaces kept its records as flat JSON collections
  ("products", "transactions", "users") in browser local storage. This
  store keeps the same shape on disk: one JSON array per collection,
  with load-all/save-all semantics. A missing file means "no records
  yet", never an error.

DURABILITY:
  Every write lands in memory first, then the affected file is
  rewritten via a temp file and rename, so a crash mid-write leaves
  the previous version intact. WithTx persists products and
  transactions only after the whole unit succeeded; on failure the
  in-memory state is rolled back and nothing touches disk.

This backend suits a single-process deployment with a small catalog.
For anything bigger, use store/sqlite.
*/
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mercantile/inventory-ledger/accounts"
	"github.com/mercantile/inventory-ledger/ledger"
)

const (
	productsFile     = "products.json"
	transactionsFile = "transactions.json"
	usersFile        = "users.json"
)

// Store implements the storage interfaces over three JSON files.
type Store struct {
	mu           sync.RWMutex
	dir          string
	products     []ledger.Product
	transactions []ledger.Transaction
	users        []accounts.User
}

// New opens (or initializes) a JSON-file store in the given directory.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	s := &Store{dir: dir}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// =============================================================================
// FILE RECORDS - JSON shapes, kept close to the original collections
// =============================================================================

type productRecord struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type transactionRecord struct {
	ID              string    `json:"id"`
	ProductID       string    `json:"productId"`
	ProductName     string    `json:"productName"`
	QuantityChanged int       `json:"quantityChanged"`
	Action          string    `json:"action"`
	Date            time.Time `json:"date"`
}

type userRecord struct {
	Username    string    `json:"username"`
	Password    string    `json:"password"`
	Position    string    `json:"position"`
	IDNumber    string    `json:"idNumber"`
	PhoneNumber string    `json:"phoneNumber"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (s *Store) load() error {
	var products []productRecord
	if err := readCollection(filepath.Join(s.dir, productsFile), &products); err != nil {
		return err
	}
	for _, r := range products {
		s.products = append(s.products, ledger.Product{
			ID:          ledger.ProductID(r.ID),
			Name:        r.Name,
			Description: r.Description,
			Category:    r.Category,
			Price:       r.Price,
			Quantity:    r.Quantity,
			CreatedAt:   r.CreatedAt,
		})
	}

	var txs []transactionRecord
	if err := readCollection(filepath.Join(s.dir, transactionsFile), &txs); err != nil {
		return err
	}
	for _, r := range txs {
		s.transactions = append(s.transactions, ledger.Transaction{
			ID:          ledger.TransactionID(r.ID),
			ProductID:   ledger.ProductID(r.ProductID),
			ProductName: r.ProductName,
			Quantity:    r.QuantityChanged,
			Kind:        ledger.ChangeKind(r.Action),
			At:          r.Date,
		})
	}

	var users []userRecord
	if err := readCollection(filepath.Join(s.dir, usersFile), &users); err != nil {
		return err
	}
	for _, r := range users {
		s.users = append(s.users, accounts.User{
			IDNumber:    r.IDNumber,
			Username:    r.Username,
			Password:    r.Password,
			Position:    r.Position,
			PhoneNumber: r.PhoneNumber,
			CreatedAt:   r.CreatedAt,
		})
	}

	return nil
}

// readCollection reads a JSON array file. Missing file = empty collection.
func readCollection(path string, out any) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

// writeCollection writes a JSON array file atomically (temp file + rename).
func writeCollection(path string, in any) error {
	data, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", filepath.Base(path), err)
	}
	return nil
}

func (s *Store) saveProductsLocked() error {
	records := make([]productRecord, len(s.products))
	for i, p := range s.products {
		records[i] = productRecord{
			ID:          string(p.ID),
			Name:        p.Name,
			Description: p.Description,
			Category:    p.Category,
			Price:       p.Price,
			Quantity:    p.Quantity,
			CreatedAt:   p.CreatedAt,
		}
	}
	return writeCollection(filepath.Join(s.dir, productsFile), records)
}

func (s *Store) saveTransactionsLocked() error {
	records := make([]transactionRecord, len(s.transactions))
	for i, tx := range s.transactions {
		records[i] = transactionRecord{
			ID:              string(tx.ID),
			ProductID:       string(tx.ProductID),
			ProductName:     tx.ProductName,
			QuantityChanged: tx.Quantity,
			Action:          string(tx.Kind),
			Date:            tx.At,
		}
	}
	return writeCollection(filepath.Join(s.dir, transactionsFile), records)
}

func (s *Store) saveUsersLocked() error {
	records := make([]userRecord, len(s.users))
	for i, u := range s.users {
		records[i] = userRecord{
			Username:    u.Username,
			Password:    u.Password,
			Position:    u.Position,
			IDNumber:    u.IDNumber,
			PhoneNumber: u.PhoneNumber,
			CreatedAt:   u.CreatedAt,
		}
	}
	return writeCollection(filepath.Join(s.dir, usersFile), records)
}

// =============================================================================
// PRODUCTS
// =============================================================================

func (s *Store) SaveProduct(_ context.Context, p ledger.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := append([]ledger.Product(nil), s.products...)
	s.saveProductLocked(p)
	if err := s.saveProductsLocked(); err != nil {
		s.products = prev
		return err
	}
	return nil
}

func (s *Store) saveProductLocked(p ledger.Product) {
	for i := range s.products {
		if s.products[i].ID == p.ID {
			s.products[i] = p
			return
		}
	}
	s.products = append(s.products, p)
}

func (s *Store) GetProduct(_ context.Context, id ledger.ProductID) (*ledger.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.products {
		if s.products[i].ID == id {
			p := s.products[i]
			return &p, nil
		}
	}
	return nil, nil
}

func (s *Store) ListProducts(_ context.Context) ([]ledger.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]ledger.Product(nil), s.products...), nil
}

func (s *Store) DeleteProduct(_ context.Context, id ledger.ProductID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.products {
		if s.products[i].ID == id {
			prev := append([]ledger.Product(nil), s.products...)
			s.products = append(s.products[:i], s.products[i+1:]...)
			if err := s.saveProductsLocked(); err != nil {
				s.products = prev
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

// =============================================================================
// TRANSACTIONS (append-only)
// =============================================================================

func (s *Store) AppendTransaction(_ context.Context, tx ledger.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.transactions = append(s.transactions, tx)
	if err := s.saveTransactionsLocked(); err != nil {
		s.transactions = s.transactions[:len(s.transactions)-1]
		return err
	}
	return nil
}

func (s *Store) ListTransactions(_ context.Context) ([]ledger.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]ledger.Transaction(nil), s.transactions...), nil
}

// =============================================================================
// TRANSACTIONAL SUPPORT
// =============================================================================

// WithTx runs fn against the in-memory state and persists products and
// transactions only if fn succeeds. On any failure the previous state
// is restored, in memory and on disk.
func (s *Store) WithTx(ctx context.Context, fn func(ledger.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prevProducts := append([]ledger.Product(nil), s.products...)
	prevTxs := append([]ledger.Transaction(nil), s.transactions...)

	restore := func() {
		s.products = prevProducts
		s.transactions = prevTxs
	}

	if err := fn(&txView{parent: s}); err != nil {
		restore()
		return err
	}

	if err := s.saveProductsLocked(); err != nil {
		restore()
		return err
	}
	if err := s.saveTransactionsLocked(); err != nil {
		restore()
		// products.json already carries the new state; put the old one back.
		if rbErr := s.saveProductsLocked(); rbErr != nil {
			return errors.Join(err, rbErr)
		}
		return err
	}
	return nil
}

// txView mutates the parent's in-memory state without persisting;
// WithTx persists once at commit. The parent holds the lock.
type txView struct {
	parent *Store
}

func (tv *txView) SaveProduct(_ context.Context, p ledger.Product) error {
	tv.parent.saveProductLocked(p)
	return nil
}

func (tv *txView) GetProduct(ctx context.Context, id ledger.ProductID) (*ledger.Product, error) {
	for i := range tv.parent.products {
		if tv.parent.products[i].ID == id {
			p := tv.parent.products[i]
			return &p, nil
		}
	}
	return nil, nil
}

func (tv *txView) ListProducts(_ context.Context) ([]ledger.Product, error) {
	return append([]ledger.Product(nil), tv.parent.products...), nil
}

func (tv *txView) DeleteProduct(_ context.Context, id ledger.ProductID) (bool, error) {
	for i := range tv.parent.products {
		if tv.parent.products[i].ID == id {
			tv.parent.products = append(tv.parent.products[:i], tv.parent.products[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (tv *txView) AppendTransaction(_ context.Context, tx ledger.Transaction) error {
	tv.parent.transactions = append(tv.parent.transactions, tx)
	return nil
}

func (tv *txView) ListTransactions(_ context.Context) ([]ledger.Transaction, error) {
	return append([]ledger.Transaction(nil), tv.parent.transactions...), nil
}

// =============================================================================
// USERS
// =============================================================================

func (s *Store) SaveUser(_ context.Context, u accounts.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := append([]accounts.User(nil), s.users...)
	replaced := false
	for i := range s.users {
		if s.users[i].IDNumber == u.IDNumber {
			s.users[i] = u
			replaced = true
			break
		}
	}
	if !replaced {
		s.users = append(s.users, u)
	}

	if err := s.saveUsersLocked(); err != nil {
		s.users = prev
		return err
	}
	return nil
}

func (s *Store) GetUser(_ context.Context, idNumber string) (*accounts.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.users {
		if s.users[i].IDNumber == idNumber {
			u := s.users[i]
			return &u, nil
		}
	}
	return nil, nil
}

func (s *Store) ListUsers(_ context.Context) ([]accounts.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]accounts.User(nil), s.users...), nil
}

func (s *Store) DeleteUser(_ context.Context, idNumber string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.users {
		if s.users[i].IDNumber == idNumber {
			prev := append([]accounts.User(nil), s.users...)
			s.users = append(s.users[:i], s.users[i+1:]...)
			if err := s.saveUsersLocked(); err != nil {
				s.users = prev
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}
