/*
Package sqlite provides the SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements ledger.Store, ledger.TxStore and accounts.Store using
  SQLite. The same patterns apply to PostgreSQL - only minor SQL
  dialect differences.

APPEND-ONLY ENFORCEMENT:
  No UPDATE or DELETE statement exists for the transactions table.
  The log only ever grows.

KEY TABLES:
  products:     The catalog (quantity column has a CHECK (quantity >= 0))
  transactions: Immutable log of all stock changes
  users:        Staff accounts keyed by ID number

ORDERING:
  Listings are ordered by rowid, which is assignment order in SQLite.
  Upserts use ON CONFLICT DO UPDATE (not INSERT OR REPLACE) so a
  product keeps its rowid, and with it its position, across edits.

WAL MODE:
  The database is opened with WAL for better concurrency: readers
  don't block each other, and crash recovery is cleaner.

USAGE:
  store, err := sqlite.New("./data/inventory.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  lgr := ledger.New(store)

SEE ALSO:
  - ledger/store.go: Interface definitions
  - ledger/store/memory.go: In-memory implementation for testing
  - store/jsonfile: JSON-file implementation
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/mercantile/inventory-ledger/accounts"
	"github.com/mercantile/inventory-ledger/ledger"
)

// Store implements the storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection: sqlite serializes writers anyway, and ":memory:"
	// databases are per-connection with this driver.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Catalog. quantity can never be negative, enforced at the storage
	-- layer as a last line of defense behind the engine's own check.
	CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		price TEXT NOT NULL,
		quantity INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_products_name ON products(name);

	-- Transactions (append-only stock change log). No foreign key to
	-- products: history outlives the product it describes.
	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		product_id TEXT NOT NULL,
		product_name TEXT NOT NULL,
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		kind TEXT NOT NULL CHECK (kind IN ('add', 'deduct')),
		at TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	-- For a future filter-by-product listing
	CREATE INDEX IF NOT EXISTS idx_transactions_product_name
		ON transactions(product_name);

	-- Staff accounts
	CREATE TABLE IF NOT EXISTS users (
		id_number TEXT PRIMARY KEY,
		username TEXT NOT NULL,
		password TEXT NOT NULL,
		position TEXT NOT NULL,
		phone_number TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// PRODUCT STORE (ledger.Store interface)
// =============================================================================

// SaveProduct inserts or overwrites a product.
func (s *Store) SaveProduct(ctx context.Context, p ledger.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return saveProduct(ctx, s.db, p)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func saveProduct(ctx context.Context, db execer, p ledger.Product) error {
	query := `
		INSERT INTO products (id, name, description, category, price, quantity, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			category = excluded.category,
			price = excluded.price,
			quantity = excluded.quantity
	`

	_, err := db.ExecContext(ctx, query,
		p.ID, p.Name, p.Description, p.Category,
		p.Price.String(), p.Quantity,
		p.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save product: %w", err)
	}
	return nil
}

// GetProduct retrieves a product by ID. Returns nil when absent.
func (s *Store) GetProduct(ctx context.Context, id ledger.ProductID) (*ledger.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return getProduct(ctx, s.db, id)
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getProduct(ctx context.Context, db querier, id ledger.ProductID) (*ledger.Product, error) {
	var (
		p         ledger.Product
		price     string
		createdAt string
	)

	err := db.QueryRowContext(ctx,
		"SELECT id, name, description, category, price, quantity, created_at FROM products WHERE id = ?",
		id,
	).Scan(&p.ID, &p.Name, &p.Description, &p.Category, &price, &p.Quantity, &createdAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	p.Price = parseDecimal(price)
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &p, nil
}

// ListProducts returns all products in insertion order.
func (s *Store) ListProducts(ctx context.Context) ([]ledger.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return queryProducts(ctx, s.db)
}

type rowQuerier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func queryProducts(ctx context.Context, db rowQuerier) ([]ledger.Product, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT id, name, description, category, price, quantity, created_at FROM products ORDER BY rowid",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []ledger.Product
	for rows.Next() {
		var (
			p         ledger.Product
			price     string
			createdAt string
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &price, &p.Quantity, &createdAt); err != nil {
			return nil, err
		}
		p.Price = parseDecimal(price)
		p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		products = append(products, p)
	}
	return products, rows.Err()
}

// DeleteProduct removes a product. Returns false when the ID was absent.
func (s *Store) DeleteProduct(ctx context.Context, id ledger.ProductID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return deleteProduct(ctx, s.db, id)
}

func deleteProduct(ctx context.Context, db execer, id ledger.ProductID) (bool, error) {
	res, err := db.ExecContext(ctx, "DELETE FROM products WHERE id = ?", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// =============================================================================
// TRANSACTION LOG (append-only)
// =============================================================================

// AppendTransaction adds an entry to the log.
func (s *Store) AppendTransaction(ctx context.Context, tx ledger.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return appendTransaction(ctx, s.db, tx)
}

func appendTransaction(ctx context.Context, db execer, tx ledger.Transaction) error {
	query := `
		INSERT INTO transactions (id, product_id, product_name, quantity, kind, at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.ExecContext(ctx, query,
		tx.ID, tx.ProductID, tx.ProductName,
		tx.Quantity, tx.Kind,
		tx.At.UTC().Format(time.RFC3339),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to append transaction: %w", err)
	}
	return nil
}

// ListTransactions returns the full log in insertion order.
func (s *Store) ListTransactions(ctx context.Context) ([]ledger.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return queryTransactions(ctx, s.db)
}

func queryTransactions(ctx context.Context, db rowQuerier) ([]ledger.Transaction, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT id, product_id, product_name, quantity, kind, at FROM transactions ORDER BY rowid",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txs []ledger.Transaction
	for rows.Next() {
		var (
			tx ledger.Transaction
			at string
		)
		if err := rows.Scan(&tx.ID, &tx.ProductID, &tx.ProductName, &tx.Quantity, &tx.Kind, &at); err != nil {
			return nil, err
		}
		tx.At, _ = time.Parse(time.RFC3339, at)
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// =============================================================================
// TRANSACTIONAL STORE (ledger.TxStore interface)
// =============================================================================

// WithTx executes a function within a database transaction. The engine
// uses this to commit a quantity update and its log entry as one unit.
func (s *Store) WithTx(ctx context.Context, fn func(store ledger.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{tx: sqlTx}); err != nil {
		return err
	}

	return sqlTx.Commit()
}

// txStore runs all operations on the open SQL transaction, without
// touching the parent's mutex (held for the duration of WithTx).
type txStore struct {
	tx *sql.Tx
}

func (ts *txStore) SaveProduct(ctx context.Context, p ledger.Product) error {
	return saveProduct(ctx, ts.tx, p)
}

func (ts *txStore) GetProduct(ctx context.Context, id ledger.ProductID) (*ledger.Product, error) {
	return getProduct(ctx, ts.tx, id)
}

func (ts *txStore) ListProducts(ctx context.Context) ([]ledger.Product, error) {
	return queryProducts(ctx, ts.tx)
}

func (ts *txStore) DeleteProduct(ctx context.Context, id ledger.ProductID) (bool, error) {
	return deleteProduct(ctx, ts.tx, id)
}

func (ts *txStore) AppendTransaction(ctx context.Context, tx ledger.Transaction) error {
	return appendTransaction(ctx, ts.tx, tx)
}

func (ts *txStore) ListTransactions(ctx context.Context) ([]ledger.Transaction, error) {
	return queryTransactions(ctx, ts.tx)
}

// =============================================================================
// USER STORE (accounts.Store interface)
// =============================================================================

// SaveUser inserts or overwrites a user keyed by ID number.
func (s *Store) SaveUser(ctx context.Context, u accounts.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO users (id_number, username, password, position, phone_number, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id_number) DO UPDATE SET
			username = excluded.username,
			password = excluded.password,
			position = excluded.position,
			phone_number = excluded.phone_number
	`

	_, err := s.db.ExecContext(ctx, query,
		u.IDNumber, u.Username, u.Password, u.Position, u.PhoneNumber,
		u.CreatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// GetUser retrieves a user by ID number. Returns nil when absent.
func (s *Store) GetUser(ctx context.Context, idNumber string) (*accounts.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		u         accounts.User
		createdAt string
	)

	err := s.db.QueryRowContext(ctx,
		"SELECT id_number, username, password, position, phone_number, created_at FROM users WHERE id_number = ?",
		idNumber,
	).Scan(&u.IDNumber, &u.Username, &u.Password, &u.Position, &u.PhoneNumber, &createdAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	u.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &u, nil
}

// ListUsers returns all users in insertion order.
func (s *Store) ListUsers(ctx context.Context) ([]accounts.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id_number, username, password, position, phone_number, created_at FROM users ORDER BY rowid",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []accounts.User
	for rows.Next() {
		var (
			u         accounts.User
			createdAt string
		)
		if err := rows.Scan(&u.IDNumber, &u.Username, &u.Password, &u.Position, &u.PhoneNumber, &createdAt); err != nil {
			return nil, err
		}
		u.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		users = append(users, u)
	}
	return users, rows.Err()
}

// DeleteUser removes a user. Returns false when the ID number was absent.
func (s *Store) DeleteUser(ctx context.Context, idNumber string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE id_number = ?", idNumber)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
