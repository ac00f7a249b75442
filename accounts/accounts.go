/*
Package accounts provides the flat user registry.

PURPOSE:
  The inventory UI keeps a small list of staff accounts: username,
  password, position, ID number, phone number. This package owns that
  collection. There is no session or token protocol; Authenticate is a
  plain credential match whose result the UI acts on directly.

IDENTITY:
  Users are keyed by their ID number. Creating a second user with an
  ID number already on file fails with ConflictError.

NOTE:
  Passwords are stored as given. Hashing belongs to a real identity
  system, which this registry is not.
*/
package accounts

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/mercantile/inventory-ledger/ledger"
)

// ErrInvalidCredentials is returned by Authenticate when no user matches
// the given username and password.
var ErrInvalidCredentials = errors.New("invalid username or password")

// User is a staff account record.
type User struct {
	IDNumber    string
	Username    string
	Password    string
	Position    string
	PhoneNumber string
	CreatedAt   time.Time
}

// Store persists the user collection. Like the ledger's collections it
// must treat a missing collection as empty, and list in insertion order.
type Store interface {
	SaveUser(ctx context.Context, u User) error
	GetUser(ctx context.Context, idNumber string) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)
	DeleteUser(ctx context.Context, idNumber string) (bool, error)
}

// Registry is the mutation and lookup gateway for user accounts.
type Registry struct {
	mu    sync.RWMutex
	store Store
	now   func() time.Time
}

// NewRegistry creates a Registry over the given store.
func NewRegistry(store Store) *Registry {
	return &Registry{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Create validates and stores a new user. All fields are required.
// Fails with ConflictError when the ID number is already registered.
func (r *Registry) Create(ctx context.Context, u User) (*User, error) {
	if err := validateUser(u); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, err := r.store.GetUser(ctx, u.IDNumber)
	if err != nil {
		return nil, &ledger.StorageError{Op: "create user", Err: err}
	}
	if existing != nil {
		return nil, &ledger.ConflictError{Resource: "User", Key: "ID number"}
	}

	u.CreatedAt = r.now()
	if err := r.store.SaveUser(ctx, u); err != nil {
		return nil, &ledger.StorageError{Op: "create user", Err: err}
	}
	return &u, nil
}

// Update overwrites an existing user's record, keyed by ID number.
func (r *Registry) Update(ctx context.Context, idNumber string, u User) (*User, error) {
	u.IDNumber = idNumber
	if err := validateUser(u); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, err := r.store.GetUser(ctx, idNumber)
	if err != nil {
		return nil, &ledger.StorageError{Op: "update user", Err: err}
	}
	if existing == nil {
		return nil, &ledger.NotFoundError{Resource: "User", Key: idNumber}
	}

	u.CreatedAt = existing.CreatedAt
	if err := r.store.SaveUser(ctx, u); err != nil {
		return nil, &ledger.StorageError{Op: "update user", Err: err}
	}
	return &u, nil
}

// Delete removes a user. A second delete of the same ID number fails
// with NotFoundError.
func (r *Registry) Delete(ctx context.Context, idNumber string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	deleted, err := r.store.DeleteUser(ctx, idNumber)
	if err != nil {
		return &ledger.StorageError{Op: "delete user", Err: err}
	}
	if !deleted {
		return &ledger.NotFoundError{Resource: "User", Key: idNumber}
	}
	return nil
}

// List returns all users in insertion order.
func (r *Registry) List(ctx context.Context) ([]User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users, err := r.store.ListUsers(ctx)
	if err != nil {
		return nil, &ledger.StorageError{Op: "list users", Err: err}
	}
	return users, nil
}

// Authenticate performs a flat credential match. Returns the matching
// user, or ErrInvalidCredentials when none matches.
func (r *Registry) Authenticate(ctx context.Context, username, password string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users, err := r.store.ListUsers(ctx)
	if err != nil {
		return nil, &ledger.StorageError{Op: "authenticate", Err: err}
	}
	for i := range users {
		if users[i].Username == username && users[i].Password == password {
			return &users[i], nil
		}
	}
	return nil, ErrInvalidCredentials
}

func validateUser(u User) error {
	required := []struct {
		field, value, message string
	}{
		{"username", u.Username, "Username is required"},
		{"password", u.Password, "Password is required"},
		{"position", u.Position, "Position is required"},
		{"idNumber", u.IDNumber, "ID Number is required"},
		{"phoneNumber", u.PhoneNumber, "Phone Number is required"},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return &ledger.ValidationError{Field: f.field, Message: f.message}
		}
	}
	return nil
}
