/*
engine.go - The stock mutation gateway

PURPOSE:
  ApplyStockChange is the only path that writes a product's quantity.
  It validates the request against current state, applies the delta,
  and appends the matching log entry as one committed unit.

ATOMICITY:
  The quantity update and the log append must both land or both roll
  back. When the Store supports transactions (TxStore), both writes run
  inside one WithTx. Otherwise the engine compensates: if the append
  fails after the quantity write, the previous quantity is restored
  before the error is returned. Readers never observe a partial state;
  both paths run under the ledger's write lock.

SELECTION BY NAME:
  Stock changes select the product by exact name, not ID. This is kept
  as documented legacy behavior from the system this replaces: when two
  products share a name, the first match in catalog order wins.
  ApplyStockChangeByID is the identity-based migration path.
*/
package ledger

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ApplyStockChange applies a stock addition or deduction to the product
// with the given name and appends the matching transaction to the log.
//
// Fails with ValidationError for a non-positive quantity or unknown kind,
// NotFoundError when no product has that name, and InsufficientStockError
// when a deduction exceeds quantity on hand. On any failure the catalog
// and the log are left unchanged.
func (l *Ledger) ApplyStockChange(ctx context.Context, productName string, kind ChangeKind, quantity int) (*Transaction, error) {
	if err := validateChange(kind, quantity); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	products, err := l.store.ListProducts(ctx)
	if err != nil {
		return nil, storageErr("apply stock change", err)
	}

	// First match in catalog order wins. See package note on name selection.
	var product *Product
	for i := range products {
		if products[i].Name == productName {
			product = &products[i]
			break
		}
	}
	if product == nil {
		return nil, &NotFoundError{Resource: "Product", Key: productName}
	}

	return l.applyLocked(ctx, product, kind, quantity)
}

// ApplyStockChangeByID is the identity-based variant of ApplyStockChange,
// for callers that can name the exact product.
func (l *Ledger) ApplyStockChangeByID(ctx context.Context, id ProductID, kind ChangeKind, quantity int) (*Transaction, error) {
	if err := validateChange(kind, quantity); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	product, err := l.store.GetProduct(ctx, id)
	if err != nil {
		return nil, storageErr("apply stock change", err)
	}
	if product == nil {
		return nil, &NotFoundError{Resource: "Product", Key: string(id)}
	}

	return l.applyLocked(ctx, product, kind, quantity)
}

// applyLocked performs the sufficiency check, the quantity write, and the
// log append. Caller holds the write lock.
func (l *Ledger) applyLocked(ctx context.Context, product *Product, kind ChangeKind, quantity int) (*Transaction, error) {
	prev := product.Quantity

	switch kind {
	case ChangeAdd:
		product.Quantity += quantity
	case ChangeDeduct:
		if quantity > product.Quantity {
			return nil, &InsufficientStockError{
				ProductName: product.Name,
				Available:   product.Quantity,
				Requested:   quantity,
			}
		}
		product.Quantity -= quantity
	}

	tx := Transaction{
		ID:          TransactionID(uuid.NewString()),
		ProductID:   product.ID,
		ProductName: product.Name,
		Quantity:    quantity,
		Kind:        kind,
		At:          l.now(),
	}

	if err := l.commit(ctx, *product, tx, prev); err != nil {
		product.Quantity = prev
		return nil, err
	}

	l.log.Info("stock change applied",
		zap.String("product", product.Name),
		zap.String("kind", string(kind)),
		zap.Int("quantity", quantity),
		zap.Int("on_hand", product.Quantity))
	return &tx, nil
}

// commit writes the updated product and the log entry as one unit.
func (l *Ledger) commit(ctx context.Context, p Product, tx Transaction, prevQuantity int) error {
	if ts, ok := l.store.(TxStore); ok {
		err := ts.WithTx(ctx, func(s Store) error {
			if err := s.SaveProduct(ctx, p); err != nil {
				return err
			}
			return s.AppendTransaction(ctx, tx)
		})
		if err != nil {
			return storageErr("commit stock change", err)
		}
		return nil
	}

	// No transactional support: compensate by hand.
	if err := l.store.SaveProduct(ctx, p); err != nil {
		return storageErr("commit stock change", err)
	}
	if err := l.store.AppendTransaction(ctx, tx); err != nil {
		p.Quantity = prevQuantity
		if rbErr := l.store.SaveProduct(ctx, p); rbErr != nil {
			l.log.Error("rollback after failed append also failed",
				zap.String("product", p.Name),
				zap.Error(rbErr))
		}
		return storageErr("commit stock change", err)
	}
	return nil
}

func validateChange(kind ChangeKind, quantity int) error {
	if !kind.Valid() {
		return &ValidationError{Field: "action", Message: "Action must be add or deduct"}
	}
	if quantity <= 0 {
		return &ValidationError{Field: "quantity", Message: "Valid quantity is required"}
	}
	return nil
}
