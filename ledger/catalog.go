/*
catalog.go - Product catalog operations

PURPOSE:
  Create/update/delete/read access to the product catalog. The update
  path is a full overwrite of the descriptive fields (name, description,
  category, price) and never touches quantity: quantity belongs to the
  engine (engine.go).

VALIDATION:
  Required text fields must be non-empty, price must be a non-negative
  decimal, initial quantity a non-negative integer. There is no
  duplicate-name constraint on products.
*/
package ledger

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateProduct validates the spec, assigns a new identity, and stores
// the product. The spec's quantity is the opening stock level; later
// changes go through ApplyStockChange.
func (l *Ledger) CreateProduct(ctx context.Context, spec ProductSpec) (*Product, error) {
	if err := validateSpec(spec.Name, spec.Description, spec.Category); err != nil {
		return nil, err
	}
	if spec.Price.IsNegative() {
		return nil, &ValidationError{Field: "price", Message: "Valid price is required"}
	}
	if spec.Quantity < 0 {
		return nil, &ValidationError{Field: "quantity", Message: "Valid quantity is required"}
	}

	p := Product{
		ID:          ProductID(uuid.NewString()),
		Name:        spec.Name,
		Description: spec.Description,
		Category:    spec.Category,
		Price:       spec.Price,
		Quantity:    spec.Quantity,
		CreatedAt:   l.now(),
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.store.SaveProduct(ctx, p); err != nil {
		return nil, storageErr("create product", err)
	}

	l.log.Info("product created",
		zap.String("product_id", string(p.ID)),
		zap.String("name", p.Name))
	return &p, nil
}

// UpdateProduct overwrites a product's editable attributes. Quantity is
// not an editable attribute and keeps its current value.
func (l *Ledger) UpdateProduct(ctx context.Context, id ProductID, fields ProductFields) (*Product, error) {
	if err := validateSpec(fields.Name, fields.Description, fields.Category); err != nil {
		return nil, err
	}
	if fields.Price.IsNegative() {
		return nil, &ValidationError{Field: "price", Message: "Valid price is required"}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	p, err := l.store.GetProduct(ctx, id)
	if err != nil {
		return nil, storageErr("update product", err)
	}
	if p == nil {
		return nil, &NotFoundError{Resource: "Product", Key: string(id)}
	}

	p.Name = fields.Name
	p.Description = fields.Description
	p.Category = fields.Category
	p.Price = fields.Price

	if err := l.store.SaveProduct(ctx, *p); err != nil {
		return nil, storageErr("update product", err)
	}
	return p, nil
}

// DeleteProduct removes a product from the catalog. Transactions that
// reference it remain in the log untouched: history outlives the record
// it describes. A second delete of the same ID fails with NotFoundError.
func (l *Ledger) DeleteProduct(ctx context.Context, id ProductID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	deleted, err := l.store.DeleteProduct(ctx, id)
	if err != nil {
		return storageErr("delete product", err)
	}
	if !deleted {
		return &NotFoundError{Resource: "Product", Key: string(id)}
	}

	l.log.Info("product deleted", zap.String("product_id", string(id)))
	return nil
}

// GetProduct returns a single product by ID.
func (l *Ledger) GetProduct(ctx context.Context, id ProductID) (*Product, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	p, err := l.store.GetProduct(ctx, id)
	if err != nil {
		return nil, storageErr("get product", err)
	}
	if p == nil {
		return nil, &NotFoundError{Resource: "Product", Key: string(id)}
	}
	return p, nil
}

// Products returns the full catalog in insertion order. The order is not
// semantically load-bearing but is stable across calls within a session.
func (l *Ledger) Products(ctx context.Context) ([]Product, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	products, err := l.store.ListProducts(ctx)
	if err != nil {
		return nil, storageErr("list products", err)
	}
	return products, nil
}

func validateSpec(name, description, category string) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Field: "name", Message: "Product name is required"}
	}
	if strings.TrimSpace(description) == "" {
		return &ValidationError{Field: "description", Message: "Description is required"}
	}
	if strings.TrimSpace(category) == "" {
		return &ValidationError{Field: "category", Message: "Category is required"}
	}
	return nil
}
