/*
handlers.go - HTTP API handlers for the inventory ledger

PURPOSE:
  Exposes the ledger via REST. Handles HTTP request/response and JSON
  serialization, and delegates every decision to the domain layer.

ENDPOINTS:
  Products:
    GET    /api/products           List the catalog
    POST   /api/products           Create product
    GET    /api/products/{id}      Get one product
    PUT    /api/products/{id}      Update editable fields (not quantity)
    DELETE /api/products/{id}      Remove product (history stays)

  Stock:
    POST   /api/stock              Apply a stock change (add/deduct)
    GET    /api/transactions       Full stock change history
    GET    /api/stock-levels       Name/quantity/classification rows

  Reporting:
    GET    /api/dashboard          Total value, chart series, report rows

  Users:
    GET some/POST  /api/users      List / register staff accounts
    PUT/DELETE     /api/users/{idNumber}
    POST   /api/login              Flat credential check

ERROR HANDLING:
  Domain errors map to HTTP status by kind:
  - 400: validation errors
  - 401: failed login
  - 404: unknown product/user
  - 409: duplicate account, insufficient stock
  - 500: storage failures
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mercantile/inventory-ledger/accounts"
	"github.com/mercantile/inventory-ledger/ledger"
)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Ledger   *ledger.Ledger
	Accounts *accounts.Registry
	Log      *zap.Logger
}

// NewHandler creates a handler over the ledger and user registry.
func NewHandler(lgr *ledger.Ledger, reg *accounts.Registry, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{Ledger: lgr, Accounts: reg, Log: log}
}

// =============================================================================
// PRODUCT HANDLERS
// =============================================================================

// ListProducts returns the full catalog in insertion order.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.Ledger.Products(r.Context())
	if err != nil {
		h.writeDomainError(w, "Failed to list products", err)
		return
	}

	dtos := make([]ProductDTO, len(products))
	for i, p := range products {
		dtos[i] = productDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetProduct returns a single product.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := ledger.ProductID(chi.URLParam(r, "id"))

	p, err := h.Ledger.GetProduct(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, "Failed to get product", err)
		return
	}
	writeJSON(w, http.StatusOK, productDTO(*p))
}

// CreateProduct creates a new catalog entry.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	p, err := h.Ledger.CreateProduct(r.Context(), ledger.ProductSpec{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Price:       decimal.NewFromFloat(req.Price),
		Quantity:    req.Quantity,
	})
	if err != nil {
		h.writeDomainError(w, "Failed to create product", err)
		return
	}

	writeJSON(w, http.StatusCreated, productDTO(*p))
}

// UpdateProduct overwrites a product's editable fields. Quantity in the
// payload, if any, is ignored.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := ledger.ProductID(chi.URLParam(r, "id"))

	var req UpdateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	p, err := h.Ledger.UpdateProduct(r.Context(), id, ledger.ProductFields{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Price:       decimal.NewFromFloat(req.Price),
	})
	if err != nil {
		h.writeDomainError(w, "Failed to update product", err)
		return
	}

	writeJSON(w, http.StatusOK, productDTO(*p))
}

// DeleteProduct removes a product from the catalog.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := ledger.ProductID(chi.URLParam(r, "id"))

	if err := h.Ledger.DeleteProduct(r.Context(), id); err != nil {
		h.writeDomainError(w, "Failed to delete product", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": string(id)})
}

// =============================================================================
// STOCK HANDLERS
// =============================================================================

// ApplyStockChange adds or deducts stock for a product selected by name.
func (h *Handler) ApplyStockChange(w http.ResponseWriter, r *http.Request) {
	var req StockChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	tx, err := h.Ledger.ApplyStockChange(r.Context(), req.ProductName, ledger.ChangeKind(req.Action), req.Quantity)
	if err != nil {
		h.writeDomainError(w, "Failed to update stock", err)
		return
	}

	writeJSON(w, http.StatusOK, transactionDTO(*tx))
}

// ListTransactions returns the full stock change history.
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.Ledger.Transactions(r.Context())
	if err != nil {
		h.writeDomainError(w, "Failed to list transactions", err)
		return
	}

	dtos := make([]TransactionDTO, len(txs))
	for i, tx := range txs {
		dtos[i] = transactionDTO(tx)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// StockLevels returns name/quantity/classification rows for all products.
func (h *Handler) StockLevels(w http.ResponseWriter, r *http.Request) {
	products, err := h.Ledger.Products(r.Context())
	if err != nil {
		h.writeDomainError(w, "Failed to list stock levels", err)
		return
	}

	rows := make([]StockLevelDTO, len(products))
	for i, p := range products {
		rows[i] = StockLevelDTO{
			Name:       p.Name,
			Quantity:   p.Quantity,
			StockLevel: string(ledger.Classify(p)),
		}
	}
	writeJSON(w, http.StatusOK, rows)
}

// Dashboard returns every derived view in one payload: total stock
// value, per-product report rows, chart series, and the history table.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	total, err := h.Ledger.TotalStockValue(ctx)
	if err != nil {
		h.writeDomainError(w, "Failed to compute stock value", err)
		return
	}
	products, err := h.Ledger.Products(ctx)
	if err != nil {
		h.writeDomainError(w, "Failed to list products", err)
		return
	}
	series, err := h.Ledger.ChartSeries(ctx)
	if err != nil {
		h.writeDomainError(w, "Failed to compute chart series", err)
		return
	}
	txs, err := h.Ledger.Transactions(ctx)
	if err != nil {
		h.writeDomainError(w, "Failed to list transactions", err)
		return
	}

	dto := DashboardDTO{
		TotalStockValue: total.StringFixed(2),
		Products:        make([]ProductReportDTO, len(products)),
		ChartSeries:     make([]ChartPointDTO, len(series)),
		Transactions:    make([]TransactionDTO, len(txs)),
	}
	for i, p := range products {
		dto.Products[i] = ProductReportDTO{
			Name:         p.Name,
			Quantity:     p.Quantity,
			Price:        p.Price.InexactFloat64(),
			StockLevel:   string(ledger.Classify(p)),
			SoldEstimate: ledger.SoldEstimate(p),
			HasSold:      ledger.HasSold(p),
		}
	}
	for i, pt := range series {
		dto.ChartSeries[i] = ChartPointDTO{Name: pt.Name, Quantity: pt.Quantity}
	}
	for i, tx := range txs {
		dto.Transactions[i] = transactionDTO(tx)
	}

	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// USER HANDLERS
// =============================================================================

// ListUsers returns all staff accounts.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Accounts.List(r.Context())
	if err != nil {
		h.writeDomainError(w, "Failed to list users", err)
		return
	}

	dtos := make([]UserDTO, len(users))
	for i, u := range users {
		dtos[i] = userDTO(u)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateUser registers a new staff account.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	u, err := h.Accounts.Create(r.Context(), accounts.User{
		Username:    req.Username,
		Password:    req.Password,
		Position:    req.Position,
		IDNumber:    req.IDNumber,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		h.writeDomainError(w, "Failed to create user", err)
		return
	}

	writeJSON(w, http.StatusCreated, userDTO(*u))
}

// UpdateUser overwrites a staff account, keyed by ID number.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	idNumber := chi.URLParam(r, "idNumber")

	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	u, err := h.Accounts.Update(r.Context(), idNumber, accounts.User{
		Username:    req.Username,
		Password:    req.Password,
		Position:    req.Position,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		h.writeDomainError(w, "Failed to update user", err)
		return
	}

	writeJSON(w, http.StatusOK, userDTO(*u))
}

// DeleteUser removes a staff account.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	idNumber := chi.URLParam(r, "idNumber")

	if err := h.Accounts.Delete(r.Context(), idNumber); err != nil {
		h.writeDomainError(w, "Failed to delete user", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": idNumber})
}

// Login performs a flat credential check.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	u, err := h.Accounts.Authenticate(r.Context(), req.Username, req.Password)
	if errors.Is(err, accounts.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, "Invalid username or password", nil)
		return
	}
	if err != nil {
		h.writeDomainError(w, "Failed to authenticate", err)
		return
	}

	writeJSON(w, http.StatusOK, userDTO(*u))
}

// =============================================================================
// HELPERS
// =============================================================================

func productDTO(p ledger.Product) ProductDTO {
	return ProductDTO{
		ID:          string(p.ID),
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Price:       p.Price.InexactFloat64(),
		Quantity:    p.Quantity,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
	}
}

func transactionDTO(tx ledger.Transaction) TransactionDTO {
	return TransactionDTO{
		ID:              string(tx.ID),
		ProductID:       string(tx.ProductID),
		ProductName:     tx.ProductName,
		QuantityChanged: tx.Quantity,
		Action:          string(tx.Kind),
		Date:            tx.At.Format(time.RFC3339),
	}
}

func userDTO(u accounts.User) UserDTO {
	return UserDTO{
		Username:    u.Username,
		Position:    u.Position,
		IDNumber:    u.IDNumber,
		PhoneNumber: u.PhoneNumber,
		CreatedAt:   u.CreatedAt.Format(time.RFC3339),
	}
}

// writeDomainError maps domain error kinds to HTTP statuses.
func (h *Handler) writeDomainError(w http.ResponseWriter, message string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ledger.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, ledger.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ledger.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, ledger.ErrInsufficientStock):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		h.Log.Error(message, zap.Error(err))
	}
	writeError(w, status, message, err)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
