/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types
  decouple the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in the domain layer (ledger, accounts), not in
  DTOs. DTOs are pure data carriers.
*/
package api

// ErrorResponse is the JSON shape of every error reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// PRODUCTS
// =============================================================================

// ProductDTO represents a catalog entry in API responses.
type ProductDTO struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	CreatedAt   string  `json:"created_at,omitempty"`
}

// CreateProductRequest is the request to create a product. Quantity is
// the opening stock level.
type CreateProductRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

// UpdateProductRequest overwrites a product's editable attributes.
// There is deliberately no quantity field: stock levels change only
// through the stock endpoint.
type UpdateProductRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
}

// =============================================================================
// STOCK
// =============================================================================

// StockChangeRequest applies an addition or deduction to a product,
// selected by name.
type StockChangeRequest struct {
	ProductName string `json:"productName"`
	Action      string `json:"action"` // "add" or "deduct"
	Quantity    int    `json:"quantity"`
}

// TransactionDTO represents one stock change log entry.
type TransactionDTO struct {
	ID              string `json:"id"`
	ProductID       string `json:"product_id"`
	ProductName     string `json:"productName"`
	QuantityChanged int    `json:"quantityChanged"`
	Action          string `json:"action"`
	Date            string `json:"date"`
}

// StockLevelDTO is one row of the stock level listing.
type StockLevelDTO struct {
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
	StockLevel string `json:"stock_level"`
}

// =============================================================================
// DASHBOARD
// =============================================================================

// ProductReportDTO is one row of the dashboard inventory table.
type ProductReportDTO struct {
	Name         string  `json:"name"`
	Quantity     int     `json:"quantity"`
	Price        float64 `json:"price"`
	StockLevel   string  `json:"stock_level"`
	SoldEstimate int     `json:"sold_estimate"`
	HasSold      bool    `json:"has_sold"`
}

// ChartPointDTO is one bar of the quantity overview chart.
type ChartPointDTO struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// DashboardDTO bundles every derived view the reporting surface shows.
// All figures are recomputed per request from current state.
type DashboardDTO struct {
	TotalStockValue string             `json:"total_stock_value"`
	Products        []ProductReportDTO `json:"products"`
	ChartSeries     []ChartPointDTO    `json:"chart_series"`
	Transactions    []TransactionDTO   `json:"transactions"`
}

// =============================================================================
// USERS
// =============================================================================

// UserDTO represents a staff account. The password never leaves the API.
type UserDTO struct {
	Username    string `json:"username"`
	Position    string `json:"position"`
	IDNumber    string `json:"idNumber"`
	PhoneNumber string `json:"phoneNumber"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// CreateUserRequest is the request to register a staff account.
type CreateUserRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	Position    string `json:"position"`
	IDNumber    string `json:"idNumber"`
	PhoneNumber string `json:"phoneNumber"`
}

// LoginRequest is a flat credential check.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
