/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the domain model in fridge/ from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Small response wrappers

MONEY:
  All money fields are shopspring decimals. They decode from either a JSON
  number or a numeric string and encode as a string ("12.50"), so no
  float rounding happens on the wire.

VALIDATION:
  Request types carry go-playground/validator tags for presence checks.
  Pointer fields distinguish "omitted" from zero. Business rules (prices
  not negative, quantity positive, known cash kind) stay in fridge/.

SEE ALSO:
  - handlers.go: Uses these types
  - errors.go: Turns validator errors into 400 responses
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/fridge-ledger/auth"
	"github.com/warp/fridge-ledger/fridge"
)

// =============================================================================
// AUTH
// =============================================================================

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type UserDTO struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
}

type SessionDTO struct {
	Email     string `json:"email"`
	Role      string `json:"role"`
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

func toUserDTO(u auth.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}

// =============================================================================
// CATALOG
// =============================================================================

type CreateProductRequest struct {
	Name      string           `json:"name" validate:"required"`
	CostPrice *decimal.Decimal `json:"cost_price" validate:"required"`
	SalePrice *decimal.Decimal `json:"sale_price" validate:"required"`
}

type ProductDTO struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	CostPrice decimal.Decimal `json:"cost_price"`
	SalePrice decimal.Decimal `json:"sale_price"`
	CreatedAt string          `json:"created_at"`
}

func toProductDTO(p fridge.Product) ProductDTO {
	return ProductDTO{
		ID:        string(p.ID),
		Name:      p.Name,
		CostPrice: p.CostPrice,
		SalePrice: p.SalePrice,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
	}
}

type CreateSiteRequest struct {
	Name          string           `json:"name" validate:"required"`
	Responsible   string           `json:"responsible"`
	Address       string           `json:"address"`
	Investment    *decimal.Decimal `json:"investment" validate:"required"`
	FixedExpenses *decimal.Decimal `json:"fixed_expenses"`
}

type SiteDTO struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Responsible   string          `json:"responsible"`
	Address       string          `json:"address"`
	Investment    decimal.Decimal `json:"investment"`
	FixedExpenses decimal.Decimal `json:"fixed_expenses"`
	CreatedAt     string          `json:"created_at"`
}

func toSiteDTO(s fridge.Site) SiteDTO {
	return SiteDTO{
		ID:            string(s.ID),
		Name:          s.Name,
		Responsible:   s.Responsible,
		Address:       s.Address,
		Investment:    s.Investment,
		FixedExpenses: s.FixedExpenses,
		CreatedAt:     s.CreatedAt.Format(time.RFC3339),
	}
}

// UpdateExpensesRequest is the body of PUT /api/sites/{id}/expenses.
type UpdateExpensesRequest struct {
	Value *decimal.Decimal `json:"value" validate:"required"`
}

// =============================================================================
// STOCK
// =============================================================================

// UpsertStockRequest adds Quantity to the pair's stock and overwrites the
// threshold.
type UpsertStockRequest struct {
	SiteID            string `json:"site_id" validate:"required"`
	ProductID         string `json:"product_id" validate:"required"`
	Quantity          *int   `json:"quantity" validate:"required"`
	CriticalThreshold *int   `json:"critical_threshold" validate:"required"`
}

type ReplenishRequest struct {
	StockItemID string `json:"stock_item_id" validate:"required"`
	Quantity    *int   `json:"quantity" validate:"required"`
}

type StockItemDTO struct {
	ID                string `json:"id"`
	SiteID            string `json:"site_id"`
	ProductID         string `json:"product_id"`
	Quantity          int    `json:"quantity"`
	CriticalThreshold int    `json:"critical_threshold"`
}

func toStockItemDTO(s fridge.StockItem) StockItemDTO {
	return StockItemDTO{
		ID:                string(s.ID),
		SiteID:            string(s.SiteID),
		ProductID:         string(s.ProductID),
		Quantity:          s.Quantity,
		CriticalThreshold: s.CriticalThreshold,
	}
}

type SiteStockDTO struct {
	StockItemID       string `json:"stock_item_id"`
	ProductID         string `json:"product_id"`
	ProductName       string `json:"product_name"`
	Quantity          int    `json:"quantity"`
	CriticalThreshold int    `json:"critical_threshold"`
}

type LowStockDTO struct {
	StockItemID       string `json:"stock_item_id"`
	Product           string `json:"product"`
	Site              string `json:"site"`
	Address           string `json:"address"`
	Quantity          int    `json:"quantity"`
	CriticalThreshold int    `json:"critical_threshold"`
}

// =============================================================================
// SALES
// =============================================================================

type RecordSaleRequest struct {
	SiteID    string `json:"site_id" validate:"required"`
	ProductID string `json:"product_id" validate:"required"`
	Quantity  *int   `json:"quantity" validate:"required"`
}

type SaleDTO struct {
	ID           string          `json:"id"`
	SiteID       string          `json:"site_id"`
	ProductID    string          `json:"product_id"`
	Quantity     int             `json:"quantity"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	SoldAt       string          `json:"sold_at"`
}

func toSaleDTO(s fridge.Sale) SaleDTO {
	return SaleDTO{
		ID:           string(s.ID),
		SiteID:       string(s.SiteID),
		ProductID:    string(s.ProductID),
		Quantity:     s.Quantity,
		TotalCost:    s.TotalCost,
		TotalRevenue: s.TotalRevenue,
		SoldAt:       s.SoldAt.Format(time.RFC3339Nano),
	}
}

// SaleReceiptDTO is returned by POST /api/sales. Profit is omitted when the
// sale posted nothing to the cash ledger.
type SaleReceiptDTO struct {
	Sale   SaleDTO             `json:"sale"`
	Profit *CashTransactionDTO `json:"profit,omitempty"`
}

// =============================================================================
// REPORTS
// =============================================================================

type FinancialsDTO struct {
	SiteID              string          `json:"site_id"`
	InitialInvestment   decimal.Decimal `json:"initial_investment"`
	RemainingInvestment decimal.Decimal `json:"remaining_investment"`
	Expenses            decimal.Decimal `json:"expenses"`
	Revenue             decimal.Decimal `json:"revenue"`
	CostOfGoods         decimal.Decimal `json:"cost_of_goods"`
	GrossProfit         decimal.Decimal `json:"gross_profit"`
	NetProfit           decimal.Decimal `json:"net_profit"`
	Commission          decimal.Decimal `json:"commission"`
}

func toFinancialsDTO(f fridge.SiteFinancials) FinancialsDTO {
	return FinancialsDTO{
		SiteID:              string(f.SiteID),
		InitialInvestment:   f.InitialInvestment,
		RemainingInvestment: f.RemainingInvestment,
		Expenses:            f.Expenses,
		Revenue:             f.Revenue,
		CostOfGoods:         f.CostOfGoods,
		GrossProfit:         f.GrossProfit,
		NetProfit:           f.NetProfit,
		Commission:          f.Commission,
	}
}

type SalesReportRowDTO struct {
	SaleID       string          `json:"sale_id"`
	SoldAt       string          `json:"sold_at"`
	Site         string          `json:"site"`
	Product      string          `json:"product"`
	Quantity     int             `json:"quantity"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	Profit       decimal.Decimal `json:"profit"`
}

// =============================================================================
// CASH
// =============================================================================

type PostCashRequest struct {
	Kind        string           `json:"kind" validate:"required"`
	Amount      *decimal.Decimal `json:"amount" validate:"required"`
	Description string           `json:"description" validate:"required"`
	Responsible string           `json:"responsible"`
}

type CashTransactionDTO struct {
	ID          string          `json:"id"`
	Kind        string          `json:"kind"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Responsible string          `json:"responsible,omitempty"`
	CreatedAt   string          `json:"created_at"`
}

func toCashTransactionDTO(t fridge.CashTransaction) CashTransactionDTO {
	return CashTransactionDTO{
		ID:          string(t.ID),
		Kind:        string(t.Kind),
		Amount:      t.Amount,
		Description: t.Description,
		Responsible: t.Responsible,
		CreatedAt:   t.CreatedAt.Format(time.RFC3339Nano),
	}
}

type CashSummaryDTO struct {
	Balance      decimal.Decimal      `json:"balance"`
	Transactions []CashTransactionDTO `json:"transactions"`
}

// =============================================================================
// SCENARIOS
// =============================================================================

type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type LoadScenarioRequest struct {
	ID string `json:"id" validate:"required"`
}

// =============================================================================
// COMMON
// =============================================================================

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type StatusResponse struct {
	Status string `json:"status"`
}
