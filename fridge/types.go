/*
Package fridge provides the inventory and sales engine for smart-fridge sites.

PURPOSE:
  This package contains the domain types and the operations that keep stock,
  sales and the central cash ledger consistent with each other. HTTP, SQL and
  payment-provider concerns live elsewhere; everything here talks to a Store.

KEY CONCEPTS IN THIS FILE (types.go):
  - Product:         catalog entry with cost and sale price
  - Site:            condominium installation with investment and fixed expenses
  - StockItem:       quantity on hand for one product at one site
  - Sale:            immutable record of units sold, with frozen cost/revenue
  - CashTransaction: immutable inflow/outflow in the central cash ledger

DESIGN PRINCIPLES:
  1. Money is decimal.Decimal. No float arithmetic on prices or balances.
  2. Sales and cash transactions are append-only. Nothing updates them.
  3. Derived values (balance, profit, financials) are computed, never stored.
  4. Identifiers are typed strings so a SiteID cannot be passed as a ProductID.

SEE ALSO:
  - sales.go:    Sale Engine (stock decrement + sale + profit posting)
  - stock.go:    Stock Ledger operations
  - cash.go:     Cash Ledger
  - reporter.go: Financial Reporter
  - store.go:    persistence interfaces
*/
package fridge

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type ProductID string
type SiteID string
type StockItemID string
type SaleID string
type TransactionID string

func newID() string { return uuid.NewString() }

// =============================================================================
// CATALOG
// =============================================================================

// Product is a catalog entry. Prices are per unit.
type Product struct {
	ID        ProductID
	Name      string
	CostPrice decimal.Decimal
	SalePrice decimal.Decimal
	CreatedAt time.Time
}

// =============================================================================
// SITES
// =============================================================================

// DefaultFixedExpenses is applied to new sites that do not state their own.
var DefaultFixedExpenses = decimal.NewFromInt(200)

// Site is a condominium installation hosting one or more fridges.
type Site struct {
	ID            SiteID
	Name          string
	Responsible   string
	Address       string
	Investment    decimal.Decimal
	FixedExpenses decimal.Decimal
	CreatedAt     time.Time
}

// =============================================================================
// STOCK
// =============================================================================

// StockItem is the quantity on hand for one (site, product) pair.
// At most one StockItem exists per pair.
type StockItem struct {
	ID                StockItemID
	SiteID            SiteID
	ProductID         ProductID
	Quantity          int
	CriticalThreshold int
}

// IsLow reports whether the item is at or below its critical threshold.
func (s StockItem) IsLow() bool {
	return s.Quantity <= s.CriticalThreshold
}

// SiteStockRow is a StockItem joined with its product name.
type SiteStockRow struct {
	StockItemID       StockItemID
	ProductID         ProductID
	ProductName       string
	Quantity          int
	CriticalThreshold int
}

// LowStockRow is a StockItem that needs replenishment, joined with product
// and site details.
type LowStockRow struct {
	StockItemID       StockItemID
	ProductName       string
	SiteName          string
	SiteAddress       string
	Quantity          int
	CriticalThreshold int
}

// =============================================================================
// SALES
// =============================================================================

// Sale is an immutable record of units sold at a site.
// TotalCost and TotalRevenue are frozen at sale time; later price changes
// on the product never affect them.
type Sale struct {
	ID           SaleID
	SiteID       SiteID
	ProductID    ProductID
	Quantity     int
	TotalCost    decimal.Decimal
	TotalRevenue decimal.Decimal
	SoldAt       time.Time
}

// Profit is revenue minus cost for this sale.
func (s Sale) Profit() decimal.Decimal {
	return s.TotalRevenue.Sub(s.TotalCost)
}

// SaleRow is a Sale joined with site and product names, as used by reports.
type SaleRow struct {
	Sale
	SiteName    string
	ProductName string
}

// =============================================================================
// CASH LEDGER
// =============================================================================

// TxKind is the direction of a cash movement.
type TxKind string

const (
	KindInflow  TxKind = "inflow"
	KindOutflow TxKind = "outflow"
)

// Valid reports whether k is a known kind.
func (k TxKind) Valid() bool {
	return k == KindInflow || k == KindOutflow
}

// CashTransaction is an immutable entry in the central cash ledger.
// Amount is always positive; Kind carries the sign.
type CashTransaction struct {
	ID          TransactionID
	Kind        TxKind
	Amount      decimal.Decimal
	Description string
	Responsible string
	CreatedAt   time.Time
}

// Signed returns the amount with its ledger sign applied.
func (t CashTransaction) Signed() decimal.Decimal {
	if t.Kind == KindOutflow {
		return t.Amount.Neg()
	}
	return t.Amount
}
