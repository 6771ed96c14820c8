/*
store.go - Persistence interfaces for the fridge engine

PURPOSE:
  Defines the boundary between domain logic and the database. Stores are
  deliberately dumb: they read and write rows. Every rule (merging stock,
  checking sufficiency, computing totals, posting profit) lives in this
  package so the SQLite and in-memory stores behave identically.

KEY INTERFACES:
  CatalogStore: products
  SiteStore:    condominium sites
  StockStore:   stock items and their joined views
  SaleStore:    append-only sales
  CashStore:    append-only cash transactions
  TxStore:      all of the above plus WithTx for atomic multi-table writes

LOOKUP CONVENTION:
  Get and Find methods return (nil, nil) when the row does not exist. Only
  real failures (I/O, scan errors) are returned as errors.

APPEND-ONLY CONTRACT:
  SaleStore and CashStore have no Update or Delete. Sales only disappear
  through the cascade from deleting their site or product.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite
  - fridge/store/memory.go: in-memory, for tests
*/
package fridge

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// CatalogStore persists products.
type CatalogStore interface {
	SaveProduct(ctx context.Context, p Product) error
	GetProduct(ctx context.Context, id ProductID) (*Product, error)
	FindProductByName(ctx context.Context, name string) (*Product, error)
	// ListProducts returns all products ordered by name.
	ListProducts(ctx context.Context) ([]Product, error)
	// DeleteProduct removes the product and cascades to its stock and sales.
	DeleteProduct(ctx context.Context, id ProductID) error
}

// SiteStore persists condominium sites.
type SiteStore interface {
	SaveSite(ctx context.Context, s Site) error
	GetSite(ctx context.Context, id SiteID) (*Site, error)
	FindSiteByName(ctx context.Context, name string) (*Site, error)
	// ListSites returns all sites ordered by name.
	ListSites(ctx context.Context) ([]Site, error)
	// UpdateSiteExpenses reports whether a site was updated.
	UpdateSiteExpenses(ctx context.Context, id SiteID, expenses decimal.Decimal) (bool, error)
	// DeleteSite removes the site and cascades to its stock and sales.
	DeleteSite(ctx context.Context, id SiteID) error
}

// StockStore persists stock items.
type StockStore interface {
	GetStockItem(ctx context.Context, id StockItemID) (*StockItem, error)
	FindStockItem(ctx context.Context, siteID SiteID, productID ProductID) (*StockItem, error)
	InsertStockItem(ctx context.Context, item StockItem) error
	// UpdateStockItem overwrites quantity and critical threshold.
	UpdateStockItem(ctx context.Context, item StockItem) error
	DeleteStockItem(ctx context.Context, id StockItemID) error

	// ListSiteStock returns the site's stock ordered by product name.
	ListSiteStock(ctx context.Context, siteID SiteID) ([]SiteStockRow, error)
	// ListLowStock returns items with quantity <= threshold, ordered by site
	// name then product name.
	ListLowStock(ctx context.Context) ([]LowStockRow, error)
}

// SaleStore persists sales. Append-only.
type SaleStore interface {
	InsertSale(ctx context.Context, s Sale) error
	ListSalesBySite(ctx context.Context, siteID SiteID) ([]Sale, error)
	// ListSalesBetween returns sales with from <= SoldAt < to, ordered by
	// SoldAt ascending.
	ListSalesBetween(ctx context.Context, from, to time.Time) ([]SaleRow, error)
}

// CashStore persists the central cash ledger. Append-only.
type CashStore interface {
	AppendCash(ctx context.Context, tx CashTransaction) error
	// ListCash returns every transaction, newest first.
	ListCash(ctx context.Context) ([]CashTransaction, error)
}

// Store is the full persistence surface used by the engine.
type Store interface {
	CatalogStore
	SiteStore
	StockStore
	SaleStore
	CashStore
}

// TxStore wraps Store with transaction support.
type TxStore interface {
	Store

	// WithTx executes fn within a transaction.
	// If fn returns error, every write made through the Store passed to fn is
	// rolled back. If fn returns nil, they are committed together.
	// Writers are serialized: no two WithTx bodies interleave their
	// read-check-write sequences.
	WithTx(ctx context.Context, fn func(Store) error) error
}
