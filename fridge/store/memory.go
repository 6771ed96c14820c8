// Package store provides Store implementations.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/fridge-ledger/fridge"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory implements fridge.TxStore in process memory. Foreign keys, the
// unique (site, product) stock constraint and cascading deletes behave like
// the SQLite schema.
type Memory struct {
	mu sync.Mutex
	t  *tables
}

type tables struct {
	products map[fridge.ProductID]fridge.Product
	sites    map[fridge.SiteID]fridge.Site
	stock    map[fridge.StockItemID]fridge.StockItem
	sales    []fridge.Sale
	cash     []fridge.CashTransaction
}

func newTables() *tables {
	return &tables{
		products: make(map[fridge.ProductID]fridge.Product),
		sites:    make(map[fridge.SiteID]fridge.Site),
		stock:    make(map[fridge.StockItemID]fridge.StockItem),
	}
}

func NewMemory() *Memory {
	return &Memory{t: newTables()}
}

// WithTx executes fn within a transaction.
// Simulated with a snapshot + restore on error. The lock is held for the
// whole body, which serializes writers.
func (m *Memory) WithTx(_ context.Context, fn func(fridge.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.t.clone()
	if err := fn(m.t); err != nil {
		m.t = snapshot
		return err
	}
	return nil
}

// Reset drops every row.
func (m *Memory) Reset(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.t = newTables()
	return nil
}

func (t *tables) clone() *tables {
	c := newTables()
	for k, v := range t.products {
		c.products[k] = v
	}
	for k, v := range t.sites {
		c.sites[k] = v
	}
	for k, v := range t.stock {
		c.stock[k] = v
	}
	c.sales = append([]fridge.Sale(nil), t.sales...)
	c.cash = append([]fridge.CashTransaction(nil), t.cash...)
	return c
}

// =============================================================================
// LOCKED ACCESSORS - fridge.Store outside a transaction
// =============================================================================

func (m *Memory) SaveProduct(ctx context.Context, p fridge.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.t.SaveProduct(ctx, p)
}

func (m *Memory) GetProduct(ctx context.Context, id fridge.ProductID) (*fridge.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.t.GetProduct(ctx, id)
}

func (m *Memory) FindProductByName(ctx context.Context, name string) (*fridge.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.t.FindProductByName(ctx, name)
}

func (m *Memory) ListProducts(ctx context.Context) ([]fridge.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.t.ListProducts(ctx)
}

func (m *Memory) DeleteProduct(ctx context.Context, id fridge.ProductID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.t.DeleteProduct(ctx, id)
}

func (m *Memory) SaveSite(ctx context.Context, s fridge.Site) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.t.SaveSite(ctx, s)
}

func (m *Memory) GetSite(ctx context.Context, id fridge.SiteID) (*fridge.Site, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.t.GetSite(ctx, id)
}

func (m *Memory) FindSiteByName(ctx context.Context, name string) (*fridge.Site, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.t.FindSiteByName(ctx, name)
}

func (m *Memory) ListSites(ctx context.Context) ([]fridge.Site, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.t.ListSites(ctx)
}

func (m *Memory) UpdateSiteExpenses(ctx context.Context, id fridge.SiteID, expenses decimal.Decimal) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.t.UpdateSiteExpenses(ctx, id, expenses)
}

func (m *Memory) DeleteSite(ctx context.Context, id fridge.SiteID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.t.DeleteSite(ctx, id)
}

func (m *Memory) GetStockItem(ctx context.Context, id fridge.StockItemID) (*fridge.StockItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.t.GetStockItem(ctx, id)
}

func (m *Memory) FindStockItem(ctx context.Context, siteID fridge.SiteID, productID fridge.ProductID) (*fridge.StockItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.t.FindStockItem(ctx, siteID, productID)
}

func (m *Memory) InsertStockItem(ctx context.Context, item fridge.StockItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.t.InsertStockItem(ctx, item)
}

func (m *Memory) UpdateStockItem(ctx context.Context, item fridge.StockItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.t.UpdateStockItem(ctx, item)
}

func (m *Memory) DeleteStockItem(ctx context.Context, id fridge.StockItemID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.t.DeleteStockItem(ctx, id)
}

func (m *Memory) ListSiteStock(ctx context.Context, siteID fridge.SiteID) ([]fridge.SiteStockRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.t.ListSiteStock(ctx, siteID)
}

func (m *Memory) ListLowStock(ctx context.Context) ([]fridge.LowStockRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.t.ListLowStock(ctx)
}

func (m *Memory) InsertSale(ctx context.Context, s fridge.Sale) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.t.InsertSale(ctx, s)
}

func (m *Memory) ListSalesBySite(ctx context.Context, siteID fridge.SiteID) ([]fridge.Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.t.ListSalesBySite(ctx, siteID)
}

func (m *Memory) ListSalesBetween(ctx context.Context, from, to time.Time) ([]fridge.SaleRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.t.ListSalesBetween(ctx, from, to)
}

func (m *Memory) AppendCash(ctx context.Context, tx fridge.CashTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.t.AppendCash(ctx, tx)
}

func (m *Memory) ListCash(ctx context.Context) ([]fridge.CashTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.t.ListCash(ctx)
}

// =============================================================================
// TABLES - Unlocked fridge.Store, also the view handed to WithTx bodies
// =============================================================================

func (t *tables) SaveProduct(_ context.Context, p fridge.Product) error {
	t.products[p.ID] = p
	return nil
}

func (t *tables) GetProduct(_ context.Context, id fridge.ProductID) (*fridge.Product, error) {
	p, ok := t.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (t *tables) FindProductByName(_ context.Context, name string) (*fridge.Product, error) {
	for _, p := range t.sortedProducts() {
		if p.Name == name {
			return &p, nil
		}
	}
	return nil, nil
}

func (t *tables) ListProducts(_ context.Context) ([]fridge.Product, error) {
	return t.sortedProducts(), nil
}

func (t *tables) sortedProducts() []fridge.Product {
	out := make([]fridge.Product, 0, len(t.products))
	for _, p := range t.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (t *tables) DeleteProduct(_ context.Context, id fridge.ProductID) error {
	delete(t.products, id)
	for sid, item := range t.stock {
		if item.ProductID == id {
			delete(t.stock, sid)
		}
	}
	kept := t.sales[:0]
	for _, s := range t.sales {
		if s.ProductID != id {
			kept = append(kept, s)
		}
	}
	t.sales = kept
	return nil
}

func (t *tables) SaveSite(_ context.Context, s fridge.Site) error {
	t.sites[s.ID] = s
	return nil
}

func (t *tables) GetSite(_ context.Context, id fridge.SiteID) (*fridge.Site, error) {
	s, ok := t.sites[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (t *tables) FindSiteByName(_ context.Context, name string) (*fridge.Site, error) {
	for _, s := range t.sortedSites() {
		if s.Name == name {
			return &s, nil
		}
	}
	return nil, nil
}

func (t *tables) ListSites(_ context.Context) ([]fridge.Site, error) {
	return t.sortedSites(), nil
}

func (t *tables) sortedSites() []fridge.Site {
	out := make([]fridge.Site, 0, len(t.sites))
	for _, s := range t.sites {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (t *tables) UpdateSiteExpenses(_ context.Context, id fridge.SiteID, expenses decimal.Decimal) (bool, error) {
	s, ok := t.sites[id]
	if !ok {
		return false, nil
	}
	s.FixedExpenses = expenses
	t.sites[id] = s
	return true, nil
}

func (t *tables) DeleteSite(_ context.Context, id fridge.SiteID) error {
	delete(t.sites, id)
	for sid, item := range t.stock {
		if item.SiteID == id {
			delete(t.stock, sid)
		}
	}
	kept := t.sales[:0]
	for _, s := range t.sales {
		if s.SiteID != id {
			kept = append(kept, s)
		}
	}
	t.sales = kept
	return nil
}

func (t *tables) GetStockItem(_ context.Context, id fridge.StockItemID) (*fridge.StockItem, error) {
	item, ok := t.stock[id]
	if !ok {
		return nil, nil
	}
	return &item, nil
}

func (t *tables) FindStockItem(_ context.Context, siteID fridge.SiteID, productID fridge.ProductID) (*fridge.StockItem, error) {
	for _, item := range t.stock {
		if item.SiteID == siteID && item.ProductID == productID {
			found := item
			return &found, nil
		}
	}
	return nil, nil
}

func (t *tables) InsertStockItem(ctx context.Context, item fridge.StockItem) error {
	if _, ok := t.sites[item.SiteID]; !ok {
		return fmt.Errorf("insert stock item: unknown site %s", item.SiteID)
	}
	if _, ok := t.products[item.ProductID]; !ok {
		return fmt.Errorf("insert stock item: unknown product %s", item.ProductID)
	}
	if existing, _ := t.FindStockItem(ctx, item.SiteID, item.ProductID); existing != nil {
		return fmt.Errorf("insert stock item: site %s already stocks product %s", item.SiteID, item.ProductID)
	}
	t.stock[item.ID] = item
	return nil
}

func (t *tables) UpdateStockItem(_ context.Context, item fridge.StockItem) error {
	current, ok := t.stock[item.ID]
	if !ok {
		return nil
	}
	current.Quantity = item.Quantity
	current.CriticalThreshold = item.CriticalThreshold
	t.stock[item.ID] = current
	return nil
}

func (t *tables) DeleteStockItem(_ context.Context, id fridge.StockItemID) error {
	delete(t.stock, id)
	return nil
}

func (t *tables) ListSiteStock(_ context.Context, siteID fridge.SiteID) ([]fridge.SiteStockRow, error) {
	var rows []fridge.SiteStockRow
	for _, item := range t.stock {
		if item.SiteID != siteID {
			continue
		}
		rows = append(rows, fridge.SiteStockRow{
			StockItemID:       item.ID,
			ProductID:         item.ProductID,
			ProductName:       t.products[item.ProductID].Name,
			Quantity:          item.Quantity,
			CriticalThreshold: item.CriticalThreshold,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ProductName < rows[j].ProductName })
	return rows, nil
}

func (t *tables) ListLowStock(_ context.Context) ([]fridge.LowStockRow, error) {
	var rows []fridge.LowStockRow
	for _, item := range t.stock {
		if !item.IsLow() {
			continue
		}
		site := t.sites[item.SiteID]
		rows = append(rows, fridge.LowStockRow{
			StockItemID:       item.ID,
			ProductName:       t.products[item.ProductID].Name,
			SiteName:          site.Name,
			SiteAddress:       site.Address,
			Quantity:          item.Quantity,
			CriticalThreshold: item.CriticalThreshold,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].SiteName != rows[j].SiteName {
			return rows[i].SiteName < rows[j].SiteName
		}
		return rows[i].ProductName < rows[j].ProductName
	})
	return rows, nil
}

func (t *tables) InsertSale(_ context.Context, s fridge.Sale) error {
	if _, ok := t.sites[s.SiteID]; !ok {
		return fmt.Errorf("insert sale: unknown site %s", s.SiteID)
	}
	if _, ok := t.products[s.ProductID]; !ok {
		return fmt.Errorf("insert sale: unknown product %s", s.ProductID)
	}
	t.sales = append(t.sales, s)
	return nil
}

func (t *tables) ListSalesBySite(_ context.Context, siteID fridge.SiteID) ([]fridge.Sale, error) {
	var out []fridge.Sale
	for _, s := range t.sales {
		if s.SiteID == siteID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (t *tables) ListSalesBetween(_ context.Context, from, to time.Time) ([]fridge.SaleRow, error) {
	var rows []fridge.SaleRow
	for _, s := range t.sales {
		if s.SoldAt.Before(from) || !s.SoldAt.Before(to) {
			continue
		}
		rows = append(rows, fridge.SaleRow{
			Sale:        s,
			SiteName:    t.sites[s.SiteID].Name,
			ProductName: t.products[s.ProductID].Name,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].SoldAt.Before(rows[j].SoldAt) })
	return rows, nil
}

func (t *tables) AppendCash(_ context.Context, tx fridge.CashTransaction) error {
	t.cash = append(t.cash, tx)
	return nil
}

func (t *tables) ListCash(_ context.Context) ([]fridge.CashTransaction, error) {
	out := make([]fridge.CashTransaction, len(t.cash))
	for i, tx := range t.cash {
		out[len(t.cash)-1-i] = tx
	}
	return out, nil
}
