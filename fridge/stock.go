/*
stock.go - Stock Ledger

PURPOSE:
  Quantity on hand per (site, product) and the critical threshold that
  flags an item for replenishment.

SEMANTICS:
  Upsert is additive, not a set: adding 5 then 3 to the same pair yields one
  row with 8. The threshold is overwritten by the latest upsert.
  Replenish on a missing id is a silent no-op; the caller decides whether
  that matters.
  Quantity never goes below zero through this ledger. Sales decrement stock
  through the Sale Engine, never here.

SEE ALSO:
  - sales.go: the only path that decrements stock
*/
package fridge

import (
	"context"
)

// StockLedger manages stock levels.
type StockLedger struct {
	Store TxStore
}

func NewStockLedger(store TxStore) *StockLedger {
	return &StockLedger{Store: store}
}

// UpsertStock is the input for Upsert.
type UpsertStock struct {
	SiteID            SiteID
	ProductID         ProductID
	QuantityDelta     int
	CriticalThreshold int
}

// Upsert adds QuantityDelta to the pair's stock, creating the row on first
// use, and overwrites its critical threshold.
func (l *StockLedger) Upsert(ctx context.Context, in UpsertStock) (StockItem, error) {
	if in.SiteID == "" {
		return StockItem{}, invalid("site_id", "is required")
	}
	if in.ProductID == "" {
		return StockItem{}, invalid("product_id", "is required")
	}
	if in.CriticalThreshold < 0 {
		return StockItem{}, invalid("critical_threshold", "must not be negative")
	}

	var result StockItem
	err := l.Store.WithTx(ctx, func(s Store) error {
		site, err := s.GetSite(ctx, in.SiteID)
		if err != nil {
			return err
		}
		if site == nil {
			return ErrSiteNotFound
		}
		product, err := s.GetProduct(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return ErrProductNotFound
		}

		existing, err := s.FindStockItem(ctx, in.SiteID, in.ProductID)
		if err != nil {
			return err
		}

		if existing != nil {
			next := existing.Quantity + in.QuantityDelta
			if next < 0 {
				return invalidQty("quantity", "would leave negative stock")
			}
			existing.Quantity = next
			existing.CriticalThreshold = in.CriticalThreshold
			result = *existing
			return s.UpdateStockItem(ctx, result)
		}

		if in.QuantityDelta < 0 {
			return invalidQty("quantity", "must not be negative")
		}
		result = StockItem{
			ID:                StockItemID(newID()),
			SiteID:            in.SiteID,
			ProductID:         in.ProductID,
			Quantity:          in.QuantityDelta,
			CriticalThreshold: in.CriticalThreshold,
		}
		return s.InsertStockItem(ctx, result)
	})
	if err != nil {
		return StockItem{}, err
	}
	return result, nil
}

// Replenish adds units to an existing stock item. It reports whether the item
// existed; a missing item is not an error.
func (l *StockLedger) Replenish(ctx context.Context, id StockItemID, additional int) (bool, error) {
	found := false
	err := l.Store.WithTx(ctx, func(s Store) error {
		item, err := s.GetStockItem(ctx, id)
		if err != nil {
			return err
		}
		if item == nil {
			return nil
		}
		found = true
		next := item.Quantity + additional
		if next < 0 {
			return invalidQty("quantity", "would leave negative stock")
		}
		item.Quantity = next
		return s.UpdateStockItem(ctx, *item)
	})
	return found, err
}

// Remove deletes a stock item. Missing ids are ignored.
func (l *StockLedger) Remove(ctx context.Context, id StockItemID) error {
	return l.Store.DeleteStockItem(ctx, id)
}

// SiteStock lists a site's stock ordered by product name.
func (l *StockLedger) SiteStock(ctx context.Context, siteID SiteID) ([]SiteStockRow, error) {
	return l.Store.ListSiteStock(ctx, siteID)
}

// LowStock lists every item at or below its critical threshold, ordered by
// site name then product name.
func (l *StockLedger) LowStock(ctx context.Context) ([]LowStockRow, error) {
	return l.Store.ListLowStock(ctx)
}
