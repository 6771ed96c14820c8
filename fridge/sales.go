/*
sales.go - Sale Engine

PURPOSE:
  Executes a sale as a single unit of work:
    1. decrement the StockItem for (site, product)
    2. insert the Sale with cost and revenue frozen at current prices
    3. if revenue > cost, post the profit to the cash ledger as an inflow

CRITICAL INVARIANTS:
  1. ALL-OR-NOTHING: the three writes commit together or not at all.
  2. NO NEGATIVE STOCK: the sufficiency check and the decrement happen inside
     the same store transaction, so two concurrent sales of the last unit
     cannot both succeed.
  3. ONE PROFIT ENTRY: a positive-profit sale produces exactly one inflow of
     revenue - cost. Zero or negative profit produces none.

FAILURE:
  InsufficientStockError when the pair has no stock row or fewer units than
  requested. Nothing is written.

EXAMPLE:
  Product A (cost 2.00, sale 5.00), 10 units at Site X, sell 3:
    stock 10 -> 7
    Sale{cost: 6.00, revenue: 15.00}
    CashTransaction{inflow, 9.00, "Sale profit: 3x Product A", "automatic system"}

SEE ALSO:
  - store.go: TxStore.WithTx
  - cash.go:  the ledger the profit lands in
*/
package fridge

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// SystemResponsible is recorded as the responsible party on profit entries
// the engine posts by itself.
const SystemResponsible = "automatic system"

// SaleRequest is the input for RecordSale.
type SaleRequest struct {
	SiteID    SiteID
	ProductID ProductID
	Quantity  int
}

// SaleReceipt is what a successful sale wrote. Profit is nil when the sale
// produced no positive profit.
type SaleReceipt struct {
	Sale   Sale
	Profit *CashTransaction
}

// SaleEngine records sales.
type SaleEngine struct {
	Store TxStore
	Clock Clock
}

func NewSaleEngine(store TxStore) *SaleEngine {
	return &SaleEngine{Store: store}
}

// RecordSale validates and executes a sale atomically.
func (e *SaleEngine) RecordSale(ctx context.Context, req SaleRequest) (SaleReceipt, error) {
	if req.Quantity <= 0 {
		return SaleReceipt{}, invalidQty("quantity", "must be greater than zero")
	}
	if req.SiteID == "" {
		return SaleReceipt{}, invalid("site_id", "is required")
	}
	if req.ProductID == "" {
		return SaleReceipt{}, invalid("product_id", "is required")
	}

	var receipt SaleReceipt
	err := e.Store.WithTx(ctx, func(s Store) error {
		item, err := s.FindStockItem(ctx, req.SiteID, req.ProductID)
		if err != nil {
			return err
		}
		if item == nil || item.Quantity < req.Quantity {
			available := 0
			if item != nil {
				available = item.Quantity
			}
			return &InsufficientStockError{
				SiteID:    req.SiteID,
				ProductID: req.ProductID,
				Available: available,
				Requested: req.Quantity,
			}
		}

		product, err := s.GetProduct(ctx, req.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return ErrProductNotFound
		}

		item.Quantity -= req.Quantity
		if err := s.UpdateStockItem(ctx, *item); err != nil {
			return err
		}

		now := e.Clock.now()
		qty := decimal.NewFromInt(int64(req.Quantity))
		sale := Sale{
			ID:           SaleID(newID()),
			SiteID:       req.SiteID,
			ProductID:    req.ProductID,
			Quantity:     req.Quantity,
			TotalCost:    product.CostPrice.Mul(qty),
			TotalRevenue: product.SalePrice.Mul(qty),
			SoldAt:       now,
		}
		if err := s.InsertSale(ctx, sale); err != nil {
			return err
		}
		receipt.Sale = sale

		profit := sale.Profit()
		if !profit.IsPositive() {
			return nil
		}
		entry := CashTransaction{
			ID:          TransactionID(newID()),
			Kind:        KindInflow,
			Amount:      profit,
			Description: fmt.Sprintf("Sale profit: %dx %s", req.Quantity, product.Name),
			Responsible: SystemResponsible,
			CreatedAt:   now,
		}
		if err := s.AppendCash(ctx, entry); err != nil {
			return err
		}
		receipt.Profit = &entry
		return nil
	})
	if err != nil {
		return SaleReceipt{}, err
	}
	return receipt, nil
}
