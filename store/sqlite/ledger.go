package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/warp/fridge-ledger/fridge"
)

// =============================================================================
// SALES (fridge.SaleStore) - append-only, no UPDATE or DELETE here
// =============================================================================

func (q queries) InsertSale(ctx context.Context, s fridge.Sale) error {
	query := `
		INSERT INTO sales (id, site_id, product_id, quantity, total_cost, total_revenue, sold_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := q.db.ExecContext(ctx, query,
		s.ID, s.SiteID, s.ProductID, s.Quantity,
		s.TotalCost.String(), s.TotalRevenue.String(), formatTime(s.SoldAt))
	if err != nil {
		return fmt.Errorf("failed to insert sale: %w", err)
	}
	return nil
}

func (q queries) ListSalesBySite(ctx context.Context, siteID fridge.SiteID) ([]fridge.Sale, error) {
	query := `
		SELECT id, site_id, product_id, quantity, total_cost, total_revenue, sold_at
		FROM sales
		WHERE site_id = ?
		ORDER BY sold_at ASC, rowid ASC
	`
	rows, err := q.db.QueryContext(ctx, query, siteID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales: %w", err)
	}
	defer rows.Close()

	var sales []fridge.Sale
	for rows.Next() {
		var (
			s      fridge.Sale
			soldAt string
		)
		if err := rows.Scan(&s.ID, &s.SiteID, &s.ProductID, &s.Quantity, &s.TotalCost, &s.TotalRevenue, &soldAt); err != nil {
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}
		if s.SoldAt, err = parseTime(soldAt); err != nil {
			return nil, err
		}
		sales = append(sales, s)
	}
	return sales, rows.Err()
}

// ListSalesBetween returns sales with from <= sold_at < to.
func (q queries) ListSalesBetween(ctx context.Context, from, to time.Time) ([]fridge.SaleRow, error) {
	query := `
		SELECT sa.id, sa.site_id, sa.product_id, sa.quantity, sa.total_cost, sa.total_revenue, sa.sold_at,
		       s.name, p.name
		FROM sales sa
		JOIN sites s ON s.id = sa.site_id
		JOIN products p ON p.id = sa.product_id
		WHERE sa.sold_at >= ? AND sa.sold_at < ?
		ORDER BY sa.sold_at ASC, sa.rowid ASC
	`
	rows, err := q.db.QueryContext(ctx, query, formatTime(from), formatTime(to))
	if err != nil {
		return nil, fmt.Errorf("failed to query sales report: %w", err)
	}
	defer rows.Close()

	var out []fridge.SaleRow
	for rows.Next() {
		var (
			r      fridge.SaleRow
			soldAt string
		)
		err := rows.Scan(&r.ID, &r.SiteID, &r.ProductID, &r.Quantity, &r.TotalCost, &r.TotalRevenue, &soldAt,
			&r.SiteName, &r.ProductName)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sales report row: %w", err)
		}
		if r.SoldAt, err = parseTime(soldAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// =============================================================================
// CASH LEDGER (fridge.CashStore) - append-only
// =============================================================================

func (q queries) AppendCash(ctx context.Context, tx fridge.CashTransaction) error {
	query := `
		INSERT INTO cash_transactions (id, kind, amount, description, responsible, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := q.db.ExecContext(ctx, query,
		tx.ID, string(tx.Kind), tx.Amount.String(), tx.Description, tx.Responsible, formatTime(tx.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to append cash transaction: %w", err)
	}
	return nil
}

// ListCash returns the whole ledger, newest first. Entries sharing a
// timestamp come back in reverse insertion order.
func (q queries) ListCash(ctx context.Context) ([]fridge.CashTransaction, error) {
	query := `
		SELECT id, kind, amount, description, responsible, created_at
		FROM cash_transactions
		ORDER BY created_at DESC, rowid DESC
	`
	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query cash transactions: %w", err)
	}
	defer rows.Close()

	var txs []fridge.CashTransaction
	for rows.Next() {
		var (
			tx        fridge.CashTransaction
			createdAt string
		)
		if err := rows.Scan(&tx.ID, &tx.Kind, &tx.Amount, &tx.Description, &tx.Responsible, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan cash transaction: %w", err)
		}
		if tx.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}
