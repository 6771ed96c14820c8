package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/warp/fridge-ledger/fridge"
)

// =============================================================================
// STOCK (fridge.StockStore)
// =============================================================================

const stockColumns = `id, site_id, product_id, quantity, critical_threshold`

func (q queries) GetStockItem(ctx context.Context, id fridge.StockItemID) (*fridge.StockItem, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+stockColumns+` FROM stock_items WHERE id = ?`, id)
	return scanStockItem(row)
}

func (q queries) FindStockItem(ctx context.Context, siteID fridge.SiteID, productID fridge.ProductID) (*fridge.StockItem, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+stockColumns+` FROM stock_items WHERE site_id = ? AND product_id = ?`, siteID, productID)
	return scanStockItem(row)
}

func (q queries) InsertStockItem(ctx context.Context, item fridge.StockItem) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO stock_items (`+stockColumns+`) VALUES (?, ?, ?, ?, ?)`,
		item.ID, item.SiteID, item.ProductID, item.Quantity, item.CriticalThreshold)
	if err != nil {
		return fmt.Errorf("failed to insert stock item: %w", err)
	}
	return nil
}

// UpdateStockItem overwrites quantity and threshold. A missing id updates
// nothing and is not an error.
func (q queries) UpdateStockItem(ctx context.Context, item fridge.StockItem) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE stock_items SET quantity = ?, critical_threshold = ? WHERE id = ?`,
		item.Quantity, item.CriticalThreshold, item.ID)
	if err != nil {
		return fmt.Errorf("failed to update stock item: %w", err)
	}
	return nil
}

func (q queries) DeleteStockItem(ctx context.Context, id fridge.StockItemID) error {
	if _, err := q.db.ExecContext(ctx, `DELETE FROM stock_items WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete stock item: %w", err)
	}
	return nil
}

func (q queries) ListSiteStock(ctx context.Context, siteID fridge.SiteID) ([]fridge.SiteStockRow, error) {
	query := `
		SELECT st.id, st.product_id, p.name, st.quantity, st.critical_threshold
		FROM stock_items st
		JOIN products p ON p.id = st.product_id
		WHERE st.site_id = ?
		ORDER BY p.name, st.rowid
	`
	rows, err := q.db.QueryContext(ctx, query, siteID)
	if err != nil {
		return nil, fmt.Errorf("failed to query site stock: %w", err)
	}
	defer rows.Close()

	var out []fridge.SiteStockRow
	for rows.Next() {
		var r fridge.SiteStockRow
		if err := rows.Scan(&r.StockItemID, &r.ProductID, &r.ProductName, &r.Quantity, &r.CriticalThreshold); err != nil {
			return nil, fmt.Errorf("failed to scan site stock: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (q queries) ListLowStock(ctx context.Context) ([]fridge.LowStockRow, error) {
	query := `
		SELECT st.id, p.name, s.name, s.address, st.quantity, st.critical_threshold
		FROM stock_items st
		JOIN products p ON p.id = st.product_id
		JOIN sites s ON s.id = st.site_id
		WHERE st.quantity <= st.critical_threshold
		ORDER BY s.name, p.name
	`
	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query low stock: %w", err)
	}
	defer rows.Close()

	var out []fridge.LowStockRow
	for rows.Next() {
		var r fridge.LowStockRow
		if err := rows.Scan(&r.StockItemID, &r.ProductName, &r.SiteName, &r.SiteAddress, &r.Quantity, &r.CriticalThreshold); err != nil {
			return nil, fmt.Errorf("failed to scan low stock: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanStockItem(row rowScanner) (*fridge.StockItem, error) {
	var item fridge.StockItem
	err := row.Scan(&item.ID, &item.SiteID, &item.ProductID, &item.Quantity, &item.CriticalThreshold)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan stock item: %w", err)
	}
	return &item, nil
}
