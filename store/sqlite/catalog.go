package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/fridge-ledger/fridge"
)

// =============================================================================
// PRODUCTS (fridge.CatalogStore)
// =============================================================================

const productColumns = `id, name, cost_price, sale_price, created_at`

// SaveProduct inserts or updates a product.
func (q queries) SaveProduct(ctx context.Context, p fridge.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			cost_price = excluded.cost_price,
			sale_price = excluded.sale_price
	`
	_, err := q.db.ExecContext(ctx, query,
		p.ID, p.Name, p.CostPrice.String(), p.SalePrice.String(), formatTime(p.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to save product: %w", err)
	}
	return nil
}

func (q queries) GetProduct(ctx context.Context, id fridge.ProductID) (*fridge.Product, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id)
	return scanProduct(row)
}

// FindProductByName returns the oldest product with that exact name.
func (q queries) FindProductByName(ctx context.Context, name string) (*fridge.Product, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE name = ? ORDER BY created_at, rowid LIMIT 1`, name)
	return scanProduct(row)
}

func (q queries) ListProducts(ctx context.Context) ([]fridge.Product, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY name, created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []fridge.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

// DeleteProduct removes the product. Stock and sales go with it through
// ON DELETE CASCADE.
func (q queries) DeleteProduct(ctx context.Context, id fridge.ProductID) error {
	if _, err := q.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*fridge.Product, error) {
	var (
		p         fridge.Product
		createdAt string
	)
	err := row.Scan(&p.ID, &p.Name, &p.CostPrice, &p.SalePrice, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan product: %w", err)
	}
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// =============================================================================
// SITES (fridge.SiteStore)
// =============================================================================

const siteColumns = `id, name, responsible, address, investment, fixed_expenses, created_at`

// SaveSite inserts or updates a site.
func (q queries) SaveSite(ctx context.Context, s fridge.Site) error {
	query := `
		INSERT INTO sites (` + siteColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			responsible = excluded.responsible,
			address = excluded.address,
			investment = excluded.investment,
			fixed_expenses = excluded.fixed_expenses
	`
	_, err := q.db.ExecContext(ctx, query,
		s.ID, s.Name, s.Responsible, s.Address,
		s.Investment.String(), s.FixedExpenses.String(), formatTime(s.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to save site: %w", err)
	}
	return nil
}

func (q queries) GetSite(ctx context.Context, id fridge.SiteID) (*fridge.Site, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+siteColumns+` FROM sites WHERE id = ?`, id)
	return scanSite(row)
}

// FindSiteByName returns the oldest site with that exact name.
func (q queries) FindSiteByName(ctx context.Context, name string) (*fridge.Site, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+siteColumns+` FROM sites WHERE name = ? ORDER BY created_at, rowid LIMIT 1`, name)
	return scanSite(row)
}

func (q queries) ListSites(ctx context.Context) ([]fridge.Site, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+siteColumns+` FROM sites ORDER BY name, created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sites: %w", err)
	}
	defer rows.Close()

	var sites []fridge.Site
	for rows.Next() {
		s, err := scanSite(rows)
		if err != nil {
			return nil, err
		}
		sites = append(sites, *s)
	}
	return sites, rows.Err()
}

func (q queries) UpdateSiteExpenses(ctx context.Context, id fridge.SiteID, expenses decimal.Decimal) (bool, error) {
	res, err := q.db.ExecContext(ctx,
		`UPDATE sites SET fixed_expenses = ? WHERE id = ?`, expenses.String(), id)
	if err != nil {
		return false, fmt.Errorf("failed to update site expenses: %w", err)
	}
	return affected(res)
}

// DeleteSite removes the site. Stock and sales go with it through
// ON DELETE CASCADE.
func (q queries) DeleteSite(ctx context.Context, id fridge.SiteID) error {
	if _, err := q.db.ExecContext(ctx, `DELETE FROM sites WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete site: %w", err)
	}
	return nil
}

func scanSite(row rowScanner) (*fridge.Site, error) {
	var (
		s         fridge.Site
		createdAt string
	)
	err := row.Scan(&s.ID, &s.Name, &s.Responsible, &s.Address, &s.Investment, &s.FixedExpenses, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan site: %w", err)
	}
	if s.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &s, nil
}
