package fridge

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CATALOG - Products and sites
// =============================================================================

// Catalog manages products and condominium sites.
type Catalog struct {
	Store Store
	Clock Clock
}

func NewCatalog(store Store) *Catalog {
	return &Catalog{Store: store}
}

// NewProduct is the input for CreateProduct.
type NewProduct struct {
	Name      string
	CostPrice decimal.Decimal
	SalePrice decimal.Decimal
}

// NewSite is the input for CreateSite. FixedExpenses defaults to
// DefaultFixedExpenses when nil.
type NewSite struct {
	Name          string
	Responsible   string
	Address       string
	Investment    decimal.Decimal
	FixedExpenses *decimal.Decimal
}

func (c *Catalog) CreateProduct(ctx context.Context, in NewProduct) (Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Product{}, invalid("name", "is required")
	}
	if in.CostPrice.IsNegative() {
		return Product{}, invalidPrice("cost_price", "must not be negative")
	}
	if in.SalePrice.IsNegative() {
		return Product{}, invalidPrice("sale_price", "must not be negative")
	}

	p := Product{
		ID:        ProductID(newID()),
		Name:      name,
		CostPrice: in.CostPrice,
		SalePrice: in.SalePrice,
		CreatedAt: c.Clock.now(),
	}
	if err := c.Store.SaveProduct(ctx, p); err != nil {
		return Product{}, err
	}
	return p, nil
}

func (c *Catalog) Products(ctx context.Context) ([]Product, error) {
	return c.Store.ListProducts(ctx)
}

// DeleteProduct removes a product together with its stock and sales.
// This is irreversible.
func (c *Catalog) DeleteProduct(ctx context.Context, id ProductID) error {
	return c.Store.DeleteProduct(ctx, id)
}

func (c *Catalog) CreateSite(ctx context.Context, in NewSite) (Site, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Site{}, invalid("name", "is required")
	}
	if in.Investment.IsNegative() {
		return Site{}, invalid("investment", "must not be negative")
	}
	expenses := DefaultFixedExpenses
	if in.FixedExpenses != nil {
		expenses = *in.FixedExpenses
	}
	if expenses.IsNegative() {
		return Site{}, invalid("fixed_expenses", "must not be negative")
	}

	s := Site{
		ID:            SiteID(newID()),
		Name:          name,
		Responsible:   strings.TrimSpace(in.Responsible),
		Address:       strings.TrimSpace(in.Address),
		Investment:    in.Investment,
		FixedExpenses: expenses,
		CreatedAt:     c.Clock.now(),
	}
	if err := c.Store.SaveSite(ctx, s); err != nil {
		return Site{}, err
	}
	return s, nil
}

func (c *Catalog) Sites(ctx context.Context) ([]Site, error) {
	return c.Store.ListSites(ctx)
}

// DeleteSite removes a site together with its stock and sales.
// This is irreversible.
func (c *Catalog) DeleteSite(ctx context.Context, id SiteID) error {
	return c.Store.DeleteSite(ctx, id)
}

// UpdateSiteExpenses overwrites the site's fixed monthly expenses.
func (c *Catalog) UpdateSiteExpenses(ctx context.Context, id SiteID, expenses decimal.Decimal) error {
	if expenses.IsNegative() {
		return invalid("value", "must not be negative")
	}
	ok, err := c.Store.UpdateSiteExpenses(ctx, id, expenses)
	if err != nil {
		return err
	}
	if !ok {
		return ErrSiteNotFound
	}
	return nil
}
