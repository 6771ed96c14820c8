package fridge_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/fridge-ledger/fridge"
)

func TestUpsert_MergesIntoSingleRow(t *testing.T) {
	// GIVEN: 5 units added, then 3 more for the same pair
	// THEN: one row with 8, threshold taken from the latest call

	f := newFixture(t)
	ctx := context.Background()
	soda := f.product(t, "Soda", "1.00", "3.00")
	site := f.site(t, "Alpha", "0")

	first := f.stockUp(t, site, soda, 5, 1)
	second := f.stockUp(t, site, soda, 3, 4)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 8, second.Quantity)
	assert.Equal(t, 4, second.CriticalThreshold)

	rows, err := f.stock.SiteStock(ctx, site.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 8, rows[0].Quantity)
	assert.Equal(t, "Soda", rows[0].ProductName)
}

func TestUpsert_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	soda := f.product(t, "Soda", "1.00", "3.00")
	site := f.site(t, "Alpha", "0")

	_, err := f.stock.Upsert(ctx, fridge.UpsertStock{SiteID: site.ID, ProductID: soda.ID, QuantityDelta: -1})
	assert.ErrorIs(t, err, fridge.ErrInvalidQuantity, "new row cannot start negative")

	_, err = f.stock.Upsert(ctx, fridge.UpsertStock{SiteID: site.ID, ProductID: soda.ID, QuantityDelta: 1, CriticalThreshold: -1})
	assert.ErrorIs(t, err, fridge.ErrValidation)

	_, err = f.stock.Upsert(ctx, fridge.UpsertStock{SiteID: "nope", ProductID: soda.ID, QuantityDelta: 1})
	assert.ErrorIs(t, err, fridge.ErrSiteNotFound)

	_, err = f.stock.Upsert(ctx, fridge.UpsertStock{SiteID: site.ID, ProductID: "nope", QuantityDelta: 1})
	assert.ErrorIs(t, err, fridge.ErrProductNotFound)

	f.stockUp(t, site, soda, 2, 0)
	_, err = f.stock.Upsert(ctx, fridge.UpsertStock{SiteID: site.ID, ProductID: soda.ID, QuantityDelta: -3})
	assert.ErrorIs(t, err, fridge.ErrInvalidQuantity)
	assert.Equal(t, 2, f.quantity(t, site, soda), "rejected upsert leaves stock untouched")

	item := f.stockUp(t, site, soda, -2, 0)
	assert.Equal(t, 0, item.Quantity, "negative delta down to exactly zero is allowed")
}

func TestReplenish(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	soda := f.product(t, "Soda", "1.00", "3.00")
	site := f.site(t, "Alpha", "0")
	item := f.stockUp(t, site, soda, 2, 3)

	found, err := f.stock.Replenish(ctx, item.ID, 10)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 12, f.quantity(t, site, soda))

	found, err = f.stock.Replenish(ctx, "missing", 10)
	require.NoError(t, err, "missing item is a silent no-op")
	assert.False(t, found)
}

func TestLowStock_OrderedBySiteThenProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	water := f.product(t, "Water", "1.00", "2.00")
	chips := f.product(t, "Chips", "1.00", "2.00")
	beta := f.site(t, "Beta", "0")
	alpha := f.site(t, "Alpha", "0")

	f.stockUp(t, beta, water, 1, 2)
	f.stockUp(t, alpha, water, 2, 2) // exactly at threshold counts as low
	f.stockUp(t, alpha, chips, 0, 1)
	f.stockUp(t, beta, chips, 9, 2) // healthy

	rows, err := f.stock.LowStock(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"Alpha/Chips", "Alpha/Water", "Beta/Water"}, []string{
		rows[0].SiteName + "/" + rows[0].ProductName,
		rows[1].SiteName + "/" + rows[1].ProductName,
		rows[2].SiteName + "/" + rows[2].ProductName,
	})
	assert.Equal(t, "Alpha street", rows[0].SiteAddress)
}

func TestDeleteSite_CascadesStockAndSales(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	soda := f.product(t, "Soda", "1.00", "3.00")
	site := f.site(t, "Alpha", "0")
	f.stockUp(t, site, soda, 5, 1)
	_, err := f.sales.RecordSale(ctx, fridge.SaleRequest{SiteID: site.ID, ProductID: soda.ID, Quantity: 1})
	require.NoError(t, err)

	require.NoError(t, f.catalog.DeleteSite(ctx, site.ID))

	item, err := f.store.FindStockItem(ctx, site.ID, soda.ID)
	require.NoError(t, err)
	assert.Nil(t, item)
	sales, err := f.store.ListSalesBySite(ctx, site.ID)
	require.NoError(t, err)
	assert.Empty(t, sales)

	txs, err := f.cash.Transactions(ctx)
	require.NoError(t, err)
	assert.Len(t, txs, 1, "cash ledger is not part of the cascade")
}

func TestDeleteProduct_CascadesStockAndSales(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	soda := f.product(t, "Soda", "1.00", "3.00")
	site := f.site(t, "Alpha", "0")
	f.stockUp(t, site, soda, 5, 1)
	_, err := f.sales.RecordSale(ctx, fridge.SaleRequest{SiteID: site.ID, ProductID: soda.ID, Quantity: 1})
	require.NoError(t, err)

	require.NoError(t, f.catalog.DeleteProduct(ctx, soda.ID))

	rows, err := f.stock.SiteStock(ctx, site.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)
	sales, err := f.store.ListSalesBySite(ctx, site.ID)
	require.NoError(t, err)
	assert.Empty(t, sales)
}

func TestCatalog_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.catalog.CreateProduct(ctx, fridge.NewProduct{Name: " ", CostPrice: dec("1"), SalePrice: dec("2")})
	assert.ErrorIs(t, err, fridge.ErrValidation)

	_, err = f.catalog.CreateProduct(ctx, fridge.NewProduct{Name: "Soda", CostPrice: dec("-1"), SalePrice: dec("2")})
	assert.ErrorIs(t, err, fridge.ErrInvalidPrice)
	assert.ErrorIs(t, err, fridge.ErrValidation)

	site, err := f.catalog.CreateSite(ctx, fridge.NewSite{Name: "Alpha", Investment: dec("1000")})
	require.NoError(t, err)
	assertDecimal(t, "200.00", site.FixedExpenses, "default fixed expenses")

	require.NoError(t, f.catalog.UpdateSiteExpenses(ctx, site.ID, dec("350")))
	got, err := f.store.GetSite(ctx, site.ID)
	require.NoError(t, err)
	assertDecimal(t, "350", got.FixedExpenses)

	assert.ErrorIs(t, f.catalog.UpdateSiteExpenses(ctx, "missing", dec("1")), fridge.ErrSiteNotFound)
	assert.ErrorIs(t, f.catalog.UpdateSiteExpenses(ctx, site.ID, dec("-1")), fridge.ErrValidation)
}
