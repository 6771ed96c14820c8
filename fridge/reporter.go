/*
reporter.go - Financial Reporter

PURPOSE:
  Read-only aggregation over sales and sites. Nothing here writes.

SITE FINANCIALS:
  revenue             = sum(sale.TotalRevenue)
  costOfGoods         = sum(sale.TotalCost)
  grossProfit         = revenue - costOfGoods
  netProfit           = grossProfit - fixedExpenses
  commission          = netProfit * 0.02   only when netProfit > 0
  remainingInvestment = investment - grossProfit

  remainingInvestment goes negative once the investment has been recovered;
  the surplus is reported as-is. No rounding is applied here.

  An unknown site reports zero investment and zero expenses instead of an
  error.

SALES REPORT:
  Every sale from the first instant of the start date through the last
  instant of the end date, ascending by time, with profit per row.
*/
package fridge

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// CommissionRate applies to positive net profit.
var CommissionRate = decimal.RequireFromString("0.02")

// SiteFinancials is the P&L and investment recovery for one site.
type SiteFinancials struct {
	SiteID              SiteID
	InitialInvestment   decimal.Decimal
	RemainingInvestment decimal.Decimal
	Expenses            decimal.Decimal
	Revenue             decimal.Decimal
	CostOfGoods         decimal.Decimal
	GrossProfit         decimal.Decimal
	NetProfit           decimal.Decimal
	Commission          decimal.Decimal
}

// SalesReportRow is one sale with its computed profit.
type SalesReportRow struct {
	SaleRow
	Profit decimal.Decimal
}

// Reporter computes financial views.
type Reporter struct {
	Store Store
}

func NewReporter(store Store) *Reporter {
	return &Reporter{Store: store}
}

// SiteFinancials aggregates all of a site's sales.
func (r *Reporter) SiteFinancials(ctx context.Context, siteID SiteID) (SiteFinancials, error) {
	site, err := r.Store.GetSite(ctx, siteID)
	if err != nil {
		return SiteFinancials{}, err
	}
	investment, expenses := decimal.Zero, decimal.Zero
	if site != nil {
		investment, expenses = site.Investment, site.FixedExpenses
	}

	sales, err := r.Store.ListSalesBySite(ctx, siteID)
	if err != nil {
		return SiteFinancials{}, err
	}
	return ComputeFinancials(siteID, investment, expenses, sales), nil
}

// ComputeFinancials is the pure calculation behind SiteFinancials.
func ComputeFinancials(siteID SiteID, investment, expenses decimal.Decimal, sales []Sale) SiteFinancials {
	revenue, cost := decimal.Zero, decimal.Zero
	for _, s := range sales {
		revenue = revenue.Add(s.TotalRevenue)
		cost = cost.Add(s.TotalCost)
	}

	gross := revenue.Sub(cost)
	net := gross.Sub(expenses)
	commission := decimal.Zero
	if net.IsPositive() {
		commission = net.Mul(CommissionRate)
	}

	return SiteFinancials{
		SiteID:              siteID,
		InitialInvestment:   investment,
		RemainingInvestment: investment.Sub(gross),
		Expenses:            expenses,
		Revenue:             revenue,
		CostOfGoods:         cost,
		GrossProfit:         gross,
		NetProfit:           net,
		Commission:          commission,
	}
}

// SalesReport lists sales between two calendar dates, both inclusive.
func (r *Reporter) SalesReport(ctx context.Context, start, end time.Time) ([]SalesReportRow, error) {
	from, to, err := DayRange(start, end)
	if err != nil {
		return nil, err
	}
	rows, err := r.Store.ListSalesBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	report := make([]SalesReportRow, len(rows))
	for i, row := range rows {
		report[i] = SalesReportRow{SaleRow: row, Profit: row.Profit()}
	}
	return report, nil
}
