/*
Package payment turns Mercado Pago payment confirmations into sales.

PURPOSE:
  The fridges are paid through Mercado Pago. Each confirmed payment lists
  what was bought as line items titled "<Product> (<Site>)". The processor
  resolves those names and drives the Sale Engine once per item.

BEST EFFORT:
  Items are processed sequentially and independently. A bad item is
  skipped with an explicit reason and never rolls back or blocks the next
  one. Each sale is still all-or-nothing on its own. The HTTP handler
  acknowledges every delivery with 200 regardless of the report, so the
  provider does not retry because of partial internal failures.

SKIP REASONS:
  malformed_title     title is not "<Product> (<Site>)"
  invalid_quantity    quantity missing, non-numeric or not positive
  not_found           product or site name does not resolve
  insufficient_stock  the Sale Engine rejected the sale
  failed              any other error (logged at error level)
*/
package payment

import (
	"context"
	"errors"

	"github.com/warp/fridge-ledger/fridge"
	"github.com/warp/fridge-ledger/metrics"
	"go.uber.org/zap"
)

// =============================================================================
// COLLABORATORS
// =============================================================================

// Source fetches payment details by id.
type Source interface {
	GetPayment(ctx context.Context, id string) (*Payment, error)
}

// Directory resolves names carried in item titles.
type Directory interface {
	FindProductByName(ctx context.Context, name string) (*fridge.Product, error)
	FindSiteByName(ctx context.Context, name string) (*fridge.Site, error)
}

// SaleRecorder is satisfied by *fridge.SaleEngine.
type SaleRecorder interface {
	RecordSale(ctx context.Context, req fridge.SaleRequest) (fridge.SaleReceipt, error)
}

// =============================================================================
// REPORT
// =============================================================================

type Outcome string

const (
	OutcomeRecorded Outcome = "recorded"
	OutcomeSkipped  Outcome = "skipped"
)

type SkipReason string

const (
	ReasonMalformedTitle    SkipReason = "malformed_title"
	ReasonInvalidQuantity   SkipReason = "invalid_quantity"
	ReasonNotFound          SkipReason = "not_found"
	ReasonInsufficientStock SkipReason = "insufficient_stock"
	ReasonFailed            SkipReason = "failed"
)

// ItemResult is the outcome of one line item.
type ItemResult struct {
	Index    int
	Title    string
	Quantity int
	Outcome  Outcome
	Reason   SkipReason
	Detail   string
	SaleID   fridge.SaleID
}

// Report collects the per-item outcomes of one notification. Ignored is set
// when the whole notification was not processed (wrong type, payment not
// approved) and Items is then empty.
type Report struct {
	PaymentID string
	Status    string
	Ignored   string
	Items     []ItemResult
}

func (r Report) Recorded() int { return r.count(OutcomeRecorded) }
func (r Report) Skipped() int  { return r.count(OutcomeSkipped) }

func (r Report) count(o Outcome) int {
	n := 0
	for _, item := range r.Items {
		if item.Outcome == o {
			n++
		}
	}
	return n
}

// =============================================================================
// PROCESSOR
// =============================================================================

// Processor handles webhook notifications.
type Processor struct {
	source    Source
	directory Directory
	sales     SaleRecorder
	metrics   *metrics.Collector
	logger    *zap.Logger
}

func NewProcessor(source Source, directory Directory, sales SaleRecorder, m *metrics.Collector, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		source:    source,
		directory: directory,
		sales:     sales,
		metrics:   m,
		logger:    logger.Named("webhook"),
	}
}

// HandleNotification fetches the payment behind n and processes its items
// when it is approved. The only error returned is a failure to fetch the
// payment; callers log it and still acknowledge the delivery.
func (p *Processor) HandleNotification(ctx context.Context, n Notification) (Report, error) {
	id := n.Data.ID.String()
	report := Report{PaymentID: id}

	if n.Type != TypePayment {
		report.Ignored = "notification type " + n.Type
		p.logger.Debug("ignoring notification", zap.String("type", n.Type), zap.String("payment_id", id))
		return report, nil
	}
	if id == "" {
		report.Ignored = "missing payment id"
		p.logger.Warn("payment notification without id")
		return report, nil
	}

	payment, err := p.source.GetPayment(ctx, id)
	if err != nil {
		p.logger.Error("failed to fetch payment", zap.String("payment_id", id), zap.Error(err))
		return report, err
	}
	report.Status = payment.Status

	if payment.Status != StatusApproved {
		report.Ignored = "payment status " + payment.Status
		p.logger.Info("payment not approved, nothing to record",
			zap.String("payment_id", id), zap.String("status", payment.Status))
		return report, nil
	}

	report.Items = p.ProcessItems(ctx, id, payment.AdditionalInfo.Items)
	p.logger.Info("payment processed",
		zap.String("payment_id", id),
		zap.Int("recorded", report.Recorded()),
		zap.Int("skipped", report.Skipped()),
	)
	return report, nil
}

// ProcessItems records one sale per item, in order.
func (p *Processor) ProcessItems(ctx context.Context, paymentID string, items []Item) []ItemResult {
	results := make([]ItemResult, 0, len(items))
	for i, item := range items {
		res := p.processItem(ctx, item)
		res.Index = i
		p.observe(paymentID, res)
		results = append(results, res)
	}
	return results
}

func (p *Processor) processItem(ctx context.Context, item Item) ItemResult {
	res := ItemResult{Title: item.Title, Quantity: int(item.Quantity)}
	skip := func(reason SkipReason, detail string) ItemResult {
		res.Outcome, res.Reason, res.Detail = OutcomeSkipped, reason, detail
		return res
	}

	productName, siteName, err := ParseItemTitle(item.Title)
	if err != nil {
		return skip(ReasonMalformedTitle, err.Error())
	}
	if res.Quantity <= 0 {
		return skip(ReasonInvalidQuantity, "quantity must be a positive whole number")
	}

	product, err := p.directory.FindProductByName(ctx, productName)
	if err != nil {
		return skip(ReasonFailed, err.Error())
	}
	if product == nil {
		return skip(ReasonNotFound, "unknown product "+productName)
	}
	site, err := p.directory.FindSiteByName(ctx, siteName)
	if err != nil {
		return skip(ReasonFailed, err.Error())
	}
	if site == nil {
		return skip(ReasonNotFound, "unknown site "+siteName)
	}

	receipt, err := p.sales.RecordSale(ctx, fridge.SaleRequest{
		SiteID:    site.ID,
		ProductID: product.ID,
		Quantity:  res.Quantity,
	})
	switch {
	case errors.Is(err, fridge.ErrInsufficientStock):
		return skip(ReasonInsufficientStock, err.Error())
	case errors.Is(err, fridge.ErrInvalidQuantity):
		return skip(ReasonInvalidQuantity, err.Error())
	case err != nil:
		return skip(ReasonFailed, err.Error())
	}

	res.Outcome = OutcomeRecorded
	res.SaleID = receipt.Sale.ID
	if receipt.Profit != nil {
		p.metrics.CashPosted(string(receipt.Profit.Kind))
	}
	return res
}

func (p *Processor) observe(paymentID string, res ItemResult) {
	p.metrics.WebhookItem(string(res.Outcome), string(res.Reason))

	fields := []zap.Field{
		zap.String("payment_id", paymentID),
		zap.Int("item", res.Index),
		zap.String("title", res.Title),
		zap.Int("quantity", res.Quantity),
	}
	switch {
	case res.Outcome == OutcomeRecorded:
		p.metrics.SaleRecorded("webhook")
		p.logger.Info("item recorded", append(fields, zap.String("sale_id", string(res.SaleID)))...)
	case res.Reason == ReasonFailed:
		p.metrics.SaleRejected(string(res.Reason))
		p.logger.Error("item failed", append(fields, zap.String("error", res.Detail))...)
	default:
		if res.Reason == ReasonInsufficientStock {
			p.metrics.SaleRejected(string(res.Reason))
		}
		p.logger.Warn("item skipped", append(fields,
			zap.String("reason", string(res.Reason)),
			zap.String("detail", res.Detail))...)
	}
}
