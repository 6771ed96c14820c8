/*
cash.go - Central cash ledger

PURPOSE:
  Append-only record of money moving in and out of the operation. The
  balance is never stored: it is recomputed by replaying the log, so it can
  always be reconciled against the transactions themselves.

    balance = sum(inflow amounts) - sum(outflow amounts)

SEE ALSO:
  - sales.go: posts sale profit here automatically
*/
package fridge

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
)

// CashLedger records manual cash movements and reports the balance.
type CashLedger struct {
	Store CashStore
	Clock Clock
}

func NewCashLedger(store CashStore) *CashLedger {
	return &CashLedger{Store: store}
}

// PostCash is the input for Post. Responsible is optional.
type PostCash struct {
	Kind        TxKind
	Amount      decimal.Decimal
	Description string
	Responsible string
}

// CashSummary is the balance together with the log it was computed from.
type CashSummary struct {
	Balance      decimal.Decimal
	Transactions []CashTransaction
}

// Post validates and appends one transaction.
func (l *CashLedger) Post(ctx context.Context, in PostCash) (CashTransaction, error) {
	if !in.Kind.Valid() {
		return CashTransaction{}, invalidTx("kind", "must be inflow or outflow")
	}
	if !in.Amount.IsPositive() {
		return CashTransaction{}, invalidTx("amount", "must be greater than zero")
	}
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return CashTransaction{}, invalidTx("description", "is required")
	}

	tx := CashTransaction{
		ID:          TransactionID(newID()),
		Kind:        in.Kind,
		Amount:      in.Amount,
		Description: desc,
		Responsible: strings.TrimSpace(in.Responsible),
		CreatedAt:   l.Clock.now(),
	}
	if err := l.Store.AppendCash(ctx, tx); err != nil {
		return CashTransaction{}, err
	}
	return tx, nil
}

// Transactions returns the full log, newest first.
func (l *CashLedger) Transactions(ctx context.Context) ([]CashTransaction, error) {
	return l.Store.ListCash(ctx)
}

// CurrentBalance replays the log.
func (l *CashLedger) CurrentBalance(ctx context.Context) (decimal.Decimal, error) {
	txs, err := l.Store.ListCash(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return Balance(txs), nil
}

// Summary returns the balance and the log it was computed from, read once so
// the two always agree.
func (l *CashLedger) Summary(ctx context.Context) (CashSummary, error) {
	txs, err := l.Store.ListCash(ctx)
	if err != nil {
		return CashSummary{}, err
	}
	if txs == nil {
		txs = []CashTransaction{}
	}
	return CashSummary{Balance: Balance(txs), Transactions: txs}, nil
}

// Balance is sum(inflow) - sum(outflow) over txs.
func Balance(txs []CashTransaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		total = total.Add(tx.Signed())
	}
	return total
}
