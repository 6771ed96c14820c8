package fridge_test

import (
	"context"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/fridge-ledger/fridge"
)

func TestCashPost_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name string
		in   fridge.PostCash
	}{
		{"unknown kind", fridge.PostCash{Kind: "deposit", Amount: dec("10"), Description: "x"}},
		{"empty kind", fridge.PostCash{Amount: dec("10"), Description: "x"}},
		{"zero amount", fridge.PostCash{Kind: fridge.KindInflow, Amount: decimal.Zero, Description: "x"}},
		{"negative amount", fridge.PostCash{Kind: fridge.KindOutflow, Amount: dec("-5"), Description: "x"}},
		{"blank description", fridge.PostCash{Kind: fridge.KindInflow, Amount: dec("10"), Description: "  "}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.cash.Post(ctx, tc.in)
			assert.ErrorIs(t, err, fridge.ErrInvalidTransaction)
		})
	}

	txs, err := f.cash.Transactions(ctx)
	require.NoError(t, err)
	assert.Empty(t, txs, "rejected posts write nothing")
}

func TestCash_NewestFirstAndBalance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.cash.Post(ctx, fridge.PostCash{Kind: fridge.KindInflow, Amount: dec("100"), Description: "seed money", Responsible: "Ana"})
	require.NoError(t, err)
	_, err = f.cash.Post(ctx, fridge.PostCash{Kind: fridge.KindOutflow, Amount: dec("30.50"), Description: "restock"})
	require.NoError(t, err)

	summary, err := f.cash.Summary(ctx)
	require.NoError(t, err)
	assertDecimal(t, "69.50", summary.Balance)
	require.Len(t, summary.Transactions, 2)
	assert.Equal(t, "restock", summary.Transactions[0].Description)
	assert.Equal(t, "Ana", summary.Transactions[1].Responsible)
}

func TestCash_BalanceMatchesReplay(t *testing.T) {
	// Property: for any sequence of posts, the balance equals
	// sum(inflow) - sum(outflow) recomputed from the full log.

	faker := gofakeit.New(42)
	for round := 0; round < 20; round++ {
		f := newFixture(t)
		ctx := context.Background()

		want := decimal.Zero
		n := faker.IntRange(1, 40)
		for i := 0; i < n; i++ {
			kind := fridge.KindInflow
			if faker.Bool() {
				kind = fridge.KindOutflow
			}
			amount := decimal.NewFromFloat(faker.Float64Range(0.01, 500)).Round(2)
			if !amount.IsPositive() {
				amount = dec("0.01")
			}
			_, err := f.cash.Post(ctx, fridge.PostCash{Kind: kind, Amount: amount, Description: faker.Sentence(3)})
			require.NoError(t, err)
			if kind == fridge.KindInflow {
				want = want.Add(amount)
			} else {
				want = want.Sub(amount)
			}
		}

		got, err := f.cash.CurrentBalance(ctx)
		require.NoError(t, err)
		assert.Truef(t, got.Equal(want), "round %d: want %s, got %s", round, want, got)

		txs, err := f.cash.Transactions(ctx)
		require.NoError(t, err)
		assert.True(t, fridge.Balance(txs).Equal(got))
	}
}
