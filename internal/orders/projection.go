package orders

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/newsly/sandbox/internal/ledger"
)

// ProjectedTransaction is a transaction plus its derived display fields.
// Decimal fields marshal as JSON strings, preserving precision.
//
// Diff stays nil while the position is open so a real zero P&L is
// distinguishable from "not sold yet". DiffDollar is deliberately a real
// zero for open positions; the two policies differ on purpose.
type ProjectedTransaction struct {
	ledger.Transaction
	Diff          *decimal.Decimal `json:"diff,omitempty"`
	BuyAggregate  decimal.Decimal  `json:"buyAggregate"`
	SellAggregate *decimal.Decimal `json:"sellAggregate,omitempty"`
	DiffDollar    decimal.Decimal  `json:"diffDollar"`
}

// Project computes the derived fields for one transaction. Pure.
func Project(t ledger.Transaction) ProjectedTransaction {
	p := ProjectedTransaction{
		Transaction:  t,
		BuyAggregate: t.BuyPrice.Mul(t.Quantity),
		DiffDollar:   decimal.Zero,
	}
	if t.SellPrice != nil {
		diff := t.SellPrice.Sub(t.BuyPrice)
		p.Diff = &diff
		sellAgg := t.SellPrice.Mul(t.Quantity)
		p.SellAggregate = &sellAgg
	}
	if t.Status == ledger.StatusClosed && t.SellPrice != nil {
		p.DiffDollar = t.SellPrice.Sub(t.BuyPrice).Mul(t.Quantity)
	}
	return p
}

// UniqueSymbols returns the sorted distinct symbols in the sequence.
func UniqueSymbols(txs []ledger.Transaction) []string {
	seen := make(map[string]struct{}, len(txs))
	out := make([]string, 0, len(txs))
	for _, t := range txs {
		if _, ok := seen[t.Symbol]; ok {
			continue
		}
		seen[t.Symbol] = struct{}{}
		out = append(out, t.Symbol)
	}
	sort.Strings(out)
	return out
}
