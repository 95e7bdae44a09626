// Package summary turns a raw transaction ledger into monthly income/expense
// totals and per-category rollups, with a time-boxed cache so the remote
// store is not refetched on every request.
package summary

import (
	"sort"
	"strings"

	"sothuchi/internal/core"
)

// Uncategorized is the bucket label for expense rows without a category.
const Uncategorized = "Chưa phân loại"

// Summary holds the aggregated totals for one transaction set.
// Balance always equals TotalIncome - TotalExpense. Skipped counts malformed
// rows that were dropped rather than aborting the whole computation.
type Summary struct {
	TotalIncome  core.Money
	TotalExpense core.Money
	Balance      core.Money
	Skipped      int
}

// CategoryAmount is one entry of the top-expense-categories rollup.
type CategoryAmount struct {
	Category string
	Amount   core.Money
}

// CarLedger aggregates the vehicle operating-cost view: expense rows in the
// car category, with fuel volume carried through for cost-per-liter.
type CarLedger struct {
	TotalCost    core.Money
	TotalLiters  float64
	CostPerLiter core.Money
	Entries      int
}

// ComputeSummary iterates the records once and accumulates totals by type.
// It is pure and order-independent: đồng amounts are integers, so any
// permutation of the same multiset yields an identical result. Records with
// an unknown type or a negative amount are skipped and tallied, never fatal.
// An empty or nil input yields the zero Summary.
func ComputeSummary(txs []core.Transaction) Summary {
	var s Summary
	for _, tx := range txs {
		if tx.Amount.Dong < 0 {
			s.Skipped++
			continue
		}
		switch tx.Type {
		case core.Income:
			s.TotalIncome.Dong += tx.Amount.Dong
		case core.Expense:
			s.TotalExpense.Dong += tx.Amount.Dong
		default:
			s.Skipped++
		}
	}
	s.Balance.Dong = s.TotalIncome.Dong - s.TotalExpense.Dong
	return s
}

// TopCategories groups expense records by category and returns the sums in
// descending order. Ties keep the first-encountered category first (stable
// sort). A limit <= 0 returns all categories. Malformed records are skipped
// with the same rules as ComputeSummary.
func TopCategories(txs []core.Transaction, limit int) []CategoryAmount {
	sums := map[string]int64{}
	order := make([]string, 0)
	for _, tx := range txs {
		if tx.Type != core.Expense || tx.Amount.Dong < 0 {
			continue
		}
		cat := strings.TrimSpace(tx.Category)
		if cat == "" {
			cat = Uncategorized
		}
		if _, seen := sums[cat]; !seen {
			order = append(order, cat)
		}
		sums[cat] += tx.Amount.Dong
	}

	out := make([]CategoryAmount, 0, len(order))
	for _, cat := range order {
		out = append(out, CategoryAmount{Category: cat, Amount: core.Money{Dong: sums[cat]}})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Amount.Dong > out[j].Amount.Dong
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// ComputeCarLedger restricts to expense records in the car category and sums
// cost and fuel volume. CostPerLiter is 0 when no fuel volume was recorded.
func ComputeCarLedger(txs []core.Transaction) CarLedger {
	var cl CarLedger
	for _, tx := range txs {
		if tx.Type != core.Expense || tx.Amount.Dong < 0 {
			continue
		}
		if !strings.EqualFold(strings.TrimSpace(tx.Category), core.CarCategory) {
			continue
		}
		cl.Entries++
		cl.TotalCost.Dong += tx.Amount.Dong
		if tx.FuelLiters > 0 {
			cl.TotalLiters += tx.FuelLiters
		}
	}
	if cl.TotalLiters > 0 {
		cl.CostPerLiter.Dong = int64(float64(cl.TotalCost.Dong)/cl.TotalLiters + 0.5)
	}
	return cl
}
