package models

import "github.com/shopspring/decimal"

// Pure computation for container accounting. Everything here is DB-free so
// the invariants can be tested with synthetic data; the workflow layer loads
// rows, calls these, and writes the results back inside its transaction.

// shareEpsilon is the tolerance for the invested-vs-cost diagnostic.
var shareEpsilon = decimal.NewFromFloat(0.01)

// NormalizeCnyToUsd converts a CNY amount to USD using the container's
// snapshotted rate (CNY per USD). Zero rate yields zero rather than dividing.
func NormalizeCnyToUsd(amountCny decimal.Decimal, cnyPerUsd decimal.Decimal) decimal.Decimal {
	if cnyPerUsd.IsZero() {
		return decimal.Zero
	}
	return amountCny.DivRound(cnyPerUsd, 4)
}

// ComputeUnitCost spreads (purchase + expenses) evenly over total quantity.
// The simple average is deliberate: per-item purchase price differences are
// ignored so downstream COGS figures stay on this convention.
func ComputeUnitCost(totalPurchaseUsd decimal.Decimal, totalExpenses decimal.Decimal, totalQuantity int) decimal.Decimal {
	if totalQuantity <= 0 {
		return decimal.Zero
	}
	return totalPurchaseUsd.Add(totalExpenses).DivRound(decimal.NewFromInt(int64(totalQuantity)), 4)
}

// SaleLineFact is the snapshot view of one sale line used by the financial
// recalculator: quantities and the prices captured at sale time.
type SaleLineFact struct {
	Quantity         int
	ReturnedQuantity int
	SalePricePerUnit decimal.Decimal
	CostPerUnit      decimal.Decimal
}

// EffectiveQuantity is quantity sold minus quantity since returned.
func (f SaleLineFact) EffectiveQuantity() int {
	q := f.Quantity - f.ReturnedQuantity
	if q < 0 {
		return 0
	}
	return q
}

// ContainerFinancials is the recomputed aggregate for one container.
type ContainerFinancials struct {
	Revenue   decimal.Decimal
	Cogs      decimal.Decimal
	Expenses  decimal.Decimal
	NetProfit decimal.Decimal
}

// ComputeContainerFinancials recomputes revenue, COGS, effective expenses and
// net profit from current line data. COGS uses the cost snapshot captured at
// sale time, not the live container unit cost, so later cost recalculations
// never alter historic figures. The function is idempotent: same inputs, same
// output, no drift.
func ComputeContainerFinancials(lines []SaleLineFact, effectiveExpenses []decimal.Decimal) ContainerFinancials {
	var f ContainerFinancials
	for _, line := range lines {
		qty := decimal.NewFromInt(int64(line.EffectiveQuantity()))
		f.Revenue = f.Revenue.Add(qty.Mul(line.SalePricePerUnit))
		f.Cogs = f.Cogs.Add(qty.Mul(line.CostPerUnit))
	}
	for _, e := range effectiveExpenses {
		f.Expenses = f.Expenses.Add(e)
	}
	f.NetProfit = f.Revenue.Sub(f.Cogs).Sub(f.Expenses)
	return f
}

// ComputeShares maps invested amounts to percentage shares summing to 100
// (all zero when nothing is invested).
func ComputeShares(invested []decimal.Decimal) (shares []decimal.Decimal, total decimal.Decimal) {
	for _, amount := range invested {
		total = total.Add(amount)
	}
	shares = make([]decimal.Decimal, len(invested))
	if total.IsZero() {
		return shares, total
	}
	hundred := decimal.NewFromInt(100)
	for i, amount := range invested {
		shares[i] = amount.Mul(hundred).DivRound(total, 4)
	}
	return shares, total
}

// SharesMatchExpected reports whether total invested capital matches the
// container's cost basis within tolerance. Observational only: investors are
// allowed to fund part of a shipment.
func SharesMatchExpected(investedTotal decimal.Decimal, totalPurchaseUsd decimal.Decimal, totalExpenses decimal.Decimal) bool {
	expected := totalPurchaseUsd.Add(totalExpenses)
	return investedTotal.Sub(expected).Abs().LessThan(shareEpsilon)
}

// ProfitOwed is netProfit × share / 100.
func ProfitOwed(netProfit decimal.Decimal, percentageShare decimal.Decimal) decimal.Decimal {
	return netProfit.Mul(percentageShare).DivRound(decimal.NewFromInt(100), 4)
}
