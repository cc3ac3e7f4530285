package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestNormalizeCnyToUsd(t *testing.T) {
	got := NormalizeCnyToUsd(dec("7300"), dec("7.3"))
	if !got.Equal(dec("1000")) {
		t.Fatalf("expected 1000, got %s", got)
	}
	if !NormalizeCnyToUsd(dec("500"), decimal.Zero).IsZero() {
		t.Fatalf("zero rate must yield zero, not divide")
	}
}

func TestComputeUnitCost_SimpleAverage(t *testing.T) {
	// $800 purchase + $200 expenses over 100 units -> $10/unit regardless of
	// per-item purchase price differences.
	got := ComputeUnitCost(dec("800"), dec("200"), 100)
	if !got.Equal(dec("10")) {
		t.Fatalf("expected 10, got %s", got)
	}
}

func TestComputeUnitCost_ZeroQuantity(t *testing.T) {
	if !ComputeUnitCost(dec("1000"), dec("50"), 0).IsZero() {
		t.Fatalf("zero quantity must yield zero unit cost")
	}
	if !ComputeUnitCost(dec("1000"), dec("50"), -3).IsZero() {
		t.Fatalf("negative quantity must yield zero unit cost")
	}
}

func TestComputeContainerFinancials_SaleThenReturn(t *testing.T) {
	// 100 units at $10 cost; sell 10 at $15: revenue 150, COGS 100, profit 50.
	lines := []SaleLineFact{{Quantity: 10, SalePricePerUnit: dec("15"), CostPerUnit: dec("10")}}
	f := ComputeContainerFinancials(lines, nil)
	if !f.Revenue.Equal(dec("150")) || !f.Cogs.Equal(dec("100")) || !f.NetProfit.Equal(dec("50")) {
		t.Fatalf("sale: got revenue=%s cogs=%s profit=%s", f.Revenue, f.Cogs, f.NetProfit)
	}

	// Return 4 of the 10: effective quantity 6 -> revenue 90, COGS 60, profit 30.
	lines[0].ReturnedQuantity = 4
	f = ComputeContainerFinancials(lines, nil)
	if !f.Revenue.Equal(dec("90")) || !f.Cogs.Equal(dec("60")) || !f.NetProfit.Equal(dec("30")) {
		t.Fatalf("return: got revenue=%s cogs=%s profit=%s", f.Revenue, f.Cogs, f.NetProfit)
	}
}

func TestComputeContainerFinancials_ExpensesReduceProfit(t *testing.T) {
	lines := []SaleLineFact{{Quantity: 10, SalePricePerUnit: dec("15"), CostPerUnit: dec("10")}}
	f := ComputeContainerFinancials(lines, []decimal.Decimal{dec("20"), dec("5")})
	if !f.Expenses.Equal(dec("25")) {
		t.Fatalf("expected effective expenses 25, got %s", f.Expenses)
	}
	if !f.NetProfit.Equal(dec("25")) {
		t.Fatalf("expected profit 25, got %s", f.NetProfit)
	}
}

func TestComputeContainerFinancials_Idempotent(t *testing.T) {
	lines := []SaleLineFact{
		{Quantity: 7, ReturnedQuantity: 2, SalePricePerUnit: dec("12.5"), CostPerUnit: dec("8.25")},
		{Quantity: 3, SalePricePerUnit: dec("40"), CostPerUnit: dec("31")},
	}
	expenses := []decimal.Decimal{dec("14.75")}
	first := ComputeContainerFinancials(lines, expenses)
	second := ComputeContainerFinancials(lines, expenses)
	if !first.Revenue.Equal(second.Revenue) || !first.Cogs.Equal(second.Cogs) ||
		!first.Expenses.Equal(second.Expenses) || !first.NetProfit.Equal(second.NetProfit) {
		t.Fatalf("recomputation drifted: %+v vs %+v", first, second)
	}
}

func TestEffectiveQuantity_NeverNegative(t *testing.T) {
	f := SaleLineFact{Quantity: 3, ReturnedQuantity: 5}
	if got := f.EffectiveQuantity(); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestComputeShares_TwoInvestors(t *testing.T) {
	// $300 and $700 invested -> 30% and 70%.
	shares, total := ComputeShares([]decimal.Decimal{dec("300"), dec("700")})
	if !total.Equal(dec("1000")) {
		t.Fatalf("expected total 1000, got %s", total)
	}
	if !shares[0].Equal(dec("30")) || !shares[1].Equal(dec("70")) {
		t.Fatalf("expected 30/70, got %s/%s", shares[0], shares[1])
	}
}

func TestComputeShares_NoInvestment(t *testing.T) {
	shares, total := ComputeShares([]decimal.Decimal{decimal.Zero, decimal.Zero})
	if !total.IsZero() {
		t.Fatalf("expected zero total, got %s", total)
	}
	for i, s := range shares {
		if !s.IsZero() {
			t.Fatalf("share %d should be zero, got %s", i, s)
		}
	}
}

func TestProfitOwed(t *testing.T) {
	// $200 profit, 30%/70% split -> $60 and $140.
	if got := ProfitOwed(dec("200"), dec("30")); !got.Equal(dec("60")) {
		t.Fatalf("expected 60, got %s", got)
	}
	if got := ProfitOwed(dec("200"), dec("70")); !got.Equal(dec("140")) {
		t.Fatalf("expected 140, got %s", got)
	}
	// Negative profit propagates to negative owed figures.
	if got := ProfitOwed(dec("-100"), dec("50")); !got.Equal(dec("-50")) {
		t.Fatalf("expected -50, got %s", got)
	}
}

func TestSharesMatchExpected(t *testing.T) {
	if !SharesMatchExpected(dec("1000"), dec("800"), dec("200")) {
		t.Fatalf("exact match should pass")
	}
	if !SharesMatchExpected(dec("1000.005"), dec("800"), dec("200")) {
		t.Fatalf("sub-cent drift should pass")
	}
	if SharesMatchExpected(dec("900"), dec("800"), dec("200")) {
		t.Fatalf("partial funding must not report a match")
	}
}
