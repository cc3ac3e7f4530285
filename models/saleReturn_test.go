package models

import (
	"errors"
	"testing"

	"github.com/ossotrade/osso_backend/utils"
	"github.com/shopspring/decimal"
)

func TestCheckReturnCeiling(t *testing.T) {
	// Sold 10, returned 4: up to 6 more may come back.
	if err := CheckReturnCeiling(10, 4, 6); err != nil {
		t.Fatalf("return up to remaining should pass: %v", err)
	}
	if err := CheckReturnCeiling(10, 4, 7); !errors.Is(err, utils.ErrorReturnExceedsRemaining) {
		t.Fatalf("expected ceiling violation, got %v", err)
	}
	// Fully returned sale item accepts nothing more.
	if err := CheckReturnCeiling(10, 10, 1); !errors.Is(err, utils.ErrorReturnExceedsRemaining) {
		t.Fatalf("expected ceiling violation on fully returned item, got %v", err)
	}
}

func TestDeriveSaleStatus(t *testing.T) {
	total := decimal.NewFromInt(100)
	cases := []struct {
		paid string
		want SaleStatus
	}{
		{"0", SaleStatusDebt},
		{"1", SaleStatusPartial},
		{"99.99", SaleStatusPartial},
		{"100", SaleStatusPaid},
		{"120", SaleStatusPaid},
	}
	for _, tc := range cases {
		paid, _ := decimal.NewFromString(tc.paid)
		if got := DeriveSaleStatus(total, paid); got != tc.want {
			t.Fatalf("paid=%s: expected %s, got %s", tc.paid, tc.want, got)
		}
	}
}
