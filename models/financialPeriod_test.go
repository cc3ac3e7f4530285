package models

import (
	"testing"
	"time"
)

func period(month, year int, status PeriodStatus) *FinancialPeriod {
	return &FinancialPeriod{Month: month, Year: year, Status: status}
}

func TestPickCurrentPeriod_ExactMonthWins(t *testing.T) {
	exact := period(3, 2026, PeriodStatusOpen)
	got, createNew := PickCurrentPeriod(exact, period(2, 2026, PeriodStatusOpen))
	if createNew || got != exact {
		t.Fatalf("exact month record must be authoritative")
	}

	// Even a locked exact record is returned; the caller fails the write.
	locked := period(3, 2026, PeriodStatusLocked)
	got, createNew = PickCurrentPeriod(locked, nil)
	if createNew || got != locked {
		t.Fatalf("locked exact record must still be returned")
	}
}

func TestPickCurrentPeriod_NoForwardRolloverWhilePriorOpen(t *testing.T) {
	// February arrives but January was never locked: the system stays in
	// January instead of opening February.
	january := period(1, 2026, PeriodStatusOpen)
	got, createNew := PickCurrentPeriod(nil, january)
	if createNew {
		t.Fatalf("must not create a new period while the prior one is open")
	}
	if got != january {
		t.Fatalf("expected to stay in the open prior period")
	}
}

func TestPickCurrentPeriod_CreatesAfterPriorLocked(t *testing.T) {
	january := period(1, 2026, PeriodStatusLocked)
	got, createNew := PickCurrentPeriod(nil, january)
	if !createNew || got != nil {
		t.Fatalf("locked prior period must trigger creation of the current month")
	}
}

func TestPickCurrentPeriod_FirstEver(t *testing.T) {
	got, createNew := PickCurrentPeriod(nil, nil)
	if !createNew || got != nil {
		t.Fatalf("no history must trigger creation")
	}
}

func TestFinancialPeriodBefore(t *testing.T) {
	p := period(6, 2025, PeriodStatusOpen)
	if !p.Before(7, 2025) || !p.Before(1, 2026) {
		t.Fatalf("expected period to sort before later months")
	}
	if p.Before(6, 2025) || p.Before(5, 2025) {
		t.Fatalf("period must not sort before itself or earlier months")
	}
}

func TestFormatInvoiceNumber(t *testing.T) {
	p := &FinancialPeriod{Month: 2, Year: 2026}
	if got := FormatInvoiceNumber(p, 7); got != "INV-202602-7" {
		t.Fatalf("got %q", got)
	}
}

func TestFormatReturnNumber(t *testing.T) {
	if got := FormatReturnNumber(2026, 12); got != "RET-2026-12" {
		t.Fatalf("got %q", got)
	}
}

// Guard against the window constant silently changing.
func TestCodeValidityWindow(t *testing.T) {
	if CodeValidityWindow != 10*time.Minute {
		t.Fatalf("code validity window is %s", CodeValidityWindow)
	}
}
