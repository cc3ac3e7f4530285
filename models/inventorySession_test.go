package models

import (
	"errors"
	"testing"
	"time"

	"github.com/ossotrade/osso_backend/utils"
)

func TestValidateCodeFormat(t *testing.T) {
	for _, code := range []string{"000", "042", "999"} {
		if err := ValidateCodeFormat(code); err != nil {
			t.Fatalf("%q should be valid: %v", code, err)
		}
	}
	for _, code := range []string{"", "12", "1234", "a42", "42x", " 42"} {
		if err := ValidateCodeFormat(code); err == nil {
			t.Fatalf("%q should be rejected", code)
		}
	}
}

func TestCountDiscrepancies(t *testing.T) {
	items := []InventorySessionItem{
		{ProductId: 1, ExpectedQty: 10, CountedQty: 10},
		{ProductId: 2, ExpectedQty: 5, CountedQty: 3},
		{ProductId: 3, ExpectedQty: 0, CountedQty: 1},
	}
	if got := CountDiscrepancies(items); got != 2 {
		t.Fatalf("expected 2 discrepancies, got %d", got)
	}
	if got := CountDiscrepancies(nil); got != 0 {
		t.Fatalf("empty count should have no discrepancies, got %d", got)
	}
}

func TestGenerateSessionCode_ReturnsFreeCode(t *testing.T) {
	code, err := GenerateSessionCode(func(code string) (bool, error) {
		return false, nil
	})
	if err != nil {
		t.Fatalf("GenerateSessionCode: %v", err)
	}
	if err := ValidateCodeFormat(code); err != nil {
		t.Fatalf("generated code %q has wrong format: %v", code, err)
	}
}

func TestGenerateSessionCode_SkipsTakenCodes(t *testing.T) {
	attempts := 0
	code, err := GenerateSessionCode(func(code string) (bool, error) {
		attempts++
		return attempts <= 3, nil
	})
	if err != nil {
		t.Fatalf("GenerateSessionCode: %v", err)
	}
	if attempts != 4 {
		t.Fatalf("expected 4 sampling attempts, got %d", attempts)
	}
	if code == "" {
		t.Fatalf("expected a code after rejection sampling")
	}
}

func TestGenerateSessionCode_Exhausted(t *testing.T) {
	attempts := 0
	_, err := GenerateSessionCode(func(code string) (bool, error) {
		attempts++
		return true, nil
	})
	if !errors.Is(err, utils.ErrorCodeGenerationExhausted) {
		t.Fatalf("expected exhaustion error, got %v", err)
	}
	if attempts != 50 {
		t.Fatalf("expected exactly 50 attempts, got %d", attempts)
	}
}

func TestGenerateSessionCode_PropagatesLookupError(t *testing.T) {
	boom := errors.New("boom")
	_, err := GenerateSessionCode(func(code string) (bool, error) {
		return false, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected lookup error, got %v", err)
	}
}

func TestCheckConfirmable_PendingWithinWindow(t *testing.T) {
	created := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	s := &InventorySession{Status: SessionStatusPending, CreatedAt: created}

	already, err := s.CheckConfirmable(created.Add(9 * time.Minute))
	if err != nil || already {
		t.Fatalf("pending session within window should confirm: already=%v err=%v", already, err)
	}

	// Exactly at the boundary is still valid.
	already, err = s.CheckConfirmable(created.Add(CodeValidityWindow))
	if err != nil || already {
		t.Fatalf("boundary instant should still confirm: already=%v err=%v", already, err)
	}
}

func TestCheckConfirmable_Expired(t *testing.T) {
	created := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	s := &InventorySession{Status: SessionStatusPending, CreatedAt: created}
	_, err := s.CheckConfirmable(created.Add(CodeValidityWindow + time.Second))
	if !errors.Is(err, utils.ErrorCodeExpired) {
		t.Fatalf("expected expiry at 10m1s, got %v", err)
	}
}

func TestCheckConfirmable_DiscrepancyBlocks(t *testing.T) {
	s := &InventorySession{Status: SessionStatusDiscrepancy, CreatedAt: time.Now()}
	_, err := s.CheckConfirmable(time.Now())
	if !errors.Is(err, utils.ErrorDiscrepancyBlocksConfirmation) {
		t.Fatalf("expected discrepancy block, got %v", err)
	}
}

func TestCheckConfirmable_ConfirmedIsIdempotent(t *testing.T) {
	// Even long after the window, re-submitting a confirmed session's code is
	// an acknowledgment rather than an error.
	created := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	s := &InventorySession{Status: SessionStatusConfirmed, CreatedAt: created}
	already, err := s.CheckConfirmable(created.Add(48 * time.Hour))
	if err != nil || !already {
		t.Fatalf("confirmed session must acknowledge: already=%v err=%v", already, err)
	}
}
