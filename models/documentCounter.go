package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DocumentCounter hands out sequential document numbers per scope (invoice
// numbers are scoped by financial period, return numbers by year). The row is
// locked FOR UPDATE inside the caller's transaction so concurrent mutations
// serialize on the counter.
type DocumentCounter struct {
	ID         int       `gorm:"primary_key" json:"id"`
	DocType    string    `gorm:"size:32;not null;uniqueIndex:idx_counter_scope" json:"doc_type"`
	ScopeKey   string    `gorm:"size:32;not null;uniqueIndex:idx_counter_scope" json:"scope_key"`
	LastNumber int       `gorm:"not null;default:0" json:"last_number"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

const (
	DocTypeInvoice = "invoice"
	DocTypeReturn  = "return"
)

// NextDocumentNumber increments and returns the counter for (docType, scope).
func NextDocumentNumber(tx *gorm.DB, ctx context.Context, docType string, scopeKey string) (int, error) {
	var counter DocumentCounter
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("doc_type = ? AND scope_key = ?", docType, scopeKey).
		First(&counter).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		counter = DocumentCounter{DocType: docType, ScopeKey: scopeKey, LastNumber: 1}
		if err := tx.WithContext(ctx).Create(&counter).Error; err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}

	counter.LastNumber++
	if err := tx.WithContext(ctx).Model(&counter).Update("last_number", counter.LastNumber).Error; err != nil {
		return 0, err
	}
	return counter.LastNumber, nil
}

// FormatInvoiceNumber renders the period-scoped invoice number.
func FormatInvoiceNumber(period *FinancialPeriod, seq int) string {
	return fmt.Sprintf("INV-%d%02d-%d", period.Year, period.Month, seq)
}

// FormatReturnNumber renders the year-scoped return number.
func FormatReturnNumber(year int, seq int) string {
	return fmt.Sprintf("RET-%d-%d", year, seq)
}
