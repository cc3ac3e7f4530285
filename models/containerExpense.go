package models

import (
	"context"
	"time"

	"github.com/ossotrade/osso_backend/utils"
	"github.com/shopspring/decimal"
)

// ContainerExpense is an expense attributed to a container. Its effective
// amount is the base amount plus the sum of its correction deltas; the base
// row is never edited after creation, corrections are appended instead.
type ContainerExpense struct {
	ID          int                 `gorm:"primary_key" json:"id"`
	ContainerId int                 `gorm:"index;not null" json:"container_id" binding:"required"`
	Amount      decimal.Decimal     `gorm:"type:decimal(20,4);not null" json:"amount"`
	Description string              `gorm:"size:255" json:"description"`
	ExpenseDate time.Time           `gorm:"not null" json:"expense_date"`
	CreatedBy   int                 `gorm:"index" json:"created_by"`
	Corrections []ExpenseCorrection `gorm:"foreignKey:ExpenseId" json:"corrections"`
	CreatedAt   time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

// ExpenseCorrection is a signed delta applied to an expense.
type ExpenseCorrection struct {
	ID        int             `gorm:"primary_key" json:"id"`
	ExpenseId int             `gorm:"index;not null" json:"expense_id" binding:"required"`
	Amount    decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	Reason    string          `gorm:"size:255" json:"reason"`
	CreatedBy int             `gorm:"index" json:"created_by"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type NewContainerExpense struct {
	ContainerId int             `json:"container_id" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Description string          `json:"description"`
	ExpenseDate time.Time       `json:"expense_date"`
}

type NewExpenseCorrection struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
	Reason string          `json:"reason" binding:"required"`
}

// EffectiveAmount is base + Σ corrections.
func (e *ContainerExpense) EffectiveAmount() decimal.Decimal {
	total := e.Amount
	for _, c := range e.Corrections {
		total = total.Add(c.Amount)
	}
	return total
}

func GetContainerExpense(ctx context.Context, id int) (*ContainerExpense, error) {
	return utils.FetchModel[ContainerExpense](ctx, id, "Corrections")
}
