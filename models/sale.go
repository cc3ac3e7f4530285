package models

import (
	"context"
	"time"

	"github.com/ossotrade/osso_backend/config"
	"github.com/ossotrade/osso_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Sale is a client invoice. FinancialPeriodId is the period the sale was
// recorded in and never changes afterwards; later return/delete operations
// are gated against it, not against the current date.
type Sale struct {
	ID                int             `gorm:"primary_key" json:"id"`
	InvoiceNumber     string          `gorm:"size:50;not null;uniqueIndex" json:"invoice_number"`
	SequenceNo        int             `gorm:"not null" json:"sequence_no"`
	ClientId          int             `gorm:"index;not null" json:"client_id" binding:"required"`
	FinancialPeriodId int             `gorm:"index;not null" json:"financial_period_id"`
	SaleDate          time.Time       `gorm:"not null" json:"sale_date"`
	DueDate           *time.Time      `json:"due_date"`
	TotalAmount       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
	PaidAmount        decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"paid_amount"`
	DebtAmount        decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"debt_amount"`
	Status            SaleStatus      `gorm:"type:enum('PAID','PARTIAL','DEBT');not null;default:'DEBT'" json:"status"`
	CreatedBy         int             `gorm:"index" json:"created_by"`
	Items             []SaleItem      `gorm:"foreignKey:SaleId" json:"items"`
	Payments          []Payment       `gorm:"foreignKey:SaleId" json:"payments"`
	CreatedAt         time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// SaleItem references a ContainerItem and snapshots both the sale price and
// the cost per unit at sale time, so later container cost recalculations do
// not retroactively alter historic COGS.
type SaleItem struct {
	ID               int             `gorm:"primary_key" json:"id"`
	SaleId           int             `gorm:"index;not null" json:"sale_id"`
	ContainerItemId  int             `gorm:"index;not null" json:"container_item_id" binding:"required"`
	Quantity         int             `gorm:"not null" json:"quantity"`
	SalePricePerUnit decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"sale_price_per_unit"`
	CostPerUnit      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"cost_per_unit"`
	ReturnItems      []ReturnItem    `gorm:"foreignKey:SaleItemId" json:"return_items"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type Payment struct {
	ID        int             `gorm:"primary_key" json:"id"`
	SaleId    int             `gorm:"index;not null" json:"sale_id" binding:"required"`
	Amount    decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	Method    string          `gorm:"size:32;default:'CASH'" json:"method"`
	PaidAt    time.Time       `gorm:"not null" json:"paid_at"`
	CreatedBy int             `gorm:"index" json:"created_by"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type NewSale struct {
	ClientId   int             `json:"client_id" binding:"required"`
	DueDate    *time.Time      `json:"due_date"`
	PaidAmount decimal.Decimal `json:"paid_amount"`
	Items      []NewSaleItem   `json:"items" binding:"required,min=1"`
}

type NewSaleItem struct {
	ContainerItemId  int             `json:"container_item_id" binding:"required"`
	Quantity         int             `json:"quantity" binding:"required,gt=0"`
	SalePricePerUnit decimal.Decimal `json:"sale_price_per_unit" binding:"required"`
}

type NewPayment struct {
	SaleId int             `json:"sale_id" binding:"required"`
	Amount decimal.Decimal `json:"amount" binding:"required"`
	Method string          `json:"method"`
}

// DeriveSaleStatus maps the paid/debt split onto the invoice status.
func DeriveSaleStatus(totalAmount decimal.Decimal, paidAmount decimal.Decimal) SaleStatus {
	if paidAmount.GreaterThanOrEqual(totalAmount) {
		return SaleStatusPaid
	}
	if paidAmount.IsPositive() {
		return SaleStatusPartial
	}
	return SaleStatusDebt
}

func GetSale(ctx context.Context, id int) (*Sale, error) {
	return utils.FetchModel[Sale](ctx, id, "Items", "Items.ReturnItems", "Payments")
}

func GetSales(ctx context.Context, clientId *int, status *SaleStatus) ([]*Sale, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx)
	if clientId != nil && *clientId > 0 {
		dbCtx = dbCtx.Where("client_id = ?", *clientId)
	}
	if status != nil && *status != "" {
		dbCtx = dbCtx.Where("status = ?", *status)
	}
	var sales []*Sale
	if err := dbCtx.Preload("Items").Order("id DESC").Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}

// ReturnedQuantity sums the quantity already returned against a sale item,
// read through the open transaction so uncommitted returns are visible.
func ReturnedQuantity(tx *gorm.DB, ctx context.Context, saleItemId int) (int, error) {
	var total *int
	err := tx.WithContext(ctx).Model(&ReturnItem{}).
		Where("sale_item_id = ?", saleItemId).
		Select("COALESCE(SUM(quantity), 0)").Scan(&total).Error
	if err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}
