package models

import (
	"context"
	"time"

	"github.com/ossotrade/osso_backend/config"
	"github.com/ossotrade/osso_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Container is a shipment batch treated as one cost-accounting unit. The USD
// figures are normalized from the CNY purchase cost using the exchange rate
// snapshotted at creation; totalExpenses and netProfit are derived columns
// maintained by the recalculation workflow.
type Container struct {
	ID               int                   `gorm:"primary_key" json:"id"`
	Name             string                `gorm:"size:100;not null" json:"name" binding:"required"`
	Status           ContainerStatus       `gorm:"type:enum('IN_TRANSIT','ARRIVED','CLOSED');not null;default:'IN_TRANSIT'" json:"status"`
	PurchaseDate     time.Time             `gorm:"not null" json:"purchase_date"`
	ArrivalDate      *time.Time            `json:"arrival_date"`
	ExchangeRate     decimal.Decimal       `gorm:"type:decimal(20,6);not null" json:"exchange_rate"`
	TotalPurchaseCny decimal.Decimal       `gorm:"type:decimal(20,4);default:0" json:"total_purchase_cny"`
	TotalPurchaseUsd decimal.Decimal       `gorm:"type:decimal(20,4);default:0" json:"total_purchase_usd"`
	TotalExpenses    decimal.Decimal       `gorm:"type:decimal(20,4);default:0" json:"total_expenses"`
	NetProfit        decimal.Decimal       `gorm:"type:decimal(20,4);default:0" json:"net_profit"`
	Items            []ContainerItem       `gorm:"foreignKey:ContainerId" json:"items"`
	Expenses         []ContainerExpense    `gorm:"foreignKey:ContainerId" json:"expenses"`
	Investments      []ContainerInvestment `gorm:"foreignKey:ContainerId" json:"investments"`
	Payouts          []InvestorPayout      `gorm:"foreignKey:ContainerId" json:"payouts"`
	CreatedAt        time.Time             `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time             `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewContainer struct {
	Name             string             `json:"name" binding:"required"`
	Status           ContainerStatus    `json:"status"`
	PurchaseDate     time.Time          `json:"purchase_date" binding:"required"`
	ArrivalDate      *time.Time         `json:"arrival_date"`
	ExchangeRate     decimal.Decimal    `json:"exchange_rate" binding:"required"`
	TotalPurchaseCny decimal.Decimal    `json:"total_purchase_cny"`
	Items            []NewContainerItem `json:"items"`
}

// UpdateContainerInput carries the editable header fields. Nil pointers leave
// the stored value untouched; purchase totals trigger a cost recalculation.
type UpdateContainerInput struct {
	Name             *string          `json:"name"`
	Status           *ContainerStatus `json:"status"`
	ArrivalDate      *time.Time       `json:"arrival_date"`
	ExchangeRate     *decimal.Decimal `json:"exchange_rate"`
	TotalPurchaseCny *decimal.Decimal `json:"total_purchase_cny"`
}

func GetContainer(ctx context.Context, id int) (*Container, error) {
	return utils.FetchModel[Container](ctx, id, "Items", "Expenses", "Investments", "Payouts")
}

func GetContainers(ctx context.Context, status *ContainerStatus) ([]*Container, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx)
	if status != nil && *status != "" {
		dbCtx = dbCtx.Where("status = ?", *status)
	}
	var containers []*Container
	if err := dbCtx.Preload("Items").Order("purchase_date DESC").Find(&containers).Error; err != nil {
		return nil, err
	}
	return containers, nil
}

// SaleCount returns the number of sale line items referencing any item of the
// container. A container may only be deleted when this is zero.
func (c *Container) SaleCount(tx *gorm.DB, ctx context.Context) (int64, error) {
	var count int64
	err := tx.WithContext(ctx).Model(&SaleItem{}).
		Joins("JOIN container_items ON container_items.id = sale_items.container_item_id").
		Where("container_items.container_id = ?", c.ID).
		Count(&count).Error
	return count, err
}
