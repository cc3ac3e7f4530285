package models

import (
	"context"
	"time"

	"github.com/ossotrade/osso_backend/utils"
	"github.com/shopspring/decimal"
)

// Return is a partial or full reversal of a sale. Each ReturnItem restores
// its quantity back onto the container item; effective revenue and COGS drop
// accordingly on the next recalculation.
type Return struct {
	ID           int             `gorm:"primary_key" json:"id"`
	ReturnNumber string          `gorm:"size:50;not null;uniqueIndex" json:"return_number"`
	SequenceNo   int             `gorm:"not null" json:"sequence_no"`
	SaleId       int             `gorm:"index;not null" json:"sale_id" binding:"required"`
	TotalAmount  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
	CreatedBy    int             `gorm:"index" json:"created_by"`
	Items        []ReturnItem    `gorm:"foreignKey:ReturnId" json:"items"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type ReturnItem struct {
	ID         int       `gorm:"primary_key" json:"id"`
	ReturnId   int       `gorm:"index;not null" json:"return_id"`
	SaleItemId int       `gorm:"index;not null" json:"sale_item_id" binding:"required"`
	Quantity   int       `gorm:"not null" json:"quantity"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type NewReturn struct {
	SaleId int             `json:"sale_id" binding:"required"`
	Items  []NewReturnItem `json:"items" binding:"required,min=1"`
}

type NewReturnItem struct {
	SaleItemId int `json:"sale_item_id" binding:"required"`
	Quantity   int `json:"quantity" binding:"required,gt=0"`
}

// CheckReturnCeiling enforces the remaining-quantity ceiling: a return may
// not exceed what is still outstanding on the sale item.
func CheckReturnCeiling(soldQuantity int, alreadyReturned int, requested int) error {
	if requested > soldQuantity-alreadyReturned {
		return utils.ErrorReturnExceedsRemaining
	}
	return nil
}

func GetReturn(ctx context.Context, id int) (*Return, error) {
	return utils.FetchModel[Return](ctx, id, "Items")
}
