package workflow

import (
	"context"

	"github.com/ossotrade/osso_backend/config"
	"github.com/ossotrade/osso_backend/models"
	"github.com/ossotrade/osso_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"
)

// CreateReturn reverses part of a sale. Each line is capped at the quantity
// still outstanding on its sale item; the returned units go back onto the
// container item and the container's effective figures drop on recalculation.
// The sale row itself keeps its historical totals.
func CreateReturn(ctx context.Context, input *models.NewReturn) (*models.Return, error) {
	if err := anyRole(ctx); err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()
	defer tx.Rollback()

	var sale models.Sale
	if err := tx.WithContext(ctx).Preload("Items").First(&sale, input.SaleId).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}

	now, err := models.GetSystemNow(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := models.AssertPeriodOpen(tx, ctx, now); err != nil {
		return nil, err
	}

	saleItemsById := make(map[int]models.SaleItem, len(sale.Items))
	for _, item := range sale.Items {
		saleItemsById[item.ID] = item
	}

	totalAmount := decimal.Zero
	returnItems := make([]models.ReturnItem, 0, len(input.Items))
	containerIds := map[int]bool{}
	// return_items rows are only inserted after the loop, so duplicate lines
	// for one sale item must count against each other here.
	requestedBySaleItem := map[int]int{}
	for _, line := range input.Items {
		saleItem, ok := saleItemsById[line.SaleItemId]
		if !ok {
			return nil, utils.ErrorRecordNotFound
		}

		alreadyReturned, err := models.ReturnedQuantity(tx, ctx, line.SaleItemId)
		if err != nil {
			return nil, err
		}
		alreadyReturned += requestedBySaleItem[line.SaleItemId]
		if err := models.CheckReturnCeiling(saleItem.Quantity, alreadyReturned, line.Quantity); err != nil {
			return nil, err
		}
		requestedBySaleItem[line.SaleItemId] += line.Quantity

		var containerItem models.ContainerItem
		err = tx.WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&containerItem, saleItem.ContainerItemId).Error
		if err != nil {
			return nil, utils.ErrorRecordNotFound
		}
		err = tx.WithContext(ctx).Model(&containerItem).
			Update("quantity", containerItem.Quantity+line.Quantity).Error
		if err != nil {
			return nil, err
		}

		returnItems = append(returnItems, models.ReturnItem{
			SaleItemId: line.SaleItemId,
			Quantity:   line.Quantity,
		})
		totalAmount = totalAmount.Add(saleItem.SalePricePerUnit.Mul(decimal.NewFromInt(int64(line.Quantity))))
		containerIds[containerItem.ContainerId] = true
	}

	seq, err := models.NextDocumentNumber(tx, ctx, models.DocTypeReturn, now.Format("2006"))
	if err != nil {
		return nil, err
	}

	userId, _ := utils.GetUserIdFromContext(ctx)
	saleReturn := models.Return{
		ReturnNumber: models.FormatReturnNumber(now.Year(), seq),
		SequenceNo:   seq,
		SaleId:       input.SaleId,
		TotalAmount:  totalAmount,
		CreatedBy:    userId,
		Items:        returnItems,
	}
	if err := tx.WithContext(ctx).Create(&saleReturn).Error; err != nil {
		return nil, err
	}

	for containerId := range containerIds {
		if err := AcquireContainerPostingLock(tx, containerId); err != nil {
			return nil, err
		}
		if err := recalcAfterFinancialWrite(tx, ctx, containerId); err != nil {
			ReleaseContainerPostingLock(tx, containerId)
			return nil, err
		}
		ReleaseContainerPostingLock(tx, containerId)
	}

	err = models.AppendAudit(tx, ctx, models.AuditActionReturnCreate, "return", saleReturn.ID, map[string]interface{}{
		"return_number": saleReturn.ReturnNumber,
		"sale_id":       input.SaleId,
		"total_amount":  totalAmount,
		"item_count":    len(returnItems),
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return models.GetReturn(ctx, saleReturn.ID)
}
