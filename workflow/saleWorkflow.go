package workflow

import (
	"context"
	"fmt"

	"github.com/ossotrade/osso_backend/config"
	"github.com/ossotrade/osso_backend/models"
	"github.com/ossotrade/osso_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"
)

// CreateSale posts a client invoice: per line it locks the container item
// row, verifies stock, decrements it and snapshots both the sale price and
// the current unit cost. Any insufficient line aborts the whole transaction,
// so stock is never partially decremented.
func CreateSale(ctx context.Context, input *models.NewSale) (*models.Sale, error) {
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

	if err := tx.WithContext(ctx).First(&models.Client{}, input.ClientId).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}

	now, err := models.GetSystemNow(ctx)
	if err != nil {
		return nil, err
	}
	period, err := models.AssertPeriodOpen(tx, ctx, now)
	if err != nil {
		return nil, err
	}

	totalAmount := decimal.Zero
	saleItems := make([]models.SaleItem, 0, len(input.Items))
	containerIds := map[int]bool{}
	for _, line := range input.Items {
		var item models.ContainerItem
		err := tx.WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&item, line.ContainerItemId).Error
		if err != nil {
			return nil, utils.ErrorRecordNotFound
		}
		if item.Quantity < line.Quantity {
			return nil, utils.ErrorInsufficientStock
		}
		err = tx.WithContext(ctx).Model(&item).
			Update("quantity", item.Quantity-line.Quantity).Error
		if err != nil {
			return nil, err
		}

		saleItems = append(saleItems, models.SaleItem{
			ContainerItemId:  line.ContainerItemId,
			Quantity:         line.Quantity,
			SalePricePerUnit: line.SalePricePerUnit,
			CostPerUnit:      item.CostPerUnit,
		})
		totalAmount = totalAmount.Add(line.SalePricePerUnit.Mul(decimal.NewFromInt(int64(line.Quantity))))
		containerIds[item.ContainerId] = true
	}

	scopeKey := fmt.Sprintf("%04d%02d", period.Year, period.Month)
	seq, err := models.NextDocumentNumber(tx, ctx, models.DocTypeInvoice, scopeKey)
	if err != nil {
		return nil, err
	}

	userId, _ := utils.GetUserIdFromContext(ctx)
	paid := input.PaidAmount
	if paid.GreaterThan(totalAmount) {
		paid = totalAmount
	}
	sale := models.Sale{
		InvoiceNumber:     models.FormatInvoiceNumber(period, seq),
		SequenceNo:        seq,
		ClientId:          input.ClientId,
		FinancialPeriodId: period.ID,
		SaleDate:          now,
		DueDate:           input.DueDate,
		TotalAmount:       totalAmount,
		PaidAmount:        paid,
		DebtAmount:        totalAmount.Sub(paid),
		Status:            models.DeriveSaleStatus(totalAmount, paid),
		CreatedBy:         userId,
		Items:             saleItems,
	}
	if err := tx.WithContext(ctx).Create(&sale).Error; err != nil {
		return nil, err
	}

	if paid.IsPositive() {
		payment := models.Payment{
			SaleId:    sale.ID,
			Amount:    paid,
			PaidAt:    now,
			CreatedBy: userId,
		}
		if err := tx.WithContext(ctx).Create(&payment).Error; err != nil {
			return nil, err
		}
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

	err = models.AppendAudit(tx, ctx, models.AuditActionSaleCreate, "sale", sale.ID, map[string]interface{}{
		"invoice_number": sale.InvoiceNumber,
		"client_id":      sale.ClientId,
		"total_amount":   sale.TotalAmount,
		"item_count":     len(saleItems),
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return models.GetSale(ctx, sale.ID)
}

// DeleteSale reverses an invoice entirely: outstanding (unreturned) quantity
// goes back to stock, dependent payments and returns are removed, and the
// affected containers are recomputed. Gated against the sale's original
// financial period, not today's.
func DeleteSale(ctx context.Context, saleId int) error {
	if err := superAdminRole(ctx); err != nil {
		return err
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
	if err := tx.WithContext(ctx).Preload("Items").First(&sale, saleId).Error; err != nil {
		return utils.ErrorRecordNotFound
	}
	if _, err := models.AssertPeriodOpenById(tx, ctx, sale.FinancialPeriodId); err != nil {
		return err
	}

	containerIds := map[int]bool{}
	for _, item := range sale.Items {
		returned, err := models.ReturnedQuantity(tx, ctx, item.ID)
		if err != nil {
			return err
		}
		outstanding := item.Quantity - returned
		if outstanding < 0 {
			outstanding = 0
		}

		var containerItem models.ContainerItem
		err = tx.WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&containerItem, item.ContainerItemId).Error
		if err != nil {
			return utils.ErrorRecordNotFound
		}
		if outstanding > 0 {
			err = tx.WithContext(ctx).Model(&containerItem).
				Update("quantity", containerItem.Quantity+outstanding).Error
			if err != nil {
				return err
			}
		}
		containerIds[containerItem.ContainerId] = true
	}

	saleItemIds := tx.Model(&models.SaleItem{}).Select("id").Where("sale_id = ?", saleId)
	if err := tx.WithContext(ctx).Where("sale_item_id IN (?)", saleItemIds).Delete(&models.ReturnItem{}).Error; err != nil {
		return err
	}
	if err := tx.WithContext(ctx).Where("sale_id = ?", saleId).Delete(&models.Return{}).Error; err != nil {
		return err
	}
	if err := tx.WithContext(ctx).Where("sale_id = ?", saleId).Delete(&models.Payment{}).Error; err != nil {
		return err
	}
	if err := tx.WithContext(ctx).Where("sale_id = ?", saleId).Delete(&models.SaleItem{}).Error; err != nil {
		return err
	}
	if err := tx.WithContext(ctx).Delete(&models.Sale{}, saleId).Error; err != nil {
		return err
	}

	for containerId := range containerIds {
		if err := AcquireContainerPostingLock(tx, containerId); err != nil {
			return err
		}
		if err := recalcAfterFinancialWrite(tx, ctx, containerId); err != nil {
			ReleaseContainerPostingLock(tx, containerId)
			return err
		}
		ReleaseContainerPostingLock(tx, containerId)
	}

	err := models.AppendAudit(tx, ctx, models.AuditActionSaleDelete, "sale", saleId, map[string]interface{}{
		"invoice_number": sale.InvoiceNumber,
		"client_id":      sale.ClientId,
		"total_amount":   sale.TotalAmount,
	})
	if err != nil {
		return err
	}

	return tx.Commit().Error
}

// CreatePayment applies cash against an invoice's debt and rederives the
// invoice status. Payments never alter container financials.
func CreatePayment(ctx context.Context, input *models.NewPayment) (*models.Sale, error) {
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
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&sale, input.SaleId).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}

	now, err := models.GetSystemNow(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := models.AssertPeriodOpen(tx, ctx, now); err != nil {
		return nil, err
	}

	userId, _ := utils.GetUserIdFromContext(ctx)
	method := input.Method
	if method == "" {
		method = "CASH"
	}
	payment := models.Payment{
		SaleId:    input.SaleId,
		Amount:    input.Amount,
		Method:    method,
		PaidAt:    now,
		CreatedBy: userId,
	}
	if err := tx.WithContext(ctx).Create(&payment).Error; err != nil {
		return nil, err
	}

	paid := sale.PaidAmount.Add(input.Amount)
	err = tx.WithContext(ctx).Model(&sale).Updates(map[string]interface{}{
		"paid_amount": paid,
		"debt_amount": sale.TotalAmount.Sub(paid),
		"status":      models.DeriveSaleStatus(sale.TotalAmount, paid),
	}).Error
	if err != nil {
		return nil, err
	}

	err = models.AppendAudit(tx, ctx, models.AuditActionPaymentCreate, "payment", payment.ID, map[string]interface{}{
		"sale_id": input.SaleId,
		"amount":  input.Amount,
		"method":  method,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return models.GetSale(ctx, input.SaleId)
}
