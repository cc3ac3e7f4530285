package workflow

import (
	"context"
	"errors"

	"github.com/ossotrade/osso_backend/config"
	"github.com/ossotrade/osso_backend/models"
	"github.com/ossotrade/osso_backend/utils"
)

// CreateContainer records a shipment with its item lines. The USD purchase
// total is normalized from CNY at the snapshotted rate and per-unit costs are
// allocated immediately.
func CreateContainer(ctx context.Context, input *models.NewContainer) (*models.Container, error) {
	if err := adminRole(ctx); err != nil {
		return nil, err
	}
	status := input.Status
	if status == "" {
		status = models.ContainerStatusInTransit
	}
	if err := status.Validate(); err != nil {
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

	if _, err := models.AssertPeriodOpen(tx, ctx, input.PurchaseDate); err != nil {
		return nil, err
	}

	container := models.Container{
		Name:             input.Name,
		Status:           status,
		PurchaseDate:     input.PurchaseDate,
		ArrivalDate:      input.ArrivalDate,
		ExchangeRate:     input.ExchangeRate,
		TotalPurchaseCny: input.TotalPurchaseCny,
		TotalPurchaseUsd: models.NormalizeCnyToUsd(input.TotalPurchaseCny, input.ExchangeRate),
	}
	if err := tx.WithContext(ctx).Create(&container).Error; err != nil {
		return nil, err
	}

	for _, line := range input.Items {
		item := models.ContainerItem{
			ContainerId: container.ID,
			ProductId:   line.ProductId,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			SalePrice:   line.SalePrice,
			Size:        line.Size,
			Color:       line.Color,
		}
		if err := tx.WithContext(ctx).Create(&item).Error; err != nil {
			return nil, err
		}
	}

	if _, err := RecalculateContainerCost(tx, ctx, container.ID); err != nil {
		return nil, err
	}

	err := models.AppendAudit(tx, ctx, models.AuditActionContainerCreate, "container", container.ID, map[string]interface{}{
		"name":               container.Name,
		"total_purchase_cny": container.TotalPurchaseCny,
		"total_purchase_usd": container.TotalPurchaseUsd,
		"item_count":         len(input.Items),
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return models.GetContainer(ctx, container.ID)
}

// UpdateContainer edits header fields. A purchase-total or rate change
// re-normalizes USD and reallocates unit costs; financials follow.
func UpdateContainer(ctx context.Context, containerId int, input *models.UpdateContainerInput) (*models.Container, error) {
	if err := adminRole(ctx); err != nil {
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

	var container models.Container
	if err := tx.WithContext(ctx).First(&container, containerId).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	if _, err := models.AssertPeriodOpen(tx, ctx, container.PurchaseDate); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Status != nil {
		if err := input.Status.Validate(); err != nil {
			return nil, err
		}
		updates["status"] = *input.Status
	}
	if input.ArrivalDate != nil {
		updates["arrival_date"] = *input.ArrivalDate
	}

	financialChange := false
	rate := container.ExchangeRate
	cny := container.TotalPurchaseCny
	if input.ExchangeRate != nil {
		rate = *input.ExchangeRate
		financialChange = true
	}
	if input.TotalPurchaseCny != nil {
		cny = *input.TotalPurchaseCny
		financialChange = true
	}
	if financialChange {
		updates["exchange_rate"] = rate
		updates["total_purchase_cny"] = cny
		updates["total_purchase_usd"] = models.NormalizeCnyToUsd(cny, rate)
	}

	if len(updates) == 0 {
		return models.GetContainer(ctx, containerId)
	}
	if err := tx.WithContext(ctx).Model(&container).Updates(updates).Error; err != nil {
		return nil, err
	}

	if financialChange {
		if err := AcquireContainerPostingLock(tx, containerId); err != nil {
			return nil, err
		}
		defer ReleaseContainerPostingLock(tx, containerId)
		if _, err := RecalculateContainerCost(tx, ctx, containerId); err != nil {
			return nil, err
		}
		if err := recalcAfterFinancialWrite(tx, ctx, containerId); err != nil {
			return nil, err
		}
	}

	err := models.AppendAudit(tx, ctx, models.AuditActionContainerUpdate, "container", containerId, map[string]interface{}{
		"changed_fields":   len(updates),
		"financial_change": financialChange,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return models.GetContainer(ctx, containerId)
}

// DeleteContainer removes a container and its dependent rows in teardown
// order. Refused while any sale line references the container's items.
func DeleteContainer(ctx context.Context, containerId int) error {
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

	var container models.Container
	if err := tx.WithContext(ctx).First(&container, containerId).Error; err != nil {
		return utils.ErrorRecordNotFound
	}
	if _, err := models.AssertPeriodOpen(tx, ctx, container.PurchaseDate); err != nil {
		return err
	}

	saleLines, err := container.SaleCount(tx, ctx)
	if err != nil {
		return err
	}
	if saleLines > 0 {
		return errors.New("container has recorded sales and cannot be deleted")
	}

	// Payouts and corrections first, then their parents, then item lines.
	if err := tx.WithContext(ctx).Where("container_id = ?", containerId).Delete(&models.InvestorPayout{}).Error; err != nil {
		return err
	}
	if err := tx.WithContext(ctx).Where("container_id = ?", containerId).Delete(&models.ContainerInvestment{}).Error; err != nil {
		return err
	}
	err = tx.WithContext(ctx).
		Where("expense_id IN (?)", tx.Model(&models.ContainerExpense{}).Select("id").Where("container_id = ?", containerId)).
		Delete(&models.ExpenseCorrection{}).Error
	if err != nil {
		return err
	}
	if err := tx.WithContext(ctx).Where("container_id = ?", containerId).Delete(&models.ContainerExpense{}).Error; err != nil {
		return err
	}
	if err := tx.WithContext(ctx).Where("container_id = ?", containerId).Delete(&models.ContainerItem{}).Error; err != nil {
		return err
	}
	if err := tx.WithContext(ctx).Delete(&models.Container{}, containerId).Error; err != nil {
		return err
	}

	err = models.AppendAudit(tx, ctx, models.AuditActionContainerDelete, "container", containerId, map[string]interface{}{
		"name": container.Name,
	})
	if err != nil {
		return err
	}

	return tx.Commit().Error
}
