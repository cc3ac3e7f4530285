package workflow

import (
	"context"

	"github.com/ossotrade/osso_backend/config"
	"github.com/ossotrade/osso_backend/models"
	"github.com/ossotrade/osso_backend/utils"
)

// LockFinancialPeriod closes a period against further financial writes.
// Locking an already locked period is a no-op.
func LockFinancialPeriod(ctx context.Context, periodId int, input *models.PeriodLockInput) (*models.FinancialPeriod, error) {
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

	var period models.FinancialPeriod
	if err := tx.WithContext(ctx).First(&period, periodId).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	if period.IsLocked() {
		return &period, nil
	}

	now, err := models.GetSystemNow(ctx)
	if err != nil {
		return nil, err
	}
	userId, _ := utils.GetUserIdFromContext(ctx)

	err = tx.WithContext(ctx).Model(&period).Updates(map[string]interface{}{
		"status":      models.PeriodStatusLocked,
		"locked_by":   userId,
		"locked_at":   now,
		"lock_reason": input.Reason,
	}).Error
	if err != nil {
		return nil, err
	}

	err = models.AppendAudit(tx, ctx, models.AuditActionPeriodLock, "financial_period", period.ID, map[string]interface{}{
		"month":  period.Month,
		"year":   period.Year,
		"reason": input.Reason,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return models.GetFinancialPeriod(ctx, periodId)
}

// UnlockFinancialPeriod reopens a locked period. Reserved for SUPER_ADMIN
// because it reopens settled books.
func UnlockFinancialPeriod(ctx context.Context, periodId int, input *models.PeriodLockInput) (*models.FinancialPeriod, error) {
	if err := superAdminRole(ctx); err != nil {
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

	var period models.FinancialPeriod
	if err := tx.WithContext(ctx).First(&period, periodId).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	if !period.IsLocked() {
		return &period, nil
	}

	err := tx.WithContext(ctx).Model(&period).Updates(map[string]interface{}{
		"status":        models.PeriodStatusOpen,
		"unlock_reason": input.Reason,
	}).Error
	if err != nil {
		return nil, err
	}

	err = models.AppendAudit(tx, ctx, models.AuditActionPeriodUnlock, "financial_period", period.ID, map[string]interface{}{
		"month":  period.Month,
		"year":   period.Year,
		"reason": input.Reason,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return models.GetFinancialPeriod(ctx, periodId)
}
