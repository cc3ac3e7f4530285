package workflow

import (
	"context"

	"github.com/ossotrade/osso_backend/config"
	"github.com/ossotrade/osso_backend/models"
	"github.com/ossotrade/osso_backend/utils"
)

// CreateContainerExpense attributes a new expense to a container and reruns
// cost allocation and financials under the container's posting lock.
func CreateContainerExpense(ctx context.Context, input *models.NewContainerExpense) (*models.ContainerExpense, error) {
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

	if err := tx.WithContext(ctx).First(&models.Container{}, input.ContainerId).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}

	expenseDate := input.ExpenseDate
	if expenseDate.IsZero() {
		now, err := models.GetSystemNow(ctx)
		if err != nil {
			return nil, err
		}
		expenseDate = now
	}
	if _, err := models.AssertPeriodOpen(tx, ctx, expenseDate); err != nil {
		return nil, err
	}

	userId, _ := utils.GetUserIdFromContext(ctx)
	expense := models.ContainerExpense{
		ContainerId: input.ContainerId,
		Amount:      input.Amount,
		Description: input.Description,
		ExpenseDate: expenseDate,
		CreatedBy:   userId,
	}
	if err := tx.WithContext(ctx).Create(&expense).Error; err != nil {
		return nil, err
	}

	if err := AcquireContainerPostingLock(tx, input.ContainerId); err != nil {
		return nil, err
	}
	defer ReleaseContainerPostingLock(tx, input.ContainerId)

	if _, err := RecalculateContainerCost(tx, ctx, input.ContainerId); err != nil {
		return nil, err
	}
	if err := recalcAfterFinancialWrite(tx, ctx, input.ContainerId); err != nil {
		return nil, err
	}

	err := models.AppendAudit(tx, ctx, models.AuditActionExpenseCreate, "container_expense", expense.ID, map[string]interface{}{
		"container_id": input.ContainerId,
		"amount":       input.Amount,
		"description":  input.Description,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return models.GetContainerExpense(ctx, expense.ID)
}

// CorrectContainerExpense appends a signed correction delta. The base expense
// row is immutable; the correction trail is the edit history.
func CorrectContainerExpense(ctx context.Context, expenseId int, input *models.NewExpenseCorrection) (*models.ContainerExpense, error) {
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

	var expense models.ContainerExpense
	if err := tx.WithContext(ctx).First(&expense, expenseId).Error; err != nil {
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
	correction := models.ExpenseCorrection{
		ExpenseId: expenseId,
		Amount:    input.Amount,
		Reason:    input.Reason,
		CreatedBy: userId,
	}
	if err := tx.WithContext(ctx).Create(&correction).Error; err != nil {
		return nil, err
	}

	if err := AcquireContainerPostingLock(tx, expense.ContainerId); err != nil {
		return nil, err
	}
	defer ReleaseContainerPostingLock(tx, expense.ContainerId)

	if _, err := RecalculateContainerCost(tx, ctx, expense.ContainerId); err != nil {
		return nil, err
	}
	if err := recalcAfterFinancialWrite(tx, ctx, expense.ContainerId); err != nil {
		return nil, err
	}

	err = models.AppendAudit(tx, ctx, models.AuditActionExpenseCorrect, "container_expense", expenseId, map[string]interface{}{
		"container_id": expense.ContainerId,
		"delta":        input.Amount,
		"reason":       input.Reason,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return models.GetContainerExpense(ctx, expenseId)
}

// DeleteContainerExpense removes an expense with its corrections and reruns
// the recalculation chain.
func DeleteContainerExpense(ctx context.Context, expenseId int) error {
	if err := adminRole(ctx); err != nil {
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

	var expense models.ContainerExpense
	if err := tx.WithContext(ctx).First(&expense, expenseId).Error; err != nil {
		return utils.ErrorRecordNotFound
	}
	if _, err := models.AssertPeriodOpen(tx, ctx, expense.ExpenseDate); err != nil {
		return err
	}

	if err := tx.WithContext(ctx).Where("expense_id = ?", expenseId).Delete(&models.ExpenseCorrection{}).Error; err != nil {
		return err
	}
	if err := tx.WithContext(ctx).Delete(&models.ContainerExpense{}, expenseId).Error; err != nil {
		return err
	}

	if err := AcquireContainerPostingLock(tx, expense.ContainerId); err != nil {
		return err
	}
	defer ReleaseContainerPostingLock(tx, expense.ContainerId)

	if _, err := RecalculateContainerCost(tx, ctx, expense.ContainerId); err != nil {
		return err
	}
	if err := recalcAfterFinancialWrite(tx, ctx, expense.ContainerId); err != nil {
		return err
	}

	err := models.AppendAudit(tx, ctx, models.AuditActionExpenseDelete, "container_expense", expenseId, map[string]interface{}{
		"container_id": expense.ContainerId,
		"amount":       expense.Amount,
	})
	if err != nil {
		return err
	}

	return tx.Commit().Error
}
