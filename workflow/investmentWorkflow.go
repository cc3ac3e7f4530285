package workflow

import (
	"context"

	"github.com/ossotrade/osso_backend/config"
	"github.com/ossotrade/osso_backend/models"
	"github.com/ossotrade/osso_backend/utils"
	"github.com/shopspring/decimal"
)

// CreateInvestment records an investor's stake and rederives every share in
// the container's investment set.
func CreateInvestment(ctx context.Context, input *models.NewContainerInvestment) (*models.ContainerInvestment, error) {
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
	if err := tx.WithContext(ctx).First(&models.Investor{}, input.InvestorId).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}

	now, err := models.GetSystemNow(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := models.AssertPeriodOpen(tx, ctx, now); err != nil {
		return nil, err
	}

	investment := models.ContainerInvestment{
		ContainerId:    input.ContainerId,
		InvestorId:     input.InvestorId,
		InvestedAmount: input.InvestedAmount,
	}
	if err := tx.WithContext(ctx).Create(&investment).Error; err != nil {
		return nil, err
	}

	if _, err := RecalculateInvestorShares(tx, ctx, input.ContainerId); err != nil {
		return nil, err
	}

	err = models.AppendAudit(tx, ctx, models.AuditActionInvestmentCreate, "container_investment", investment.ID, map[string]interface{}{
		"container_id":    input.ContainerId,
		"investor_id":     input.InvestorId,
		"invested_amount": input.InvestedAmount,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return models.GetContainerInvestment(ctx, investment.ID)
}

// UpdateInvestment replaces the invested amount; shares across the container
// shift accordingly.
func UpdateInvestment(ctx context.Context, investmentId int, investedAmount decimal.Decimal) (*models.ContainerInvestment, error) {
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

	var investment models.ContainerInvestment
	if err := tx.WithContext(ctx).First(&investment, investmentId).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}

	now, err := models.GetSystemNow(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := models.AssertPeriodOpen(tx, ctx, now); err != nil {
		return nil, err
	}

	if err := tx.WithContext(ctx).Model(&investment).Update("invested_amount", investedAmount).Error; err != nil {
		return nil, err
	}
	if _, err := RecalculateInvestorShares(tx, ctx, investment.ContainerId); err != nil {
		return nil, err
	}

	err = models.AppendAudit(tx, ctx, models.AuditActionInvestmentUpdate, "container_investment", investmentId, map[string]interface{}{
		"container_id":    investment.ContainerId,
		"investor_id":     investment.InvestorId,
		"invested_amount": investedAmount,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return models.GetContainerInvestment(ctx, investmentId)
}

// DeleteInvestment removes a stake and redistributes the remaining shares.
func DeleteInvestment(ctx context.Context, investmentId int) error {
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

	var investment models.ContainerInvestment
	if err := tx.WithContext(ctx).First(&investment, investmentId).Error; err != nil {
		return utils.ErrorRecordNotFound
	}

	now, err := models.GetSystemNow(ctx)
	if err != nil {
		return err
	}
	if _, err := models.AssertPeriodOpen(tx, ctx, now); err != nil {
		return err
	}

	if err := tx.WithContext(ctx).Delete(&models.ContainerInvestment{}, investmentId).Error; err != nil {
		return err
	}
	if _, err := RecalculateInvestorShares(tx, ctx, investment.ContainerId); err != nil {
		return err
	}

	err = models.AppendAudit(tx, ctx, models.AuditActionInvestmentDelete, "container_investment", investmentId, map[string]interface{}{
		"container_id": investment.ContainerId,
		"investor_id":  investment.InvestorId,
	})
	if err != nil {
		return err
	}

	return tx.Commit().Error
}

// CreatePayout records a cash payout against a container's profit. Payouts
// are deliberately not capped by the owed balance; the remaining figure in
// the audit entry may go negative.
func CreatePayout(ctx context.Context, input *models.NewInvestorPayout) (*models.InvestorPayout, error) {
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
	if err := tx.WithContext(ctx).First(&container, input.ContainerId).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	var investment models.ContainerInvestment
	err := tx.WithContext(ctx).
		Where("container_id = ? AND investor_id = ?", input.ContainerId, input.InvestorId).
		First(&investment).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}

	now, err := models.GetSystemNow(ctx)
	if err != nil {
		return nil, err
	}
	payoutDate := input.PayoutDate
	if payoutDate.IsZero() {
		payoutDate = now
	}
	if _, err := models.AssertPeriodOpen(tx, ctx, payoutDate); err != nil {
		return nil, err
	}

	payout := models.InvestorPayout{
		ContainerId: input.ContainerId,
		InvestorId:  input.InvestorId,
		Amount:      input.Amount,
		PayoutDate:  payoutDate,
		Note:        input.Note,
	}
	if err := tx.WithContext(ctx).Create(&payout).Error; err != nil {
		return nil, err
	}

	paidTotal, err := models.SumPayouts(tx, ctx, input.ContainerId, input.InvestorId)
	if err != nil {
		return nil, err
	}
	owed := models.ProfitOwed(container.NetProfit, investment.PercentageShare)

	err = models.AppendAudit(tx, ctx, models.AuditActionPayoutCreate, "investor_payout", payout.ID, map[string]interface{}{
		"container_id": input.ContainerId,
		"investor_id":  input.InvestorId,
		"amount":       input.Amount,
		"profit_owed":  owed,
		"paid_total":   paidTotal,
		"remaining":    owed.Sub(paidTotal),
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &payout, nil
}
