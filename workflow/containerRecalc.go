package workflow

import (
	"context"

	"github.com/ossotrade/osso_backend/models"
	"github.com/ossotrade/osso_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// The recalculation engine. Every function here runs on the caller's open
// transaction, after the primary write, and is idempotent: recomputing twice
// with no intervening writes yields identical rows.

type CostRecalcResult struct {
	TotalQuantity int             `json:"total_quantity"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
}

// RecalculateContainerCost recomputes the per-unit cost for every item in the
// container. Invoked after purchase totals, expenses/corrections, or
// structural quantity changes; sales do not trigger it since they only reduce
// quantity without altering the cost basis.
func RecalculateContainerCost(tx *gorm.DB, ctx context.Context, containerId int) (*CostRecalcResult, error) {
	var container models.Container
	if err := tx.WithContext(ctx).First(&container, containerId).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}

	expenses, err := effectiveExpenses(tx, ctx, containerId)
	if err != nil {
		return nil, err
	}
	totalExpenses := decimal.Zero
	for _, e := range expenses {
		totalExpenses = totalExpenses.Add(e)
	}

	var totalQty *int
	if err := tx.WithContext(ctx).Model(&models.ContainerItem{}).
		Where("container_id = ?", containerId).
		Select("COALESCE(SUM(quantity), 0)").Scan(&totalQty).Error; err != nil {
		return nil, err
	}
	qty := 0
	if totalQty != nil {
		qty = *totalQty
	}

	unitCost := models.ComputeUnitCost(container.TotalPurchaseUsd, totalExpenses, qty)
	if err := tx.WithContext(ctx).Model(&models.ContainerItem{}).
		Where("container_id = ?", containerId).
		Update("cost_per_unit", unitCost).Error; err != nil {
		return nil, err
	}

	return &CostRecalcResult{TotalQuantity: qty, UnitCost: unitCost}, nil
}

// RecalculateContainerFinancials recomputes revenue, COGS, effective expenses
// and net profit from current line data and writes the aggregates back onto
// the container row.
func RecalculateContainerFinancials(tx *gorm.DB, ctx context.Context, containerId int) (*models.ContainerFinancials, error) {
	type lineRow struct {
		Quantity         int
		SalePricePerUnit decimal.Decimal
		CostPerUnit      decimal.Decimal
		Returned         int
	}
	var rows []lineRow
	err := tx.WithContext(ctx).Model(&models.SaleItem{}).
		Select(`sale_items.quantity,
			sale_items.sale_price_per_unit,
			sale_items.cost_per_unit,
			COALESCE(SUM(return_items.quantity), 0) AS returned`).
		Joins("JOIN container_items ON container_items.id = sale_items.container_item_id").
		Joins("LEFT JOIN return_items ON return_items.sale_item_id = sale_items.id").
		Where("container_items.container_id = ?", containerId).
		Group("sale_items.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	lines := make([]models.SaleLineFact, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, models.SaleLineFact{
			Quantity:         r.Quantity,
			ReturnedQuantity: r.Returned,
			SalePricePerUnit: r.SalePricePerUnit,
			CostPerUnit:      r.CostPerUnit,
		})
	}

	expenses, err := effectiveExpenses(tx, ctx, containerId)
	if err != nil {
		return nil, err
	}

	financials := models.ComputeContainerFinancials(lines, expenses)
	err = tx.WithContext(ctx).Model(&models.Container{}).
		Where("id = ?", containerId).
		Updates(map[string]interface{}{
			"total_expenses": financials.Expenses,
			"net_profit":     financials.NetProfit,
		}).Error
	if err != nil {
		return nil, err
	}
	return &financials, nil
}

type ShareRecalcResult struct {
	InvestedTotal   decimal.Decimal `json:"invested_total"`
	ExpectedTotal   decimal.Decimal `json:"expected_total"`
	MatchesExpected bool            `json:"matches_expected"`
}

// RecalculateInvestorShares rederives each investment's percentage share from
// the contribution ratio. The matchesExpected flag is a soft diagnostic for
// operators; investments and container costs are allowed to diverge.
func RecalculateInvestorShares(tx *gorm.DB, ctx context.Context, containerId int) (*ShareRecalcResult, error) {
	var container models.Container
	if err := tx.WithContext(ctx).First(&container, containerId).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}

	var investments []models.ContainerInvestment
	if err := tx.WithContext(ctx).
		Where("container_id = ?", containerId).
		Order("id").
		Find(&investments).Error; err != nil {
		return nil, err
	}

	invested := make([]decimal.Decimal, len(investments))
	for i, inv := range investments {
		invested[i] = inv.InvestedAmount
	}
	shares, total := models.ComputeShares(invested)

	for i := range investments {
		if investments[i].PercentageShare.Equal(shares[i]) {
			continue
		}
		if err := tx.WithContext(ctx).Model(&investments[i]).
			Update("percentage_share", shares[i]).Error; err != nil {
			return nil, err
		}
	}

	expected := container.TotalPurchaseUsd.Add(container.TotalExpenses)
	return &ShareRecalcResult{
		InvestedTotal:   total,
		ExpectedTotal:   expected,
		MatchesExpected: models.SharesMatchExpected(total, container.TotalPurchaseUsd, container.TotalExpenses),
	}, nil
}

// hasInvestments reports whether shares need recomputing after a financial
// change on the container.
func hasInvestments(tx *gorm.DB, ctx context.Context, containerId int) (bool, error) {
	var count int64
	err := tx.WithContext(ctx).Model(&models.ContainerInvestment{}).
		Where("container_id = ?", containerId).Count(&count).Error
	return count > 0, err
}

func effectiveExpenses(tx *gorm.DB, ctx context.Context, containerId int) ([]decimal.Decimal, error) {
	var expenses []models.ContainerExpense
	if err := tx.WithContext(ctx).
		Where("container_id = ?", containerId).
		Preload("Corrections").
		Find(&expenses).Error; err != nil {
		return nil, err
	}
	result := make([]decimal.Decimal, 0, len(expenses))
	for i := range expenses {
		result = append(result, expenses[i].EffectiveAmount())
	}
	return result, nil
}

// recalcAfterFinancialWrite is the standard post-write sequence: financials
// always, shares only when the container has investments.
func recalcAfterFinancialWrite(tx *gorm.DB, ctx context.Context, containerId int) error {
	if _, err := RecalculateContainerFinancials(tx, ctx, containerId); err != nil {
		return err
	}
	has, err := hasInvestments(tx, ctx, containerId)
	if err != nil {
		return err
	}
	if has {
		if _, err := RecalculateInvestorShares(tx, ctx, containerId); err != nil {
			return err
		}
	}
	return nil
}
