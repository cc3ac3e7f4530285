package models

import (
	"context"
	"time"

	"github.com/ossotrade/osso_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ContainerInvestment is an investor's capital stake in a container.
// PercentageShare is derived from the contribution ratio and recomputed
// whenever any investment in the container's set changes.
type ContainerInvestment struct {
	ID              int             `gorm:"primary_key" json:"id"`
	ContainerId     int             `gorm:"index;not null" json:"container_id" binding:"required"`
	InvestorId      int             `gorm:"index;not null" json:"investor_id" binding:"required"`
	InvestedAmount  decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"invested_amount"`
	PercentageShare decimal.Decimal `gorm:"type:decimal(10,4);default:0" json:"percentage_share"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// InvestorPayout is a cash payment against a container's profit. Payouts are
// not capped at the remaining owed balance; overpayment shows up as a negative
// remaining balance.
type InvestorPayout struct {
	ID          int             `gorm:"primary_key" json:"id"`
	ContainerId int             `gorm:"index;not null" json:"container_id" binding:"required"`
	InvestorId  int             `gorm:"index;not null" json:"investor_id" binding:"required"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	PayoutDate  time.Time       `gorm:"not null" json:"payout_date"`
	Note        string          `gorm:"size:255" json:"note"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type NewContainerInvestment struct {
	ContainerId    int             `json:"container_id" binding:"required"`
	InvestorId     int             `json:"investor_id" binding:"required"`
	InvestedAmount decimal.Decimal `json:"invested_amount" binding:"required"`
}

type NewInvestorPayout struct {
	ContainerId int             `json:"container_id" binding:"required"`
	InvestorId  int             `json:"investor_id" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	PayoutDate  time.Time       `json:"payout_date"`
	Note        string          `json:"note"`
}

func GetContainerInvestment(ctx context.Context, id int) (*ContainerInvestment, error) {
	return utils.FetchModel[ContainerInvestment](ctx, id)
}

// InvestorBalance is the operator-facing settlement view for one
// (investor, container) pair.
type InvestorBalance struct {
	InvestorId      int             `json:"investor_id"`
	ContainerId     int             `json:"container_id"`
	InvestedAmount  decimal.Decimal `json:"invested_amount"`
	PercentageShare decimal.Decimal `json:"percentage_share"`
	ProfitOwed      decimal.Decimal `json:"profit_owed"`
	TotalPaidOut    decimal.Decimal `json:"total_paid_out"`
	Remaining       decimal.Decimal `json:"remaining"`
}

// GetInvestorBalances derives owed profit and remaining balance per investor
// for a container from the current netProfit, shares and recorded payouts.
func GetInvestorBalances(ctx context.Context, containerId int) ([]*InvestorBalance, error) {
	container, err := utils.FetchModel[Container](ctx, containerId, "Investments", "Payouts")
	if err != nil {
		return nil, err
	}

	paidOut := make(map[int]decimal.Decimal)
	for _, p := range container.Payouts {
		paidOut[p.InvestorId] = paidOut[p.InvestorId].Add(p.Amount)
	}

	balances := make([]*InvestorBalance, 0, len(container.Investments))
	for _, inv := range container.Investments {
		owed := ProfitOwed(container.NetProfit, inv.PercentageShare)
		paid := paidOut[inv.InvestorId]
		balances = append(balances, &InvestorBalance{
			InvestorId:      inv.InvestorId,
			ContainerId:     containerId,
			InvestedAmount:  inv.InvestedAmount,
			PercentageShare: inv.PercentageShare,
			ProfitOwed:      owed,
			TotalPaidOut:    paid,
			Remaining:       owed.Sub(paid),
		})
	}
	return balances, nil
}

// SumPayouts totals the cash already paid out to one investor for a
// container. Runs on the caller's transaction so a payout being posted sees
// its own predecessors.
func SumPayouts(tx *gorm.DB, ctx context.Context, containerId int, investorId int) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := tx.WithContext(ctx).Model(&InvestorPayout{}).
		Where("container_id = ? AND investor_id = ?", containerId, investorId).
		Select("COALESCE(SUM(amount), 0)").Scan(&total).Error
	return total, err
}
