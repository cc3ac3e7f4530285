package models

import (
	"context"
	"errors"
	"time"

	"github.com/ossotrade/osso_backend/config"
	"github.com/ossotrade/osso_backend/utils"
	"gorm.io/gorm"
)

// FinancialPeriod is a calendar-month accounting bucket. Once LOCKED it acts
// as a write barrier: every mutating financial record dated within it is
// rejected until an explicit unlock.
type FinancialPeriod struct {
	ID           int          `gorm:"primary_key" json:"id"`
	Month        int          `gorm:"not null;uniqueIndex:idx_period_month_year" json:"month"`
	Year         int          `gorm:"not null;uniqueIndex:idx_period_month_year" json:"year"`
	Status       PeriodStatus `gorm:"type:enum('OPEN','LOCKED');not null;default:'OPEN'" json:"status"`
	LockedBy     int          `gorm:"default:null" json:"locked_by"`
	LockedAt     *time.Time   `json:"locked_at"`
	LockReason   string       `gorm:"size:255;default:null" json:"lock_reason"`
	UnlockReason string       `gorm:"size:255;default:null" json:"unlock_reason"`
	CreatedAt    time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *FinancialPeriod) IsLocked() bool {
	return p.Status == PeriodStatusLocked
}

// Before reports whether p's calendar month is strictly before (month, year).
func (p *FinancialPeriod) Before(month, year int) bool {
	if p.Year != year {
		return p.Year < year
	}
	return p.Month < month
}

// PickCurrentPeriod is the pure resolution rule for "the current open period":
//
//   - an existing record for now's exact calendar month is authoritative, even
//     when locked (callers see LOCKED and must fail writes);
//   - otherwise, while the most recent prior period is still OPEN the system
//     stays in it — no forward rollover until the previous month is closed;
//   - only when the most recent prior period is LOCKED (or none exists) is a
//     fresh OPEN period for now's month created.
//
// The returned createNew flag tells the caller to insert a new row.
func PickCurrentPeriod(exact *FinancialPeriod, latestPrior *FinancialPeriod) (period *FinancialPeriod, createNew bool) {
	if exact != nil {
		return exact, false
	}
	if latestPrior != nil && !latestPrior.IsLocked() {
		return latestPrior, false
	}
	return nil, true
}

// ResolveCurrentPeriod applies PickCurrentPeriod against the store, lazily
// creating the period row when required. Runs on the caller's tx so a created
// period is rolled back together with a failed mutation.
func ResolveCurrentPeriod(tx *gorm.DB, ctx context.Context, now time.Time) (*FinancialPeriod, error) {
	month, year := int(now.Month()), now.Year()

	var exact FinancialPeriod
	err := tx.WithContext(ctx).Where("month = ? AND year = ?", month, year).First(&exact).Error
	if err == nil {
		return &exact, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var prior FinancialPeriod
	err = tx.WithContext(ctx).
		Where("year < ? OR (year = ? AND month <= ?)", year, year, month).
		Order("year DESC, month DESC").
		First(&prior).Error
	priorPtr := &prior
	if errors.Is(err, gorm.ErrRecordNotFound) {
		priorPtr = nil
	} else if err != nil {
		return nil, err
	}

	period, createNew := PickCurrentPeriod(nil, priorPtr)
	if !createNew {
		return period, nil
	}

	fresh := FinancialPeriod{Month: month, Year: year, Status: PeriodStatusOpen}
	if err := tx.WithContext(ctx).Create(&fresh).Error; err != nil {
		return nil, err
	}
	return &fresh, nil
}

// AssertPeriodOpen resolves the period containing date and fails with
// ErrorPeriodLocked when it is locked. Every mutating financial action calls
// this (or AssertPeriodOpenById) before writing.
func AssertPeriodOpen(tx *gorm.DB, ctx context.Context, date time.Time) (*FinancialPeriod, error) {
	period, err := ResolveCurrentPeriod(tx, ctx, date)
	if err != nil {
		return nil, err
	}
	if period.IsLocked() {
		return nil, utils.ErrorPeriodLocked
	}
	return period, nil
}

// AssertPeriodOpenById gates writes that belong to a fixed historical period
// (e.g. deleting a sale checks the sale's original period, not today's).
func AssertPeriodOpenById(tx *gorm.DB, ctx context.Context, periodId int) (*FinancialPeriod, error) {
	var period FinancialPeriod
	if err := tx.WithContext(ctx).First(&period, periodId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	if period.IsLocked() {
		return nil, utils.ErrorPeriodLocked
	}
	return &period, nil
}

type PeriodLockInput struct {
	Reason string `json:"reason" binding:"required"`
}

func GetFinancialPeriod(ctx context.Context, id int) (*FinancialPeriod, error) {
	return utils.FetchModel[FinancialPeriod](ctx, id)
}

func GetFinancialPeriods(ctx context.Context) ([]*FinancialPeriod, error) {
	db := config.GetDB()
	var periods []*FinancialPeriod
	if err := db.WithContext(ctx).Order("year DESC, month DESC").Find(&periods).Error; err != nil {
		return nil, err
	}
	return periods, nil
}
