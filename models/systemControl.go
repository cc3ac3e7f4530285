package models

import (
	"context"
	"errors"
	"time"

	"github.com/ossotrade/osso_backend/config"
	"github.com/ossotrade/osso_backend/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const systemControlRedisKey = "systemControl"

// SystemControl is a singleton row (id=1) holding process-wide operational
// state: the cached warehouse discrepancy counter and the server-time override
// used to simulate "now" for period computations independent of the host clock.
type SystemControl struct {
	ID                        int        `gorm:"primary_key" json:"id"`
	WarehouseDiscrepancyCount int        `gorm:"default:0" json:"warehouse_discrepancy_count"`
	InventoryCheckedAt        *time.Time `json:"inventory_checked_at"`
	ServerTimeAuto            *bool      `gorm:"not null;default:true" json:"server_time_auto"`
	ManualSystemTime          *time.Time `json:"manual_system_time"`
	ServerTimeZone            string     `gorm:"size:64;default:''" json:"server_time_zone"`
	UpdatedAt                 time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// GetSystemControl returns the singleton row, creating it on first use.
// The row is cached in redis; writers must call invalidateSystemControlCache.
func GetSystemControl(ctx context.Context) (*SystemControl, error) {
	var control SystemControl
	exists, err := config.GetRedisObject(systemControlRedisKey, &control)
	if err == nil && exists {
		return &control, nil
	}

	db := config.GetDB()
	err = db.WithContext(ctx).First(&control, 1).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		control = SystemControl{ID: 1, ServerTimeAuto: utils.NewTrue()}
		if err := db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&control).Error; err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	_ = config.SetRedisObject(systemControlRedisKey, &control, time.Minute)
	return &control, nil
}

func invalidateSystemControlCache() {
	_ = config.DeleteRedisKey(systemControlRedisKey)
}

// GetSystemNow returns the host clock or the operator-pinned manual timestamp.
// All period resolution and code-expiry checks go through this, never
// time.Now directly.
func GetSystemNow(ctx context.Context) (time.Time, error) {
	control, err := GetSystemControl(ctx)
	if err != nil {
		return time.Time{}, err
	}

	loc := time.Local
	if control.ServerTimeZone != "" {
		if l, err := time.LoadLocation(control.ServerTimeZone); err == nil {
			loc = l
		}
	}

	if control.ServerTimeAuto == nil || *control.ServerTimeAuto || control.ManualSystemTime == nil {
		return time.Now().In(loc), nil
	}
	return control.ManualSystemTime.In(loc), nil
}

type SystemTimeInput struct {
	ServerTimeAuto   *bool      `json:"server_time_auto" binding:"required"`
	ManualSystemTime *time.Time `json:"manual_system_time"`
	ServerTimeZone   string     `json:"server_time_zone"`
}

// UpdateSystemTime pins or unpins the simulated server time (SUPER_ADMIN only,
// enforced by the caller's role gate).
func UpdateSystemTime(ctx context.Context, input *SystemTimeInput) (*SystemControl, error) {
	if input.ServerTimeAuto != nil && !*input.ServerTimeAuto && input.ManualSystemTime == nil {
		return nil, errors.New("manual_system_time is required when server_time_auto is false")
	}
	if input.ServerTimeZone != "" {
		if _, err := time.LoadLocation(input.ServerTimeZone); err != nil {
			return nil, errors.New("invalid server_time_zone")
		}
	}

	if _, err := GetSystemControl(ctx); err != nil {
		return nil, err
	}

	db := config.GetDB()
	updates := map[string]interface{}{
		"server_time_auto":   input.ServerTimeAuto,
		"manual_system_time": input.ManualSystemTime,
		"server_time_zone":   input.ServerTimeZone,
	}
	if err := db.WithContext(ctx).Model(&SystemControl{}).Where("id = 1").Updates(updates).Error; err != nil {
		return nil, err
	}
	invalidateSystemControlCache()
	return GetSystemControl(ctx)
}

// RefreshDiscrepancyCount recomputes the cached count of sessions currently in
// DISCREPANCY. Must run inside the caller's transaction. It never touches
// inventory_checked_at; only a confirmed session marks inventory as checked.
func RefreshDiscrepancyCount(tx *gorm.DB, ctx context.Context) (int, error) {
	var count int64
	if err := tx.WithContext(ctx).Model(&InventorySession{}).
		Where("status = ?", SessionStatusDiscrepancy).Count(&count).Error; err != nil {
		return 0, err
	}

	err := tx.WithContext(ctx).Model(&SystemControl{}).Where("id = 1").
		Update("warehouse_discrepancy_count", count).Error
	if err != nil {
		return 0, err
	}
	invalidateSystemControlCache()
	return int(count), nil
}

// StampInventoryChecked records that a count was confirmed at the given time.
// Called from the confirm-by-code path only, inside its transaction.
func StampInventoryChecked(tx *gorm.DB, ctx context.Context, now time.Time) error {
	err := tx.WithContext(ctx).Model(&SystemControl{}).Where("id = 1").
		Update("inventory_checked_at", now).Error
	if err != nil {
		return err
	}
	invalidateSystemControlCache()
	return nil
}
