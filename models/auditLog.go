package models

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/ossotrade/osso_backend/config"
	"github.com/ossotrade/osso_backend/utils"
	"gorm.io/gorm"
)

// AuditLog is append-only: one row per financial or lock-state mutation,
// written in the same transaction as the business effect so audit and effect
// are never observed inconsistently.
type AuditLog struct {
	ID            int       `gorm:"primary_key" json:"id"`
	Action        string    `gorm:"size:64;not null;index" json:"action"`
	EntityType    string    `gorm:"size:64;not null;index" json:"entity_type"`
	EntityId      int       `gorm:"index" json:"entity_id"`
	Metadata      string    `gorm:"type:text" json:"metadata"`
	CreatedBy     int       `gorm:"index;not null" json:"created_by"`
	CorrelationId string    `gorm:"size:64" json:"correlation_id"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// AppendAudit marshals metadata and inserts the audit row on the caller's tx.
// The acting user id comes from the request context.
func AppendAudit(tx *gorm.DB, ctx context.Context, action string, entityType string, entityId int, metadata map[string]interface{}) error {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok {
		return errors.New("user id is required")
	}

	m, err := json.Marshal(metadata)
	if err != nil {
		return err
	}

	record := AuditLog{
		Action:        action,
		EntityType:    entityType,
		EntityId:      entityId,
		Metadata:      string(m),
		CreatedBy:     userId,
		CorrelationId: correlationIdFromContextOrNew(ctx),
	}
	return tx.WithContext(ctx).Create(&record).Error
}

func correlationIdFromContextOrNew(ctx context.Context) string {
	if ctx != nil {
		if v, ok := utils.GetCorrelationIdFromContext(ctx); ok && v != "" {
			return v
		}
	}
	return uuid.NewString()
}

func GetAuditLogs(ctx context.Context, entityType *string, entityId *int) ([]*AuditLog, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx)
	if entityType != nil && *entityType != "" {
		dbCtx = dbCtx.Where("entity_type = ?", *entityType)
	}
	if entityId != nil && *entityId > 0 {
		dbCtx = dbCtx.Where("entity_id = ?", *entityId)
	}
	var logs []*AuditLog
	if err := dbCtx.Order("id DESC").Limit(200).Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
