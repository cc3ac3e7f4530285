package workflow

import (
	"context"
	"errors"
	"time"

	"github.com/bsm/redislock"
	"github.com/ossotrade/osso_backend/config"
	"github.com/ossotrade/osso_backend/models"
	"github.com/ossotrade/osso_backend/utils"
)

// CreateInventorySession records a physical count against recorded stock.
// A clean count is armed with a fresh confirmation code and parked in
// PENDING; any mismatch sends the session to DISCREPANCY without a code.
func CreateInventorySession(ctx context.Context, input *models.NewInventorySession) (*models.InventorySession, error) {
	if err := anyRole(ctx); err != nil {
		return nil, err
	}

	expected, err := models.RecordedStockByProduct(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]models.InventorySessionItem, 0, len(input.Items))
	for _, count := range input.Items {
		items = append(items, models.InventorySessionItem{
			ProductId:   count.ProductId,
			ExpectedQty: expected[count.ProductId],
			CountedQty:  count.CountedQty,
		})
	}
	discrepancies := models.CountDiscrepancies(items)

	db := config.GetDB()
	tx := db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()
	defer tx.Rollback()

	now, err := models.GetSystemNow(ctx)
	if err != nil {
		return nil, err
	}
	userId, _ := utils.GetUserIdFromContext(ctx)

	session := models.InventorySession{
		Status:           models.SessionStatusDiscrepancy,
		DiscrepancyCount: discrepancies,
		CreatedBy:        userId,
		Items:            items,
	}
	if discrepancies == 0 {
		code, err := models.GenerateSessionCode(func(code string) (bool, error) {
			return models.ActiveCodeTaken(tx, ctx, code)
		})
		if err != nil {
			return nil, err
		}
		session.Code = code
		session.Status = models.SessionStatusPending
		session.SentToAdminAt = &now
	}

	if err := tx.WithContext(ctx).Create(&session).Error; err != nil {
		return nil, err
	}
	if _, err := models.RefreshDiscrepancyCount(tx, ctx); err != nil {
		return nil, err
	}

	err = models.AppendAudit(tx, ctx, models.AuditActionInventoryCreate, "inventory_session", session.ID, map[string]interface{}{
		"status":            session.Status,
		"discrepancy_count": discrepancies,
		"item_count":        len(items),
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	if session.Code != "" {
		models.CacheActiveCode(session.Code)
	}
	return models.GetInventorySession(ctx, session.ID)
}

// ConfirmInventoryByCode confirms the pending session holding the code.
// Submitting the code of an already confirmed session acknowledges it again
// without touching the row.
func ConfirmInventoryByCode(ctx context.Context, code string) (*models.InventorySession, error) {
	if err := adminRole(ctx); err != nil {
		return nil, err
	}
	if err := models.ValidateCodeFormat(code); err != nil {
		return nil, err
	}

	// Best-effort cross-instance guard; the row update below is what actually
	// decides the winner.
	if locker := config.GetRedisLock(); locker != nil {
		lock, err := locker.Obtain(ctx, "inventory:confirm:"+code, 10*time.Second, nil)
		if err == nil {
			defer func() { _ = lock.Release(ctx) }()
		} else if errors.Is(err, redislock.ErrNotObtained) {
			return nil, errors.New("confirmation already in progress")
		}
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

	now, err := models.GetSystemNow(ctx)
	if err != nil {
		return nil, err
	}

	session, err := models.FindSessionByActiveCode(tx, ctx, code)
	if errors.Is(err, utils.ErrorRecordNotFound) {
		confirmed, cErr := models.FindLatestConfirmedByCode(tx, ctx, code)
		if cErr == nil {
			return confirmed, nil
		}
		return nil, utils.ErrorRecordNotFound
	}
	if err != nil {
		return nil, err
	}

	alreadyConfirmed, err := session.CheckConfirmable(now)
	if err != nil {
		return nil, err
	}
	if alreadyConfirmed {
		return session, nil
	}

	userId, _ := utils.GetUserIdFromContext(ctx)
	err = tx.WithContext(ctx).Model(session).Updates(map[string]interface{}{
		"status":       models.SessionStatusConfirmed,
		"confirmed_by": userId,
		"confirmed_at": now,
	}).Error
	if err != nil {
		return nil, err
	}
	if _, err := models.RefreshDiscrepancyCount(tx, ctx); err != nil {
		return nil, err
	}
	if err := models.StampInventoryChecked(tx, ctx, now); err != nil {
		return nil, err
	}

	err = models.AppendAudit(tx, ctx, models.AuditActionInventoryConfirm, "inventory_session", session.ID, map[string]interface{}{
		"code": code,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	models.ReleaseActiveCode(code)
	return models.GetInventorySession(ctx, session.ID)
}

// ResolveInventoryDiscrepancy closes out a DISCREPANCY session: corrected
// counts are replayed onto its items, the mismatch counter is cleared and the
// session is re-armed with a fresh code back in PENDING, ready for the usual
// confirm-by-code round.
func ResolveInventoryDiscrepancy(ctx context.Context, sessionId int, input *models.NewInventorySession) (*models.InventorySession, error) {
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

	var session models.InventorySession
	if err := tx.WithContext(ctx).Preload("Items").First(&session, sessionId).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	if session.Status != models.SessionStatusDiscrepancy {
		return nil, errors.New("session has no unresolved discrepancies")
	}

	now, err := models.GetSystemNow(ctx)
	if err != nil {
		return nil, err
	}

	corrected := make(map[int]int, len(input.Items))
	for _, count := range input.Items {
		corrected[count.ProductId] = count.CountedQty
	}
	for i := range session.Items {
		if counted, ok := corrected[session.Items[i].ProductId]; ok {
			session.Items[i].CountedQty = counted
			err := tx.WithContext(ctx).Model(&session.Items[i]).
				Update("counted_qty", counted).Error
			if err != nil {
				return nil, err
			}
		}
	}
	newCode, err := models.GenerateSessionCode(func(code string) (bool, error) {
		return models.ActiveCodeTaken(tx, ctx, code)
	})
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"discrepancy_count": 0,
		"code":              newCode,
		"status":            models.SessionStatusPending,
		"sent_to_admin_at":  now,
		"created_at":        now, // restart the code validity window
	}
	if err := tx.WithContext(ctx).Model(&session).Updates(updates).Error; err != nil {
		return nil, err
	}
	if _, err := models.RefreshDiscrepancyCount(tx, ctx); err != nil {
		return nil, err
	}

	err = models.AppendAudit(tx, ctx, models.AuditActionInventoryResolve, "inventory_session", sessionId, map[string]interface{}{
		"code": newCode,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	models.CacheActiveCode(newCode)
	return models.GetInventorySession(ctx, sessionId)
}

// DeleteInventorySession drops a count. Confirmed sessions are part of the
// audit history and only SUPER_ADMIN may remove them.
func DeleteInventorySession(ctx context.Context, sessionId int) error {
	db := config.GetDB()
	tx := db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()
	defer tx.Rollback()

	var session models.InventorySession
	if err := tx.WithContext(ctx).First(&session, sessionId).Error; err != nil {
		return utils.ErrorRecordNotFound
	}

	if session.Status == models.SessionStatusConfirmed {
		if err := superAdminRole(ctx); err != nil {
			return err
		}
	} else {
		if err := adminRole(ctx); err != nil {
			return err
		}
	}

	if err := tx.WithContext(ctx).Where("session_id = ?", sessionId).Delete(&models.InventorySessionItem{}).Error; err != nil {
		return err
	}
	if err := tx.WithContext(ctx).Delete(&models.InventorySession{}, sessionId).Error; err != nil {
		return err
	}
	if _, err := models.RefreshDiscrepancyCount(tx, ctx); err != nil {
		return err
	}

	err := models.AppendAudit(tx, ctx, models.AuditActionInventoryDelete, "inventory_session", sessionId, map[string]interface{}{
		"status": session.Status,
	})
	if err != nil {
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return err
	}
	if session.Status != models.SessionStatusConfirmed {
		models.ReleaseActiveCode(session.Code)
	}
	return nil
}
