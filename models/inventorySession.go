package models

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"time"

	"github.com/ossotrade/osso_backend/config"
	"github.com/ossotrade/osso_backend/utils"
	"gorm.io/gorm"
)

// CodeValidityWindow bounds how long a confirmation code stays usable after
// the count was submitted. Expiry forces a fresh count, not a fresh code.
const CodeValidityWindow = 10 * time.Minute

const codeGenerationAttempts = 50

var codePattern = regexp.MustCompile(`^\d{3}$`)

// activeCodesRedisKey holds the set of codes currently held by non-confirmed
// sessions. Cache only; the database remains the source of truth.
const activeCodesRedisKey = "inventory:activeCodes"

// InventorySession is one physical stock count. A clean count gets a 3-digit
// confirmation code and waits in PENDING; a count with mismatches goes to
// DISCREPANCY without a code until an administrator resolves it.
type InventorySession struct {
	ID               int                    `gorm:"primary_key" json:"id"`
	Code             string                 `gorm:"size:3;index" json:"code"`
	Status           SessionStatus          `gorm:"type:enum('PENDING','DISCREPANCY','CONFIRMED');not null" json:"status"`
	DiscrepancyCount int                    `gorm:"default:0" json:"discrepancy_count"`
	CreatedBy        int                    `gorm:"index;not null" json:"created_by"`
	ConfirmedBy      int                    `gorm:"default:null" json:"confirmed_by"`
	ConfirmedAt      *time.Time             `json:"confirmed_at"`
	SentToAdminAt    *time.Time             `json:"sent_to_admin_at"`
	Items            []InventorySessionItem `gorm:"foreignKey:SessionId" json:"items"`
	CreatedAt        time.Time              `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time              `gorm:"autoUpdateTime" json:"updated_at"`
}

type InventorySessionItem struct {
	ID          int       `gorm:"primary_key" json:"id"`
	SessionId   int       `gorm:"index;not null" json:"session_id"`
	ProductId   int       `gorm:"index;not null" json:"product_id" binding:"required"`
	ExpectedQty int       `gorm:"not null" json:"expected_qty"`
	CountedQty  int       `gorm:"not null" json:"counted_qty"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type NewInventorySession struct {
	Items []NewInventoryCount `json:"items" binding:"required,min=1"`
}

type NewInventoryCount struct {
	ProductId  int `json:"product_id" binding:"required"`
	CountedQty int `json:"counted_qty" binding:"gte=0"`
}

// ValidateCodeFormat enforces the exact external contract for codes.
func ValidateCodeFormat(code string) error {
	if !codePattern.MatchString(code) {
		return errors.New("code must be exactly 3 digits")
	}
	return nil
}

// CountDiscrepancies counts lines whose counted quantity disagrees with the
// recorded quantity.
func CountDiscrepancies(items []InventorySessionItem) int {
	count := 0
	for _, item := range items {
		if item.CountedQty != item.ExpectedQty {
			count++
		}
	}
	return count
}

// GenerateSessionCode rejection-samples a 3-digit code not currently held by
// any non-confirmed session. Uniqueness among active sessions only; confirmed
// sessions release their code for reuse.
func GenerateSessionCode(taken func(code string) (bool, error)) (string, error) {
	for i := 0; i < codeGenerationAttempts; i++ {
		code := fmt.Sprintf("%03d", rand.Intn(1000))
		inUse, err := taken(code)
		if err != nil {
			return "", err
		}
		if !inUse {
			return code, nil
		}
	}
	return "", utils.ErrorCodeGenerationExhausted
}

// CheckConfirmable decides what confirm-by-code may do with this session at
// the given time. alreadyConfirmed=true means idempotent success: repeat
// confirmations acknowledge without touching the row.
func (s *InventorySession) CheckConfirmable(now time.Time) (alreadyConfirmed bool, err error) {
	switch s.Status {
	case SessionStatusConfirmed:
		return true, nil
	case SessionStatusDiscrepancy:
		return false, utils.ErrorDiscrepancyBlocksConfirmation
	}
	if now.Sub(s.CreatedAt) > CodeValidityWindow {
		return false, utils.ErrorCodeExpired
	}
	return false, nil
}

// ActiveCodeTaken reports whether a non-confirmed session already holds the
// code. Consults the redis set first, then the database as source of truth.
func ActiveCodeTaken(tx *gorm.DB, ctx context.Context, code string) (bool, error) {
	if member, err := config.IsRedisSetMember(activeCodesRedisKey, code); err == nil && member {
		return true, nil
	}
	var count int64
	err := tx.WithContext(ctx).Model(&InventorySession{}).
		Where("code = ? AND status != ?", code, SessionStatusConfirmed).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CacheActiveCode / ReleaseActiveCode keep the redis set in step with the
// database after commit. Failures are ignored: the set is an optimization.
func CacheActiveCode(code string) {
	_ = config.AddRedisSet(activeCodesRedisKey, code)
}

func ReleaseActiveCode(code string) {
	if code == "" {
		return
	}
	_ = config.RemoveRedisSet(activeCodesRedisKey, code)
}

// FindSessionByActiveCode looks up the unique non-confirmed session holding
// the code, locking the row for the confirmation update.
func FindSessionByActiveCode(tx *gorm.DB, ctx context.Context, code string) (*InventorySession, error) {
	var session InventorySession
	err := tx.WithContext(ctx).
		Where("code = ? AND status != ?", code, SessionStatusConfirmed).
		Order("id DESC").
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrorRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// FindLatestConfirmedByCode supports idempotent confirmation: when no active
// session holds the code but a confirmed one does, repeat submission is an
// acknowledgment, not an error.
func FindLatestConfirmedByCode(tx *gorm.DB, ctx context.Context, code string) (*InventorySession, error) {
	var session InventorySession
	err := tx.WithContext(ctx).
		Where("code = ? AND status = ?", code, SessionStatusConfirmed).
		Order("confirmed_at DESC").
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrorRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func GetInventorySession(ctx context.Context, id int) (*InventorySession, error) {
	return utils.FetchModel[InventorySession](ctx, id, "Items")
}

func GetInventorySessions(ctx context.Context, status *SessionStatus) ([]*InventorySession, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx)
	if status != nil && *status != "" {
		dbCtx = dbCtx.Where("status = ?", *status)
	}
	var sessions []*InventorySession
	if err := dbCtx.Preload("Items").Order("id DESC").Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}
