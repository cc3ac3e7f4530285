package workflow

import (
	"fmt"

	"gorm.io/gorm"
)

// AcquireContainerPostingLock serializes recomputation per container across
// instances using MySQL advisory locks.
// NOTE: GET_LOCK is connection-scoped, so this must be called on the same
// *gorm.DB transaction that will do the recomputation.
func AcquireContainerPostingLock(tx *gorm.DB, containerId int) error {
	lockName := fmt.Sprintf("container-posting:%d", containerId)
	var ok int
	if err := tx.Raw("SELECT GET_LOCK(?, 30)", lockName).Scan(&ok).Error; err != nil {
		return err
	}
	if ok != 1 {
		return fmt.Errorf("could not acquire posting lock for container_id=%d", containerId)
	}
	return nil
}

func ReleaseContainerPostingLock(tx *gorm.DB, containerId int) {
	lockName := fmt.Sprintf("container-posting:%d", containerId)
	var _ok int
	_ = tx.Raw("SELECT RELEASE_LOCK(?)", lockName).Scan(&_ok).Error
}
