package workflow

import (
	"context"

	"github.com/ossotrade/osso_backend/config"
	"github.com/ossotrade/osso_backend/models"
)

// SetSystemTime pins or releases the simulated server clock used for period
// resolution and code expiry.
func SetSystemTime(ctx context.Context, input *models.SystemTimeInput) (*models.SystemControl, error) {
	if err := superAdminRole(ctx); err != nil {
		return nil, err
	}

	control, err := models.UpdateSystemTime(ctx, input)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = models.AppendAudit(db, ctx, models.AuditActionSystemTimeOverride, "system_control", control.ID, map[string]interface{}{
		"server_time_auto":   input.ServerTimeAuto,
		"manual_system_time": input.ManualSystemTime,
		"server_time_zone":   input.ServerTimeZone,
	})
	if err != nil {
		return nil, err
	}
	return control, nil
}
