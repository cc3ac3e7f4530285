package workflow

import (
	"context"

	"github.com/ossotrade/osso_backend/models"
	"github.com/ossotrade/osso_backend/utils"
)

// requireRole checks the acting user's role against the operation's
// allow-list. The session collaborator is trusted to have authenticated the
// user; only membership is checked here.
func requireRole(ctx context.Context, allowed ...models.Role) error {
	role, ok := utils.GetUserRoleFromContext(ctx)
	if !ok {
		return utils.ErrorUnauthorized
	}
	for _, a := range allowed {
		if models.Role(role) == a {
			return nil
		}
	}
	return utils.ErrorUnauthorized
}

func anyRole(ctx context.Context) error {
	return requireRole(ctx, models.RoleSeller, models.RoleAdmin, models.RoleSuperAdmin)
}

func adminRole(ctx context.Context) error {
	return requireRole(ctx, models.RoleAdmin, models.RoleSuperAdmin)
}

func superAdminRole(ctx context.Context) error {
	return requireRole(ctx, models.RoleSuperAdmin)
}
