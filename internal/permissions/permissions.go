package permissions

import (
	"storefront/internal/apierror"
	"storefront/internal/models"
	"storefront/internal/tokens"
)

// Check authorizes access to an owner-scoped resource: admins pass, the
// resource owner passes, everyone else gets a 403. Every owner-scoped
// handler goes through this one function.
func Check(user tokens.UserClaims, resourceOwnerID uint) error {
	if user.Role == models.RoleAdmin {
		return nil
	}
	if user.UserID == resourceOwnerID {
		return nil
	}
	return apierror.Unauthorized("Unauthorized to access this route")
}
