package auth

import (
	"github.com/labstack/echo/v4"

	"storefront/internal/tokens"
)

const identityKey = "auth.identity"

func setIdentity(c echo.Context, user tokens.UserClaims) {
	c.Set(identityKey, user)
}

// Identity returns the authenticated caller attached by RequireAuth.
func Identity(c echo.Context) (tokens.UserClaims, bool) {
	user, ok := c.Get(identityKey).(tokens.UserClaims)
	return user, ok
}
