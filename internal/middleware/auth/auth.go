package auth

import (
	"errors"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"storefront/internal/apierror"
	"storefront/internal/repo"
	"storefront/internal/session"
	"storefront/internal/tokens"
)

// Middleware resolves a caller identity from the signed cookie pair.
type Middleware struct {
	Codec    *tokens.Codec
	Sessions *session.Manager
	Tokens   *repo.TokenRepo
}

// RequireAuth authenticates the request:
//
//  1. a verifying access cookie attaches the identity directly;
//  2. otherwise a verifying refresh cookie is checked against the
//     server-side session record and, when valid, both cookies are
//     transparently re-issued;
//  3. otherwise the request is rejected with 401.
func (m *Middleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if accessCookie, err := c.Cookie(session.AccessCookie); err == nil {
			if claims, err := m.Codec.Parse(accessCookie.Value); err == nil {
				setIdentity(c, claims.User)
				return next(c)
			}
		}

		refreshCookie, err := c.Cookie(session.RefreshCookie)
		if err != nil {
			return apierror.Unauthenticated("Authentication invalid")
		}
		claims, err := m.Codec.Parse(refreshCookie.Value)
		if err != nil || claims.RefreshToken == "" {
			return apierror.Unauthenticated("Authentication invalid")
		}

		ctx := c.Request().Context()
		record, err := m.Tokens.FindByUser(ctx, claims.User.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierror.Unauthenticated("Authentication invalid")
			}
			return err
		}
		if record.Token != claims.RefreshToken || !record.IsValid {
			return apierror.Unauthenticated("Authentication invalid")
		}

		if err := m.Sessions.Issue(c, claims.User, record.Token); err != nil {
			return err
		}

		setIdentity(c, claims.User)
		return next(c)
	}
}

// RequireRoles passes only callers whose role is in the allowed set.
// It must run after RequireAuth.
func RequireRoles(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := Identity(c)
			if !ok {
				return apierror.Unauthenticated("Authentication invalid")
			}
			for _, role := range roles {
				if user.Role == role {
					return next(c)
				}
			}
			return apierror.Unauthorized("Unauthorized to access this route")
		}
	}
}
