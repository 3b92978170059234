package session

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"storefront/internal/tokens"
)

const (
	AccessCookie  = "accessToken"
	RefreshCookie = "refreshToken"
)

// Manager issues and revokes the access/refresh cookie pair. The access
// token is short-lived; the refresh token is long-lived and backed by a
// server-side record, which is what makes revocation possible at all.
type Manager struct {
	Codec      *tokens.Codec
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Secure     bool
}

// Issue signs both tokens and writes them as http-only cookies. The
// refresh token embeds the opaque session value next to the identity
// projection.
func (m *Manager) Issue(c echo.Context, user tokens.UserClaims, refreshValue string) error {
	access, err := m.Codec.Sign(user, "", m.AccessTTL)
	if err != nil {
		return err
	}
	refresh, err := m.Codec.Sign(user, refreshValue, m.RefreshTTL)
	if err != nil {
		return err
	}

	now := time.Now()
	c.SetCookie(m.cookie(AccessCookie, access, now.Add(m.AccessTTL)))
	c.SetCookie(m.cookie(RefreshCookie, refresh, now.Add(m.RefreshTTL)))
	return nil
}

// Clear overwrites both cookies with already-expired values.
func (m *Manager) Clear(c echo.Context) {
	expired := time.Now().Add(-time.Hour)
	c.SetCookie(m.cookie(AccessCookie, "logout", expired))
	c.SetCookie(m.cookie(RefreshCookie, "logout", expired))
}

func (m *Manager) cookie(name, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   m.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
