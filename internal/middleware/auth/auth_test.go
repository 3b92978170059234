package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"storefront/internal/apierror"
	"storefront/internal/repo"
	"storefront/internal/session"
	"storefront/internal/tokens"
)

var testUser = tokens.UserClaims{UserID: 7, Name: "alice", Role: "user"}

func newMiddleware(t *testing.T) *Middleware {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, repo.Migrate(db))

	codec := tokens.NewCodec([]byte("test-secret"))
	return &Middleware{
		Codec: codec,
		Sessions: &session.Manager{
			Codec:      codec,
			AccessTTL:  time.Hour,
			RefreshTTL: 24 * time.Hour,
		},
		Tokens: &repo.TokenRepo{DB: db},
	}
}

func doRequest(m *Middleware, cookies ...*http.Cookie) (*httptest.ResponseRecorder, tokens.UserClaims, error) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen tokens.UserClaims
	handler := m.RequireAuth(func(c echo.Context) error {
		seen, _ = Identity(c)
		return c.NoContent(http.StatusOK)
	})
	err := handler(c)
	return rec, seen, err
}

func requireUnauthenticated(t *testing.T, err error) {
	t.Helper()
	var apiErr *apierror.Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestRequireAuthAccessCookie(t *testing.T) {
	m := newMiddleware(t)

	access, err := m.Codec.Sign(testUser, "", time.Hour)
	require.NoError(t, err)

	rec, seen, err := doRequest(m, &http.Cookie{Name: session.AccessCookie, Value: access})
	require.NoError(t, err)
	require.Equal(t, testUser, seen)
	// The fast path never re-issues cookies.
	require.Empty(t, rec.Result().Cookies())
}

func TestRequireAuthNoCookies(t *testing.T) {
	m := newMiddleware(t)

	_, _, err := doRequest(m)
	requireUnauthenticated(t, err)
}

func TestRequireAuthRefreshCookieReissuesPair(t *testing.T) {
	m := newMiddleware(t)

	record, err := m.Tokens.Create(context.Background(), testUser.UserID, "session-value", "127.0.0.1", "go-test")
	require.NoError(t, err)

	refresh, err := m.Codec.Sign(testUser, record.Token, 24*time.Hour)
	require.NoError(t, err)

	rec, seen, err := doRequest(m, &http.Cookie{Name: session.RefreshCookie, Value: refresh})
	require.NoError(t, err)
	require.Equal(t, testUser, seen)

	names := map[string]bool{}
	for _, ck := range rec.Result().Cookies() {
		names[ck.Name] = true
		require.True(t, ck.HttpOnly)
	}
	require.True(t, names[session.AccessCookie])
	require.True(t, names[session.RefreshCookie])
}

func TestRequireAuthExpiredAccessFallsBackToRefresh(t *testing.T) {
	m := newMiddleware(t)

	record, err := m.Tokens.Create(context.Background(), testUser.UserID, "session-value", "127.0.0.1", "go-test")
	require.NoError(t, err)

	expired, err := m.Codec.Sign(testUser, "", -time.Minute)
	require.NoError(t, err)
	refresh, err := m.Codec.Sign(testUser, record.Token, 24*time.Hour)
	require.NoError(t, err)

	_, seen, err := doRequest(m,
		&http.Cookie{Name: session.AccessCookie, Value: expired},
		&http.Cookie{Name: session.RefreshCookie, Value: refresh},
	)
	require.NoError(t, err)
	require.Equal(t, testUser, seen)
}

func TestRequireAuthRefreshWithoutSessionRecord(t *testing.T) {
	m := newMiddleware(t)

	refresh, err := m.Codec.Sign(testUser, "session-value", 24*time.Hour)
	require.NoError(t, err)

	_, _, err = doRequest(m, &http.Cookie{Name: session.RefreshCookie, Value: refresh})
	requireUnauthenticated(t, err)
}

func TestRequireAuthRefreshValueMismatch(t *testing.T) {
	m := newMiddleware(t)

	_, err := m.Tokens.Create(context.Background(), testUser.UserID, "current-value", "127.0.0.1", "go-test")
	require.NoError(t, err)

	refresh, err := m.Codec.Sign(testUser, "stale-value", 24*time.Hour)
	require.NoError(t, err)

	_, _, err = doRequest(m, &http.Cookie{Name: session.RefreshCookie, Value: refresh})
	requireUnauthenticated(t, err)
}

func TestRequireAuthRevokedSessionRecord(t *testing.T) {
	m := newMiddleware(t)

	record, err := m.Tokens.Create(context.Background(), testUser.UserID, "session-value", "127.0.0.1", "go-test")
	require.NoError(t, err)
	require.NoError(t, m.Tokens.DB.Model(record).Update("is_valid", false).Error)

	refresh, err := m.Codec.Sign(testUser, record.Token, 24*time.Hour)
	require.NoError(t, err)

	_, _, err = doRequest(m, &http.Cookie{Name: session.RefreshCookie, Value: refresh})
	requireUnauthenticated(t, err)
}

func TestRequireAuthAccessCookieWithoutRefreshClaimRejected(t *testing.T) {
	m := newMiddleware(t)

	// An access token presented as the refresh cookie carries no session
	// value and must not pass step two.
	access, err := m.Codec.Sign(testUser, "", time.Hour)
	require.NoError(t, err)

	_, _, err = doRequest(m, &http.Cookie{Name: session.RefreshCookie, Value: access})
	requireUnauthenticated(t, err)
}

func TestRequireRoles(t *testing.T) {
	e := echo.New()
	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	newCtx := func() echo.Context {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		return e.NewContext(req, httptest.NewRecorder())
	}

	t.Run("admin allowed", func(t *testing.T) {
		c := newCtx()
		setIdentity(c, tokens.UserClaims{UserID: 1, Name: "root", Role: "admin"})
		require.NoError(t, RequireRoles("admin")(ok)(c))
	})

	t.Run("user rejected", func(t *testing.T) {
		c := newCtx()
		setIdentity(c, testUser)
		err := RequireRoles("admin")(ok)(c)

		var apiErr *apierror.Error
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusForbidden, apiErr.StatusCode)
		require.Equal(t, "Unauthorized to access this route", apiErr.Msg)
	})

	t.Run("no identity", func(t *testing.T) {
		c := newCtx()
		err := RequireRoles("admin")(ok)(c)
		requireUnauthenticated(t, err)
	})
}
