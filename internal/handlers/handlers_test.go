package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"storefront/internal/apierror"
	"storefront/internal/hash"
	mw "storefront/internal/middleware/auth"
	"storefront/internal/models"
	"storefront/internal/mykafka"
	"storefront/internal/repo"
	"storefront/internal/session"
	"storefront/internal/tokens"
)

type testValidator struct {
	v *validator.Validate
}

func (t *testValidator) Validate(i any) error {
	return t.v.Struct(i)
}

type handlerEnv struct {
	echo     *echo.Echo
	db       *gorm.DB
	auth     *mw.Middleware
	users    *repo.UserRepo
	products *repo.ProductRepo
	reviews  *repo.ReviewRepo
	orders   *repo.OrderRepo
}

func newHandlerEnv(t *testing.T) *handlerEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, repo.Migrate(db))

	e := echo.New()
	e.Validator = &testValidator{v: validator.New(validator.WithRequiredStructEnabled())}

	codec := tokens.NewCodec([]byte("test-secret"))
	return &handlerEnv{
		echo: e,
		db:   db,
		auth: &mw.Middleware{
			Codec: codec,
			Sessions: &session.Manager{
				Codec:      codec,
				AccessTTL:  time.Hour,
				RefreshTTL: 24 * time.Hour,
			},
			Tokens: &repo.TokenRepo{DB: db},
		},
		users:    &repo.UserRepo{DB: db},
		products: &repo.ProductRepo{DB: db},
		reviews:  &repo.ReviewRepo{DB: db},
		orders:   &repo.OrderRepo{DB: db},
	}
}

// seedUser inserts a verified account and returns its identity projection.
func (env *handlerEnv) seedUser(t *testing.T, name, email, password, role string) tokens.UserClaims {
	t.Helper()

	passwordHash, err := hash.HashPassword(password)
	require.NoError(t, err)

	now := time.Now()
	user := models.User{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		IsVerified:   true,
		Verified:     &now,
	}
	require.NoError(t, env.users.Create(context.Background(), &user))
	return tokens.UserClaims{UserID: user.ID, Name: user.Name, Role: user.Role}
}

func (env *handlerEnv) seedProduct(t *testing.T, name string, price float64, ownerID uint) *models.Product {
	t.Helper()

	product := models.Product{
		Name:        name,
		Price:       price,
		Description: "a " + name,
		Image:       "/uploads/example.jpeg",
		Category:    "office",
		Company:     "ikea",
		Colors:      []string{"222"},
		Inventory:   15,
		UserID:      ownerID,
	}
	require.NoError(t, env.products.Create(context.Background(), &product))
	return &product
}

// accessCookie signs an access token for the given identity.
func (env *handlerEnv) accessCookie(t *testing.T, user tokens.UserClaims) *http.Cookie {
	t.Helper()

	value, err := env.auth.Codec.Sign(user, "", time.Hour)
	require.NoError(t, err)
	return &http.Cookie{Name: session.AccessCookie, Value: value}
}

func (env *handlerEnv) request(method, target, body string, cookies ...*http.Cookie) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	return env.echo.NewContext(req, rec), rec
}

// callAs runs the handler behind the authentication middleware.
func (env *handlerEnv) callAs(t *testing.T, user tokens.UserClaims, h echo.HandlerFunc, c echo.Context) error {
	t.Helper()
	c.Request().AddCookie(env.accessCookie(t, user))
	return env.auth.RequireAuth(h)(c)
}

func requireAPIError(t *testing.T, err error, statusCode int, msg string) {
	t.Helper()
	var apiErr *apierror.Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, statusCode, apiErr.StatusCode)
	require.Equal(t, msg, apiErr.Msg)
}

func noopProducer() *mykafka.Producer {
	return &mykafka.Producer{}
}
