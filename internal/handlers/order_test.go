package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"storefront/internal/models"
	"storefront/internal/tokens"
)

func newOrderHandler(env *handlerEnv) *OrderHandler {
	return &OrderHandler{
		Orders:   env.orders,
		Products: env.products,
		Producer: noopProducer(),
	}
}

func TestCreateOrderValidation(t *testing.T) {
	env := newHandlerEnv(t)
	h := newOrderHandler(env)
	alice := env.seedUser(t, "alice", "alice@example.com", "secret1", models.RoleUser)

	t.Run("no items", func(t *testing.T) {
		c, _ := env.request(http.MethodPost, "/", `{"items":[],"tax":5,"shippingFee":10}`)
		err := env.callAs(t, alice, h.CreateOrder, c)
		requireAPIError(t, err, http.StatusBadRequest, "No cart items provided!")
	})

	t.Run("no tax or shipping fee", func(t *testing.T) {
		c, _ := env.request(http.MethodPost, "/", `{"items":[{"product":1,"amount":2}],"tax":0,"shippingFee":10}`)
		err := env.callAs(t, alice, h.CreateOrder, c)
		requireAPIError(t, err, http.StatusBadRequest, "No tax or shippingFee provided!")
	})

	t.Run("unknown product", func(t *testing.T) {
		c, _ := env.request(http.MethodPost, "/", `{"items":[{"product":9999,"amount":2}],"tax":5,"shippingFee":10}`)
		err := env.callAs(t, alice, h.CreateOrder, c)
		requireAPIError(t, err, http.StatusNotFound, "Product not found!")
	})
}

func TestCreateOrderPricesFromCatalog(t *testing.T) {
	env := newHandlerEnv(t)
	h := newOrderHandler(env)
	admin := env.seedUser(t, "root", "root@example.com", "secret1", models.RoleAdmin)
	alice := env.seedUser(t, "alice", "alice@example.com", "secret2", models.RoleUser)
	desk := env.seedProduct(t, "desk", 100, admin.UserID)
	chair := env.seedProduct(t, "chair", 50, admin.UserID)

	body := fmt.Sprintf(`{"items":[{"product":%d,"amount":2},{"product":%d,"amount":1}],"tax":5,"shippingFee":10}`,
		desk.ID, chair.ID)
	c, rec := env.request(http.MethodPost, "/", body)
	require.NoError(t, env.callAs(t, alice, h.CreateOrder, c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Order        models.Order `json:"order"`
		ClientSecret string       `json:"clientSecret"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	require.Equal(t, float64(250), resp.Order.SubTotal)
	require.Equal(t, float64(265), resp.Order.Total)
	require.Equal(t, models.OrderStatusPending, resp.Order.Status)
	require.Equal(t, alice.UserID, resp.Order.UserID)
	require.NotEmpty(t, resp.ClientSecret)
	require.Len(t, resp.Order.OrderItems, 2)
	require.Equal(t, float64(100), resp.Order.OrderItems[0].Price)
}

func seedOrder(t *testing.T, env *handlerEnv, h *OrderHandler, as tokens.UserClaims, productID uint) uint {
	t.Helper()
	body := fmt.Sprintf(`{"items":[{"product":%d,"amount":1}],"tax":5,"shippingFee":10}`, productID)
	c, rec := env.request(http.MethodPost, "/", body)
	require.NoError(t, env.callAs(t, as, h.CreateOrder, c))

	var resp struct {
		Order models.Order `json:"order"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Order.ID
}

func TestGetSingleOrderPermissions(t *testing.T) {
	env := newHandlerEnv(t)
	h := newOrderHandler(env)
	admin := env.seedUser(t, "root", "root@example.com", "secret1", models.RoleAdmin)
	alice := env.seedUser(t, "alice", "alice@example.com", "secret2", models.RoleUser)
	bob := env.seedUser(t, "bob", "bob@example.com", "secret3", models.RoleUser)
	desk := env.seedProduct(t, "desk", 100, admin.UserID)
	orderID := seedOrder(t, env, h, alice, desk.ID)

	getOrder := func(as tokens.UserClaims, id uint) error {
		c, _ := env.request(http.MethodGet, "/", "")
		c.SetParamNames("id")
		c.SetParamValues(fmt.Sprint(id))
		return env.callAs(t, as, h.GetSingleOrder, c)
	}

	require.NoError(t, getOrder(alice, orderID))
	require.NoError(t, getOrder(admin, orderID))

	err := getOrder(bob, orderID)
	requireAPIError(t, err, http.StatusForbidden, "Unauthorized to access this route")

	err = getOrder(admin, 9999)
	requireAPIError(t, err, http.StatusNotFound, "Order not found!")
}

func TestGetCurrentUserOrders(t *testing.T) {
	env := newHandlerEnv(t)
	h := newOrderHandler(env)
	admin := env.seedUser(t, "root", "root@example.com", "secret1", models.RoleAdmin)
	alice := env.seedUser(t, "alice", "alice@example.com", "secret2", models.RoleUser)
	bob := env.seedUser(t, "bob", "bob@example.com", "secret3", models.RoleUser)
	desk := env.seedProduct(t, "desk", 100, admin.UserID)

	seedOrder(t, env, h, alice, desk.ID)
	seedOrder(t, env, h, alice, desk.ID)
	seedOrder(t, env, h, bob, desk.ID)

	c, rec := env.request(http.MethodGet, "/", "")
	require.NoError(t, env.callAs(t, alice, h.GetCurrentUserOrders, c))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Orders []models.Order `json:"orders"`
		Count  int            `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 2, body.Count)
	for _, order := range body.Orders {
		require.Equal(t, alice.UserID, order.UserID)
	}
}

func TestUpdateOrderMarksPaid(t *testing.T) {
	env := newHandlerEnv(t)
	h := newOrderHandler(env)
	admin := env.seedUser(t, "root", "root@example.com", "secret1", models.RoleAdmin)
	alice := env.seedUser(t, "alice", "alice@example.com", "secret2", models.RoleUser)
	desk := env.seedProduct(t, "desk", 100, admin.UserID)
	orderID := seedOrder(t, env, h, alice, desk.ID)

	c, rec := env.request(http.MethodPatch, "/", `{"paymentID":"pay_123"}`)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(orderID))
	require.NoError(t, env.callAs(t, alice, h.UpdateOrder, c))
	require.Equal(t, http.StatusOK, rec.Code)

	updated, err := env.orders.FindByID(context.Background(), orderID)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusPaid, updated.Status)
	require.Equal(t, "pay_123", updated.PaymentID)
}
