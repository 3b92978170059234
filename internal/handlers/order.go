package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"storefront/internal/apierror"
	mw "storefront/internal/middleware/auth"
	"storefront/internal/models"
	"storefront/internal/mykafka"
	"storefront/internal/permissions"
	"storefront/internal/repo"
)

type OrderHandler struct {
	Orders   *repo.OrderRepo
	Products *repo.ProductRepo
	Producer *mykafka.Producer
}

type paymentIntent struct {
	ClientSecret string
	Amount       float64
}

// fakePaymentIntent stands in for the payment gateway.
func fakePaymentIntent(amount float64, currency string) paymentIntent {
	return paymentIntent{
		ClientSecret: uuid.NewString(),
		Amount:       amount,
	}
}

type orderItemRequest struct {
	ProductID uint `json:"product"`
	Amount    int  `json:"amount"`
}

type createOrderRequest struct {
	Items       []orderItemRequest `json:"items"`
	Tax         float64            `json:"tax"`
	ShippingFee float64            `json:"shippingFee"`
}

func (h *OrderHandler) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()

	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return apierror.BadRequest("Please provide valid order data!")
	}
	if len(req.Items) < 1 {
		return apierror.BadRequest("No cart items provided!")
	}
	if req.Tax == 0 || req.ShippingFee == 0 {
		return apierror.BadRequest("No tax or shippingFee provided!")
	}

	var orderItems []models.OrderItem
	var subTotal float64

	// Prices come from the catalog, never from the request.
	for _, item := range req.Items {
		product, err := h.Products.FindByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierror.NotFound("Product not found!")
			}
			return err
		}

		orderItems = append(orderItems, models.OrderItem{
			Name:      product.Name,
			Image:     product.Image,
			Price:     product.Price,
			Amount:    item.Amount,
			ProductID: product.ID,
		})
		subTotal += float64(item.Amount) * product.Price
	}

	total := req.Tax + req.ShippingFee + subTotal
	intent := fakePaymentIntent(total, "usd")

	identity, _ := mw.Identity(c)

	order := models.Order{
		Tax:          req.Tax,
		ShippingFee:  req.ShippingFee,
		SubTotal:     subTotal,
		Total:        total,
		OrderItems:   orderItems,
		Status:       models.OrderStatusPending,
		ClientSecret: intent.ClientSecret,
		UserID:       identity.UserID,
	}
	if err := h.Orders.Create(ctx, &order); err != nil {
		return err
	}

	publish(c, h.Producer, mykafka.TopicOrderEvents, order.ID, map[string]any{
		"type":     "order_created",
		"order_id": order.ID,
		"user_id":  order.UserID,
		"total":    order.Total,
	})

	return c.JSON(http.StatusCreated, echo.Map{
		"order":        order,
		"clientSecret": order.ClientSecret,
	})
}

func (h *OrderHandler) GetAllOrders(c echo.Context) error {
	orders, err := h.Orders.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"orders": orders, "count": len(orders)})
}

func (h *OrderHandler) GetSingleOrder(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	order, err := h.Orders.FindByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.NotFound("Order not found!")
		}
		return err
	}

	identity, _ := mw.Identity(c)
	if err := permissions.Check(identity, order.UserID); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"order": order})
}

func (h *OrderHandler) GetCurrentUserOrders(c echo.Context) error {
	identity, _ := mw.Identity(c)

	orders, err := h.Orders.ListByUser(c.Request().Context(), identity.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"orders": orders, "count": len(orders)})
}

type updateOrderRequest struct {
	PaymentID string `json:"paymentID"`
}

// UpdateOrder records the payment confirmation and marks the order paid.
func (h *OrderHandler) UpdateOrder(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req updateOrderRequest
	if err := c.Bind(&req); err != nil {
		return apierror.BadRequest("Please provide valid order data!")
	}

	order, err := h.Orders.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.NotFound("Order not found!")
		}
		return err
	}

	identity, _ := mw.Identity(c)
	if err := permissions.Check(identity, order.UserID); err != nil {
		return err
	}

	order.PaymentID = req.PaymentID
	order.Status = models.OrderStatusPaid
	if err := h.Orders.Save(ctx, order); err != nil {
		return err
	}

	publish(c, h.Producer, mykafka.TopicOrderEvents, order.ID, map[string]any{
		"type":     "order_paid",
		"order_id": order.ID,
		"user_id":  order.UserID,
	})

	return c.JSON(http.StatusOK, echo.Map{"order": order})
}
