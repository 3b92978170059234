package httpserver

import (
	"github.com/labstack/echo/v4"

	"storefront/internal/handlers"
	authhandlers "storefront/internal/handlers/auth"
	authmw "storefront/internal/middleware/auth"
	"storefront/internal/models"
)

type Deps struct {
	Auth     *authmw.Middleware
	AuthH    *authhandlers.Handler
	UserH    *handlers.UserHandler
	ProductH *handlers.ProductHandler
	ReviewH  *handlers.ReviewHandler
	OrderH   *handlers.OrderHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	e.Static("/", "public")

	v1 := e.Group("/api/v1")

	adminOnly := authmw.RequireRoles(models.RoleAdmin)

	auth := v1.Group("/auth")
	auth.POST("/register", d.AuthH.Register)
	auth.POST("/login", d.AuthH.Login)
	auth.DELETE("/logout", d.AuthH.Logout, d.Auth.RequireAuth)
	auth.GET("/verify-email", d.AuthH.VerifyEmail)
	auth.POST("/forgot-password", d.AuthH.ForgotPassword)
	auth.POST("/reset-password", d.AuthH.ResetPassword)

	users := v1.Group("/users", d.Auth.RequireAuth)
	users.GET("", d.UserH.GetAllUsers, adminOnly)
	users.GET("/showMe", d.UserH.ShowCurrentUser)
	users.PATCH("/updateUser", d.UserH.UpdateUser)
	users.PATCH("/updateUserPassword", d.UserH.UpdateUserPassword)
	users.GET("/:id", d.UserH.GetSingleUser)

	products := v1.Group("/products")
	products.GET("", d.ProductH.GetAllProducts)
	products.POST("", d.ProductH.CreateProduct, d.Auth.RequireAuth, adminOnly)
	products.POST("/uploadImage", d.ProductH.UploadImage, d.Auth.RequireAuth, adminOnly)
	products.GET("/:id", d.ProductH.GetSingleProduct)
	products.PATCH("/:id", d.ProductH.UpdateProduct, d.Auth.RequireAuth, adminOnly)
	products.DELETE("/:id", d.ProductH.DeleteProduct, d.Auth.RequireAuth, adminOnly)
	products.GET("/:id/reviews", d.ReviewH.GetSingleProductReviews)

	reviews := v1.Group("/reviews")
	reviews.GET("", d.ReviewH.GetAllReviews)
	reviews.POST("", d.ReviewH.CreateReview, d.Auth.RequireAuth)
	reviews.GET("/:id", d.ReviewH.GetSingleReview)
	reviews.PATCH("/:id", d.ReviewH.UpdateReview, d.Auth.RequireAuth)
	reviews.DELETE("/:id", d.ReviewH.DeleteReview, d.Auth.RequireAuth)

	orders := v1.Group("/orders", d.Auth.RequireAuth)
	orders.GET("", d.OrderH.GetAllOrders, adminOnly)
	orders.POST("", d.OrderH.CreateOrder)
	orders.GET("/showAllMyOrders", d.OrderH.GetCurrentUserOrders)
	orders.GET("/:id", d.OrderH.GetSingleOrder)
	orders.PATCH("/:id", d.OrderH.UpdateOrder)
}
