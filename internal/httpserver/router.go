package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	authmw "github.com/mpetrov/storefront/internal/middleware/auth"
)

type Deps struct {
	OrderHandler     *OrderHTTP
	AnalyticsHandler *AnalyticsHTTP
	CatalogHandler   *CatalogHTTP
	AuthHandler      *AuthHTTP
	ReviewHandler    *ReviewHTTP
	JWTSecret        []byte
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	mw := authmw.New(d.JWTSecret)

	auth := e.Group("/auth")
	auth.POST("/login", d.AuthHandler.Login)
	auth.GET("/verify", d.AuthHandler.Verify)
	auth.POST("/logout", d.AuthHandler.Logout)
	auth.POST("/password", d.AuthHandler.ChangePassword, mw.RequireAdmin)

	orders := e.Group("/orders")
	orders.POST("", d.OrderHandler.CreateOrder)

	ordersAdmin := orders.Group("", mw.RequireAdmin)
	ordersAdmin.GET("", d.OrderHandler.ListOrders)
	ordersAdmin.GET("/stats", d.AnalyticsHandler.Stats)
	ordersAdmin.GET("/analytics/revenue-by-month", d.AnalyticsHandler.RevenueByMonth)
	ordersAdmin.GET("/analytics/top-products", d.AnalyticsHandler.TopProducts)
	ordersAdmin.GET("/analytics/orders-by-day", d.AnalyticsHandler.OrdersByDay)
	ordersAdmin.GET("/analytics/orders-by-status", d.AnalyticsHandler.OrdersByStatus)
	ordersAdmin.GET("/analytics/monthly", d.AnalyticsHandler.Monthly)
	ordersAdmin.GET("/:id", d.OrderHandler.GetOrder)
	ordersAdmin.PATCH("/:id", d.OrderHandler.PatchOrder)
	ordersAdmin.DELETE("/:id", d.OrderHandler.DeleteOrder)

	products := e.Group("/products")
	products.GET("", d.CatalogHandler.ListProducts)
	products.GET("/search", d.CatalogHandler.SearchProducts)
	products.GET("/:id", d.CatalogHandler.GetProduct)

	productsAdmin := products.Group("", mw.RequireAdmin)
	productsAdmin.POST("", d.CatalogHandler.CreateProduct)
	productsAdmin.PATCH("/:id", d.CatalogHandler.PatchProduct)
	productsAdmin.DELETE("/:id", d.CatalogHandler.DeleteProduct)

	categories := e.Group("/categories")
	categories.GET("", d.CatalogHandler.ListCategories)

	categoriesAdmin := categories.Group("", mw.RequireAdmin)
	categoriesAdmin.POST("", d.CatalogHandler.CreateCategory)
	categoriesAdmin.PATCH("/:id", d.CatalogHandler.PatchCategory)
	categoriesAdmin.DELETE("/:id", d.CatalogHandler.DeleteCategory)

	reviews := e.Group("/reviews")
	reviews.GET("", d.ReviewHandler.ListReviews)

	reviewsAdmin := reviews.Group("", mw.RequireAdmin)
	reviewsAdmin.POST("", d.ReviewHandler.CreateReview)
	reviewsAdmin.PATCH("/:id", d.ReviewHandler.PatchReview)
	reviewsAdmin.DELETE("/:id", d.ReviewHandler.DeleteReview)
}
