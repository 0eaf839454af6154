package routes

import (
	"github.com/gin-gonic/gin"

	orderControllers "github.com/craftloom/storefront-api/controllers/order"
	"github.com/craftloom/storefront-api/middleware"
)

func SetupOrderRoutes(r *gin.Engine, d Deps) {
	orders := r.Group("/orders")
	{
		// Customer endpoints (JWT)
		orders.POST("/place", middleware.ValidateToken, orderControllers.PlaceOrderHandler(d.DB, d.Carts, d.Log))
		orders.GET("/user/:userID", middleware.ValidateToken, orderControllers.GetUserOrdersHandler(d.DB))
		orders.POST("/:orderID/cancel", middleware.ValidateToken, orderControllers.CancelOrderHandler(d.DB, d.Log))
		orders.POST("/:orderID/return", middleware.ValidateToken, orderControllers.ReturnRequestHandler(d.DB))

		// Shared
		orders.GET("/:orderID", orderControllers.GetOrderByIDHandler(d.DB))
		orders.GET("/ws", orderControllers.OrderWebSocketHandler)

		// Admin endpoints (API key)
		orders.GET("/", middleware.ValidateAPIKey, orderControllers.GetAllOrdersHandler(d.DB))
		orders.GET("/export", middleware.ValidateAPIKey, orderControllers.ExportOrdersToExcel(d.DB))
		orders.PUT("/:orderID/tracking", middleware.ValidateAPIKey, orderControllers.UpdateTrackingHandler(d.DB, d.Log))
		orders.PUT("/:orderID/cancel", middleware.ValidateAPIKey, orderControllers.CancelOrderHandler(d.DB, d.Log))
		orders.PUT("/:orderID/return", middleware.ValidateAPIKey, orderControllers.ReturnDecisionHandler(d.DB))
	}
}
