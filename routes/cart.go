package routes

import (
	"github.com/gin-gonic/gin"

	cartControllers "github.com/craftloom/storefront-api/controllers/cart"
	"github.com/craftloom/storefront-api/middleware"
)

// SetupCartRoutes registers the "/user/cart" endpoints. JWT-protected.
func SetupCartRoutes(r *gin.Engine, d Deps) {
	cartGroup := r.Group("/user/cart")
	cartGroup.Use(middleware.ValidateToken)
	{
		cartGroup.GET("/", cartControllers.GetCart(d.Carts))
		cartGroup.POST("/", cartControllers.AddCartLine(d.DB, d.Carts))
		cartGroup.POST("/decrease", cartControllers.DecreaseCartLine(d.Carts))
		cartGroup.DELETE("/", cartControllers.RemoveCartLine(d.Carts))
	}
}
