package routes

import (
	"github.com/gin-gonic/gin"

	productControllers "github.com/craftloom/storefront-api/controllers/product"
)

// SetupProductRoutes registers the public product lookup endpoints the cart
// and checkout rely on for price/stock.
func SetupProductRoutes(r *gin.Engine, d Deps) {
	products := r.Group("/products")
	{
		products.GET("/", productControllers.GetProducts(d.DB))
		products.GET("/:id", productControllers.GetProductByID(d.DB))
	}
}
