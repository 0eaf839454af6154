package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/craftloom/storefront-api/cart"
	"github.com/craftloom/storefront-api/payment"
)

// Deps carries everything the route groups need.
type Deps struct {
	DB          *gorm.DB
	Carts       *cart.Store
	Coordinator *payment.Coordinator
	GatewayCfg  payment.Config
	Log         *zap.Logger
}

// SetupRoutes is the single entry point that wires up all route groups.
func SetupRoutes(r *gin.Engine, d Deps) {
	SetupProductRoutes(r, d)
	SetupCartRoutes(r, d)
	SetupOrderRoutes(r, d)
	SetupPaymentRoutes(r, d)
}
