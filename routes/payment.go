package routes

import (
	"github.com/gin-gonic/gin"

	paymentControllers "github.com/craftloom/storefront-api/controllers/payment"
	"github.com/craftloom/storefront-api/middleware"
)

func SetupPaymentRoutes(r *gin.Engine, d Deps) {
	payments := r.Group("/payment")
	{
		payments.POST("/intent", middleware.ValidateToken, paymentControllers.CreateIntentHandler(d.Coordinator))
		payments.POST("/verify", middleware.ValidateToken, paymentControllers.VerifyHandler(d.Coordinator))
		payments.POST("/abandon", middleware.ValidateToken, paymentControllers.AbandonHandler(d.Coordinator))

		// Gateway server-to-server callback, signature-checked in middleware
		payments.POST("/webhook",
			middleware.GatewayWebhookAuth(d.GatewayCfg, d.Log),
			paymentControllers.WebhookHandler(d.DB, d.Coordinator, d.Log),
		)
	}
}
