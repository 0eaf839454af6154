package paymentControllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/craftloom/storefront-api/models"
	"github.com/craftloom/storefront-api/order"
	"github.com/craftloom/storefront-api/payment"
)

type CreateIntentRequest struct {
	OrderID uint `json:"order_id" binding:"required"`
}

type AbandonRequest struct {
	OrderID uint `json:"order_id" binding:"required"`
}

// POST /payment/intent
func CreateIntentHandler(pc *payment.Coordinator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateIntentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		intent, err := pc.CreateIntent(c.Request.Context(), req.OrderID)
		if err != nil {
			respondPaymentError(c, err)
			return
		}
		c.JSON(http.StatusOK, intent)
	}
}

// POST /payment/verify — idempotent: replaying a successful response for an
// already-paid order returns success without side effects.
func VerifyHandler(pc *payment.Coordinator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req payment.VerifyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := pc.Verify(c.Request.Context(), req); err != nil {
			respondPaymentError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// POST /payment/abandon — idempotent compensation for a failed or cancelled
// gateway flow. The cart is left intact so checkout can be retried.
func AbandonHandler(pc *payment.Coordinator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AbandonRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := pc.Abandon(c.Request.Context(), req.OrderID); err != nil {
			respondPaymentError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// POST /payment/webhook — server-to-server confirmation from the gateway,
// form-encoded. Signature verification happens in middleware; a non-approved
// status routes through the abandon path.
func WebhookHandler(db *gorm.DB, pc *payment.Coordinator, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := c.Request.ParseForm(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to parse form"})
			return
		}

		orderRef := c.PostForm("tran_cartid")
		intentRef := c.PostForm("tran_order")
		paymentRef := c.PostForm("tran_ref")
		status := c.PostForm("tran_status") // "A" = approved

		if orderRef == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing tran_cartid"})
			return
		}

		var o models.Order
		if err := db.Where("order_ref = ?", orderRef).First(&o).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found for reference " + orderRef})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		if status != "A" {
			log.Info("gateway reported unsuccessful payment",
				zap.String("order_ref", orderRef), zap.String("status", status))
			if err := pc.Abandon(c.Request.Context(), o.ID); err != nil {
				respondPaymentError(c, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"ok": true, "message": "payment not successful, order abandoned"})
			return
		}

		err := pc.Verify(c.Request.Context(), payment.VerifyRequest{
			OrderID:    o.ID,
			IntentRef:  intentRef,
			PaymentRef: paymentRef,
			Signature:  c.PostForm("tran_check"),
		})
		if err != nil {
			log.Error("webhook verification failed",
				zap.String("order_ref", orderRef), zap.Error(err))
			respondPaymentError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

func respondPaymentError(c *gin.Context, err error) {
	var perr *payment.Error
	if errors.As(err, &perr) {
		status := http.StatusBadGateway
		if !perr.Retryable {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"error": perr.Reason, "retryable": perr.Retryable})
		return
	}
	var serr *order.StateError
	if errors.As(err, &serr) {
		c.JSON(http.StatusConflict, gin.H{"error": serr.Reason})
		return
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
