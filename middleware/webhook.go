package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/craftloom/storefront-api/payment"
)

// GatewayWebhookAuth verifies the gateway's webhook signature. Mock mode
// skips the check, matching the gateway's sandbox behaviour.
func GatewayWebhookAuth(cfg payment.Config, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.Mode == payment.ModeMock {
			c.Next()
			return
		}

		if err := c.Request.ParseForm(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to parse form for signature verification"})
			c.Abort()
			return
		}

		providedCheck := c.PostForm("tran_check")
		if providedCheck == "" {
			c.JSON(http.StatusForbidden, gin.H{"error": "missing tran_check signature"})
			c.Abort()
			return
		}

		fields := []string{
			"tran_store", "tran_type", "tran_class", "tran_test", "tran_ref",
			"tran_prevref", "tran_firstref", "tran_order", "tran_currency",
			"tran_amount", "tran_cartid", "tran_desc", "tran_status",
			"tran_authcode", "tran_authmessage",
		}
		values := make([]string, 0, len(fields))
		for _, f := range fields {
			values = append(values, strings.TrimSpace(c.PostForm(f)))
		}
		calculated := payment.Sign(cfg.WebhookKey, values...)

		if !strings.EqualFold(calculated, providedCheck) {
			log.Warn("rejected gateway webhook with bad signature",
				zap.String("order_ref", c.PostForm("tran_cartid")))
			c.JSON(http.StatusForbidden, gin.H{"error": "invalid webhook signature"})
			c.Abort()
			return
		}

		c.Next()
	}
}
