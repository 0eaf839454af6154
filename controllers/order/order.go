package orderControllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/craftloom/storefront-api/cart"
	"github.com/craftloom/storefront-api/models"
	"github.com/craftloom/storefront-api/order"
	"github.com/craftloom/storefront-api/payment"
)

// -------- Request Structs --------

type PlaceOrderRequest struct {
	Shipping          order.ShippingInput `json:"shipping" binding:"required"`
	PaymentMethod     string              `json:"payment_method" binding:"required"` // "online" or "cod"
	CustomizationNote string              `json:"customization_note"`
}

type UpdateTrackingRequest struct {
	Status         string `json:"status" binding:"required"`
	CourierPartner string `json:"courier_partner"`
	TrackingNumber string `json:"tracking_number"`
	Message        string `json:"message"`
	Location       string `json:"location"`
}

type ReturnRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type ReturnDecisionRequest struct {
	Status    string `json:"status" binding:"required"` // approved | rejected | completed
	AdminNote string `json:"admin_note"`
}

// Generate unique order reference
func generateOrderRef() string {
	return time.Now().Format("20060102150405") + "-" + uuid.NewString()
}

// -------- Core Logic --------

// PlaceOrder assembles the user's cart into an order and persists it. Stock
// is checked and deducted under row locks inside one transaction, so two
// simultaneous checkouts cannot both take the last unit; the assembler's
// stock gate is only the fast path. For COD orders the cart is cleared as
// soon as the order is persisted; online orders keep the cart until payment
// is verified.
func PlaceOrder(db *gorm.DB, carts *cart.Store, userID string, req PlaceOrderRequest) (*models.Order, error) {
	lines, err := carts.Lines(userID)
	if err != nil {
		return nil, err
	}

	method := models.PaymentMethod(req.PaymentMethod)
	if method != models.PaymentMethodOnline && method != models.PaymentMethodCOD {
		return nil, &order.ValidationError{Field: "payment_method", Reason: "payment method must be online or cod"}
	}

	lookup := func(productID uint) (order.ProductInfo, error) {
		var p models.Product
		if err := db.First(&p, "id = ?", productID).Error; err != nil {
			return order.ProductInfo{}, err
		}
		return order.ProductInfo{Price: p.Price, InStock: p.InStock, CountInStock: p.CountInStock}, nil
	}

	sub, err := order.Assemble(lines, lookup, req.Shipping, method, req.CustomizationNote)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	o := models.Order{
		OrderRef:          generateOrderRef(),
		UserID:            userID,
		Items:             sub.Items,
		Shipping:          sub.Shipping,
		CustomizationNote: sub.CustomizationNote,
		PaymentMethod:     sub.PaymentMethod,
		ItemsPrice:        sub.ItemsPrice,
		ShippingPrice:     sub.ShippingPrice,
		TotalPrice:        sub.TotalPrice,
		PaymentStatus:     models.PaymentStatusPending,
		TrackingStatus:    models.OrderStatusPending,
		TrackingHistory: []models.TrackingEvent{{
			Status:    models.OrderStatusPending,
			Message:   "Order placed",
			Timestamp: now,
		}},
		CreatedAt: now,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		for _, item := range sub.Items {
			var product models.Product
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&product, "id = ?", item.ProductID).Error; err != nil {
				return err
			}
			if !product.InStock || product.CountInStock < item.Quantity {
				return &order.ValidationError{Field: "items", Reason: "insufficient stock for product: " + item.ProductName}
			}
			product.CountInStock -= item.Quantity
			product.InStock = product.CountInStock > 0
			if err := tx.Save(&product).Error; err != nil {
				return err
			}
		}
		return tx.Create(&o).Error
	})
	if err != nil {
		return nil, err
	}

	if method == models.PaymentMethodCOD {
		if err := carts.Clear(userID); err != nil {
			return nil, err
		}
	}
	return &o, nil
}

// -------- Handlers --------

// POST /orders/place
func PlaceOrderHandler(db *gorm.DB, carts *cart.Store, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUser(c)
		if !ok {
			return
		}
		var req PlaceOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		o, err := PlaceOrder(db, carts, userID, req)
		if err != nil {
			var verr *order.ValidationError
			if errors.As(err, &verr) {
				c.JSON(http.StatusBadRequest, gin.H{"error": verr.Reason, "field": verr.Field})
				return
			}
			log.Error("order placement failed", zap.String("user_id", userID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to place order"})
			return
		}

		broadcastOrderUpdate(*o)
		c.JSON(http.StatusCreated, gin.H{"order_id": o.ID, "order_ref": o.OrderRef, "total_price": o.TotalPrice})
	}
}

// GET /orders (admin)
func GetAllOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var orders []models.Order
		if err := db.
			Preload("Items").
			Preload("TrackingHistory").
			Order("created_at DESC").
			Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// GET /orders/user/:userID
func GetUserOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Param("userID")
		if userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "userID is required"})
			return
		}
		var orders []models.Order
		if err := db.
			Where("user_id = ?", userID).
			Preload("Items").
			Preload("TrackingHistory").
			Order("created_at DESC").
			Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// GET /orders/:orderID — accepts numeric id or order ref.
func GetOrderByIDHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("orderID")
		if id == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "orderID is required"})
			return
		}

		var o models.Order
		if err := db.
			Preload("Items").
			Preload("TrackingHistory").
			Where("id = ? OR order_ref = ?", id, id).
			First(&o).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

// POST /orders/:orderID/cancel — customer cancellation, only while the order
// is pending or processing. A paid order gets its refund marked as initiated
// and consumed stock is restored either way. Customers may only cancel their
// own orders; admin requests carry no user and skip the ownership check.
func CancelOrderHandler(db *gorm.DB, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID := c.Param("orderID")
		if orderID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "orderID is required"})
			return
		}
		claimantVal, _ := c.Get("user_id")
		claimant, _ := claimantVal.(string)

		var cancelled models.Order
		err := db.Transaction(func(tx *gorm.DB) error {
			var o models.Order
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Preload("Items").
				First(&o, "id = ?", orderID).Error; err != nil {
				return err
			}

			if claimant != "" && o.UserID != claimant {
				return errOrderOwnership
			}

			if err := order.Cancel(&o); err != nil {
				return err
			}
			if err := payment.RestoreStock(tx, &o); err != nil {
				return err
			}

			event := models.TrackingEvent{
				OrderID:   o.ID,
				Status:    models.OrderStatusCancelled,
				Message:   "Order cancelled",
				Timestamp: time.Now(),
			}
			if err := tx.Create(&event).Error; err != nil {
				return err
			}
			if err := tx.Save(&o).Error; err != nil {
				return err
			}
			cancelled = o
			return nil
		})
		if err != nil {
			respondLifecycleError(c, err)
			return
		}

		log.Info("order cancelled",
			zap.String("order_id", orderID),
			zap.Bool("refund_initiated", cancelled.PaymentStatus == models.PaymentStatusRefundPending))
		broadcastOrderUpdate(cancelled)
		c.JSON(http.StatusOK, gin.H{
			"message":        "Order cancelled",
			"payment_status": cancelled.PaymentStatus,
		})
	}
}

// PUT /orders/:orderID/tracking — admin status transition, appended to the
// order's tracking history. Replaying the current status is a no-op.
func UpdateTrackingHandler(db *gorm.DB, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID := c.Param("orderID")
		if orderID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "orderID is required"})
			return
		}
		var req UpdateTrackingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		status, err := order.ParseStatus(req.Status)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var updated models.Order
		var changed bool
		err = db.Transaction(func(tx *gorm.DB) error {
			var o models.Order
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&o, "id = ?", orderID).Error; err != nil {
				return err
			}

			now := time.Now()
			changed, err = order.Transition(&o, status, now)
			if err != nil {
				return err
			}
			if !changed {
				updated = o
				return nil
			}

			if req.CourierPartner != "" {
				o.CourierPartner = req.CourierPartner
			}
			if req.TrackingNumber != "" {
				o.TrackingNumber = req.TrackingNumber
			}

			message := req.Message
			if message == "" {
				message = "Status updated to " + string(status)
			}
			event := models.TrackingEvent{
				OrderID:   o.ID,
				Status:    status,
				Message:   message,
				Location:  req.Location,
				Timestamp: now,
			}
			if err := tx.Create(&event).Error; err != nil {
				return err
			}
			if err := tx.Save(&o).Error; err != nil {
				return err
			}
			updated = o
			return nil
		})
		if err != nil {
			respondLifecycleError(c, err)
			return
		}

		if changed {
			broadcastOrderUpdate(updated)
		}
		c.JSON(http.StatusOK, gin.H{"message": "Tracking updated", "tracking_status": updated.TrackingStatus})
	}
}

// POST /orders/:orderID/return — customer return request, delivered orders
// only, within the return window.
func ReturnRequestHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID := c.Param("orderID")
		var req ReturnRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			var o models.Order
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&o, "id = ?", orderID).Error; err != nil {
				return err
			}
			if err := order.RequestReturn(&o, req.Reason, time.Now()); err != nil {
				return err
			}
			return tx.Save(&o).Error
		})
		if err != nil {
			respondLifecycleError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Return requested", "return_status": models.ReturnStatusRequested})
	}
}

// PUT /orders/:orderID/return — admin decision on an open return request.
func ReturnDecisionHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID := c.Param("orderID")
		var req ReturnDecisionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var status models.ReturnStatus
		err := db.Transaction(func(tx *gorm.DB) error {
			var o models.Order
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&o, "id = ?", orderID).Error; err != nil {
				return err
			}
			if err := order.DecideReturn(&o, models.ReturnStatus(req.Status), req.AdminNote); err != nil {
				return err
			}
			status = o.ReturnStatus
			return tx.Save(&o).Error
		})
		if err != nil {
			respondLifecycleError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Return updated", "return_status": status})
	}
}

func requireUser(c *gin.Context) (string, bool) {
	userIDVal, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", false
	}
	userID, _ := userIDVal.(string)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", false
	}
	return userID, true
}

var errOrderOwnership = errors.New("order does not belong to this user")

func respondLifecycleError(c *gin.Context, err error) {
	var serr *order.StateError
	if errors.As(err, &serr) {
		c.JSON(http.StatusConflict, gin.H{"error": serr.Reason})
		return
	}
	if errors.Is(err, errOrderOwnership) {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
