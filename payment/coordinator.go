package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/craftloom/storefront-api/cart"
	"github.com/craftloom/storefront-api/models"
	"github.com/craftloom/storefront-api/order"
)

// Error is a payment-phase failure. Retryable failures left no state behind
// and are safe to repeat; the rest need the abandon path or support.
type Error struct {
	Op        string
	Reason    string
	Retryable bool
}

func (e *Error) Error() string {
	return fmt.Sprintf("payment %s: %s", e.Op, e.Reason)
}

// Coordinator drives the two-phase online payment flow for an order and the
// compensating abandon action. Verify and Abandon are idempotent per order:
// duplicate gateway callbacks never double-apply money or stock effects.
type Coordinator struct {
	db    *gorm.DB
	gw    *Client
	carts *cart.Store
	log   *zap.Logger
}

func NewCoordinator(db *gorm.DB, gw *Client, carts *cart.Store, log *zap.Logger) *Coordinator {
	return &Coordinator{db: db, gw: gw, carts: carts, log: log}
}

// VerifyRequest is the gateway's payment response handed back by the client
// or by the server-to-server webhook.
type VerifyRequest struct {
	OrderID    uint   `json:"order_id"`
	IntentRef  string `json:"intent_ref"`
	PaymentRef string `json:"payment_ref"`
	Signature  string `json:"signature"`
}

// CreateIntent registers the order's total with the gateway and records the
// returned intent reference on the order.
func (pc *Coordinator) CreateIntent(ctx context.Context, orderID uint) (*Intent, error) {
	var o models.Order
	if err := pc.db.First(&o, orderID).Error; err != nil {
		return nil, err
	}
	if o.IsPaid {
		return nil, &order.StateError{Reason: "order is already paid"}
	}
	if o.TrackingStatus == models.OrderStatusCancelled {
		return nil, &order.StateError{Reason: "order is cancelled"}
	}
	if o.PaymentMethod != models.PaymentMethodOnline {
		return nil, &order.StateError{Reason: "order is not an online payment"}
	}

	intent, err := pc.gw.CreateIntent(ctx, o.TotalPrice, o.OrderRef)
	if err != nil {
		return nil, err
	}

	if err := pc.db.Model(&o).Update("intent_ref", intent.IntentRef).Error; err != nil {
		return nil, err
	}
	pc.log.Info("payment intent created",
		zap.Uint("order_id", o.ID),
		zap.String("intent_ref", intent.IntentRef),
		zap.String("mode", intent.Mode))
	return intent, nil
}

// Verify confirms a gateway payment response and marks the order paid. A
// second call for an already-paid order returns success without touching
// anything. Only after verification succeeds is the customer's cart cleared.
func (pc *Coordinator) Verify(ctx context.Context, req VerifyRequest) error {
	var userID string
	err := pc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var o models.Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&o, req.OrderID).Error; err != nil {
			return err
		}

		if o.IsPaid {
			// duplicate callback
			pc.log.Info("verify replayed for paid order", zap.Uint("order_id", o.ID))
			return nil
		}
		if o.TrackingStatus == models.OrderStatusCancelled {
			return &order.StateError{Reason: "order is cancelled"}
		}
		if o.IntentRef == "" || o.IntentRef != req.IntentRef {
			return &Error{Op: "verify", Reason: "payment does not match the order's intent"}
		}

		res := pc.gw.VerifySignature(req.IntentRef, req.PaymentRef, req.Signature)
		switch res.Status {
		case ResultOK:
		case ResultCancelled:
			return &Error{Op: "verify", Reason: "payment was cancelled at the gateway"}
		default:
			return &Error{Op: "verify", Reason: res.Reason}
		}

		now := time.Now()
		o.IsPaid = true
		o.PaidAt = &now
		o.PaymentStatus = models.PaymentStatusPaid
		o.PaymentRef = res.PaymentRef
		if err := tx.Save(&o).Error; err != nil {
			return err
		}
		userID = o.UserID
		return nil
	})
	if err != nil {
		return err
	}

	if userID != "" {
		if err := pc.carts.Clear(userID); err != nil {
			// the payment stands either way
			pc.log.Error("failed to clear cart after verified payment",
				zap.String("user_id", userID), zap.Error(err))
		}
	}
	return nil
}

// Abandon compensates a failed or cancelled online payment: the order is
// cancelled, its reserved stock restored, and the customer's cart left
// intact so checkout can be retried. Safe to call more than once.
func (pc *Coordinator) Abandon(ctx context.Context, orderID uint) error {
	return pc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var o models.Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("Items").First(&o, orderID).Error; err != nil {
			return err
		}

		if o.IsPaid {
			return &order.StateError{Reason: "cannot abandon a paid order"}
		}
		if o.TrackingStatus == models.OrderStatusCancelled && o.StockRestored {
			// duplicate callback
			return nil
		}

		if err := RestoreStock(tx, &o); err != nil {
			return err
		}
		o.TrackingStatus = models.OrderStatusCancelled
		o.PaymentStatus = models.PaymentStatusFailed
		if err := tx.Save(&o).Error; err != nil {
			return err
		}
		pc.log.Info("order abandoned, stock restored", zap.Uint("order_id", o.ID))
		return nil
	})
}

// RestoreStock puts an order's consumed stock back, once. It row-locks each
// product so concurrent checkouts see consistent counts, and flips the
// order's StockRestored flag so cancellation and abandonment can share it
// without double-crediting.
func RestoreStock(tx *gorm.DB, o *models.Order) error {
	if o.StockRestored {
		return nil
	}
	for _, item := range o.Items {
		var product models.Product
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&product, "id = ?", item.ProductID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue // product removed since ordering
			}
			return err
		}
		product.CountInStock += item.Quantity
		product.InStock = product.CountInStock > 0
		if err := tx.Save(&product).Error; err != nil {
			return err
		}
	}
	o.StockRestored = true
	return nil
}
