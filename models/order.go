package models

import "time"

type OrderStatus string
type PaymentStatus string
type PaymentMethod string
type ReturnStatus string

const (
	// Tracking statuses (linear fulfilment flow)
	OrderStatusPending        OrderStatus = "pending"          // Order placed, awaiting confirmation
	OrderStatusConfirmed      OrderStatus = "confirmed"        // Confirmed by the store
	OrderStatusProcessing     OrderStatus = "processing"       // Being stitched/packed
	OrderStatusShipped        OrderStatus = "shipped"          // Handed to the courier
	OrderStatusOutForDelivery OrderStatus = "out_for_delivery" // With the delivery agent
	OrderStatusDelivered      OrderStatus = "delivered"        // Customer received the item
	OrderStatusCancelled      OrderStatus = "cancelled"        // Cancelled before shipping

	// Payment statuses
	PaymentStatusPending       PaymentStatus = "pending"
	PaymentStatusPaid          PaymentStatus = "paid"
	PaymentStatusFailed        PaymentStatus = "failed"
	PaymentStatusRefundPending PaymentStatus = "refund_pending" // Refund initiated after paid cancellation
	PaymentStatusRefunded      PaymentStatus = "refunded"

	PaymentMethodOnline PaymentMethod = "online"
	PaymentMethodCOD    PaymentMethod = "cod"

	// Return sub-flow, layered on top of a delivered order
	ReturnStatusNone      ReturnStatus = "none"
	ReturnStatusRequested ReturnStatus = "requested"
	ReturnStatusApproved  ReturnStatus = "approved"
	ReturnStatusRejected  ReturnStatus = "rejected"
	ReturnStatusCompleted ReturnStatus = "completed"
)

// ShippingAddress is embedded in Order.
type ShippingAddress struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type Order struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	OrderRef string `gorm:"uniqueIndex;not null" json:"order_ref"`
	UserID   string `gorm:"index;not null" json:"user_id"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`

	Shipping          ShippingAddress `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping"`
	CustomizationNote string          `gorm:"type:varchar(500)" json:"customization_note"`

	PaymentMethod PaymentMethod `gorm:"type:VARCHAR(10);not null" json:"payment_method"`
	ItemsPrice    int64         `json:"items_price"`
	ShippingPrice int64         `json:"shipping_price"`
	TotalPrice    int64         `json:"total_price"`

	IsPaid        bool          `json:"is_paid"`
	PaidAt        *time.Time    `json:"paid_at,omitempty"`
	PaymentStatus PaymentStatus `gorm:"type:VARCHAR(20);default:'pending'" json:"payment_status"`
	IntentRef     string        `json:"intent_ref,omitempty"`  // gateway intent/order reference
	PaymentRef    string        `json:"payment_ref,omitempty"` // gateway transaction id, set once on verify
	StockRestored bool          `json:"-"`                     // guards abandon/cancel against double restore

	TrackingStatus  OrderStatus     `gorm:"type:VARCHAR(20);default:'pending'" json:"tracking_status"`
	CourierPartner  string          `json:"courier_partner,omitempty"`
	TrackingNumber  string          `json:"tracking_number,omitempty"`
	TrackingHistory []TrackingEvent `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"tracking_history"`
	DeliveredAt     *time.Time      `json:"delivered_at,omitempty"`

	ReturnStatus    ReturnStatus `gorm:"type:VARCHAR(20);default:'none'" json:"return_status"`
	ReturnReason    string       `json:"return_reason,omitempty"`
	ReturnAdminNote string       `json:"return_admin_note,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OrderItem is an immutable snapshot of a cart line at submission time.
// Later cart or product mutations never touch a placed order.
type OrderItem struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	OrderID       uint           `gorm:"index" json:"-"`
	ProductID     uint           `json:"product_id"`
	ProductName   string         `json:"product_name"`
	ProductImage  string         `json:"product_image"`
	Size          string         `json:"size"`
	Quantity      int            `json:"quantity"`
	UnitPrice     int64          `json:"unit_price"`
	Customization *Customization `gorm:"serializer:json" json:"customization,omitempty"`
	AddOns        *AddOns        `gorm:"serializer:json" json:"add_ons,omitempty"`
}

// TrackingEvent is one append-only entry in an order's tracking history.
type TrackingEvent struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	OrderID   uint        `gorm:"index" json:"-"`
	Status    OrderStatus `gorm:"type:VARCHAR(20)" json:"status"`
	Message   string      `json:"message"`
	Location  string      `json:"location"`
	Timestamp time.Time   `json:"timestamp"`
}
