package order

import (
	"fmt"
	"time"

	"github.com/craftloom/storefront-api/models"
)

// StateError rejects an illegal lifecycle transition. The order is left
// unchanged whenever one is returned.
type StateError struct {
	Reason string
}

func (e *StateError) Error() string {
	return e.Reason
}

// ReturnWindow is how long after delivery a return request is accepted.
// Day 7 is the last allowed day; day 8 is the first rejected one.
const ReturnWindow = 7

// statusRank orders the linear fulfilment flow. Cancelled sits outside it.
var statusRank = map[models.OrderStatus]int{
	models.OrderStatusPending:        0,
	models.OrderStatusConfirmed:      1,
	models.OrderStatusProcessing:     2,
	models.OrderStatusShipped:        3,
	models.OrderStatusOutForDelivery: 4,
	models.OrderStatusDelivered:      5,
}

// ParseStatus maps a request string onto a known tracking status.
func ParseStatus(s string) (models.OrderStatus, error) {
	st := models.OrderStatus(s)
	if _, ok := statusRank[st]; ok {
		return st, nil
	}
	if st == models.OrderStatusCancelled {
		return st, nil
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

// Transition advances an order's tracking status. Only forward moves along
// the linear flow are legal; a cancelled order is frozen. Re-applying the
// current status is a silent no-op so duplicated admin/gateway events never
// double-append history. Returns true when the order actually changed.
func Transition(o *models.Order, to models.OrderStatus, now time.Time) (bool, error) {
	if o.TrackingStatus == to {
		return false, nil
	}
	if o.TrackingStatus == models.OrderStatusCancelled {
		return false, &StateError{Reason: "order is cancelled and cannot change status"}
	}
	if to == models.OrderStatusCancelled {
		return false, &StateError{Reason: "use Cancel to cancel an order"}
	}
	from, ok := statusRank[o.TrackingStatus]
	if !ok {
		return false, &StateError{Reason: fmt.Sprintf("order is in unknown status %q", o.TrackingStatus)}
	}
	dest, ok := statusRank[to]
	if !ok {
		return false, &StateError{Reason: fmt.Sprintf("unknown target status %q", to)}
	}
	if dest < from {
		return false, &StateError{Reason: fmt.Sprintf("cannot move order from %s back to %s", o.TrackingStatus, to)}
	}

	o.TrackingStatus = to
	if to == models.OrderStatusDelivered && o.DeliveredAt == nil {
		t := now
		o.DeliveredAt = &t
	}
	return true, nil
}

// CanCancel reports whether the order is still in a cancellable phase.
// Cancellation is only legal from pending or processing.
func CanCancel(o *models.Order) bool {
	return o.TrackingStatus == models.OrderStatusPending ||
		o.TrackingStatus == models.OrderStatusProcessing
}

// Cancel freezes the order's forward lifecycle. A paid order additionally
// gets its refund marked as initiated; stock restoration is the caller's
// transactional responsibility.
func Cancel(o *models.Order) error {
	if o.TrackingStatus == models.OrderStatusCancelled {
		return &StateError{Reason: "order is already cancelled"}
	}
	if !CanCancel(o) {
		return &StateError{Reason: fmt.Sprintf("cannot cancel an order that is %s", o.TrackingStatus)}
	}
	o.TrackingStatus = models.OrderStatusCancelled
	if o.IsPaid {
		o.PaymentStatus = models.PaymentStatusRefundPending
	}
	return nil
}

// RequestReturn opens the return sub-flow. Only a delivered order with no
// prior return activity qualifies, and only within the return window.
func RequestReturn(o *models.Order, reason string, now time.Time) error {
	if o.TrackingStatus != models.OrderStatusDelivered {
		return &StateError{Reason: "returns can only be requested for delivered orders"}
	}
	if o.ReturnStatus != models.ReturnStatusNone && o.ReturnStatus != "" {
		return &StateError{Reason: fmt.Sprintf("a return was already %s for this order", o.ReturnStatus)}
	}
	if o.DeliveredAt == nil {
		return &StateError{Reason: "order has no delivery date"}
	}
	if now.Sub(*o.DeliveredAt) > ReturnWindow*24*time.Hour {
		return &StateError{Reason: fmt.Sprintf("return window of %d days after delivery has closed", ReturnWindow)}
	}
	o.ReturnStatus = models.ReturnStatusRequested
	o.ReturnReason = reason
	return nil
}

// DecideReturn applies an admin decision to an open return request:
// requested -> approved|rejected, approved -> completed. Anything else is a
// StateError and leaves the order untouched.
func DecideReturn(o *models.Order, to models.ReturnStatus, adminNote string) error {
	switch to {
	case models.ReturnStatusApproved, models.ReturnStatusRejected:
		if o.ReturnStatus != models.ReturnStatusRequested {
			return &StateError{Reason: fmt.Sprintf("cannot mark return %s: return is %s", to, o.ReturnStatus)}
		}
	case models.ReturnStatusCompleted:
		if o.ReturnStatus != models.ReturnStatusApproved {
			return &StateError{Reason: fmt.Sprintf("cannot complete a return that is %s", o.ReturnStatus)}
		}
	default:
		return &StateError{Reason: fmt.Sprintf("unknown return decision %q", to)}
	}
	o.ReturnStatus = to
	if adminNote != "" {
		o.ReturnAdminNote = adminNote
	}
	return nil
}
