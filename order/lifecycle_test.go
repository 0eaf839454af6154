package order

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/craftloom/storefront-api/models"
)

func orderAt(status models.OrderStatus) *models.Order {
	return &models.Order{TrackingStatus: status, ReturnStatus: models.ReturnStatusNone}
}

func TestTransitionForwardOnly(t *testing.T) {
	now := time.Now()

	o := orderAt(models.OrderStatusPending)
	changed, err := Transition(o, models.OrderStatusConfirmed, now)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, models.OrderStatusConfirmed, o.TrackingStatus)

	// skipping ahead is legal, moving backwards is not
	changed, err = Transition(o, models.OrderStatusOutForDelivery, now)
	require.NoError(t, err)
	assert.True(t, changed)

	_, err = Transition(o, models.OrderStatusProcessing, now)
	var serr *StateError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, models.OrderStatusOutForDelivery, o.TrackingStatus, "failed transition leaves status unchanged")
}

func TestTransitionDuplicateEventIsNoop(t *testing.T) {
	now := time.Now()
	o := orderAt(models.OrderStatusShipped)

	changed, err := Transition(o, models.OrderStatusShipped, now)
	require.NoError(t, err)
	assert.False(t, changed, "replayed event must not re-apply")
}

func TestTransitionDeliveredSetsTimestampOnce(t *testing.T) {
	first := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	o := orderAt(models.OrderStatusOutForDelivery)

	changed, err := Transition(o, models.OrderStatusDelivered, first)
	require.NoError(t, err)
	require.True(t, changed)
	require.NotNil(t, o.DeliveredAt)
	assert.Equal(t, first, *o.DeliveredAt)

	// a duplicate delivered event keeps the original anchor
	changed, err = Transition(o, models.OrderStatusDelivered, first.Add(48*time.Hour))
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, first, *o.DeliveredAt)
}

func TestTransitionCancelledIsFrozen(t *testing.T) {
	o := orderAt(models.OrderStatusCancelled)
	for _, to := range []models.OrderStatus{
		models.OrderStatusConfirmed,
		models.OrderStatusShipped,
		models.OrderStatusDelivered,
	} {
		_, err := Transition(o, to, time.Now())
		var serr *StateError
		require.ErrorAs(t, err, &serr, "cancelled order accepted transition to %s", to)
	}
}

func TestCancelEligibility(t *testing.T) {
	tests := []struct {
		status models.OrderStatus
		ok     bool
	}{
		{models.OrderStatusPending, true},
		{models.OrderStatusProcessing, true},
		{models.OrderStatusConfirmed, false},
		{models.OrderStatusShipped, false},
		{models.OrderStatusOutForDelivery, false},
		{models.OrderStatusDelivered, false},
		{models.OrderStatusCancelled, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			o := orderAt(tt.status)
			err := Cancel(o)
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, models.OrderStatusCancelled, o.TrackingStatus)
			} else {
				var serr *StateError
				require.ErrorAs(t, err, &serr)
				assert.Equal(t, tt.status, o.TrackingStatus, "failed cancel leaves status unchanged")
			}
		})
	}
}

func TestCancelPaidOrderMarksRefundPending(t *testing.T) {
	o := orderAt(models.OrderStatusProcessing)
	o.IsPaid = true
	o.PaymentStatus = models.PaymentStatusPaid
	require.NoError(t, Cancel(o))
	assert.Equal(t, models.PaymentStatusRefundPending, o.PaymentStatus)

	unpaid := orderAt(models.OrderStatusPending)
	unpaid.PaymentStatus = models.PaymentStatusPending
	require.NoError(t, Cancel(unpaid))
	assert.Equal(t, models.PaymentStatusPending, unpaid.PaymentStatus, "no refund action on unpaid cancellation")
}

func TestReturnWindowBoundary(t *testing.T) {
	delivered := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	newDelivered := func() *models.Order {
		o := orderAt(models.OrderStatusDelivered)
		d := delivered
		o.DeliveredAt = &d
		return o
	}

	// day 6: accepted
	o := newDelivered()
	require.NoError(t, RequestReturn(o, "wrong size", delivered.Add(6*24*time.Hour)))
	assert.Equal(t, models.ReturnStatusRequested, o.ReturnStatus)
	assert.Equal(t, "wrong size", o.ReturnReason)

	// exactly day 7: still accepted
	o = newDelivered()
	require.NoError(t, RequestReturn(o, "color mismatch", delivered.Add(7*24*time.Hour)))

	// 7 days + 1 second: rejected with a window-specific reason
	o = newDelivered()
	err := RequestReturn(o, "too late", delivered.Add(7*24*time.Hour+time.Second))
	var serr *StateError
	require.ErrorAs(t, err, &serr)
	assert.Contains(t, serr.Reason, "window")
	assert.Equal(t, models.ReturnStatusNone, o.ReturnStatus)
}

func TestReturnRequiresDelivered(t *testing.T) {
	o := orderAt(models.OrderStatusShipped)
	err := RequestReturn(o, "changed my mind", time.Now())
	var serr *StateError
	require.ErrorAs(t, err, &serr)
	assert.Contains(t, serr.Reason, "delivered")
}

func TestReturnFlowScenario(t *testing.T) {
	// delivered day 0, requested day 7, approved with note, completed;
	// any further return action is rejected
	delivered := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	o := orderAt(models.OrderStatusDelivered)
	o.DeliveredAt = &delivered

	require.NoError(t, RequestReturn(o, "damaged zari work", delivered.Add(7*24*time.Hour)))
	require.NoError(t, DecideReturn(o, models.ReturnStatusApproved, "pickup scheduled"))
	assert.Equal(t, "pickup scheduled", o.ReturnAdminNote)
	require.NoError(t, DecideReturn(o, models.ReturnStatusCompleted, ""))
	assert.Equal(t, models.ReturnStatusCompleted, o.ReturnStatus)

	var serr *StateError
	require.ErrorAs(t, DecideReturn(o, models.ReturnStatusApproved, ""), &serr)
	require.ErrorAs(t, RequestReturn(o, "again", delivered.Add(24*time.Hour)), &serr)
}

func TestDecideReturnIllegalTransitions(t *testing.T) {
	o := orderAt(models.OrderStatusDelivered)
	o.ReturnStatus = models.ReturnStatusRequested

	// double-approve
	require.NoError(t, DecideReturn(o, models.ReturnStatusApproved, ""))
	var serr *StateError
	require.ErrorAs(t, DecideReturn(o, models.ReturnStatusApproved, ""), &serr)

	// rejected is terminal for the request
	o2 := orderAt(models.OrderStatusDelivered)
	o2.ReturnStatus = models.ReturnStatusRequested
	require.NoError(t, DecideReturn(o2, models.ReturnStatusRejected, "outside policy"))
	require.ErrorAs(t, DecideReturn(o2, models.ReturnStatusCompleted, ""), &serr)

	// completed straight from requested is illegal
	o3 := orderAt(models.OrderStatusDelivered)
	o3.ReturnStatus = models.ReturnStatusRequested
	require.ErrorAs(t, DecideReturn(o3, models.ReturnStatusCompleted, ""), &serr)
}

func TestParseStatus(t *testing.T) {
	for _, s := range []string{"pending", "confirmed", "processing", "shipped", "out_for_delivery", "delivered", "cancelled"} {
		got, err := ParseStatus(s)
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatus(s), got)
	}
	_, err := ParseStatus("returned_to_sender")
	assert.Error(t, err)
}
