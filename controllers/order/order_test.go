package orderControllers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/craftloom/storefront-api/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	// sqlite has no SELECT ... FOR UPDATE; drop the locking clause
	require.NoError(t, db.Callback().Query().Before("gorm:query").
		Register("test_strip_locking", func(tx *gorm.DB) {
			delete(tx.Statement.Clauses, "FOR")
		}))

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.CartSnapshot{},
		&models.Order{},
		&models.OrderItem{},
		&models.TrackingEvent{},
	))
	return db
}

func seedPendingOrder(t *testing.T, db *gorm.DB, userID string) *models.Order {
	t.Helper()
	product := models.Product{Name: "Banarasi Silk Saree", Price: 1000, InStock: true, CountInStock: 3}
	require.NoError(t, db.Create(&product).Error)

	o := models.Order{
		OrderRef:       "ref-" + userID + "-" + fmt.Sprint(product.ID),
		UserID:         userID,
		PaymentMethod:  models.PaymentMethodCOD,
		ItemsPrice:     1000,
		TotalPrice:     1000,
		PaymentStatus:  models.PaymentStatusPending,
		TrackingStatus: models.OrderStatusPending,
		Items: []models.OrderItem{{
			ProductID:   product.ID,
			ProductName: product.Name,
			Size:        "Free",
			Quantity:    1,
			UnitPrice:   1000,
		}},
	}
	require.NoError(t, db.Create(&o).Error)
	return &o
}

func cancelRequest(handler gin.HandlerFunc, orderID uint, userID string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, fmt.Sprintf("/orders/%d/cancel", orderID), nil)
	c.Params = gin.Params{{Key: "orderID", Value: fmt.Sprint(orderID)}}
	if userID != "" {
		c.Set("user_id", userID)
	}
	handler(c)
	return w
}

func TestCancelOrderRequiresOwnership(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newTestDB(t)
	handler := CancelOrderHandler(db, zap.NewNop())

	o := seedPendingOrder(t, db, "u1")

	// a different authenticated customer cannot cancel it
	w := cancelRequest(handler, o.ID, "u2")
	assert.Equal(t, http.StatusForbidden, w.Code)

	var cur models.Order
	require.NoError(t, db.First(&cur, o.ID).Error)
	assert.Equal(t, models.OrderStatusPending, cur.TrackingStatus, "rejected cancel leaves the order unchanged")

	// the owner can
	w = cancelRequest(handler, o.ID, "u1")
	assert.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, db.First(&cur, o.ID).Error)
	assert.Equal(t, models.OrderStatusCancelled, cur.TrackingStatus)
}

func TestCancelOrderAdminSkipsOwnership(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newTestDB(t)
	handler := CancelOrderHandler(db, zap.NewNop())

	o := seedPendingOrder(t, db, "u1")

	// admin requests carry no user in the context
	w := cancelRequest(handler, o.ID, "")
	assert.Equal(t, http.StatusOK, w.Code)

	var cur models.Order
	require.NoError(t, db.First(&cur, o.ID).Error)
	assert.Equal(t, models.OrderStatusCancelled, cur.TrackingStatus)
}
