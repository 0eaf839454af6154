package cartControllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/craftloom/storefront-api/cart"
	"github.com/craftloom/storefront-api/models"
	"github.com/craftloom/storefront-api/pricing"
)

type CartLineInput struct {
	ProductID     uint                  `json:"product_id" binding:"required"`
	Quantity      int                   `json:"quantity"`
	Size          string                `json:"size" binding:"required"`
	Customization *models.Customization `json:"customization"`
	AddOns        *models.AddOns        `json:"add_ons"`
}

type CartLineRef struct {
	ProductID     uint                  `json:"product_id" binding:"required"`
	Size          string                `json:"size" binding:"required"`
	Customization *models.Customization `json:"customization"`
	AddOns        *models.AddOns        `json:"add_ons"`
}

func cartResponse(lines []models.CartLine) gin.H {
	return gin.H{
		"lines":  lines,
		"totals": pricing.PriceCart(lines),
	}
}

// GET /user/cart
func GetCart(store *cart.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUser(c)
		if !ok {
			return
		}
		lines, err := store.Lines(userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
			return
		}
		c.JSON(http.StatusOK, cartResponse(lines))
	}
}

// POST /user/cart
func AddCartLine(db *gorm.DB, store *cart.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUser(c)
		if !ok {
			return
		}

		var input CartLineInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		if input.Quantity == 0 {
			input.Quantity = 1
		}
		if input.Quantity < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "quantity must be at least 1"})
			return
		}

		var product models.Product
		if err := db.First(&product, "id = ?", input.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Product does not exist"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate product"})
			return
		}

		lines, err := store.Add(userID, product, input.Quantity, input.Size, input.Customization, input.AddOns)
		if err != nil {
			if errors.Is(err, cart.ErrInvalidQuantity) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart"})
			return
		}
		c.JSON(http.StatusOK, cartResponse(lines))
	}
}

// POST /user/cart/decrease
func DecreaseCartLine(store *cart.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUser(c)
		if !ok {
			return
		}
		var ref CartLineRef
		if err := c.ShouldBindJSON(&ref); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		lines, err := store.Decrease(userID, ref.ProductID, ref.Size, ref.Customization, ref.AddOns)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart"})
			return
		}
		c.JSON(http.StatusOK, cartResponse(lines))
	}
}

// DELETE /user/cart
func RemoveCartLine(store *cart.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUser(c)
		if !ok {
			return
		}
		var ref CartLineRef
		if err := c.ShouldBindJSON(&ref); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		lines, err := store.Remove(userID, ref.ProductID, ref.Size, ref.Customization, ref.AddOns)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart"})
			return
		}
		c.JSON(http.StatusOK, cartResponse(lines))
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
