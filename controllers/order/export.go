package orderControllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"

	"github.com/craftloom/storefront-api/models"
)

// GET /orders/export — back-office xlsx dump of all orders.
func ExportOrdersToExcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var orders []models.Order
		if err := db.Preload("Items").Order("created_at DESC").Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
			return
		}

		file := xlsx.NewFile()
		sheet, err := file.AddSheet("Orders")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel sheet"})
			return
		}

		headers := []string{
			"ID", "OrderRef", "UserID", "Name", "Phone", "City", "State",
			"PostalCode", "Country", "PaymentMethod", "PaymentStatus", "IsPaid",
			"ItemsPrice", "ShippingPrice", "TotalPrice", "TrackingStatus",
			"ReturnStatus", "ItemCount", "CreatedAt",
		}
		headerRow := sheet.AddRow()
		for _, h := range headers {
			headerRow.AddCell().SetValue(h)
		}

		for _, o := range orders {
			itemCount := 0
			for _, it := range o.Items {
				itemCount += it.Quantity
			}

			row := sheet.AddRow()
			row.AddCell().SetValue(o.ID)
			row.AddCell().SetValue(o.OrderRef)
			row.AddCell().SetValue(o.UserID)
			row.AddCell().SetValue(o.Shipping.Name)
			row.AddCell().SetValue(o.Shipping.Phone)
			row.AddCell().SetValue(o.Shipping.City)
			row.AddCell().SetValue(o.Shipping.State)
			row.AddCell().SetValue(o.Shipping.PostalCode)
			row.AddCell().SetValue(o.Shipping.Country)
			row.AddCell().SetValue(string(o.PaymentMethod))
			row.AddCell().SetValue(string(o.PaymentStatus))
			row.AddCell().SetValue(strconv.FormatBool(o.IsPaid))
			row.AddCell().SetValue(o.ItemsPrice)
			row.AddCell().SetValue(o.ShippingPrice)
			row.AddCell().SetValue(o.TotalPrice)
			row.AddCell().SetValue(string(o.TrackingStatus))
			row.AddCell().SetValue(string(o.ReturnStatus))
			row.AddCell().SetValue(itemCount)
			row.AddCell().SetValue(o.CreatedAt.Format("2006-01-02 15:04:05"))
		}

		c.Header("Content-Disposition", "attachment; filename=orders.xlsx")
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Transfer-Encoding", "binary")
		c.Header("Expires", "0")

		if err := file.Write(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write Excel file"})
			return
		}
	}
}
