package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"

	"github.com/inventgo/inventapp/export"
	"github.com/inventgo/inventapp/models"
	"github.com/inventgo/inventapp/reports"
)

type ExportHandler struct {
	DB     *gorm.DB
	Logger *logrus.Logger
}

// ExportItems renders the selected inventory slice as the printable HTML
// document. The print/share hand-off happens on the client.
func (h *ExportHandler) ExportItems(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	filter := c.DefaultQuery("filter", "all")
	param := strings.TrimSpace(c.Query("param"))

	var items []models.Item
	var title string
	var err error

	switch filter {
	case "all":
		err = h.DB.Where("owner_id = ?", userID).Order("name").Find(&items).Error
		title = "Inventory"
	case "recent":
		weekAgo := time.Now().AddDate(0, 0, -7)
		err = h.DB.Where("owner_id = ? AND created_at >= ?", userID, weekAgo).
			Order("created_at desc").Find(&items).Error
		title = "Inventory - Last 7 Days"
	case "sku":
		if param == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "param is required for the sku filter"})
			return
		}
		err = h.DB.Where("owner_id = ? AND sku = ?", userID, param).Find(&items).Error
		title = "Inventory - SKU " + param
	case "category":
		if param == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "param is required for the category filter"})
			return
		}
		var all []models.Item
		err = h.DB.Where("owner_id = ?", userID).Order("name").Find(&all).Error
		for _, item := range all {
			if strings.EqualFold(item.Category, param) {
				items = append(items, item)
			}
		}
		title = "Inventory - " + param
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown filter"})
		return
	}

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if len(items) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No data for that filter"})
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(export.RenderItemsTable(items, title)))
}

// ExportTransactions renders a filtered transaction slice as HTML.
func (h *ExportHandler) ExportTransactions(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	filter := c.DefaultQuery("filter", "all")
	now := time.Now()

	query := h.DB.Preload("Lines").Where("owner_id = ?", userID).Order("occurred_at DESC")
	var title string

	switch filter {
	case "today":
		dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		query = query.Where("occurred_at >= ? AND occurred_at < ?", dayStart, dayStart.AddDate(0, 0, 1))
		title = "Transactions - Today"
	case "sales":
		query = query.Where("kind = ? AND occurred_at >= ?", models.KindSale, now.AddDate(0, 0, -7))
		title = "Sales - Last 7 Days"
	case "withdrawals":
		query = query.Where("kind = ? AND occurred_at >= ?", models.KindAuthorizedWithdrawal, now.AddDate(0, 0, -7))
		title = "Authorized Withdrawals - Last 7 Days"
	case "all":
		query = query.Where("occurred_at >= ?", now.AddDate(0, 0, -30))
		title = "Transactions - Last 30 Days"
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown filter"})
		return
	}

	var txs []models.Transaction
	if err := query.Find(&txs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if len(txs) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "No data for that filter"})
		return
	}

	entries, _ := reports.Build(txs)
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(export.RenderTransactionsTable(entries, title)))
}
