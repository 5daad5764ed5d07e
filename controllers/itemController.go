package controllers

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/inventgo/inventapp/config"
	"github.com/inventgo/inventapp/models"
	"github.com/inventgo/inventapp/watch"
)

const lowStockThreshold = 10

type ItemHandler struct {
	DB     *gorm.DB
	Hub    *watch.Hub
	Logger *logrus.Logger
}

func handleItemError(c *gin.Context, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
	} else {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

type itemInput struct {
	Name          string               `json:"name"`
	Category      *string              `json:"category"`
	Quantity      *int                 `json:"quantity"`
	PurchasePrice *decimal.NullDecimal `json:"purchase_price"`
	SalePrice     *decimal.NullDecimal `json:"sale_price"`
	SKU           *string              `json:"sku"`
	Description   *string              `json:"description"`
}

func (h *ItemHandler) GetItems(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	orderBy := c.DefaultQuery("order_by", "name")
	if orderBy != "name" && orderBy != "created_at" && orderBy != "quantity" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported order_by field"})
		return
	}

	var items []models.Item
	if err := h.DB.Where("owner_id = ?", userID).Order(orderBy).Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, items)
}

// WatchItems streams ordered inventory snapshots over SSE: one on subscribe,
// then one per mutation, until the client disconnects.
func (h *ItemHandler) WatchItems(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	sub := h.Hub.Subscribe(userID.(uint))
	defer sub.Cancel()

	var items []models.Item
	if err := h.DB.Where("owner_id = ?", userID).Order("name").Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.SSEvent("snapshot", items)
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case snapshot, ok := <-sub.C:
			if !ok {
				return false
			}
			c.SSEvent("snapshot", snapshot)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

func (h *ItemHandler) GetItem(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	id := c.Param("id")
	var item models.Item
	if err := h.DB.
		Where("owner_id = ? AND id = ?", userID, id).
		First(&item).Error; err != nil {
		handleItemError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *ItemHandler) CreateItem(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var input itemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name is required"})
		return
	}

	sku := ""
	if input.SKU != nil {
		sku = strings.TrimSpace(*input.SKU)
	}

	// SKU pre-check. Not a database constraint: a concurrent creation
	// between this read and the write below can still slip through.
	if sku != "" {
		var existing models.Item
		err := h.DB.Where("owner_id = ? AND sku = ?", userID, sku).First(&existing).Error
		if err == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "An item with this SKU already exists"})
			return
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	item := models.Item{
		OwnerID: userID.(uint),
		Name:    name,
		SKU:     sku,
	}
	if input.Category != nil {
		item.Category = *input.Category
	}
	if input.Quantity != nil {
		item.Quantity = *input.Quantity
	}
	if input.PurchasePrice != nil {
		item.PurchasePrice = *input.PurchasePrice
	}
	if input.SalePrice != nil {
		item.SalePrice = *input.SalePrice
	}
	if input.Description != nil {
		item.Description = *input.Description
	}

	if err := h.DB.Create(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.broadcastSnapshot(userID.(uint))

	c.JSON(http.StatusCreated, gin.H{
		"message": "Item created successfully",
		"item":    item,
	})
}

// UpdateItem is a partial merge: only provided fields change, last write
// wins, no concurrency token.
func (h *ItemHandler) UpdateItem(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	id := c.Param("id")
	var item models.Item
	if err := h.DB.
		Where("owner_id = ? AND id = ?", userID, id).
		First(&item).Error; err != nil {
		handleItemError(c, err)
		return
	}

	var input itemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if input.Name != "" {
		name := strings.TrimSpace(input.Name)
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Name is required"})
			return
		}
		updates["name"] = name
	}
	if input.Category != nil {
		updates["category"] = *input.Category
	}
	if input.Quantity != nil {
		updates["quantity"] = *input.Quantity
	}
	if input.PurchasePrice != nil {
		updates["purchase_price"] = *input.PurchasePrice
	}
	if input.SalePrice != nil {
		updates["sale_price"] = *input.SalePrice
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.SKU != nil {
		sku := strings.TrimSpace(*input.SKU)
		if sku != "" && sku != item.SKU {
			var existing models.Item
			err := h.DB.Where("owner_id = ? AND sku = ? AND id != ?", userID, sku, item.ID).
				First(&existing).Error
			if err == nil {
				c.JSON(http.StatusConflict, gin.H{"error": "An item with this SKU already exists"})
				return
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
		}
		updates["sku"] = sku
	}

	if err := h.DB.Model(&item).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.broadcastSnapshot(userID.(uint))

	c.JSON(http.StatusOK, item)
}

// DeleteItem removes the row unconditionally. Transactions referencing the
// item keep their line rows; orphaned references are tolerated.
func (h *ItemHandler) DeleteItem(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	id := c.Param("id")
	var item models.Item
	if err := h.DB.
		Where("owner_id = ? AND id = ?", userID, id).
		First(&item).Error; err != nil {
		handleItemError(c, err)
		return
	}

	if err := h.DB.Delete(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	h.broadcastSnapshot(userID.(uint))

	c.JSON(http.StatusOK, gin.H{"message": "Item deleted successfully"})
}

// FilterItems supports exact SKU match, case-insensitive exact category
// match, and a created-within-last-7-days range filter.
func (h *ItemHandler) FilterItems(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if sku := strings.TrimSpace(c.Query("sku")); sku != "" {
		var items []models.Item
		if err := h.DB.Where("owner_id = ? AND sku = ?", userID, sku).Find(&items).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, items)
		return
	}

	if c.Query("recent") == "7d" {
		weekAgo := time.Now().AddDate(0, 0, -7)
		var items []models.Item
		if err := h.DB.Where("owner_id = ? AND created_at >= ?", userID, weekAgo).
			Order("created_at desc").Find(&items).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, items)
		return
	}

	if category := strings.TrimSpace(c.Query("category")); category != "" {
		// Case-insensitive match done over the full ordered fetch.
		var items []models.Item
		if err := h.DB.Where("owner_id = ?", userID).Order("name").Find(&items).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		matched := make([]models.Item, 0, len(items))
		for _, item := range items {
			if strings.EqualFold(item.Category, category) {
				matched = append(matched, item)
			}
		}
		c.JSON(http.StatusOK, matched)
		return
	}

	c.JSON(http.StatusBadRequest, gin.H{"error": "Provide sku, category or recent=7d"})
}

// getting total no. of items
func (h *ItemHandler) NumberOfItems(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	var count int64
	if err := h.DB.Model(&models.Item{}).Where("owner_id = ?", userID).Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": count})
}

// getting all low-stock items
func (h *ItemHandler) LowStockItems(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	var items []models.Item
	if err := h.DB.Where("owner_id = ? AND quantity <= ?", userID, lowStockThreshold).Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch low stock items"})
		return
	}
	c.JSON(http.StatusOK, items)
}

// getting number of low stock items
func (h *ItemHandler) LowStock(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	var count int64
	if err := h.DB.Model(&models.Item{}).
		Where("owner_id = ? AND quantity <= ?", userID, lowStockThreshold).
		Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch low stock items"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"lowstock": count})
}

// getting total value of items in the inventory
func (h *ItemHandler) TotalValue(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var totalValue float64
	err := h.DB.Raw(
		"SELECT COALESCE(SUM(purchase_price * quantity), 0) AS total_value FROM items WHERE owner_id = ? AND purchase_price IS NOT NULL AND deleted_at IS NULL",
		userID,
	).Row().Scan(&totalValue)

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"totalValue": totalValue})
}

func (h *ItemHandler) broadcastSnapshot(ownerID uint) {
	var items []models.Item
	if err := h.DB.Where("owner_id = ?", ownerID).Order("name").Find(&items).Error; err != nil {
		config.LogError(h.Logger, "controllers", "broadcastSnapshot", "snapshot fetch", ownerID, err)
		return
	}
	h.Hub.Broadcast(ownerID, items)
}
