package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"

	"github.com/inventgo/inventapp/cart"
	"github.com/inventgo/inventapp/config"
	"github.com/inventgo/inventapp/models"
	"github.com/inventgo/inventapp/watch"
)

type SalesHandler struct {
	DB     *gorm.DB
	Hub    *watch.Hub
	Logger *logrus.Logger
}

type saleLineInput struct {
	ItemID    *uint  `json:"item_id"`
	Name      string `json:"name"`
	Quantity  string `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

type saleInput struct {
	Kind  models.TransactionKind `json:"kind" binding:"required"`
	Lines []saleLineInput        `json:"lines" binding:"required"`
}

// CreateSale commits a cart of one or more lines as a single transaction
// record. Validation is all-or-nothing; the per-line inventory decrements
// that follow are independent best-effort writes with no rollback.
func (h *SalesHandler) CreateSale(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var input saleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Kind != models.KindSale && input.Kind != models.KindAuthorizedWithdrawal {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown transaction kind"})
		return
	}

	basket := cart.New()
	for _, line := range input.Lines {
		if line.ItemID != nil {
			// Available stock is captured here, when the line enters the
			// cart; commit validates against this value, not a re-read.
			var item models.Item
			if err := h.DB.Where("owner_id = ? AND id = ?", userID, *line.ItemID).
				First(&item).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					c.JSON(http.StatusNotFound, gin.H{"error": "Item not found"})
				} else {
					c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				}
				return
			}
			if err := basket.AddLine(item.ID, item.Name, item.SalePrice, item.Quantity); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "This item is already in the cart"})
				return
			}
		} else {
			if err := basket.AddManualLine(line.Name); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
		}

		index := len(basket.Lines()) - 1
		if line.Name != "" {
			basket.UpdateLine(index, cart.FieldName, line.Name)
		}
		basket.UpdateLine(index, cart.FieldQuantity, line.Quantity)
		if line.UnitPrice != "" {
			basket.UpdateLine(index, cart.FieldPrice, line.UnitPrice)
		}
	}

	commit, err := basket.Commit(input.Kind)
	if err != nil {
		var stockErr *cart.StockExceededError
		if errors.As(err, &stockErr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Insufficient stock",
				"line":  stockErr.Line,
				"item":  stockErr.Name,
			})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tx := models.Transaction{
		OwnerID:    userID.(uint),
		Kind:       commit.Kind,
		OccurredAt: time.Now(),
		Total:      commit.Total,
		LineCount:  commit.LineCount,
		MultiLine:  commit.MultiLine,
	}
	for _, line := range commit.Lines {
		tx.Lines = append(tx.Lines, models.TransactionLine{
			ItemID:     line.ItemID,
			Name:       line.Name,
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice,
			Total:      line.Total,
			Provenance: line.Provenance,
		})
	}

	if err := h.DB.Create(&tx).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record transaction"})
		return
	}

	// Best-effort decrements, one per inventory-linked line. Each failure is
	// logged and swallowed; the transaction record above stays either way.
	// Two concurrent commits can both pass the captured-stock check and
	// over-draw the item.
	for _, line := range commit.Lines {
		if line.ItemID == nil {
			continue
		}
		if err := h.DB.Model(&models.Item{}).
			Where("owner_id = ? AND id = ?", userID, *line.ItemID).
			Update("quantity", gorm.Expr("quantity - ?", line.Quantity)).Error; err != nil {
			config.LogCompensationFailure(h.Logger, "CreateSale", *line.ItemID, err)
		}
	}

	h.broadcastSnapshot(userID.(uint))

	c.JSON(http.StatusCreated, gin.H{
		"transaction": tx,
		"total":       commit.Total,
	})
}

func (h *SalesHandler) GetSales(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var txs []models.Transaction
	if err := h.DB.Preload("Lines").
		Where("owner_id = ?", userID).
		Find(&txs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch sales"})
		return
	}

	c.JSON(http.StatusOK, txs)
}

func (h *SalesHandler) GetItemsForSales(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var items []models.Item
	if err := h.DB.Select("id, name, sale_price, quantity").
		Where("owner_id = ?", userID).
		Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch items"})
		return
	}

	c.JSON(http.StatusOK, items)
}

func (h *SalesHandler) GetLastFiveSales(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var txs []models.Transaction
	if err := h.DB.Preload("Lines").
		Where("owner_id = ?", userID).
		Order("occurred_at DESC").
		Limit(5).
		Find(&txs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recent sales"})
		return
	}

	c.JSON(http.StatusOK, txs)
}

func (h *SalesHandler) DeleteSaleRecords(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	// Lines go first so no rows are left dangling once their transactions are gone.
	// Clearing history does not restore stock; only single-record deletes compensate.
	if err := h.DB.Where("transaction_id IN (?)",
		h.DB.Model(&models.Transaction{}).Select("id").Where("owner_id = ?", userID).QueryExpr()).
		Delete(&models.TransactionLine{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear sales history"})
		return
	}
	if err := h.DB.Where("owner_id = ?", userID).
		Delete(&models.Transaction{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear sales history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Sales records cleared successfully"})
}

func (h *SalesHandler) broadcastSnapshot(ownerID uint) {
	var items []models.Item
	if err := h.DB.Where("owner_id = ?", ownerID).Order("name").Find(&items).Error; err != nil {
		config.LogError(h.Logger, "controllers", "broadcastSnapshot", "snapshot fetch", ownerID, err)
		return
	}
	h.Hub.Broadcast(ownerID, items)
}
