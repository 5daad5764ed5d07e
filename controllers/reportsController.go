package controllers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/inventgo/inventapp/config"
	"github.com/inventgo/inventapp/models"
	"github.com/inventgo/inventapp/reports"
	"github.com/inventgo/inventapp/watch"
)

type ReportsHandler struct {
	DB     *gorm.DB
	Hub    *watch.Hub
	Logger *logrus.Logger
}

// GetTransactions loads the user's transactions newest-first, normalizes
// legacy single-line records, and returns the entries with their running
// aggregates. ?kind= partitions the loaded set without re-fetching.
func (h *ReportsHandler) GetTransactions(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var txs []models.Transaction
	if err := h.DB.Preload("Lines").
		Where("owner_id = ?", userID).
		Order("occurred_at DESC").
		Find(&txs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load transactions"})
		return
	}

	entries, summary := reports.Build(txs)

	if kind := c.Query("kind"); kind != "" {
		entries = reports.FilterByKind(entries, models.TransactionKind(kind))
	}

	c.JSON(http.StatusOK, gin.H{
		"transactions": entries,
		"summary":      summary,
	})
}

type editLineInput struct {
	Quantity  int    `json:"quantity" binding:"required"`
	UnitPrice string `json:"unit_price"`
}

// EditLine rewrites one line's quantity (and price for sales), recomputes
// the aggregate total, and applies a best-effort compensating adjustment of
// (oldQty - newQty) to the linked inventory item. The compensation is
// independent of the transaction write; its failure is logged and swallowed.
func (h *ReportsHandler) EditLine(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var tx models.Transaction
	if err := h.DB.Preload("Lines").
		Where("owner_id = ? AND id = ?", userID, c.Param("id")).
		First(&tx).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid line index"})
		return
	}

	var input editLineInput
	if err := c.ShouldBindJSON(&input); err != nil || input.Quantity <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Quantity must be a positive integer"})
		return
	}

	unitPrice := decimal.Zero
	if tx.Kind == models.KindSale {
		unitPrice, err = decimal.NewFromString(input.UnitPrice)
		if err != nil || unitPrice.IsNegative() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Price must be a non-negative number"})
			return
		}
	}

	lines := tx.NormalizedLines()
	if index >= len(lines) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid line index"})
		return
	}

	oldLine := lines[index]
	lines[index] = reports.RecomputeLine(oldLine, tx.Kind, input.Quantity, unitPrice)
	total := reports.AggregateTotal(lines, tx.Kind)

	// Editing a legacy record promotes it to the line-row shape for good.
	legacy := len(tx.Lines) == 0
	if legacy {
		for i := range lines {
			lines[i].ID = 0
			lines[i].TransactionID = tx.ID
			if err := h.DB.Create(&lines[i]).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update transaction"})
				return
			}
		}
		if err := h.DB.Model(&tx).Updates(map[string]interface{}{
			"total":             total,
			"legacy_name":       "",
			"legacy_item_id":    nil,
			"legacy_quantity":   0,
			"legacy_unit_price": decimal.NullDecimal{},
		}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update transaction"})
			return
		}
	} else {
		if err := h.DB.Model(&models.TransactionLine{}).
			Where("id = ?", lines[index].ID).
			Updates(map[string]interface{}{
				"quantity":   lines[index].Quantity,
				"unit_price": lines[index].UnitPrice,
				"total":      lines[index].Total,
			}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update transaction"})
			return
		}
		if err := h.DB.Model(&tx).Update("total", total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update transaction"})
			return
		}
	}

	// Compensating stock adjustment: positive delta returns stock, negative
	// takes more. Best-effort, independent of the writes above.
	if oldLine.ItemID != nil {
		if delta := reports.StockDelta(oldLine.Quantity, input.Quantity); delta != 0 {
			if err := h.DB.Model(&models.Item{}).
				Where("owner_id = ? AND id = ?", userID, *oldLine.ItemID).
				Update("quantity", gorm.Expr("quantity + ?", delta)).Error; err != nil {
				config.LogCompensationFailure(h.Logger, "EditLine", *oldLine.ItemID, err)
			}
		}
	}

	h.broadcastSnapshot(userID.(uint))

	c.JSON(http.StatusOK, gin.H{
		"message": "Transaction updated successfully",
		"total":   total,
	})
}

// DeleteTransaction restores stock for every inventory-linked line, then
// deletes the record. Each restore re-reads the current quantity and is
// best-effort; a failed restore never blocks the delete, and nothing orders
// the restores against the delete for concurrent readers.
func (h *ReportsHandler) DeleteTransaction(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var tx models.Transaction
	if err := h.DB.Preload("Lines").
		Where("owner_id = ? AND id = ?", userID, c.Param("id")).
		First(&tx).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	for _, line := range tx.NormalizedLines() {
		if line.ItemID == nil {
			continue
		}
		var item models.Item
		if err := h.DB.Where("owner_id = ? AND id = ?", userID, *line.ItemID).
			First(&item).Error; err != nil {
			// Item deleted since the sale; orphaned reference, nothing to
			// restore.
			config.LogCompensationFailure(h.Logger, "DeleteTransaction", *line.ItemID, err)
			continue
		}
		if err := h.DB.Model(&item).
			Update("quantity", item.Quantity+line.Quantity).Error; err != nil {
			config.LogCompensationFailure(h.Logger, "DeleteTransaction", *line.ItemID, err)
		}
	}

	if err := h.DB.Where("transaction_id = ?", tx.ID).
		Delete(&models.TransactionLine{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete transaction"})
		return
	}
	if err := h.DB.Delete(&tx).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete transaction"})
		return
	}

	h.broadcastSnapshot(userID.(uint))

	c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted successfully"})
}

type GenerateReportRequest struct {
	ReportType string `json:"reportType" binding:"required"`
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate"`
}

type ReportRow struct {
	Date       string
	Product    string
	Quantity   int
	Price      string
	TotalValue string
}

func (h *ReportsHandler) GenerateReport(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req GenerateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	startDate, endDate := time.Time{}, time.Now()
	if req.StartDate != "" {
		var err error
		startDate, err = time.Parse(time.RFC3339, req.StartDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid startDate format"})
			return
		}
	}
	if req.EndDate != "" {
		var err error
		endDate, err = time.Parse(time.RFC3339, req.EndDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid endDate format"})
			return
		}
	}

	rows, title, err := h.fetchReportData(userID.(uint), req.ReportType, startDate, endDate)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	pdf, err := generatePDF(rows, title, req.ReportType, startDate, endDate)
	if err != nil {
		config.LogError(h.Logger, "controllers", "GenerateReport", "pdf render", req.ReportType, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate report"})
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s_report.pdf", req.ReportType))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func (h *ReportsHandler) fetchReportData(ownerID uint, reportType string, startDate, endDate time.Time) ([]ReportRow, string, error) {
	var rows []ReportRow
	var title string

	switch reportType {
	case "sales", "withdrawals":
		kind := models.KindSale
		title = "Sales Report"
		if reportType == "withdrawals" {
			kind = models.KindAuthorizedWithdrawal
			title = "Authorized Withdrawals Report"
		}
		var txs []models.Transaction
		if err := h.DB.Preload("Lines").
			Where("owner_id = ? AND kind = ? AND occurred_at BETWEEN ? AND ?", ownerID, kind, startDate, endDate).
			Order("occurred_at DESC").
			Find(&txs).Error; err != nil {
			return nil, "", err
		}
		for _, tx := range txs {
			for _, line := range tx.NormalizedLines() {
				rows = append(rows, ReportRow{
					Date:       tx.OccurredAt.Format("2006-01-02"),
					Product:    line.Name,
					Quantity:   line.Quantity,
					Price:      line.UnitPrice.StringFixed(2),
					TotalValue: line.Total.StringFixed(2),
				})
			}
		}

	case "current-stock":
		var items []models.Item
		if err := h.DB.
			Where("owner_id = ?", ownerID).
			Order("name").
			Find(&items).Error; err != nil {
			return nil, "", err
		}
		for _, item := range items {
			rows = append(rows, itemReportRow(item))
		}
		title = "Current Stock Report"

	case "low-stock":
		var items []models.Item
		if err := h.DB.
			Where("owner_id = ? AND quantity <= ?", ownerID, lowStockThreshold).
			Order("name").
			Find(&items).Error; err != nil {
			return nil, "", err
		}
		for _, item := range items {
			rows = append(rows, itemReportRow(item))
		}
		title = "Low Stock Report"

	default:
		return nil, "", fmt.Errorf("invalid report type")
	}

	return rows, title, nil
}

func itemReportRow(item models.Item) ReportRow {
	price := decimal.Zero
	if item.PurchasePrice.Valid {
		price = item.PurchasePrice.Decimal
	}
	return ReportRow{
		Product:    item.Name,
		Quantity:   item.Quantity,
		Price:      price.StringFixed(2),
		TotalValue: price.Mul(decimal.NewFromInt(int64(item.Quantity))).StringFixed(2),
	}
}

func generatePDF(rows []ReportRow, title, reportType string, startDate, endDate time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)

	// Report Title
	pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Arial", "", 12)
	if reportType == "sales" || reportType == "withdrawals" {
		pdf.CellFormat(0, 10, fmt.Sprintf("Date Range: %s to %s", startDate.Format("2006-01-02"), endDate.Format("2006-01-02")), "", 1, "L", false, 0, "")
		pdf.Ln(5)

		if reportType == "sales" {
			var totalItems int
			totalValue := decimal.Zero
			for _, row := range rows {
				totalItems += row.Quantity
				if v, err := decimal.NewFromString(row.TotalValue); err == nil {
					totalValue = totalValue.Add(v)
				}
			}

			pdf.CellFormat(0, 10, fmt.Sprintf("Total Items Sold: %d", totalItems), "", 1, "L", false, 0, "")
			pdf.CellFormat(0, 10, fmt.Sprintf("Total Sales: %s", totalValue.StringFixed(2)), "", 1, "L", false, 0, "")
			pdf.Ln(5)
		}
	}

	// Table Header
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(40, 10, "Date", "1", 0, "C", false, 0, "")
	pdf.CellFormat(50, 10, "Product", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 10, "Quantity", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 10, "Price", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 10, "Total Value", "1", 1, "C", false, 0, "")

	// Table Rows
	pdf.SetFont("Arial", "", 12)
	for _, row := range rows {
		pdf.CellFormat(40, 10, row.Date, "1", 0, "C", false, 0, "")
		pdf.CellFormat(50, 10, row.Product, "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 10, fmt.Sprintf("%d", row.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 10, row.Price, "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 10, row.TotalValue, "1", 1, "R", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (h *ReportsHandler) broadcastSnapshot(ownerID uint) {
	var items []models.Item
	if err := h.DB.Where("owner_id = ?", ownerID).Order("name").Find(&items).Error; err != nil {
		config.LogError(h.Logger, "controllers", "broadcastSnapshot", "snapshot fetch", ownerID, err)
		return
	}
	h.Hub.Broadcast(ownerID, items)
}
