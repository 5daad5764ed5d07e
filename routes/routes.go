package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/inventgo/inventapp/controllers"
	"github.com/inventgo/inventapp/middleware"
)

type Handlers struct {
	Users   *controllers.UserHandler
	Items   *controllers.ItemHandler
	Sales   *controllers.SalesHandler
	Reports *controllers.ReportsHandler
	Export  *controllers.ExportHandler
}

func SetupRoutes(router *gin.Engine, h Handlers) {
	api := router.Group("/api")

	// Public routes
	auth := api.Group("/auth")
	{
		auth.POST("/signup", h.Users.Signup)
		auth.POST("/login", h.Users.Login)
		auth.GET("/remembered", h.Users.Remembered)
	}

	// Protected routes
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware())
	{
		// Inventory routes
		items := protected.Group("/items")
		{
			items.GET("", h.Items.GetItems)
			items.GET("/watch", h.Items.WatchItems)
			items.GET("/filter", h.Items.FilterItems)
			items.GET("/total", h.Items.NumberOfItems)
			items.GET("/low-stock", h.Items.LowStock)
			items.GET("/low-stock-items", h.Items.LowStockItems)
			items.GET("/total-value", h.Items.TotalValue)
			items.GET("/:id", h.Items.GetItem)
			items.POST("", h.Items.CreateItem)
			items.PUT("/:id", h.Items.UpdateItem)
			items.DELETE("/:id", h.Items.DeleteItem)
		}

		// Sales routes
		sales := protected.Group("/sales")
		{
			sales.POST("", h.Sales.CreateSale)
			sales.GET("", h.Sales.GetSales)
			sales.GET("/products", h.Sales.GetItemsForSales)
			sales.GET("/last-five-sales", h.Sales.GetLastFiveSales)
			sales.DELETE("", h.Sales.DeleteSaleRecords)
		}

		// User routes
		users := protected.Group("/users")
		{
			users.GET("/profile", h.Users.GetProfile)
			users.POST("/changePassword", h.Users.ChangePassword)
			users.POST("/logout", h.Users.Logout)
		}

		// Reports
		reportsGroup := protected.Group("/reports")
		{
			reportsGroup.GET("/transactions", h.Reports.GetTransactions)
			reportsGroup.PUT("/transactions/:id/lines/:index", h.Reports.EditLine)
			reportsGroup.DELETE("/transactions/:id", h.Reports.DeleteTransaction)
			reportsGroup.POST("", h.Reports.GenerateReport)
		}

		// Export
		exportGroup := protected.Group("/export")
		{
			exportGroup.GET("/items", h.Export.ExportItems)
			exportGroup.GET("/transactions", h.Export.ExportTransactions)
		}

		protected.GET("/session", h.Users.VerifyAuth)
	}
}
