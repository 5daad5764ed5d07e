package main

import (
	"log"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/inventgo/inventapp/config"
	"github.com/inventgo/inventapp/controllers"
	"github.com/inventgo/inventapp/database"
	"github.com/inventgo/inventapp/routes"
	"github.com/inventgo/inventapp/watch"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	if os.Getenv("JWT_SECRET") == "" {
		log.Fatal("JWT_SECRET is not set")
	}

	cfg := config.LoadConfig()
	logger := config.GetLogger()

	// Connect to database
	database.ConnectDatabase()
	defer database.DB.Close()

	// Redis holds the remembered-credentials preference; the app runs
	// without it, remember-me just stops working.
	redisClient, err := config.ConnectRedis(cfg)
	if err != nil {
		log.Println("Redis unavailable, remember-me disabled:", err)
		redisClient = nil
	}

	hub := watch.NewHub()

	handlers := routes.Handlers{
		Users:   &controllers.UserHandler{DB: database.DB, Redis: redisClient, Logger: logger},
		Items:   &controllers.ItemHandler{DB: database.DB, Hub: hub, Logger: logger},
		Sales:   &controllers.SalesHandler{DB: database.DB, Hub: hub, Logger: logger},
		Reports: &controllers.ReportsHandler{DB: database.DB, Hub: hub, Logger: logger},
		Export:  &controllers.ExportHandler{DB: database.DB, Logger: logger},
	}

	// Initialize Gin router
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// Setup routes
	routes.SetupRoutes(router, handlers)

	// Start server
	router.Run(":" + cfg.ServerPort)
}
