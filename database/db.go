package database

import (
	"fmt"
	"log"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres"
	"github.com/inventgo/inventapp/config"

	"github.com/inventgo/inventapp/models"
)

var DB *gorm.DB

func ConnectDatabase() {
	cfg := config.LoadConfig()
	connectionString := fmt.Sprintf("host=%s port=%s user=%s dbname=%s password=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBName, cfg.DBPassword)

	var err error
	DB, err = gorm.Open("postgres", connectionString)
	if err != nil {
		log.Fatal("Failed to connect to database", err)
	}

	//migrations
	DB.AutoMigrate(&models.User{}, &models.Item{}, &models.Transaction{}, &models.TransactionLine{})
}
