package store

import (
	"github.com/Zaki007-butt/Rentify-backend/configs"
	"github.com/Zaki007-butt/Rentify-backend/internal/logger"
	"github.com/Zaki007-butt/Rentify-backend/internal/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func NewDB() {
	dsn := configs.AppConfig.DB.DSN
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: false,
	}), &gorm.Config{})
	if err != nil {
		logger.Log.Fatal("failed to connect to database", zap.Error(err))
	}
	DB = db
	logger.Log.Info("connected to the database")
}

func DBMigrate() {
	DB.AutoMigrate(
		&models.User{},
		&models.PropertyCategory{},
		&models.PropertyType{},
		&models.Property{},
		&models.Customer{},
		&models.Agreement{},
		&models.Payment{},
		&models.UtilityBill{},
		&models.Account{},
		&models.Ledger{},
		&models.Transaction{},
	)
	logger.Log.Info("migrations loaded")
}
