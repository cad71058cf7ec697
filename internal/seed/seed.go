package seed

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/Zaki007-butt/Rentify-backend/internal/logger"
	"github.com/Zaki007-butt/Rentify-backend/internal/models"
	"github.com/Zaki007-butt/Rentify-backend/internal/store"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	adminEmail    = "admin@rentify.local"
	adminPassword = "password123"
)

var categoriesAndTypes = map[string][]string{
	"Residential": {"Apartment", "House", "Villa"},
	"Commercial":  {"Office", "Shop", "Warehouse"},
	"Land":        {"Plot", "Agricultural Land", "Industrial Land"},
}

var seedProperties = []struct {
	Title       string
	Description string
	Price       string
	Address     string
	City        string
}{
	{
		"Spacious Apartment in Downtown",
		"A spacious and modern apartment located in the heart of the city.",
		"45000.00", "12 Canal Road", "Lahore",
	},
	{
		"Modern House with Garden View",
		"A cozy house with a beautiful garden, perfect for a family.",
		"90000.00", "7 Park Lane", "Islamabad",
	},
	{
		"Central Office Space with City View",
		"Modern office space strategically located with panoramic city views.",
		"150000.00", "Tower B, Blue Area", "Islamabad",
	},
}

func Run() {
	db := store.DB

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", adminEmail).Count(&count).Error; err != nil {
		logger.Log.Fatal("seed check failed", zap.Error(err))
	}
	if count > 0 {
		logger.Log.Info("seed already applied, skipping")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.Fatal("failed to hash seed password", zap.Error(err))
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		admin := models.User{
			Name:     "Admin",
			Email:    adminEmail,
			Password: string(hash),
			IsAdmin:  true,
			IsActive: true,
		}
		if err := tx.Create(&admin).Error; err != nil {
			return err
		}

		types := map[string]models.PropertyType{}
		for categoryName, typeNames := range categoriesAndTypes {
			category := models.PropertyCategory{Name: categoryName}
			if err := tx.Create(&category).Error; err != nil {
				return err
			}
			for _, typeName := range typeNames {
				propertyType := models.PropertyType{Name: typeName, CategoryID: category.ID}
				if err := tx.Create(&propertyType).Error; err != nil {
					return err
				}
				types[typeName] = propertyType
			}
		}

		for _, p := range seedProperties {
			property := models.Property{
				Title:       p.Title,
				Description: p.Description,
				Price:       decimal.RequireFromString(p.Price),
				Address:     p.Address,
				City:        p.City,
				Status:      models.PropertyStatusAvailable,
			}
			if err := tx.Create(&property).Error; err != nil {
				return err
			}
		}

		// One account and ledger so the books are ready for postings.
		account := models.Account{Name: "Office Bank Account"}
		if err := tx.Create(&account).Error; err != nil {
			return err
		}
		led := models.Ledger{
			AccountID:   account.ID,
			Title:       "General",
			DebitTotal:  decimal.Zero,
			CreditTotal: decimal.Zero,
			Balance:     decimal.Zero,
		}
		return tx.Create(&led).Error
	})
	if err != nil {
		logger.Log.Fatal("seed failed", zap.Error(err))
	}
	logger.Log.Info("seeded admin user and demo data", zap.String("email", adminEmail))
}
