package db

import (
	"github.com/smartcart/smartcart-backend/internal/app/model"
	"github.com/smartcart/smartcart-backend/pkg/logger"
)

// Migrate runs database migrations
func Migrate() error {
	logger.Info("Running database migrations...")

	models := []interface{}{
		&model.User{},
		&model.Category{},
		&model.Product{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderItem{},
		&model.WishlistItem{},
		&model.Review{},
		&model.Notification{},
		&model.AuditLog{},
		&model.ExpiryAlert{},
		&model.Coupon{},
		&model.InteractionCheck{},
	}

	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	if err := seedInitialData(); err != nil {
		logger.Error("Failed to seed initial data during migration", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// Seed adds initial data to the database (optional)
func Seed() error {
	return seedInitialData()
}

func seedInitialData() error {
	logger.Info("Seeding initial data...")

	if err := seedCategories(); err != nil {
		logger.Error("Failed to seed categories", err)
		return err
	}

	logger.Info("Initial data seeded successfully")
	return nil
}

// seedCategories creates the default category set when the table is empty.
func seedCategories() error {
	var count int64
	if err := DB.Model(&model.Category{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		logger.Info("Categories already seeded, skipping...", map[string]interface{}{
			"existing_count": count,
		})
		return nil
	}

	categories := []model.Category{
		{Name: "Fruits & Vegetables", Description: "Fresh produce delivered daily", IsPharmacy: false},
		{Name: "Dairy & Eggs", Description: "Milk, cheese, yogurt and eggs", IsPharmacy: false},
		{Name: "Bakery", Description: "Bread, pastries and baked goods", IsPharmacy: false},
		{Name: "Meat & Seafood", Description: "Fresh and frozen meat and fish", IsPharmacy: false},
		{Name: "Beverages", Description: "Juices, sodas, coffee and tea", IsPharmacy: false},
		{Name: "Snacks", Description: "Chips, chocolate and sweets", IsPharmacy: false},
		{Name: "Household", Description: "Cleaning and household essentials", IsPharmacy: false},
		{Name: "Pharmacy", Description: "Over-the-counter medicines and health products", IsPharmacy: true},
	}

	for _, category := range categories {
		if err := DB.Create(&category).Error; err != nil {
			logger.Error("Failed to create category", err, map[string]interface{}{
				"category": category.Name,
			})
			return err
		}
	}

	logger.Info("Categories seeded successfully", map[string]interface{}{
		"total_categories": len(categories),
	})
	return nil
}
