package db

import (
	"fmt"
	"log"
	"sync/atomic"

	"github.com/smartcart/smartcart-backend/internal/app/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSequence int64

// SetupTestDB creates an in-memory SQLite database for testing.
// InteractionCheck is left out: its Postgres array columns do not
// migrate on sqlite.
//
// The database is named and opened with a shared cache: a plain
// ":memory:" DSN gives every pooled connection its own empty database,
// so a query running while another connection holds a transaction
// would see no tables at all. The sequence number keeps databases
// isolated between tests; the memory is released when the last
// connection closes in CleanupTestDB.
func SetupTestDB() (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared",
		atomic.AddInt64(&testDBSequence, 1))

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to test database: %w", err)
	}

	err = db.AutoMigrate(
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
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate test database: %w", err)
	}

	return db, nil
}

// CleanupTestDB cleans up the test database
func CleanupTestDB(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("Failed to get DB instance: %v", err)
		return
	}
	sqlDB.Close()
}

// TruncateAllTables removes all data from tables
func TruncateAllTables(db *gorm.DB) error {
	tables := []string{
		"cart_items", "order_items", "orders", "wishlist_items", "reviews",
		"notifications", "audit_logs", "expiry_alerts", "coupons",
		"products", "categories", "users",
	}
	for _, table := range tables {
		if err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
			return err
		}
	}
	return nil
}
