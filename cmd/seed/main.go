package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/smartcart/smartcart-backend/config"
	"github.com/smartcart/smartcart-backend/internal/app/model"
	"github.com/smartcart/smartcart-backend/internal/app/repository"
	"github.com/smartcart/smartcart-backend/internal/db"
	"github.com/smartcart/smartcart-backend/pkg/util"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// Seeds the database with demo accounts, a sample catalog and a few
// coupons. When an XLSX path is given as the first argument the catalog
// is bulk-imported from the file instead of using the built-in samples:
//
//	go run cmd/seed/main.go [products.xlsx]
//
// Expected XLSX columns: name, description, category, price,
// original_price, stock, expiry_date (YYYY-MM-DD), medical_warnings,
// image_url. The first row is treated as a header.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}
	if err := db.Seed(); err != nil {
		log.Fatal("Failed to seed categories:", err)
	}

	if err := seedUsers(db.GetDB()); err != nil {
		log.Fatal("Failed to seed users:", err)
	}
	if err := seedCoupons(db.GetDB()); err != nil {
		log.Fatal("Failed to seed coupons:", err)
	}

	if len(os.Args) > 1 {
		if err := importProductsFromXLSX(db.GetDB(), os.Args[1]); err != nil {
			log.Fatal("Failed to import products:", err)
		}
	} else {
		if err := seedSampleProducts(db.GetDB()); err != nil {
			log.Fatal("Failed to seed products:", err)
		}
	}

	fmt.Println("Seed completed successfully!")
}

func seedUsers(gdb *gorm.DB) error {
	userRepo := repository.NewUserRepository(gdb)

	accounts := []struct {
		username string
		email    string
		password string
		phone    string
		role     model.UserRole
	}{
		{"admin", "admin@smartcart.dev", "admin1234", "+15550100", model.RoleAdmin},
		{"demo", "demo@smartcart.dev", "demo1234", "+15550101", model.RoleUser},
	}

	for _, a := range accounts {
		if _, err := userRepo.FindByEmail(a.email); err == nil {
			fmt.Printf("User %s already exists, skipping\n", a.email)
			continue
		}

		hash, err := util.HashPassword(a.password)
		if err != nil {
			return err
		}

		user := &model.User{
			Username:     a.username,
			Email:        a.email,
			PasswordHash: hash,
			Phone:        a.phone,
			Role:         a.role,
		}
		if err := userRepo.Create(user); err != nil {
			return err
		}
		fmt.Printf("Created user %s (%s)\n", a.email, a.role)
	}

	return nil
}

func seedCoupons(gdb *gorm.DB) error {
	couponRepo := repository.NewCouponRepository(gdb)
	now := time.Now()

	coupons := []model.Coupon{
		{Code: "WELCOME10", DiscountPercentage: 10, ValidFrom: now, ValidUntil: now.AddDate(1, 0, 0), IsActive: true, MinPurchase: 0},
		{Code: "FRESH15", DiscountPercentage: 15, ValidFrom: now, ValidUntil: now.AddDate(0, 3, 0), IsActive: true, MinPurchase: 30},
		{Code: "BULK20", DiscountPercentage: 20, ValidFrom: now, ValidUntil: now.AddDate(0, 1, 0), IsActive: true, MinPurchase: 100},
	}

	for i := range coupons {
		if _, err := couponRepo.FindByCode(coupons[i].Code); err == nil {
			fmt.Printf("Coupon %s already exists, skipping\n", coupons[i].Code)
			continue
		}
		if err := couponRepo.Create(&coupons[i]); err != nil {
			return err
		}
		fmt.Printf("Created coupon %s (%.0f%% off)\n", coupons[i].Code, coupons[i].DiscountPercentage)
	}

	return nil
}

type sampleProduct struct {
	name          string
	description   string
	category      string
	price         float64
	originalPrice float64 // 0 means no discount
	stock         int
	expiryInDays  int // 0 means no expiry date
	warnings      string
}

func seedSampleProducts(gdb *gorm.DB) error {
	productRepo := repository.NewProductRepository(gdb)

	var count int64
	if err := gdb.Model(&model.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		fmt.Printf("Products already seeded (%d found), skipping\n", count)
		return nil
	}

	samples := []sampleProduct{
		{name: "Organic Bananas", description: "Bunch of organic bananas, roughly 1kg", category: "Fruits & Vegetables", price: 1.99, stock: 120, expiryInDays: 7},
		{name: "Avocado 2-Pack", description: "Ready-to-eat Hass avocados", category: "Fruits & Vegetables", price: 3.49, originalPrice: 4.29, stock: 45, expiryInDays: 5},
		{name: "Baby Spinach 200g", description: "Washed baby spinach leaves", category: "Fruits & Vegetables", price: 2.79, stock: 60, expiryInDays: 6},
		{name: "Whole Milk 1L", description: "Fresh whole milk, pasteurized", category: "Dairy & Eggs", price: 1.29, stock: 200, expiryInDays: 10},
		{name: "Free-Range Eggs 12ct", description: "Large free-range eggs", category: "Dairy & Eggs", price: 4.49, stock: 80, expiryInDays: 21},
		{name: "Greek Yogurt 500g", description: "Plain Greek yogurt, 5% fat", category: "Dairy & Eggs", price: 3.29, originalPrice: 3.99, stock: 55, expiryInDays: 14},
		{name: "Sourdough Loaf", description: "Stone-baked sourdough bread", category: "Bakery", price: 3.99, stock: 30, expiryInDays: 4},
		{name: "Butter Croissants 4ct", description: "All-butter croissants", category: "Bakery", price: 4.79, originalPrice: 5.49, stock: 25, expiryInDays: 3},
		{name: "Atlantic Salmon Fillet 300g", description: "Fresh skin-on salmon fillet", category: "Meat & Seafood", price: 8.99, stock: 20, expiryInDays: 3},
		{name: "Chicken Breast 500g", description: "Skinless chicken breast fillets", category: "Meat & Seafood", price: 5.49, stock: 40, expiryInDays: 5},
		{name: "Orange Juice 1L", description: "Freshly squeezed, not from concentrate", category: "Beverages", price: 2.99, stock: 90, expiryInDays: 12},
		{name: "Cold Brew Coffee 750ml", description: "Slow-steeped cold brew concentrate", category: "Beverages", price: 5.99, originalPrice: 6.99, stock: 35, expiryInDays: 30},
		{name: "Sea Salt Crisps 150g", description: "Hand-cooked potato crisps", category: "Snacks", price: 1.89, stock: 150},
		{name: "Dark Chocolate 70% 100g", description: "Single-origin dark chocolate bar", category: "Snacks", price: 2.49, stock: 110, expiryInDays: 180},
		{name: "Dish Soap 500ml", description: "Lemon-scented washing-up liquid", category: "Household", price: 1.99, stock: 75},
		{name: "Paper Towels 4-Roll", description: "Absorbent kitchen paper towels", category: "Household", price: 3.99, stock: 65},
		{name: "Ibuprofen 200mg 24ct", description: "Pain and fever relief tablets", category: "Pharmacy", price: 4.29, stock: 50, expiryInDays: 365,
			warnings: "Do not combine with other NSAIDs or blood thinners. Not recommended during pregnancy."},
		{name: "Paracetamol 500mg 16ct", description: "Pain relief and fever reducer", category: "Pharmacy", price: 2.99, stock: 70, expiryInDays: 540,
			warnings: "Do not exceed 8 tablets in 24 hours. Avoid alcohol while taking this medicine."},
		{name: "Antihistamine 10mg 14ct", description: "Non-drowsy allergy relief tablets", category: "Pharmacy", price: 5.49, originalPrice: 6.29, stock: 40, expiryInDays: 400,
			warnings: "May interact with sedatives. Consult a pharmacist if taking other antihistamines."},
		{name: "Vitamin D3 1000IU 90ct", description: "Daily vitamin D supplement", category: "Pharmacy", price: 7.99, stock: 60, expiryInDays: 700},
	}

	created := 0
	for _, s := range samples {
		var category model.Category
		if err := gdb.Where("name = ?", s.category).First(&category).Error; err != nil {
			fmt.Printf("Category %q not found, skipping %q\n", s.category, s.name)
			continue
		}

		product := model.Product{
			Name:            s.name,
			Description:     s.description,
			Price:           s.price,
			Stock:           s.stock,
			CategoryID:      category.ID,
			MedicalWarnings: s.warnings,
		}
		if s.originalPrice > 0 {
			op := s.originalPrice
			product.OriginalPrice = &op
		}
		if s.expiryInDays > 0 {
			expiry := time.Now().AddDate(0, 0, s.expiryInDays)
			product.ExpiryDate = &expiry
		}

		if err := productRepo.Create(&product); err != nil {
			return err
		}
		created++
	}

	fmt.Printf("Created %d sample products\n", created)
	return nil
}

func importProductsFromXLSX(gdb *gorm.DB, filePath string) error {
	fmt.Printf("Reading XLSX file: %s\n", filePath)

	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return fmt.Errorf("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) < 2 {
		return fmt.Errorf("no data rows found in XLSX file")
	}

	productRepo := repository.NewProductRepository(gdb)

	// Category names map to IDs once up front; rows referencing an
	// unknown category are skipped, not failed.
	var categories []model.Category
	if err := gdb.Find(&categories).Error; err != nil {
		return err
	}
	categoryIDs := make(map[string]uint, len(categories))
	for _, c := range categories {
		categoryIDs[strings.ToLower(c.Name)] = c.ID
	}

	var products []model.Product
	skipped := 0

	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		if len(row) < 6 {
			skipped++
			continue
		}

		name := strings.TrimSpace(row[0])
		description := strings.TrimSpace(row[1])
		categoryName := strings.TrimSpace(row[2])

		price, errPrice := strconv.ParseFloat(strings.TrimSpace(row[3]), 64)
		stock, errStock := strconv.Atoi(strings.TrimSpace(row[5]))

		categoryID, ok := categoryIDs[strings.ToLower(categoryName)]
		if name == "" || !ok || errPrice != nil || price <= 0 || errStock != nil || stock < 0 {
			skipped++
			continue
		}

		product := model.Product{
			Name:        name,
			Description: description,
			Price:       price,
			Stock:       stock,
			CategoryID:  categoryID,
		}

		if raw := strings.TrimSpace(row[4]); raw != "" {
			if op, err := strconv.ParseFloat(raw, 64); err == nil && op > price {
				product.OriginalPrice = &op
			}
		}
		if len(row) > 6 {
			if raw := strings.TrimSpace(row[6]); raw != "" {
				if expiry, err := time.Parse("2006-01-02", raw); err == nil {
					product.ExpiryDate = &expiry
				}
			}
		}
		if len(row) > 7 {
			product.MedicalWarnings = strings.TrimSpace(row[7])
		}
		if len(row) > 8 {
			product.ImageURL = strings.TrimSpace(row[8])
		}

		products = append(products, product)
	}

	fmt.Printf("Parsed %d products (%d rows skipped)\n", len(products), skipped)
	if len(products) == 0 {
		return fmt.Errorf("no valid products found in XLSX file")
	}

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return nil
	}

	for i := range products {
		if err := productRepo.Create(&products[i]); err != nil {
			return fmt.Errorf("failed to create product %q: %w", products[i].Name, err)
		}
	}

	fmt.Printf("Imported %d products\n", len(products))
	return nil
}
