package service

import (
	"testing"
	"time"

	"github.com/smartcart/smartcart-backend/internal/app/model"
	"github.com/smartcart/smartcart-backend/internal/app/repository"
	"github.com/smartcart/smartcart-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type productTestEnv struct {
	db               *gorm.DB
	productService   ProductService
	notificationRepo repository.NotificationRepository
	wishlistRepo     repository.WishlistRepository
	alertRepo        repository.ExpiryAlertRepository
	admin            *model.User
	category         *model.Category
}

func setupProductServiceTest(t *testing.T) *productTestEnv {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	productRepo := repository.NewProductRepository(testDB)
	categoryRepo := repository.NewCategoryRepository(testDB)
	reviewRepo := repository.NewReviewRepository(testDB)
	wishlistRepo := repository.NewWishlistRepository(testDB)
	notificationRepo := repository.NewNotificationRepository(testDB)
	alertRepo := repository.NewExpiryAlertRepository(testDB)
	auditRepo := repository.NewAuditLogRepository(testDB)

	expiryService := NewExpiryService(alertRepo, productRepo)
	auditService := NewAuditService(auditRepo)

	productService := NewProductService(
		productRepo, categoryRepo, reviewRepo, wishlistRepo,
		notificationRepo, expiryService, auditService, testDB,
	)

	admin := &model.User{Username: "admin", Email: "admin@example.com", PasswordHash: "hash", Role: model.RoleAdmin}
	testDB.Create(admin)

	category := &model.Category{Name: "Dairy & Eggs"}
	testDB.Create(category)

	return &productTestEnv{
		db:               testDB,
		productService:   productService,
		notificationRepo: notificationRepo,
		wishlistRepo:     wishlistRepo,
		alertRepo:        alertRepo,
		admin:            admin,
		category:         category,
	}
}

func TestProductService_CreateProduct(t *testing.T) {
	env := setupProductServiceTest(t)
	defer db.CleanupTestDB(env.db)

	product, err := env.productService.CreateProduct(env.admin.ID, ProductInput{
		Name:       "Greek Yogurt",
		Price:      2.80,
		Stock:      15,
		CategoryID: env.category.ID,
	})
	require.NoError(t, err)
	assert.NotZero(t, product.ID)

	_, err = env.productService.CreateProduct(env.admin.ID, ProductInput{
		Name: "Free Yogurt", Price: 0, Stock: 1, CategoryID: env.category.ID,
	})
	assert.ErrorIs(t, err, ErrInvalidPrice)

	_, err = env.productService.CreateProduct(env.admin.ID, ProductInput{
		Name: "Orphan", Price: 1, Stock: 1, CategoryID: 9999,
	})
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestProductService_OriginalPriceMustExceedPrice(t *testing.T) {
	env := setupProductServiceTest(t)
	defer db.CleanupTestDB(env.db)

	badOriginal := 2.00
	_, err := env.productService.CreateProduct(env.admin.ID, ProductInput{
		Name: "Fake Deal", Price: 3.00, OriginalPrice: &badOriginal, Stock: 5, CategoryID: env.category.ID,
	})
	assert.ErrorIs(t, err, ErrInvalidPrice)

	samePrice := 3.00
	_, err = env.productService.CreateProduct(env.admin.ID, ProductInput{
		Name: "No Deal", Price: 3.00, OriginalPrice: &samePrice, Stock: 5, CategoryID: env.category.ID,
	})
	assert.ErrorIs(t, err, ErrInvalidPrice)

	product, err := env.productService.CreateProduct(env.admin.ID, ProductInput{
		Name: "Plain", Price: 3.00, Stock: 5, CategoryID: env.category.ID,
	})
	require.NoError(t, err)

	_, err = env.productService.UpdateProduct(env.admin.ID, product.ID, ProductInput{
		Name: "Plain", Price: 3.00, OriginalPrice: &badOriginal, Stock: 5, CategoryID: env.category.ID,
	})
	assert.ErrorIs(t, err, ErrInvalidPrice)

	goodOriginal := 4.00
	updated, err := env.productService.UpdateProduct(env.admin.ID, product.ID, ProductInput{
		Name: "Plain", Price: 3.00, OriginalPrice: &goodOriginal, Stock: 5, CategoryID: env.category.ID,
	})
	require.NoError(t, err)
	assert.True(t, updated.HasDiscount())
}

func TestProductService_CreateProduct_ExpiryAlertWindow(t *testing.T) {
	env := setupProductServiceTest(t)
	defer db.CleanupTestDB(env.db)

	soon := time.Now().AddDate(0, 0, 30)
	product, err := env.productService.CreateProduct(env.admin.ID, ProductInput{
		Name: "Fresh Cheese", Price: 4, Stock: 5, CategoryID: env.category.ID, ExpiryDate: &soon,
	})
	require.NoError(t, err)

	alerts, err := env.alertRepo.FindByStatus(model.ExpiryAlertActive)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, product.ID, alerts[0].ProductID)

	// Outside the 90-day window: no alert
	far := time.Now().AddDate(0, 0, 120)
	_, err = env.productService.CreateProduct(env.admin.ID, ProductInput{
		Name: "Long Life Milk", Price: 1.5, Stock: 5, CategoryID: env.category.ID, ExpiryDate: &far,
	})
	require.NoError(t, err)

	alerts, _ = env.alertRepo.FindByStatus(model.ExpiryAlertActive)
	assert.Len(t, alerts, 1)
}

func TestProductService_UpdateProduct_DiscountNotifiesWishlists(t *testing.T) {
	env := setupProductServiceTest(t)
	defer db.CleanupTestDB(env.db)

	product, err := env.productService.CreateProduct(env.admin.ID, ProductInput{
		Name: "Butter", Price: 4.00, Stock: 10, CategoryID: env.category.ID,
	})
	require.NoError(t, err)

	fan1 := &model.User{Username: "fan1", Email: "fan1@example.com", PasswordHash: "hash", Role: model.RoleUser}
	fan2 := &model.User{Username: "fan2", Email: "fan2@example.com", PasswordHash: "hash", Role: model.RoleUser}
	env.db.Create(fan1)
	env.db.Create(fan2)
	env.wishlistRepo.Create(model.NewWishlistItem(fan1.ID, product.ID))
	env.wishlistRepo.Create(model.NewWishlistItem(fan2.ID, product.ID))

	original := 4.00
	_, err = env.productService.UpdateProduct(env.admin.ID, product.ID, ProductInput{
		Name: "Butter", Price: 3.00, OriginalPrice: &original, Stock: 10, CategoryID: env.category.ID,
	})
	require.NoError(t, err)

	for _, fan := range []*model.User{fan1, fan2} {
		notifications, err := env.notificationRepo.FindByUser(fan.ID, 0)
		require.NoError(t, err)
		require.Len(t, notifications, 1)
		assert.Equal(t, "Good news! Butter is now on sale with 25% off.", notifications[0].Message)
	}

	// A second update while already discounted does not notify again
	_, err = env.productService.UpdateProduct(env.admin.ID, product.ID, ProductInput{
		Name: "Butter", Price: 2.80, OriginalPrice: &original, Stock: 10, CategoryID: env.category.ID,
	})
	require.NoError(t, err)

	notifications, _ := env.notificationRepo.FindByUser(fan1.ID, 0)
	assert.Len(t, notifications, 1)
}

func TestProductService_DeleteProduct_Cascade(t *testing.T) {
	env := setupProductServiceTest(t)
	defer db.CleanupTestDB(env.db)

	soon := time.Now().AddDate(0, 0, 10)
	product, err := env.productService.CreateProduct(env.admin.ID, ProductInput{
		Name: "Cream", Price: 2.00, Stock: 10, CategoryID: env.category.ID, ExpiryDate: &soon,
	})
	require.NoError(t, err)

	user := &model.User{Username: "buyer", Email: "buyer@example.com", PasswordHash: "hash", Role: model.RoleUser}
	env.db.Create(user)

	env.db.Create(model.NewCartItem(user.ID, product.ID, 1))
	env.db.Create(model.NewWishlistItem(user.ID, product.ID))

	// Delivered order and review survive the delete
	order := model.NewOrder(user.ID, 2.00, "1 Test Street")
	order.Status = model.OrderStatusDelivered
	order.OrderItems = []model.OrderItem{model.NewOrderItem(product.ID, 1, 2.00)}
	env.db.Create(order)
	review, _ := model.NewReview(user.ID, product.ID, 5, "Lovely")
	env.db.Create(review)

	require.NoError(t, env.productService.DeleteProduct(env.admin.ID, product.ID))

	var count int64
	env.db.Model(&model.CartItem{}).Where("product_id = ?", product.ID).Count(&count)
	assert.Zero(t, count)
	env.db.Model(&model.WishlistItem{}).Where("product_id = ?", product.ID).Count(&count)
	assert.Zero(t, count)
	env.db.Model(&model.ExpiryAlert{}).Where("product_id = ?", product.ID).Count(&count)
	assert.Zero(t, count)

	env.db.Model(&model.Review{}).Where("product_id = ?", product.ID).Count(&count)
	assert.EqualValues(t, 1, count)
	env.db.Model(&model.OrderItem{}).Where("product_id = ?", product.ID).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestProductService_GetHomeFeed(t *testing.T) {
	env := setupProductServiceTest(t)
	defer db.CleanupTestDB(env.db)

	pharmacyCategory := &model.Category{Name: "Pharmacy", IsPharmacy: true}
	env.db.Create(pharmacyCategory)

	original := 5.00
	env.productService.CreateProduct(env.admin.ID, ProductInput{
		Name: "Discounted Cheese", Price: 3.50, OriginalPrice: &original, Stock: 5, CategoryID: env.category.ID,
	})
	env.productService.CreateProduct(env.admin.ID, ProductInput{
		Name: "Plain Milk", Price: 1.80, Stock: 5, CategoryID: env.category.ID,
	})
	env.productService.CreateProduct(env.admin.ID, ProductInput{
		Name: "Paracetamol 500mg", Price: 2.40, Stock: 20, CategoryID: pharmacyCategory.ID,
	})

	feed, err := env.productService.GetHomeFeed()
	require.NoError(t, err)
	require.Len(t, feed.Discounted, 1)
	assert.Equal(t, "Discounted Cheese", feed.Discounted[0].Name)
	assert.Len(t, feed.Newest, 3)
	assert.Len(t, feed.Grocery, 2)
	require.Len(t, feed.Pharmacy, 1)
	assert.Equal(t, "Paracetamol 500mg", feed.Pharmacy[0].Name)
	assert.NotEmpty(t, feed.Categories)
}

func TestProductService_GetProductDetail(t *testing.T) {
	env := setupProductServiceTest(t)
	defer db.CleanupTestDB(env.db)

	product, err := env.productService.CreateProduct(env.admin.ID, ProductInput{
		Name: "Kefir", Price: 2.50, Stock: 5, CategoryID: env.category.ID,
	})
	require.NoError(t, err)
	env.productService.CreateProduct(env.admin.ID, ProductInput{
		Name: "Related Yogurt", Price: 2.00, Stock: 5, CategoryID: env.category.ID,
	})

	user := &model.User{Username: "rater", Email: "rater@example.com", PasswordHash: "hash", Role: model.RoleUser}
	env.db.Create(user)
	review, _ := model.NewReview(user.ID, product.ID, 4, "Good")
	env.db.Create(review)

	detail, err := env.productService.GetProductDetail(product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kefir", detail.Product.Name)
	assert.InDelta(t, 4.0, detail.AverageRating, 0.001)
	assert.EqualValues(t, 1, detail.ReviewCount)
	require.Len(t, detail.Related, 1)
	assert.Equal(t, "Related Yogurt", detail.Related[0].Name)

	_, err = env.productService.GetProductDetail(9999)
	assert.ErrorIs(t, err, ErrProductNotFound)
}
