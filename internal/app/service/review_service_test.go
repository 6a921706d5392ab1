package service

import (
	"testing"

	"github.com/smartcart/smartcart-backend/internal/app/model"
	"github.com/smartcart/smartcart-backend/internal/app/repository"
	"github.com/smartcart/smartcart-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupReviewServiceTest(t *testing.T) (*gorm.DB, ReviewService) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	svc := NewReviewService(
		repository.NewReviewRepository(testDB),
		repository.NewProductRepository(testDB),
	)
	return testDB, svc
}

func seedDeliveredOrder(t *testing.T, testDB *gorm.DB, userID, productID uint) {
	t.Helper()
	order := model.NewOrder(userID, 4.50, "12 Main St")
	order.Status = model.OrderStatusDelivered
	order.OrderItems = []model.OrderItem{model.NewOrderItem(productID, 1, 4.50)}
	require.NoError(t, testDB.Create(order).Error)
}

func TestReviewService_Submit_RequiresDeliveredPurchase(t *testing.T) {
	testDB, svc := setupReviewServiceTest(t)
	defer db.CleanupTestDB(testDB)

	user := &model.User{Username: "frank", Email: "frank@example.com", PasswordHash: "x"}
	require.NoError(t, testDB.Create(user).Error)
	category := &model.Category{Name: "Dairy"}
	require.NoError(t, testDB.Create(category).Error)
	product := &model.Product{Name: "Yogurt", Price: 4.50, Stock: 5, CategoryID: category.ID}
	require.NoError(t, testDB.Create(product).Error)

	_, _, err := svc.Submit(user.ID, false, product.ID, 5, "Great")
	assert.ErrorIs(t, err, ErrPurchaseRequired)

	seedDeliveredOrder(t, testDB, user.ID, product.ID)

	review, created, err := svc.Submit(user.ID, false, product.ID, 5, "Great")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 5, review.Rating)
}

func TestReviewService_Submit_UpsertsExistingReview(t *testing.T) {
	testDB, svc := setupReviewServiceTest(t)
	defer db.CleanupTestDB(testDB)

	user := &model.User{Username: "gina", Email: "gina@example.com", PasswordHash: "x"}
	require.NoError(t, testDB.Create(user).Error)
	category := &model.Category{Name: "Bakery"}
	require.NoError(t, testDB.Create(category).Error)
	product := &model.Product{Name: "Bagel", Price: 1.20, Stock: 10, CategoryID: category.ID}
	require.NoError(t, testDB.Create(product).Error)
	seedDeliveredOrder(t, testDB, user.ID, product.ID)

	first, created, err := svc.Submit(user.ID, false, product.ID, 4, "Good")
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := svc.Submit(user.ID, false, product.ID, 2, "Went stale fast")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 2, second.Rating)
	assert.Equal(t, "Went stale fast", second.Comment)

	var count int64
	require.NoError(t, testDB.Model(&model.Review{}).Where("user_id = ? AND product_id = ?", user.ID, product.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestReviewService_Submit_AdminBypassesPurchaseCheck(t *testing.T) {
	testDB, svc := setupReviewServiceTest(t)
	defer db.CleanupTestDB(testDB)

	admin := &model.User{Username: "admin", Email: "admin@example.com", PasswordHash: "x", Role: model.RoleAdmin}
	require.NoError(t, testDB.Create(admin).Error)
	category := &model.Category{Name: "Produce"}
	require.NoError(t, testDB.Create(category).Error)
	product := &model.Product{Name: "Kale", Price: 2.00, Stock: 3, CategoryID: category.ID}
	require.NoError(t, testDB.Create(product).Error)

	_, created, err := svc.Submit(admin.ID, true, product.ID, 3, "Fine")
	require.NoError(t, err)
	assert.True(t, created)
}

func TestReviewService_Submit_InvalidRating(t *testing.T) {
	testDB, svc := setupReviewServiceTest(t)
	defer db.CleanupTestDB(testDB)

	user := &model.User{Username: "hank", Email: "hank@example.com", PasswordHash: "x"}
	require.NoError(t, testDB.Create(user).Error)
	category := &model.Category{Name: "Snacks"}
	require.NoError(t, testDB.Create(category).Error)
	product := &model.Product{Name: "Chips", Price: 3.00, Stock: 10, CategoryID: category.ID}
	require.NoError(t, testDB.Create(product).Error)
	seedDeliveredOrder(t, testDB, user.ID, product.ID)

	_, _, err := svc.Submit(user.ID, false, product.ID, 0, "")
	assert.ErrorIs(t, err, model.ErrInvalidRating)

	_, _, err = svc.Submit(user.ID, false, product.ID, 6, "")
	assert.ErrorIs(t, err, model.ErrInvalidRating)
}

func TestReviewService_Delete_Ownership(t *testing.T) {
	testDB, svc := setupReviewServiceTest(t)
	defer db.CleanupTestDB(testDB)

	owner := &model.User{Username: "iris", Email: "iris@example.com", PasswordHash: "x"}
	other := &model.User{Username: "jack", Email: "jack@example.com", PasswordHash: "x"}
	require.NoError(t, testDB.Create(owner).Error)
	require.NoError(t, testDB.Create(other).Error)
	category := &model.Category{Name: "Frozen"}
	require.NoError(t, testDB.Create(category).Error)
	product := &model.Product{Name: "Peas", Price: 1.80, Stock: 10, CategoryID: category.ID}
	require.NoError(t, testDB.Create(product).Error)
	seedDeliveredOrder(t, testDB, owner.ID, product.ID)

	review, _, err := svc.Submit(owner.ID, false, product.ID, 4, "Good")
	require.NoError(t, err)

	err = svc.Delete(other.ID, false, review.ID)
	assert.Error(t, err)

	err = svc.Delete(owner.ID, false, review.ID)
	assert.NoError(t, err)
}
