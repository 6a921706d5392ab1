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

func setupWishlistServiceTest(t *testing.T) (*gorm.DB, WishlistService, CartService) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	productRepo := repository.NewProductRepository(testDB)
	cartService := NewCartService(repository.NewCartRepository(testDB), productRepo)
	svc := NewWishlistService(repository.NewWishlistRepository(testDB), productRepo, cartService)
	return testDB, svc, cartService
}

func seedWishlistFixtures(t *testing.T, testDB *gorm.DB) (*model.User, *model.Product) {
	t.Helper()
	user := &model.User{Username: "kate", Email: "kate@example.com", PasswordHash: "x"}
	require.NoError(t, testDB.Create(user).Error)
	category := &model.Category{Name: "Produce"}
	require.NoError(t, testDB.Create(category).Error)
	product := &model.Product{Name: "Avocado", Price: 2.50, Stock: 6, CategoryID: category.ID}
	require.NoError(t, testDB.Create(product).Error)
	return user, product
}

func TestWishlistService_AddItem_Idempotent(t *testing.T) {
	testDB, svc, _ := setupWishlistServiceTest(t)
	defer db.CleanupTestDB(testDB)

	user, product := seedWishlistFixtures(t, testDB)

	item, added, err := svc.AddItem(user.ID, product.ID)
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, product.ID, item.ProductID)

	again, added, err := svc.AddItem(user.ID, product.ID)
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, item.ID, again.ID)

	items, err := svc.GetWishlist(user.ID)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestWishlistService_AddItem_UnknownProduct(t *testing.T) {
	testDB, svc, _ := setupWishlistServiceTest(t)
	defer db.CleanupTestDB(testDB)

	user, _ := seedWishlistFixtures(t, testDB)

	_, _, err := svc.AddItem(user.ID, 9999)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestWishlistService_RemoveItem(t *testing.T) {
	testDB, svc, _ := setupWishlistServiceTest(t)
	defer db.CleanupTestDB(testDB)

	user, product := seedWishlistFixtures(t, testDB)

	_, _, err := svc.AddItem(user.ID, product.ID)
	require.NoError(t, err)

	require.NoError(t, svc.RemoveItem(user.ID, product.ID))

	err = svc.RemoveItem(user.ID, product.ID)
	assert.ErrorIs(t, err, ErrWishlistItemNotFound)
}

func TestWishlistService_MoveToCart(t *testing.T) {
	testDB, svc, cartService := setupWishlistServiceTest(t)
	defer db.CleanupTestDB(testDB)

	user, product := seedWishlistFixtures(t, testDB)

	_, _, err := svc.AddItem(user.ID, product.ID)
	require.NoError(t, err)

	cartItem, err := svc.MoveToCart(user.ID, product.ID)
	require.NoError(t, err)
	assert.Equal(t, product.ID, cartItem.ProductID)
	assert.Equal(t, 1, cartItem.Quantity)

	// Wishlist entry is gone, cart has the line
	items, err := svc.GetWishlist(user.ID)
	require.NoError(t, err)
	assert.Empty(t, items)

	cart, err := cartService.GetCart(user.ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, product.ID, cart.Items[0].ProductID)
}

func TestWishlistService_MoveToCart_SoldOut(t *testing.T) {
	testDB, svc, _ := setupWishlistServiceTest(t)
	defer db.CleanupTestDB(testDB)

	user, product := seedWishlistFixtures(t, testDB)
	require.NoError(t, testDB.Model(&model.Product{}).Where("id = ?", product.ID).Update("stock", 0).Error)

	_, _, err := svc.AddItem(user.ID, product.ID)
	require.NoError(t, err)

	_, err = svc.MoveToCart(user.ID, product.ID)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	// Item stays on the wishlist when the move fails
	items, err := svc.GetWishlist(user.ID)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}
