package service

import (
	"context"
	"testing"
	"time"

	"github.com/smartcart/smartcart-backend/internal/app/model"
	"github.com/smartcart/smartcart-backend/internal/app/repository"
	"github.com/smartcart/smartcart-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubGeocoder struct {
	lat, lng float64
	err      error
}

func (g *stubGeocoder) Geocode(_ context.Context, address string) (*float64, *float64, error) {
	if g.err != nil {
		return nil, nil, g.err
	}
	return &g.lat, &g.lng, nil
}

type stubSMSSender struct {
	sent []string
	err  error
}

func (s *stubSMSSender) Send(_ context.Context, toNumber, body string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.sent = append(s.sent, body)
	return "SM123", nil
}

type orderTestEnv struct {
	db               *gorm.DB
	orderService     OrderService
	cartService      CartService
	couponRepo       repository.CouponRepository
	notificationRepo repository.NotificationRepository
	geocoder         *stubGeocoder
	sms              *stubSMSSender
	user             *model.User
	category         *model.Category
}

func setupOrderServiceTest(t *testing.T) *orderTestEnv {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	orderRepo := repository.NewOrderRepository(testDB)
	cartRepo := repository.NewCartRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	userRepo := repository.NewUserRepository(testDB)
	notificationRepo := repository.NewNotificationRepository(testDB)
	couponRepo := repository.NewCouponRepository(testDB)
	auditRepo := repository.NewAuditLogRepository(testDB)

	auditService := NewAuditService(auditRepo)
	couponService := NewCouponService(couponRepo, auditService)
	cartService := NewCartService(cartRepo, productRepo)

	geocoder := &stubGeocoder{lat: 52.37, lng: 4.89}
	sms := &stubSMSSender{}

	orderService := NewOrderService(
		orderRepo, cartRepo, productRepo, userRepo, notificationRepo,
		couponService, cartService, auditService, geocoder, sms, testDB,
	)

	user := &model.User{
		Username:     "shopper",
		Email:        "shopper@example.com",
		PasswordHash: "hash",
		Phone:        "+15550001111",
		Role:         model.RoleUser,
	}
	testDB.Create(user)

	category := &model.Category{Name: "Groceries"}
	testDB.Create(category)

	return &orderTestEnv{
		db:               testDB,
		orderService:     orderService,
		cartService:      cartService,
		couponRepo:       couponRepo,
		notificationRepo: notificationRepo,
		geocoder:         geocoder,
		sms:              sms,
		user:             user,
		category:         category,
	}
}

func (env *orderTestEnv) createProduct(t *testing.T, name string, price float64, stock int) *model.Product {
	product := &model.Product{Name: name, Price: price, CategoryID: env.category.ID, Stock: stock}
	require.NoError(t, env.db.Create(product).Error)
	return product
}

func TestCheckout_TotalsAndFrozenPrices(t *testing.T) {
	env := setupOrderServiceTest(t)
	defer db.CleanupTestDB(env.db)

	apples := env.createProduct(t, "Apples 1kg", 5.00, 10)
	bread := env.createProduct(t, "Bread", 2.50, 10)

	_, err := env.cartService.AddItem(env.user.ID, apples.ID, 3) // 15.00
	require.NoError(t, err)
	_, err = env.cartService.AddItem(env.user.ID, bread.ID, 4) // 10.00
	require.NoError(t, err)

	result, err := env.orderService.Checkout(context.Background(), env.user.ID, "1 Canal Street", "")
	require.NoError(t, err)

	assert.InDelta(t, 25.0, result.Subtotal, 0.001)
	assert.InDelta(t, 25.0, result.Order.TotalAmount, 0.001)
	assert.False(t, result.CouponApplied)
	assert.Equal(t, model.OrderStatusPending, result.Order.Status)

	// Prices are frozen on the order items
	require.Len(t, result.Order.OrderItems, 2)
	var applesPrice float64
	for _, item := range result.Order.OrderItems {
		if item.ProductID == apples.ID {
			applesPrice = item.Price
		}
	}
	assert.Equal(t, 5.00, applesPrice)

	// Later price changes never touch the order
	env.db.Model(&model.Product{}).Where("id = ?", apples.ID).Update("price", 9.99)
	var item model.OrderItem
	require.NoError(t, env.db.Where("order_id = ? AND product_id = ?", result.Order.ID, apples.ID).First(&item).Error)
	assert.Equal(t, 5.00, item.Price)
}

func TestCheckout_DecrementsStockAndClearsCart(t *testing.T) {
	env := setupOrderServiceTest(t)
	defer db.CleanupTestDB(env.db)

	milk := env.createProduct(t, "Milk", 1.80, 8)
	_, err := env.cartService.AddItem(env.user.ID, milk.ID, 3)
	require.NoError(t, err)

	_, err = env.orderService.Checkout(context.Background(), env.user.ID, "1 Canal Street", "")
	require.NoError(t, err)

	var product model.Product
	require.NoError(t, env.db.First(&product, milk.ID).Error)
	assert.Equal(t, 5, product.Stock)

	cart, err := env.cartService.GetCart(env.user.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestCheckout_StockBoundary(t *testing.T) {
	env := setupOrderServiceTest(t)
	defer db.CleanupTestDB(env.db)

	eggs := env.createProduct(t, "Eggs", 3.00, 5)

	// Exactly the available stock succeeds
	_, err := env.cartService.AddItem(env.user.ID, eggs.ID, 5)
	require.NoError(t, err)

	_, err = env.orderService.Checkout(context.Background(), env.user.ID, "1 Canal Street", "")
	require.NoError(t, err)

	var product model.Product
	env.db.First(&product, eggs.ID)
	assert.Equal(t, 0, product.Stock)

	// Out-of-stock product cannot even enter the cart
	_, err = env.cartService.AddItem(env.user.ID, eggs.ID, 1)
	assert.ErrorIs(t, err, ErrInsufficientStock)
}

func TestCheckout_InsufficientStockRollsBack(t *testing.T) {
	env := setupOrderServiceTest(t)
	defer db.CleanupTestDB(env.db)

	cheese := env.createProduct(t, "Cheese", 4.00, 6)
	_, err := env.cartService.AddItem(env.user.ID, cheese.ID, 6)
	require.NoError(t, err)

	// Stock shrinks after the item entered the cart
	env.db.Model(&model.Product{}).Where("id = ?", cheese.ID).Update("stock", 2)

	_, err = env.orderService.Checkout(context.Background(), env.user.ID, "1 Canal Street", "")
	assert.ErrorIs(t, err, ErrInsufficientStock)

	// Nothing was committed
	var product model.Product
	env.db.First(&product, cheese.ID)
	assert.Equal(t, 2, product.Stock)

	var orderCount int64
	env.db.Model(&model.Order{}).Count(&orderCount)
	assert.Zero(t, orderCount)

	cart, _ := env.cartService.GetCart(env.user.ID)
	assert.Len(t, cart.Items, 1)
}

func TestCheckout_EmptyCart(t *testing.T) {
	env := setupOrderServiceTest(t)
	defer db.CleanupTestDB(env.db)

	_, err := env.orderService.Checkout(context.Background(), env.user.ID, "1 Canal Street", "")
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCheckout_MissingAddress(t *testing.T) {
	env := setupOrderServiceTest(t)
	defer db.CleanupTestDB(env.db)

	_, err := env.orderService.Checkout(context.Background(), env.user.ID, "", "")
	assert.ErrorIs(t, err, ErrMissingAddress)
}

func TestCheckout_WithCoupon(t *testing.T) {
	env := setupOrderServiceTest(t)
	defer db.CleanupTestDB(env.db)

	now := time.Now()
	require.NoError(t, env.couponRepo.Create(&model.Coupon{
		Code:               "SAVE10",
		DiscountPercentage: 10,
		ValidFrom:          now.Add(-time.Hour),
		ValidUntil:         now.Add(time.Hour),
		IsActive:           true,
		MinPurchase:        20,
	}))

	rice := env.createProduct(t, "Rice 5kg", 10.00, 10)
	_, err := env.cartService.AddItem(env.user.ID, rice.ID, 3) // 30.00
	require.NoError(t, err)

	result, err := env.orderService.Checkout(context.Background(), env.user.ID, "1 Canal Street", "save10")
	require.NoError(t, err)

	assert.True(t, result.CouponApplied)
	assert.InDelta(t, 3.0, result.Discount, 0.001)
	assert.InDelta(t, 27.0, result.Order.TotalAmount, 0.001)
}

func TestCheckout_InvalidCouponDoesNotBlock(t *testing.T) {
	env := setupOrderServiceTest(t)
	defer db.CleanupTestDB(env.db)

	tea := env.createProduct(t, "Green Tea", 4.00, 10)
	_, err := env.cartService.AddItem(env.user.ID, tea.ID, 2)
	require.NoError(t, err)

	result, err := env.orderService.Checkout(context.Background(), env.user.ID, "1 Canal Street", "NOSUCHCODE")
	require.NoError(t, err)

	assert.False(t, result.CouponApplied)
	assert.NotEmpty(t, result.CouponMessage)
	assert.InDelta(t, 8.0, result.Order.TotalAmount, 0.001)
}

func TestCheckout_CouponBelowMinPurchase(t *testing.T) {
	env := setupOrderServiceTest(t)
	defer db.CleanupTestDB(env.db)

	now := time.Now()
	require.NoError(t, env.couponRepo.Create(&model.Coupon{
		Code:               "BIG50",
		DiscountPercentage: 50,
		ValidFrom:          now.Add(-time.Hour),
		ValidUntil:         now.Add(time.Hour),
		IsActive:           true,
		MinPurchase:        100,
	}))

	soap := env.createProduct(t, "Soap", 2.00, 10)
	_, err := env.cartService.AddItem(env.user.ID, soap.ID, 1)
	require.NoError(t, err)

	result, err := env.orderService.Checkout(context.Background(), env.user.ID, "1 Canal Street", "BIG50")
	require.NoError(t, err)

	assert.False(t, result.CouponApplied)
	assert.InDelta(t, 2.0, result.Order.TotalAmount, 0.001)
}

func TestCheckout_SideEffects(t *testing.T) {
	env := setupOrderServiceTest(t)
	defer db.CleanupTestDB(env.db)

	jam := env.createProduct(t, "Jam", 3.00, 5)
	_, err := env.cartService.AddItem(env.user.ID, jam.ID, 1)
	require.NoError(t, err)

	result, err := env.orderService.Checkout(context.Background(), env.user.ID, "1 Canal Street", "")
	require.NoError(t, err)

	assert.True(t, result.Geocode.Applied)
	require.NotNil(t, result.Order.DeliveryLatitude)
	assert.InDelta(t, 52.37, *result.Order.DeliveryLatitude, 0.001)

	assert.True(t, result.SMS.Applied)
	assert.Len(t, env.sms.sent, 1)

	// Order confirmation notification exists
	notifications, err := env.notificationRepo.FindByUser(env.user.ID, 0)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Contains(t, notifications[0].Message, "has been confirmed")
}

func TestCheckout_GeocodeFailureDoesNotFailOrder(t *testing.T) {
	env := setupOrderServiceTest(t)
	defer db.CleanupTestDB(env.db)

	env.geocoder.err = assert.AnError
	env.sms.err = assert.AnError

	jam := env.createProduct(t, "Jam", 3.00, 5)
	_, err := env.cartService.AddItem(env.user.ID, jam.ID, 1)
	require.NoError(t, err)

	result, err := env.orderService.Checkout(context.Background(), env.user.ID, "1 Canal Street", "")
	require.NoError(t, err)

	assert.False(t, result.Geocode.Applied)
	assert.NotEmpty(t, result.Geocode.Reason)
	assert.False(t, result.SMS.Applied)
	assert.Nil(t, result.Order.DeliveryLatitude)
}

func TestUpdateOrderStatus(t *testing.T) {
	env := setupOrderServiceTest(t)
	defer db.CleanupTestDB(env.db)

	jam := env.createProduct(t, "Jam", 3.00, 5)
	_, err := env.cartService.AddItem(env.user.ID, jam.ID, 1)
	require.NoError(t, err)
	result, err := env.orderService.Checkout(context.Background(), env.user.ID, "1 Canal Street", "")
	require.NoError(t, err)

	admin := &model.User{Username: "admin", Email: "admin@example.com", PasswordHash: "hash", Role: model.RoleAdmin}
	env.db.Create(admin)

	order, err := env.orderService.UpdateOrderStatus(context.Background(), admin.ID, result.Order.ID, model.OrderStatusOutForDelivery)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusOutForDelivery, order.Status)

	notifications, _ := env.notificationRepo.FindByUser(env.user.ID, 0)
	found := false
	for _, n := range notifications {
		if n.Message == "Your order is out for delivery!" {
			found = true
		}
	}
	assert.True(t, found)

	_, err = env.orderService.UpdateOrderStatus(context.Background(), admin.ID, result.Order.ID, "shipped")
	assert.ErrorIs(t, err, ErrInvalidOrderStatus)
}

func TestGetOrder_Ownership(t *testing.T) {
	env := setupOrderServiceTest(t)
	defer db.CleanupTestDB(env.db)

	jam := env.createProduct(t, "Jam", 3.00, 5)
	env.cartService.AddItem(env.user.ID, jam.ID, 1)
	result, err := env.orderService.Checkout(context.Background(), env.user.ID, "1 Canal Street", "")
	require.NoError(t, err)

	other := &model.User{Username: "other", Email: "other@example.com", PasswordHash: "hash", Role: model.RoleUser}
	env.db.Create(other)

	_, err = env.orderService.GetOrder(other.ID, false, result.Order.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	// Admin can read any order
	order, err := env.orderService.GetOrder(other.ID, true, result.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, result.Order.ID, order.ID)
}

func TestReorder_CapsQuantitiesAndSkipsSoldOut(t *testing.T) {
	env := setupOrderServiceTest(t)
	defer db.CleanupTestDB(env.db)

	pasta := env.createProduct(t, "Pasta", 1.50, 10)
	sauce := env.createProduct(t, "Tomato Sauce", 2.00, 10)

	env.cartService.AddItem(env.user.ID, pasta.ID, 6)
	env.cartService.AddItem(env.user.ID, sauce.ID, 2)
	result, err := env.orderService.Checkout(context.Background(), env.user.ID, "1 Canal Street", "")
	require.NoError(t, err)

	// Stock changed since: pasta partially restocked, sauce sold out
	env.db.Model(&model.Product{}).Where("id = ?", pasta.ID).Update("stock", 2)
	env.db.Model(&model.Product{}).Where("id = ?", sauce.ID).Update("stock", 0)

	reorder, err := env.orderService.Reorder(env.user.ID, result.Order.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, reorder.Added)
	assert.Equal(t, []string{"Tomato Sauce"}, reorder.Skipped)
	require.Len(t, reorder.Cart.Items, 1)
	assert.Equal(t, pasta.ID, reorder.Cart.Items[0].ProductID)
	assert.Equal(t, 2, reorder.Cart.Items[0].Quantity)
}

func TestReorder_ReplacesExistingCart(t *testing.T) {
	env := setupOrderServiceTest(t)
	defer db.CleanupTestDB(env.db)

	pasta := env.createProduct(t, "Pasta", 1.50, 20)
	env.cartService.AddItem(env.user.ID, pasta.ID, 2)
	result, err := env.orderService.Checkout(context.Background(), env.user.ID, "1 Canal Street", "")
	require.NoError(t, err)

	// Unrelated items in the cart are dropped by reorder
	soap := env.createProduct(t, "Soap", 2.00, 5)
	env.cartService.AddItem(env.user.ID, soap.ID, 1)

	reorder, err := env.orderService.Reorder(env.user.ID, result.Order.ID)
	require.NoError(t, err)

	require.Len(t, reorder.Cart.Items, 1)
	assert.Equal(t, pasta.ID, reorder.Cart.Items[0].ProductID)
}

func TestListDeliveryMap(t *testing.T) {
	env := setupOrderServiceTest(t)
	defer db.CleanupTestDB(env.db)

	rice := env.createProduct(t, "Rice", 3.00, 20)

	// Geocoded order shows up on the map.
	_, err := env.cartService.AddItem(env.user.ID, rice.ID, 2)
	require.NoError(t, err)
	first, err := env.orderService.Checkout(context.Background(), env.user.ID, "1 Canal Street", "")
	require.NoError(t, err)

	// An order whose geocoding failed has no coordinates and is skipped.
	env.geocoder.err = assert.AnError
	_, err = env.cartService.AddItem(env.user.ID, rice.ID, 1)
	require.NoError(t, err)
	_, err = env.orderService.Checkout(context.Background(), env.user.ID, "2 Harbor Road", "")
	require.NoError(t, err)

	points, err := env.orderService.ListDeliveryMap()
	require.NoError(t, err)
	require.Len(t, points, 1)

	assert.Equal(t, first.Order.ID, points[0].OrderID)
	assert.Equal(t, "shopper", points[0].Username)
	assert.InDelta(t, 52.37, points[0].Latitude, 0.001)
	assert.InDelta(t, 4.89, points[0].Longitude, 0.001)

	// Delivered orders drop off the map.
	_, err = env.orderService.UpdateOrderStatus(context.Background(), 1, first.Order.ID, model.OrderStatusDelivered)
	require.NoError(t, err)

	points, err = env.orderService.ListDeliveryMap()
	require.NoError(t, err)
	assert.Empty(t, points)
}
