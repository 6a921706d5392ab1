package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/smartcart/smartcart-backend/internal/app/model"
	"github.com/smartcart/smartcart-backend/internal/app/repository"
	"github.com/smartcart/smartcart-backend/internal/app/service"
	"github.com/smartcart/smartcart-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type noopGeocoder struct{}

func (noopGeocoder) Geocode(ctx context.Context, address string) (*float64, *float64, error) {
	return nil, nil, nil
}

type noopSMSSender struct{}

func (noopSMSSender) Send(ctx context.Context, toNumber, body string) (string, error) {
	return "msg-1", nil
}

func setupOrderControllerTest(t *testing.T) (*OrderController, *gin.Engine, *gorm.DB, *model.User, *model.Product) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	orderRepo := repository.NewOrderRepository(testDB)
	cartRepo := repository.NewCartRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	userRepo := repository.NewUserRepository(testDB)
	notificationRepo := repository.NewNotificationRepository(testDB)
	auditService := service.NewAuditService(repository.NewAuditLogRepository(testDB))
	couponService := service.NewCouponService(repository.NewCouponRepository(testDB), auditService)
	cartService := service.NewCartService(cartRepo, productRepo)

	orderService := service.NewOrderService(
		orderRepo, cartRepo, productRepo, userRepo, notificationRepo,
		couponService, cartService, auditService,
		noopGeocoder{}, noopSMSSender{}, testDB,
	)

	controller := NewOrderController(orderService, service.NewInvoiceService())

	user := &model.User{
		Username:     "buyer",
		Email:        "buyer@example.com",
		PasswordHash: "hash",
		Role:         model.RoleUser,
	}
	require.NoError(t, testDB.Create(user).Error)

	category := &model.Category{Name: "Dairy"}
	require.NoError(t, testDB.Create(category).Error)

	product := &model.Product{
		Name:       "Milk",
		Price:      3.50,
		Stock:      8,
		CategoryID: category.ID,
	}
	require.NoError(t, testDB.Create(product).Error)

	gin.SetMode(gin.TestMode)
	router := gin.New()

	return controller, router, testDB, user, product
}

func TestOrderController_Checkout_Success(t *testing.T) {
	controller, router, testDB, user, product := setupOrderControllerTest(t)

	cartRepo := repository.NewCartRepository(testDB)
	require.NoError(t, cartRepo.Create(&model.CartItem{UserID: user.ID, ProductID: product.ID, Quantity: 2}))

	router.POST("/orders/checkout", func(c *gin.Context) {
		setUserIDInContext(c, user.ID)
		controller.Checkout(c)
	})

	jsonBody, _ := json.Marshal(CheckoutRequest{DeliveryAddress: "12 Main St"})
	req := httptest.NewRequest(http.MethodPost, "/orders/checkout", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	order := response["order"].(map[string]interface{})
	assert.InDelta(t, 7.00, order["total_amount"].(float64), 0.001)
	assert.Equal(t, string(model.OrderStatusPending), order["status"])
}

func TestOrderController_Checkout_EmptyCart(t *testing.T) {
	controller, router, _, user, _ := setupOrderControllerTest(t)

	router.POST("/orders/checkout", func(c *gin.Context) {
		setUserIDInContext(c, user.ID)
		controller.Checkout(c)
	})

	jsonBody, _ := json.Marshal(CheckoutRequest{DeliveryAddress: "12 Main St"})
	req := httptest.NewRequest(http.MethodPost, "/orders/checkout", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, "CART_EMPTY", response["error"])
}

func TestOrderController_Checkout_MissingAddress(t *testing.T) {
	controller, router, _, user, _ := setupOrderControllerTest(t)

	router.POST("/orders/checkout", func(c *gin.Context) {
		setUserIDInContext(c, user.ID)
		controller.Checkout(c)
	})

	jsonBody, _ := json.Marshal(map[string]interface{}{})
	req := httptest.NewRequest(http.MethodPost, "/orders/checkout", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrderController_GetMyOrders(t *testing.T) {
	controller, router, testDB, user, _ := setupOrderControllerTest(t)

	order := model.NewOrder(user.ID, 10.50, "12 Main St")
	require.NoError(t, testDB.Create(order).Error)

	router.GET("/orders", func(c *gin.Context) {
		setUserIDInContext(c, user.ID)
		controller.GetMyOrders(c)
	})

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	orders := response["orders"].([]interface{})
	assert.Len(t, orders, 1)
}

func TestOrderController_GetOrder_OwnershipEnforced(t *testing.T) {
	controller, router, testDB, user, _ := setupOrderControllerTest(t)

	other := &model.User{
		Username:     "other",
		Email:        "other@example.com",
		PasswordHash: "hash",
		Role:         model.RoleUser,
	}
	require.NoError(t, testDB.Create(other).Error)

	order := model.NewOrder(other.ID, 5.00, "34 Oak Ave")
	require.NoError(t, testDB.Create(order).Error)

	router.GET("/orders/:id", func(c *gin.Context) {
		setUserIDInContext(c, user.ID)
		c.Set("user_role", string(model.RoleUser))
		controller.GetOrder(c)
	})

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/orders/%d", order.ID), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, "ORDER_NOT_FOUND", response["error"])
}

func TestOrderController_UpdateStatus(t *testing.T) {
	controller, router, testDB, user, _ := setupOrderControllerTest(t)

	admin := &model.User{
		Username:     "admin",
		Email:        "admin@example.com",
		PasswordHash: "hash",
		Role:         model.RoleAdmin,
	}
	require.NoError(t, testDB.Create(admin).Error)

	order := model.NewOrder(user.ID, 5.00, "12 Main St")
	require.NoError(t, testDB.Create(order).Error)

	router.PUT("/admin/orders/:id/status", func(c *gin.Context) {
		setUserIDInContext(c, admin.ID)
		c.Set("user_role", string(model.RoleAdmin))
		controller.UpdateStatus(c)
	})

	jsonBody, _ := json.Marshal(UpdateOrderStatusRequest{Status: string(model.OrderStatusOutForDelivery)})
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/admin/orders/%d/status", order.ID), bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	updated := response["order"].(map[string]interface{})
	assert.Equal(t, string(model.OrderStatusOutForDelivery), updated["status"])
}

func TestOrderController_UpdateStatus_InvalidStatus(t *testing.T) {
	controller, router, testDB, user, _ := setupOrderControllerTest(t)

	order := model.NewOrder(user.ID, 5.00, "12 Main St")
	require.NoError(t, testDB.Create(order).Error)

	router.PUT("/admin/orders/:id/status", func(c *gin.Context) {
		setUserIDInContext(c, user.ID)
		controller.UpdateStatus(c)
	})

	jsonBody, _ := json.Marshal(UpdateOrderStatusRequest{Status: "shipped"})
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/admin/orders/%d/status", order.ID), bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, "ORDER_INVALID_STATUS", response["error"])
}

func TestOrderController_DownloadInvoice(t *testing.T) {
	controller, router, testDB, user, product := setupOrderControllerTest(t)

	order := model.NewOrder(user.ID, 7.00, "12 Main St")
	order.OrderItems = []model.OrderItem{model.NewOrderItem(product.ID, 2, 3.50)}
	require.NoError(t, testDB.Create(order).Error)

	router.GET("/orders/:id/invoice", func(c *gin.Context) {
		setUserIDInContext(c, user.ID)
		c.Set("user_role", string(model.RoleUser))
		controller.DownloadInvoice(c)
	})

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/orders/%d/invoice", order.ID), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))
}
