package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/smartcart/smartcart-backend/internal/app/model"
	"github.com/smartcart/smartcart-backend/internal/app/repository"
	"github.com/smartcart/smartcart-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrMissingAddress     = errors.New("delivery address is required")
	ErrInvalidOrderStatus = errors.New("invalid order status")
)

// Geocoder resolves a delivery address to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*float64, *float64, error)
}

// SMSSender delivers a text message, returning the provider message ID.
type SMSSender interface {
	Send(ctx context.Context, toNumber, body string) (string, error)
}

// SideEffect reports whether an optional external step ran. Skipped
// steps carry the reason so the client can surface it.
type SideEffect struct {
	Applied bool   `json:"applied"`
	Reason  string `json:"reason,omitempty"`
}

// CheckoutResult is the full outcome of a checkout: the created order
// plus everything that happened around it.
type CheckoutResult struct {
	Order         *model.Order `json:"order"`
	Subtotal      float64      `json:"subtotal"`
	Discount      float64      `json:"discount"`
	CouponApplied bool         `json:"coupon_applied"`
	CouponMessage string       `json:"coupon_message,omitempty"`
	Geocode       SideEffect   `json:"geocode"`
	SMS           SideEffect   `json:"sms"`
}

// ReorderResult summarizes rebuilding a cart from a past order.
type ReorderResult struct {
	Cart    *Cart    `json:"cart"`
	Added   int      `json:"added"`
	Skipped []string `json:"skipped,omitempty"`
}

type OrderService interface {
	Checkout(ctx context.Context, userID uint, deliveryAddress, couponCode string) (*CheckoutResult, error)
	GetUserOrders(userID uint) ([]model.Order, error)
	GetOrder(userID uint, isAdmin bool, orderID uint) (*model.Order, error)
	ListOrders(filter repository.OrderFilter) ([]model.Order, int64, error)
	ListDeliveryMap() ([]DeliveryPoint, error)
	UpdateOrderStatus(ctx context.Context, adminID, orderID uint, status model.OrderStatus) (*model.Order, error)
	Reorder(userID, orderID uint) (*ReorderResult, error)
}

type orderService struct {
	orderRepo        repository.OrderRepository
	cartRepo         repository.CartRepository
	productRepo      repository.ProductRepository
	userRepo         repository.UserRepository
	notificationRepo repository.NotificationRepository
	couponService    CouponService
	cartService      CartService
	auditService     AuditService
	geocoder         Geocoder
	smsSender        SMSSender
	db               *gorm.DB
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	notificationRepo repository.NotificationRepository,
	couponService CouponService,
	cartService CartService,
	auditService AuditService,
	geocoder Geocoder,
	smsSender SMSSender,
	db *gorm.DB,
) OrderService {
	return &orderService{
		orderRepo:        orderRepo,
		cartRepo:         cartRepo,
		productRepo:      productRepo,
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
		couponService:    couponService,
		cartService:      cartService,
		auditService:     auditService,
		geocoder:         geocoder,
		smsSender:        smsSender,
		db:               db,
	}
}

// Checkout turns the cart into an order in one transaction. Stock rows
// are locked for the duration so concurrent checkouts of the same
// product cannot oversell. Geocoding and SMS run after commit and never
// fail the order.
func (s *orderService) Checkout(ctx context.Context, userID uint, deliveryAddress, couponCode string) (*CheckoutResult, error) {
	if deliveryAddress == "" {
		return nil, ErrMissingAddress
	}

	logger.Info("Starting checkout", map[string]interface{}{
		"user_id": userID,
	})

	cartItems, err := s.cartRepo.FindByUser(userID)
	if err != nil {
		return nil, err
	}
	if len(cartItems) == 0 {
		logger.Warn("Checkout rejected: cart is empty", map[string]interface{}{
			"user_id": userID,
		})
		return nil, ErrEmptyCart
	}

	result := &CheckoutResult{}
	var order *model.Order

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var (
			subtotal   float64
			orderItems []model.OrderItem
		)

		for _, cartItem := range cartItems {
			var product model.Product
			if err := tx.
				Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&product, cartItem.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrProductNotFound
				}
				return err
			}

			if product.Stock < cartItem.Quantity {
				logger.Warn("Checkout failed: insufficient stock", map[string]interface{}{
					"user_id":    userID,
					"product_id": product.ID,
					"requested":  cartItem.Quantity,
					"available":  product.Stock,
				})
				return ErrInsufficientStock
			}

			// Conditional decrement guards against a concurrent writer
			// that slipped between the lock and the update.
			res := tx.Model(&model.Product{}).
				Where("id = ? AND stock >= ?", product.ID, cartItem.Quantity).
				Update("stock", gorm.Expr("stock - ?", cartItem.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrInsufficientStock
			}

			subtotal += float64(cartItem.Quantity) * product.Price
			orderItems = append(orderItems, model.NewOrderItem(product.ID, cartItem.Quantity, product.Price))
		}

		evaluation := s.couponService.Evaluate(couponCode, subtotal, time.Now())
		result.Subtotal = subtotal
		result.Discount = evaluation.Discount
		result.CouponApplied = evaluation.Applied
		result.CouponMessage = evaluation.Message

		order = model.NewOrder(userID, subtotal-evaluation.Discount, deliveryAddress)
		order.OrderItems = orderItems
		if err := tx.Create(order).Error; err != nil {
			return err
		}

		return tx.Where("user_id = ?", userID).Delete(&model.CartItem{}).Error
	})
	if err != nil {
		return nil, err
	}

	result.Order = order

	if err := s.notificationRepo.Create(model.NewNotification(
		userID,
		fmt.Sprintf("Your order #%d has been confirmed. We'll notify you when it ships.", order.ID),
	)); err != nil {
		logger.Error("Failed to create order notification", err, map[string]interface{}{
			"order_id": order.ID,
		})
	}

	result.Geocode = s.geocodeOrder(ctx, order)
	result.SMS = s.sendOrderSMS(ctx, userID, fmt.Sprintf("SmartCart: order #%d confirmed, total %.2f.", order.ID, order.TotalAmount))

	s.auditService.Log(&userID, AuditActionCheckout, fmt.Sprintf("order %d placed, total %.2f", order.ID, order.TotalAmount))

	logger.Info("Checkout completed", map[string]interface{}{
		"user_id":  userID,
		"order_id": order.ID,
		"total":    order.TotalAmount,
		"discount": result.Discount,
	})
	return result, nil
}

func (s *orderService) geocodeOrder(ctx context.Context, order *model.Order) SideEffect {
	if s.geocoder == nil {
		return SideEffect{Reason: "geocoding not configured"}
	}

	lat, lng, err := s.geocoder.Geocode(ctx, order.DeliveryAddress)
	if err != nil {
		logger.Warn("Geocoding failed", map[string]interface{}{
			"order_id": order.ID,
			"error":    err.Error(),
		})
		return SideEffect{Reason: "address could not be geocoded"}
	}
	if lat == nil || lng == nil {
		return SideEffect{Reason: "no coordinates for address"}
	}

	order.DeliveryLatitude = lat
	order.DeliveryLongitude = lng
	if err := s.orderRepo.Update(order); err != nil {
		logger.Error("Failed to store order coordinates", err, map[string]interface{}{
			"order_id": order.ID,
		})
		return SideEffect{Reason: "failed to store coordinates"}
	}
	return SideEffect{Applied: true}
}

func (s *orderService) sendOrderSMS(ctx context.Context, userID uint, body string) SideEffect {
	if s.smsSender == nil {
		return SideEffect{Reason: "sms not configured"}
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return SideEffect{Reason: "user lookup failed"}
	}
	if user.Phone == "" {
		return SideEffect{Reason: "no phone number on file"}
	}

	if _, err := s.smsSender.Send(ctx, user.Phone, body); err != nil {
		logger.Warn("SMS delivery failed", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		return SideEffect{Reason: "sms delivery failed"}
	}
	return SideEffect{Applied: true}
}

func (s *orderService) GetUserOrders(userID uint) ([]model.Order, error) {
	return s.orderRepo.FindByUser(userID)
}

func (s *orderService) GetOrder(userID uint, isAdmin bool, orderID uint) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	if !isAdmin && order.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *orderService) ListOrders(filter repository.OrderFilter) ([]model.Order, int64, error) {
	return s.orderRepo.FindWithFilter(filter)
}

// DeliveryPoint is a geocoded order pin for the admin delivery map.
type DeliveryPoint struct {
	OrderID   uint              `json:"order_id"`
	Username  string            `json:"username"`
	Address   string            `json:"address"`
	Latitude  float64           `json:"latitude"`
	Longitude float64           `json:"longitude"`
	Status    model.OrderStatus `json:"status"`
	Total     float64           `json:"total_amount"`
	CreatedAt time.Time         `json:"created_at"`
}

func (s *orderService) ListDeliveryMap() ([]DeliveryPoint, error) {
	orders, err := s.orderRepo.FindWithCoordinates()
	if err != nil {
		return nil, err
	}

	points := make([]DeliveryPoint, 0, len(orders))
	for _, o := range orders {
		points = append(points, DeliveryPoint{
			OrderID:   o.ID,
			Username:  o.User.Username,
			Address:   o.DeliveryAddress,
			Latitude:  *o.DeliveryLatitude,
			Longitude: *o.DeliveryLongitude,
			Status:    o.Status,
			Total:     o.TotalAmount,
			CreatedAt: o.CreatedAt,
		})
	}
	return points, nil
}

func (s *orderService) UpdateOrderStatus(ctx context.Context, adminID, orderID uint, status model.OrderStatus) (*model.Order, error) {
	if !model.OrderStatusValid(status) {
		return nil, ErrInvalidOrderStatus
	}

	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	previous := order.Status
	order.Status = status
	if err := s.orderRepo.Update(order); err != nil {
		return nil, err
	}

	message := model.StatusMessage(status)
	if err := s.notificationRepo.Create(model.NewNotification(order.UserID, message)); err != nil {
		logger.Error("Failed to create status notification", err, map[string]interface{}{
			"order_id": orderID,
		})
	}

	s.sendOrderSMS(ctx, order.UserID, fmt.Sprintf("SmartCart order #%d: %s", order.ID, message))

	s.auditService.Log(&adminID, AuditActionOrderStatus,
		fmt.Sprintf("order %d status %s -> %s", orderID, previous, status))

	logger.Info("Order status updated", map[string]interface{}{
		"order_id": orderID,
		"from":     previous,
		"to":       status,
	})
	return order, nil
}

// Reorder replaces the cart with the items of a past order. Quantities
// are capped at current stock and sold-out products are skipped.
func (s *orderService) Reorder(userID, orderID uint) (*ReorderResult, error) {
	order, err := s.GetOrder(userID, false, orderID)
	if err != nil {
		return nil, err
	}

	if err := s.cartRepo.DeleteByUser(userID); err != nil {
		return nil, err
	}

	result := &ReorderResult{}
	for _, item := range order.OrderItems {
		product, err := s.productRepo.FindByID(item.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				result.Skipped = append(result.Skipped, fmt.Sprintf("product #%d no longer available", item.ProductID))
				continue
			}
			return nil, err
		}

		if product.Stock == 0 {
			result.Skipped = append(result.Skipped, product.Name)
			continue
		}

		quantity := item.Quantity
		if quantity > product.Stock {
			quantity = product.Stock
		}

		if err := s.cartRepo.Create(model.NewCartItem(userID, product.ID, quantity)); err != nil {
			return nil, err
		}
		result.Added++
	}

	cart, err := s.cartService.GetCart(userID)
	if err != nil {
		return nil, err
	}
	result.Cart = cart

	logger.Info("Reorder completed", map[string]interface{}{
		"user_id":  userID,
		"order_id": orderID,
		"added":    result.Added,
		"skipped":  len(result.Skipped),
	})
	return result, nil
}
