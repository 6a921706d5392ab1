package repository

import (
	"time"

	"github.com/smartcart/smartcart-backend/internal/app/model"
	"github.com/smartcart/smartcart-backend/pkg/logger"
	"gorm.io/gorm"
)

type OrderFilter struct {
	Status *model.OrderStatus
	UserID *uint
	Limit  int
	Offset int
}

// DailySale is one point in the sales-over-time series.
type DailySale struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
	Orders  int64   `json:"orders"`
}

// CategorySales is one slice of the category revenue distribution.
type CategorySales struct {
	Category string  `json:"category"`
	Revenue  float64 `json:"revenue"`
	Units    int64   `json:"units"`
}

type OrderRepository interface {
	Create(order *model.Order) error
	FindByID(id uint) (*model.Order, error)
	FindByUser(userID uint) ([]model.Order, error)
	FindWithFilter(filter OrderFilter) ([]model.Order, int64, error)
	FindWithCoordinates() ([]model.Order, error)
	Update(order *model.Order) error
	CountByStatus(status model.OrderStatus) (int64, error)
	CountAll() (int64, error)
	RevenueTotal() (float64, error)
	RevenueSince(since time.Time) (float64, error)
	DailySales(from, until time.Time) ([]DailySale, error)
	CategoryDistribution() ([]CategorySales, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(order *model.Order) error {
	logger.Debug("Creating order in database", map[string]interface{}{
		"user_id":      order.UserID,
		"total_amount": order.TotalAmount,
		"items":        len(order.OrderItems),
	})

	if err := r.db.Create(order).Error; err != nil {
		logger.Error("Failed to create order in database", err, map[string]interface{}{
			"user_id": order.UserID,
		})
		return err
	}

	logger.Debug("Order created in database", map[string]interface{}{
		"order_id": order.ID,
	})
	return nil
}

func (r *orderRepository) baseQuery() *gorm.DB {
	return r.db.Model(&model.Order{}).
		Preload("OrderItems").
		Preload("OrderItems.Product").
		Preload("User")
}

func (r *orderRepository) FindByID(id uint) (*model.Order, error) {
	var order model.Order
	if err := r.baseQuery().First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindByUser(userID uint) ([]model.Order, error) {
	var orders []model.Order
	err := r.baseQuery().
		Where("orders.user_id = ?", userID).
		Order("orders.created_at DESC").
		Find(&orders).Error
	if err != nil {
		logger.Error("Failed to find user orders", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) FindWithFilter(filter OrderFilter) ([]model.Order, int64, error) {
	query := r.baseQuery()

	if filter.Status != nil {
		query = query.Where("orders.status = ?", *filter.Status)
	}
	if filter.UserID != nil {
		query = query.Where("orders.user_id = ?", *filter.UserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		logger.Error("Failed to count orders", err, nil)
		return nil, 0, err
	}

	query = query.Order("orders.created_at DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var orders []model.Order
	if err := query.Find(&orders).Error; err != nil {
		logger.Error("Failed to find orders", err, nil)
		return nil, 0, err
	}
	return orders, total, nil
}

// FindWithCoordinates returns undelivered orders that were successfully
// geocoded, newest first.
func (r *orderRepository) FindWithCoordinates() ([]model.Order, error) {
	var orders []model.Order
	err := r.db.Model(&model.Order{}).
		Preload("User").
		Where("delivery_latitude IS NOT NULL AND delivery_longitude IS NOT NULL").
		Where("status <> ?", model.OrderStatusDelivered).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		logger.Error("Failed to find orders with coordinates", err, nil)
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) Update(order *model.Order) error {
	if err := r.db.Save(order).Error; err != nil {
		logger.Error("Failed to update order", err, map[string]interface{}{
			"order_id": order.ID,
		})
		return err
	}
	return nil
}

func (r *orderRepository) CountByStatus(status model.OrderStatus) (int64, error) {
	var count int64
	err := r.db.Model(&model.Order{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

func (r *orderRepository) CountAll() (int64, error) {
	var count int64
	err := r.db.Model(&model.Order{}).Count(&count).Error
	return count, err
}

// Revenue totals exclude cancelled orders.

func (r *orderRepository) RevenueTotal() (float64, error) {
	var revenue float64
	err := r.db.Model(&model.Order{}).
		Select("COALESCE(SUM(total_amount), 0)").
		Where("status != ?", model.OrderStatusCancelled).
		Scan(&revenue).Error
	if err != nil {
		logger.Error("Failed to compute total revenue", err, nil)
		return 0, err
	}
	return revenue, nil
}

func (r *orderRepository) RevenueSince(since time.Time) (float64, error) {
	var revenue float64
	err := r.db.Model(&model.Order{}).
		Select("COALESCE(SUM(total_amount), 0)").
		Where("status != ? AND created_at >= ?", model.OrderStatusCancelled, since).
		Scan(&revenue).Error
	if err != nil {
		logger.Error("Failed to compute revenue since", err, map[string]interface{}{
			"since": since,
		})
		return 0, err
	}
	return revenue, nil
}

// DailySales aggregates revenue and order counts per calendar day. Days
// without orders are filled in by the caller.
func (r *orderRepository) DailySales(from, until time.Time) ([]DailySale, error) {
	var sales []DailySale
	err := r.db.Model(&model.Order{}).
		Select("DATE(created_at) AS date, COALESCE(SUM(total_amount), 0) AS revenue, COUNT(*) AS orders").
		Where("status != ? AND created_at >= ? AND created_at <= ?", model.OrderStatusCancelled, from, until).
		Group("DATE(created_at)").
		Order("date ASC").
		Scan(&sales).Error
	if err != nil {
		logger.Error("Failed to compute daily sales", err, nil)
		return nil, err
	}
	return sales, nil
}

// CategoryDistribution sums sold units and revenue per category using the
// prices frozen on order items.
func (r *orderRepository) CategoryDistribution() ([]CategorySales, error) {
	var distribution []CategorySales
	err := r.db.Table("order_items").
		Select("categories.name AS category, COALESCE(SUM(order_items.price * order_items.quantity), 0) AS revenue, COALESCE(SUM(order_items.quantity), 0) AS units").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Joins("JOIN products ON products.id = order_items.product_id").
		Joins("JOIN categories ON categories.id = products.category_id").
		Where("orders.status != ? AND order_items.deleted_at IS NULL", model.OrderStatusCancelled).
		Group("categories.name").
		Order("revenue DESC").
		Scan(&distribution).Error
	if err != nil {
		logger.Error("Failed to compute category distribution", err, nil)
		return nil, err
	}
	return distribution, nil
}
