package model

import (
	"time"

	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "pending"
	OrderStatusOutForDelivery OrderStatus = "out_for_delivery"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

// OrderStatusValid reports membership in the closed status set. Transitions
// between statuses are deliberately unrestricted: an admin may move an order
// from any status to any other, matching the back-office workflow where
// mis-clicked statuses need to be reverted.
func OrderStatusValid(s OrderStatus) bool {
	switch s {
	case OrderStatusPending, OrderStatusOutForDelivery, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// StatusMessage returns the customer-facing text used for notifications and
// SMS when an order enters the given status.
func StatusMessage(s OrderStatus) string {
	switch s {
	case OrderStatusOutForDelivery:
		return "Your order is out for delivery!"
	case OrderStatusDelivered:
		return "Your order has been delivered. Enjoy!"
	case OrderStatusCancelled:
		return "Your order has been cancelled."
	default:
		return "Your order is being processed."
	}
}

type Order struct {
	ID                uint           `gorm:"primarykey" json:"id"`
	UserID            uint           `gorm:"not null;index" json:"user_id"`
	TotalAmount       float64        `gorm:"not null" json:"total_amount"`
	DeliveryAddress   string         `gorm:"type:text;not null" json:"delivery_address"`
	DeliveryLatitude  *float64       `json:"delivery_latitude,omitempty"`
	DeliveryLongitude *float64       `json:"delivery_longitude,omitempty"`
	Status            OrderStatus    `gorm:"type:varchar(20);default:'pending'" json:"status"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`

	User       User        `gorm:"foreignKey:UserID" json:"user,omitempty"`
	OrderItems []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"order_items,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

// NewOrder builds a pending order with its frozen total. The total is
// computed once at checkout and never recomputed afterwards.
func NewOrder(userID uint, totalAmount float64, deliveryAddress string) *Order {
	return &Order{
		UserID:          userID,
		TotalAmount:     totalAmount,
		DeliveryAddress: deliveryAddress,
		Status:          OrderStatusPending,
	}
}

type OrderItem struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	OrderID   uint           `gorm:"not null;index" json:"order_id"`
	ProductID uint           `gorm:"not null;index" json:"product_id"`
	Quantity  int            `gorm:"not null" json:"quantity"`
	Price     float64        `gorm:"not null" json:"price"` // price at time of purchase
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Order   Order   `gorm:"foreignKey:OrderID" json:"-"`
	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

// NewOrderItem captures a cart line at purchase time. Price is the product's
// price at this instant, decoupling the invoice from later catalog changes.
func NewOrderItem(productID uint, quantity int, price float64) OrderItem {
	return OrderItem{
		ProductID: productID,
		Quantity:  quantity,
		Price:     price,
	}
}

func (oi *OrderItem) LineTotal() float64 {
	return float64(oi.Quantity) * oi.Price
}
