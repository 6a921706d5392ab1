package model

import (
	"time"

	"gorm.io/gorm"
)

type CartItem struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	ProductID uint           `gorm:"not null;index" json:"product_id"`
	Quantity  int            `gorm:"not null;default:1" json:"quantity"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	User    User    `gorm:"foreignKey:UserID" json:"-"`
	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

func NewCartItem(userID, productID uint, quantity int) *CartItem {
	return &CartItem{
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
	}
}

// LineTotal is the line price at the product's current price. Order items
// freeze their own price; cart lines always track the live catalog price.
func (c *CartItem) LineTotal() float64 {
	return float64(c.Quantity) * c.Product.Price
}
