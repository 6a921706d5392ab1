package model

import (
	"time"

	"gorm.io/gorm"
)

type Product struct {
	ID              uint           `gorm:"primarykey" json:"id"`
	Name            string         `gorm:"not null" json:"name"`
	Description     string         `gorm:"type:text" json:"description"`
	ImageURL        string         `json:"image_url"`
	Price           float64        `gorm:"not null" json:"price"`
	OriginalPrice   *float64       `json:"original_price,omitempty"`
	Stock           int            `gorm:"default:0" json:"stock"`
	CategoryID      uint           `gorm:"not null;index" json:"category_id"`
	ExpiryDate      *time.Time     `json:"expiry_date,omitempty"`
	MedicalWarnings string         `gorm:"type:text" json:"medical_warnings,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Category      Category       `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	CartItems     []CartItem     `gorm:"foreignKey:ProductID" json:"-"`
	OrderItems    []OrderItem    `gorm:"foreignKey:ProductID" json:"-"`
	WishlistItems []WishlistItem `gorm:"foreignKey:ProductID" json:"-"`
	Reviews       []Review       `gorm:"foreignKey:ProductID" json:"-"`
}

func (Product) TableName() string {
	return "products"
}

// HasDiscount reports whether the product carries a marked-down price.
// A discount exists only when the original price is set and strictly
// exceeds the current price.
func (p *Product) HasDiscount() bool {
	return p.OriginalPrice != nil && *p.OriginalPrice > p.Price
}

// DiscountPercentage returns the discount as a whole percentage, 0 when
// the product has no discount.
func (p *Product) DiscountPercentage() int {
	if !p.HasDiscount() {
		return 0
	}
	return int(((*p.OriginalPrice - p.Price) / *p.OriginalPrice) * 100)
}
