package model

import (
	"time"

	"gorm.io/gorm"
)

type Coupon struct {
	ID                 uint           `gorm:"primarykey" json:"id"`
	Code               string         `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	DiscountPercentage float64        `gorm:"not null" json:"discount_percentage"`
	ValidFrom          time.Time      `gorm:"not null" json:"valid_from"`
	ValidUntil         time.Time      `gorm:"not null" json:"valid_until"`
	IsActive           bool           `gorm:"default:true" json:"is_active"`
	MinPurchase        float64        `gorm:"default:0" json:"min_purchase"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Coupon) TableName() string {
	return "coupons"
}

// IsValidAt reports whether the coupon can be redeemed at the given
// instant. The minimum-purchase threshold is checked separately against
// the cart total.
func (c *Coupon) IsValidAt(now time.Time) bool {
	return c.IsActive && !now.Before(c.ValidFrom) && !now.After(c.ValidUntil)
}

// DiscountAmount returns the discount this coupon grants on the given
// total, zero when the total is below the minimum purchase.
func (c *Coupon) DiscountAmount(total float64) float64 {
	if total < c.MinPurchase {
		return 0
	}
	return total * c.DiscountPercentage / 100
}
