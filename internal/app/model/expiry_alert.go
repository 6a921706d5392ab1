package model

import (
	"time"

	"gorm.io/gorm"
)

type ExpiryAlertStatus string

const (
	ExpiryAlertActive    ExpiryAlertStatus = "active"
	ExpiryAlertProcessed ExpiryAlertStatus = "processed"
	ExpiryAlertIgnored   ExpiryAlertStatus = "ignored"
)

func ExpiryAlertStatusValid(s ExpiryAlertStatus) bool {
	switch s {
	case ExpiryAlertActive, ExpiryAlertProcessed, ExpiryAlertIgnored:
		return true
	}
	return false
}

// ExpiryAlert flags a product whose expiry date is approaching so the
// back office can discount or pull it. At most one alert exists per
// product for a given expiry date.
type ExpiryAlert struct {
	ID         uint              `gorm:"primarykey" json:"id"`
	ProductID  uint              `gorm:"not null;index" json:"product_id"`
	ExpiryDate time.Time         `gorm:"not null" json:"expiry_date"`
	Status     ExpiryAlertStatus `gorm:"type:varchar(20);default:'active'" json:"status"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
	DeletedAt  gorm.DeletedAt    `gorm:"index" json:"-"`

	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (ExpiryAlert) TableName() string {
	return "expiry_alerts"
}

func NewExpiryAlert(productID uint, expiryDate time.Time) *ExpiryAlert {
	return &ExpiryAlert{
		ProductID:  productID,
		ExpiryDate: expiryDate,
		Status:     ExpiryAlertActive,
	}
}

// DaysUntilExpiry counts whole days from now to the expiry date, negative
// when already expired.
func (a *ExpiryAlert) DaysUntilExpiry(now time.Time) int {
	return int(a.ExpiryDate.Sub(now).Hours() / 24)
}
