package model

import (
	"time"

	"github.com/lib/pq"
)

type InteractionStatus string

const (
	InteractionSafe    InteractionStatus = "safe"
	InteractionCaution InteractionStatus = "caution"
	InteractionWarning InteractionStatus = "warning"
	InteractionError   InteractionStatus = "error"
)

// InteractionCheck records the outcome of a medical interaction screening
// across the pharmacy products in a user's cart. Postgres only: the array
// columns have no sqlite equivalent, so this model is skipped in test
// migrations.
type InteractionCheck struct {
	ID           uint              `gorm:"primarykey" json:"id"`
	UserID       uint              `gorm:"not null;index" json:"user_id"`
	ProductIDs   pq.Int64Array     `gorm:"type:bigint[]" json:"product_ids"`
	Status       InteractionStatus `gorm:"type:varchar(20);not null" json:"status"`
	Interactions pq.StringArray    `gorm:"type:text[]" json:"interactions"`
	CreatedAt    time.Time         `json:"created_at"`
}

func (InteractionCheck) TableName() string {
	return "interaction_checks"
}
