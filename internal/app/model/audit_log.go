package model

import "time"

// AuditLog records security-relevant actions. UserID is nullable because
// some events (failed logins for unknown accounts) have no actor.
type AuditLog struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    *uint     `gorm:"index" json:"user_id,omitempty"`
	Action    string    `gorm:"type:varchar(100);not null;index" json:"action"`
	Details   string    `gorm:"type:text" json:"details"`
	CreatedAt time.Time `json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

func NewAuditLog(userID *uint, action, details string) *AuditLog {
	return &AuditLog{
		UserID:  userID,
		Action:  action,
		Details: details,
	}
}
