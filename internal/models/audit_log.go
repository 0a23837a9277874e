package models

import (
	"time"
)

// AuditLog records every admin mutation against a user account.
type AuditLog struct {
	ID        int       `gorm:"primaryKey;autoIncrement" json:"id"`
	AdminId   int       `gorm:"column:admin_id;not null;index" json:"admin_id"`
	Action    string    `gorm:"column:action;size:100;not null" json:"action"`
	TargetId  int       `gorm:"column:target_id;not null;index" json:"target_id"`
	Detail    string    `gorm:"column:detail;type:text" json:"detail"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
