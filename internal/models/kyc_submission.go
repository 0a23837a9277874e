package models

import (
	"time"
)

// KycSubmission is the queued review request for one account. The unique
// index on account_id enforces the one-pending-submission-per-account rule;
// resubmission replaces the existing row.
type KycSubmission struct {
	ID          int       `gorm:"primaryKey;autoIncrement" json:"id"`
	AccountId   int       `gorm:"column:account_id;not null;uniqueIndex" json:"account_id"`
	Address     string    `gorm:"column:address;size:255" json:"address"`
	City        string    `gorm:"column:city;size:100" json:"city"`
	PostalCode  string    `gorm:"column:postal_code;size:20" json:"postal_code"`
	Country     string    `gorm:"column:country;size:100" json:"country"`
	DocumentUrl string    `gorm:"column:document_url;size:255;not null" json:"document_url"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (KycSubmission) TableName() string {
	return "kyc_submissions"
}
