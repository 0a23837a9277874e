package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentEvent records a confirmed entry-fee payment from the payment
// collaborator. The unique event id is the dedupe key that makes commission
// distribution idempotent under replay.
type PaymentEvent struct {
	ID        int             `gorm:"primaryKey;autoIncrement" json:"id"`
	EventId   string          `gorm:"column:event_id;size:100;not null;uniqueIndex" json:"event_id"`
	AccountId int             `gorm:"column:account_id;not null;index" json:"account_id"`
	Amount    decimal.Decimal `gorm:"column:amount;type:decimal(20,2);not null" json:"amount"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (PaymentEvent) TableName() string {
	return "payment_events"
}
