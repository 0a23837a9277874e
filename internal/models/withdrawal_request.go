package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	MethodCrypto = "crypto"
	MethodStripe = "stripe"
	MethodPaypal = "paypal"

	WithdrawalPending  = "pending"
	WithdrawalApproved = "approved"
	WithdrawalDenied   = "denied"
)

// WithdrawalRequest is created together with its Pending ledger entry in one
// transaction; the requested amount is already debited from the account
// while the request sits in the queue. Resolved exactly once by an admin.
type WithdrawalRequest struct {
	ID             int             `gorm:"primaryKey;autoIncrement" json:"id"`
	AccountId      int             `gorm:"column:account_id;not null;index:idx_withdrawal_account" json:"account_id"`
	Amount         decimal.Decimal `gorm:"column:amount;type:decimal(20,2);not null" json:"amount"`
	Method         string          `gorm:"column:method;size:20;not null" json:"method"`
	Destination    string          `gorm:"column:destination;size:255" json:"destination"`
	Network        string          `gorm:"column:network;size:50" json:"network"`
	Status         string          `gorm:"column:status;size:20;not null;default:pending;index" json:"status"`
	WithdrawalCode string          `gorm:"column:withdrawal_code;size:40" json:"withdrawal_code"`
	LedgerEntryId  int             `gorm:"column:ledger_entry_id;not null" json:"ledger_entry_id"`
	Comment        string          `gorm:"column:comment;type:text" json:"comment"`
	ResolvedBy     *int            `gorm:"column:resolved_by" json:"resolved_by"`
	ResolvedAt     *time.Time      `gorm:"column:resolved_at" json:"resolved_at"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (WithdrawalRequest) TableName() string {
	return "withdrawal_requests"
}
