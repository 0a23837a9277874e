package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EntryCommission = "Commission"
	EntryBonus      = "Bonus"
	EntryFee        = "Fee"
	EntryWithdrawal = "Withdrawal"
	EntryAdjustment = "Adjustment"
	EntryReversal   = "Reversal"

	EntryPending   = "Pending"
	EntryCompleted = "Completed"
	EntryFailed    = "Failed"
)

// LedgerEntry is the append-only record of every balance-affecting event.
// Amount is signed: credits positive, debits negative. Reference is unique
// across the ledger and doubles as the idempotency key for commission
// credits (payment event id + recipient).
type LedgerEntry struct {
	ID           int             `gorm:"primaryKey;autoIncrement" json:"id"`
	AccountId    int             `gorm:"column:account_id;not null;index:idx_ledger_account" json:"account_id"`
	Kind         string          `gorm:"column:kind;size:20;not null;index" json:"kind"`
	Amount       decimal.Decimal `gorm:"column:amount;type:decimal(20,2);not null" json:"amount"`
	Status       string          `gorm:"column:status;size:20;not null;default:Pending" json:"status"`
	Description  string          `gorm:"column:description;type:text" json:"description"`
	Reference    string          `gorm:"column:reference;size:100;not null;uniqueIndex" json:"reference"`
	TierLevel    int             `gorm:"column:tier_level;default:0" json:"tier_level"`
	WithdrawalId *int            `gorm:"column:withdrawal_id" json:"withdrawal_id"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (LedgerEntry) TableName() string {
	return "ledger_entries"
}

// ArchivedLedgerEntry mirrors LedgerEntry for rows moved out of the hot
// table by the nightly archive job.
type ArchivedLedgerEntry struct {
	ID           int             `gorm:"primaryKey;autoIncrement" json:"id"`
	AccountId    int             `gorm:"column:account_id;not null;index" json:"account_id"`
	Kind         string          `gorm:"column:kind;size:20;not null" json:"kind"`
	Amount       decimal.Decimal `gorm:"column:amount;type:decimal(20,2);not null" json:"amount"`
	Status       string          `gorm:"column:status;size:20;not null" json:"status"`
	Description  string          `gorm:"column:description;type:text" json:"description"`
	Reference    string          `gorm:"column:reference;size:100;not null;uniqueIndex" json:"reference"`
	TierLevel    int             `gorm:"column:tier_level;default:0" json:"tier_level"`
	WithdrawalId *int            `gorm:"column:withdrawal_id" json:"withdrawal_id"`
	CreatedAt    time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"column:updated_at" json:"updated_at"`
}

func (ArchivedLedgerEntry) TableName() string {
	return "archived_ledger_entries"
}
