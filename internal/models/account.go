package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	RoleUser     = "user"
	RoleAdmin    = "admin"
	RoleTreasury = "treasury"

	StatusActive = "active"
	StatusFrozen = "frozen"

	KycUnverified = "unverified"
	KycPending    = "pending"
	KycVerified   = "verified"
	KycRejected   = "rejected"

	GateActive = "active"
	GatePaused = "paused"
)

// Account is created in an inactive shadow state at registration and
// promoted to active once the entry-fee payment is confirmed. Balance is a
// materialized view of the ledger: it is only ever written in the same
// transaction as a ledger entry.
type Account struct {
	ID                 int             `gorm:"primaryKey;autoIncrement" json:"id"`
	FirstName          string          `gorm:"column:first_name;size:100" json:"first_name"`
	LastName           string          `gorm:"column:last_name;size:100" json:"last_name"`
	Username           string          `gorm:"column:username;size:50;not null;uniqueIndex" json:"username"`
	Email              string          `gorm:"column:email;size:255;not null;uniqueIndex" json:"email"`
	PasswordHash       string          `gorm:"column:password_hash;size:255" json:"-"`
	Role               string          `gorm:"column:role;size:20;default:user" json:"role"`
	Status             string          `gorm:"column:status;size:20;default:active" json:"status"`
	Activated          bool            `gorm:"column:activated;default:false" json:"activated"`
	Balance            decimal.Decimal `gorm:"column:balance;type:decimal(20,2);default:0.00" json:"balance"`
	ReferralCode       *string         `gorm:"column:referral_code;size:40;uniqueIndex" json:"referral_code"`
	SponsorId          *int            `gorm:"column:sponsor_id;index" json:"sponsor_id"`
	KycStatus          string          `gorm:"column:kyc_status;size:20;default:unverified" json:"kyc_status"`
	KycRejectionReason string          `gorm:"column:kyc_rejection_reason;type:text" json:"kyc_rejection_reason"`
	PinHash            string          `gorm:"column:pin_hash;size:255" json:"-"`
	TotpSecret         string          `gorm:"column:totp_secret;size:255" json:"-"`
	TwoFactorEnabled   bool            `gorm:"column:two_factor_enabled;default:false" json:"two_factor_enabled"`
	PayoutConnected    bool            `gorm:"column:payout_connected;default:false" json:"payout_connected"`
	PaypalEmail        string          `gorm:"column:paypal_email;size:255" json:"paypal_email"`
	CryptoAddress      string          `gorm:"column:crypto_address;size:255" json:"crypto_address"`
	CryptoNetwork      string          `gorm:"column:crypto_network;size:50" json:"crypto_network"`
	WithdrawalGate     string          `gorm:"column:withdrawal_gate;size:20;default:active" json:"withdrawal_gate"`
	CreatedAt          time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Account) TableName() string {
	return "accounts"
}

// HasPin reports whether a withdrawal PIN has been configured.
func (a *Account) HasPin() bool {
	return a.PinHash != ""
}
