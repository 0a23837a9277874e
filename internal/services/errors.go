package services

import "errors"

// Precondition and conflict errors surfaced to callers for programmatic
// handling. Handlers map these onto HTTP statuses; none of them leave any
// state change behind.
var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountFrozen      = errors.New("account is frozen")
	ErrUsernameTaken      = errors.New("username is already taken")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrAccountNotActive   = errors.New("account has not been activated")
	ErrInvalidUsername    = errors.New("username must be 3-30 letters, digits or underscores")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")

	// Referral graph
	ErrInvalidReferralCode = errors.New("invalid referral code")
	ErrSponsorAlreadySet   = errors.New("sponsor has already been set")
	ErrAlreadyActivated    = errors.New("account has already been activated")

	// Commission engine
	ErrDuplicatePaymentEvent = errors.New("payment event already processed")
	ErrPaymentEventNotFound  = errors.New("payment event not found")
	ErrInvalidTierSchedule   = errors.New("tier schedule allocates more than the entry fee")
	ErrUnexpectedFeeAmount   = errors.New("payment amount does not match the entry fee")

	// Ledger
	ErrDuplicateEntry = errors.New("ledger entry reference already exists")
	ErrInvalidAmount  = errors.New("amount must be positive")

	// Withdrawal state machine
	ErrNoWithdrawalPin       = errors.New("no withdrawal PIN configured")
	ErrInvalidPin            = errors.New("invalid withdrawal PIN")
	ErrInvalidTwoFactorToken = errors.New("invalid two-factor token")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrCryptoLimitExceeded   = errors.New("crypto withdrawal limit exceeded for unverified accounts")
	ErrFiatRequiresKyc       = errors.New("fiat withdrawals require verified KYC")
	ErrWithdrawalsPaused     = errors.New("withdrawals are paused")
	ErrMissingDestination    = errors.New("withdrawal destination is missing")
	ErrAlreadyResolved       = errors.New("withdrawal request already resolved")

	// KYC workflow
	ErrMissingDocument      = errors.New("identity document is required")
	ErrPayoutMethodRequired = errors.New("a payout method must be connected first")
	ErrRequestNotFound      = errors.New("request not found")

	// Admin surface
	ErrNegativeBalance = errors.New("balance cannot be negative")

	// Security settings
	ErrTwoFactorNotEnrolled = errors.New("two-factor enrollment not started")
	ErrInvalidPinFormat     = errors.New("PIN must be exactly 6 digits")
)
