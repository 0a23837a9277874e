package services

import (
	"encoding/base64"
	"errors"

	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"optivus-service/internal/models"
)

const totpIssuer = "Optivus Protocol"

// SecurityService manages the per-account withdrawal safeguards: the
// 6-digit PIN, TOTP two-factor and payout destinations.
type SecurityService struct {
	DB *gorm.DB
}

func NewSecurityService(db *gorm.DB) *SecurityService {
	return &SecurityService{DB: db}
}

// SetPin stores a new withdrawal PIN. Changing an existing PIN requires the
// current one.
func (s *SecurityService) SetPin(accountId int, currentPin, newPin string) error {
	if !isSixDigits(newPin) {
		return ErrInvalidPinFormat
	}

	var account models.Account
	if err := s.DB.First(&account, accountId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAccountNotFound
		}
		return err
	}
	if account.HasPin() {
		if err := bcrypt.CompareHashAndPassword([]byte(account.PinHash), []byte(currentPin)); err != nil {
			return ErrInvalidPin
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPin), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.DB.Model(&models.Account{}).Where("id = ?", accountId).
		Update("pin_hash", string(hash)).Error
}

type TwoFactorEnrollment struct {
	Secret string `json:"secret"`
	// QRCode is a base64 PNG of the provisioning URI for authenticator apps.
	QRCode string `json:"qrCode"`
}

// BeginTwoFactor generates a TOTP secret and a QR code to scan. The secret
// stays inert until ConfirmTwoFactor sees a valid code from it.
func (s *SecurityService) BeginTwoFactor(accountId int) (TwoFactorEnrollment, error) {
	var enrollment TwoFactorEnrollment

	var account models.Account
	if err := s.DB.First(&account, accountId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return enrollment, ErrAccountNotFound
		}
		return enrollment, err
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: account.Email,
	})
	if err != nil {
		return enrollment, err
	}

	png, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		return enrollment, err
	}

	if err := s.DB.Model(&models.Account{}).Where("id = ?", accountId).
		Update("totp_secret", key.Secret()).Error; err != nil {
		return enrollment, err
	}

	enrollment.Secret = key.Secret()
	enrollment.QRCode = base64.StdEncoding.EncodeToString(png)
	return enrollment, nil
}

// ConfirmTwoFactor turns enrollment on after the account proves it holds
// the secret.
func (s *SecurityService) ConfirmTwoFactor(accountId int, code string) error {
	var account models.Account
	if err := s.DB.First(&account, accountId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAccountNotFound
		}
		return err
	}
	if account.TotpSecret == "" {
		return ErrTwoFactorNotEnrolled
	}
	if !totp.Validate(code, account.TotpSecret) {
		return ErrInvalidTwoFactorToken
	}
	return s.DB.Model(&models.Account{}).Where("id = ?", accountId).
		Update("two_factor_enabled", true).Error
}

// DisableTwoFactor turns enrollment off; the current code is required so a
// hijacked session cannot silently strip the second factor.
func (s *SecurityService) DisableTwoFactor(accountId int, code string) error {
	var account models.Account
	if err := s.DB.First(&account, accountId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAccountNotFound
		}
		return err
	}
	if !account.TwoFactorEnabled {
		return ErrTwoFactorNotEnrolled
	}
	if !totp.Validate(code, account.TotpSecret) {
		return ErrInvalidTwoFactorToken
	}
	return s.DB.Model(&models.Account{}).Where("id = ?", accountId).
		Updates(map[string]interface{}{
			"two_factor_enabled": false,
			"totp_secret":        "",
		}).Error
}

// ConnectPayout marks a card payout account as linked. The actual account
// onboarding happens with the payment provider; only the binding is kept.
func (s *SecurityService) ConnectPayout(accountId int, paypalEmail string) error {
	updates := map[string]interface{}{"payout_connected": true}
	if paypalEmail != "" {
		updates["paypal_email"] = paypalEmail
	}
	result := s.DB.Model(&models.Account{}).Where("id = ?", accountId).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// BindCryptoAddress stores the withdrawal address and network.
func (s *SecurityService) BindCryptoAddress(accountId int, address, network string) error {
	if address == "" {
		return ErrMissingDestination
	}
	result := s.DB.Model(&models.Account{}).Where("id = ?", accountId).
		Updates(map[string]interface{}{
			"crypto_address": address,
			"crypto_network": network,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAccountNotFound
	}
	return nil
}

func isSixDigits(pin string) bool {
	if len(pin) != 6 {
		return false
	}
	for _, ch := range pin {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return true
}
