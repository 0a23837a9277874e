package services

import (
	"errors"
	"time"

	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"optivus-service/internal/middleware"
	"optivus-service/internal/models"
)

type AuthService struct {
	DB            *gorm.DB
	JWTSecret     string
	SessionExpiry time.Duration
	PendingExpiry time.Duration
}

func NewAuthService(db *gorm.DB, secret string, sessionExpiry, pendingExpiry time.Duration) *AuthService {
	return &AuthService{
		DB:            db,
		JWTSecret:     secret,
		SessionExpiry: sessionExpiry,
		PendingExpiry: pendingExpiry,
	}
}

type LoginResult struct {
	Token             string         `json:"token"`
	TwoFactorRequired bool           `json:"twoFactorRequired"`
	Account           models.Account `json:"account"`
}

// Login checks the password and hands out either a session token or, for
// accounts enrolled in two-factor, a short-lived pending token that only
// the TOTP verify endpoint accepts.
func (s *AuthService) Login(identifier, password string) (LoginResult, error) {
	var result LoginResult

	var account models.Account
	err := s.DB.Where("username = ? OR email = ?", identifier, identifier).
		First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return result, ErrInvalidCredentials
		}
		return result, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return result, ErrInvalidCredentials
	}
	if account.Status == models.StatusFrozen {
		return result, ErrAccountFrozen
	}

	if account.TwoFactorEnabled {
		token, err := middleware.GenerateToken(account.ID, account.Role,
			middleware.ScopePending2FA, s.JWTSecret, s.PendingExpiry)
		if err != nil {
			return result, err
		}
		result.Token = token
		result.TwoFactorRequired = true
		result.Account = account
		return result, nil
	}

	token, err := middleware.GenerateToken(account.ID, account.Role,
		middleware.ScopeSession, s.JWTSecret, s.SessionExpiry)
	if err != nil {
		return result, err
	}
	result.Token = token
	result.Account = account
	return result, nil
}

// VerifyTwoFactor upgrades a pending login to a full session once a valid
// TOTP code is presented.
func (s *AuthService) VerifyTwoFactor(accountId int, code string) (LoginResult, error) {
	var result LoginResult

	var account models.Account
	if err := s.DB.First(&account, accountId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return result, ErrAccountNotFound
		}
		return result, err
	}
	if !account.TwoFactorEnabled {
		return result, ErrTwoFactorNotEnrolled
	}
	if !totp.Validate(code, account.TotpSecret) {
		return result, ErrInvalidTwoFactorToken
	}

	token, err := middleware.GenerateToken(account.ID, account.Role,
		middleware.ScopeSession, s.JWTSecret, s.SessionExpiry)
	if err != nil {
		return result, err
	}
	result.Token = token
	result.Account = account
	return result, nil
}
