package services

import (
	"errors"
	"net/mail"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"optivus-service/internal/models"
)

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]{3,30}$`)

type AccountService struct {
	DB *gorm.DB
}

func NewAccountService(db *gorm.DB) *AccountService {
	return &AccountService{DB: db}
}

type RegisterData struct {
	FirstName    string
	LastName     string
	Username     string
	Email        string
	Password     string
	ReferralCode string
}

// Register creates the inactive shadow account. The referral code, when
// given, binds the sponsor immediately; the referral edge itself is only
// recorded once the entry fee is paid.
func (s *AccountService) Register(data RegisterData) (models.Account, error) {
	var account models.Account

	username := strings.TrimSpace(data.Username)
	email := strings.ToLower(strings.TrimSpace(data.Email))
	if !usernameRe.MatchString(username) {
		return account, ErrInvalidUsername
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return account, ErrInvalidEmail
	}
	if len(data.Password) < 8 {
		return account, ErrWeakPassword
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Account{}).Where("username = ?", username).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrUsernameTaken
		}
		if err := tx.Model(&models.Account{}).Where("email = ?", email).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrEmailTaken
		}

		var sponsorId *int
		if data.ReferralCode != "" {
			var sponsor models.Account
			if err := tx.Where("referral_code = ?", data.ReferralCode).
				First(&sponsor).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrInvalidReferralCode
				}
				return err
			}
			if !sponsor.Activated || sponsor.Status != models.StatusActive {
				return ErrInvalidReferralCode
			}
			sponsorId = &sponsor.ID
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(data.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		account = models.Account{
			FirstName:    data.FirstName,
			LastName:     data.LastName,
			Username:     username,
			Email:        email,
			PasswordHash: string(hash),
			Role:         models.RoleUser,
			Status:       models.StatusActive,
			SponsorId:    sponsorId,
		}
		return tx.Create(&account).Error
	})
	return account, err
}

// CheckUsername reports whether a username is still available.
func (s *AccountService) CheckUsername(username string) (bool, error) {
	if !usernameRe.MatchString(username) {
		return false, nil
	}
	var count int64
	err := s.DB.Model(&models.Account{}).Where("username = ?", username).
		Count(&count).Error
	return count == 0, err
}

func (s *AccountService) GetAccount(accountId int) (models.Account, error) {
	var account models.Account
	err := s.DB.First(&account, accountId).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return account, ErrAccountNotFound
	}
	return account, err
}

func (s *AccountService) GetByUsername(username string) (models.Account, error) {
	var account models.Account
	err := s.DB.Where("username = ?", username).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return account, ErrAccountNotFound
	}
	return account, err
}

type UpdateProfileData struct {
	AccountId int
	FirstName string
	LastName  string
}

func (s *AccountService) UpdateProfile(data UpdateProfileData) (models.Account, error) {
	var account models.Account
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&account, data.AccountId).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAccountNotFound
			}
			return err
		}
		account.FirstName = data.FirstName
		account.LastName = data.LastName
		return tx.Save(&account).Error
	})
	return account, err
}

type ChangePasswordData struct {
	AccountId       int
	CurrentPassword string
	NewPassword     string
}

func (s *AccountService) ChangePassword(data ChangePasswordData) error {
	if len(data.NewPassword) < 8 {
		return ErrWeakPassword
	}
	var account models.Account
	if err := s.DB.First(&account, data.AccountId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAccountNotFound
		}
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(data.CurrentPassword)); err != nil {
		return ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(data.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.DB.Model(&models.Account{}).Where("id = ?", account.ID).
		Update("password_hash", string(hash)).Error
}
