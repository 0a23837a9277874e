package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"optivus-service/internal/models"
	"optivus-service/pkg/common"
)

// WithdrawalService implements the withdrawal queue. A request debits the
// account the moment it is created, so queued funds can never be spent
// twice; denial refunds through a reversal entry rather than by editing
// history.
type WithdrawalService struct {
	DB     *gorm.DB
	Ledger *LedgerService

	CryptoCapUnverified decimal.Decimal
	Paused              bool
}

func NewWithdrawalService(db *gorm.DB, ledger *LedgerService, cryptoCap decimal.Decimal, paused bool) *WithdrawalService {
	return &WithdrawalService{
		DB:                  db,
		Ledger:              ledger,
		CryptoCapUnverified: cryptoCap,
		Paused:              paused,
	}
}

type WithdrawalRequestData struct {
	AccountId      int
	Amount         decimal.Decimal
	Method         string
	Pin            string
	TwoFactorToken string
}

// Request validates and queues a withdrawal. Checks run cheapest first; the
// balance check is repeated under lock inside the transaction, so a passing
// pre-check can still fail atomically.
func (s *WithdrawalService) Request(data WithdrawalRequestData) (models.WithdrawalRequest, error) {
	var request models.WithdrawalRequest

	if !data.Amount.IsPositive() {
		return request, ErrInvalidAmount
	}
	switch data.Method {
	case models.MethodCrypto, models.MethodStripe, models.MethodPaypal:
	default:
		return request, ErrMissingDestination
	}

	var account models.Account
	if err := s.DB.First(&account, data.AccountId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return request, ErrAccountNotFound
		}
		return request, err
	}

	if !account.HasPin() {
		return request, ErrNoWithdrawalPin
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PinHash), []byte(data.Pin)); err != nil {
		return request, ErrInvalidPin
	}
	if account.TwoFactorEnabled {
		if !totp.Validate(data.TwoFactorToken, account.TotpSecret) {
			return request, ErrInvalidTwoFactorToken
		}
	}
	if account.Balance.LessThan(data.Amount) {
		return request, ErrInsufficientBalance
	}

	destination, network, err := s.destinationFor(&account, data.Method)
	if err != nil {
		return request, err
	}

	if data.Method == models.MethodCrypto {
		if account.KycStatus != models.KycVerified {
			queued, err := s.cryptoVolume(account.ID)
			if err != nil {
				return request, err
			}
			if queued.Add(data.Amount).GreaterThan(s.CryptoCapUnverified) {
				return request, ErrCryptoLimitExceeded
			}
		}
	} else if account.KycStatus != models.KycVerified {
		return request, ErrFiatRequiresKyc
	}

	if s.Paused || account.WithdrawalGate == models.GatePaused {
		return request, ErrWithdrawalsPaused
	}

	code := common.GenerateTrxNo()
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		entry, err := s.Ledger.PostIn(tx, PostEntryData{
			AccountId:   account.ID,
			Kind:        models.EntryWithdrawal,
			Amount:      data.Amount.Neg(),
			Status:      models.EntryPending,
			Description: fmt.Sprintf("Withdrawal request %s via %s", code, data.Method),
			Reference:   fmt.Sprintf("withdrawal:%s", code),
		})
		if err != nil {
			return err
		}

		request = models.WithdrawalRequest{
			AccountId:      account.ID,
			Amount:         data.Amount,
			Method:         data.Method,
			Destination:    destination,
			Network:        network,
			Status:         models.WithdrawalPending,
			WithdrawalCode: code,
			LedgerEntryId:  entry.ID,
		}
		if err := tx.Create(&request).Error; err != nil {
			return err
		}
		return tx.Model(&models.LedgerEntry{}).Where("id = ?", entry.ID).
			Update("withdrawal_id", request.ID).Error
	})
	return request, err
}

type ResolveResult struct {
	Request  models.WithdrawalRequest
	Approved bool
	// Message is what the account holder should be told about the outcome.
	Message string
}

// Resolve settles a pending request exactly once. Approval completes the
// reserved debit; denial marks it failed and refunds through a completed
// reversal credit, keeping both legs in the ledger.
func (s *WithdrawalService) Resolve(requestId, adminId int, approve bool, comment string) (ResolveResult, error) {
	var result ResolveResult

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var request models.WithdrawalRequest
		if err := lockForUpdate(tx).First(&request, requestId).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRequestNotFound
			}
			return err
		}
		if request.Status != models.WithdrawalPending {
			return ErrAlreadyResolved
		}

		now := time.Now()
		request.ResolvedBy = &adminId
		request.ResolvedAt = &now
		request.Comment = comment

		if approve {
			request.Status = models.WithdrawalApproved
			if err := tx.Model(&models.LedgerEntry{}).
				Where("id = ?", request.LedgerEntryId).
				Update("status", models.EntryCompleted).Error; err != nil {
				return err
			}
			result.Message = fmt.Sprintf("Your withdrawal of £%s has been approved", request.Amount.StringFixed(2))
		} else {
			request.Status = models.WithdrawalDenied
			// The pending debit already reduced the balance, so flipping it
			// to failed must come with a matching credit.
			if err := tx.Model(&models.LedgerEntry{}).
				Where("id = ?", request.LedgerEntryId).
				Update("status", models.EntryFailed).Error; err != nil {
				return err
			}
			if _, err := s.Ledger.PostIn(tx, PostEntryData{
				AccountId:    request.AccountId,
				Kind:         models.EntryReversal,
				Amount:       request.Amount,
				Status:       models.EntryCompleted,
				Description:  fmt.Sprintf("Refund for denied withdrawal %s", request.WithdrawalCode),
				Reference:    fmt.Sprintf("reversal:%s", request.WithdrawalCode),
				WithdrawalId: &request.ID,
			}); err != nil {
				return err
			}
			result.Message = fmt.Sprintf("Your withdrawal of £%s was denied and the funds returned", request.Amount.StringFixed(2))
		}

		if err := tx.Save(&request).Error; err != nil {
			return err
		}

		audit := models.AuditLog{
			AdminId:  adminId,
			Action:   "withdrawal." + request.Status,
			TargetId: request.AccountId,
			Detail:   fmt.Sprintf("request %s for £%s: %s", request.WithdrawalCode, request.Amount.StringFixed(2), comment),
		}
		if err := tx.Create(&audit).Error; err != nil {
			return err
		}

		result.Request = request
		result.Approved = approve
		return nil
	})
	return result, err
}

type PendingRequestsDTO struct {
	Page  int
	Limit int
}

func (s *WithdrawalService) PendingRequests(data PendingRequestsDTO) (common.PaginationResult, error) {
	limit := data.Limit
	if limit <= 0 {
		limit = 10
	}
	page := data.Page
	if page < 1 {
		page = 1
	}

	query := s.DB.Model(&models.WithdrawalRequest{}).Where("status = ?", models.WithdrawalPending)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return common.PaginationResult{}, err
	}

	var requests []models.WithdrawalRequest
	if err := query.Order("created_at ASC").Limit(limit).Offset((page - 1) * limit).
		Find(&requests).Error; err != nil {
		return common.PaginationResult{}, err
	}
	return common.PaginateResponse(requests, total, page, limit, "Pending withdrawals fetched"), nil
}

// UserWithdrawals lists an account's own requests, newest first.
func (s *WithdrawalService) UserWithdrawals(accountId int) ([]models.WithdrawalRequest, error) {
	var requests []models.WithdrawalRequest
	err := s.DB.Where("account_id = ?", accountId).Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}

func (s *WithdrawalService) destinationFor(account *models.Account, method string) (string, string, error) {
	switch method {
	case models.MethodCrypto:
		if account.CryptoAddress == "" {
			return "", "", ErrMissingDestination
		}
		return account.CryptoAddress, account.CryptoNetwork, nil
	case models.MethodPaypal:
		if account.PaypalEmail == "" {
			return "", "", ErrMissingDestination
		}
		return account.PaypalEmail, "", nil
	case models.MethodStripe:
		if !account.PayoutConnected {
			return "", "", ErrMissingDestination
		}
		return "stripe", "", nil
	}
	return "", "", ErrMissingDestination
}

// cryptoVolume totals crypto requests that were not denied, the figure the
// unverified cap is enforced against.
func (s *WithdrawalService) cryptoVolume(accountId int) (decimal.Decimal, error) {
	total := decimal.Zero
	var requests []models.WithdrawalRequest
	err := s.DB.Where("account_id = ? AND method = ? AND status != ?",
		accountId, models.MethodCrypto, models.WithdrawalDenied).
		Find(&requests).Error
	if err != nil {
		return total, err
	}
	for _, r := range requests {
		total = total.Add(r.Amount)
	}
	return total, nil
}
