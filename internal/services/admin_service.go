package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"optivus-service/internal/models"
	"optivus-service/pkg/common"
)

type AdminService struct {
	DB         *gorm.DB
	Ledger     *LedgerService
	Commission *CommissionService
	Accounts   *AccountService
}

func NewAdminService(db *gorm.DB, ledger *LedgerService, commission *CommissionService, accounts *AccountService) *AdminService {
	return &AdminService{DB: db, Ledger: ledger, Commission: commission, Accounts: accounts}
}

// CreateAccount registers an account on behalf of an admin. The account
// goes through the same validation and starts inactive, exactly as a
// self-registered one would.
func (s *AdminService) CreateAccount(adminId int, data RegisterData) (models.Account, error) {
	account, err := s.Accounts.Register(data)
	if err != nil {
		return account, err
	}

	audit := models.AuditLog{
		AdminId:  adminId,
		Action:   "account.created",
		TargetId: account.ID,
		Detail:   fmt.Sprintf("created account %s", account.Username),
	}
	if err := s.DB.Create(&audit).Error; err != nil {
		return account, err
	}
	return account, nil
}

type AdjustBalanceData struct {
	AdminId   int
	AccountId int
	NewAmount decimal.Decimal
	Reason    string
}

// AdjustBalance sets an account balance to an absolute figure by posting an
// adjustment entry for the difference. The ledger stays the source of
// truth; the balance is never edited directly.
func (s *AdminService) AdjustBalance(data AdjustBalanceData) (models.LedgerEntry, error) {
	var entry models.LedgerEntry

	if data.NewAmount.IsNegative() {
		return entry, ErrNegativeBalance
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var account models.Account
		if err := lockForUpdate(tx).First(&account, data.AccountId).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAccountNotFound
			}
			return err
		}

		delta := data.NewAmount.Sub(account.Balance)
		if delta.IsZero() {
			return nil
		}

		description := fmt.Sprintf("Admin adjustment from £%s to £%s",
			account.Balance.StringFixed(2), data.NewAmount.StringFixed(2))
		if data.Reason != "" {
			description += ": " + data.Reason
		}

		var err error
		entry, err = s.Ledger.PostIn(tx, PostEntryData{
			AccountId:   data.AccountId,
			Kind:        models.EntryAdjustment,
			Amount:      delta,
			Status:      models.EntryCompleted,
			Description: description,
			Reference:   fmt.Sprintf("adjustment:%s", uuid.NewString()),
		})
		if err != nil {
			return err
		}

		audit := models.AuditLog{
			AdminId:  data.AdminId,
			Action:   "account.balance_adjusted",
			TargetId: data.AccountId,
			Detail:   description,
		}
		return tx.Create(&audit).Error
	})
	return entry, err
}

// SetAccountStatus freezes or unfreezes an account. Frozen accounts cannot
// log in; their ledger rows stay untouched.
func (s *AdminService) SetAccountStatus(adminId, accountId int, status string) error {
	if status != models.StatusActive && status != models.StatusFrozen {
		return fmt.Errorf("unknown account status %q", status)
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Account{}).Where("id = ?", accountId).
			Update("status", status)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrAccountNotFound
		}
		audit := models.AuditLog{
			AdminId:  adminId,
			Action:   "account.status_changed",
			TargetId: accountId,
			Detail:   status,
		}
		return tx.Create(&audit).Error
	})
}

// SetWithdrawalGate pauses or resumes withdrawals for one account.
func (s *AdminService) SetWithdrawalGate(adminId, accountId int, gate string) error {
	if gate != models.GateActive && gate != models.GatePaused {
		return fmt.Errorf("unknown withdrawal gate %q", gate)
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Account{}).Where("id = ?", accountId).
			Update("withdrawal_gate", gate)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrAccountNotFound
		}
		audit := models.AuditLog{
			AdminId:  adminId,
			Action:   "account.withdrawal_gate",
			TargetId: accountId,
			Detail:   gate,
		}
		return tx.Create(&audit).Error
	})
}

type PlatformStats struct {
	TotalAccounts      int64           `json:"totalAccounts"`
	ActivatedAccounts  int64           `json:"activatedAccounts"`
	TotalDistributed   decimal.Decimal `json:"totalDistributed"`
	PendingWithdrawals int64           `json:"pendingWithdrawals"`
	PendingKyc         int64           `json:"pendingKyc"`
	TreasuryBalance    decimal.Decimal `json:"treasuryBalance"`
}

func (s *AdminService) Stats() (PlatformStats, error) {
	var stats PlatformStats

	if err := s.DB.Model(&models.Account{}).Where("role = ?", models.RoleUser).
		Count(&stats.TotalAccounts).Error; err != nil {
		return stats, err
	}
	if err := s.DB.Model(&models.Account{}).
		Where("role = ? AND activated = ?", models.RoleUser, true).
		Count(&stats.ActivatedAccounts).Error; err != nil {
		return stats, err
	}
	if err := s.DB.Model(&models.WithdrawalRequest{}).
		Where("status = ?", models.WithdrawalPending).
		Count(&stats.PendingWithdrawals).Error; err != nil {
		return stats, err
	}
	if err := s.DB.Model(&models.KycSubmission{}).
		Count(&stats.PendingKyc).Error; err != nil {
		return stats, err
	}

	distributed, err := s.Commission.TotalDistributed()
	if err != nil {
		return stats, err
	}
	stats.TotalDistributed = distributed

	treasury, err := s.Commission.treasuryAccount()
	if err != nil && !errors.Is(err, ErrAccountNotFound) {
		return stats, err
	}
	stats.TreasuryBalance = treasury.Balance
	return stats, nil
}

type AccountDetail struct {
	Account         models.Account  `json:"account"`
	DirectReferrals int64           `json:"directReferrals"`
	ExpectedBalance decimal.Decimal `json:"expectedBalance"`
	TotalWithdrawn  decimal.Decimal `json:"totalWithdrawn"`
}

func (s *AdminService) AccountDetail(accountId int) (AccountDetail, error) {
	var detail AccountDetail

	if err := s.DB.First(&detail.Account, accountId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return detail, ErrAccountNotFound
		}
		return detail, err
	}

	if err := s.DB.Model(&models.Account{}).
		Where("sponsor_id = ?", accountId).
		Count(&detail.DirectReferrals).Error; err != nil {
		return detail, err
	}

	expected, err := s.Ledger.ExpectedBalance(accountId)
	if err != nil {
		return detail, err
	}
	detail.ExpectedBalance = expected

	withdrawn, err := s.Ledger.SumCompleted(accountId, models.EntryWithdrawal)
	if err != nil {
		return detail, err
	}
	detail.TotalWithdrawn = withdrawn.Abs()
	return detail, nil
}

type ListAccountsDTO struct {
	Page   int
	Limit  int
	Search string
	Status string
}

func (s *AdminService) ListAccounts(data ListAccountsDTO) (common.PaginationResult, error) {
	limit := data.Limit
	if limit <= 0 {
		limit = 20
	}
	page := data.Page
	if page < 1 {
		page = 1
	}

	query := s.DB.Model(&models.Account{}).Where("role = ?", models.RoleUser)
	if data.Search != "" {
		like := "%" + data.Search + "%"
		query = query.Where("username LIKE ? OR email LIKE ?", like, like)
	}
	if data.Status != "" {
		query = query.Where("status = ?", data.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return common.PaginationResult{}, err
	}

	var accounts []models.Account
	if err := query.Order("created_at DESC").Limit(limit).Offset((page - 1) * limit).
		Find(&accounts).Error; err != nil {
		return common.PaginationResult{}, err
	}
	return common.PaginateResponse(accounts, total, page, limit, "Accounts fetched"), nil
}

type ListLedgerDTO struct {
	Page      int
	Limit     int
	AccountId int
	Kind      string
}

func (s *AdminService) ListLedger(data ListLedgerDTO) (common.PaginationResult, error) {
	limit := data.Limit
	if limit <= 0 {
		limit = 20
	}
	page := data.Page
	if page < 1 {
		page = 1
	}

	query := s.DB.Model(&models.LedgerEntry{})
	if data.AccountId > 0 {
		query = query.Where("account_id = ?", data.AccountId)
	}
	if data.Kind != "" {
		query = query.Where("kind = ?", data.Kind)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return common.PaginationResult{}, err
	}

	var entries []models.LedgerEntry
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Offset((page - 1) * limit).
		Find(&entries).Error; err != nil {
		return common.PaginationResult{}, err
	}
	return common.PaginateResponse(entries, total, page, limit, "Ledger entries fetched"), nil
}

// AuditTrail pages through admin actions, newest first.
func (s *AdminService) AuditTrail(page, limit int) (common.PaginationResult, error) {
	if limit <= 0 {
		limit = 20
	}
	if page < 1 {
		page = 1
	}

	var total int64
	if err := s.DB.Model(&models.AuditLog{}).Count(&total).Error; err != nil {
		return common.PaginationResult{}, err
	}

	var logs []models.AuditLog
	if err := s.DB.Order("created_at DESC").Limit(limit).Offset((page - 1) * limit).
		Find(&logs).Error; err != nil {
		return common.PaginationResult{}, err
	}
	return common.PaginateResponse(logs, total, page, limit, "Audit trail fetched"), nil
}
