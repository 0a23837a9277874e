package services

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"optivus-service/internal/models"
	"optivus-service/pkg/common"
)

type DashboardService struct {
	DB       *gorm.DB
	Ledger   *LedgerService
	Referral *ReferralService
}

func NewDashboardService(db *gorm.DB, ledger *LedgerService, referral *ReferralService) *DashboardService {
	return &DashboardService{DB: db, Ledger: ledger, Referral: referral}
}

type DashboardStats struct {
	Balance         decimal.Decimal `json:"balance"`
	TotalEarnings   decimal.Decimal `json:"totalEarnings"`
	DirectReferrals int64           `json:"directReferrals"`
	TeamSize        int64           `json:"teamSize"`
	ReferralCode    string          `json:"referralCode"`
	KycStatus       string          `json:"kycStatus"`
	Activated       bool            `json:"activated"`
}

// Stats assembles the headline dashboard figures. Earnings count completed
// commission and bonus credits only, never pending or reversed amounts.
func (s *DashboardService) Stats(accountId int) (DashboardStats, error) {
	var stats DashboardStats

	var account models.Account
	if err := s.DB.First(&account, accountId).Error; err != nil {
		return stats, ErrAccountNotFound
	}

	earnings, err := s.Ledger.SumCompleted(accountId, models.EntryCommission, models.EntryBonus)
	if err != nil {
		return stats, err
	}
	direct, err := s.Referral.DirectReferralCount(accountId)
	if err != nil {
		return stats, err
	}
	team, err := s.Referral.TeamSize(accountId)
	if err != nil {
		return stats, err
	}

	stats.Balance = account.Balance
	stats.TotalEarnings = earnings
	stats.DirectReferrals = direct
	stats.TeamSize = team
	if account.ReferralCode != nil {
		stats.ReferralCode = *account.ReferralCode
	}
	stats.KycStatus = account.KycStatus
	stats.Activated = account.Activated
	return stats, nil
}

// Team returns the downline tree up to the commission depth.
func (s *DashboardService) Team(accountId, maxDepth int) (*TreeNode, error) {
	return s.Referral.DescendantTree(accountId, maxDepth)
}

// Downline returns the per-level counts and earnings.
func (s *DashboardService) Downline(accountId, maxDepth int) ([]DownlineLevel, error) {
	return s.Referral.DownlineByLevel(accountId, maxDepth)
}

// Transactions pages through the account's ledger history.
func (s *DashboardService) Transactions(accountId, page, limit int) (common.PaginationResult, error) {
	return s.Ledger.AccountEntries(AccountEntriesDTO{
		AccountId: accountId,
		Page:      page,
		Limit:     limit,
	})
}
