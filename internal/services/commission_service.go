package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"optivus-service/internal/models"
	"optivus-service/pkg/common"
)

// TierSchedule holds the per-level commission amounts paid out of one entry
// fee. Amounts are fixed at construction so every distribution of the same
// fee pays identical figures.
type TierSchedule struct {
	Fee     decimal.Decimal
	Amounts []decimal.Decimal // index 0 = level 1
}

// NewTierSchedule derives level amounts from a first-level percentage and a
// decay factor: level n pays fee * percent * decay^(n-1), rounded to pence.
// Schedules whose levels sum past the fee are rejected, the platform can
// never pay out more than it took in.
func NewTierSchedule(fee, firstPercent, decay decimal.Decimal, levels int) (TierSchedule, error) {
	if levels <= 0 || !fee.IsPositive() {
		return TierSchedule{}, ErrInvalidTierSchedule
	}

	amounts := make([]decimal.Decimal, levels)
	rate := firstPercent
	total := decimal.Zero
	for i := 0; i < levels; i++ {
		amount := fee.Mul(rate).Round(2)
		if amount.IsNegative() {
			return TierSchedule{}, ErrInvalidTierSchedule
		}
		amounts[i] = amount
		total = total.Add(amount)
		rate = rate.Mul(decay)
	}
	if total.GreaterThan(fee) {
		return TierSchedule{}, ErrInvalidTierSchedule
	}

	return TierSchedule{Fee: fee, Amounts: amounts}, nil
}

func (t TierSchedule) Levels() int {
	return len(t.Amounts)
}

// AmountFor returns the payout for a level, or zero beyond the last level.
func (t TierSchedule) AmountFor(level int) decimal.Decimal {
	if level < 1 || level > len(t.Amounts) {
		return decimal.Zero
	}
	return t.Amounts[level-1]
}

// CommissionService turns confirmed entry fee payments into commission
// payouts along the payer's sponsor chain.
type CommissionService struct {
	DB       *gorm.DB
	Ledger   *LedgerService
	Referral *ReferralService
	Schedule TierSchedule
}

func NewCommissionService(db *gorm.DB, ledger *LedgerService, referral *ReferralService, schedule TierSchedule) *CommissionService {
	return &CommissionService{DB: db, Ledger: ledger, Referral: referral, Schedule: schedule}
}

type PaymentEventData struct {
	EventId   string
	AccountId int
	Amount    decimal.Decimal
}

// ProcessPaymentEvent records a confirmed entry fee payment and activates
// the paying account. Each event id is accepted exactly once; replays fail
// with ErrDuplicatePaymentEvent before any state changes.
func (s *CommissionService) ProcessPaymentEvent(data PaymentEventData) error {
	if !data.Amount.Equal(s.Schedule.Fee) {
		return ErrUnexpectedFeeAmount
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		var existing models.PaymentEvent
		if err := tx.Where("event_id = ?", data.EventId).First(&existing).Error; err == nil {
			return ErrDuplicatePaymentEvent
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		var account models.Account
		if err := lockForUpdate(tx).First(&account, data.AccountId).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAccountNotFound
			}
			return err
		}

		event := models.PaymentEvent{
			EventId:   data.EventId,
			AccountId: data.AccountId,
			Amount:    data.Amount,
		}
		if err := tx.Create(&event).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{"activated": true}
		if account.ReferralCode == nil {
			code, err := s.mintReferralCode(tx, account.Username)
			if err != nil {
				return err
			}
			updates["referral_code"] = code
		}
		if err := tx.Model(&models.Account{}).Where("id = ?", account.ID).
			Updates(updates).Error; err != nil {
			return err
		}

		if account.SponsorId != nil {
			edge := models.ReferralEdge{ChildId: account.ID, SponsorId: *account.SponsorId}
			if err := tx.Create(&edge).Error; err != nil {
				if !isDuplicateKey(err) {
					return err
				}
			}
		}
		return nil
	})
}

// Distribute pays the tier schedule for one payment event: one commission
// credit per ancestor, the remainder of the fee swept to the treasury. Each
// payout is its own transaction keyed by "eventId:recipient", so a crashed
// or retried run pays every recipient exactly once.
func (s *CommissionService) Distribute(eventId string) error {
	var event models.PaymentEvent
	if err := s.DB.Where("event_id = ?", eventId).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPaymentEventNotFound
		}
		return err
	}

	var payer models.Account
	if err := s.DB.First(&payer, event.AccountId).Error; err != nil {
		return err
	}

	chain, err := s.Referral.AncestorChain(event.AccountId, s.Schedule.Levels())
	if err != nil {
		return err
	}

	credited := decimal.Zero
	for _, ancestor := range chain {
		amount := s.Schedule.AmountFor(ancestor.Level)
		if amount.IsZero() {
			continue
		}
		_, err := s.Ledger.Post(PostEntryData{
			AccountId:   ancestor.AccountId,
			Kind:        models.EntryCommission,
			Amount:      amount,
			Status:      models.EntryCompleted,
			Description: fmt.Sprintf("Level %d commission from %s", ancestor.Level, payer.Username),
			Reference:   fmt.Sprintf("%s:%d", eventId, ancestor.AccountId),
			TierLevel:   ancestor.Level,
		})
		if err != nil && !errors.Is(err, ErrDuplicateEntry) {
			return err
		}
		credited = credited.Add(amount)
	}

	treasury, err := s.treasuryAccount()
	if err != nil {
		return err
	}
	remainder := s.Schedule.Fee.Sub(credited)
	_, err = s.Ledger.Post(PostEntryData{
		AccountId:   treasury.ID,
		Kind:        models.EntryFee,
		Amount:      remainder,
		Status:      models.EntryCompleted,
		Description: fmt.Sprintf("Entry fee remainder from %s", payer.Username),
		Reference:   fmt.Sprintf("%s:treasury", eventId),
	})
	if err != nil && !errors.Is(err, ErrDuplicateEntry) {
		return err
	}
	return nil
}

// TotalDistributed sums all completed commission credits across the platform.
func (s *CommissionService) TotalDistributed() (decimal.Decimal, error) {
	total := decimal.Zero
	var entries []models.LedgerEntry
	if err := s.DB.Where("kind = ? AND status = ?", models.EntryCommission, models.EntryCompleted).
		Find(&entries).Error; err != nil {
		return total, err
	}
	for _, e := range entries {
		total = total.Add(e.Amount)
	}
	return total, nil
}

func (s *CommissionService) treasuryAccount() (models.Account, error) {
	var treasury models.Account
	err := s.DB.Where("role = ?", models.RoleTreasury).First(&treasury).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return treasury, ErrAccountNotFound
	}
	return treasury, err
}

func (s *CommissionService) mintReferralCode(tx *gorm.DB, username string) (string, error) {
	for attempt := 0; attempt < 10; attempt++ {
		code := common.GenerateReferralCode(username)
		var count int64
		if err := tx.Model(&models.Account{}).Where("referral_code = ?", code).
			Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return code, nil
		}
	}
	return "", fmt.Errorf("could not mint a unique referral code for %s", username)
}

// isDuplicateKey matches unique constraint violations across mysql and sqlite.
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique")
}
