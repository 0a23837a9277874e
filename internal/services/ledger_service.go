package services

import (
	"errors"

	"optivus-service/internal/models"
	"optivus-service/pkg/common"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LedgerService owns every balance mutation. An entry and the matching
// balance update are written inside one transaction holding a row lock on
// the account, so balances can never drift from the ledger and operations
// on a single account are serialized.
type LedgerService struct {
	DB *gorm.DB
}

func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{DB: db}
}

// lockForUpdate applies a row lock where the dialect supports one. sqlite
// has no SELECT ... FOR UPDATE; its single-writer model serializes writes.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

type PostEntryData struct {
	AccountId    int
	Kind         string
	Amount       decimal.Decimal // signed: credits positive, debits negative
	Status       string
	Description  string
	Reference    string
	TierLevel    int
	WithdrawalId *int
}

// Post appends a ledger entry and applies its amount to the account balance.
// Pending and Completed entries both affect the balance (a Pending
// withdrawal reserves its funds); Failed entries never do. Duplicate
// references fail with ErrDuplicateEntry and leave no state change, which is
// what makes commission retries idempotent.
func (s *LedgerService) Post(data PostEntryData) (models.LedgerEntry, error) {
	var entry models.LedgerEntry
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		entry, err = s.PostIn(tx, data)
		return err
	})
	return entry, err
}

// PostIn is Post running inside a caller-owned transaction, for callers that
// need the entry committed atomically with rows of their own.
func (s *LedgerService) PostIn(tx *gorm.DB, data PostEntryData) (models.LedgerEntry, error) {
	var existing models.LedgerEntry
	if err := tx.Where("reference = ?", data.Reference).First(&existing).Error; err == nil {
		return existing, ErrDuplicateEntry
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.LedgerEntry{}, err
	}
	var archived models.ArchivedLedgerEntry
	if err := tx.Where("reference = ?", data.Reference).First(&archived).Error; err == nil {
		return models.LedgerEntry{}, ErrDuplicateEntry
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.LedgerEntry{}, err
	}

	var account models.Account
	if err := lockForUpdate(tx).
		First(&account, data.AccountId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.LedgerEntry{}, ErrAccountNotFound
		}
		return models.LedgerEntry{}, err
	}

	newBalance := account.Balance
	if data.Status != models.EntryFailed {
		newBalance = account.Balance.Add(data.Amount)
		if newBalance.IsNegative() {
			return models.LedgerEntry{}, ErrInsufficientBalance
		}
	}

	entry := models.LedgerEntry{
		AccountId:    data.AccountId,
		Kind:         data.Kind,
		Amount:       data.Amount,
		Status:       data.Status,
		Description:  data.Description,
		Reference:    data.Reference,
		TierLevel:    data.TierLevel,
		WithdrawalId: data.WithdrawalId,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return models.LedgerEntry{}, err
	}

	if err := tx.Model(&models.Account{}).
		Where("id = ?", data.AccountId).
		Update("balance", newBalance).Error; err != nil {
		return models.LedgerEntry{}, err
	}
	return entry, nil
}

// ExpectedBalance derives an account balance from the ledger, live and
// archived. Entries count unless Failed, with one exception: a denied
// withdrawal leaves a Failed debit next to a Completed reversal of equal
// size, and that pair must net to zero, so a Failed debit counts whenever
// its reversal exists. Summed in Go with decimals so the result is exact
// on every driver.
func (s *LedgerService) ExpectedBalance(accountId int) (decimal.Decimal, error) {
	total := decimal.Zero

	var entries []models.LedgerEntry
	if err := s.DB.Where("account_id = ?", accountId).
		Find(&entries).Error; err != nil {
		return total, err
	}
	var archived []models.ArchivedLedgerEntry
	if err := s.DB.Where("account_id = ?", accountId).
		Find(&archived).Error; err != nil {
		return total, err
	}

	reversed := make(map[int]bool)
	note := func(kind string, withdrawalId *int) {
		if kind == models.EntryReversal && withdrawalId != nil {
			reversed[*withdrawalId] = true
		}
	}
	for _, e := range entries {
		note(e.Kind, e.WithdrawalId)
	}
	for _, e := range archived {
		note(e.Kind, e.WithdrawalId)
	}

	counts := func(kind, status string, withdrawalId *int) bool {
		if status != models.EntryFailed {
			return true
		}
		return kind == models.EntryWithdrawal && withdrawalId != nil && reversed[*withdrawalId]
	}
	for _, e := range entries {
		if counts(e.Kind, e.Status, e.WithdrawalId) {
			total = total.Add(e.Amount)
		}
	}
	for _, e := range archived {
		if counts(e.Kind, e.Status, e.WithdrawalId) {
			total = total.Add(e.Amount)
		}
	}
	return total, nil
}

// SumCompleted totals Completed entries of the given kinds for one account.
func (s *LedgerService) SumCompleted(accountId int, kinds ...string) (decimal.Decimal, error) {
	total := decimal.Zero

	query := s.DB.Where("account_id = ? AND status = ?", accountId, models.EntryCompleted)
	if len(kinds) > 0 {
		query = query.Where("kind IN ?", kinds)
	}

	var entries []models.LedgerEntry
	if err := query.Find(&entries).Error; err != nil {
		return total, err
	}
	for _, e := range entries {
		total = total.Add(e.Amount)
	}
	return total, nil
}

type AccountEntriesDTO struct {
	AccountId int
	Page      int
	Limit     int
}

func (s *LedgerService) AccountEntries(data AccountEntriesDTO) (common.PaginationResult, error) {
	limit := data.Limit
	if limit <= 0 {
		limit = 10
	}
	page := data.Page
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	query := s.DB.Model(&models.LedgerEntry{}).Where("account_id = ?", data.AccountId)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return common.PaginationResult{}, err
	}

	var entries []models.LedgerEntry
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Offset(offset).
		Find(&entries).Error; err != nil {
		return common.PaginationResult{}, err
	}

	return common.PaginateResponse(entries, total, page, limit, "Transactions fetched"), nil
}
