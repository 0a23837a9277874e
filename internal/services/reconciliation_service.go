package services

import (
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"optivus-service/internal/models"
)

// ReconciliationService runs the nightly ledger jobs: checking every
// materialized balance against the ledger and moving settled history into
// the archive table.
type ReconciliationService struct {
	DB              *gorm.DB
	Ledger          *LedgerService
	RetentionMonths int
}

func NewReconciliationService(db *gorm.DB, ledger *LedgerService, retentionMonths int) *ReconciliationService {
	return &ReconciliationService{DB: db, Ledger: ledger, RetentionMonths: retentionMonths}
}

type BalanceMismatch struct {
	AccountId int
	Stored    string
	Expected  string
}

// Reconcile recomputes each balance from the ledger and reports accounts
// whose stored balance drifted. It never corrects anything itself, a
// mismatch means a bug that has to be looked at.
func (s *ReconciliationService) Reconcile() ([]BalanceMismatch, error) {
	var accounts []models.Account
	if err := s.DB.Find(&accounts).Error; err != nil {
		return nil, err
	}

	var mismatches []BalanceMismatch
	for _, account := range accounts {
		expected, err := s.Ledger.ExpectedBalance(account.ID)
		if err != nil {
			return mismatches, fmt.Errorf("reconcile account %d: %w", account.ID, err)
		}
		if !expected.Equal(account.Balance) {
			mismatch := BalanceMismatch{
				AccountId: account.ID,
				Stored:    account.Balance.StringFixed(2),
				Expected:  expected.StringFixed(2),
			}
			mismatches = append(mismatches, mismatch)
			log.Printf("Balance mismatch on account %d: stored %s, ledger says %s",
				mismatch.AccountId, mismatch.Stored, mismatch.Expected)
		}
	}
	return mismatches, nil
}

// ArchiveLedger moves settled entries older than the retention window into
// the archive table. Pending entries stay in the hot table however old they
// are; an open withdrawal must keep its ledger row where Resolve can flip it.
func (s *ReconciliationService) ArchiveLedger() {
	log.Println("Starting ledger archive process...")

	cutoff := time.Now().AddDate(0, -s.RetentionMonths, 0)

	var oldEntries []models.LedgerEntry
	if err := s.DB.Where("created_at < ? AND status != ?", cutoff, models.EntryPending).
		Find(&oldEntries).Error; err != nil {
		log.Printf("Error finding old ledger entries: %v", err)
		return
	}
	if len(oldEntries) == 0 {
		log.Println("No ledger entries to archive")
		return
	}

	archived := make([]models.ArchivedLedgerEntry, 0, len(oldEntries))
	for _, e := range oldEntries {
		archived = append(archived, models.ArchivedLedgerEntry{
			AccountId:    e.AccountId,
			Kind:         e.Kind,
			Amount:       e.Amount,
			Status:       e.Status,
			Description:  e.Description,
			Reference:    e.Reference,
			TierLevel:    e.TierLevel,
			WithdrawalId: e.WithdrawalId,
			CreatedAt:    e.CreatedAt,
			UpdatedAt:    e.UpdatedAt,
		})
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&archived).Error; err != nil {
			return err
		}
		ids := make([]int, len(oldEntries))
		for i, e := range oldEntries {
			ids[i] = e.ID
		}
		return tx.Delete(&models.LedgerEntry{}, ids).Error
	})
	if err != nil {
		log.Printf("Error during ledger archiving: %v", err)
	} else {
		log.Printf("Archived and removed %d ledger entries.", len(oldEntries))
	}
}

// StartScheduler runs the archive at midnight and the reconciliation sweep
// at 03:00 every day.
func (s *ReconciliationService) StartScheduler() {
	c := cron.New()
	if _, err := c.AddFunc("0 0 * * *", func() {
		log.Println("Running scheduled ledger archive task...")
		s.ArchiveLedger()
	}); err != nil {
		log.Printf("Error scheduling archive task: %v", err)
		return
	}
	if _, err := c.AddFunc("0 3 * * *", func() {
		log.Println("Running scheduled balance reconciliation...")
		if _, err := s.Reconcile(); err != nil {
			log.Printf("Error in reconciliation: %v", err)
		}
	}); err != nil {
		log.Printf("Error scheduling reconciliation task: %v", err)
		return
	}
	c.Start()
	log.Println("Ledger scheduler started")
}
