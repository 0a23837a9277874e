package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"optivus-service/internal/models"
)

func TestReconcileDetectsDrift(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerService(db)
	service := NewReconciliationService(db, ledger, 4)

	clean := createAccount(t, db, "clean")
	_, err := ledger.Post(PostEntryData{
		AccountId: clean.ID,
		Kind:      models.EntryCommission,
		Amount:    decimal.RequireFromString("20.00"),
		Status:    models.EntryCompleted,
		Reference: "c1",
	})
	require.NoError(t, err)

	mismatches, err := service.Reconcile()
	require.NoError(t, err)
	assert.Empty(t, mismatches)

	// Corrupt a balance behind the ledger's back.
	require.NoError(t, db.Model(&models.Account{}).Where("id = ?", clean.ID).
		Update("balance", decimal.RequireFromString("99.00")).Error)

	mismatches, err = service.Reconcile()
	require.NoError(t, err)
	require.Len(t, mismatches, 1)
	assert.Equal(t, clean.ID, mismatches[0].AccountId)
	assert.Equal(t, "99.00", mismatches[0].Stored)
	assert.Equal(t, "20.00", mismatches[0].Expected)
}

func TestReconcileIgnoresDeniedWithdrawals(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerService(db)
	service := NewReconciliationService(db, ledger, 4)
	withdrawals := NewWithdrawalService(db, ledger, decimal.RequireFromString("200.00"), false)

	account := createAccount(t, db, "holder", withPin(t, "123456"), withCryptoAddress("0xabc"))
	creditAccount(t, db, account.ID, "150.00")
	admin := createAccount(t, db, "admin", func(a *models.Account) { a.Role = models.RoleAdmin })

	request, err := withdrawals.Request(WithdrawalRequestData{
		AccountId: account.ID,
		Amount:    decimal.RequireFromString("60.00"),
		Method:    models.MethodCrypto,
		Pin:       "123456",
	})
	require.NoError(t, err)
	_, err = withdrawals.Resolve(request.ID, admin.ID, false, "address flagged")
	require.NoError(t, err)

	// The failed debit and its reversal cancel out, so the account must
	// not be flagged.
	mismatches, err := service.Reconcile()
	require.NoError(t, err)
	assert.Empty(t, mismatches)

	expected, err := ledger.ExpectedBalance(account.ID)
	require.NoError(t, err)
	assert.True(t, expected.Equal(decimal.RequireFromString("150.00")))
}

func TestArchiveLedgerMovesSettledHistory(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerService(db)
	service := NewReconciliationService(db, ledger, 4)

	account := createAccount(t, db, "holder")
	post := func(status, ref string) models.LedgerEntry {
		entry, err := ledger.Post(PostEntryData{
			AccountId: account.ID,
			Kind:      models.EntryCommission,
			Amount:    decimal.RequireFromString("10.00"),
			Status:    status,
			Reference: ref,
		})
		require.NoError(t, err)
		return entry
	}
	oldCompleted := post(models.EntryCompleted, "old-completed")
	oldPending := post(models.EntryPending, "old-pending")
	post(models.EntryCompleted, "fresh")

	// Age two of the entries past the retention window.
	stale := time.Now().AddDate(0, -5, 0)
	for _, id := range []int{oldCompleted.ID, oldPending.ID} {
		require.NoError(t, db.Model(&models.LedgerEntry{}).Where("id = ?", id).
			Update("created_at", stale).Error)
	}

	service.ArchiveLedger()

	// The settled old entry moved; the pending one and the fresh one stayed.
	var live []models.LedgerEntry
	require.NoError(t, db.Order("id").Find(&live).Error)
	require.Len(t, live, 2)
	assert.Equal(t, "old-pending", live[0].Reference)
	assert.Equal(t, "fresh", live[1].Reference)

	var archived []models.ArchivedLedgerEntry
	require.NoError(t, db.Find(&archived).Error)
	require.Len(t, archived, 1)
	assert.Equal(t, "old-completed", archived[0].Reference)

	// Archived history still counts toward the derived balance.
	expected, err := ledger.ExpectedBalance(account.ID)
	require.NoError(t, err)
	assert.True(t, expected.Equal(balanceOf(t, db, account.ID)))

	// And its reference still blocks replays.
	_, err = ledger.Post(PostEntryData{
		AccountId: account.ID,
		Kind:      models.EntryCommission,
		Amount:    decimal.RequireFromString("10.00"),
		Status:    models.EntryCompleted,
		Reference: "old-completed",
	})
	assert.ErrorIs(t, err, ErrDuplicateEntry)
}
