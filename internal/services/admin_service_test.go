package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"optivus-service/internal/models"
)

func newAdminStack(t *testing.T) (*gorm.DB, *AdminService) {
	db := newTestDB(t)
	seedTreasury(t, db)
	ledger := NewLedgerService(db)
	referral := NewReferralService(db)
	commission := NewCommissionService(db, ledger, referral, defaultSchedule(t))
	return db, NewAdminService(db, ledger, commission, NewAccountService(db))
}

func TestAdjustBalancePostsDelta(t *testing.T) {
	db, service := newAdminStack(t)
	account := createAccount(t, db, "holder")
	creditAccount(t, db, account.ID, "10.00")
	admin := createAccount(t, db, "admin", func(a *models.Account) { a.Role = models.RoleAdmin })

	entry, err := service.AdjustBalance(AdjustBalanceData{
		AdminId:   admin.ID,
		AccountId: account.ID,
		NewAmount: decimal.RequireFromString("25.00"),
		Reason:    "support credit",
	})
	require.NoError(t, err)
	assert.Equal(t, models.EntryAdjustment, entry.Kind)
	assert.True(t, entry.Amount.Equal(decimal.RequireFromString("15.00")))
	assert.Contains(t, entry.Description, "Admin adjustment from £10.00 to £25.00")
	assert.True(t, balanceOf(t, db, account.ID).Equal(decimal.RequireFromString("25.00")))

	// Adjusting down posts a negative delta.
	entry, err = service.AdjustBalance(AdjustBalanceData{
		AdminId:   admin.ID,
		AccountId: account.ID,
		NewAmount: decimal.RequireFromString("5.00"),
	})
	require.NoError(t, err)
	assert.True(t, entry.Amount.Equal(decimal.RequireFromString("-20.00")))
	assert.True(t, balanceOf(t, db, account.ID).Equal(decimal.RequireFromString("5.00")))

	// The ledger still derives the balance exactly.
	ledger := NewLedgerService(db)
	expected, err := ledger.ExpectedBalance(account.ID)
	require.NoError(t, err)
	assert.True(t, expected.Equal(balanceOf(t, db, account.ID)))
	assert.True(t, expected.Equal(decimal.RequireFromString("5.00")))

	var audits []models.AuditLog
	require.NoError(t, db.Where("admin_id = ?", admin.ID).Find(&audits).Error)
	assert.Len(t, audits, 2)
}

func TestAdjustBalanceRejectsNegativeTarget(t *testing.T) {
	db, service := newAdminStack(t)
	account := createAccount(t, db, "holder")

	_, err := service.AdjustBalance(AdjustBalanceData{
		AdminId:   1,
		AccountId: account.ID,
		NewAmount: decimal.RequireFromString("-1.00"),
	})
	assert.ErrorIs(t, err, ErrNegativeBalance)
}

func TestSetAccountStatus(t *testing.T) {
	db, service := newAdminStack(t)
	account := createAccount(t, db, "holder")
	admin := createAccount(t, db, "admin", func(a *models.Account) { a.Role = models.RoleAdmin })

	require.NoError(t, service.SetAccountStatus(admin.ID, account.ID, models.StatusFrozen))

	var reloaded models.Account
	require.NoError(t, db.First(&reloaded, account.ID).Error)
	assert.Equal(t, models.StatusFrozen, reloaded.Status)

	assert.Error(t, service.SetAccountStatus(admin.ID, account.ID, "banished"))
	assert.ErrorIs(t, service.SetAccountStatus(admin.ID, 999, models.StatusActive), ErrAccountNotFound)
}

func TestSetWithdrawalGate(t *testing.T) {
	db, service := newAdminStack(t)
	account := createAccount(t, db, "holder")
	admin := createAccount(t, db, "admin", func(a *models.Account) { a.Role = models.RoleAdmin })

	require.NoError(t, service.SetWithdrawalGate(admin.ID, account.ID, models.GatePaused))

	var reloaded models.Account
	require.NoError(t, db.First(&reloaded, account.ID).Error)
	assert.Equal(t, models.GatePaused, reloaded.WithdrawalGate)
}

func TestPlatformStats(t *testing.T) {
	db, service := newAdminStack(t)

	createAccount(t, db, "active1")
	createAccount(t, db, "active2")
	createAccount(t, db, "shadow", func(a *models.Account) { a.Activated = false })
	createAccount(t, db, "admin", func(a *models.Account) { a.Role = models.RoleAdmin })

	stats, err := service.Stats()
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.TotalAccounts)
	assert.EqualValues(t, 2, stats.ActivatedAccounts)
	assert.EqualValues(t, 0, stats.PendingWithdrawals)
}

func TestListAccountsSearch(t *testing.T) {
	db, service := newAdminStack(t)
	createAccount(t, db, "alpha")
	createAccount(t, db, "beta")

	result, err := service.ListAccounts(ListAccountsDTO{Search: "alph"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, result.Count)

	accounts, ok := result.Data.([]models.Account)
	require.True(t, ok)
	require.Len(t, accounts, 1)
	assert.Equal(t, "alpha", accounts[0].Username)
}

func TestAdminCreateAccount(t *testing.T) {
	db, service := newAdminStack(t)
	admin := createAccount(t, db, "admin", func(a *models.Account) { a.Role = models.RoleAdmin })

	account, err := service.CreateAccount(admin.ID, RegisterData{
		FirstName: "New",
		LastName:  "Member",
		Username:  "newmember",
		Email:     "newmember@optivus.test",
		Password:  "s3curePassword",
	})
	require.NoError(t, err)
	assert.False(t, account.Activated)
	assert.Nil(t, account.ReferralCode)

	var audit models.AuditLog
	require.NoError(t, db.Where("admin_id = ?", admin.ID).First(&audit).Error)
	assert.Equal(t, "account.created", audit.Action)
	assert.Equal(t, account.ID, audit.TargetId)

	// Same validation as self-registration.
	_, err = service.CreateAccount(admin.ID, RegisterData{
		Username: "x",
		Email:    "bad@optivus.test",
		Password: "s3curePassword",
	})
	assert.ErrorIs(t, err, ErrInvalidUsername)
}

func TestAccountDetail(t *testing.T) {
	db, service := newAdminStack(t)
	sponsor := createAccount(t, db, "sponsor")
	createAccount(t, db, "childone", withSponsor(sponsor.ID))
	createAccount(t, db, "childtwo", withSponsor(sponsor.ID))

	ledger := NewLedgerService(db)
	_, err := ledger.Post(PostEntryData{
		AccountId: sponsor.ID,
		Kind:      models.EntryCommission,
		Amount:    decimal.RequireFromString("30.00"),
		Status:    models.EntryCompleted,
		Reference: "detail:c1",
	})
	require.NoError(t, err)
	_, err = ledger.Post(PostEntryData{
		AccountId: sponsor.ID,
		Kind:      models.EntryWithdrawal,
		Amount:    decimal.RequireFromString("-10.00"),
		Status:    models.EntryCompleted,
		Reference: "detail:w1",
	})
	require.NoError(t, err)

	detail, err := service.AccountDetail(sponsor.ID)
	require.NoError(t, err)
	assert.Equal(t, sponsor.ID, detail.Account.ID)
	assert.EqualValues(t, 2, detail.DirectReferrals)
	assert.True(t, detail.ExpectedBalance.Equal(decimal.RequireFromString("20.00")))
	assert.True(t, detail.TotalWithdrawn.Equal(decimal.RequireFromString("10.00")))

	_, err = service.AccountDetail(99999)
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestListLedgerFilters(t *testing.T) {
	db, service := newAdminStack(t)
	account := createAccount(t, db, "holder")
	other := createAccount(t, db, "other")

	ledger := NewLedgerService(db)
	post := func(accountId int, kind, ref string) {
		_, err := ledger.Post(PostEntryData{
			AccountId: accountId,
			Kind:      kind,
			Amount:    decimal.RequireFromString("1.00"),
			Status:    models.EntryCompleted,
			Reference: ref,
		})
		require.NoError(t, err)
	}
	post(account.ID, models.EntryCommission, "c1")
	post(account.ID, models.EntryBonus, "b1")
	post(other.ID, models.EntryCommission, "c2")

	result, err := service.ListLedger(ListLedgerDTO{AccountId: account.ID, Kind: models.EntryCommission})
	require.NoError(t, err)
	assert.EqualValues(t, 1, result.Count)
}
