package services

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"optivus-service/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.Account{},
		&models.ReferralEdge{},
		&models.LedgerEntry{},
		&models.ArchivedLedgerEntry{},
		&models.WithdrawalRequest{},
		&models.KycSubmission{},
		&models.PaymentEvent{},
		&models.AuditLog{},
	)
	require.NoError(t, err)
	return db
}

func seedTreasury(t *testing.T, db *gorm.DB) models.Account {
	t.Helper()

	code := "OPTIVUS"
	treasury := models.Account{
		Username:     "treasury",
		Email:        "treasury@optivus.test",
		Role:         models.RoleTreasury,
		Status:       models.StatusActive,
		Activated:    true,
		ReferralCode: &code,
	}
	require.NoError(t, db.Create(&treasury).Error)
	return treasury
}

type accountOpt func(*models.Account)

func withSponsor(sponsorId int) accountOpt {
	return func(a *models.Account) { a.SponsorId = &sponsorId }
}

func withBalance(amount string) accountOpt {
	return func(a *models.Account) { a.Balance = decimal.RequireFromString(amount) }
}

func withPin(t *testing.T, pin string) accountOpt {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.MinCost)
	require.NoError(t, err)
	return func(a *models.Account) { a.PinHash = string(hash) }
}

func withKyc(status string) accountOpt {
	return func(a *models.Account) { a.KycStatus = status }
}

func withCryptoAddress(address string) accountOpt {
	return func(a *models.Account) {
		a.CryptoAddress = address
		a.CryptoNetwork = "ERC20"
	}
}

func createAccount(t *testing.T, db *gorm.DB, username string, opts ...accountOpt) models.Account {
	t.Helper()

	code := "REF" + username
	account := models.Account{
		Username:     username,
		Email:        username + "@optivus.test",
		Role:         models.RoleUser,
		Status:       models.StatusActive,
		Activated:    true,
		KycStatus:    models.KycUnverified,
		ReferralCode: &code,
	}
	for _, opt := range opts {
		opt(&account)
	}
	require.NoError(t, db.Create(&account).Error)

	// Activation freezes the sponsor link into an edge, so fixtures that
	// build activated accounts write it too.
	if account.SponsorId != nil && account.Activated {
		edge := models.ReferralEdge{ChildId: account.ID, SponsorId: *account.SponsorId}
		require.NoError(t, db.Create(&edge).Error)
	}
	return account
}

func inactive() accountOpt {
	return func(a *models.Account) { a.Activated = false }
}

// defaultSchedule is the production tier table: 40% of a £50 fee at level
// one, halved per level below, six levels deep.
func defaultSchedule(t *testing.T) TierSchedule {
	t.Helper()
	schedule, err := NewTierSchedule(
		decimal.RequireFromString("50.00"),
		decimal.RequireFromString("0.40"),
		decimal.RequireFromString("0.50"),
		6,
	)
	require.NoError(t, err)
	return schedule
}

// creditAccount funds an account through the ledger so the stored balance
// stays derivable from entries.
func creditAccount(t *testing.T, db *gorm.DB, accountId int, amount string) {
	t.Helper()
	ledger := NewLedgerService(db)
	_, err := ledger.Post(PostEntryData{
		AccountId:   accountId,
		Kind:        models.EntryBonus,
		Amount:      decimal.RequireFromString(amount),
		Status:      models.EntryCompleted,
		Description: "Test credit",
		Reference:   fmt.Sprintf("credit:%d:%s", accountId, amount),
	})
	require.NoError(t, err)
}

func balanceOf(t *testing.T, db *gorm.DB, accountId int) decimal.Decimal {
	t.Helper()
	var account models.Account
	require.NoError(t, db.First(&account, accountId).Error)
	return account.Balance
}
