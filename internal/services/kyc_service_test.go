package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"optivus-service/internal/models"
)

func TestKycSubmitRequiresDocument(t *testing.T) {
	db := newTestDB(t)
	service := NewKycService(db)
	account := createAccount(t, db, "holder", withCryptoAddress("0xabc"))

	err := service.Submit(KycSubmissionData{AccountId: account.ID})
	assert.ErrorIs(t, err, ErrMissingDocument)
}

func TestKycSubmitRequiresPayoutMethod(t *testing.T) {
	db := newTestDB(t)
	service := NewKycService(db)
	account := createAccount(t, db, "holder")

	err := service.Submit(KycSubmissionData{
		AccountId:   account.ID,
		Address:     "1 High Street",
		City:        "London",
		PostalCode:  "N1 1AA",
		Country:     "GB",
		DocumentUrl: "https://docs.optivus.test/passport.jpg",
	})
	assert.ErrorIs(t, err, ErrPayoutMethodRequired)
}

func TestKycSubmitQueuesReview(t *testing.T) {
	db := newTestDB(t)
	service := NewKycService(db)
	account := createAccount(t, db, "holder", withCryptoAddress("0xabc"))

	err := service.Submit(KycSubmissionData{
		AccountId:   account.ID,
		Address:     "1 High Street",
		City:        "London",
		PostalCode:  "N1 1AA",
		Country:     "GB",
		DocumentUrl: "https://docs.optivus.test/passport.jpg",
	})
	require.NoError(t, err)

	var reloaded models.Account
	require.NoError(t, db.First(&reloaded, account.ID).Error)
	assert.Equal(t, models.KycPending, reloaded.KycStatus)

	var count int64
	require.NoError(t, db.Model(&models.KycSubmission{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestKycResubmissionReplacesPending(t *testing.T) {
	db := newTestDB(t)
	service := NewKycService(db)
	account := createAccount(t, db, "holder", withCryptoAddress("0xabc"),
		withKyc(models.KycRejected),
		func(a *models.Account) { a.KycRejectionReason = "blurry document" })

	submit := func(doc string) error {
		return service.Submit(KycSubmissionData{
			AccountId:   account.ID,
			Address:     "1 High Street",
			City:        "London",
			PostalCode:  "N1 1AA",
			Country:     "GB",
			DocumentUrl: doc,
		})
	}
	require.NoError(t, submit("https://docs.optivus.test/v1.jpg"))
	require.NoError(t, submit("https://docs.optivus.test/v2.jpg"))

	// One row, carrying the latest document; rejection reason cleared.
	var submissions []models.KycSubmission
	require.NoError(t, db.Find(&submissions).Error)
	require.Len(t, submissions, 1)
	assert.Equal(t, "https://docs.optivus.test/v2.jpg", submissions[0].DocumentUrl)

	var reloaded models.Account
	require.NoError(t, db.First(&reloaded, account.ID).Error)
	assert.Equal(t, models.KycPending, reloaded.KycStatus)
	assert.Empty(t, reloaded.KycRejectionReason)
}

func TestKycApprove(t *testing.T) {
	db := newTestDB(t)
	service := NewKycService(db)
	account := createAccount(t, db, "holder", withCryptoAddress("0xabc"))
	admin := createAccount(t, db, "admin", func(a *models.Account) { a.Role = models.RoleAdmin })

	require.NoError(t, service.Submit(KycSubmissionData{
		AccountId:   account.ID,
		DocumentUrl: "https://docs.optivus.test/passport.jpg",
	}))
	require.NoError(t, service.Approve(account.ID, admin.ID))

	var reloaded models.Account
	require.NoError(t, db.First(&reloaded, account.ID).Error)
	assert.Equal(t, models.KycVerified, reloaded.KycStatus)

	// Queue drained, action audited.
	var count int64
	require.NoError(t, db.Model(&models.KycSubmission{}).Count(&count).Error)
	assert.Zero(t, count)

	var audit models.AuditLog
	require.NoError(t, db.Where("admin_id = ?", admin.ID).First(&audit).Error)
	assert.Equal(t, "kyc.approved", audit.Action)
}

func TestKycRejectDefaultsReason(t *testing.T) {
	db := newTestDB(t)
	service := NewKycService(db)
	account := createAccount(t, db, "holder", withCryptoAddress("0xabc"))
	admin := createAccount(t, db, "admin", func(a *models.Account) { a.Role = models.RoleAdmin })

	require.NoError(t, service.Submit(KycSubmissionData{
		AccountId:   account.ID,
		DocumentUrl: "https://docs.optivus.test/passport.jpg",
	}))
	require.NoError(t, service.Reject(account.ID, admin.ID, ""))

	var reloaded models.Account
	require.NoError(t, db.First(&reloaded, account.ID).Error)
	assert.Equal(t, models.KycRejected, reloaded.KycStatus)
	assert.Equal(t, defaultRejectionReason, reloaded.KycRejectionReason)
}

func TestKycResolveWithoutSubmission(t *testing.T) {
	db := newTestDB(t)
	service := NewKycService(db)
	account := createAccount(t, db, "holder")

	assert.ErrorIs(t, service.Approve(account.ID, 1), ErrRequestNotFound)
	assert.ErrorIs(t, service.Reject(account.ID, 1, "nope"), ErrRequestNotFound)
}
