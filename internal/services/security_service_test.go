package services

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"optivus-service/internal/models"
)

func TestSetPinValidatesFormat(t *testing.T) {
	db := newTestDB(t)
	service := NewSecurityService(db)
	account := createAccount(t, db, "holder")

	assert.ErrorIs(t, service.SetPin(account.ID, "", "12345"), ErrInvalidPinFormat)
	assert.ErrorIs(t, service.SetPin(account.ID, "", "1234567"), ErrInvalidPinFormat)
	assert.ErrorIs(t, service.SetPin(account.ID, "", "12a456"), ErrInvalidPinFormat)
	assert.NoError(t, service.SetPin(account.ID, "", "123456"))
}

func TestSetPinRequiresCurrentPinToChange(t *testing.T) {
	db := newTestDB(t)
	service := NewSecurityService(db)
	account := createAccount(t, db, "holder", withPin(t, "123456"))

	assert.ErrorIs(t, service.SetPin(account.ID, "999999", "654321"), ErrInvalidPin)
	assert.NoError(t, service.SetPin(account.ID, "123456", "654321"))
}

func TestTwoFactorEnrollmentFlow(t *testing.T) {
	db := newTestDB(t)
	service := NewSecurityService(db)
	account := createAccount(t, db, "holder")

	enrollment, err := service.BeginTwoFactor(account.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, enrollment.Secret)

	// The QR payload is a decodable PNG.
	png, err := base64.StdEncoding.DecodeString(enrollment.QRCode)
	require.NoError(t, err)
	assert.NotEmpty(t, png)

	// Enrollment is inert until confirmed with a valid code.
	var reloaded models.Account
	require.NoError(t, db.First(&reloaded, account.ID).Error)
	assert.False(t, reloaded.TwoFactorEnabled)

	assert.ErrorIs(t, service.ConfirmTwoFactor(account.ID, "000000"), ErrInvalidTwoFactorToken)

	code, err := totp.GenerateCode(enrollment.Secret, time.Now())
	require.NoError(t, err)
	require.NoError(t, service.ConfirmTwoFactor(account.ID, code))

	require.NoError(t, db.First(&reloaded, account.ID).Error)
	assert.True(t, reloaded.TwoFactorEnabled)
}

func TestDisableTwoFactorNeedsCode(t *testing.T) {
	db := newTestDB(t)
	service := NewSecurityService(db)
	account := createAccount(t, db, "holder")

	enrollment, err := service.BeginTwoFactor(account.ID)
	require.NoError(t, err)
	code, err := totp.GenerateCode(enrollment.Secret, time.Now())
	require.NoError(t, err)
	require.NoError(t, service.ConfirmTwoFactor(account.ID, code))

	assert.ErrorIs(t, service.DisableTwoFactor(account.ID, "000000"), ErrInvalidTwoFactorToken)

	code, err = totp.GenerateCode(enrollment.Secret, time.Now())
	require.NoError(t, err)
	require.NoError(t, service.DisableTwoFactor(account.ID, code))

	var reloaded models.Account
	require.NoError(t, db.First(&reloaded, account.ID).Error)
	assert.False(t, reloaded.TwoFactorEnabled)
	assert.Empty(t, reloaded.TotpSecret)
}

func TestPayoutBindings(t *testing.T) {
	db := newTestDB(t)
	service := NewSecurityService(db)
	account := createAccount(t, db, "holder")

	require.NoError(t, service.ConnectPayout(account.ID, "holder@paypal.test"))
	require.NoError(t, service.BindCryptoAddress(account.ID, "0xabc123", "ERC20"))
	assert.ErrorIs(t, service.BindCryptoAddress(account.ID, "", "ERC20"), ErrMissingDestination)

	var reloaded models.Account
	require.NoError(t, db.First(&reloaded, account.ID).Error)
	assert.True(t, reloaded.PayoutConnected)
	assert.Equal(t, "holder@paypal.test", reloaded.PaypalEmail)
	assert.Equal(t, "0xabc123", reloaded.CryptoAddress)
	assert.Equal(t, "ERC20", reloaded.CryptoNetwork)

	assert.ErrorIs(t, service.ConnectPayout(999, ""), ErrAccountNotFound)
}
