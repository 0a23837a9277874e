package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"optivus-service/internal/services"
	"optivus-service/pkg/common"
)

// statusFor maps service errors onto HTTP status codes. Anything unmapped
// is a 500 and its detail stays out of the response body.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrAccountNotFound),
		errors.Is(err, services.ErrRequestNotFound),
		errors.Is(err, services.ErrPaymentEventNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrInvalidPin),
		errors.Is(err, services.ErrInvalidTwoFactorToken):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrAccountFrozen),
		errors.Is(err, services.ErrWithdrawalsPaused),
		errors.Is(err, services.ErrFiatRequiresKyc),
		errors.Is(err, services.ErrCryptoLimitExceeded):
		return http.StatusForbidden
	case errors.Is(err, services.ErrUsernameTaken),
		errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrSponsorAlreadySet),
		errors.Is(err, services.ErrAlreadyActivated),
		errors.Is(err, services.ErrDuplicatePaymentEvent),
		errors.Is(err, services.ErrDuplicateEntry),
		errors.Is(err, services.ErrAlreadyResolved):
		return http.StatusConflict
	case errors.Is(err, services.ErrInvalidReferralCode),
		errors.Is(err, services.ErrInvalidUsername),
		errors.Is(err, services.ErrInvalidEmail),
		errors.Is(err, services.ErrWeakPassword),
		errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, services.ErrUnexpectedFeeAmount),
		errors.Is(err, services.ErrInsufficientBalance),
		errors.Is(err, services.ErrNoWithdrawalPin),
		errors.Is(err, services.ErrMissingDestination),
		errors.Is(err, services.ErrMissingDocument),
		errors.Is(err, services.ErrPayoutMethodRequired),
		errors.Is(err, services.ErrNegativeBalance),
		errors.Is(err, services.ErrTwoFactorNotEnrolled),
		errors.Is(err, services.ErrInvalidPinFormat),
		errors.Is(err, services.ErrAccountNotActive):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func abortWithError(c *gin.Context, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "Internal server error"
	}
	c.JSON(status, common.NewErrorResponse(message, nil, status))
}

func accountIdFrom(c *gin.Context) int {
	return c.GetInt("accountId")
}
