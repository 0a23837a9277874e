package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"optivus-service/internal/services"
	"optivus-service/pkg/common"
)

type SettingsHandler struct {
	Accounts *services.AccountService
	Security *services.SecurityService
}

func NewSettingsHandler(accounts *services.AccountService, security *services.SecurityService) *SettingsHandler {
	return &SettingsHandler{Accounts: accounts, Security: security}
}

func (h *SettingsHandler) Profile(c *gin.Context) {
	account, err := h.Accounts.GetAccount(accountIdFrom(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(account, "Profile fetched"))
}

type UpdateProfileRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (h *SettingsHandler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}

	account, err := h.Accounts.UpdateProfile(services.UpdateProfileData{
		AccountId: accountIdFrom(c),
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(account, "Profile updated"))
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

func (h *SettingsHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}

	err := h.Accounts.ChangePassword(services.ChangePasswordData{
		AccountId:       accountIdFrom(c),
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(nil, "Password changed"))
}

type SetPinRequest struct {
	CurrentPin string `json:"currentPin"`
	NewPin     string `json:"newPin" binding:"required"`
}

func (h *SettingsHandler) SetPin(c *gin.Context) {
	var req SetPinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}

	if err := h.Security.SetPin(accountIdFrom(c), req.CurrentPin, req.NewPin); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(nil, "Withdrawal PIN set"))
}

func (h *SettingsHandler) BeginTwoFactor(c *gin.Context) {
	enrollment, err := h.Security.BeginTwoFactor(accountIdFrom(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(enrollment, "Scan the QR code with your authenticator app"))
}

type TwoFactorCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

func (h *SettingsHandler) ConfirmTwoFactor(c *gin.Context) {
	var req TwoFactorCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}

	if err := h.Security.ConfirmTwoFactor(accountIdFrom(c), req.Code); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(nil, "Two-factor enabled"))
}

func (h *SettingsHandler) DisableTwoFactor(c *gin.Context) {
	var req TwoFactorCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}

	if err := h.Security.DisableTwoFactor(accountIdFrom(c), req.Code); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(nil, "Two-factor disabled"))
}

type ConnectPayoutRequest struct {
	PaypalEmail string `json:"paypalEmail"`
}

func (h *SettingsHandler) ConnectPayout(c *gin.Context) {
	var req ConnectPayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}

	if err := h.Security.ConnectPayout(accountIdFrom(c), req.PaypalEmail); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(nil, "Payout account connected"))
}

type BindCryptoRequest struct {
	Address string `json:"address" binding:"required"`
	Network string `json:"network" binding:"required"`
}

func (h *SettingsHandler) BindCrypto(c *gin.Context) {
	var req BindCryptoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}

	if err := h.Security.BindCryptoAddress(accountIdFrom(c), req.Address, req.Network); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(nil, "Crypto address saved"))
}
