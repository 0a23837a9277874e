package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"optivus-service/internal/services"
	"optivus-service/pkg/common"
)

type AuthHandler struct {
	Auth     *services.AuthService
	Accounts *services.AccountService
	Referral *services.ReferralService
}

func NewAuthHandler(auth *services.AuthService, accounts *services.AccountService, referral *services.ReferralService) *AuthHandler {
	return &AuthHandler{Auth: auth, Accounts: accounts, Referral: referral}
}

type RegisterRequest struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Username     string `json:"username" binding:"required"`
	Email        string `json:"email" binding:"required"`
	Password     string `json:"password" binding:"required"`
	ReferralCode string `json:"referralCode"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}

	account, err := h.Accounts.Register(services.RegisterData{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Username:     req.Username,
		Email:        req.Email,
		Password:     req.Password,
		ReferralCode: req.ReferralCode,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	// Log the fresh account in so the client can proceed straight to the
	// entry fee payment step.
	result, err := h.Auth.Login(account.Username, req.Password)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, common.NewSuccessResponse(result, "Account registered"))
}

func (h *AuthHandler) CheckUsername(c *gin.Context) {
	username := c.Query("username")
	available, err := h.Accounts.CheckUsername(username)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(gin.H{"available": available}, "Username checked"))
}

type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}

	result, err := h.Auth.Login(req.Identifier, req.Password)
	if err != nil {
		abortWithError(c, err)
		return
	}
	message := "Login successful"
	if result.TwoFactorRequired {
		message = "Two-factor verification required"
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(result, message))
}

type VerifyTwoFactorRequest struct {
	Code string `json:"code" binding:"required"`
}

func (h *AuthHandler) VerifyTwoFactor(c *gin.Context) {
	var req VerifyTwoFactorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}

	result, err := h.Auth.VerifyTwoFactor(accountIdFrom(c), req.Code)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(result, "Login successful"))
}

type AttachSponsorRequest struct {
	ReferralCode string `json:"referralCode" binding:"required"`
}

func (h *AuthHandler) AttachSponsor(c *gin.Context) {
	var req AttachSponsorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}

	if err := h.Referral.AttachSponsor(accountIdFrom(c), req.ReferralCode); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(nil, "Sponsor attached"))
}
