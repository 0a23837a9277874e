package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"optivus-service/internal/services"
	"optivus-service/pkg/common"
)

type WithdrawalHandler struct {
	Withdrawals *services.WithdrawalService
}

func NewWithdrawalHandler(withdrawals *services.WithdrawalService) *WithdrawalHandler {
	return &WithdrawalHandler{Withdrawals: withdrawals}
}

type WithdrawalRequestBody struct {
	Amount         decimal.Decimal `json:"amount" binding:"required"`
	Method         string          `json:"method" binding:"required"`
	Pin            string          `json:"pin" binding:"required"`
	TwoFactorToken string          `json:"twoFactorToken"`
}

func (h *WithdrawalHandler) Request(c *gin.Context) {
	var req WithdrawalRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}

	request, err := h.Withdrawals.Request(services.WithdrawalRequestData{
		AccountId:      accountIdFrom(c),
		Amount:         req.Amount,
		Method:         req.Method,
		Pin:            req.Pin,
		TwoFactorToken: req.TwoFactorToken,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, common.NewSuccessResponse(request, "Withdrawal requested"))
}

func (h *WithdrawalHandler) History(c *gin.Context) {
	requests, err := h.Withdrawals.UserWithdrawals(accountIdFrom(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(requests, "Withdrawals fetched"))
}
