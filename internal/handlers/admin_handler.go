package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"optivus-service/internal/services"
	"optivus-service/pkg/common"
)

type AdminHandler struct {
	Admin       *services.AdminService
	Withdrawals *services.WithdrawalService
	Kyc         *services.KycService
}

func NewAdminHandler(admin *services.AdminService, withdrawals *services.WithdrawalService, kyc *services.KycService) *AdminHandler {
	return &AdminHandler{Admin: admin, Withdrawals: withdrawals, Kyc: kyc}
}

func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.Admin.Stats()
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(stats, "Platform stats fetched"))
}

func (h *AdminHandler) ListAccounts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	result, err := h.Admin.ListAccounts(services.ListAccountsDTO{
		Page:   page,
		Limit:  limit,
		Search: c.Query("search"),
		Status: c.Query("status"),
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *AdminHandler) CreateAccount(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}

	account, err := h.Admin.CreateAccount(c.GetInt("accountId"), services.RegisterData{
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
	c.JSON(http.StatusCreated, common.NewSuccessResponse(account, "Account created"))
}

func (h *AdminHandler) AccountDetail(c *gin.Context) {
	accountId, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("invalid account id", nil, http.StatusBadRequest))
		return
	}

	detail, err := h.Admin.AccountDetail(accountId)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(detail, "Account detail fetched"))
}

func (h *AdminHandler) ListLedger(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	accountId, _ := strconv.Atoi(c.Query("accountId"))

	result, err := h.Admin.ListLedger(services.ListLedgerDTO{
		Page:      page,
		Limit:     limit,
		AccountId: accountId,
		Kind:      c.Query("kind"),
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type AdjustBalanceRequest struct {
	NewAmount decimal.Decimal `json:"newAmount" binding:"required"`
	Reason    string          `json:"reason"`
}

func (h *AdminHandler) AdjustBalance(c *gin.Context) {
	accountId, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("Invalid account id", nil, http.StatusBadRequest))
		return
	}

	var req AdjustBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}

	entry, err := h.Admin.AdjustBalance(services.AdjustBalanceData{
		AdminId:   accountIdFrom(c),
		AccountId: accountId,
		NewAmount: req.NewAmount,
		Reason:    req.Reason,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(entry, "Balance adjusted"))
}

type SetStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *AdminHandler) SetAccountStatus(c *gin.Context) {
	accountId, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("Invalid account id", nil, http.StatusBadRequest))
		return
	}

	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}

	if err := h.Admin.SetAccountStatus(accountIdFrom(c), accountId, req.Status); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(nil, "Account status updated"))
}

type SetGateRequest struct {
	Gate string `json:"gate" binding:"required"`
}

func (h *AdminHandler) SetWithdrawalGate(c *gin.Context) {
	accountId, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("Invalid account id", nil, http.StatusBadRequest))
		return
	}

	var req SetGateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}

	if err := h.Admin.SetWithdrawalGate(accountIdFrom(c), accountId, req.Gate); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(nil, "Withdrawal gate updated"))
}

func (h *AdminHandler) PendingWithdrawals(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	result, err := h.Withdrawals.PendingRequests(services.PendingRequestsDTO{Page: page, Limit: limit})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type ResolveWithdrawalRequest struct {
	Approve bool   `json:"approve"`
	Comment string `json:"comment"`
}

func (h *AdminHandler) ResolveWithdrawal(c *gin.Context) {
	requestId, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("Invalid request id", nil, http.StatusBadRequest))
		return
	}

	var req ResolveWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}

	result, err := h.Withdrawals.Resolve(requestId, accountIdFrom(c), req.Approve, req.Comment)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(result, "Withdrawal resolved"))
}

func (h *AdminHandler) PendingKyc(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	result, err := h.Kyc.PendingSubmissions(services.KycQueueDTO{Page: page, Limit: limit})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *AdminHandler) ApproveKyc(c *gin.Context) {
	accountId, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("Invalid account id", nil, http.StatusBadRequest))
		return
	}

	if err := h.Kyc.Approve(accountId, accountIdFrom(c)); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(nil, "KYC approved"))
}

type RejectKycRequest struct {
	Reason string `json:"reason"`
}

func (h *AdminHandler) RejectKyc(c *gin.Context) {
	accountId, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("Invalid account id", nil, http.StatusBadRequest))
		return
	}

	var req RejectKycRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}

	if err := h.Kyc.Reject(accountId, accountIdFrom(c), req.Reason); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(nil, "KYC rejected"))
}

func (h *AdminHandler) AuditTrail(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	result, err := h.Admin.AuditTrail(page, limit)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
