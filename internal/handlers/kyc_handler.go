package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"optivus-service/internal/services"
	"optivus-service/pkg/common"
)

type KycHandler struct {
	Kyc *services.KycService
}

func NewKycHandler(kyc *services.KycService) *KycHandler {
	return &KycHandler{Kyc: kyc}
}

type KycSubmitRequest struct {
	Address     string `json:"address" binding:"required"`
	City        string `json:"city" binding:"required"`
	PostalCode  string `json:"postalCode" binding:"required"`
	Country     string `json:"country" binding:"required"`
	DocumentUrl string `json:"documentUrl" binding:"required"`
}

func (h *KycHandler) Submit(c *gin.Context) {
	var req KycSubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}

	err := h.Kyc.Submit(services.KycSubmissionData{
		AccountId:   accountIdFrom(c),
		Address:     req.Address,
		City:        req.City,
		PostalCode:  req.PostalCode,
		Country:     req.Country,
		DocumentUrl: req.DocumentUrl,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(nil, "KYC submitted for review"))
}
