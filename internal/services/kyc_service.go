package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"optivus-service/internal/models"
	"optivus-service/pkg/common"
)

const defaultRejectionReason = "The submitted information could not be verified. Please review your details and try again."

type KycService struct {
	DB *gorm.DB
}

func NewKycService(db *gorm.DB) *KycService {
	return &KycService{DB: db}
}

type KycSubmissionData struct {
	AccountId   int
	Address     string
	City        string
	PostalCode  string
	Country     string
	DocumentUrl string
}

// Submit queues an identity review. A payout method must already be bound
// so an approved account can actually be paid. Resubmitting replaces any
// submission still in the queue and clears a previous rejection.
func (s *KycService) Submit(data KycSubmissionData) error {
	if data.DocumentUrl == "" {
		return ErrMissingDocument
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		var account models.Account
		if err := tx.First(&account, data.AccountId).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAccountNotFound
			}
			return err
		}
		if !account.PayoutConnected && account.PaypalEmail == "" && account.CryptoAddress == "" {
			return ErrPayoutMethodRequired
		}

		submission := models.KycSubmission{
			AccountId:   data.AccountId,
			Address:     data.Address,
			City:        data.City,
			PostalCode:  data.PostalCode,
			Country:     data.Country,
			DocumentUrl: data.DocumentUrl,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "account_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"address", "city", "postal_code", "country", "document_url", "updated_at",
			}),
		}).Create(&submission).Error; err != nil {
			return err
		}

		return tx.Model(&models.Account{}).Where("id = ?", data.AccountId).
			Updates(map[string]interface{}{
				"kyc_status":           models.KycPending,
				"kyc_rejection_reason": "",
			}).Error
	})
}

// Approve marks the account verified and removes its queued submission.
func (s *KycService) Approve(accountId, adminId int) error {
	return s.resolve(accountId, adminId, true, "")
}

// Reject returns the account to rejected state with a reason the holder can
// act on. An empty reason falls back to a generic message.
func (s *KycService) Reject(accountId, adminId int, reason string) error {
	if reason == "" {
		reason = defaultRejectionReason
	}
	return s.resolve(accountId, adminId, false, reason)
}

func (s *KycService) resolve(accountId, adminId int, approve bool, reason string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var submission models.KycSubmission
		if err := tx.Where("account_id = ?", accountId).First(&submission).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRequestNotFound
			}
			return err
		}

		updates := map[string]interface{}{}
		action := "kyc.approved"
		if approve {
			updates["kyc_status"] = models.KycVerified
			updates["kyc_rejection_reason"] = ""
		} else {
			updates["kyc_status"] = models.KycRejected
			updates["kyc_rejection_reason"] = reason
			action = "kyc.rejected"
		}
		if err := tx.Model(&models.Account{}).Where("id = ?", accountId).
			Updates(updates).Error; err != nil {
			return err
		}

		if err := tx.Delete(&submission).Error; err != nil {
			return err
		}

		audit := models.AuditLog{
			AdminId:  adminId,
			Action:   action,
			TargetId: accountId,
			Detail:   fmt.Sprintf("submission %d: %s", submission.ID, reason),
		}
		return tx.Create(&audit).Error
	})
}

type KycQueueDTO struct {
	Page  int
	Limit int
}

func (s *KycService) PendingSubmissions(data KycQueueDTO) (common.PaginationResult, error) {
	limit := data.Limit
	if limit <= 0 {
		limit = 10
	}
	page := data.Page
	if page < 1 {
		page = 1
	}

	query := s.DB.Model(&models.KycSubmission{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return common.PaginationResult{}, err
	}

	var submissions []models.KycSubmission
	if err := query.Order("created_at ASC").Limit(limit).Offset((page - 1) * limit).
		Find(&submissions).Error; err != nil {
		return common.PaginationResult{}, err
	}
	return common.PaginateResponse(submissions, total, page, limit, "KYC queue fetched"), nil
}
