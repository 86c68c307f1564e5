package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"resumesentry/internal/api/middleware"
	"resumesentry/internal/auth"
	"resumesentry/internal/database"
)

// BankHandler 负责银行账户信息的保存与查询。
type BankHandler struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewBankHandler 构造 BankHandler。
func NewBankHandler(db *gorm.DB, logger *slog.Logger) *BankHandler {
	return &BankHandler{db: db, logger: logger}
}

type bankDetailsRequest struct {
	FreelancerID        string `json:"freelancer_id" binding:"required"`
	AccountNumber       string `json:"account_number"`
	IFSCCode            string `json:"ifsc_code"`
	BankName            string `json:"bank_name"`
	AccountHolderName   string `json:"account_holder_name"`
	AccountType         string `json:"account_type"`
	PaymentMobileNumber string `json:"payment_mobile_number"`
	PaymentMethod       string `json:"payment_method"`
}

// SaveOrUpdateBankDetails 保存或更新银行信息，已存在则覆盖。
func (h *BankHandler) SaveOrUpdateBankDetails(c *gin.Context) {
	var req bankDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "freelancer_id is required")
		return
	}

	freelancerID := auth.NormalizeUserID(req.FreelancerID)
	ctx := c.Request.Context()

	var detail database.FreelancerDetail
	err := h.db.WithContext(ctx).Where("freelancer_id = ?", freelancerID).First(&detail).Error
	switch {
	case err == nil:
		h.applyBankFields(&detail, &req)
		if err := h.db.WithContext(ctx).Save(&detail).Error; err != nil {
			middleware.LoggerFromContext(c).Error("update bank details failed", slog.Any("error", err))
			Internal(c, "Error updating bank details")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Bank details updated successfully"})
	case errors.Is(err, gorm.ErrRecordNotFound):
		detail = database.FreelancerDetail{FreelancerID: freelancerID}
		h.applyBankFields(&detail, &req)
		if err := h.db.WithContext(ctx).Create(&detail).Error; err != nil {
			middleware.LoggerFromContext(c).Error("insert bank details failed", slog.Any("error", err))
			Internal(c, "Error saving bank details")
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "Bank details saved successfully"})
	default:
		middleware.LoggerFromContext(c).Error("bank details lookup failed", slog.Any("error", err))
		Internal(c, "Database error")
	}
}

func (h *BankHandler) applyBankFields(detail *database.FreelancerDetail, req *bankDetailsRequest) {
	detail.AccountNumber = req.AccountNumber
	detail.IFSCCode = req.IFSCCode
	detail.BankName = req.BankName
	detail.AccountHolderName = req.AccountHolderName
	detail.AccountType = req.AccountType
	detail.PaymentMobileNumber = req.PaymentMobileNumber
	detail.PaymentMethod = req.PaymentMethod
}

// GetBankDetails 查询指定录入员的银行信息，附带证件驳回原因。
func (h *BankHandler) GetBankDetails(c *gin.Context) {
	freelancerID := auth.NormalizeUserID(c.Param("freelancer_id"))

	var detail database.FreelancerDetail
	err := h.db.WithContext(c.Request.Context()).
		Where("freelancer_id = ?", freelancerID).
		First(&detail).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "Bank details not found for this freelancer")
			return
		}
		middleware.LoggerFromContext(c).Error("bank details lookup failed", slog.Any("error", err))
		Internal(c, "Database error")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"freelancer_id":         detail.FreelancerID,
		"account_number":        detail.AccountNumber,
		"ifsc_code":             detail.IFSCCode,
		"bank_name":             detail.BankName,
		"account_holder_name":   detail.AccountHolderName,
		"account_type":          detail.AccountType,
		"payment_mobile_number": detail.PaymentMobileNumber,
		"payment_method":        detail.PaymentMethod,
		"id_reject_reason":      detail.IDRejectReason,
	})
}
