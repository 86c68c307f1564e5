package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"resumesentry/internal/api/middleware"
	"resumesentry/internal/auth"
	"resumesentry/internal/database"
	"resumesentry/internal/storage"
)

// DocumentHandler 负责证件上传与审核。
type DocumentHandler struct {
	db      *gorm.DB
	store   ObjectStore
	staging *storage.Staging
	scanner *storage.Scanner
	logger  *slog.Logger
}

// NewDocumentHandler 构造 DocumentHandler。
func NewDocumentHandler(
	db *gorm.DB,
	store ObjectStore,
	staging *storage.Staging,
	scanner *storage.Scanner,
	logger *slog.Logger,
) *DocumentHandler {
	if scanner == nil {
		scanner = storage.NewScanner("")
	}
	return &DocumentHandler{
		db:      db,
		store:   store,
		staging: staging,
		scanner: scanner,
		logger:  logger,
	}
}

// persistDocument 将证件文件经暂存目录写入对象存储，返回对象键。
func (h *DocumentHandler) persistDocument(ctx context.Context, fh *multipart.FileHeader, category string) (string, error) {
	stagedPath, err := h.staging.Save(fh)
	if err != nil {
		return "", err
	}
	defer func() { _ = h.staging.Remove(stagedPath) }()

	if err := h.scanner.ScanFile(stagedPath); err != nil {
		return "", err
	}

	f, err := os.Open(stagedPath)
	if err != nil {
		return "", fmt.Errorf("open staged file: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat staged file: %w", err)
	}

	objectKey := h.store.ObjectKey(category, fh.Filename)
	if _, err := h.store.UploadFile(ctx, objectKey, f, stat.Size(), "application/pdf"); err != nil {
		return "", err
	}
	return objectKey, nil
}

// uploadFreelancerDocument 通用证件上传流程：存对象、对 FreelancerDetail 做
// 查找后插入或更新，返回是否为新建。
func (h *DocumentHandler) uploadFreelancerDocument(
	c *gin.Context,
	freelancerID string,
	fh *multipart.FileHeader,
	category string,
	assign func(detail *database.FreelancerDetail, objectKey string),
) (created bool, ok bool) {
	ctx := c.Request.Context()

	objectKey, err := h.persistDocument(ctx, fh, category)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotPDF):
			BadRequest(c, "only pdf files are allowed")
		case errors.Is(err, storage.ErrFileTooLarge):
			BadRequest(c, "file exceeds size limit")
		case errors.Is(err, storage.ErrInfectedFile):
			BadRequest(c, "malicious file detected")
		default:
			middleware.LoggerFromContext(c).Error("persist document failed", slog.Any("error", err))
			Internal(c, "Upload failed")
		}
		return false, false
	}

	var detail database.FreelancerDetail
	err = h.db.WithContext(ctx).Where("freelancer_id = ?", freelancerID).First(&detail).Error
	switch {
	case err == nil:
		assign(&detail, objectKey)
		if err := h.db.WithContext(ctx).Save(&detail).Error; err != nil {
			middleware.LoggerFromContext(c).Error("update freelancer details failed", slog.Any("error", err))
			Internal(c, "Error updating freelancer details")
			return false, false
		}
		return false, true
	case errors.Is(err, gorm.ErrRecordNotFound):
		detail = database.FreelancerDetail{FreelancerID: freelancerID}
		assign(&detail, objectKey)
		if err := h.db.WithContext(ctx).Create(&detail).Error; err != nil {
			middleware.LoggerFromContext(c).Error("insert freelancer details failed", slog.Any("error", err))
			Internal(c, "Error saving freelancer details")
			return false, false
		}
		return true, true
	default:
		middleware.LoggerFromContext(c).Error("freelancer details lookup failed", slog.Any("error", err))
		Internal(c, "Database error")
		return false, false
	}
}

// UploadAadharCard 上传身份证件，需携带 idProofType。
func (h *DocumentHandler) UploadAadharCard(c *gin.Context) {
	freelancerID := auth.NormalizeUserID(c.Param("freelancer_id"))
	if freelancerID == "" {
		BadRequest(c, "Freelancer ID is required")
		return
	}

	idProofType := c.PostForm("idProofType")
	if idProofType == "" {
		BadRequest(c, "ID Proof Type is required")
		return
	}

	fh, err := c.FormFile("document")
	if err != nil {
		BadRequest(c, "No files uploaded")
		return
	}

	created, ok := h.uploadFreelancerDocument(c, freelancerID, fh, "documents/id",
		func(detail *database.FreelancerDetail, objectKey string) {
			detail.DocumentObjectKey = objectKey
			detail.IDType = idProofType
		})
	if !ok {
		return
	}

	if created {
		c.JSON(http.StatusCreated, gin.H{"message": "Aadhaar card uploaded successfully"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Aadhaar card updated successfully"})
}

// UploadAddressCard 上传地址证件，需携带 addresstype。
func (h *DocumentHandler) UploadAddressCard(c *gin.Context) {
	freelancerID := auth.NormalizeUserID(c.Param("freelancer_id"))
	if freelancerID == "" {
		BadRequest(c, "Freelancer ID is required")
		return
	}

	addressType := c.PostForm("addresstype")
	if addressType == "" {
		BadRequest(c, "ID address Type is required")
		return
	}

	fh, err := c.FormFile("document")
	if err != nil {
		BadRequest(c, "No files uploaded")
		return
	}

	created, ok := h.uploadFreelancerDocument(c, freelancerID, fh, "documents/address",
		func(detail *database.FreelancerDetail, objectKey string) {
			detail.AddressProofObjectKey = objectKey
			detail.AddressType = addressType
		})
	if !ok {
		return
	}

	if created {
		c.JSON(http.StatusCreated, gin.H{"message": "Address id card uploaded successfully"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Address id card updated successfully"})
}

type approvalRequest struct {
	FreelancerID   string `json:"freelancer_id"`
	Status         string `json:"status"`
	IDRejectReason string `json:"id_reject_reason"`
}

// UpdateApprovalStatus 审核录入员的证件。
// accepted 置 is_approved；rejected 需给出原因，登记原因并删除两份证件，
// 每份证件独立处理，单份失败不阻断另一份。
func (h *DocumentHandler) UpdateApprovalStatus(c *gin.Context) {
	var req approvalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid freelancer_id or status")
		return
	}

	freelancerID := auth.NormalizeUserID(req.FreelancerID)
	if freelancerID == "" || (req.Status != "accepted" && req.Status != "rejected") {
		BadRequest(c, "Invalid freelancer_id or status")
		return
	}
	if req.Status == "rejected" && strings.TrimSpace(req.IDRejectReason) == "" {
		BadRequest(c, "Rejection reason is required")
		return
	}

	ctx := c.Request.Context()

	result := h.db.WithContext(ctx).
		Model(&database.Freelancer{}).
		Where("user_id = ?", freelancerID).
		Update("is_approved", req.Status == "accepted")
	if result.Error != nil {
		middleware.LoggerFromContext(c).Error("update approval status failed", slog.Any("error", result.Error))
		Internal(c, "Error updating approval status")
		return
	}
	if result.RowsAffected == 0 {
		NotFound(c, "Freelancer not found")
		return
	}

	if req.Status == "accepted" {
		c.JSON(http.StatusOK, gin.H{"message": "Freelancer approved successfully"})
		return
	}

	if err := h.db.WithContext(ctx).
		Model(&database.FreelancerDetail{}).
		Where("freelancer_id = ?", freelancerID).
		Update("id_reject_reason", req.IDRejectReason).Error; err != nil {
		middleware.LoggerFromContext(c).Error("update rejection reason failed", slog.Any("error", err))
		Internal(c, "Error updating rejection reason")
		return
	}

	aadharResult := h.deleteDocument(c, freelancerID, "document_object_key",
		func(d *database.FreelancerDetail) string { return d.DocumentObjectKey })
	addressResult := h.deleteDocument(c, freelancerID, "address_proof_object_key",
		func(d *database.FreelancerDetail) string { return d.AddressProofObjectKey })

	c.JSON(http.StatusOK, gin.H{
		"message":       "Freelancer rejected and documents deleted successfully",
		"aadharResult":  aadharResult,
		"addressResult": addressResult,
	})
}

// deleteDocument 删除单份证件并清空引用列，返回可读结果。
func (h *DocumentHandler) deleteDocument(c *gin.Context, freelancerID, column string, keyOf func(*database.FreelancerDetail) string) string {
	ctx := c.Request.Context()

	var detail database.FreelancerDetail
	if err := h.db.WithContext(ctx).Where("freelancer_id = ?", freelancerID).First(&detail).Error; err != nil {
		return "document not found"
	}

	objectKey := keyOf(&detail)
	if objectKey == "" {
		return "document not found"
	}

	if err := h.store.DeleteObject(ctx, objectKey); err != nil {
		middleware.LoggerFromContext(c).Error("delete document object failed",
			slog.String("object_key", objectKey),
			slog.Any("error", err),
		)
		return "failed to delete document"
	}

	if err := h.db.WithContext(ctx).
		Model(&database.FreelancerDetail{}).
		Where("freelancer_id = ?", freelancerID).
		Update(column, "").Error; err != nil {
		middleware.LoggerFromContext(c).Error("clear document reference failed", slog.Any("error", err))
		return "deleted from storage, failed to clear reference"
	}

	return "deleted"
}
