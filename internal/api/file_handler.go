package api

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"resumesentry/internal/api/middleware"
	"resumesentry/internal/auth"
	"resumesentry/internal/database"
	"resumesentry/internal/storage"
)

// FileHandler 负责从对象存储向浏览器内联转发 PDF。
type FileHandler struct {
	db     *gorm.DB
	store  ObjectStore
	logger *slog.Logger
}

// NewFileHandler 构造 FileHandler。
func NewFileHandler(db *gorm.DB, store ObjectStore, logger *slog.Logger) *FileHandler {
	return &FileHandler{db: db, store: store, logger: logger}
}

// streamPDF 以 inline 方式转发对象内容，对象缺失时返回 404。
func (h *FileHandler) streamPDF(c *gin.Context, objectKey, filename, missingMessage string) {
	ctx := c.Request.Context()

	meta, err := h.store.StatObject(ctx, objectKey)
	if err != nil {
		if storage.IsNoSuchKey(err) {
			NotFound(c, missingMessage)
			return
		}
		middleware.LoggerFromContext(c).Error("stat object failed",
			slog.String("object_key", objectKey),
			slog.Any("error", err),
		)
		Internal(c, "Failed to download file")
		return
	}

	reader, err := h.store.OpenObject(ctx, objectKey)
	if err != nil {
		middleware.LoggerFromContext(c).Error("open object failed",
			slog.String("object_key", objectKey),
			slog.Any("error", err),
		)
		Internal(c, "Failed to download file")
		return
	}
	defer reader.Close()

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", filename))
	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Length", strconv.FormatInt(meta.Size, 10))
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, reader); err != nil {
		middleware.LoggerFromContext(c).Warn("stream object interrupted",
			slog.String("object_key", objectKey),
			slog.Any("error", err),
		)
	}
}

// DownloadResume 内联返回指定模板的 PDF。
func (h *FileHandler) DownloadResume(c *gin.Context) {
	resumeID := c.Param("resume_id")

	var resume database.Resume
	if err := h.db.WithContext(c.Request.Context()).First(&resume, "id = ?", resumeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "Resume not found")
			return
		}
		Internal(c, "Database error")
		return
	}

	h.streamPDF(c, resume.ObjectKey, resume.ResumeName, "Resume not found")
}

// DownloadAadharCard 内联返回录入员的身份证件。
func (h *FileHandler) DownloadAadharCard(c *gin.Context) {
	freelancerID := auth.NormalizeUserID(c.Param("freelancer_id"))

	var detail database.FreelancerDetail
	err := h.db.WithContext(c.Request.Context()).
		Where("freelancer_id = ?", freelancerID).
		First(&detail).Error
	if err != nil || detail.DocumentObjectKey == "" {
		NotFound(c, "Aadhar card not found for the given freelancer")
		return
	}

	h.streamPDF(c, detail.DocumentObjectKey,
		fmt.Sprintf("AadharCard-%s.pdf", freelancerID),
		"Aadhar card not found for the given freelancer")
}

// DownloadAddressCard 内联返回录入员的地址证件。
func (h *FileHandler) DownloadAddressCard(c *gin.Context) {
	freelancerID := auth.NormalizeUserID(c.Param("freelancer_id"))

	var detail database.FreelancerDetail
	err := h.db.WithContext(c.Request.Context()).
		Where("freelancer_id = ?", freelancerID).
		First(&detail).Error
	if err != nil || detail.AddressProofObjectKey == "" {
		NotFound(c, "address not found for the given freelancer")
		return
	}

	h.streamPDF(c, detail.AddressProofObjectKey,
		fmt.Sprintf("Addressid-%s.pdf", freelancerID),
		"address not found for the given freelancer")
}
