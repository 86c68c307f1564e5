package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"resumesentry/internal/api/middleware"
	"resumesentry/internal/ingest"
)

// IngestHandler 接收批量简历上传并交给流水线处理。
type IngestHandler struct {
	pipeline     *ingest.Pipeline
	maxBulkFiles int
	logger       *slog.Logger
}

// NewIngestHandler 构造 IngestHandler。
func NewIngestHandler(pipeline *ingest.Pipeline, maxBulkFiles int, logger *slog.Logger) *IngestHandler {
	return &IngestHandler{pipeline: pipeline, maxBulkFiles: maxBulkFiles, logger: logger}
}

// BulkUpload 处理 multipart 批量上传，字段名 resumes。
// 同步跑完流水线后返回汇总，进度事件经 Redis 推送给订阅方。
func (h *IngestHandler) BulkUpload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		BadRequest(c, "No files uploaded")
		return
	}

	files := form.File["resumes"]
	if len(files) == 0 {
		BadRequest(c, "No files uploaded")
		return
	}
	if h.maxBulkFiles > 0 && len(files) > h.maxBulkFiles {
		BadRequest(c, "Too many files in one upload")
		return
	}

	uploadedBy := "anonymous"
	if id, ok := userIDFromContext(c); ok {
		role, _ := roleFromContext(c)
		uploadedBy = fmt.Sprintf("%s:%d", role, id)
	}
	jobID := uuid.NewString()

	result, err := h.pipeline.Run(c.Request.Context(), jobID, files, uploadedBy)
	if err != nil {
		middleware.LoggerFromContext(c).Error("bulk upload pipeline failed",
			slog.String("job_id", jobID),
			slog.Any("error", err),
		)
		Internal(c, "Error uploading resumes")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        "Resumes uploaded successfully",
		"uploaded_count": result.UploadedCount,
		"failed_count":   result.FailedCount,
		"total_files":    result.TotalFiles,
		"job_id":         result.JobID,
	})
}
