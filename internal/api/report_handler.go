package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"resumesentry/internal/api/middleware"
	"resumesentry/internal/auth"
	"resumesentry/internal/review"
)

// ReportHandler 负责统计与结算报表，原始数据来自提交记录的聚合。
type ReportHandler struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewReportHandler 构造 ReportHandler。
func NewReportHandler(db *gorm.DB, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{db: db, logger: logger}
}

type resumeStatsRequest struct {
	FreelancerID string `json:"freelancerId" binding:"required"`
}

type resumeStats struct {
	TotalResumes   int64 `json:"total_resumes"`
	SavedCount     int64 `json:"saved_count"`
	SubmittedCount int64 `json:"submitted_count"`
	RejectedCount  int64 `json:"rejected_count"`
}

// GetResumeStats 按录入员统计各状态的提交数量。
func (h *ReportHandler) GetResumeStats(c *gin.Context) {
	var req resumeStatsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "freelancerId is required")
		return
	}

	var stats resumeStats
	err := h.db.WithContext(c.Request.Context()).Raw(`
		SELECT
			COUNT(*) AS total_resumes,
			COALESCE(SUM(CASE WHEN status IN (?, ?) THEN 1 ELSE 0 END), 0) AS saved_count,
			COALESCE(SUM(CASE WHEN status IN (?, ?) THEN 1 ELSE 0 END), 0) AS submitted_count,
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS rejected_count
		FROM submitted_resumes
		WHERE freelancer_id = ? AND deleted_at IS NULL`,
		review.StatusSaved, review.StatusAutoSaved,
		review.StatusSubmitted, review.StatusAutoSubmitted,
		review.StatusRejected,
		auth.NormalizeUserID(req.FreelancerID),
	).Scan(&stats).Error
	if err != nil {
		middleware.LoggerFromContext(c).Error("resume stats query failed", slog.Any("error", err))
		Internal(c, "Error fetching resume statistics")
		return
	}

	c.JSON(http.StatusOK, stats)
}

type adminReport struct {
	TotalFreelancers  int64 `json:"total_freelancers"`
	ActiveFreelancers int64 `json:"active_freelancers"`
	TotalResumes      int64 `json:"total_resumes"`
	TotalSubmissions  int64 `json:"total_submissions"`
	SavedCount        int64 `json:"saved_count"`
	SubmittedCount    int64 `json:"submitted_count"`
	RejectedCount     int64 `json:"rejected_count"`
}

// GetResumeReportForAdmin 平台级汇总报表，单行返回。
func (h *ReportHandler) GetResumeReportForAdmin(c *gin.Context) {
	var report adminReport
	err := h.db.WithContext(c.Request.Context()).Raw(`
		SELECT
			(SELECT COUNT(*) FROM freelancers WHERE deleted_at IS NULL) AS total_freelancers,
			(SELECT COUNT(*) FROM freelancers WHERE deleted_at IS NULL AND is_active = ?) AS active_freelancers,
			(SELECT COUNT(*) FROM resumes WHERE deleted_at IS NULL) AS total_resumes,
			(SELECT COUNT(*) FROM submitted_resumes WHERE deleted_at IS NULL) AS total_submissions,
			(SELECT COUNT(*) FROM submitted_resumes WHERE deleted_at IS NULL AND status IN (?, ?)) AS saved_count,
			(SELECT COUNT(*) FROM submitted_resumes WHERE deleted_at IS NULL AND status IN (?, ?)) AS submitted_count,
			(SELECT COUNT(*) FROM submitted_resumes WHERE deleted_at IS NULL AND status = ?) AS rejected_count`,
		true,
		review.StatusSaved, review.StatusAutoSaved,
		review.StatusSubmitted, review.StatusAutoSubmitted,
		review.StatusRejected,
	).Scan(&report).Error
	if err != nil {
		middleware.LoggerFromContext(c).Error("admin report query failed", slog.Any("error", err))
		Internal(c, "Error fetching admin report")
		return
	}

	c.JSON(http.StatusOK, report)
}

type userPayment struct {
	UserID       string  `json:"userid" gorm:"column:userid"`
	TotalPayment float64 `json:"totalPayment" gorm:"column:total_payment"`
}

// GetUserPaymentReport 按录入员汇总已提交且审核通过记录的报酬。
func (h *ReportHandler) GetUserPaymentReport(c *gin.Context) {
	var payments []userPayment
	err := h.db.WithContext(c.Request.Context()).Raw(`
		SELECT
			sr.freelancer_id AS userid,
			COALESCE(SUM(sr.resume_earning), 0) AS total_payment
		FROM submitted_resumes sr
		WHERE sr.deleted_at IS NULL
		  AND sr.status IN (?, ?)
		  AND sr.approval_status = ?
		GROUP BY sr.freelancer_id
		ORDER BY sr.freelancer_id`,
		review.StatusSubmitted, review.StatusAutoSubmitted,
		"accepted",
	).Scan(&payments).Error
	if err != nil {
		middleware.LoggerFromContext(c).Error("payment report query failed", slog.Any("error", err))
		Internal(c, "Error fetching payment report")
		return
	}

	if payments == nil {
		payments = []userPayment{}
	}
	c.JSON(http.StatusOK, payments)
}
