package api

import (
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"resumesentry/internal/api/middleware"
	"resumesentry/internal/auth"
	"resumesentry/internal/database"
)

// 目录分页默认值。
const (
	defaultListLimit = 500
	defaultListPage  = 1
)

// FreelancerHandler 负责录入员目录相关接口。
type FreelancerHandler struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewFreelancerHandler 构造 FreelancerHandler。
func NewFreelancerHandler(db *gorm.DB, logger *slog.Logger) *FreelancerHandler {
	return &FreelancerHandler{db: db, logger: logger}
}

// GetDetails 返回录入员档案与钱包流水。钱包可以为空。
func (h *FreelancerHandler) GetDetails(c *gin.Context) {
	freelancerID := auth.NormalizeUserID(c.Param("freelancer_id"))
	ctx := c.Request.Context()

	var freelancer database.Freelancer
	if err := h.db.WithContext(ctx).Where("user_id = ?", freelancerID).First(&freelancer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "Freelancer not found")
			return
		}
		Internal(c, "Error fetching profile data")
		return
	}

	wallet := make([]database.Wallet, 0)
	if err := h.db.WithContext(ctx).Where("freelancer_id = ?", freelancerID).Find(&wallet).Error; err != nil {
		Internal(c, "Error fetching wallet data")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"profile": freelancer,
		"wallet":  wallet,
	})
}

// 目录搜索拼接的列。跨方言用 || 拼接并统一小写比较。
var searchColumns = []string{
	"user_id", "name", "phone_number", "alternate_phone", "email",
	"gender", "address", "city", "state", "country", "pincode",
	"education", "occupation", "monthly_income",
}

func searchPredicate() string {
	parts := make([]string, 0, len(searchColumns))
	for _, col := range searchColumns {
		parts = append(parts, "coalesce("+col+", '')")
	}
	return "lower(" + strings.Join(parts, " || ' ' || ") + `) LIKE ? ESCAPE '\'`
}

// escapeLike 转义 LIKE 通配符，搜索词只做子串匹配。
func escapeLike(term string) string {
	replacer := strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)
	return replacer.Replace(term)
}

// List 分页列出录入员，支持跨字段子串搜索。
func (h *FreelancerHandler) List(c *gin.Context) {
	searchTerm := c.Query("search")

	page, err := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(defaultListPage)))
	if err != nil || page <= 0 {
		page = defaultListPage
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultListLimit)))
	if err != nil || limit <= 0 {
		limit = defaultListLimit
	}
	offset := (page - 1) * limit

	ctx := c.Request.Context()
	pattern := "%" + strings.ToLower(escapeLike(searchTerm)) + "%"

	predicate := searchPredicate()

	var totalCount int64
	if err := h.db.WithContext(ctx).Model(&database.Freelancer{}).
		Where(predicate, pattern).
		Count(&totalCount).Error; err != nil {
		middleware.LoggerFromContext(c).Error("count freelancers failed", slog.Any("error", err))
		Internal(c, "Error fetching total count")
		return
	}

	var freelancers []database.Freelancer
	if err := h.db.WithContext(ctx).
		Where(predicate, pattern).
		Limit(limit).Offset(offset).
		Find(&freelancers).Error; err != nil {
		middleware.LoggerFromContext(c).Error("list freelancers failed", slog.Any("error", err))
		Internal(c, "Error fetching freelancers")
		return
	}

	totalPages := int(math.Ceil(float64(totalCount) / float64(limit)))

	c.JSON(http.StatusOK, gin.H{
		"freelancers": freelancers,
		"pagination": gin.H{
			"totalCount":  totalCount,
			"totalPages":  totalPages,
			"currentPage": page,
			"limit":       limit,
		},
	})
}

// 可经 Edit 修改的列。标识列与口令哈希不在其中。
var editableColumns = map[string]struct{}{
	"name":            {},
	"email":           {},
	"phone_number":    {},
	"alternate_phone": {},
	"date_of_birth":   {},
	"gender":          {},
	"address":         {},
	"city":            {},
	"state":           {},
	"country":         {},
	"pincode":         {},
	"education":       {},
	"occupation":      {},
	"monthly_income":  {},
	"start_date":      {},
	"end_date":        {},
	"is_approved":     {},
	"joining_bonus":   {},
	"total_earnings":  {},
}

// Edit 对录入员档案做部分更新。只允许白名单内的列，
// 未知键直接拒绝而不是静默忽略。
func (h *FreelancerHandler) Edit(c *gin.Context) {
	freelancerID := auth.NormalizeUserID(c.Param("freelancer_id"))

	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		BadRequest(c, "invalid request body")
		return
	}
	delete(fields, "freelancer_id")

	if len(fields) == 0 {
		BadRequest(c, "No fields provided to update")
		return
	}

	updates := make(map[string]any, len(fields))
	for key, value := range fields {
		column := strings.ToLower(strings.TrimSpace(key))
		if _, ok := editableColumns[column]; !ok {
			BadRequest(c, "unknown field: "+key)
			return
		}
		updates[column] = value
	}

	result := h.db.WithContext(c.Request.Context()).
		Model(&database.Freelancer{}).
		Where("user_id = ?", freelancerID).
		Updates(updates)
	if result.Error != nil {
		middleware.LoggerFromContext(c).Error("edit freelancer failed", slog.Any("error", result.Error))
		Internal(c, "Database error")
		return
	}
	if result.RowsAffected == 0 {
		NotFound(c, "Freelancer not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Freelancer details updated successfully"})
}

type toggleStatusRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// ToggleStatus 启用或停用录入员账号。
func (h *FreelancerHandler) ToggleStatus(c *gin.Context) {
	freelancerID := auth.NormalizeUserID(c.Param("freelancer_id"))

	var req toggleStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "is_active is required")
		return
	}

	result := h.db.WithContext(c.Request.Context()).
		Model(&database.Freelancer{}).
		Where("user_id = ?", freelancerID).
		Update("is_active", *req.IsActive)
	if result.Error != nil {
		Internal(c, "Database error")
		return
	}
	if result.RowsAffected == 0 {
		NotFound(c, "Freelancer not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Freelancer status updated successfully",
		"is_active": *req.IsActive,
	})
}

// GetCurrentResume 返回录入员当前处理的模板指针。
// 指针为 0 时回落到系统中的第一份模板。
func (h *FreelancerHandler) GetCurrentResume(c *gin.Context) {
	freelancerID := auth.NormalizeUserID(c.Param("freelancer_id"))
	ctx := c.Request.Context()

	var freelancer database.Freelancer
	if err := h.db.WithContext(ctx).
		Select("id", "current_resume_id").
		Where("user_id = ?", freelancerID).
		First(&freelancer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "Freelancer not found")
			return
		}
		Internal(c, "Error fetching freelancer data")
		return
	}

	if freelancer.CurrentResumeID != 0 {
		c.JSON(http.StatusOK, gin.H{"current_resume_id": freelancer.CurrentResumeID})
		return
	}

	var first database.Resume
	if err := h.db.WithContext(ctx).Order("id").First(&first).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "No resume found")
			return
		}
		Internal(c, "Error fetching resume data")
		return
	}

	c.JSON(http.StatusOK, gin.H{"current_resume_id": first.ID})
}

type updateCurrentResumeRequest struct {
	CurrentResumeID *uint `json:"current_resume_id" binding:"required"`
}

// UpdateCurrentResume 更新录入员当前处理的模板指针。
func (h *FreelancerHandler) UpdateCurrentResume(c *gin.Context) {
	freelancerID := auth.NormalizeUserID(c.Param("freelancer_id"))

	var req updateCurrentResumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "current_resume_id is required")
		return
	}

	result := h.db.WithContext(c.Request.Context()).
		Model(&database.Freelancer{}).
		Where("user_id = ?", freelancerID).
		Update("current_resume_id", *req.CurrentResumeID)
	if result.Error != nil {
		Internal(c, "Error updating freelancer data")
		return
	}
	if result.RowsAffected == 0 {
		NotFound(c, "Freelancer not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Current resume ID updated successfully"})
}
