package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"resumesentry/internal/api/middleware"
	"resumesentry/internal/auth"
	"resumesentry/internal/database"
	"resumesentry/internal/review"
)

// ResumeHandler 负责模板目录与录入记录的增删改查。
type ResumeHandler struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewResumeHandler 构造 ResumeHandler。
func NewResumeHandler(db *gorm.DB, logger *slog.Logger) *ResumeHandler {
	return &ResumeHandler{db: db, logger: logger}
}

// resumeFormPayload 是录入表单的全部字段，保存与更新共用。
type resumeFormPayload struct {
	FirstName      string `json:"first_name"`
	MiddleName     string `json:"middle_name"`
	LastName       string `json:"last_name"`
	DateOfBirth    string `json:"date_of_birth"`
	Gender         string `json:"gender"`
	Nationality    string `json:"nationality"`
	MaritalStatus  string `json:"marital_status"`
	Passport       string `json:"passport"`
	Hobbies        string `json:"hobbies"`
	LanguagesKnown string `json:"languages_known"`
	Address        string `json:"address"`
	Landmark       string `json:"landmark"`
	City           string `json:"city"`
	State          string `json:"state"`
	Pincode        string `json:"pincode"`
	Mobile         string `json:"mobile"`
	Email          string `json:"email"`

	SSCResult                    string `json:"ssc_result"`
	SSCBoard                     string `json:"ssc_board"`
	SSCYearOfPassing             string `json:"ssc_year_of_passing"`
	HSCResult                    string `json:"hsc_result"`
	HSCBoard                     string `json:"hsc_board"`
	HSCYearOfPassing             string `json:"hsc_year_of_passing"`
	GraduationDegree             string `json:"graduation_degree"`
	GraduationResult             string `json:"graduation_result"`
	GraduationUniversity         string `json:"graduation_university"`
	GraduationYearOfPassing      string `json:"graduation_year_of_passing"`
	PostGraduationDegree         string `json:"post_graduation_degree"`
	PostGraduationResult         string `json:"post_graduation_result"`
	PostGraduationUniversity     string `json:"post_graduation_university"`
	PostGraduationYearOfPassing  string `json:"post_graduation_year_of_passing"`
	HigherEducationQualification string `json:"higher_education_qualification"`

	TotalWorkExperienceMonths int    `json:"total_work_experience_months"`
	NumberOfCompaniesWorked   int    `json:"number_of_companies_worked"`
	LastEmployer              string `json:"last_employer"`
}

func (p *resumeFormPayload) apply(row *database.SubmittedResume) {
	row.FirstName = p.FirstName
	row.MiddleName = p.MiddleName
	row.LastName = p.LastName
	row.DateOfBirth = p.DateOfBirth
	row.Gender = p.Gender
	row.Nationality = p.Nationality
	row.MaritalStatus = p.MaritalStatus
	row.Passport = p.Passport
	row.Hobbies = p.Hobbies
	row.LanguagesKnown = p.LanguagesKnown
	row.Address = p.Address
	row.Landmark = p.Landmark
	row.City = p.City
	row.State = p.State
	row.Pincode = p.Pincode
	row.Mobile = p.Mobile
	row.Email = p.Email
	row.SSCResult = p.SSCResult
	row.SSCBoard = p.SSCBoard
	row.SSCYearOfPassing = p.SSCYearOfPassing
	row.HSCResult = p.HSCResult
	row.HSCBoard = p.HSCBoard
	row.HSCYearOfPassing = p.HSCYearOfPassing
	row.GraduationDegree = p.GraduationDegree
	row.GraduationResult = p.GraduationResult
	row.GraduationUniversity = p.GraduationUniversity
	row.GraduationYearOfPassing = p.GraduationYearOfPassing
	row.PostGraduationDegree = p.PostGraduationDegree
	row.PostGraduationResult = p.PostGraduationResult
	row.PostGraduationUniversity = p.PostGraduationUniversity
	row.PostGraduationYearOfPassing = p.PostGraduationYearOfPassing
	row.HigherEducationQualification = p.HigherEducationQualification
	row.TotalWorkExperienceMonths = p.TotalWorkExperienceMonths
	row.NumberOfCompaniesWorked = p.NumberOfCompaniesWorked
	row.LastEmployer = p.LastEmployer
}

type saveResumeRequest struct {
	ResumeID     uint   `json:"resume_id" binding:"required"`
	FreelancerID string `json:"freelancer_id" binding:"required"`
	Status       string `json:"status" binding:"required"`
	resumeFormPayload
}

// Save 插入一条新的录入记录。
func (h *ResumeHandler) Save(c *gin.Context) {
	var req saveResumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	row := database.SubmittedResume{
		ResumeID:       req.ResumeID,
		FreelancerID:   auth.NormalizeUserID(req.FreelancerID),
		Status:         req.Status,
		SubmissionDate: time.Now(),
	}
	req.resumeFormPayload.apply(&row)

	if err := h.db.WithContext(c.Request.Context()).Create(&row).Error; err != nil {
		middleware.LoggerFromContext(c).Error("save resume data failed", slog.Any("error", err))
		Internal(c, "Error inserting resume data")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":       "Resume data saved successfully",
		"submission_id": row.ID,
	})
}

type updateResumeRequest struct {
	SubmissionID uint   `json:"submission_id" binding:"required"`
	Status       string `json:"status" binding:"required"`
	resumeFormPayload
}

// UpdateResumeData 更新录入记录。状态按来源规则换算：
// 当前为 Auto Saved 的记录保持 Auto 谱系。
func (h *ResumeHandler) UpdateResumeData(c *gin.Context) {
	var req updateResumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()

	var row database.SubmittedResume
	if err := h.db.WithContext(ctx).First(&row, req.SubmissionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "Submission ID not found")
			return
		}
		Internal(c, "Error checking current status")
		return
	}

	req.resumeFormPayload.apply(&row)
	row.Status = review.Resolve(row.Status, req.Status)

	if err := h.db.WithContext(ctx).Save(&row).Error; err != nil {
		middleware.LoggerFromContext(c).Error("update resume data failed", slog.Any("error", err))
		Internal(c, "Error updating resume data")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Resume data updated successfully",
		"status":  row.Status,
	})
}

type bulkStatusRequest struct {
	// 兼容单个 id 或 id 数组两种请求体。
	SubmissionID json.RawMessage `json:"submission_id"`
	Status       string          `json:"status"`
}

func (r *bulkStatusRequest) ids() ([]uint, error) {
	if len(r.SubmissionID) == 0 {
		return nil, errors.New("submission_id missing")
	}
	var many []uint
	if err := json.Unmarshal(r.SubmissionID, &many); err == nil {
		return many, nil
	}
	var one uint
	if err := json.Unmarshal(r.SubmissionID, &one); err != nil {
		return nil, err
	}
	return []uint{one}, nil
}

// BulkSetStatus 批量（或单条）更新录入记录的状态。
func (h *ResumeHandler) BulkSetStatus(c *gin.Context) {
	var req bulkStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Missing required parameters. 'submission_id' and 'status' are required.")
		return
	}

	ids, err := req.ids()
	if err != nil || req.Status == "" || len(ids) == 0 {
		BadRequest(c, "Missing required parameters. 'submission_id' and 'status' are required.")
		return
	}

	result := h.db.WithContext(c.Request.Context()).
		Model(&database.SubmittedResume{}).
		Where("id IN ?", ids).
		Update("status", req.Status)
	if result.Error != nil {
		middleware.LoggerFromContext(c).Error("bulk status update failed", slog.Any("error", result.Error))
		Internal(c, "Database error while updating status")
		return
	}
	if result.RowsAffected == 0 {
		NotFound(c, "No resumes found. Please check the submission IDs.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        "Status updated successfully",
		"submission_ids": ids,
		"new_status":     req.Status,
		"affected_rows":  result.RowsAffected,
	})
}

type reassignRequest struct {
	SubmissionIDs []uint   `json:"submission_ids"`
	FreelancerIDs []string `json:"freelancer_ids"`
}

// Reassign 将源记录复制给每位目标录入员。
// 每个 (源, 目标) 组合产生一条新记录，状态强制 Auto Saved，源记录不动。
func (h *ResumeHandler) Reassign(c *gin.Context) {
	var req reassignRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.SubmissionIDs == nil || req.FreelancerIDs == nil {
		BadRequest(c, "submission_ids and freelancer_ids should be arrays")
		return
	}

	ctx := c.Request.Context()

	var sources []database.SubmittedResume
	if err := h.db.WithContext(ctx).
		Where("id IN ?", req.SubmissionIDs).
		Find(&sources).Error; err != nil {
		middleware.LoggerFromContext(c).Error("reassign source lookup failed", slog.Any("error", err))
		Internal(c, "Database error")
		return
	}

	now := time.Now()
	for _, freelancerID := range req.FreelancerIDs {
		target := auth.NormalizeUserID(freelancerID)
		copies := make([]database.SubmittedResume, 0, len(sources))
		for _, src := range sources {
			clone := src
			clone.Model = gorm.Model{}
			clone.FreelancerID = target
			clone.Status = review.StatusAutoSaved
			clone.SubmissionDate = now
			copies = append(copies, clone)
		}
		if len(copies) == 0 {
			continue
		}
		if err := h.db.WithContext(ctx).Create(&copies).Error; err != nil {
			middleware.LoggerFromContext(c).Error("reassign insert failed",
				slog.String("freelancer_id", target),
				slog.Any("error", err),
			)
			Internal(c, "Database error")
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Resumes reassigned to all freelancers successfully."})
}

// GetAllResumes 返回全部模板。
func (h *ResumeHandler) GetAllResumes(c *gin.Context) {
	var resumes []database.Resume
	if err := h.db.WithContext(c.Request.Context()).Find(&resumes).Error; err != nil {
		Internal(c, "Database error")
		return
	}
	c.JSON(http.StatusOK, resumes)
}

// submissionWithResume 是列表接口的行结构，带模板名称与对象键。
type submissionWithResume struct {
	database.SubmittedResume
	ResumeName string `json:"resume_name"`
	ObjectKey  string `json:"object_key"`
}

func (h *ResumeHandler) listByStatus(c *gin.Context, statuses []string, emptyMessage string) {
	freelancerID := auth.NormalizeUserID(c.Param("freelancer_id"))

	var rows []submissionWithResume
	err := h.db.WithContext(c.Request.Context()).
		Model(&database.SubmittedResume{}).
		Select("submitted_resumes.*, resumes.resume_name, resumes.object_key").
		Joins("INNER JOIN resumes ON resumes.id = submitted_resumes.resume_id").
		Where("submitted_resumes.freelancer_id = ? AND submitted_resumes.status IN ?", freelancerID, statuses).
		Scan(&rows).Error
	if err != nil {
		Internal(c, "Database error")
		return
	}
	if len(rows) == 0 {
		NotFound(c, emptyMessage)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// GetSubmittedResumes 列出某录入员已提交的记录。
func (h *ResumeHandler) GetSubmittedResumes(c *gin.Context) {
	h.listByStatus(c,
		[]string{review.StatusSubmitted, review.StatusAutoSubmitted},
		"No submitted resumes found for this freelancer")
}

// GetSavedResumes 列出某录入员的草稿记录。
func (h *ResumeHandler) GetSavedResumes(c *gin.Context) {
	h.listByStatus(c,
		[]string{review.StatusSaved, review.StatusAutoSaved},
		"No saved resumes found for this freelancer")
}

// GetRejectedResumes 列出某录入员被驳回的记录。
func (h *ResumeHandler) GetRejectedResumes(c *gin.Context) {
	h.listByStatus(c,
		[]string{review.StatusRejected},
		"No rejected resumes found for this freelancer")
}

// GetSubmittedResume 按模板与录入员查询单条记录。
func (h *ResumeHandler) GetSubmittedResume(c *gin.Context) {
	resumeID := c.Param("resume_id")
	freelancerID := auth.NormalizeUserID(c.Param("freelancer_id"))

	var row database.SubmittedResume
	err := h.db.WithContext(c.Request.Context()).
		Where("resume_id = ? AND freelancer_id = ?", resumeID, freelancerID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "No matching resume found for the provided IDs")
			return
		}
		Internal(c, "Database error")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Submitted resume fetched successfully",
		"data":    row,
	})
}

// submissionWithFreelancer 带录入员姓名的行结构。
type submissionWithFreelancer struct {
	database.SubmittedResume
	FreelancerName string `json:"freelancer_name"`
}

// GetAllSubmittedResumes 管理端列出全部录入记录（上限 500 条）。
func (h *ResumeHandler) GetAllSubmittedResumes(c *gin.Context) {
	var rows []submissionWithFreelancer
	err := h.db.WithContext(c.Request.Context()).
		Model(&database.SubmittedResume{}).
		Select("submitted_resumes.*, freelancers.name AS freelancer_name").
		Joins("INNER JOIN freelancers ON freelancers.user_id = submitted_resumes.freelancer_id").
		Limit(500).
		Scan(&rows).Error
	if err != nil {
		Internal(c, "Error fetching submitted resumes")
		return
	}
	c.JSON(http.StatusOK, gin.H{"submittedResumes": rows})
}
