package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"resumesentry/internal/api/middleware"
	"resumesentry/internal/auth"
	"resumesentry/internal/config"
	"resumesentry/internal/ingest"
	"resumesentry/internal/storage"
)

// RegisterRoutes 注册 API 路由。路径沿用既有前端约定，带参路由的
// 单条提交查询挂在 /submitted/:freelancer_id/:resume_id 下，避免同级
// 通配符命名冲突。
func RegisterRoutes(
	router *gin.Engine,
	cfg *config.Config,
	db *gorm.DB,
	asynqClient *asynq.Client,
	authService *auth.AuthService,
	redisClient redis.UniversalClient,
	logger *slog.Logger,
	storageClient *storage.Client,
	staging *storage.Staging,
	scanner *storage.Scanner,
) {
	authHandler := NewAuthHandler(db, authService, asynqClient, redisClient, logger, cfg.Mail.FrontendBaseURL)
	freelancerHandler := NewFreelancerHandler(db, logger)
	resumeHandler := NewResumeHandler(db, logger)
	fileHandler := NewFileHandler(db, storageClient, logger)
	documentHandler := NewDocumentHandler(db, storageClient, staging, scanner, logger)
	bankHandler := NewBankHandler(db, logger)
	reportHandler := NewReportHandler(db, logger)
	wsHandler := NewWsHandler(redisClient, authService, logger, cfg.API.Origins())

	pipeline := ingest.NewPipeline(
		db,
		storageClient,
		staging,
		scanner,
		cfg.MinIO.Prefix,
		logger,
		ingest.NewRedisNotifier(redisClient),
	)
	ingestHandler := NewIngestHandler(pipeline, cfg.Upload.MaxBulkFiles, logger)

	authMiddleware := middleware.AuthMiddleware(authService)

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/signup", authHandler.SignUp)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/forgot-password", authHandler.ForgotPassword)
		authGroup.POST("/reset-password", authHandler.ResetPassword)
	}

	freelancerGroup := router.Group("/freelancer")
	{
		freelancerGroup.GET("/:freelancer_id/details", authMiddleware, freelancerHandler.GetDetails)
		freelancerGroup.PUT("/:freelancer_id/edit", authMiddleware, freelancerHandler.Edit)
		freelancerGroup.PUT("/:freelancer_id/status", freelancerHandler.ToggleStatus)
		freelancerGroup.GET("", authMiddleware, freelancerHandler.List)
		freelancerGroup.PUT("/updateFreelancerResume/:freelancer_id", authMiddleware, freelancerHandler.UpdateCurrentResume)
		freelancerGroup.GET("/getFreelancerResume/:freelancer_id", authMiddleware, freelancerHandler.GetCurrentResume)
	}

	resumeGroup := router.Group("/resumes")
	{
		resumeGroup.GET("/all", resumeHandler.GetAllResumes)
		resumeGroup.POST("/save", authMiddleware, resumeHandler.Save)
		resumeGroup.POST("/updateResumeData", authMiddleware, resumeHandler.UpdateResumeData)

		resumeGroup.GET("/submitted/:freelancer_id", authMiddleware, resumeHandler.GetSubmittedResumes)
		resumeGroup.GET("/submitted/:freelancer_id/:resume_id", resumeHandler.GetSubmittedResume)
		resumeGroup.GET("/saved/:freelancer_id", authMiddleware, resumeHandler.GetSavedResumes)
		resumeGroup.GET("/rejected/:freelancer_id", authMiddleware, resumeHandler.GetRejectedResumes)
		resumeGroup.GET("/getAllCompletedResumes", authMiddleware, resumeHandler.GetAllSubmittedResumes)

		resumeGroup.POST("/updateResumeStatus", authMiddleware, resumeHandler.BulkSetStatus)
		resumeGroup.POST("/reassignResume", authMiddleware, resumeHandler.Reassign)

		resumeGroup.POST("/bulk-upload", ingestHandler.BulkUpload)
		resumeGroup.GET("/ingest/ws", wsHandler.HandleIngestProgress)

		resumeGroup.GET("/download/:resume_id", fileHandler.DownloadResume)
		resumeGroup.GET("/downloadAadharCard/:freelancer_id", fileHandler.DownloadAadharCard)
		resumeGroup.GET("/downloadAddressCard/:freelancer_id", fileHandler.DownloadAddressCard)

		resumeGroup.POST("/uploadAadharCard/:freelancer_id", documentHandler.UploadAadharCard)
		resumeGroup.POST("/uploadAddressCard/:freelancer_id", documentHandler.UploadAddressCard)
		resumeGroup.POST("/updateApprovalStatus", authMiddleware, documentHandler.UpdateApprovalStatus)

		resumeGroup.POST("/saveOrUpdateBankDetails", authMiddleware, bankHandler.SaveOrUpdateBankDetails)
		resumeGroup.GET("/getBankDetails/:freelancer_id", authMiddleware, bankHandler.GetBankDetails)

		resumeGroup.POST("/getResumeStats", authMiddleware, reportHandler.GetResumeStats)
		resumeGroup.GET("/GetResumeReportForAdmin", authMiddleware, reportHandler.GetResumeReportForAdmin)
		resumeGroup.GET("/GetUserPaymentReport", authMiddleware, reportHandler.GetUserPaymentReport)
	}
}
