package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"resumesentry/internal/api/middleware"
	"resumesentry/internal/auth"
	"resumesentry/internal/database"
	"resumesentry/internal/tasks"
)

const resetTokenConsumedKeyPrefix = "auth:reset:consumed:"

// 注册时的接单工作窗口长度。
const engagementWindowDays = 5

// AuthHandler 处理注册、登录与密码找回。
type AuthHandler struct {
	db              *gorm.DB
	authService     *auth.AuthService
	asynqClient     *asynq.Client
	redis           redis.UniversalClient
	logger          *slog.Logger
	frontendBaseURL string
}

// NewAuthHandler 构造认证处理器。
func NewAuthHandler(
	db *gorm.DB,
	authService *auth.AuthService,
	asynqClient *asynq.Client,
	redisClient redis.UniversalClient,
	logger *slog.Logger,
	frontendBaseURL string,
) *AuthHandler {
	return &AuthHandler{
		db:              db,
		authService:     authService,
		asynqClient:     asynqClient,
		redis:           redisClient,
		logger:          logger,
		frontendBaseURL: strings.TrimRight(strings.TrimSpace(frontendBaseURL), "/"),
	}
}

type signUpRequest struct {
	Name        string `json:"name" binding:"required,max=128"`
	PhoneNumber string `json:"phone_number" binding:"required,max=32"`
	Email       string `json:"email" binding:"required,email,max=255"`
	Password    string `json:"password" binding:"required,min=6,max=72"`
}

// SignUp 创建录入员账号并发送欢迎邮件。
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "All fields are required")
		return
	}

	ctx := c.Request.Context()
	logger := h.loggerFromContext(c).With(slog.String("email", req.Email))

	var existing database.Freelancer
	if err := h.db.WithContext(ctx).Where("email = ?", req.Email).First(&existing).Error; err == nil {
		logger.Info("signup conflict: email already registered")
		Conflict(c, "email already registered")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("signup lookup failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		logger.Error("hash password failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	userID, err := auth.UniqueUserID(ctx, req.Name, func(ctx context.Context, candidate string) (bool, error) {
		var count int64
		if err := h.db.WithContext(ctx).Model(&database.Freelancer{}).
			Where("user_id = ?", candidate).Count(&count).Error; err != nil {
			return false, err
		}
		return count > 0, nil
	})
	if err != nil {
		logger.Error("generate user id failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	today := datatypes.Date(time.Now())
	endDate := datatypes.Date(time.Now().AddDate(0, 0, engagementWindowDays))

	freelancer := database.Freelancer{
		UserID:       userID,
		Name:         req.Name,
		Email:        req.Email,
		PhoneNumber:  req.PhoneNumber,
		PasswordHash: hashed,
		IsActive:     true,
		StartDate:    &today,
		EndDate:      &endDate,
	}

	if err := h.db.WithContext(ctx).Create(&freelancer).Error; err != nil {
		logger.Error("create freelancer failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	// 欢迎邮件带一次性登录凭据；入队失败账号仍然保留。
	task, err := tasks.NewEmailWelcomeTask(tasks.EmailWelcomePayload{
		To:            req.Email,
		Name:          req.Name,
		UserID:        userID,
		Password:      req.Password,
		CorrelationID: middleware.GetCorrelationID(c),
	})
	if err == nil {
		_, err = h.asynqClient.Enqueue(task, asynq.MaxRetry(5))
	}
	if err != nil {
		logger.Error("enqueue welcome email failed", slog.Any("error", err))
		Internal(c, "Failed to send email. Please try again later.")
		return
	}

	logger.Info("freelancer registered", slog.String("user_id", userID))
	c.JSON(http.StatusCreated, gin.H{
		"message": "Freelancer registered successfully and email sent",
		"userId":  userID,
	})
}

type loginRequest struct {
	UserID   string `json:"userId" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 先按管理员邮箱查找，再按录入员 user_id 查找（仅限启用账号）。
// 未知账号与口令错误返回相同的 401，避免账号枚举。
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "userId and password are required")
		return
	}

	ctx := c.Request.Context()
	logger := h.loggerFromContext(c)

	var admin database.Admin
	err := h.db.WithContext(ctx).Where("email = ?", req.UserID).First(&admin).Error
	switch {
	case err == nil:
		if !auth.CheckPasswordHash(req.Password, admin.PasswordHash) {
			logger.Info("login failed: admin password mismatch")
			invalidCredentials(c)
			return
		}
		h.replyWithToken(c, admin.ID, auth.RoleAdmin)
		return
	case !errors.Is(err, gorm.ErrRecordNotFound):
		logger.Error("admin lookup failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	var freelancer database.Freelancer
	err = h.db.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", auth.NormalizeUserID(req.UserID), true).
		First(&freelancer).Error
	switch {
	case err == nil:
		if !auth.CheckPasswordHash(req.Password, freelancer.PasswordHash) {
			logger.Info("login failed: freelancer password mismatch")
			invalidCredentials(c)
			return
		}
		h.replyWithToken(c, freelancer.ID, auth.RoleFreelancer)
		return
	case errors.Is(err, gorm.ErrRecordNotFound):
		logger.Info("login failed: account not found")
		invalidCredentials(c)
		return
	default:
		logger.Error("freelancer lookup failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}
}

func invalidCredentials(c *gin.Context) {
	Error(c, http.StatusUnauthorized, "Invalid credentials")
}

func (h *AuthHandler) replyWithToken(c *gin.Context, accountID uint, role string) {
	token, err := h.authService.GenerateToken(accountID, role)
	if err != nil {
		h.loggerFromContext(c).Error("generate token failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "role": role})
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ForgotPassword 按邮箱查找录入员并发送重置链接。
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "email is required")
		return
	}

	ctx := c.Request.Context()
	logger := h.loggerFromContext(c).With(slog.String("email", req.Email))

	var freelancer database.Freelancer
	if err := h.db.WithContext(ctx).Where("email = ?", req.Email).First(&freelancer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "Email not found. Please contact admin.")
			return
		}
		logger.Error("forgot password lookup failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	resetToken, err := h.authService.GenerateResetToken(freelancer.ID, freelancer.Email)
	if err != nil {
		logger.Error("generate reset token failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	resetLink := fmt.Sprintf("%s/auth/reset-password?token=%s", h.frontendBaseURL, url.QueryEscape(resetToken))

	task, err := tasks.NewEmailPasswordResetTask(tasks.EmailPasswordResetPayload{
		To:            freelancer.Email,
		Name:          freelancer.Name,
		ResetLink:     resetLink,
		CorrelationID: middleware.GetCorrelationID(c),
	})
	if err == nil {
		_, err = h.asynqClient.Enqueue(task, asynq.MaxRetry(5))
	}
	if err != nil {
		logger.Error("enqueue reset email failed", slog.Any("error", err))
		Internal(c, "Failed to send email. Please try again later.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password reset email sent. Check your inbox."})
}

type resetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=6,max=72"`
}

// ResetPassword 校验重置令牌并更新口令。令牌一次性：
// jti 记入 Redis 台账，重放直接拒绝。
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "token and newPassword are required")
		return
	}

	ctx := c.Request.Context()
	logger := h.loggerFromContext(c)

	claims, err := h.authService.ValidateResetToken(req.Token)
	if err != nil {
		logger.Info("reset token invalid", slog.Any("error", err))
		Error(c, http.StatusUnauthorized, "Invalid or expired token.")
		return
	}

	consumedKey := resetTokenConsumedKeyPrefix + claims.ID
	if err := h.redis.Get(ctx, consumedKey).Err(); err == nil {
		logger.Info("reset token replayed", slog.String("jti", claims.ID))
		Error(c, http.StatusUnauthorized, "Invalid or expired token.")
		return
	} else if !errors.Is(err, redis.Nil) {
		logger.Error("reset token ledger lookup failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	var freelancer database.Freelancer
	if err := h.db.WithContext(ctx).First(&freelancer, claims.AccountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			NotFound(c, "Invalid or expired token.")
			return
		}
		logger.Error("reset password lookup failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	hashed, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		logger.Error("hash new password failed", slog.Any("error", err))
		Internal(c, "internal error")
		return
	}

	if err := h.db.WithContext(ctx).Model(&freelancer).
		Update("password_hash", hashed).Error; err != nil {
		logger.Error("update password failed", slog.Any("error", err))
		Internal(c, "Failed to update password.")
		return
	}

	expiry := time.Now().Add(h.authService.ResetTTL())
	if claims.ExpiresAt != nil {
		expiry = claims.ExpiresAt.Time
	}
	if err := h.consumeResetToken(ctx, consumedKey, expiry); err != nil {
		logger.Error("record consumed reset token failed", slog.Any("error", err))
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password reset successfully. You can now log in."})
}

// consumeResetToken 将 jti 写入台账，TTL 与令牌剩余有效期一致。
func (h *AuthHandler) consumeResetToken(ctx context.Context, key string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		ttl = time.Second
	}
	return h.redis.Set(ctx, key, "consumed", ttl).Err()
}

func (h *AuthHandler) loggerFromContext(c *gin.Context) *slog.Logger {
	if logger := middleware.LoggerFromContext(c); logger != nil {
		return logger
	}
	if h.logger != nil {
		return h.logger
	}
	return slog.Default()
}
