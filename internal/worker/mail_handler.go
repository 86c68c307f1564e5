// Package worker 消费后台任务队列。
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"resumesentry/internal/tasks"
)

// MailSender 定义处理器依赖的邮件发送能力。
type MailSender interface {
	SendWelcome(to, name, userID, password string) error
	SendPasswordReset(to, name, resetLink string) error
}

// MailTaskHandler 负责消费邮件发送任务。
type MailTaskHandler struct {
	mailer MailSender
	logger *slog.Logger
}

// NewMailTaskHandler 创建任务处理器。
func NewMailTaskHandler(m MailSender, logger *slog.Logger) *MailTaskHandler {
	return &MailTaskHandler{
		mailer: m,
		logger: logger,
	}
}

// ProcessTask 实现 asynq.Handler。
func (h *MailTaskHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	switch t.Type() {
	case tasks.TypeEmailWelcome:
		return h.handleWelcome(t)
	case tasks.TypeEmailPasswordReset:
		return h.handlePasswordReset(t)
	default:
		return fmt.Errorf("unexpected task type %q: %w", t.Type(), asynq.SkipRetry)
	}
}

func (h *MailTaskHandler) handleWelcome(t *asynq.Task) error {
	var payload tasks.EmailWelcomePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		h.logger.Error("unmarshal welcome payload failed", slog.Any("error", err))
		return fmt.Errorf("unmarshal welcome payload: %w", asynq.SkipRetry)
	}

	log := h.logger.With(
		slog.String("correlation_id", payload.CorrelationID),
		slog.String("user_id", payload.UserID),
	)

	if err := h.mailer.SendWelcome(payload.To, payload.Name, payload.UserID, payload.Password); err != nil {
		log.Error("send welcome email failed", slog.Any("error", err))
		return err
	}

	log.Info("welcome email sent")
	return nil
}

func (h *MailTaskHandler) handlePasswordReset(t *asynq.Task) error {
	var payload tasks.EmailPasswordResetPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		h.logger.Error("unmarshal reset payload failed", slog.Any("error", err))
		return fmt.Errorf("unmarshal reset payload: %w", asynq.SkipRetry)
	}

	log := h.logger.With(slog.String("correlation_id", payload.CorrelationID))

	if err := h.mailer.SendPasswordReset(payload.To, payload.Name, payload.ResetLink); err != nil {
		log.Error("send reset email failed", slog.Any("error", err))
		return err
	}

	log.Info("password reset email sent")
	return nil
}
