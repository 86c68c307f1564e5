package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// 任务类型常量，确保队列生产者与消费者一致。
const (
	TypeEmailWelcome       = "email:welcome"
	TypeEmailPasswordReset = "email:password_reset"
)

// EmailWelcomePayload 描述新账号欢迎邮件所需的信息。
// 登录口令只在注册请求的内存中出现一次，通过任务载荷传递给发信侧。
type EmailWelcomePayload struct {
	To            string `json:"to"`
	Name          string `json:"name"`
	UserID        string `json:"user_id"`
	Password      string `json:"password"`
	CorrelationID string `json:"correlation_id"`
}

// EmailPasswordResetPayload 描述密码重置邮件所需的信息。
type EmailPasswordResetPayload struct {
	To            string `json:"to"`
	Name          string `json:"name"`
	ResetLink     string `json:"reset_link"`
	CorrelationID string `json:"correlation_id"`
}

// NewEmailWelcomeTask 构造欢迎邮件任务。
func NewEmailWelcomeTask(p EmailWelcomePayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeEmailWelcome, payload), nil
}

// NewEmailPasswordResetTask 构造密码重置邮件任务。
func NewEmailPasswordResetTask(p EmailPasswordResetPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeEmailPasswordReset, payload), nil
}
