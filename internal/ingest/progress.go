package ingest

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// 事件状态常量，生产者与 WebSocket 转发端保持一致。
const (
	EventBatchDone = "batch_done"
	EventFileError = "file_error"
	EventCompleted = "completed"
)

// ProgressEvent 描述批量上传作业的进度，通过 Redis Pub/Sub 转发给前端。
type ProgressEvent struct {
	JobID         string `json:"job_id"`
	Status        string `json:"status"`
	BatchIndex    int    `json:"batch_index"`
	TotalFiles    int    `json:"total_files"`
	UploadedCount int    `json:"uploaded_count"`
	FailedCount   int    `json:"failed_count"`
	FileName      string `json:"file_name,omitempty"`
	ErrorMessage  string `json:"error_message,omitempty"`
}

// Notifier 发布批量上传进度事件。
type Notifier interface {
	Notify(ctx context.Context, event ProgressEvent) error
}

// ProgressChannel 返回指定作业的 Pub/Sub 频道名。
func ProgressChannel(jobID string) string {
	return fmt.Sprintf("ingest:progress:%s", jobID)
}

// RedisNotifier 将进度事件发布到 Redis 频道。
type RedisNotifier struct {
	client redis.UniversalClient
}

// NewRedisNotifier 创建基于 Redis 的进度通知器。
func NewRedisNotifier(client redis.UniversalClient) *RedisNotifier {
	return &RedisNotifier{client: client}
}

// Notify 实现 Notifier。
func (n *RedisNotifier) Notify(ctx context.Context, event ProgressEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal progress event: %w", err)
	}
	channel := ProgressChannel(event.JobID)
	if err := n.client.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("publish progress to %q: %w", channel, err)
	}
	return nil
}

// NopNotifier 丢弃所有事件，未接入 Redis 时使用。
type NopNotifier struct{}

// Notify 实现 Notifier。
func (NopNotifier) Notify(context.Context, ProgressEvent) error { return nil }
