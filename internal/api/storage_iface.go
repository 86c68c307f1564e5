package api

import (
	"context"
	"io"

	"github.com/minio/minio-go/v7"

	"resumesentry/internal/storage"
)

// ObjectStore 定义处理器依赖的对象存储操作，便于测试替换。
type ObjectStore interface {
	UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (*minio.UploadInfo, error)
	StatObject(ctx context.Context, objectKey string) (*storage.ObjectMeta, error)
	OpenObject(ctx context.Context, objectKey string) (io.ReadCloser, error)
	DeleteObject(ctx context.Context, objectKey string) error
	ObjectKey(category, filename string) string
}
