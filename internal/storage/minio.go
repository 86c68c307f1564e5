package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"resumesentry/internal/config"
)

// Client 封装 MinIO 客户端，提供简历与证件文件的对象操作接口。
type Client struct {
	client     *minio.Client
	bucketName string
	prefix     string
}

// ObjectMeta 描述 Bucket 中对象的关键信息。
type ObjectMeta struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
}

// NewClient 根据配置初始化 MinIO 客户端，并确保目标 Bucket 存在。
func NewClient(cfg config.MinIOConfig) (*Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %q: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("make bucket %q: %w", cfg.Bucket, err)
		}
	}

	return &Client{
		client:     client,
		bucketName: cfg.Bucket,
		prefix:     strings.Trim(cfg.Prefix, "/"),
	}, nil
}

// ObjectKey 为文件名生成带前缀的唯一对象键，避免重名文件互相覆盖。
func (c *Client) ObjectKey(category, filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	key := fmt.Sprintf("%s/%s-%s", category, uuid.NewString(), base)
	if c.prefix != "" {
		key = c.prefix + "/" + key
	}
	return key
}

// UploadFile 将对象上传到 Bucket，并返回上传结果。
func (c *Client) UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (*minio.UploadInfo, error) {
	opts := minio.PutObjectOptions{ContentType: contentType}
	info, err := c.client.PutObject(ctx, c.bucketName, objectName, reader, size, opts)
	if err != nil {
		return nil, fmt.Errorf("put object %q: %w", objectName, err)
	}
	return &info, nil
}

// GetObject 直接读取 Bucket 中的对象。
func (c *Client) GetObject(ctx context.Context, objectKey string) (*minio.Object, error) {
	obj, err := c.client.GetObject(ctx, c.bucketName, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object %q: %w", objectKey, err)
	}
	return obj, nil
}

// StatObject 查询对象元数据，供下载前判断对象是否存在。
func (c *Client) StatObject(ctx context.Context, objectKey string) (*ObjectMeta, error) {
	info, err := c.client.StatObject(ctx, c.bucketName, objectKey, minio.StatObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("stat object %q: %w", objectKey, err)
	}
	return &ObjectMeta{
		Key:          info.Key,
		Size:         info.Size,
		ContentType:  info.ContentType,
		LastModified: info.LastModified,
	}, nil
}

// OpenObject 打开对象读取流，调用方负责关闭。
func (c *Client) OpenObject(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	obj, err := c.GetObject(ctx, objectKey)
	if err != nil {
		return nil, err
	}
	return obj, nil
}

// DeleteObject 删除指定对象。
// 若对象不存在会被视为成功（幂等）。
func (c *Client) DeleteObject(ctx context.Context, objectKey string) error {
	objectKey = strings.TrimSpace(objectKey)
	if objectKey == "" {
		return nil
	}
	if err := c.client.RemoveObject(ctx, c.bucketName, objectKey, minio.RemoveObjectOptions{}); err != nil {
		if IsNoSuchKey(err) {
			return nil
		}
		return fmt.Errorf("remove object %q: %w", objectKey, err)
	}
	return nil
}
