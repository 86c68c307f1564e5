// Package ingest 实现简历文件的批量上传流水线。
package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"gorm.io/gorm"

	"resumesentry/internal/database"
	"resumesentry/internal/storage"
)

// BatchSize 为每批并发上传的文件数。批次之间串行执行。
const BatchSize = 5

// Uploader 抽象对象存储的上传操作，便于测试替换。
type Uploader interface {
	UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (*minio.UploadInfo, error)
}

// Pipeline 将一组上传文件分批写入对象存储并登记到简历库。
// 单个文件失败不影响同批其他文件，暂存文件无论成败都会清理。
type Pipeline struct {
	db       *gorm.DB
	uploader Uploader
	staging  *storage.Staging
	scanner  *storage.Scanner
	prefix   string
	logger   *slog.Logger
	notifier Notifier
}

// Result 汇总一次批量上传作业的结果。
type Result struct {
	JobID         string
	TotalFiles    int
	UploadedCount int
	FailedCount   int
}

// NewPipeline 创建批量上传流水线。notifier 为 nil 时进度事件被丢弃。
func NewPipeline(
	db *gorm.DB,
	uploader Uploader,
	staging *storage.Staging,
	scanner *storage.Scanner,
	prefix string,
	logger *slog.Logger,
	notifier Notifier,
) *Pipeline {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if scanner == nil {
		scanner = storage.NewScanner("")
	}
	return &Pipeline{
		db:       db,
		uploader: uploader,
		staging:  staging,
		scanner:  scanner,
		prefix:   strings.Trim(prefix, "/"),
		logger:   logger,
		notifier: notifier,
	}
}

type uploadOutcome struct {
	record *database.Resume
	name   string
	err    error
}

// Run 执行批量上传：按 BatchSize 切批，批内并发，批间串行。
// 每批成功的文件一次性写库，返回整体统计。
func (p *Pipeline) Run(ctx context.Context, jobID string, files []*multipart.FileHeader, uploadedBy string) (*Result, error) {
	result := &Result{
		JobID:      jobID,
		TotalFiles: len(files),
	}

	for start := 0; start < len(files); start += BatchSize {
		end := start + BatchSize
		if end > len(files) {
			end = len(files)
		}
		batch := files[start:end]
		batchIndex := start / BatchSize

		outcomes := make([]uploadOutcome, len(batch))
		var wg sync.WaitGroup
		for i, fh := range batch {
			wg.Add(1)
			go func(i int, fh *multipart.FileHeader) {
				defer wg.Done()
				outcomes[i] = p.processFile(ctx, fh)
			}(i, fh)
		}
		wg.Wait()

		records := make([]database.Resume, 0, len(batch))
		for _, out := range outcomes {
			if out.err != nil {
				result.FailedCount++
				p.logger.Warn("bulk upload file failed",
					slog.String("job_id", jobID),
					slog.String("file", out.name),
					slog.Any("error", out.err),
				)
				p.notify(ctx, ProgressEvent{
					JobID:        jobID,
					Status:       EventFileError,
					BatchIndex:   batchIndex,
					TotalFiles:   result.TotalFiles,
					FileName:     out.name,
					ErrorMessage: out.err.Error(),
				})
				continue
			}
			out.record.UploadedBy = uploadedBy
			records = append(records, *out.record)
		}

		if len(records) > 0 {
			if err := p.db.WithContext(ctx).Create(&records).Error; err != nil {
				return result, fmt.Errorf("insert resume batch %d: %w", batchIndex, err)
			}
			result.UploadedCount += len(records)
		}

		p.notify(ctx, ProgressEvent{
			JobID:         jobID,
			Status:        EventBatchDone,
			BatchIndex:    batchIndex,
			TotalFiles:    result.TotalFiles,
			UploadedCount: result.UploadedCount,
			FailedCount:   result.FailedCount,
		})
	}

	p.notify(ctx, ProgressEvent{
		JobID:         jobID,
		Status:        EventCompleted,
		TotalFiles:    result.TotalFiles,
		UploadedCount: result.UploadedCount,
		FailedCount:   result.FailedCount,
	})

	return result, nil
}

// processFile 处理单个文件：暂存、扫描、上传，最后清理暂存文件。
func (p *Pipeline) processFile(ctx context.Context, fh *multipart.FileHeader) uploadOutcome {
	name := path.Base(strings.ReplaceAll(fh.Filename, "\\", "/"))
	out := uploadOutcome{name: name}

	stagedPath, err := p.staging.Save(fh)
	if err != nil {
		out.err = fmt.Errorf("stage file: %w", err)
		return out
	}
	defer func() {
		if err := p.staging.Remove(stagedPath); err != nil {
			p.logger.Warn("remove staged file failed", slog.Any("error", err))
		}
	}()

	if err := p.scanner.ScanFile(stagedPath); err != nil {
		out.err = err
		return out
	}

	f, err := os.Open(stagedPath)
	if err != nil {
		out.err = fmt.Errorf("open staged file: %w", err)
		return out
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		out.err = fmt.Errorf("stat staged file: %w", err)
		return out
	}

	objectKey := fmt.Sprintf("bulk/%s-%s", uuid.NewString(), name)
	if p.prefix != "" {
		objectKey = p.prefix + "/" + objectKey
	}

	if _, err := p.uploader.UploadFile(ctx, objectKey, f, stat.Size(), "application/pdf"); err != nil {
		out.err = fmt.Errorf("upload object: %w", err)
		return out
	}

	out.record = &database.Resume{
		ResumeName: name,
		ObjectKey:  objectKey,
	}
	return out
}

func (p *Pipeline) notify(ctx context.Context, event ProgressEvent) {
	if err := p.notifier.Notify(ctx, event); err != nil {
		p.logger.Warn("publish ingest progress failed",
			slog.String("job_id", event.JobID),
			slog.Any("error", err),
		)
	}
}
