package storage

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// 上传文件校验失败时返回的哨兵错误。
var (
	ErrNotPDF       = errors.New("only pdf files are allowed")
	ErrFileTooLarge = errors.New("file exceeds size limit")
)

// Staging 管理上传文件在本地磁盘的暂存目录。
// 文件先落盘暂存（便于病毒扫描与失败重试），再上传对象存储，最后删除。
type Staging struct {
	dir      string
	maxBytes int64
}

// NewStaging 创建暂存管理器并确保目录存在。
func NewStaging(dir string, maxBytes int64) (*Staging, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create staging dir %q: %w", dir, err)
	}
	return &Staging{dir: dir, maxBytes: maxBytes}, nil
}

// Save 校验并保存 multipart 文件到暂存目录，返回暂存路径。
// 只接受 PDF 文件，超出大小上限直接拒绝。
func (s *Staging) Save(fh *multipart.FileHeader) (string, error) {
	if fh.Size > s.maxBytes {
		return "", fmt.Errorf("%w: %d bytes", ErrFileTooLarge, fh.Size)
	}
	if !isPDF(fh) {
		return "", ErrNotPDF
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open uploaded file %q: %w", fh.Filename, err)
	}
	defer src.Close()

	base := path.Base(strings.ReplaceAll(fh.Filename, "\\", "/"))
	dest := filepath.Join(s.dir, fmt.Sprintf("%d-%s", time.Now().UnixNano(), base))

	out, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("create staging file %q: %w", dest, err)
	}

	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		os.Remove(dest)
		return "", fmt.Errorf("write staging file %q: %w", dest, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dest)
		return "", fmt.Errorf("close staging file %q: %w", dest, err)
	}

	return dest, nil
}

// Remove 删除暂存文件，文件不存在视为成功。
func (s *Staging) Remove(stagedPath string) error {
	if stagedPath == "" {
		return nil
	}
	if err := os.Remove(stagedPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove staging file %q: %w", stagedPath, err)
	}
	return nil
}

// Dir 返回暂存目录路径。
func (s *Staging) Dir() string {
	return s.dir
}

func isPDF(fh *multipart.FileHeader) bool {
	if ct := fh.Header.Get("Content-Type"); strings.EqualFold(strings.TrimSpace(ct), "application/pdf") {
		return true
	}
	return strings.EqualFold(filepath.Ext(fh.Filename), ".pdf")
}
