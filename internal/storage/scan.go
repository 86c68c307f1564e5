package storage

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dutchcoders/go-clamd"
)

// ErrInfectedFile 表示病毒扫描命中。
var ErrInfectedFile = errors.New("malicious file detected")

// Scanner 通过 clamd 扫描暂存文件。
// 地址为空时扫描被禁用，Scan 直接放行。
type Scanner struct {
	addr string
}

// NewScanner 创建扫描器。addr 为空表示未部署 clamd，跳过扫描。
func NewScanner(addr string) *Scanner {
	return &Scanner{addr: addr}
}

// Enabled 返回扫描是否启用。
func (s *Scanner) Enabled() bool {
	return s.addr != ""
}

// ScanFile 扫描暂存文件，命中病毒返回 ErrInfectedFile。
func (s *Scanner) ScanFile(stagedPath string) error {
	if !s.Enabled() {
		return nil
	}

	f, err := os.Open(stagedPath)
	if err != nil {
		return fmt.Errorf("open staged file %q: %w", stagedPath, err)
	}
	defer f.Close()

	return s.scanStream(f)
}

func (s *Scanner) scanStream(r io.Reader) error {
	clamdClient := clamd.NewClamd(s.addr)

	abortChan := make(chan bool)
	scanChan, err := clamdClient.ScanStream(r, abortChan)
	if err != nil {
		return fmt.Errorf("scan stream: %w", err)
	}
	defer close(abortChan)

	for result := range scanChan {
		if result.Status != clamd.RES_OK {
			return ErrInfectedFile
		}
	}
	return nil
}
