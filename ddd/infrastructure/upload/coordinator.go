package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"sync/atomic"

	"stream-compiler-service/pkg/config"
	"stream-compiler-service/pkg/logger"
)

// DefaultPartSize 分片大小，与单发/分片切换阈值一致
const DefaultPartSize int64 = 50 * 1024 * 1024

// DefaultConcurrency 分片上传工作协程数
const DefaultConcurrency = 3

// CompletedPart 一个已上传分片的完整性标签
type CompletedPart struct {
	PartNumber int
	ETag       string
}

// partTarget 一个待上传分片在源文件中的位置
type partTarget struct {
	PartNumber int
	Offset     int64
	Size       int64
}

// MultipartTransport 分片上传的传输层
type MultipartTransport interface {
	Initiate(ctx context.Context, objectKey, contentType string) (uploadID string, err error)
	UploadPart(ctx context.Context, objectKey, uploadID string, partNumber int, reader io.Reader, size int64) (etag string, err error)
	Complete(ctx context.Context, objectKey, uploadID string, parts []CompletedPart) error
	Abort(ctx context.Context, objectKey, uploadID string) error
	PutObject(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) error
}

// Coordinator 分片上传协调器：大文件切为固定大小分片，
// 有界工作池并发上传，完成时按分片号升序提交完整性标签。
type Coordinator struct {
	transport   MultipartTransport
	partSize    int64
	threshold   int64
	concurrency int
}

// NewCoordinator 创建上传协调器
func NewCoordinator(transport MultipartTransport, cfg *config.Config) *Coordinator {
	c := &Coordinator{
		transport:   transport,
		partSize:    DefaultPartSize,
		threshold:   DefaultPartSize,
		concurrency: DefaultConcurrency,
	}
	if cfg != nil {
		if cfg.Upload.PartSize > 0 {
			c.partSize = cfg.Upload.PartSize
		}
		if cfg.Upload.MultipartThreshold > 0 {
			c.threshold = cfg.Upload.MultipartThreshold
		}
		if cfg.Upload.Concurrency > 0 {
			c.concurrency = cfg.Upload.Concurrency
		}
	}
	return c
}

// PartCount 给定文件大小需要的分片数
func (c *Coordinator) PartCount(size int64) int {
	if size <= 0 {
		return 0
	}
	return int((size + c.partSize - 1) / c.partSize)
}

// IsMultipart 是否超过分片上传阈值
func (c *Coordinator) IsMultipart(size int64) bool {
	return size >= c.threshold
}

// Upload 上传一个对象。小于阈值单发直传，否则走分片协议。
func (c *Coordinator) Upload(ctx context.Context, objectKey string, reader io.ReaderAt, size int64, contentType string) error {
	if !c.IsMultipart(size) {
		return c.transport.PutObject(ctx, objectKey, io.NewSectionReader(reader, 0, size), size, contentType)
	}
	return c.uploadMultipart(ctx, objectKey, reader, size, contentType)
}

func (c *Coordinator) uploadMultipart(ctx context.Context, objectKey string, reader io.ReaderAt, size int64, contentType string) error {
	uploadID, err := c.transport.Initiate(ctx, objectKey, contentType)
	if err != nil {
		return fmt.Errorf("initiate multipart upload: %w", err)
	}

	targets := c.partition(size)
	logger.Infof("multipart upload started object_key=%s upload_id=%s parts=%d part_size=%d", objectKey, uploadID, len(targets), c.partSize)

	completed := make([]CompletedPart, len(targets))
	errs := make([]error, len(targets))

	workerCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// 每个工作协程原子认领下一个未认领的分片号
	var next int64
	var wg sync.WaitGroup
	workers := c.concurrency
	if workers > len(targets) {
		workers = len(targets)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				idx := int(atomic.AddInt64(&next, 1)) - 1
				if idx >= len(targets) {
					return
				}
				if workerCtx.Err() != nil {
					errs[idx] = workerCtx.Err()
					return
				}
				target := targets[idx]
				section := io.NewSectionReader(reader, target.Offset, target.Size)
				etag, err := c.transport.UploadPart(workerCtx, objectKey, uploadID, target.PartNumber, section, target.Size)
				if err != nil {
					errs[idx] = fmt.Errorf("upload part %d: %w", target.PartNumber, err)
					cancel()
					return
				}
				completed[idx] = CompletedPart{PartNumber: target.PartNumber, ETag: etag}
			}
		}()
	}
	wg.Wait()

	var firstErr error
	for _, err := range errs {
		if err == nil {
			continue
		}
		// 真正的分片失败优先于被其引发的取消
		if firstErr == nil || errors.Is(firstErr, context.Canceled) {
			firstErr = err
		}
	}
	if firstErr != nil {
		if abortErr := c.transport.Abort(context.Background(), objectKey, uploadID); abortErr != nil {
			logger.Warnf("abort multipart upload failed object_key=%s upload_id=%s err=%v", objectKey, uploadID, abortErr)
		}
		return firstErr
	}

	// 完整性标签必须按分片号升序提交
	sort.Slice(completed, func(i, j int) bool {
		return completed[i].PartNumber < completed[j].PartNumber
	})
	if err := c.transport.Complete(ctx, objectKey, uploadID, completed); err != nil {
		return fmt.Errorf("complete multipart upload: %w", err)
	}
	logger.Infof("multipart upload complete object_key=%s upload_id=%s parts=%d", objectKey, uploadID, len(completed))
	return nil
}

func (c *Coordinator) partition(size int64) []partTarget {
	count := c.PartCount(size)
	targets := make([]partTarget, 0, count)
	for i := 0; i < count; i++ {
		offset := int64(i) * c.partSize
		partSize := c.partSize
		if offset+partSize > size {
			partSize = size - offset
		}
		targets = append(targets, partTarget{PartNumber: i + 1, Offset: offset, Size: partSize})
	}
	return targets
}
