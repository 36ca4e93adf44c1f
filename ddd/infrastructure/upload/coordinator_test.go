package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stream-compiler-service/pkg/config"
)

// fakeTransport 记录分片到达顺序与完成请求，模拟乱序完成
type fakeTransport struct {
	mu            sync.Mutex
	puts          int
	uploadedParts []int
	completedWith []CompletedPart
	aborted       bool
	failPart      int
	randomDelay   bool
}

func (f *fakeTransport) Initiate(ctx context.Context, objectKey, contentType string) (string, error) {
	return "upload-1", nil
}

func (f *fakeTransport) UploadPart(ctx context.Context, objectKey, uploadID string, partNumber int, reader io.Reader, size int64) (string, error) {
	if f.randomDelay {
		time.Sleep(time.Duration(rand.Intn(5)) * time.Millisecond)
	}
	if f.failPart != 0 && partNumber == f.failPart {
		return "", errors.New("connection reset")
	}
	n, err := io.Copy(io.Discard, reader)
	if err != nil {
		return "", err
	}
	if n != size {
		return "", fmt.Errorf("short part: got %d want %d", n, size)
	}
	f.mu.Lock()
	f.uploadedParts = append(f.uploadedParts, partNumber)
	f.mu.Unlock()
	return fmt.Sprintf("etag-%d", partNumber), nil
}

func (f *fakeTransport) Complete(ctx context.Context, objectKey, uploadID string, parts []CompletedPart) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completedWith = append([]CompletedPart(nil), parts...)
	return nil
}

func (f *fakeTransport) Abort(ctx context.Context, objectKey, uploadID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.aborted = true
	return nil
}

func (f *fakeTransport) PutObject(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts++
	_, err := io.Copy(io.Discard, reader)
	return err
}

func testConfig(partSize int64) *config.Config {
	cfg := &config.Config{}
	cfg.Upload.PartSize = partSize
	cfg.Upload.MultipartThreshold = partSize
	cfg.Upload.Concurrency = 3
	return cfg
}

func TestCoordinator_SmallFileSingleShot(t *testing.T) {
	transport := &fakeTransport{}
	coordinator := NewCoordinator(transport, testConfig(1024))

	data := bytes.Repeat([]byte{0xAB}, 512)
	err := coordinator.Upload(context.Background(), "videos/small.mp4", bytes.NewReader(data), int64(len(data)), "video/mp4")
	require.NoError(t, err)

	assert.Equal(t, 1, transport.puts)
	assert.Empty(t, transport.completedWith)
}

func TestCoordinator_ThreePartsSortedByPartNumber(t *testing.T) {
	// 120单位文件、50单位分片 → 恰好3个分片，标签按1,2,3提交
	transport := &fakeTransport{randomDelay: true}
	coordinator := NewCoordinator(transport, testConfig(50))

	data := bytes.Repeat([]byte{0xCD}, 120)
	err := coordinator.Upload(context.Background(), "videos/large.mp4", bytes.NewReader(data), 120, "video/mp4")
	require.NoError(t, err)

	require.Len(t, transport.completedWith, 3)
	for i, part := range transport.completedWith {
		assert.Equal(t, i+1, part.PartNumber)
		assert.Equal(t, fmt.Sprintf("etag-%d", i+1), part.ETag)
	}
	assert.False(t, transport.aborted)
}

func TestCoordinator_CompletionOrderAlwaysAscending(t *testing.T) {
	// 乱序完成的分片不影响提交顺序
	for run := 0; run < 20; run++ {
		transport := &fakeTransport{randomDelay: true}
		coordinator := NewCoordinator(transport, testConfig(10))

		data := bytes.Repeat([]byte{0x01}, 95)
		err := coordinator.Upload(context.Background(), "videos/parts.mp4", bytes.NewReader(data), 95, "video/mp4")
		require.NoError(t, err)

		require.Len(t, transport.completedWith, 10)
		assert.True(t, sort.SliceIsSorted(transport.completedWith, func(i, j int) bool {
			return transport.completedWith[i].PartNumber < transport.completedWith[j].PartNumber
		}))
		// 最后一个分片是余数大小
		assert.Equal(t, 10, transport.completedWith[9].PartNumber)
	}
}

func TestCoordinator_PartCount(t *testing.T) {
	coordinator := NewCoordinator(&fakeTransport{}, testConfig(50))

	assert.Equal(t, 3, coordinator.PartCount(120))
	assert.Equal(t, 1, coordinator.PartCount(50))
	assert.Equal(t, 2, coordinator.PartCount(51))
	assert.Equal(t, 0, coordinator.PartCount(0))
}

func TestCoordinator_FailedPartAbortsUpload(t *testing.T) {
	transport := &fakeTransport{failPart: 2}
	coordinator := NewCoordinator(transport, testConfig(50))

	data := bytes.Repeat([]byte{0xEE}, 120)
	err := coordinator.Upload(context.Background(), "videos/broken.mp4", bytes.NewReader(data), 120, "video/mp4")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "part 2")
	assert.True(t, transport.aborted)
	assert.Empty(t, transport.completedWith)
}
