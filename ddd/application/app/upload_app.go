package app

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"

	"github.com/google/uuid"

	"stream-compiler-service/ddd/application/cqe"
	"stream-compiler-service/ddd/application/dto"
	"stream-compiler-service/ddd/infrastructure/upload"
	"stream-compiler-service/internal/resource"
	"stream-compiler-service/pkg/assert"
	"stream-compiler-service/pkg/config"
	"stream-compiler-service/pkg/errno"
	"stream-compiler-service/pkg/logger"
)

var (
	singleUploadApp UploadApp
	onceUploadApp   sync.Once
)

// UploadApp 素材上传应用服务
type UploadApp interface {
	// UploadClip 上传题目素材，大文件自动走分片上传
	UploadClip(ctx context.Context, req *cqe.UploadClipReq, reader io.ReaderAt, size int64, contentType string) (*dto.UploadClipDto, error)
}

type uploadAppImpl struct {
	coordinator *upload.Coordinator
}

// DefaultUploadApp 返回默认上传应用服务
func DefaultUploadApp() UploadApp {
	assert.NotCircular()
	onceUploadApp.Do(func() {
		transport := upload.NewMinioTransport(resource.DefaultMinioResource())
		singleUploadApp = NewUploadAppWith(upload.NewCoordinator(transport, config.GetGlobalConfig()))
	})
	assert.NotNil(singleUploadApp)
	return singleUploadApp
}

// NewUploadAppWith 用显式依赖构造上传应用服务
func NewUploadAppWith(coordinator *upload.Coordinator) UploadApp {
	return &uploadAppImpl{coordinator: coordinator}
}

func (a *uploadAppImpl) UploadClip(ctx context.Context, req *cqe.UploadClipReq, reader io.ReaderAt, size int64, contentType string) (*dto.UploadClipDto, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if size <= 0 {
		return nil, errno.ErrFileSizeIllegal
	}
	if contentType == "" {
		contentType = "video/mp4"
	}

	ext := strings.ToLower(path.Ext(req.FileName))
	objectKey := fmt.Sprintf("clips/%s/%s%s", req.UserUUID, uuid.New().String(), ext)

	if err := a.coordinator.Upload(ctx, objectKey, reader, size, contentType); err != nil {
		logger.Errorf("clip upload failed object_key=%s size=%d err=%v", objectKey, size, err)
		return nil, errno.NewBizError(errno.ErrUploadError, err)
	}

	multipart := a.coordinator.IsMultipart(size)
	result := &dto.UploadClipDto{
		ObjectKey: objectKey,
		Size:      size,
		Multipart: multipart,
	}
	if multipart {
		result.PartCount = a.coordinator.PartCount(size)
	}

	logger.Infof("clip uploaded object_key=%s size=%d multipart=%t", objectKey, size, multipart)
	return result, nil
}
